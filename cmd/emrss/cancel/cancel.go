/*
Copyright 2025 The Kubeflow authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cancel

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kubeflow/emr-serverless-sql/cmd/emrss/options"
	"github.com/kubeflow/emr-serverless-sql/internal/emrserverless"
	"github.com/kubeflow/emr-serverless-sql/pkg/config"
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cancel <job-run-id>",
		Short: "Cancel a job run",
		Long:  "Cancel the job run with the given ID",
		Args:  options.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := options.LoadConfig(cmd, config.KeyApplicationID)
			if err != nil {
				return err
			}
			session, err := options.SessionFactory(cmd.Context(), cfg, emrserverless.WithLogger(options.NewLogger(cfg)))
			if err != nil {
				return err
			}

			if err := session.CancelJobRun(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "job run %q cancelled\n", args[0])
			return nil
		},
	}
	return cmd
}
