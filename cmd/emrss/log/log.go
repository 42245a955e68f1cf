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

package log

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kubeflow/emr-serverless-sql/cmd/emrss/options"
	"github.com/kubeflow/emr-serverless-sql/internal/emrserverless"
	"github.com/kubeflow/emr-serverless-sql/pkg/common"
	"github.com/kubeflow/emr-serverless-sql/pkg/config"
	"github.com/kubeflow/emr-serverless-sql/pkg/util"
)

var (
	logType string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log <job-run-id>",
		Short: "Fetch the driver log of a job run",
		Long:  "Fetch the driver log of the job run with the given ID from the S3 bucket",
		Args:  options.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if logType != common.DriverLogStdout && logType != common.DriverLogStderr {
				return util.NewUsageError("--type must be %s or %s, got %q", common.DriverLogStdout, common.DriverLogStderr, logType)
			}

			cfg, err := options.LoadConfig(cmd, config.KeyApplicationID, config.KeyS3Bucket)
			if err != nil {
				return err
			}
			session, err := options.SessionFactory(cmd.Context(), cfg, emrserverless.WithLogger(options.NewLogger(cfg)))
			if err != nil {
				return err
			}

			log, err := session.FetchDriverLog(cmd.Context(), args[0], logType)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), log)
			return nil
		},
	}

	cmd.Flags().StringVarP(&logType, "type", "t", common.DriverLogStdout, "Driver log to print, stdout or stderr.")

	return cmd
}
