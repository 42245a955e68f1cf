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

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kubeflow/emr-serverless-sql/cmd/emrss/cancel"
	"github.com/kubeflow/emr-serverless-sql/cmd/emrss/get"
	"github.com/kubeflow/emr-serverless-sql/cmd/emrss/log"
	"github.com/kubeflow/emr-serverless-sql/cmd/emrss/options"
	"github.com/kubeflow/emr-serverless-sql/cmd/emrss/submit"
	"github.com/kubeflow/emr-serverless-sql/cmd/emrss/version"
	"github.com/kubeflow/emr-serverless-sql/pkg/config"
	"github.com/kubeflow/emr-serverless-sql/pkg/util"
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "emrss [flags] [SQL_STATEMENT]",
		Short: "emrss runs SQL and notebooks on EMR Serverless",
		Long: `emrss is the command-line tool for running SQL on Amazon EMR Serverless.
It submits a SQL statement, a .sql file or a Jupyter notebook to an EMR Serverless application,
waits for the job run to finish and prints the driver log.`,
		Args:          options.MaximumNArgs(1),
		RunE:          submit.Run,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetFlagErrorFunc(options.FlagErrorFunc)

	flags := cmd.PersistentFlags()
	flags.String(config.KeyConfig, "", "Config file (default is $HOME/.emrss.yaml).")
	flags.String(config.KeyApplicationID, "", "ID of the EMR Serverless application.")
	flags.String(config.KeyJobRoleARN, "", "ARN of the job run execution role.")
	flags.String(config.KeyS3Bucket, "", "S3 bucket for scripts and logs.")
	flags.String(config.KeyRegion, "", "AWS region.")
	flags.String(config.KeyProfile, "", "AWS shared config profile.")
	flags.String(config.KeyEndpointURL, "", "Endpoint URL of EMR Serverless and S3, for testing against emulators.")
	flags.Float64(config.KeyAPIQPS, config.DefaultAPIQPS, "Maximum EMR Serverless API calls per second.")
	flags.Bool(config.KeyDevelopment, false, "Human readable debug logging.")

	submit.AddFlags(cmd.Flags())

	cmd.AddCommand(get.NewCommand())
	cmd.AddCommand(log.NewCommand())
	cmd.AddCommand(cancel.NewCommand())
	cmd.AddCommand(version.NewCommand())

	return cmd
}

func main() {
	if err := NewCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		if util.IsUsageError(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
