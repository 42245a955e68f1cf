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

package get

import (
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/emrserverless/types"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/kubeflow/emr-serverless-sql/cmd/emrss/options"
	"github.com/kubeflow/emr-serverless-sql/internal/emrserverless"
	"github.com/kubeflow/emr-serverless-sql/pkg/config"
	"github.com/kubeflow/emr-serverless-sql/pkg/util"
)

// Output formats.
const (
	OutputTable = "table"
	OutputYAML  = "yaml"
)

var (
	output string
)

// JobRunStatus is the printed view of a job run.
type JobRunStatus struct {
	JobRunID        string     `json:"jobRunId"`
	Name            string     `json:"name,omitempty"`
	State           string     `json:"state"`
	StateDetails    string     `json:"stateDetails,omitempty"`
	CreatedAt       *time.Time `json:"createdAt,omitempty"`
	UpdatedAt       *time.Time `json:"updatedAt,omitempty"`
	DurationSeconds *int32     `json:"totalExecutionDurationSeconds,omitempty"`
	ReleaseLabel    string     `json:"releaseLabel,omitempty"`
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <job-run-id>",
		Short: "Get status of a job run",
		Long:  "Get status of the job run with the given ID",
		Args:  options.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != OutputTable && output != OutputYAML {
				return util.NewUsageError("--output must be %s or %s, got %q", OutputTable, OutputYAML, output)
			}

			cfg, err := options.LoadConfig(cmd, config.KeyApplicationID)
			if err != nil {
				return err
			}
			session, err := options.SessionFactory(cmd.Context(), cfg, emrserverless.WithLogger(options.NewLogger(cfg)))
			if err != nil {
				return err
			}

			jobRun, err := session.GetJobRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printStatus(cmd.OutOrStdout(), newJobRunStatus(jobRun), output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", OutputTable, "Output format, table or yaml.")

	return cmd
}

func newJobRunStatus(jobRun *types.JobRun) *JobRunStatus {
	return &JobRunStatus{
		JobRunID:        aws.ToString(jobRun.JobRunId),
		Name:            aws.ToString(jobRun.Name),
		State:           string(jobRun.State),
		StateDetails:    aws.ToString(jobRun.StateDetails),
		CreatedAt:       jobRun.CreatedAt,
		UpdatedAt:       jobRun.UpdatedAt,
		DurationSeconds: jobRun.TotalExecutionDurationSeconds,
		ReleaseLabel:    aws.ToString(jobRun.ReleaseLabel),
	}
}

func printStatus(out io.Writer, status *JobRunStatus, format string) error {
	if format == OutputYAML {
		data, err := yaml.Marshal(status)
		if err != nil {
			return fmt.Errorf("failed to marshal job run %s: %v", status.JobRunID, err)
		}
		_, err = out.Write(data)
		return err
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Job Run ID", "Name", "State", "Age", "Last Update", "Duration"})
	table.Append([]string{
		status.JobRunID,
		util.FormatNotAvailable(status.Name),
		status.State,
		util.GetSinceTime(status.CreatedAt),
		util.GetSinceTime(status.UpdatedAt),
		util.FormatSeconds(status.DurationSeconds),
	})
	table.Render()

	if status.StateDetails != "" {
		fmt.Fprintf(out, "\nstate details: %s\n", status.StateDetails)
	}
	return nil
}
