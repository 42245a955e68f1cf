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

package submit

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/kubeflow/emr-serverless-sql/cmd/emrss/options"
	"github.com/kubeflow/emr-serverless-sql/internal/emrserverless"
	"github.com/kubeflow/emr-serverless-sql/internal/metrics"
	"github.com/kubeflow/emr-serverless-sql/pkg/common"
	"github.com/kubeflow/emr-serverless-sql/pkg/config"
	"github.com/kubeflow/emr-serverless-sql/pkg/util"
)

// cancelTimeout bounds the CancelJobRun call made after an interrupt.
const cancelTimeout = 30 * time.Second

var (
	file string
)

// AddFlags adds the flags of the submit flow to fs.
func AddFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&file, "file", "f", "", "Path to a .sql or .ipynb file to run.")
	fs.Bool(config.KeyWait, true, "Wait for the job run to finish and print its driver log.")
	fs.Duration(config.KeyPollInterval, config.DefaultPollInterval, "Interval between job run state checks.")
	fs.Duration(config.KeyTimeout, 0, "Maximum time to wait for the job run. Zero means no limit.")
	fs.String(config.KeyLogType, common.DriverLogStdout, "Driver log to print, stdout or stderr.")
	fs.StringArray(config.KeySparkConf, nil, "Extra Spark configuration as key=value. Can be repeated.")
	fs.Bool(config.KeyCancelOnInterrupt, false, "Cancel the job run when emrss is interrupted.")
	fs.String(config.KeyPushgatewayURL, "", "Prometheus Pushgateway to push job run metrics to.")
	fs.String(config.KeyMetricsPrefix, "", "Prefix for the metrics.")
	buckets := util.HistogramBuckets(util.DefaultJobRunDurationBuckets)
	fs.Var(&buckets, config.KeyMetricsBuckets, "Buckets for the job run duration histogram, in seconds.")
}

// Run submits a SQL statement or a file, waits for the job run and prints its driver log.
func Run(cmd *cobra.Command, args []string) error {
	query, err := validateArgs(file, args)
	if err != nil {
		return err
	}

	cfg, err := options.LoadConfig(cmd, config.KeyApplicationID, config.KeyJobRoleARN, config.KeyS3Bucket)
	if err != nil {
		return err
	}
	logger := options.NewLogger(cfg)

	jobRunMetrics := metrics.NewJobRunMetrics(cfg.MetricsPrefix, cfg.MetricsDurationBuckets, logger)
	if err := jobRunMetrics.Register(); err != nil {
		return err
	}

	handler := util.NewInterruptHandler(func(s os.Signal) {
		logger.Info("Interrupted", "signal", s.String())
	})
	err = handler.Run(cmd.Context(), func(ctx context.Context) error {
		session, err := options.SessionFactory(ctx, cfg,
			emrserverless.WithLogger(logger),
			emrserverless.WithMetrics(jobRunMetrics),
		)
		if err != nil {
			return err
		}
		if cfg.CancelOnInterrupt {
			watchInterrupt(handler, session, logger)
		}
		return run(ctx, session, query, file, cfg.LogType, cmd.OutOrStdout())
	})

	if cfg.PushgatewayURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), cancelTimeout)
		defer cancel()
		if pushErr := jobRunMetrics.Push(ctx, cfg.PushgatewayURL); pushErr != nil {
			logger.Error(pushErr, "Failed to push metrics", "url", cfg.PushgatewayURL)
		}
	}
	return err
}

// validateArgs checks that exactly one of a file and a SQL statement was given and returns the statement.
func validateArgs(file string, args []string) (string, error) {
	var query string
	if len(args) > 0 {
		query = args[0]
	}
	if file != "" && query != "" {
		return "", util.NewUsageError("cannot use --file and query string at the same time")
	}
	if file == "" && query == "" {
		return "", util.NewUsageError("must specify either --file or query string")
	}
	if file != "" {
		if _, err := util.CheckScriptFile(file); err != nil {
			return "", err
		}
	}
	return query, nil
}

func run(ctx context.Context, session *emrserverless.Session, query, file, logType string, out io.Writer) error {
	if err := session.StartApplication(ctx); err != nil {
		return err
	}

	var result *emrserverless.JobRunResult
	var err error
	if file != "" {
		result, err = session.SubmitFile(ctx, file)
	} else {
		result, err = session.SubmitSQL(ctx, query)
	}
	if err != nil {
		return err
	}

	if !session.Wait {
		fmt.Fprintf(out, "%s\n", result.JobRunID)
		return nil
	}

	log, err := session.FetchDriverLog(ctx, result.JobRunID, logType)
	if err != nil {
		return err
	}
	fmt.Fprint(out, log)
	return nil
}

// watchInterrupt makes handler cancel each job run the session submits.
func watchInterrupt(handler *util.InterruptHandler, session *emrserverless.Session, logger logr.Logger) {
	session.OnSubmit = func(jobRunID string) {
		handler.OnInterrupt(func() { cancelJobRun(session, jobRunID, logger) })
	}
}

func cancelJobRun(session *emrserverless.Session, jobRunID string, logger logr.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), cancelTimeout)
	defer cancel()
	if err := session.CancelJobRun(ctx, jobRunID); err != nil {
		logger.Error(err, "Failed to cancel job run", "jobRunId", jobRunID)
	}
}
