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

package emrserverless

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"
	"unicode/utf8"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/emrserverless"
	"github.com/aws/aws-sdk-go-v2/service/emrserverless/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"k8s.io/utils/clock"

	"github.com/kubeflow/emr-serverless-sql/internal/metrics"
	"github.com/kubeflow/emr-serverless-sql/internal/notebook"
	"github.com/kubeflow/emr-serverless-sql/internal/sqlscript"
	"github.com/kubeflow/emr-serverless-sql/pkg/common"
	"github.com/kubeflow/emr-serverless-sql/pkg/config"
	"github.com/kubeflow/emr-serverless-sql/pkg/util"
)

// Options configures a Session.
type Options struct {
	ApplicationID string
	JobRoleARN    string
	S3Bucket      string
	SparkConf     map[string]string

	// Wait makes the submit operations block until the job run reaches a terminal state.
	Wait         bool
	PollInterval time.Duration
	// Timeout bounds the wait. Zero means no timeout.
	Timeout time.Duration

	// OnSubmit, if set, is called with the job run ID right after a job run is started.
	OnSubmit func(jobRunID string)
}

// NewOptions returns the session options carried by cfg.
func NewOptions(cfg *config.Config) Options {
	return Options{
		ApplicationID: cfg.ApplicationID,
		JobRoleARN:    cfg.JobRoleARN,
		S3Bucket:      cfg.S3Bucket,
		SparkConf:     cfg.SparkConf,
		Wait:          cfg.Wait,
		PollInterval:  cfg.PollInterval,
		Timeout:       cfg.Timeout,
	}
}

// Session submits job runs to one EMR Serverless application and reads their logs
// from one S3 bucket.
type Session struct {
	Options

	client   API
	objects  ObjectAPI
	uploader Uploader

	logger  logr.Logger
	clock   clock.PassiveClock
	metrics *metrics.JobRunMetrics

	newClientToken func() string
}

// SessionOption customizes a Session.
type SessionOption func(*Session)

// WithLogger sets the logger of the session.
func WithLogger(logger logr.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithClock sets the clock used to measure job run durations.
func WithClock(c clock.PassiveClock) SessionOption {
	return func(s *Session) {
		s.clock = c
	}
}

// WithMetrics records job run metrics on m.
func WithMetrics(m *metrics.JobRunMetrics) SessionOption {
	return func(s *Session) {
		s.metrics = m
	}
}

// WithClientTokenFunc sets the generator of StartJobRun client tokens.
func WithClientTokenFunc(f func() string) SessionOption {
	return func(s *Session) {
		s.newClientToken = f
	}
}

// NewSession creates a new Session.
func NewSession(opts Options, clients *Clients, sessionOpts ...SessionOption) *Session {
	s := &Session{
		Options:        opts,
		client:         clients.API,
		objects:        clients.Objects,
		uploader:       clients.Uploader,
		logger:         logr.Discard(),
		clock:          clock.RealClock{},
		newClientToken: uuid.NewString,
	}
	for _, opt := range sessionOpts {
		opt(s)
	}
	return s
}

// JobRunResult describes a submitted job run. State is empty unless the session waited for it.
type JobRunResult struct {
	JobRunID     string
	Name         string
	State        types.JobRunState
	StateDetails string
	Duration     time.Duration
}

// Succeeded returns whether the job run completed successfully.
func (r *JobRunResult) Succeeded() bool {
	return r.State == types.JobRunStateSuccess
}

// StartApplication starts the application. Starting an application that is already started is a no-op.
func (s *Session) StartApplication(ctx context.Context) error {
	s.logger.Info("Starting application", "applicationId", s.ApplicationID)
	if _, err := s.client.StartApplication(ctx, &emrserverless.StartApplicationInput{
		ApplicationId: aws.String(s.ApplicationID),
	}); err != nil {
		return fmt.Errorf("failed to start application %s: %w", s.ApplicationID, err)
	}
	return nil
}

// SubmitSQL submits a SQL statement. Statements shorter than common.MaxEntryPointLength
// characters are passed to the spark-sql driver directly; longer ones are wrapped into a PySpark script
// that is put to the bucket first.
func (s *Session) SubmitSQL(ctx context.Context, query string) (*JobRunResult, error) {
	if utf8.RuneCountInString(query) < common.MaxEntryPointLength {
		return s.submitJobRun(ctx, newSQLStatementSubmission(query, s.SparkConf))
	}

	script, err := sqlscript.Render(query)
	if err != nil {
		return nil, err
	}
	uri, err := s.putObject(ctx, common.SQLTemplateKey, script)
	if err != nil {
		return nil, err
	}
	return s.submitJobRun(ctx, newPySparkSubmission(common.JobNameSQLRunner, uri, s.SparkConf))
}

// SubmitSQLFile uploads a local .sql file and runs it with the spark-sql driver.
func (s *Session) SubmitSQLFile(ctx context.Context, path string) (*JobRunResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	uri, err := s.upload(ctx, util.ScriptKey(path), file)
	if err != nil {
		return nil, err
	}
	return s.submitJobRun(ctx, newSQLFileSubmission(uri, s.SparkConf))
}

// SubmitNotebookFile converts a local .ipynb notebook to a Python script, uploads the
// script and runs it.
func (s *Session) SubmitNotebookFile(ctx context.Context, path string) (*JobRunResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	script, err := notebook.Convert(file)
	if err != nil {
		return nil, fmt.Errorf("failed to convert notebook %s: %w", path, err)
	}
	uri, err := s.upload(ctx, util.ScriptKey(path), bytes.NewReader(script))
	if err != nil {
		return nil, err
	}
	return s.submitJobRun(ctx, newPySparkSubmission(common.JobNameNotebookRunner, uri, s.SparkConf))
}

// SubmitFile submits a .sql or .ipynb file according to its extension.
func (s *Session) SubmitFile(ctx context.Context, path string) (*JobRunResult, error) {
	ext, err := util.CheckScriptFile(path)
	if err != nil {
		return nil, err
	}
	if ext == common.ExtensionNotebook {
		return s.SubmitNotebookFile(ctx, path)
	}
	return s.SubmitSQLFile(ctx, path)
}

func (s *Session) submitJobRun(ctx context.Context, sub *submission) (*JobRunResult, error) {
	driver, err := sub.jobDriver()
	if err != nil {
		return nil, fmt.Errorf("failed to build job driver: %w", err)
	}

	out, err := s.client.StartJobRun(ctx, &emrserverless.StartJobRunInput{
		ApplicationId:    aws.String(s.ApplicationID),
		ClientToken:      aws.String(s.newClientToken()),
		ExecutionRoleArn: aws.String(s.JobRoleARN),
		Name:             aws.String(sub.name),
		JobDriver:        driver,
		ConfigurationOverrides: &types.ConfigurationOverrides{
			MonitoringConfiguration: &types.MonitoringConfiguration{
				S3MonitoringConfiguration: &types.S3MonitoringConfiguration{
					LogUri: aws.String(util.S3URI(s.S3Bucket, common.LogPrefix)),
				},
			},
		},
	})
	if err != nil {
		if s.metrics != nil {
			s.metrics.HandleFailedSubmission(s.ApplicationID, sub.name)
		}
		return nil, fmt.Errorf("failed to start job run: %w", err)
	}

	result := &JobRunResult{
		JobRunID: aws.ToString(out.JobRunId),
		Name:     sub.name,
	}
	s.logger.Info("Job submitted", "jobRunId", result.JobRunID, "name", sub.name)
	if s.metrics != nil {
		s.metrics.HandleSubmit(s.ApplicationID, sub.name)
	}
	if s.OnSubmit != nil {
		s.OnSubmit(result.JobRunID)
	}

	if !s.Wait {
		return result, nil
	}

	start := s.clock.Now()
	jobRun, err := s.WaitForJobRun(ctx, result.JobRunID)
	if err != nil {
		return result, err
	}
	result.State = jobRun.State
	result.StateDetails = aws.ToString(jobRun.StateDetails)
	result.Duration = s.clock.Since(start)
	s.logger.Info("Job run finished", "jobRunId", result.JobRunID, "state", result.State, "duration", result.Duration)
	if s.metrics != nil {
		s.metrics.HandleCompletion(s.ApplicationID, sub.name, string(result.State), result.Duration)
	}
	return result, nil
}

// putObject writes data to key in a single request and returns the object URI.
func (s *Session) putObject(ctx context.Context, key string, data []byte) (string, error) {
	if _, err := s.objects.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.S3Bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}); err != nil {
		return "", &UploadError{Key: key, Err: err}
	}
	uri := util.S3URI(s.S3Bucket, key)
	s.logger.V(1).Info("Put script", "uri", uri)
	return uri, nil
}

// upload streams body to key and returns the object URI.
func (s *Session) upload(ctx context.Context, key string, body io.Reader) (string, error) {
	if _, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.S3Bucket),
		Key:    aws.String(key),
		Body:   body,
	}); err != nil {
		return "", &UploadError{Key: key, Err: err}
	}
	uri := util.S3URI(s.S3Bucket, key)
	s.logger.Info("Uploaded script", "uri", uri)
	return uri, nil
}
