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
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/emrserverless"
	"github.com/aws/aws-sdk-go-v2/service/emrserverless/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/klauspost/compress/gzip"
	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/kubeflow/emr-serverless-sql/pkg/common"
	"github.com/kubeflow/emr-serverless-sql/pkg/util"
)

// IsTerminal returns whether a job run in the given state will not change state again.
// A CANCELLING job run is treated as terminal.
func IsTerminal(state types.JobRunState) bool {
	switch state {
	case types.JobRunStateSuccess,
		types.JobRunStateFailed,
		types.JobRunStateCancelling,
		types.JobRunStateCancelled:
		return true
	}
	return false
}

// GetJobRun returns the description of a job run.
func (s *Session) GetJobRun(ctx context.Context, jobRunID string) (*types.JobRun, error) {
	out, err := s.client.GetJobRun(ctx, &emrserverless.GetJobRunInput{
		ApplicationId: aws.String(s.ApplicationID),
		JobRunId:      aws.String(jobRunID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get job run %s: %w", jobRunID, err)
	}
	if out.JobRun == nil {
		return nil, fmt.Errorf("job run %s has no description", jobRunID)
	}
	return out.JobRun, nil
}

// WaitForJobRun polls the job run every PollInterval, starting immediately, until it reaches
// a terminal state. It gives up when ctx is done or Timeout elapses. Errors returned by the
// service abort the wait.
func (s *Session) WaitForJobRun(ctx context.Context, jobRunID string) (*types.JobRun, error) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	var jobRun *types.JobRun
	err := wait.PollUntilContextCancel(ctx, s.PollInterval, true, func(ctx context.Context) (bool, error) {
		current, err := s.GetJobRun(ctx, jobRunID)
		if err != nil {
			return false, err
		}
		if jobRun == nil || jobRun.State != current.State {
			s.logger.Info("Job run state", "jobRunId", jobRunID, "state", current.State)
		}
		jobRun = current
		return IsTerminal(current.State), nil
	})
	if err != nil {
		if wait.Interrupted(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			var state string
			if jobRun != nil {
				state = string(jobRun.State)
			}
			return nil, fmt.Errorf("stopped waiting for job run %s in state %s: %w", jobRunID, util.FormatNotAvailable(state), err)
		}
		return nil, err
	}
	return jobRun, nil
}

// CancelJobRun cancels a job run.
func (s *Session) CancelJobRun(ctx context.Context, jobRunID string) error {
	s.logger.Info("Cancelling job run", "jobRunId", jobRunID)
	if _, err := s.client.CancelJobRun(ctx, &emrserverless.CancelJobRunInput{
		ApplicationId: aws.String(s.ApplicationID),
		JobRunId:      aws.String(jobRunID),
	}); err != nil {
		return fmt.Errorf("failed to cancel job run %s: %w", jobRunID, err)
	}
	return nil
}

// DriverLogKey returns the object key of a driver log of a job run.
func (s *Session) DriverLogKey(jobRunID, logType string) string {
	return fmt.Sprintf(common.DriverLogKeyTemplate, s.ApplicationID, jobRunID, common.SparkDriverLogDir, logType)
}

// FetchDriverLog returns the decompressed driver log of a job run. A log that was never
// written or is empty yields an empty string.
func (s *Session) FetchDriverLog(ctx context.Context, jobRunID, logType string) (string, error) {
	key := s.DriverLogKey(jobRunID, logType)
	s.logger.Info("Fetching driver log", "uri", util.S3URI(s.S3Bucket, key))

	out, err := s.objects.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.S3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNoSuchKey(err) {
			s.logger.Info("Driver log not found", "uri", util.S3URI(s.S3Bucket, key))
			return "", nil
		}
		return "", fmt.Errorf("failed to get driver log %s: %w", key, err)
	}
	defer out.Body.Close()

	reader, err := gzip.NewReader(out.Body)
	if errors.Is(err, io.EOF) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to decompress driver log %s: %w", key, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to read driver log %s: %w", key, err)
	}
	return string(data), nil
}

func isNoSuchKey(err error) bool {
	var noSuchKey *s3types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchKey"
}
