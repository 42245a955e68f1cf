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

package common

// Job run metric names.
const (
	MetricJobRunSubmitCount = "emrss_job_run_submit_count"

	MetricJobRunFailedSubmissionCount = "emrss_job_run_failed_submission_count"

	MetricJobRunSuccessCount = "emrss_job_run_success_count"

	MetricJobRunFailureCount = "emrss_job_run_failure_count"

	MetricJobRunDurationSeconds = "emrss_job_run_duration_seconds"
)

// Job run metric labels.
const (
	MetricLabelApplicationID = "application_id"

	MetricLabelJobKind = "job_kind"

	MetricLabelState = "state"
)

// MetricsPushJobName is the job label used when pushing metrics to a Prometheus Pushgateway.
const MetricsPushJobName = "emrss"
