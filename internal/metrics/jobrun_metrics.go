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

package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/kubeflow/emr-serverless-sql/pkg/common"
	"github.com/kubeflow/emr-serverless-sql/pkg/util"
)

// JobRunMetrics records the outcome of the job runs submitted by one emrss invocation.
type JobRunMetrics struct {
	prefix   string
	registry *prometheus.Registry
	logger   logr.Logger

	submitCount           *prometheus.CounterVec
	failedSubmissionCount *prometheus.CounterVec
	successCount          *prometheus.CounterVec
	failureCount          *prometheus.CounterVec
	durationSeconds       *prometheus.HistogramVec
}

// NewJobRunMetrics creates the job run metrics, naming each one with the given prefix.
func NewJobRunMetrics(prefix string, durationBuckets []float64, logger logr.Logger) *JobRunMetrics {
	labels := []string{common.MetricLabelApplicationID, common.MetricLabelJobKind}
	stateLabels := append(append([]string{}, labels...), common.MetricLabelState)

	return &JobRunMetrics{
		prefix:   prefix,
		registry: prometheus.NewRegistry(),
		logger:   logger.WithName("metrics"),

		submitCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: util.CreateValidMetricNameLabel(prefix, common.MetricJobRunSubmitCount),
				Help: "Total number of submitted job runs",
			},
			labels,
		),
		failedSubmissionCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: util.CreateValidMetricNameLabel(prefix, common.MetricJobRunFailedSubmissionCount),
				Help: "Total number of failed job run submissions",
			},
			labels,
		),
		successCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: util.CreateValidMetricNameLabel(prefix, common.MetricJobRunSuccessCount),
				Help: "Total number of successful job runs",
			},
			labels,
		),
		failureCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: util.CreateValidMetricNameLabel(prefix, common.MetricJobRunFailureCount),
				Help: "Total number of job runs that ended in a state other than SUCCESS",
			},
			stateLabels,
		),
		durationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    util.CreateValidMetricNameLabel(prefix, common.MetricJobRunDurationSeconds),
				Help:    "Time from job run submission until a terminal state was observed",
				Buckets: durationBuckets,
			},
			stateLabels,
		),
	}
}

// Register registers the collectors on the metrics' own registry.
func (m *JobRunMetrics) Register() error {
	collectors := map[string]prometheus.Collector{
		common.MetricJobRunSubmitCount:           m.submitCount,
		common.MetricJobRunFailedSubmissionCount: m.failedSubmissionCount,
		common.MetricJobRunSuccessCount:          m.successCount,
		common.MetricJobRunFailureCount:          m.failureCount,
		common.MetricJobRunDurationSeconds:       m.durationSeconds,
	}
	for name, collector := range collectors {
		if err := m.registry.Register(collector); err != nil {
			return fmt.Errorf("failed to register job run metric %s: %w", name, err)
		}
	}
	return nil
}

// Gatherer returns the registry holding the job run metrics.
func (m *JobRunMetrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// HandleSubmit records a started job run.
func (m *JobRunMetrics) HandleSubmit(applicationID, kind string) {
	m.submitCount.WithLabelValues(applicationID, kind).Inc()
	m.logger.V(1).Info("Increased job run submit count", "applicationId", applicationID, "kind", kind)
}

// HandleFailedSubmission records a rejected StartJobRun call.
func (m *JobRunMetrics) HandleFailedSubmission(applicationID, kind string) {
	m.failedSubmissionCount.WithLabelValues(applicationID, kind).Inc()
	m.logger.V(1).Info("Increased job run failed submission count", "applicationId", applicationID, "kind", kind)
}

// HandleCompletion records a job run that reached the given terminal state after duration.
func (m *JobRunMetrics) HandleCompletion(applicationID, kind, state string, duration time.Duration) {
	if state == common.JobRunStateSuccess {
		m.successCount.WithLabelValues(applicationID, kind).Inc()
	} else {
		m.failureCount.WithLabelValues(applicationID, kind, state).Inc()
	}
	m.durationSeconds.WithLabelValues(applicationID, kind, state).Observe(duration.Seconds())
	m.logger.V(1).Info("Observed job run completion", "applicationId", applicationID, "kind", kind, "state", state, "seconds", duration.Seconds())
}

// Push sends the metrics to a Prometheus Pushgateway. The application ID is already a
// label of every metric, so it cannot also be part of the grouping key.
func (m *JobRunMetrics) Push(ctx context.Context, url string) error {
	pusher := push.New(url, common.MetricsPushJobName).Gatherer(m.registry)
	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", url, err)
	}
	m.logger.Info("Pushed job run metrics", "url", url)
	return nil
}
