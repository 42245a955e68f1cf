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

package config

import "time"

// Configuration keys. They double as flag names and, upper-cased with "-" replaced by "_"
// and prefixed with EMRSS_, as environment variable names.
const (
	KeyConfig            = "config"
	KeyApplicationID     = "application-id"
	KeyJobRoleARN        = "job-role-arn"
	KeyS3Bucket          = "s3-bucket"
	KeyRegion            = "region"
	KeyProfile           = "profile"
	KeyEndpointURL       = "endpoint-url"
	KeyAccessKeyID       = "access-key-id"
	KeySecretAccessKey   = "secret-access-key"
	KeyAPIQPS            = "api-qps"
	KeyDevelopment       = "development"
	KeyWait              = "wait"
	KeyPollInterval      = "poll-interval"
	KeyTimeout           = "timeout"
	KeyLogType           = "log-type"
	KeySparkConf         = "conf"
	KeyCancelOnInterrupt = "cancel-on-interrupt"
	KeyPushgatewayURL    = "pushgateway-url"
	KeyMetricsPrefix     = "metrics-prefix"
	KeyMetricsBuckets    = "metrics-duration-buckets"
)

// Defaults.
const (
	DefaultPollInterval = 5 * time.Second
	DefaultAPIQPS       = 5.0
	DefaultConfigName   = ".emrss"
)
