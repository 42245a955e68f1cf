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

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/kubeflow/emr-serverless-sql/pkg/common"
	"github.com/kubeflow/emr-serverless-sql/pkg/util"
)

// Config holds the settings of one emrss invocation.
type Config struct {
	ApplicationID string
	JobRoleARN    string
	S3Bucket      string
	Region        string
	Profile       string
	EndpointURL   string
	APIQPS        float64
	Development   bool

	// Static credentials, read from the environment or the config file only.
	AccessKeyID     string
	SecretAccessKey string

	Wait              bool
	PollInterval      time.Duration
	Timeout           time.Duration
	LogType           string
	SparkConf         map[string]string
	CancelOnInterrupt bool

	PushgatewayURL         string
	MetricsPrefix          string
	MetricsDurationBuckets []float64
}

// NewViper returns a viper instance reading EMRSS_* environment variables and, if present,
// the given configuration file or $HOME/.emrss.yaml.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(common.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyAPIQPS, DefaultAPIQPS)
	v.SetDefault(KeyWait, true)
	v.SetDefault(KeyPollInterval, DefaultPollInterval)
	v.SetDefault(KeyLogType, common.DriverLogStdout)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(home)
		}
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return v, nil
}

// Load builds a Config from v.
func Load(v *viper.Viper) (*Config, error) {
	sparkConf, err := ParseSparkConf(v.GetStringSlice(KeySparkConf))
	if err != nil {
		return nil, err
	}

	buckets := util.HistogramBuckets(util.DefaultJobRunDurationBuckets)
	if value := v.GetString(KeyMetricsBuckets); value != "" {
		if err := buckets.Set(value); err != nil {
			return nil, fmt.Errorf("invalid --%s: %v", KeyMetricsBuckets, err)
		}
	}

	bucket := v.GetString(KeyS3Bucket)
	if strings.HasPrefix(bucket, "s3://") {
		var prefix string
		if bucket, prefix, err = util.ParseS3URI(bucket); err != nil {
			return nil, err
		}
		if strings.Trim(prefix, "/") != "" {
			return nil, fmt.Errorf("--%s must name a bucket without a key prefix, got %q", KeyS3Bucket, v.GetString(KeyS3Bucket))
		}
	}

	cfg := &Config{
		ApplicationID:     v.GetString(KeyApplicationID),
		JobRoleARN:        v.GetString(KeyJobRoleARN),
		S3Bucket:          bucket,
		Region:            v.GetString(KeyRegion),
		Profile:           v.GetString(KeyProfile),
		EndpointURL:       v.GetString(KeyEndpointURL),
		AccessKeyID:       v.GetString(KeyAccessKeyID),
		SecretAccessKey:   v.GetString(KeySecretAccessKey),
		APIQPS:            v.GetFloat64(KeyAPIQPS),
		Development:       v.GetBool(KeyDevelopment),
		Wait:              v.GetBool(KeyWait),
		PollInterval:      v.GetDuration(KeyPollInterval),
		Timeout:           v.GetDuration(KeyTimeout),
		LogType:           v.GetString(KeyLogType),
		SparkConf:         sparkConf,
		CancelOnInterrupt: v.GetBool(KeyCancelOnInterrupt),

		PushgatewayURL:         v.GetString(KeyPushgatewayURL),
		MetricsPrefix:          v.GetString(KeyMetricsPrefix),
		MetricsDurationBuckets: buckets,
	}
	return cfg, nil
}

// Validate checks that the given keys are set and that the remaining values are usable.
func (c *Config) Validate(required ...string) error {
	values := map[string]string{
		KeyApplicationID: c.ApplicationID,
		KeyJobRoleARN:    c.JobRoleARN,
		KeyS3Bucket:      c.S3Bucket,
		KeyRegion:        c.Region,
	}

	var missing []string
	for _, key := range required {
		if values[key] == "" {
			missing = append(missing, "--"+key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required option(s): %s", strings.Join(missing, ", "))
	}

	if (c.AccessKeyID == "") != (c.SecretAccessKey == "") {
		return fmt.Errorf("%s and %s must be set together", KeyAccessKeyID, KeySecretAccessKey)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("--%s must be positive, got %s", KeyPollInterval, c.PollInterval)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("--%s must not be negative, got %s", KeyTimeout, c.Timeout)
	}
	if c.APIQPS <= 0 {
		return fmt.Errorf("--%s must be positive, got %v", KeyAPIQPS, c.APIQPS)
	}
	switch c.LogType {
	case common.DriverLogStdout, common.DriverLogStderr:
	default:
		return fmt.Errorf("--%s must be %s or %s, got %q", KeyLogType, common.DriverLogStdout, common.DriverLogStderr, c.LogType)
	}
	return nil
}
