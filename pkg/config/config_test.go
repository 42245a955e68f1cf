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

package config_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kubeflow/emr-serverless-sql/pkg/config"
	"github.com/kubeflow/emr-serverless-sql/pkg/util"
)

func tempHome() string {
	dir, err := os.MkdirTemp("", "emrss-home-")
	Expect(err).NotTo(HaveOccurred())
	DeferCleanup(os.RemoveAll, dir)

	home := os.Getenv("HOME")
	os.Setenv("HOME", dir)
	DeferCleanup(os.Setenv, "HOME", home)
	return dir
}

func validConfig() *config.Config {
	return &config.Config{
		ApplicationID: "00fabcdefg123456",
		JobRoleARN:    "arn:aws:iam::123456789012:role/job",
		S3Bucket:      "bucket",
		APIQPS:        config.DefaultAPIQPS,
		PollInterval:  config.DefaultPollInterval,
		LogType:       "stdout",
	}
}

var _ = Describe("NewViper", func() {
	var home string

	BeforeEach(func() {
		home = tempHome()
	})

	AfterEach(func() {
		os.Unsetenv("EMRSS_APPLICATION_ID")
		os.Unsetenv("EMRSS_POLL_INTERVAL")
		os.Unsetenv("EMRSS_CONF")
	})

	Context("Without a config file", func() {
		It("Should return the defaults", func() {
			v, err := config.NewViper("")
			Expect(err).NotTo(HaveOccurred())

			cfg, err := config.Load(v)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.APIQPS).To(Equal(config.DefaultAPIQPS))
			Expect(cfg.Wait).To(BeTrue())
			Expect(cfg.PollInterval).To(Equal(5 * time.Second))
			Expect(cfg.Timeout).To(BeZero())
			Expect(cfg.LogType).To(Equal("stdout"))
			Expect(cfg.SparkConf).To(BeEmpty())
			Expect(cfg.MetricsDurationBuckets).To(Equal(util.DefaultJobRunDurationBuckets))
		})
	})

	Context("With EMRSS_ environment variables", func() {
		It("Should read them", func() {
			os.Setenv("EMRSS_APPLICATION_ID", "app-from-env")
			os.Setenv("EMRSS_POLL_INTERVAL", "1m")
			os.Setenv("EMRSS_CONF", "spark.executor.memory=4g spark.driver.cores=2")

			v, err := config.NewViper("")
			Expect(err).NotTo(HaveOccurred())

			cfg, err := config.Load(v)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.ApplicationID).To(Equal("app-from-env"))
			Expect(cfg.PollInterval).To(Equal(time.Minute))
			Expect(cfg.SparkConf).To(Equal(map[string]string{
				"spark.executor.memory": "4g",
				"spark.driver.cores":    "2",
			}))
		})
	})

	Context("With $HOME/.emrss.yaml", func() {
		It("Should read it", func() {
			content := []byte("application-id: app-from-file\ns3-bucket: s3://data-bucket/\ntimeout: 30m\nwait: false\n")
			Expect(os.WriteFile(filepath.Join(home, ".emrss.yaml"), content, 0o600)).To(Succeed())

			v, err := config.NewViper("")
			Expect(err).NotTo(HaveOccurred())

			cfg, err := config.Load(v)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.ApplicationID).To(Equal("app-from-file"))
			Expect(cfg.S3Bucket).To(Equal("data-bucket"))
			Expect(cfg.Timeout).To(Equal(30 * time.Minute))
			Expect(cfg.Wait).To(BeFalse())
		})

		It("Should prefer environment variables", func() {
			content := []byte("application-id: app-from-file\n")
			Expect(os.WriteFile(filepath.Join(home, ".emrss.yaml"), content, 0o600)).To(Succeed())
			os.Setenv("EMRSS_APPLICATION_ID", "app-from-env")

			v, err := config.NewViper("")
			Expect(err).NotTo(HaveOccurred())
			Expect(v.GetString(config.KeyApplicationID)).To(Equal("app-from-env"))
		})
	})

	Context("With an s3:// bucket URI", func() {
		AfterEach(func() {
			os.Unsetenv("EMRSS_S3_BUCKET")
		})

		It("Should reject a key prefix", func() {
			os.Setenv("EMRSS_S3_BUCKET", "s3://data-bucket/some/prefix")

			v, err := config.NewViper("")
			Expect(err).NotTo(HaveOccurred())

			_, err = config.Load(v)
			Expect(err).To(MatchError(ContainSubstring("--s3-bucket must name a bucket without a key prefix")))
		})

		It("Should accept a bucket URI without a trailing slash", func() {
			os.Setenv("EMRSS_S3_BUCKET", "s3://data-bucket")

			v, err := config.NewViper("")
			Expect(err).NotTo(HaveOccurred())

			cfg, err := config.Load(v)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.S3Bucket).To(Equal("data-bucket"))
		})
	})

	Context("With an explicit config file", func() {
		It("Should read it", func() {
			path := filepath.Join(home, "emrss.yaml")
			content := []byte("job-role-arn: arn:aws:iam::123456789012:role/job\nmetrics-duration-buckets: 10,20,40\n")
			Expect(os.WriteFile(path, content, 0o600)).To(Succeed())

			v, err := config.NewViper(path)
			Expect(err).NotTo(HaveOccurred())

			cfg, err := config.Load(v)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.JobRoleARN).To(Equal("arn:aws:iam::123456789012:role/job"))
			Expect(cfg.MetricsDurationBuckets).To(Equal([]float64{10, 20, 40}))
		})

		It("Should fail if it does not exist", func() {
			_, err := config.NewViper(filepath.Join(home, "missing.yaml"))
			Expect(err).To(HaveOccurred())
		})
	})
})

var _ = Describe("Validate", func() {
	It("Should accept a complete config", func() {
		Expect(validConfig().Validate(config.KeyApplicationID, config.KeyJobRoleARN, config.KeyS3Bucket)).To(Succeed())
	})

	It("Should report all missing options", func() {
		cfg := validConfig()
		cfg.JobRoleARN = ""
		cfg.S3Bucket = ""
		err := cfg.Validate(config.KeyApplicationID, config.KeyJobRoleARN, config.KeyS3Bucket)
		Expect(err).To(MatchError("missing required option(s): --job-role-arn, --s3-bucket"))
	})

	It("Should only check the given options", func() {
		cfg := validConfig()
		cfg.JobRoleARN = ""
		Expect(cfg.Validate(config.KeyApplicationID)).To(Succeed())
	})

	DescribeTable("Should reject invalid values",
		func(mutate func(*config.Config), expected string) {
			cfg := validConfig()
			mutate(cfg)
			Expect(cfg.Validate()).To(MatchError(ContainSubstring(expected)))
		},
		Entry("zero poll interval", func(c *config.Config) { c.PollInterval = 0 }, "--poll-interval must be positive"),
		Entry("negative timeout", func(c *config.Config) { c.Timeout = -time.Second }, "--timeout must not be negative"),
		Entry("zero api qps", func(c *config.Config) { c.APIQPS = 0 }, "--api-qps must be positive"),
		Entry("unknown log type", func(c *config.Config) { c.LogType = "syslog" }, "--log-type must be stdout or stderr"),
		Entry("access key without secret", func(c *config.Config) { c.AccessKeyID = "AKIA" }, "must be set together"),
	)
})

var _ = Describe("ParseSparkConf", func() {
	It("Should parse key=value pairs", func() {
		conf, err := config.ParseSparkConf([]string{"spark.executor.memory=4g", "spark.sql.shuffle.partitions=200", "spark.opts=a=b"})
		Expect(err).NotTo(HaveOccurred())
		Expect(conf).To(Equal(map[string]string{
			"spark.executor.memory":        "4g",
			"spark.sql.shuffle.partitions": "200",
			"spark.opts":                   "a=b",
		}))
	})

	DescribeTable("Should reject invalid pairs",
		func(pair string, expected string) {
			_, err := config.ParseSparkConf([]string{pair})
			Expect(err).To(MatchError(ContainSubstring(expected)))
		},
		Entry("no separator", "spark.executor.memory", "expected key=value"),
		Entry("empty key", "=4g", "expected key=value"),
		Entry("whitespace", "spark.driver.extraJavaOptions=-Da=1 -Db=2", "whitespace is not allowed"),
		Entry("metastore override", "spark.hadoop.hive.metastore.client.factory.class=x", "is always set to"),
	)
})

var _ = Describe("GetSparkConfOptions", func() {
	It("Should return sorted --conf options", func() {
		options := config.GetSparkConfOptions(map[string]string{
			"spark.executor.memory": "4g",
			"spark.driver.cores":    "2",
		})
		Expect(options).To(Equal([]string{
			"--conf", "spark.driver.cores=2",
			"--conf", "spark.executor.memory=4g",
		}))
	})

	It("Should return nothing for no properties", func() {
		Expect(config.GetSparkConfOptions(nil)).To(BeEmpty())
	})
})
