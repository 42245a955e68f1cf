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

package util_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kubeflow/emr-serverless-sql/pkg/util"
)

var _ = Describe("S3URI", func() {
	It("Should join bucket and key", func() {
		Expect(util.S3URI("bucket", "tmp/query.sql")).To(Equal("s3://bucket/tmp/query.sql"))
		Expect(util.S3URI("bucket", "/logs")).To(Equal("s3://bucket/logs"))
	})
})

var _ = Describe("ParseS3URI", func() {
	It("Should split bucket and key", func() {
		bucket, key, err := util.ParseS3URI("s3://bucket/tmp/query.sql")
		Expect(err).NotTo(HaveOccurred())
		Expect(bucket).To(Equal("bucket"))
		Expect(key).To(Equal("tmp/query.sql"))
	})

	It("Should reject other schemes", func() {
		_, _, err := util.ParseS3URI("https://bucket/key")
		Expect(err).To(HaveOccurred())
	})

	It("Should reject URIs without a bucket", func() {
		_, _, err := util.ParseS3URI("s3:///key")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("CheckScriptFile", func() {
	var dir string

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "emrss-util-")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(os.RemoveAll, dir)
	})

	DescribeTable("Should accept supported extensions",
		func(name string, expected string) {
			path := filepath.Join(dir, name)
			Expect(os.WriteFile(path, []byte("{}"), 0o644)).To(Succeed())
			ext, err := util.CheckScriptFile(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(ext).To(Equal(expected))
		},
		Entry("sql", "query.sql", ".sql"),
		Entry("notebook", "report.ipynb", ".ipynb"),
		Entry("upper case", "QUERY.SQL", ".sql"),
	)

	It("Should reject other extensions", func() {
		path := filepath.Join(dir, "job.py")
		Expect(os.WriteFile(path, []byte("print(1)"), 0o644)).To(Succeed())
		_, err := util.CheckScriptFile(path)
		Expect(err).To(MatchError(fmt.Sprintf("file %q must end in .sql or .ipynb", path)))
		Expect(util.IsUsageError(err)).To(BeTrue())
	})

	It("Should reject missing files", func() {
		_, err := util.CheckScriptFile(filepath.Join(dir, "missing.sql"))
		Expect(err).To(HaveOccurred())
		Expect(util.IsUsageError(err)).To(BeTrue())
	})

	It("Should reject directories", func() {
		_, err := util.CheckScriptFile(dir)
		Expect(err).To(MatchError(ContainSubstring("is a directory")))
		Expect(util.IsUsageError(err)).To(BeTrue())
	})
})

var _ = Describe("ScriptKey", func() {
	It("Should place scripts under tmp", func() {
		Expect(util.ScriptKey("/home/user/queries/daily.sql")).To(Equal("tmp/daily.sql"))
	})

	It("Should upload notebooks as Python scripts", func() {
		Expect(util.ScriptKey("notebooks/report.ipynb")).To(Equal("tmp/report.py"))
	})
})

var _ = Describe("IsUsageError", func() {
	It("Should see through wrapping", func() {
		err := fmt.Errorf("failed: %w", util.NewUsageError("bad %s", "flag"))
		Expect(util.IsUsageError(err)).To(BeTrue())
		Expect(err.Error()).To(Equal("failed: bad flag"))
	})

	It("Should not match other errors", func() {
		Expect(util.IsUsageError(errors.New("boom"))).To(BeFalse())
	})
})

var _ = Describe("Format", func() {
	It("Should return N.A. for unknown values", func() {
		Expect(util.GetSinceTime(nil)).To(Equal("N.A."))
		Expect(util.FormatSeconds(nil)).To(Equal("N.A."))
		Expect(util.FormatNotAvailable("")).To(Equal("N.A."))
		Expect(util.FormatNotAvailable("RUNNING")).To(Equal("RUNNING"))
	})

	It("Should format durations", func() {
		created := time.Now().Add(-90 * time.Second)
		Expect(util.GetSinceTime(&created)).To(Equal("1m"))
		seconds := int32(3600)
		Expect(util.FormatSeconds(&seconds)).To(Equal("60m"))
	})
})

var _ = Describe("CreateValidMetricNameLabel", func() {
	It("Should replace invalid characters", func() {
		Expect(util.CreateValidMetricNameLabel("team-a.", "emrss_job_run_submit_count")).To(Equal("team_a_emrss_job_run_submit_count"))
		Expect(util.CreateValidMetricNameLabel("", "emrss_job_run_submit_count")).To(Equal("emrss_job_run_submit_count"))
	})
})

var _ = Describe("HistogramBuckets", func() {
	It("Should parse comma separated boundaries", func() {
		var buckets util.HistogramBuckets
		Expect(buckets.Set("1, 2.5,10")).To(Succeed())
		Expect([]float64(buckets)).To(Equal([]float64{1, 2.5, 10}))
		Expect(buckets.String()).To(Equal("1,2.5,10"))
		Expect(buckets.Type()).To(Equal("histogramBuckets"))
	})

	It("Should reject invalid boundaries", func() {
		var buckets util.HistogramBuckets
		Expect(buckets.Set("1,x")).NotTo(Succeed())
		Expect(buckets.Set("10,5")).To(MatchError(ContainSubstring("must be increasing")))
	})
})

var _ = Describe("InterruptHandler", func() {
	It("Should not run cleanup without a signal", func() {
		var cleaned atomic.Bool
		handler := util.NewInterruptHandler(func(os.Signal) {}, func() { cleaned.Store(true) })

		err := handler.Run(context.Background(), func(ctx context.Context) error {
			return ctx.Err()
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(cleaned.Load()).To(BeFalse())
	})

	It("Should run cleanup once, then the final handler", func() {
		var calls []string
		handler := util.NewInterruptHandler(func(s os.Signal) { calls = append(calls, "final "+s.String()) })
		handler.OnInterrupt(func() { calls = append(calls, "cleanup") })

		handler.Signal(syscall.SIGTERM)
		handler.Signal(syscall.SIGINT)
		Expect(calls).To(Equal([]string{"cleanup", "final terminated"}))
	})

	It("Should cancel the context when a signal arrives", func() {
		var cleaned atomic.Bool
		handler := util.NewInterruptHandler(func(os.Signal) {})

		err := handler.Run(context.Background(), func(ctx context.Context) error {
			handler.OnInterrupt(func() { cleaned.Store(true) })
			Expect(syscall.Kill(syscall.Getpid(), syscall.SIGHUP)).To(Succeed())
			<-ctx.Done()
			return ctx.Err()
		})
		Expect(err).To(MatchError(context.Canceled))
		Expect(cleaned.Load()).To(BeTrue())
	})
})
