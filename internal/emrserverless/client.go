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
	"fmt"
	"math"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/emrserverless"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/time/rate"

	"github.com/kubeflow/emr-serverless-sql/pkg/config"
)

// API is the subset of the EMR Serverless client used by a Session.
type API interface {
	StartApplication(ctx context.Context, params *emrserverless.StartApplicationInput, optFns ...func(*emrserverless.Options)) (*emrserverless.StartApplicationOutput, error)
	StartJobRun(ctx context.Context, params *emrserverless.StartJobRunInput, optFns ...func(*emrserverless.Options)) (*emrserverless.StartJobRunOutput, error)
	GetJobRun(ctx context.Context, params *emrserverless.GetJobRunInput, optFns ...func(*emrserverless.Options)) (*emrserverless.GetJobRunOutput, error)
	CancelJobRun(ctx context.Context, params *emrserverless.CancelJobRunInput, optFns ...func(*emrserverless.Options)) (*emrserverless.CancelJobRunOutput, error)
}

// ObjectAPI is the subset of the S3 client used by a Session.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Uploader uploads local files to S3.
type Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// Clients bundles the AWS clients a Session talks to.
type Clients struct {
	API      API
	Objects  ObjectAPI
	Uploader Uploader
}

// NewClients builds the AWS clients from the default credential chain, narrowed by the
// region, profile, static credentials and endpoint in cfg. Calls to EMR Serverless are limited to cfg.APIQPS.
func NewClients(ctx context.Context, cfg *config.Config) (*Clients, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	emrClient := emrserverless.NewFromConfig(awsCfg, func(o *emrserverless.Options) {
		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
		}
	})
	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
			o.UsePathStyle = true
		}
	})

	return &Clients{
		API:      NewThrottledAPI(emrClient, cfg.APIQPS),
		Objects:  s3Client,
		Uploader: manager.NewUploader(s3Client),
	}, nil
}

// throttledAPI waits on a token bucket before every EMR Serverless call.
type throttledAPI struct {
	api     API
	limiter *rate.Limiter
}

// NewThrottledAPI wraps api so that it is called at most qps times per second.
func NewThrottledAPI(api API, qps float64) API {
	burst := int(math.Max(1, math.Floor(qps)))
	return &throttledAPI{
		api:     api,
		limiter: rate.NewLimiter(rate.Limit(qps), burst),
	}
}

func (t *throttledAPI) StartApplication(ctx context.Context, params *emrserverless.StartApplicationInput, optFns ...func(*emrserverless.Options)) (*emrserverless.StartApplicationOutput, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return t.api.StartApplication(ctx, params, optFns...)
}

func (t *throttledAPI) StartJobRun(ctx context.Context, params *emrserverless.StartJobRunInput, optFns ...func(*emrserverless.Options)) (*emrserverless.StartJobRunOutput, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return t.api.StartJobRun(ctx, params, optFns...)
}

func (t *throttledAPI) GetJobRun(ctx context.Context, params *emrserverless.GetJobRunInput, optFns ...func(*emrserverless.Options)) (*emrserverless.GetJobRunOutput, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return t.api.GetJobRun(ctx, params, optFns...)
}

func (t *throttledAPI) CancelJobRun(ctx context.Context, params *emrserverless.CancelJobRunInput, optFns ...func(*emrserverless.Options)) (*emrserverless.CancelJobRunOutput, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return t.api.CancelJobRun(ctx, params, optFns...)
}
