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
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/emrserverless/types"

	"github.com/kubeflow/emr-serverless-sql/pkg/common"
	"github.com/kubeflow/emr-serverless-sql/pkg/config"
)

// submission includes information of a job run to be submitted.
type submission struct {
	// name is the job name, which is also the job kind in metrics.
	name string
	// entryPoint is either a SQL statement or the S3 URI of a script.
	entryPoint string
	// mainClass is set for spark-sql runs only.
	mainClass string
	// sqlOption tells the spark-sql driver how to read the entry point.
	sqlOption string
	sparkConf map[string]string
}

func newSQLStatementSubmission(query string, sparkConf map[string]string) *submission {
	return &submission{
		name:       common.JobNameSQLRunner,
		entryPoint: query,
		mainClass:  common.SparkSQLCLIDriverClass,
		sqlOption:  common.SparkSQLExecuteOption,
		sparkConf:  sparkConf,
	}
}

func newSQLFileSubmission(uri string, sparkConf map[string]string) *submission {
	return &submission{
		name:       common.JobNameSQLRunner,
		entryPoint: uri,
		mainClass:  common.SparkSQLCLIDriverClass,
		sqlOption:  common.SparkSQLFileOption,
		sparkConf:  sparkConf,
	}
}

func newPySparkSubmission(name, uri string, sparkConf map[string]string) *submission {
	return &submission{
		name:       name,
		entryPoint: uri,
		sparkConf:  sparkConf,
	}
}

// jobDriver builds the Spark submit job driver of the submission.
func (s *submission) jobDriver() (types.JobDriver, error) {
	params, err := buildSparkSubmitParameters(s)
	if err != nil {
		return nil, err
	}
	return &types.JobDriverMemberSparkSubmit{
		Value: types.SparkSubmit{
			EntryPoint:            aws.String(s.entryPoint),
			SparkSubmitParameters: aws.String(params),
		},
	}, nil
}

// buildSparkSubmitParameters builds the sparkSubmitParameters string passed to EMR Serverless.
func buildSparkSubmitParameters(s *submission) (string, error) {
	optionFuncs := []sparkSubmitOptionFunc{
		glueCatalogOption,
		sparkConfOption,
		mainClassOption,
		sqlOption,
	}

	var args []string
	for _, optionFunc := range optionFuncs {
		option, err := optionFunc(s)
		if err != nil {
			return "", err
		}
		args = append(args, option...)
	}

	return strings.Join(args, " "), nil
}

type sparkSubmitOptionFunc func(*submission) ([]string, error)

func glueCatalogOption(_ *submission) ([]string, error) {
	return []string{"--conf", fmt.Sprintf("%s=%s", common.SparkHiveMetastoreClientFactoryClass, common.GlueDataCatalogHiveClientFactory)}, nil
}

func sparkConfOption(s *submission) ([]string, error) {
	return config.GetSparkConfOptions(s.sparkConf), nil
}

func mainClassOption(s *submission) ([]string, error) {
	if s.mainClass == "" {
		return nil, nil
	}
	return []string{"--class", s.mainClass}, nil
}

func sqlOption(s *submission) ([]string, error) {
	if s.sqlOption == "" {
		return nil, nil
	}
	return []string{s.sqlOption}, nil
}
