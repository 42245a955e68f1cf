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
	"fmt"
	"sort"
	"strings"

	"github.com/kubeflow/emr-serverless-sql/pkg/common"
)

// ParseSparkConf parses key=value pairs into a map of Spark properties.
func ParseSparkConf(pairs []string) (map[string]string, error) {
	conf := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid Spark configuration %q, expected key=value", pair)
		}
		// Options are joined with spaces into a single sparkSubmitParameters string.
		if strings.ContainsAny(key, " \t\n") || strings.ContainsAny(value, " \t\n") {
			return nil, fmt.Errorf("invalid Spark configuration %q, whitespace is not allowed", pair)
		}
		if key == common.SparkHiveMetastoreClientFactoryClass {
			return nil, fmt.Errorf("invalid Spark configuration %q, %s is always set to %s", pair, key, common.GlueDataCatalogHiveClientFactory)
		}
		conf[key] = value
	}
	return conf, nil
}

// GetSparkConfOptions returns spark-submit --conf options for the given properties, sorted by key.
func GetSparkConfOptions(conf map[string]string) []string {
	keys := make([]string, 0, len(conf))
	for key := range conf {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var options []string
	for _, key := range keys {
		options = append(options, "--conf", fmt.Sprintf("%s=%s", key, conf[key]))
	}
	return options
}
