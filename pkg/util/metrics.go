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

package util

import (
	"strings"
)

// CreateValidMetricNameLabel joins prefix and name into a valid Prometheus metric or label name.
func CreateValidMetricNameLabel(prefix, name string) string {
	// "-" and "." aren't valid characters for prometheus metric names
	return strings.NewReplacer("-", "_", ".", "_").Replace(prefix + name)
}
