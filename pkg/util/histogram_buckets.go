/*
Copyright 2018 Google LLC

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
	"fmt"
	"strconv"
	"strings"
)

// DefaultJobRunDurationBuckets are the job run duration histogram buckets, in seconds.
var DefaultJobRunDurationBuckets = []float64{30, 60, 120, 300, 600, 1200, 1800, 3600, 7200}

// HistogramBuckets is a pflag.Value holding comma separated histogram bucket boundaries.
type HistogramBuckets []float64

func (hb *HistogramBuckets) String() string {
	boundaries := make([]string, 0, len(*hb))
	for _, boundary := range *hb {
		boundaries = append(boundaries, strconv.FormatFloat(boundary, 'f', -1, 64))
	}
	return strings.Join(boundaries, ",")
}

func (hb *HistogramBuckets) Set(value string) error {
	var buckets HistogramBuckets
	for _, boundaryStr := range strings.Split(value, ",") {
		boundary, err := strconv.ParseFloat(strings.TrimSpace(boundaryStr), 64)
		if err != nil {
			return fmt.Errorf("invalid histogram bucket %q: %v", boundaryStr, err)
		}
		if len(buckets) > 0 && boundary <= buckets[len(buckets)-1] {
			return fmt.Errorf("histogram buckets must be increasing, got %s", value)
		}
		buckets = append(buckets, boundary)
	}
	*hb = buckets
	return nil
}

func (hb *HistogramBuckets) Type() string {
	return "histogramBuckets"
}
