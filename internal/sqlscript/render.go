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

package sqlscript

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

const pysparkTemplate = `from pyspark.sql import SparkSession

spark = (
    SparkSession.builder.enableHiveSupport()
    .appName("{{ .AppName }}")
    .getOrCreate()
)

df = spark.sql("""{{ .Query }}""")
df.show()
`

// DefaultAppName is the Spark application name used by the rendered script.
const DefaultAppName = "Python Spark SQL basic example"

var scriptTemplate = template.Must(template.New("pyspark").Parse(pysparkTemplate))

// Render returns a PySpark script that runs query with Hive support and shows the result.
func Render(query string) ([]byte, error) {
	var buf bytes.Buffer
	data := struct {
		AppName string
		Query   string
	}{
		AppName: DefaultAppName,
		Query:   escape(query),
	}
	if err := scriptTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render SQL script: %w", err)
	}
	return buf.Bytes(), nil
}

// escape makes query safe to embed in a triple-quoted Python string literal.
func escape(query string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(query)
}
