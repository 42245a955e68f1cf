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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	testCases := []struct {
		name     string
		query    string
		expected string
	}{
		{
			name:     "plain query",
			query:    "SELECT 1",
			expected: `df = spark.sql("""SELECT 1""")`,
		},
		{
			name:     "double quotes are escaped",
			query:    `SELECT "a" AS x`,
			expected: `df = spark.sql("""SELECT \"a\" AS x""")`,
		},
		{
			name:     "backslashes are escaped",
			query:    `SELECT '\d+'`,
			expected: `df = spark.sql("""SELECT '\\d+'""")`,
		},
		{
			name:     "multi-line query is kept",
			query:    "SELECT *\nFROM t\nWHERE x = 1",
			expected: "df = spark.sql(\"\"\"SELECT *\nFROM t\nWHERE x = 1\"\"\")",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			script, err := Render(tc.query)
			require.NoError(t, err)
			assert.Contains(t, string(script), tc.expected)
		})
	}
}

func TestRenderScriptLayout(t *testing.T) {
	script, err := Render("SHOW DATABASES")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(script)), "\n")
	assert.Equal(t, "from pyspark.sql import SparkSession", lines[0])
	assert.Contains(t, string(script), "SparkSession.builder.enableHiveSupport()")
	assert.Contains(t, string(script), `.appName("`+DefaultAppName+`")`)
	assert.Equal(t, "df.show()", lines[len(lines)-1])
}
