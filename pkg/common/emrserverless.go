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

package common

// Environment variables.
const (
	// EnvPrefix is the prefix of the environment variables read by emrss, e.g. EMRSS_APPLICATION_ID.
	EnvPrefix = "EMRSS"
)

// Job names passed to StartJobRun.
const (
	JobNameSQLRunner = "sql-runner"

	JobNameNotebookRunner = "notebook-runner"
)

// Object store layout under the configured bucket.
const (
	// ScriptPrefix is the key prefix scripts are uploaded under.
	ScriptPrefix = "tmp"

	// LogPrefix is the key prefix EMR Serverless writes job run logs under.
	LogPrefix = "logs"

	// SQLTemplateKey is the key of the PySpark wrapper rendered for long SQL statements.
	SQLTemplateKey = ScriptPrefix + "/emrss-sql_template.py"

	// DriverLogKeyTemplate is filled with the application ID, job run ID, log directory and log type.
	DriverLogKeyTemplate = LogPrefix + "/applications/%s/jobs/%s/%s/%s.gz"
)

// MaxEntryPointLength is the exclusive upper bound on the length of a SQL statement that
// can be passed to StartJobRun directly as the entry point.
const MaxEntryPointLength = 256

// Supported script extensions.
const (
	ExtensionSQL = ".sql"

	ExtensionNotebook = ".ipynb"

	ExtensionPython = ".py"
)

// JobRunStateSuccess is the state of a job run that completed successfully.
const JobRunStateSuccess = "SUCCESS"
