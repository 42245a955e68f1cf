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

// Spark properties.
const (
	// SparkHiveMetastoreClientFactoryClass is the configuration property for the Hive metastore client factory.
	SparkHiveMetastoreClientFactoryClass = "spark.hadoop.hive.metastore.client.factory.class"

	// GlueDataCatalogHiveClientFactory makes Spark SQL use the AWS Glue Data Catalog as its Hive metastore.
	GlueDataCatalogHiveClientFactory = "com.amazonaws.glue.catalog.metastore.AWSGlueDataCatalogHiveClientFactory"

	// SparkSQLCLIDriverClass is the main class of the spark-sql command line driver.
	SparkSQLCLIDriverClass = "org.apache.spark.sql.hive.thriftserver.SparkSQLCLIDriver"
)

// spark-sql command line driver options.
const (
	// SparkSQLExecuteOption runs the SQL statement given as the entry point.
	SparkSQLExecuteOption = "-e"

	// SparkSQLFileOption runs the SQL file given as the entry point.
	SparkSQLFileOption = "-f"
)

// Spark driver log types.
const (
	DriverLogStdout = "stdout"
	DriverLogStderr = "stderr"
)

// SparkDriverLogDir is the directory EMR Serverless writes driver logs to, under the job run log prefix.
const SparkDriverLogDir = "SPARK_DRIVER"
