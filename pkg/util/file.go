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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kubeflow/emr-serverless-sql/pkg/common"
)

// CheckScriptFile checks that path names an existing regular file with a supported extension
// and returns the extension.
func CheckScriptFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", NewUsageError("file %q does not exist", path)
		}
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return "", NewUsageError("file %q is a directory", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case common.ExtensionSQL, common.ExtensionNotebook:
		return ext, nil
	default:
		return "", NewUsageError("file %q must end in %s or %s", path, common.ExtensionSQL, common.ExtensionNotebook)
	}
}

// ScriptKey returns the object key a local script is uploaded to. Notebooks are uploaded
// as the Python script they are converted to.
func ScriptKey(localPath string) string {
	name := filepath.Base(localPath)
	if strings.EqualFold(filepath.Ext(name), common.ExtensionNotebook) {
		name = strings.TrimSuffix(name, filepath.Ext(name)) + common.ExtensionPython
	}
	return common.ScriptPrefix + "/" + name
}
