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

// Package notebook converts Jupyter notebooks into plain Python scripts that can be
// submitted as a Spark entry point.
package notebook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	cellTypeCode     = "code"
	cellTypeMarkdown = "markdown"

	sqlCellMagic = "%%sql"
)

// Notebook is the subset of the nbformat v4 document needed for conversion.
type Notebook struct {
	NBFormat      int    `json:"nbformat"`
	NBFormatMinor int    `json:"nbformat_minor"`
	Cells         []Cell `json:"cells"`
}

// Cell is a single notebook cell.
type Cell struct {
	CellType       string `json:"cell_type"`
	Source         Source `json:"source"`
	ExecutionCount *int   `json:"execution_count,omitempty"`
}

// Source is cell source, stored either as one string or as a list of lines.
type Source string

func (s *Source) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*s = Source(text)
		return nil
	}
	var lines []string
	if err := json.Unmarshal(data, &lines); err != nil {
		return fmt.Errorf("cell source must be a string or a list of strings: %w", err)
	}
	*s = Source(strings.Join(lines, ""))
	return nil
}

// Parse decodes a notebook document.
func Parse(r io.Reader) (*Notebook, error) {
	nb := &Notebook{}
	if err := json.NewDecoder(r).Decode(nb); err != nil {
		return nil, fmt.Errorf("failed to decode notebook: %w", err)
	}
	if nb.NBFormat < 4 {
		return nil, fmt.Errorf("unsupported nbformat %d, only nbformat 4 is supported", nb.NBFormat)
	}
	return nb, nil
}

// Convert reads a notebook from r and returns the equivalent Python script.
func Convert(r io.Reader) ([]byte, error) {
	nb, err := Parse(r)
	if err != nil {
		return nil, err
	}
	return nb.Python(), nil
}

// Python renders the notebook the way `jupyter nbconvert --to python` lays it out.
// IPython magics and shell escapes have no meaning outside a kernel and are commented
// out, except %%sql cells which become spark.sql calls.
func (nb *Notebook) Python() []byte {
	var buf bytes.Buffer
	buf.WriteString("#!/usr/bin/env python\n# coding: utf-8\n")

	for _, cell := range nb.Cells {
		source := strings.TrimRight(string(cell.Source), "\n")
		switch cell.CellType {
		case cellTypeCode:
			fmt.Fprintf(&buf, "\n# In[%s]:\n\n\n", executionCount(cell.ExecutionCount))
			buf.WriteString(codeCell(source))
			buf.WriteString("\n\n")
		case cellTypeMarkdown:
			buf.WriteString("\n")
			buf.WriteString(commentLines(source))
			buf.WriteString("\n\n")
		}
	}
	return buf.Bytes()
}

func executionCount(count *int) string {
	if count == nil {
		return " "
	}
	return strconv.Itoa(*count)
}

func codeCell(source string) string {
	firstLine, rest, _ := strings.Cut(source, "\n")
	if strings.HasPrefix(firstLine, "%%") {
		if strings.TrimSpace(firstLine) == sqlCellMagic {
			return sqlCell(rest)
		}
		return commentLines(source)
	}

	lines := strings.Split(source, "\n")
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(trimmed, "%") || strings.HasPrefix(trimmed, "!") {
			indent := line[:len(line)-len(trimmed)]
			lines[i] = indent + "# " + trimmed
		}
	}
	return strings.Join(lines, "\n")
}

func sqlCell(query string) string {
	query = strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(strings.TrimSpace(query))
	return "from pyspark.sql import SparkSession\n" +
		fmt.Sprintf("SparkSession.builder.enableHiveSupport().getOrCreate().sql(\"\"\"%s\"\"\").show()", query)
}

func commentLines(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line == "" {
			lines[i] = "#"
			continue
		}
		lines[i] = "# " + line
	}
	return strings.Join(lines, "\n")
}
