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

package emrss

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/kubeflow/emr-serverless-sql/pkg/util"
)

// Set at link time with -ldflags "-X github.com/kubeflow/emr-serverless-sql.<name>=<value>".
var (
	version      = "0.0.0"
	buildDate    = ""
	gitCommit    = ""
	gitTag       = ""
	gitTreeState = ""
)

var readBuildInfo = debug.ReadBuildInfo

// BuildInfo describes the emrss binary.
type BuildInfo struct {
	Version      string
	BuildDate    string
	GitCommit    string
	GitTag       string
	GitTreeState string
	GoVersion    string
	Platform     string
}

// CurrentBuildInfo returns the build information of the running binary. Values not set at
// link time are taken from the VCS stamp the Go toolchain embeds.
func CurrentBuildInfo() BuildInfo {
	info := BuildInfo{
		BuildDate:    buildDate,
		GitCommit:    gitCommit,
		GitTag:       gitTag,
		GitTreeState: gitTreeState,
		GoVersion:    runtime.Version(),
		Platform:     runtime.GOOS + "/" + runtime.GOARCH,
	}
	if info.GitCommit == "" {
		info.stampFromVCS()
	}
	info.Version = info.release(version)
	return info
}

func (b *BuildInfo) stampFromVCS() {
	bi, ok := readBuildInfo()
	if !ok {
		return
	}
	for _, setting := range bi.Settings {
		switch setting.Key {
		case "vcs.revision":
			b.GitCommit = setting.Value
		case "vcs.time":
			if b.BuildDate == "" {
				b.BuildDate = setting.Value
			}
		case "vcs.modified":
			b.GitTreeState = "clean"
			if setting.Value == "true" {
				b.GitTreeState = "dirty"
			}
		}
	}
}

// release is the tag of a clean tagged build, or base+<short commit>[.dirty] otherwise.
func (b *BuildInfo) release(base string) string {
	if b.GitCommit != "" && b.GitTag != "" && b.GitTreeState == "clean" {
		return b.GitTag
	}
	if len(b.GitCommit) < 7 {
		return base + "+unknown"
	}
	v := base + "+" + b.GitCommit[:7]
	if b.GitTreeState != "clean" {
		v += ".dirty"
	}
	return v
}

// PrintVersion writes the build information to w.
func PrintVersion(w io.Writer, short bool) {
	info := CurrentBuildInfo()
	fmt.Fprintf(w, "emrss Version: %s\n", info.Version)
	if short {
		return
	}
	for _, field := range []struct{ name, value string }{
		{"Build Date", info.BuildDate},
		{"Git Commit", info.GitCommit},
		{"Git Tag", info.GitTag},
		{"Git Tree State", info.GitTreeState},
		{"Go Version", info.GoVersion},
		{"Platform", info.Platform},
	} {
		fmt.Fprintf(w, "%s: %s\n", field.name, util.FormatNotAvailable(field.value))
	}
}
