// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package pkginfo reports how the binary was built. The variables are set
// with -ldflags at release time.
package pkginfo

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sort"

	"github.com/rs/zerolog/log"
)

const (
	Name     = "pvfactor"
	Homepage = "https://github.com/penny-vault/pvfactor"
)

var (
	BuildDate  string
	CommitHash string
	Version    string
)

// Info describes the running build.
type Info struct {
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
	Platform  string
}

// Dependency is a module linked into the binary.
type Dependency struct {
	Path    string
	Version string
}

func (dep Dependency) String() string {
	return fmt.Sprintf("%s=%q", dep.Path, dep.Version)
}

// Current returns the build information of the running binary.
func Current() Info {
	version := Version
	if version == "" {
		version = "dev"
	}

	return Info{
		Version:   version,
		Commit:    CommitHash,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// UserAgent identifies pvfactor to the data providers it calls.
func UserAgent() string {
	return fmt.Sprintf("%s/%s (+%s)", Name, Current().Version, Homepage)
}

// BuildVersionString returns a version info string suitable for printing on the command line
func BuildVersionString() string {
	info := Current()

	return fmt.Sprintf(`%s %s %s

Build Date: %s
Commit: %s
Built with: %s`, Name, info.Version, info.Platform, info.BuildDate, info.Commit, info.GoVersion)
}

// Dependencies lists the modules linked into the binary sorted by path.
func Dependencies() []Dependency {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		log.Error().Msg("could not get package build info")
		return nil
	}

	deps := make([]Dependency, 0, len(buildInfo.Deps))
	for _, dep := range buildInfo.Deps {
		version := dep.Version
		if dep.Replace != nil {
			version = dep.Replace.Version
		}
		deps = append(deps, Dependency{Path: dep.Path, Version: version})
	}

	sort.Slice(deps, func(i, j int) bool {
		return deps[i].Path < deps[j].Path
	})

	return deps
}
