// Package version holds build information injected with -ldflags.
package version

import (
	"fmt"
	"runtime"
)

// Set at build time, e.g. -X github.com/hapi-protocol/hapi-core/internal/app/version.Version=v0.3.0
var (
	Version   = "v0.0.1"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// BuildInfo is the build and runtime description
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// GetVersion returns the semantic version
func GetVersion() string {
	return Version
}

// GetBuildInfo returns the full build description
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String is the one-line form printed by --version
func (b BuildInfo) String() string {
	return fmt.Sprintf("%s (commit %s, built %s, %s %s)", b.Version, b.Commit, b.BuildTime, b.GoVersion, b.Platform)
}
