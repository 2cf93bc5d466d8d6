package contracts

import (
	"fmt"
	"runtime"
)

const (
	// Version is the current version of the application
	Version = "0.3.0-beta.1"

	// VersionMajor is the major version number
	VersionMajor = 0

	// VersionMinor is the minor version number
	VersionMinor = 3

	// VersionPatch is the patch version number
	VersionPatch = 0

	// VersionPrerelease is the pre-release identifier
	VersionPrerelease = "beta.1"

	// VersionStage represents the current development stage
	VersionStage = "beta"

	// JobFormatVersion is the version of the YAML job file format
	JobFormatVersion = "v1"
)

var (
	// BuildTime is set during build using ldflags
	BuildTime = "unknown"

	// GitCommit is set during build using ldflags
	GitCommit = "unknown"
)

// VersionInfo contains detailed version information
type VersionInfo struct {
	Tool         string `json:"tool"`
	Version      string `json:"version"`
	Stage        string `json:"stage"`
	BuildTime    string `json:"build_time"`
	GitCommit    string `json:"git_commit"`
	GoVersion    string `json:"go_version"`
	OS           string `json:"os"`
	Architecture string `json:"architecture"`
	JobFormat    string `json:"job_format"`
}

// GetVersionInfo returns detailed version information for one binary
func GetVersionInfo(tool string) VersionInfo {
	return VersionInfo{
		Tool:         tool,
		Version:      Version,
		Stage:        VersionStage,
		BuildTime:    BuildTime,
		GitCommit:    GitCommit,
		GoVersion:    runtime.Version(),
		OS:           runtime.GOOS,
		Architecture: runtime.GOARCH,
		JobFormat:    JobFormatVersion,
	}
}

// GetVersionString returns a formatted version string
func GetVersionString(tool string) string {
	return fmt.Sprintf("pivotcli %s v%s", tool, Version)
}

// GetFullVersionString returns a detailed version string
func GetFullVersionString(tool string) string {
	info := GetVersionInfo(tool)
	return fmt.Sprintf(
		"%s (built: %s, commit: %s, go: %s, os: %s/%s)",
		GetVersionString(tool),
		info.BuildTime,
		info.GitCommit,
		info.GoVersion,
		info.OS,
		info.Architecture,
	)
}

// IsPrerelease returns true if this is a pre-release version
func IsPrerelease() bool {
	return VersionPrerelease != ""
}
