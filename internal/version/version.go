// Package version reports the netscope build version.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"time"
)

// These variables can be set at build time via ldflags:
//
//	go build -ldflags="-X github.com/muurk/netscope/internal/version.Version=v1.2.3 \
//	                   -X github.com/muurk/netscope/internal/version.Commit=abc123" ./cmd/netscope
//
// Unset values are filled from the VCS stamp in the build info, then fall
// back to "dev-<build time>" and "unknown".
var (
	// Version is the semantic version of the application
	Version = ""
	// Commit is the short git commit hash, suffixed "-dirty" for modified trees
	Commit = ""
)

// shortHashLength is the number of commit hash characters kept
const shortHashLength = 7

func init() {
	if Version == "" || Commit == "" {
		if info, ok := debug.ReadBuildInfo(); ok {
			applyBuildSettings(info.Settings)
		}
	}

	if Version == "" {
		Version = fmt.Sprintf("dev-%s", time.Now().Format("20060102-150405"))
	}
	if Commit == "" {
		Commit = "unknown"
	}
}

// applyBuildSettings fills Version and Commit from the vcs.* build settings
func applyBuildSettings(settings []debug.BuildSetting) {
	var revision, modified, vcsTime string
	for _, setting := range settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			modified = setting.Value
		case "vcs.time":
			vcsTime = setting.Value
		}
	}

	if Commit == "" && revision != "" {
		Commit = revision
		if len(Commit) > shortHashLength {
			Commit = Commit[:shortHashLength]
		}
		if modified == "true" {
			Commit += "-dirty"
		}
	}

	// Tags are not part of the build info
	if Version == "" && vcsTime != "" {
		if t, err := time.Parse(time.RFC3339, vcsTime); err == nil {
			Version = fmt.Sprintf("dev-%s", t.Format("20060102"))
		}
	}
}

// Full returns the version with commit and Go toolchain
func Full() string {
	return fmt.Sprintf("%s (commit: %s, %s %s/%s)", Version, Commit, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
