// Package versions exposes the build metadata stamped into the binary.
package versions

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"time"
)

// Set at release time via -ldflags; development builds fall back to the
// VCS settings Go embeds in the binary.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Info describes the running build.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Current returns the build information of the running binary.
func Current() Info {
	return assemble(Version, Commit, BuildDate, debug.ReadBuildInfo)
}

func assemble(version, commit, date string, readBuildInfo func() (*debug.BuildInfo, bool)) Info {
	if version == "dev" {
		if bi, ok := readBuildInfo(); ok {
			for _, s := range bi.Settings {
				switch s.Key {
				case "vcs.revision":
					if commit == "unknown" {
						commit = s.Value
					}
				case "vcs.time":
					if date == "unknown" {
						date = s.Value
					}
				}
			}
		}
		version = "build-" + shortCommit(commit)
	}

	if t, err := time.Parse(time.RFC3339, date); err == nil {
		date = t.Format("2006-01-02 15:04:05 MST")
	}

	return Info{
		Version:   version,
		Commit:    commit,
		BuildDate: date,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

func shortCommit(commit string) string {
	if len(commit) > 8 {
		return commit[:8]
	}
	return commit
}
