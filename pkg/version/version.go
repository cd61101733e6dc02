// Package version holds build metadata for the rangeq binary.
package version

import (
	"fmt"
	"runtime/debug"
)

// Set with -ldflags "-X github.com/Sumatoshi-tech/rangeq/pkg/version.Version=...".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// InitBinaryVersion fills values not set at link time from the module build
// info embedded by the go tool.
func InitBinaryVersion() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	apply(info)
}

func apply(info *debug.BuildInfo) {
	if Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if Commit == "none" {
				Commit = setting.Value
			}
		case "vcs.time":
			if Date == "unknown" {
				Date = setting.Value
			}
		}
	}
}

// String renders the version line printed by "rangeq version".
func String() string {
	return fmt.Sprintf("rangeq %s (commit: %s, built: %s)", Version, Commit, Date)
}
