// Package buildinfo reports which badgeforge build is running.
//
// Release builds stamp the variables with ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/badgeforge/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/matzehuels/badgeforge/pkg/buildinfo.Commit=$(git rev-parse HEAD)"
//
// Unstamped builds fall back to the module and VCS data the Go toolchain
// embeds, so `go install` binaries still report a useful version.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

// Stamped at link time. Empty or placeholder values are filled from
// debug.ReadBuildInfo on first use.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func init() { fill(debug.ReadBuildInfo()) }

func fill(info *debug.BuildInfo, ok bool) {
	if !ok || info == nil {
		return
	}
	if Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}
	for _, s := range info.Settings {
		switch {
		case s.Key == "vcs.revision" && Commit == "none":
			Commit = s.Value
		case s.Key == "vcs.time" && Date == "unknown":
			Date = s.Value
		}
	}
}

// ShortCommit is Commit cut to 12 characters.
func ShortCommit() string {
	if len(Commit) > 12 {
		return Commit[:12]
	}
	return Commit
}

// UserAgent identifies badgeforge on outbound HTTP requests.
func UserAgent() string { return "badgeforge/" + Version }

// Template is the cobra version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s (commit %s, built %s)\n", Version, ShortCommit(), Date)
}
