package app

import (
	"fmt"
	"runtime/debug"
)

// Release builds set these with
// -ldflags "-X github.com/xampmusic/xamp-player/internal/app.Version=v1.0.0".
// Left empty, they are filled from the VCS stamp go build embeds.
var (
	Version   = "dev"
	Commit    = ""
	BuildTime = ""
)

// VersionInfo describes the running binary.
type VersionInfo struct {
	Version   string
	Commit    string
	BuildTime string
	Modified  bool
}

// GetVersionInfo returns the ldflags values, completed from build info.
func GetVersionInfo() VersionInfo {
	info := VersionInfo{Version: Version, Commit: Commit, BuildTime: BuildTime}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info = info.withBuildInfo(bi)
	}
	return info
}

func (v VersionInfo) withBuildInfo(bi *debug.BuildInfo) VersionInfo {
	if v.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		v.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if v.Commit == "" {
				v.Commit = s.Value
			}
		case "vcs.time":
			if v.BuildTime == "" {
				v.BuildTime = s.Value
			}
		case "vcs.modified":
			v.Modified = s.Value == "true"
		}
	}
	return v
}

// FullString is the --version line and the startup log field.
func (v VersionInfo) FullString() string {
	commit := v.Commit
	switch {
	case commit == "":
		commit = "unknown"
	case len(commit) > 7:
		commit = commit[:7]
	}
	if v.Modified {
		commit += "-dirty"
	}

	built := v.BuildTime
	if built == "" {
		built = "unknown"
	}
	return fmt.Sprintf("XAMP Player %s (commit: %s, built: %s)", v.Version, commit, built)
}
