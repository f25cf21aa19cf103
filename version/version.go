// Package version reports the build version, derived from ldflags or VCS
// build info.
package version

import (
	"fmt"
	"runtime/debug"
	"strings"
)

// Injected with ldflags at build time.
var (
	tag    string
	commit string
)

const develVersion = "v0.0.0-devel"

// Version returns the version string, preferring the ldflags tag and
// falling back to VCS build info.
func Version() string {
	if tag != "" {
		if !strings.HasPrefix(tag, "v") {
			return "v" + tag
		}
		return tag
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if rev := setting(info, "vcs.revision"); rev != "" {
			v := develVersion + "+" + short(rev)
			if setting(info, "vcs.modified") == "true" {
				v += "-dirty"
			}
			return v
		}
	}
	return develVersion
}

// Full returns the version together with the commit hash when known.
func Full() string {
	c := commit
	if c == "" {
		if info, ok := debug.ReadBuildInfo(); ok {
			c = setting(info, "vcs.revision")
		}
	}
	if c == "" {
		return Version()
	}
	return fmt.Sprintf("%s commit=%s", Version(), short(c))
}

func setting(info *debug.BuildInfo, key string) string {
	for _, s := range info.Settings {
		if s.Key == key {
			return s.Value
		}
	}
	return ""
}

func short(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}
