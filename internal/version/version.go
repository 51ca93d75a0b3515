// Package version reports the build version used in the User-Agent header,
// the MCP implementation info and `zscale version`.
package version

import (
	"runtime/debug"
	"strings"
	"time"
)

// Product is the name sent in the User-Agent header.
const Product = "zscale"

const defaultModule = "pkt.systems/zscale"

// buildVersion is set via -ldflags "-X pkt.systems/zscale/internal/version.buildVersion=...".
var buildVersion = ""

// Current returns the linker-provided version, the module version, a VCS
// pseudo-version, or v0.0.0-unknown, in that order of preference.
func Current() string {
	if v := strings.TrimSpace(buildVersion); v != "" {
		return v
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "v0.0.0-unknown"
	}
	if v := strings.TrimSpace(info.Main.Version); v != "" && v != "(devel)" {
		return v
	}
	if v := pseudo(info.Settings); v != "" {
		return v
	}
	return "v0.0.0-unknown"
}

// UserAgent returns "zscale/<version>".
func UserAgent() string {
	return Product + "/" + Current()
}

// Module returns the main module path.
func Module() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		if path := strings.TrimSpace(info.Main.Path); path != "" {
			return path
		}
	}
	return defaultModule
}

func pseudo(settings []debug.BuildSetting) string {
	vcs := make(map[string]string, len(settings))
	for _, s := range settings {
		vcs[s.Key] = s.Value
	}
	revision, stamp := vcs["vcs.revision"], vcs["vcs.time"]
	if revision == "" || stamp == "" {
		return ""
	}
	at, err := time.Parse(time.RFC3339, stamp)
	if err != nil {
		return ""
	}
	if len(revision) > 12 {
		revision = revision[:12]
	}
	v := "v0.0.0-" + at.UTC().Format("20060102150405") + "-" + revision
	if vcs["vcs.modified"] == "true" {
		v += "+dirty"
	}
	return v
}
