// Package version holds build metadata for the sysvabi CLI.
// The variables can be overridden at build time via -ldflags.
package version

import (
	"strings"

	"github.com/fatih/color"
)

var (
	versionMajorColor = color.New(color.FgYellow, color.Bold)
	versionMinorColor = color.New(color.FgGreen, color.Bold)
	versionPatchColor = color.New(color.FgBlue, color.Bold)
)

var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

// Schema identifies the report format. Cached reports written by a
// different schema are discarded.
const Schema = "sysvabi/1"

// Colored renders v with each of its three numeric components in its own
// color. Anything that is not major.minor.patch is returned unchanged.
func Colored(v string) string {
	major, rest, ok := strings.Cut(v, ".")
	if !ok || major == "" {
		return v
	}
	minor, rest, ok := strings.Cut(rest, ".")
	if !ok || minor == "" {
		return v
	}
	end := 0
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}
	if end == 0 {
		return v
	}
	return versionMajorColor.Sprint(major) + "." +
		versionMinorColor.Sprint(minor) + "." +
		versionPatchColor.Sprint(rest[:end]) + rest[end:]
}

// Tool is the cache fingerprint: reports from another build miss.
func Tool() string {
	if GitCommit != "" {
		return Schema + "+" + Version + "+" + GitCommit
	}
	return Schema + "+" + Version
}
