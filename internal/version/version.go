package version

import (
	"strings"

	"github.com/fatih/color"
)

// Build information of the ccabi CLI. These variables can be overridden at
// build time via -ldflags "-X ccabi/internal/version.Version=...".
var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var (
	versionMajorColor = color.New(color.FgYellow, color.Bold)
	versionMinorColor = color.New(color.FgGreen, color.Bold)
	versionPatchColor = color.New(color.FgBlue, color.Bold)
)

// Colored renders a version with its major, minor and patch numbers in
// distinct colors. Anything after the patch number is left plain.
func Colored(v string, enabled bool) string {
	parts := strings.SplitN(v, ".", 3)
	if len(parts) != 3 {
		return v
	}
	colors := []*color.Color{versionMajorColor, versionMinorColor, versionPatchColor}
	patch, rest := parts[2], ""
	if i := strings.IndexAny(patch, "-+"); i >= 0 {
		patch, rest = patch[:i], patch[i:]
	}
	parts[2] = patch
	for i, c := range colors {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		parts[i] = c.Sprint(parts[i])
	}
	return strings.Join(parts, ".") + rest
}
