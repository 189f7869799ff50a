package version

import "github.com/fatih/color"

// Version information for the wcag-lsp binary.
// These variables can be overridden at build time via -ldflags.

var (
	// Version is the semantic version of the binary.
	Version = "0.1.0"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var (
	majorColor = color.New(color.FgYellow, color.Bold)
	minorColor = color.New(color.FgGreen, color.Bold)
	patchColor = color.New(color.FgBlue, color.Bold)
)

// Colored renders the version with each component highlighted, for the
// version subcommand. Falls back to the plain string when the version
// does not split into three components.
func Colored() string {
	parts := splitVersion(Version)
	if parts == nil {
		return Version
	}
	return majorColor.Sprint(parts[0]) + "." + minorColor.Sprint(parts[1]) + "." + patchColor.Sprint(parts[2])
}

func splitVersion(v string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(v); i++ {
		if v[i] == '.' {
			parts = append(parts, v[start:i])
			start = i + 1
		}
	}
	parts = append(parts, v[start:])
	if len(parts) != 3 {
		return nil
	}
	return parts
}
