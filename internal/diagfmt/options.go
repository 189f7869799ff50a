package diagfmt

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto prefers a path relative to the base dir when one exists.
	PathModeAuto PathMode = iota
	// PathModeAbsolute always uses absolute paths.
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

// PrettyOpts configures pretty-printing of check results.
type PrettyOpts struct {
	Color       bool
	PathMode    PathMode
	BaseDir     string
	ShowTimings bool
	Quiet       bool // suppress warnings, report errors only
}

// JSONOpts configures JSON output of check results.
type JSONOpts struct {
	PathMode        PathMode
	BaseDir         string
	IncludeTimings  bool
	IncludeSkipped  bool
	IncludeDocsURLs bool
}
