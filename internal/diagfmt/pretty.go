// Package diagfmt renders batch check results for terminals and tooling.
package diagfmt

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"

	"wcaglsp/internal/diag"
	"wcaglsp/internal/driver"
)

var (
	errColor  = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow, color.Bold)
	ruleColor = color.New(color.FgCyan)
	pathColor = color.New(color.Bold)
)

// Pretty writes one line per diagnostic:
//
//	<path>:<line>:<col>: <SEV> <rule-id>: <message>
//
// followed by a one-line summary. Lines and columns are 1-based.
func Pretty(w io.Writer, results []driver.FileResult, opts PrettyOpts) {
	color.NoColor = !opts.Color
	for _, r := range results {
		if r.Skipped {
			continue
		}
		path := displayPath(r.Path, opts.PathMode, opts.BaseDir)
		if r.Err != nil {
			fmt.Fprintf(w, "%s: %s %v\n", pathColor.Sprint(path), errColor.Sprint("ERROR"), r.Err)
			continue
		}
		for _, d := range r.Diagnostics {
			if opts.Quiet && d.Severity != diag.SevError {
				continue
			}
			sev := warnColor.Sprint("WARN")
			if d.Severity == diag.SevError {
				sev = errColor.Sprint("ERROR")
			}
			fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n",
				pathColor.Sprint(path),
				d.Span.Start.Line+1, d.Span.Start.Col+1,
				sev, ruleColor.Sprint(d.RuleID), d.Message)
		}
		for _, failure := range r.Failures {
			fmt.Fprintf(w, "%s:%d:%d: %s rule %s did not run: %v\n",
				pathColor.Sprint(path),
				failure.Span.Start.Line+1, failure.Span.Start.Col+1,
				warnColor.Sprint("WARN"), failure.RuleID, failure.Err)
		}
		if opts.ShowTimings && r.Timing != nil {
			fmt.Fprintf(w, "%s: %.2f ms\n", path, r.Timing.TotalMS)
		}
	}
	sum := driver.Summarize(results)
	fmt.Fprintf(w, "%d files checked: %d errors, %d warnings", sum.Files, sum.Errors, sum.Warnings)
	if sum.Skipped > 0 {
		fmt.Fprintf(w, ", %d skipped", sum.Skipped)
	}
	fmt.Fprintln(w)
}

func displayPath(path string, mode PathMode, baseDir string) string {
	switch mode {
	case PathModeAbsolute:
		return path
	case PathModeBasename:
		return filepath.Base(path)
	case PathModeRelative, PathModeAuto:
		if baseDir != "" {
			if rel, err := filepath.Rel(baseDir, path); err == nil {
				return rel
			}
		}
		return path
	default:
		return path
	}
}
