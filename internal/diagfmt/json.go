package diagfmt

import (
	"encoding/json"
	"io"

	"wcaglsp/internal/driver"
	"wcaglsp/internal/observ"
)

// LocationJSON is a file location in JSON output. Lines and columns are
// 1-based to match the pretty printer.
type LocationJSON struct {
	File      string `json:"file"`
	StartLine int    `json:"start_line"`
	StartCol  int    `json:"start_col"`
	EndLine   int    `json:"end_line"`
	EndCol    int    `json:"end_col"`
}

// DiagnosticJSON is one diagnostic in JSON output.
type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Rule     string       `json:"rule"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	DocsURL  string       `json:"docs_url,omitempty"`
}

// FileJSON is one analyzed file in JSON output.
type FileJSON struct {
	Path        string           `json:"path"`
	Skipped     bool             `json:"skipped,omitempty"`
	FromCache   bool             `json:"from_cache,omitempty"`
	Error       string           `json:"error,omitempty"`
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Timing      *observ.Report   `json:"timing,omitempty"`
}

// CheckOutput is the root structure of JSON output.
type CheckOutput struct {
	Files    []FileJSON `json:"files"`
	Errors   int        `json:"errors"`
	Warnings int        `json:"warnings"`
	Count    int        `json:"count"`
}

// BuildCheckOutput assembles the JSON structure without serializing it.
func BuildCheckOutput(results []driver.FileResult, opts JSONOpts) CheckOutput {
	sum := driver.Summarize(results)
	out := CheckOutput{
		Files:    make([]FileJSON, 0, len(results)),
		Errors:   sum.Errors,
		Warnings: sum.Warnings,
	}
	for _, r := range results {
		if r.Skipped && !opts.IncludeSkipped {
			continue
		}
		file := FileJSON{
			Path:        displayPath(r.Path, opts.PathMode, opts.BaseDir),
			Skipped:     r.Skipped,
			FromCache:   r.FromCache,
			Diagnostics: make([]DiagnosticJSON, 0, len(r.Diagnostics)),
		}
		if r.Err != nil {
			file.Error = r.Err.Error()
		}
		for _, d := range r.Diagnostics {
			item := DiagnosticJSON{
				Severity: d.Severity.String(),
				Rule:     d.RuleID,
				Message:  d.Message,
				Location: LocationJSON{
					File:      file.Path,
					StartLine: d.Span.Start.Line + 1,
					StartCol:  d.Span.Start.Col + 1,
					EndLine:   d.Span.End.Line + 1,
					EndCol:    d.Span.End.Col + 1,
				},
			}
			if opts.IncludeDocsURLs {
				item.DocsURL = d.DocsURL
			}
			file.Diagnostics = append(file.Diagnostics, item)
			out.Count++
		}
		if opts.IncludeTimings {
			file.Timing = r.Timing
		}
		out.Files = append(out.Files, file)
	}
	return out
}

// JSON serializes check results to the writer.
func JSON(w io.Writer, results []driver.FileResult, opts JSONOpts) error {
	output := BuildCheckOutput(results, opts)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}
