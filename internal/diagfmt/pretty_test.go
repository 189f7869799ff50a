package diagfmt

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"wcaglsp/internal/diag"
	"wcaglsp/internal/driver"
)

func sampleResults() []driver.FileResult {
	return []driver.FileResult{
		{
			Path: "/w/src/index.html",
			Diagnostics: []diag.Diagnostic{
				{
					RuleID: "img-alt",
					Span: diag.Span{
						Start: diag.Pos{Line: 4, Col: 2},
						End:   diag.Pos{Line: 4, Col: 20},
					},
					Message:  "img elements must have an alt attribute [WCAG 1.1.1 Level A]",
					Severity: diag.SevError,
					DocsURL:  "https://www.w3.org/WAI/WCAG21/Understanding/non-text-content.html",
				},
				{
					RuleID: "heading-order",
					Span: diag.Span{
						Start: diag.Pos{Line: 9, Col: 0},
						End:   diag.Pos{Line: 9, Col: 12},
					},
					Message:  "Heading level h3 skipped (expected h2 or lower) [WCAG 1.3.1 Level A]",
					Severity: diag.SevWarning,
				},
			},
		},
		{Path: "/w/vendor/lib.html", Skipped: true},
		{Path: "/w/src/broken.html", Err: errors.New("read failed")},
	}
}

func TestPretty(t *testing.T) {
	var buf bytes.Buffer
	Pretty(&buf, sampleResults(), PrettyOpts{BaseDir: "/w"})
	out := buf.String()

	if !strings.Contains(out, "src/index.html:5:3: ERROR img-alt:") {
		t.Fatalf("missing error line:\n%s", out)
	}
	if !strings.Contains(out, "src/index.html:10:1: WARN heading-order:") {
		t.Fatalf("missing warning line:\n%s", out)
	}
	if !strings.Contains(out, "read failed") {
		t.Fatalf("missing file error:\n%s", out)
	}
	if !strings.Contains(out, "3 files checked: 1 errors, 1 warnings, 1 skipped") {
		t.Fatalf("missing summary:\n%s", out)
	}
	if strings.Contains(out, "vendor/lib.html:") {
		t.Fatalf("skipped file should not be listed:\n%s", out)
	}
}

func TestPrettyQuiet(t *testing.T) {
	var buf bytes.Buffer
	Pretty(&buf, sampleResults(), PrettyOpts{BaseDir: "/w", Quiet: true})
	out := buf.String()
	if strings.Contains(out, "heading-order") {
		t.Fatalf("quiet mode should drop warnings:\n%s", out)
	}
	if !strings.Contains(out, "img-alt") {
		t.Fatalf("quiet mode should keep errors:\n%s", out)
	}
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, sampleResults(), JSONOpts{
		PathMode:        PathModeBasename,
		IncludeDocsURLs: true,
	}); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var out CheckOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Errors != 1 || out.Warnings != 1 || out.Count != 2 {
		t.Fatalf("totals = %+v", out)
	}
	// Skipped files are omitted unless asked for.
	if len(out.Files) != 2 {
		t.Fatalf("files = %+v", out.Files)
	}
	first := out.Files[0]
	if first.Path != "index.html" {
		t.Fatalf("path = %q", first.Path)
	}
	d := first.Diagnostics[0]
	if d.Rule != "img-alt" || d.Severity != "error" {
		t.Fatalf("diagnostic = %+v", d)
	}
	if d.Location.StartLine != 5 || d.Location.StartCol != 3 {
		t.Fatalf("location = %+v", d.Location)
	}
	if d.DocsURL == "" {
		t.Fatal("docs url should be included")
	}
}

func TestDisplayPath(t *testing.T) {
	if got := displayPath("/w/a/b.html", PathModeBasename, ""); got != "b.html" {
		t.Fatalf("basename = %q", got)
	}
	if got := displayPath("/w/a/b.html", PathModeAbsolute, "/w"); got != "/w/a/b.html" {
		t.Fatalf("absolute = %q", got)
	}
	if got := displayPath("/w/a/b.html", PathModeAuto, "/w"); got != "a/b.html" {
		t.Fatalf("auto = %q", got)
	}
}
