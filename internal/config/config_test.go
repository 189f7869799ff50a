package config

import (
	"os"
	"path/filepath"
	"testing"

	"wcaglsp/internal/diag"
)

func TestDefaultSnapshot(t *testing.T) {
	snap := Default()
	if got := snap.LevelSeverity[diag.LevelA]; got != diag.SevError {
		t.Fatalf("level A default = %v", got)
	}
	if got := snap.LevelSeverity[diag.LevelAA]; got != diag.SevWarning {
		t.Fatalf("level AA default = %v", got)
	}
	if got := snap.LevelSeverity[diag.LevelAAA]; got != diag.SevWarning {
		t.Fatalf("level AAA default = %v", got)
	}
	if !snap.RuleEnabled("img-alt") {
		t.Fatal("rules should be enabled by default")
	}
	if snap.Ignored("/w/index.html") {
		t.Fatal("nothing should be ignored by default")
	}
}

func TestParse(t *testing.T) {
	snap := Parse(`
[severity]
A = "warning"
AAA = "error"

[rules]
img-alt = "off"
no-access-key = "error"
heading-order = "warn"

[ignore]
patterns = ["**/vendor/**", "node_modules/**"]
`)
	if got := snap.LevelSeverity[diag.LevelA]; got != diag.SevWarning {
		t.Fatalf("level A = %v", got)
	}
	if got := snap.LevelSeverity[diag.LevelAA]; got != diag.SevWarning {
		t.Fatalf("level AA should keep its default, got %v", got)
	}
	if got := snap.LevelSeverity[diag.LevelAAA]; got != diag.SevError {
		t.Fatalf("level AAA = %v", got)
	}
	if snap.RuleEnabled("img-alt") {
		t.Fatal("img-alt should be off")
	}
	if !snap.RuleEnabled("no-access-key") {
		t.Fatal("severity override must not disable the rule")
	}
	if len(snap.IgnorePatterns) != 2 {
		t.Fatalf("patterns = %v", snap.IgnorePatterns)
	}
}

func TestParseMalformedFallsBackToDefaults(t *testing.T) {
	snap := Parse(`[severity`)
	if got := snap.LevelSeverity[diag.LevelA]; got != diag.SevError {
		t.Fatalf("malformed config should yield defaults, level A = %v", got)
	}
	if !snap.RuleEnabled("img-alt") {
		t.Fatal("malformed config should yield defaults")
	}
}

func TestParseSkipsUnrecognizedValues(t *testing.T) {
	snap := Parse(`
[severity]
A = "fatal"

[rules]
img-alt = "sometimes"
`)
	if got := snap.LevelSeverity[diag.LevelA]; got != diag.SevError {
		t.Fatalf("unknown severity name should be skipped, got %v", got)
	}
	if !snap.RuleEnabled("img-alt") {
		t.Fatal("unknown override value should be skipped")
	}
	if _, ok := snap.Overrides["img-alt"]; ok {
		t.Fatal("unknown override value should not be recorded")
	}
}

func TestResolveSeverityPrecedence(t *testing.T) {
	snap := Parse(`
[severity]
A = "warning"

[rules]
no-positive-tabindex = "error"
`)
	// Per-rule override wins over the level default.
	if got := snap.ResolveSeverity("no-positive-tabindex", diag.LevelA, diag.SevWarning); got != diag.SevError {
		t.Fatalf("override should win, got %v", got)
	}
	// No override: the configured level default applies.
	if got := snap.ResolveSeverity("img-alt", diag.LevelA, diag.SevError); got != diag.SevWarning {
		t.Fatalf("level default should apply, got %v", got)
	}
	// Neither override nor level entry: the built-in default survives.
	var empty Snapshot
	if got := empty.ResolveSeverity("img-alt", diag.LevelA, diag.SevError); got != diag.SevError {
		t.Fatalf("builtin default should apply, got %v", got)
	}
}

func TestIgnored(t *testing.T) {
	snap := Parse(`
[ignore]
patterns = ["**/node_modules/**", "dist/**", "legacy.html"]
`)
	cases := []struct {
		path string
		want bool
	}{
		{"/w/node_modules/pkg/index.html", true},
		{"/w/app/dist/out.html", true},
		{"/w/legacy.html", true},
		{"/w/src/index.html", false},
		{"/w/distributions/out.html", false},
	}
	for _, tc := range cases {
		if got := snap.Ignored(tc.path); got != tc.want {
			t.Errorf("Ignored(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	content := "[rules]\nimg-alt = \"off\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if snap := LoadFile(path); snap.RuleEnabled("img-alt") {
		t.Fatal("file config not applied")
	}
	if snap := LoadFile(filepath.Join(dir, "missing.toml")); !snap.RuleEnabled("img-alt") {
		t.Fatal("missing file should yield defaults")
	}
	if snap := LoadWorkspace(dir); snap.RuleEnabled("img-alt") {
		t.Fatal("workspace config not found")
	}
}
