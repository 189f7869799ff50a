// Package config loads the `.wcag-lsp.toml` workspace configuration into an
// immutable snapshot. The rest of the server only ever sees a snapshot that
// is valid by construction: a missing or malformed file degrades to the
// built-in defaults, never to an error.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"

	"wcaglsp/internal/diag"
)

// FileName is looked up at the workspace root.
const FileName = ".wcag-lsp.toml"

// RuleOverride is a per-rule configuration entry: either the rule is turned
// off or its severity is forced.
type RuleOverride struct {
	Off      bool
	Severity diag.Severity
}

// Snapshot is a resolved, read-only configuration value. Copies are cheap
// and safe to hand to concurrently running diagnostic work.
type Snapshot struct {
	// LevelSeverity holds the configured default severity per WCAG level.
	LevelSeverity map[diag.Level]diag.Severity
	// Overrides maps rule ids to off/forced-severity entries.
	Overrides map[string]RuleOverride
	// IgnorePatterns are globs matched against the full document path; a
	// match suppresses the whole run for that document.
	IgnorePatterns []string
}

// Default returns the built-in configuration: level A violations are
// errors, AA and AAA are warnings, nothing overridden, nothing ignored.
func Default() Snapshot {
	return Snapshot{
		LevelSeverity: map[diag.Level]diag.Severity{
			diag.LevelA:   diag.SevError,
			diag.LevelAA:  diag.SevWarning,
			diag.LevelAAA: diag.SevWarning,
		},
		Overrides: map[string]RuleOverride{},
	}
}

type rawConfig struct {
	Severity map[string]string `toml:"severity"`
	Rules    map[string]string `toml:"rules"`
	Ignore   rawIgnore         `toml:"ignore"`
}

type rawIgnore struct {
	Patterns []string `toml:"patterns"`
}

// LoadFile reads the config at path. Missing or unreadable files produce
// the defaults.
func LoadFile(path string) Snapshot {
	content, err := os.ReadFile(path)
	if err != nil {
		return Default()
	}
	return Parse(string(content))
}

// LoadWorkspace looks for the config file at the workspace root.
func LoadWorkspace(root string) Snapshot {
	if root == "" {
		return Default()
	}
	return LoadFile(filepath.Join(root, FileName))
}

// Parse decodes TOML content into a snapshot. Malformed content returns the
// defaults; unrecognized severity or override values are skipped.
func Parse(content string) Snapshot {
	var raw rawConfig
	if _, err := toml.Decode(content, &raw); err != nil {
		return Default()
	}
	snap := Default()
	for name, level := range map[string]diag.Level{
		"A": diag.LevelA, "AA": diag.LevelAA, "AAA": diag.LevelAAA,
	} {
		if v, ok := raw.Severity[name]; ok {
			if sev, ok := diag.ParseSeverity(strings.ToLower(v)); ok {
				snap.LevelSeverity[level] = sev
			}
		}
	}
	for id, v := range raw.Rules {
		switch strings.ToLower(v) {
		case "off", "false", "disable":
			snap.Overrides[id] = RuleOverride{Off: true}
		default:
			if sev, ok := diag.ParseSeverity(strings.ToLower(v)); ok {
				snap.Overrides[id] = RuleOverride{Severity: sev}
			}
		}
	}
	snap.IgnorePatterns = raw.Ignore.Patterns
	return snap
}

// RuleEnabled reports whether a rule participates in diagnostic runs.
func (s Snapshot) RuleEnabled(id string) bool {
	o, ok := s.Overrides[id]
	return !ok || !o.Off
}

// ResolveSeverity applies the fixed precedence: explicit per-rule override,
// else the configured default for the rule's level, else the rule's
// built-in default. The order must not change.
func (s Snapshot) ResolveSeverity(id string, level diag.Level, builtin diag.Severity) diag.Severity {
	if o, ok := s.Overrides[id]; ok && !o.Off {
		return o.Severity
	}
	if sev, ok := s.LevelSeverity[level]; ok {
		return sev
	}
	return builtin
}

// Ignored reports whether the document path matches an ignore pattern.
// Relative patterns such as "node_modules/**" also match anywhere under an
// absolute path.
func (s Snapshot) Ignored(path string) bool {
	if len(s.IgnorePatterns) == 0 {
		return false
	}
	slashed := filepath.ToSlash(path)
	for _, pattern := range s.IgnorePatterns {
		if ok, err := doublestar.Match(pattern, slashed); err == nil && ok {
			return true
		}
		if !strings.HasPrefix(pattern, "/") && !strings.HasPrefix(pattern, "**") {
			if ok, err := doublestar.Match("**/"+pattern, slashed); err == nil && ok {
				return true
			}
		}
	}
	return false
}
