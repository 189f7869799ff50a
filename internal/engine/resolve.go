package engine

import (
	"wcaglsp/internal/config"
	"wcaglsp/internal/diag"
	"wcaglsp/internal/rules"
)

// Resolve maps raw findings to publishable diagnostics. Findings of
// disabled rules are dropped; everything else passes through one-to-one
// with the severity decided by the snapshot's fixed precedence (per-rule
// override, then level default, then the rule's built-in default). No
// merging or deduplication happens here.
func Resolve(findings []diag.Finding, snap config.Snapshot) []diag.Diagnostic {
	out := make([]diag.Diagnostic, 0, len(findings))
	for _, f := range findings {
		rule := rules.ByID(f.RuleID)
		if rule == nil {
			continue
		}
		if !snap.RuleEnabled(f.RuleID) {
			continue
		}
		out = append(out, diag.Diagnostic{
			RuleID:   f.RuleID,
			Span:     f.Span,
			Message:  f.Message,
			Severity: snap.ResolveSeverity(f.RuleID, f.Level, rule.DefaultSeverity),
			DocsURL:  rule.DocsURL,
		})
	}
	return out
}

// Enabled adapts a snapshot into the engine's enabled predicate so
// disabled rules are skipped before their predicates ever run.
func Enabled(snap config.Snapshot) EnabledFunc {
	return snap.RuleEnabled
}
