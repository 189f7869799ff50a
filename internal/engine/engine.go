// Package engine walks a syntax tree once and dispatches every projected
// element to the applicable rules, then resolves raw findings into
// publishable diagnostics using the configuration snapshot.
package engine

import (
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"wcaglsp/internal/diag"
	"wcaglsp/internal/dialect"
	"wcaglsp/internal/markup"
	"wcaglsp/internal/rules"
)

// RuleFailure records a predicate that panicked for one element. The
// failing rule's contribution for that element is dropped; the traversal
// and every other rule continue.
type RuleFailure struct {
	RuleID string
	Span   diag.Span
	Err    error
}

// Result of one engine run.
type Result struct {
	Findings []diag.Finding
	Failures []RuleFailure
}

// EnabledFunc reports whether a rule participates in a run.
type EnabledFunc func(ruleID string) bool

// Run traverses the tree in a single pre-order, source-ordered pass and
// invokes every applicable enabled rule per element. Identical (tree,
// source) inputs yield an identical finding multiset.
func Run(root *sitter.Node, source []byte, d dialect.Dialect, enabled EnabledFunc) Result {
	return RunRules(root, source, d, rules.All(), enabled)
}

// RunRules runs an explicit rule set; Run uses the process-wide registry.
func RunRules(root *sitter.Node, source []byte, d dialect.Dialect, ruleset []*rules.Rule, enabled EnabledFunc) Result {
	var res Result
	ctx := rules.NewContext(d)
	active := make([]*rules.Rule, 0, len(ruleset))
	for _, r := range ruleset {
		if !r.AppliesTo(d) {
			continue
		}
		if enabled != nil && !enabled(r.ID) {
			continue
		}
		active = append(active, r)
	}

	markup.Walk(root, source, d, func(el *markup.Element) {
		for _, r := range active {
			if !r.Matches(el.Tag) {
				continue
			}
			findings, err := invoke(r, el, ctx)
			if err != nil {
				res.Failures = append(res.Failures, RuleFailure{
					RuleID: r.ID,
					Span:   el.Span,
					Err:    err,
				})
				continue
			}
			res.Findings = append(res.Findings, findings...)
		}
	})
	return res
}

// invoke isolates a single rule-per-element call: a panicking predicate is
// converted into an error instead of aborting the run.
func invoke(r *rules.Rule, el *markup.Element, ctx *rules.Context) (out []diag.Finding, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			out = nil
			err = fmt.Errorf("rule %s panicked: %v", r.ID, rec)
		}
	}()
	return r.Check(r, el, ctx), nil
}
