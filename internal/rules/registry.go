// Package rules holds the accessibility rule registry. A rule is an
// immutable data descriptor: identity, WCAG level and criterion, default
// severity, applicability, and a predicate over the normalized element
// view. The registry is assembled once at startup and read-only afterward;
// predicates must stay stateless so future revisions can run them
// concurrently — per-run scratch lives in the Context the engine owns.
package rules

import (
	"fmt"
	"strings"

	"wcaglsp/internal/diag"
	"wcaglsp/internal/dialect"
	"wcaglsp/internal/markup"
)

// Context carries per-run inputs and engine-owned scratch state. A fresh
// Context is created for every diagnostic run and never shared.
type Context struct {
	Dialect dialect.Dialect
	scratch map[string]any
}

// NewContext returns a context for one diagnostic run.
func NewContext(d dialect.Dialect) *Context {
	return &Context{Dialect: d, scratch: make(map[string]any)}
}

// State returns the per-run scratch slot for a rule, creating it with init
// on first use. Ordering-sensitive rules keep their running state here.
func (c *Context) State(ruleID string, init func() any) any {
	if v, ok := c.scratch[ruleID]; ok {
		return v
	}
	v := init()
	c.scratch[ruleID] = v
	return v
}

// Rule describes one accessibility check.
type Rule struct {
	ID              string
	Description     string
	Level           diag.Level
	Criterion       string
	DocsURL         string
	DefaultSeverity diag.Severity
	// Tags restricts dispatch to elements with these logical tag names.
	// Empty means the rule sees every element.
	Tags []string
	// Dialects restricts where the rule fires. Empty means every dialect.
	Dialects []dialect.Dialect
	// Check inspects one element and returns zero or more findings. The
	// rule itself is passed back in so predicates can build findings with
	// r.finding without the closure capturing its own declaration.
	Check func(r *Rule, el *markup.Element, ctx *Context) []diag.Finding
}

// AppliesTo reports whether the rule can fire for a dialect.
func (r *Rule) AppliesTo(d dialect.Dialect) bool {
	if len(r.Dialects) == 0 {
		return true
	}
	for _, rd := range r.Dialects {
		if rd == d {
			return true
		}
	}
	return false
}

// Matches reports whether the rule wants this element's tag.
func (r *Rule) Matches(tag string) bool {
	if len(r.Tags) == 0 {
		return true
	}
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// finding builds a finding for the rule, suffixing the message with the
// WCAG criterion and level the way published diagnostics spell it.
func (r *Rule) finding(span diag.Span, msg string) diag.Finding {
	if msg == "" {
		msg = r.Description
	}
	return diag.Finding{
		RuleID:  r.ID,
		Span:    span,
		Message: fmt.Sprintf("%s [WCAG %s Level %s]", msg, r.Criterion, r.Level),
		Level:   r.Level,
	}
}

func one(f diag.Finding) []diag.Finding { return []diag.Finding{f} }

// attrValue returns a usable literal attribute value: present, non-empty
// after trimming, and not a dynamic JSX expression.
func attrValue(el *markup.Element, name string) (string, bool) {
	v, ok := el.Attr(name)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	if v == "" || markup.IsDynamic(v) {
		return "", false
	}
	return v, true
}

// hasAccessibleName reports whether the element carries any of the
// attribute-level naming mechanisms rules accept in place of text content.
func hasAccessibleName(el *markup.Element) bool {
	for _, name := range []string{"aria-label", "aria-labelledby", "title"} {
		if v, ok := el.Attr(name); ok && (strings.TrimSpace(v) != "" || markup.IsDynamic(v)) {
			return true
		}
	}
	return false
}

// component reports whether a JSX element references a component rather
// than an intrinsic tag; intrinsic-tag rules skip those.
func component(el *markup.Element) bool {
	if el.Tag == "" {
		return false
	}
	c := el.Tag[0]
	return c >= 'A' && c <= 'Z' || strings.ContainsAny(el.Tag, ".:")
}

var registry []*Rule

func register(r *Rule) *Rule {
	registry = append(registry, r)
	return r
}

// All returns the process-wide rule registry. Callers must not mutate it.
func All() []*Rule {
	return registry
}

// ByID looks a rule up by its stable identifier.
func ByID(id string) *Rule {
	for _, r := range registry {
		if r.ID == id {
			return r
		}
	}
	return nil
}
