// Package markup normalizes the raw node shapes of each grammar into one
// element view. Rules never see dialect-specific tree shapes: they receive
// Elements carrying the logical tag, the attribute map, the concatenated
// descendant text and the source span. Projections are pure; nothing here
// mutates the tree and repeated calls on the same node are safe.
package markup

import (
	"strings"

	"wcaglsp/internal/diag"
)

// Element is the normalized projection of an element node.
type Element struct {
	// Tag is the logical tag name. HTML tags are lowercased; JSX component
	// names keep their case so they never collide with intrinsic tags.
	Tag string
	// Attrs maps canonical attribute names to literal values. Presence-only
	// attributes map to "". Dynamic JSX expression values keep their braced
	// source text; use IsDynamic before validating a value.
	Attrs map[string]string
	// Text is the concatenated descendant text content.
	Text string
	// Span covers the element's start tag region.
	Span diag.Span
	// Parent is the nearest enclosing element, nil at the top. Non-owning.
	Parent *Element
}

// Attr returns the literal value for an attribute under name equivalence.
func (e *Element) Attr(name string) (string, bool) {
	v, ok := e.Attrs[CanonicalAttr(name)]
	return v, ok
}

// HasAttr reports attribute presence under name equivalence.
func (e *Element) HasAttr(name string) bool {
	_, ok := e.Attrs[CanonicalAttr(name)]
	return ok
}

// jsxAttrNames maps JSX attribute spellings to their markup equivalents.
// Event handlers need no table: lowercasing folds onClick into onclick.
var jsxAttrNames = map[string]string{
	"classname": "class",
	"htmlfor":   "for",
}

// CanonicalAttr folds an attribute name to its canonical spelling, so a
// rule written once matches `onclick` and `onClick`, `for` and `htmlFor`.
func CanonicalAttr(name string) string {
	lower := strings.ToLower(name)
	if mapped, ok := jsxAttrNames[lower]; ok {
		return mapped
	}
	return lower
}

// EquivalentAttr reports whether two attribute spellings name the same
// logical attribute across dialects.
func EquivalentAttr(a, b string) bool {
	return CanonicalAttr(a) == CanonicalAttr(b)
}

// IsDynamic reports whether a JSX attribute value is a braced expression
// whose literal value is unknowable statically.
func IsDynamic(value string) bool {
	return strings.HasPrefix(value, "{")
}
