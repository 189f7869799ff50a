package rules

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"

	"wcaglsp/internal/diag"
	"wcaglsp/internal/markup"
)

// Document-structure rules. The ordering-sensitive ones keep running state
// in the per-run context; the engine's pre-order, source-ordered traversal
// guarantees they observe elements in document order.

var ariaHiddenBody = register(&Rule{
	ID:              "aria-hidden-body",
	Description:     `<body> must not have aria-hidden="true"`,
	Level:           diag.LevelA,
	Criterion:       "4.1.2",
	DocsURL:         "https://www.w3.org/WAI/WCAG21/Understanding/name-role-value.html",
	DefaultSeverity: diag.SevError,
	Tags:            []string{"body"},
	Check: func(r *Rule, el *markup.Element, _ *Context) []diag.Finding {
		if !hiddenFromAccessibility(el) {
			return nil
		}
		return one(r.finding(el.Span, ""))
	},
})

var htmlLang = register(&Rule{
	ID:              "html-lang",
	Description:     "<html> element must have a lang attribute",
	Level:           diag.LevelA,
	Criterion:       "3.1.1",
	DocsURL:         "https://www.w3.org/WAI/WCAG21/Understanding/language-of-page.html",
	DefaultSeverity: diag.SevError,
	Tags:            []string{"html"},
	Check: func(r *Rule, el *markup.Element, _ *Context) []diag.Finding {
		if _, ok := attrValue(el, "lang"); ok {
			return nil
		}
		if v, ok := el.Attr("lang"); ok && markup.IsDynamic(v) {
			return nil
		}
		return one(r.finding(el.Span, ""))
	},
})

var langValid = register(&Rule{
	ID:              "lang-valid",
	Description:     "lang attribute must have a valid BCP 47 primary language subtag",
	Level:           diag.LevelA,
	Criterion:       "3.1.1",
	DocsURL:         "https://www.w3.org/WAI/WCAG21/Understanding/language-of-page.html",
	DefaultSeverity: diag.SevError,
	Check: func(r *Rule, el *markup.Element, _ *Context) []diag.Finding {
		v, ok := attrValue(el, "lang")
		if !ok {
			return nil
		}
		if _, err := language.Parse(v); err != nil {
			return one(r.finding(el.Span,
				fmt.Sprintf("%q is not a valid BCP 47 language tag", v)))
		}
		return nil
	},
})

var metaRefresh = register(&Rule{
	ID:              "meta-refresh",
	Description:     "Do not use meta refresh with a time limit",
	Level:           diag.LevelA,
	Criterion:       "2.2.1",
	DocsURL:         "https://www.w3.org/WAI/WCAG21/Understanding/timing-adjustable.html",
	DefaultSeverity: diag.SevError,
	Tags:            []string{"meta"},
	Check: func(r *Rule, el *markup.Element, _ *Context) []diag.Finding {
		equiv, _ := el.Attr("http-equiv")
		if !strings.EqualFold(strings.TrimSpace(equiv), "refresh") {
			return nil
		}
		content, ok := attrValue(el, "content")
		if !ok {
			return nil
		}
		delay := content
		if i := strings.IndexByte(content, ';'); i >= 0 {
			delay = content[:i]
		}
		if n, err := strconv.Atoi(strings.TrimSpace(delay)); err == nil && n == 0 {
			// An instant redirect imposes no time limit.
			return nil
		}
		return one(r.finding(el.Span, ""))
	},
})

var headingLevels = map[string]int{
	"h1": 1, "h2": 2, "h3": 3, "h4": 4, "h5": 5, "h6": 6,
}

type headingState struct {
	prev int
}

var headingOrder = register(&Rule{
	ID:              "heading-order",
	Description:     "Heading levels should not be skipped",
	Level:           diag.LevelA,
	Criterion:       "1.3.1",
	DocsURL:         "https://www.w3.org/WAI/WCAG21/Understanding/info-and-relationships.html",
	DefaultSeverity: diag.SevWarning,
	Tags:            []string{"h1", "h2", "h3", "h4", "h5", "h6"},
	Check: func(r *Rule, el *markup.Element, ctx *Context) []diag.Finding {
		level := headingLevels[el.Tag]
		st := ctx.State(r.ID, func() any { return &headingState{} }).(*headingState)
		prev := st.prev
		st.prev = level
		if level <= prev+1 {
			return nil
		}
		return one(r.finding(el.Span,
			fmt.Sprintf("Heading level h%d skipped (expected h%d or lower)", level, prev+1)))
	},
})

var noDuplicateID = register(&Rule{
	ID:              "no-duplicate-id",
	Description:     "id attribute values must be unique",
	Level:           diag.LevelA,
	Criterion:       "4.1.1",
	DocsURL:         "https://www.w3.org/WAI/WCAG21/Understanding/parsing.html",
	DefaultSeverity: diag.SevError,
	Check: func(r *Rule, el *markup.Element, ctx *Context) []diag.Finding {
		id, ok := attrValue(el, "id")
		if !ok {
			return nil
		}
		seen := ctx.State(r.ID, func() any { return map[string]bool{} }).(map[string]bool)
		if seen[id] {
			return one(r.finding(el.Span,
				fmt.Sprintf("Duplicate id %q", id)))
		}
		seen[id] = true
		return nil
	},
})
