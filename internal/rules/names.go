package rules

import (
	"strings"

	"wcaglsp/internal/diag"
	"wcaglsp/internal/markup"
)

// Text-alternative and accessible-name rules.

var imgAlt = register(&Rule{
	ID:              "img-alt",
	Description:     "<img> elements must have an alt attribute",
	Level:           diag.LevelA,
	Criterion:       "1.1.1",
	DocsURL:         "https://www.w3.org/WAI/WCAG21/Understanding/non-text-content.html",
	DefaultSeverity: diag.SevError,
	Tags:            []string{"img"},
	Check: func(r *Rule, el *markup.Element, _ *Context) []diag.Finding {
		// alt="" is valid: it marks the image decorative.
		if el.HasAttr("alt") {
			return nil
		}
		return one(r.finding(el.Span, ""))
	},
})

var areaAlt = register(&Rule{
	ID:              "area-alt",
	Description:     "<area> elements must have an alt, aria-label, or aria-labelledby attribute",
	Level:           diag.LevelA,
	Criterion:       "1.1.1",
	DocsURL:         "https://www.w3.org/WAI/WCAG21/Understanding/non-text-content.html",
	DefaultSeverity: diag.SevError,
	Tags:            []string{"area"},
	Check: func(r *Rule, el *markup.Element, _ *Context) []diag.Finding {
		if el.HasAttr("alt") {
			return nil
		}
		if _, ok := attrValue(el, "aria-label"); ok {
			return nil
		}
		if _, ok := attrValue(el, "aria-labelledby"); ok {
			return nil
		}
		return one(r.finding(el.Span, ""))
	},
})

var inputImageAlt = register(&Rule{
	ID:              "input-image-alt",
	Description:     `<input type="image"> elements must have an alt attribute`,
	Level:           diag.LevelA,
	Criterion:       "1.1.1",
	DocsURL:         "https://www.w3.org/WAI/WCAG21/Understanding/non-text-content.html",
	DefaultSeverity: diag.SevError,
	Tags:            []string{"input"},
	Check: func(r *Rule, el *markup.Element, _ *Context) []diag.Finding {
		typ, _ := el.Attr("type")
		if !strings.EqualFold(strings.TrimSpace(typ), "image") {
			return nil
		}
		if el.HasAttr("alt") || hasAccessibleName(el) {
			return nil
		}
		return one(r.finding(el.Span, ""))
	},
})

var anchorContent = register(&Rule{
	ID:              "anchor-content",
	Description:     "Anchor elements must have text content",
	Level:           diag.LevelA,
	Criterion:       "2.4.4",
	DocsURL:         "https://www.w3.org/WAI/WCAG21/Understanding/link-purpose-in-context.html",
	DefaultSeverity: diag.SevError,
	Tags:            []string{"a"},
	Check: func(r *Rule, el *markup.Element, _ *Context) []diag.Finding {
		if strings.TrimSpace(el.Text) != "" || hasAccessibleName(el) {
			return nil
		}
		return one(r.finding(el.Span, ""))
	},
})

var buttonName = register(&Rule{
	ID:              "button-name",
	Description:     "<button> elements must have an accessible name",
	Level:           diag.LevelA,
	Criterion:       "4.1.2",
	DocsURL:         "https://www.w3.org/WAI/WCAG21/Understanding/name-role-value.html",
	DefaultSeverity: diag.SevError,
	Tags:            []string{"button"},
	Check: func(r *Rule, el *markup.Element, _ *Context) []diag.Finding {
		if strings.TrimSpace(el.Text) != "" || hasAccessibleName(el) {
			return nil
		}
		return one(r.finding(el.Span, ""))
	},
})

var headingContent = register(&Rule{
	ID:              "heading-content",
	Description:     "Heading elements must have text content",
	Level:           diag.LevelAA,
	Criterion:       "2.4.6",
	DocsURL:         "https://www.w3.org/WAI/WCAG21/Understanding/headings-and-labels.html",
	DefaultSeverity: diag.SevWarning,
	Tags:            []string{"h1", "h2", "h3", "h4", "h5", "h6"},
	Check: func(r *Rule, el *markup.Element, _ *Context) []diag.Finding {
		if strings.TrimSpace(el.Text) != "" || hasAccessibleName(el) {
			return nil
		}
		return one(r.finding(el.Span, ""))
	},
})

var iframeTitle = register(&Rule{
	ID:              "iframe-title",
	Description:     "<iframe> elements must have a title attribute",
	Level:           diag.LevelA,
	Criterion:       "2.4.1",
	DocsURL:         "https://www.w3.org/WAI/WCAG21/Understanding/bypass-blocks.html",
	DefaultSeverity: diag.SevError,
	Tags:            []string{"iframe"},
	Check: func(r *Rule, el *markup.Element, _ *Context) []diag.Finding {
		if v, ok := el.Attr("title"); ok && (strings.TrimSpace(v) != "" || markup.IsDynamic(v)) {
			return nil
		}
		return one(r.finding(el.Span, ""))
	},
})

var redundantAltWords = []string{"image of", "picture of", "photo of", "photograph of", "graphic of"}

var noRedundantAlt = register(&Rule{
	ID:              "no-redundant-alt",
	Description:     "Image alt text should not contain redundant words",
	Level:           diag.LevelA,
	Criterion:       "1.1.1",
	DocsURL:         "https://www.w3.org/WAI/WCAG21/Understanding/non-text-content.html",
	DefaultSeverity: diag.SevWarning,
	Tags:            []string{"img"},
	Check: func(r *Rule, el *markup.Element, _ *Context) []diag.Finding {
		alt, ok := attrValue(el, "alt")
		if !ok {
			return nil
		}
		lower := strings.ToLower(alt)
		for _, w := range redundantAltWords {
			if strings.Contains(lower, w) {
				return one(r.finding(el.Span,
					`Alt text contains the redundant phrase "`+w+`"`))
			}
		}
		return nil
	},
})
