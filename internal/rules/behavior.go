package rules

import (
	"strconv"

	"wcaglsp/internal/diag"
	"wcaglsp/internal/markup"
)

// Interaction and focus-behavior rules.

var noAccessKey = register(&Rule{
	ID:              "no-access-key",
	Description:     "accesskey attribute should not be used",
	Level:           diag.LevelA,
	Criterion:       "2.4.3",
	DocsURL:         "https://www.w3.org/WAI/WCAG21/Understanding/focus-order.html",
	DefaultSeverity: diag.SevWarning,
	Check: func(r *Rule, el *markup.Element, _ *Context) []diag.Finding {
		if !el.HasAttr("accesskey") {
			return nil
		}
		return one(r.finding(el.Span, ""))
	},
})

var noAutoplay = register(&Rule{
	ID:              "no-autoplay",
	Description:     "<audio> and <video> elements must not autoplay without muted",
	Level:           diag.LevelA,
	Criterion:       "1.4.2",
	DocsURL:         "https://www.w3.org/WAI/WCAG21/Understanding/audio-control.html",
	DefaultSeverity: diag.SevWarning,
	Tags:            []string{"audio", "video"},
	Check: func(r *Rule, el *markup.Element, _ *Context) []diag.Finding {
		if !el.HasAttr("autoplay") || el.HasAttr("muted") {
			return nil
		}
		return one(r.finding(el.Span, ""))
	},
})

var noDistractingElements = register(&Rule{
	ID:              "no-distracting-elements",
	Description:     "<blink> and <marquee> elements must not be used",
	Level:           diag.LevelA,
	Criterion:       "2.2.2",
	DocsURL:         "https://www.w3.org/WAI/WCAG21/Understanding/pause-stop-hide.html",
	DefaultSeverity: diag.SevError,
	Tags:            []string{"blink", "marquee"},
	Check: func(r *Rule, el *markup.Element, _ *Context) []diag.Finding {
		return one(r.finding(el.Span,
			"<"+el.Tag+"> elements must not be used"))
	},
})

var noPositiveTabindex = register(&Rule{
	ID:              "no-positive-tabindex",
	Description:     "Avoid positive tabindex values",
	Level:           diag.LevelA,
	Criterion:       "2.4.3",
	DocsURL:         "https://www.w3.org/WAI/WCAG21/Understanding/focus-order.html",
	DefaultSeverity: diag.SevWarning,
	Check: func(r *Rule, el *markup.Element, _ *Context) []diag.Finding {
		v, ok := attrValue(el, "tabindex")
		if !ok {
			return nil
		}
		if n, err := strconv.Atoi(v); err != nil || n <= 0 {
			return nil
		}
		return one(r.finding(el.Span, ""))
	},
})

var scopeAttr = register(&Rule{
	ID:              "scope-attr",
	Description:     "scope attribute should only be used on <th> elements",
	Level:           diag.LevelA,
	Criterion:       "1.3.1",
	DocsURL:         "https://www.w3.org/WAI/WCAG21/Understanding/info-and-relationships.html",
	DefaultSeverity: diag.SevWarning,
	Check: func(r *Rule, el *markup.Element, _ *Context) []diag.Finding {
		if !el.HasAttr("scope") || el.Tag == "th" || component(el) {
			return nil
		}
		return one(r.finding(el.Span, ""))
	},
})

// Tags whose keyboard interaction the platform already provides; the
// key-event rules skip them.
var interactiveTags = map[string]bool{
	"a": true, "button": true, "input": true, "select": true,
	"textarea": true, "option": true, "summary": true,
}

var clickEvents = register(&Rule{
	ID:              "click-events-have-key-events",
	Description:     "Elements with onClick must also have onKeyDown or onKeyUp",
	Level:           diag.LevelA,
	Criterion:       "2.1.1",
	DocsURL:         "https://www.w3.org/WAI/WCAG21/Understanding/keyboard.html",
	DefaultSeverity: diag.SevError,
	Check: func(r *Rule, el *markup.Element, _ *Context) []diag.Finding {
		if interactiveTags[el.Tag] || component(el) {
			return nil
		}
		// onClick and onclick land on the same canonical name.
		if !el.HasAttr("onclick") {
			return nil
		}
		if el.HasAttr("onkeydown") || el.HasAttr("onkeyup") || el.HasAttr("onkeypress") {
			return nil
		}
		return one(r.finding(el.Span, ""))
	},
})

var mouseEvents = register(&Rule{
	ID:              "mouse-events-have-key-events",
	Description:     "Mouse event handlers must have corresponding keyboard event handlers",
	Level:           diag.LevelA,
	Criterion:       "2.1.1",
	DocsURL:         "https://www.w3.org/WAI/WCAG21/Understanding/keyboard.html",
	DefaultSeverity: diag.SevError,
	Check: func(r *Rule, el *markup.Element, _ *Context) []diag.Finding {
		if component(el) {
			return nil
		}
		var out []diag.Finding
		if el.HasAttr("onmouseover") && !el.HasAttr("onfocus") {
			out = append(out, r.finding(el.Span,
				"onMouseOver must be accompanied by onFocus"))
		}
		if el.HasAttr("onmouseout") && !el.HasAttr("onblur") {
			out = append(out, r.finding(el.Span,
				"onMouseOut must be accompanied by onBlur"))
		}
		return out
	},
})
