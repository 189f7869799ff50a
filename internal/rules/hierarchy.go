package rules

import (
	"fmt"
	"strings"

	"wcaglsp/internal/diag"
	"wcaglsp/internal/markup"
)

// Rules that reason about an element's ancestor chain.

var interactiveRoles = map[string]bool{
	"button": true, "checkbox": true, "combobox": true, "gridcell": true,
	"link": true, "listbox": true, "menuitem": true, "menuitemcheckbox": true,
	"menuitemradio": true, "option": true, "radio": true, "searchbox": true,
	"slider": true, "spinbutton": true, "switch": true, "tab": true,
	"textbox": true, "treeitem": true,
}

// interactive reports whether an element takes user interaction: natively
// interactive tags, non-hidden inputs, a reachable tabindex, or an
// interactive ARIA role.
func interactive(el *markup.Element) bool {
	if component(el) {
		return false
	}
	switch el.Tag {
	case "a", "button", "select", "textarea":
		return true
	case "input":
		typ, _ := el.Attr("type")
		return !strings.EqualFold(strings.TrimSpace(typ), "hidden")
	}
	if v, ok := el.Attr("tabindex"); ok && strings.TrimSpace(v) != "-1" {
		return true
	}
	if role, ok := attrValue(el, "role"); ok && interactiveRoles[strings.ToLower(role)] {
		return true
	}
	return false
}

var nestedInteractive = register(&Rule{
	ID:              "nested-interactive",
	Description:     "Interactive elements must not be nested inside other interactive elements",
	Level:           diag.LevelA,
	Criterion:       "4.1.2",
	DocsURL:         "https://www.w3.org/WAI/WCAG21/Understanding/name-role-value.html",
	DefaultSeverity: diag.SevError,
	Check: func(r *Rule, el *markup.Element, _ *Context) []diag.Finding {
		if !interactive(el) {
			return nil
		}
		for p := el.Parent; p != nil; p = p.Parent {
			if interactive(p) {
				return one(r.finding(el.Span, ""))
			}
		}
		return nil
	},
})

// focusable is narrower than interactive: it tracks keyboard reachability,
// so anchors count only with an href and an explicit tabindex="-1" opts
// the element out.
func focusable(el *markup.Element) bool {
	if component(el) {
		return false
	}
	switch el.Tag {
	case "button", "select", "textarea", "iframe":
		return true
	case "a":
		return el.HasAttr("href")
	case "input":
		typ, _ := el.Attr("type")
		return !strings.EqualFold(strings.TrimSpace(typ), "hidden")
	}
	if v, ok := el.Attr("tabindex"); ok {
		return strings.TrimSpace(v) != "-1"
	}
	return false
}

func hiddenFromAccessibility(el *markup.Element) bool {
	v, ok := el.Attr("aria-hidden")
	return ok && strings.EqualFold(strings.TrimSpace(v), "true")
}

var ariaHiddenFocus = register(&Rule{
	ID:              "aria-hidden-focus",
	Description:     `Elements with aria-hidden="true" must not contain focusable elements`,
	Level:           diag.LevelA,
	Criterion:       "4.1.2",
	DocsURL:         "https://www.w3.org/WAI/WCAG21/Understanding/name-role-value.html",
	DefaultSeverity: diag.SevError,
	Check: func(r *Rule, el *markup.Element, _ *Context) []diag.Finding {
		if !focusable(el) {
			return nil
		}
		for p := el.Parent; p != nil; p = p.Parent {
			if hiddenFromAccessibility(p) {
				return one(r.finding(el.Span, ""))
			}
		}
		return nil
	},
})

// requiredParentRoles lists roles that only make sense inside a specific
// container role.
var requiredParentRoles = map[string][]string{
	"cell":             {"row"},
	"columnheader":     {"row"},
	"gridcell":         {"row"},
	"listitem":         {"list", "group"},
	"menuitem":         {"menu", "menubar", "group"},
	"menuitemcheckbox": {"menu", "menubar", "group"},
	"menuitemradio":    {"menu", "menubar", "group"},
	"option":           {"listbox", "group"},
	"row":              {"grid", "rowgroup", "table", "treegrid"},
	"rowheader":        {"row"},
	"tab":              {"tablist"},
	"treeitem":         {"tree", "group"},
}

// implicitContainerRoles covers containers that satisfy a role-ancestry
// requirement without an explicit role attribute.
var implicitContainerRoles = map[string]string{
	"ul": "list", "ol": "list", "menu": "list", "table": "table",
	"tr": "row", "thead": "rowgroup", "tbody": "rowgroup", "tfoot": "rowgroup",
}

func containerRole(el *markup.Element) (string, bool) {
	if v, ok := attrValue(el, "role"); ok {
		return strings.ToLower(v), true
	}
	if role, ok := implicitContainerRoles[el.Tag]; ok {
		return role, true
	}
	return "", false
}

var ariaRequiredParent = register(&Rule{
	ID:              "aria-required-parent",
	Description:     "Elements with ARIA roles must be contained in required parent roles",
	Level:           diag.LevelA,
	Criterion:       "1.3.1",
	DocsURL:         "https://www.w3.org/WAI/WCAG21/Understanding/info-and-relationships.html",
	DefaultSeverity: diag.SevError,
	Check: func(r *Rule, el *markup.Element, _ *Context) []diag.Finding {
		role, ok := attrValue(el, "role")
		if !ok {
			return nil
		}
		role = strings.ToLower(role)
		wanted, needs := requiredParentRoles[role]
		if !needs {
			return nil
		}
		for p := el.Parent; p != nil; p = p.Parent {
			if pr, ok := containerRole(p); ok && containsToken(wanted, pr) {
				return nil
			}
		}
		return one(r.finding(el.Span,
			fmt.Sprintf("Role %q requires an ancestor with role %s", role, strings.Join(wanted, " or "))))
	},
})
