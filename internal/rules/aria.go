package rules

import (
	"fmt"
	"strconv"
	"strings"

	"wcaglsp/internal/diag"
	"wcaglsp/internal/markup"
)

// ARIA vocabulary rules.

var validRoles = map[string]bool{
	"alert": true, "alertdialog": true, "application": true, "article": true,
	"banner": true, "blockquote": true, "button": true, "caption": true,
	"cell": true, "checkbox": true, "code": true, "columnheader": true,
	"combobox": true, "complementary": true, "contentinfo": true,
	"definition": true, "deletion": true, "dialog": true, "directory": true,
	"document": true, "emphasis": true, "feed": true, "figure": true,
	"form": true, "generic": true, "grid": true, "gridcell": true,
	"group": true, "heading": true, "img": true, "insertion": true,
	"link": true, "list": true, "listbox": true, "listitem": true,
	"log": true, "main": true, "marquee": true, "math": true, "menu": true,
	"menubar": true, "menuitem": true, "menuitemcheckbox": true,
	"menuitemradio": true, "meter": true, "navigation": true, "none": true,
	"note": true, "option": true, "paragraph": true, "presentation": true,
	"progressbar": true, "radio": true, "radiogroup": true, "region": true,
	"row": true, "rowgroup": true, "rowheader": true, "scrollbar": true,
	"search": true, "searchbox": true, "separator": true, "slider": true,
	"spinbutton": true, "status": true, "strong": true, "subscript": true,
	"superscript": true, "switch": true, "tab": true, "table": true,
	"tablist": true, "tabpanel": true, "term": true, "textbox": true,
	"time": true, "timer": true, "toolbar": true, "tooltip": true,
	"tree": true, "treegrid": true, "treeitem": true,
}

var validAriaProps = map[string]bool{
	"aria-activedescendant": true, "aria-atomic": true,
	"aria-autocomplete": true, "aria-braillelabel": true,
	"aria-brailleroledescription": true, "aria-busy": true,
	"aria-checked": true, "aria-colcount": true, "aria-colindex": true,
	"aria-colindextext": true, "aria-colspan": true, "aria-controls": true,
	"aria-current": true, "aria-describedby": true, "aria-description": true,
	"aria-details": true, "aria-disabled": true, "aria-dropeffect": true,
	"aria-errormessage": true, "aria-expanded": true, "aria-flowto": true,
	"aria-grabbed": true, "aria-haspopup": true, "aria-hidden": true,
	"aria-invalid": true, "aria-keyshortcuts": true, "aria-label": true,
	"aria-labelledby": true, "aria-level": true, "aria-live": true,
	"aria-modal": true, "aria-multiline": true, "aria-multiselectable": true,
	"aria-orientation": true, "aria-owns": true, "aria-placeholder": true,
	"aria-posinset": true, "aria-pressed": true, "aria-readonly": true,
	"aria-relevant": true, "aria-required": true,
	"aria-roledescription": true, "aria-rowcount": true,
	"aria-rowindex": true, "aria-rowindextext": true, "aria-rowspan": true,
	"aria-selected": true, "aria-setsize": true, "aria-sort": true,
	"aria-valuemax": true, "aria-valuemin": true, "aria-valuenow": true,
	"aria-valuetext": true,
}

var ariaRole = register(&Rule{
	ID:              "aria-role",
	Description:     "ARIA role must be a valid role value",
	Level:           diag.LevelA,
	Criterion:       "4.1.2",
	DocsURL:         "https://www.w3.org/WAI/WCAG21/Understanding/name-role-value.html",
	DefaultSeverity: diag.SevError,
	Check: func(r *Rule, el *markup.Element, _ *Context) []diag.Finding {
		v, ok := attrValue(el, "role")
		if !ok {
			return nil
		}
		for _, role := range strings.Fields(v) {
			if !validRoles[strings.ToLower(role)] {
				return one(r.finding(el.Span,
					fmt.Sprintf("%q is not a valid ARIA role", role)))
			}
		}
		return nil
	},
})

var ariaProps = register(&Rule{
	ID:              "aria-props",
	Description:     "ARIA attributes must be valid",
	Level:           diag.LevelA,
	Criterion:       "4.1.2",
	DocsURL:         "https://www.w3.org/WAI/WCAG21/Understanding/name-role-value.html",
	DefaultSeverity: diag.SevError,
	Check: func(r *Rule, el *markup.Element, _ *Context) []diag.Finding {
		var out []diag.Finding
		for name := range el.Attrs {
			if !strings.HasPrefix(name, "aria-") || validAriaProps[name] {
				continue
			}
			out = append(out, r.finding(el.Span,
				fmt.Sprintf("%q is not a valid ARIA attribute", name)))
		}
		return out
	},
})

var deprecatedRoles = map[string]bool{
	"directory": true, "doc-biblioentry": true, "doc-endnote": true,
}

var ariaDeprecatedRole = register(&Rule{
	ID:              "aria-deprecated-role",
	Description:     "ARIA role must not be a deprecated role value",
	Level:           diag.LevelA,
	Criterion:       "4.1.2",
	DocsURL:         "https://www.w3.org/WAI/WCAG21/Understanding/name-role-value.html",
	DefaultSeverity: diag.SevWarning,
	Check: func(r *Rule, el *markup.Element, _ *Context) []diag.Finding {
		v, ok := attrValue(el, "role")
		if !ok {
			return nil
		}
		var out []diag.Finding
		for _, role := range strings.Fields(v) {
			if deprecatedRoles[strings.ToLower(role)] {
				out = append(out, r.finding(el.Span,
					fmt.Sprintf("ARIA role %q is deprecated", role)))
			}
		}
		return out
	},
})

type ariaValueKind int

const (
	ariaBool ariaValueKind = iota + 1
	ariaTristate
	ariaInt
	ariaNumber
	ariaTokens
)

// ariaValueSpec describes the value space of one ARIA attribute. Attributes
// absent from ariaValueSpecs carry free-form values and are never checked.
type ariaValueSpec struct {
	kind   ariaValueKind
	tokens []string
}

var ariaValueSpecs = map[string]ariaValueSpec{
	"aria-atomic":          {kind: ariaBool},
	"aria-busy":            {kind: ariaBool},
	"aria-disabled":        {kind: ariaBool},
	"aria-grabbed":         {kind: ariaBool},
	"aria-hidden":          {kind: ariaBool},
	"aria-modal":           {kind: ariaBool},
	"aria-multiline":       {kind: ariaBool},
	"aria-multiselectable": {kind: ariaBool},
	"aria-readonly":        {kind: ariaBool},
	"aria-required":        {kind: ariaBool},

	"aria-checked": {kind: ariaTristate},
	"aria-pressed": {kind: ariaTristate},

	"aria-autocomplete": {kind: ariaTokens, tokens: []string{"inline", "list", "both", "none"}},
	"aria-current":      {kind: ariaTokens, tokens: []string{"page", "step", "location", "date", "time", "true", "false"}},
	"aria-dropeffect":   {kind: ariaTokens, tokens: []string{"copy", "execute", "link", "move", "none", "popup"}},
	"aria-expanded":     {kind: ariaTokens, tokens: []string{"true", "false", "undefined"}},
	"aria-haspopup":     {kind: ariaTokens, tokens: []string{"true", "false", "menu", "listbox", "tree", "grid", "dialog"}},
	"aria-invalid":      {kind: ariaTokens, tokens: []string{"grammar", "false", "spelling", "true"}},
	"aria-live":         {kind: ariaTokens, tokens: []string{"assertive", "off", "polite"}},
	"aria-orientation":  {kind: ariaTokens, tokens: []string{"horizontal", "vertical", "undefined"}},
	"aria-relevant":     {kind: ariaTokens, tokens: []string{"additions", "removals", "text", "all"}},
	"aria-selected":     {kind: ariaTokens, tokens: []string{"true", "false", "undefined"}},
	"aria-sort":         {kind: ariaTokens, tokens: []string{"ascending", "descending", "none", "other"}},

	"aria-colcount": {kind: ariaInt},
	"aria-colindex": {kind: ariaInt},
	"aria-colspan":  {kind: ariaInt},
	"aria-level":    {kind: ariaInt},
	"aria-posinset": {kind: ariaInt},
	"aria-rowcount": {kind: ariaInt},
	"aria-rowindex": {kind: ariaInt},
	"aria-rowspan":  {kind: ariaInt},
	"aria-setsize":  {kind: ariaInt},

	"aria-valuemax": {kind: ariaNumber},
	"aria-valuemin": {kind: ariaNumber},
	"aria-valuenow": {kind: ariaNumber},
}

func (s ariaValueSpec) valid(name, value string) bool {
	switch s.kind {
	case ariaBool:
		return value == "true" || value == "false"
	case ariaTristate:
		return value == "true" || value == "false" || value == "mixed"
	case ariaInt:
		_, err := strconv.ParseInt(value, 10, 64)
		return err == nil
	case ariaNumber:
		_, err := strconv.ParseFloat(value, 64)
		return err == nil
	case ariaTokens:
		// aria-relevant is a space-separated token list; the rest take
		// exactly one token.
		if name == "aria-relevant" {
			fields := strings.Fields(value)
			if len(fields) == 0 {
				return false
			}
			for _, f := range fields {
				if !containsToken(s.tokens, f) {
					return false
				}
			}
			return true
		}
		return containsToken(s.tokens, value)
	}
	return false
}

func (s ariaValueSpec) expected() string {
	switch s.kind {
	case ariaBool:
		return `"true" or "false"`
	case ariaTristate:
		return `"true", "false", or "mixed"`
	case ariaInt:
		return "an integer"
	case ariaNumber:
		return "a number"
	default:
		return "one of: " + strings.Join(s.tokens, ", ")
	}
}

func containsToken(tokens []string, v string) bool {
	for _, t := range tokens {
		if t == v {
			return true
		}
	}
	return false
}

var ariaValidAttrValue = register(&Rule{
	ID:              "aria-valid-attr-value",
	Description:     "ARIA attribute values must be valid",
	Level:           diag.LevelA,
	Criterion:       "4.1.2",
	DocsURL:         "https://www.w3.org/WAI/WCAG21/Understanding/name-role-value.html",
	DefaultSeverity: diag.SevError,
	Check: func(r *Rule, el *markup.Element, _ *Context) []diag.Finding {
		var out []diag.Finding
		for name, value := range el.Attrs {
			spec, known := ariaValueSpecs[name]
			if !known {
				continue
			}
			value = strings.TrimSpace(value)
			if value == "" || markup.IsDynamic(value) {
				continue
			}
			if !spec.valid(name, value) {
				out = append(out, r.finding(el.Span,
					fmt.Sprintf("Invalid value %q for %s, expected %s", value, name, spec.expected())))
			}
		}
		return out
	},
})

// globalAriaAttrs are valid on any role and never restricted by
// roleAllowedAttrs.
var globalAriaAttrs = map[string]bool{
	"aria-atomic": true, "aria-braillelabel": true,
	"aria-brailleroledescription": true, "aria-busy": true,
	"aria-controls": true, "aria-current": true, "aria-describedby": true,
	"aria-description": true, "aria-details": true, "aria-disabled": true,
	"aria-dropeffect": true, "aria-errormessage": true, "aria-flowto": true,
	"aria-grabbed": true, "aria-haspopup": true, "aria-hidden": true,
	"aria-invalid": true, "aria-keyshortcuts": true, "aria-label": true,
	"aria-labelledby": true, "aria-live": true, "aria-owns": true,
	"aria-relevant": true, "aria-roledescription": true,
}

// roleAllowedAttrs lists the non-global ARIA attributes each role accepts.
// Roles not listed here accept anything; rules only restrict roles with a
// known vocabulary.
var roleAllowedAttrs = map[string][]string{
	"alert":       {},
	"alertdialog": {"aria-modal"},
	"button":      {"aria-expanded", "aria-pressed"},
	"checkbox":    {"aria-checked", "aria-readonly", "aria-required"},
	"combobox":    {"aria-activedescendant", "aria-autocomplete", "aria-expanded", "aria-required"},
	"dialog":      {"aria-modal"},
	"grid":        {"aria-activedescendant", "aria-colcount", "aria-multiselectable", "aria-readonly", "aria-rowcount"},
	"gridcell": {"aria-colindex", "aria-colspan", "aria-expanded", "aria-readonly",
		"aria-required", "aria-rowindex", "aria-rowspan", "aria-selected"},
	"heading":          {"aria-level"},
	"img":              {},
	"link":             {"aria-expanded"},
	"list":             {},
	"listbox":          {"aria-activedescendant", "aria-expanded", "aria-multiselectable", "aria-orientation", "aria-required"},
	"listitem":         {"aria-level", "aria-posinset", "aria-setsize"},
	"log":              {},
	"menu":             {"aria-activedescendant", "aria-orientation"},
	"menubar":          {"aria-activedescendant", "aria-orientation"},
	"menuitem":         {"aria-posinset", "aria-setsize"},
	"menuitemcheckbox": {"aria-checked", "aria-posinset", "aria-setsize"},
	"menuitemradio":    {"aria-checked", "aria-posinset", "aria-setsize"},
	"meter":            {"aria-valuemax", "aria-valuemin", "aria-valuenow", "aria-valuetext"},
	"navigation":       {},
	"option":           {"aria-checked", "aria-posinset", "aria-selected", "aria-setsize"},
	"progressbar":      {"aria-valuemax", "aria-valuemin", "aria-valuenow", "aria-valuetext"},
	"radio":            {"aria-checked", "aria-posinset", "aria-setsize"},
	"radiogroup":       {"aria-orientation", "aria-readonly", "aria-required"},
	"row": {"aria-colindex", "aria-expanded", "aria-level", "aria-posinset",
		"aria-rowindex", "aria-selected", "aria-setsize"},
	"rowheader": {"aria-colindex", "aria-colspan", "aria-expanded", "aria-readonly",
		"aria-required", "aria-rowindex", "aria-rowspan", "aria-selected", "aria-sort"},
	"scrollbar": {"aria-controls", "aria-orientation", "aria-valuemax", "aria-valuemin", "aria-valuenow", "aria-valuetext"},
	"searchbox": {"aria-activedescendant", "aria-autocomplete", "aria-multiline",
		"aria-placeholder", "aria-readonly", "aria-required"},
	"separator":  {"aria-orientation", "aria-valuemax", "aria-valuemin", "aria-valuenow", "aria-valuetext"},
	"slider":     {"aria-orientation", "aria-readonly", "aria-valuemax", "aria-valuemin", "aria-valuenow", "aria-valuetext"},
	"spinbutton": {"aria-readonly", "aria-required", "aria-valuemax", "aria-valuemin", "aria-valuenow", "aria-valuetext"},
	"status":     {},
	"switch":     {"aria-checked", "aria-readonly"},
	"tab":        {"aria-expanded", "aria-posinset", "aria-selected", "aria-setsize"},
	"table":      {"aria-colcount", "aria-rowcount"},
	"tablist":    {"aria-activedescendant", "aria-multiselectable", "aria-orientation"},
	"tabpanel":   {},
	"textbox": {"aria-activedescendant", "aria-autocomplete", "aria-multiline",
		"aria-placeholder", "aria-readonly", "aria-required"},
	"toolbar": {"aria-activedescendant", "aria-orientation"},
	"tooltip": {},
	"tree":    {"aria-activedescendant", "aria-multiselectable", "aria-orientation", "aria-required"},
	"treegrid": {"aria-activedescendant", "aria-colcount", "aria-multiselectable",
		"aria-orientation", "aria-readonly", "aria-required", "aria-rowcount"},
	"treeitem": {"aria-checked", "aria-expanded", "aria-level", "aria-posinset", "aria-selected", "aria-setsize"},
}

var ariaAllowedAttr = register(&Rule{
	ID:              "aria-allowed-attr",
	Description:     "ARIA attributes must be allowed for the element's role",
	Level:           diag.LevelA,
	Criterion:       "4.1.2",
	DocsURL:         "https://www.w3.org/WAI/WCAG21/Understanding/name-role-value.html",
	DefaultSeverity: diag.SevError,
	Check: func(r *Rule, el *markup.Element, _ *Context) []diag.Finding {
		role, ok := attrValue(el, "role")
		if !ok {
			return nil
		}
		allowed, known := roleAllowedAttrs[strings.ToLower(role)]
		if !known {
			return nil
		}
		var out []diag.Finding
		for name := range el.Attrs {
			if !strings.HasPrefix(name, "aria-") || globalAriaAttrs[name] {
				continue
			}
			if containsToken(allowed, name) {
				continue
			}
			out = append(out, r.finding(el.Span,
				fmt.Sprintf("%s is not allowed on role %q", name, role)))
		}
		return out
	},
})

// roleProhibitedAttrs lists naming attributes certain roles must not
// carry; these roles take their name from content alone.
var roleProhibitedAttrs = map[string][]string{
	"caption":      {"aria-label", "aria-labelledby"},
	"code":         {"aria-label", "aria-labelledby"},
	"definition":   {"aria-label", "aria-labelledby"},
	"deletion":     {"aria-label", "aria-labelledby"},
	"emphasis":     {"aria-label", "aria-labelledby"},
	"generic":      {"aria-label", "aria-labelledby", "aria-roledescription"},
	"insertion":    {"aria-label", "aria-labelledby"},
	"none":         {"aria-label", "aria-labelledby"},
	"paragraph":    {"aria-label", "aria-labelledby"},
	"presentation": {"aria-label", "aria-labelledby"},
	"strong":       {"aria-label", "aria-labelledby"},
	"subscript":    {"aria-label", "aria-labelledby"},
	"superscript":  {"aria-label", "aria-labelledby"},
	"term":         {"aria-label", "aria-labelledby"},
	"time":         {"aria-label", "aria-labelledby"},
}

var ariaProhibitedAttr = register(&Rule{
	ID:              "aria-prohibited-attr",
	Description:     "ARIA attributes must not be used where they are prohibited",
	Level:           diag.LevelA,
	Criterion:       "4.1.2",
	DocsURL:         "https://www.w3.org/WAI/WCAG21/Understanding/name-role-value.html",
	DefaultSeverity: diag.SevError,
	Check: func(r *Rule, el *markup.Element, _ *Context) []diag.Finding {
		role, ok := attrValue(el, "role")
		if !ok {
			return nil
		}
		prohibited, known := roleProhibitedAttrs[strings.ToLower(role)]
		if !known {
			return nil
		}
		var out []diag.Finding
		for name := range el.Attrs {
			if !strings.HasPrefix(name, "aria-") || !containsToken(prohibited, name) {
				continue
			}
			out = append(out, r.finding(el.Span,
				fmt.Sprintf("%s is prohibited on role %q", name, role)))
		}
		return out
	},
})

// implicitRoles maps tags to the role the platform already assigns; an
// explicit matching role attribute is redundant.
var implicitRoles = map[string]string{
	"a": "link", "article": "article", "aside": "complementary",
	"button": "button", "footer": "contentinfo", "form": "form",
	"h1": "heading", "h2": "heading", "h3": "heading", "h4": "heading",
	"h5": "heading", "h6": "heading", "header": "banner", "img": "img",
	"li": "listitem", "main": "main", "nav": "navigation", "ol": "list",
	"table": "table", "textarea": "textbox", "ul": "list",
}

var noRedundantRoles = register(&Rule{
	ID:              "no-redundant-roles",
	Description:     "Elements should not have redundant ARIA roles",
	Level:           diag.LevelA,
	Criterion:       "4.1.2",
	DocsURL:         "https://www.w3.org/WAI/WCAG21/Understanding/name-role-value.html",
	DefaultSeverity: diag.SevWarning,
	Check: func(r *Rule, el *markup.Element, _ *Context) []diag.Finding {
		v, ok := attrValue(el, "role")
		if !ok {
			return nil
		}
		implicit, known := implicitRoles[el.Tag]
		if !known || !strings.EqualFold(v, implicit) {
			return nil
		}
		return one(r.finding(el.Span,
			fmt.Sprintf("role=%q is redundant on <%s>", v, el.Tag)))
	},
})
