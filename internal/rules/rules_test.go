package rules

import (
	"strings"
	"testing"

	"wcaglsp/internal/diag"
	"wcaglsp/internal/dialect"
	"wcaglsp/internal/markup"
	"wcaglsp/internal/syntax"
)

// check runs one rule over every projected element of source.
func check(t *testing.T, rule *Rule, d dialect.Dialect, source string) []diag.Finding {
	t.Helper()
	pool := syntax.NewPool()
	t.Cleanup(pool.Close)
	tree, err := pool.Parse(d, []byte(source), nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	t.Cleanup(tree.Close)

	ctx := NewContext(d)
	var out []diag.Finding
	markup.Walk(tree.RootNode(), []byte(source), d, func(el *markup.Element) {
		if rule.Matches(el.Tag) {
			out = append(out, rule.Check(rule, el, ctx)...)
		}
	})
	return out
}

func checkHTML(t *testing.T, id, source string) []diag.Finding {
	t.Helper()
	rule := ByID(id)
	if rule == nil {
		t.Fatalf("rule %q not registered", id)
	}
	return check(t, rule, dialect.HTML, source)
}

func checkTSX(t *testing.T, id, source string) []diag.Finding {
	t.Helper()
	rule := ByID(id)
	if rule == nil {
		t.Fatalf("rule %q not registered", id)
	}
	return check(t, rule, dialect.TSX, source)
}

func wantCount(t *testing.T, got []diag.Finding, want int) {
	t.Helper()
	if len(got) != want {
		t.Fatalf("expected %d findings, got %d: %+v", want, len(got), got)
	}
}

func TestRegistryIsWellFormed(t *testing.T) {
	seen := make(map[string]bool)
	for _, r := range All() {
		if r.ID == "" || r.Description == "" || r.Check == nil {
			t.Fatalf("incomplete rule descriptor: %+v", r)
		}
		if seen[r.ID] {
			t.Fatalf("duplicate rule id %q", r.ID)
		}
		seen[r.ID] = true
		if r.DocsURL == "" || !strings.HasPrefix(r.DocsURL, "https://www.w3.org/") {
			t.Fatalf("rule %s has no WCAG reference", r.ID)
		}
	}
	if len(All()) < 30 {
		t.Fatalf("registry too small: %d", len(All()))
	}
}

// Every rule builds its findings through the *Rule handed to Check, so the
// attributed rule id must always match the descriptor that fired.
func TestFindingsCarryOwningRuleID(t *testing.T) {
	source := `<html><body aria-hidden="true"><img src="a.jpg"><h3 id="x">Hi</h3>` +
		`<marquee id="x" accesskey="m" role="directory">go</marquee></body></html>`
	pool := syntax.NewPool()
	t.Cleanup(pool.Close)
	tree, err := pool.Parse(dialect.HTML, []byte(source), nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	t.Cleanup(tree.Close)

	ctx := NewContext(dialect.HTML)
	fired := 0
	markup.Walk(tree.RootNode(), []byte(source), dialect.HTML, func(el *markup.Element) {
		for _, rule := range All() {
			if !rule.AppliesTo(dialect.HTML) || !rule.Matches(el.Tag) {
				continue
			}
			for _, f := range rule.Check(rule, el, ctx) {
				fired++
				if f.RuleID != rule.ID {
					t.Fatalf("rule %s emitted finding attributed to %s", rule.ID, f.RuleID)
				}
			}
		}
	})
	if fired < 5 {
		t.Fatalf("expected several rules to fire, got %d findings", fired)
	}
}

func TestImgAlt(t *testing.T) {
	wantCount(t, checkHTML(t, "img-alt", `<img src="a.jpg">`), 1)
	wantCount(t, checkHTML(t, "img-alt", `<img src="a.jpg" alt="A photo">`), 0)
	wantCount(t, checkHTML(t, "img-alt", `<img src="a.jpg" alt="">`), 0)
	wantCount(t, checkHTML(t, "img-alt", `<div><img src="a.jpg" alt="A"><img src="b.jpg"></div>`), 1)
	wantCount(t, checkTSX(t, "img-alt", `const App = () => <img src="a.jpg" />;`), 1)
	wantCount(t, checkTSX(t, "img-alt", `const App = () => <img src="a.jpg" alt={label} />;`), 0)
}

func TestAreaAlt(t *testing.T) {
	wantCount(t, checkHTML(t, "area-alt", `<map><area href="#a"></map>`), 1)
	wantCount(t, checkHTML(t, "area-alt", `<map><area href="#a" alt="Zone"></map>`), 0)
	wantCount(t, checkHTML(t, "area-alt", `<map><area href="#a" aria-label="Zone"></map>`), 0)
}

func TestInputImageAlt(t *testing.T) {
	wantCount(t, checkHTML(t, "input-image-alt", `<input type="image" src="go.png">`), 1)
	wantCount(t, checkHTML(t, "input-image-alt", `<input type="image" src="go.png" alt="Go">`), 0)
	wantCount(t, checkHTML(t, "input-image-alt", `<input type="text">`), 0)
}

func TestAnchorContent(t *testing.T) {
	wantCount(t, checkHTML(t, "anchor-content", `<a href="/x"></a>`), 1)
	wantCount(t, checkHTML(t, "anchor-content", `<a href="/x">Home</a>`), 0)
	wantCount(t, checkHTML(t, "anchor-content", `<a href="/x" aria-label="Home"></a>`), 0)
	wantCount(t, checkHTML(t, "anchor-content", `<a href="/x"><b>Deep</b></a>`), 0)
}

func TestButtonName(t *testing.T) {
	wantCount(t, checkHTML(t, "button-name", `<button></button>`), 1)
	wantCount(t, checkHTML(t, "button-name", `<button>Save</button>`), 0)
	wantCount(t, checkHTML(t, "button-name", `<button aria-label="Save"></button>`), 0)
}

func TestHeadingContent(t *testing.T) {
	wantCount(t, checkHTML(t, "heading-content", `<h1></h1>`), 1)
	wantCount(t, checkHTML(t, "heading-content", `<h1>Title</h1>`), 0)
}

func TestHeadingOrder(t *testing.T) {
	wantCount(t, checkHTML(t, "heading-order", `<h1>A</h1><h3>B</h3>`), 1)
	wantCount(t, checkHTML(t, "heading-order", `<h1>A</h1><h2>B</h2><h3>C</h3>`), 0)
	// Starting below h1 counts as a skip.
	wantCount(t, checkHTML(t, "heading-order", `<h2>A</h2>`), 1)
	wantCount(t, checkHTML(t, "heading-order", `<h1>A</h1><h1>B</h1>`), 0)
	wantCount(t, checkHTML(t, "heading-order", `<h1>A</h1><h2>B</h2><h3>C</h3><h2>D</h2>`), 0)
}

func TestIframeTitle(t *testing.T) {
	wantCount(t, checkHTML(t, "iframe-title", `<iframe src="x.html"></iframe>`), 1)
	wantCount(t, checkHTML(t, "iframe-title", `<iframe src="x.html" title=""></iframe>`), 1)
	wantCount(t, checkHTML(t, "iframe-title", `<iframe src="x.html" title="Map"></iframe>`), 0)
}

func TestNoRedundantAlt(t *testing.T) {
	wantCount(t, checkHTML(t, "no-redundant-alt", `<img src="a.jpg" alt="Image of a dog">`), 1)
	wantCount(t, checkHTML(t, "no-redundant-alt", `<img src="a.jpg" alt="A dog">`), 0)
}

func TestHTMLLang(t *testing.T) {
	wantCount(t, checkHTML(t, "html-lang", `<html><body></body></html>`), 1)
	wantCount(t, checkHTML(t, "html-lang", `<html lang=""><body></body></html>`), 1)
	wantCount(t, checkHTML(t, "html-lang", `<html lang="en"><body></body></html>`), 0)
}

func TestLangValid(t *testing.T) {
	wantCount(t, checkHTML(t, "lang-valid", `<html lang="en"><body></body></html>`), 0)
	wantCount(t, checkHTML(t, "lang-valid", `<html lang="en-US"><body></body></html>`), 0)
	wantCount(t, checkHTML(t, "lang-valid", `<html lang="123"><body></body></html>`), 1)
	wantCount(t, checkHTML(t, "lang-valid", `<p lang="!!">x</p>`), 1)
}

func TestMetaRefresh(t *testing.T) {
	wantCount(t, checkHTML(t, "meta-refresh", `<meta http-equiv="refresh" content="5;url=/next">`), 1)
	wantCount(t, checkHTML(t, "meta-refresh", `<meta http-equiv="refresh" content="0;url=/next">`), 0)
	wantCount(t, checkHTML(t, "meta-refresh", `<meta charset="utf-8">`), 0)
}

func TestNoDuplicateID(t *testing.T) {
	wantCount(t, checkHTML(t, "no-duplicate-id", `<div id="a"></div><div id="a"></div>`), 1)
	wantCount(t, checkHTML(t, "no-duplicate-id", `<div id="a"></div><div id="b"></div>`), 0)
}

func TestNoAccessKey(t *testing.T) {
	wantCount(t, checkHTML(t, "no-access-key", `<button accesskey="s">Save</button>`), 1)
	wantCount(t, checkHTML(t, "no-access-key", `<button>Save</button>`), 0)
}

func TestNoAutoplay(t *testing.T) {
	wantCount(t, checkHTML(t, "no-autoplay", `<video autoplay src="v.mp4"></video>`), 1)
	wantCount(t, checkHTML(t, "no-autoplay", `<video autoplay muted src="v.mp4"></video>`), 0)
	wantCount(t, checkHTML(t, "no-autoplay", `<video src="v.mp4"></video>`), 0)
}

func TestNoDistractingElements(t *testing.T) {
	wantCount(t, checkHTML(t, "no-distracting-elements", `<marquee>hi</marquee>`), 1)
	wantCount(t, checkHTML(t, "no-distracting-elements", `<blink>hi</blink>`), 1)
	wantCount(t, checkHTML(t, "no-distracting-elements", `<div>hi</div>`), 0)
}

func TestNoPositiveTabindex(t *testing.T) {
	wantCount(t, checkHTML(t, "no-positive-tabindex", `<div tabindex="5"></div>`), 1)
	wantCount(t, checkHTML(t, "no-positive-tabindex", `<div tabindex="0"></div>`), 0)
	wantCount(t, checkHTML(t, "no-positive-tabindex", `<div tabindex="-1"></div>`), 0)
}

func TestScopeAttr(t *testing.T) {
	wantCount(t, checkHTML(t, "scope-attr", `<td scope="row">x</td>`), 1)
	wantCount(t, checkHTML(t, "scope-attr", `<th scope="row">x</th>`), 0)
}

func TestClickEvents(t *testing.T) {
	wantCount(t, checkHTML(t, "click-events-have-key-events", `<div onclick="go()"></div>`), 1)
	wantCount(t, checkHTML(t, "click-events-have-key-events", `<div onclick="go()" onkeydown="go()"></div>`), 0)
	// Natively interactive elements handle keyboard themselves.
	wantCount(t, checkHTML(t, "click-events-have-key-events", `<button onclick="go()">Go</button>`), 0)
	wantCount(t, checkTSX(t, "click-events-have-key-events", `const C = () => <div onClick={go} />;`), 1)
	wantCount(t, checkTSX(t, "click-events-have-key-events", `const C = () => <div onClick={go} onKeyDown={go} />;`), 0)
	// Component semantics are unknowable statically.
	wantCount(t, checkTSX(t, "click-events-have-key-events", `const C = () => <Card onClick={go} />;`), 0)
}

func TestMouseEvents(t *testing.T) {
	wantCount(t, checkHTML(t, "mouse-events-have-key-events", `<div onmouseover="s()"></div>`), 1)
	wantCount(t, checkHTML(t, "mouse-events-have-key-events", `<div onmouseover="s()" onfocus="s()"></div>`), 0)
	wantCount(t, checkHTML(t, "mouse-events-have-key-events", `<div onmouseover="s()" onmouseout="h()"></div>`), 2)
	wantCount(t, checkTSX(t, "mouse-events-have-key-events", `const C = () => <div onMouseOver={s} onFocus={s} />;`), 0)
}

func TestAriaRole(t *testing.T) {
	wantCount(t, checkHTML(t, "aria-role", `<div role="button"></div>`), 0)
	wantCount(t, checkHTML(t, "aria-role", `<div role="buton"></div>`), 1)
	wantCount(t, checkTSX(t, "aria-role", `const C = () => <div role={dynamic} />;`), 0)
}

func TestAriaProps(t *testing.T) {
	wantCount(t, checkHTML(t, "aria-props", `<div aria-label="x"></div>`), 0)
	wantCount(t, checkHTML(t, "aria-props", `<div aria-lable="x"></div>`), 1)
}

func TestNoRedundantRoles(t *testing.T) {
	wantCount(t, checkHTML(t, "no-redundant-roles", `<button role="button">Go</button>`), 1)
	wantCount(t, checkHTML(t, "no-redundant-roles", `<nav role="navigation"></nav>`), 1)
	wantCount(t, checkHTML(t, "no-redundant-roles", `<div role="button"></div>`), 0)
}

func TestAriaDeprecatedRole(t *testing.T) {
	wantCount(t, checkHTML(t, "aria-deprecated-role", `<div role="directory"></div>`), 1)
	wantCount(t, checkHTML(t, "aria-deprecated-role", `<div role="doc-endnote"></div>`), 1)
	wantCount(t, checkHTML(t, "aria-deprecated-role", `<div role="button"></div>`), 0)
	wantCount(t, checkHTML(t, "aria-deprecated-role", `<div></div>`), 0)
	wantCount(t, checkTSX(t, "aria-deprecated-role", `const C = () => <div role="directory" />;`), 1)
}

func TestAriaValidAttrValue(t *testing.T) {
	wantCount(t, checkHTML(t, "aria-valid-attr-value", `<div aria-hidden="yes"></div>`), 1)
	wantCount(t, checkHTML(t, "aria-valid-attr-value", `<div aria-hidden="true"></div>`), 0)
	wantCount(t, checkHTML(t, "aria-valid-attr-value", `<div aria-checked="mixed"></div>`), 0)
	wantCount(t, checkHTML(t, "aria-valid-attr-value", `<div aria-level="abc"></div>`), 1)
	wantCount(t, checkHTML(t, "aria-valid-attr-value", `<div aria-valuenow="3.5"></div>`), 0)
	wantCount(t, checkHTML(t, "aria-valid-attr-value", `<div aria-live="loud"></div>`), 1)
	wantCount(t, checkHTML(t, "aria-valid-attr-value", `<div aria-relevant="additions text"></div>`), 0)
	wantCount(t, checkHTML(t, "aria-valid-attr-value", `<div aria-relevant="bogus"></div>`), 1)
	// Free-form attributes carry no value space.
	wantCount(t, checkHTML(t, "aria-valid-attr-value", `<div aria-label="anything at all"></div>`), 0)
	wantCount(t, checkTSX(t, "aria-valid-attr-value", `const C = () => <div aria-hidden={flag} />;`), 0)

	got := checkHTML(t, "aria-valid-attr-value", `<div aria-checked="maybe"></div>`)
	wantCount(t, got, 1)
	if !strings.Contains(got[0].Message, `"mixed"`) {
		t.Fatalf("message should spell the expected values: %q", got[0].Message)
	}
}

func TestAriaAllowedAttr(t *testing.T) {
	wantCount(t, checkHTML(t, "aria-allowed-attr", `<div role="button" aria-pressed="true"></div>`), 0)
	wantCount(t, checkHTML(t, "aria-allowed-attr", `<div role="button" aria-checked="true"></div>`), 1)
	// Global attributes are allowed on every role.
	wantCount(t, checkHTML(t, "aria-allowed-attr", `<div role="list" aria-label="x"></div>`), 0)
	// Roles without a known vocabulary are not restricted.
	wantCount(t, checkHTML(t, "aria-allowed-attr", `<div role="mystery" aria-checked="true"></div>`), 0)
	wantCount(t, checkHTML(t, "aria-allowed-attr", `<div aria-checked="true"></div>`), 0)
}

func TestAriaProhibitedAttr(t *testing.T) {
	wantCount(t, checkHTML(t, "aria-prohibited-attr", `<span role="presentation" aria-label="x"></span>`), 1)
	wantCount(t, checkHTML(t, "aria-prohibited-attr", `<div role="generic" aria-roledescription="x"></div>`), 1)
	wantCount(t, checkHTML(t, "aria-prohibited-attr", `<div role="button" aria-label="x"></div>`), 0)
	wantCount(t, checkHTML(t, "aria-prohibited-attr", `<span aria-label="x"></span>`), 0)
}

func TestAriaHiddenBody(t *testing.T) {
	wantCount(t, checkHTML(t, "aria-hidden-body", `<body aria-hidden="true"></body>`), 1)
	wantCount(t, checkHTML(t, "aria-hidden-body", `<body aria-hidden="false"></body>`), 0)
	wantCount(t, checkHTML(t, "aria-hidden-body", `<body></body>`), 0)
	wantCount(t, checkHTML(t, "aria-hidden-body", `<div aria-hidden="true"></div>`), 0)
	wantCount(t, checkTSX(t, "aria-hidden-body", `const App = () => <body aria-hidden="true"><p>x</p></body>;`), 1)
}

func TestNestedInteractive(t *testing.T) {
	wantCount(t, checkHTML(t, "nested-interactive", `<button><a href="/x">go</a></button>`), 1)
	wantCount(t, checkHTML(t, "nested-interactive", `<div><button>x</button></div>`), 0)
	wantCount(t, checkHTML(t, "nested-interactive", `<button><span role="button">x</span></button>`), 1)
	wantCount(t, checkHTML(t, "nested-interactive", `<button><span tabindex="-1">x</span></button>`), 0)
	wantCount(t, checkHTML(t, "nested-interactive", `<div tabindex="0"><input type="hidden"></div>`), 0)
	wantCount(t, checkHTML(t, "nested-interactive", `<div tabindex="0"><input type="text"></div>`), 1)
	wantCount(t, checkTSX(t, "nested-interactive", `const C = () => <button><Link /></button>;`), 0)
}

func TestAriaHiddenFocus(t *testing.T) {
	wantCount(t, checkHTML(t, "aria-hidden-focus", `<div aria-hidden="true"><button>x</button></div>`), 1)
	wantCount(t, checkHTML(t, "aria-hidden-focus", `<div aria-hidden="true"><a href="/x">t</a></div>`), 1)
	// An anchor without href is not keyboard reachable.
	wantCount(t, checkHTML(t, "aria-hidden-focus", `<div aria-hidden="true"><a>t</a></div>`), 0)
	wantCount(t, checkHTML(t, "aria-hidden-focus", `<div aria-hidden="false"><button>x</button></div>`), 0)
	wantCount(t, checkHTML(t, "aria-hidden-focus", `<div aria-hidden="true"><div tabindex="-1">x</div></div>`), 0)
	// Hiding applies to descendants, not the carrier itself.
	wantCount(t, checkHTML(t, "aria-hidden-focus", `<button aria-hidden="true">x</button>`), 0)
}

func TestAriaRequiredParent(t *testing.T) {
	wantCount(t, checkHTML(t, "aria-required-parent", `<div role="listitem">x</div>`), 1)
	wantCount(t, checkHTML(t, "aria-required-parent", `<div role="list"><div role="listitem">x</div></div>`), 0)
	wantCount(t, checkHTML(t, "aria-required-parent", `<ul><li role="listitem">x</li></ul>`), 0)
	wantCount(t, checkHTML(t, "aria-required-parent", `<div role="tab">x</div>`), 1)
	wantCount(t, checkHTML(t, "aria-required-parent", `<div role="tablist"><div role="tab">x</div></div>`), 0)
	wantCount(t, checkHTML(t, "aria-required-parent", `<table><tr><td role="cell">x</td></tr></table>`), 0)
	wantCount(t, checkHTML(t, "aria-required-parent", `<div role="button">x</div>`), 0)
}

func TestContextStateIsPerRun(t *testing.T) {
	// Two separate runs must not share heading state.
	wantCount(t, checkHTML(t, "heading-order", `<h1>A</h1><h2>B</h2>`), 0)
	wantCount(t, checkHTML(t, "heading-order", `<h2>only</h2>`), 1)
}

func TestFindingMessageCarriesWCAGReference(t *testing.T) {
	got := checkHTML(t, "img-alt", `<img src="a.jpg">`)
	wantCount(t, got, 1)
	if !strings.Contains(got[0].Message, "[WCAG 1.1.1 Level A]") {
		t.Fatalf("message = %q", got[0].Message)
	}
}
