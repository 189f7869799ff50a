package engine

import (
	"strings"
	"testing"

	"wcaglsp/internal/config"
	"wcaglsp/internal/diag"
	"wcaglsp/internal/dialect"
)

// allFindings collects every finding the full ruleset produces for an HTML
// fragment; resolution tests then filter and re-rank them through Resolve.
func allFindings(t *testing.T, source string) []diag.Finding {
	t.Helper()
	return findingsFor(t, dialect.HTML, source, "")
}

func TestResolveSeverityForLevelAViolation(t *testing.T) {
	findings := allFindings(t, `<img src="a.jpg">`)
	got := Resolve(findings, config.Default())
	if len(got) != 1 {
		t.Fatalf("diagnostics = %+v", got)
	}
	d := got[0]
	if d.RuleID != "img-alt" {
		t.Fatalf("rule = %q", d.RuleID)
	}
	if d.Severity != diag.SevError {
		t.Fatalf("level A violations default to errors, got %v", d.Severity)
	}
	if !strings.HasPrefix(d.DocsURL, "https://www.w3.org/") {
		t.Fatalf("docs url = %q", d.DocsURL)
	}
}

func TestResolveAppliesRuleOverride(t *testing.T) {
	findings := allFindings(t, `<img src="a.jpg">`)
	snap := config.Parse("[rules]\nimg-alt = \"warning\"\n")
	got := Resolve(findings, snap)
	if len(got) != 1 || got[0].Severity != diag.SevWarning {
		t.Fatalf("override not applied: %+v", got)
	}
}

func TestResolveAppliesLevelDefault(t *testing.T) {
	findings := allFindings(t, `<img src="a.jpg">`)
	snap := config.Parse("[severity]\nA = \"warning\"\n")
	got := Resolve(findings, snap)
	if len(got) != 1 || got[0].Severity != diag.SevWarning {
		t.Fatalf("level default not applied: %+v", got)
	}
}

func TestResolveOverrideWinsOverLevelDefault(t *testing.T) {
	findings := allFindings(t, `<img src="a.jpg">`)
	snap := config.Parse("[severity]\nA = \"warning\"\n\n[rules]\nimg-alt = \"error\"\n")
	got := Resolve(findings, snap)
	if len(got) != 1 || got[0].Severity != diag.SevError {
		t.Fatalf("override should win: %+v", got)
	}
}

func TestResolveDropsDisabledRuleFindings(t *testing.T) {
	findings := allFindings(t, `<img src="a.jpg"><h1>A</h1><h3>B</h3>`)
	snap := config.Parse("[rules]\nimg-alt = \"off\"\n")
	got := Resolve(findings, snap)
	for _, d := range got {
		if d.RuleID == "img-alt" {
			t.Fatalf("disabled rule leaked through: %+v", d)
		}
	}
	if len(got) == 0 {
		t.Fatal("heading-order finding should survive")
	}
}

func TestResolveKeepsSpansAndMessages(t *testing.T) {
	findings := allFindings(t, "<p>x</p>\n<img src=\"a.jpg\">")
	got := Resolve(findings, config.Default())
	if len(got) != 1 {
		t.Fatalf("diagnostics = %+v", got)
	}
	if got[0].Span != findings[0].Span {
		t.Fatalf("span changed: %+v vs %+v", got[0].Span, findings[0].Span)
	}
	if got[0].Span.Start.Line != 1 {
		t.Fatalf("span line = %d", got[0].Span.Start.Line)
	}
	if got[0].Message != findings[0].Message {
		t.Fatalf("message changed: %q", got[0].Message)
	}
}
