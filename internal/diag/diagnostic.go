package diag

// Finding is an unresolved rule violation: what a rule reported before the
// severity resolver applied configuration.
type Finding struct {
	RuleID  string
	Span    Span
	Message string
	Level   Level
}

// Diagnostic is a finding with resolved severity, ready for delivery.
type Diagnostic struct {
	RuleID   string
	Span     Span
	Message  string
	Severity Severity
	// DocsURL links the WCAG understanding document for the rule, if any.
	DocsURL string
}

// Source is the fixed source tag attached to every published diagnostic.
const Source = "wcag-lsp"
