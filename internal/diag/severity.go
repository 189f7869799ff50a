package diag

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	// SevWarning is for warning diagnostics.
	SevWarning Severity = iota
	// SevError is for error diagnostics.
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevWarning:
		return "warning"
	case SevError:
		return "error"
	}
	return "unknown"
}

// LSP returns the wire value used by the editor protocol
// (1 = error, 2 = warning).
func (s Severity) LSP() int {
	if s == SevError {
		return 1
	}
	return 2
}

// ParseSeverity maps a config string to a severity. The second return is
// false for unrecognized values.
func ParseSeverity(s string) (Severity, bool) {
	switch s {
	case "error":
		return SevError, true
	case "warning", "warn":
		return SevWarning, true
	}
	return SevWarning, false
}
