package diagnostics

// Severity is an LSP diagnostic severity. Lower values are more severe.
type Severity int

const (
	SeverityError       Severity = 1
	SeverityWarning     Severity = 2
	SeverityInformation Severity = 3
	SeverityHint        Severity = 4
)

// Class names used for information and hint squiggles.
const (
	InfoClass = "squiggly-info"
	HintClass = "squiggly-hint"
)

// String returns a human-readable severity name.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "Error"
	case SeverityWarning:
		return "Warning"
	case SeverityInformation:
		return "Information"
	case SeverityHint:
		return "Hint"
	default:
		return "Unknown"
	}
}

// Icon returns a single character for the severity.
func (s Severity) Icon() string {
	switch s {
	case SeverityError:
		return "E"
	case SeverityWarning:
		return "W"
	case SeverityInformation:
		return "I"
	case SeverityHint:
		return "H"
	default:
		return "?"
	}
}

// IsValid reports whether s is one of the four LSP severities.
func (s Severity) IsValid() bool {
	return s >= SeverityError && s <= SeverityHint
}
