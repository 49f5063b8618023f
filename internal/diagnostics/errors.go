package diagnostics

import "errors"

var (
	// ErrInvalidPayload indicates a publishDiagnostics payload that is not
	// valid JSON or has no diagnostics array.
	ErrInvalidPayload = errors.New("invalid diagnostics payload")

	// ErrURIMismatch indicates a payload for a different document.
	ErrURIMismatch = errors.New("diagnostics for another document")
)
