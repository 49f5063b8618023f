package document

import "errors"

// Errors returned by document operations.
var (
	// ErrClosed indicates an operation was attempted on a closed document.
	ErrClosed = errors.New("document is closed")

	// ErrReadOnly indicates an edit was attempted on a read-only document.
	ErrReadOnly = errors.New("document is read-only")

	// ErrNoHistory indicates undo or redo on a document created without
	// history.
	ErrNoHistory = errors.New("document has no undo history")
)
