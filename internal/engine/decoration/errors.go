package decoration

import (
	"errors"
	"fmt"
)

// Sentinel errors for the decoration store.
var (
	// ErrDisposed is the panic value for any use of a disposed store.
	ErrDisposed = errors.New("decoration store disposed")

	// ErrSessionClosed is the panic value for any use of a session after its
	// body has returned.
	ErrSessionClosed = errors.New("decoration session closed")

	// ErrSessionPanic is matched by errors produced from a panicking
	// session body.
	ErrSessionPanic = errors.New("decoration session panicked")

	// ErrInvalidOptions is returned when decoration options cannot be parsed.
	ErrInvalidOptions = errors.New("invalid decoration options")
)

// ErrorHandler receives unexpected errors that cannot be returned to a
// caller, such as panics recovered from session bodies or change listeners.
type ErrorHandler func(error)

// SessionPanicError wraps a panic recovered from a session body.
type SessionPanicError struct {
	// Owner is the owner id the session was opened with.
	Owner uint32

	// Value is the value passed to panic().
	Value any

	// Stack is the stack trace at the time of the panic.
	Stack string
}

// Error implements the error interface.
func (e *SessionPanicError) Error() string {
	return fmt.Sprintf("decoration session for owner %d panicked: %v", e.Owner, e.Value)
}

// Is allows errors.Is to match SessionPanicError with ErrSessionPanic.
func (e *SessionPanicError) Is(target error) bool {
	return target == ErrSessionPanic
}

// Unwrap returns the panic value when it was an error.
func (e *SessionPanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
