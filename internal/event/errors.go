package event

import (
	"errors"
	"fmt"
)

// Sentinel errors for event delivery.
var (
	// ErrHandlerPanic is matched by errors produced from a panicking listener.
	ErrHandlerPanic = errors.New("handler panicked")

	// ErrNilHandler is returned when a nil listener is subscribed.
	ErrNilHandler = errors.New("handler cannot be nil")
)

// PanicError wraps a listener panic as an error.
type PanicError struct {
	// Topic is the topic of the event being delivered.
	Topic Topic

	// Value is the value passed to panic().
	Value any

	// Stack is the stack trace at the time of the panic.
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("handler panic on topic %s: %v", e.Topic, e.Value)
}

// Is allows errors.Is to match PanicError with ErrHandlerPanic.
func (e *PanicError) Is(target error) bool {
	return target == ErrHandlerPanic
}
