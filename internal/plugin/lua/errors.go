package lua

import "errors"

// Errors for Lua state operations.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrExecutionTimeout is returned when a chunk runs past its deadline.
	ErrExecutionTimeout = errors.New("lua execution timeout")

	// ErrCanceled is returned when the caller's context is canceled mid-run.
	ErrCanceled = errors.New("lua execution canceled")
)
