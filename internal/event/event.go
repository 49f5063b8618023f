package event

import (
	"time"

	"github.com/google/uuid"
)

// Event represents an event in the system.
// Events are immutable once created.
type Event[T any] struct {
	// Type is the hierarchical event type (e.g., "decorations.changed").
	Type Topic

	// Payload contains the event-specific data.
	Payload T

	// Metadata contains standard event information.
	Metadata Metadata
}

// Metadata contains standard information attached to every event.
type Metadata struct {
	// ID is a unique identifier for this event instance.
	ID string

	// Timestamp is when the event was created.
	Timestamp time.Time

	// Source identifies what published the event, usually a document ID.
	Source string

	// Version is the schema version of the payload.
	Version int
}

// NewEvent creates a new event with the given type and payload.
func NewEvent[T any](eventType Topic, payload T, source string) Event[T] {
	return Event[T]{
		Type:    eventType,
		Payload: payload,
		Metadata: Metadata{
			ID:        uuid.NewString(),
			Timestamp: time.Now(),
			Source:    source,
			Version:   1,
		},
	}
}

// WithSource returns a copy of the event with a different source.
func (e Event[T]) WithSource(source string) Event[T] {
	e.Metadata.Source = source
	return e
}
