package event

// Topic is a hierarchical event type using dot notation,
// e.g. "decorations.changed".
type Topic string

// String returns the topic as a string.
func (t Topic) String() string {
	return string(t)
}
