package marker

import "github.com/dshills/decor/internal/engine/buffer"

// Spec describes an anchor to create.
type Spec struct {
	// Owner tags the anchor with the id of whatever owns it.
	// Zero means the anchor has no owner.
	Owner uint64

	// Position is where the anchor is placed. It must be a valid buffer
	// position; lines outside the buffer are clamped.
	Position buffer.Position

	// SticksToPrevious decides what happens when text is inserted exactly
	// at the anchor: true keeps the anchor before the new text, false
	// pushes it after.
	SticksToPrevious bool
}

// Anchor is a tracked point in the buffer.
// Anchors are created and owned by an Engine, which keeps them in the
// bucket of the line they sit on and moves them as edits are applied.
type Anchor struct {
	id               uint64
	owner            uint64
	column           int
	line             *lineBucket
	sticksToPrevious bool
}

// ID returns the engine-unique anchor id.
func (a *Anchor) ID() uint64 {
	return a.id
}

// Owner returns the owner tag given at creation.
func (a *Anchor) Owner() uint64 {
	return a.owner
}

// Position returns the anchor's current position.
// A deleted anchor reports the zero Position.
func (a *Anchor) Position() buffer.Position {
	if a.line == nil {
		return buffer.Position{}
	}
	return buffer.Position{Line: a.line.number, Column: a.column}
}

// SticksToPrevious reports the anchor's insertion behaviour.
func (a *Anchor) SticksToPrevious() bool {
	return a.sticksToPrevious
}

// IsDeleted returns true once the anchor has been deleted from its engine.
func (a *Anchor) IsDeleted() bool {
	return a.line == nil
}

// lineBucket holds the anchors sitting on one line.
type lineBucket struct {
	number  int
	anchors []*Anchor
}

func (l *lineBucket) add(a *Anchor) {
	a.line = l
	l.anchors = append(l.anchors, a)
}

func (l *lineBucket) remove(a *Anchor) {
	for i, other := range l.anchors {
		if other == a {
			last := len(l.anchors) - 1
			l.anchors[i] = l.anchors[last]
			l.anchors[last] = nil
			l.anchors = l.anchors[:last]
			break
		}
	}
	a.line = nil
}
