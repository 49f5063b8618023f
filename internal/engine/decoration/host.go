package decoration

import (
	"github.com/dshills/decor/internal/engine/buffer"
	"github.com/dshills/decor/internal/engine/marker"
)

// TextModel is the view of the text buffer the store needs.
// *buffer.Buffer satisfies it.
type TextModel interface {
	// LineCount returns the number of lines, at least 1.
	LineCount() int

	// LineMaxColumn returns the column just past the last character of
	// line.
	LineMaxColumn(line int) int

	// ValidateRange clamps r into the buffer and orders its ends.
	ValidateRange(r buffer.Range) buffer.Range
}

// AnchorEngine tracks the anchors behind each decoration's edges.
// *marker.Engine satisfies it.
type AnchorEngine interface {
	// Create places new anchors, tagged with their owner.
	Create(specs ...marker.Spec) ([]*marker.Anchor, error)

	// Delete releases anchors.
	Delete(anchors ...*marker.Anchor)

	// Relocate moves an anchor without reporting it as moved.
	Relocate(a *marker.Anchor, p buffer.Position)

	// SetSticksToPrevious flips an anchor's insertion behaviour.
	SetSticksToPrevious(a *marker.Anchor, sticks bool)

	// AnchorsOnLine returns the anchors on line. The slice is read only.
	AnchorsOnLine(line int) []*marker.Anchor

	// OnMoved registers a callback receiving the owner tags of moved
	// anchors once per edit batch, and returns a function removing it.
	OnMoved(fn marker.MovedFunc) func()
}

var (
	_ TextModel    = (*buffer.Buffer)(nil)
	_ AnchorEngine = (*marker.Engine)(nil)
)
