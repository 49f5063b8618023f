package buffer

import (
	"fmt"
	"sort"
)

// Edit represents a text edit operation.
// It specifies a range to replace and the new text.
type Edit struct {
	Range Range  // The range to replace
	Text  string // The replacement text
}

// NewInsert creates an Edit that inserts text at a position.
func NewInsert(at Position, text string) Edit {
	return Edit{Range: CollapsedRange(at), Text: text}
}

// NewDelete creates an Edit that deletes a range of text.
func NewDelete(r Range) Edit {
	return Edit{Range: r}
}

// String returns a human-readable representation of the edit.
func (e Edit) String() string {
	if e.Range.IsEmpty() {
		return fmt.Sprintf("Insert(%s, %q)", e.Range.Start, e.Text)
	}
	if e.Text == "" {
		return fmt.Sprintf("Delete%s", e.Range)
	}
	return fmt.Sprintf("Replace%s with %q", e.Range, e.Text)
}

// IsNoOp returns true if this edit does nothing.
func (e Edit) IsNoOp() bool {
	return e.Range.IsEmpty() && e.Text == ""
}

// EditResult contains information about an applied edit.
// OldRange is expressed in the coordinates that were valid before the edit;
// NewRange covers the inserted text afterwards. Both start at the same
// position.
type EditResult struct {
	OldRange Range  // The validated range that was replaced
	NewRange Range  // The range covered by the inserted text
	OldText  string // The text that was replaced
	Text     string // The normalized inserted text
}

// LineDelta returns the change in line count caused by the edit.
func (r EditResult) LineDelta() int {
	return (r.NewRange.End.Line - r.NewRange.Start.Line) - (r.OldRange.End.Line - r.OldRange.Start.Line)
}

// sortEditsReverse sorts edits in descending order by start position.
// This mutates the input slice.
func sortEditsReverse(edits []Edit) {
	sort.SliceStable(edits, func(i, j int) bool {
		return CompareByStart(edits[i].Range, edits[j].Range) > 0
	})
}
