package marker

import "github.com/dshills/decor/internal/engine/buffer"

// AdjustPosition returns where a point at p ends up after the edit
// described by res.
//
// The edit is treated as a deletion of res.OldRange followed by an insertion
// at its start:
//   - Deletion: points at or before the start are unchanged, points inside
//     the deleted text (or at its end) collapse to the start, later points
//     shift back.
//   - Insertion: points before the start are unchanged, a point exactly at
//     the start stays put when sticksToPrevious is set and moves past the
//     new text otherwise, later points shift forward.
func AdjustPosition(p buffer.Position, res buffer.EditResult, sticksToPrevious bool) buffer.Position {
	start, end := res.OldRange.Start, res.OldRange.End

	switch {
	case p.IsBeforeOrEqual(start):
	case !p.After(end):
		p = start
	case p.Line == end.Line:
		p = buffer.Position{Line: start.Line, Column: start.Column + p.Column - end.Column}
	default:
		p.Line -= end.Line - start.Line
	}

	if res.NewRange.IsEmpty() || p.Before(start) {
		return p
	}
	if p == start && sticksToPrevious {
		return p
	}

	insEnd := res.NewRange.End
	if p.Line == start.Line {
		return buffer.Position{Line: insEnd.Line, Column: insEnd.Column + p.Column - start.Column}
	}
	return buffer.Position{Line: p.Line + insEnd.Line - start.Line, Column: p.Column}
}
