package buffer

import "fmt"

// Range represents a span between two positions.
// Start is always before or equal to End in document order.
type Range struct {
	Start Position
	End   Position
}

// NewRange creates a Range from line/column pairs.
// If the end comes before the start, the two are swapped.
func NewRange(startLine, startColumn, endLine, endColumn int) Range {
	return RangeFromPositions(
		Position{Line: startLine, Column: startColumn},
		Position{Line: endLine, Column: endColumn},
	)
}

// RangeFromPositions creates a Range from two positions, swapping them if
// they are out of order.
func RangeFromPositions(start, end Position) Range {
	if end.Before(start) {
		start, end = end, start
	}
	return Range{Start: start, End: end}
}

// CollapsedRange returns an empty range at p.
func CollapsedRange(p Position) Range {
	return Range{Start: p, End: p}
}

// String returns a human-readable representation of the range.
func (r Range) String() string {
	return fmt.Sprintf("[%s-%s]", r.Start.String(), r.End.String())
}

// IsEmpty returns true if start equals end.
func (r Range) IsEmpty() bool {
	return r.Start == r.End
}

// IsSingleLine returns true if the range starts and ends on the same line.
func (r Range) IsSingleLine() bool {
	return r.Start.Line == r.End.Line
}

// ContainsPosition returns true if p lies within the range, edges included.
func (r Range) ContainsPosition(p Position) bool {
	return !p.Before(r.Start) && !p.After(r.End)
}

// Touches reports whether r and other overlap or share an edge.
// Two ranges are disjoint only when one starts strictly after the other ends.
func (r Range) Touches(other Range) bool {
	if r.Start.After(other.End) {
		return false
	}
	if r.End.Before(other.Start) {
		return false
	}
	return true
}

// CompareByStart orders ranges by start position, breaking ties by end
// position.
func CompareByStart(a, b Range) int {
	if c := a.Start.Compare(b.Start); c != 0 {
		return c
	}
	return a.End.Compare(b.End)
}
