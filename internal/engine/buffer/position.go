package buffer

import "fmt"

// Position represents a line and column position in the buffer.
// Both Line and Column are 1-indexed.
// Column is measured in runes from the start of the line; the column
// after the last rune of a line is LineMaxColumn.
type Position struct {
	Line   int // 1-indexed line number
	Column int // 1-indexed column (rune index within line + 1)
}

// NewPosition creates a new Position.
func NewPosition(line, column int) Position {
	return Position{Line: line, Column: column}
}

// String returns a human-readable representation of the position.
func (p Position) String() string {
	return fmt.Sprintf("(%d:%d)", p.Line, p.Column)
}

// Compare returns -1 if p < other, 0 if p == other, 1 if p > other.
func (p Position) Compare(other Position) int {
	if p.Line < other.Line {
		return -1
	}
	if p.Line > other.Line {
		return 1
	}
	if p.Column < other.Column {
		return -1
	}
	if p.Column > other.Column {
		return 1
	}
	return 0
}

// Before returns true if p comes strictly before other.
func (p Position) Before(other Position) bool {
	return p.Compare(other) < 0
}

// After returns true if p comes strictly after other.
func (p Position) After(other Position) bool {
	return p.Compare(other) > 0
}

// IsBeforeOrEqual returns true if p comes before other or equals it.
func (p Position) IsBeforeOrEqual(other Position) bool {
	return p.Compare(other) <= 0
}
