package buffer

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// Errors returned by buffer operations.
var (
	ErrRangeInvalid = errors.New("invalid range")
	ErrEditsOverlap = errors.New("edits overlap")
)

// LineEnding specifies the line ending style.
type LineEnding uint8

const (
	LineEndingLF   LineEnding = iota // Unix: \n
	LineEndingCRLF                   // Windows: \r\n
	LineEndingCR                     // Old Mac: \r
)

// String returns the string representation of the line ending.
func (le LineEnding) String() string {
	switch le {
	case LineEndingCRLF:
		return "\\r\\n"
	case LineEndingCR:
		return "\\r"
	default:
		return "\\n"
	}
}

// Sequence returns the actual line ending characters.
func (le LineEnding) Sequence() string {
	switch le {
	case LineEndingCRLF:
		return "\r\n"
	case LineEndingCR:
		return "\r"
	default:
		return "\n"
	}
}

// Buffer is a line-oriented text buffer addressed by 1-based positions.
//
// Lines are stored without their terminators; Text joins them with the
// buffer's line ending. Buffer is not safe for concurrent use.
type Buffer struct {
	lines      []string
	version    uint64
	lineEnding LineEnding
}

// NewBuffer creates a buffer holding text.
// All line endings in text are recognised regardless of the configured style.
func NewBuffer(text string, opts ...Option) *Buffer {
	b := &Buffer{lineEnding: LineEndingLF}
	for _, opt := range opts {
		opt(b)
	}
	b.lines = splitLines(text)
	return b
}

// splitLines normalizes line endings and splits text into lines.
func splitLines(text string) []string {
	return strings.Split(normalizeLineEndings(text), "\n")
}

// normalizeLineEndings converts CRLF and CR to LF.
func normalizeLineEndings(s string) string {
	if !strings.ContainsRune(s, '\r') {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// Read Operations

// Text returns the full buffer content joined with the buffer's line ending.
func (b *Buffer) Text() string {
	return strings.Join(b.lines, b.lineEnding.Sequence())
}

// LineCount returns the number of lines. An empty buffer has one line.
func (b *Buffer) LineCount() int {
	return len(b.lines)
}

// LineContent returns the text of a line (without terminator).
// Returns "" for lines outside the buffer.
func (b *Buffer) LineContent(line int) string {
	if line < 1 || line > len(b.lines) {
		return ""
	}
	return b.lines[line-1]
}

// LineMaxColumn returns the column just past the last rune of a line.
// Returns 1 for lines outside the buffer.
func (b *Buffer) LineMaxColumn(line int) int {
	if line < 1 || line > len(b.lines) {
		return 1
	}
	return utf8.RuneCountInString(b.lines[line-1]) + 1
}

// Version returns a counter incremented by every applied edit.
func (b *Buffer) Version() uint64 {
	return b.version
}

// LineEnding returns the buffer's line ending style.
func (b *Buffer) LineEnding() LineEnding {
	return b.lineEnding
}

// FullRange returns the range covering the whole buffer.
func (b *Buffer) FullRange() Range {
	last := len(b.lines)
	return NewRange(1, 1, last, b.LineMaxColumn(last))
}

// Validation

// ValidatePosition clamps p into the buffer.
// Lines before the first clamp to (1,1), lines after the last clamp to the
// end of the buffer. A column that falls inside a grapheme cluster snaps to
// the start of the cluster.
func (b *Buffer) ValidatePosition(p Position) Position {
	if p.Line < 1 {
		return Position{Line: 1, Column: 1}
	}
	if p.Line > len(b.lines) {
		last := len(b.lines)
		return Position{Line: last, Column: b.LineMaxColumn(last)}
	}
	if p.Column < 1 {
		return Position{Line: p.Line, Column: 1}
	}
	maxColumn := b.LineMaxColumn(p.Line)
	if p.Column >= maxColumn {
		return Position{Line: p.Line, Column: maxColumn}
	}
	return Position{Line: p.Line, Column: graphemeStart(b.lines[p.Line-1], p.Column)}
}

// ValidateRange clamps both ends of r into the buffer.
func (b *Buffer) ValidateRange(r Range) Range {
	return RangeFromPositions(b.ValidatePosition(r.Start), b.ValidatePosition(r.End))
}

// graphemeStart returns column, moved back to the start of the grapheme
// cluster containing it.
func graphemeStart(line string, column int) int {
	if isASCII(line) {
		return column
	}
	target := column - 1
	seen := 0
	gr := uniseg.NewGraphemes(line)
	for gr.Next() {
		n := len(gr.Runes())
		if target < seen+n {
			return seen + 1
		}
		seen += n
	}
	return column
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// ValueInRange returns the text covered by r after validation, joined with
// "\n".
func (b *Buffer) ValueInRange(r Range) string {
	r = b.ValidateRange(r)
	if r.IsSingleLine() {
		line := b.lines[r.Start.Line-1]
		return line[byteIndex(line, r.Start.Column):byteIndex(line, r.End.Column)]
	}
	var sb strings.Builder
	first := b.lines[r.Start.Line-1]
	sb.WriteString(first[byteIndex(first, r.Start.Column):])
	for l := r.Start.Line + 1; l < r.End.Line; l++ {
		sb.WriteByte('\n')
		sb.WriteString(b.lines[l-1])
	}
	last := b.lines[r.End.Line-1]
	sb.WriteByte('\n')
	sb.WriteString(last[:byteIndex(last, r.End.Column)])
	return sb.String()
}

// byteIndex converts a 1-based rune column into a byte index within line.
func byteIndex(line string, column int) int {
	target := column - 1
	if target <= 0 {
		return 0
	}
	n := 0
	for i := range line {
		if n == target {
			return i
		}
		n++
	}
	return len(line)
}

// Write Operations

// Insert inserts text at the given position.
func (b *Buffer) Insert(at Position, text string) (EditResult, error) {
	results, err := b.ApplyEdits([]Edit{NewInsert(at, text)})
	if err != nil {
		return EditResult{}, err
	}
	return results[0], nil
}

// Delete removes the text in r.
func (b *Buffer) Delete(r Range) (EditResult, error) {
	results, err := b.ApplyEdits([]Edit{NewDelete(r)})
	if err != nil {
		return EditResult{}, err
	}
	return results[0], nil
}

// ApplyEdits applies multiple edits atomically.
//
// Edit ranges are validated against the buffer and must not overlap. Edits
// are applied from the end of the document towards the start, so every
// returned EditResult is expressed in coordinates that were valid at the
// moment it was applied. Results are returned in application order.
func (b *Buffer) ApplyEdits(edits []Edit) ([]EditResult, error) {
	if len(edits) == 0 {
		return nil, nil
	}

	sorted := make([]Edit, len(edits))
	for i, e := range edits {
		if e.Range.End.Before(e.Range.Start) {
			return nil, ErrRangeInvalid
		}
		sorted[i] = Edit{Range: b.ValidateRange(e.Range), Text: normalizeLineEndings(e.Text)}
	}
	sortEditsReverse(sorted)

	// Validate edits are non-overlapping
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Range.End.After(sorted[i-1].Range.Start) {
			return nil, ErrEditsOverlap
		}
	}

	results := make([]EditResult, 0, len(sorted))
	for _, e := range sorted {
		if e.IsNoOp() {
			continue
		}
		results = append(results, b.applyEdit(e))
	}
	if len(results) > 0 {
		b.version++
	}
	return results, nil
}

// applyEdit replaces a validated range with normalized text.
func (b *Buffer) applyEdit(e Edit) EditResult {
	start, end := e.Range.Start, e.Range.End
	oldText := b.ValueInRange(e.Range)

	first := b.lines[start.Line-1]
	last := b.lines[end.Line-1]
	prefix := first[:byteIndex(first, start.Column)]
	suffix := last[byteIndex(last, end.Column):]

	inserted := strings.Split(e.Text, "\n")
	replacement := make([]string, len(inserted))
	copy(replacement, inserted)
	replacement[0] = prefix + replacement[0]
	replacement[len(replacement)-1] += suffix

	tail := append([]string(nil), b.lines[end.Line:]...)
	b.lines = append(append(b.lines[:start.Line-1], replacement...), tail...)

	var newEnd Position
	if len(inserted) == 1 {
		newEnd = Position{Line: start.Line, Column: start.Column + utf8.RuneCountInString(e.Text)}
	} else {
		lastInserted := inserted[len(inserted)-1]
		newEnd = Position{
			Line:   start.Line + len(inserted) - 1,
			Column: utf8.RuneCountInString(lastInserted) + 1,
		}
	}

	return EditResult{
		OldRange: e.Range,
		NewRange: Range{Start: start, End: newEnd},
		OldText:  oldText,
		Text:     e.Text,
	}
}
