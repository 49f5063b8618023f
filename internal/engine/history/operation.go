package history

import (
	"time"

	"github.com/dshills/decor/internal/engine/buffer"
)

// Operation is one applied edit, kept with enough text to reverse it.
type Operation struct {
	OldRange buffer.Range // Range replaced, in coordinates before the edit
	NewRange buffer.Range // Range of the inserted text afterwards
	OldText  string
	NewText  string
}

// FromResult records an applied edit.
func FromResult(res buffer.EditResult) Operation {
	return Operation{
		OldRange: res.OldRange,
		NewRange: res.NewRange,
		OldText:  res.OldText,
		NewText:  res.Text,
	}
}

// Inverse returns the edit that restores the text before the operation.
func (op Operation) Inverse() buffer.Edit {
	return buffer.Edit{Range: op.NewRange, Text: op.OldText}
}

// Forward returns the edit that reapplies the operation.
func (op Operation) Forward() buffer.Edit {
	return buffer.Edit{Range: op.OldRange, Text: op.NewText}
}

// LineDelta returns the change in line count caused by the operation.
func (op Operation) LineDelta() int {
	return (op.NewRange.End.Line - op.NewRange.Start.Line) - (op.OldRange.End.Line - op.OldRange.Start.Line)
}

// OperationList holds operations in the order they were applied.
// Each operation's ranges are valid in the document as it stood when that
// operation ran, so lists are replayed one edit at a time.
type OperationList []Operation

// FromResults records a batch returned by Buffer.ApplyEdits.
func FromResults(results []buffer.EditResult) OperationList {
	ops := make(OperationList, len(results))
	for i, res := range results {
		ops[i] = FromResult(res)
	}
	return ops
}

// UndoEdits returns the inverse edits in the order they must be applied.
func (ops OperationList) UndoEdits() []buffer.Edit {
	edits := make([]buffer.Edit, len(ops))
	for i, op := range ops {
		edits[len(ops)-1-i] = op.Inverse()
	}
	return edits
}

// RedoEdits returns the forward edits in their original order.
func (ops OperationList) RedoEdits() []buffer.Edit {
	edits := make([]buffer.Edit, len(ops))
	for i, op := range ops {
		edits[i] = op.Forward()
	}
	return edits
}

// LineDelta returns the total change in line count.
func (ops OperationList) LineDelta() int {
	total := 0
	for _, op := range ops {
		total += op.LineDelta()
	}
	return total
}

// Entry is one undo unit.
type Entry struct {
	Name      string
	Ops       OperationList
	Timestamp time.Time
}

// Info describes an entry for display.
type Info struct {
	Name       string
	Timestamp  time.Time
	Edits      int
	LinesDelta int
}

func (e *Entry) info() Info {
	return Info{
		Name:       e.Name,
		Timestamp:  e.Timestamp,
		Edits:      len(e.Ops),
		LinesDelta: e.Ops.LineDelta(),
	}
}
