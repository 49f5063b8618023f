package marker

import (
	"errors"
	"log/slog"

	"github.com/dshills/decor/internal/engine/buffer"
)

// ErrEngineDisposed is returned by operations on a disposed engine.
var ErrEngineDisposed = errors.New("marker engine disposed")

// MovedFunc receives the owner tags of anchors that moved during an edit.
// Each tag appears once per call.
type MovedFunc func(owners []uint64)

// Engine tracks anchors against a line buffer.
//
// Anchors live in per-line buckets. A bucket carries its own line number, so
// edits that add or remove lines only renumber buckets instead of touching
// every anchor below the edit.
//
// Engine is not safe for concurrent use.
type Engine struct {
	lines  []*lineBucket
	count  int
	nextID uint64

	listeners    []listener
	nextListener int

	batchDepth int
	moved      map[uint64]struct{}
	movedOrder []uint64

	disposed bool
	logger   *slog.Logger
}

type listener struct {
	id int
	fn MovedFunc
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an engine for a buffer with lineCount lines.
func New(lineCount int, opts ...Option) *Engine {
	if lineCount < 1 {
		lineCount = 1
	}
	e := &Engine{
		lines:  make([]*lineBucket, lineCount),
		moved:  make(map[uint64]struct{}),
		logger: slog.Default(),
	}
	for i := range e.lines {
		e.lines[i] = &lineBucket{number: i + 1}
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// LineCount returns the number of lines the engine tracks.
func (e *Engine) LineCount() int {
	return len(e.lines)
}

// Len returns the number of live anchors.
func (e *Engine) Len() int {
	return e.count
}

// Create places a new anchor for every spec and returns them in order.
func (e *Engine) Create(specs ...Spec) ([]*Anchor, error) {
	if e.disposed {
		return nil, ErrEngineDisposed
	}
	anchors := make([]*Anchor, len(specs))
	for i, s := range specs {
		e.nextID++
		a := &Anchor{
			id:               e.nextID,
			owner:            s.Owner,
			column:           max(s.Position.Column, 1),
			sticksToPrevious: s.SticksToPrevious,
		}
		e.bucket(s.Position.Line).add(a)
		anchors[i] = a
	}
	e.count += len(specs)
	return anchors, nil
}

// Delete removes anchors from the engine. Deleted and nil anchors are ignored.
func (e *Engine) Delete(anchors ...*Anchor) {
	for _, a := range anchors {
		if a == nil || a.line == nil {
			continue
		}
		a.line.remove(a)
		e.count--
	}
}

// Relocate moves an anchor to p without reporting it as moved.
func (e *Engine) Relocate(a *Anchor, p buffer.Position) {
	if a == nil || a.line == nil {
		return
	}
	target := e.bucket(p.Line)
	if target != a.line {
		a.line.remove(a)
		target.add(a)
	}
	a.column = max(p.Column, 1)
}

// SetSticksToPrevious changes an anchor's insertion behaviour in place.
func (e *Engine) SetSticksToPrevious(a *Anchor, sticks bool) {
	if a == nil {
		return
	}
	a.sticksToPrevious = sticks
}

// AnchorsOnLine returns the anchors currently on line, in no particular
// order. The returned slice belongs to the engine and must not be modified.
func (e *Engine) AnchorsOnLine(line int) []*Anchor {
	if line < 1 || line > len(e.lines) {
		return nil
	}
	return e.lines[line-1].anchors
}

// OnMoved registers fn to be called after edits that move anchors.
// The returned function unregisters it.
func (e *Engine) OnMoved(fn MovedFunc) func() {
	e.nextListener++
	id := e.nextListener
	e.listeners = append(e.listeners, listener{id: id, fn: fn})
	return func() {
		for i, l := range e.listeners {
			if l.id == id {
				e.listeners = append(e.listeners[:i], e.listeners[i+1:]...)
				return
			}
		}
	}
}

// BeginBatch defers moved notifications until the matching EndBatch.
// Batches nest; only the outermost EndBatch notifies.
func (e *Engine) BeginBatch() {
	e.batchDepth++
}

// EndBatch closes a batch. When the outermost batch closes and anchors
// moved, listeners receive the owners once.
func (e *Engine) EndBatch() {
	if e.batchDepth == 0 {
		return
	}
	e.batchDepth--
	if e.batchDepth > 0 || len(e.movedOrder) == 0 {
		return
	}

	owners := e.movedOrder
	e.movedOrder = nil
	clear(e.moved)

	e.logger.Debug("anchors moved", slog.Int("owners", len(owners)))
	for _, l := range append([]listener(nil), e.listeners...) {
		l.fn(owners)
	}
}

// ApplyEdits applies a set of edit results in order inside one batch.
// Results must be in application order, as returned by Buffer.ApplyEdits.
func (e *Engine) ApplyEdits(results []buffer.EditResult) {
	if e.disposed || len(results) == 0 {
		return
	}
	e.BeginBatch()
	defer e.EndBatch()
	for _, res := range results {
		e.ApplyEdit(res)
	}
}

// ApplyEdit updates every anchor for one applied edit.
// Anchors in the edited lines are adjusted with AdjustPosition and moved
// to their new bucket; anchors on lines that shifted keep their column.
func (e *Engine) ApplyEdit(res buffer.EditResult) {
	if e.disposed {
		return
	}
	e.BeginBatch()
	defer e.EndBatch()

	first := clampIndex(res.OldRange.Start.Line-1, len(e.lines))
	last := clampIndex(res.OldRange.End.Line-1, len(e.lines))

	type touched struct {
		anchor *Anchor
		old    buffer.Position
	}
	var affected []touched
	for i := first; i <= last; i++ {
		ln := e.lines[i]
		for _, a := range ln.anchors {
			affected = append(affected, touched{anchor: a, old: a.Position()})
		}
		ln.anchors = nil
	}

	// Replace the buckets of the old range with one per line of new text.
	// The first bucket is reused so its line number stays stable.
	newLines := res.NewRange.End.Line - res.NewRange.Start.Line + 1
	spliced := make([]*lineBucket, 0, len(e.lines)-(last-first+1)+newLines)
	spliced = append(spliced, e.lines[:first]...)
	spliced = append(spliced, e.lines[first])
	for i := 1; i < newLines; i++ {
		spliced = append(spliced, &lineBucket{})
	}
	spliced = append(spliced, e.lines[last+1:]...)
	e.lines = spliced

	for i := first + 1; i < len(e.lines); i++ {
		ln := e.lines[i]
		if ln.number == i+1 {
			continue
		}
		ln.number = i + 1
		for _, a := range ln.anchors {
			e.markMoved(a)
		}
	}

	for _, t := range affected {
		p := AdjustPosition(t.old, res, t.anchor.sticksToPrevious)
		t.anchor.column = p.Column
		e.bucket(p.Line).add(t.anchor)
		if p != t.old {
			e.markMoved(t.anchor)
		}
	}
}

// Dispose drops all anchors and listeners. Later edits are ignored.
func (e *Engine) Dispose() {
	if e.disposed {
		return
	}
	e.disposed = true
	for _, ln := range e.lines {
		for _, a := range ln.anchors {
			a.line = nil
		}
		ln.anchors = nil
	}
	e.count = 0
	e.listeners = nil
	e.movedOrder = nil
	clear(e.moved)
}

func (e *Engine) markMoved(a *Anchor) {
	if _, ok := e.moved[a.owner]; ok {
		return
	}
	e.moved[a.owner] = struct{}{}
	e.movedOrder = append(e.movedOrder, a.owner)
}

func (e *Engine) bucket(line int) *lineBucket {
	return e.lines[clampIndex(line-1, len(e.lines))]
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
