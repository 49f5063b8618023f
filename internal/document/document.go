package document

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/decor/internal/engine/buffer"
	"github.com/dshills/decor/internal/engine/decoration"
	"github.com/dshills/decor/internal/engine/history"
	"github.com/dshills/decor/internal/engine/marker"
	"github.com/dshills/decor/internal/event"
)

// Re-export commonly used types for convenience.
type (
	// Position is a 1-based line/column position.
	Position = buffer.Position

	// Range is a span between two positions.
	Range = buffer.Range

	// Edit replaces a range with text.
	Edit = buffer.Edit

	// EditResult describes an applied edit.
	EditResult = buffer.EditResult

	// Decoration is a decoration snapshot.
	Decoration = decoration.Decoration

	// DecorationSpec describes a decoration to add.
	DecorationSpec = decoration.Spec

	// DecorationOptions holds decoration presentation attributes.
	DecorationOptions = decoration.Options

	// DecorationsChanged lists the decorations touched by one change.
	DecorationsChanged = decoration.DecorationsChanged

	// Checkpoint marks a point in the undo history.
	Checkpoint = history.Checkpoint

	// HistoryEntry describes one undo or redo entry.
	HistoryEntry = history.Info
)

// Document ties a text buffer to the anchors and decorations that follow
// its edits.
//
// All methods are safe for concurrent use. Change listeners and session
// bodies run while the document is locked and must not call back into the
// Document; a session body works through its *decoration.Session only.
type Document struct {
	mu sync.RWMutex

	id      uuid.UUID
	buf     *buffer.Buffer
	markers *marker.Engine
	store   *decoration.Store
	hist    *history.History

	logger     *slog.Logger
	lineEnding *buffer.LineEnding
	readOnly   bool
	storeOpts  []decoration.Option
	undoLimit  int
	closed     bool
}

// New creates a document holding text.
func New(text string, opts ...Option) *Document {
	d := &Document{
		id:     uuid.New(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}

	le := buffer.DetectLineEnding(text)
	if d.lineEnding != nil {
		le = *d.lineEnding
	}
	d.logger = d.logger.With(slog.String("document", d.id.String()))

	d.buf = buffer.NewBuffer(text, buffer.WithLineEnding(le))
	d.markers = marker.New(d.buf.LineCount(), marker.WithLogger(d.logger))

	storeOpts := append([]decoration.Option{
		decoration.WithLogger(d.logger),
		decoration.WithSource(d.id.String()),
	}, d.storeOpts...)
	d.store = decoration.New(d.buf, d.markers, storeOpts...)
	if d.undoLimit >= 0 {
		d.hist = history.New(d.undoLimit)
	}

	d.logger.Debug("document created", slog.Int("lines", d.buf.LineCount()))
	return d
}

// ID returns the document's unique id. It is also the source of the
// document's change events.
func (d *Document) ID() string {
	return d.id.String()
}

// ============================================================================
// Text
// ============================================================================

// Text returns the full content.
func (d *Document) Text() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.buf.Text()
}

// LineCount returns the number of lines.
func (d *Document) LineCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.buf.LineCount()
}

// LineContent returns the text of line without its line ending.
func (d *Document) LineContent(line int) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.buf.LineContent(line)
}

// Version returns the buffer version, bumped by every applied edit batch.
func (d *Document) Version() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.buf.Version()
}

// ValidateRange clamps r into the document.
func (d *Document) ValidateRange(r Range) Range {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.buf.ValidateRange(r)
}

// ApplyEdits applies non-overlapping edits atomically. Decorations that move
// are announced in one change event after all edits are applied.
func (d *Document) ApplyEdits(edits ...Edit) ([]EditResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.checkWritable(); err != nil {
		return nil, err
	}

	results, err := d.buf.ApplyEdits(edits)
	if err != nil {
		return nil, err
	}
	d.markers.ApplyEdits(results)
	if d.hist != nil {
		d.hist.Push("edit", history.FromResults(results))
	}
	return results, nil
}

// Insert inserts text at pos.
func (d *Document) Insert(pos Position, text string) (EditResult, error) {
	return d.applyOne(buffer.NewInsert(pos, text))
}

// Delete removes the text in r.
func (d *Document) Delete(r Range) (EditResult, error) {
	return d.applyOne(buffer.NewDelete(r))
}

// Replace replaces the text in r.
func (d *Document) Replace(r Range, text string) (EditResult, error) {
	return d.applyOne(buffer.Edit{Range: r, Text: text})
}

func (d *Document) applyOne(e Edit) (EditResult, error) {
	results, err := d.ApplyEdits(e)
	if err != nil || len(results) == 0 {
		return EditResult{OldRange: e.Range, NewRange: e.Range}, err
	}
	return results[0], nil
}

// ============================================================================
// Undo
// ============================================================================

// Undo reverts the newest edit batch or undo group. Anchors follow the
// reverting edits, so decorations move back with the text; a decoration
// whose text was deleted stays collapsed.
func (d *Document) Undo() error {
	return d.replay(true)
}

// Redo reapplies the newest undone batch.
func (d *Document) Redo() error {
	return d.replay(false)
}

func (d *Document) replay(undo bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.checkHistory(); err != nil {
		return err
	}

	var (
		info history.Info
		err  error
	)
	if undo {
		info, err = d.hist.Undo(d.replayFunc(true))
	} else {
		info, err = d.hist.Redo(d.replayFunc(false))
	}
	if err != nil {
		return err
	}
	d.logger.Debug("history replayed",
		slog.Bool("undo", undo),
		slog.String("entry", info.Name),
		slog.Int("edits", info.Edits))
	return nil
}

// replayFunc applies an entry's inverse or forward edits one at a time
// inside one anchor batch.
func (d *Document) replayFunc(undo bool) history.ApplyFunc {
	return func(ops history.OperationList) error {
		edits := ops.RedoEdits()
		if undo {
			edits = ops.UndoEdits()
		}
		d.markers.BeginBatch()
		defer d.markers.EndBatch()
		for _, e := range edits {
			results, err := d.buf.ApplyEdits([]buffer.Edit{e})
			if err != nil {
				return err
			}
			d.markers.ApplyEdits(results)
		}
		return nil
	}
}

func (d *Document) checkHistory() error {
	if err := d.checkWritable(); err != nil {
		return err
	}
	if d.hist == nil {
		return ErrNoHistory
	}
	return nil
}

// Checkpoint marks the current point in the undo history.
func (d *Document) Checkpoint() (Checkpoint, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.checkHistory(); err != nil {
		return Checkpoint{}, err
	}
	return d.hist.CreateCheckpoint(), nil
}

// UndoToCheckpoint undoes every entry recorded after cp. Decorations that
// move are announced in one change event.
func (d *Document) UndoToCheckpoint(cp Checkpoint) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.checkHistory(); err != nil {
		return err
	}
	d.markers.BeginBatch()
	defer d.markers.EndBatch()
	return d.hist.UndoToCheckpoint(cp, d.replayFunc(true))
}

// UndoHistory describes the undo entries, oldest first.
func (d *Document) UndoHistory() []HistoryEntry {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.hist == nil || d.closed {
		return nil
	}
	return d.hist.UndoInfo()
}

// RedoHistory describes the entries Redo can reapply, oldest first.
func (d *Document) RedoHistory() []HistoryEntry {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.hist == nil || d.closed {
		return nil
	}
	return d.hist.RedoInfo()
}

// CanUndo reports whether Undo has an entry to revert.
func (d *Document) CanUndo() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.hist != nil && !d.closed && d.hist.CanUndo()
}

// CanRedo reports whether Redo has an entry to reapply.
func (d *Document) CanRedo() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.hist != nil && !d.closed && d.hist.CanRedo()
}

// BeginUndoGroup collects the following edits into one undo entry until
// the matching EndUndoGroup. Groups nest.
func (d *Document) BeginUndoGroup(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.hist != nil {
		d.hist.BeginGroup(name)
	}
}

// EndUndoGroup closes a group opened by BeginUndoGroup.
func (d *Document) EndUndoGroup() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.hist != nil {
		d.hist.EndGroup()
	}
}

// ============================================================================
// Decorations
// ============================================================================

// ChangeDecorations runs body in a decoration change session.
// See decoration.Store.ChangeDecorations.
func (d *Document) ChangeDecorations(owner uint32, body func(*decoration.Session) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}
	return d.store.ChangeDecorations(owner, body)
}

// ReplaceDecorations replaces the decorations named by oldIDs with specs and
// returns the new ids aligned with specs.
func (d *Document) ReplaceDecorations(oldIDs []string, specs []DecorationSpec, owner uint32) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, ErrClosed
	}
	return d.store.ReplaceDecorations(oldIDs, specs, owner), nil
}

// RemoveAllForOwner removes every decoration of owner.
func (d *Document) RemoveAllForOwner(owner uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}
	d.store.RemoveAllForOwner(owner)
	return nil
}

// DecorationsInRange returns the decorations touching r.
func (d *Document) DecorationsInRange(r Range, owner uint32, filterValidation bool) []Decoration {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return nil
	}
	return d.store.DecorationsInRange(r, owner, filterValidation)
}

// DecorationsOnLine returns the decorations touching line.
func (d *Document) DecorationsOnLine(line int, owner uint32, filterValidation bool) []Decoration {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return nil
	}
	return d.store.DecorationsOnLine(line, owner, filterValidation)
}

// AllDecorations returns every decoration passing the filters.
func (d *Document) AllDecorations(owner uint32, filterValidation bool) []Decoration {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return nil
	}
	return d.store.AllDecorations(owner, filterValidation)
}

// Decoration returns the decoration with id.
func (d *Document) Decoration(id string) (Decoration, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return Decoration{}, false
	}
	return d.store.Decoration(id)
}

// DecorationRange returns the current range of the decoration with id.
func (d *Document) DecorationRange(id string) (Range, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return Range{}, false
	}
	return d.store.Range(id)
}

// DecorationOptions returns the options of the decoration with id.
func (d *Document) DecorationOptions(id string) (DecorationOptions, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return DecorationOptions{}, false
	}
	return d.store.Options(id)
}

// OnDidChangeDecorations registers a change listener and returns a function
// that removes it.
func (d *Document) OnDidChangeDecorations(fn event.Listener[DecorationsChanged]) (func(), error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, ErrClosed
	}
	return d.store.OnDidChangeDecorations(fn), nil
}

// Decorations returns the underlying store. It is not synchronised with the
// document's lock.
func (d *Document) Decorations() *decoration.Store {
	return d.store
}

// Close disposes the decorations and anchors. Further edits and decoration
// changes fail with ErrClosed. Close may be called more than once.
func (d *Document) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	d.closed = true
	if d.hist != nil {
		d.hist.Clear()
	}
	d.store.Dispose()
	d.markers.Dispose()
	d.logger.Debug("document closed")
}

func (d *Document) checkWritable() error {
	if d.closed {
		return ErrClosed
	}
	if d.readOnly {
		return ErrReadOnly
	}
	return nil
}
