package history

import (
	"errors"
	"sync"
	"time"
)

// DefaultMaxEntries bounds the undo stack when no limit is given.
const DefaultMaxEntries = 1000

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
	ErrGroupOpen     = errors.New("undo group is open")
)

// ApplyFunc replays the operations of an entry. Undo passes the entry
// that is being reversed; the callback chooses UndoEdits or RedoEdits.
type ApplyFunc func(OperationList) error

// History manages undo/redo state for a document.
type History struct {
	mu sync.Mutex

	undoStack []*Entry
	redoStack []*Entry

	// Grouping state
	groupDepth int
	groupName  string
	groupOps   OperationList

	maxEntries int
	now        func() time.Time
}

// New creates a history that keeps at most maxEntries undo units.
func New(maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &History{
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Push records an applied batch. Inside a group the operations join the
// group; otherwise they form a new undo unit. The redo stack is cleared.
func (h *History) Push(name string, ops OperationList) {
	if len(ops) == 0 {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.redoStack = nil
	if h.groupDepth > 0 {
		h.groupOps = append(h.groupOps, ops...)
		return
	}
	h.pushLocked(&Entry{Name: name, Ops: ops, Timestamp: h.now()})
}

func (h *History) pushLocked(e *Entry) {
	h.undoStack = append(h.undoStack, e)
	if excess := len(h.undoStack) - h.maxEntries; excess > 0 {
		h.undoStack = h.undoStack[excess:]
	}
}

// Undo pops the newest entry and hands it to apply. If apply fails the
// entry stays on the undo stack.
func (h *History) Undo(apply ApplyFunc) (Info, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.groupDepth > 0 {
		return Info{}, ErrGroupOpen
	}
	if len(h.undoStack) == 0 {
		return Info{}, ErrNothingToUndo
	}

	entry := h.undoStack[len(h.undoStack)-1]
	if err := apply(entry.Ops); err != nil {
		return Info{}, err
	}
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.redoStack = append(h.redoStack, entry)
	return entry.info(), nil
}

// Redo pops the newest undone entry and hands it to apply. If apply fails
// the entry stays on the redo stack.
func (h *History) Redo(apply ApplyFunc) (Info, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.groupDepth > 0 {
		return Info{}, ErrGroupOpen
	}
	if len(h.redoStack) == 0 {
		return Info{}, ErrNothingToRedo
	}

	entry := h.redoStack[len(h.redoStack)-1]
	if err := apply(entry.Ops); err != nil {
		return Info{}, err
	}
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.pushLocked(entry)
	return entry.info(), nil
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack) > 0
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack) > 0
}

// UndoCount returns the number of undo units available.
func (h *History) UndoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack)
}

// Clear removes all undo/redo history and any open group.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.undoStack = nil
	h.redoStack = nil
	h.groupDepth = 0
	h.groupOps = nil
}

// UndoInfo describes the undo stack, oldest first.
func (h *History) UndoInfo() []Info {
	h.mu.Lock()
	defer h.mu.Unlock()
	return infos(h.undoStack)
}

// RedoInfo describes the redo stack, oldest first.
func (h *History) RedoInfo() []Info {
	h.mu.Lock()
	defer h.mu.Unlock()
	return infos(h.redoStack)
}

func infos(entries []*Entry) []Info {
	out := make([]Info, len(entries))
	for i, e := range entries {
		out[i] = e.info()
	}
	return out
}
