package history

// BeginGroup starts collecting pushed operations into one undo unit.
// Groups nest; the name of the outermost group is kept.
func (h *History) BeginGroup(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.groupDepth++
	if h.groupDepth == 1 {
		h.groupName = name
		h.groupOps = nil
	}
}

// EndGroup closes a group. When the outermost group closes, its
// operations become a single entry.
func (h *History) EndGroup() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.groupDepth == 0 {
		return
	}
	h.groupDepth--
	if h.groupDepth > 0 {
		return
	}

	ops := h.groupOps
	h.groupOps = nil
	if len(ops) == 0 {
		return
	}
	h.pushLocked(&Entry{Name: h.groupName, Ops: ops, Timestamp: h.now()})
}

// Checkpoint marks a depth of the undo stack.
type Checkpoint struct {
	undoDepth int
}

// CreateCheckpoint records the current undo depth.
func (h *History) CreateCheckpoint() Checkpoint {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Checkpoint{undoDepth: len(h.undoStack)}
}

// UndoToCheckpoint undoes entries until the stack is back at cp.
func (h *History) UndoToCheckpoint(cp Checkpoint, apply ApplyFunc) error {
	for h.UndoCount() > cp.undoDepth {
		if _, err := h.Undo(apply); err != nil {
			return err
		}
	}
	return nil
}
