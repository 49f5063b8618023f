// Package history records applied edit batches so they can be undone and
// redone.
//
// History does not touch a buffer itself. Undo and Redo hand the entry's
// operations to a callback, which replays OperationList.UndoEdits or
// OperationList.RedoEdits one edit at a time. Each operation's ranges are
// only valid against the document state it was recorded in, so the edits
// must not be merged into one batch.
//
//	h := history.New(500)
//	h.Push("type", history.FromResults(results))
//
//	h.BeginGroup("rename")
//	// ... several pushes ...
//	h.EndGroup()
//
//	h.Undo(func(ops history.OperationList) error {
//	    for _, e := range ops.UndoEdits() {
//	        // apply e
//	    }
//	    return nil
//	})
package history
