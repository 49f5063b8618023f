// Package decoration keeps annotated ranges ("decorations") attached to the
// text of a buffer while the buffer is edited.
//
// A Store sits on top of a TextModel (for clamping ranges) and an
// AnchorEngine (for following edits). Each decoration owns two anchors, one
// per edge; the decoration's Stickiness decides whether typing exactly at an
// edge extends it.
//
// Mutation happens inside change sessions:
//
//	err := store.ChangeDecorations(ownerID, func(s *decoration.Session) error {
//	    id := s.AddDecoration(buffer.NewRange(1, 1, 1, 5), decoration.Options{
//	        ClassName:    "highlight",
//	        HoverMessage: []string{"defined here"},
//	    })
//	    s.RemoveDecoration(oldID)
//	    return nil
//	})
//
// Sessions nest, and listeners registered with OnDidChangeDecorations hear
// about each outermost session once. Edits that move decorations produce
// their own event listing only changed ids.
//
// Decoration ids have the form "<tag>;<n>" where the tag identifies the
// store (see TagAllocator). Ids from another store, removed ids and malformed
// ids are simply not found.
//
// Queries (DecorationsInRange, DecorationsOnLine, AllDecorations) return
// snapshots sorted by range. Multi-line decorations are kept in their own
// index; single-line decorations are found through the anchors on each line
// of the query, so a line query costs time proportional to what is on that
// line plus the number of multi-line decorations.
package decoration
