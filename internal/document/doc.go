// Package document combines a text buffer, its anchor engine and its
// decoration store behind one lock.
//
// The inner packages are not safe for concurrent use; Document serialises
// access so that plugins and command handlers on different goroutines can
// share a document:
//
//	doc := document.New("package main\n")
//	ids, _ := doc.ReplaceDecorations(nil, []document.DecorationSpec{{
//	    Range:   document.Range{Start: document.Position{Line: 1, Column: 1}, End: document.Position{Line: 1, Column: 8}},
//	    Options: document.DecorationOptions{ClassName: "keyword"},
//	}}, ownerID)
//
//	doc.Insert(document.Position{Line: 1, Column: 1}, "// x\n")
//	r, _ := doc.DecorationRange(ids[0]) // now on line 2
//
// Every edit batch is recorded for Undo and Redo. Undoing replays the
// inverse edits through the anchor engine, so decorations move back with
// the text.
package document
