// Package buffer provides the line-oriented text buffer that decorations are
// tracked against.
//
// The buffer package provides:
//
//   - 1-based Position and Range types with document-order comparison
//   - Position and range validation (clamping into the buffer, snapping
//     columns to grapheme cluster boundaries)
//   - Batched, non-overlapping edits that report what they replaced
//   - Line ending normalization
//
// Basic usage:
//
//	buf := buffer.NewBuffer("Hello\nWorld")
//
//	// Insert text at line 2, column 1
//	res, _ := buf.Insert(buffer.NewPosition(2, 1), "Big ")
//	// res.NewRange == [(2:1)-(2:5)]
//
//	// Replace several ranges in one call
//	buf.ApplyEdits([]buffer.Edit{
//	    {Range: buffer.NewRange(1, 1, 1, 6), Text: "Hi"},
//	    {Range: buffer.NewRange(2, 5, 2, 10), Text: "Planet"},
//	})
//
// Position Types:
//
// Lines and columns start at 1. Columns count runes; the column after the
// last rune of a line is LineMaxColumn(line). EditResult values carry the
// old and new coordinates of each applied edit so position trackers (see
// package marker) can follow the text.
//
// Thread Safety:
//
// Buffer is not safe for concurrent use. Callers that share a buffer across
// goroutines serialise access themselves (see package document).
package buffer
