// Package marker tracks anchor points in a buffer across edits.
//
// An Anchor is a (line, column) point tagged with an owner id. The Engine
// keeps anchors grouped by line so that everything on a line can be found
// without scanning the whole buffer, and moves them as edits are applied.
//
// Each edit is applied as a deletion of the replaced range followed by an
// insertion at its start. An anchor exactly at the insertion point stays
// before the new text when it sticks to the previous character and moves
// after it otherwise. See AdjustPosition for the full rule.
//
// Listeners registered with OnMoved learn which owners had anchors moved.
// Notifications are coalesced per outermost batch:
//
//	eng.BeginBatch()
//	eng.ApplyEdit(res1)
//	eng.ApplyEdit(res2)
//	eng.EndBatch() // listeners called once
package marker
