// Package api provides the Lua modules exposed to plugin scripts.
//
// Scripts reach the document through two modules, each registered as a
// _ks_<name> global and aggregated under require("ks"):
//
//   - ks.buf: text access and edits (line, line_count, insert, delete, replace)
//   - ks.deco: decorations (replace, in_range, on_line, all, range, options,
//     remove_owner)
//
// Positions are 1-based line and column numbers, and ranges are passed
// either as four numbers or as a {sl, sc, el, ec} table. A decoration spec
// is a table:
//
//	local ids = ks.deco.replace(old, {
//	  { range = {1, 1, 1, 5}, class = "keyword", hover = "reserved word",
//	    stickiness = "NeverGrowsWhenTypingAtEdges" },
//	  { range = {3, 1, 3, 1}, whole_line = true, lines_class = "changed",
//	    ruler = { color = "#0a0", position = "Left" } },
//	})
//
// A spec may also carry a "json" field holding the options as a JSON object;
// the other fields override it.
//
// # Usage
//
//	ctx := &api.Context{Document: doc, Owner: 7}
//	registry, err := api.DefaultRegistry(ctx)
//	if err != nil {
//	    return err
//	}
//	if err := registry.InjectAll(state.LuaState()); err != nil {
//	    return err
//	}
//
// Module functions run on the goroutine executing the script. Errors from
// the document are raised as Lua errors.
package api
