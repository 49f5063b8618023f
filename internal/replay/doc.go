// Package replay runs YAML scenarios against a document and reports what
// the decorations did as JSON lines.
//
// A scenario holds the initial text and a list of steps, each with exactly
// one action:
//
//	name: rename
//	text: "func main() {}\n"
//	steps:
//	  - decorate: {label: fn, owner: 1, range: [1, 6, 1, 10], options: {className: fn}}
//	  - edit: {range: [1, 1, 1, 1], text: "// hi\n"}
//	  - query: {line: 2}
//	  - undo: true
//	  - redo: true
//	  - diagnostics: '{"uri": "file:///main.go", "diagnostics": []}'
//	  - lua: 'print(#require("ks").deco.all())'
//	  - remove: [fn]
//
// Every change event, query result and Lua print becomes one line tagged
// with its step number. A final line carries the text, the decoration table
// and, when metrics are enabled, the store's metric totals.
package replay
