package api

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/decor/internal/engine/buffer"
)

// BufferModule implements the ks.buf API module.
type BufferModule struct {
	ctx *Context
}

// NewBufferModule creates a new buffer module.
func NewBufferModule(ctx *Context) *BufferModule {
	return &BufferModule{ctx: ctx}
}

// Name returns the module name.
func (m *BufferModule) Name() string {
	return "buf"
}

// Register registers the module into the Lua state.
func (m *BufferModule) Register(L *lua.LState) error {
	mod := L.NewTable()

	L.SetField(mod, "text", L.NewFunction(m.text))
	L.SetField(mod, "line", L.NewFunction(m.line))
	L.SetField(mod, "line_count", L.NewFunction(m.lineCount))
	L.SetField(mod, "insert", L.NewFunction(m.insert))
	L.SetField(mod, "delete", L.NewFunction(m.delete))
	L.SetField(mod, "replace", L.NewFunction(m.replace))

	L.SetGlobal("_ks_buf", mod)
	return nil
}

// text() -> string
func (m *BufferModule) text(L *lua.LState) int {
	if m.ctx.Document == nil {
		L.Push(lua.LString(""))
		return 1
	}
	L.Push(lua.LString(m.ctx.Document.Text()))
	return 1
}

// line(n) -> string
// Returns the text of line n (1-indexed), or "" outside the document.
func (m *BufferModule) line(L *lua.LState) int {
	n := L.CheckInt(1)
	if m.ctx.Document == nil {
		L.Push(lua.LString(""))
		return 1
	}
	L.Push(lua.LString(m.ctx.Document.LineContent(n)))
	return 1
}

// line_count() -> number
func (m *BufferModule) lineCount(L *lua.LState) int {
	if m.ctx.Document == nil {
		L.Push(lua.LNumber(0))
		return 1
	}
	L.Push(lua.LNumber(m.ctx.Document.LineCount()))
	return 1
}

// insert(line, col, text) -> end_line, end_col
func (m *BufferModule) insert(L *lua.LState) int {
	pos := checkPosition(L, 1)
	text := L.CheckString(3)

	if m.ctx.Document == nil {
		L.RaiseError("insert: no document available")
		return 0
	}

	res, err := m.ctx.Document.Insert(pos, text)
	if err != nil {
		L.RaiseError("insert: %v", err)
		return 0
	}
	return pushPosition(L, res.NewRange.End)
}

// delete(sl, sc, el, ec)
func (m *BufferModule) delete(L *lua.LState) int {
	r := checkRange(L, 1)

	if m.ctx.Document == nil {
		L.RaiseError("delete: no document available")
		return 0
	}

	if _, err := m.ctx.Document.Delete(r); err != nil {
		L.RaiseError("delete: %v", err)
	}
	return 0
}

// replace(sl, sc, el, ec, text) -> end_line, end_col
func (m *BufferModule) replace(L *lua.LState) int {
	r := checkRange(L, 1)
	text := L.CheckString(5)

	if m.ctx.Document == nil {
		L.RaiseError("replace: no document available")
		return 0
	}

	res, err := m.ctx.Document.Replace(r, text)
	if err != nil {
		L.RaiseError("replace: %v", err)
		return 0
	}
	return pushPosition(L, res.NewRange.End)
}

func pushPosition(L *lua.LState, p buffer.Position) int {
	L.Push(lua.LNumber(p.Line))
	L.Push(lua.LNumber(p.Column))
	return 2
}
