package api

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/decor/internal/engine/decoration"
)

// DecorationModule implements the ks.deco API module.
type DecorationModule struct {
	ctx *Context
}

// NewDecorationModule creates a new decoration module.
func NewDecorationModule(ctx *Context) *DecorationModule {
	return &DecorationModule{ctx: ctx}
}

// Name returns the module name.
func (m *DecorationModule) Name() string {
	return "deco"
}

// Register registers the module into the Lua state.
func (m *DecorationModule) Register(L *lua.LState) error {
	mod := L.NewTable()

	L.SetField(mod, "replace", L.NewFunction(m.replace))
	L.SetField(mod, "in_range", L.NewFunction(m.inRange))
	L.SetField(mod, "on_line", L.NewFunction(m.onLine))
	L.SetField(mod, "all", L.NewFunction(m.all))
	L.SetField(mod, "range", L.NewFunction(m.rangeOf))
	L.SetField(mod, "options", L.NewFunction(m.options))
	L.SetField(mod, "remove_owner", L.NewFunction(m.removeOwner))

	L.SetGlobal("_ks_deco", mod)
	return nil
}

// replace(old_ids, specs [, owner]) -> {ids}
// Replaces the decorations named by old_ids with specs. The returned ids
// line up with specs.
func (m *DecorationModule) replace(L *lua.LState) int {
	oldTbl := L.OptTable(1, L.NewTable())
	specTbl := L.CheckTable(2)
	owner := optOwner(L, 3, m.ctx.Owner)

	oldIDs, err := stringList(oldTbl)
	if err != nil {
		L.ArgError(1, err.Error())
		return 0
	}

	specs := make([]decoration.Spec, 0, specTbl.Len())
	for i := 1; i <= specTbl.Len(); i++ {
		tbl, ok := specTbl.RawGetInt(i).(*lua.LTable)
		if !ok {
			L.ArgError(2, "specs must be tables")
			return 0
		}
		spec, err := specFromTable(tbl)
		if err != nil {
			L.ArgError(2, err.Error())
			return 0
		}
		specs = append(specs, spec)
	}

	if m.ctx.Document == nil {
		L.RaiseError("replace: no document available")
		return 0
	}

	ids, err := m.ctx.Document.ReplaceDecorations(oldIDs, specs, owner)
	if err != nil {
		L.RaiseError("replace: %v", err)
		return 0
	}
	L.Push(stringListToTable(L, ids))
	return 1
}

// in_range(sl, sc, el, ec [, owner [, filter_validation]]) -> {decorations}
func (m *DecorationModule) inRange(L *lua.LState) int {
	r := checkRange(L, 1)
	owner := optOwner(L, 5, 0)
	filter := L.OptBool(6, false)

	if m.ctx.Document == nil {
		L.Push(L.NewTable())
		return 1
	}
	L.Push(decorationsToTable(L, m.ctx.Document.DecorationsInRange(r, owner, filter)))
	return 1
}

// on_line(line [, owner [, filter_validation]]) -> {decorations}
func (m *DecorationModule) onLine(L *lua.LState) int {
	line := L.CheckInt(1)
	owner := optOwner(L, 2, 0)
	filter := L.OptBool(3, false)

	if m.ctx.Document == nil {
		L.Push(L.NewTable())
		return 1
	}
	L.Push(decorationsToTable(L, m.ctx.Document.DecorationsOnLine(line, owner, filter)))
	return 1
}

// all([owner [, filter_validation]]) -> {decorations}
func (m *DecorationModule) all(L *lua.LState) int {
	owner := optOwner(L, 1, 0)
	filter := L.OptBool(2, false)

	if m.ctx.Document == nil {
		L.Push(L.NewTable())
		return 1
	}
	L.Push(decorationsToTable(L, m.ctx.Document.AllDecorations(owner, filter)))
	return 1
}

// range(id) -> {sl, sc, el, ec} | nil
func (m *DecorationModule) rangeOf(L *lua.LState) int {
	id := L.CheckString(1)

	if m.ctx.Document != nil {
		if r, ok := m.ctx.Document.DecorationRange(id); ok {
			L.Push(rangeToTable(L, r))
			return 1
		}
	}
	L.Push(lua.LNil)
	return 1
}

// options(id) -> table | nil
func (m *DecorationModule) options(L *lua.LState) int {
	id := L.CheckString(1)

	if m.ctx.Document != nil {
		if o, ok := m.ctx.Document.DecorationOptions(id); ok {
			L.Push(optionsToTable(L, o))
			return 1
		}
	}
	L.Push(lua.LNil)
	return 1
}

// remove_owner([owner])
// Removes every decoration of owner, which defaults to the plugin's own.
func (m *DecorationModule) removeOwner(L *lua.LState) int {
	owner := optOwner(L, 1, m.ctx.Owner)

	if m.ctx.Document == nil {
		return 0
	}
	if err := m.ctx.Document.RemoveAllForOwner(owner); err != nil {
		L.RaiseError("remove_owner: %v", err)
	}
	return 0
}
