package api

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/decor/internal/engine/buffer"
	"github.com/dshills/decor/internal/engine/decoration"
)

// checkPosition reads a line, column pair starting at argument n.
func checkPosition(L *lua.LState, n int) buffer.Position {
	return buffer.NewPosition(L.CheckInt(n), L.CheckInt(n+1))
}

// checkRange reads four range arguments starting at n.
func checkRange(L *lua.LState, n int) buffer.Range {
	return buffer.NewRange(L.CheckInt(n), L.CheckInt(n+1), L.CheckInt(n+2), L.CheckInt(n+3))
}

// optOwner reads an optional owner argument, defaulting to def.
func optOwner(L *lua.LState, n int, def uint32) uint32 {
	owner := L.OptInt(n, int(def))
	if owner < 0 {
		L.ArgError(n, "owner must be non-negative")
	}
	return uint32(owner)
}

func rangeToTable(L *lua.LState, r buffer.Range) *lua.LTable {
	tbl := L.CreateTable(4, 0)
	tbl.RawSetInt(1, lua.LNumber(r.Start.Line))
	tbl.RawSetInt(2, lua.LNumber(r.Start.Column))
	tbl.RawSetInt(3, lua.LNumber(r.End.Line))
	tbl.RawSetInt(4, lua.LNumber(r.End.Column))
	return tbl
}

func rangeFromTable(tbl *lua.LTable) (buffer.Range, error) {
	var v [4]int
	for i := range v {
		n, ok := tbl.RawGetInt(i + 1).(lua.LNumber)
		if !ok {
			return buffer.Range{}, fmt.Errorf("range[%d] must be a number", i+1)
		}
		v[i] = int(n)
	}
	return buffer.NewRange(v[0], v[1], v[2], v[3]), nil
}

// stringList accepts a string or an array of strings.
func stringList(lv lua.LValue) ([]string, error) {
	switch v := lv.(type) {
	case *lua.LNilType:
		return nil, nil
	case lua.LString:
		return []string{string(v)}, nil
	case *lua.LTable:
		out := make([]string, 0, v.Len())
		for i := 1; i <= v.Len(); i++ {
			s, ok := v.RawGetInt(i).(lua.LString)
			if !ok {
				return nil, fmt.Errorf("element %d must be a string", i)
			}
			out = append(out, string(s))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected string or table, got %s", lv.Type())
	}
}

func stringListToTable(L *lua.LState, list []string) *lua.LTable {
	tbl := L.CreateTable(len(list), 0)
	for i, s := range list {
		tbl.RawSetInt(i+1, lua.LString(s))
	}
	return tbl
}

// Lua field names for decoration options.
var classFields = []struct {
	key string
	get func(*decoration.Options) *string
}{
	{"class", func(o *decoration.Options) *string { return &o.ClassName }},
	{"glyph_class", func(o *decoration.Options) *string { return &o.GlyphMarginClassName }},
	{"lines_class", func(o *decoration.Options) *string { return &o.LinesDecorationsClassName }},
	{"inline_class", func(o *decoration.Options) *string { return &o.InlineClassName }},
	{"before_class", func(o *decoration.Options) *string { return &o.BeforeContentClassName }},
	{"after_class", func(o *decoration.Options) *string { return &o.AfterContentClassName }},
}

// optionsFromTable reads decoration options from a spec table. A "json"
// field, when present, is decoded first and the other fields override it.
func optionsFromTable(tbl *lua.LTable) (decoration.Options, error) {
	var o decoration.Options

	if js, ok := tbl.RawGetString("json").(lua.LString); ok {
		parsed, err := decoration.ParseOptionsJSON([]byte(js))
		if err != nil {
			return o, err
		}
		o = parsed
	}

	for _, f := range classFields {
		if s, ok := tbl.RawGetString(f.key).(lua.LString); ok {
			*f.get(&o) = string(s)
		}
	}

	var err error
	if lv := tbl.RawGetString("hover"); lv != lua.LNil {
		if o.HoverMessage, err = stringList(lv); err != nil {
			return o, fmt.Errorf("hover: %w", err)
		}
	}
	if lv := tbl.RawGetString("glyph_hover"); lv != lua.LNil {
		if o.GlyphMarginHoverMessage, err = stringList(lv); err != nil {
			return o, fmt.Errorf("glyph_hover: %w", err)
		}
	}

	if lv := tbl.RawGetString("whole_line"); lv != lua.LNil {
		o.IsWholeLine = lua.LVAsBool(lv)
	}

	switch v := tbl.RawGetString("stickiness").(type) {
	case lua.LString:
		if o.Stickiness, err = decoration.ParseStickiness(string(v)); err != nil {
			return o, err
		}
	case lua.LNumber:
		o.Stickiness = decoration.Stickiness(int(v))
		if !o.Stickiness.IsValid() {
			return o, fmt.Errorf("%w: stickiness %d", decoration.ErrInvalidOptions, int(v))
		}
	}

	if ruler, ok := tbl.RawGetString("ruler").(*lua.LTable); ok {
		if s, ok := ruler.RawGetString("color").(lua.LString); ok {
			o.OverviewRuler.Color = string(s)
		}
		if s, ok := ruler.RawGetString("dark_color").(lua.LString); ok {
			o.OverviewRuler.DarkColor = string(s)
		}
		if s, ok := ruler.RawGetString("hc_color").(lua.LString); ok {
			o.OverviewRuler.HCColor = string(s)
		}
		if s, ok := ruler.RawGetString("position").(lua.LString); ok {
			if o.OverviewRuler.Lane, err = decoration.ParseOverviewRulerLane(string(s)); err != nil {
				return o, err
			}
		}
	}
	return o, nil
}

func optionsToTable(L *lua.LState, o decoration.Options) *lua.LTable {
	tbl := L.NewTable()
	for _, f := range classFields {
		if s := *f.get(&o); s != "" {
			tbl.RawSetString(f.key, lua.LString(s))
		}
	}
	if len(o.HoverMessage) > 0 {
		tbl.RawSetString("hover", stringListToTable(L, o.HoverMessage))
	}
	if len(o.GlyphMarginHoverMessage) > 0 {
		tbl.RawSetString("glyph_hover", stringListToTable(L, o.GlyphMarginHoverMessage))
	}
	tbl.RawSetString("whole_line", lua.LBool(o.IsWholeLine))
	tbl.RawSetString("stickiness", lua.LString(o.Stickiness.String()))

	if o.OverviewRuler != (decoration.OverviewRuler{}) {
		ruler := L.NewTable()
		for key, val := range map[string]string{
			"color":      o.OverviewRuler.Color,
			"dark_color": o.OverviewRuler.DarkColor,
			"hc_color":   o.OverviewRuler.HCColor,
		} {
			if val != "" {
				ruler.RawSetString(key, lua.LString(val))
			}
		}
		ruler.RawSetString("position", lua.LString(o.OverviewRuler.Lane.String()))
		tbl.RawSetString("ruler", ruler)
	}
	return tbl
}

// specFromTable reads {range={sl,sc,el,ec}, ...options}.
func specFromTable(tbl *lua.LTable) (decoration.Spec, error) {
	rt, ok := tbl.RawGetString("range").(*lua.LTable)
	if !ok {
		return decoration.Spec{}, fmt.Errorf("range must be a table")
	}
	r, err := rangeFromTable(rt)
	if err != nil {
		return decoration.Spec{}, err
	}
	o, err := optionsFromTable(tbl)
	if err != nil {
		return decoration.Spec{}, err
	}
	return decoration.Spec{Range: r, Options: o}, nil
}

func decorationToTable(L *lua.LState, d decoration.Decoration) *lua.LTable {
	tbl := optionsToTable(L, d.Options)
	tbl.RawSetString("id", lua.LString(d.ID))
	tbl.RawSetString("owner", lua.LNumber(d.OwnerID))
	tbl.RawSetString("range", rangeToTable(L, d.Range))
	return tbl
}

func decorationsToTable(L *lua.LState, ds []decoration.Decoration) *lua.LTable {
	tbl := L.CreateTable(len(ds), 0)
	for i, d := range ds {
		tbl.RawSetInt(i+1, decorationToTable(L, d))
	}
	return tbl
}
