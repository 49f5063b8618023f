package api

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/decor/internal/document"
	"github.com/dshills/decor/internal/engine/buffer"
	"github.com/dshills/decor/internal/engine/decoration"
)

func setupTest(t *testing.T, text string, owner uint32) (*lua.LState, *document.Document) {
	t.Helper()

	doc := document.New(text, document.WithLogger(slog.New(slog.DiscardHandler)))
	t.Cleanup(doc.Close)

	reg, err := DefaultRegistry(&Context{Document: doc, Owner: owner})
	require.NoError(t, err)

	L := lua.NewState()
	t.Cleanup(L.Close)
	require.NoError(t, reg.InjectAll(L))
	return L, doc
}

func TestRegistry(t *testing.T) {
	reg, err := DefaultRegistry(&Context{})
	require.NoError(t, err)

	assert.Equal(t, []string{"buf", "deco"}, reg.List())
	_, ok := reg.Get("deco")
	assert.True(t, ok)

	assert.Error(t, reg.Register(NewBufferModule(&Context{})), "duplicate names are rejected")
}

func TestLoader(t *testing.T) {
	L, _ := setupTest(t, "abc", 1)

	require.NoError(t, L.DoString(`
		local ks = require("ks")
		same = ks.deco == _ks_deco
		version = ks.api_version
	`))
	assert.Equal(t, lua.LTrue, L.GetGlobal("same"))
	assert.Equal(t, lua.LNumber(APIVersion), L.GetGlobal("version"))
}

func TestBufferFunctions(t *testing.T) {
	L, doc := setupTest(t, "hello\nworld", 1)

	require.NoError(t, L.DoString(`
		count = _ks_buf.line_count()
		second = _ks_buf.line(2)
		el, ec = _ks_buf.insert(1, 6, ",\nbig")
		_ks_buf.delete(1, 1, 1, 2)
		rl, rc = _ks_buf.replace(3, 1, 3, 6, "earth")
		text = _ks_buf.text()
	`))

	assert.Equal(t, lua.LNumber(2), L.GetGlobal("count"))
	assert.Equal(t, "world", L.GetGlobal("second").String())
	assert.Equal(t, lua.LNumber(2), L.GetGlobal("el"))
	assert.Equal(t, lua.LNumber(4), L.GetGlobal("ec"))
	assert.Equal(t, lua.LNumber(3), L.GetGlobal("rl"))
	assert.Equal(t, lua.LNumber(6), L.GetGlobal("rc"))
	assert.Equal(t, "ello,\nbig\nearth", doc.Text())
}

func TestReplaceAndQuery(t *testing.T) {
	L, doc := setupTest(t, "local x = 1\nprint(x)", 5)

	require.NoError(t, L.DoString(`
		ids = _ks_deco.replace({}, {
			{ range = {1, 1, 1, 6}, class = "keyword", hover = "reserved",
			  stickiness = "NeverGrowsWhenTypingAtEdges" },
			{ range = {2, 1, 2, 1}, whole_line = true, lines_class = "call",
			  ruler = { color = "#0A0", position = "Left" } },
		})
		n = #ids
		first = ids[1]

		on1 = _ks_deco.on_line(1)
		on1_class = on1[1].class
		on1_owner = on1[1].owner
		on1_hover = on1[1].hover[1]
		on1_end = on1[1].range[4]

		hits = #_ks_deco.in_range(1, 1, 2, 1)
		all = #_ks_deco.all(5)
		others = #_ks_deco.all(6)
	`))

	assert.Equal(t, lua.LNumber(2), L.GetGlobal("n"))
	assert.Equal(t, "keyword", L.GetGlobal("on1_class").String())
	assert.Equal(t, lua.LNumber(5), L.GetGlobal("on1_owner"))
	assert.Equal(t, "reserved", L.GetGlobal("on1_hover").String())
	assert.Equal(t, lua.LNumber(6), L.GetGlobal("on1_end"))
	assert.Equal(t, lua.LNumber(2), L.GetGlobal("hits"))
	assert.Equal(t, lua.LNumber(2), L.GetGlobal("all"))
	assert.Equal(t, lua.LNumber(0), L.GetGlobal("others"))

	id := L.GetGlobal("first").String()
	o, ok := doc.DecorationOptions(id)
	require.True(t, ok)
	assert.Equal(t, decoration.NeverGrowsWhenTypingAtEdges, o.Stickiness)

	all := doc.AllDecorations(5, false)
	require.Len(t, all, 2)
	assert.True(t, all[1].Options.IsWholeLine)
	assert.Equal(t, "#00aa00", all[1].Options.OverviewRuler.Color)
	assert.Equal(t, decoration.LaneLeft, all[1].Options.OverviewRuler.Lane)
}

func TestReplaceWithOldIDs(t *testing.T) {
	L, doc := setupTest(t, "abcdef", 1)

	require.NoError(t, L.DoString(`
		local spec = { range = {1, 2, 1, 4}, class = "x" }
		first = _ks_deco.replace(nil, { spec })
		second = _ks_deco.replace(first, { spec, { range = {1, 5, 1, 6} } })
		kept = first[1] == second[1]
	`))
	assert.Equal(t, lua.LTrue, L.GetGlobal("kept"))
	assert.Len(t, doc.AllDecorations(0, false), 2)
}

func TestRangeAndOptionsFollowEdits(t *testing.T) {
	L, doc := setupTest(t, "abc", 1)

	require.NoError(t, L.DoString(`id = _ks_deco.replace({}, {{ range = {1, 2, 1, 3}, inline_class = "b" }})[1]`))
	_, err := doc.Insert(buffer.NewPosition(1, 1), "\n")
	require.NoError(t, err)

	require.NoError(t, L.DoString(`
		local r = _ks_deco.range(id)
		line, col = r[1], r[2]
		inline = _ks_deco.options(id).inline_class
		stick = _ks_deco.options(id).stickiness
		missing = _ks_deco.range("a;999") == nil and _ks_deco.options("a;999") == nil
	`))
	assert.Equal(t, lua.LNumber(2), L.GetGlobal("line"))
	assert.Equal(t, lua.LNumber(2), L.GetGlobal("col"))
	assert.Equal(t, "b", L.GetGlobal("inline").String())
	assert.Equal(t, "AlwaysGrowsWhenTypingAtEdges", L.GetGlobal("stick").String())
	assert.Equal(t, lua.LTrue, L.GetGlobal("missing"))
}

func TestJSONOptions(t *testing.T) {
	L, doc := setupTest(t, "abc", 1)

	require.NoError(t, L.DoString(`
		_ks_deco.replace({}, {{
			range = {1, 1, 1, 2},
			json = '{"className": "from-json", "hoverMessage": ["j"], "isWholeLine": true}',
			class = "override",
		}})
	`))

	all := doc.AllDecorations(0, false)
	require.Len(t, all, 1)
	assert.Equal(t, "override", all[0].Options.ClassName)
	assert.Equal(t, []string{"j"}, all[0].Options.HoverMessage)
	assert.True(t, all[0].Options.IsWholeLine)
}

func TestRemoveOwner(t *testing.T) {
	L, doc := setupTest(t, "abc", 3)

	_, err := doc.ReplaceDecorations(nil, []decoration.Spec{{Range: buffer.NewRange(1, 1, 1, 2)}}, 9)
	require.NoError(t, err)

	require.NoError(t, L.DoString(`
		_ks_deco.replace({}, {{ range = {1, 1, 1, 2} }})
		_ks_deco.remove_owner()
	`))
	require.Len(t, doc.AllDecorations(0, false), 1)
	assert.Equal(t, uint32(9), doc.AllDecorations(0, false)[0].OwnerID)

	require.NoError(t, L.DoString(`_ks_deco.remove_owner(9)`))
	assert.Empty(t, doc.AllDecorations(0, false))
}

func TestInvalidSpecs(t *testing.T) {
	L, _ := setupTest(t, "abc", 1)

	for name, script := range map[string]string{
		"missing range":    `_ks_deco.replace({}, {{ class = "x" }})`,
		"short range":      `_ks_deco.replace({}, {{ range = {1, 1} }})`,
		"bad stickiness":   `_ks_deco.replace({}, {{ range = {1, 1, 1, 1}, stickiness = "Sometimes" }})`,
		"bad lane":         `_ks_deco.replace({}, {{ range = {1, 1, 1, 1}, ruler = { position = "Up" } }})`,
		"bad hover":        `_ks_deco.replace({}, {{ range = {1, 1, 1, 1}, hover = 3 }})`,
		"bad json":         `_ks_deco.replace({}, {{ range = {1, 1, 1, 1}, json = "{" }})`,
		"spec not a table": `_ks_deco.replace({}, { "x" })`,
		"negative owner":   `_ks_deco.all(-1)`,
	} {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, L.DoString(script))
		})
	}
}

func TestClosedDocumentRaises(t *testing.T) {
	L, doc := setupTest(t, "abc", 1)
	doc.Close()

	err := L.DoString(`_ks_deco.replace({}, {{ range = {1, 1, 1, 2} }})`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "closed")

	require.NoError(t, L.DoString(`n = #_ks_deco.all()`))
	assert.Equal(t, lua.LNumber(0), L.GetGlobal("n"))
}

func TestNoDocument(t *testing.T) {
	reg, err := DefaultRegistry(&Context{})
	require.NoError(t, err)

	L := lua.NewState()
	defer L.Close()
	require.NoError(t, reg.InjectAll(L))

	require.NoError(t, L.DoString(`
		text = _ks_buf.text()
		n = #_ks_deco.on_line(1)
		r = _ks_deco.range("a;1")
	`))
	assert.Equal(t, "", L.GetGlobal("text").String())
	assert.Equal(t, lua.LNumber(0), L.GetGlobal("n"))
	assert.Equal(t, lua.LNil, L.GetGlobal("r"))

	assert.Error(t, L.DoString(`_ks_buf.insert(1, 1, "x")`))
}
