package replay

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/dshills/decor/internal/config"
	"github.com/dshills/decor/internal/diagnostics"
	"github.com/dshills/decor/internal/engine/decoration"
	"github.com/dshills/decor/internal/logging"
)

const basicScenario = `
name: basic
text: |-
  func main() {
    x := 1
  }
steps:
  - decorate:
      label: fn
      owner: 1
      range: [1, 6, 1, 10]
      options:
        className: fn
        hoverMessage: entry point
        overviewRuler: {color: "#F00", position: Right}
  - edit: {range: [1, 1, 1, 1], text: "// hi\n"}
  - query: {line: 2}
  - diagnostics: >-
      {"uri": "file:///a.go", "diagnostics": [{"range": {"start": {"line": 2, "character": 2},
      "end": {"line": 2, "character": 3}}, "severity": 1, "message": "unused x"}]}
  - lua: |
      local ks = require("ks")
      print(#ks.deco.on_line(3))
  - remove: [fn]
`

func replay(t *testing.T, cfg *config.Config, scenario string) []gjson.Result {
	t.Helper()

	sc, err := ParseScenario(strings.NewReader(scenario))
	require.NoError(t, err)

	var out bytes.Buffer
	r := NewRunner(cfg, logging.Discard(), NewWriter(&out, false, false))
	require.NoError(t, r.Run(context.Background(), sc))

	var lines []gjson.Result
	for _, l := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		require.True(t, gjson.Valid(l), l)
		lines = append(lines, gjson.Parse(l))
	}
	return lines
}

func TestReplayBasic(t *testing.T) {
	lines := replay(t, config.Default(), basicScenario)
	require.Len(t, lines, 7)

	added := lines[0]
	assert.Equal(t, int64(1), added.Get("step").Int())
	assert.Equal(t, "decorations.changed", added.Get("event").String())
	fnID := added.Get("added.0").String()
	require.NotEmpty(t, fnID)

	moved := lines[1]
	assert.Equal(t, int64(2), moved.Get("step").Int())
	assert.Equal(t, fnID, moved.Get("changed.0").String())

	query := lines[2]
	assert.Equal(t, "line", query.Get("query").String())
	assert.Equal(t, fnID, query.Get("decorations.0.id").String())
	assert.Equal(t, "[2,6,2,10]", query.Get("decorations.0.range").Raw)
	assert.Equal(t, "fn", query.Get("decorations.0.options.className").String())
	assert.Equal(t, "#ff0000", query.Get("decorations.0.options.overviewRuler.color").String())

	diag := lines[3]
	assert.Equal(t, int64(4), diag.Get("step").Int())
	diagID := diag.Get("added.0").String()
	require.NotEmpty(t, diagID)

	luaOut := lines[4]
	assert.Equal(t, int64(5), luaOut.Get("step").Int())
	assert.Equal(t, "1\n", luaOut.Get("output").String())

	removed := lines[5]
	assert.Equal(t, fnID, removed.Get("removed.0").String())

	final := lines[6]
	assert.True(t, final.Get("final").Bool())
	assert.Equal(t, "// hi\nfunc main() {\n  x := 1\n}", final.Get("text").String())
	require.Len(t, final.Get("decorations").Array(), 1)
	assert.Equal(t, diagID, final.Get("decorations.0.id").String())
	assert.Equal(t, "[3,3,3,4]", final.Get("decorations.0.range").Raw)
	assert.Equal(t, decoration.DefaultErrorClass, final.Get("decorations.0.options.className").String())
	assert.False(t, final.Get("metrics").Exists())
}

func TestReplayMetrics(t *testing.T) {
	cfg := config.Default()
	cfg.Decorations.Metrics = true

	lines := replay(t, cfg, basicScenario)
	final := lines[len(lines)-1]

	assert.Equal(t, float64(3), final.Get("metrics.decor_sessions_total").Float())
	assert.Equal(t, float64(1), final.Get("metrics.decor_live_decorations").Float())
	assert.Equal(t, float64(2), final.Get("metrics.decor_decorations_added_total").Float())
}

func TestReplayLuaDecorations(t *testing.T) {
	cfg := config.Default()
	cfg.Plugins.Owner = 42

	lines := replay(t, cfg, `
text: abc
steps:
  - lua: '_ks_deco.replace({}, {{ range = {1, 1, 1, 2}, class = "x" }})'
  - query: {owner: 42}
`)
	require.Len(t, lines, 3)
	assert.Equal(t, int64(1), lines[0].Get("step").Int())
	assert.Equal(t, "all", lines[1].Get("query").String())
	assert.Equal(t, int64(42), lines[1].Get("decorations.0.owner").Int())
}

func TestReplayChangeAndRemoveOwner(t *testing.T) {
	lines := replay(t, config.Default(), `
text: "one\ntwo"
steps:
  - decorate: {label: a, owner: 3, range: [1, 1, 1, 2]}
  - change: {label: a, range: [2, 1, 2, 3]}
  - query: {range: [2, 1, 2, 1]}
  - remove_owner: 3
  - query: {}
`)
	require.Len(t, lines, 6)
	id := lines[0].Get("added.0").String()
	assert.Equal(t, id, lines[1].Get("changed.0").String())
	assert.Equal(t, "range", lines[2].Get("query").String())
	assert.Equal(t, "[2,1,2,3]", lines[2].Get("decorations.0.range").Raw)
	assert.Equal(t, id, lines[3].Get("removed.0").String())
	assert.Equal(t, "[]", lines[4].Get("decorations").Raw)
}

func TestReplayUndoRedo(t *testing.T) {
	lines := replay(t, config.Default(), `
text: "one\ntwo"
steps:
  - decorate: {label: a, range: [1, 1, 1, 3]}
  - edit: {range: [1, 1, 1, 1], text: "zero\n"}
  - undo: true
  - query: {line: 1}
  - redo: true
`)
	require.Len(t, lines, 6)
	id := lines[0].Get("added.0").String()
	assert.Equal(t, int64(3), lines[2].Get("step").Int())
	assert.Equal(t, id, lines[2].Get("changed.0").String())
	assert.Equal(t, "[1,1,1,3]", lines[3].Get("decorations.0.range").Raw)
	assert.Equal(t, int64(5), lines[4].Get("step").Int())
	assert.Equal(t, "zero\none\ntwo", lines[5].Get("text").String())
	assert.Equal(t, `["edit"]`, lines[5].Get("history.undo").Raw)
	assert.Equal(t, `[]`, lines[5].Get("history.redo").Raw)
}

func TestReplayRollback(t *testing.T) {
	lines := replay(t, config.Default(), `
text: "one"
steps:
  - decorate: {label: a, range: [1, 1, 1, 4]}
  - checkpoint: start
  - edit: {range: [1, 1, 1, 1], text: "x\n"}
  - edit: {range: [1, 1, 1, 1], text: "y\n"}
  - rollback: start
`)
	require.Len(t, lines, 5)
	rollback := lines[3]
	assert.Equal(t, int64(5), rollback.Get("step").Int())
	assert.Equal(t, lines[0].Get("added.0").String(), rollback.Get("changed.0").String())

	final := lines[4]
	assert.Equal(t, "one", final.Get("text").String())
	assert.Equal(t, "[1,1,1,4]", final.Get("decorations.0.range").Raw)
	assert.Equal(t, `[]`, final.Get("history.undo").Raw)
	assert.Equal(t, `["edit","edit"]`, final.Get("history.redo").Raw)
}

func TestReplayDiagnosticsConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Diagnostics.Owner = 9
	cfg.Diagnostics.Sources = []string{"vet"}

	const scenario = `
uri: file:///a.go
text: "x := 1"
steps:
  - diagnostics: >-
      {"uri": "file:///a.go", "diagnostics": [
      {"range": {"start": {"line": 0, "character": 0}, "end": {"line": 0, "character": 1}}, "source": "vet", "message": "kept"},
      {"range": {"start": {"line": 0, "character": 5}, "end": {"line": 0, "character": 6}}, "source": "lint", "message": "dropped"}]}
  - query: {owner: 9}
`
	lines := replay(t, cfg, scenario)
	require.Len(t, lines, 3)
	assert.Equal(t, int64(1), lines[1].Get("decorations.#").Int())
	assert.Equal(t, int64(9), lines[1].Get("decorations.0.owner").Int())
	assert.Equal(t, "[vet] kept", lines[1].Get("decorations.0.options.hoverMessage.0").String())

	sc, err := ParseScenario(strings.NewReader(strings.Replace(scenario, "uri: file:///a.go", "uri: file:///b.go", 1)))
	require.NoError(t, err)
	r := NewRunner(cfg, logging.Discard(), NewWriter(&bytes.Buffer{}, false, false))
	assert.ErrorIs(t, r.Run(context.Background(), sc), diagnostics.ErrURIMismatch)
}

func TestParseScenarioErrors(t *testing.T) {
	for name, input := range map[string]string{
		"two actions":   "steps:\n  - {query: {}, lua: 'x = 1'}",
		"no action":     "steps:\n  - {}",
		"undo and redo": "steps:\n  - {undo: true, redo: true}",
		"two history":   "steps:\n  - {checkpoint: a, rollback: a}",
		"short range":   "steps:\n  - edit: {range: [1, 1], text: x}",
		"unknown field": "steps:\n  - jump: 3",
		"bad yaml":      "steps: [",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseScenario(strings.NewReader(input))
			assert.ErrorIs(t, err, ErrInvalidScenario)
		})
	}
}

func TestRunErrors(t *testing.T) {
	run := func(scenario string) error {
		sc, err := ParseScenario(strings.NewReader(scenario))
		require.NoError(t, err)
		r := NewRunner(config.Default(), logging.Discard(), NewWriter(&bytes.Buffer{}, false, false))
		return r.Run(context.Background(), sc)
	}

	err := run("text: x\nsteps:\n  - remove: [ghost]")
	assert.ErrorIs(t, err, ErrInvalidScenario)
	assert.Contains(t, err.Error(), "step 1 (remove)")

	err = run("text: x\nsteps:\n  - decorate: {range: [1, 1, 1, 1], options: {stickiness: Sometimes}}")
	assert.ErrorIs(t, err, decoration.ErrInvalidOptions)

	err = run("text: x\nsteps:\n  - lua: 'error(\"nope\")'")
	assert.ErrorContains(t, err, "nope")

	err = run("text: x\nsteps:\n  - diagnostics: 'not json'")
	assert.Error(t, err)

	sc, err := ParseScenario(strings.NewReader("text: x\nsteps:\n  - query: {}"))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, NewRunner(config.Default(), nil, NewWriter(&bytes.Buffer{}, false, false)).Run(ctx, sc), context.Canceled)
}

func TestWriterPretty(t *testing.T) {
	var out bytes.Buffer
	w := NewWriter(&out, true, false)
	require.NoError(t, w.Write([]byte(`{"a":1}`)))
	assert.Equal(t, "{\n  \"a\": 1\n}\n", out.String())

	out.Reset()
	w = NewWriter(&out, false, true)
	require.NoError(t, w.Write([]byte(`{"a":1}`)))
	assert.Contains(t, out.String(), "\x1b[")
}

func TestOptionsFromMap(t *testing.T) {
	o, err := optionsFromMap(map[string]any{
		"className":   "a b",
		"isWholeLine": true,
		"stickiness":  2,
	})
	require.NoError(t, err)
	assert.Equal(t, "a b", o.ClassName)
	assert.True(t, o.IsWholeLine)
	assert.Equal(t, decoration.GrowsOnlyWhenTypingBefore, o.Stickiness)

	o, err = optionsFromMap(nil)
	require.NoError(t, err)
	assert.Equal(t, decoration.Options{}, o)

	assert.Equal(t, `a\.b`, sjsonEscape("a.b"))
}
