package diagnostics

import (
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/decor/internal/document"
	"github.com/dshills/decor/internal/engine/buffer"
	"github.com/dshills/decor/internal/engine/decoration"
)

const uri = "file:///src/main.go"

func newDoc(t *testing.T, text string) *document.Document {
	t.Helper()
	doc := document.New(text, document.WithLogger(slog.New(slog.DiscardHandler)))
	t.Cleanup(doc.Close)
	return doc
}

func quiet() Option {
	return WithLogger(slog.New(slog.DiscardHandler))
}

func publish(version int, diags string) []byte {
	return []byte(fmt.Sprintf(`{
		"jsonrpc": "2.0",
		"method": "textDocument/publishDiagnostics",
		"params": {"uri": %q, "version": %d, "diagnostics": [%s]}
	}`, uri, version, diags))
}

const (
	undefinedFoo = `{"range": {"start": {"line": 0, "character": 5}, "end": {"line": 0, "character": 8}},
		"severity": 1, "source": "compiler", "code": "E101", "message": "undefined: foo"}`
	unusedBar = `{"range": {"start": {"line": 1, "character": 0}, "end": {"line": 1, "character": 3}},
		"severity": 2, "message": "unused bar"}`
	hintBaz = `{"range": {"start": {"line": 2, "character": 0}, "end": {"line": 2, "character": 1}},
		"severity": 4, "message": "rename"}`
)

func TestParsePublish(t *testing.T) {
	p, err := ParsePublish(publish(3, undefinedFoo+","+unusedBar))
	require.NoError(t, err)

	assert.Equal(t, uri, p.URI)
	assert.True(t, p.HasVersion)
	assert.Equal(t, int64(3), p.Version)
	require.Len(t, p.Diagnostics, 2)

	d := p.Diagnostics[0]
	assert.Equal(t, LSPRange{Start: LSPPosition{0, 5}, End: LSPPosition{0, 8}}, d.Range)
	assert.Equal(t, SeverityError, d.Severity)
	assert.Equal(t, "E101", d.Code)
	assert.Equal(t, "[compiler] undefined: foo (E101)", d.Format())
	assert.Equal(t, "unused bar", p.Diagnostics[1].Format())
}

func TestParsePublishParamsOnly(t *testing.T) {
	p, err := ParsePublish([]byte(`{"uri": "file:///a", "diagnostics": [
		{"range": {"start": {"line": 0, "character": 0}, "end": {"line": 0, "character": 1}}, "code": 42, "message": "m"}
	]}`))
	require.NoError(t, err)

	assert.False(t, p.HasVersion)
	require.Len(t, p.Diagnostics, 1)
	assert.Equal(t, SeverityError, p.Diagnostics[0].Severity, "missing severity is an error")
	assert.Equal(t, "42", p.Diagnostics[0].Code)
}

func TestParsePublishErrors(t *testing.T) {
	for name, input := range map[string]string{
		"malformed":      `{"uri": `,
		"no diagnostics": `{"uri": "file:///a"}`,
		"no range":       `{"diagnostics": [{"message": "x"}]}`,
		"bad severity":   `{"diagnostics": [{"range": {}, "severity": 9}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParsePublish([]byte(input))
			assert.ErrorIs(t, err, ErrInvalidPayload)
		})
	}
}

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "Warning", SeverityWarning.String())
	assert.Equal(t, "H", SeverityHint.Icon())
	assert.Equal(t, "Unknown", Severity(0).String())
	assert.False(t, Severity(5).IsValid())
}

func TestApplyDecoratesDiagnostics(t *testing.T) {
	doc := newDoc(t, "func foo() {}\nbar := 1\nbaz()")
	s := NewSyncer(doc, WithURI(uri), quiet())

	require.NoError(t, s.Apply(publish(1, undefinedFoo+","+unusedBar+","+hintBaz)))

	ids := s.IDs()
	require.Len(t, ids, 3)
	assert.Equal(t, Counts{Errors: 1, Warnings: 1, Hints: 1}, s.Counts())

	d, ok := doc.Decoration(ids[0])
	require.True(t, ok)
	assert.Equal(t, buffer.NewRange(1, 6, 1, 9), d.Range)
	assert.Equal(t, DefaultOwner, d.OwnerID)
	assert.Equal(t, decoration.DefaultErrorClass, d.Options.ClassName)
	assert.Equal(t, []string{"[compiler] undefined: foo (E101)"}, d.Options.HoverMessage)
	assert.Equal(t, decoration.NeverGrowsWhenTypingAtEdges, d.Options.Stickiness)

	o, _ := doc.DecorationOptions(ids[1])
	assert.Equal(t, decoration.DefaultWarningClass, o.ClassName)
	o, _ = doc.DecorationOptions(ids[2])
	assert.Equal(t, HintClass, o.ClassName)

	assert.Len(t, doc.AllDecorations(0, true), 1, "only the hint survives validation filtering")
}

func TestApplyKeepsUnchangedIDs(t *testing.T) {
	doc := newDoc(t, "func foo() {}\nbar := 1\nbaz()")
	s := NewSyncer(doc, quiet())

	require.NoError(t, s.Apply(publish(1, undefinedFoo+","+unusedBar)))
	first := s.IDs()

	require.NoError(t, s.Apply(publish(2, unusedBar)))
	second := s.IDs()

	require.Len(t, second, 1)
	assert.Equal(t, first[1], second[0])
	assert.Len(t, doc.AllDecorations(DefaultOwner, false), 1)
}

func TestApplyIgnoresStaleVersions(t *testing.T) {
	doc := newDoc(t, "func foo() {}\nbar := 1")
	s := NewSyncer(doc, quiet())

	require.NoError(t, s.Apply(publish(5, undefinedFoo)))
	require.NoError(t, s.Apply(publish(4, "")))

	assert.Len(t, s.IDs(), 1)
}

func TestApplyRejectsOtherDocuments(t *testing.T) {
	doc := newDoc(t, "x")
	s := NewSyncer(doc, WithURI("file:///other.go"), quiet())

	err := s.Apply(publish(1, undefinedFoo))
	assert.ErrorIs(t, err, ErrURIMismatch)
	assert.Empty(t, s.IDs())
}

func TestUTF16Columns(t *testing.T) {
	// The emoji is two UTF-16 code units but one rune.
	doc := newDoc(t, "a😀bc")
	s := NewSyncer(doc, quiet())

	require.NoError(t, s.Set([]Diagnostic{{
		Range:    LSPRange{Start: LSPPosition{0, 3}, End: LSPPosition{0, 4}},
		Severity: SeverityWarning,
	}}))

	r, ok := doc.DecorationRange(s.IDs()[0])
	require.True(t, ok)
	assert.Equal(t, buffer.NewRange(1, 3, 1, 4), r)
}

func TestFilters(t *testing.T) {
	doc := newDoc(t, "aaaa\nbbbb\ncccc\ndddd")
	diags := []Diagnostic{
		{Range: LSPRange{Start: LSPPosition{3, 0}, End: LSPPosition{3, 1}}, Severity: SeverityWarning, Source: "vet"},
		{Range: LSPRange{Start: LSPPosition{2, 0}, End: LSPPosition{2, 1}}, Severity: SeverityError, Source: "lint"},
		{Range: LSPRange{Start: LSPPosition{1, 0}, End: LSPPosition{1, 1}}, Severity: SeverityError, Source: "vet"},
		{Range: LSPRange{Start: LSPPosition{0, 0}, End: LSPPosition{0, 1}}, Severity: SeverityHint},
	}

	t.Run("min severity", func(t *testing.T) {
		s := NewSyncer(doc, WithOwner(10), WithMinSeverity(SeverityWarning), quiet())
		require.NoError(t, s.Set(diags))
		assert.Equal(t, Counts{Errors: 2, Warnings: 1}, s.Counts())
	})

	t.Run("sources", func(t *testing.T) {
		s := NewSyncer(doc, WithOwner(11), WithEnabledSources("vet"), quiet())
		require.NoError(t, s.Set(diags))
		assert.Equal(t, Counts{Errors: 1, Warnings: 1, Hints: 1}, s.Counts())
	})

	t.Run("cap keeps most severe", func(t *testing.T) {
		s := NewSyncer(doc, WithOwner(12), WithMaxDiagnostics(2), quiet())
		require.NoError(t, s.Set(diags))
		assert.Equal(t, Counts{Errors: 2}, s.Counts())

		got := doc.AllDecorations(12, false)
		require.Len(t, got, 2)
		assert.Equal(t, 2, got[0].Range.Start.Line)
		assert.Equal(t, 3, got[1].Range.Start.Line)
	})
}

func TestCustomClasses(t *testing.T) {
	doc := newDoc(t, "abc")
	s := NewSyncer(doc, WithClasses("err", "warn"), quiet())

	require.NoError(t, s.Set([]Diagnostic{{Range: LSPRange{End: LSPPosition{0, 1}}, Severity: SeverityError}}))

	o, _ := doc.DecorationOptions(s.IDs()[0])
	assert.Equal(t, "err", o.ClassName)
}

func TestClear(t *testing.T) {
	doc := newDoc(t, "func foo() {}")
	s := NewSyncer(doc, quiet())

	require.NoError(t, s.Apply(publish(1, undefinedFoo)))
	require.NoError(t, s.Clear())

	assert.Empty(t, s.IDs())
	assert.Zero(t, s.Counts().Total())
	assert.Empty(t, doc.AllDecorations(0, false))
	assert.NoError(t, s.Clear())
}

type failingTarget struct{}

func (failingTarget) LineContent(int) string { return "" }

func (failingTarget) ReplaceDecorations([]string, []decoration.Spec, uint32) ([]string, error) {
	return nil, errors.New("closed")
}

func TestTargetErrorsAreWrapped(t *testing.T) {
	s := NewSyncer(failingTarget{}, quiet())

	err := s.Set([]Diagnostic{{Severity: SeverityError}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "replace diagnostics")

	assert.ErrorIs(t, NewSyncer(newDoc(t, "x"), quiet()).Apply([]byte("nope")), ErrInvalidPayload)
}
