package document

import (
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/decor/internal/engine/buffer"
	"github.com/dshills/decor/internal/engine/decoration"
	"github.com/dshills/decor/internal/engine/history"
	"github.com/dshills/decor/internal/event"
)

func quiet() Option {
	return WithLogger(slog.New(slog.DiscardHandler))
}

func TestNewDocument(t *testing.T) {
	doc := New("one\r\ntwo", quiet())

	assert.Equal(t, 2, doc.LineCount())
	assert.Equal(t, "two", doc.LineContent(2))
	assert.Equal(t, "one\r\ntwo", doc.Text(), "detected line ending is kept")

	_, err := uuid.Parse(doc.ID())
	assert.NoError(t, err)
}

func TestWithLineEnding(t *testing.T) {
	doc := New("a\r\nb", quiet(), WithLineEnding(buffer.LineEndingLF))
	assert.Equal(t, "a\nb", doc.Text())
}

func TestDecorationsFollowEdits(t *testing.T) {
	doc := New("func main() {}\n", quiet())

	var events []event.Event[DecorationsChanged]
	_, err := doc.OnDidChangeDecorations(func(ev event.Event[DecorationsChanged]) {
		events = append(events, ev)
	})
	require.NoError(t, err)

	ids, err := doc.ReplaceDecorations(nil, []DecorationSpec{{
		Range:   buffer.NewRange(1, 6, 1, 10),
		Options: DecorationOptions{ClassName: "fn"},
	}}, 1)
	require.NoError(t, err)
	require.Len(t, ids, 1)

	_, err = doc.ApplyEdits(
		buffer.NewInsert(buffer.NewPosition(1, 1), "// comment\n"),
		buffer.NewInsert(buffer.NewPosition(1, 15), " "),
	)
	require.NoError(t, err)

	r, ok := doc.DecorationRange(ids[0])
	require.True(t, ok)
	assert.Equal(t, buffer.NewRange(2, 6, 2, 10), r)

	require.Len(t, events, 2, "one event for the add, one for the edit batch")
	assert.Equal(t, []string{ids[0]}, events[1].Payload.Changed)
	assert.Equal(t, doc.ID(), events[1].Metadata.Source)

	on2 := doc.DecorationsOnLine(2, 0, false)
	require.Len(t, on2, 1)
	assert.Equal(t, "fn", on2[0].Options.ClassName)
	assert.Empty(t, doc.DecorationsOnLine(1, 0, false))
}

func TestInsertDeleteReplace(t *testing.T) {
	doc := New("hello world", quiet())

	res, err := doc.Insert(buffer.NewPosition(1, 6), ",")
	require.NoError(t, err)
	assert.Equal(t, buffer.NewRange(1, 6, 1, 7), res.NewRange)

	_, err = doc.Delete(buffer.NewRange(1, 1, 1, 2))
	require.NoError(t, err)

	_, err = doc.Replace(buffer.NewRange(1, 1, 1, 5), "J")
	require.NoError(t, err)

	assert.Equal(t, "J, world", doc.Text())
	assert.Equal(t, uint64(3), doc.Version())
}

func TestReadOnly(t *testing.T) {
	doc := New("abc", quiet(), WithReadOnly(true))

	_, err := doc.Insert(buffer.NewPosition(1, 1), "x")
	assert.ErrorIs(t, err, ErrReadOnly)

	ids, err := doc.ReplaceDecorations(nil, []DecorationSpec{{Range: buffer.NewRange(1, 1, 1, 2)}}, 0)
	require.NoError(t, err)
	assert.Len(t, ids, 1)
}

func TestDecorationOptionsPassThrough(t *testing.T) {
	tags := decoration.NewTagAllocator()
	tags.Next()

	doc := New("abc", quiet(), WithDecorationOptions(
		decoration.WithTagAllocator(tags),
		decoration.WithValidationClasses("err", "warn"),
	))

	ids, err := doc.ReplaceDecorations(nil, []DecorationSpec{
		{Range: buffer.NewRange(1, 1, 1, 2), Options: DecorationOptions{ClassName: "err"}},
		{Range: buffer.NewRange(1, 1, 1, 2), Options: DecorationOptions{ClassName: "x"}},
	}, 0)
	require.NoError(t, err)

	assert.Equal(t, "b;1", ids[0])
	assert.Len(t, doc.AllDecorations(0, true), 1)
}

func TestChangeDecorations(t *testing.T) {
	doc := New("abc", quiet())

	var id string
	err := doc.ChangeDecorations(2, func(s *decoration.Session) error {
		id = s.AddDecoration(buffer.NewRange(1, 1, 1, 3), DecorationOptions{HoverMessage: []string{"hi"}})
		return nil
	})
	require.NoError(t, err)

	o, ok := doc.DecorationOptions(id)
	require.True(t, ok)
	assert.Equal(t, []string{"hi"}, o.HoverMessage)

	d, ok := doc.Decoration(id)
	require.True(t, ok)
	assert.Equal(t, uint32(2), d.OwnerID)

	require.NoError(t, doc.RemoveAllForOwner(2))
	assert.Empty(t, doc.AllDecorations(0, false))
}

func TestClose(t *testing.T) {
	doc := New("abc", quiet())
	_, err := doc.ReplaceDecorations(nil, []DecorationSpec{{Range: buffer.NewRange(1, 1, 1, 2)}}, 0)
	require.NoError(t, err)

	doc.Close()
	doc.Close()

	assert.True(t, doc.Decorations().IsDisposed())

	_, err = doc.Insert(buffer.NewPosition(1, 1), "x")
	assert.ErrorIs(t, err, ErrClosed)
	_, err = doc.ReplaceDecorations(nil, nil, 0)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, doc.RemoveAllForOwner(0), ErrClosed)
	assert.ErrorIs(t, doc.ChangeDecorations(0, func(*decoration.Session) error { return nil }), ErrClosed)
	_, err = doc.OnDidChangeDecorations(func(event.Event[DecorationsChanged]) {})
	assert.ErrorIs(t, err, ErrClosed)

	assert.Nil(t, doc.AllDecorations(0, false))
	_, ok := doc.DecorationRange("a;1")
	assert.False(t, ok)
}

func TestConcurrentAccess(t *testing.T) {
	doc := New("line\nline\nline\n", quiet())

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(owner uint32) {
			defer wg.Done()
			var ids []string
			for i := 0; i < 50; i++ {
				var err error
				ids, err = doc.ReplaceDecorations(ids, []DecorationSpec{{Range: buffer.NewRange(1, 1, 2, 3)}}, owner)
				assert.NoError(t, err)
				_, err = doc.Insert(buffer.NewPosition(1, 1), "x")
				assert.NoError(t, err)
				doc.DecorationsOnLine(2, owner, false)
			}
		}(uint32(w + 1))
	}
	wg.Wait()

	assert.Len(t, doc.AllDecorations(0, false), 4)
}

func TestUndoRedoMovesDecorations(t *testing.T) {
	doc := New("alpha\nbeta", quiet())
	ids, err := doc.ReplaceDecorations(nil, []DecorationSpec{{
		Range:   buffer.NewRange(2, 1, 2, 5),
		Options: DecorationOptions{Stickiness: decoration.NeverGrowsWhenTypingAtEdges},
	}}, 1)
	require.NoError(t, err)

	var events int
	_, err = doc.OnDidChangeDecorations(func(event.Event[DecorationsChanged]) { events++ })
	require.NoError(t, err)

	_, err = doc.ApplyEdits(
		buffer.NewInsert(buffer.NewPosition(1, 1), "x\ny\n"),
		buffer.NewInsert(buffer.NewPosition(2, 1), ">> "),
	)
	require.NoError(t, err)
	r, _ := doc.DecorationRange(ids[0])
	require.Equal(t, buffer.NewRange(4, 4, 4, 8), r)
	require.True(t, doc.CanUndo())

	events = 0
	require.NoError(t, doc.Undo())
	assert.Equal(t, "alpha\nbeta", doc.Text())
	r, _ = doc.DecorationRange(ids[0])
	assert.Equal(t, buffer.NewRange(2, 1, 2, 5), r)
	assert.Equal(t, 1, events, "one change event per undo")
	assert.False(t, doc.CanUndo())

	require.NoError(t, doc.Redo())
	assert.Equal(t, "x\ny\nalpha\n>> beta", doc.Text())
	r, _ = doc.DecorationRange(ids[0])
	assert.Equal(t, buffer.NewRange(4, 4, 4, 8), r)
	assert.ErrorIs(t, doc.Redo(), history.ErrNothingToRedo)
}

func TestUndoGroup(t *testing.T) {
	doc := New("abc", quiet())

	doc.BeginUndoGroup("typing")
	for _, s := range []string{"1", "2", "3"} {
		_, err := doc.Insert(buffer.NewPosition(1, 4), s)
		require.NoError(t, err)
	}
	doc.EndUndoGroup()
	require.Equal(t, "abc321", doc.Text())

	require.NoError(t, doc.Undo())
	assert.Equal(t, "abc", doc.Text())
	assert.ErrorIs(t, doc.Undo(), history.ErrNothingToUndo)
}

func TestUndoDisabled(t *testing.T) {
	doc := New("abc", quiet(), WithUndoLimit(-1))
	_, err := doc.Insert(buffer.NewPosition(1, 1), "x")
	require.NoError(t, err)

	assert.False(t, doc.CanUndo())
	assert.ErrorIs(t, doc.Undo(), ErrNoHistory)
}

func TestUndoToCheckpoint(t *testing.T) {
	doc := New("one", quiet())
	ids, err := doc.ReplaceDecorations(nil, []DecorationSpec{{Range: buffer.NewRange(1, 1, 1, 4)}}, 1)
	require.NoError(t, err)

	_, err = doc.Insert(buffer.NewPosition(1, 4), "!")
	require.NoError(t, err)
	cp, err := doc.Checkpoint()
	require.NoError(t, err)

	_, err = doc.Insert(buffer.NewPosition(1, 1), "a\n")
	require.NoError(t, err)
	_, err = doc.Insert(buffer.NewPosition(1, 1), "b\n")
	require.NoError(t, err)
	require.Len(t, doc.UndoHistory(), 3)

	var events int
	_, err = doc.OnDidChangeDecorations(func(event.Event[DecorationsChanged]) { events++ })
	require.NoError(t, err)

	require.NoError(t, doc.UndoToCheckpoint(cp))
	assert.Equal(t, "one!", doc.Text())
	assert.Equal(t, 1, events, "one change event for the whole rollback")
	assert.Len(t, doc.UndoHistory(), 1)
	assert.Len(t, doc.RedoHistory(), 2)

	r, _ := doc.DecorationRange(ids[0])
	assert.Equal(t, 1, r.Start.Line)
}

func TestCheckpointWithoutHistory(t *testing.T) {
	doc := New("abc", quiet(), WithUndoLimit(-1))
	_, err := doc.Checkpoint()
	assert.ErrorIs(t, err, ErrNoHistory)
	assert.ErrorIs(t, doc.UndoToCheckpoint(Checkpoint{}), ErrNoHistory)
	assert.Nil(t, doc.UndoHistory())
}
