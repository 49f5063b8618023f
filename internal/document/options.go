package document

import (
	"log/slog"

	"github.com/dshills/decor/internal/engine/buffer"
	"github.com/dshills/decor/internal/engine/decoration"
)

// Option configures a Document during creation.
type Option func(*Document)

// WithLogger sets the logger shared by the document and its components.
func WithLogger(l *slog.Logger) Option {
	return func(d *Document) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithLineEnding sets the line ending used by Text.
// Without it the line ending is detected from the initial text.
func WithLineEnding(le buffer.LineEnding) Option {
	return func(d *Document) {
		d.lineEnding = &le
	}
}

// WithReadOnly rejects edits with ErrReadOnly. Decorations can still be
// changed.
func WithReadOnly(readOnly bool) Option {
	return func(d *Document) {
		d.readOnly = readOnly
	}
}

// WithDecorationOptions passes options through to the decoration store.
func WithDecorationOptions(opts ...decoration.Option) Option {
	return func(d *Document) {
		d.storeOpts = append(d.storeOpts, opts...)
	}
}

// WithUndoLimit bounds the undo history to n entries. Zero keeps the
// default limit and a negative n disables undo.
func WithUndoLimit(n int) Option {
	return func(d *Document) {
		d.undoLimit = n
	}
}
