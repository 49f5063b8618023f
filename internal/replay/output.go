package replay

import (
	"io"

	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/dshills/decor/internal/engine/decoration"
)

// Writer writes one JSON document per line, or indented and optionally
// colored documents for a terminal.
type Writer struct {
	w      io.Writer
	pretty bool
	color  bool
}

// NewWriter creates a Writer. Pretty output is indented; color adds ANSI
// colors and implies pretty.
func NewWriter(w io.Writer, prettyOutput, color bool) *Writer {
	return &Writer{w: w, pretty: prettyOutput || color, color: color}
}

// Write emits one JSON document.
func (w *Writer) Write(doc []byte) error {
	switch {
	case w.color:
		doc = pretty.Color(pretty.Pretty(doc), nil)
	case w.pretty:
		doc = pretty.Pretty(doc)
	default:
		doc = append(pretty.Ugly(doc), '\n')
	}
	_, err := w.w.Write(doc)
	return err
}

// decorationJSON renders a decoration snapshot.
func decorationJSON(d decoration.Decoration) ([]byte, error) {
	opts, err := d.Options.MarshalJSON()
	if err != nil {
		return nil, err
	}

	doc := []byte("{}")
	for _, kv := range []struct {
		path string
		val  any
	}{
		{"id", d.ID},
		{"owner", d.OwnerID},
		{"range", []int{d.Range.Start.Line, d.Range.Start.Column, d.Range.End.Line, d.Range.End.Column}},
	} {
		if doc, err = sjson.SetBytes(doc, kv.path, kv.val); err != nil {
			return nil, err
		}
	}
	return sjson.SetRawBytes(doc, "options", opts)
}

// decorationsJSON renders a list of decorations as a JSON array.
func decorationsJSON(ds []decoration.Decoration) ([]byte, error) {
	arr := []byte("[]")
	for _, d := range ds {
		b, err := decorationJSON(d)
		if err != nil {
			return nil, err
		}
		if arr, err = sjson.SetRawBytes(arr, "-1", b); err != nil {
			return nil, err
		}
	}
	return arr, nil
}
