package diagnostics

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// LSPPosition is a 0-based LSP position. Character counts UTF-16 code units.
type LSPPosition struct {
	Line      int
	Character int
}

// LSPRange is a 0-based LSP range.
type LSPRange struct {
	Start LSPPosition
	End   LSPPosition
}

// Diagnostic is one entry of a publishDiagnostics notification.
type Diagnostic struct {
	Range    LSPRange
	Severity Severity
	Code     string
	Source   string
	Message  string
}

// Format renders d for a hover: "[source] message (code)".
func (d Diagnostic) Format() string {
	var sb strings.Builder
	if d.Source != "" {
		sb.WriteString("[")
		sb.WriteString(d.Source)
		sb.WriteString("] ")
	}
	sb.WriteString(d.Message)
	if d.Code != "" {
		sb.WriteString(" (")
		sb.WriteString(d.Code)
		sb.WriteString(")")
	}
	return sb.String()
}

// Publish is a decoded textDocument/publishDiagnostics notification.
type Publish struct {
	URI         string
	Version     int64
	HasVersion  bool
	Diagnostics []Diagnostic
}

// ParsePublish decodes a publishDiagnostics payload. It accepts either the
// full JSON-RPC notification or only its params object.
func ParsePublish(payload []byte) (Publish, error) {
	if !gjson.ValidBytes(payload) {
		return Publish{}, fmt.Errorf("%w: malformed JSON", ErrInvalidPayload)
	}
	root := gjson.ParseBytes(payload)
	if params := root.Get("params"); params.IsObject() {
		root = params
	}

	diags := root.Get("diagnostics")
	if !diags.IsArray() {
		return Publish{}, fmt.Errorf("%w: missing diagnostics array", ErrInvalidPayload)
	}

	p := Publish{URI: root.Get("uri").String()}
	if v := root.Get("version"); v.Type == gjson.Number {
		p.Version = v.Int()
		p.HasVersion = true
	}

	p.Diagnostics = make([]Diagnostic, 0, len(diags.Array()))
	var err error
	diags.ForEach(func(_, d gjson.Result) bool {
		var diag Diagnostic
		diag, err = parseDiagnostic(d)
		if err != nil {
			return false
		}
		p.Diagnostics = append(p.Diagnostics, diag)
		return true
	})
	if err != nil {
		return Publish{}, err
	}
	return p, nil
}

func parseDiagnostic(d gjson.Result) (Diagnostic, error) {
	rng := d.Get("range")
	if !rng.IsObject() {
		return Diagnostic{}, fmt.Errorf("%w: diagnostic without range", ErrInvalidPayload)
	}

	sev := SeverityError
	if s := d.Get("severity"); s.Exists() {
		sev = Severity(s.Int())
		if !sev.IsValid() {
			return Diagnostic{}, fmt.Errorf("%w: severity %d", ErrInvalidPayload, sev)
		}
	}

	return Diagnostic{
		Range: LSPRange{
			Start: LSPPosition{Line: int(rng.Get("start.line").Int()), Character: int(rng.Get("start.character").Int())},
			End:   LSPPosition{Line: int(rng.Get("end.line").Int()), Character: int(rng.Get("end.character").Int())},
		},
		Severity: sev,
		Code:     d.Get("code").String(),
		Source:   d.Get("source").String(),
		Message:  d.Get("message").String(),
	}, nil
}

// utf16ToRuneOffset converts a UTF-16 offset to a rune offset within s.
func utf16ToRuneOffset(s string, utf16Off int) int {
	if utf16Off <= 0 {
		return 0
	}

	count := 0
	runes := 0
	for _, r := range s {
		if count >= utf16Off {
			return runes
		}
		if r >= 0x10000 {
			count += 2
		} else {
			count++
		}
		runes++
	}
	// Past the end of the line: keep the overflow so clamping happens in
	// the store.
	return runes + utf16Off - count
}
