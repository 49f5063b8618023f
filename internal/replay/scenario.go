package replay

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/tidwall/sjson"
	"gopkg.in/yaml.v3"

	"github.com/dshills/decor/internal/engine/buffer"
	"github.com/dshills/decor/internal/engine/decoration"
)

// ErrInvalidScenario indicates a scenario that cannot be replayed.
var ErrInvalidScenario = errors.New("invalid scenario")

// Scenario is a document plus the steps replayed against it.
type Scenario struct {
	Name string `yaml:"name"`
	Text string `yaml:"text"`
	// URI, when set, is the only document diagnostics are accepted for.
	URI   string `yaml:"uri"`
	Steps []Step `yaml:"steps"`
}

// Step holds exactly one action.
type Step struct {
	Decorate    *DecorateStep `yaml:"decorate,omitempty"`
	Change      *ChangeStep   `yaml:"change,omitempty"`
	Remove      []string      `yaml:"remove,omitempty"`
	RemoveOwner *uint32       `yaml:"remove_owner,omitempty"`
	Edit        *EditStep     `yaml:"edit,omitempty"`
	Undo        bool          `yaml:"undo,omitempty"`
	Redo        bool          `yaml:"redo,omitempty"`
	Checkpoint  string        `yaml:"checkpoint,omitempty"`
	Rollback    string        `yaml:"rollback,omitempty"`
	Diagnostics string        `yaml:"diagnostics,omitempty"`
	Lua         string        `yaml:"lua,omitempty"`
	Query       *QueryStep    `yaml:"query,omitempty"`
}

// DecorateStep adds one decoration. Label names it for later steps.
type DecorateStep struct {
	Label   string         `yaml:"label"`
	Owner   uint32         `yaml:"owner"`
	Range   []int          `yaml:"range"`
	Options map[string]any `yaml:"options"`
}

// ChangeStep moves a labelled decoration.
type ChangeStep struct {
	Label string `yaml:"label"`
	Range []int  `yaml:"range"`
}

// EditStep replaces Range with Text.
type EditStep struct {
	Range []int  `yaml:"range"`
	Text  string `yaml:"text"`
}

// QueryStep prints the decorations on Line, in Range, or everywhere when
// neither is set.
type QueryStep struct {
	Line             int    `yaml:"line"`
	Range            []int  `yaml:"range"`
	Owner            uint32 `yaml:"owner"`
	FilterValidation bool   `yaml:"filter_validation"`
}

// Kind returns the name of the step's action.
func (s Step) Kind() string {
	switch {
	case s.Decorate != nil:
		return "decorate"
	case s.Change != nil:
		return "change"
	case s.Remove != nil:
		return "remove"
	case s.RemoveOwner != nil:
		return "remove_owner"
	case s.Edit != nil:
		return "edit"
	case s.Undo:
		return "undo"
	case s.Redo:
		return "redo"
	case s.Checkpoint != "":
		return "checkpoint"
	case s.Rollback != "":
		return "rollback"
	case s.Diagnostics != "":
		return "diagnostics"
	case s.Lua != "":
		return "lua"
	case s.Query != nil:
		return "query"
	}
	return ""
}

func (s Step) actions() int {
	n := 0
	for _, set := range []bool{
		s.Decorate != nil, s.Change != nil, s.Remove != nil, s.RemoveOwner != nil,
		s.Edit != nil, s.Undo, s.Redo,
		s.Checkpoint != "", s.Rollback != "", s.Diagnostics != "", s.Lua != "", s.Query != nil,
	} {
		if set {
			n++
		}
	}
	return n
}

// LoadScenario reads a YAML scenario file.
func LoadScenario(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseScenario(f)
}

// ParseScenario decodes and validates a YAML scenario.
func ParseScenario(r io.Reader) (*Scenario, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var sc Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks that every step has one action and well-formed ranges.
func (sc *Scenario) Validate() error {
	for i, st := range sc.Steps {
		if n := st.actions(); n != 1 {
			return fmt.Errorf("%w: step %d has %d actions, want 1", ErrInvalidScenario, i+1, n)
		}

		var ranges [][]int
		switch {
		case st.Decorate != nil:
			ranges = append(ranges, st.Decorate.Range)
		case st.Change != nil:
			ranges = append(ranges, st.Change.Range)
		case st.Edit != nil:
			ranges = append(ranges, st.Edit.Range)
		case st.Query != nil && st.Query.Range != nil:
			ranges = append(ranges, st.Query.Range)
		}
		for _, r := range ranges {
			if len(r) != 4 {
				return fmt.Errorf("%w: step %d: range needs 4 numbers, got %d", ErrInvalidScenario, i+1, len(r))
			}
		}
	}
	return nil
}

func toRange(v []int) buffer.Range {
	return buffer.NewRange(v[0], v[1], v[2], v[3])
}

// optionsFromMap converts a YAML options mapping, keyed like the JSON
// options codec, into decoration options.
func optionsFromMap(m map[string]any) (decoration.Options, error) {
	if len(m) == 0 {
		return decoration.Options{}, nil
	}

	data := []byte("{}")
	for k, v := range m {
		var err error
		if data, err = sjson.SetBytes(data, sjsonEscape(k), v); err != nil {
			return decoration.Options{}, err
		}
	}
	return decoration.ParseOptionsJSON(data)
}

// sjsonEscape escapes characters sjson treats as path syntax.
func sjsonEscape(key string) string {
	var b bytes.Buffer
	for _, r := range key {
		switch r {
		case '.', '*', '?', '|', '#', '@', ':', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
