package decoration

import (
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// JSON keys for Options. They follow the camelCase names editors use on the
// wire.
const (
	keyStickiness                = "stickiness"
	keyClassName                 = "className"
	keyGlyphMarginClassName      = "glyphMarginClassName"
	keyLinesDecorationsClassName = "linesDecorationsClassName"
	keyInlineClassName           = "inlineClassName"
	keyBeforeContentClassName    = "beforeContentClassName"
	keyAfterContentClassName     = "afterContentClassName"
	keyHoverMessage              = "hoverMessage"
	keyGlyphMarginHoverMessage   = "glyphMarginHoverMessage"
	keyIsWholeLine               = "isWholeLine"
	keyOverviewRuler             = "overviewRuler"
)

// ParseOptionsJSON reads Options from a JSON object. The result is not yet
// normalized. Stickiness may be given by name or number; a hover message may
// be a string or an array of strings; the overview ruler lane may be a name
// or a number.
func ParseOptionsJSON(data []byte) (Options, error) {
	if !gjson.ValidBytes(data) {
		return Options{}, fmt.Errorf("%w: malformed JSON", ErrInvalidOptions)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return Options{}, fmt.Errorf("%w: expected a JSON object", ErrInvalidOptions)
	}
	return OptionsFromResult(root)
}

// OptionsFromResult reads Options from an already parsed JSON object.
func OptionsFromResult(root gjson.Result) (Options, error) {
	var o Options

	if s := root.Get(keyStickiness); s.Exists() {
		st, err := stickinessFromResult(s)
		if err != nil {
			return Options{}, err
		}
		o.Stickiness = st
	}

	o.ClassName = root.Get(keyClassName).String()
	o.GlyphMarginClassName = root.Get(keyGlyphMarginClassName).String()
	o.LinesDecorationsClassName = root.Get(keyLinesDecorationsClassName).String()
	o.InlineClassName = root.Get(keyInlineClassName).String()
	o.BeforeContentClassName = root.Get(keyBeforeContentClassName).String()
	o.AfterContentClassName = root.Get(keyAfterContentClassName).String()
	o.HoverMessage = messagesFromResult(root.Get(keyHoverMessage))
	o.GlyphMarginHoverMessage = messagesFromResult(root.Get(keyGlyphMarginHoverMessage))
	o.IsWholeLine = root.Get(keyIsWholeLine).Bool()

	if r := root.Get(keyOverviewRuler); r.IsObject() {
		o.OverviewRuler.Color = r.Get("color").String()
		o.OverviewRuler.DarkColor = r.Get("darkColor").String()
		o.OverviewRuler.HCColor = r.Get("hcColor").String()
		if lane := r.Get("position"); lane.Exists() {
			switch lane.Type {
			case gjson.Number:
				o.OverviewRuler.Lane = OverviewRulerLane(lane.Int())
			default:
				l, err := ParseOverviewRulerLane(lane.String())
				if err != nil {
					return Options{}, err
				}
				o.OverviewRuler.Lane = l
			}
		}
	}

	return o, nil
}

func stickinessFromResult(r gjson.Result) (Stickiness, error) {
	if r.Type == gjson.Number {
		st := Stickiness(r.Int())
		if !st.IsValid() {
			return 0, fmt.Errorf("%w: stickiness %d out of range", ErrInvalidOptions, r.Int())
		}
		return st, nil
	}
	return ParseStickiness(r.String())
}

func messagesFromResult(r gjson.Result) []string {
	switch {
	case !r.Exists():
		return nil
	case r.IsArray():
		var msgs []string
		r.ForEach(func(_, v gjson.Result) bool {
			msgs = append(msgs, v.String())
			return true
		})
		return msgs
	default:
		return []string{r.String()}
	}
}

// MarshalJSON encodes the options, omitting empty fields.
func (o Options) MarshalJSON() ([]byte, error) {
	out := []byte(`{}`)
	var err error

	set := func(key string, value any) {
		if err != nil {
			return
		}
		out, err = sjson.SetBytes(out, key, value)
	}
	setString := func(key, value string) {
		if value != "" {
			set(key, value)
		}
	}

	set(keyStickiness, o.Stickiness.String())
	setString(keyClassName, o.ClassName)
	setString(keyGlyphMarginClassName, o.GlyphMarginClassName)
	setString(keyLinesDecorationsClassName, o.LinesDecorationsClassName)
	setString(keyInlineClassName, o.InlineClassName)
	setString(keyBeforeContentClassName, o.BeforeContentClassName)
	setString(keyAfterContentClassName, o.AfterContentClassName)
	if len(o.HoverMessage) > 0 {
		set(keyHoverMessage, o.HoverMessage)
	}
	if len(o.GlyphMarginHoverMessage) > 0 {
		set(keyGlyphMarginHoverMessage, o.GlyphMarginHoverMessage)
	}
	if o.IsWholeLine {
		set(keyIsWholeLine, true)
	}
	if o.OverviewRuler != (OverviewRuler{}) {
		setString(keyOverviewRuler+".color", o.OverviewRuler.Color)
		setString(keyOverviewRuler+".darkColor", o.OverviewRuler.DarkColor)
		setString(keyOverviewRuler+".hcColor", o.OverviewRuler.HCColor)
		switch lane := o.OverviewRuler.Lane; lane {
		case 0:
		case LaneLeft, LaneCenter, LaneRight, LaneFull:
			set(keyOverviewRuler+".position", lane.String())
		default:
			set(keyOverviewRuler+".position", int(lane))
		}
	}

	if err != nil {
		return nil, fmt.Errorf("encode decoration options: %w", err)
	}
	return out, nil
}
