package decoration

import (
	"fmt"
	"slices"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Stickiness controls how a decoration's edges react to typing exactly at
// them.
type Stickiness int

const (
	// AlwaysGrowsWhenTypingAtEdges extends the decoration over text typed at
	// either edge.
	AlwaysGrowsWhenTypingAtEdges Stickiness = iota

	// NeverGrowsWhenTypingAtEdges keeps text typed at either edge outside.
	NeverGrowsWhenTypingAtEdges

	// GrowsOnlyWhenTypingBefore extends the decoration over text typed at
	// its start only.
	GrowsOnlyWhenTypingBefore

	// GrowsOnlyWhenTypingAfter extends the decoration over text typed at
	// its end only.
	GrowsOnlyWhenTypingAfter
)

var stickinessNames = [...]string{
	AlwaysGrowsWhenTypingAtEdges: "AlwaysGrowsWhenTypingAtEdges",
	NeverGrowsWhenTypingAtEdges:  "NeverGrowsWhenTypingAtEdges",
	GrowsOnlyWhenTypingBefore:    "GrowsOnlyWhenTypingBefore",
	GrowsOnlyWhenTypingAfter:     "GrowsOnlyWhenTypingAfter",
}

// String returns the stickiness name.
func (s Stickiness) String() string {
	if s < 0 || int(s) >= len(stickinessNames) {
		return fmt.Sprintf("Stickiness(%d)", int(s))
	}
	return stickinessNames[s]
}

// IsValid reports whether s is one of the four modes.
func (s Stickiness) IsValid() bool {
	return s >= 0 && int(s) < len(stickinessNames)
}

// ParseStickiness returns the mode with the given name (case-insensitive).
func ParseStickiness(name string) (Stickiness, error) {
	for i, n := range stickinessNames {
		if strings.EqualFold(n, name) {
			return Stickiness(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown stickiness %q", ErrInvalidOptions, name)
}

// anchorFlags returns the sticks-to-previous flags of the start and end
// anchors.
func (s Stickiness) anchorFlags() (start, end bool) {
	switch s {
	case NeverGrowsWhenTypingAtEdges:
		return false, true
	case GrowsOnlyWhenTypingBefore:
		return true, true
	case GrowsOnlyWhenTypingAfter:
		return false, false
	default:
		return true, false
	}
}

// OverviewRulerLane is a bit set of overview ruler lanes.
type OverviewRulerLane int

// Overview ruler lanes.
const (
	LaneLeft   OverviewRulerLane = 1
	LaneCenter OverviewRulerLane = 2
	LaneRight  OverviewRulerLane = 4
	LaneFull   OverviewRulerLane = 7
)

// String returns the lane name.
func (l OverviewRulerLane) String() string {
	switch l {
	case 0:
		return "None"
	case LaneLeft:
		return "Left"
	case LaneCenter:
		return "Center"
	case LaneRight:
		return "Right"
	case LaneFull:
		return "Full"
	default:
		return fmt.Sprintf("OverviewRulerLane(%d)", int(l))
	}
}

// ParseOverviewRulerLane returns the lane with the given name
// (case-insensitive).
func ParseOverviewRulerLane(name string) (OverviewRulerLane, error) {
	for _, l := range []OverviewRulerLane{LaneLeft, LaneCenter, LaneRight, LaneFull} {
		if strings.EqualFold(l.String(), name) {
			return l, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown overview ruler lane %q", ErrInvalidOptions, name)
}

// OverviewRuler describes a decoration's mark in the overview ruler.
// An empty Color means no mark.
type OverviewRuler struct {
	Color     string
	DarkColor string
	HCColor   string
	Lane      OverviewRulerLane
}

// Options holds the presentation attributes of a decoration.
//
// The store keeps a normalized copy of the options it is given; values
// returned from the store share slices with that copy and must not be
// modified.
type Options struct {
	Stickiness Stickiness

	// Class names are reduced to [A-Za-z0-9-] when normalized.
	ClassName                 string
	GlyphMarginClassName      string
	LinesDecorationsClassName string
	InlineClassName           string
	BeforeContentClassName    string
	AfterContentClassName     string

	HoverMessage            []string
	GlyphMarginHoverMessage []string

	IsWholeLine bool

	OverviewRuler OverviewRuler
}

// Normalize returns a copy of o with class names sanitized, ruler colors
// canonicalised and message slices copied. An invalid stickiness falls back
// to AlwaysGrowsWhenTypingAtEdges.
func (o Options) Normalize() Options {
	n := o
	if !n.Stickiness.IsValid() {
		n.Stickiness = AlwaysGrowsWhenTypingAtEdges
	}
	n.ClassName = SanitizeClassName(o.ClassName)
	n.GlyphMarginClassName = SanitizeClassName(o.GlyphMarginClassName)
	n.LinesDecorationsClassName = SanitizeClassName(o.LinesDecorationsClassName)
	n.InlineClassName = SanitizeClassName(o.InlineClassName)
	n.BeforeContentClassName = SanitizeClassName(o.BeforeContentClassName)
	n.AfterContentClassName = SanitizeClassName(o.AfterContentClassName)
	n.HoverMessage = cloneMessages(o.HoverMessage)
	n.GlyphMarginHoverMessage = cloneMessages(o.GlyphMarginHoverMessage)
	n.OverviewRuler.Color = NormalizeColor(o.OverviewRuler.Color)
	n.OverviewRuler.DarkColor = NormalizeColor(o.OverviewRuler.DarkColor)
	n.OverviewRuler.HCColor = NormalizeColor(o.OverviewRuler.HCColor)
	return n
}

// Equal reports whether o and other are structurally equal. Nil and empty
// message lists are equal.
func (o Options) Equal(other Options) bool {
	return o.Stickiness == other.Stickiness &&
		o.ClassName == other.ClassName &&
		o.GlyphMarginClassName == other.GlyphMarginClassName &&
		o.LinesDecorationsClassName == other.LinesDecorationsClassName &&
		o.InlineClassName == other.InlineClassName &&
		o.BeforeContentClassName == other.BeforeContentClassName &&
		o.AfterContentClassName == other.AfterContentClassName &&
		slices.Equal(o.HoverMessage, other.HoverMessage) &&
		slices.Equal(o.GlyphMarginHoverMessage, other.GlyphMarginHoverMessage) &&
		o.IsWholeLine == other.IsWholeLine &&
		o.OverviewRuler == other.OverviewRuler
}

// SanitizeClassName removes every character outside [A-Za-z0-9-].
func SanitizeClassName(name string) string {
	clean := true
	for i := 0; i < len(name); i++ {
		if !isClassNameByte(name[i]) {
			clean = false
			break
		}
	}
	if clean {
		return name
	}

	var sb strings.Builder
	sb.Grow(len(name))
	for i := 0; i < len(name); i++ {
		if isClassNameByte(name[i]) {
			sb.WriteByte(name[i])
		}
	}
	return sb.String()
}

func isClassNameByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-'
}

// NormalizeColor rewrites a hex color ("#abc", "#AABBCC") as lower-case
// "#rrggbb". Anything that does not parse, such as a theme color token, is
// returned unchanged.
func NormalizeColor(s string) string {
	if s == "" || s[0] != '#' {
		return s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return s
	}
	return c.Hex()
}

func cloneMessages(msgs []string) []string {
	if len(msgs) == 0 {
		return nil
	}
	return slices.Clone(msgs)
}
