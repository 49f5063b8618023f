package decoration

import (
	"github.com/dshills/decor/internal/engine/buffer"
	"github.com/dshills/decor/internal/engine/marker"
)

// Decoration is a snapshot of a decoration as returned by queries.
type Decoration struct {
	ID      string
	OwnerID uint32
	Range   buffer.Range
	Options Options
}

// Spec describes a decoration to add.
type Spec struct {
	Range   buffer.Range
	Options Options
}

// entity is the store's record of a live decoration.
type entity struct {
	id         string
	internalID uint64
	ownerID    uint32
	rng        buffer.Range
	options    Options

	start *marker.Anchor
	end   *marker.Anchor

	isForValidation bool
}

func (d *entity) snapshot() Decoration {
	return Decoration{
		ID:      d.id,
		OwnerID: d.ownerID,
		Range:   d.rng,
		Options: d.options,
	}
}

func (d *entity) isMultiLine() bool {
	return d.rng.Start.Line != d.rng.End.Line
}

// anchoredRange rebuilds the range from the anchors. When the end anchor has
// been pushed before the start anchor the range collapses onto the start.
func (d *entity) anchoredRange() buffer.Range {
	start := d.start.Position()
	end := d.end.Position()
	if end.Before(start) {
		return buffer.CollapsedRange(start)
	}
	return buffer.Range{Start: start, End: end}
}

// matches applies the owner and validation query filters.
// A zero filter or a zero owner matches any owner.
func (d *entity) matches(owner uint32, filterValidation bool) bool {
	if owner != 0 && d.ownerID != 0 && d.ownerID != owner {
		return false
	}
	if filterValidation && d.isForValidation {
		return false
	}
	return true
}
