package decoration

import "github.com/dshills/decor/internal/engine/buffer"

// index holds the live decorations. multiLine always holds exactly the
// decorations whose range spans more than one line; single-line decorations
// are found through the anchor buckets of their line instead.
type index struct {
	byID       map[string]*entity
	byInternal map[uint64]*entity
	multiLine  map[string]*entity
}

func newIndex() index {
	return index{
		byID:       make(map[string]*entity),
		byInternal: make(map[uint64]*entity),
		multiLine:  make(map[string]*entity),
	}
}

func (x *index) len() int {
	return len(x.byID)
}

func (x *index) get(id string) (*entity, bool) {
	d, ok := x.byID[id]
	return d, ok
}

func (x *index) insert(d *entity) {
	x.byID[d.id] = d
	x.byInternal[d.internalID] = d
	if d.isMultiLine() {
		x.multiLine[d.id] = d
	}
}

func (x *index) remove(d *entity) {
	delete(x.byID, d.id)
	delete(x.byInternal, d.internalID)
	delete(x.multiLine, d.id)
}

// setRange stores r on d and keeps multiLine in step. It returns false when
// r equals the current range.
func (x *index) setRange(d *entity, r buffer.Range) bool {
	if d.rng == r {
		return false
	}
	was := d.isMultiLine()
	d.rng = r
	switch is := d.isMultiLine(); {
	case is && !was:
		x.multiLine[d.id] = d
	case !is && was:
		delete(x.multiLine, d.id)
	}
	return true
}

func (x *index) clear() {
	clear(x.byID)
	clear(x.byInternal)
	clear(x.multiLine)
}
