package decoration

import (
	"slices"
	"time"

	"github.com/dshills/decor/internal/engine/buffer"
)

// DecorationsInRange returns the decorations touching r, sorted by range
// and then by creation order. r is clamped into the buffer first.
//
// An owner of 0 matches every decoration; otherwise only decorations of
// that owner (and decorations without an owner) are returned. With
// filterValidation set, validation decorations are left out.
func (s *Store) DecorationsInRange(r buffer.Range, owner uint32, filterValidation bool) []Decoration {
	s.checkDisposed()
	defer s.metrics.observeQuery(queryRange, time.Now())

	return snapshots(s.queryRange(s.text.ValidateRange(r), owner, filterValidation))
}

// DecorationsOnLine returns the decorations touching line. A line outside
// the buffer has none.
func (s *Store) DecorationsOnLine(line int, owner uint32, filterValidation bool) []Decoration {
	s.checkDisposed()
	defer s.metrics.observeQuery(queryLine, time.Now())

	if line < 1 || line > s.text.LineCount() {
		return []Decoration{}
	}
	r := buffer.NewRange(line, 1, line, s.text.LineMaxColumn(line))
	return snapshots(s.queryRange(r, owner, filterValidation))
}

// AllDecorations returns every decoration passing the filters, in the same
// order as DecorationsInRange.
func (s *Store) AllDecorations(owner uint32, filterValidation bool) []Decoration {
	s.checkDisposed()
	defer s.metrics.observeQuery(queryAll, time.Now())

	found := make([]*entity, 0, s.idx.len())
	for _, d := range s.idx.byID {
		if d.matches(owner, filterValidation) {
			found = append(found, d)
		}
	}
	sortEntities(found)
	return snapshots(found)
}

// queryRange finds decorations touching r. Multi-line decorations come from
// the multiLine index; single-line ones are reached through the anchors on
// each line of r. Both passes use the same overlap test.
func (s *Store) queryRange(r buffer.Range, owner uint32, filterValidation bool) []*entity {
	seen := make(map[uint64]struct{})
	var found []*entity

	consider := func(d *entity) {
		if _, ok := seen[d.internalID]; ok {
			return
		}
		seen[d.internalID] = struct{}{}
		if d.matches(owner, filterValidation) && d.rng.Touches(r) {
			found = append(found, d)
		}
	}

	for _, d := range s.idx.multiLine {
		consider(d)
	}

	for line := r.Start.Line; line <= r.End.Line; line++ {
		for _, a := range s.anchors.AnchorsOnLine(line) {
			if a.Owner() == 0 {
				continue
			}
			if d, ok := s.idx.byInternal[a.Owner()]; ok {
				consider(d)
			}
		}
	}

	sortEntities(found)
	return found
}

func sortEntities(ds []*entity) {
	slices.SortFunc(ds, func(a, b *entity) int {
		if c := buffer.CompareByStart(a.rng, b.rng); c != 0 {
			return c
		}
		switch {
		case a.internalID < b.internalID:
			return -1
		case a.internalID > b.internalID:
			return 1
		}
		return 0
	})
}

func snapshots(ds []*entity) []Decoration {
	out := make([]Decoration, len(ds))
	for i, d := range ds {
		out[i] = d.snapshot()
	}
	return out
}
