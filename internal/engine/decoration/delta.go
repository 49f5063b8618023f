package decoration

import (
	"slices"

	"github.com/dshills/decor/internal/engine/buffer"
)

// deltaDecorations turns the decorations named by oldIDs into specs.
//
// Both sides are sorted by range and walked together. An old decoration
// whose range and options equal a new spec's is kept and its id reused;
// every other old decoration is removed and every other spec is added.
// Removals happen before additions. The returned ids line up with specs.
func (s *Store) deltaDecorations(owner uint32, oldIDs []string, specs []Spec) []string {
	if len(oldIDs) == 0 {
		return s.addDecorations(owner, specs)
	}
	if len(specs) == 0 {
		s.removeDecorations(oldIDs)
		return []string{}
	}

	old := make([]*entity, 0, len(oldIDs))
	seen := make(map[string]struct{}, len(oldIDs))
	for _, id := range oldIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if d, ok := s.idx.get(id); ok {
			old = append(old, d)
		}
	}

	type candidate struct {
		index   int
		rng     buffer.Range
		options Options
	}
	fresh := make([]candidate, len(specs))
	for i, spec := range specs {
		fresh[i] = candidate{
			index:   i,
			rng:     s.text.ValidateRange(spec.Range),
			options: spec.Options.Normalize(),
		}
	}

	slices.SortStableFunc(old, func(a, b *entity) int {
		return buffer.CompareByStart(a.rng, b.rng)
	})
	slices.SortStableFunc(fresh, func(a, b candidate) int {
		return buffer.CompareByStart(a.rng, b.rng)
	})

	result := make([]string, len(specs))
	var toRemove []string
	var toAdd []candidate

	i, j := 0, 0
	for i < len(old) && j < len(fresh) {
		o, n := old[i], fresh[j]
		switch c := buffer.CompareByStart(o.rng, n.rng); {
		case c < 0:
			toRemove = append(toRemove, o.id)
			i++
		case c > 0:
			toAdd = append(toAdd, n)
			j++
		case o.options.Equal(n.options):
			result[n.index] = o.id
			i++
			j++
		default:
			// Same range, different options: the spec may still match a
			// later old decoration with the same range.
			toRemove = append(toRemove, o.id)
			i++
		}
	}
	for ; i < len(old); i++ {
		toRemove = append(toRemove, old[i].id)
	}
	toAdd = append(toAdd, fresh[j:]...)

	s.removeDecorations(toRemove)
	for _, n := range toAdd {
		result[n.index] = s.addDecoration(owner, n.rng, n.options)
	}
	return result
}
