package decoration

// tracker records what happened during an outermost change session.
// Each list keeps operation order and holds an id at most once.
type tracker struct {
	added   []string
	changed []string
	removed []string

	seenAdded   map[string]struct{}
	seenChanged map[string]struct{}
	seenRemoved map[string]struct{}
}

func newTracker() *tracker {
	return &tracker{
		seenAdded:   make(map[string]struct{}),
		seenChanged: make(map[string]struct{}),
		seenRemoved: make(map[string]struct{}),
	}
}

func (t *tracker) addAdded(id string) {
	t.added = appendOnce(t.added, t.seenAdded, id)
}

func (t *tracker) addChanged(id string) {
	t.changed = appendOnce(t.changed, t.seenChanged, id)
}

func (t *tracker) addRemoved(id string) {
	t.removed = appendOnce(t.removed, t.seenRemoved, id)
}

func (t *tracker) empty() bool {
	return len(t.added) == 0 && len(t.changed) == 0 && len(t.removed) == 0
}

func (t *tracker) event() DecorationsChanged {
	return DecorationsChanged{
		Added:   t.added,
		Changed: t.changed,
		Removed: t.removed,
	}
}

func appendOnce(list []string, seen map[string]struct{}, id string) []string {
	if _, ok := seen[id]; ok {
		return list
	}
	seen[id] = struct{}{}
	return append(list, id)
}
