package decoration

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/tidwall/sjson"

	"github.com/dshills/decor/internal/event"
)

// TopicDecorationsChanged is the topic of DecorationsChanged events.
const TopicDecorationsChanged event.Topic = "decorations.changed"

// DecorationsChanged lists the decorations affected by one change session or
// one batch of anchor moves. Each list holds an id at most once.
type DecorationsChanged struct {
	Added   []string
	Changed []string
	Removed []string
}

// IsEmpty reports whether the event lists no decorations.
func (c DecorationsChanged) IsEmpty() bool {
	return len(c.Added) == 0 && len(c.Changed) == 0 && len(c.Removed) == 0
}

// MarshalJSON encodes the event with all three lists present.
func (c DecorationsChanged) MarshalJSON() ([]byte, error) {
	out := []byte(`{}`)
	var err error
	for _, f := range []struct {
		key string
		ids []string
	}{
		{"added", c.Added},
		{"changed", c.Changed},
		{"removed", c.Removed},
	} {
		ids := f.ids
		if ids == nil {
			ids = []string{}
		}
		if out, err = sjson.SetBytes(out, f.key, ids); err != nil {
			return nil, fmt.Errorf("encode decorations changed: %w", err)
		}
	}
	return out, nil
}

// OnDidChangeDecorations registers a listener for change events and returns
// a function that removes it.
func (s *Store) OnDidChangeDecorations(fn event.Listener[DecorationsChanged]) func() {
	s.checkDisposed()
	unsubscribe, err := s.changed.Subscribe(fn)
	if err != nil {
		s.reportError(err)
		return func() {}
	}
	return unsubscribe
}

func (s *Store) emit(c DecorationsChanged) {
	s.changed.Emit(c, s.source)
}

// handleAnchorsMoved recomputes the ranges of the decorations owning moved
// anchors and announces them as changed.
func (s *Store) handleAnchorsMoved(owners []uint64) {
	if s.disposing || s.disposed {
		return
	}

	ids := slices.Clone(owners)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	var changed []string
	for _, internalID := range ids {
		d, ok := s.idx.byInternal[internalID]
		if !ok {
			continue
		}
		s.idx.setRange(d, d.anchoredRange())
		changed = append(changed, d.id)
	}
	if len(changed) == 0 {
		return
	}

	s.logger.Debug("decorations moved by edit", slog.Int("count", len(changed)))
	s.metrics.markersMoved(len(changed))

	// Moves are reported on their own, even while a session is open.
	s.emit(DecorationsChanged{Changed: changed})
}
