package decoration

import (
	"log/slog"
	"runtime/debug"

	"github.com/dshills/decor/internal/engine/buffer"
	"github.com/dshills/decor/internal/engine/marker"
)

// Session is the mutation handle passed to a ChangeDecorations body.
// It is only valid while the body runs; any call after that panics with
// ErrSessionClosed. Ids that do not name a live decoration of this store are
// ignored.
type Session struct {
	store  *Store
	owner  uint32
	closed bool
}

// Owner returns the owner id new decorations are created with.
func (s *Session) Owner() uint32 {
	return s.owner
}

func (s *Session) check() {
	if s.closed {
		panic(ErrSessionClosed)
	}
	s.store.checkDisposed()
}

// AddDecoration adds a decoration and returns its id.
func (s *Session) AddDecoration(r buffer.Range, opts Options) string {
	s.check()
	return s.store.addDecoration(s.owner, r, opts.Normalize())
}

// AddDecorations adds several decorations and returns their ids in order.
func (s *Session) AddDecorations(specs []Spec) []string {
	s.check()
	return s.store.addDecorations(s.owner, specs)
}

// ChangeDecoration moves a decoration to r.
func (s *Session) ChangeDecoration(id string, r buffer.Range) {
	s.check()
	s.store.changeDecoration(id, r)
}

// ChangeDecorationOptions replaces a decoration's options.
func (s *Session) ChangeDecorationOptions(id string, opts Options) {
	s.check()
	s.store.changeDecorationOptions(id, opts.Normalize())
}

// RemoveDecoration removes a decoration.
func (s *Session) RemoveDecoration(id string) {
	s.check()
	s.store.removeDecorations([]string{id})
}

// RemoveDecorations removes several decorations.
func (s *Session) RemoveDecorations(ids []string) {
	s.check()
	s.store.removeDecorations(ids)
}

// DeltaDecorations replaces the decorations named by oldIDs with specs,
// keeping any old decoration whose range and options match a spec exactly.
// The returned ids line up with specs.
func (s *Session) DeltaDecorations(oldIDs []string, specs []Spec) []string {
	s.check()
	return s.store.deltaDecorations(s.owner, oldIDs, specs)
}

// ChangeDecorations runs body inside a change session for owner.
//
// Sessions nest: a body may call ChangeDecorations again, and everything
// recorded until the outermost session ends is announced in a single
// DecorationsChanged event. No event is sent when nothing changed.
//
// A panic in body is recovered and reported to the store's ErrorHandler as
// a *SessionPanicError; changes made before the panic are still announced.
// An error returned by body is returned after the event has been sent.
func (s *Store) ChangeDecorations(owner uint32, body func(*Session) error) (err error) {
	s.checkDisposed()

	sess := &Session{store: s, owner: owner}
	s.beginSession()
	defer func() {
		sess.closed = true
		if r := recover(); r != nil {
			s.metrics.sessionPanicked()
			s.reportError(&SessionPanicError{Owner: owner, Value: r, Stack: string(debug.Stack())})
		}
		s.endSession()
	}()

	return body(sess)
}

func (s *Store) beginSession() {
	if s.sessionDepth == 0 {
		s.tracker = newTracker()
	}
	s.sessionDepth++
}

func (s *Store) endSession() {
	s.sessionDepth--
	if s.sessionDepth > 0 {
		return
	}

	t := s.tracker
	s.tracker = nil
	if s.disposed {
		return
	}

	s.metrics.sessionDone(t)
	if t.empty() {
		return
	}
	s.logger.Debug("decorations changed",
		slog.Int("added", len(t.added)),
		slog.Int("changed", len(t.changed)),
		slog.Int("removed", len(t.removed)))
	s.emit(t.event())
}

func (s *Store) addDecorations(owner uint32, specs []Spec) []string {
	ids := make([]string, len(specs))
	for i, spec := range specs {
		ids[i] = s.addDecoration(owner, spec.Range, spec.Options.Normalize())
	}
	return ids
}

// addDecoration expects normalized options.
func (s *Store) addDecoration(owner uint32, r buffer.Range, opts Options) string {
	r = s.text.ValidateRange(r)

	s.nextInternalID++
	d := &entity{
		id:         s.makeID(s.nextInternalID),
		internalID: s.nextInternalID,
		ownerID:    owner,
		rng:        r,
		options:    opts,
	}
	d.isForValidation = s.isValidationClass(opts.ClassName)

	startSticks, endSticks := opts.Stickiness.anchorFlags()
	anchors, err := s.anchors.Create(
		marker.Spec{Owner: d.internalID, Position: r.Start, SticksToPrevious: startSticks},
		marker.Spec{Owner: d.internalID, Position: r.End, SticksToPrevious: endSticks},
	)
	if err != nil {
		s.reportError(err)
		return ""
	}
	d.start, d.end = anchors[0], anchors[1]

	s.idx.insert(d)
	s.tracker.addAdded(d.id)
	s.metrics.addedOne()
	return d.id
}

func (s *Store) changeDecoration(id string, r buffer.Range) {
	d, ok := s.idx.get(id)
	if !ok {
		return
	}
	r = s.text.ValidateRange(r)
	s.anchors.Relocate(d.start, r.Start)
	s.anchors.Relocate(d.end, r.End)
	s.idx.setRange(d, r)
	s.tracker.addChanged(id)
}

// changeDecorationOptions expects normalized options.
func (s *Store) changeDecorationOptions(id string, opts Options) {
	d, ok := s.idx.get(id)
	if !ok {
		return
	}
	if opts.Stickiness != d.options.Stickiness {
		startSticks, endSticks := opts.Stickiness.anchorFlags()
		s.anchors.SetSticksToPrevious(d.start, startSticks)
		s.anchors.SetSticksToPrevious(d.end, endSticks)
	}
	d.options = opts
	d.isForValidation = s.isValidationClass(opts.ClassName)
	s.tracker.addChanged(id)
}

func (s *Store) removeDecorations(ids []string) {
	removed := 0
	for _, id := range ids {
		d, ok := s.idx.get(id)
		if !ok {
			continue
		}
		s.anchors.Delete(d.start, d.end)
		s.idx.remove(d)
		s.tracker.addRemoved(id)
		removed++
	}
	s.metrics.removedN(removed)
}
