package decoration

import (
	"log/slog"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dshills/decor/internal/engine/buffer"
	"github.com/dshills/decor/internal/event"
)

// Default validation class names.
const (
	DefaultErrorClass   = "redsquiggly"
	DefaultWarningClass = "greensquiggly"
)

// Store holds the decorations of one text buffer and keeps them attached to
// their text as the buffer is edited.
//
// All mutation goes through ChangeDecorations (or the helpers built on it)
// so that every batch of changes produces one DecorationsChanged event.
// Store is not safe for concurrent use.
type Store struct {
	text    TextModel
	anchors AnchorEngine

	tag            string
	nextInternalID uint64
	idx            index

	sessionDepth int
	tracker      *tracker

	changed      *event.Emitter[DecorationsChanged]
	source       string
	errorHandler ErrorHandler
	logger       *slog.Logger
	metrics      *metrics

	validationClasses [2]string

	unsubscribeMarkers func()
	disposing          bool
	disposed           bool
}

// Option configures a Store.
type Option func(*storeConfig)

type storeConfig struct {
	tags         *TagAllocator
	logger       *slog.Logger
	errorHandler ErrorHandler
	registerer   prometheus.Registerer
	source       string
	errorClass   string
	warningClass string
}

// WithTagAllocator sets the allocator the store draws its id prefix from.
func WithTagAllocator(a *TagAllocator) Option {
	return func(c *storeConfig) {
		if a != nil {
			c.tags = a
		}
	}
}

// WithLogger sets the store's logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *storeConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithErrorHandler sets the sink for unexpected errors. The default logs
// them at error level.
func WithErrorHandler(h ErrorHandler) Option {
	return func(c *storeConfig) {
		c.errorHandler = h
	}
}

// WithMetrics registers the store's collectors on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *storeConfig) {
		c.registerer = reg
	}
}

// WithSource sets the source recorded in emitted event metadata.
func WithSource(source string) Option {
	return func(c *storeConfig) {
		c.source = source
	}
}

// WithValidationClasses sets the class names that mark a decoration as a
// validation decoration. Empty names keep the defaults.
func WithValidationClasses(errorClass, warningClass string) Option {
	return func(c *storeConfig) {
		if errorClass != "" {
			c.errorClass = SanitizeClassName(errorClass)
		}
		if warningClass != "" {
			c.warningClass = SanitizeClassName(warningClass)
		}
	}
}

// New creates a store over text whose decoration edges are tracked by
// anchors. The store subscribes to anchor moves until it is disposed.
func New(text TextModel, anchors AnchorEngine, opts ...Option) *Store {
	cfg := storeConfig{
		tags:         DefaultTagAllocator,
		logger:       slog.Default(),
		errorClass:   DefaultErrorClass,
		warningClass: DefaultWarningClass,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Store{
		text:              text,
		anchors:           anchors,
		tag:               cfg.tags.Next(),
		idx:               newIndex(),
		source:            cfg.source,
		logger:            cfg.logger,
		metrics:           newMetrics(cfg.registerer),
		validationClasses: [2]string{cfg.errorClass, cfg.warningClass},
	}
	s.errorHandler = cfg.errorHandler
	if s.errorHandler == nil {
		s.errorHandler = func(err error) {
			s.logger.Error("unexpected decoration error", slog.Any("error", err))
		}
	}
	s.changed = event.NewEmitter[DecorationsChanged](TopicDecorationsChanged,
		event.WithPanicHandler(func(err *event.PanicError) { s.reportError(err) }))
	s.unsubscribeMarkers = anchors.OnMoved(s.handleAnchorsMoved)
	return s
}

// Tag returns the prefix shared by all ids of this store.
func (s *Store) Tag() string {
	return s.tag
}

// ReplaceDecorations replaces the decorations named by oldIDs with specs in
// one session and returns the new ids, aligned with specs.
func (s *Store) ReplaceDecorations(oldIDs []string, specs []Spec, owner uint32) []string {
	var ids []string
	_ = s.ChangeDecorations(owner, func(sess *Session) error {
		ids = sess.DeltaDecorations(oldIDs, specs)
		return nil
	})
	return ids
}

// RemoveAllForOwner removes every decoration created with exactly owner.
// The removed ids are reported in document order.
func (s *Store) RemoveAllForOwner(owner uint32) {
	_ = s.ChangeDecorations(owner, func(sess *Session) error {
		var owned []*entity
		for _, d := range s.idx.byID {
			if d.ownerID == owner {
				owned = append(owned, d)
			}
		}
		sortEntities(owned)

		ids := make([]string, len(owned))
		for i, d := range owned {
			ids[i] = d.id
		}
		sess.RemoveDecorations(ids)
		return nil
	})
}

// Options returns the options of the decoration with id.
func (s *Store) Options(id string) (Options, bool) {
	s.checkDisposed()
	d, ok := s.idx.get(id)
	if !ok {
		return Options{}, false
	}
	return d.options, true
}

// Range returns the current range of the decoration with id.
func (s *Store) Range(id string) (buffer.Range, bool) {
	s.checkDisposed()
	d, ok := s.idx.get(id)
	if !ok {
		return buffer.Range{}, false
	}
	return d.rng, true
}

// Decoration returns a snapshot of the decoration with id.
func (s *Store) Decoration(id string) (Decoration, bool) {
	s.checkDisposed()
	d, ok := s.idx.get(id)
	if !ok {
		return Decoration{}, false
	}
	return d.snapshot(), true
}

// HasDecoration reports whether id names a live decoration of this store.
func (s *Store) HasDecoration(id string) bool {
	s.checkDisposed()
	_, ok := s.idx.get(id)
	return ok
}

// DecorationsCount returns the number of live decorations.
func (s *Store) DecorationsCount() int {
	s.checkDisposed()
	return s.idx.len()
}

// IsDisposed reports whether Dispose has been called.
func (s *Store) IsDisposed() bool {
	return s.disposed
}

// Dispose releases every anchor and drops all decorations and listeners
// without emitting events. Any later use of the store panics with
// ErrDisposed. Dispose may be called more than once.
func (s *Store) Dispose() {
	if s.disposed {
		return
	}
	s.disposing = true
	s.unsubscribeMarkers()

	live := s.idx.len()
	for _, d := range s.idx.byID {
		s.anchors.Delete(d.start, d.end)
	}
	s.idx.clear()
	s.metrics.discarded(live)
	s.changed.Clear()

	s.disposed = true
	s.disposing = false
	s.logger.Info("decoration store disposed", slog.String("tag", s.tag), slog.Int("decorations", live))
}

func (s *Store) checkDisposed() {
	if s.disposed {
		panic(ErrDisposed)
	}
}

func (s *Store) reportError(err error) {
	if s.errorHandler != nil {
		s.errorHandler(err)
	}
}

func (s *Store) makeID(internalID uint64) string {
	return s.tag + ";" + strconv.FormatUint(internalID, 10)
}

func (s *Store) isValidationClass(className string) bool {
	return className != "" &&
		(className == s.validationClasses[0] || className == s.validationClasses[1])
}
