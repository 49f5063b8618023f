package diagnostics

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/dshills/decor/internal/engine/buffer"
	"github.com/dshills/decor/internal/engine/decoration"
)

// DefaultOwner is the decoration owner used when none is configured.
const DefaultOwner uint32 = 1

// Target is the document a Syncer decorates. *document.Document satisfies it.
type Target interface {
	LineContent(line int) string
	ReplaceDecorations(oldIDs []string, specs []decoration.Spec, owner uint32) ([]string, error)
}

// Counts holds the number of decorated diagnostics per severity.
type Counts struct {
	Errors   int
	Warnings int
	Infos    int
	Hints    int
}

// Total returns the sum of all counts.
func (c Counts) Total() int {
	return c.Errors + c.Warnings + c.Infos + c.Hints
}

// Syncer keeps one document's validation decorations in step with the
// diagnostics published for it. Every publication replaces the previous set
// through a delta, so unchanged diagnostics keep their decoration ids.
type Syncer struct {
	mu sync.Mutex

	target Target
	owner  uint32
	uri    string

	errorClass   string
	warningClass string
	minSeverity  Severity
	maxPerFile   int
	sources      map[string]bool // nil means all

	ids         []string
	counts      Counts
	lastVersion int64
	hasVersion  bool

	logger *slog.Logger
}

// Option configures a Syncer.
type Option func(*Syncer)

// WithOwner sets the decoration owner.
func WithOwner(owner uint32) Option {
	return func(s *Syncer) {
		s.owner = owner
	}
}

// WithURI makes Apply reject payloads for other documents.
func WithURI(uri string) Option {
	return func(s *Syncer) {
		s.uri = uri
	}
}

// WithClasses sets the class names used for errors and warnings. They
// should match the store's validation classes.
func WithClasses(errorClass, warningClass string) Option {
	return func(s *Syncer) {
		s.errorClass = errorClass
		s.warningClass = warningClass
	}
}

// WithMinSeverity drops diagnostics less severe than sev.
func WithMinSeverity(sev Severity) Option {
	return func(s *Syncer) {
		s.minSeverity = sev
	}
}

// WithMaxDiagnostics limits how many diagnostics are decorated. The most
// severe are kept.
func WithMaxDiagnostics(n int) Option {
	return func(s *Syncer) {
		s.maxPerFile = n
	}
}

// WithEnabledSources limits diagnostics to the named sources. Diagnostics
// without a source are always kept.
func WithEnabledSources(sources ...string) Option {
	return func(s *Syncer) {
		s.sources = make(map[string]bool, len(sources))
		for _, src := range sources {
			s.sources[src] = true
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Syncer) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSyncer creates a Syncer decorating target.
func NewSyncer(target Target, opts ...Option) *Syncer {
	s := &Syncer{
		target:       target,
		owner:        DefaultOwner,
		errorClass:   decoration.DefaultErrorClass,
		warningClass: decoration.DefaultWarningClass,
		minSeverity:  SeverityHint,
		maxPerFile:   1000,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Apply decodes a publishDiagnostics payload and redraws the decorations.
// Payloads with a version older than the last applied one are ignored.
func (s *Syncer) Apply(payload []byte) error {
	p, err := ParsePublish(payload)
	if err != nil {
		return err
	}
	if s.uri != "" && p.URI != s.uri {
		return fmt.Errorf("%w: %s", ErrURIMismatch, p.URI)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if p.HasVersion {
		if s.hasVersion && p.Version < s.lastVersion {
			s.logger.Debug("stale diagnostics ignored",
				slog.Int64("version", p.Version),
				slog.Int64("last", s.lastVersion))
			return nil
		}
		s.lastVersion = p.Version
		s.hasVersion = true
	}
	return s.set(p.Diagnostics)
}

// Set replaces the decorated diagnostics with diags.
func (s *Syncer) Set(diags []Diagnostic) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set(diags)
}

func (s *Syncer) set(diags []Diagnostic) error {
	kept := s.filter(diags)

	specs := make([]decoration.Spec, len(kept))
	var counts Counts
	for i, d := range kept {
		specs[i] = decoration.Spec{Range: s.toRange(d.Range), Options: s.optionsFor(d)}
		switch d.Severity {
		case SeverityError:
			counts.Errors++
		case SeverityWarning:
			counts.Warnings++
		case SeverityInformation:
			counts.Infos++
		case SeverityHint:
			counts.Hints++
		}
	}

	ids, err := s.target.ReplaceDecorations(s.ids, specs, s.owner)
	if err != nil {
		return fmt.Errorf("replace diagnostics: %w", err)
	}
	s.ids = ids
	s.counts = counts

	s.logger.Debug("diagnostics applied",
		slog.Int("received", len(diags)),
		slog.Int("decorated", len(ids)),
		slog.Int("errors", counts.Errors),
		slog.Int("warnings", counts.Warnings))
	return nil
}

// Clear removes every diagnostic decoration.
func (s *Syncer) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.ids) == 0 {
		return nil
	}
	if _, err := s.target.ReplaceDecorations(s.ids, nil, s.owner); err != nil {
		return fmt.Errorf("clear diagnostics: %w", err)
	}
	s.ids = nil
	s.counts = Counts{}
	return nil
}

// IDs returns the current decoration ids in the order their diagnostics
// were decorated.
func (s *Syncer) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.ids)
}

// Counts returns the decorated diagnostics per severity.
func (s *Syncer) Counts() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts
}

// filter drops diagnostics by severity and source, then caps the result,
// keeping the most severe.
func (s *Syncer) filter(diags []Diagnostic) []Diagnostic {
	kept := make([]Diagnostic, 0, len(diags))
	for _, d := range diags {
		if d.Severity > s.minSeverity {
			continue
		}
		if s.sources != nil && d.Source != "" && !s.sources[d.Source] {
			continue
		}
		kept = append(kept, d)
	}

	if s.maxPerFile > 0 && len(kept) > s.maxPerFile {
		slices.SortStableFunc(kept, func(a, b Diagnostic) int {
			if c := cmp.Compare(a.Severity, b.Severity); c != 0 {
				return c
			}
			if c := cmp.Compare(a.Range.Start.Line, b.Range.Start.Line); c != 0 {
				return c
			}
			return cmp.Compare(a.Range.Start.Character, b.Range.Start.Character)
		})
		kept = kept[:s.maxPerFile]
	}
	return kept
}

// toRange converts a 0-based UTF-16 LSP range to a 1-based rune range.
func (s *Syncer) toRange(r LSPRange) buffer.Range {
	return buffer.Range{Start: s.toPosition(r.Start), End: s.toPosition(r.End)}
}

func (s *Syncer) toPosition(p LSPPosition) buffer.Position {
	line := max(p.Line, 0) + 1
	return buffer.Position{
		Line:   line,
		Column: utf16ToRuneOffset(s.target.LineContent(line), p.Character) + 1,
	}
}

func (s *Syncer) optionsFor(d Diagnostic) decoration.Options {
	o := decoration.Options{
		Stickiness:   decoration.NeverGrowsWhenTypingAtEdges,
		HoverMessage: []string{d.Format()},
	}
	switch d.Severity {
	case SeverityError:
		o.ClassName = s.errorClass
		o.OverviewRuler = decoration.OverviewRuler{Color: "editorError.foreground", Lane: decoration.LaneRight}
	case SeverityWarning:
		o.ClassName = s.warningClass
		o.OverviewRuler = decoration.OverviewRuler{Color: "editorWarning.foreground", Lane: decoration.LaneRight}
	case SeverityInformation:
		o.ClassName = InfoClass
		o.OverviewRuler = decoration.OverviewRuler{Color: "editorInfo.foreground", Lane: decoration.LaneRight}
	default:
		o.ClassName = HintClass
	}
	return o
}
