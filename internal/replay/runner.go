package replay

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/tidwall/sjson"

	"github.com/dshills/decor/internal/config"
	"github.com/dshills/decor/internal/diagnostics"
	"github.com/dshills/decor/internal/document"
	"github.com/dshills/decor/internal/engine/decoration"
	"github.com/dshills/decor/internal/event"
	"github.com/dshills/decor/internal/plugin/api"
	"github.com/dshills/decor/internal/plugin/lua"
)

// Runner replays scenarios against a fresh Document and reports every
// change event, query result and the final decoration table.
type Runner struct {
	cfg    *config.Config
	logger *slog.Logger
	out    *Writer
}

// NewRunner creates a Runner.
func NewRunner(cfg *config.Config, logger *slog.Logger, out *Writer) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{cfg: cfg, logger: logger, out: out}
}

// run holds the state of one replay.
type run struct {
	*Runner

	doc         *document.Document
	labels      map[string]string
	checkpoints map[string]document.Checkpoint
	uri         string
	syncer   *diagnostics.Syncer
	state    *lua.State
	luaOut   bytes.Buffer
	registry *prometheus.Registry
	step     int
	err      error
}

// Run replays sc. It stops at the first failing step.
func (r *Runner) Run(ctx context.Context, sc *Scenario) error {
	if err := sc.Validate(); err != nil {
		return err
	}

	rn := &run{
		Runner:      r,
		labels:      make(map[string]string),
		checkpoints: make(map[string]document.Checkpoint),
		uri:         sc.URI,
	}

	decoOpts := r.cfg.DecorationOptions()
	if r.cfg.Decorations.Metrics {
		rn.registry = prometheus.NewRegistry()
		decoOpts = append(decoOpts, decoration.WithMetrics(rn.registry))
	}
	decoOpts = append(decoOpts, decoration.WithErrorHandler(func(err error) {
		r.logger.Error("decoration error", slog.Any("error", err))
	}))

	rn.doc = document.New(sc.Text,
		document.WithLogger(r.logger),
		document.WithDecorationOptions(decoOpts...),
		document.WithUndoLimit(r.cfg.History.Limit),
	)
	defer rn.doc.Close()

	unsubscribe, err := rn.doc.OnDidChangeDecorations(rn.onChange)
	if err != nil {
		return err
	}
	defer unsubscribe()

	r.logger.Info("replay started",
		slog.String("scenario", sc.Name),
		slog.Int("steps", len(sc.Steps)),
		slog.String("document", rn.doc.ID()))

	defer func() {
		if rn.state != nil {
			_ = rn.state.Close()
		}
	}()

	for i, st := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		rn.step = i + 1
		if err := rn.apply(ctx, st); err != nil {
			return fmt.Errorf("step %d (%s): %w", rn.step, st.Kind(), err)
		}
		if rn.err != nil {
			return fmt.Errorf("step %d (%s): %w", rn.step, st.Kind(), rn.err)
		}
	}
	return rn.final()
}

func (rn *run) apply(ctx context.Context, st Step) error {
	switch {
	case st.Decorate != nil:
		return rn.decorate(st.Decorate)
	case st.Change != nil:
		id, err := rn.lookup(st.Change.Label)
		if err != nil {
			return err
		}
		return rn.doc.ChangeDecorations(0, func(s *decoration.Session) error {
			s.ChangeDecoration(id, toRange(st.Change.Range))
			return nil
		})
	case st.Remove != nil:
		ids := make([]string, 0, len(st.Remove))
		for _, label := range st.Remove {
			id, err := rn.lookup(label)
			if err != nil {
				return err
			}
			ids = append(ids, id)
			delete(rn.labels, label)
		}
		return rn.doc.ChangeDecorations(0, func(s *decoration.Session) error {
			s.RemoveDecorations(ids)
			return nil
		})
	case st.RemoveOwner != nil:
		return rn.doc.RemoveAllForOwner(*st.RemoveOwner)
	case st.Edit != nil:
		_, err := rn.doc.Replace(toRange(st.Edit.Range), st.Edit.Text)
		return err
	case st.Undo:
		return rn.doc.Undo()
	case st.Redo:
		return rn.doc.Redo()
	case st.Checkpoint != "":
		cp, err := rn.doc.Checkpoint()
		if err != nil {
			return err
		}
		rn.checkpoints[st.Checkpoint] = cp
		return nil
	case st.Rollback != "":
		cp, ok := rn.checkpoints[st.Rollback]
		if !ok {
			return fmt.Errorf("%w: unknown checkpoint %q", ErrInvalidScenario, st.Rollback)
		}
		return rn.doc.UndoToCheckpoint(cp)
	case st.Diagnostics != "":
		return rn.diagnostics().Apply([]byte(st.Diagnostics))
	case st.Lua != "":
		return rn.lua(ctx, st.Lua)
	case st.Query != nil:
		return rn.query(st.Query)
	}
	return nil
}

func (rn *run) decorate(st *DecorateStep) error {
	opts, err := optionsFromMap(st.Options)
	if err != nil {
		return err
	}

	var id string
	err = rn.doc.ChangeDecorations(st.Owner, func(s *decoration.Session) error {
		id = s.AddDecoration(toRange(st.Range), opts)
		return nil
	})
	if err != nil {
		return err
	}
	if st.Label != "" {
		rn.labels[st.Label] = id
	}
	return nil
}

func (rn *run) lookup(label string) (string, error) {
	id, ok := rn.labels[label]
	if !ok {
		return "", fmt.Errorf("%w: unknown label %q", ErrInvalidScenario, label)
	}
	return id, nil
}

func (rn *run) diagnostics() *diagnostics.Syncer {
	if rn.syncer == nil {
		opts := append(rn.cfg.DiagnosticsOptions(), diagnostics.WithLogger(rn.logger))
		if rn.uri != "" {
			opts = append(opts, diagnostics.WithURI(rn.uri))
		}
		rn.syncer = diagnostics.NewSyncer(rn.doc, opts...)
	}
	return rn.syncer
}

func (rn *run) lua(ctx context.Context, code string) error {
	if rn.state == nil {
		rn.state = lua.NewState(
			lua.WithExecutionTimeout(rn.cfg.Plugins.Timeout),
			lua.WithOutput(&rn.luaOut),
			lua.WithLogger(rn.logger),
		)
		reg, err := api.DefaultRegistry(&api.Context{Document: rn.doc, Owner: rn.cfg.Plugins.Owner})
		if err != nil {
			return err
		}
		if err := reg.InjectAll(rn.state.LuaState()); err != nil {
			return err
		}
	}

	rn.luaOut.Reset()
	if err := rn.state.DoString(ctx, fmt.Sprintf("step%d", rn.step), code); err != nil {
		return err
	}
	if rn.luaOut.Len() == 0 {
		return nil
	}

	line, err := sjson.SetBytes([]byte("{}"), "step", rn.step)
	if err != nil {
		return err
	}
	if line, err = sjson.SetBytes(line, "output", rn.luaOut.String()); err != nil {
		return err
	}
	return rn.out.Write(line)
}

func (rn *run) query(q *QueryStep) error {
	var (
		kind  string
		found []decoration.Decoration
	)
	switch {
	case q.Range != nil:
		kind = "range"
		found = rn.doc.DecorationsInRange(toRange(q.Range), q.Owner, q.FilterValidation)
	case q.Line > 0:
		kind = "line"
		found = rn.doc.DecorationsOnLine(q.Line, q.Owner, q.FilterValidation)
	default:
		kind = "all"
		found = rn.doc.AllDecorations(q.Owner, q.FilterValidation)
	}

	arr, err := decorationsJSON(found)
	if err != nil {
		return err
	}
	line, err := sjson.SetBytes([]byte("{}"), "step", rn.step)
	if err != nil {
		return err
	}
	if line, err = sjson.SetBytes(line, "query", kind); err != nil {
		return err
	}
	if line, err = sjson.SetRawBytes(line, "decorations", arr); err != nil {
		return err
	}
	return rn.out.Write(line)
}

// onChange reports a change event. Listeners cannot return errors, so the
// first write failure is kept and surfaced after the step.
func (rn *run) onChange(ev event.Event[decoration.DecorationsChanged]) {
	if rn.err != nil {
		return
	}

	line, err := ev.Payload.MarshalJSON()
	if err == nil {
		line, err = sjson.SetBytes(line, "step", rn.step)
	}
	if err == nil {
		line, err = sjson.SetBytes(line, "event", ev.Type.String())
	}
	if err == nil {
		err = rn.out.Write(line)
	}
	rn.err = err
}

func (rn *run) final() error {
	arr, err := decorationsJSON(rn.doc.AllDecorations(0, false))
	if err != nil {
		return err
	}

	line, err := sjson.SetBytes([]byte("{}"), "final", true)
	if err != nil {
		return err
	}
	if line, err = sjson.SetBytes(line, "text", rn.doc.Text()); err != nil {
		return err
	}
	if line, err = sjson.SetRawBytes(line, "decorations", arr); err != nil {
		return err
	}
	if line, err = historyJSON(line, rn.doc); err != nil {
		return err
	}
	if rn.registry != nil {
		if line, err = rn.metrics(line); err != nil {
			return err
		}
	}
	return rn.out.Write(line)
}

// metrics adds the store's counters and gauges to line, keyed by metric
// name and summed over labels. Histograms report their sample count.
func (rn *run) metrics(line []byte) ([]byte, error) {
	families, err := rn.registry.Gather()
	if err != nil {
		return nil, err
	}
	for _, mf := range families {
		var total float64
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				total += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				total += m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				total += float64(m.GetHistogram().GetSampleCount())
			}
		}
		if line, err = sjson.SetBytes(line, "metrics."+mf.GetName(), total); err != nil {
			return nil, err
		}
	}
	return line, nil
}

// historyJSON adds the names of the undo and redo entries to line.
func historyJSON(line []byte, doc *document.Document) ([]byte, error) {
	for _, h := range []struct {
		key     string
		entries []document.HistoryEntry
	}{
		{"history.undo", doc.UndoHistory()},
		{"history.redo", doc.RedoHistory()},
	} {
		key, entries := h.key, h.entries
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name
		}
		var err error
		if line, err = sjson.SetBytes(line, key, names); err != nil {
			return nil, err
		}
	}
	return line, nil
}
