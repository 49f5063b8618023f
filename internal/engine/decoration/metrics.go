package decoration

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Label values for the source label.
const (
	sourceSession = "session"
	sourceMarkers = "markers"
)

// Label values for the kind label of the query histogram.
const (
	queryRange = "range"
	queryLine  = "line"
	queryAll   = "all"
)

// metrics holds the store's collectors. A nil *metrics records nothing.
// Several stores may share one registerer; they then share collectors.
type metrics struct {
	sessions      prometheus.Counter
	added         prometheus.Counter
	changed       *prometheus.CounterVec
	removed       prometheus.Counter
	changeEvents  *prometheus.CounterVec
	live          prometheus.Gauge
	queryDuration *prometheus.HistogramVec
	sessionPanics prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	if reg == nil {
		return nil
	}
	return &metrics{
		sessions: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "decor",
			Name:      "sessions_total",
			Help:      "Outermost change sessions completed",
		})),
		added: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "decor",
			Name:      "decorations_added_total",
			Help:      "Decorations added",
		})),
		changed: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "decor",
			Name:      "decorations_changed_total",
			Help:      "Decoration changes by source (session, markers)",
		}, []string{"source"})),
		removed: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "decor",
			Name:      "decorations_removed_total",
			Help:      "Decorations removed",
		})),
		changeEvents: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "decor",
			Name:      "change_events_total",
			Help:      "Change events emitted by source (session, markers)",
		}, []string{"source"})),
		live: register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "decor",
			Name:      "live_decorations",
			Help:      "Decorations currently held across stores",
		})),
		queryDuration: register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "decor",
			Name:      "query_duration_seconds",
			Help:      "Decoration query latency by kind (range, line, all)",
			Buckets:   []float64{1e-6, 5e-6, 1e-5, 5e-5, 1e-4, 5e-4, 1e-3, 5e-3, 1e-2},
		}, []string{"kind"})),
		sessionPanics: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "decor",
			Name:      "session_panics_total",
			Help:      "Change session bodies that panicked",
		})),
	}
}

// register adds c to reg, returning the collector already registered under
// the same descriptor if there is one.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

func (m *metrics) sessionDone(t *tracker) {
	if m == nil {
		return
	}
	m.sessions.Inc()
	if t == nil || t.empty() {
		return
	}
	m.changed.WithLabelValues(sourceSession).Add(float64(len(t.changed)))
	m.changeEvents.WithLabelValues(sourceSession).Inc()
}

func (m *metrics) addedOne() {
	if m == nil {
		return
	}
	m.added.Inc()
	m.live.Inc()
}

func (m *metrics) removedN(n int) {
	if m == nil || n == 0 {
		return
	}
	m.removed.Add(float64(n))
	m.live.Sub(float64(n))
}

func (m *metrics) discarded(n int) {
	if m == nil {
		return
	}
	m.live.Sub(float64(n))
}

func (m *metrics) markersMoved(changed int) {
	if m == nil {
		return
	}
	m.changed.WithLabelValues(sourceMarkers).Add(float64(changed))
	m.changeEvents.WithLabelValues(sourceMarkers).Inc()
}

func (m *metrics) sessionPanicked() {
	if m == nil {
		return
	}
	m.sessionPanics.Inc()
}

func (m *metrics) observeQuery(kind string, start time.Time) {
	if m == nil {
		return
	}
	m.queryDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}
