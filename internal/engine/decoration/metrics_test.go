package decoration

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/decor/internal/engine/buffer"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	f := newFixture(t, "abc\ndef", WithMetrics(reg))

	a := f.add(t, 0, buffer.NewRange(1, 1, 1, 3), Options{})
	f.add(t, 0, buffer.NewRange(2, 1, 2, 2), Options{})
	require.NoError(t, f.store.ChangeDecorations(0, func(s *Session) error {
		s.ChangeDecoration(a, buffer.NewRange(1, 2, 1, 3))
		s.RemoveDecoration(a)
		return nil
	}))
	f.edit(t, buffer.NewInsert(buffer.NewPosition(1, 1), "\n"))
	_ = f.store.ChangeDecorations(0, func(*Session) error { panic("x") })
	f.store.DecorationsOnLine(1, 0, false)

	m := f.store.metrics
	assert.Equal(t, 4.0, testutil.ToFloat64(m.sessions))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.added))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.removed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.live))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.changed.WithLabelValues(sourceSession)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.changed.WithLabelValues(sourceMarkers)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.changeEvents.WithLabelValues(sourceSession)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.changeEvents.WithLabelValues(sourceMarkers)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessionPanics))
	assert.Equal(t, 1, testutil.CollectAndCount(m.queryDuration))

	f.store.Dispose()
	assert.Equal(t, 0.0, testutil.ToFloat64(m.live))
}

func TestMetricsSharedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := newFixture(t, "abc", WithMetrics(reg))

	var second *fixture
	require.NotPanics(t, func() {
		second = newFixture(t, "abc", WithMetrics(reg))
	})

	first.add(t, 0, buffer.NewRange(1, 1, 1, 2), Options{})
	second.add(t, 0, buffer.NewRange(1, 1, 1, 2), Options{})

	assert.Equal(t, 2.0, testutil.ToFloat64(first.store.metrics.added))
	assert.Same(t, first.store.metrics.changed, second.store.metrics.changed)
}

func TestNoMetricsByDefault(t *testing.T) {
	f := newFixture(t, "abc")
	assert.Nil(t, f.store.metrics)
	assert.NotPanics(t, func() {
		f.add(t, 0, buffer.NewRange(1, 1, 1, 2), Options{})
		f.store.AllDecorations(0, false)
	})
}
