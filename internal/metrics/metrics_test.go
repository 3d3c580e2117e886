package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/i474232898/geofence-notifier/internal/geofence"
)

func TestMetrics_CycleOutcomes(t *testing.T) {
	m := New()

	m.CycleCompleted(geofence.EvaluationResult{Inside: true}, 100*time.Millisecond)
	m.CycleCompleted(geofence.EvaluationResult{Fallback: true}, 200*time.Millisecond)
	m.ConfigFailed()
	m.CycleSkipped()
	m.CoordinateFailed()
	m.NotifyFailed()
	m.TickSkipped()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Cycles.WithLabelValues(OutcomeInside)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Cycles.WithLabelValues(OutcomeOutside)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Cycles.WithLabelValues(OutcomeConfigError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Cycles.WithLabelValues(OutcomeFetchSkip)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CoordinateFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotifyFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FallbackResults))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OverlappingTicks))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.LastInside))
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		_ = New()
		_ = New()
	})
}
