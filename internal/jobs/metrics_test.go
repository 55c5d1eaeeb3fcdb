package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestTrackerRecordsOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	assert.NoError(t, m.Track("snapshot:warmup").End(nil))
	boom := errors.New("boom")
	assert.ErrorIs(t, m.Track("snapshot:warmup").End(boom), boom)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("snapshot:warmup", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("snapshot:warmup", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("snapshot:warmup")))
}

func TestAddWarmedIgnoresEmpty(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.AddWarmed("orders", 0)
	m.AddWarmed("orders", 7)
	assert.Equal(t, 7.0, testutil.ToFloat64(m.warmed.WithLabelValues("orders")))

	var nilMetrics *Metrics
	assert.NotPanics(t, func() { nilMetrics.AddWarmed("orders", 1) })
	assert.NoError(t, nilMetrics.Track("x").End(nil))
}
