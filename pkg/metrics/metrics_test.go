package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipelineCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPipeline(reg)

	m.ObserveRun("completed", 3*time.Second)
	m.IncSignal("BUY")
	m.IncSignal("BUY")
	m.IncFailure("fetch_price")
	m.IncPersisted()
	m.IncUpstream("price", nil)
	m.IncUpstream("price", errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("completed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.signals.WithLabelValues("BUY")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("fetch_price")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.persisted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.upstreamCalls.WithLabelValues("price", "error")))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestObserveEnrichment_SkippedHasNoLatency(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPipeline(reg)

	m.ObserveEnrichment("ok", 2*time.Second)
	m.ObserveEnrichment("failed", 30*time.Second)
	m.ObserveEnrichment("skipped", 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.enrichments.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.enrichments.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.enrichments.WithLabelValues("skipped")))

	families, err := reg.Gather()
	require.NoError(t, err)
	var samples uint64
	for _, f := range families {
		if f.GetName() == "signal_enrichment_latency_seconds" {
			samples = f.GetMetric()[0].GetHistogram().GetSampleCount()
		}
	}
	assert.Equal(t, uint64(2), samples)
}

func TestNilPipelineIsNoop(t *testing.T) {
	var m *Pipeline
	assert.NotPanics(t, func() {
		m.ObserveRun("failed", time.Second)
		m.IncSignal("HOLD")
		m.IncFailure("classify")
		m.IncPersisted()
		m.ObserveEnrichment("ok", time.Second)
		m.IncUpstream("ratios", nil)
	})
}
