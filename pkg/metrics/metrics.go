package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pipeline groups the recommendation pipeline collectors. A nil *Pipeline is valid and
// records nothing.
type Pipeline struct {
	runs          *prometheus.CounterVec
	runDuration   prometheus.Histogram
	signals       *prometheus.CounterVec
	failures      *prometheus.CounterVec
	persisted     prometheus.Counter
	enrichments   *prometheus.CounterVec
	enrichLatency prometheus.Histogram
	upstreamCalls *prometheus.CounterVec
}

// NewPipeline creates the collectors and registers them with reg.
func NewPipeline(reg prometheus.Registerer) *Pipeline {
	m := &Pipeline{
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signal_pipeline_runs_total",
				Help: "Total number of pipeline runs",
			},
			[]string{"status"}, // completed|partial|failed
		),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "signal_pipeline_run_duration_seconds",
			Help:    "Pipeline run duration in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),
		signals: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signal_pipeline_signals_total",
				Help: "Classified signals by final direction",
			},
			[]string{"direction"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signal_pipeline_symbol_failures_total",
				Help: "Symbols that failed, by stage",
			},
			[]string{"stage"},
		),
		persisted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signal_pipeline_recommendations_persisted_total",
			Help: "Recommendations written",
		}),
		enrichments: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signal_enrichment_calls_total",
				Help: "Narrative enrichment attempts",
			},
			[]string{"status"}, // ok|failed|skipped
		),
		enrichLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "signal_enrichment_latency_seconds",
			Help:    "Narrative enrichment latency in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		}),
		upstreamCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signal_upstream_calls_total",
				Help: "Calls to price, ratio and watch-list providers",
			},
			[]string{"source", "status"},
		),
	}

	if reg != nil {
		reg.MustRegister(
			m.runs,
			m.runDuration,
			m.signals,
			m.failures,
			m.persisted,
			m.enrichments,
			m.enrichLatency,
			m.upstreamCalls,
		)
	}
	return m
}

func (m *Pipeline) ObserveRun(status string, d time.Duration) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(status).Inc()
	m.runDuration.Observe(d.Seconds())
}

func (m *Pipeline) IncSignal(direction string) {
	if m == nil {
		return
	}
	m.signals.WithLabelValues(direction).Inc()
}

func (m *Pipeline) IncFailure(stage string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(stage).Inc()
}

func (m *Pipeline) IncPersisted() {
	if m == nil {
		return
	}
	m.persisted.Inc()
}

func (m *Pipeline) ObserveEnrichment(status string, d time.Duration) {
	if m == nil {
		return
	}
	m.enrichments.WithLabelValues(status).Inc()
	if status != "skipped" {
		m.enrichLatency.Observe(d.Seconds())
	}
}

func (m *Pipeline) IncUpstream(source string, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.upstreamCalls.WithLabelValues(source, status).Inc()
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
