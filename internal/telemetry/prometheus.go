package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds the Prometheus instruments exported at /metrics.
type Metrics struct {
	TickDuration      prometheus.Histogram
	NarrowPhaseTests  prometheus.Counter
	GridPopulation    prometheus.Gauge
	RemediationsTotal *prometheus.CounterVec
	BatchFlushesTotal prometheus.Counter
	PendingEntities   prometheus.Gauge
}

// NewMetrics registers the instruments on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sim_tick_duration_seconds",
			Help:    "Wall time spent advancing one simulation tick",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		NarrowPhaseTests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sim_narrow_phase_tests_total",
			Help: "Narrow-phase intersection tests performed across all ticks",
		}),
		GridPopulation: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sim_grid_population",
			Help: "Entities inserted by the most recent grid rebuild",
		}),
		RemediationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "remediation_requests_total",
			Help: "Terminal remediation outcomes by result",
		}, []string{"result"}),
		BatchFlushesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "remediation_batch_flushes_total",
			Help: "Deferred-mode batch flushes completed",
		}),
		PendingEntities: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sim_pending_remediation_entities",
			Help: "Entities currently awaiting a remediation outcome",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.TickDuration,
			m.NarrowPhaseTests,
			m.GridPopulation,
			m.RemediationsTotal,
			m.BatchFlushesTotal,
			m.PendingEntities,
		)
		reg.MustRegister(collectors.NewGoCollector())
	}
	return m
}
