package weft

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// appMetrics holds the tick-level Prometheus instruments. A nil receiver
// records nothing.
type appMetrics struct {
	ticks        prometheus.Counter
	workDrained  prometheus.Counter
	tickDuration prometheus.Histogram
}

func newAppMetrics(reg prometheus.Registerer) *appMetrics {
	factory := promauto.With(reg)
	return &appMetrics{
		ticks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "weft",
			Name:      "ticks_total",
			Help:      "Total update ticks completed",
		}),
		workDrained: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "weft",
			Name:      "tick_work_total",
			Help:      "Total work items drained across all ticks",
		}),
		tickDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "weft",
			Name:      "tick_duration_seconds",
			Help:      "Tick drain duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

func (m *appMetrics) tick(drained int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ticks.Inc()
	m.workDrained.Add(float64(drained))
	m.tickDuration.Observe(elapsed.Seconds())
}
