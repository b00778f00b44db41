package registry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// registryMetrics holds the Prometheus instruments for one registry.
// A nil receiver is valid and records nothing, so metrics stay opt-in and
// independent registries in tests never collide on a shared registerer.
type registryMetrics struct {
	live    prometheus.Gauge
	applies prometheus.Counter
	cancels prometheus.Counter
	panics  prometheus.Counter
}

// WithMetrics registers the registry's instruments with reg under the
// weft namespace.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(r *Registry) {
		factory := promauto.With(reg)
		r.metrics = &registryMetrics{
			live: factory.NewGauge(prometheus.GaugeOpts{
				Namespace: "weft",
				Name:      "subscriptions_live",
				Help:      "Number of live signal subscriptions",
			}),
			applies: factory.NewCounter(prometheus.CounterOpts{
				Namespace: "weft",
				Name:      "applies_total",
				Help:      "Total subscription applications committed",
			}),
			cancels: factory.NewCounter(prometheus.CounterOpts{
				Namespace: "weft",
				Name:      "cancels_total",
				Help:      "Total subscription cancellations",
			}),
			panics: factory.NewCounter(prometheus.CounterOpts{
				Namespace: "weft",
				Name:      "apply_panics_total",
				Help:      "Total panics recovered from apply functions",
			}),
		}
	}
}

func (m *registryMetrics) registered() {
	if m == nil {
		return
	}
	m.live.Inc()
}

func (m *registryMetrics) cancelled() {
	if m == nil {
		return
	}
	m.live.Dec()
	m.cancels.Inc()
}

func (m *registryMetrics) applied() {
	if m == nil {
		return
	}
	m.applies.Inc()
}

func (m *registryMetrics) panicked() {
	if m == nil {
		return
	}
	m.panics.Inc()
}
