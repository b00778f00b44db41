package weft

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

type options struct {
	budget     int
	tracer     trace.Tracer
	errFn      ErrorFunc
	registerer prometheus.Registerer
}

// Option configures an App.
type Option func(*options)

// WithTickBudget sets the maximum number of drain passes per tick before
// the tick aborts with the cycle error. Values below one are ignored.
func WithTickBudget(n int) Option {
	return func(o *options) { o.budget = n }
}

// WithTracer enables OpenTelemetry spans around each tick.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) { o.tracer = tracer }
}

// WithErrorFunc routes non-returnable errors (apply panics, mid-flight
// host failures) to fn instead of the stdlib logger.
func WithErrorFunc(fn ErrorFunc) Option {
	return func(o *options) { o.errFn = fn }
}

// WithMetrics registers Prometheus instruments for the App and its
// registry with reg under the weft namespace.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}
