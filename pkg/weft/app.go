package weft

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	werrors "github.com/weft-ui/weft/internal/errors"
	"github.com/weft-ui/weft/pkg/element"
	"github.com/weft-ui/weft/pkg/registry"
	"github.com/weft-ui/weft/pkg/scene"
)

// DefaultTickBudget bounds how many drain passes a single tick may take
// before it is treated as a reactive cycle.
const DefaultTickBudget = 64

// Debug enables verbose logging of tick activity via the stdlib logger.
// Intended for development only.
var Debug bool

// ErrorFunc receives errors that surface outside any caller's stack.
type ErrorFunc func(error)

// App is one UI instance: the constructor-injected context object that
// every component of the reactive core hangs off. Independent Apps (e.g.
// in tests) never interfere.
type App struct {
	host   scene.Host
	reg    *registry.Registry
	errFn  ErrorFunc
	tracer trace.Tracer
	budget int

	metrics *appMetrics

	mu    sync.Mutex
	queue []func()
	roots []*element.Handle

	closed  atomic.Bool
	bgCtx   context.Context
	bgStop  context.CancelFunc
	bg      sync.WaitGroup
}

// New creates an App driving the given host.
func New(host scene.Host, opts ...Option) *App {
	a := &App{
		host:   host,
		budget: DefaultTickBudget,
	}
	cfg := options{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.budget > 0 {
		a.budget = cfg.budget
	}
	a.tracer = cfg.tracer
	a.errFn = cfg.errFn
	if a.errFn == nil {
		a.errFn = func(err error) { log.Printf("weft: %v", err) }
	}

	regOpts := []registry.Option{registry.WithErrorFunc(registry.ErrorFunc(a.errFn))}
	if cfg.registerer != nil {
		regOpts = append(regOpts, registry.WithMetrics(cfg.registerer))
		a.metrics = newAppMetrics(cfg.registerer)
	}
	a.reg = registry.New(host, regOpts...)

	a.bgCtx, a.bgStop = context.WithCancel(context.Background())
	return a
}

// Host implements element.Scope.
func (a *App) Host() scene.Host {
	return a.host
}

// Registry implements element.Scope.
func (a *App) Registry() *registry.Registry {
	return a.reg
}

// ReportError implements element.Scope.
func (a *App) ReportError(err error) {
	a.errFn(err)
}

// Schedule enqueues fn for the next tick. Implements signal.Scheduler.
// Safe to call from any goroutine; fn never runs synchronously.
func (a *App) Schedule(fn func()) {
	if a.closed.Load() {
		return
	}
	a.mu.Lock()
	a.queue = append(a.queue, fn)
	a.mu.Unlock()
}

// Spawn materializes a builder as a root element and tracks it so Close
// can tear it down.
func (a *App) Spawn(b element.Builder) (*element.Handle, error) {
	var span trace.Span
	if a.tracer != nil {
		_, span = a.tracer.Start(context.Background(), "weft.spawn")
		span.SetAttributes(attribute.String("weft.element.kind", b.Kind()))
		defer span.End()
	}

	h, err := b.Spawn(a, scene.NoNode)
	if err != nil {
		if span != nil {
			span.RecordError(err)
		}
		return nil, err
	}
	a.mu.Lock()
	a.roots = append(a.roots, h)
	a.mu.Unlock()
	return h, nil
}

// Roots returns a snapshot of the root handles spawned through the App
// that are still alive. Roots the caller despawned directly are pruned
// here, so the tracking list cannot grow with Gone handles.
func (a *App) Roots() []*element.Handle {
	a.mu.Lock()
	defer a.mu.Unlock()
	kept := a.roots[:0]
	for _, h := range a.roots {
		if h.State() != element.StateGone {
			kept = append(kept, h)
		}
	}
	a.roots = kept
	out := make([]*element.Handle, len(kept))
	copy(out, kept)
	return out
}

// Tick drains all pending work: coalesced Mutable flushes, subscription
// applications, dispatched events. Work scheduled during the drain runs in
// the same tick. If the queue refuses to empty within the tick budget the
// tick aborts with the coded cycle error — the best-effort defense against
// a signal that transitively feeds itself.
func (a *App) Tick() error {
	var span trace.Span
	if a.tracer != nil {
		_, span = a.tracer.Start(context.Background(), "weft.tick")
		defer span.End()
	}

	start := time.Now()
	drained := 0
	for pass := 0; ; pass++ {
		a.mu.Lock()
		queue := a.queue
		a.queue = nil
		a.mu.Unlock()

		if len(queue) == 0 {
			break
		}
		if pass >= a.budget {
			err := werrors.Newf("W001", "tick still busy after %d passes", a.budget)
			if span != nil {
				span.RecordError(err)
			}
			return err
		}
		for _, fn := range queue {
			fn()
			drained++
		}
	}

	a.metrics.tick(drained, time.Since(start))
	if span != nil {
		span.SetAttributes(attribute.Int("weft.tick.drained", drained))
	}
	if Debug && drained > 0 {
		log.Printf("weft: tick drained %d in %s", drained, time.Since(start))
	}
	return nil
}

// Run drives Tick on a fixed interval until ctx is cancelled or a tick
// fails. Embeddings with their own frame loop call Tick directly instead.
func (a *App) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := a.Tick(); err != nil {
				return err
			}
		}
	}
}

// Go runs fn on its own goroutine with a context cancelled at Close.
// Background work communicates results back only through Mutable writes;
// it must never touch the scene graph directly.
func (a *App) Go(fn func(ctx context.Context)) {
	if a.closed.Load() {
		return
	}
	a.bg.Add(1)
	go func() {
		defer a.bg.Done()
		fn(a.bgCtx)
	}()
}

// Dispatch schedules delivery of an input event to the node's handler on
// the next tick. Hosts that do not expose handlers ignore dispatch.
func (a *App) Dispatch(node scene.NodeID, ev scene.Event) {
	src, ok := a.host.(scene.EventSource)
	if !ok {
		return
	}
	ev.Target = node
	a.Schedule(func() {
		if fn := src.Handler(node, ev.Name); fn != nil {
			fn(ev)
		}
	})
}

// Close despawns all roots, drains the resulting cancellations, stops
// background work and closes the registry. A registry that still holds
// live subscriptions at that point surfaces as the coded leak error.
func (a *App) Close() error {
	if a.closed.Swap(true) {
		return nil
	}

	a.mu.Lock()
	roots := a.roots
	a.roots = nil
	a.mu.Unlock()

	var firstErr error
	for i := len(roots) - 1; i >= 0; i-- {
		if err := roots[i].Despawn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	a.bgStop()
	a.bg.Wait()

	if err := a.reg.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
