package registry

import (
	"log"
	"sync"
	"sync/atomic"

	werrors "github.com/weft-ui/weft/internal/errors"
	"github.com/weft-ui/weft/pkg/scene"
)

// SubscriptionID identifies a live binding. IDs are never reused.
type SubscriptionID uint64

// ErrorFunc receives errors that cannot be returned to a caller: apply
// panics, host mutation failures, background delivery faults.
type ErrorFunc func(error)

// subscription owns a (signal, target mutation, element) triple.
// The live → cancelled transition is one-way and idempotent.
type subscription struct {
	id        SubscriptionID
	elem      scene.NodeID
	cancelled atomic.Bool

	// detach severs this subscription's sink from the signal chain.
	// Set exactly once, before the subscription is registered.
	detach func()
}

// Registry is the per-UI subscription table.
type Registry struct {
	host    scene.Host
	errFn   ErrorFunc
	metrics *registryMetrics

	mu     sync.Mutex
	subs   map[SubscriptionID]*subscription
	byElem map[scene.NodeID]map[SubscriptionID]*subscription
	nextID SubscriptionID
	closed bool
}

// Option configures a Registry.
type Option func(*Registry)

// WithErrorFunc routes non-returnable errors to fn instead of the default
// stdlib logger.
func WithErrorFunc(fn ErrorFunc) Option {
	return func(r *Registry) { r.errFn = fn }
}

// New creates a registry applying mutations through host.
func New(host scene.Host, opts ...Option) *Registry {
	r := &Registry{
		host:   host,
		subs:   make(map[SubscriptionID]*subscription),
		byElem: make(map[scene.NodeID]map[SubscriptionID]*subscription),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.errFn == nil {
		r.errFn = func(err error) { log.Printf("weft/registry: %v", err) }
	}
	return r
}

// Host returns the scene-graph host this registry applies mutations to.
func (r *Registry) Host() scene.Host {
	return r.host
}

// add registers a fully-constructed subscription. Fails once the registry
// is closed: a late registration would outlive leak detection.
func (r *Registry) add(sub *subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return werrors.Newf("W007", "subscription for element %d registered after close", sub.elem)
	}
	r.subs[sub.id] = sub
	elemSubs, ok := r.byElem[sub.elem]
	if !ok {
		elemSubs = make(map[SubscriptionID]*subscription)
		r.byElem[sub.elem] = elemSubs
	}
	elemSubs[sub.id] = sub
	r.metrics.registered()
	return nil
}

// newID allocates the next subscription ID.
func (r *Registry) newID() SubscriptionID {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	return r.nextID
}

// Cancel marks the subscription cancelled and detaches it from its signal.
// Idempotent; cancelling an unknown ID is a no-op. After Cancel returns no
// further apply can start for this subscription.
func (r *Registry) Cancel(id SubscriptionID) {
	r.mu.Lock()
	sub, ok := r.subs[id]
	if ok {
		delete(r.subs, id)
		if elemSubs, ok := r.byElem[sub.elem]; ok {
			delete(elemSubs, id)
			if len(elemSubs) == 0 {
				delete(r.byElem, sub.elem)
			}
		}
	}
	r.mu.Unlock()

	if !ok {
		return
	}
	if sub.cancelled.Swap(true) {
		return
	}
	sub.detach()
	r.metrics.cancelled()
}

// CancelElement cancels every live subscription registered to the element.
// Called by the teardown coordinator before the host deletes the node.
func (r *Registry) CancelElement(elem scene.NodeID) {
	r.mu.Lock()
	ids := make([]SubscriptionID, 0, len(r.byElem[elem]))
	for id := range r.byElem[elem] {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	for _, id := range ids {
		r.Cancel(id)
	}
}

// LiveCount returns the number of live subscriptions.
func (r *Registry) LiveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}

// LiveCountFor returns the number of live subscriptions targeting elem.
func (r *Registry) LiveCountFor(elem scene.NodeID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byElem[elem])
}

// Close tears the registry down. Subscriptions still live at this point are
// a defect: they are cancelled, and Close reports them as a coded error.
func (r *Registry) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	leaked := len(r.subs)
	ids := make([]SubscriptionID, 0, leaked)
	for id := range r.subs {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	for _, id := range ids {
		r.Cancel(id)
	}
	if leaked > 0 {
		return werrors.Newf("W002", "%d subscriptions still live at close", leaked)
	}
	return nil
}

// applyChange runs a scheduled application for sub. A panic in the apply
// function is recovered and reported so one failing subscription cannot
// prevent others in the same tick from running.
func (r *Registry) applyChange(sub *subscription, fn func() error) {
	if sub.cancelled.Load() {
		return
	}
	defer func() {
		if p := recover(); p != nil {
			r.metrics.panicked()
			r.errFn(werrors.Newf("W003", "subscription %d: %v", sub.id, p))
		}
	}()
	if err := fn(); err != nil {
		r.errFn(werrors.Wrap("W006", "apply failed", err))
		return
	}
	r.metrics.applied()
}

// applyInitial runs the synchronous first application during registration.
// Unlike applyChange, failures (including recovered panics) are returned so
// spawn can roll back atomically.
func (r *Registry) applyInitial(sub *subscription, fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			r.metrics.panicked()
			err = werrors.Newf("W003", "subscription %d: %v", sub.id, p)
		}
	}()
	if err := fn(); err != nil {
		return werrors.Wrap("W006", "initial apply failed", err)
	}
	r.metrics.applied()
	return nil
}
