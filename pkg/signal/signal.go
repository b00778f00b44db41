package signal

// Scheduler defers work to the next tick of the owning update loop.
// It is implemented by weft.App; tests supply lightweight fakes.
type Scheduler interface {
	// Schedule enqueues fn to run on the next tick. It must be safe to
	// call from any goroutine and must never run fn synchronously.
	Schedule(fn func())
}

// Signal is a push-based reactive value.
//
// Attach registers a sink and activates the signal, returning its current
// value and a detach function. The sink is invoked on the scheduler's tick
// goroutine, once per upstream change, in production order. Detach is
// idempotent; after the last sink detaches the signal is inert and will
// never call a sink again.
type Signal[T any] interface {
	Attach(sink func(T)) (current T, detach func())
}

// Func adapts a plain attach function to the Signal interface, in the
// manner of http.HandlerFunc. All combinators in this package are built
// on it.
type Func[T any] func(sink func(T)) (T, func())

// Attach implements Signal.
func (f Func[T]) Attach(sink func(T)) (T, func()) {
	return f(sink)
}

// Const returns a signal that holds v forever and never emits a change.
func Const[T any](v T) Signal[T] {
	return Func[T](func(func(T)) (T, func()) {
		return v, func() {}
	})
}
