// Package signal provides the push-based reactive primitives for weft.
//
// Mutable[T] is a shared, writable cell. Writes are cheap: they swap the
// stored value under a short lock and schedule a single notification flush
// on the owning scheduler's next tick. Multiple writes before the flush
// coalesce, so dependents only ever observe the final value of a tick.
//
//	count := signal.NewMutable(app, 0)
//	count.Set(5)                                  // notifies next tick
//	doubled := signal.Map(count.Signal(), double) // derived signal
//
// Signal[T] is a node in the dependency graph: either a Mutable source or a
// combinator (Map, Filter, Dedupe, CombineLatest, Flatten, MapBool) over one
// or more upstream signals. Attaching a sink activates the chain and yields
// the current value; detaching is idempotent, and a signal whose last sink
// has detached becomes inert. Signals are not restartable: a re-created
// signal with identical inputs is a new, independent instance.
//
// All change delivery happens on the scheduler's tick goroutine, so each
// sink observes values in production order and never concurrently.
package signal
