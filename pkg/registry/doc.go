// Package registry owns the bindings between signals and the live state of
// scene-graph nodes.
//
// Each subscription ties one signal to one mutation applied against one
// element's node. The registry guarantees exactly-once application per
// distinct value change, applies only while the target element is present,
// and serializes applications per subscription (all delivery runs on the
// tick goroutine). Cancellation is one-way and idempotent: after Cancel
// returns, no further apply can start, and an already-scheduled delivery is
// dropped at execution time.
//
// A registry is constructor-injected state scoped to one UI instance; it
// must be fully drained before Close, or the leak is reported as a coded
// error.
package registry
