package registry

import (
	"github.com/weft-ui/weft/pkg/scene"
	"github.com/weft-ui/weft/pkg/signal"
)

// Bind registers a subscription that writes sig's value into elem's live
// node state via apply. The signal's current value is applied synchronously
// before Bind returns, so the element never renders without an initial
// value; every later change is applied exactly once while the subscription
// is live.
//
// Bind is a package-level generic function because Go methods cannot carry
// their own type parameters.
func Bind[T any](r *Registry, elem scene.NodeID, sig signal.Signal[T], apply func(*scene.Node, T)) (SubscriptionID, error) {
	return BindEffect(r, elem, sig, func(v T) error {
		return r.host.MutateNode(elem, func(n *scene.Node) {
			apply(n, v)
		})
	})
}

// BindEffect registers a subscription whose applications run an arbitrary
// effect instead of a node mutation. The element builder uses it for child
// slots, where a value change spawns and despawns subtrees rather than
// writing an attribute. Lifetime and ordering guarantees are identical to
// Bind.
//
// The initial effect runs synchronously; its error fails registration with
// nothing left behind. Errors from later applications are routed to the
// registry's ErrorFunc.
func BindEffect[T any](r *Registry, elem scene.NodeID, sig signal.Signal[T], effect func(T) error) (SubscriptionID, error) {
	sub := &subscription{
		id:   r.newID(),
		elem: elem,
	}
	sink := func(v T) {
		r.applyChange(sub, func() error { return effect(v) })
	}
	initial, detach := sig.Attach(sink)
	sub.detach = detach
	if err := r.add(sub); err != nil {
		sub.cancelled.Store(true)
		detach()
		return 0, err
	}

	if err := r.applyInitial(sub, func() error { return effect(initial) }); err != nil {
		r.Cancel(sub.id)
		return 0, err
	}
	return sub.id, nil
}
