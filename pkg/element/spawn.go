package element

import (
	werrors "github.com/weft-ui/weft/internal/errors"
	"github.com/weft-ui/weft/pkg/scene"
)

// Spawn materializes the description against the host scene graph and
// returns the handle of the new element. parent is the host node to attach
// under; scene.NoNode spawns a root.
//
// Spawn is all-or-nothing with respect to subscription registration: if
// any host operation fails, every subscription registered so far is
// cancelled and every node created so far is deleted before the error is
// returned.
func (b Builder) Spawn(scope Scope, parent scene.NodeID) (*Handle, error) {
	return b.spawn(scope, nil, parent)
}

func (b Builder) spawn(scope Scope, parent *Handle, parentNode scene.NodeID) (*Handle, error) {
	host := scope.Host()

	node, err := host.CreateNode(parentNode, b.kind)
	if err != nil {
		return nil, werrors.Wrap("W004", "create node", err)
	}

	h := &Handle{
		node:   node,
		reg:    scope.Registry(),
		host:   host,
		parent: parent,
	}
	h.state.Store(int32(StateLive))

	// Rollback path: Despawn cancels everything registered so far on this
	// subtree and deletes the created nodes.
	fail := func(err error) (*Handle, error) {
		h.Despawn()
		return nil, err
	}

	if len(b.attrs) > 0 || len(b.handlers) > 0 {
		err := host.MutateNode(node, func(n *scene.Node) {
			for _, a := range b.attrs {
				n.Attrs[a.key] = a.value
			}
			for _, hd := range b.handlers {
				n.Handlers[hd.name] = hd.fn
			}
		})
		if err != nil {
			return fail(werrors.Wrap("W006", "set attributes", err))
		}
	}

	// Attribute bindings, in registration order. Each applies its signal's
	// current value synchronously before the next one registers.
	for _, bind := range b.bindings {
		if _, err := bind(scope, h); err != nil {
			return fail(err)
		}
	}

	// Children and child slots, in declaration order.
	for _, c := range b.children {
		if c.slot != nil {
			if _, err := c.slot(scope, h); err != nil {
				return fail(err)
			}
			continue
		}
		if _, err := c.static.spawn(scope, h, node); err != nil {
			return fail(err)
		}
	}

	for _, fn := range b.onSpawn {
		fn(h)
	}

	if parent != nil {
		parent.addChild(h)
	}
	return h, nil
}
