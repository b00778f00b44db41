package element

import (
	"github.com/weft-ui/weft/pkg/registry"
	"github.com/weft-ui/weft/pkg/scene"
	"github.com/weft-ui/weft/pkg/signal"
)

// Scope supplies the collaborators a builder needs at spawn time.
// Implemented by weft.App.
type Scope interface {
	Host() scene.Host
	Registry() *registry.Registry

	// ReportError receives errors that surface after spawn has returned,
	// such as a child-slot switch failing mid-flight.
	ReportError(err error)
}

type attrEntry struct {
	key   string
	value any
}

type handlerEntry struct {
	name string
	fn   scene.HandlerFunc
}

// bindingFunc registers one subscription against the freshly spawned
// handle. Collected during construction, run during spawn in order, so
// for bindings targeting the same attribute the last-registered wins.
type bindingFunc func(scope Scope, h *Handle) (registry.SubscriptionID, error)

// childEntry is either a static child builder or a signal-driven slot.
type childEntry struct {
	static *Builder
	slot   bindingFunc
}

// Builder is an immutable element description. Construction is purely
// additive; nothing touches the host scene graph until Spawn.
type Builder struct {
	kind     string
	attrs    []attrEntry
	handlers []handlerEntry
	bindings []bindingFunc
	children []childEntry
	onSpawn  []func(*Handle)
}

// New starts a description of an element of the given node kind.
func New(kind string) Builder {
	return Builder{kind: kind}
}

// Kind returns the node kind this builder describes.
func (b Builder) Kind() string {
	return b.kind
}

// clone copies the slice headers into fresh arrays so that extending one
// builder value can never alias another.
func (b Builder) clone() Builder {
	b.attrs = append([]attrEntry(nil), b.attrs...)
	b.handlers = append([]handlerEntry(nil), b.handlers...)
	b.bindings = append([]bindingFunc(nil), b.bindings...)
	b.children = append([]childEntry(nil), b.children...)
	b.onSpawn = append(([]func(*Handle))(nil), b.onSpawn...)
	return b
}

// WithAttr sets a static attribute on the spawned node.
func (b Builder) WithAttr(key string, value any) Builder {
	nb := b.clone()
	nb.attrs = append(nb.attrs, attrEntry{key: key, value: value})
	return nb
}

// OnEvent wires an event handler onto the spawned node. Events reach the
// handler through the app's dispatch path, on the tick goroutine.
func (b Builder) OnEvent(name string, fn scene.HandlerFunc) Builder {
	nb := b.clone()
	nb.handlers = append(nb.handlers, handlerEntry{name: name, fn: fn})
	return nb
}

// WithChild appends a static child element.
func (b Builder) WithChild(child Builder) Builder {
	nb := b.clone()
	nb.children = append(nb.children, childEntry{static: &child})
	return nb
}

// OnSpawn registers a raw-access hook that runs after the element and its
// subtree have spawned successfully.
func (b Builder) OnSpawn(fn func(*Handle)) Builder {
	nb := b.clone()
	nb.onSpawn = append(nb.onSpawn, fn)
	return nb
}

// withBinding appends a subscription registration step.
func (b Builder) withBinding(bind bindingFunc) Builder {
	nb := b.clone()
	nb.bindings = append(nb.bindings, bind)
	return nb
}

// BindAttr binds sig to the named attribute: the attribute holds the
// signal's current value at spawn and is updated once per change until the
// element despawns.
func BindAttr[T any](b Builder, key string, sig signal.Signal[T]) Builder {
	return BindAttrFunc(b, sig, func(n *scene.Node, v T) {
		n.Attrs[key] = v
	})
}

// BindAttrFunc binds sig to an arbitrary mutation of the node's live
// state, for targets richer than a single attribute key.
func BindAttrFunc[T any](b Builder, sig signal.Signal[T], apply func(*scene.Node, T)) Builder {
	return b.withBinding(func(scope Scope, h *Handle) (registry.SubscriptionID, error) {
		return registry.Bind(scope.Registry(), h.node, sig, apply)
	})
}

// BindVisible binds a boolean signal to the conventional "visible"
// attribute.
func BindVisible(b Builder, sig signal.Signal[bool]) Builder {
	return BindAttr(b, "visible", sig)
}

// BindChild binds a child slot to a builder signal. Each emitted builder
// replaces the slot's current child: the previous child is despawned (its
// subscriptions cancelled first, as always) and the new one spawned in its
// place. A nil builder empties the slot. The slot's subscription lives on
// the parent element, so parent teardown cancels the switching itself and
// the current child is removed with the rest of the subtree.
func BindChild(b Builder, sig signal.Signal[*Builder]) Builder {
	nb := b.clone()
	nb.children = append(nb.children, childEntry{slot: childSlot(sig)})
	return nb
}

// BindChildren binds a contiguous block of children to a builder-list
// signal. Each emitted list is reconciled against the previous one by
// builder identity: an unchanged leading run of entries keeps its spawned
// subtrees, everything from the first difference on is despawned and
// rebuilt in order, so the host's child order always matches the list.
// Nil entries are skipped. Like a child slot, the block's subscription
// lives on the parent, so parent teardown cancels it and removes the
// current children with the rest of the subtree.
func BindChildren(b Builder, sig signal.Signal[[]*Builder]) Builder {
	nb := b.clone()
	nb.children = append(nb.children, childEntry{slot: childBlock(sig)})
	return nb
}

func childBlock(sig signal.Signal[[]*Builder]) bindingFunc {
	return func(scope Scope, parent *Handle) (registry.SubscriptionID, error) {
		var current []*Builder
		var handles []*Handle
		return registry.BindEffect(scope.Registry(), parent.node, sig, func(next []*Builder) error {
			if parent.State() != StateLive {
				return nil
			}
			next = compactBuilders(next)

			keep := 0
			for keep < len(current) && keep < len(next) && current[keep] == next[keep] {
				keep++
			}
			// Despawn the stale tail in reverse so later children go
			// before earlier ones, then append the replacement tail.
			for i := len(handles) - 1; i >= keep; i-- {
				if err := handles[i].Despawn(); err != nil {
					scope.ReportError(err)
				}
			}
			handles = handles[:keep]
			for _, child := range next[keep:] {
				h, err := child.spawn(scope, parent, parent.node)
				if err != nil {
					return err
				}
				handles = append(handles, h)
			}
			current = next
			return nil
		})
	}
}

// compactBuilders copies the list dropping nil entries, so the caller's
// slice is never aliased by the block's retained state.
func compactBuilders(in []*Builder) []*Builder {
	out := make([]*Builder, 0, len(in))
	for _, b := range in {
		if b != nil {
			out = append(out, b)
		}
	}
	return out
}

func childSlot(sig signal.Signal[*Builder]) bindingFunc {
	return func(scope Scope, parent *Handle) (registry.SubscriptionID, error) {
		var current *Handle
		return registry.BindEffect(scope.Registry(), parent.node, sig, func(child *Builder) error {
			if parent.State() != StateLive {
				return nil
			}
			if current != nil {
				if err := current.Despawn(); err != nil {
					scope.ReportError(err)
				}
				current = nil
			}
			if child == nil {
				return nil
			}
			h, err := child.spawn(scope, parent, parent.node)
			if err != nil {
				return err
			}
			current = h
			return nil
		})
	}
}
