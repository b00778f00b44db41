package element

import (
	"sync"
	"sync/atomic"

	werrors "github.com/weft-ui/weft/internal/errors"
	"github.com/weft-ui/weft/pkg/registry"
	"github.com/weft-ui/weft/pkg/scene"
)

// State is the lifecycle state of a spawned element. Transitions are
// one-way: Live → Despawning → Gone.
type State int32

const (
	StateLive State = iota
	StateDespawning
	StateGone
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateLive:
		return "Live"
	case StateDespawning:
		return "Despawning"
	case StateGone:
		return "Gone"
	default:
		return "Unknown"
	}
}

// Handle correlates a logical element with its realized node in the host
// scene graph. It is the unit of teardown: despawning a handle cancels all
// subscriptions rooted at it and its descendants before any node deletion.
type Handle struct {
	node scene.NodeID
	reg  *registry.Registry
	host scene.Host

	state  atomic.Int32
	parent *Handle

	mu       sync.Mutex
	children []*Handle
}

// NodeID returns the host scene-graph node this handle is bound to.
func (h *Handle) NodeID() scene.NodeID {
	return h.node
}

// State returns the current lifecycle state.
func (h *Handle) State() State {
	return State(h.state.Load())
}

// Children returns a snapshot of the live child handles.
func (h *Handle) Children() []*Handle {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*Handle, len(h.children))
	copy(out, h.children)
	return out
}

func (h *Handle) addChild(child *Handle) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.children = append(h.children, child)
}

func (h *Handle) removeChild(child *Handle) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, c := range h.children {
		if c == child {
			h.children = append(h.children[:i], h.children[i+1:]...)
			return
		}
	}
}

// Despawn removes the element and its entire subtree. The sequence is
// fixed: first every subscription of this handle and all descendants is
// cancelled depth-first, then — and only then — the host deletes the
// nodes. Despawning an already-Despawning or Gone handle is a no-op.
func (h *Handle) Despawn() error {
	if !h.state.CompareAndSwap(int32(StateLive), int32(StateDespawning)) {
		return nil
	}

	h.cancelSubtree()

	err := h.host.DeleteSubtree(h.node)
	h.markGone()
	if h.parent != nil {
		h.parent.removeChild(h)
	}
	if err != nil {
		return werrors.Wrap("W006", "delete subtree", err)
	}
	return nil
}

// cancelSubtree cancels this handle's subscriptions, then descends into
// children, marking each Despawning as it goes. No host deletion happens
// here.
func (h *Handle) cancelSubtree() {
	h.reg.CancelElement(h.node)
	for _, child := range h.Children() {
		if child.state.CompareAndSwap(int32(StateLive), int32(StateDespawning)) {
			child.cancelSubtree()
		}
	}
}

// markGone finalizes the subtree after host deletion.
func (h *Handle) markGone() {
	h.state.Store(int32(StateGone))
	h.mu.Lock()
	children := h.children
	h.children = nil
	h.mu.Unlock()
	for _, child := range children {
		child.markGone()
	}
}
