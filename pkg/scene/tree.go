package scene

import (
	"sync"
	"sync/atomic"

	werrors "github.com/weft-ui/weft/internal/errors"
)

// Tree is an in-memory Host. It backs tests, the benchmark scenarios and
// the inspector; a production embedding would implement Host against its
// own node storage instead.
type Tree struct {
	mu     sync.Mutex
	nodes  map[NodeID]*treeNode
	roots  []NodeID
	nextID int64

	mutations atomic.Int64
	deletes   atomic.Int64
}

type treeNode struct {
	node     Node
	parent   NodeID
	children []NodeID
}

// NewTree creates an empty tree.
func NewTree() *Tree {
	return &Tree{nodes: make(map[NodeID]*treeNode)}
}

// CreateNode implements Host.
func (t *Tree) CreateNode(parent NodeID, kind string) (NodeID, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if parent != NoNode {
		if _, ok := t.nodes[parent]; !ok {
			return NoNode, werrors.Newf("W004", "parent node %d does not exist", parent)
		}
	}

	t.nextID++
	id := NodeID(t.nextID)
	t.nodes[id] = &treeNode{
		node: Node{
			ID:       id,
			Kind:     kind,
			Attrs:    make(map[string]any),
			Handlers: make(map[string]HandlerFunc),
		},
		parent: parent,
	}
	if parent == NoNode {
		t.roots = append(t.roots, id)
	} else {
		p := t.nodes[parent]
		p.children = append(p.children, id)
	}
	return id, nil
}

// MutateNode implements Host. Mutating a deleted node is a safe no-op.
// fn runs under the tree lock and must not call back into the tree.
func (t *Tree) MutateNode(id NodeID, fn func(*Node)) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	tn, ok := t.nodes[id]
	if !ok {
		return nil
	}
	fn(&tn.node)
	t.mutations.Add(1)
	return nil
}

// DeleteSubtree implements Host. Deleting an already-deleted node is a
// no-op.
func (t *Tree) DeleteSubtree(id NodeID) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	tn, ok := t.nodes[id]
	if !ok {
		return nil
	}
	t.deleteLocked(id)
	if tn.parent == NoNode {
		t.roots = removeID(t.roots, id)
	} else if p, ok := t.nodes[tn.parent]; ok {
		p.children = removeID(p.children, id)
	}
	return nil
}

func (t *Tree) deleteLocked(id NodeID) {
	tn, ok := t.nodes[id]
	if !ok {
		return
	}
	for _, child := range tn.children {
		t.deleteLocked(child)
	}
	delete(t.nodes, id)
	t.deletes.Add(1)
}

func removeID(ids []NodeID, id NodeID) []NodeID {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

// Handler returns the named event handler of a node, or nil if the node or
// handler does not exist. Used by the dispatch path, which must invoke the
// handler outside the tree lock.
func (t *Tree) Handler(id NodeID, name string) HandlerFunc {
	t.mu.Lock()
	defer t.mu.Unlock()
	tn, ok := t.nodes[id]
	if !ok {
		return nil
	}
	return tn.node.Handlers[name]
}

// Contains reports whether the node currently exists.
func (t *Tree) Contains(id NodeID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.nodes[id]
	return ok
}

// NodeCount returns the number of live nodes.
func (t *Tree) NodeCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.nodes)
}

// MutationCount returns the total number of MutateNode applications that
// found their target. Tests use it to prove that no mutation lands after a
// despawn.
func (t *Tree) MutationCount() int64 {
	return t.mutations.Load()
}

// SnapshotNode is a point-in-time copy of a node for inspection.
type SnapshotNode struct {
	ID       NodeID         `json:"id"`
	Kind     string         `json:"kind"`
	Attrs    map[string]any `json:"attrs,omitempty"`
	Children []SnapshotNode `json:"children,omitempty"`
}

// Snapshot returns a deep copy of all root subtrees.
func (t *Tree) Snapshot() []SnapshotNode {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]SnapshotNode, 0, len(t.roots))
	for _, id := range t.roots {
		out = append(out, t.snapshotLocked(id))
	}
	return out
}

// Lookup returns a point-in-time copy of a single node's subtree.
func (t *Tree) Lookup(id NodeID) (SnapshotNode, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.nodes[id]; !ok {
		return SnapshotNode{}, false
	}
	return t.snapshotLocked(id), true
}

func (t *Tree) snapshotLocked(id NodeID) SnapshotNode {
	tn := t.nodes[id]
	sn := SnapshotNode{ID: id, Kind: tn.node.Kind}
	if len(tn.node.Attrs) > 0 {
		sn.Attrs = make(map[string]any, len(tn.node.Attrs))
		for k, v := range tn.node.Attrs {
			sn.Attrs[k] = v
		}
	}
	for _, child := range tn.children {
		sn.Children = append(sn.Children, t.snapshotLocked(child))
	}
	return sn
}
