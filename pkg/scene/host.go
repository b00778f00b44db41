package scene

// NodeID identifies a node in the host scene graph. IDs are unique, stable
// for the node's entire lifetime and never reused while any subscription
// still references them.
type NodeID int64

// NoNode is the zero NodeID. Passing it to CreateNode as the parent
// creates a root node.
const NoNode NodeID = 0

// Valid reports whether the ID refers to a node at all.
func (id NodeID) Valid() bool {
	return id != NoNode
}

// Event is an input event delivered to a node's handler.
type Event struct {
	Name   string
	Target NodeID
	Data   any
}

// HandlerFunc handles an input event on a node.
type HandlerFunc func(Event)

// Node is the live state of a scene-graph node, as visible to mutations.
// Attrs holds the attribute map that signal bindings write into; Handlers
// holds the event handlers wired by the element builder.
type Node struct {
	ID       NodeID
	Kind     string
	Attrs    map[string]any
	Handlers map[string]HandlerFunc
}

// EventSource is implemented by hosts that store event handlers on their
// nodes. The app's dispatch path looks handlers up through it and invokes
// them outside any host lock.
type EventSource interface {
	Handler(id NodeID, name string) HandlerFunc
}

// Host is the scene-graph collaborator consumed by the reactive core.
type Host interface {
	// CreateNode creates a node of the given kind under parent and
	// returns its ID. parent == NoNode creates a root. Fails if the
	// parent no longer exists.
	CreateNode(parent NodeID, kind string) (NodeID, error)

	// MutateNode applies fn to the node's live state. Calling it on a
	// deleted node is a safe no-op, not an error.
	MutateNode(id NodeID, fn func(*Node)) error

	// DeleteSubtree removes the node and all its descendants. Deleting
	// an already-deleted node is a no-op.
	DeleteSubtree(id NodeID) error
}
