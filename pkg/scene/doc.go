// Package scene defines the contract between the reactive core and the
// host scene graph, plus an in-memory Tree host used by tests, examples
// and the inspector.
//
// The host owns actual node storage, layout and paint; the reactive core
// only ever touches it through the Host interface. Host implementations
// must guarantee that MutateNode on a deleted node is a safe no-op — the
// teardown coordinator orders cancellation before deletion, and this
// guarantee is the second line of defense behind it.
package scene
