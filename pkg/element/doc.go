// Package element provides the declarative construction API for reactive
// scene-graph elements and the teardown coordinator for their removal.
//
// A Builder is an immutable description: every WithX / BindX call returns a
// new builder value and never touches the host scene graph. Spawn is the
// single state transition that materializes the description — it creates
// the host node, registers one subscription per attribute binding (applying
// each signal's current value synchronously), spawns children, and returns
// a Handle. Spawn is atomic: on any host failure the partially-built
// subtree is rolled back and no subscriptions remain.
//
//	row := element.New("row")
//	row = element.BindAttr(row, "label", name.Signal())
//	row = row.WithChild(element.New("icon").WithAttr("src", "user.png"))
//	h, err := row.Spawn(app, scene.NoNode)
//
// Despawning a Handle cancels every subscription of the element and its
// descendants, depth-first, before the host deletes a single node, so an
// in-flight delivery can never write into freed storage. Re-entrant
// despawns are no-ops.
package element
