// Package weft ties the reactive core together: the App owns the host
// scene graph handle, the subscription registry, the element roots and the
// tick queue.
//
// The core runs no threads of its own. Writers enqueue change flushes on
// the App; the host engine's loop calls Tick once per frame, which drains
// all pending work and yields. Long-running work goes through App.Go and
// reports back only via a Mutable write.
//
//	tree := scene.NewTree()
//	app := weft.New(tree)
//	count := signal.NewMutable(app, 0)
//
//	label := element.BindAttr(element.New("label"), "text",
//	    signal.Map(count.Signal(), strconv.Itoa))
//	root, err := app.Spawn(label)
//
//	count.Set(42)
//	app.Tick() // label's "text" attribute is now "42"
//
// Within one tick all pending writes to a Mutable coalesce to the final
// value before dependents are notified. Work scheduled during the drain
// runs in the same tick, bounded by the tick budget; exceeding the budget
// aborts the tick with a coded cycle error instead of spinning.
package weft
