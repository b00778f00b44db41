package element_test

import (
	"errors"
	"testing"

	werrors "github.com/weft-ui/weft/internal/errors"
	"github.com/weft-ui/weft/pkg/element"
	"github.com/weft-ui/weft/pkg/scene"
	"github.com/weft-ui/weft/pkg/signal"
	"github.com/weft-ui/weft/pkg/weft"
)

func newApp(t *testing.T) (*weft.App, *scene.Tree) {
	t.Helper()
	tree := scene.NewTree()
	app := weft.New(tree)
	t.Cleanup(func() { app.Close() })
	return app, tree
}

func tick(t *testing.T, app *weft.App) {
	t.Helper()
	if err := app.Tick(); err != nil {
		t.Fatalf("tick: %v", err)
	}
}

func attrOf(t *testing.T, tree *scene.Tree, id scene.NodeID, key string) any {
	t.Helper()
	n, ok := tree.Lookup(id)
	if !ok {
		t.Fatalf("node %d not in tree", id)
	}
	return n.Attrs[key]
}

func TestSpawnRoundTrip(t *testing.T) {
	app, tree := newApp(t)
	title := signal.NewMutable[any](app, "hello")
	count := signal.NewMutable(app, 0)

	b := element.New("panel").WithAttr("width", 200)
	b = element.BindAttr(b, "title", title.Signal())
	b = b.WithChild(element.BindAttr(element.New("label"), "count", count.Signal()))

	h, err := b.Spawn(app, scene.NoNode)
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	if h.State() != element.StateLive {
		t.Errorf("expected Live, got %v", h.State())
	}
	if got := attrOf(t, tree, h.NodeID(), "width"); got != 200 {
		t.Errorf("static attr: expected 200, got %v", got)
	}
	if got := attrOf(t, tree, h.NodeID(), "title"); got != "hello" {
		t.Errorf("bound attr must hold the signal's value at spawn, got %v", got)
	}

	children := h.Children()
	if len(children) != 1 {
		t.Fatalf("expected 1 child, got %d", len(children))
	}
	if got := attrOf(t, tree, children[0].NodeID(), "count"); got != 0 {
		t.Errorf("child bound attr: expected 0, got %v", got)
	}

	if got := app.Registry().LiveCount(); got != 2 {
		t.Errorf("expected 2 live subscriptions, got %d", got)
	}

	// Changes flow after spawn.
	title.Set("updated")
	count.Set(3)
	tick(t, app)
	if got := attrOf(t, tree, h.NodeID(), "title"); got != "updated" {
		t.Errorf("expected updated, got %v", got)
	}
	if got := attrOf(t, tree, children[0].NodeID(), "count"); got != 3 {
		t.Errorf("expected 3, got %v", got)
	}
}

func TestSpawnOrderStaticsBeforeBindings(t *testing.T) {
	app, tree := newApp(t)
	m := signal.NewMutable[any](app, "bound")

	b := element.New("label").WithAttr("text", "static")
	b = element.BindAttr(b, "text", m.Signal())

	h, err := b.Spawn(app, scene.NoNode)
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	if got := attrOf(t, tree, h.NodeID(), "text"); got != "bound" {
		t.Errorf("binding must overwrite the static attribute, got %v", got)
	}
}

func TestBindingsSameKeyLastRegisteredWins(t *testing.T) {
	app, tree := newApp(t)
	a := signal.NewMutable[any](app, "first")
	b := signal.NewMutable[any](app, "second")

	builder := element.New("label")
	builder = element.BindAttr(builder, "text", a.Signal())
	builder = element.BindAttr(builder, "text", b.Signal())

	h, err := builder.Spawn(app, scene.NoNode)
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	if got := attrOf(t, tree, h.NodeID(), "text"); got != "second" {
		t.Errorf("after registration, expected second, got %v", got)
	}

	// Both subscriptions stay live; within one tick the later write wins
	// whichever signal changed.
	a.Set("first again")
	tick(t, app)
	if got := attrOf(t, tree, h.NodeID(), "text"); got != "first again" {
		t.Errorf("expected first again, got %v", got)
	}
	if got := app.Registry().LiveCount(); got != 2 {
		t.Errorf("expected both subscriptions live, got %d", got)
	}
}

// failAfterHost passes operations through to an inner tree until a set
// number of node creations, then rejects further creations.
type failAfterHost struct {
	*scene.Tree
	remaining int
}

var errHostFull = errors.New("host full")

func (h *failAfterHost) CreateNode(parent scene.NodeID, kind string) (scene.NodeID, error) {
	if h.remaining == 0 {
		return scene.NoNode, errHostFull
	}
	h.remaining--
	return h.Tree.CreateNode(parent, kind)
}

func TestSpawnRollsBackOnHostFailure(t *testing.T) {
	tree := scene.NewTree()
	host := &failAfterHost{Tree: tree, remaining: 2}
	app := weft.New(host)
	defer app.Close()

	m := signal.NewMutable[any](app, "v")
	child := element.BindAttr(element.New("label"), "text", m.Signal())

	b := element.New("panel")
	b = element.BindAttr(b, "title", m.Signal())
	b = b.WithChild(child).WithChild(child) // second child exceeds the host

	_, err := b.Spawn(app, scene.NoNode)
	if err == nil {
		t.Fatal("expected spawn to fail")
	}
	if !errors.Is(err, errHostFull) {
		t.Errorf("expected wrapped host error, got %v", err)
	}
	if got := app.Registry().LiveCount(); got != 0 {
		t.Errorf("rollback must cancel every registered subscription, got %d", got)
	}
	if got := tree.NodeCount(); got != 0 {
		t.Errorf("rollback must delete every created node, got %d", got)
	}
	if got := m.SinkCount(); got != 0 {
		t.Errorf("rollback must detach from the signal, got %d sinks", got)
	}
}

func TestDespawnStopsUpdatesAndRemovesSubtree(t *testing.T) {
	app, tree := newApp(t)
	m := signal.NewMutable(app, 0)

	b := element.New("panel")
	b = element.BindAttr(b, "value", m.Signal())
	b = b.WithChild(element.BindAttr(element.New("label"), "value", m.Signal()))

	h, err := b.Spawn(app, scene.NoNode)
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	childID := h.Children()[0].NodeID()

	before := tree.MutationCount()
	if err := h.Despawn(); err != nil {
		t.Fatalf("despawn: %v", err)
	}
	if h.State() != element.StateGone {
		t.Errorf("expected Gone, got %v", h.State())
	}
	if tree.Contains(h.NodeID()) || tree.Contains(childID) {
		t.Error("despawn must remove the node and its subtree")
	}
	if got := app.Registry().LiveCount(); got != 0 {
		t.Errorf("despawn must cancel the subtree's subscriptions, got %d", got)
	}

	// A value already in flight lands on no node and applies nothing.
	m.Set(42)
	tick(t, app)
	if got := tree.MutationCount(); got != before {
		t.Errorf("no mutation may run after despawn: %d -> %d", before, got)
	}
}

func TestDespawnIdempotent(t *testing.T) {
	app, _ := newApp(t)

	h, err := element.New("panel").Spawn(app, scene.NoNode)
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	if err := h.Despawn(); err != nil {
		t.Fatalf("despawn: %v", err)
	}
	if err := h.Despawn(); err != nil {
		t.Errorf("second despawn must be a no-op, got %v", err)
	}
}

// deleteOrderHost verifies the teardown contract: by the time the host is
// asked to delete a subtree, no subscription for any node in it is live.
type deleteOrderHost struct {
	*scene.Tree
	app *weft.App
	t   *testing.T
}

func (h *deleteOrderHost) DeleteSubtree(id scene.NodeID) error {
	if got := h.app.Registry().LiveCountFor(id); got != 0 {
		h.t.Errorf("node %d deleted with %d live subscriptions", id, got)
	}
	return h.Tree.DeleteSubtree(id)
}

func TestDespawnCancelsBeforeHostDeletion(t *testing.T) {
	tree := scene.NewTree()
	host := &deleteOrderHost{Tree: tree, t: t}
	app := weft.New(host)
	host.app = app
	defer app.Close()

	m := signal.NewMutable(app, 0)
	b := element.BindAttr(element.New("panel"), "value", m.Signal())
	b = b.WithChild(element.BindAttr(element.New("label"), "value", m.Signal()))

	h, err := b.Spawn(app, scene.NoNode)
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	if err := h.Despawn(); err != nil {
		t.Fatalf("despawn: %v", err)
	}
}

func TestBindChildSwitchesSubtrees(t *testing.T) {
	app, tree := newApp(t)
	text := signal.NewMutable[any](app, "inner")

	makeChild := func(kind string) *element.Builder {
		b := element.BindAttr(element.New(kind), "text", text.Signal())
		return &b
	}

	slot := signal.NewMutable(app, makeChild("label"))
	b := element.New("panel")
	b = element.BindChild(b, slot.Signal())

	h, err := b.Spawn(app, scene.NoNode)
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	first := h.Children()[0]
	if got := attrOf(t, tree, first.NodeID(), "text"); got != "inner" {
		t.Errorf("slot child must spawn with the signal's current value, got %v", got)
	}
	subsAfterSpawn := app.Registry().LiveCount()

	// Switch: old child torn down, new one in its place.
	slot.Set(makeChild("image"))
	tick(t, app)
	if tree.Contains(first.NodeID()) {
		t.Error("previous slot child must be deleted on switch")
	}
	if first.State() != element.StateGone {
		t.Errorf("previous slot child handle: expected Gone, got %v", first.State())
	}
	second := h.Children()[0]
	n, ok := tree.Lookup(second.NodeID())
	if !ok || n.Kind != "image" {
		t.Errorf("expected image child, got %+v", n)
	}
	if got := app.Registry().LiveCount(); got != subsAfterSpawn {
		t.Errorf("switching must not leak subscriptions: %d -> %d", subsAfterSpawn, got)
	}

	// Empty the slot.
	slot.Set(nil)
	tick(t, app)
	if len(h.Children()) != 0 {
		t.Errorf("nil builder must empty the slot, got %d children", len(h.Children()))
	}

	// Parent teardown cancels the switcher itself.
	if err := h.Despawn(); err != nil {
		t.Fatalf("despawn: %v", err)
	}
	if got := app.Registry().LiveCount(); got != 0 {
		t.Errorf("expected 0 live subscriptions, got %d", got)
	}
}

func TestBindChildrenSpawnsListInOrder(t *testing.T) {
	app, tree := newApp(t)

	makeChild := func(kind string) *element.Builder {
		b := element.New(kind)
		return &b
	}

	list := signal.NewMutable(app, []*element.Builder{
		makeChild("header"), nil, makeChild("row"), makeChild("footer"),
	})
	b := element.New("panel")
	b = element.BindChildren(b, list.Signal())

	h, err := b.Spawn(app, scene.NoNode)
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}

	root, ok := tree.Lookup(h.NodeID())
	if !ok {
		t.Fatal("root missing from tree")
	}
	kinds := make([]string, 0, len(root.Children))
	for _, c := range root.Children {
		kinds = append(kinds, c.Kind)
	}
	want := []string{"header", "row", "footer"} // nil entries skipped
	if len(kinds) != len(want) {
		t.Fatalf("expected children %v, got %v", want, kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("child %d: expected %q, got %q", i, want[i], kinds[i])
		}
	}
}

func TestBindChildrenReconcilesChanges(t *testing.T) {
	app, tree := newApp(t)
	text := signal.NewMutable[any](app, "v")

	makeChild := func(kind string) *element.Builder {
		b := element.BindAttr(element.New(kind), "text", text.Signal())
		return &b
	}

	header := makeChild("header")
	rowA := makeChild("rowA")
	rowB := makeChild("rowB")

	list := signal.NewMutable(app, []*element.Builder{header, rowA})
	b := element.New("panel")
	b = element.BindChildren(b, list.Signal())

	h, err := b.Spawn(app, scene.NoNode)
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	headerID := h.Children()[0].NodeID()
	rowAID := h.Children()[1].NodeID()
	subsAfterSpawn := app.Registry().LiveCount()

	// Replace the tail: the unchanged header keeps its node, rowA is
	// rebuilt as rowB.
	list.Set([]*element.Builder{header, rowB})
	tick(t, app)
	if !tree.Contains(headerID) {
		t.Error("unchanged leading child must keep its node across reconcile")
	}
	if tree.Contains(rowAID) {
		t.Error("replaced child must be despawned")
	}
	root, _ := tree.Lookup(h.NodeID())
	if len(root.Children) != 2 || root.Children[1].Kind != "rowB" {
		t.Errorf("expected [header rowB], got %+v", root.Children)
	}
	if got := app.Registry().LiveCount(); got != subsAfterSpawn {
		t.Errorf("reconcile must not leak subscriptions: %d -> %d", subsAfterSpawn, got)
	}

	// Append.
	list.Set([]*element.Builder{header, rowB, rowA})
	tick(t, app)
	if len(h.Children()) != 3 {
		t.Fatalf("expected 3 children after append, got %d", len(h.Children()))
	}

	// Shrink to empty.
	list.Set(nil)
	tick(t, app)
	if got := len(h.Children()); got != 0 {
		t.Errorf("empty list must clear the block, got %d children", got)
	}
	root, _ = tree.Lookup(h.NodeID())
	if len(root.Children) != 0 {
		t.Errorf("expected no child nodes, got %+v", root.Children)
	}

	// Parent teardown cancels the block's subscription itself.
	if err := h.Despawn(); err != nil {
		t.Fatalf("despawn: %v", err)
	}
	if got := app.Registry().LiveCount(); got != 0 {
		t.Errorf("expected 0 live subscriptions, got %d", got)
	}
}

func TestOnEventDispatch(t *testing.T) {
	app, _ := newApp(t)

	var clicks int
	b := element.New("button").OnEvent("click", func(scene.Event) {
		clicks++
	})
	h, err := b.Spawn(app, scene.NoNode)
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}

	app.Dispatch(h.NodeID(), scene.Event{Name: "click"})
	if clicks != 0 {
		t.Fatal("handler must not run before the tick")
	}
	tick(t, app)
	if clicks != 1 {
		t.Errorf("expected 1 click, got %d", clicks)
	}

	// Events for unknown names or despawned nodes are dropped.
	app.Dispatch(h.NodeID(), scene.Event{Name: "hover"})
	h.Despawn()
	app.Dispatch(h.NodeID(), scene.Event{Name: "click"})
	tick(t, app)
	if clicks != 1 {
		t.Errorf("expected clicks unchanged, got %d", clicks)
	}
}

func TestOnSpawnHook(t *testing.T) {
	app, _ := newApp(t)

	var got *element.Handle
	b := element.New("panel").OnSpawn(func(h *element.Handle) { got = h })
	h, err := b.Spawn(app, scene.NoNode)
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	if got != h {
		t.Error("OnSpawn must receive the spawned handle")
	}
}

func TestLateBindOnLiveHandle(t *testing.T) {
	app, tree := newApp(t)
	m := signal.NewMutable[any](app, "late")

	h, err := element.New("panel").Spawn(app, scene.NoNode)
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	if _, err := element.Bind(app, h, m.Signal(), func(n *scene.Node, v any) {
		n.Attrs["text"] = v
	}); err != nil {
		t.Fatalf("late bind: %v", err)
	}
	if got := attrOf(t, tree, h.NodeID(), "text"); got != "late" {
		t.Errorf("expected late, got %v", got)
	}
}

func TestLateBindOnDespawnedHandleRejected(t *testing.T) {
	app, _ := newApp(t)
	m := signal.NewMutable[any](app, "late")

	h, err := element.New("panel").Spawn(app, scene.NoNode)
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	if err := h.Despawn(); err != nil {
		t.Fatalf("despawn: %v", err)
	}

	_, err = element.Bind(app, h, m.Signal(), func(*scene.Node, any) {})
	if err == nil {
		t.Fatal("expected error binding to a despawned handle")
	}
	var werr *werrors.WeftError
	if !errors.As(err, &werr) || werr.Code != "W005" {
		t.Errorf("expected coded W005 error, got %v", err)
	}
	if got := app.Registry().LiveCount(); got != 0 {
		t.Errorf("rejected bind must register nothing, got %d", got)
	}
	if got := m.SinkCount(); got != 0 {
		t.Errorf("rejected bind must not attach, got %d sinks", got)
	}
}

func TestBuilderValuesDoNotAlias(t *testing.T) {
	app, tree := newApp(t)

	base := element.New("panel").WithAttr("shared", true)
	left := base.WithAttr("side", "left")
	right := base.WithAttr("side", "right")

	lh, err := left.Spawn(app, scene.NoNode)
	if err != nil {
		t.Fatalf("spawn left: %v", err)
	}
	rh, err := right.Spawn(app, scene.NoNode)
	if err != nil {
		t.Fatalf("spawn right: %v", err)
	}
	if got := attrOf(t, tree, lh.NodeID(), "side"); got != "left" {
		t.Errorf("left: expected left, got %v", got)
	}
	if got := attrOf(t, tree, rh.NodeID(), "side"); got != "right" {
		t.Errorf("right: expected right, got %v", got)
	}
}
