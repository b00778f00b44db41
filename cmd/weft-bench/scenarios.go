package main

import (
	"fmt"
	"time"

	"github.com/weft-ui/weft/pkg/element"
	"github.com/weft-ui/weft/pkg/scene"
	"github.com/weft-ui/weft/pkg/signal"
	"github.com/weft-ui/weft/pkg/weft"
)

type scenarioFunc func(app *weft.App, tree *scene.Tree, cfg benchConfig) (report, error)

// chainScenario pushes one value through a deep map chain into a single
// bound attribute. It stresses per-change propagation cost.
func chainScenario(app *weft.App, tree *scene.Tree, cfg benchConfig) (report, error) {
	source := signal.NewMutable(app, 0)

	sig := source.Signal()
	for i := 0; i < cfg.Depth; i++ {
		sig = signal.Map(sig, func(v int) int { return v + 1 })
	}

	b := element.New("label")
	b = element.BindAttr(b, "value", sig)
	h, err := app.Spawn(b)
	if err != nil {
		return report{}, err
	}

	rep := report{Scenario: cfg.Scenario, Writes: cfg.Writes}
	start := time.Now()
	for i := 1; i <= cfg.Writes; i++ {
		source.Set(i)
		if err := app.Tick(); err != nil {
			return report{}, err
		}
		rep.Ticks++
	}
	rep.Elapsed = time.Since(start)
	rep.Mutations = tree.MutationCount()
	rep.Subscriptions = app.Registry().LiveCount()
	rep.Nodes = tree.NodeCount()
	rep.WritesPerSec = float64(cfg.Writes) / rep.Elapsed.Seconds()

	// Sanity: the chain must have delivered the final value end to end.
	want := cfg.Writes + cfg.Depth
	var got any
	if n, ok := tree.Lookup(h.NodeID()); ok {
		got = n.Attrs["value"]
	}
	if got != want {
		return report{}, fmt.Errorf("chain delivered %v, want %d", got, want)
	}
	return rep, nil
}

// fanoutScenario binds one value into many elements and writes it
// repeatedly. It stresses per-subscription dispatch and the registry.
func fanoutScenario(app *weft.App, tree *scene.Tree, cfg benchConfig) (report, error) {
	source := signal.NewMutable(app, 0)

	root := element.New("panel")
	for i := 0; i < cfg.Elements; i++ {
		root = root.WithChild(element.BindAttr(element.New("label"), "value", source.Signal()))
	}
	if _, err := app.Spawn(root); err != nil {
		return report{}, err
	}

	rep := report{
		Scenario:      cfg.Scenario,
		Writes:        cfg.Writes,
		Subscriptions: app.Registry().LiveCount(),
		Nodes:         tree.NodeCount(),
	}
	start := time.Now()
	for i := 1; i <= cfg.Writes; i++ {
		source.Set(i)
		if err := app.Tick(); err != nil {
			return report{}, err
		}
		rep.Ticks++
	}
	rep.Elapsed = time.Since(start)
	rep.Mutations = tree.MutationCount()
	rep.WritesPerSec = float64(cfg.Writes) / rep.Elapsed.Seconds()
	return rep, nil
}

// switchScenario swaps a child slot between two subtrees once per tick. It
// stresses spawn, teardown ordering and subscription churn.
func switchScenario(app *weft.App, tree *scene.Tree, cfg benchConfig) (report, error) {
	text := signal.NewMutable[any](app, "x")

	makeChild := func(kind string) *element.Builder {
		b := element.BindAttr(element.New(kind), "text", text.Signal())
		b = b.WithChild(element.New("icon"))
		return &b
	}

	slot := signal.NewMutable(app, makeChild("label"))
	parent := element.New("panel")
	parent = element.BindChild(parent, slot.Signal())
	if _, err := app.Spawn(parent); err != nil {
		return report{}, err
	}

	rep := report{Scenario: cfg.Scenario, Writes: cfg.Switches}
	start := time.Now()
	for i := 0; i < cfg.Switches; i++ {
		if i%2 == 0 {
			slot.Set(makeChild("image"))
		} else {
			slot.Set(makeChild("label"))
		}
		if err := app.Tick(); err != nil {
			return report{}, err
		}
		rep.Ticks++

		if live := app.Registry().LiveCount(); live > rep.Subscriptions {
			rep.Subscriptions = live
		}
		if nodes := tree.NodeCount(); nodes > rep.Nodes {
			rep.Nodes = nodes
		}
	}
	rep.Elapsed = time.Since(start)
	rep.Mutations = tree.MutationCount()
	rep.WritesPerSec = float64(cfg.Switches) / rep.Elapsed.Seconds()
	return rep, nil
}
