package element

import (
	werrors "github.com/weft-ui/weft/internal/errors"
	"github.com/weft-ui/weft/pkg/registry"
	"github.com/weft-ui/weft/pkg/scene"
	"github.com/weft-ui/weft/pkg/signal"
)

// Bind registers an attribute binding on an already-spawned handle. Most
// bindings belong on the builder; this is the escape hatch for code holding
// a raw handle, typically inside an OnSpawn hook. The element must still be
// live: once teardown has started no new subscription may attach to it.
func Bind[T any](scope Scope, h *Handle, sig signal.Signal[T], apply func(*scene.Node, T)) (registry.SubscriptionID, error) {
	if h.State() != StateLive {
		return 0, werrors.Newf("W005", "element %d is %s", h.node, h.State())
	}
	return registry.Bind(scope.Registry(), h.node, sig, apply)
}
