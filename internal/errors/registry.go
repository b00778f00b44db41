package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
	DocURL     string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	"W001": {
		Category:   CategoryRuntime,
		Message:    "Tick budget exceeded",
		Detail:     "A single tick kept producing new work past the configured pass budget. This almost always means a signal transitively writes back into a cell it is derived from.",
		Suggestion: "Break the cycle: apply functions must not write to the Mutable their signal is derived from. Raise the budget with WithTickBudget only if the fan-out is genuinely that deep.",
		DocURL:     "https://weft-ui.dev/docs/errors/W001",
	},
	"W002": {
		Category:   CategoryTeardown,
		Message:    "Subscriptions leaked at registry close",
		Detail:     "The registry was closed while subscriptions were still live. Every element must be despawned before the UI is torn down.",
		Suggestion: "Despawn all roots (or call App.Close, which does) before closing the registry.",
		DocURL:     "https://weft-ui.dev/docs/errors/W002",
	},
	"W003": {
		Category:   CategoryRuntime,
		Message:    "Apply function panicked",
		Detail:     "A subscription's apply function panicked while being applied. The panic was recovered; other subscriptions in the tick were not affected.",
		Suggestion: "Apply functions should only write the signal value into the node's live state. Move fallible work into background tasks that report back via a Mutable.",
		DocURL:     "https://weft-ui.dev/docs/errors/W003",
	},
	"W004": {
		Category:   CategoryHost,
		Message:    "Spawn target missing",
		Detail:     "The parent node no longer exists in the host scene graph. The builder's subtree was rolled back; no partial subscriptions remain.",
		Suggestion: "Spawning into a despawned parent is a normal race; treat the error as a signal to drop the builder.",
		DocURL:     "https://weft-ui.dev/docs/errors/W004",
	},
	"W005": {
		Category:   CategoryTeardown,
		Message:    "Bind on despawned element",
		Detail:     "A subscription was registered against an element that is already despawning or gone.",
		Suggestion: "Register bindings only during spawn, or check Handle.State before late registration.",
		DocURL:     "https://weft-ui.dev/docs/errors/W005",
	},
	"W006": {
		Category:   CategoryHost,
		Message:    "Host operation failed",
		Detail:     "The scene-graph host rejected a create, mutate or delete operation.",
		Suggestion: "Inspect the wrapped error from the host.",
		DocURL:     "https://weft-ui.dev/docs/errors/W006",
	},
	"W007": {
		Category:   CategoryTeardown,
		Message:    "Registry closed",
		Detail:     "A subscription was registered after the registry was closed. Such a subscription would escape leak detection, so registration is refused.",
		Suggestion: "Bind only while the app is running; App.Close tears the registry down last.",
		DocURL:     "https://weft-ui.dev/docs/errors/W007",
	},
}

// Lookup returns the template for a code, if registered.
func Lookup(code string) (ErrorTemplate, bool) {
	tmpl, ok := registry[code]
	return tmpl, ok
}

// Codes returns all registered error codes.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}
