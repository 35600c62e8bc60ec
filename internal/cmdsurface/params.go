package cmdsurface

import "github.com/taskstack/hqpik/internal/primitives"

// parseKind and parsePrimitiveParams alias the shared primitives
// parser so the command surface's handlers in server.go read the same
// way regardless of which package owns the parsing rule. The daemon's
// startup preload path (internal/daemon) uses primitives.ParseKind and
// primitives.ParseParams directly for the same reason.
func parseKind(name string) (primitives.Kind, error) {
	return primitives.ParseKind(name)
}

func parsePrimitiveParams(kind primitives.Kind, raw []string) (primitives.Params, error) {
	return primitives.ParseParams(kind, raw)
}
