package helpers

import (
	"log/slog"
	"os"
)

// SetupLogger builds the grouped logger used by a runtime adapter or platform component.
// If the provided handler is nil, a text handler writing to stderr is created and grouped
// under runtimeName, so library logging never mixes with program output on stdout.
//
// Parameters:
//   - handler: The slog.Handler to use, or nil for defaults
//   - runtimeName: The name of the runtime or layer (e.g., "starlark", "platform")
//   - component: Optional group name within the runtime (e.g., "Runtime", "Executor")
//
// Returns:
//   - The configured handler
//   - A logger created from the handler
func SetupLogger(handler slog.Handler, runtimeName string, component string) (slog.Handler, *slog.Logger) {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, nil).WithGroup(runtimeName)
		slog.New(handler).Debug("handler is nil, using the default logger configuration")
	}

	if component == "" {
		return handler, slog.New(handler)
	}
	return handler, slog.New(handler.WithGroup(component))
}
