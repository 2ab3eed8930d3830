package registry

import (
	"log/slog"

	"github.com/robbyt/go-scriptbridge/platform/data"
)

// Config carries the settings a factory may apply when it builds a runtime. Zero values mean
// "use the runtime's default"; a factory ignores fields its runtime has no use for.
type Config struct {
	LogHandler   slog.Handler
	MaxDepth     int
	DataProvider data.Getter

	// WasmFile is the bridge plugin loaded by the extism runtime. When empty the default
	// search paths are tried.
	WasmFile   string
	EntryPoint string

	// Command replaces the osascript binary.
	Command string
}
