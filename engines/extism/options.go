package extism

import (
	"errors"
	"log/slog"

	extismSDK "github.com/extism/go-sdk"
	"github.com/tetratelabs/wazero"

	"github.com/robbyt/go-scriptbridge/engines/extism/adapters"
	"github.com/robbyt/go-scriptbridge/internal/helpers"
	"github.com/robbyt/go-scriptbridge/platform/data"
)

// DefaultEntryPoint is the exported function called for every script.
const DefaultEntryPoint = "run"

// Option configures a Runtime.
type Option func(*Runtime) error

// WithLogHandler sets the log handler.
func WithLogHandler(handler slog.Handler) Option {
	return func(r *Runtime) error {
		if handler == nil {
			return errors.New("log handler cannot be nil")
		}
		r.logHandler = handler
		r.logger = nil
		return nil
	}
}

// WithLogger sets a specific logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runtime) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		r.logger = logger
		r.logHandler = nil
		return nil
	}
}

// WithWasmBytes loads the plugin from an in-memory module.
func WithWasmBytes(wasm []byte) Option {
	return func(r *Runtime) error {
		if len(wasm) == 0 {
			return errors.New("wasm bytes cannot be empty")
		}
		r.wasmBytes = wasm
		r.wasmFile = ""
		return nil
	}
}

// WithWasmFile loads the plugin from a file, read on first use.
func WithWasmFile(path string) Option {
	return func(r *Runtime) error {
		if path == "" {
			return errors.New("wasm file path cannot be empty")
		}
		r.wasmFile = path
		r.wasmBytes = nil
		return nil
	}
}

// WithCompiledPlugin uses an already compiled plugin. The runtime closes it in Close.
func WithCompiledPlugin(plugin adapters.CompiledPlugin) Option {
	return func(r *Runtime) error {
		if plugin == nil {
			return errors.New("compiled plugin cannot be nil")
		}
		r.plugin = plugin
		return nil
	}
}

// WithEntryPoint changes the exported function that receives scripts.
func WithEntryPoint(name string) Option {
	return func(r *Runtime) error {
		if name == "" {
			return errors.New("entry point cannot be empty")
		}
		r.entryPoint = name
		return nil
	}
}

// WithWASI toggles WASI support for the plugin.
func WithWASI(enabled bool) Option {
	return func(r *Runtime) error {
		r.settings.EnableWASI = enabled
		return nil
	}
}

// WithRuntimeConfig replaces the wazero runtime configuration.
func WithRuntimeConfig(cfg wazero.RuntimeConfig) Option {
	return func(r *Runtime) error {
		if cfg == nil {
			return errors.New("runtime config cannot be nil")
		}
		r.settings.RuntimeConfig = cfg
		return nil
	}
}

// WithHostFunctions registers host functions the plugin may import.
func WithHostFunctions(fns ...extismSDK.HostFunction) Option {
	return func(r *Runtime) error {
		r.settings.HostFunctions = append(r.settings.HostFunctions, fns...)
		return nil
	}
}

// WithDataProvider sends the provider's data to the plugin as the ctx member of each request.
func WithDataProvider(provider data.Getter) Option {
	return func(r *Runtime) error {
		if provider == nil {
			return errors.New("data provider cannot be nil")
		}
		r.provider = provider
		return nil
	}
}

// WithMaxDepth bounds container nesting when converting the result.
func WithMaxDepth(depth int) Option {
	return func(r *Runtime) error {
		if depth <= 0 {
			return errors.New("max depth must be positive")
		}
		r.maxDepth = depth
		return nil
	}
}

func (r *Runtime) setupLogger() {
	if r.logger != nil {
		r.logHandler = r.logger.Handler()
		return
	}
	r.logHandler, r.logger = helpers.SetupLogger(r.logHandler, "extism", "Runtime")
}
