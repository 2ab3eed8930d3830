package registry

import (
	"github.com/robbyt/go-scriptbridge/engines/extism"
	"github.com/robbyt/go-scriptbridge/engines/osascript"
	"github.com/robbyt/go-scriptbridge/engines/risor"
	"github.com/robbyt/go-scriptbridge/engines/starlark"
	"github.com/robbyt/go-scriptbridge/internal/helpers"
	"github.com/robbyt/go-scriptbridge/platform"
)

func newStarlark(cfg Config) (platform.Runtime, error) {
	var opts []starlark.Option
	if cfg.LogHandler != nil {
		opts = append(opts, starlark.WithLogHandler(cfg.LogHandler))
	}
	if cfg.MaxDepth > 0 {
		opts = append(opts, starlark.WithMaxDepth(cfg.MaxDepth))
	}
	if cfg.DataProvider != nil {
		opts = append(opts, starlark.WithDataProvider(cfg.DataProvider))
	}
	return starlark.New(opts...)
}

func newRisor(cfg Config) (platform.Runtime, error) {
	var opts []risor.Option
	if cfg.LogHandler != nil {
		opts = append(opts, risor.WithLogHandler(cfg.LogHandler))
	}
	if cfg.MaxDepth > 0 {
		opts = append(opts, risor.WithMaxDepth(cfg.MaxDepth))
	}
	if cfg.DataProvider != nil {
		opts = append(opts, risor.WithDataProvider(cfg.DataProvider))
	}
	return risor.New(opts...)
}

// newExtism builds the WASM runtime. The module itself is read on first use, so a missing
// file surfaces from Execute as ErrRuntimeUnavailable.
func newExtism(cfg Config) (platform.Runtime, error) {
	var opts []extism.Option
	if cfg.LogHandler != nil {
		opts = append(opts, extism.WithLogHandler(cfg.LogHandler))
	}
	if cfg.MaxDepth > 0 {
		opts = append(opts, extism.WithMaxDepth(cfg.MaxDepth))
	}
	if cfg.DataProvider != nil {
		opts = append(opts, extism.WithDataProvider(cfg.DataProvider))
	}
	if cfg.EntryPoint != "" {
		opts = append(opts, extism.WithEntryPoint(cfg.EntryPoint))
	}

	wasmFile := cfg.WasmFile
	if wasmFile == "" {
		found, err := helpers.FindWasmFile(nil)
		if err != nil {
			return nil, err
		}
		wasmFile = found
	}
	opts = append(opts, extism.WithWasmFile(wasmFile))
	return extism.New(opts...)
}

// newOsascript ignores DataProvider: osascript has no way to receive input without rewriting
// the script.
func newOsascript(cfg Config) (platform.Runtime, error) {
	var opts []osascript.Option
	if cfg.LogHandler != nil {
		opts = append(opts, osascript.WithLogHandler(cfg.LogHandler))
	}
	if cfg.MaxDepth > 0 {
		opts = append(opts, osascript.WithMaxDepth(cfg.MaxDepth))
	}
	if cfg.Command != "" {
		opts = append(opts, osascript.WithCommand(cfg.Command))
	}
	return osascript.New(opts...)
}
