package compile

import (
	"context"
	"fmt"

	extismSDK "github.com/extism/go-sdk"

	"github.com/robbyt/go-scriptbridge/engines/extism/adapters"
)

// CompileBytes creates a compiled Extism plugin from raw WASM bytes
func CompileBytes(
	ctx context.Context,
	wasmBytes []byte,
	opts *Settings,
) (adapters.CompiledPlugin, error) {
	if len(wasmBytes) == 0 {
		return nil, ErrContentNil
	}
	if opts == nil {
		opts = WithDefaultCompileSettings()
	}

	manifest := extismSDK.Manifest{
		Wasm: []extismSDK.Wasm{
			extismSDK.WasmData{
				Data: wasmBytes,
			},
		},
	}

	config := extismSDK.PluginConfig{
		EnableWasi:    opts.EnableWASI,
		RuntimeConfig: opts.RuntimeConfig,
	}

	plugin, err := extismSDK.NewCompiledPlugin(ctx, manifest, config, opts.HostFunctions)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompileFailed, err)
	}
	return adapters.NewCompiledPluginAdapter(plugin), nil
}
