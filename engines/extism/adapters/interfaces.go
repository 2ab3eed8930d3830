// Package adapters narrows the Extism SDK to the calls the runtime makes, so tests can
// replace the SDK with mocks.
package adapters

import (
	"context"

	extismSDK "github.com/extism/go-sdk"
)

// CompiledPlugin is an interface for abstracting the extismSDK.CompiledPlugin
type CompiledPlugin interface {
	Instance(ctx context.Context, config extismSDK.PluginInstanceConfig) (PluginInstance, error)
	Close(ctx context.Context) error
}

// PluginInstance is an interface for abstracting the extismSDK.Plugin
type PluginInstance interface {
	CallWithContext(ctx context.Context, name string, data []byte) (uint32, []byte, error)
	FunctionExists(name string) bool
	Close(ctx context.Context) error
}
