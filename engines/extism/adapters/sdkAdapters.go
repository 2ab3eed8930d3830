package adapters

import (
	"context"

	extismSDK "github.com/extism/go-sdk"
	"github.com/tetratelabs/wazero"
)

type sdkCompiledPlugin struct {
	plugin *extismSDK.CompiledPlugin
}

// NewCompiledPluginAdapter wraps an SDK compiled plugin. It returns nil for a nil plugin.
func NewCompiledPluginAdapter(plugin *extismSDK.CompiledPlugin) CompiledPlugin {
	if plugin == nil {
		return nil
	}
	return &sdkCompiledPlugin{plugin: plugin}
}

func (c *sdkCompiledPlugin) Instance(
	ctx context.Context,
	config extismSDK.PluginInstanceConfig,
) (PluginInstance, error) {
	instance, err := c.plugin.Instance(ctx, config)
	if err != nil {
		return nil, err
	}
	return &sdkPluginAdapter{plugin: instance}, nil
}

func (c *sdkCompiledPlugin) Close(ctx context.Context) error {
	return c.plugin.Close(ctx)
}

type sdkPluginAdapter struct {
	plugin *extismSDK.Plugin
}

func (p *sdkPluginAdapter) CallWithContext(ctx context.Context, name string, data []byte) (uint32, []byte, error) {
	return p.plugin.CallWithContext(ctx, name, data)
}

func (p *sdkPluginAdapter) FunctionExists(name string) bool {
	return p.plugin.FunctionExists(name)
}

func (p *sdkPluginAdapter) Close(ctx context.Context) error {
	return p.plugin.Close(ctx)
}

// NewPluginInstanceConfig returns the per-run instance configuration. Plugins see the host's
// wall clock so they can time themselves.
func NewPluginInstanceConfig() extismSDK.PluginInstanceConfig {
	return extismSDK.PluginInstanceConfig{
		ModuleConfig: wazero.NewModuleConfig().WithSysWalltime(),
	}
}
