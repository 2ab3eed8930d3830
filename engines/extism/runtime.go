// Package extism runs scripts inside a WebAssembly bridge plugin loaded with the Extism SDK.
//
// The plugin exports one function (DefaultEntryPoint unless configured otherwise) that takes
//
//	{"script": "...", "ctx": {...}}
//
// and answers either {"result": <descriptor>} or
// {"error": {"code": -2700, "message": "...", "brief": "...", "range": {"start": 0, "end": 1}}}.
package extism

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/robbyt/go-scriptbridge/engines/extism/adapters"
	"github.com/robbyt/go-scriptbridge/engines/extism/internal"
	"github.com/robbyt/go-scriptbridge/engines/extism/internal/compile"
	"github.com/robbyt/go-scriptbridge/internal/helpers"
	"github.com/robbyt/go-scriptbridge/platform"
	"github.com/robbyt/go-scriptbridge/platform/data"
	"github.com/robbyt/go-scriptbridge/platform/descriptor"
	"github.com/robbyt/go-scriptbridge/platform/value"
)

// Runtime executes scripts in a bridge plugin. The module is compiled once, on first use;
// every run gets its own plugin instance, so a Runtime may be shared by concurrent executors.
type Runtime struct {
	wasmBytes  []byte
	wasmFile   string
	entryPoint string
	settings   *compile.Settings
	provider   data.Getter
	maxDepth   int

	mu     sync.Mutex
	plugin adapters.CompiledPlugin
	// runs counts runs using plugin; it is replaced together with plugin.
	runs *sync.WaitGroup

	logHandler slog.Handler
	logger     *slog.Logger
}

// New creates an Extism runtime. One of WithWasmBytes, WithWasmFile or WithCompiledPlugin is
// required.
func New(opts ...Option) (*Runtime, error) {
	r := &Runtime{
		entryPoint: DefaultEntryPoint,
		settings:   compile.WithDefaultCompileSettings(),
		maxDepth:   value.DefaultMaxDepth,
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, fmt.Errorf("error applying option: %w", err)
		}
	}
	if r.plugin == nil && len(r.wasmBytes) == 0 && r.wasmFile == "" {
		return nil, ErrNoModule
	}
	r.setupLogger()
	return r, nil
}

func (r *Runtime) String() string { return "extism.Runtime" }

// ConcurrencySafe reports true: every run instantiates the plugin separately.
func (r *Runtime) ConcurrencySafe() bool { return true }

// compiledPlugin compiles the module on first use and registers a run against it; the caller
// must call done when it no longer uses the plugin. A failure is not cached, so a later run
// retries.
func (r *Runtime) compiledPlugin(ctx context.Context) (plugin adapters.CompiledPlugin, done func(), err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.plugin == nil {
		if err := r.compileLocked(ctx); err != nil {
			return nil, nil, err
		}
	}
	if r.runs == nil {
		r.runs = new(sync.WaitGroup)
	}
	r.runs.Add(1)
	return r.plugin, r.runs.Done, nil
}

func (r *Runtime) compileLocked(ctx context.Context) error {

	wasm := r.wasmBytes
	if r.wasmFile != "" {
		b, err := os.ReadFile(r.wasmFile)
		if err != nil {
			return fmt.Errorf("%w: %w", platform.ErrRuntimeUnavailable, err)
		}
		wasm = b
	}
	if len(wasm) == 0 {
		// only reachable after Close released a plugin given through WithCompiledPlugin
		return fmt.Errorf("%w: %w", platform.ErrRuntimeUnavailable, ErrNoModule)
	}

	plugin, err := compile.CompileBytes(ctx, wasm, r.settings)
	if err != nil {
		return fmt.Errorf("%w: %w", platform.ErrRuntimeUnavailable, err)
	}
	r.logger.DebugContext(ctx, "compiled wasm module", "size", len(wasm), "sha256", helpers.SHA256Bytes(wasm))
	r.plugin = plugin
	return nil
}

// Run sends script to the plugin and converts the reply.
func (r *Runtime) Run(ctx context.Context, script string) (value.Value, error) {
	logger := r.logger.WithGroup("Run").With("script", helpers.Fingerprint(script))

	plugin, done, err := r.compiledPlugin(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	inputData, err := r.loadInputData(ctx)
	if err != nil {
		return nil, err
	}
	input, err := internal.EncodeRequest(script, inputData)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal plugin input: %w", err)
	}

	instance, err := plugin.Instance(ctx, adapters.NewPluginInstanceConfig())
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create plugin instance: %w", platform.ErrRuntimeUnavailable, err)
	}
	defer func() {
		if err := instance.Close(ctx); err != nil {
			logger.WarnContext(ctx, "failed to close plugin instance", "error", err)
		}
	}()

	if !instance.FunctionExists(r.entryPoint) {
		return nil, fmt.Errorf("%w: %w: %s", platform.ErrRuntimeUnavailable, ErrEntryPointNotFound, r.entryPoint)
	}

	startTime := time.Now()
	exit, output, err := instance.CallWithContext(ctx, r.entryPoint, input)
	logger.DebugContext(ctx, "call complete", "duration", time.Since(startTime), "exit", exit)
	if err != nil || exit != 0 {
		return nil, callRecord(ctx, exit, err)
	}

	resp, err := internal.DecodeResponse(output)
	if err != nil {
		logger.WarnContext(ctx, "plugin replied outside the protocol", "error", err)
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error.Record()
	}
	return descriptor.ToValueDepth(resp.Result, r.maxDepth), nil
}

func (r *Runtime) loadInputData(ctx context.Context) (map[string]any, error) {
	if r.provider == nil {
		return nil, nil
	}
	inputData, err := r.provider.GetData(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get input data: %w", err)
	}
	return inputData, nil
}

// Close releases the compiled plugin after the runs still using it have finished. A later Run
// compiles the module again.
func (r *Runtime) Close(ctx context.Context) error {
	r.mu.Lock()
	plugin, runs := r.plugin, r.runs
	r.plugin, r.runs = nil, nil
	r.mu.Unlock()

	if plugin == nil {
		return nil
	}
	if runs != nil {
		runs.Wait()
	}
	return plugin.Close(ctx)
}
