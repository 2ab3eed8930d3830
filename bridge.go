// Package scriptbridge runs scripts in a host scripting runtime and hands back a
// language-neutral result.
//
// The constructors here pair a runtime from engines/ with a one-shot platform.Executor:
//
//	exec, err := scriptbridge.NewStarlarkExecutor(handler)
//	if err != nil {
//		return err
//	}
//	if err := exec.Execute(ctx, "result = 1 + 1"); err != nil {
//		return err
//	}
//	v, _ := exec.Result()
package scriptbridge

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robbyt/go-scriptbridge/engines/extism"
	"github.com/robbyt/go-scriptbridge/engines/osascript"
	"github.com/robbyt/go-scriptbridge/engines/risor"
	"github.com/robbyt/go-scriptbridge/engines/starlark"
	"github.com/robbyt/go-scriptbridge/platform"
	"github.com/robbyt/go-scriptbridge/platform/data"
	"github.com/robbyt/go-scriptbridge/platform/value"
)

// NewExecutor binds rt to a new executor that logs through logHandler. A nil handler uses the
// default stderr logger.
func NewExecutor(rt platform.Runtime, logHandler slog.Handler) (*platform.Executor, error) {
	var opts []platform.Option
	if logHandler != nil {
		opts = append(opts, platform.WithLogHandler(logHandler))
	}
	return platform.New(rt, opts...)
}

// NewStarlarkExecutor creates an executor backed by a new Starlark runtime.
func NewStarlarkExecutor(logHandler slog.Handler, opts ...starlark.Option) (*platform.Executor, error) {
	if logHandler != nil {
		opts = append([]starlark.Option{starlark.WithLogHandler(logHandler)}, opts...)
	}
	rt, err := starlark.New(opts...)
	if err != nil {
		return nil, err
	}
	return NewExecutor(rt, logHandler)
}

// NewRisorExecutor creates an executor backed by a new Risor runtime.
func NewRisorExecutor(logHandler slog.Handler, opts ...risor.Option) (*platform.Executor, error) {
	if logHandler != nil {
		opts = append([]risor.Option{risor.WithLogHandler(logHandler)}, opts...)
	}
	rt, err := risor.New(opts...)
	if err != nil {
		return nil, err
	}
	return NewExecutor(rt, logHandler)
}

// NewOsascriptExecutor creates an executor that runs AppleScript through osascript.
func NewOsascriptExecutor(logHandler slog.Handler, opts ...osascript.Option) (*platform.Executor, error) {
	if logHandler != nil {
		opts = append([]osascript.Option{osascript.WithLogHandler(logHandler)}, opts...)
	}
	rt, err := osascript.New(opts...)
	if err != nil {
		return nil, err
	}
	return NewExecutor(rt, logHandler)
}

// NewExtismExecutor creates an executor backed by the bridge plugin in wasmFile.
func NewExtismExecutor(wasmFile string, logHandler slog.Handler, opts ...extism.Option) (*platform.Executor, error) {
	base := []extism.Option{extism.WithWasmFile(wasmFile)}
	if logHandler != nil {
		base = append(base, extism.WithLogHandler(logHandler))
	}
	rt, err := extism.New(append(base, opts...)...)
	if err != nil {
		return nil, err
	}
	return NewExecutor(rt, logHandler)
}

// NewStarlarkExecutorWithData creates a Starlark executor whose scripts see inputData as ctx.
func NewStarlarkExecutorWithData(inputData map[string]any, logHandler slog.Handler) (*platform.Executor, error) {
	return NewStarlarkExecutor(logHandler, starlark.WithDataProvider(data.NewStaticProvider(inputData)))
}

// NewRisorExecutorWithData creates a Risor executor whose scripts see inputData as ctx.
func NewRisorExecutorWithData(inputData map[string]any, logHandler slog.Handler) (*platform.Executor, error) {
	return NewRisorExecutor(logHandler, risor.WithDataProvider(data.NewStaticProvider(inputData)))
}

// Eval runs script on exec and returns the result. A script failure is returned as the
// *scripterr.Record describing it; use errors.As to inspect it.
func Eval(ctx context.Context, exec *platform.Executor, script string) (value.Value, error) {
	if err := exec.Execute(ctx, script); err != nil {
		return nil, err
	}
	if v, ok := exec.Result(); ok {
		return v, nil
	}
	if rec, ok := exec.Errors(); ok {
		return nil, rec
	}
	return nil, fmt.Errorf("executor %s finished without an outcome", exec.ID())
}
