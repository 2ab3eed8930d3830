// Package starlark runs scripts on the go.starlark.net interpreter in-process.
package starlark

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"time"

	starlarkLib "go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/robbyt/go-scriptbridge/engines/starlark/internal"
	"github.com/robbyt/go-scriptbridge/engines/starlark/internal/compile"
	"github.com/robbyt/go-scriptbridge/internal/helpers"
	"github.com/robbyt/go-scriptbridge/platform/constants"
	"github.com/robbyt/go-scriptbridge/platform/data"
	"github.com/robbyt/go-scriptbridge/platform/value"
)

// Runtime executes Starlark scripts. Every Run uses a fresh thread and fresh globals, so a
// Runtime may be shared by concurrent executors.
//
// The script result is the global named by WithResultName ("result" by default), falling back
// to "_". A script that sets neither produces Null.
type Runtime struct {
	universe    starlarkLib.StringDict
	fileOptions *syntax.FileOptions
	resultName  string
	maxSteps    uint64
	maxDepth    int
	provider    data.Getter

	logHandler slog.Handler
	logger     *slog.Logger
}

// New creates a Starlark runtime.
func New(opts ...Option) (*Runtime, error) {
	r := &Runtime{
		universe:    internal.StarlarkModules(),
		fileOptions: compile.DefaultFileOptions(),
		resultName:  DefaultResultName,
		maxDepth:    value.DefaultMaxDepth,
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, fmt.Errorf("error applying option: %w", err)
		}
	}
	r.setupLogger()
	return r, nil
}

func (r *Runtime) String() string { return "starlark.Runtime" }

// ConcurrencySafe reports true: runs share no mutable interpreter state.
func (r *Runtime) ConcurrencySafe() bool { return true }

// Run compiles and executes script.
func (r *Runtime) Run(ctx context.Context, script string) (value.Value, error) {
	logger := r.logger.WithGroup("Run").With("script", helpers.Fingerprint(script))

	predeclared, err := r.prepareGlobals(ctx)
	if err != nil {
		return nil, err
	}

	prog, err := compile.Compile(script, r.fileOptions, predeclared)
	if err != nil {
		logger.DebugContext(ctx, "compile failed", "error", err)
		return nil, compileRecord(script, err)
	}

	thread := &starlarkLib.Thread{
		Name: "run",
		Print: func(thread *starlarkLib.Thread, msg string) {
			logger.InfoContext(ctx, msg, "starlark-thread", thread.Name)
		},
	}
	if r.maxSteps > 0 {
		thread.SetMaxExecutionSteps(r.maxSteps)
	}
	stop := context.AfterFunc(ctx, func() {
		thread.Cancel(context.Cause(ctx).Error())
	})
	defer stop()

	startTime := time.Now()
	globals, err := prog.Init(thread, predeclared)
	logger.DebugContext(ctx, "exec complete", "duration", time.Since(startTime), "steps", thread.ExecutionSteps())
	if err != nil {
		return nil, evalRecord(ctx, script, err)
	}

	return internal.ToValue(r.pickResult(globals), value.NewPath(r.maxDepth)), nil
}

// prepareGlobals merges the universe with the ctx global built from provider data.
func (r *Runtime) prepareGlobals(ctx context.Context) (starlarkLib.StringDict, error) {
	inputData := map[string]any{}
	if r.provider != nil {
		d, err := r.provider.GetData(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get input data: %w", err)
		}
		if d != nil {
			inputData = d
		}
	}

	input, err := internal.ConvertToStringDict(constants.Ctx, inputData)
	if err != nil {
		return nil, err
	}

	globals := make(starlarkLib.StringDict, len(r.universe)+len(input))
	maps.Copy(globals, r.universe)
	maps.Copy(globals, input)
	return globals, nil
}

func (r *Runtime) pickResult(globals starlarkLib.StringDict) starlarkLib.Value {
	if v, ok := globals[r.resultName]; ok && v != nil {
		return v
	}
	if v, ok := globals["_"]; ok && v != nil {
		return v
	}
	return starlarkLib.None
}
