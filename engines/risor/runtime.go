// Package risor runs scripts on the Risor virtual machine in-process.
package risor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	risorLib "github.com/risor-io/risor"

	"github.com/robbyt/go-scriptbridge/engines/risor/internal"
	"github.com/robbyt/go-scriptbridge/engines/risor/internal/compile"
	"github.com/robbyt/go-scriptbridge/internal/helpers"
	"github.com/robbyt/go-scriptbridge/platform/constants"
	"github.com/robbyt/go-scriptbridge/platform/data"
	"github.com/robbyt/go-scriptbridge/platform/value"
)

// Runtime executes Risor scripts. The result is the value of the script's last expression.
// Each Run compiles and evaluates on a fresh VM, so a Runtime may be shared by concurrent
// executors.
type Runtime struct {
	provider data.Getter
	maxDepth int

	logHandler slog.Handler
	logger     *slog.Logger
}

// New creates a Risor runtime.
func New(opts ...Option) (*Runtime, error) {
	r := &Runtime{maxDepth: value.DefaultMaxDepth}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, fmt.Errorf("error applying option: %w", err)
		}
	}
	r.setupLogger()
	return r, nil
}

func (r *Runtime) String() string { return "risor.Runtime" }

// ConcurrencySafe reports true: every run gets its own VM.
func (r *Runtime) ConcurrencySafe() bool { return true }

// Run compiles and executes script.
func (r *Runtime) Run(ctx context.Context, script string) (value.Value, error) {
	logger := r.logger.WithGroup("Run").With("script", helpers.Fingerprint(script))

	if err := ctx.Err(); err != nil {
		return nil, evalRecord(ctx, err)
	}

	inputData, err := r.loadInputData(ctx)
	if err != nil {
		return nil, err
	}

	bytecode, err := compile.CompileWithGlobals(ctx, script, []string{constants.Ctx})
	if err != nil {
		logger.DebugContext(ctx, "compile failed", "error", err)
		return nil, compileRecord(err)
	}

	startTime := time.Now()
	result, err := risorLib.EvalCode(ctx, bytecode, internal.ConvertToRisorOptions(constants.Ctx, inputData)...)
	logger.DebugContext(ctx, "exec complete", "duration", time.Since(startTime))
	if err != nil {
		return nil, evalRecord(ctx, err)
	}
	if scriptErr := internal.ScriptError(result); scriptErr != nil {
		return nil, evalRecord(ctx, scriptErr)
	}

	return internal.ToValue(result, value.NewPath(r.maxDepth)), nil
}

// loadInputData retrieves input data from the provider, or an empty map without one.
func (r *Runtime) loadInputData(ctx context.Context) (map[string]any, error) {
	if r.provider == nil {
		return make(map[string]any), nil
	}
	inputData, err := r.provider.GetData(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get input data: %w", err)
	}
	if inputData == nil {
		inputData = make(map[string]any)
	}
	return inputData, nil
}
