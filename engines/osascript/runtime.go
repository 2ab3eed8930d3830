// Package osascript runs AppleScript (or any OSA language) through the macOS osascript tool
// and parses the printed result back into the value model.
package osascript

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/robbyt/go-scriptbridge/engines/osascript/internal/sourceform"
	"github.com/robbyt/go-scriptbridge/internal/helpers"
	"github.com/robbyt/go-scriptbridge/platform/descriptor"
	"github.com/robbyt/go-scriptbridge/platform/scripterr"
	"github.com/robbyt/go-scriptbridge/platform/value"
)

// Runtime drives one osascript process per run. It does not report itself concurrency safe,
// so executors serialize calls into it.
type Runtime struct {
	runner   Runner
	maxDepth int

	logHandler slog.Handler
	logger     *slog.Logger
}

// New creates an osascript runtime using the osascript binary on PATH.
func New(opts ...Option) (*Runtime, error) {
	r := &Runtime{
		runner:   NewExecRunner(),
		maxDepth: value.DefaultMaxDepth,
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, fmt.Errorf("error applying option: %w", err)
		}
	}
	r.setupLogger()
	return r, nil
}

func (r *Runtime) String() string { return "osascript.Runtime" }

// Run executes script and converts its printed result.
func (r *Runtime) Run(ctx context.Context, script string) (value.Value, error) {
	logger := r.logger.WithGroup("Run").With("script", helpers.Fingerprint(script))

	// The deadline may already have passed while waiting for the shared runtime lock.
	if rec := contextRecord(ctx); rec != nil {
		logger.DebugContext(ctx, "context done before start", "code", rec.Code)
		return nil, rec
	}

	startTime := time.Now()
	out, err := r.runner.Run(ctx, script)
	logger.DebugContext(ctx, "process finished",
		"duration", time.Since(startTime), "exitCode", out.ExitCode)
	if rec := contextRecord(ctx); rec != nil {
		return nil, rec
	}
	if err != nil {
		return nil, err
	}

	if out.ExitCode != 0 {
		rec := parseStderr(script, string(out.Stderr))
		logger.DebugContext(ctx, "script failed", "code", rec.Code, "error", rec.Message)
		return nil, rec
	}

	if stderr := strings.TrimSpace(string(out.Stderr)); stderr != "" {
		logger.WarnContext(ctx, "osascript wrote to stderr on success",
			"stderr", stderr,
			"scriptingAddition", strings.Contains(stderr, scriptingAdditionWarning))
	}

	d, err := sourceform.Parse(string(out.Stdout))
	if err != nil {
		logger.WarnContext(ctx, "result not in source form", "error", err)
		return value.Unrepresentable{
			Tag:    "source",
			Raw:    out.Stdout,
			Reason: "unparsed result: " + err.Error(),
		}, nil
	}
	return descriptor.ToValueDepth(d, r.maxDepth), nil
}

// contextRecord maps a finished context to its script error record, or nil while ctx is live.
func contextRecord(ctx context.Context) *scripterr.Record {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return scripterr.New(scripterr.CodeTimedOut, "osascript did not finish before the deadline")
	case errors.Is(ctx.Err(), context.Canceled):
		return scripterr.New(scripterr.CodeUserCancelled, "osascript run cancelled")
	}
	return nil
}
