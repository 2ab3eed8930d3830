package starlark

import (
	"errors"
	"log/slog"

	"go.starlark.net/syntax"

	"github.com/robbyt/go-scriptbridge/internal/helpers"
	"github.com/robbyt/go-scriptbridge/platform/data"
)

// DefaultResultName is the global read as the script result.
const DefaultResultName = "result"

// Option configures a Runtime.
type Option func(*Runtime) error

// WithLogHandler sets the log handler. Script print() output is logged through it.
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

// WithResultName changes the global read as the script result.
func WithResultName(name string) Option {
	return func(r *Runtime) error {
		if name == "" {
			return errors.New("result name cannot be empty")
		}
		r.resultName = name
		return nil
	}
}

// WithMaxSteps bounds the number of computation steps a script may take. Zero means no bound.
func WithMaxSteps(steps uint64) Option {
	return func(r *Runtime) error {
		r.maxSteps = steps
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

// WithDataProvider exposes the provider's data to scripts as the ctx global.
func WithDataProvider(provider data.Getter) Option {
	return func(r *Runtime) error {
		if provider == nil {
			return errors.New("data provider cannot be nil")
		}
		r.provider = provider
		return nil
	}
}

// WithFileOptions replaces the dialect options used to parse scripts.
func WithFileOptions(opts *syntax.FileOptions) Option {
	return func(r *Runtime) error {
		if opts == nil {
			return errors.New("file options cannot be nil")
		}
		r.fileOptions = opts
		return nil
	}
}

func (r *Runtime) setupLogger() {
	if r.logger != nil {
		r.logHandler = r.logger.Handler()
		return
	}
	r.logHandler, r.logger = helpers.SetupLogger(r.logHandler, "starlark", "Runtime")
}
