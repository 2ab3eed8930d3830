package osascript

import (
	"errors"
	"log/slog"

	"github.com/robbyt/go-scriptbridge/internal/helpers"
)

// Option configures a Runtime.
type Option func(*Runtime) error

// WithLogHandler sets the log handler.
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

// WithRunner replaces the process runner.
func WithRunner(runner Runner) Option {
	return func(r *Runtime) error {
		if runner == nil {
			return errors.New("runner cannot be nil")
		}
		r.runner = runner
		return nil
	}
}

// WithCommand runs a different osascript binary with the default arguments.
func WithCommand(path string) Option {
	return func(r *Runtime) error {
		if path == "" {
			return errors.New("command path cannot be empty")
		}
		r.runner = &ExecRunner{Path: path, Args: DefaultArgs}
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

func (r *Runtime) setupLogger() {
	if r.logger != nil {
		r.logHandler = r.logger.Handler()
		return
	}
	r.logHandler, r.logger = helpers.SetupLogger(r.logHandler, "osascript", "Runtime")
}
