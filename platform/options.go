package platform

import (
	"errors"
	"log/slog"

	"github.com/robbyt/go-scriptbridge/internal/helpers"
)

// Option configures an Executor.
type Option func(*Executor) error

// WithLogHandler sets the log handler for the executor.
func WithLogHandler(handler slog.Handler) Option {
	return func(e *Executor) error {
		if handler == nil {
			return errors.New("log handler cannot be nil")
		}
		e.logHandler = handler
		e.logger = nil
		return nil
	}
}

// WithLogger sets a specific logger for the executor.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		e.logger = logger
		e.logHandler = nil
		return nil
	}
}

// WithObserver registers an observer for start and finish events. It may be given more than
// once; observers are called in registration order. A panic in an observer is logged and
// does not affect the execution.
func WithObserver(fn Observer) Option {
	return func(e *Executor) error {
		if fn == nil {
			return errors.New("observer cannot be nil")
		}
		e.observers = append(e.observers, fn)
		return nil
	}
}

// WithID replaces the generated executor ID.
func WithID(id string) Option {
	return func(e *Executor) error {
		if id == "" {
			return errors.New("executor ID cannot be empty")
		}
		e.id = id
		return nil
	}
}

func (e *Executor) setupLogger() {
	if e.logger != nil {
		e.logHandler = e.logger.Handler()
		return
	}
	e.logHandler, e.logger = helpers.SetupLogger(e.logHandler, "platform", "Executor")
}
