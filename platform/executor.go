// Package platform holds the runtime-neutral execution contract: the one-shot Executor, the
// Runtime boundary it drives, and the Outcome it records.
package platform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/robbyt/go-scriptbridge/internal/helpers"
	"github.com/robbyt/go-scriptbridge/platform/scripterr"
	"github.com/robbyt/go-scriptbridge/platform/value"
)

// Executor runs one script against a Runtime and holds the single outcome.
//
// An Executor is one-shot: the first Execute that reaches the runtime decides the outcome and
// every later call fails with ErrAlreadyExecuted. A call that fails with ErrRuntimeUnavailable
// records nothing and leaves the executor ready for another attempt.
//
// Result, Errors, Outcome and State are safe to call from any goroutine at any time.
type Executor struct {
	id         string
	runtime    Runtime
	observers  []Observer
	logHandler slog.Handler
	logger     *slog.Logger

	state   atomic.Int32
	outcome atomic.Pointer[Outcome]
}

// New creates an Executor bound to rt.
func New(rt Runtime, opts ...Option) (*Executor, error) {
	if rt == nil {
		return nil, ErrNilRuntime
	}

	e := &Executor{
		id:      uuid.NewString(),
		runtime: rt,
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, fmt.Errorf("error applying option: %w", err)
		}
	}
	e.setupLogger()
	e.logger = e.logger.With("executorID", e.id)
	return e, nil
}

// ID returns the executor's identifier.
func (e *Executor) ID() string { return e.id }

func (e *Executor) String() string { return "platform.Executor" }

// State returns the current lifecycle state.
func (e *Executor) State() State { return State(e.state.Load()) }

// Outcome returns the recorded outcome, or nil before an execution has completed. A Failure
// carries its own copy of the error record.
func (e *Executor) Outcome() Outcome {
	p := e.outcome.Load()
	if p == nil {
		return nil
	}
	if f, ok := (*p).(Failure); ok {
		return Failure{Record: f.Record.Clone()}
	}
	return *p
}

// Result returns the value of a successful execution.
func (e *Executor) Result() (value.Value, bool) {
	s, ok := e.Outcome().(Success)
	if !ok {
		return nil, false
	}
	return s.Value, true
}

// Errors returns the error record of a failed execution.
func (e *Executor) Errors() (*scripterr.Record, bool) {
	f, ok := e.Outcome().(Failure)
	if !ok {
		return nil, false
	}
	return f.Record, true
}

// Execute runs script once. It blocks until the runtime returns or ctx ends.
//
// A script failure is not an error of Execute: it is recorded and available from Errors.
// Execute returns an error only for misuse (ErrEmptyScript, ErrAlreadyExecuted) or when the
// runtime cannot be reached (ErrRuntimeUnavailable).
func (e *Executor) Execute(ctx context.Context, script string) error {
	logger := e.logger.WithGroup("Execute")

	if e.State() != StateUninitialized {
		return ErrAlreadyExecuted
	}
	if strings.TrimSpace(script) == "" {
		return ErrEmptyScript
	}
	if !e.state.CompareAndSwap(int32(StateUninitialized), int32(StateRunning)) {
		return ErrAlreadyExecuted
	}

	fingerprint := helpers.Fingerprint(script)
	logger.DebugContext(ctx, "starting execution", "script", fingerprint, "runtime", fmt.Sprintf("%T", e.runtime))
	e.notify(ctx, Event{Type: EventStarted, ExecutorID: e.id, Script: script})

	start := time.Now()
	result, err := runLocked(ctx, e.runtime, script)
	duration := time.Since(start)

	if err != nil && errors.Is(err, ErrRuntimeUnavailable) {
		e.state.Store(int32(StateUninitialized))
		logger.ErrorContext(ctx, "runtime unavailable", "script", fingerprint, "error", err)
		e.notify(ctx, Event{
			Type:       EventFinished,
			ExecutorID: e.id,
			Script:     script,
			Err:        err,
			Duration:   duration,
		})
		return err
	}

	var out Outcome
	if err != nil {
		rec := toRecord(err)
		out = Failure{Record: rec}
		logger.DebugContext(ctx, "script failed",
			"script", fingerprint, "code", rec.Code, "category", rec.Category(), "duration", duration)
	} else {
		if result == nil {
			result = value.Null{}
		}
		out = Success{Value: result}
		logger.DebugContext(ctx, "script succeeded",
			"script", fingerprint, "kind", result.Kind(), "duration", duration)
	}

	e.outcome.Store(&out)
	if out.Succeeded() {
		e.state.Store(int32(StateSucceeded))
	} else {
		e.state.Store(int32(StateFailed))
	}

	e.notify(ctx, Event{
		Type:       EventFinished,
		ExecutorID: e.id,
		Script:     script,
		Outcome:    e.Outcome(),
		Duration:   duration,
	})
	return nil
}

// toRecord extracts the script error record from err, falling back to a code 0 record with
// the raw message.
func toRecord(err error) *scripterr.Record {
	var rec *scripterr.Record
	if errors.As(err, &rec) && rec != nil {
		return rec.Clone()
	}
	return scripterr.Unknown(err.Error())
}

// notify delivers ev to every observer. A panicking observer is logged and skipped; it never
// changes the executor's state.
func (e *Executor) notify(ctx context.Context, ev Event) {
	for _, fn := range e.observers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					e.logger.ErrorContext(ctx, "observer panicked", "event", ev.Type, "panic", r)
				}
			}()
			fn(ev)
		}()
	}
}
