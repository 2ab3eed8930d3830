package platform

import (
	"github.com/robbyt/go-scriptbridge/platform/scripterr"
	"github.com/robbyt/go-scriptbridge/platform/value"
)

// Outcome is the single result of an execution: either Success or Failure. A nil Outcome means
// no execution has completed.
type Outcome interface {
	// Succeeded reports whether the outcome carries a value.
	Succeeded() bool
	outcome()
}

// Success holds the value produced by a script.
type Success struct {
	Value value.Value
}

func (Success) Succeeded() bool { return true }
func (Success) outcome()        {}

// Failure holds the error record produced by a script.
type Failure struct {
	Record *scripterr.Record
}

func (Failure) Succeeded() bool { return false }
func (Failure) outcome()        {}

// State is the lifecycle position of an Executor.
type State int32

const (
	StateUninitialized State = iota
	StateRunning
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateRunning:
		return "running"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}
