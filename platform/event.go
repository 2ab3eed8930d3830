package platform

import "time"

// EventType distinguishes the notifications sent to observers.
type EventType int

const (
	EventStarted EventType = iota
	EventFinished
)

func (t EventType) String() string {
	if t == EventStarted {
		return "started"
	}
	return "finished"
}

// Event is sent to observers when an execution starts and when it finishes.
type Event struct {
	Type       EventType
	ExecutorID string
	Script     string

	// Outcome is set on finished events of executions that recorded one.
	Outcome Outcome

	// Err is set on finished events when Execute returned an error, for example
	// ErrRuntimeUnavailable.
	Err error

	// Duration is the time spent in the runtime, set on finished events.
	Duration time.Duration
}

// Observer receives execution events. Observers run synchronously on the executing goroutine
// after the runtime lock has been released.
type Observer func(Event)
