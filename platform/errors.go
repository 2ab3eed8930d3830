package platform

import "errors"

var (
	// ErrRuntimeUnavailable means the host runtime could not be reached at all: it is absent,
	// failed to load, or the invocation was denied before the script ran. It is returned from
	// Execute and never recorded as a script error.
	ErrRuntimeUnavailable = errors.New("script runtime unavailable")

	// ErrAlreadyExecuted is returned when Execute is called on an executor that already holds
	// an outcome or is running.
	ErrAlreadyExecuted = errors.New("executor has already executed a script")

	// ErrEmptyScript is returned when the script text is empty or only whitespace.
	ErrEmptyScript = errors.New("script text is empty")

	// ErrNilRuntime is returned by New when no runtime is given.
	ErrNilRuntime = errors.New("runtime is nil")
)
