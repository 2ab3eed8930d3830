// Package constants holds names shared between data providers and runtimes.
package constants

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

const (
	// InputData is the context key under which a ContextProvider stores per-call script input.
	InputData ContextKey = "script_input"

	// Ctx is the global name under which runtimes expose input data to scripts.
	Ctx = "ctx"
)
