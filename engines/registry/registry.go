// Package registry maps runtime names to the factories that build them.
package registry

import (
	"fmt"
	"slices"
	"sync"

	"github.com/robbyt/go-scriptbridge/engines/types"
	"github.com/robbyt/go-scriptbridge/platform"
)

// Factory builds a runtime from cfg.
type Factory func(cfg Config) (platform.Runtime, error)

// Registry holds named runtime factories. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// New returns a registry holding the built-in runtimes.
func New() *Registry {
	r := NewEmpty()
	for name, factory := range builtins() {
		// built-in names are distinct and non-empty
		_ = r.Register(name.String(), factory)
	}
	return r
}

// NewEmpty returns a registry without any runtimes.
func NewEmpty() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under name.
func (r *Registry) Register(name string, factory Factory) error {
	if name == "" {
		return ErrEmptyName
	}
	if factory == nil {
		return fmt.Errorf("%w: %q", ErrNilFactory, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	r.factories[name] = factory
	return nil
}

// Open builds the runtime registered under name.
func (r *Registry) Open(name string, cfg Config) (platform.Runtime, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRuntime, name)
	}

	rt, err := factory(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s runtime: %w", name, err)
	}
	return rt, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// builtins returns the factories for every runtime in engines/types.
func builtins() map[types.Type]Factory {
	return map[types.Type]Factory{
		types.Starlark:  newStarlark,
		types.Risor:     newRisor,
		types.Extism:    newExtism,
		types.Osascript: newOsascript,
	}
}
