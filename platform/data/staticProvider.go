package data

import (
	"context"
	"errors"
	"maps"
)

// ErrStaticProviderNoRuntimeUpdates is returned by StaticProvider.AddDataToContext.
var ErrStaticProviderNoRuntimeUpdates = errors.New("static provider does not accept runtime updates")

// StaticProvider returns the same input for every execution.
type StaticProvider struct {
	data map[string]any
}

// NewStaticProvider creates a StaticProvider. A nil map is treated as empty.
func NewStaticProvider(data map[string]any) *StaticProvider {
	if data == nil {
		data = make(map[string]any)
	}
	return &StaticProvider{data: data}
}

// GetData returns a copy of the static data regardless of the context.
func (p *StaticProvider) GetData(_ context.Context) (map[string]any, error) {
	return maps.Clone(p.data), nil
}

// AddDataToContext always fails; static input is fixed at construction.
func (p *StaticProvider) AddDataToContext(
	ctx context.Context,
	_ ...map[string]any,
) (context.Context, error) {
	return ctx, ErrStaticProviderNoRuntimeUpdates
}
