package data

import (
	"context"
	"errors"
	"fmt"
	"maps"

	"github.com/robbyt/go-scriptbridge/platform/constants"
)

// ContextProvider retrieves and stores script input in the context using a specified key.
type ContextProvider struct {
	contextKey constants.ContextKey
}

// NewContextProvider creates a new ContextProvider with the given context key.
func NewContextProvider(contextKey constants.ContextKey) *ContextProvider {
	return &ContextProvider{
		contextKey: contextKey,
	}
}

// GetData extracts data from the context using the configured context key.
func (p *ContextProvider) GetData(ctx context.Context) (map[string]any, error) {
	if p.contextKey == "" {
		return nil, errors.New("context key is empty")
	}

	v := ctx.Value(p.contextKey)
	if v == nil {
		return make(map[string]any), nil
	}

	d, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("invalid input data type: expected map[string]any, got %T", v)
	}
	return d, nil
}

// AddDataToContext merges the provided maps into the data already stored in the context.
// Nested maps are merged recursively; any other value replaces the existing one.
func (p *ContextProvider) AddDataToContext(
	ctx context.Context,
	data ...map[string]any,
) (context.Context, error) {
	if p.contextKey == "" {
		return ctx, errors.New("context key is empty")
	}

	var errz []error
	toStore := make(map[string]any)

	if existing, ok := ctx.Value(p.contextKey).(map[string]any); ok {
		maps.Copy(toStore, existing)
	}

	for _, dataMap := range data {
		for key, v := range dataMap {
			if key == "" {
				errz = append(errz, errors.New("empty keys are not allowed"))
				continue
			}
			processed, err := processValue(v)
			if err != nil {
				errz = append(errz, fmt.Errorf("processing value for key '%s': %w", key, err))
				continue
			}
			mergeIntoMap(toStore, key, processed)
		}
	}

	return context.WithValue(ctx, p.contextKey, toStore), errors.Join(errz...)
}

// processValue copies nested maps so later merges never write into caller owned data.
func processValue(v any) (any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return v, nil
	}
	result := make(map[string]any, len(m))
	for k, val := range m {
		if k == "" {
			return nil, errors.New("empty keys are not allowed in nested maps")
		}
		processed, err := processValue(val)
		if err != nil {
			return nil, fmt.Errorf("processing nested value for key '%s': %w", k, err)
		}
		result[k] = processed
	}
	return result, nil
}

func mergeIntoMap(target map[string]any, key string, v any) {
	if newMap, ok := v.(map[string]any); ok {
		if existingMap, ok := target[key].(map[string]any); ok {
			merged := maps.Clone(existingMap)
			for k, nv := range newMap {
				mergeIntoMap(merged, k, nv)
			}
			target[key] = merged
			return
		}
	}
	target[key] = v
}
