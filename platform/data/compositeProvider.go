package data

import (
	"context"
	"errors"
	"fmt"
	"maps"
)

// CompositeProvider combines multiple providers, with later providers
// overriding values from earlier ones in the chain.
type CompositeProvider struct {
	providers []Provider
}

// NewCompositeProvider creates a provider that queries given providers in order.
func NewCompositeProvider(providers ...Provider) *CompositeProvider {
	return &CompositeProvider{
		providers: providers,
	}
}

// GetData merges the data of every provider in order. It stops at the first provider error.
func (p *CompositeProvider) GetData(ctx context.Context) (map[string]any, error) {
	result := make(map[string]any)

	for i, provider := range p.providers {
		if provider == nil {
			continue
		}

		data, err := provider.GetData(ctx)
		if err != nil {
			return nil, fmt.Errorf("error from provider %d: %w", i, err)
		}

		result = deepMerge(result, data)
	}

	return result, nil
}

// deepMerge merges dst over src. Nested maps merge recursively; other values are replaced.
func deepMerge(src, dst map[string]any) map[string]any {
	result := maps.Clone(src)

	for k, dstVal := range dst {
		srcVal, exists := result[k]

		if !exists {
			result[k] = dstVal
			continue
		}

		srcMap, srcIsMap := srcVal.(map[string]any)
		dstMap, dstIsMap := dstVal.(map[string]any)

		if srcIsMap && dstIsMap {
			result[k] = deepMerge(srcMap, dstMap)
		} else {
			result[k] = dstVal
		}
	}

	return result
}

// AddDataToContext distributes data to all providers in the chain and returns the context
// produced by the ones that accepted it. StaticProvider refusals are expected and ignored
// unless every provider is static.
func (p *CompositeProvider) AddDataToContext(
	ctx context.Context,
	data ...map[string]any,
) (context.Context, error) {
	finalCtx := ctx

	var errs []error
	var staticErrs []error
	accepted, dynamic := 0, 0

	for i, provider := range p.providers {
		if provider == nil {
			continue
		}
		_, isStatic := provider.(*StaticProvider)
		if !isStatic {
			dynamic++
		}

		nextCtx, err := provider.AddDataToContext(finalCtx, data...)
		if err != nil {
			wrapped := fmt.Errorf("error from provider %d: %w", i, err)
			if isStatic && errors.Is(err, ErrStaticProviderNoRuntimeUpdates) {
				staticErrs = append(staticErrs, wrapped)
			} else {
				errs = append(errs, wrapped)
			}
			continue
		}
		finalCtx = nextCtx
		accepted++
	}

	if dynamic == 0 && len(staticErrs) > 0 {
		return ctx, errors.Join(staticErrs...)
	}
	if dynamic > 0 && accepted == 0 && len(errs) > 0 {
		return ctx, errors.Join(errs...)
	}
	return finalCtx, nil
}
