package data

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robbyt/go-scriptbridge/platform/constants"
)

var (
	simpleData = map[string]any{
		"string": "value",
		"int":    42,
		"bool":   true,
	}

	complexData = map[string]any{
		"string": "value",
		"nested": map[string]any{
			"key":   "nested value",
			"inner": map[string]any{"deep": "very deep"},
		},
		"array": []any{"one", "two", "three"},
	}
)

func TestStaticProvider(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input map[string]any
		want  map[string]any
	}{
		{"nil data", nil, map[string]any{}},
		{"simple data", simpleData, simpleData},
		{"complex data", complexData, complexData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			provider := NewStaticProvider(tt.input)

			got, err := provider.GetData(t.Context())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			got["added"] = true
			again, err := provider.GetData(t.Context())
			require.NoError(t, err)
			assert.NotContains(t, again, "added")

			ctx := t.Context()
			newCtx, err := provider.AddDataToContext(ctx, map[string]any{"x": 1})
			require.ErrorIs(t, err, ErrStaticProviderNoRuntimeUpdates)
			assert.Equal(t, ctx, newCtx)
		})
	}
}

func TestContextProvider(t *testing.T) {
	t.Parallel()

	t.Run("empty context", func(t *testing.T) {
		t.Parallel()
		p := NewContextProvider(constants.InputData)
		got, err := p.GetData(t.Context())
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("empty key", func(t *testing.T) {
		t.Parallel()
		p := NewContextProvider("")
		_, err := p.GetData(t.Context())
		require.Error(t, err)
		_, err = p.AddDataToContext(t.Context(), simpleData)
		require.Error(t, err)
	})

	t.Run("wrong type in context", func(t *testing.T) {
		t.Parallel()
		p := NewContextProvider(constants.InputData)
		ctx := context.WithValue(t.Context(), constants.InputData, "not a map")
		_, err := p.GetData(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expected map[string]any, got string")
	})

	t.Run("merges successive calls", func(t *testing.T) {
		t.Parallel()
		p := NewContextProvider(constants.InputData)

		ctx, err := p.AddDataToContext(t.Context(), map[string]any{
			"user":  map[string]any{"name": "ada", "roles": []any{"admin"}},
			"count": 1,
		})
		require.NoError(t, err)
		ctx, err = p.AddDataToContext(ctx,
			map[string]any{"user": map[string]any{"email": "ada@example.com"}},
			map[string]any{"count": 2},
		)
		require.NoError(t, err)

		got, err := p.GetData(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{
			"user": map[string]any{
				"name":  "ada",
				"roles": []any{"admin"},
				"email": "ada@example.com",
			},
			"count": 2,
		}, got)
	})

	t.Run("does not write into caller maps", func(t *testing.T) {
		t.Parallel()
		p := NewContextProvider(constants.InputData)
		first := map[string]any{"user": map[string]any{"name": "ada"}}

		ctx, err := p.AddDataToContext(t.Context(), first)
		require.NoError(t, err)
		_, err = p.AddDataToContext(ctx, map[string]any{"user": map[string]any{"age": 36}})
		require.NoError(t, err)

		assert.Equal(t, map[string]any{"user": map[string]any{"name": "ada"}}, first)
	})

	t.Run("empty keys are reported", func(t *testing.T) {
		t.Parallel()
		p := NewContextProvider(constants.InputData)
		ctx, err := p.AddDataToContext(t.Context(),
			map[string]any{"": 1, "ok": 2},
			map[string]any{"nested": map[string]any{"": 3}},
		)
		require.Error(t, err)
		got, getErr := p.GetData(ctx)
		require.NoError(t, getErr)
		assert.Equal(t, map[string]any{"ok": 2}, got)
	})
}

func TestCompositeProvider(t *testing.T) {
	t.Parallel()

	t.Run("later providers override", func(t *testing.T) {
		t.Parallel()
		static := NewStaticProvider(map[string]any{
			"config": map[string]any{"mode": "default", "retries": 3},
			"name":   "static",
		})
		dynamic := NewContextProvider(constants.InputData)
		composite := NewCompositeProvider(static, nil, dynamic)

		ctx, err := composite.AddDataToContext(t.Context(), map[string]any{
			"config": map[string]any{"mode": "fast"},
		})
		require.NoError(t, err)

		got, err := composite.GetData(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{
			"config": map[string]any{"mode": "fast", "retries": 3},
			"name":   "static",
		}, got)
	})

	t.Run("only static providers", func(t *testing.T) {
		t.Parallel()
		composite := NewCompositeProvider(NewStaticProvider(simpleData))
		_, err := composite.AddDataToContext(t.Context(), simpleData)
		require.ErrorIs(t, err, ErrStaticProviderNoRuntimeUpdates)
	})

	t.Run("get error stops the chain", func(t *testing.T) {
		t.Parallel()
		bad := NewContextProvider(constants.InputData)
		ctx := context.WithValue(t.Context(), constants.InputData, 42)
		composite := NewCompositeProvider(NewStaticProvider(simpleData), bad)
		_, err := composite.GetData(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "error from provider 1")
	})

	t.Run("all dynamic providers fail", func(t *testing.T) {
		t.Parallel()
		composite := NewCompositeProvider(NewContextProvider(""))
		ctx := t.Context()
		got, err := composite.AddDataToContext(ctx, simpleData)
		require.Error(t, err)
		assert.Equal(t, ctx, got)
	})
}
