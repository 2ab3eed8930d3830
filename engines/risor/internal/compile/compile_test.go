package compile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		script  string
		globals []string
		wantErr error
	}{
		{"simple expression", "1 + 2", nil, nil},
		{"uses builtins", `len([1, 2, 3])`, nil, nil},
		{"uses injected global", `ctx["name"]`, []string{"ctx"}, nil},
		{"empty", "", nil, ErrContentEmpty},
		{"syntax error", "func (", nil, ErrParseFailed},
		{"undefined global", `ctx["name"]`, nil, ErrCompileFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			code, err := CompileWithGlobals(t.Context(), tt.script, tt.globals)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, code)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, code)
		})
	}
}
