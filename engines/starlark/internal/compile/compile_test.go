package compile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	starlarkLib "go.starlark.net/starlark"
	"go.starlark.net/resolve"
	"go.starlark.net/syntax"
)

func TestCompile(t *testing.T) {
	t.Parallel()

	predeclared := starlarkLib.StringDict{"ctx": starlarkLib.None}

	t.Run("valid", func(t *testing.T) {
		t.Parallel()
		prog, err := Compile("result = ctx", nil, predeclared)
		require.NoError(t, err)
		require.NotNil(t, prog)
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()
		_, err := Compile("", nil, predeclared)
		require.ErrorIs(t, err, ErrContentEmpty)
	})

	t.Run("parse error", func(t *testing.T) {
		t.Parallel()
		_, err := Compile("x = )", nil, predeclared)
		require.ErrorIs(t, err, ErrCompileFailed)
		var syntaxErr syntax.Error
		require.ErrorAs(t, err, &syntaxErr)
		assert.Equal(t, Filename, syntaxErr.Pos.Filename())
	})

	t.Run("resolve error", func(t *testing.T) {
		t.Parallel()
		_, err := Compile("result = missing", nil, predeclared)
		require.ErrorIs(t, err, ErrCompileFailed)
		var resolveErrs resolve.ErrorList
		require.ErrorAs(t, err, &resolveErrs)
		assert.Equal(t, "undefined: missing", resolveErrs[0].Msg)
	})

	t.Run("while needs option", func(t *testing.T) {
		t.Parallel()
		_, err := Compile("while False:\n    pass", &syntax.FileOptions{}, predeclared)
		require.Error(t, err)

		_, err = Compile("while False:\n    pass", DefaultFileOptions(), predeclared)
		require.NoError(t, err)
	})
}
