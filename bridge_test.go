package scriptbridge_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	scriptbridge "github.com/robbyt/go-scriptbridge"
	"github.com/robbyt/go-scriptbridge/engines/mocks"
	"github.com/robbyt/go-scriptbridge/engines/osascript"
	"github.com/robbyt/go-scriptbridge/engines/starlark"
	"github.com/robbyt/go-scriptbridge/platform"
	"github.com/robbyt/go-scriptbridge/platform/scripterr"
	"github.com/robbyt/go-scriptbridge/platform/value"
)

func getLogHandler() slog.Handler {
	return slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn})
}

func TestQuickStart(t *testing.T) {
	t.Parallel()

	script := `
name = ctx["name"]
p = "!" if ctx.get("excited") else "."
message = "Hello, " + name + p
result = {"greeting": message, "length": len(message)}
`
	exec, err := scriptbridge.NewStarlarkExecutorWithData(map[string]any{"name": "World"}, getLogHandler())
	require.NoError(t, err)

	result, err := scriptbridge.Eval(context.Background(), exec, script)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"greeting": "Hello, World.", "length": int64(13)}, result.Interface())
}

func TestRisorWithData(t *testing.T) {
	t.Parallel()

	script := `
message := "Hello, " + ctx["name"] + "!"
{"greeting": message}
`
	exec, err := scriptbridge.NewRisorExecutorWithData(map[string]any{"name": "cats"}, getLogHandler())
	require.NoError(t, err)

	result, err := scriptbridge.Eval(context.Background(), exec, script)
	require.NoError(t, err)
	rec, ok := result.(*value.Record)
	require.True(t, ok)
	greeting, ok := rec.Get("greeting")
	require.True(t, ok)
	assert.Equal(t, value.Text("Hello, cats!"), greeting)
}

func TestEvalScriptError(t *testing.T) {
	t.Parallel()

	exec, err := scriptbridge.NewStarlarkExecutor(nil, starlark.WithResultName("out"))
	require.NoError(t, err)

	_, err = scriptbridge.Eval(context.Background(), exec, "out = 1 // 0")
	var rec *scripterr.Record
	require.ErrorAs(t, err, &rec)
	assert.Equal(t, scripterr.CodeGeneric, rec.Code)

	errRec, ok := exec.Errors()
	require.True(t, ok)
	assert.Equal(t, errRec, rec)
}

func TestEvalMisuse(t *testing.T) {
	t.Parallel()

	exec, err := scriptbridge.NewRisorExecutor(getLogHandler())
	require.NoError(t, err)

	_, err = scriptbridge.Eval(context.Background(), exec, "   ")
	require.ErrorIs(t, err, platform.ErrEmptyScript)

	_, err = scriptbridge.Eval(context.Background(), exec, "1")
	require.NoError(t, err)
	_, err = scriptbridge.Eval(context.Background(), exec, "2")
	require.ErrorIs(t, err, platform.ErrAlreadyExecuted)
}

func TestNewExecutor(t *testing.T) {
	t.Parallel()

	t.Run("nil runtime", func(t *testing.T) {
		t.Parallel()
		_, err := scriptbridge.NewExecutor(nil, nil)
		require.ErrorIs(t, err, platform.ErrNilRuntime)
	})

	t.Run("custom runtime", func(t *testing.T) {
		t.Parallel()
		rt := &mocks.Runtime{}
		rt.On("Run", mock.Anything, "ping").Return(value.Text("pong"), nil).Once()

		exec, err := scriptbridge.NewExecutor(rt, getLogHandler())
		require.NoError(t, err)
		result, err := scriptbridge.Eval(context.Background(), exec, "ping")
		require.NoError(t, err)
		assert.Equal(t, value.Text("pong"), result)
		rt.AssertExpectations(t)
	})
}

func TestConstructorOptionErrors(t *testing.T) {
	t.Parallel()

	_, err := scriptbridge.NewStarlarkExecutor(nil, starlark.WithResultName(""))
	require.Error(t, err)

	_, err = scriptbridge.NewOsascriptExecutor(nil, osascript.WithCommand(""))
	require.Error(t, err)

	_, err = scriptbridge.NewExtismExecutor("", nil)
	require.Error(t, err)
}

func TestUnavailableRuntimes(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	osaExec, err := scriptbridge.NewOsascriptExecutor(getLogHandler(), osascript.WithCommand(filepath.Join(dir, "osascript")))
	require.NoError(t, err)
	_, err = scriptbridge.Eval(context.Background(), osaExec, `return 1`)
	require.ErrorIs(t, err, platform.ErrRuntimeUnavailable)
	assert.Equal(t, platform.StateUninitialized, osaExec.State())

	wasmExec, err := scriptbridge.NewExtismExecutor(filepath.Join(dir, "bridge.wasm"), getLogHandler())
	require.NoError(t, err)
	_, err = scriptbridge.Eval(context.Background(), wasmExec, "1")
	require.ErrorIs(t, err, platform.ErrRuntimeUnavailable)

	var rec *scripterr.Record
	assert.False(t, errors.As(err, &rec))
}
