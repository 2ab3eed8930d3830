package extism

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/robbyt/go-scriptbridge/engines/mocks"
	"github.com/robbyt/go-scriptbridge/platform"
	"github.com/robbyt/go-scriptbridge/platform/data"
	"github.com/robbyt/go-scriptbridge/platform/scripterr"
	"github.com/robbyt/go-scriptbridge/platform/value"
)

type pluginFixture struct {
	plugin   *mocks.CompiledPlugin
	instance *mocks.PluginInstance
	runtime  *Runtime
}

func newPluginFixture(t *testing.T, opts ...Option) *pluginFixture {
	t.Helper()
	f := &pluginFixture{
		plugin:   new(mocks.CompiledPlugin),
		instance: new(mocks.PluginInstance),
	}
	f.plugin.On("Instance", mock.Anything, mock.Anything).Return(f.instance, nil)
	f.instance.On("Close", mock.Anything).Return(nil)
	f.instance.On("FunctionExists", DefaultEntryPoint).Return(true)

	opts = append([]Option{WithCompiledPlugin(f.plugin), WithLogHandler(slog.DiscardHandler)}, opts...)
	rt, err := New(opts...)
	require.NoError(t, err)
	f.runtime = rt
	return f
}

func (f *pluginFixture) reply(input string, exit uint32, output string, err error) {
	f.instance.On("CallWithContext", mock.Anything, DefaultEntryPoint, []byte(input)).
		Return(exit, []byte(output), err).Once()
}

func TestRunResults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		output string
		want   value.Value
	}{
		{"integer", `{"result": {"type": "long", "int": 7}}`, value.Integer(7)},
		{"null result", `{"result": null}`, value.Null{}},
		{"text", `{"result": {"type": "utf8", "text": "hé"}}`, value.Text("hé")},
		{
			"list of reals",
			`{"result": {"type": "list", "items": [{"type": "doub", "real": 1.5}, {"type": "true"}]}}`,
			value.List{value.Real(1.5), value.Boolean(true)},
		},
		{
			"record keeps order",
			`{"result": {"type": "reco", "fields": [
				{"key": "z", "value": {"type": "comp", "int": 9007199254740993}},
				{"key": "a", "value": {"type": "msng"}}
			]}}`,
			value.RecordOf(
				value.Field{Key: "z", Value: value.Integer(9007199254740993)},
				value.Field{Key: "a", Value: value.Null{}},
			),
		},
		{
			"unknown descriptor type",
			`{"result": {"type": "wxyz", "data": "AQI="}}`,
			value.Unrepresentable{Tag: "wxyz", Raw: []byte{1, 2}, Reason: "no mapping for descriptor type"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newPluginFixture(t)
			f.reply(`{"script":"x"}`, 0, tt.output, nil)

			got, err := f.runtime.Run(t.Context(), "x")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			f.instance.AssertExpectations(t)
		})
	}
}

func TestRunScriptError(t *testing.T) {
	t.Parallel()

	f := newPluginFixture(t)
	f.reply(`{"script":"oops("}`, 0,
		`{"error": {"code": -2741, "message": "unexpected end of input", "range": {"start": 5, "end": 5}}}`, nil)

	_, err := f.runtime.Run(t.Context(), "oops(")
	var rec *scripterr.Record
	require.ErrorAs(t, err, &rec)
	assert.Equal(t, &scripterr.Record{
		Code:         scripterr.CodeSyntaxUnexpected,
		Message:      "unexpected end of input",
		BriefMessage: scripterr.Describe(scripterr.CodeSyntaxUnexpected),
		Range:        &scripterr.Range{Start: 5, End: 5},
	}, rec)
}

func TestRunCallFailures(t *testing.T) {
	t.Parallel()

	t.Run("non-zero exit", func(t *testing.T) {
		t.Parallel()
		f := newPluginFixture(t)
		f.reply(`{"script":"x"}`, 3, "", errors.New("plugin panicked"))

		_, err := f.runtime.Run(t.Context(), "x")
		var rec *scripterr.Record
		require.ErrorAs(t, err, &rec)
		assert.Equal(t, scripterr.CodeGeneric, rec.Code)
		assert.Contains(t, rec.Message, "status 3")
		assert.Contains(t, rec.Message, "plugin panicked")
	})

	t.Run("call error", func(t *testing.T) {
		t.Parallel()
		f := newPluginFixture(t)
		f.reply(`{"script":"x"}`, 0, "", errors.New("wasm trap"))

		_, err := f.runtime.Run(t.Context(), "x")
		var rec *scripterr.Record
		require.ErrorAs(t, err, &rec)
		assert.Equal(t, "wasm trap", rec.Message)
	})

	t.Run("deadline", func(t *testing.T) {
		t.Parallel()
		f := newPluginFixture(t)
		ctx, cancel := context.WithTimeout(t.Context(), 0)
		defer cancel()
		<-ctx.Done()
		f.reply(`{"script":"x"}`, 0, "", context.DeadlineExceeded)

		_, err := f.runtime.Run(ctx, "x")
		var rec *scripterr.Record
		require.ErrorAs(t, err, &rec)
		assert.Equal(t, scripterr.CodeTimedOut, rec.Code)
	})

	t.Run("malformed reply", func(t *testing.T) {
		t.Parallel()
		f := newPluginFixture(t)
		f.reply(`{"script":"x"}`, 0, `{"greeting": "hi"}`, nil)

		_, err := f.runtime.Run(t.Context(), "x")
		require.Error(t, err)
		var rec *scripterr.Record
		assert.NotErrorAs(t, err, &rec)
	})
}

func TestRunUnavailable(t *testing.T) {
	t.Parallel()

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		rt, err := New(WithWasmFile(filepath.Join(t.TempDir(), "missing.wasm")), WithLogHandler(slog.DiscardHandler))
		require.NoError(t, err)

		_, err = rt.Run(t.Context(), "x")
		require.ErrorIs(t, err, platform.ErrRuntimeUnavailable)
	})

	t.Run("invalid module", func(t *testing.T) {
		t.Parallel()
		rt, err := New(WithWasmBytes([]byte("not wasm")), WithLogHandler(slog.DiscardHandler))
		require.NoError(t, err)

		_, err = rt.Run(t.Context(), "x")
		require.ErrorIs(t, err, platform.ErrRuntimeUnavailable)
	})

	t.Run("instance failure", func(t *testing.T) {
		t.Parallel()
		plugin := new(mocks.CompiledPlugin)
		plugin.On("Instance", mock.Anything, mock.Anything).Return(nil, errors.New("out of memory"))
		rt, err := New(WithCompiledPlugin(plugin), WithLogHandler(slog.DiscardHandler))
		require.NoError(t, err)

		_, err = rt.Run(t.Context(), "x")
		require.ErrorIs(t, err, platform.ErrRuntimeUnavailable)
	})

	t.Run("missing entry point", func(t *testing.T) {
		t.Parallel()
		instance := new(mocks.PluginInstance)
		instance.On("FunctionExists", "evaluate").Return(false)
		instance.On("Close", mock.Anything).Return(nil)
		plugin := new(mocks.CompiledPlugin)
		plugin.On("Instance", mock.Anything, mock.Anything).Return(instance, nil)

		rt, err := New(WithCompiledPlugin(plugin), WithEntryPoint("evaluate"), WithLogHandler(slog.DiscardHandler))
		require.NoError(t, err)

		_, err = rt.Run(t.Context(), "x")
		require.ErrorIs(t, err, platform.ErrRuntimeUnavailable)
		require.ErrorIs(t, err, ErrEntryPointNotFound)
		instance.AssertExpectations(t)
	})
}

func TestRunSendsInputData(t *testing.T) {
	t.Parallel()

	provider := data.NewStaticProvider(map[string]any{"user": "ada"})
	f := newPluginFixture(t, WithDataProvider(provider))

	f.instance.On("CallWithContext", mock.Anything, DefaultEntryPoint, mock.MatchedBy(func(in []byte) bool {
		var req struct {
			Script string         `json:"script"`
			Ctx    map[string]any `json:"ctx"`
		}
		return json.Unmarshal(in, &req) == nil && req.Script == "greet" && req.Ctx["user"] == "ada"
	})).Return(uint32(0), []byte(`{"result": {"type": "utf8", "text": "hi ada"}}`), nil).Once()

	got, err := f.runtime.Run(t.Context(), "greet")
	require.NoError(t, err)
	assert.Equal(t, value.Text("hi ada"), got)
}

func TestNewAndClose(t *testing.T) {
	t.Parallel()

	_, err := New()
	require.ErrorIs(t, err, ErrNoModule)

	for name, opt := range map[string]Option{
		"nil handler":    WithLogHandler(nil),
		"nil logger":     WithLogger(nil),
		"empty bytes":    WithWasmBytes(nil),
		"empty file":     WithWasmFile(""),
		"nil plugin":     WithCompiledPlugin(nil),
		"empty entry":    WithEntryPoint(""),
		"nil config":     WithRuntimeConfig(nil),
		"nil provider":   WithDataProvider(nil),
		"zero max depth": WithMaxDepth(0),
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := New(WithWasmBytes([]byte{0}), opt)
			require.Error(t, err)
		})
	}

	plugin := new(mocks.CompiledPlugin)
	plugin.On("Close", mock.Anything).Return(nil).Once()
	rt, err := New(WithCompiledPlugin(plugin), WithWASI(false), WithLogHandler(slog.DiscardHandler))
	require.NoError(t, err)
	assert.Equal(t, "extism.Runtime", rt.String())
	assert.True(t, rt.ConcurrencySafe())
	assert.False(t, rt.settings.EnableWASI)

	require.NoError(t, rt.Close(t.Context()))
	require.NoError(t, rt.Close(t.Context()))
	plugin.AssertExpectations(t)
}

func TestCloseWaitsForRunningScripts(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	release := make(chan struct{})

	f := newPluginFixture(t)
	f.instance.On("CallWithContext", mock.Anything, DefaultEntryPoint, mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(uint32(0), []byte(`{"result": {"type": "long", "int": 1}}`), nil).Once()
	f.plugin.On("Close", mock.Anything).Return(nil).Once()

	runDone := make(chan error, 1)
	go func() {
		_, err := f.runtime.Run(t.Context(), "x")
		runDone <- err
	}()
	<-started

	closeDone := make(chan error, 1)
	go func() { closeDone <- f.runtime.Close(t.Context()) }()

	select {
	case <-closeDone:
		t.Fatal("Close returned while a run was using the plugin")
	case <-time.After(50 * time.Millisecond):
	}
	f.plugin.AssertNotCalled(t, "Close", mock.Anything)

	close(release)
	require.NoError(t, <-runDone)
	require.NoError(t, <-closeDone)
	f.plugin.AssertExpectations(t)

	// the plugin came from WithCompiledPlugin, so there is nothing to compile again
	_, err := f.runtime.Run(t.Context(), "x")
	require.ErrorIs(t, err, platform.ErrRuntimeUnavailable)
	require.ErrorIs(t, err, ErrNoModule)
}
