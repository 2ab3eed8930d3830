package loader

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robbyt/go-scriptbridge/platform/script/loader/httpauth"
)

const starlarkScript = "result = 1 + 1\n"

func writeScript(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestFromDisk(t *testing.T) {
	t.Parallel()

	t.Run("reads the file", func(t *testing.T) {
		t.Parallel()
		path := writeScript(t, "ok.star", starlarkScript)

		l, err := NewFromDisk(path)
		require.NoError(t, err)
		got, err := l.Load(t.Context())
		require.NoError(t, err)
		assert.Equal(t, starlarkScript, got)
		assert.Equal(t, "file", l.GetSourceURL().Scheme)
		assert.Contains(t, l.String(), "ok.star")
	})

	t.Run("file scheme prefix", func(t *testing.T) {
		t.Parallel()
		path := writeScript(t, "ok.star", starlarkScript)

		l, err := NewFromDisk("file://" + path)
		require.NoError(t, err)
		got, err := l.Load(t.Context())
		require.NoError(t, err)
		assert.Equal(t, starlarkScript, got)
	})

	t.Run("constructor errors", func(t *testing.T) {
		t.Parallel()
		_, err := NewFromDisk("")
		require.ErrorIs(t, err, ErrScriptNotAvailable)
		_, err = NewFromDisk("https://example.com/x.star")
		require.ErrorIs(t, err, ErrSchemeUnsupported)
	})

	t.Run("load errors", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		for name, path := range map[string]string{
			"missing":   filepath.Join(dir, "missing.star"),
			"directory": dir,
			"blank":     writeScript(t, "blank.star", " \n\t"),
			"binary":    writeScript(t, "bin.star", "\xff\xfe"),
		} {
			l, err := NewFromDisk(path)
			require.NoError(t, err, name)
			_, err = l.Load(t.Context())
			require.ErrorIs(t, err, ErrScriptNotAvailable, name)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()
		l, err := NewFromDisk(writeScript(t, "ok.star", starlarkScript))
		require.NoError(t, err)
		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		_, err = l.Load(ctx)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestFromReader(t *testing.T) {
	t.Parallel()

	l, err := NewFromReader(strings.NewReader(starlarkScript), "stdin")
	require.NoError(t, err)
	assert.Equal(t, "reader://stdin", l.GetSourceURL().String())

	for range 2 {
		got, err := l.Load(t.Context())
		require.NoError(t, err)
		assert.Equal(t, starlarkScript, got)
	}

	_, err = NewFromReader(nil, "x")
	require.ErrorIs(t, err, ErrScriptNotAvailable)

	empty, err := NewFromReader(strings.NewReader(""), "")
	require.NoError(t, err)
	assert.Equal(t, "reader://unnamed", empty.GetSourceURL().String())
	_, err = empty.Load(t.Context())
	require.ErrorIs(t, err, ErrScriptNotAvailable)
}

func TestFromString(t *testing.T) {
	t.Parallel()

	l, err := NewFromString("  return 1  ")
	require.NoError(t, err)
	got, err := l.Load(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "  return 1  ", got)
	assert.Equal(t, "string", l.GetSourceURL().Scheme)

	_, err = NewFromString("\n")
	require.ErrorIs(t, err, ErrScriptNotAvailable)
}

func TestFromHTTP(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/script.star":
			_, _ = w.Write([]byte(starlarkScript))
		case "/private.star":
			if r.Header.Get("Authorization") != "Bearer tok" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = w.Write([]byte(starlarkScript))
		case "/agent":
			_, _ = w.Write([]byte(r.Header.Get("User-Agent")))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	t.Run("fetches the script", func(t *testing.T) {
		t.Parallel()
		l, err := NewFromHTTP(server.URL+"/script.star", nil)
		require.NoError(t, err)
		got, err := l.Load(t.Context())
		require.NoError(t, err)
		assert.Equal(t, starlarkScript, got)
		assert.Contains(t, l.String(), "none")
	})

	t.Run("default user agent", func(t *testing.T) {
		t.Parallel()
		l, err := NewFromHTTP(server.URL+"/agent", nil)
		require.NoError(t, err)
		got, err := l.Load(t.Context())
		require.NoError(t, err)
		assert.Equal(t, UserAgent, got)
	})

	t.Run("authentication", func(t *testing.T) {
		t.Parallel()
		l, err := NewFromHTTP(server.URL+"/private.star", nil)
		require.NoError(t, err)
		_, err = l.Load(t.Context())
		require.ErrorIs(t, err, ErrScriptNotAvailable)

		opts := DefaultHTTPOptions()
		opts.Auth = httpauth.NewBearerAuth("tok")
		l, err = NewFromHTTP(server.URL+"/private.star", opts)
		require.NoError(t, err)
		got, err := l.Load(t.Context())
		require.NoError(t, err)
		assert.Equal(t, starlarkScript, got)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		l, err := NewFromHTTP(server.URL+"/missing", nil)
		require.NoError(t, err)
		_, err = l.Load(t.Context())
		require.ErrorIs(t, err, ErrScriptNotAvailable)
	})

	t.Run("unsupported scheme", func(t *testing.T) {
		t.Parallel()
		_, err := NewFromHTTP("ftp://example.com/x", nil)
		require.ErrorIs(t, err, ErrSchemeUnsupported)
	})
}

func TestInferLoader(t *testing.T) {
	t.Parallel()

	path := writeScript(t, "x.star", starlarkScript)

	tests := []struct {
		name    string
		arg     string
		want    string
		wantErr error
	}{
		{"stdin", "-", "*loader.FromReader", nil},
		{"http", "http://example.com/x.star", "*loader.FromHTTP", nil},
		{"https", "https://example.com/x.star", "*loader.FromHTTP", nil},
		{"file url", "file://" + path, "*loader.FromDisk", nil},
		{"path", path, "*loader.FromDisk", nil},
		{"relative path", "x.star", "*loader.FromDisk", nil},
		{"empty", "  ", "", ErrScriptNotAvailable},
		{"other scheme", "s3://bucket/x.star", "", ErrSchemeUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			l, err := InferLoader(tt.arg, strings.NewReader(starlarkScript), nil)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, fmt.Sprintf("%T", l))
		})
	}
}
