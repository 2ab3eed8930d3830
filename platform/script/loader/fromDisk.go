package loader

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// FromDisk loads a script file.
type FromDisk struct {
	path      string
	sourceURL *url.URL
}

// NewFromDisk creates a loader for path. Relative paths are resolved against the working
// directory; a file:// prefix is accepted.
func NewFromDisk(path string) (*FromDisk, error) {
	path = strings.TrimPrefix(path, "file://")
	if strings.Contains(path, "://") {
		return nil, fmt.Errorf("%w: %s", ErrSchemeUnsupported, path)
	}
	if path == "" {
		return nil, fmt.Errorf("%w: path is empty", ErrScriptNotAvailable)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %q: %w", path, err)
	}

	return &FromDisk{
		path:      abs,
		sourceURL: &url.URL{Scheme: "file", Path: filepath.ToSlash(abs)},
	}, nil
}

func (l *FromDisk) String() string {
	return fmt.Sprintf("loader.FromDisk{Path: %s}", l.path)
}

// Load reads the file.
func (l *FromDisk) Load(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f, err := os.Open(l.path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrScriptNotAvailable, err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrScriptNotAvailable, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", ErrScriptNotAvailable, l.path)
	}
	return readScript(f)
}

// GetSourceURL returns the file:// URL of the script.
func (l *FromDisk) GetSourceURL() *url.URL {
	return l.sourceURL
}
