// Package loader fetches script text from files, readers, inline strings and HTTP servers.
package loader

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"unicode/utf8"
)

// MaxScriptSize bounds the bytes read from any single source.
const MaxScriptSize = 8 << 20

// Loader fetches the text of one script.
type Loader interface {
	// Load returns the script text. Empty, whitespace-only and non UTF-8 content is rejected
	// with ErrScriptNotAvailable.
	Load(ctx context.Context) (string, error)

	// GetSourceURL identifies where the script came from.
	GetSourceURL() *url.URL
}

// readScript reads at most MaxScriptSize bytes of script text from r.
func readScript(r io.Reader) (string, error) {
	content, err := io.ReadAll(io.LimitReader(r, MaxScriptSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read script: %w", err)
	}
	return checkScript(content)
}

func checkScript(content []byte) (string, error) {
	switch {
	case len(content) > MaxScriptSize:
		return "", fmt.Errorf("%w: script exceeds %d bytes", ErrScriptNotAvailable, MaxScriptSize)
	case strings.TrimSpace(string(content)) == "":
		return "", fmt.Errorf("%w: content is empty or contains only whitespace", ErrScriptNotAvailable)
	case !utf8.Valid(content):
		return "", fmt.Errorf("%w: content is not valid UTF-8", ErrScriptNotAvailable)
	}
	return string(content), nil
}
