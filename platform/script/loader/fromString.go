package loader

import (
	"context"
	"fmt"
	"net/url"

	"github.com/robbyt/go-scriptbridge/internal/helpers"
)

// FromString holds inline script text. The text is kept verbatim.
type FromString struct {
	content   string
	sourceURL *url.URL
}

// NewFromString creates a loader for inline script text.
func NewFromString(content string) (*FromString, error) {
	if _, err := checkScript([]byte(content)); err != nil {
		return nil, err
	}
	return &FromString{
		content:   content,
		sourceURL: &url.URL{Scheme: "string", Host: "inline", Path: "/" + helpers.Fingerprint(content)},
	}, nil
}

func (l *FromString) String() string {
	return fmt.Sprintf("loader.FromString{Chars: %d}", len(l.content))
}

// Load returns the inline text.
func (l *FromString) Load(_ context.Context) (string, error) {
	return l.content, nil
}

// GetSourceURL returns a string://inline URL keyed by the script fingerprint.
func (l *FromString) GetSourceURL() *url.URL {
	return l.sourceURL
}
