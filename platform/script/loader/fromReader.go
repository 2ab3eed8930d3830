package loader

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"
)

// FromReader loads a script from an io.Reader such as standard input. The reader is consumed
// on the first Load; later calls return the same text.
type FromReader struct {
	reader    io.Reader
	sourceURL *url.URL

	once    sync.Once
	content string
	err     error
}

// NewFromReader creates a loader for reader. name labels the source in its URL.
func NewFromReader(reader io.Reader, name string) (*FromReader, error) {
	if reader == nil {
		return nil, fmt.Errorf("%w: reader is nil", ErrScriptNotAvailable)
	}
	if name == "" {
		name = "unnamed"
	}
	return &FromReader{
		reader:    reader,
		sourceURL: &url.URL{Scheme: "reader", Host: name},
	}, nil
}

func (l *FromReader) String() string {
	return fmt.Sprintf("loader.FromReader{Source: %s}", l.sourceURL)
}

// Load reads the whole reader once.
func (l *FromReader) Load(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	l.once.Do(func() {
		l.content, l.err = readScript(l.reader)
	})
	return l.content, l.err
}

// GetSourceURL returns the reader://<name> URL of the script.
func (l *FromReader) GetSourceURL() *url.URL {
	return l.sourceURL
}
