package loader

import (
	"fmt"
	"io"
	"net/url"
	"strings"
)

// StdinArg selects standard input in InferLoader.
const StdinArg = "-"

// InferLoader picks a loader for a command line argument: StdinArg reads stdin, http and https
// URLs are fetched with httpOpts, file:// URLs and plain paths are read from disk. Any other
// scheme is ErrSchemeUnsupported.
func InferLoader(arg string, stdin io.Reader, httpOpts *HTTPOptions) (Loader, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return nil, fmt.Errorf("%w: empty argument", ErrScriptNotAvailable)
	}
	if arg == StdinArg {
		return NewFromReader(stdin, "stdin")
	}

	if strings.Contains(arg, "://") {
		parsed, err := url.Parse(arg)
		if err != nil {
			return nil, fmt.Errorf("unable to parse URL: %w", err)
		}
		switch parsed.Scheme {
		case "http", "https":
			return NewFromHTTP(arg, httpOpts)
		case "file":
			return NewFromDisk(arg)
		default:
			return nil, fmt.Errorf("%w: %s", ErrSchemeUnsupported, parsed.Scheme)
		}
	}
	return NewFromDisk(arg)
}
