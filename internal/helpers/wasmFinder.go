package helpers

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ErrWasmNotFound is returned by FindWasmFile when none of the candidate paths exist.
var ErrWasmNotFound = errors.New("WASM plugin file not found")

// DefaultWasmPaths are searched when FindWasmFile is given no candidates.
var DefaultWasmPaths = []string{
	"bridge.wasm",
	"plugins/bridge.wasm",
	"engines/extism/testdata/bridge.wasm",
}

// FindWasmFile returns the absolute path of the first candidate that exists as a regular
// file. With no candidates it searches DefaultWasmPaths.
func FindWasmFile(logger *slog.Logger, candidates ...string) (string, error) {
	if len(candidates) == 0 {
		candidates = DefaultWasmPaths
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	checked := make([]string, 0, len(candidates))
	for _, path := range candidates {
		absPath, err := filepath.Abs(path)
		if err != nil {
			absPath = path
		}
		if info, err := os.Stat(absPath); err == nil && info.Mode().IsRegular() {
			logger.Debug("found WASM file", "path", absPath)
			return absPath, nil
		}
		checked = append(checked, absPath)
	}

	return "", fmt.Errorf("%w; searched:\n  - %s", ErrWasmNotFound, strings.Join(checked, "\n  - "))
}
