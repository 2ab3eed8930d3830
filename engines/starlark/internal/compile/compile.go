package compile

import (
	"fmt"

	starlarkLib "go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Filename is the name scripts are compiled under; it appears in error positions.
const Filename = "script.star"

// DefaultFileOptions enables the dialect features scripts commonly rely on.
func DefaultFileOptions() *syntax.FileOptions {
	return &syntax.FileOptions{
		Set:             true,
		While:           true,
		TopLevelControl: true,
		GlobalReassign:  true,
		Recursion:       true,
	}
}

// Compile parses and resolves the script against the predeclared names. Parse errors wrap a
// syntax.Error and resolution errors wrap a resolve.ErrorList.
func Compile(
	script string,
	opts *syntax.FileOptions,
	predeclared starlarkLib.StringDict,
) (*starlarkLib.Program, error) {
	if script == "" {
		return nil, ErrContentEmpty
	}
	if opts == nil {
		opts = DefaultFileOptions()
	}

	f, err := opts.Parse(Filename, script, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompileFailed, err)
	}

	prog, err := starlarkLib.FileProgram(f, predeclared.Has)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompileFailed, err)
	}
	return prog, nil
}
