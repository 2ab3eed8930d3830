package compile

import (
	"context"
	"errors"
	"fmt"

	risorLib "github.com/risor-io/risor"
	risorCompiler "github.com/risor-io/risor/compiler"
	risorErrors "github.com/risor-io/risor/errz"
	risorParser "github.com/risor-io/risor/parser"
)

// Compile parses and compiles the script content into bytecode. Parse failures wrap
// ErrParseFailed and carry the parser's friendly message; compiler failures wrap
// ErrCompileFailed.
func Compile(
	ctx context.Context,
	scriptContent string,
	options ...risorCompiler.Option,
) (*risorCompiler.Code, error) {
	if scriptContent == "" {
		return nil, ErrContentEmpty
	}

	ast, err := risorParser.Parse(ctx, scriptContent)
	if err != nil {
		errMsg := err.Error()
		var friendlyErr risorErrors.FriendlyError
		if errors.As(err, &friendlyErr) {
			errMsg = friendlyErr.FriendlyErrorMessage()
		}
		return nil, fmt.Errorf("%w: %s", ErrParseFailed, errMsg)
	}

	bc, err := risorCompiler.Compile(ast, options...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompileFailed, err)
	}
	return bc, nil
}

// CompileWithGlobals compiles with the default builtin names plus globals, which are injected
// at evaluation time and must be known to the compiler up front.
func CompileWithGlobals(
	ctx context.Context,
	scriptContent string,
	globals []string,
) (*risorCompiler.Code, error) {
	cfg := risorLib.NewConfig()
	globalNames := append(cfg.GlobalNames(), globals...)

	return Compile(ctx, scriptContent, risorCompiler.WithGlobalNames(globalNames))
}
