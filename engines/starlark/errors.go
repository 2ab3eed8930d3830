package starlark

import (
	"context"
	"errors"
	"strings"

	starlarkLib "go.starlark.net/starlark"
	"go.starlark.net/resolve"
	"go.starlark.net/syntax"

	"github.com/robbyt/go-scriptbridge/engines/starlark/internal"
	"github.com/robbyt/go-scriptbridge/engines/starlark/internal/compile"
	"github.com/robbyt/go-scriptbridge/platform/scripterr"
)

const undefinedPrefix = "undefined: "

// compileRecord classifies a parse or resolve failure.
func compileRecord(script string, err error) *scripterr.Record {
	var syntaxErr syntax.Error
	if errors.As(err, &syntaxErr) {
		start := internal.Offset(script, syntaxErr.Pos)
		return scripterr.New(scripterr.CodeSyntaxUnexpected, syntaxErr.Msg,
			scripterr.WithRange(start, min(start+1, len(script))))
	}

	var resolveErrs resolve.ErrorList
	if errors.As(err, &resolveErrs) && len(resolveErrs) > 0 {
		first := resolveErrs[0]
		start := internal.Offset(script, first.Pos)
		msg := first.Msg
		if len(resolveErrs) > 1 {
			msgs := make([]string, len(resolveErrs))
			for i, e := range resolveErrs {
				msgs[i] = e.Msg
			}
			msg = strings.Join(msgs, "; ")
		}

		if name, ok := strings.CutPrefix(first.Msg, undefinedPrefix); ok {
			return scripterr.New(scripterr.CodeUndefinedVariable, msg,
				scripterr.WithRange(start, min(start+len(name), len(script))))
		}
		return scripterr.New(scripterr.CodeSyntax, msg, scripterr.WithRange(start, start))
	}

	return scripterr.New(scripterr.CodeSyntax, err.Error())
}

// evalRecord classifies a failure raised while the program ran. Context cancellation takes
// precedence over the error Starlark reports for it.
func evalRecord(ctx context.Context, script string, err error) *scripterr.Record {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return scripterr.New(scripterr.CodeTimedOut, "script timed out: "+err.Error())
	case errors.Is(ctx.Err(), context.Canceled):
		return scripterr.New(scripterr.CodeUserCancelled, "script cancelled: "+err.Error())
	}

	var evalErr *starlarkLib.EvalError
	if !errors.As(err, &evalErr) {
		return scripterr.New(scripterr.CodeGeneric, err.Error())
	}

	msg := evalErr.Msg
	if strings.Contains(msg, "too many steps") {
		return scripterr.New(scripterr.CodeTimedOut, msg)
	}

	// the innermost frame with a source position; builtins have none
	for i := len(evalErr.CallStack) - 1; i >= 0; i-- {
		frame := evalErr.CallStack.At(i)
		if frame.Pos.Line > 0 && frame.Pos.Filename() == compile.Filename {
			start := internal.Offset(script, frame.Pos)
			return scripterr.New(scripterr.CodeGeneric, msg,
				scripterr.WithRange(start, min(start+1, len(script))))
		}
	}
	return scripterr.New(scripterr.CodeGeneric, msg)
}
