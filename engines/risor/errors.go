package risor

import (
	"context"
	"errors"
	"strings"

	"github.com/robbyt/go-scriptbridge/engines/risor/internal/compile"
	"github.com/robbyt/go-scriptbridge/platform/scripterr"
)

// compileRecord classifies a parse or compile failure. Risor reports no usable offsets, so
// these records carry no range.
func compileRecord(err error) *scripterr.Record {
	msg := err.Error()
	switch {
	case errors.Is(err, compile.ErrParseFailed):
		return scripterr.New(scripterr.CodeSyntaxUnexpected, strings.TrimPrefix(msg, compile.ErrParseFailed.Error()+": "))
	case strings.Contains(msg, "undefined variable"):
		return scripterr.New(scripterr.CodeUndefinedVariable, msg)
	default:
		return scripterr.New(scripterr.CodeSyntax, msg)
	}
}

// evalRecord classifies a failure raised while the program ran.
func evalRecord(ctx context.Context, err error) *scripterr.Record {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return scripterr.New(scripterr.CodeTimedOut, "script timed out: "+err.Error())
	case errors.Is(ctx.Err(), context.Canceled):
		return scripterr.New(scripterr.CodeUserCancelled, "script cancelled: "+err.Error())
	}
	return scripterr.New(scripterr.CodeGeneric, err.Error())
}
