package extism

import (
	"context"
	"errors"
	"fmt"

	"github.com/robbyt/go-scriptbridge/platform/scripterr"
)

var (
	ErrNoModule           = errors.New("no wasm module configured")
	ErrEntryPointNotFound = errors.New("entry point not found in plugin")
)

// callRecord classifies a failed plugin call.
func callRecord(ctx context.Context, exit uint32, err error) *scripterr.Record {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return scripterr.New(scripterr.CodeTimedOut, "plugin call timed out")
	case errors.Is(ctx.Err(), context.Canceled):
		return scripterr.New(scripterr.CodeUserCancelled, "plugin call cancelled")
	case exit != 0 && err != nil:
		return scripterr.New(scripterr.CodeGeneric, fmt.Sprintf("plugin exited with status %d: %s", exit, err))
	case exit != 0:
		return scripterr.New(scripterr.CodeGeneric, fmt.Sprintf("plugin exited with status %d", exit))
	}
	return scripterr.New(scripterr.CodeGeneric, err.Error())
}
