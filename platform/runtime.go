package platform

import (
	"context"
	"fmt"
	"sync"

	"github.com/robbyt/go-scriptbridge/platform/scripterr"
	"github.com/robbyt/go-scriptbridge/platform/value"
)

// Runtime is a host scripting runtime. Run executes the script text verbatim and returns the
// converted result.
//
// Script-level failures are returned as *scripterr.Record. Failures to reach the runtime
// itself must wrap ErrRuntimeUnavailable. Any other error is treated as a script failure with
// an unknown code.
type Runtime interface {
	Run(ctx context.Context, script string) (value.Value, error)
}

// ConcurrencySafe is implemented by runtimes that allow concurrent Run calls. Runtimes that
// do not implement it, or report false, are serialized across all executors.
type ConcurrencySafe interface {
	ConcurrencySafe() bool
}

// runtimeLock serializes calls into runtimes that are not concurrency safe.
var runtimeLock sync.Mutex

func isConcurrencySafe(rt Runtime) bool {
	cs, ok := rt.(ConcurrencySafe)
	return ok && cs.ConcurrencySafe()
}

// runLocked calls rt.Run, holding the shared runtime lock unless rt is concurrency safe. A
// panic inside the runtime is returned as an unknown script error.
func runLocked(ctx context.Context, rt Runtime, script string) (result value.Value, err error) {
	if !isConcurrencySafe(rt) {
		runtimeLock.Lock()
		defer runtimeLock.Unlock()
	}
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = scripterr.Unknown(fmt.Sprintf("runtime panic: %v", r))
		}
	}()
	return rt.Run(ctx, script)
}
