package osascript

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/robbyt/go-scriptbridge/platform"
)

// DefaultCommand is the osascript binary looked up on PATH.
const DefaultCommand = "osascript"

// waitDelay bounds how long output pipes are drained after the process is killed.
const waitDelay = time.Second

// DefaultArgs make osascript print results in recompilable source form and read the script
// from standard input.
var DefaultArgs = []string{"-s", "s", "-"}

// Output is what one osascript invocation produced.
type Output struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Runner starts the scripting host with the script on standard input. A process that ran and
// exited non-zero is reported through Output.ExitCode, not as an error; errors mean the process
// could not be run at all.
type Runner interface {
	Run(ctx context.Context, script string) (Output, error)
}

// ExecRunner runs a local command. The process is killed when ctx ends.
type ExecRunner struct {
	Path string
	Args []string
}

// NewExecRunner returns a runner for the default osascript command line.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Path: DefaultCommand, Args: DefaultArgs}
}

// Run implements Runner. Failing to start the process wraps platform.ErrRuntimeUnavailable;
// a done context is returned as ctx.Err() so callers can record it as a script failure.
func (r *ExecRunner) Run(ctx context.Context, script string) (Output, error) {
	if err := ctx.Err(); err != nil {
		return Output{ExitCode: -1}, err
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.Path, r.Args...)
	cmd.Stdin = strings.NewReader(script)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	err := cmd.Run()
	out := Output{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return out, nil
	case errors.As(err, &exitErr):
		out.ExitCode = exitErr.ExitCode()
		return out, nil
	case ctx.Err() != nil:
		out.ExitCode = -1
		return out, ctx.Err()
	}
	return out, fmt.Errorf("%w: %s: %w", platform.ErrRuntimeUnavailable, r.Path, err)
}
