// Command bridgerun runs scripts in a host scripting runtime and prints the results.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robbyt/go-scriptbridge/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.NewRootCmd(nil).ExecuteContext(ctx)
	stop()

	switch {
	case err == nil:
	case errors.Is(err, cli.ErrScriptsFailed):
		// results were already printed
		os.Exit(1)
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
}
