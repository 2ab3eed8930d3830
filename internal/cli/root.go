// Package cli implements the bridgerun command line tool.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/robbyt/go-scriptbridge/engines/registry"
)

// Version is set at build time.
var Version = "dev"

// NewRootCmd builds the bridgerun command tree. reg supplies the runtimes; nil uses
// registry.New.
func NewRootCmd(reg *registry.Registry) *cobra.Command {
	if reg == nil {
		reg = registry.New()
	}

	rootCmd := &cobra.Command{
		Use:   "bridgerun",
		Short: "Run scripts in a host scripting runtime and print the converted result",
		Long: `bridgerun executes scripts verbatim in a scripting runtime (starlark, risor,
extism or osascript) and prints each result as a language-neutral value, or the
error record the runtime reported.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./bridgerun.yaml)")

	rootCmd.AddCommand(newRunCommand(reg))
	rootCmd.AddCommand(newRuntimesCommand(reg))
	return rootCmd
}
