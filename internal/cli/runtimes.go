package cli

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/robbyt/go-scriptbridge/engines/registry"
	"github.com/robbyt/go-scriptbridge/engines/types"
)

var runtimeNotes = map[types.Type]string{
	types.Starlark:  "in-process; result is the `result` global",
	types.Risor:     "in-process; result is the last expression",
	types.Extism:    "WASM bridge plugin (extism.wasm_file)",
	types.Osascript: "AppleScript through osascript; macOS only",
}

func newRuntimesCommand(reg *registry.Registry) *cobra.Command {
	return &cobra.Command{
		Use:   "runtimes",
		Short: "List the available runtimes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Runtime", "Notes"})
			for _, name := range reg.Names() {
				t.AppendRow(table.Row{name, runtimeNotes[types.Type(name)]})
			}
			t.Render()
			return nil
		},
	}
}
