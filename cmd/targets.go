package cmd

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// newTargetsCmd creates the 'targets' subcommand.
func newTargetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "targets",
		Short: "List configured targets and composites",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, appInstance App) error {
			cfg := appInstance.Config()

			t := table.NewWriter()
			t.SetStyle(table.StyleRounded)
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Name", "Kind", "Output", "Source"})
			for _, name := range cfg.TargetNames() {
				target := cfg.Targets[name]
				t.AppendRow(table.Row{name, target.Kind, target.Output, target.URL})
			}
			if names := cfg.CompositeNames(); len(names) > 0 {
				t.AppendSeparator()
				for _, name := range names {
					c := cfg.Composites[name]
					t.AppendRow(table.Row{name, c.Kind, c.Output, strings.Join(c.Windows, "+")})
				}
			}
			t.Render()
			return nil
		}),
	}
}
