package cli

import (
	"fmt"
	"strings"

	"taskline/internal/docs"
	"taskline/internal/publish"

	"github.com/spf13/cobra"
)

func newDocsCmd(app *App) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "docs [topic]",
		Short: "Show help topics (tasks file, editing rules, config)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return writeOut(cmd, app, docs.Topics(), "taskline docs <topic>")
			}
			md, ok := docs.Get(args[0])
			if !ok {
				return writeErr(cmd, errNotFound("topic", args[0]))
			}
			if !raw {
				md = publish.RenderTerminal(md, terminalWidth())
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(md, "\n"))
			return err
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Print markdown without terminal styling")
	return cmd
}
