package cli

import (
	"fmt"
	"strings"

	"taskline/internal/publish"

	"github.com/spf13/cobra"
)

func newPublishCmd(app *App) *cobra.Command {
	var out string
	var render bool
	var overwrite bool
	var width int

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Export the timeline as a Markdown report (derived, not canonical)",
		Example: strings.TrimSpace(`
taskline publish --out docs/timeline.md
taskline publish --render
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := loadStore(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			md := publish.RenderMarkdown(st.Tasks(), publish.RenderOptions{
				Title:  app.title(),
				Source: st.Describe(),
			})

			if strings.TrimSpace(out) != "" {
				res, err := publish.WriteFile(out, md, overwrite)
				if err != nil {
					return writeErr(cmd, err)
				}
				return writeOut(cmd, app, res, "git add "+res.Written)
			}
			if render {
				w := width
				if w <= 0 {
					w = terminalWidth()
				}
				md = publish.RenderTerminal(md, w)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(md, "\n"))
			return err
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Write the report to this file instead of stdout")
	cmd.Flags().BoolVar(&render, "render", false, "Render the Markdown for the terminal")
	cmd.Flags().BoolVar(&overwrite, "overwrite", true, "Overwrite an existing --out file")
	cmd.Flags().IntVar(&width, "width", 0, "Wrap width for --render (default: $COLUMNS or 100)")
	return cmd
}
