package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"taskline/internal/timeline"

	"github.com/spf13/cobra"
)

func newChartCmd(app *App) *cobra.Command {
	var width int
	var figure bool

	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Draw the timeline in the terminal",
		Example: strings.TrimSpace(`
taskline chart
taskline chart --width 140
taskline chart --figure --pretty   # plotly figure JSON
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := loadStore(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			rows := timeline.Project(st.Tasks())
			if figure {
				return writeOut(cmd, app, timeline.BuildFigure(rows, timeline.FigureOptions{Title: app.title()}))
			}
			w := width
			if w <= 0 {
				w = terminalWidth()
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), timeline.RenderTerminal(rows, timeline.TerminalOptions{
				Width: w,
				Title: app.title(),
			}))
			return err
		},
	}
	cmd.Flags().IntVar(&width, "width", 0, "Chart width in columns (default: $COLUMNS or 100)")
	cmd.Flags().BoolVar(&figure, "figure", false, "Print the plotly figure description instead of drawing")
	return cmd
}

func terminalWidth() int {
	if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv("COLUMNS"))); err == nil && n > 0 {
		return n
	}
	return 100
}
