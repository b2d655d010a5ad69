package timeline

import (
	"strings"
	"time"

	"taskline/internal/model"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

type TerminalOptions struct {
	Width      int
	LabelWidth int
	Title      string
	// Selected highlights one task label.
	Selected string
	// NoLegend hides the category legend below the bars.
	NoLegend bool
}

const (
	minChartWidth = 10
	barGlyph      = "█"
)

// RenderTerminal draws rows as a text Gantt chart: a label column, one bar per row,
// a month axis, and a category legend.
func RenderTerminal(rows []Row, opt TerminalOptions) string {
	width := opt.Width
	if width <= 0 {
		width = 100
	}
	title := opt.Title
	if title == "" {
		title = DefaultTitle
	}
	titleStyle := lipgloss.NewStyle().Bold(true)

	first, last, ok := Span(rows)
	if !ok {
		return titleStyle.Render(title) + "\n" + lipgloss.NewStyle().Faint(true).Render("(no tasks)")
	}

	labelW := opt.LabelWidth
	if labelW <= 0 {
		for _, r := range rows {
			if w := xansi.StringWidth(r.Task); w > labelW {
				labelW = w
			}
		}
		if labelW > 28 {
			labelW = 28
		}
	}
	chartW := width - labelW - 3
	if chartW < minChartWidth {
		chartW = minChartWidth
	}

	// Finish days are inclusive.
	totalDays := first.Days(last) + 1
	col := func(d model.Date) int {
		c := first.Days(d) * chartW / totalDays
		if c < 0 {
			return 0
		}
		if c > chartW {
			return chartW
		}
		return c
	}

	pal := NewPalette(rows)
	labelStyle := lipgloss.NewStyle().Width(labelW)
	selectedStyle := labelStyle.Bold(true).Reverse(true)

	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	for _, r := range rows {
		label := xansi.Truncate(r.Task, labelW, "…")
		if opt.Selected != "" && r.Task == opt.Selected {
			b.WriteString(selectedStyle.Render(label))
		} else {
			b.WriteString(labelStyle.Render(label))
		}
		b.WriteString(" │ ")

		from := col(r.Start)
		to := col(r.Finish.AddDays(1))
		if to <= from {
			to = from + 1
		}
		if to > chartW {
			to = chartW
		}
		bar := lipgloss.NewStyle().Foreground(lipgloss.Color(pal.Color(r.Resource))).
			Render(strings.Repeat(barGlyph, to-from))
		b.WriteString(strings.Repeat(" ", from))
		b.WriteString(bar)
		b.WriteString("\n")
	}

	b.WriteString(strings.Repeat(" ", labelW))
	b.WriteString(" └")
	b.WriteString(strings.Repeat("─", chartW))
	b.WriteString("\n")
	b.WriteString(strings.Repeat(" ", labelW+3))
	b.WriteString(monthAxis(first, last, chartW, col))

	if !opt.NoLegend {
		b.WriteString("\n\n")
		var parts []string
		for _, c := range pal.Categories() {
			sw := lipgloss.NewStyle().Foreground(lipgloss.Color(pal.Color(c))).Render(barGlyph + barGlyph)
			parts = append(parts, sw+" "+c)
		}
		b.WriteString(strings.Join(parts, "   "))
	}
	return b.String()
}

// monthAxis places abbreviated month names at the column where each month starts.
func monthAxis(first, last model.Date, width int, col func(model.Date) int) string {
	line := []rune(strings.Repeat(" ", width))
	t := first.Time()
	m := model.NewDate(t.Year(), t.Month(), 1)
	next := 0
	for !m.After(last) {
		c := col(m)
		if m.Before(first) {
			c = 0
		}
		label := m.Time().Format("Jan")
		if m.Time().Month() == time.January || c == 0 {
			label = m.Time().Format("Jan 06")
		}
		if c >= next && c+len(label) <= width {
			copy(line[c:], []rune(label))
			next = c + len(label) + 1
		}
		mt := m.Time().AddDate(0, 1, 0)
		m = model.NewDate(mt.Year(), mt.Month(), 1)
	}
	return strings.TrimRight(string(line), " ")
}
