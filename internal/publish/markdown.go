// Package publish renders the task store as a markdown timeline report.
package publish

import (
	"bytes"
	"fmt"
	"strings"

	"taskline/internal/model"
	"taskline/internal/timeline"
)

type RenderOptions struct {
	Title string
	// Source is shown under the title (e.g. the backing file).
	Source string
}

// RenderMarkdown writes a summary table in store order followed by one section per
// category listing its tasks with notes.
func RenderMarkdown(tasks []model.Task, opt RenderOptions) string {
	title := strings.TrimSpace(opt.Title)
	if title == "" {
		title = timeline.DefaultTitle
	}
	rows := timeline.Project(tasks)

	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	writeLn("# " + title)
	writeLn("")
	if src := strings.TrimSpace(opt.Source); src != "" {
		writeLn("_Source: " + escapeInline(src) + "_")
		writeLn("")
	}
	first, last, ok := timeline.Span(rows)
	if !ok {
		writeLn("No tasks.")
		return buf.String()
	}
	writeLn(fmt.Sprintf("%d tasks from %s to %s (%d days).", len(rows), first, last, first.Days(last)+1))
	writeLn("")

	writeLn("| Task | Start | Finish | Days | Resource | Users |")
	writeLn("|---|---|---|---:|---|---|")
	for _, r := range rows {
		writeLn(fmt.Sprintf("| %s | %s | %s | %d | %s | %s |",
			escapeCell(r.Task), r.Start, r.Finish, r.Start.Days(r.Finish)+1,
			escapeCell(r.Resource), escapeCell(r.Users)))
	}

	for _, cat := range timeline.Categories(rows) {
		writeLn("")
		writeLn("## " + cat)
		writeLn("")
		for _, r := range rows {
			if r.Resource != cat {
				continue
			}
			line := fmt.Sprintf("- **%s** (%s → %s)", escapeInline(r.Task), r.Start, r.Finish)
			if r.Users != "" {
				line += " · " + escapeInline(r.Users)
			}
			writeLn(line)
			if notes := strings.TrimSpace(r.Notes); notes != "" {
				for _, nl := range strings.Split(notes, "\n") {
					writeLn("  " + nl)
				}
			}
		}
	}
	return buf.String()
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\n", " ")
	return escapeInline(s)
}

func escapeInline(s string) string {
	r := strings.NewReplacer("*", `\*`, "_", `\_`, "`", "\\`")
	return r.Replace(s)
}
