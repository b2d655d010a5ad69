// Package timeline projects a task store into Gantt rows and describes the chart
// handed to a renderer (plotly.js in the browser, lipgloss in the terminal).
package timeline

import (
	"taskline/internal/model"
)

// Row is one bar of the timeline.
type Row struct {
	Task     string     `json:"task"`
	Start    model.Date `json:"start"`
	Finish   model.Date `json:"finish"`
	Resource string     `json:"resource"`
	Notes    string     `json:"notes"`
	Users    string     `json:"users"`
}

// Project maps tasks, in store order, to rows.
func Project(tasks []model.Task) []Row {
	rows := make([]Row, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, Row{
			Task:     t.Name,
			Start:    t.Start,
			Finish:   t.End,
			Resource: t.Category,
			Notes:    t.Notes,
			Users:    model.JoinUsers(t.AssignedUsers),
		})
	}
	return rows
}

// Span returns the earliest start and latest finish. ok is false for no rows.
func Span(rows []Row) (first, last model.Date, ok bool) {
	for i, r := range rows {
		if i == 0 || r.Start.Before(first) {
			first = r.Start
		}
		if i == 0 || r.Finish.After(last) {
			last = r.Finish
		}
	}
	return first, last, len(rows) > 0
}

// Categories lists resources in order of first appearance.
func Categories(rows []Row) []string {
	seen := map[string]bool{}
	var out []string
	for _, r := range rows {
		if seen[r.Resource] {
			continue
		}
		seen[r.Resource] = true
		out = append(out, r.Resource)
	}
	return out
}
