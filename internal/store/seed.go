package store

import "taskline/internal/model"

type seedRow struct {
	name, start, end, category string
}

var seedRows = []seedRow{
	{"Prep for Launch Web/Brochure", "2024-04-01", "2024-04-30", "Bottling Op"},
	{"Bldg design", "2024-04-01", "2024-04-30", "Bottling Op"},
	{"Legal/Insurance/Contracts", "2024-04-01", "2024-04-30", "NLC"},
	{"Secure Contract", "2024-05-01", "2024-05-31", "NLC"},
	{"Procure Equipment", "2024-05-01", "2024-05-31", "Bottling Op"},
	{"Production", "2024-05-01", "2024-05-31", "Bottling Op"},
	{"Site Prep", "2024-06-01", "2024-06-30", "Bottling Op"},
	{"Complete 1st Order", "2024-06-01", "2024-06-30", "Boralis Labs"},
	{"Delivery Vehicle", "2024-07-01", "2024-07-31", "NLC"},
	{"Pour Slab", "2024-07-01", "2024-07-31", "Bottling Op"},
	{"Order Bldg", "2024-07-01", "2024-07-31", "Bottling Op"},
}

// SeedTasks returns the default example project used when nothing is persisted.
func SeedTasks() []model.Task {
	out := make([]model.Task, 0, len(seedRows))
	for _, r := range seedRows {
		out = append(out, model.Task{
			Name:          r.name,
			Start:         model.MustDate(r.start),
			End:           model.MustDate(r.end),
			Category:      r.category,
			Notes:         "",
			AssignedUsers: []string{},
		})
	}
	return out
}
