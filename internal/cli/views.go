package cli

import (
	"fmt"
	"strconv"
	"strings"

	"taskline/internal/form"
	"taskline/internal/model"
	"taskline/internal/timeline"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

type taskView struct {
	Name          string   `json:"name"`
	Start         string   `json:"start"`
	End           string   `json:"end"`
	Category      string   `json:"category"`
	Notes         string   `json:"notes"`
	AssignedUsers []string `json:"assignedUsers"`
}

func newTaskView(t model.Task) taskView {
	users := t.AssignedUsers
	if users == nil {
		users = []string{}
	}
	return taskView{
		Name:          t.Name,
		Start:         t.Start.String(),
		End:           t.End.String(),
		Category:      t.Category,
		Notes:         t.Notes,
		AssignedUsers: users,
	}
}

func (v taskView) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", v.Name)
	fmt.Fprintf(&b, "  category: %s\n", v.Category)
	fmt.Fprintf(&b, "  dates:    %s → %s\n", v.Start, v.End)
	if len(v.AssignedUsers) > 0 {
		fmt.Fprintf(&b, "  users:    %s\n", model.JoinUsers(v.AssignedUsers))
	}
	if notes := strings.TrimSpace(v.Notes); notes != "" {
		b.WriteString("  notes:\n")
		for _, l := range strings.Split(notes, "\n") {
			b.WriteString("    " + l + "\n")
		}
	}
	return b.String()
}

type taskListView []taskView

func (v taskListView) Text() string {
	rows := make([][]string, 0, len(v))
	for _, t := range v {
		rows = append(rows, []string{t.Name, t.Start, t.End, t.Category, model.JoinUsers(t.AssignedUsers)})
	}
	return renderTable([]string{"TASK", "START", "END", "CATEGORY", "USERS"}, rows)
}

type rowsView []timeline.Row

func (v rowsView) Text() string {
	rows := make([][]string, 0, len(v))
	for _, r := range v {
		rows = append(rows, []string{r.Task, r.Start.String(), r.Finish.String(), strconv.Itoa(r.Start.Days(r.Finish) + 1), r.Resource, r.Users})
	}
	return renderTable([]string{"TASK", "START", "FINISH", "DAYS", "RESOURCE", "USERS"}, rows)
}

type upsertView struct {
	Saved   bool              `json:"saved"`
	Message string            `json:"message,omitempty"`
	Errors  []form.FieldError `json:"errors,omitempty"`
	Task    *taskView         `json:"task,omitempty"`
}

func newUpsertView(res form.Result) upsertView {
	v := upsertView{Saved: res.Saved, Message: res.Message, Errors: res.Errors}
	if res.Task != nil {
		tv := newTaskView(*res.Task)
		v.Task = &tv
	}
	return v
}

func (v upsertView) Text() string {
	if v.Saved {
		return v.Message
	}
	msgs := make([]string, 0, len(v.Errors))
	for _, fe := range v.Errors {
		msgs = append(msgs, fe.Error())
	}
	return "not saved: " + strings.Join(msgs, "; ")
}

func renderTable(headers []string, rows [][]string) string {
	if len(rows) == 0 {
		return "(no tasks)"
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderRow(false).
		BorderColumn(true).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			st := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return st.Bold(true)
			}
			return st
		})
	return t.String()
}
