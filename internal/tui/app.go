package tui

import (
	"context"
	"fmt"
	"strings"

	"taskline/internal/form"
	"taskline/internal/publish"
	"taskline/internal/store"
	"taskline/internal/timeline"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

type mode int

const (
	modeBrowse mode = iota
	modeEdit
)

const (
	listPaneWidth = 36
	footerHeight  = 2
)

type appModel struct {
	ctx   context.Context
	st    *store.TaskStore
	title string

	mode    mode
	session *form.Session
	list    list.Model
	form    formModel

	width  int
	height int

	status    string
	statusErr bool
}

func newAppModel(ctx context.Context, st *store.TaskStore, title string) appModel {
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(title) == "" {
		title = timeline.DefaultTitle
	}
	m := appModel{
		ctx:     ctx,
		st:      st,
		title:   title,
		session: form.NewSession(),
		list:    newList("Tasks", taskItems(st.Tasks())),
		form:    newFormModel(),
		width:   100,
		height:  30,
	}
	if st.Seeded() {
		m.status = "No saved tasks found; showing example tasks."
	}
	m.resize()
	return m
}

func (m appModel) Init() tea.Cmd { return nil }

func (m *appModel) resize() {
	h := m.height - footerHeight - 2
	if h < 5 {
		h = 5
	}
	m.list.SetSize(listPaneWidth, h)
	m.form.setWidth(m.width - 8)
}

// selectedName is the task under the list cursor ("" for the new-task entry).
func (m appModel) selectedName() string {
	it, ok := m.list.SelectedItem().(taskItem)
	if !ok || it.isNew {
		return ""
	}
	return it.task.Name
}

func (m *appModel) refreshList(selectName string) tea.Cmd {
	items := taskItems(m.st.Tasks())
	cmd := m.list.SetItems(items)
	m.list.Select(indexOfTask(items, selectName))
	return cmd
}

func (m *appModel) setStatus(msg string, isErr bool) {
	m.status = msg
	m.statusErr = isErr
}

// openForm switches to the edit form for the task under the cursor, or defaults for
// the new-task entry.
func (m *appModel) openForm() tea.Cmd {
	m.session.Select(m.st, m.selectedName())
	m.form.setFields(m.session.Fields)
	m.mode = modeEdit
	if m.session.Selected == "" {
		m.setStatus("New task", false)
	} else {
		m.setStatus("Editing "+m.session.Selected, false)
	}
	return m.form.focusField(fieldName)
}

func (m *appModel) submit() tea.Cmd {
	m.session.Fields = m.form.fields()
	res, err := m.session.Submit(m.ctx, m.st)
	if err != nil {
		m.setStatus("Save failed: "+err.Error(), true)
		return nil
	}
	if !res.Saved {
		m.form.setErrors(res.Errors)
		msgs := make([]string, 0, len(res.Errors))
		for _, fe := range res.Errors {
			msgs = append(msgs, fe.Message)
		}
		m.setStatus("Not saved: "+strings.Join(msgs, "; "), true)
		return nil
	}
	m.form.setErrors(nil)
	m.mode = modeBrowse
	m.setStatus(res.Message, false)
	return m.refreshList(res.Task.Name)
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.mode == modeEdit {
			return m.updateEdit(msg)
		}
		return m.updateBrowse(msg)
	}

	var cmd tea.Cmd
	if m.mode == modeEdit {
		m.form, cmd = m.form.update(msg)
	} else {
		m.list, cmd = m.list.Update(msg)
	}
	return m, cmd
}

func (m appModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "enter":
		return m, m.openForm()
	case "n":
		m.list.Select(0)
		return m, m.openForm()
	case "r":
		name := m.selectedName()
		m.st.Reload(m.ctx)
		cmd := m.refreshList(name)
		m.setStatus(fmt.Sprintf("Reloaded %d tasks from %s", m.st.Len(), m.st.Describe()), false)
		return m, cmd
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m appModel) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeBrowse
		m.form.setErrors(nil)
		m.setStatus("Cancelled", false)
		return m, nil
	case "ctrl+s":
		return m, m.submit()
	case "tab", "down":
		if msg.String() == "down" && m.form.focus == fieldNotes {
			break
		}
		return m, m.form.focusField(m.form.focus + 1)
	case "shift+tab", "up":
		if msg.String() == "up" && m.form.focus == fieldNotes {
			break
		}
		return m, m.form.focusField(m.form.focus - 1)
	case "enter":
		if m.form.focus != fieldNotes {
			return m, m.form.focusField(m.form.focus + 1)
		}
	}
	var cmd tea.Cmd
	m.form, cmd = m.form.update(msg)
	return m, cmd
}

func (m appModel) View() string {
	header := styleHeader().Render(m.title)
	body := m.viewBrowse()
	if m.mode == modeEdit {
		body = m.viewEdit()
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body, m.viewFooter())
}

func (m appModel) viewBrowse() string {
	left := stylePane().Width(listPaneWidth).Render(m.list.View())

	rightW := m.width - listPaneWidth - 4
	if rightW < 20 {
		rightW = 20
	}
	selected := m.selectedName()
	chart := timeline.RenderTerminal(timeline.Project(m.st.Tasks()), timeline.TerminalOptions{
		Width:    rightW,
		Title:    "Timeline",
		Selected: selected,
	})

	var right strings.Builder
	right.WriteString(chart)
	if t, ok := m.st.Get(selected); ok {
		right.WriteString("\n\n")
		right.WriteString(lipgloss.NewStyle().Bold(true).Render(t.Name))
		right.WriteString("\n")
		right.WriteString(styleMuted().Render(fmt.Sprintf("%s · %s → %s", t.Category, t.Start, t.End)))
		if users := t.UsersText(); users != "" {
			right.WriteString("\n")
			right.WriteString(styleMuted().Render("Users: " + users))
		}
		if notes := publish.RenderTerminal(t.Notes, rightW); notes != "" {
			right.WriteString("\n")
			right.WriteString(notes)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right.String())
}

func (m appModel) viewEdit() string {
	heading := "New task"
	if m.session.Selected != "" {
		heading = "Edit: " + m.session.Selected
	}
	return stylePane().Padding(0, 1).Render(
		lipgloss.NewStyle().Bold(true).Render(heading) + "\n\n" + m.form.view(),
	)
}

func (m appModel) viewFooter() string {
	status := m.status
	st := styleOK()
	if m.statusErr {
		st = styleError()
	}
	var help string
	if m.mode == modeEdit {
		help = "tab/shift+tab: field  ctrl+s: save  esc: cancel"
	} else {
		help = "enter: edit  n: new  /: filter  r: reload  q: quit"
	}
	w := m.width
	if w < 20 {
		w = 20
	}
	return xansi.Truncate(st.Render(status), w, "…") + "\n" + styleMuted().Render(xansi.Truncate(help, w, "…"))
}
