package tui

import (
	"strings"

	"taskline/internal/form"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Field order in the edit form; notes is the textarea.
const (
	fieldName = iota
	fieldStart
	fieldEnd
	fieldCategory
	fieldNotes
	fieldUsers
	fieldCount
)

var fieldKeys = [fieldCount]string{"name", "start", "end", "category", "notes", "users"}

var fieldLabels = [fieldCount]string{
	"Task Name", "Start Date", "End Date", "Category", "Notes", "Assigned Users (comma-separated)",
}

// formModel is the terminal rendition of the edit form.
type formModel struct {
	inputs [fieldCount]textinput.Model
	notes  textarea.Model
	focus  int
	errors map[string]string
}

func newFormModel() formModel {
	var f formModel
	for i := range f.inputs {
		if i == fieldNotes {
			continue
		}
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 200
		in.Width = 40
		f.inputs[i] = in
	}
	f.inputs[fieldStart].Placeholder = "YYYY-MM-DD"
	f.inputs[fieldStart].CharLimit = 10
	f.inputs[fieldEnd].Placeholder = "YYYY-MM-DD"
	f.inputs[fieldEnd].CharLimit = 10
	f.inputs[fieldUsers].Placeholder = "alice, bob"

	f.notes = textarea.New()
	f.notes.Placeholder = "Notes (markdown)…"
	f.notes.ShowLineNumbers = false
	f.notes.SetWidth(40)
	f.notes.SetHeight(4)
	f.errors = map[string]string{}
	return f
}

func (f *formModel) setFields(v form.Fields) {
	f.inputs[fieldName].SetValue(v.Name)
	f.inputs[fieldStart].SetValue(v.Start)
	f.inputs[fieldEnd].SetValue(v.End)
	f.inputs[fieldCategory].SetValue(v.Category)
	f.inputs[fieldUsers].SetValue(v.Users)
	f.notes.SetValue(v.Notes)
	f.errors = map[string]string{}
}

func (f formModel) fields() form.Fields {
	return form.Fields{
		Name:     f.inputs[fieldName].Value(),
		Start:    f.inputs[fieldStart].Value(),
		End:      f.inputs[fieldEnd].Value(),
		Category: f.inputs[fieldCategory].Value(),
		Notes:    f.notes.Value(),
		Users:    f.inputs[fieldUsers].Value(),
	}
}

func (f *formModel) setErrors(errs []form.FieldError) {
	f.errors = map[string]string{}
	for _, fe := range errs {
		if _, ok := f.errors[fe.Field]; !ok {
			f.errors[fe.Field] = fe.Message
		}
	}
}

func (f *formModel) setWidth(w int) {
	if w < 20 {
		w = 20
	}
	for i := range f.inputs {
		if i != fieldNotes {
			f.inputs[i].Width = w
		}
	}
	f.notes.SetWidth(w)
}

// focusField moves focus to field i (wrapping).
func (f *formModel) focusField(i int) tea.Cmd {
	i = ((i % fieldCount) + fieldCount) % fieldCount
	for j := range f.inputs {
		if j != fieldNotes {
			f.inputs[j].Blur()
		}
	}
	f.notes.Blur()
	f.focus = i
	if i == fieldNotes {
		return f.notes.Focus()
	}
	return f.inputs[i].Focus()
}

func (f formModel) update(msg tea.Msg) (formModel, tea.Cmd) {
	var cmd tea.Cmd
	if f.focus == fieldNotes {
		f.notes, cmd = f.notes.Update(msg)
		return f, cmd
	}
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

func (f formModel) view() string {
	label := lipgloss.NewStyle().Bold(true)
	focused := label.Foreground(colorAccent)

	var b strings.Builder
	for i := 0; i < fieldCount; i++ {
		l := label
		if i == f.focus {
			l = focused
		}
		b.WriteString(l.Render(fieldLabels[i]))
		b.WriteString("\n")
		if i == fieldNotes {
			b.WriteString(f.notes.View())
		} else {
			b.WriteString(f.inputs[i].View())
		}
		b.WriteString("\n")
		if msg := f.errors[fieldKeys[i]]; msg != "" {
			b.WriteString(styleError().Render("  " + msg))
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
