// Package form holds the task edit form: selection, pre-fill, the validation gate,
// and submission into a TaskStore.
package form

import (
	"context"
	"fmt"
	"strings"

	"taskline/internal/model"
	"taskline/internal/store"
)

const (
	DefaultStart = "2024-01-01"
	DefaultEnd   = "2024-01-31"
)

// Fields are the raw form values as the user typed them.
type Fields struct {
	Name     string `json:"name"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Category string `json:"category"`
	Notes    string `json:"notes"`
	Users    string `json:"users"`
}

func DefaultFields() Fields {
	return Fields{Start: DefaultStart, End: DefaultEnd}
}

// FieldsFromTask pre-fills the form from an existing task.
func FieldsFromTask(t model.Task) Fields {
	return Fields{
		Name:     t.Name,
		Start:    t.Start.String(),
		End:      t.End.String(),
		Category: t.Category,
		Notes:    t.Notes,
		Users:    t.UsersText(),
	}
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string { return e.Field + ": " + e.Message }

// ValidationError is returned when the form does not pass the gate.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		msgs = append(msgs, fe.Error())
	}
	return "invalid task: " + strings.Join(msgs, "; ")
}

// Validate runs the gate: name and category are required and end must not be
// before start.
func (f Fields) Validate() []FieldError {
	var errs []FieldError
	if strings.TrimSpace(f.Name) == "" {
		errs = append(errs, FieldError{Field: "name", Message: "task name is required"})
	}
	if strings.TrimSpace(f.Category) == "" {
		errs = append(errs, FieldError{Field: "category", Message: "category is required"})
	}
	start, startErr := model.ParseDate(f.Start)
	if startErr != nil {
		errs = append(errs, FieldError{Field: "start", Message: startErr.Error()})
	}
	end, endErr := model.ParseDate(f.End)
	if endErr != nil {
		errs = append(errs, FieldError{Field: "end", Message: endErr.Error()})
	}
	if startErr == nil && endErr == nil && end.Before(start) {
		errs = append(errs, FieldError{Field: "end", Message: "end date must be on or after start date"})
	}
	return errs
}

// Task converts validated fields into a task.
func (f Fields) Task() (model.Task, error) {
	if errs := f.Validate(); len(errs) > 0 {
		return model.Task{}, &ValidationError{Errors: errs}
	}
	start, _ := model.ParseDate(f.Start)
	end, _ := model.ParseDate(f.End)
	return model.Task{
		Name:          strings.TrimSpace(f.Name),
		Start:         start,
		End:           end,
		Category:      strings.TrimSpace(f.Category),
		Notes:         f.Notes,
		AssignedUsers: model.ParseUsers(f.Users),
	}, nil
}

// Session is one user's form state: which task is selected ("" creates a new task)
// and the current field values.
type Session struct {
	Selected string
	Fields   Fields
}

func NewSession() *Session {
	return &Session{Fields: DefaultFields()}
}

// Select pre-fills the form from the named task. Unknown names reset the form.
func (s *Session) Select(st *store.TaskStore, name string) {
	if name == "" || st == nil {
		s.Reset()
		return
	}
	t, ok := st.Get(name)
	if !ok {
		s.Reset()
		return
	}
	s.Selected = name
	s.Fields = FieldsFromTask(t)
}

// Reset switches to "create new" with default fields.
func (s *Session) Reset() {
	s.Selected = ""
	s.Fields = DefaultFields()
}

// Result is what a submit surfaces to the user.
type Result struct {
	Saved   bool         `json:"saved"`
	Message string       `json:"message,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
	Task    *model.Task  `json:"task,omitempty"`
}

// Submit applies the form to the store. When the gate fails nothing is written and
// the result lists what is wrong. The selected task name is passed as the rename
// source, so editing a task's name renames it.
func (s *Session) Submit(ctx context.Context, st *store.TaskStore) (Result, error) {
	t, err := s.Fields.Task()
	if err != nil {
		if ve, ok := err.(*ValidationError); ok {
			return Result{Errors: ve.Errors}, nil
		}
		return Result{}, err
	}
	if err := st.Put(ctx, t, s.Selected); err != nil {
		return Result{}, err
	}
	s.Selected = t.Name
	s.Fields = FieldsFromTask(t)
	return Result{
		Saved:   true,
		Message: fmt.Sprintf("Task '%s' saved successfully!", t.Name),
		Task:    &t,
	}, nil
}

// ErrorFor returns the first error message for field, if any.
func (r Result) ErrorFor(field string) string {
	for _, fe := range r.Errors {
		if fe.Field == field {
			return fe.Message
		}
	}
	return ""
}
