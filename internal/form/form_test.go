package form

import (
	"context"
	"reflect"
	"testing"

	"taskline/internal/model"
	"taskline/internal/store"
)

func seedStore(t *testing.T) *store.TaskStore {
	t.Helper()
	return store.Load(context.Background(), store.Memory{})
}

func TestSession_SelectPrefills(t *testing.T) {
	st := store.New(store.Memory{}, []model.Task{{
		Name:          "Inspection",
		Start:         model.MustDate("2024-08-01"),
		End:           model.MustDate("2024-08-15"),
		Category:      "QA",
		Notes:         "bring clipboard",
		AssignedUsers: []string{"dan", "erin"},
	}})
	s := NewSession()
	s.Select(st, "Inspection")

	want := Fields{Name: "Inspection", Start: "2024-08-01", End: "2024-08-15", Category: "QA", Notes: "bring clipboard", Users: "dan, erin"}
	if s.Selected != "Inspection" || s.Fields != want {
		t.Fatalf("unexpected session: %+v", s)
	}

	s.Select(st, "")
	if s.Selected != "" || s.Fields != DefaultFields() {
		t.Fatalf("expected reset to defaults, got %+v", s)
	}
	s.Select(st, "missing")
	if s.Selected != "" {
		t.Fatalf("unknown task should reset selection")
	}
}

func TestDefaultFields(t *testing.T) {
	f := DefaultFields()
	if f.Name != "" || f.Category != "" || f.Notes != "" || f.Users != "" {
		t.Fatalf("expected empty text fields: %+v", f)
	}
	if f.Start != "2024-01-01" || f.End != "2024-01-31" {
		t.Fatalf("unexpected default range: %s..%s", f.Start, f.End)
	}
}

func TestFields_Validate(t *testing.T) {
	tests := []struct {
		name   string
		fields Fields
		want   []string
	}{
		{name: "ok", fields: Fields{Name: "A", Category: "X", Start: "2024-01-01", End: "2024-01-01"}},
		{name: "missing name", fields: Fields{Name: "  ", Category: "X", Start: "2024-01-01", End: "2024-01-02"}, want: []string{"name"}},
		{name: "missing category", fields: Fields{Name: "A", Start: "2024-01-01", End: "2024-01-02"}, want: []string{"category"}},
		{name: "end before start", fields: Fields{Name: "A", Category: "X", Start: "2024-01-02", End: "2024-01-01"}, want: []string{"end"}},
		{name: "bad dates", fields: Fields{Name: "A", Category: "X", Start: "soon", End: ""}, want: []string{"start", "end"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var got []string
			for _, fe := range tt.fields.Validate() {
				got = append(got, fe.Field)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("fields with errors: got %v want %v", got, tt.want)
			}
		})
	}
}

func TestSubmit_InvalidDoesNotMutate(t *testing.T) {
	st := seedStore(t)
	before := st.Tasks()

	s := NewSession()
	s.Select(st, "Site Prep")
	s.Fields.End = "2024-05-01"

	res, err := s.Submit(context.Background(), st)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Saved || len(res.Errors) == 0 || res.ErrorFor("end") == "" {
		t.Fatalf("expected validation errors, got %+v", res)
	}
	after := st.Tasks()
	if len(after) != len(before) {
		t.Fatalf("store size changed")
	}
	for i := range before {
		if !before[i].Equal(after[i]) {
			t.Fatalf("task %q changed", before[i].Name)
		}
	}
}

func TestSubmit_EditCategoryOfSeedTask(t *testing.T) {
	st := seedStore(t)
	before := map[string]model.Task{}
	for _, tk := range st.Tasks() {
		before[tk.Name] = tk
	}

	s := NewSession()
	s.Select(st, "Site Prep")
	if s.Fields.Category != "Bottling Op" {
		t.Fatalf("unexpected pre-filled category %q", s.Fields.Category)
	}
	s.Fields.Category = "NLC"
	res, err := s.Submit(context.Background(), st)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !res.Saved || res.Message != "Task 'Site Prep' saved successfully!" {
		t.Fatalf("unexpected result: %+v", res)
	}

	if st.Len() != 11 {
		t.Fatalf("expected 11 tasks, got %d", st.Len())
	}
	for _, tk := range st.Tasks() {
		if tk.Name == "Site Prep" {
			if tk.Category != "NLC" {
				t.Fatalf("category not updated: %+v", tk)
			}
			continue
		}
		if !tk.Equal(before[tk.Name]) {
			t.Fatalf("task %q changed: %+v", tk.Name, tk)
		}
	}
}

func TestSubmit_CreateNewTask(t *testing.T) {
	st := seedStore(t)
	s := NewSession()
	s.Fields = Fields{Name: "Inspection", Start: "2024-08-01", End: "2024-08-15", Category: "QA", Users: "dan, erin"}

	res, err := s.Submit(context.Background(), st)
	if err != nil || !res.Saved {
		t.Fatalf("submit: %+v %v", res, err)
	}
	if st.Len() != 12 {
		t.Fatalf("expected 12 tasks, got %d", st.Len())
	}
	got, ok := st.Get("Inspection")
	if !ok || !reflect.DeepEqual(got.AssignedUsers, []string{"dan", "erin"}) {
		t.Fatalf("unexpected Inspection: %+v", got)
	}
	if s.Selected != "Inspection" {
		t.Fatalf("expected selection to follow the saved task, got %q", s.Selected)
	}
}

func TestSubmit_RenameSelectedTask(t *testing.T) {
	st := seedStore(t)
	s := NewSession()
	s.Select(st, "Order Bldg")
	s.Fields.Name = "Order Building"

	if _, err := s.Submit(context.Background(), st); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if st.Has("Order Bldg") || !st.Has("Order Building") || st.Len() != 11 {
		t.Fatalf("expected rename, got %v", st.Names())
	}
}
