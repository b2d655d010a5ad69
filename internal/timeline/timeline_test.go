package timeline

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"taskline/internal/model"
)

func sampleTasks() []model.Task {
	return []model.Task{
		{Name: "Site Prep", Start: model.MustDate("2024-06-01"), End: model.MustDate("2024-06-30"), Category: "Bottling Op", AssignedUsers: []string{}},
		{Name: "Secure Contract", Start: model.MustDate("2024-05-01"), End: model.MustDate("2024-05-31"), Category: "NLC", Notes: "sign by Friday", AssignedUsers: []string{"dan"}},
		{Name: "Inspection", Start: model.MustDate("2024-08-01"), End: model.MustDate("2024-08-15"), Category: "QA", AssignedUsers: []string{"dan", "erin"}},
		{Name: "Pour Slab", Start: model.MustDate("2024-07-01"), End: model.MustDate("2024-07-31"), Category: "Bottling Op", AssignedUsers: []string{}},
	}
}

func TestProject(t *testing.T) {
	rows := Project(sampleTasks())
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	got := rows[2]
	if got.Task != "Inspection" || got.Resource != "QA" || got.Users != "dan, erin" ||
		got.Start.String() != "2024-08-01" || got.Finish.String() != "2024-08-15" {
		t.Fatalf("unexpected row: %+v", got)
	}
	if rows[0].Users != "" {
		t.Fatalf("expected empty users string, got %q", rows[0].Users)
	}
	var names []string
	for _, r := range rows {
		names = append(names, r.Task)
	}
	if !reflect.DeepEqual(names, []string{"Site Prep", "Secure Contract", "Inspection", "Pour Slab"}) {
		t.Fatalf("rows out of store order: %v", names)
	}
}

func TestSpanAndCategories(t *testing.T) {
	rows := Project(sampleTasks())
	first, last, ok := Span(rows)
	if !ok || first.String() != "2024-05-01" || last.String() != "2024-08-15" {
		t.Fatalf("unexpected span: %s..%s ok=%v", first, last, ok)
	}
	if _, _, ok := Span(nil); ok {
		t.Fatalf("expected no span for empty rows")
	}
	if got := Categories(rows); !reflect.DeepEqual(got, []string{"Bottling Op", "NLC", "QA"}) {
		t.Fatalf("unexpected categories: %v", got)
	}
}

func TestPalette_StableByFirstAppearance(t *testing.T) {
	p := NewPalette(Project(sampleTasks()))
	if p.Color("Bottling Op") != qualitative[0] || p.Color("NLC") != qualitative[1] || p.Color("QA") != qualitative[2] {
		t.Fatalf("unexpected palette: %+v", p)
	}
	if p.Color("unknown") != qualitative[0] {
		t.Fatalf("unknown category should use the first color")
	}
}

func TestBuildFigure(t *testing.T) {
	fig := BuildFigure(Project(sampleTasks()), FigureOptions{})
	if fig.Layout.Title.Text != DefaultTitle || fig.Layout.Legend.Title.Text != "Resource" || fig.Layout.XAxis.Type != "date" {
		t.Fatalf("unexpected layout: %+v", fig.Layout)
	}
	if len(fig.Data) != 3 {
		t.Fatalf("expected one trace per category, got %d", len(fig.Data))
	}
	bottling := fig.Data[0]
	if bottling.Name != "Bottling Op" || !reflect.DeepEqual(bottling.Y, []string{"Site Prep", "Pour Slab"}) {
		t.Fatalf("unexpected first trace: %+v", bottling)
	}
	if !reflect.DeepEqual(bottling.Base, []string{"2024-06-01", "2024-07-01"}) {
		t.Fatalf("unexpected bases: %v", bottling.Base)
	}
	if bottling.X[0] != 29*msPerDay {
		t.Fatalf("unexpected bar length: %d", bottling.X[0])
	}
	qa := fig.Data[2]
	if qa.CustomData[0] != [3]string{"", "dan, erin", "2024-08-15"} {
		t.Fatalf("unexpected custom data: %v", qa.CustomData[0])
	}
}

func TestBuildFigure_HoverOmitsCategory(t *testing.T) {
	fig := BuildFigure(Project(sampleTasks()), FigureOptions{Title: "Plant"})
	for _, tr := range fig.Data {
		if strings.Contains(tr.HoverTemplate, "Resource") || strings.Contains(tr.HoverTemplate, "%{fullData.name}") {
			t.Fatalf("hover should not show category: %s", tr.HoverTemplate)
		}
		for _, want := range []string{"Notes=", "Users="} {
			if !strings.Contains(tr.HoverTemplate, want) {
				t.Fatalf("hover missing %q: %s", want, tr.HoverTemplate)
			}
		}
	}
	b, err := fig.JSON()
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("figure is not valid json: %v", err)
	}
	if fig.Layout.Title.Text != "Plant" {
		t.Fatalf("title option ignored")
	}
}

func TestRenderTerminal(t *testing.T) {
	out := RenderTerminal(Project(sampleTasks()), TerminalOptions{Width: 80})
	for _, want := range []string{DefaultTitle, "Site Prep", "Inspection", barGlyph, "May 24", "Aug", "NLC", "QA"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	lines := strings.Split(out, "\n")
	// Title + 4 bars + axis + months + blank + legend.
	if len(lines) != 9 {
		t.Fatalf("expected 9 lines, got %d:\n%s", len(lines), out)
	}
}

func TestRenderTerminal_Empty(t *testing.T) {
	out := RenderTerminal(nil, TerminalOptions{Title: "Empty"})
	if !strings.Contains(out, "Empty") || !strings.Contains(out, "(no tasks)") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestRenderTerminal_TruncatesLongLabels(t *testing.T) {
	rows := Project([]model.Task{{Name: strings.Repeat("x", 60), Start: model.MustDate("2024-01-01"), End: model.MustDate("2024-01-10"), Category: "A"}})
	out := RenderTerminal(rows, TerminalOptions{Width: 60, NoLegend: true})
	if strings.Contains(out, strings.Repeat("x", 29)) || !strings.Contains(out, "…") {
		t.Fatalf("expected truncated label:\n%s", out)
	}
}

func TestBuildFigure_HoverTextIsLiteral(t *testing.T) {
	tasks := []model.Task{{
		Name:          "Launch",
		Start:         model.MustDate("2024-01-01"),
		End:           model.MustDate("2024-01-02"),
		Category:      "Ops",
		Notes:         "<b>bold</b><br>next & more",
		AssignedUsers: []string{"<i>ann</i>"},
	}}
	fig := BuildFigure(Project(tasks), FigureOptions{})
	got := fig.Data[0].CustomData[0]
	want := [3]string{"&lt;b&gt;bold&lt;/b&gt;&lt;br&gt;next &amp; more", "&lt;i&gt;ann&lt;/i&gt;", "2024-01-02"}
	if got != want {
		t.Fatalf("custom data:\n got: %q\nwant: %q", got, want)
	}
}
