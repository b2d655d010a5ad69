package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args []string) (stdout []byte, stderr []byte, err error) {
	t.Helper()
	cmd := NewRootCmd()
	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)
	e := cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), e
}

// isolate points config and env at a temp dir so tests never touch ~/.taskline.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("TASKLINE_CONFIG_DIR", dir)
	for _, k := range []string{"TASKLINE_FILE", "TASKLINE_BACKEND", "TASKLINE_FORMAT", "TASKLINE_LOG_LEVEL", "TASKLINE_THEME"} {
		t.Setenv(k, "")
	}
	return dir
}

type envelopeOut struct {
	Data  json.RawMessage `json:"data"`
	Hints []string        `json:"_hints"`
}

func decodeEnvelope(t *testing.T, b []byte) envelopeOut {
	t.Helper()
	var env envelopeOut
	if err := json.Unmarshal(b, &env); err != nil {
		t.Fatalf("decode envelope: %v\n%s", err, string(b))
	}
	return env
}

func decodeTasks(t *testing.T, b []byte) []taskView {
	t.Helper()
	env := decodeEnvelope(t, b)
	var out []taskView
	if err := json.Unmarshal(env.Data, &out); err != nil {
		t.Fatalf("decode tasks: %v\n%s", err, string(env.Data))
	}
	return out
}

func names(ts []taskView) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.Name)
	}
	return out
}

func TestTasksList_SeedsWhenFileMissing(t *testing.T) {
	dir := isolate(t)
	file := filepath.Join(dir, "plan.json")

	out, _, err := runCLI(t, []string{"--file", file, "tasks", "list"})
	if err != nil {
		t.Fatalf("tasks list: %v", err)
	}
	tasks := decodeTasks(t, out)
	if len(tasks) != 11 {
		t.Fatalf("expected 11 seed tasks, got %d", len(tasks))
	}
	if tasks[0].Name != "Prep for Launch Web/Brochure" || tasks[10].Name != "Order Bldg" {
		t.Fatalf("unexpected seed order: %v", names(tasks))
	}
	if tasks[0].AssignedUsers == nil || len(tasks[0].AssignedUsers) != 0 {
		t.Fatalf("expected empty assignedUsers, got %#v", tasks[0].AssignedUsers)
	}
	env := decodeEnvelope(t, out)
	if len(env.Hints) == 0 || !strings.Contains(env.Hints[0], "example set") {
		t.Fatalf("expected seed hint, got %v", env.Hints)
	}
	if _, err := os.Stat(file); !os.IsNotExist(err) {
		t.Fatalf("listing must not create the tasks file")
	}
}

func TestTasksList_FilterByCategory(t *testing.T) {
	dir := isolate(t)
	out, _, err := runCLI(t, []string{"--file", filepath.Join(dir, "t.json"), "tasks", "ls", "--category", "nlc"})
	if err != nil {
		t.Fatalf("tasks ls: %v", err)
	}
	got := names(decodeTasks(t, out))
	want := []string{"Legal/Insurance/Contracts", "Secure Contract", "Delivery Vehicle"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestTasksShow_NotFound(t *testing.T) {
	dir := isolate(t)
	_, stderr, err := runCLI(t, []string{"--file", filepath.Join(dir, "t.json"), "tasks", "show", "Nope"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(string(stderr), "task not found: Nope") {
		t.Fatalf("unexpected stderr: %q", string(stderr))
	}
}

func TestTasksUpsert_CreatesAndPersists(t *testing.T) {
	dir := isolate(t)
	file := filepath.Join(dir, "t.json")

	out, _, err := runCLI(t, []string{
		"--file", file, "tasks", "upsert",
		"--name", "Inspection",
		"--start", "2024-08-01",
		"--end", "2024-08-15",
		"--category", "QA",
		"--users", "dan, ,erin",
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	var res upsertView
	if err := json.Unmarshal(decodeEnvelope(t, out).Data, &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !res.Saved || res.Message != "Task 'Inspection' saved successfully!" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Task == nil || strings.Join(res.Task.AssignedUsers, "|") != "dan|erin" {
		t.Fatalf("unexpected users: %+v", res.Task)
	}

	raw, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("read tasks file: %v", err)
	}
	if !strings.Contains(string(raw), `"Inspection": ["2024-08-01","2024-08-15","QA","",["dan","erin"]]`) {
		t.Fatalf("unexpected file contents:\n%s", string(raw))
	}

	out, _, err = runCLI(t, []string{"--file", file, "tasks", "list"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	tasks := decodeTasks(t, out)
	if len(tasks) != 12 || tasks[11].Name != "Inspection" {
		t.Fatalf("expected new task appended, got %v", names(tasks))
	}
	if len(decodeEnvelope(t, out).Hints) != 0 {
		t.Fatalf("expected no seed hint once saved")
	}
}

func TestTasksUpsert_UpdateKeepsPositionAndUnchangedFields(t *testing.T) {
	dir := isolate(t)
	file := filepath.Join(dir, "t.json")

	if _, _, err := runCLI(t, []string{"--file", file, "tasks", "upsert", "--name", "Site Prep", "--notes", "pour *after* survey"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	out, _, err := runCLI(t, []string{"--file", file, "tasks", "list"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	tasks := decodeTasks(t, out)
	if tasks[6].Name != "Site Prep" {
		t.Fatalf("expected Site Prep to keep position 6, got %v", names(tasks))
	}
	got := tasks[6]
	if got.Start != "2024-06-01" || got.End != "2024-06-30" || got.Category != "Bottling Op" || got.Notes != "pour *after* survey" {
		t.Fatalf("unexpected task: %+v", got)
	}
}

func TestTasksUpsert_RenameMovesToEnd(t *testing.T) {
	dir := isolate(t)
	file := filepath.Join(dir, "t.json")

	if _, _, err := runCLI(t, []string{"--file", file, "tasks", "upsert", "--old-name", "Bldg design", "--name", "Building design"}); err != nil {
		t.Fatalf("rename: %v", err)
	}
	out, _, err := runCLI(t, []string{"--file", file, "tasks", "list"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	tasks := decodeTasks(t, out)
	if len(tasks) != 11 {
		t.Fatalf("expected 11 tasks, got %d", len(tasks))
	}
	last := tasks[10]
	if last.Name != "Building design" || last.Start != "2024-04-01" || last.Category != "Bottling Op" {
		t.Fatalf("unexpected renamed task: %+v", last)
	}
	for _, n := range names(tasks) {
		if n == "Bldg design" {
			t.Fatalf("old name still present")
		}
	}
}

func TestTasksUpsert_InvalidLeavesStoreUntouched(t *testing.T) {
	dir := isolate(t)
	file := filepath.Join(dir, "t.json")

	out, stderr, err := runCLI(t, []string{
		"--file", file, "tasks", "upsert",
		"--name", "Backwards",
		"--start", "2024-03-10",
		"--end", "2024-03-01",
		"--category", "QA",
	})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !strings.Contains(string(stderr), "end date must be on or after start date") {
		t.Fatalf("unexpected stderr: %q", string(stderr))
	}
	var res upsertView
	if err := json.Unmarshal(decodeEnvelope(t, out).Data, &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Saved || len(res.Errors) != 1 || res.Errors[0].Field != "end" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if _, err := os.Stat(file); !os.IsNotExist(err) {
		t.Fatalf("invalid upsert must not write the tasks file")
	}
}

func TestTasksUpsert_BlankCategoryRejected(t *testing.T) {
	dir := isolate(t)
	_, stderr, err := runCLI(t, []string{"--file", filepath.Join(dir, "t.json"), "tasks", "upsert", "--name", "New", "--category", "  "})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !strings.Contains(string(stderr), "category is required") {
		t.Fatalf("unexpected stderr: %q", string(stderr))
	}
}

func TestTasksRows_TextFormat(t *testing.T) {
	dir := isolate(t)
	out, _, err := runCLI(t, []string{"--file", filepath.Join(dir, "t.json"), "--format", "text", "tasks", "rows"})
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	s := string(out)
	for _, want := range []string{"TASK", "RESOURCE", "Complete 1st Order", "Boralis Labs", "2024-06-30"} {
		if !strings.Contains(s, want) {
			t.Fatalf("expected %q in output:\n%s", want, s)
		}
	}
}

func TestTasksShow_EDN(t *testing.T) {
	dir := isolate(t)
	out, _, err := runCLI(t, []string{"--file", filepath.Join(dir, "t.json"), "--format", "edn", "tasks", "show", "Production"})
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	s := string(out)
	if !strings.Contains(s, `:data`) || !strings.Contains(s, `:name "Production"`) {
		t.Fatalf("unexpected edn:\n%s", s)
	}
}

func TestFormat_Invalid(t *testing.T) {
	isolate(t)
	if _, _, err := runCLI(t, []string{"--format", "yaml", "tasks", "list"}); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestConfig_Precedence(t *testing.T) {
	dir := isolate(t)
	cfgFile := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(cfgFile, []byte("format = \"text\"\nfile = \""+filepath.ToSlash(filepath.Join(dir, "from-config.json"))+"\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	// config file only
	out, _, err := runCLI(t, []string{"config", "show"})
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(string(out), "from-config.json") || !strings.Contains(string(out), "format:    text") {
		t.Fatalf("expected config values:\n%s", string(out))
	}

	// env beats config
	t.Setenv("TASKLINE_FILE", filepath.Join(dir, "from-env.sqlite"))
	out, _, err = runCLI(t, []string{"config", "show"})
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(string(out), "from-env.sqlite") || !strings.Contains(string(out), "backend:   sqlite") {
		t.Fatalf("expected env values:\n%s", string(out))
	}

	// flags beat env
	out, _, err = runCLI(t, []string{"--format", "json", "--file", filepath.Join(dir, "from-flag.json"), "config", "show"})
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	var v configView
	if err := json.Unmarshal(decodeEnvelope(t, out).Data, &v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !v.Exists || filepath.Base(v.Effective.File) != "from-flag.json" || v.Effective.Backend != "json" || v.Effective.Format != "json" {
		t.Fatalf("unexpected effective config: %+v", v.Effective)
	}
}

func TestConfigInit_RefusesOverwrite(t *testing.T) {
	dir := isolate(t)
	if _, _, err := runCLI(t, []string{"config", "init"}); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "config.toml")); err != nil {
		t.Fatalf("expected config.toml: %v", err)
	}
	if _, _, err := runCLI(t, []string{"config", "init"}); err == nil {
		t.Fatalf("expected error without --force")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--force"}); err != nil {
		t.Fatalf("config init --force: %v", err)
	}
}

func TestSQLiteBackend_FromExtension(t *testing.T) {
	dir := isolate(t)
	file := filepath.Join(dir, "plan.sqlite")

	if _, _, err := runCLI(t, []string{"--file", file, "tasks", "upsert", "--name", "Order Bldg", "--users", "ann"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if _, err := os.Stat(file); err != nil {
		t.Fatalf("expected sqlite file: %v", err)
	}
	out, _, err := runCLI(t, []string{"--file", file, "tasks", "show", "Order Bldg"})
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	var tv taskView
	if err := json.Unmarshal(decodeEnvelope(t, out).Data, &tv); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if strings.Join(tv.AssignedUsers, ",") != "ann" || tv.Start != "2024-07-01" {
		t.Fatalf("unexpected task: %+v", tv)
	}
}

func TestPublish_WritesMarkdown(t *testing.T) {
	dir := isolate(t)
	out := filepath.Join(dir, "docs", "timeline.md")

	if _, _, err := runCLI(t, []string{"--file", filepath.Join(dir, "t.json"), "publish", "--out", out}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	s := string(b)
	for _, want := range []string{"# Project Timeline", "| Task | Start | Finish | Days | Resource | Users |", "## Boralis Labs"} {
		if !strings.Contains(s, want) {
			t.Fatalf("expected %q in report:\n%s", want, s)
		}
	}

	if _, _, err := runCLI(t, []string{"--file", filepath.Join(dir, "t.json"), "publish", "--out", out, "--overwrite=false"}); err == nil {
		t.Fatalf("expected error when report exists and overwrite is off")
	}
}

func TestChart_DrawsAndFigure(t *testing.T) {
	dir := isolate(t)
	file := filepath.Join(dir, "t.json")

	out, _, err := runCLI(t, []string{"--file", file, "chart", "--width", "90"})
	if err != nil {
		t.Fatalf("chart: %v", err)
	}
	s := string(out)
	if !strings.Contains(s, "Project Timeline") || !strings.Contains(s, "Site Prep") || !strings.Contains(s, "█") {
		t.Fatalf("unexpected chart:\n%s", s)
	}

	out, _, err = runCLI(t, []string{"--file", file, "chart", "--figure"})
	if err != nil {
		t.Fatalf("chart --figure: %v", err)
	}
	var fig struct {
		Data []struct {
			Name string `json:"name"`
		} `json:"data"`
	}
	if err := json.Unmarshal(decodeEnvelope(t, out).Data, &fig); err != nil {
		t.Fatalf("decode figure: %v", err)
	}
	if len(fig.Data) != 3 || fig.Data[0].Name != "Bottling Op" {
		t.Fatalf("unexpected traces: %+v", fig.Data)
	}
}

func TestDocs_TopicsAndRaw(t *testing.T) {
	isolate(t)
	out, _, err := runCLI(t, []string{"docs"})
	if err != nil {
		t.Fatalf("docs: %v", err)
	}
	var topics []string
	if err := json.Unmarshal(decodeEnvelope(t, out).Data, &topics); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if strings.Join(topics, ",") != "config,editing,tasks-file" {
		t.Fatalf("unexpected topics: %v", topics)
	}

	out, _, err = runCLI(t, []string{"docs", "Tasks-File", "--raw"})
	if err != nil {
		t.Fatalf("docs tasks-file: %v", err)
	}
	if !strings.HasPrefix(string(out), "# Tasks file") {
		t.Fatalf("unexpected doc:\n%s", string(out))
	}

	if _, _, err := runCLI(t, []string{"docs", "nope"}); err == nil {
		t.Fatalf("expected error for unknown topic")
	}
}
