// Package cmd provides tests for CLI command handlers.
package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"

	"github.com/nibzard/tasks-go/internal/storage"
	"github.com/nibzard/tasks-go/internal/task"
)

var envKeys = []string{
	"TASKS_STATE_FILE",
	"TASKS_LOG_DIR",
	"TASKS_MAX_TASKS",
	"TASKS_ASSUME_YES",
	"TASKS_LOG_LEVEL",
	"TASKS_LOG_FORMAT",
	"TASKS_LOG_TIMESTAMPS",
	"TASKS_LOG_CALLER",
}

// isolate points every config location at temp dirs and moves into a fresh
// project directory, which it returns.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "xdg"))
	t.Setenv("APPDATA", filepath.Join(home, "appdata"))
	for _, key := range envKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	project := t.TempDir()
	t.Chdir(project)
	return project
}

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := run(context.Background(), args, strings.NewReader(stdin), &out, &errOut)
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runCLI(t, "", args...)
	if err != nil {
		t.Fatalf("tasks %s: %v\noutput: %s", strings.Join(args, " "), err, out)
	}
	return out
}

func TestRun(t *testing.T) {
	isolate(t)

	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr string
	}{
		{name: "help flag", args: []string{"--help"}, want: "Commands:"},
		{name: "short help flag", args: []string{"-h"}, want: "Commands:"},
		{name: "help command", args: []string{"help"}, want: "Global Options:"},
		{name: "no command", args: nil, want: "Usage:"},
		{name: "version flag", args: []string{"--version"}, want: "tasks version dev"},
		{name: "version command", args: []string{"version"}, want: "tasks version"},
		{name: "unknown command", args: []string{"unknown-command"}, wantErr: "unknown command"},
		{name: "bad flag", args: []string{"-no-such-flag"}, wantErr: "no-such-flag"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCLI(t, "", tt.args...)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("got error %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("output %q missing %q", out, tt.want)
			}
		})
	}
}

func TestTaskLifecycle(t *testing.T) {
	project := isolate(t)

	out := mustRun(t, "add", "-p", "high", "-tags", "docs, v1", "-notes", "cover the API", "Write", "docs")
	if !strings.Contains(out, "Added task 1: Write docs") {
		t.Errorf("add output: %q", out)
	}
	mustRun(t, "add", "-deps", "1", "Publish")

	var got task.Task
	if err := json.Unmarshal([]byte(mustRun(t, "get", "-json", "1")), &got); err != nil {
		t.Fatalf("decode get: %v", err)
	}
	if got.Priority != task.PriorityHigh || len(got.Tags) != 2 || got.Notes != "cover the API" {
		t.Errorf("get: got %+v", got)
	}

	mustRun(t, "update", "-status", "in_progress", "-notes", "", "1")
	if err := json.Unmarshal([]byte(mustRun(t, "get", "-json", "1")), &got); err != nil {
		t.Fatal(err)
	}
	if got.Status != task.StatusInProgress || got.Notes != "" || got.Title != "Write docs" || got.Priority != task.PriorityHigh {
		t.Errorf("update should change only the given fields, got %+v", got)
	}

	if out := mustRun(t, "complete", "1"); !strings.Contains(out, "Completed task 1") {
		t.Errorf("complete output: %q", out)
	}

	var listed []task.Task
	if err := json.Unmarshal([]byte(mustRun(t, "ls", "-json", "-status", "completed")), &listed); err != nil {
		t.Fatal(err)
	}
	if len(listed) != 1 || listed[0].ID != 1 {
		t.Errorf("ls completed: got %v", listed)
	}
	if out := mustRun(t, "ls"); !strings.Contains(out, "open (1):") || !strings.Contains(out, "completed (1):") {
		t.Errorf("ls output: %q", out)
	}

	var stats task.Stats
	if err := json.Unmarshal([]byte(mustRun(t, "stats", "-json")), &stats); err != nil {
		t.Fatal(err)
	}
	if stats.Total != 2 || stats.WithDependencies != 1 || stats.NextID != 3 {
		t.Errorf("stats: got %+v", stats)
	}

	report, err := storage.ValidateFile(filepath.Join(project, "tasks.json"))
	if err != nil || !report.Valid {
		t.Errorf("state file invalid: %v %+v", err, report)
	}
}

func TestCommandErrors(t *testing.T) {
	isolate(t)
	mustRun(t, "add", "A")
	mustRun(t, "add", "-deps", "1", "B")

	tests := []struct {
		name   string
		args   []string
		target any
		want   string
	}{
		{name: "cycle", args: []string{"update", "-deps", "2", "1"}, target: new(*task.CircularDependencyError)},
		{name: "self dependency", args: []string{"update", "-deps", "1", "1"}, target: new(*task.CircularDependencyError)},
		{name: "unknown task", args: []string{"get", "9"}, target: new(*task.NotFoundError)},
		{name: "missing dependency", args: []string{"add", "-deps", "7", "C"}, target: new(*task.ValidationError)},
		{name: "blank title", args: []string{"add"}, target: new(*task.ValidationError)},
		{name: "bad priority", args: []string{"add", "-p", "asap", "C"}, target: new(*task.ValidationError)},
		{name: "bad status filter", args: []string{"ls", "-status", "done"}, target: new(*task.ValidationError)},
		{name: "bad id", args: []string{"get", "abc"}, want: "invalid task id"},
		{name: "missing id", args: []string{"complete"}, want: "missing task id"},
		{name: "update without fields", args: []string{"update", "1"}, want: "nothing to change"},
		{name: "delete with dependents", args: []string{"-yes", "delete", "1"}, want: "depend on it"},
		{name: "load without mode", args: []string{"load", "x.json"}, want: "-mode is required"},
		{name: "load bad mode", args: []string{"load", "-mode", "append", "x.json"}, target: new(*task.ValidationError)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, "", tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.target != nil && !errors.As(err, tt.target) {
				t.Errorf("got %T (%v), want %T", err, err, tt.target)
			}
			if tt.want != "" && !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}

	var listed []task.Task
	if err := json.Unmarshal([]byte(mustRun(t, "ls", "-json")), &listed); err != nil {
		t.Fatal(err)
	}
	if len(listed) != 2 || len(listed[0].Dependencies) != 0 {
		t.Errorf("failed commands changed the state file: %+v", listed)
	}
}

func TestCapacityFlag(t *testing.T) {
	isolate(t)
	mustRun(t, "-max-tasks", "1", "add", "only")
	_, err := runCLI(t, "", "-max-tasks", "1", "add", "another")
	var ce *task.CapacityError
	if !errors.As(err, &ce) {
		t.Fatalf("got %v, want CapacityError", err)
	}
}

func TestIDsNotReusedAcrossRuns(t *testing.T) {
	isolate(t)
	mustRun(t, "add", "a")
	mustRun(t, "add", "b")
	mustRun(t, "-yes", "delete", "2")
	if out := mustRun(t, "add", "c"); !strings.Contains(out, "Added task 3") {
		t.Errorf("got %q, want task 3", out)
	}
}

func TestDeleteConfirmation(t *testing.T) {
	tests := []struct {
		name        string
		stdin       string
		args        []string
		wantDeleted bool
		wantOutput  string
	}{
		{"declined", "n\n", []string{"delete", "1"}, false, "Not deleted: declined by user"},
		{"no input", "", []string{"delete", "1"}, false, "Not deleted: no answer on input"},
		{"approved", "yes\n", []string{"delete", "1"}, true, "Deleted task 1"},
		{"assume yes", "", []string{"-yes", "delete", "1"}, true, "Deleted task 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			mustRun(t, "add", "doomed")

			out, err := runCLI(t, tt.stdin, tt.args...)
			if err != nil {
				t.Fatalf("delete: %v", err)
			}
			if !strings.Contains(out, tt.wantOutput) {
				t.Errorf("output %q missing %q", out, tt.wantOutput)
			}
			_, getErr := runCLI(t, "", "get", "1")
			if deleted := getErr != nil; deleted != tt.wantDeleted {
				t.Errorf("deleted: got %v, want %v", deleted, tt.wantDeleted)
			}
		})
	}
}

func TestClearResetsIDs(t *testing.T) {
	isolate(t)
	mustRun(t, "add", "a")
	mustRun(t, "add", "b")

	if out, _ := runCLI(t, "n\n", "clear"); !strings.Contains(out, "Not cleared") {
		t.Errorf("declined clear output: %q", out)
	}
	if out := mustRun(t, "-yes", "clear"); !strings.Contains(out, "Cleared 2 tasks") {
		t.Errorf("clear output: %q", out)
	}
	if out := mustRun(t, "add", "fresh"); !strings.Contains(out, "Added task 1") {
		t.Errorf("add after clear: %q", out)
	}
}

func TestSaveValidateLoad(t *testing.T) {
	project := isolate(t)
	other := filepath.Join(project, "other.json")

	// Build a second file through its own state file.
	mustRun(t, "-state", other, "add", "x")
	mustRun(t, "-state", other, "add", "-deps", "1", "y")

	mustRun(t, "add", "mine")
	export := filepath.Join(project, "export", "mine.json")
	if out := mustRun(t, "save", export); !strings.Contains(out, "Saved 1 tasks") {
		t.Errorf("save output: %q", out)
	}
	if out, _ := runCLI(t, "n\n", "save", export); !strings.Contains(out, "Not saved: declined by user") {
		t.Errorf("declined overwrite output: %q", out)
	}
	if out := mustRun(t, "-yes", "save", export); !strings.Contains(out, "Saved 1 tasks") {
		t.Errorf("approved overwrite output: %q", out)
	}

	if out := mustRun(t, "validate", other); !strings.Contains(out, "is valid (2 tasks)") {
		t.Errorf("validate output: %q", out)
	}

	var res storage.LoadResult
	if err := json.Unmarshal([]byte(mustRun(t, "load", "-json", "-mode", "merge_renumber", other)), &res); err != nil {
		t.Fatal(err)
	}
	want := []storage.Renumbering{{OldID: 1, NewID: 3}}
	if res.TasksLoaded != 2 || len(res.TasksRenumbered) != 1 || res.TasksRenumbered[0] != want[0] {
		t.Errorf("load result: got %+v", res)
	}

	var y task.Task
	if err := json.Unmarshal([]byte(mustRun(t, "get", "-json", "2")), &y); err != nil {
		t.Fatal(err)
	}
	if y.Title != "y" || len(y.Dependencies) != 1 || y.Dependencies[0] != 3 {
		t.Errorf("renumbered dependency: got %+v", y)
	}

	if out := mustRun(t, "-yes", "load", "-mode", "replace", export); !strings.Contains(out, "Loaded 1 tasks") {
		t.Errorf("replace output: %q", out)
	}
}

func TestValidateInvalidFile(t *testing.T) {
	project := isolate(t)
	path := filepath.Join(project, "broken.json")
	if err := os.WriteFile(path, []byte(`{"metadata": {"version": "2.0", "task_count": 0}, "storage": {"tasks": {}}}`), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, "", "validate", path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(out, "Unsupported version") {
		t.Errorf("output %q should list the problem", out)
	}

	_, err = runCLI(t, "", "load", "-mode", "merge", path)
	var ife *storage.InvalidFileError
	if !errors.As(err, &ife) {
		t.Errorf("load: got %v, want InvalidFileError", err)
	}
}

func TestBrokenStateFileIsNotOverwritten(t *testing.T) {
	project := isolate(t)
	path := filepath.Join(project, "tasks.json")
	if err := os.WriteFile(path, []byte("{oops"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := runCLI(t, "", "add", "x"); err == nil {
		t.Fatal("expected restore error")
	}
	data, _ := os.ReadFile(path)
	if string(data) != "{oops" {
		t.Errorf("state file rewritten: %q", data)
	}
}

func TestJournalCommand(t *testing.T) {
	project := isolate(t)
	logDir := filepath.Join(project, "logs")

	if out := mustRun(t, "-log-dir", logDir, "journal"); !strings.Contains(out, "No journal files found") {
		t.Errorf("empty journal output: %q", out)
	}

	mustRun(t, "-log-dir", logDir, "add", "tracked")
	out := mustRun(t, "-log-dir", logDir, "journal", "-n", "1")
	if !strings.Contains(out, `"op":"add"`) || !strings.Contains(out, `"task_id":1`) {
		t.Errorf("journal output: %q", out)
	}

	if _, err := runCLI(t, "", "-log-dir=", "journal"); err == nil {
		t.Error("expected error when the journal is disabled")
	}
}

func TestConfigCommand(t *testing.T) {
	project := isolate(t)
	if err := os.WriteFile(filepath.Join(project, "tasks.toml"), []byte("max_tasks = 7\n"), 0644); err != nil {
		t.Fatal(err)
	}

	out := mustRun(t, "-log-level", "debug", "config")
	for _, want := range []string{"max_tasks", "7", "(project file)", "log_level", "(flag)", "state_file", "(default)", "tasks.toml"} {
		if !strings.Contains(out, want) {
			t.Errorf("config output missing %q:\n%s", want, out)
		}
	}

	example := mustRun(t, "config", "-example")
	var parsed map[string]any
	if _, err := toml.Decode(example, &parsed); err != nil {
		t.Errorf("example config does not parse: %v", err)
	}
}
