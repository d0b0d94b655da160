// Package config tests configuration loading.
package config

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
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

// isolate points HOME and the working directory at fresh temp dirs and clears
// every TASKS_* variable. It returns the project directory.
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

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestDefaults(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)

	if cfg.StateFile != DefaultStateFile {
		t.Errorf("StateFile: got %q, want %q", cfg.StateFile, DefaultStateFile)
	}
	if cfg.MaxTasks != DefaultMaxTasks {
		t.Errorf("MaxTasks: got %d, want %d", cfg.MaxTasks, DefaultMaxTasks)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "text" {
		t.Errorf("logging: got %q/%q, want info/text", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.AssumeYes {
		t.Error("AssumeYes should default to false")
	}
}

func TestLoadDefaults(t *testing.T) {
	project := isolate(t)

	cws, err := LoadWithSources(flag.NewFlagSet("test", flag.ContinueOnError), nil)
	if err != nil {
		t.Fatalf("LoadWithSources: %v", err)
	}
	cfg := cws.Config

	wantState := filepath.Join(project, DefaultStateFile)
	if cfg.StateFile != wantState {
		t.Errorf("StateFile: got %q, want %q", cfg.StateFile, wantState)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, ".tasks", "logs"); cfg.LogDir != want {
		t.Errorf("LogDir: got %q, want %q", cfg.LogDir, want)
	}
	for _, field := range Fields() {
		if cws.Sources[field] != SourceDefault {
			t.Errorf("source of %s: got %q, want default", field, cws.Sources[field])
		}
	}
	if len(cws.Files) != 0 {
		t.Errorf("Files: got %v, want none", cws.Files)
	}
}

func TestLoadPriority(t *testing.T) {
	project := isolate(t)
	home, _ := os.UserHomeDir()

	writeFile(t, filepath.Join(home, ".tasks", "tasks.toml"), `
state_file = "user.json"
max_tasks = 10
log_level = "debug"
`)
	writeFile(t, filepath.Join(project, "tasks.toml"), `
max_tasks = 20
assume_yes = true
`)
	t.Setenv("TASKS_LOG_LEVEL", "warn")
	t.Setenv("TASKS_LOG_FORMAT", "json")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cws, err := LoadWithSources(fs, []string{"-log-format", "logfmt", "ls"})
	if err != nil {
		t.Fatalf("LoadWithSources: %v", err)
	}
	cfg := cws.Config

	tests := []struct {
		field  string
		want   string
		source ConfigSource
	}{
		{"state_file", filepath.Join(project, "user.json"), SourceUserFile},
		{"max_tasks", "20", SourceProjFile},
		{"assume_yes", "true", SourceProjFile},
		{"log_level", "warn", SourceEnv},
		{"log_format", "logfmt", SourceFlag},
		{"log_caller", "false", SourceDefault},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			if got := cfg.Value(tt.field); got != tt.want {
				t.Errorf("value: got %q, want %q", got, tt.want)
			}
			if got := cws.Sources[tt.field]; got != tt.source {
				t.Errorf("source: got %q, want %q", got, tt.source)
			}
		})
	}

	if len(cws.Files) != 2 {
		t.Errorf("Files: got %v, want user and project files", cws.Files)
	}
	if args := fs.Args(); len(args) != 1 || args[0] != "ls" {
		t.Errorf("remaining args: got %v, want [ls]", args)
	}
}

func TestLoadUnknownKey(t *testing.T) {
	project := isolate(t)
	writeFile(t, filepath.Join(project, ".tasks.toml"), `max_iterations = 3`)

	_, err := Load(flag.NewFlagSet("test", flag.ContinueOnError), nil)
	if err == nil || !strings.Contains(err.Error(), "max_iterations") {
		t.Errorf("expected unknown key error, got %v", err)
	}
}

func TestLoadInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{"bad max tasks env", map[string]string{"TASKS_MAX_TASKS": "many"}, nil},
		{"zero max tasks flag", nil, []string{"-max-tasks", "0"}},
		{"bad log format", map[string]string{"TASKS_LOG_FORMAT": "xml"}, nil},
		{"unknown flag", nil, []string{"-frobnicate"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			fs := flag.NewFlagSet("test", flag.ContinueOnError)
			fs.SetOutput(new(strings.Builder))
			if _, err := Load(fs, tt.args); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv("TASKS_STATE_FILE", "env.json")
	t.Setenv("TASKS_MAX_TASKS", "100")
	t.Setenv("TASKS_ASSUME_YES", "yes")
	t.Setenv("TASKS_LOG_TIMESTAMPS", "1")

	cfg := &Config{}
	setDefaults(cfg)
	sources := map[string]ConfigSource{}
	if err := loadFromEnv(cfg, sources); err != nil {
		t.Fatalf("loadFromEnv: %v", err)
	}

	if cfg.StateFile != "env.json" {
		t.Errorf("StateFile: got %q, want env.json", cfg.StateFile)
	}
	if cfg.MaxTasks != 100 {
		t.Errorf("MaxTasks: got %d, want 100", cfg.MaxTasks)
	}
	if !cfg.AssumeYes || !cfg.LogTimestamps {
		t.Errorf("bools: AssumeYes %v, LogTimestamps %v", cfg.AssumeYes, cfg.LogTimestamps)
	}
	if sources["state_file"] != SourceEnv {
		t.Errorf("source: got %q, want environment", sources["state_file"])
	}
	if _, ok := sources["log_dir"]; ok {
		t.Error("log_dir should not be touched when TASKS_LOG_DIR is unset")
	}
}

func TestEmptyLogDirDisablesJournal(t *testing.T) {
	isolate(t)
	t.Setenv("TASKS_LOG_DIR", "")

	cfg, err := Load(flag.NewFlagSet("test", flag.ContinueOnError), nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogDir != "" {
		t.Errorf("LogDir: got %q, want empty", cfg.LogDir)
	}
}

func TestBoolFromString(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"1", true},
		{"true", true},
		{"TRUE", true},
		{"yes", true},
		{"on", true},
		{"0", false},
		{"false", false},
		{"no", false},
		{"off", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := boolFromString(tt.input); got != tt.want {
				t.Errorf("boolFromString(%q): got %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestResolvePath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}
	root := t.TempDir()
	abs := filepath.Join(root, "elsewhere", "tasks.json")
	t.Setenv("TASKS_TEST_DIR", abs)

	tests := []struct {
		input string
		want  string
	}{
		{"~/test", filepath.Join(home, "test")},
		{"~", home},
		{abs, abs},
		{"relative.json", filepath.Join(root, "relative.json")},
		{"nested/tasks.json", filepath.Join(root, "nested", "tasks.json")},
		{"$TASKS_TEST_DIR", abs},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := resolvePath(tt.input, root); got != tt.want {
				t.Errorf("resolvePath(%q): got %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestExampleConfigParses(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.toml")
	writeFile(t, path, ExampleConfig())

	cfg := &Config{}
	if err := loadConfigFile(cfg, path, nil, SourceProjFile); err != nil {
		t.Fatalf("example config does not parse: %v", err)
	}
	if cfg.StateFile != DefaultStateFile || cfg.MaxTasks != DefaultMaxTasks {
		t.Errorf("example values: %+v", cfg)
	}
}
