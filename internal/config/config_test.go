// Package config tests configuration loading.
package config

import (
	"flag"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// isolate points HOME and the config dirs at an empty temp dir and moves into
// a fresh working directory.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("APPDATA", filepath.Join(home, "AppData"))
	for _, env := range []string{"TASKMAN_FILE", "TASKMAN_DEFAULT_SORT", "TASKMAN_LOG_LEVEL", "TASKMAN_LOG_FORMAT", "TASKMAN_LOG_FILE", "TASKMAN_LOG_TIMESTAMPS"} {
		t.Setenv(env, "")
	}
	wd := t.TempDir()
	prevWD, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(wd); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(prevWD) })
	return home
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

	if cfg.TaskFile != DefaultTaskFile {
		t.Errorf("TaskFile: got %q, want %q", cfg.TaskFile, DefaultTaskFile)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel: got %q, want info", cfg.LogLevel)
	}
	if cfg.LogFormat != "text" {
		t.Errorf("LogFormat: got %q, want text", cfg.LogFormat)
	}
}

func TestLoadDefaultsResolveAgainstWorkDir(t *testing.T) {
	isolate(t)
	wd, _ := os.Getwd()

	cws, err := LoadWithSources(flag.NewFlagSet("test", flag.ContinueOnError), nil)
	if err != nil {
		t.Fatalf("LoadWithSources: %v", err)
	}
	want := filepath.Join(wd, DefaultTaskFile)
	if cws.Config.TaskFile != want {
		t.Errorf("TaskFile: got %q, want %q", cws.Config.TaskFile, want)
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

func TestLoadPriorityOrder(t *testing.T) {
	home := isolate(t)
	wd, _ := os.Getwd()

	writeFile(t, filepath.Join(home, ".taskman", "taskman.toml"), `
task_file = "user.json"
log_level = "debug"
log_format = "json"
default_sort = "title"
`)
	writeFile(t, filepath.Join(wd, "taskman.toml"), `
task_file = "project.json"
log_level = "warn"
`)
	t.Setenv("TASKMAN_LOG_LEVEL", "error")
	t.Setenv("TASKMAN_LOG_TIMESTAMPS", "true")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cws, err := LoadWithSources(fs, []string{"-file", "flag.json", "ls"})
	if err != nil {
		t.Fatalf("LoadWithSources: %v", err)
	}
	cfg := cws.Config

	tests := []struct {
		field      string
		wantValue  string
		wantSource ConfigSource
	}{
		{"task_file", filepath.Join(wd, "flag.json"), SourceFlag},
		{"log_level", "error", SourceEnv},
		{"log_format", "json", SourceUserFile},
		{"default_sort", "title", SourceUserFile},
		{"log_timestamps", "true", SourceEnv},
		{"log_file", "", SourceDefault},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			if got := cfg.Get(tt.field); got != tt.wantValue {
				t.Errorf("value: got %q, want %q", got, tt.wantValue)
			}
			if got := cws.Sources[tt.field]; got != tt.wantSource {
				t.Errorf("source: got %q, want %q", got, tt.wantSource)
			}
		})
	}

	if len(cws.Files) != 2 {
		t.Errorf("Files: got %v, want user and project file", cws.Files)
	}
	if rest := fs.Args(); len(rest) != 1 || rest[0] != "ls" {
		t.Errorf("remaining args: got %v, want [ls]", rest)
	}
}

func TestLoadProjectDotFile(t *testing.T) {
	isolate(t)
	wd, _ := os.Getwd()
	writeFile(t, filepath.Join(wd, ".taskman.toml"), `task_file = "hidden.json"`)

	cfg, err := LoadWithSources(flag.NewFlagSet("test", flag.ContinueOnError), nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Config.TaskFile != filepath.Join(wd, "hidden.json") {
		t.Errorf("TaskFile: got %q", cfg.Config.TaskFile)
	}
}

func TestLoadBadConfigFile(t *testing.T) {
	isolate(t)
	wd, _ := os.Getwd()
	writeFile(t, filepath.Join(wd, "taskman.toml"), `task_file = `)

	if _, err := LoadWithSources(flag.NewFlagSet("test", flag.ContinueOnError), nil); err == nil {
		t.Fatal("expected error for malformed TOML")
	}
}

func TestLoadBadEnvBool(t *testing.T) {
	isolate(t)
	t.Setenv("TASKMAN_LOG_TIMESTAMPS", "sometimes")

	if _, err := LoadWithSources(flag.NewFlagSet("test", flag.ContinueOnError), nil); err == nil {
		t.Fatal("expected error for bad TASKMAN_LOG_TIMESTAMPS")
	}
}

func TestLoadUnknownFlag(t *testing.T) {
	isolate(t)
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(discard{})
	if _, err := LoadWithSources(fs, []string{"-nope"}); err == nil {
		t.Fatal("expected error for unknown flag")
	}
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	t.Setenv("TASKMAN_TEST_DIR", "/srv/tasks")

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"~", home},
		{"~/tasks.json", filepath.Join(home, "tasks.json")},
		{"$TASKMAN_TEST_DIR/tasks.json", "/srv/tasks/tasks.json"},
		{"relative/tasks.json", "relative/tasks.json"},
		{"~other/tasks.json", "~other/tasks.json"},
	}
	for _, tt := range tests {
		if runtime.GOOS == "windows" && tt.in == "$TASKMAN_TEST_DIR/tasks.json" {
			continue
		}
		if got := expandPath(tt.in); got != tt.want {
			t.Errorf("expandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExampleConfigParses(t *testing.T) {
	isolate(t)
	wd, _ := os.Getwd()
	writeFile(t, filepath.Join(wd, "taskman.toml"), ExampleConfig())

	cws, err := LoadWithSources(flag.NewFlagSet("test", flag.ContinueOnError), nil)
	if err != nil {
		t.Fatalf("example config should load: %v", err)
	}
	if cws.Sources["task_file"] != SourceProjFile {
		t.Errorf("task_file source: got %q, want project file", cws.Sources["task_file"])
	}
}
