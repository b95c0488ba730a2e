package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want log.Level
	}{
		{"debug", log.DebugLevel},
		{"INFO", log.InfoLevel},
		{"warn", log.WarnLevel},
		{"warning", log.WarnLevel},
		{"error", log.ErrorLevel},
		{"", log.InfoLevel},
		{"verbose", log.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseFormatter(t *testing.T) {
	if ParseFormatter("json") != log.JSONFormatter {
		t.Error("json should map to JSONFormatter")
	}
	if ParseFormatter("logfmt") != log.LogfmtFormatter {
		t.Error("logfmt should map to LogfmtFormatter")
	}
	if ParseFormatter("fancy") != log.TextFormatter {
		t.Error("unknown should map to TextFormatter")
	}
}

func TestOpenFallbackWriter(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFn, err := Open(Setup{Level: "warn", Format: "json", Fallback: &buf})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer closeFn()

	logger.Info("hidden")
	logger.Warn("store unreadable", "path", "tasks.json")

	out := strings.TrimSpace(buf.String())
	if strings.Contains(out, "hidden") {
		t.Errorf("info line should be filtered at warn level: %q", out)
	}
	var line map[string]interface{}
	if err := json.Unmarshal([]byte(out), &line); err != nil {
		t.Fatalf("expected one JSON line, got %q: %v", out, err)
	}
	if line["msg"] != "store unreadable" || line["path"] != "tasks.json" {
		t.Errorf("unexpected fields: %v", line)
	}
}

func TestOpenFileAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "taskman.log")

	for _, msg := range []string{"first", "second"} {
		logger, closeFn, err := Open(Setup{Level: "debug", File: path})
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		logger.Debug(msg)
		if err := closeFn(); err != nil {
			t.Fatalf("close: %v", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if !strings.Contains(out, "first") || !strings.Contains(out, "second") {
		t.Errorf("log file should contain both sessions:\n%s", out)
	}
}
