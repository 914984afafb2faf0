package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesJSONToFileAndConsole(t *testing.T) {
	dir := t.TempDir()
	var console bytes.Buffer

	logger, err := New(Config{
		Dir:      dir,
		MaxMB:    1,
		MaxFiles: 1,
		Level:    "info",
		Format:   "json",
	}, &console)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	logger.Info("fetch failed", "session_id", "abc", "error", "HTTP 500")
	logger.Debug("hidden")
	if err := logger.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 log line, got %d: %q", len(lines), data)
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &payload); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if payload["msg"] != "fetch failed" || payload["session_id"] != "abc" || payload["error"] != "HTTP 500" {
		t.Errorf("unexpected payload %#v", payload)
	}
	if payload["level"] != "INFO" {
		t.Errorf("level = %v", payload["level"])
	}

	if strings.TrimSpace(console.String()) != lines[0] {
		t.Errorf("console and file output differ:\n%s\n%s", console.String(), lines[0])
	}
}

func TestNewTextConsoleOnly(t *testing.T) {
	var console bytes.Buffer
	logger, err := New(Config{Level: "debug", Format: "text"}, &console)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	defer logger.Close()

	logger.Debug("tick", "seq", 3)
	if !strings.Contains(console.String(), "msg=tick") || !strings.Contains(console.String(), "seq=3") {
		t.Errorf("unexpected text output %q", console.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
