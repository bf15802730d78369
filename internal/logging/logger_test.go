package logging

import (
	"bufio"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLoggerCreatesLogFile(t *testing.T) {
	dir := t.TempDir()

	logger, err := NewLogger(dir, LevelDebug, DefaultRotationConfig())
	if err != nil {
		t.Fatalf("NewLogger() error: %v", err)
	}
	defer logger.Close()

	logger.Info("probe cycle started", "target_id", "ET001")

	logPath := filepath.Join(dir, "seatwatch.log")
	if _, err := os.Stat(logPath); err != nil {
		t.Fatalf("expected log file at %s: %v", logPath, err)
	}
}

func TestLoggerWritesJSON(t *testing.T) {
	dir := t.TempDir()

	logger, err := NewLogger(dir, LevelInfo, DefaultRotationConfig())
	if err != nil {
		t.Fatalf("NewLogger() error: %v", err)
	}

	logger.Info("tickets available", "target_id", "ET001", "check_count", 12)
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "seatwatch.log"))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}

	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	if !scanner.Scan() {
		t.Fatal("log file is empty")
	}

	var entry map[string]any
	if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
		t.Fatalf("log entry is not valid JSON: %v", err)
	}

	if entry["msg"] != "tickets available" {
		t.Errorf("msg = %v, want %q", entry["msg"], "tickets available")
	}
	if entry["target_id"] != "ET001" {
		t.Errorf("target_id = %v, want %q", entry["target_id"], "ET001")
	}
}

func TestChildLoggersInheritAttributes(t *testing.T) {
	dir := t.TempDir()

	logger, err := NewLogger(dir, LevelDebug, DefaultRotationConfig())
	if err != nil {
		t.Fatalf("NewLogger() error: %v", err)
	}

	child := logger.WithTarget("ET002").WithAttempt(3).WithStage("paying")
	child.Info("stage entered")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "seatwatch.log"))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.SplitN(string(data), "\n", 2)[0]), &entry); err != nil {
		t.Fatalf("log entry is not valid JSON: %v", err)
	}

	if entry["target_id"] != "ET002" {
		t.Errorf("target_id = %v, want %q", entry["target_id"], "ET002")
	}
	if entry["attempt"] != float64(3) {
		t.Errorf("attempt = %v, want 3", entry["attempt"])
	}
	if entry["stage"] != "paying" {
		t.Errorf("stage = %v, want %q", entry["stage"], "paying")
	}
}

func TestChildLoggerDoesNotMutateParent(t *testing.T) {
	logger := NopLogger()
	child := logger.WithTarget("ET003")

	if len(logger.attrs) != 0 {
		t.Errorf("parent logger gained %d attributes", len(logger.attrs))
	}
	if len(child.attrs) != 1 {
		t.Errorf("child logger has %d attributes, want 1", len(child.attrs))
	}
}

func TestLevelFiltering(t *testing.T) {
	dir := t.TempDir()

	logger, err := NewLogger(dir, LevelWarn, DefaultRotationConfig())
	if err != nil {
		t.Fatalf("NewLogger() error: %v", err)
	}

	logger.Debug("should be dropped")
	logger.Info("should be dropped")
	logger.Warn("should be kept")
	logger.Error("should be kept")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "seatwatch.log"))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}

	lines := strings.Count(strings.TrimSpace(string(data)), "\n") + 1
	if lines != 2 {
		t.Errorf("got %d log lines, want 2:\n%s", lines, data)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNopLogger(t *testing.T) {
	logger := NopLogger()
	logger.Info("goes nowhere")
	if err := logger.Close(); err != nil {
		t.Errorf("Close() on NopLogger should be a no-op, got %v", err)
	}
}
