package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/jakelevirne/Halloween2025/internal/infrastructure/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"DEBUG", slog.LevelDebug},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestOutputWriter(t *testing.T) {
	if w := outputWriter(config.LoggingConfig{Output: "stderr"}); w != os.Stderr {
		t.Error("stderr output should write to os.Stderr")
	}
	if w := outputWriter(config.LoggingConfig{}); w != os.Stdout {
		t.Error("default output should write to os.Stdout")
	}

	path := filepath.Join(t.TempDir(), "show.log")
	w := outputWriter(config.LoggingConfig{
		Output: "file",
		File:   config.FileLoggingConfig{Path: path, MaxSize: 10, MaxBackups: 2},
	})
	lj, ok := w.(*lumberjack.Logger)
	if !ok {
		t.Fatalf("file output = %T, want *lumberjack.Logger", w)
	}
	if lj.Filename != path || lj.MaxSize != 10 || lj.MaxBackups != 2 {
		t.Errorf("lumberjack config = %+v", lj)
	}
}

func TestNew_FileOutputWritesLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "show.log")
	logger := New(config.LoggingConfig{
		Level:  "info",
		Format: "json",
		Output: "file",
		File:   config.FileLoggingConfig{Path: path},
	}, "1.0.0")

	logger.Info("prop admitted", "prop", "coffin")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), `"prop":"coffin"`) {
		t.Errorf("log file = %s, want prop attribute", data)
	}
}

func TestLogger_With(t *testing.T) {
	logger := Default()
	child := logger.With("component", "mqtt")

	if child == nil {
		t.Fatal("expected non-nil child logger")
	}
	if child == logger {
		t.Error("expected child logger to be different from parent")
	}
}

func TestLogger_OutputContainsDefaultFields(t *testing.T) {
	var buf bytes.Buffer

	logger := newWithWriter(config.LoggingConfig{Level: "info", Format: "json"}, "test", &buf)
	logger.Info("test message", "key", "value")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse JSON output: %v", err)
	}

	if entry["service"] != "hauntlogic" {
		t.Errorf("service = %v, want hauntlogic", entry["service"])
	}
	if entry["version"] != "test" {
		t.Errorf("version = %v, want test", entry["version"])
	}
	if entry["msg"] != "test message" {
		t.Errorf("msg = %v, want 'test message'", entry["msg"])
	}
	if entry["key"] != "value" {
		t.Errorf("key = %v, want 'value'", entry["key"])
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer

	logger := newWithWriter(config.LoggingConfig{Level: "warn", Format: "text"}, "test", &buf)
	logger.Info("dropped")
	logger.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Error("info message should be filtered at warn level")
	}
	if !strings.Contains(out, "kept") {
		t.Error("warn message should be written")
	}
}
