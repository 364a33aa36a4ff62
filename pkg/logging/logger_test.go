package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewWriter_JSONByDefault(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriter("info", "production", &buf)
	logger.Info("hello", "key", "value")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "hello" {
		t.Errorf("msg = %v, want hello", entry["msg"])
	}
	if entry["key"] != "value" {
		t.Errorf("key = %v, want value", entry["key"])
	}
}

func TestNewWriter_TextInDevelopment(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriter("debug", "development", &buf)
	logger.Debug("dev message")

	out := buf.String()
	if strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Errorf("expected text output in development, got %q", out)
	}
	if !strings.Contains(out, "dev message") {
		t.Errorf("output missing message: %q", out)
	}
}

func TestNewWriter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriter("error", "production", &buf)
	logger.Info("suppressed")
	if buf.Len() != 0 {
		t.Errorf("info entry should be suppressed at error level, got %q", buf.String())
	}
	logger.Error("kept")
	if buf.Len() == 0 {
		t.Error("error entry should be emitted")
	}
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriter("info", "production", &buf)
	logger.Component("calendar").Info("tagged")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if entry["component"] != "calendar" {
		t.Errorf("component = %v, want calendar", entry["component"])
	}
}
