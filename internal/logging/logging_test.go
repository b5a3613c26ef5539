package logging

import (
	"bytes"
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
		{"INFO", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "warn", false)
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("hidden")
	logger.Warn("shown", "period", "2025-02")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "period=2025-02") {
		t.Errorf("output = %q", out)
	}

	buf.Reset()
	logger, _ = New(&buf, "error", true)
	logger.Debug("verbose wins")
	if !strings.Contains(buf.String(), "verbose wins") {
		t.Errorf("verbose did not enable debug: %q", buf.String())
	}
}
