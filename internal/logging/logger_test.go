package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestNewWithWriter_RenamesErrorKey(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter(&buf, slog.LevelInfo, FormatJSON).Error("boom", "error", errors.New("disk full"))

	out := buf.String()
	if !strings.Contains(out, `"err":"disk full"`) {
		t.Errorf("expected err key, got %s", out)
	}
}

func TestNewWithWriter_Level(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter(&buf, slog.LevelWarn, FormatText).Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("info should be filtered at warn level, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":      slog.LevelInfo,
		"DEBUG": slog.LevelDebug,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}
