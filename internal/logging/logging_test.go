package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"verbose", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultLogConfig()
	cfg.Console = &buf
	cfg.Level = "warn"

	logger := NewLogger(cfg)
	logger.Info().Msg("hidden message")
	logger.Warn().Msg("visible message")

	out := buf.String()
	if strings.Contains(out, "hidden message") {
		t.Errorf("Expected info message to be filtered, got %q", out)
	}
	if !strings.Contains(out, "visible message") {
		t.Errorf("Expected warn message in output, got %q", out)
	}
}

func TestNewLogger_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "dealscan.log")
	cfg := DefaultLogConfig()
	cfg.Console = nil
	cfg.FilePath = path

	logger := NewLogger(cfg)
	logger.Info().Str("term", "merger India").Msg("fetched")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Expected log file to be written, got %v", err)
	}
	if !strings.Contains(string(data), `"term":"merger India"`) {
		t.Errorf("Expected JSON field in log file, got %q", string(data))
	}
}
