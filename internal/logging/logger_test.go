package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestInitLevel(t *testing.T) {
	defer Init(DefaultConfig())

	tests := []struct {
		level    string
		expected zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			Init(Config{Level: tt.level})
			if Logger.GetLevel() != tt.expected {
				t.Errorf("Expected level %v, got %v", tt.expected, Logger.GetLevel())
			}
		})
	}
}

func TestJSONFormat(t *testing.T) {
	defer Init(DefaultConfig())

	var buf bytes.Buffer
	Init(Config{Level: "info", Format: FormatJSON, Output: &buf})
	Info().Str("table", "songs").Int("rows", 71).Msg("Wrote table")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("Expected one JSON object, got %q: %v", buf.String(), err)
	}
	if line["message"] != "Wrote table" || line["table"] != "songs" {
		t.Errorf("Unexpected log line: %v", line)
	}
}

func TestConsoleFormat(t *testing.T) {
	defer Init(DefaultConfig())

	var buf bytes.Buffer
	Init(Config{Level: "info", Output: &buf})
	Debug().Msg("hidden")
	Info().Str("table", "songs").Msg("Wrote table")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("Expected debug line to be filtered")
	}
	if !strings.Contains(out, "Wrote table") || !strings.Contains(out, "table=") || !strings.Contains(out, "songs") {
		t.Errorf("Unexpected console output: %q", out)
	}
}

func TestWithRun(t *testing.T) {
	defer Init(DefaultConfig())

	var buf bytes.Buffer
	Init(Config{Level: "info", Format: FormatJSON, Output: &buf})

	restore := WithRun("run-1")
	Info().Msg("inside")
	restore()
	Info().Msg("outside")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], `"run_id":"run-1"`) {
		t.Errorf("Expected run_id on first line, got %s", lines[0])
	}
	if strings.Contains(lines[1], "run_id") {
		t.Errorf("Expected no run_id after restore, got %s", lines[1])
	}
}
