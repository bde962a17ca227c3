// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/vigil/internal/config"
)

// captureGlobal points the global logger at a buffer for the duration of a test.
func captureGlobal(t *testing.T, cfg Config) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	cfg.Output = &buf
	Init(cfg)
	t.Cleanup(func() { Init(DefaultConfig()) })
	return &buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("output is not one JSON entry: %q", buf.String())
	}
	return entry
}

func TestConfigFrom(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   config.LoggingConfig
		want Config
	}{
		{
			name: "empty section keeps defaults",
			want: Config{Level: "info", Format: "json", Timestamp: true, Service: ServiceName},
		},
		{
			name: "configured",
			in:   config.LoggingConfig{Level: "debug", Format: "console", Caller: true},
			want: Config{Level: "debug", Format: "console", Caller: true, Timestamp: true, Service: ServiceName},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ConfigFrom(&tt.in)
			got.Output = nil
			if got != tt.want {
				t.Errorf("ConfigFrom() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestInit_EntryFields(t *testing.T) {
	buf := captureGlobal(t, Config{Level: "debug", Format: "json"})

	Info().Str("chart", "cpu").Msg("Chart added")

	entry := decodeLine(t, buf)
	want := map[string]any{
		"level":   "info",
		"message": "Chart added",
		"chart":   "cpu",
		"service": ServiceName,
	}
	for k, v := range want {
		if entry[k] != v {
			t.Errorf("%s = %v, want %v", k, entry[k], v)
		}
	}
	if _, ok := entry["time"]; ok {
		t.Error("time field written although Timestamp is off")
	}
}

func TestInit_ServiceAndTimestamp(t *testing.T) {
	buf := captureGlobal(t, Config{Level: "info", Timestamp: true, Service: "vigil-edge"})

	Warn().Msg("Transport reconnecting")

	entry := decodeLine(t, buf)
	if entry["service"] != "vigil-edge" {
		t.Errorf("service = %v, want vigil-edge", entry["service"])
	}
	if _, ok := entry["time"]; !ok {
		t.Error("expected a time field")
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{" WARN ", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"disabled", zerolog.Disabled},
		{"verbose", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	buf := captureGlobal(t, Config{Level: "warn"})

	Debug().Msg("debug-hidden")
	Info().Msg("info-hidden")
	Warn().Msg("warn-shown")
	Error().Msg("error-shown")

	out := buf.String()
	for _, hidden := range []string{"debug-hidden", "info-hidden"} {
		if strings.Contains(out, hidden) {
			t.Errorf("did not expect %q in output", hidden)
		}
	}
	for _, shown := range []string{"warn-shown", "error-shown"} {
		if !strings.Contains(out, shown) {
			t.Errorf("expected %q in output", shown)
		}
	}
}

func TestConsoleFormat(t *testing.T) {
	buf := captureGlobal(t, Config{Level: "info", Format: "CONSOLE"})

	Info().Msg("console line")

	out := buf.String()
	if !strings.Contains(out, "console line") {
		t.Errorf("expected message in console output, got: %s", out)
	}
	if strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Errorf("console output should not be JSON: %s", out)
	}
}
