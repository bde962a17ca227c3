// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestSlogHandler_Enabled(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h := NewSlogHandlerWithLogger(NewTestLogger(&buf).Level(zerolog.WarnLevel))

	tests := []struct {
		level slog.Level
		want  bool
	}{
		{slog.LevelDebug, false},
		{slog.LevelInfo, false},
		{slog.LevelWarn, true},
		{slog.LevelError, true},
	}
	for _, tt := range tests {
		if got := h.Enabled(context.Background(), tt.level); got != tt.want {
			t.Errorf("Enabled(%v) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestSlogHandler_Handle(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewSlogHandlerWithLogger(NewTestLogger(&buf)))

	logger.Warn("service restarted",
		slog.String("service", "poller"),
		slog.Int("attempt", 3),
		slog.Bool("backoff", true),
		slog.Duration("delay", 2*time.Second),
	)

	out := buf.String()
	for _, want := range []string{
		`"level":"warn"`,
		`"message":"service restarted"`,
		`"service":"poller"`,
		`"attempt":3`,
		`"backoff":true`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in output, got: %s", want, out)
		}
	}
}

func TestSlogHandler_WithAttrsAndGroups(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	var h slog.Handler = NewSlogHandlerWithLogger(NewTestLogger(&buf))
	h = h.WithAttrs([]slog.Attr{slog.String("supervisor", "root")})
	h = h.WithGroup("outer").WithGroup("inner")

	slog.New(h).Info("grouped", slog.String("key", "value"))

	out := buf.String()
	if !strings.Contains(out, `"outer.inner.supervisor":"root"`) {
		t.Errorf("expected grouped pre-configured attr, got: %s", out)
	}
	if !strings.Contains(out, `"outer.inner.key":"value"`) {
		t.Errorf("expected outer.inner.key, got: %s", out)
	}
}

func TestSlogHandler_WithGroup_Empty(t *testing.T) {
	t.Parallel()

	h := NewSlogHandler()
	if h.WithGroup("") != h {
		t.Error("expected WithGroup(\"\") to return the same handler")
	}
}

func TestAddAttr_NestedGroupValue(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewSlogHandlerWithLogger(NewTestLogger(&buf)))
	logger.Info("nested", slog.Group("http", slog.Int("status", 502)))

	if !strings.Contains(buf.String(), `"http.status":502`) {
		t.Errorf("expected http.status, got: %s", buf.String())
	}
}

func TestSlogToZerologLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   slog.Level
		want zerolog.Level
	}{
		{slog.LevelDebug - 4, zerolog.TraceLevel},
		{slog.LevelDebug, zerolog.DebugLevel},
		{slog.LevelInfo, zerolog.InfoLevel},
		{slog.LevelWarn, zerolog.WarnLevel},
		{slog.LevelError, zerolog.ErrorLevel},
		{slog.LevelError + 4, zerolog.ErrorLevel},
	}
	for _, tt := range tests {
		if got := slogToZerologLevel(tt.in); got != tt.want {
			t.Errorf("slogToZerologLevel(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
