// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

package notification

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/vigil/internal/health"
)

var fixedNow = time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC)

func newTestDecoder() *Decoder {
	return NewDecoder(WithClock(func() time.Time { return fixedNow }))
}

func TestDecode_Variants(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		frame     string
		wantKind  Kind
		wantLevel Level
		check     func(t *testing.T, n Notification)
	}{
		{
			name:      "log",
			frame:     `{"kind":"log","level":"error","message":"disk full","resource":"db-1","stackTrace":"at x","details":{"mount":"/var"}}`,
			wantKind:  KindLog,
			wantLevel: LevelError,
			check: func(t *testing.T, n Notification) {
				l := n.(*Log)
				if l.Resource != "db-1" || l.StackTrace != "at x" || l.Details["mount"] != "/var" {
					t.Errorf("unexpected log fields: %+v", l)
				}
				if l.Message() != "disk full" {
					t.Errorf("Message() = %q", l.Message())
				}
			},
		},
		{
			name:      "log with unknown level",
			frame:     `{"kind":"log","level":"loud","message":"x"}`,
			wantKind:  KindLog,
			wantLevel: LevelInfo,
		},
		{
			name: "health status changed to critical",
			frame: `{"kind":"healthStatusChanged","statusName":"ping",` +
				`"previousStatus":{"@type":"ok","resourceName":"web-1"},` +
				`"newStatus":{"@type":"resourceUnavailable","resourceName":"web-1","isCritical":true,"error":"503"}}`,
			wantKind:  KindHealthStatusChanged,
			wantLevel: LevelError,
			check: func(t *testing.T, n Notification) {
				h := n.(*HealthStatusChanged)
				if h.Previous == nil || h.Previous.Kind() != health.KindOk {
					t.Errorf("Previous = %#v", h.Previous)
				}
				if h.Current.StatusName() != "ping" {
					t.Errorf("Current.StatusName() = %q", h.Current.StatusName())
				}
				if !strings.Contains(h.Message(), "unavailable") {
					t.Errorf("Message() = %q, want status summary", h.Message())
				}
			},
		},
		{
			name:      "health status changed to unknown non-critical kind",
			frame:     `{"kind":"healthStatusChanged","statusName":"quota","newStatus":{"@type":"nearlyFull","resourceName":"s3"}}`,
			wantKind:  KindHealthStatusChanged,
			wantLevel: LevelWarn,
			check: func(t *testing.T, n Notification) {
				h := n.(*HealthStatusChanged)
				if h.Previous != nil {
					t.Errorf("Previous = %#v, want nil", h.Previous)
				}
				if _, ok := h.Current.(*health.GenericMalfunction); !ok {
					t.Errorf("Current = %T, want *health.GenericMalfunction", h.Current)
				}
			},
		},
		{
			name:      "resource event",
			frame:     `{"kind":"resourceEvent","resource":"queue","source":"worker-3","category":"app","sequenceNumber":42,"userData":{"job":7}}`,
			wantKind:  KindResourceEvent,
			wantLevel: LevelInfo,
			check: func(t *testing.T, n Notification) {
				e := n.(*ResourceEvent)
				if e.SequenceNumber != 42 || e.Source != "worker-3" || string(e.UserData) != `{"job":7}` {
					t.Errorf("unexpected event fields: %+v", e)
				}
				if e.Message() == "" {
					t.Error("expected a generated message")
				}
			},
		},
		{
			name:      "scaling happened",
			frame:     `{"kind":"scalingHappened","groupName":"web","action":"scaleOut","castingVoteWeight":0.75,"evaluation":{"cpu":0.9}}`,
			wantKind:  KindScalingHappened,
			wantLevel: LevelInfo,
			check: func(t *testing.T, n Notification) {
				s := n.(*ScalingHappened)
				if s.GroupName != "web" || s.Action != "scaleOut" || s.Evaluation["cpu"] != 0.9 {
					t.Errorf("unexpected scaling fields: %+v", s)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			n, err := newTestDecoder().Decode([]byte(tt.frame))
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if n.Kind() != tt.wantKind {
				t.Errorf("Kind() = %q, want %q", n.Kind(), tt.wantKind)
			}
			if n.Level() != tt.wantLevel {
				t.Errorf("Level() = %q, want %q", n.Level(), tt.wantLevel)
			}
			if !n.Timestamp().Equal(fixedNow) {
				t.Errorf("Timestamp() = %v, want receive time %v", n.Timestamp(), fixedNow)
			}
			if n.ID() == "" {
				t.Error("expected an id")
			}
			if tt.check != nil {
				tt.check(t, n)
			}
		})
	}
}

func TestDecode_IgnoresServerTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		frame string
	}{
		{"rfc3339", `{"kind":"log","timestamp":"2001-01-01T00:00:00Z"}`},
		{"epoch millis", `{"kind":"log","message":"A","timestamp":1700000000000}`},
		{"epoch millis string", `{"kind":"log","message":"A","timestamp":"1700000000000"}`},
		{"null", `{"kind":"log","timestamp":null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			n, err := newTestDecoder().Decode([]byte(tt.frame))
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if !n.Timestamp().Equal(fixedNow) {
				t.Errorf("Timestamp() = %v, want %v", n.Timestamp(), fixedNow)
			}
		})
	}
}

func TestDecode_UniqueIDs(t *testing.T) {
	t.Parallel()

	d := newTestDecoder()
	a, _ := d.Decode([]byte(`{"kind":"log"}`))
	b, _ := d.Decode([]byte(`{"kind":"log"}`))
	if a.ID() == b.ID() {
		t.Error("expected distinct ids for distinct frames")
	}
}

func TestDecode_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		frame string
		want  error
	}{
		{"unknown kind", `{"kind":"metricSpike"}`, ErrUnknownKind},
		{"missing kind", `{"message":"x"}`, ErrUnknownKind},
		{"local-only kind", `{"kind":"transportError","cause":"spoofed"}`, ErrUnknownKind},
		{"not json", `<html>`, ErrMalformedFrame},
		{"status change without status", `{"kind":"healthStatusChanged"}`, ErrMalformedFrame},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			n, err := newTestDecoder().Decode([]byte(tt.frame))
			if err == nil {
				t.Fatalf("expected error, got %#v", n)
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("errors.Is(%v, %v) = false", err, tt.want)
			}
			var de *DecodeError
			if !errors.As(err, &de) {
				t.Errorf("expected *DecodeError, got %T", err)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]Level{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"warning": LevelWarn,
		"error":   LevelError,
		"fatal":   LevelError,
		"":        LevelInfo,
		"verbose": LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNewTransportError(t *testing.T) {
	t.Parallel()

	frame := []byte(strings.Repeat("x", MaxFrameExcerpt+100))
	n := NewTransportError(errors.New("connection reset"), frame)

	if n.Level() != LevelError {
		t.Errorf("Level() = %q, want error", n.Level())
	}
	if n.Cause != "connection reset" {
		t.Errorf("Cause = %q", n.Cause)
	}
	if len(n.Frame) != MaxFrameExcerpt+3 {
		t.Errorf("Frame length = %d, want truncated excerpt", len(n.Frame))
	}
	if n.ID() == "" || n.Timestamp().IsZero() {
		t.Error("expected id and timestamp")
	}
}
