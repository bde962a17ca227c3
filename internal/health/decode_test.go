// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

package health

import (
	"strings"
	"testing"
	"time"
)

func TestDecode_KnownKinds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		raw      string
		wantKind Kind
		critical bool
		check    func(t *testing.T, s Status)
	}{
		{
			name:     "ok ignores critical flag",
			raw:      `{"@type":"ok","resourceName":"db-1","isCritical":true}`,
			wantKind: KindOk,
			critical: false,
		},
		{
			name:     "resource unavailable",
			raw:      `{"@type":"resourceUnavailable","resourceName":"db-1","isCritical":true,"error":"timeout"}`,
			wantKind: KindResourceUnavailable,
			critical: true,
			check: func(t *testing.T, s Status) {
				if got := s.(*ResourceUnavailable).Error; got != "timeout" {
					t.Errorf("Error = %q, want timeout", got)
				}
			},
		},
		{
			name:     "connection problem",
			raw:      `{"@type":"connectionProblem","resourceName":"db-1","error":"refused"}`,
			wantKind: KindConnectionProblem,
			check: func(t *testing.T, s Status) {
				if got := s.(*ConnectionProblem).Error; got != "refused" {
					t.Errorf("Error = %q, want refused", got)
				}
			},
		},
		{
			name:     "invalid attribute value with numeric value",
			raw:      `{"@type":"invalidAttributeValue","resourceName":"db-1","attributeName":"cpu","attributeValue":97.5}`,
			wantKind: KindInvalidAttributeValue,
			check: func(t *testing.T, s Status) {
				v := s.(*InvalidAttributeValue)
				if v.Attribute != "cpu" || v.Value != "97.5" {
					t.Errorf("got %s=%s, want cpu=97.5", v.Attribute, v.Value)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := Decode("availability", []byte(tt.raw))
			if s.Kind() != tt.wantKind {
				t.Fatalf("Kind() = %q, want %q", s.Kind(), tt.wantKind)
			}
			if s.IsCritical() != tt.critical {
				t.Errorf("IsCritical() = %v, want %v", s.IsCritical(), tt.critical)
			}
			if s.ResourceName() != "db-1" {
				t.Errorf("ResourceName() = %q, want db-1", s.ResourceName())
			}
			if s.StatusName() != "availability" {
				t.Errorf("StatusName() = %q, want availability", s.StatusName())
			}
			if tt.check != nil {
				tt.check(t, s)
			}
		})
	}
}

func TestDecode_UnknownKindFallsBack(t *testing.T) {
	t.Parallel()

	raw := `{"@type":"quotaExceeded","resourceName":"bucket-7","isCritical":true,"serverDetails":"93% used","quota":100}`
	s := Decode("storage", []byte(raw))

	gm, ok := s.(*GenericMalfunction)
	if !ok {
		t.Fatalf("expected *GenericMalfunction, got %T", s)
	}
	if s.Kind() == KindOk {
		t.Error("unknown kind must not classify as ok")
	}
	if gm.Type != "quotaExceeded" {
		t.Errorf("Type = %q, want quotaExceeded", gm.Type)
	}
	if gm.ResourceName() != "bucket-7" {
		t.Errorf("ResourceName() = %q, want bucket-7", gm.ResourceName())
	}
	if !gm.IsCritical() {
		t.Error("critical classification must be preserved for unknown kinds")
	}
	if gm.ServerDetails() != "93% used" {
		t.Errorf("ServerDetails() = %q", gm.ServerDetails())
	}
	if string(gm.Fields["quota"]) != "100" {
		t.Errorf("expected quota field preserved, got %v", gm.Fields)
	}
	if _, leaked := gm.Fields["resourceName"]; leaked {
		t.Error("common fields should be consumed, not kept in Fields")
	}
}

func TestDecode_MissingKind(t *testing.T) {
	t.Parallel()

	s := Decode("", []byte(`{"statusName":"disk","resourceName":"node-2"}`))
	gm, ok := s.(*GenericMalfunction)
	if !ok {
		t.Fatalf("expected *GenericMalfunction, got %T", s)
	}
	if gm.Type != "" {
		t.Errorf("Type = %q, want empty", gm.Type)
	}
	if gm.StatusName() != "disk" {
		t.Errorf("StatusName() = %q, want disk from fragment", gm.StatusName())
	}
}

func TestDecode_MalformedNeverFails(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{`not json`, `[1,2]`, ``, `null`} {
		s := Decode("ping", []byte(raw))
		if s == nil {
			t.Fatalf("Decode(%q) returned nil", raw)
		}
		if _, ok := s.(*GenericMalfunction); !ok {
			t.Errorf("Decode(%q) = %T, want *GenericMalfunction", raw, s)
		}
	}

	s := Decode("ping", []byte(`not json`))
	if s.ServerDetails() != "not json" {
		t.Errorf("raw text should be kept in ServerDetails, got %q", s.ServerDetails())
	}
}

func TestParseTime(t *testing.T) {
	t.Parallel()

	want := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ms := want.UnixMilli()

	tests := []struct {
		raw  string
		want time.Time
	}{
		{`1772366400000`, want},
		{`"1772366400000"`, want},
		{`"2026-03-01T12:00:00Z"`, want},
		{`null`, time.Time{}},
		{`"yesterday"`, time.Time{}},
		{``, time.Time{}},
	}
	if ms != 1772366400000 {
		t.Fatalf("fixture mismatch: %d", ms)
	}
	for _, tt := range tests {
		if got := ParseTime([]byte(tt.raw)); !got.Equal(tt.want) {
			t.Errorf("ParseTime(%s) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestMarshal_RoundTrip(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, 5, 4, 3, 2, 1, 0, time.UTC)
	statuses := []Status{
		&Ok{Common: Common{Name: "ping", Resource: "web-1", Timestamp: ts}},
		&ResourceUnavailable{Common: Common{Name: "ping", Resource: "web-1", Critical: true}, Error: "503"},
		&ConnectionProblem{Common: Common{Name: "jdbc", Resource: "db"}, Error: "reset"},
		&InvalidAttributeValue{Common: Common{Name: "mem", Resource: "db"}, Attribute: "heap", Value: "high"},
	}

	for _, s := range statuses {
		data, err := Marshal(s)
		if err != nil {
			t.Fatalf("Marshal(%T): %v", s, err)
		}
		got := Decode("", data)
		if got.Kind() != s.Kind() || got.StatusName() != s.StatusName() ||
			got.ResourceName() != s.ResourceName() || got.IsCritical() != s.IsCritical() ||
			!got.ServerTimestamp().Equal(s.ServerTimestamp()) || got.Summary() != s.Summary() {
			t.Errorf("round trip mismatch for %T: got %+v", s, got)
		}
	}
}

func TestMarshal_GenericMalfunctionKeepsUnknownFields(t *testing.T) {
	t.Parallel()

	raw := `{"@type":"quotaExceeded","resourceName":"bucket","quota":{"limit":10}}`
	first := Decode("storage", []byte(raw))

	data, err := Marshal(first)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"@type":"quotaExceeded"`) {
		t.Errorf("expected original @type in %s", data)
	}

	second := Decode("", data).(*GenericMalfunction)
	if second.Type != "quotaExceeded" || string(second.Fields["quota"]) != `{"limit":10}` {
		t.Errorf("unknown status did not survive: %+v", second)
	}
}
