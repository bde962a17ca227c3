// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

package validation

import (
	"errors"
	"strings"
	"testing"
)

type sample struct {
	Name     string   `json:"name" validate:"required,identifier,max=16"`
	Kind     string   `json:"@type" validate:"required,oneof=line pie"`
	Interval int      `json:"interval" validate:"gte=0,lte=1440"`
	Tags     []string `json:"tags" validate:"max=2,dive,identifier"`
}

func TestGetValidator_Singleton(t *testing.T) {
	t.Parallel()

	if GetValidator() != GetValidator() {
		t.Error("expected the same validator instance")
	}
}

func TestValidateStruct(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		in        sample
		wantField string
		wantTag   string
	}{
		{
			name: "valid",
			in:   sample{Name: "cpu load", Kind: "line", Interval: 15, Tags: []string{"a"}},
		},
		{
			name:      "missing name uses json field name",
			in:        sample{Kind: "line"},
			wantField: "name",
			wantTag:   "required",
		},
		{
			name:      "slash in name",
			in:        sample{Name: "cpu/load", Kind: "line"},
			wantField: "name",
			wantTag:   "identifier",
		},
		{
			name:      "surrounding space",
			in:        sample{Name: " cpu", Kind: "line"},
			wantField: "name",
			wantTag:   "identifier",
		},
		{
			name:      "unknown kind",
			in:        sample{Name: "cpu", Kind: "radar"},
			wantField: "@type",
			wantTag:   "oneof",
		},
		{
			name:      "interval too large",
			in:        sample{Name: "cpu", Kind: "pie", Interval: 5000},
			wantField: "interval",
			wantTag:   "lte",
		},
		{
			name:      "too many tags",
			in:        sample{Name: "cpu", Kind: "pie", Tags: []string{"a", "b", "c"}},
			wantField: "tags",
			wantTag:   "max",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateStruct(&tt.in)
			if tt.wantTag == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var ve *RequestValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected *RequestValidationError, got %v", err)
			}
			first := ve.Errors()[0]
			if first.Field() != tt.wantField || first.Tag() != tt.wantTag {
				t.Errorf("got %s/%s, want %s/%s", first.Field(), first.Tag(), tt.wantField, tt.wantTag)
			}
			if !strings.Contains(err.Error(), tt.wantField) {
				t.Errorf("message %q should name the field", err.Error())
			}
		})
	}
}

func TestRequestValidationError_Details(t *testing.T) {
	t.Parallel()

	err := ValidateStruct(&sample{})
	var ve *RequestValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	fields, ok := ve.Details()["fields"].([]map[string]interface{})
	if !ok || len(fields) != len(ve.Errors()) {
		t.Fatalf("Details() = %v", ve.Details())
	}
}
