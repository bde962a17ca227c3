// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/tomtom215/vigil/internal/logging"
)

func TestRequestID(t *testing.T) {
	tests := []struct {
		name          string
		requestID     string
		correlationID string
		wantReuse     bool
	}{
		{name: "generates when absent", wantReuse: false},
		{name: "reuses upstream id", requestID: "req-123", correlationID: "corr-9", wantReuse: true},
		{name: "replaces id with spaces", requestID: "bad id", wantReuse: false},
		{name: "replaces oversized id", requestID: strings.Repeat("a", maxIDLength+1), wantReuse: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ctxRequestID, ctxCorrelationID string
			h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ctxRequestID = GetRequestID(r.Context())
				ctxCorrelationID = logging.CorrelationIDFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.requestID != "" {
				req.Header.Set(RequestIDHeader, tt.requestID)
			}
			if tt.correlationID != "" {
				req.Header.Set(CorrelationIDHeader, tt.correlationID)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			got := rec.Header().Get(RequestIDHeader)
			if got != ctxRequestID {
				t.Errorf("header %q != context %q", got, ctxRequestID)
			}
			if tt.wantReuse {
				if got != tt.requestID {
					t.Errorf("request id = %q, want %q", got, tt.requestID)
				}
				if ctxCorrelationID != tt.correlationID {
					t.Errorf("correlation id = %q, want %q", ctxCorrelationID, tt.correlationID)
				}
			} else if _, err := uuid.Parse(got); err != nil {
				t.Errorf("generated id %q is not a UUID: %v", got, err)
			}
			if ctxCorrelationID == "" {
				t.Error("correlation id missing from context")
			}
		})
	}
}
