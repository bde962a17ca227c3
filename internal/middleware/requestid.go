// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/tomtom215/vigil/internal/logging"
)

const (
	// RequestIDHeader carries the request id in both directions.
	RequestIDHeader = "X-Request-ID"

	// CorrelationIDHeader carries a caller-supplied correlation id.
	CorrelationIDHeader = "X-Correlation-ID"

	maxIDLength = 128
)

// RequestID middleware reuses a well-formed incoming X-Request-ID or
// generates a UUID, echoes it in the response and stores it, together with
// a correlation id, in the request context for logging.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if !validID(requestID) {
			requestID = uuid.New().String()
		}
		w.Header().Set(RequestIDHeader, requestID)

		ctx := logging.ContextWithRequestID(r.Context(), requestID)
		if cid := r.Header.Get(CorrelationIDHeader); validID(cid) {
			ctx = logging.ContextWithCorrelationID(ctx, cid)
		} else {
			ctx = logging.ContextWithNewCorrelationID(ctx)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID extracts the request ID from context
func GetRequestID(ctx context.Context) string {
	return logging.RequestIDFromContext(ctx)
}

// validID accepts short printable ASCII ids without spaces.
func validID(id string) bool {
	if id == "" || len(id) > maxIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if c := id[i]; c <= 0x20 || c >= 0x7F {
			return false
		}
	}
	return true
}
