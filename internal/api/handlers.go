// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/vigil/internal/chart"
	"github.com/tomtom215/vigil/internal/dashboard"
	"github.com/tomtom215/vigil/internal/eventlog"
	"github.com/tomtom215/vigil/internal/management"
	"github.com/tomtom215/vigil/internal/validation"
	ws "github.com/tomtom215/vigil/internal/websocket"
)

// Handler serves the REST and WebSocket endpoints.
type Handler struct {
	log       *eventlog.Log
	dist      *dashboard.Distributor
	hub       *ws.Hub
	mw        *ChiMiddleware
	startTime time.Time
}

// NewHandler wires the handler to its components. hub may be nil, in which
// case /ws answers 503.
func NewHandler(log *eventlog.Log, dist *dashboard.Distributor, hub *ws.Hub, mw *ChiMiddleware) *Handler {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Handler{
		log:       log,
		dist:      dist,
		hub:       hub,
		mw:        mw,
		startTime: time.Now(),
	}
}

// respondServiceError maps component errors onto HTTP statuses.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr *validation.RequestValidationError
		serr *management.StatusError
	)
	switch {
	case errors.As(err, &verr):
		respondErrorDetails(w, r, http.StatusBadRequest, ErrCodeValidationFailed, verr.Error(), verr.Details(), nil)
	case errors.Is(err, chart.ErrInvalidDocument):
		respondError(w, r, http.StatusBadRequest, ErrCodeValidationFailed, err.Error(), nil)
	case errors.Is(err, dashboard.ErrNotLoaded):
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Dashboard not loaded yet", err)
	case errors.Is(err, dashboard.ErrDuplicateChart):
		respondError(w, r, http.StatusConflict, ErrCodeConflict, err.Error(), nil)
	case errors.Is(err, dashboard.ErrUnknownChart), errors.Is(err, dashboard.ErrUnknownGroup):
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, err.Error(), nil)
	case errors.Is(err, management.ErrCircuitOpen):
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Management API unavailable", err)
	case errors.As(err, &serr):
		respondError(w, r, http.StatusBadGateway, ErrCodeUpstreamFailed, "Management API request failed", err)
	case errors.Is(err, eventlog.ErrClosed), errors.Is(err, context.Canceled):
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Shutting down", err)
	default:
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Internal error", err)
	}
}
