// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

package api

import (
	"net/http"
	"time"
)

// HealthLive returns 200 while the process is alive, regardless of
// dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	respondSuccess(w, r, http.StatusOK, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	}, start)
}

// HealthReady returns 200 once the dashboard has loaded and 503 before.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	loaded := h.dist != nil && h.dist.Loaded()

	clients := 0
	if h.hub != nil {
		clients = h.hub.ClientCount()
	}
	buffered := 0
	if h.log != nil {
		buffered = h.log.Buffered()
	}

	status := http.StatusOK
	state := "success"
	if !loaded {
		status = http.StatusServiceUnavailable
		state = "not_ready"
	}

	respondJSON(w, status, &APIResponse{
		Status: state,
		Data: map[string]interface{}{
			"dashboard_loaded":       loaded,
			"buffered_notifications": buffered,
			"websocket_clients":      clients,
			"ready_to_serve":         loaded,
			"uptime":                 time.Since(h.startTime).Seconds(),
		},
		Metadata: metadataFor(r, start),
	})
}
