// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/vigil/internal/logging"
	"github.com/tomtom215/vigil/internal/notification"
	"github.com/tomtom215/vigil/internal/validation"
)

// Notifications returns the newest notifications, oldest first, in their
// persisted form.
func (h *Handler) Notifications(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req, ok := parseNotificationsRequest(r)
	if !ok {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "count must be an integer", nil)
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		respondServiceError(w, r, err)
		return
	}

	recent := h.log.Recent(req.Count)
	items := make([]json.RawMessage, 0, len(recent))
	for _, n := range recent {
		data, err := notification.Marshal(n)
		if err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Str("id", n.ID()).Msg("Skipping unencodable notification")
			continue
		}
		items = append(items, data)
	}

	respondList(w, r, items, len(items), start)
}

// ClearNotifications empties the buffer and the persisted log.
func (h *Handler) ClearNotifications(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if err := h.log.Clear(); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, map[string]bool{"cleared": true}, start)
}

// FlushNotifications persists the buffered notifications now.
func (h *Handler) FlushNotifications(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	buffered := h.log.Buffered()
	if err := h.log.Flush(); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, map[string]int{"flushed": buffered}, start)
}
