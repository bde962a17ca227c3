// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

package api

import (
	"net/http"
	"strconv"
)

// NotificationsRequest holds the query of GET /notifications. Count zero
// means the configured default.
type NotificationsRequest struct {
	Count int `json:"count" validate:"gte=0,lte=10000"`
}

// GroupRequest is the body of POST /dashboard/groups.
type GroupRequest struct {
	Name string `json:"name" validate:"required,identifier,max=128"`
}

// parseNotificationsRequest reads the query. A non-numeric count is
// reported as a validation failure on the count field.
func parseNotificationsRequest(r *http.Request) (NotificationsRequest, bool) {
	var req NotificationsRequest
	if raw := r.URL.Query().Get("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return req, false
		}
		req.Count = n
	}
	return req, true
}
