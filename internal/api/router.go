// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/vigil/internal/middleware"
)

// NewRouter builds the chi router for h.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(h.mw.CORS()) // CORS must be global to handle OPTIONS preflight

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	// ========================
	// Health Endpoints
	// ========================
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(h.mw.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})

	// ========================
	// Core API Endpoints
	// ========================
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(h.mw.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", h.Notifications)
			r.Delete("/", h.ClearNotifications)
			r.Post("/flush", h.FlushNotifications)
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/", h.Dashboard)
			r.Get("/charts/{name}/snapshots", h.ChartSnapshots)

			r.Group(func(r chi.Router) {
				r.Use(h.mw.RateLimitWrite())
				r.Post("/reload", h.ReloadDashboard)
				r.Post("/groups", h.AddGroup)
				r.Delete("/groups/{name}", h.RemoveGroup)
				r.Post("/charts", h.AddChart)
				r.Put("/charts/{name}", h.ModifyChart)
				r.Delete("/charts/{name}", h.RemoveChart)
				r.Post("/charts/{name}/reset", h.ResetChart)
			})
		})

		r.Get("/ws", h.WebSocket)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
