// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

/*
Package middleware provides HTTP middleware shared by the API router.

Key Components:

  - RequestID: accepts or generates X-Request-ID and seeds the logging
    context with request and correlation ids
  - PrometheusMetrics: request count, latency and in-flight gauge, labelled
    by chi route pattern so path parameters do not explode cardinality

Both are chi-compatible (func(http.Handler) http.Handler) and preserve
http.Hijacker, so they can wrap the WebSocket upgrade route.

Usage:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
*/
package middleware
