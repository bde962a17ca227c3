// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

/*
Package api provides the HTTP surface of the console using the Chi router.

Every JSON response uses one envelope:

	{
	  "status":   "success" | "error",
	  "data":     ...,
	  "metadata": {"timestamp": "...", "query_time_ms": 3, "request_id": "..."},
	  "error":    {"code": "NOT_FOUND", "message": "...", "details": {...}}
	}

Routes:

	GET    /api/v1/health/live
	GET    /api/v1/health/ready
	GET    /api/v1/notifications?count=N
	DELETE /api/v1/notifications
	POST   /api/v1/notifications/flush
	GET    /api/v1/dashboard
	POST   /api/v1/dashboard/reload
	POST   /api/v1/dashboard/groups
	DELETE /api/v1/dashboard/groups/{name}
	POST   /api/v1/dashboard/charts
	PUT    /api/v1/dashboard/charts/{name}
	DELETE /api/v1/dashboard/charts/{name}
	POST   /api/v1/dashboard/charts/{name}/reset
	GET    /api/v1/dashboard/charts/{name}/snapshots
	GET    /api/v1/ws
	GET    /metrics

Middleware: request ids, real IP, panic recovery and go-chi/cors apply
globally; go-chi/httprate limits each route group, with a tighter limit on
dashboard writes; Prometheus instrumentation covers /api/v1.
*/
package api
