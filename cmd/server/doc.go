// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

/*
Command server runs the Vigil event and telemetry distribution core.

It receives notification frames from the monitored system (over a WebSocket
or a NATS subject), keeps them in a bounded durable log, polls chart
snapshots through the management REST API and fans everything out to
browsers over /api/v1/ws.

# Startup

 1. Configuration: koanf (defaults, config.yaml, environment)
 2. Logging: zerolog, json or console
 3. Storage: badger on disk, or memory
 4. Management client: net/http with rate limiter and circuit breaker
 5. Event log, chart distributor, WebSocket hub and bridge
 6. Transport: websocket, nats or none
 7. Supervisor tree and HTTP server

# Configuration

Common environment variables:

	HTTP_PORT=8080
	LOG_LEVEL=info
	STORAGE_BACKEND=badger          # or memory
	STORAGE_PATH=/data/vigil
	MANAGEMENT_URL=http://management:8080/api
	TRANSPORT_MODE=websocket        # websocket, nats or none
	TRANSPORT_WEBSOCKET_URL=ws://management:8080/api/notifications
	NATS_URL=nats://nats:4222
	NATS_SUBJECT=vigil.notifications
	NOTIFICATIONS_FLUSH_INTERVAL=30s
	DASHBOARD_POLL_INTERVAL=2s
	CORS_ORIGINS=https://console.example.com

A config.yaml with the same keys in nested form is read from CONFIG_PATH or
the default search paths.

# Shutdown

SIGINT and SIGTERM cancel the supervisor tree. The HTTP server drains for
HTTP_SHUTDOWN_TIMEOUT, the transport disconnects, then the event log
flushes its buffer and storage is closed.
*/
package main
