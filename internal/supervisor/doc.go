// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

/*
Package supervisor runs the long-lived parts of the Vigil server under a
suture v4 tree.

	vigil
	├── data-layer
	│   ├── badger-gc            (badger backend only)
	│   ├── dashboard-loader
	│   └── notification-flusher (if NOTIFICATIONS_FLUSH_INTERVAL > 0)
	├── messaging-layer
	│   ├── transport-websocket | transport-subscriber
	│   ├── websocket-hub
	│   ├── websocket-bridge
	│   └── chart-poller
	└── api-layer
	    └── http-server

Services return ctx.Err() when asked to stop. Any other return is a crash
and the owning layer restarts the service with suture's decaying failure
counter; past FailureThreshold restarts wait FailureBackoff.

Supervisor events are logged through sutureslog onto the zerolog-backed
slog handler from internal/logging.

The event log and the store are not supervised. They are closed by main
after the tree has stopped, so a final flush always reaches storage.
*/
package supervisor
