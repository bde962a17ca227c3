// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

/*
Package websocket fans server-side events out to connected browsers.

# Architecture

The Hub owns the set of connected clients. Each Client has a read pump and
a write pump; the hub sends to a client through its buffered send channel.
A client whose buffer is full when a broadcast arrives is disconnected, so
one slow browser never stalls the others.

The Bridge subscribes to the notification log and the chart distributor
and turns their deliveries into hub broadcasts.

# Message Types

Server to client:

	{"type": "notification", "data": {...persisted notification...}}
	{"type": "chart_data",   "data": {"chart": "cpu", "snapshots": [...]}}
	{"type": "dashboard",    "data": {"groups": [...], "charts": [...]}}
	{"type": "pong",         "data": null}

Client to server:

	{"type": "ping"}

Anything else a client sends is ignored.

# Keepalive

The write pump pings every 54 seconds and the read pump drops a client that
has not answered within 60 seconds.

# Supervision

Hub and Bridge both implement suture.Service and run in the messaging
layer of the supervisor tree. On shutdown the hub closes every client.
*/
package websocket
