// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

/*
Package dashboard implements the chart data distributor.

The Distributor is the only component that mutates the dashboard. Load must
succeed before anything else; operations on an unloaded dashboard, a
duplicate chart name or an unknown chart name fail immediately with
ErrNotLoaded, ErrDuplicateChart or ErrUnknownChart and make no remote call.

Every mutation saves the whole dashboard document (PUT to DocumentPath). On
success the new chart list is published to dashboard subscribers. Adding or
modifying a chart opens a fresh per-chart subject, so existing subscribers
of that name see Done() and must subscribe again.

ReceiveSnapshots makes one POST to ComputePath for the listed charts and
expects {"<chart name>": [raw data...]} back. Each chart's data is decoded
with the chart's kind, retained, published to that chart's subscribers and
written to the history cache under CacheKeyPrefix+name. Charts absent from
the response get no delivery that cycle. Items that fail to decode are
skipped and pushed to the NotificationSink as TransportError notifications.
A chart removed or replaced while its fetch was in flight receives nothing.

Poller fetches snapshots for all charts on a fixed interval, without
waiting for the previous cycle. Charts removed since the listing are left
out of that cycle.
*/
package dashboard
