// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

/*
Package services adapts components without a Serve(ctx) lifecycle to
suture.Service.

  - HTTPServerService: ListenAndServe/Shutdown with a drain timeout
  - DashboardLoaderService: retries the initial dashboard load with
    backoff, then leaves the tree with suture.ErrDoNotRestart
  - LogFlushService: periodic flush of the notification buffer

Components that already implement Serve(ctx) and String() (the transports,
the WebSocket hub and bridge, the chart poller and the badger GC loop) are
added to the tree directly.

The wrappers depend on small interfaces rather than the component packages.
*/
package services
