// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

/*
Package transport provides the inbound notification channels.

A Channel delivers raw frames to one message handler and reports
transport-level failures to one error handler. It does not decode frames;
that is the event log ingestor's job. Channels are long-running suture
services: Serve blocks until the context is canceled.

Two implementations exist:

  - WebSocketChannel dials the management system's notification endpoint
    and reconnects with exponential backoff (1s doubling to 32s).
  - SubscriberChannel reads a Watermill subscriber topic. NewNATSSubscriber
    builds one backed by NATS core or JetStream.

Handlers are registered before Serve is started. Registering again replaces
the previous handler.
*/
package transport
