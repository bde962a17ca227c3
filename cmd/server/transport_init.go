// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

package main

import (
	"fmt"

	"github.com/tomtom215/vigil/internal/config"
	"github.com/tomtom215/vigil/internal/logging"
	"github.com/tomtom215/vigil/internal/transport"
)

// initTransport builds the notification channel selected by
// TRANSPORT_MODE. Mode "none" yields a nil channel. The cleanup function
// is never nil and must run after the channel has stopped.
func initTransport(cfg *config.Config) (transport.Channel, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Transport.Mode {
	case "none":
		logging.Warn().Msg("No notification transport configured; only REST and chart polling are active")
		return nil, noop, nil

	case "websocket":
		ch, err := transport.NewWebSocketChannel(transport.WebSocketOptions{
			URL:          cfg.Transport.WebSocketURL,
			MaxFrameSize: cfg.Transport.MaxFrameSize,
		})
		if err != nil {
			return nil, noop, fmt.Errorf("websocket transport: %w", err)
		}
		logging.Info().Str("url", cfg.Transport.WebSocketURL).Msg("WebSocket notification transport configured")
		return ch, noop, nil

	case "nats":
		sub, err := transport.NewNATSSubscriber(&cfg.NATS, logging.NewWatermillAdapter())
		if err != nil {
			return nil, noop, fmt.Errorf("nats transport: %w", err)
		}
		logging.Info().
			Str("url", cfg.NATS.URL).
			Str("subject", cfg.NATS.Subject).
			Bool("jetstream", cfg.NATS.JetStream).
			Msg("NATS notification transport configured")
		return transport.NewSubscriberChannel(sub, cfg.NATS.Subject), sub.Close, nil

	default:
		return nil, noop, fmt.Errorf("unknown transport mode %q", cfg.Transport.Mode)
	}
}
