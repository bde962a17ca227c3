// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/vigil/internal/api"
	"github.com/tomtom215/vigil/internal/config"
	"github.com/tomtom215/vigil/internal/dashboard"
	"github.com/tomtom215/vigil/internal/eventlog"
	"github.com/tomtom215/vigil/internal/logging"
	"github.com/tomtom215/vigil/internal/management"
	"github.com/tomtom215/vigil/internal/notification"
	"github.com/tomtom215/vigil/internal/supervisor"
	"github.com/tomtom215/vigil/internal/supervisor/services"
	ws "github.com/tomtom215/vigil/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.ConfigFrom(&cfg.Logging))

	logging.Info().
		Str("addr", cfg.Server.Addr()).
		Str("management", cfg.Management.BaseURL).
		Str("storage", cfg.Storage.Backend).
		Str("transport", cfg.Transport.Mode).
		Msg("Starting Vigil")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logging.Error().Err(err).Msg("Vigil stopped with an error")
		stop()
		os.Exit(1)
	}
	logging.Info().Msg("Vigil stopped gracefully")
}

// run wires every component, serves until ctx is canceled and then tears
// down in dependency order: the tree first, then the event log (which
// flushes), then storage.
//
//nolint:gocyclo // sequential wiring
func run(ctx context.Context, cfg *config.Config) error {
	store, storeSvc, err := initStorage(&cfg.Storage)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing storage")
		}
	}()

	client, err := management.NewHTTPClient(management.OptionsFromConfig(&cfg.Management))
	if err != nil {
		return fmt.Errorf("management client: %w", err)
	}

	notifications := eventlog.New(store, eventlog.ConfigFrom(&cfg.Notifications))
	defer func() {
		if err := notifications.Close(); err != nil {
			logging.Error().Err(err).Msg("Final notification flush failed")
		}
	}()

	dist := dashboard.New(client, store, dashboard.ConfigFrom(&cfg.Dashboard), dashboard.WithNotificationSink(notifications))
	defer dist.Close()

	channel, closeTransport, err := initTransport(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeTransport(); err != nil {
			logging.Warn().Err(err).Msg("Error closing transport")
		}
	}()
	if channel != nil {
		eventlog.NewIngestor(notifications, notification.NewDecoder()).Attach(channel)
	}

	hub := ws.NewHub()
	bridge := ws.NewBridge(hub, notifications, dist)

	mw := api.NewChiMiddleware(api.ChiMiddlewareConfigFrom(&cfg.Security))
	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}
	handler := api.NewHandler(notifications, dist, hub, mw)

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           api.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("supervisor tree: %w", err)
	}

	// Data layer
	if storeSvc != nil {
		tree.AddDataService(storeSvc)
	}
	tree.AddDataService(services.NewDashboardLoaderService(dist))
	if cfg.Notifications.FlushInterval > 0 {
		tree.AddDataService(services.NewLogFlushService(notifications, cfg.Notifications.FlushInterval))
	}

	// Messaging layer
	if channel != nil {
		tree.AddMessagingService(channel)
	}
	tree.AddMessagingService(hub)
	tree.AddMessagingService(bridge)
	tree.AddMessagingService(dashboard.NewPoller(dist, cfg.Dashboard.PollInterval))

	// API layer
	httpSvc := services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout)
	httpSvc.OnDrained("notification-log", notifications.Flush)
	tree.AddAPIService(httpSvc)

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	err = tree.Serve(ctx)

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
		}
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor tree: %w", err)
	}
	return nil
}
