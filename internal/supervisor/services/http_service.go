// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/vigil/internal/logging"
)

// HTTPServer is the lifecycle subset of *http.Server.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

type drainHook struct {
	name string
	run  func() error
}

// HTTPServerService runs the console API under supervision.
//
// On stop the server gets shutdownTimeout, measured from a fresh context,
// to finish in-flight requests. The drain hooks then run in registration
// order, whether or not the drain finished in time.
type HTTPServerService struct {
	server          HTTPServer
	shutdownTimeout time.Duration
	hooks           []drainHook
	logger          zerolog.Logger
}

// NewHTTPServerService wraps server. A non-positive shutdownTimeout means
// 10 seconds.
func NewHTTPServerService(server HTTPServer, shutdownTimeout time.Duration) *HTTPServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &HTTPServerService{
		server:          server,
		shutdownTimeout: shutdownTimeout,
		logger:          logging.WithComponent("http-server"),
	}
}

// OnDrained registers fn to run after the server has drained. A hook error
// is logged; later hooks still run. Register hooks before Serve.
func (h *HTTPServerService) OnDrained(name string, fn func() error) {
	h.hooks = append(h.hooks, drainHook{name: name, run: fn})
}

// Serve implements suture.Service. A listen failure is returned so the api
// layer restarts the server; drain hooks only run on stop.
func (h *HTTPServerService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	h.logger.Info().Dur("timeout", h.shutdownTimeout).Msg("Draining HTTP connections")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout)
	err := h.server.Shutdown(shutdownCtx)
	cancel()
	if err == nil {
		<-errCh
	}

	h.runHooks()

	if err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	return ctx.Err()
}

func (h *HTTPServerService) runHooks() {
	for _, hook := range h.hooks {
		if err := hook.run(); err != nil {
			h.logger.Error().Err(err).Str("hook", hook.name).Msg("Drain hook failed")
			continue
		}
		h.logger.Debug().Str("hook", hook.name).Msg("Drain hook completed")
	}
}

// String implements fmt.Stringer for suture logging.
func (h *HTTPServerService) String() string {
	return "http-server"
}
