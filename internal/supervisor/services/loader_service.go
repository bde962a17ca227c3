// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/vigil/internal/logging"
)

// DashboardLoader is satisfied by *dashboard.Distributor.
type DashboardLoader interface {
	Load(ctx context.Context) error
	Loaded() bool
}

// DashboardLoaderService performs the initial dashboard load. Failed
// attempts are retried with exponential backoff until one succeeds; the
// service then leaves the tree.
type DashboardLoaderService struct {
	loader     DashboardLoader
	minBackoff time.Duration
	maxBackoff time.Duration
	logger     zerolog.Logger
}

// NewDashboardLoaderService creates the loader with a 1s to 30s backoff.
func NewDashboardLoaderService(loader DashboardLoader) *DashboardLoaderService {
	return &DashboardLoaderService{
		loader:     loader,
		minBackoff: time.Second,
		maxBackoff: 30 * time.Second,
		logger:     logging.WithComponent("dashboard-loader"),
	}
}

// Serve implements suture.Service. It returns suture.ErrDoNotRestart once
// the dashboard is loaded.
func (s *DashboardLoaderService) Serve(ctx context.Context) error {
	backoff := s.minBackoff
	for attempt := 1; ; attempt++ {
		if s.loader.Loaded() {
			return suture.ErrDoNotRestart
		}

		err := s.loader.Load(ctx)
		if err == nil {
			s.logger.Info().Int("attempt", attempt).Msg("Dashboard loaded")
			return suture.ErrDoNotRestart
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.logger.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", backoff).Msg("Dashboard load failed")

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		backoff = min(backoff*2, s.maxBackoff)
	}
}

// String implements fmt.Stringer for suture logging.
func (s *DashboardLoaderService) String() string {
	return "dashboard-loader"
}
