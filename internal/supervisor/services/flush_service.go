// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/vigil/internal/logging"
)

// Flusher is satisfied by *eventlog.Log.
type Flusher interface {
	Flush() error
	Buffered() int
}

// LogFlushService persists buffered notifications on a fixed interval so a
// quiet system does not hold entries below the flush threshold forever.
type LogFlushService struct {
	log      Flusher
	interval time.Duration
	logger   zerolog.Logger

	// tick is replaced in tests.
	tick <-chan time.Time
}

// NewLogFlushService creates the flusher.
func NewLogFlushService(log Flusher, interval time.Duration) *LogFlushService {
	return &LogFlushService{
		log:      log,
		interval: interval,
		logger:   logging.WithComponent("notification-flusher"),
	}
}

// Serve implements suture.Service. The final flush on shutdown belongs to
// the log's Close, not to this service.
func (s *LogFlushService) Serve(ctx context.Context) error {
	tick := s.tick
	if tick == nil {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick:
			n := s.log.Buffered()
			if n == 0 {
				continue
			}
			if err := s.log.Flush(); err != nil {
				s.logger.Warn().Err(err).Int("buffered", n).Msg("Periodic notification flush failed")
				continue
			}
			s.logger.Debug().Int("flushed", n).Msg("Periodic notification flush")
		}
	}
}

// String implements fmt.Stringer for suture logging.
func (s *LogFlushService) String() string {
	return "notification-flusher"
}
