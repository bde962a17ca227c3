// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/vigil/internal/logging"
)

// Poller drives the snapshot cycle. On every tick it starts an independent
// ReceiveSnapshots covering all charts; a slow fetch neither delays nor
// cancels the next one.
//
// Poller implements suture.Service.
type Poller struct {
	dist     *Distributor
	interval time.Duration
	logger   zerolog.Logger

	// tick is replaced in tests.
	tick <-chan time.Time
}

// NewPoller creates a Poller for d. A non-positive interval uses the
// distributor's configured PollInterval.
func NewPoller(d *Distributor, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = d.Config().PollInterval
	}
	return &Poller{
		dist:     d,
		interval: interval,
		logger:   logging.WithComponent("chart-poller"),
	}
}

// Serve runs until ctx is canceled, then waits for in-flight fetches.
func (p *Poller) Serve(ctx context.Context) error {
	tick := p.tick
	if tick == nil {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	var inflight sync.WaitGroup
	defer inflight.Wait()

	p.logger.Info().Dur("interval", p.interval).Msg("Chart snapshot polling started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick:
			p.poll(ctx, &inflight)
		}
	}
}

func (p *Poller) poll(ctx context.Context, inflight *sync.WaitGroup) {
	if !p.dist.Loaded() {
		return
	}
	charts := p.dist.Charts()
	if len(charts) == 0 {
		return
	}

	inflight.Add(1)
	go func() {
		defer inflight.Done()
		// Charts removed since the listing are dropped from the cycle.
		err := p.dist.receive(ctx, charts, true)
		switch {
		case err == nil, errors.Is(err, context.Canceled):
		default:
			p.logger.Warn().Err(err).Int("charts", len(charts)).Msg("Snapshot cycle failed")
		}
	}()
}

// String implements fmt.Stringer for suture logging.
func (p *Poller) String() string {
	return "chart-poller"
}
