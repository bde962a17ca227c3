// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

package transport

import (
	"context"
	"sync"

	"github.com/tomtom215/vigil/internal/metrics"
)

// Channel is an inbound source of notification frames.
type Channel interface {
	OnMessage(fn func(frame []byte))
	OnError(fn func(err error))
	Serve(ctx context.Context) error
	String() string
}

// handlers holds the registered callbacks and emits per-channel metrics.
type handlers struct {
	name string

	mu        sync.RWMutex
	onMessage func([]byte)
	onError   func(error)
}

// OnMessage registers the frame handler.
func (h *handlers) OnMessage(fn func(frame []byte)) {
	h.mu.Lock()
	h.onMessage = fn
	h.mu.Unlock()
}

// OnError registers the transport error handler.
func (h *handlers) OnError(fn func(err error)) {
	h.mu.Lock()
	h.onError = fn
	h.mu.Unlock()
}

func (h *handlers) emit(frame []byte) {
	metrics.TransportFrames.WithLabelValues(h.name).Inc()
	h.mu.RLock()
	fn := h.onMessage
	h.mu.RUnlock()
	if fn != nil {
		fn(frame)
	}
}

func (h *handlers) fail(err error) {
	metrics.TransportErrors.WithLabelValues(h.name).Inc()
	h.mu.RLock()
	fn := h.onError
	h.mu.RUnlock()
	if fn != nil {
		fn(err)
	}
}

func (h *handlers) setConnected(up bool) {
	v := 0.0
	if up {
		v = 1
	}
	metrics.TransportConnected.WithLabelValues(h.name).Set(v)
}
