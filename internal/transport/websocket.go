// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/tomtom215/vigil/internal/logging"
)

// Connection timing defaults.
const (
	DefaultHandshakeTimeout = 10 * time.Second
	DefaultPongWait         = 60 * time.Second
	DefaultPingInterval     = 30 * time.Second
	DefaultMinBackoff       = 1 * time.Second
	DefaultMaxBackoff       = 32 * time.Second
	DefaultMaxFrameSize     = 1 << 20
)

// WebSocketOptions configures a WebSocketChannel. Zero durations take the
// package defaults.
type WebSocketOptions struct {
	URL              string
	Header           http.Header
	MaxFrameSize     int64
	HandshakeTimeout time.Duration
	PongWait         time.Duration
	PingInterval     time.Duration
	MinBackoff       time.Duration
	MaxBackoff       time.Duration
}

func (o *WebSocketOptions) applyDefaults() {
	if o.MaxFrameSize <= 0 {
		o.MaxFrameSize = DefaultMaxFrameSize
	}
	if o.HandshakeTimeout <= 0 {
		o.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if o.PongWait <= 0 {
		o.PongWait = DefaultPongWait
	}
	if o.PingInterval <= 0 {
		o.PingInterval = DefaultPingInterval
	}
	if o.MinBackoff <= 0 {
		o.MinBackoff = DefaultMinBackoff
	}
	if o.MaxBackoff < o.MinBackoff {
		o.MaxBackoff = max(DefaultMaxBackoff, o.MinBackoff)
	}
}

// WebSocketChannel receives notification frames over a WebSocket
// connection to the management system.
//
// Key behavior:
//   - Reconnects after any failure, backing off exponentially
//   - Resets the backoff once a connection has been established
//   - Ping/pong keepalive; a silent peer is dropped after PongWait
//   - Each failed dial or broken connection is reported to OnError
type WebSocketChannel struct {
	handlers
	opts   WebSocketOptions
	dialer websocket.Dialer
	logger zerolog.Logger
}

// NewWebSocketChannel validates the endpoint and returns an unconnected
// channel. Call Serve to connect.
func NewWebSocketChannel(opts WebSocketOptions) (*WebSocketChannel, error) {
	u, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("parse websocket url: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("websocket url %q: scheme must be ws or wss", opts.URL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("websocket url %q: missing host", opts.URL)
	}
	opts.applyDefaults()

	return &WebSocketChannel{
		handlers: handlers{name: "websocket"},
		opts:     opts,
		dialer: websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: opts.HandshakeTimeout,
		},
		logger: logging.WithComponent("transport-websocket"),
	}, nil
}

// Serve connects and reads frames until ctx is canceled.
func (c *WebSocketChannel) Serve(ctx context.Context) error {
	backoff := c.opts.MinBackoff
	defer c.setConnected(false)

	for {
		established, err := c.session(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			c.logger.Warn().Err(err).Dur("retry_in", backoff).Msg("Notification stream interrupted")
			c.fail(err)
		}
		if established {
			backoff = c.opts.MinBackoff
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		backoff = min(backoff*2, c.opts.MaxBackoff)
	}
}

// session runs one connection. established reports whether the dial
// succeeded; a clean close by the peer returns a nil error.
func (c *WebSocketChannel) session(ctx context.Context) (established bool, err error) {
	conn, resp, err := c.dialer.DialContext(ctx, c.opts.URL, c.opts.Header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			return false, fmt.Errorf("dial %s: %w (HTTP %d)", c.opts.URL, err, resp.StatusCode)
		}
		return false, fmt.Errorf("dial %s: %w", c.opts.URL, err)
	}

	c.setConnected(true)
	c.logger.Info().Str("url", c.opts.URL).Msg("Notification stream connected")
	defer c.setConnected(false)

	conn.SetReadLimit(c.opts.MaxFrameSize)
	_ = conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	})

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.keepalive(ctx, conn, stop)
	}()
	defer func() {
		close(stop)
		_ = conn.Close()
		wg.Wait()
	}()

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return true, nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Info().Msg("Notification stream closed by peer")
				return true, nil
			}
			return true, fmt.Errorf("read frame: %w", err)
		}
		_ = conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
		c.emit(frame)
	}
}

// keepalive pings the peer and tears the connection down on cancel so the
// blocked reader returns.
func (c *WebSocketChannel) keepalive(ctx context.Context, conn *websocket.Conn, stop <-chan struct{}) {
	ticker := time.NewTicker(c.opts.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			deadline := time.Now().Add(time.Second)
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = conn.WriteControl(websocket.CloseMessage, msg, deadline)
			_ = conn.Close()
			return
		case <-ticker.C:
			deadline := time.Now().Add(10 * time.Second)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				if !errors.Is(err, websocket.ErrCloseSent) {
					c.logger.Debug().Err(err).Msg("Ping failed")
				}
				_ = conn.Close()
				return
			}
		}
	}
}

// String implements fmt.Stringer for suture logging.
func (c *WebSocketChannel) String() string {
	return "transport-websocket"
}
