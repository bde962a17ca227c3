// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

/*
Package management is the REST boundary to the monitored system's
management API.

Client is the three-operation interface the distribution core depends on.
HTTPClient implements it over net/http with JSON bodies, an outgoing rate
limit and a circuit breaker. A non-2xx response is a *StatusError; a request
rejected by the open circuit matches ErrCircuitOpen.
*/
package management

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/vigil/internal/config"
	"github.com/tomtom215/vigil/internal/logging"
	"github.com/tomtom215/vigil/internal/metrics"
)

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 32 << 20

// ErrCircuitOpen is matched by errors for requests the circuit breaker refused.
var ErrCircuitOpen = errors.New("management API circuit open")

// Client is the request/response boundary used by the distribution core.
// Each call yields one result or one error.
type Client interface {
	// Get decodes the JSON response of path into out. out may be nil.
	Get(ctx context.Context, path string, out any) error
	// Put sends body as JSON to path.
	Put(ctx context.Context, path string, body any) error
	// Post sends body as JSON to path and decodes the response into out.
	// out may be nil.
	Post(ctx context.Context, path string, body, out any) error
}

// StatusError is a response outside the 2xx range.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Options configures an HTTPClient.
type Options struct {
	BaseURL string
	Timeout time.Duration

	// RequestsPerSecond <= 0 disables rate limiting.
	RequestsPerSecond float64
	Burst             int

	// BreakerMaxFailures consecutive failures open the circuit for
	// BreakerTimeout. Zero disables tripping.
	BreakerMaxFailures uint32
	BreakerTimeout     time.Duration

	// HTTPClient overrides the transport. Timeout is ignored when set.
	HTTPClient *http.Client
}

// OptionsFromConfig maps the management configuration section to Options.
func OptionsFromConfig(cfg *config.ManagementConfig) Options {
	return Options{
		BaseURL:            cfg.BaseURL,
		Timeout:            cfg.Timeout,
		RequestsPerSecond:  cfg.RequestsPerSecond,
		Burst:              cfg.Burst,
		BreakerMaxFailures: cfg.BreakerMaxFailures,
		BreakerTimeout:     cfg.BreakerTimeout,
	}
}

// HTTPClient implements Client over HTTP.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[[]byte]
}

var _ Client = (*HTTPClient)(nil)

const breakerName = "management-api"

// NewHTTPClient creates an HTTPClient.
func NewHTTPClient(opts Options) (*HTTPClient, error) {
	u, err := url.Parse(opts.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid management base URL %q", opts.BaseURL)
	}

	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}

	c := &HTTPClient{
		baseURL: strings.TrimSuffix(opts.BaseURL, "/"),
		http:    hc,
	}

	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)
	maxFailures := opts.BreakerMaxFailures
	c.cb = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     opts.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			trip := maxFailures > 0 && counts.ConsecutiveFailures >= maxFailures
			if trip {
				logging.Warn().Uint32("consecutive_failures", counts.ConsecutiveFailures).Msg("[CIRCUIT BREAKER] Opening management API circuit")
			}
			return trip
		},
		// Client errors are answers, not outages.
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var se *StatusError
			return errors.As(err, &se) && se.StatusCode < http.StatusInternalServerError
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})

	return c, nil
}

// Get implements Client.
func (c *HTTPClient) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Put implements Client.
func (c *HTTPClient) Put(ctx context.Context, path string, body any) error {
	return c.do(ctx, http.MethodPut, path, body, nil)
}

// Post implements Client.
func (c *HTTPClient) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%s %s: rate limit wait: %w", method, path, err)
		}
	}

	respBody, err := c.cb.Execute(func() ([]byte, error) {
		return c.roundTrip(ctx, method, path, payload)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "rejected").Inc()
			return fmt.Errorf("%w: %s %s", ErrCircuitOpen, method, path)
		}
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "failure").Inc()
		return err
	}
	metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "success").Inc()

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *HTTPClient) roundTrip(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reqBody io.Reader = http.NoBody
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		req.Header.Set("X-Correlation-ID", id)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordManagementRequest(method, 0, time.Since(start))
		return nil, fmt.Errorf("%s %s: request failed: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	metrics.RecordManagementRequest(method, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("%s %s: read response: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       excerpt(data),
		}
	}

	logging.Ctx(ctx).Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Dur("duration", time.Since(start)).Msg("Management API request")
	return data, nil
}

func excerpt(body []byte) string {
	const limit = 256
	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
