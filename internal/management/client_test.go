// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

package management

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/vigil/internal/logging"
)

func init() {
	logging.Init(logging.Config{Level: "info", Format: "console", Output: io.Discard})
}

func newTestClient(t *testing.T, handler http.HandlerFunc, mutate func(*Options)) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	opts := Options{BaseURL: srv.URL + "/management", Timeout: 5 * time.Second}
	if mutate != nil {
		mutate(&opts)
	}
	c, err := NewHTTPClient(opts)
	if err != nil {
		t.Fatalf("NewHTTPClient: %v", err)
	}
	return c
}

func TestHTTPClient_Get(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/management/dashboard" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-Correlation-ID") != "corr-1" {
			t.Errorf("correlation id header = %q", r.Header.Get("X-Correlation-ID"))
		}
		_, _ = w.Write([]byte(`{"groups":["g1"]}`))
	}, nil)

	var out struct {
		Groups []string `json:"groups"`
	}
	ctx := logging.ContextWithCorrelationID(context.Background(), "corr-1")
	if err := c.Get(ctx, "/dashboard", &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Groups) != 1 || out.Groups[0] != "g1" {
		t.Errorf("decoded %+v", out)
	}
}

func TestHTTPClient_PutSendsJSON(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["name"] != "cpu" {
			t.Errorf("body = %v", body)
		}
		w.WriteHeader(http.StatusNoContent)
	}, nil)

	if err := c.Put(context.Background(), "/dashboard", map[string]string{"name": "cpu"}); err != nil {
		t.Fatal(err)
	}
}

func TestHTTPClient_PostDecodesRawResponse(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"cpu":[{"value":1},{"value":2}]}`))
	}, nil)

	var out map[string][]json.RawMessage
	if err := c.Post(context.Background(), "/charts/compute", []string{"cpu"}, &out); err != nil {
		t.Fatal(err)
	}
	if len(out["cpu"]) != 2 {
		t.Errorf("out = %v", out)
	}
}

func TestHTTPClient_StatusError(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such dashboard", http.StatusNotFound)
	}, nil)

	err := c.Get(context.Background(), "/dashboard", nil)
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *StatusError", err)
	}
	if se.StatusCode != http.StatusNotFound || se.Method != http.MethodGet || se.Path != "/dashboard" {
		t.Errorf("StatusError = %+v", se)
	}
	if se.Body != "no such dashboard" {
		t.Errorf("Body = %q", se.Body)
	}
}

func TestHTTPClient_CircuitOpensOnServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}, func(o *Options) {
		o.BreakerMaxFailures = 2
		o.BreakerTimeout = time.Hour
	})

	for i := 0; i < 2; i++ {
		if err := c.Get(context.Background(), "/dashboard", nil); err == nil {
			t.Fatal("expected error")
		}
	}
	err := c.Get(context.Background(), "/dashboard", nil)
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("third call = %v, want ErrCircuitOpen", err)
	}
	if calls.Load() != 2 {
		t.Errorf("server saw %d calls, want 2", calls.Load())
	}
}

func TestHTTPClient_ClientErrorsDoNotTrip(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusConflict)
	}, func(o *Options) {
		o.BreakerMaxFailures = 1
		o.BreakerTimeout = time.Hour
	})

	for i := 0; i < 3; i++ {
		err := c.Put(context.Background(), "/dashboard", struct{}{})
		if errors.Is(err, ErrCircuitOpen) {
			t.Fatalf("call %d rejected by breaker", i)
		}
	}
	if calls.Load() != 3 {
		t.Errorf("server saw %d calls, want 3", calls.Load())
	}
}

func TestHTTPClient_RateLimitHonoursContext(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}, func(o *Options) {
		o.RequestsPerSecond = 0.001
		o.Burst = 1
	})

	if err := c.Get(context.Background(), "/a", nil); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := c.Get(ctx, "/b", nil); err == nil {
		t.Fatal("second request should fail waiting for the limiter")
	}
}

func TestNewHTTPClient_InvalidBaseURL(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "not a url", "/relative"} {
		if _, err := NewHTTPClient(Options{BaseURL: raw}); err == nil {
			t.Errorf("NewHTTPClient(%q) should fail", raw)
		}
	}
}
