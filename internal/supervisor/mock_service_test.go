// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
)

// mockService is a suture.Service whose failures are scripted by tests.
type mockService struct {
	name       string
	startCount atomic.Int32
	stopCount  atomic.Int32
	failures   atomic.Int32
	started    chan struct{}
}

func newMockService(name string) *mockService {
	return &mockService{name: name, started: make(chan struct{}, 16)}
}

// failTimes makes the next n Serve calls return an error immediately.
func (m *mockService) failTimes(n int32) *mockService {
	m.failures.Store(n)
	return m
}

func (m *mockService) Serve(ctx context.Context) error {
	m.startCount.Add(1)
	defer m.stopCount.Add(1)
	select {
	case m.started <- struct{}{}:
	default:
	}

	if m.failures.Add(-1) >= 0 {
		return errors.New("simulated failure")
	}

	<-ctx.Done()
	return ctx.Err()
}

func (m *mockService) String() string {
	return m.name
}
