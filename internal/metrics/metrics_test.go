// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/dashboard", "200"))

	RecordAPIRequest("GET", "/api/v1/dashboard", "200", 15*time.Millisecond)

	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/dashboard", "200"))
	if after-before != 1 {
		t.Errorf("api_requests_total increased by %v, want 1", after-before)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+1 {
		t.Errorf("after inc = %v, want %v", got, before+1)
	}
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("after dec = %v, want %v", got, before)
	}
}

func TestRecordManagementRequest(t *testing.T) {
	tests := []struct {
		name   string
		status int
		label  string
	}{
		{"ok", 200, "200"},
		{"server error", 503, "503"},
		{"no response", 0, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := ManagementRequests.WithLabelValues("POST", tt.label)
			before := testutil.ToFloat64(c)
			RecordManagementRequest("POST", tt.status, time.Millisecond)
			if got := testutil.ToFloat64(c); got != before+1 {
				t.Errorf("counter = %v, want %v", got, before+1)
			}
		})
	}
}

func TestRecordFlush(t *testing.T) {
	evictedBefore := testutil.ToFloat64(LogEvicted)
	okBefore := testutil.ToFloat64(LogFlushes.WithLabelValues("success"))
	failBefore := testutil.ToFloat64(LogFlushes.WithLabelValues("failure"))

	RecordFlush(450, 50, nil)
	if got := testutil.ToFloat64(LogStoredEntries); got != 450 {
		t.Errorf("stored entries = %v, want 450", got)
	}
	if got := testutil.ToFloat64(LogEvicted); got != evictedBefore+50 {
		t.Errorf("evicted = %v, want %v", got, evictedBefore+50)
	}

	RecordFlush(0, 0, errors.New("disk full"))
	if got := testutil.ToFloat64(LogStoredEntries); got != 450 {
		t.Errorf("failed flush must not change stored gauge, got %v", got)
	}
	if got := testutil.ToFloat64(LogFlushes.WithLabelValues("success")); got != okBefore+1 {
		t.Errorf("success flushes = %v, want %v", got, okBefore+1)
	}
	if got := testutil.ToFloat64(LogFlushes.WithLabelValues("failure")); got != failBefore+1 {
		t.Errorf("failed flushes = %v, want %v", got, failBefore+1)
	}
}

func TestRecordSnapshotFetchAndDashboardSave(t *testing.T) {
	failBefore := testutil.ToFloat64(SnapshotFetches.WithLabelValues("failure"))
	RecordSnapshotFetch(20*time.Millisecond, errors.New("timeout"))
	if got := testutil.ToFloat64(SnapshotFetches.WithLabelValues("failure")); got != failBefore+1 {
		t.Errorf("failed fetches = %v, want %v", got, failBefore+1)
	}

	saveBefore := testutil.ToFloat64(DashboardSaves.WithLabelValues("add", "success"))
	RecordDashboardSave("add", nil)
	if got := testutil.ToFloat64(DashboardSaves.WithLabelValues("add", "success")); got != saveBefore+1 {
		t.Errorf("dashboard saves = %v, want %v", got, saveBefore+1)
	}
}
