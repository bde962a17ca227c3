// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

package websocket

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/vigil/internal/broadcast"
	"github.com/tomtom215/vigil/internal/chart"
	"github.com/tomtom215/vigil/internal/eventlog"
	"github.com/tomtom215/vigil/internal/notification"
	"github.com/tomtom215/vigil/internal/storage"
)

// fakeCharts mimics the distributor: one subject per chart, replaced on
// every change.
type fakeCharts struct {
	mu       sync.Mutex
	charts   []chart.Chart
	subjects map[string]*broadcast.Subject[[]chart.Data]
	dash     *broadcast.Subject[[]chart.Chart]
}

func newFakeCharts() *fakeCharts {
	return &fakeCharts{
		subjects: make(map[string]*broadcast.Subject[[]chart.Data]),
		dash:     broadcast.NewSubject[[]chart.Chart](),
	}
}

func (f *fakeCharts) Charts() []chart.Chart {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.charts)
}

func (f *fakeCharts) Groups() []string { return []string{"g"} }

func (f *fakeCharts) SubscribeDashboard(fn func([]chart.Chart)) *broadcast.Subscription[[]chart.Chart] {
	return f.dash.Subscribe(fn)
}

func (f *fakeCharts) SubscribeChart(name string, fn func([]chart.Data)) (*broadcast.Subscription[[]chart.Data], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.subjects[name]
	if !ok {
		return nil, fmt.Errorf("unknown chart %q", name)
	}
	return s.Subscribe(fn), nil
}

// set replaces the chart list, reopening every subject, and announces it.
func (f *fakeCharts) set(t *testing.T, names ...string) {
	t.Helper()
	f.mu.Lock()
	for _, s := range f.subjects {
		s.Close()
	}
	f.charts = nil
	f.subjects = make(map[string]*broadcast.Subject[[]chart.Data])
	for _, n := range names {
		c, err := chart.FromDocument(chart.Document{Type: chart.KindLine, Name: n, Group: "g", Attribute: "cpu"})
		if err != nil {
			f.mu.Unlock()
			t.Fatalf("FromDocument: %v", err)
		}
		f.charts = append(f.charts, c)
		f.subjects[n] = broadcast.NewSubject[[]chart.Data]()
	}
	charts := slices.Clone(f.charts)
	f.mu.Unlock()
	f.dash.Publish(charts)
}

func (f *fakeCharts) publish(name string, data []chart.Data) {
	f.mu.Lock()
	s := f.subjects[name]
	f.mu.Unlock()
	s.Publish(data)
}

func (f *fakeCharts) subscribers(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.subjects[name]; ok {
		return s.Len()
	}
	return 0
}

func startBridge(t *testing.T, b *Bridge) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-done; !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	})
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// nextOfType drains the client until a message of the given type arrives.
func nextOfType(t *testing.T, c *Client, typ string) Message {
	t.Helper()
	for {
		if msg := receive(t, c); msg.Type == typ {
			return msg
		}
	}
}

func TestBridge_ForwardsNotifications(t *testing.T) {
	hub := startHub(t)
	client := createTestClient(hub, 16)
	hub.Register <- client
	waitForClients(t, hub, 1)

	log := eventlog.New(storage.NewMemoryStore(), eventlog.DefaultConfig())
	startBridge(t, NewBridge(hub, log, nil))

	n := notification.NewTransportError(errors.New("connection reset"), nil)
	eventually(t, "bridge subscription", func() bool {
		return log.Push(n) == nil && len(client.send) > 0
	})

	msg := nextOfType(t, client, MessageTypeNotification)
	raw, ok := msg.Data.(json.RawMessage)
	if !ok {
		t.Fatalf("data type = %T, want json.RawMessage", msg.Data)
	}
	restored, err := notification.Restore(raw)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if restored.ID() != n.ID() || restored.Kind() != notification.KindTransportError {
		t.Errorf("forwarded %s/%s, want %s/%s", restored.ID(), restored.Kind(), n.ID(), n.Kind())
	}
}

func TestBridge_FollowsDashboardChanges(t *testing.T) {
	hub := startHub(t)
	client := createTestClient(hub, 64)
	hub.Register <- client
	waitForClients(t, hub, 1)

	charts := newFakeCharts()
	bridge := NewBridge(hub, nil, charts)
	startBridge(t, bridge)

	// The initial sync races Serve's startup; announce once it is subscribed.
	eventually(t, "dashboard subscription", func() bool { return charts.dash.Len() == 1 })
	charts.set(t, "cpu", "mem")

	msg := nextOfType(t, client, MessageTypeDashboard)
	doc, ok := msg.Data.(chart.DashboardDocument)
	if !ok || len(doc.Charts) != 2 || doc.Charts[0].Name != "cpu" {
		t.Fatalf("dashboard data = %#v", msg.Data)
	}

	eventually(t, "chart subscriptions", func() bool {
		return charts.subscribers("cpu") == 1 && charts.subscribers("mem") == 1
	})

	point := &chart.AttributeValue{Resource: "n1", Attribute: "cpu", Value: 3}
	point.Stamp(time.Now())
	charts.publish("cpu", []chart.Data{point})

	data := nextOfType(t, client, MessageTypeChartData)
	cd, ok := data.Data.(ChartDataMessage)
	if !ok || cd.Chart != "cpu" || len(cd.Snapshots) != 1 {
		t.Fatalf("chart data = %#v", data.Data)
	}

	// Replacing the dashboard ends the old subscriptions; the bridge follows.
	charts.set(t, "mem")
	eventually(t, "resubscription", func() bool {
		names := bridge.subscribed()
		return len(names) == 1 && names[0] == "mem" && charts.subscribers("mem") == 1
	})
}
