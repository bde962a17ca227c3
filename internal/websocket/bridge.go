// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

package websocket

import (
	"context"
	"sync"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/vigil/internal/broadcast"
	"github.com/tomtom215/vigil/internal/chart"
	"github.com/tomtom215/vigil/internal/logging"
	"github.com/tomtom215/vigil/internal/notification"
)

// NotificationSource is the notification log as seen by the bridge.
type NotificationSource interface {
	Subscribe(fn func(notification.Notification)) *broadcast.Subscription[notification.Notification]
}

// ChartSource is the chart distributor as seen by the bridge.
type ChartSource interface {
	Charts() []chart.Chart
	Groups() []string
	SubscribeDashboard(fn func([]chart.Chart)) *broadcast.Subscription[[]chart.Chart]
	SubscribeChart(name string, fn func([]chart.Data)) (*broadcast.Subscription[[]chart.Data], error)
}

// ChartDataMessage is the payload of a chart_data message.
type ChartDataMessage struct {
	Chart     string       `json:"chart"`
	Snapshots []chart.Data `json:"snapshots"`
}

// Bridge forwards notification pushes, chart snapshot deliveries and
// dashboard changes to every browser connected to the hub.
//
// Chart subjects are replaced whenever a chart is added or modified, so the
// bridge resubscribes after each dashboard change and whenever one of its
// chart subscriptions ends.
//
// Bridge implements suture.Service.
type Bridge struct {
	hub    *Hub
	log    NotificationSource
	charts ChartSource
	logger zerolog.Logger

	mu     sync.Mutex
	subs   map[string]*broadcast.Subscription[[]chart.Data]
	resync chan struct{}
}

// NewBridge connects log and charts to hub. Either source may be nil.
func NewBridge(hub *Hub, log NotificationSource, charts ChartSource) *Bridge {
	return &Bridge{
		hub:    hub,
		log:    log,
		charts: charts,
		logger: logging.WithComponent("websocket-bridge"),
		subs:   make(map[string]*broadcast.Subscription[[]chart.Data]),
		resync: make(chan struct{}, 1),
	}
}

// Serve subscribes to both sources and keeps chart subscriptions in step
// with the dashboard until ctx is canceled.
func (b *Bridge) Serve(ctx context.Context) error {
	if b.log != nil {
		sub := b.log.Subscribe(b.forwardNotification)
		defer sub.Unsubscribe()
	}
	if b.charts != nil {
		sub := b.charts.SubscribeDashboard(b.forwardDashboard)
		defer sub.Unsubscribe()
		defer b.unsubscribeAll()
		b.syncCharts()
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-b.resync:
			b.syncCharts()
		}
	}
}

// String implements fmt.Stringer for suture logging.
func (b *Bridge) String() string {
	return "websocket-bridge"
}

func (b *Bridge) forwardNotification(n notification.Notification) {
	data, err := notification.Marshal(n)
	if err != nil {
		b.logger.Warn().Err(err).Str("kind", string(n.Kind())).Msg("Cannot forward notification")
		return
	}
	b.hub.BroadcastJSON(MessageTypeNotification, json.RawMessage(data))
}

func (b *Bridge) forwardDashboard(charts []chart.Chart) {
	doc := chart.DashboardDocument{
		Groups: b.charts.Groups(),
		Charts: make([]chart.Document, 0, len(charts)),
	}
	for _, c := range charts {
		doc.Charts = append(doc.Charts, c.Document())
	}
	b.hub.BroadcastJSON(MessageTypeDashboard, doc)
	b.requestResync()
}

func (b *Bridge) requestResync() {
	select {
	case b.resync <- struct{}{}:
	default:
	}
}

// syncCharts subscribes to every chart without a live subscription and
// drops subscriptions for charts that no longer exist.
func (b *Bridge) syncCharts() {
	current := b.charts.Charts()

	b.mu.Lock()
	defer b.mu.Unlock()

	present := make(map[string]struct{}, len(current))
	for _, c := range current {
		name := c.Name()
		present[name] = struct{}{}
		if sub, ok := b.subs[name]; ok && !ended(sub) {
			continue
		}
		sub, err := b.charts.SubscribeChart(name, func(data []chart.Data) {
			b.hub.BroadcastJSON(MessageTypeChartData, ChartDataMessage{Chart: name, Snapshots: data})
		})
		if err != nil {
			// Removed or reloaded since Charts(); the next dashboard change resyncs.
			b.logger.Debug().Err(err).Str("chart", name).Msg("Chart subscription skipped")
			delete(b.subs, name)
			continue
		}
		b.subs[name] = sub
		go b.watch(sub)
	}

	for name, sub := range b.subs {
		if _, ok := present[name]; !ok {
			sub.Unsubscribe()
			delete(b.subs, name)
		}
	}
}

// watch requests a resync once sub ends.
func (b *Bridge) watch(sub *broadcast.Subscription[[]chart.Data]) {
	<-sub.Done()
	b.requestResync()
}

func (b *Bridge) unsubscribeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for name, sub := range b.subs {
		sub.Unsubscribe()
		delete(b.subs, name)
	}
}

// subscribed returns the names of charts with a live subscription.
func (b *Bridge) subscribed() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	names := make([]string, 0, len(b.subs))
	for name, sub := range b.subs {
		if !ended(sub) {
			names = append(names, name)
		}
	}
	return names
}

func ended[T any](sub *broadcast.Subscription[T]) bool {
	select {
	case <-sub.Done():
		return true
	default:
		return false
	}
}
