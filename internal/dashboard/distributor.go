// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

package dashboard

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/vigil/internal/broadcast"
	"github.com/tomtom215/vigil/internal/chart"
	"github.com/tomtom215/vigil/internal/config"
	"github.com/tomtom215/vigil/internal/logging"
	"github.com/tomtom215/vigil/internal/management"
	"github.com/tomtom215/vigil/internal/metrics"
	"github.com/tomtom215/vigil/internal/notification"
	"github.com/tomtom215/vigil/internal/storage"
)

var (
	// ErrNotLoaded is returned by operations invoked before Load succeeded.
	ErrNotLoaded = errors.New("dashboard not loaded")

	// ErrDuplicateChart is returned by AddChart for a name already in use.
	ErrDuplicateChart = chart.ErrDuplicateChart

	// ErrUnknownChart is returned for a chart name the dashboard does not hold.
	ErrUnknownChart = chart.ErrUnknownChart

	// ErrUnknownGroup is returned by RemoveGroup for a group the dashboard does not hold.
	ErrUnknownGroup = errors.New("unknown group")
)

// Config holds the remote paths and cache settings of a Distributor.
type Config struct {
	DocumentPath   string
	ComputePath    string
	ResetPath      string
	PollInterval   time.Duration
	CacheKeyPrefix string
}

// DefaultConfig returns the default paths.
func DefaultConfig() Config {
	return Config{
		DocumentPath:   "/dashboard",
		ComputePath:    "/charts/compute",
		ResetPath:      "/charts/reset",
		PollInterval:   2 * time.Second,
		CacheKeyPrefix: "chart.history.",
	}
}

// ConfigFrom maps the dashboard configuration section. Empty fields take
// their defaults.
func ConfigFrom(cfg *config.DashboardConfig) Config {
	out := DefaultConfig()
	if cfg.DocumentPath != "" {
		out.DocumentPath = cfg.DocumentPath
	}
	if cfg.ComputePath != "" {
		out.ComputePath = cfg.ComputePath
	}
	if cfg.ResetPath != "" {
		out.ResetPath = cfg.ResetPath
	}
	if cfg.PollInterval > 0 {
		out.PollInterval = cfg.PollInterval
	}
	if cfg.CacheKeyPrefix != "" {
		out.CacheKeyPrefix = cfg.CacheKeyPrefix
	}
	return out
}

// Option configures a Distributor.
type Option func(*Distributor)

// WithClock sets the clock used to stamp snapshot data that arrives without
// a timestamp.
func WithClock(now func() time.Time) Option {
	return func(d *Distributor) { d.now = now }
}

// NotificationSink receives the notifications a Distributor raises for
// chart data it could not decode. *eventlog.Log satisfies it.
type NotificationSink interface {
	Push(n notification.Notification) error
}

// WithNotificationSink routes chart-data decode failures to sink as
// TransportError notifications.
func WithNotificationSink(sink NotificationSink) Option {
	return func(d *Distributor) { d.sink = sink }
}

// Distributor owns the dashboard. It persists every mutation remotely,
// keeps one broadcast subject per chart, fans fetched snapshots out to
// those subjects and caches each chart's retained history in storage.
//
// Distributor is safe for concurrent use. Mutations are not serialized
// against each other remotely: the last saved document wins.
type Distributor struct {
	client management.Client
	store  storage.Store
	cfg    Config
	now    func() time.Time
	sink   NotificationSink
	logger zerolog.Logger

	mu       sync.RWMutex
	dash     *chart.Dashboard
	subjects map[string]*broadcast.Subject[[]chart.Data]

	dashSubject *broadcast.Subject[[]chart.Chart]
}

// New creates a Distributor. store holds the per-chart history cache and
// may be nil to disable caching.
func New(client management.Client, store storage.Store, cfg Config, opts ...Option) *Distributor {
	def := DefaultConfig()
	if cfg.DocumentPath == "" {
		cfg.DocumentPath = def.DocumentPath
	}
	if cfg.ComputePath == "" {
		cfg.ComputePath = def.ComputePath
	}
	if cfg.ResetPath == "" {
		cfg.ResetPath = def.ResetPath
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.CacheKeyPrefix == "" {
		cfg.CacheKeyPrefix = def.CacheKeyPrefix
	}

	d := &Distributor{
		client:      client,
		store:       store,
		cfg:         cfg,
		now:         time.Now,
		logger:      logging.WithComponent("dashboard"),
		subjects:    make(map[string]*broadcast.Subject[[]chart.Data]),
		dashSubject: broadcast.NewSubject[[]chart.Chart](),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Config returns the effective configuration.
func (d *Distributor) Config() Config { return d.cfg }

// Load fetches the dashboard document, builds every chart, opens one
// subject per chart and warm-starts each chart's history from the cache.
// A 404 from the document path loads an empty dashboard. Calling Load again
// replaces the dashboard and ends all existing chart subscriptions.
func (d *Distributor) Load(ctx context.Context) error {
	var raw json.RawMessage
	err := d.client.Get(ctx, d.cfg.DocumentPath, &raw)
	var se *management.StatusError
	switch {
	case errors.As(err, &se) && se.StatusCode == http.StatusNotFound:
		d.logger.Info().Str("path", d.cfg.DocumentPath).Msg("No dashboard saved yet, starting empty")
		raw = nil
	case err != nil:
		return fmt.Errorf("load dashboard: %w", err)
	}

	dash, err := chart.DecodeDocument(raw)
	if err != nil {
		return fmt.Errorf("load dashboard: %w", err)
	}

	for _, c := range dash.Charts() {
		d.warmStart(c)
	}

	d.mu.Lock()
	old := d.subjects
	d.dash = dash
	d.subjects = make(map[string]*broadcast.Subject[[]chart.Data], dash.Len())
	for _, c := range dash.Charts() {
		d.subjects[c.Name()] = broadcast.NewSubject[[]chart.Data]()
	}
	charts := dash.Charts()
	d.mu.Unlock()

	for _, s := range old {
		s.Close()
	}

	metrics.ChartsActive.Set(float64(len(charts)))
	d.logger.Info().Int("charts", len(charts)).Int("groups", len(dash.Groups())).Msg("Dashboard loaded")
	d.dashSubject.Publish(charts)
	return nil
}

// Loaded reports whether Load has succeeded.
func (d *Distributor) Loaded() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.dash != nil
}

// Charts returns the dashboard's charts in order, or nil before Load.
func (d *Distributor) Charts() []chart.Chart {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.dash == nil {
		return nil
	}
	return d.dash.Charts()
}

// Groups returns the dashboard's group names, or nil before Load.
func (d *Distributor) Groups() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.dash == nil {
		return nil
	}
	return d.dash.Groups()
}

// Chart returns the named chart.
func (d *Distributor) Chart(name string) (chart.Chart, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.dash == nil {
		return nil, ErrNotLoaded
	}
	c, ok := d.dash.Chart(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownChart, name)
	}
	return c, nil
}

// Document returns the dashboard document.
func (d *Distributor) Document() (chart.DashboardDocument, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.dash == nil {
		return chart.DashboardDocument{}, ErrNotLoaded
	}
	return d.dash.Document(), nil
}

// SubscribeChart registers fn for snapshot deliveries of the named chart.
// The subscription ends when the chart is removed or modified.
func (d *Distributor) SubscribeChart(name string, fn func([]chart.Data)) (*broadcast.Subscription[[]chart.Data], error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.dash == nil {
		return nil, ErrNotLoaded
	}
	s, ok := d.subjects[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownChart, name)
	}
	return s.Subscribe(fn), nil
}

// SubscribeDashboard registers fn for the full chart list after Load and
// after every successfully saved mutation.
func (d *Distributor) SubscribeDashboard(fn func([]chart.Chart)) *broadcast.Subscription[[]chart.Chart] {
	return d.dashSubject.Subscribe(fn)
}

// AddChart adds c and saves the dashboard. It fails with ErrDuplicateChart,
// before any remote call, if the name is taken.
func (d *Distributor) AddChart(ctx context.Context, c chart.Chart) error {
	return d.mutate(ctx, "add", func(dash *chart.Dashboard) error {
		if err := dash.Add(c); err != nil {
			return err
		}
		d.openSubject(c.Name())
		return nil
	})
}

// ModifyChart replaces the chart named c.Name() and saves the dashboard.
// Subscribers of the previous chart see their subscription end. History
// carries over when the kind is unchanged.
func (d *Distributor) ModifyChart(ctx context.Context, c chart.Chart) error {
	var dropCache bool
	err := d.mutate(ctx, "modify", func(dash *chart.Dashboard) error {
		prev, err := dash.Replace(c)
		if err != nil {
			return err
		}
		if prev.Kind() == c.Kind() {
			if err := c.Retain(prev.Snapshots()...); err != nil {
				d.logger.Warn().Err(err).Str("chart", c.Name()).Msg("Could not carry chart history over")
			}
		} else {
			dropCache = true
		}
		d.openSubject(c.Name())
		return nil
	})
	if dropCache {
		d.deleteCache(c.Name())
	}
	return err
}

// RemoveChart removes the named chart, ends its subscriptions, deletes its
// cached history and saves the dashboard.
func (d *Distributor) RemoveChart(ctx context.Context, name string) error {
	var removed bool
	err := d.mutate(ctx, "remove", func(dash *chart.Dashboard) error {
		if _, err := dash.Remove(name); err != nil {
			return err
		}
		d.closeSubject(name)
		removed = true
		return nil
	})
	if removed {
		d.deleteCache(name)
	}
	return err
}

// AddGroup registers an empty group and saves the dashboard. Adding an
// existing group saves nothing.
func (d *Distributor) AddGroup(ctx context.Context, name string) error {
	var added bool
	err := d.mutate(ctx, "add_group", func(dash *chart.Dashboard) error {
		added = dash.AddGroup(name)
		if !added {
			return errUnchanged
		}
		return nil
	})
	if errors.Is(err, errUnchanged) {
		return nil
	}
	return err
}

// RemoveGroup removes a group with all of its charts and saves the
// dashboard.
func (d *Distributor) RemoveGroup(ctx context.Context, name string) error {
	var removed []chart.Chart
	err := d.mutate(ctx, "remove_group", func(dash *chart.Dashboard) error {
		if !slices.Contains(dash.Groups(), name) {
			return fmt.Errorf("%w: %q", ErrUnknownGroup, name)
		}
		removed = dash.RemoveGroup(name)
		for _, c := range removed {
			d.closeSubject(c.Name())
		}
		return nil
	})
	for _, c := range removed {
		d.deleteCache(c.Name())
	}
	return err
}

var errUnchanged = errors.New("dashboard unchanged")

// mutate applies fn to the loaded dashboard under the write lock, then
// saves the resulting document. fn's error aborts before any remote call.
// A failed save leaves the in-memory change in place and is returned.
func (d *Distributor) mutate(ctx context.Context, op string, fn func(*chart.Dashboard) error) error {
	d.mu.Lock()
	if d.dash == nil {
		d.mu.Unlock()
		return ErrNotLoaded
	}
	if err := fn(d.dash); err != nil {
		d.mu.Unlock()
		return err
	}
	doc := d.dash.Document()
	d.mu.Unlock()

	metrics.ChartsActive.Set(float64(len(doc.Charts)))

	err := d.client.Put(ctx, d.cfg.DocumentPath, doc)
	metrics.RecordDashboardSave(op, err)
	if err != nil {
		d.logger.Error().Err(err).Str("operation", op).Msg("Dashboard save failed")
		return fmt.Errorf("save dashboard: %w", err)
	}

	d.dashSubject.Publish(d.Charts())
	return nil
}

// openSubject replaces the chart's subject. Callers hold d.mu.
func (d *Distributor) openSubject(name string) {
	if s, ok := d.subjects[name]; ok {
		s.Close()
	}
	d.subjects[name] = broadcast.NewSubject[[]chart.Data]()
}

// closeSubject ends and forgets the chart's subject. Callers hold d.mu.
func (d *Distributor) closeSubject(name string) {
	if s, ok := d.subjects[name]; ok {
		s.Close()
		delete(d.subjects, name)
	}
}

// ResetChart asks the server to reset the chart's computation. It changes
// no local state.
func (d *Distributor) ResetChart(ctx context.Context, c chart.Chart) error {
	if _, err := d.Chart(c.Name()); err != nil {
		return err
	}
	if err := d.client.Post(ctx, d.cfg.ResetPath, c.Document(), nil); err != nil {
		return fmt.Errorf("reset chart %q: %w", c.Name(), err)
	}
	return nil
}

// ReceiveSnapshots fetches snapshots for charts in one request and
// delivers each chart's decoded data to that chart's subscribers. Every
// chart must be on the dashboard. A chart missing from the response gets no
// delivery; undecodable items are skipped and reported to the notification
// sink.
func (d *Distributor) ReceiveSnapshots(ctx context.Context, charts []chart.Chart) error {
	return d.receive(ctx, charts, false)
}

// receive implements ReceiveSnapshots. With skipMissing, charts no longer on
// the dashboard are dropped from the request instead of failing it.
func (d *Distributor) receive(ctx context.Context, charts []chart.Chart, skipMissing bool) error {
	if len(charts) == 0 {
		return nil
	}

	targets := make([]chart.Chart, 0, len(charts))
	request := make([]chart.Document, 0, len(charts))

	d.mu.RLock()
	if d.dash == nil {
		d.mu.RUnlock()
		return ErrNotLoaded
	}
	for _, c := range charts {
		registered, ok := d.dash.Chart(c.Name())
		if !ok {
			if skipMissing {
				continue
			}
			d.mu.RUnlock()
			return fmt.Errorf("%w: %q", ErrUnknownChart, c.Name())
		}
		targets = append(targets, registered)
		request = append(request, registered.Document())
	}
	d.mu.RUnlock()

	if len(targets) == 0 {
		return nil
	}

	var response map[string][]json.RawMessage
	start := time.Now()
	err := d.client.Post(ctx, d.cfg.ComputePath, request, &response)
	metrics.RecordSnapshotFetch(time.Since(start), err)
	if err != nil {
		return fmt.Errorf("fetch snapshots: %w", err)
	}

	received := d.now()
	for _, c := range targets {
		raws, ok := response[c.Name()]
		if !ok {
			continue
		}
		d.deliver(c, raws, received)
	}
	return nil
}

// deliver decodes, retains, caches and publishes one chart's data. A chart
// that was removed or replaced while the fetch was in flight gets nothing.
func (d *Distributor) deliver(c chart.Chart, raws []json.RawMessage, received time.Time) {
	data := make([]chart.Data, 0, len(raws))
	for i, raw := range raws {
		datum, err := chart.DecodeData(c.Kind(), raw)
		if err != nil {
			reason := "malformed"
			if errors.Is(err, chart.ErrUnknownKind) {
				reason = "unknown_kind"
			}
			metrics.DecodeFailures.WithLabelValues("chart_data", reason).Inc()
			d.logger.Warn().Err(err).Str("chart", c.Name()).Int("index", i).Msg("Skipping undecodable chart data")
			d.report(fmt.Errorf("chart %q: %w", c.Name(), err), raw)
			continue
		}
		datum.Stamp(received)
		data = append(data, datum)
	}

	// The read lock keeps RemoveChart and ModifyChart from dropping the
	// chart between the check and the cache write.
	d.mu.RLock()
	current, ok := d.dash.Chart(c.Name())
	if !ok || current != c {
		d.mu.RUnlock()
		d.logger.Debug().Str("chart", c.Name()).Msg("Dropping snapshots for a chart that changed during fetch")
		return
	}
	if err := c.Retain(data...); err != nil {
		d.logger.Error().Err(err).Str("chart", c.Name()).Msg("Chart rejected its own data")
	}
	d.saveCache(c)
	subject := d.subjects[c.Name()]
	d.mu.RUnlock()

	if subject != nil {
		subject.Publish(data)
	}
	metrics.SnapshotDeliveries.WithLabelValues(string(c.Kind())).Inc()
}

func (d *Distributor) report(err error, raw json.RawMessage) {
	if d.sink == nil {
		return
	}
	if perr := d.sink.Push(notification.NewTransportError(err, raw)); perr != nil {
		d.logger.Warn().Err(perr).Msg("Could not record chart data failure")
	}
}

func (d *Distributor) cacheKey(name string) string {
	return d.cfg.CacheKeyPrefix + name
}

func (d *Distributor) saveCache(c chart.Chart) {
	if d.store == nil {
		return
	}
	data, err := json.Marshal(c.Snapshots())
	if err != nil {
		d.logger.Warn().Err(err).Str("chart", c.Name()).Msg("Could not encode chart history")
		return
	}
	if err := d.store.Set(d.cacheKey(c.Name()), data); err != nil {
		d.logger.Warn().Err(err).Str("chart", c.Name()).Msg("Could not cache chart history")
	}
}

func (d *Distributor) deleteCache(name string) {
	if d.store == nil {
		return
	}
	if err := d.store.Delete(d.cacheKey(name)); err != nil && !errors.Is(err, storage.ErrNotFound) {
		d.logger.Warn().Err(err).Str("chart", name).Msg("Could not delete cached chart history")
	}
}

// warmStart retains c's cached history. A missing or unreadable cache
// leaves the history empty.
func (d *Distributor) warmStart(c chart.Chart) {
	if d.store == nil {
		return
	}
	data, err := d.store.Get(d.cacheKey(c.Name()))
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			d.logger.Warn().Err(err).Str("chart", c.Name()).Msg("Could not read cached chart history")
		}
		return
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		d.logger.Warn().Err(err).Str("chart", c.Name()).Msg("Discarding unreadable chart history")
		return
	}
	history := make([]chart.Data, 0, len(raws))
	for _, raw := range raws {
		if datum, err := chart.DecodeData(c.Kind(), raw); err == nil {
			history = append(history, datum)
		}
	}
	if err := c.Retain(history...); err != nil {
		d.logger.Warn().Err(err).Str("chart", c.Name()).Msg("Discarding incompatible chart history")
	}
}

// Close ends every chart and dashboard subscription.
func (d *Distributor) Close() {
	d.mu.Lock()
	subjects := d.subjects
	d.subjects = make(map[string]*broadcast.Subject[[]chart.Data])
	d.mu.Unlock()

	for _, s := range subjects {
		s.Close()
	}
	d.dashSubject.Close()
}
