// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

// Package eventlog implements the bounded notification log: the single
// record of what has happened, broadcast to every consumer and kept in
// durable storage across restarts.
//
// Pushed notifications go to a most-recent-first write-behind buffer and are
// published synchronously. Once the buffer grows past FlushThreshold it is
// merged into storage, where the log is capped at MaxSize entries by
// dropping the oldest SpliceCount entries at a time.
package eventlog

import (
	"errors"
	"fmt"
	"sync"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/vigil/internal/broadcast"
	"github.com/tomtom215/vigil/internal/config"
	"github.com/tomtom215/vigil/internal/logging"
	"github.com/tomtom215/vigil/internal/metrics"
	"github.com/tomtom215/vigil/internal/notification"
	"github.com/tomtom215/vigil/internal/storage"
)

// Config holds the log's bounds.
type Config struct {
	// MaxSize caps the number of stored notifications.
	MaxSize int

	// SpliceCount is how many of the oldest entries are dropped at once
	// when a flush would exceed MaxSize.
	SpliceCount int

	// RecentCount is the default size of Recent.
	RecentCount int

	// FlushThreshold triggers a flush when the buffer grows beyond it.
	FlushThreshold int

	// StorageKey is the key under which the log is stored.
	StorageKey string
}

// DefaultConfig returns the default bounds.
func DefaultConfig() Config {
	return Config{
		MaxSize:        500,
		SpliceCount:    50,
		RecentCount:    100,
		FlushThreshold: 20,
		StorageKey:     "notifications",
	}
}

// ConfigFrom maps the notifications section of the application config.
func ConfigFrom(cfg *config.NotificationsConfig) Config {
	return Config{
		MaxSize:        cfg.MaxSize,
		SpliceCount:    cfg.SpliceCount,
		RecentCount:    cfg.RecentCount,
		FlushThreshold: cfg.FlushThreshold,
		StorageKey:     cfg.StorageKey,
	}
}

// ErrClosed is returned by Push after Close.
var ErrClosed = errors.New("eventlog: log closed")

// Log is the bounded notification log. It is safe for concurrent use.
type Log struct {
	cfg     Config
	store   storage.Store
	subject *broadcast.Subject[notification.Notification]
	logger  zerolog.Logger

	// pushMu orders buffer insertion together with delivery, so every
	// subscriber sees pushes in buffer order. It is taken before mu.
	pushMu sync.Mutex

	mu     sync.Mutex
	buffer []notification.Notification // newest first
	closed bool
}

// New creates a Log over store. Zero fields in cfg take their defaults.
func New(store storage.Store, cfg Config) *Log {
	def := DefaultConfig()
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = def.MaxSize
	}
	if cfg.SpliceCount <= 0 {
		cfg.SpliceCount = def.SpliceCount
	}
	if cfg.RecentCount <= 0 {
		cfg.RecentCount = def.RecentCount
	}
	if cfg.FlushThreshold < 0 {
		cfg.FlushThreshold = def.FlushThreshold
	}
	if cfg.StorageKey == "" {
		cfg.StorageKey = def.StorageKey
	}
	return &Log{
		cfg:     cfg,
		store:   store,
		subject: broadcast.NewSubject[notification.Notification](),
		logger:  logging.WithComponent("eventlog"),
	}
}

// Push records n and delivers it to every current subscriber before
// returning. The returned error only reports a failed threshold flush; n is
// accepted either way and stays buffered for the next flush.
func (l *Log) Push(n notification.Notification) error {
	l.pushMu.Lock()
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		l.pushMu.Unlock()
		return ErrClosed
	}
	l.buffer = append([]notification.Notification{n}, l.buffer...)
	buffered := len(l.buffer)
	l.mu.Unlock()

	metrics.NotificationsPushed.WithLabelValues(string(n.Kind()), string(n.Level())).Inc()
	metrics.LogBufferedEntries.Set(float64(buffered))

	l.subject.Publish(n)
	l.pushMu.Unlock()

	if buffered > l.cfg.FlushThreshold {
		return l.Flush()
	}
	return nil
}

// Flush merges the buffer into storage. It is a no-op when the buffer is
// empty, so flushing twice in a row leaves storage unchanged.
func (l *Log) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.flushLocked()
}

func (l *Log) flushLocked() error {
	if len(l.buffer) == 0 {
		return nil
	}

	merged := make([]json.RawMessage, 0, len(l.buffer))
	for _, n := range l.buffer {
		data, err := notification.Marshal(n)
		if err != nil {
			l.logger.Error().Err(err).Str("id", n.ID()).Msg("Dropping unencodable notification")
			continue
		}
		merged = append(merged, data)
	}
	merged = append(merged, l.loadLocked()...)

	evicted := 0
	for len(merged) > l.cfg.MaxSize {
		drop := min(l.cfg.SpliceCount, len(merged))
		merged = merged[:len(merged)-drop]
		evicted += drop
	}

	data, err := json.Marshal(merged)
	if err == nil {
		err = l.store.Set(l.cfg.StorageKey, data)
	}
	metrics.RecordFlush(len(merged), evicted, err)
	if err != nil {
		return fmt.Errorf("flush notification log: %w", err)
	}

	l.logger.Debug().
		Int("flushed", len(l.buffer)).
		Int("stored", len(merged)).
		Int("evicted", evicted).
		Msg("Notification log flushed")

	l.buffer = nil
	metrics.LogBufferedEntries.Set(0)
	return nil
}

// loadLocked reads the stored log, newest first. A missing or unreadable
// log is treated as empty.
func (l *Log) loadLocked() []json.RawMessage {
	data, err := l.store.Get(l.cfg.StorageKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			l.logger.Warn().Err(err).Msg("Stored notification log unavailable, treating as empty")
		}
		return nil
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		l.logger.Warn().Err(err).Msg("Stored notification log is corrupt, treating as empty")
		return nil
	}
	return entries
}

// Recent returns up to count of the newest notifications, oldest first.
// count <= 0 means RecentCount. Stored entries that no longer decode are
// skipped.
func (l *Log) Recent(count int) []notification.Notification {
	if count <= 0 {
		count = l.cfg.RecentCount
	}

	l.mu.Lock()
	newest := make([]notification.Notification, 0, count)
	for _, n := range l.buffer {
		if len(newest) == count {
			break
		}
		newest = append(newest, n)
	}
	var stored []json.RawMessage
	if len(newest) < count {
		stored = l.loadLocked()
	}
	l.mu.Unlock()

	for _, raw := range stored {
		if len(newest) == count {
			break
		}
		n, err := notification.Restore(raw)
		if err != nil {
			metrics.DecodeFailures.WithLabelValues("notification", "restore").Inc()
			l.logger.Warn().Err(err).Msg("Skipping unreadable stored notification")
			continue
		}
		newest = append(newest, n)
	}

	out := make([]notification.Notification, len(newest))
	for i, n := range newest {
		out[len(newest)-1-i] = n
	}
	return out
}

// Clear empties the buffer and storage. Deliveries already made are not
// affected.
func (l *Log) Clear() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.buffer = nil
	metrics.LogBufferedEntries.Set(0)
	if err := l.store.Delete(l.cfg.StorageKey); err != nil {
		return fmt.Errorf("clear notification log: %w", err)
	}
	metrics.LogStoredEntries.Set(0)
	return nil
}

// Subscribe registers fn for every notification pushed from now on. fn runs
// on the pushing goroutine and must not call Push.
func (l *Log) Subscribe(fn func(notification.Notification)) *broadcast.Subscription[notification.Notification] {
	return l.subject.Subscribe(fn)
}

// Buffered returns the number of notifications not yet flushed.
func (l *Log) Buffered() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buffer)
}

// Close flushes the buffer and ends all subscriptions. Further pushes fail
// with ErrClosed.
func (l *Log) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	err := l.flushLocked()
	l.mu.Unlock()

	l.subject.Close()
	if err != nil {
		return err
	}
	l.logger.Info().Msg("Notification log closed")
	return nil
}
