// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

// Package config loads Vigil's configuration.
//
// Configuration is layered with Koanf v2:
//  1. Defaults: built-in values for every setting (defaultConfig)
//  2. Config file: optional YAML (CONFIG_PATH, ./config.yaml, /etc/vigil/config.yaml)
//  3. Environment variables: an explicit mapping table (see envTransformFunc)
//
// Unmapped environment variables are ignored so the process environment
// cannot leak arbitrary keys into the configuration tree.
package config

import "time"

// Config is the root configuration tree.
type Config struct {
	Server        ServerConfig        `koanf:"server"`
	Logging       LoggingConfig       `koanf:"logging"`
	Storage       StorageConfig       `koanf:"storage"`
	Management    ManagementConfig    `koanf:"management"`
	Transport     TransportConfig     `koanf:"transport"`
	NATS          NATSConfig          `koanf:"nats"`
	Notifications NotificationsConfig `koanf:"notifications"`
	Dashboard     DashboardConfig     `koanf:"dashboard"`
	Security      SecurityConfig      `koanf:"security"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// LoggingConfig mirrors logging.Config for the fields that are configurable.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// StorageConfig selects the durable key/value backend used by the
// notification log and the per-chart history cache.
type StorageConfig struct {
	// Backend is "badger" (on disk) or "memory".
	Backend string `koanf:"backend"`

	// Path is the badger directory. Ignored for the memory backend.
	Path string `koanf:"path"`

	// SyncWrites makes badger fsync every write.
	SyncWrites bool `koanf:"sync_writes"`
}

// ManagementConfig describes the REST API of the monitored system.
type ManagementConfig struct {
	// BaseURL is prefixed to every request path.
	BaseURL string        `koanf:"base_url"`
	Timeout time.Duration `koanf:"timeout"`

	// RequestsPerSecond and Burst bound the outgoing request rate.
	// A zero RequestsPerSecond disables limiting.
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	Burst             int     `koanf:"burst"`

	// BreakerMaxFailures consecutive failures open the circuit for BreakerTimeout.
	BreakerMaxFailures uint32        `koanf:"breaker_max_failures"`
	BreakerTimeout     time.Duration `koanf:"breaker_timeout"`
}

// TransportConfig selects where server-pushed notification frames come from.
type TransportConfig struct {
	// Mode is "websocket", "nats" or "none".
	Mode string `koanf:"mode"`

	// WebSocketURL is the notification endpoint for Mode "websocket".
	WebSocketURL string `koanf:"websocket_url"`

	// MaxFrameSize caps a single inbound frame, in bytes.
	MaxFrameSize int64 `koanf:"max_frame_size"`
}

// NATSConfig configures the NATS subscriber used when Transport.Mode is "nats".
type NATSConfig struct {
	URL           string        `koanf:"url"`
	Subject       string        `koanf:"subject"`
	JetStream     bool          `koanf:"jetstream"`
	DurableName   string        `koanf:"durable_name"`
	QueueGroup    string        `koanf:"queue_group"`
	AckWait       time.Duration `koanf:"ack_wait"`
	ReconnectWait time.Duration `koanf:"reconnect_wait"`
}

// NotificationsConfig configures the bounded notification log.
type NotificationsConfig struct {
	MaxSize        int    `koanf:"max_size"`
	SpliceCount    int    `koanf:"splice_count"`
	RecentCount    int    `koanf:"recent_count"`
	FlushThreshold int    `koanf:"flush_threshold"`
	StorageKey     string `koanf:"storage_key"`

	// FlushInterval persists a partially filled buffer periodically. Zero
	// disables the periodic flush.
	FlushInterval time.Duration `koanf:"flush_interval"`
}

// DashboardConfig configures the chart data distributor.
type DashboardConfig struct {
	DocumentPath   string        `koanf:"document_path"`
	ComputePath    string        `koanf:"compute_path"`
	ResetPath      string        `koanf:"reset_path"`
	PollInterval   time.Duration `koanf:"poll_interval"`
	CacheKeyPrefix string        `koanf:"cache_key_prefix"`
}

// SecurityConfig holds browser-facing HTTP protections.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return joinHostPort(s.Host, s.Port)
}
