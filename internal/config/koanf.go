// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths searched for a config file, in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/vigil/config.yaml",
	"/etc/vigil/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8420,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Storage: StorageConfig{
			Backend:    "badger",
			Path:       "/data/vigil",
			SyncWrites: false,
		},
		Management: ManagementConfig{
			BaseURL:            "http://127.0.0.1:8080/management",
			Timeout:            15 * time.Second,
			RequestsPerSecond:  20,
			Burst:              10,
			BreakerMaxFailures: 5,
			BreakerTimeout:     30 * time.Second,
		},
		Transport: TransportConfig{
			Mode:         "websocket",
			WebSocketURL: "ws://127.0.0.1:8080/notifications",
			MaxFrameSize: 1 << 20,
		},
		NATS: NATSConfig{
			URL:           "nats://127.0.0.1:4222",
			Subject:       "vigil.notifications",
			JetStream:     false,
			DurableName:   "vigil-console",
			QueueGroup:    "",
			AckWait:       30 * time.Second,
			ReconnectWait: 2 * time.Second,
		},
		Notifications: NotificationsConfig{
			MaxSize:        500,
			SpliceCount:    50,
			RecentCount:    100,
			FlushThreshold: 20,
			StorageKey:     "notifications",
			FlushInterval:  30 * time.Second,
		},
		Dashboard: DashboardConfig{
			DocumentPath:   "/dashboard",
			ComputePath:    "/charts/compute",
			ResetPath:      "/charts/reset",
			PollInterval:   2 * time.Second,
			CacheKeyPrefix: "chart.history.",
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// environment variables, then validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// findConfigFile returns the first existing config file, or "" when none exists.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are keys that accept a comma-separated string from the environment.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to config keys.
var envMappings = map[string]string{
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_timeout":          "server.timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"storage_backend":     "storage.backend",
	"storage_path":        "storage.path",
	"storage_sync_writes": "storage.sync_writes",

	"management_url":                  "management.base_url",
	"management_timeout":              "management.timeout",
	"management_requests_per_second":  "management.requests_per_second",
	"management_burst":                "management.burst",
	"management_breaker_max_failures": "management.breaker_max_failures",
	"management_breaker_timeout":      "management.breaker_timeout",

	"transport_mode":           "transport.mode",
	"transport_websocket_url":  "transport.websocket_url",
	"transport_max_frame_size": "transport.max_frame_size",

	"nats_url":            "nats.url",
	"nats_subject":        "nats.subject",
	"nats_jetstream":      "nats.jetstream",
	"nats_durable_name":   "nats.durable_name",
	"nats_queue_group":    "nats.queue_group",
	"nats_ack_wait":       "nats.ack_wait",
	"nats_reconnect_wait": "nats.reconnect_wait",

	"notifications_max_size":        "notifications.max_size",
	"notifications_splice_count":    "notifications.splice_count",
	"notifications_recent_count":    "notifications.recent_count",
	"notifications_flush_threshold": "notifications.flush_threshold",
	"notifications_flush_interval":  "notifications.flush_interval",
	"notifications_storage_key":     "notifications.storage_key",

	"dashboard_document_path":    "dashboard.document_path",
	"dashboard_compute_path":     "dashboard.compute_path",
	"dashboard_reset_path":       "dashboard.reset_path",
	"dashboard_poll_interval":    "dashboard.poll_interval",
	"dashboard_cache_key_prefix": "dashboard.cache_key_prefix",

	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
}

// envTransformFunc maps an environment variable name to a config key.
// Returning "" makes koanf skip the variable.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

func joinHostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
