// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateManagement(); err != nil {
		return err
	}
	if err := c.validateTransport(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return c.validateDashboard()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %s", c.Server.Timeout)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "disabled", "off":
	default:
		return fmt.Errorf("LOG_LEVEL %q is not a valid level", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateStorage() error {
	switch c.Storage.Backend {
	case "memory":
		return nil
	case "badger":
		if c.Storage.Path == "" {
			return fmt.Errorf("STORAGE_PATH is required when STORAGE_BACKEND=badger")
		}
		return nil
	default:
		return fmt.Errorf("STORAGE_BACKEND must be badger or memory, got %q", c.Storage.Backend)
	}
}

func (c *Config) validateManagement() error {
	if err := validateURL(c.Management.BaseURL, "MANAGEMENT_URL", "http", "https"); err != nil {
		return err
	}
	if c.Management.RequestsPerSecond < 0 {
		return fmt.Errorf("MANAGEMENT_REQUESTS_PER_SECOND must not be negative")
	}
	if c.Management.RequestsPerSecond > 0 && c.Management.Burst < 1 {
		return fmt.Errorf("MANAGEMENT_BURST must be at least 1 when rate limiting is enabled")
	}
	return nil
}

func (c *Config) validateTransport() error {
	switch c.Transport.Mode {
	case "none":
		return nil
	case "websocket":
		return validateURL(c.Transport.WebSocketURL, "TRANSPORT_WEBSOCKET_URL", "ws", "wss")
	case "nats":
		if c.NATS.Subject == "" {
			return fmt.Errorf("NATS_SUBJECT is required when TRANSPORT_MODE=nats")
		}
		return validateURL(c.NATS.URL, "NATS_URL", "nats", "tls")
	default:
		return fmt.Errorf("TRANSPORT_MODE must be websocket, nats or none, got %q", c.Transport.Mode)
	}
}

func (c *Config) validateNotifications() error {
	n := c.Notifications
	if n.MaxSize < 1 {
		return fmt.Errorf("NOTIFICATIONS_MAX_SIZE must be positive, got %d", n.MaxSize)
	}
	if n.SpliceCount < 1 || n.SpliceCount > n.MaxSize {
		return fmt.Errorf("NOTIFICATIONS_SPLICE_COUNT must be between 1 and NOTIFICATIONS_MAX_SIZE (%d), got %d",
			n.MaxSize, n.SpliceCount)
	}
	if n.RecentCount < 1 {
		return fmt.Errorf("NOTIFICATIONS_RECENT_COUNT must be positive, got %d", n.RecentCount)
	}
	if n.FlushThreshold < 0 {
		return fmt.Errorf("NOTIFICATIONS_FLUSH_THRESHOLD must not be negative, got %d", n.FlushThreshold)
	}
	if n.FlushInterval < 0 {
		return fmt.Errorf("NOTIFICATIONS_FLUSH_INTERVAL must not be negative, got %s", n.FlushInterval)
	}
	if n.StorageKey == "" {
		return fmt.Errorf("NOTIFICATIONS_STORAGE_KEY is required")
	}
	return nil
}

func (c *Config) validateDashboard() error {
	d := c.Dashboard
	for name, p := range map[string]string{
		"DASHBOARD_DOCUMENT_PATH": d.DocumentPath,
		"DASHBOARD_COMPUTE_PATH":  d.ComputePath,
		"DASHBOARD_RESET_PATH":    d.ResetPath,
	} {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("%s must start with '/', got %q", name, p)
		}
	}
	if d.PollInterval <= 0 {
		return fmt.Errorf("DASHBOARD_POLL_INTERVAL must be positive, got %s", d.PollInterval)
	}
	return nil
}

func validateURL(raw, name string, schemes ...string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", name)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is invalid: %w", name, err)
	}
	for _, s := range schemes {
		if u.Scheme == s {
			if u.Host == "" {
				return fmt.Errorf("%s must include a host", name)
			}
			return nil
		}
	}
	return fmt.Errorf("%s must use one of %v, got %q", name, schemes, u.Scheme)
}
