// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// isolate points CONFIG_PATH at a missing file and moves into an empty
// directory so a stray ./config.yaml cannot influence the test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(ConfigPathEnvVar, "")
	t.Chdir(dir)
	return dir
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Port != 8420 {
		t.Errorf("Server.Port = %d, want 8420", cfg.Server.Port)
	}
	if cfg.Notifications.MaxSize != 500 {
		t.Errorf("Notifications.MaxSize = %d, want 500", cfg.Notifications.MaxSize)
	}
	if cfg.Notifications.SpliceCount != 50 {
		t.Errorf("Notifications.SpliceCount = %d, want 50", cfg.Notifications.SpliceCount)
	}
	if cfg.Notifications.RecentCount != 100 {
		t.Errorf("Notifications.RecentCount = %d, want 100", cfg.Notifications.RecentCount)
	}
	if cfg.Dashboard.PollInterval != 2*time.Second {
		t.Errorf("Dashboard.PollInterval = %v, want 2s", cfg.Dashboard.PollInterval)
	}
	if cfg.Dashboard.DocumentPath != "/dashboard" {
		t.Errorf("Dashboard.DocumentPath = %q, want /dashboard", cfg.Dashboard.DocumentPath)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"HTTP_PORT", "server.port"},
		{"LOG_LEVEL", "logging.level"},
		{"NOTIFICATIONS_MAX_SIZE", "notifications.max_size"},
		{"DASHBOARD_POLL_INTERVAL", "dashboard.poll_interval"},
		{"TRANSPORT_MODE", "transport.mode"},
		{"nats_subject", "nats.subject"},
		{"PATH", ""},
		{"HOME", ""},
	}
	for _, tt := range tests {
		if got := envTransformFunc(tt.env); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
		}
	}
}

func TestFindConfigFile(t *testing.T) {
	dir := isolate(t)

	if got := findConfigFile(); got != "" {
		t.Errorf("expected no config file, got %q", got)
	}

	local := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(local, []byte("server:\n  port: 9000\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if got := findConfigFile(); got != "config.yaml" {
		t.Errorf("expected config.yaml, got %q", got)
	}

	explicit := filepath.Join(dir, "explicit.yaml")
	if err := os.WriteFile(explicit, []byte("{}"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, explicit)
	if got := findConfigFile(); got != explicit {
		t.Errorf("expected CONFIG_PATH to take precedence, got %q", got)
	}
}

func TestLoadEnvVars(t *testing.T) {
	isolate(t)
	t.Setenv("HTTP_PORT", "9001")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("NOTIFICATIONS_FLUSH_THRESHOLD", "5")
	t.Setenv("DASHBOARD_POLL_INTERVAL", "500ms")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9001 {
		t.Errorf("Server.Port = %d, want 9001", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Notifications.FlushThreshold != 5 {
		t.Errorf("Notifications.FlushThreshold = %d, want 5", cfg.Notifications.FlushThreshold)
	}
	if cfg.Dashboard.PollInterval != 500*time.Millisecond {
		t.Errorf("Dashboard.PollInterval = %v, want 500ms", cfg.Dashboard.PollInterval)
	}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[1] != "https://b.example" {
		t.Errorf("Security.CORSOrigins = %v", cfg.Security.CORSOrigins)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want default 0.0.0.0", cfg.Server.Host)
	}
}

func TestLoadConfigFileAndEnvOverride(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "vigil.yaml")
	content := `
server:
  port: 8888
notifications:
  max_size: 200
  splice_count: 20
transport:
  mode: nats
nats:
  subject: ops.events
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("HTTP_PORT", "7777")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 7777 {
		t.Errorf("env should override file: Server.Port = %d, want 7777", cfg.Server.Port)
	}
	if cfg.Notifications.MaxSize != 200 || cfg.Notifications.SpliceCount != 20 {
		t.Errorf("Notifications = %+v", cfg.Notifications)
	}
	if cfg.Transport.Mode != "nats" || cfg.NATS.Subject != "ops.events" {
		t.Errorf("Transport/NATS = %+v / %+v", cfg.Transport, cfg.NATS)
	}
	if cfg.Notifications.RecentCount != 100 {
		t.Errorf("unset values keep defaults: RecentCount = %d", cfg.Notifications.RecentCount)
	}
}

func TestLoadValidationFailure(t *testing.T) {
	isolate(t)
	t.Setenv("NOTIFICATIONS_MAX_SIZE", "10")
	t.Setenv("NOTIFICATIONS_SPLICE_COUNT", "50")

	if _, err := Load(); err == nil {
		t.Fatal("expected validation error for splice count above max size")
	}
}
