// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

// Package logging provides the process-wide zerolog logger for Vigil.
//
//	logging.Init(logging.ConfigFrom(&cfg.Logging))
//	logging.Info().Str("chart", name).Msg("Chart added")
//	logging.Ctx(ctx).Warn().Err(err).Msg("Dashboard save failed")
//
// Long-lived components keep a child logger from WithComponent. Every entry
// carries the service name so console logs can be mixed with the monitored
// system's own output.
//
// Log chains must end with .Msg() or .Send(); an unterminated event is
// silently discarded.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/vigil/internal/config"
)

// ServiceName is the default value of the service field.
const ServiceName = "vigil"

// Config holds logging configuration.
type Config struct {
	// Level is one of trace, debug, info, warn, error, disabled.
	Level string

	// Format is json or console.
	Format string

	Caller    bool
	Timestamp bool

	// Service is written as the service field; empty means ServiceName.
	Service string

	// Output defaults to os.Stderr.
	Output io.Writer
}

// DefaultConfig returns the configuration used before Init is called.
func DefaultConfig() Config {
	return Config{
		Level:     "info",
		Format:    "json",
		Timestamp: true,
		Service:   ServiceName,
		Output:    os.Stderr,
	}
}

// ConfigFrom maps the logging section of the application config. Entries
// are always timestamped.
func ConfigFrom(cfg *config.LoggingConfig) Config {
	out := DefaultConfig()
	if cfg.Level != "" {
		out.Level = cfg.Level
	}
	if cfg.Format != "" {
		out.Format = cfg.Format
	}
	out.Caller = cfg.Caller
	return out
}

var (
	log zerolog.Logger
	mu  sync.RWMutex
)

//nolint:gochecknoinits // logging must work before main calls Init
func init() {
	log = build(DefaultConfig())
}

// Init replaces the global logger. It may be called more than once.
func Init(cfg Config) {
	l := build(cfg)
	mu.Lock()
	log = l
	mu.Unlock()
}

func build(cfg Config) zerolog.Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	if cfg.Service == "" {
		cfg.Service = ServiceName
	}

	zerolog.SetGlobalLevel(parseLevel(cfg.Level))
	zerolog.TimeFieldFormat = time.RFC3339Nano

	var output io.Writer = cfg.Output
	if strings.EqualFold(cfg.Format, "console") {
		output = zerolog.ConsoleWriter{Out: cfg.Output, TimeFormat: "15:04:05.000"}
	}

	ctx := zerolog.New(output).With().Str("service", cfg.Service)
	if cfg.Timestamp {
		ctx = ctx.Timestamp()
	}
	if cfg.Caller {
		ctx = ctx.Caller()
	}
	return ctx.Logger()
}

// parseLevel maps a level name to zerolog; unknown names mean info.
func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// Logger returns the global logger.
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// With starts a child logger context on the global logger.
func With() zerolog.Context {
	l := Logger()
	return l.With()
}

// Debug starts a debug entry.
func Debug() *zerolog.Event { l := Logger(); return l.Debug() }

// Info starts an info entry.
func Info() *zerolog.Event { l := Logger(); return l.Info() }

// Warn starts a warn entry.
func Warn() *zerolog.Event { l := Logger(); return l.Warn() }

// Error starts an error entry.
func Error() *zerolog.Event { l := Logger(); return l.Error() }

// Fatal starts a fatal entry; the process exits after it is written.
func Fatal() *zerolog.Event { l := Logger(); return l.Fatal() }

// NewTestLogger returns a JSON logger writing to w.
func NewTestLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}
