// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

// Package notification defines the closed set of operator notifications and
// the decoder that produces them from server-pushed frames.
//
// Unlike health statuses, notification kinds are a versioned protocol: a
// frame with an unknown kind is a decode failure, which callers surface as a
// TransportError notification.
package notification

import (
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/vigil/internal/health"
)

// Kind discriminates notification variants on the wire and in storage.
type Kind string

const (
	KindLog                 Kind = "log"
	KindHealthStatusChanged Kind = "healthStatusChanged"
	KindResourceEvent       Kind = "resourceEvent"
	KindScalingHappened     Kind = "scalingHappened"
	KindTransportError      Kind = "transportError"
)

// Level is the notification severity.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// ParseLevel maps a wire severity to a Level. Unknown values are info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace", "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error", "fatal", "critical":
		return LevelError
	default:
		return LevelInfo
	}
}

// Notification is one of *Log, *HealthStatusChanged, *ResourceEvent,
// *ScalingHappened or *TransportError. Notifications are immutable once built.
type Notification interface {
	// ID is assigned once at construction and is the sole identity used
	// for removal and de-duplication.
	ID() string
	Kind() Kind
	Level() Level
	Timestamp() time.Time
	Message() string

	sealed()
}

// Base carries the attributes common to all variants.
type Base struct {
	id        string
	level     Level
	timestamp time.Time
	message   string
}

func newBase(level Level, message string, at time.Time) Base {
	return Base{id: uuid.NewString(), level: level, timestamp: at, message: message}
}

func (b *Base) ID() string           { return b.id }
func (b *Base) Level() Level         { return b.level }
func (b *Base) Timestamp() time.Time { return b.timestamp }
func (b *Base) Message() string      { return b.message }
func (b *Base) sealed()              {}

// Log is a log line emitted by the monitored system.
type Log struct {
	Base
	Resource   string
	StackTrace string
	Details    map[string]any
}

func (*Log) Kind() Kind { return KindLog }

// HealthStatusChanged reports a status transition. Previous is nil for the
// first observation of a status.
type HealthStatusChanged struct {
	Base
	Previous health.Status
	Current  health.Status
}

func (*HealthStatusChanged) Kind() Kind { return KindHealthStatusChanged }

// ResourceEvent is an application event attached to a resource.
type ResourceEvent struct {
	Base
	Resource       string
	Source         string
	Category       string
	SequenceNumber int64
	UserData       json.RawMessage
}

func (*ResourceEvent) Kind() Kind { return KindResourceEvent }

// ScalingHappened reports a scaling decision taken for a resource group.
type ScalingHappened struct {
	Base
	GroupName         string
	Action            string
	CastingVoteWeight float64
	Evaluation        map[string]float64
}

func (*ScalingHappened) Kind() Kind { return KindScalingHappened }

// TransportError is produced locally when a frame cannot be received or
// decoded. It is never accepted from the wire.
type TransportError struct {
	Base
	Cause string
	Frame string
}

func (*TransportError) Kind() Kind { return KindTransportError }

// MaxFrameExcerpt bounds the raw frame text kept on a TransportError.
const MaxFrameExcerpt = 512

// NewTransportError builds an error-level notification describing err. frame
// is the offending raw frame, if any, and is truncated to MaxFrameExcerpt bytes.
func NewTransportError(err error, frame []byte) *TransportError {
	cause := "unknown transport error"
	if err != nil {
		cause = err.Error()
	}
	excerpt := string(frame)
	if len(excerpt) > MaxFrameExcerpt {
		excerpt = excerpt[:MaxFrameExcerpt] + "..."
	}
	return &TransportError{
		Base:  newBase(LevelError, fmt.Sprintf("transport error: %s", cause), time.Now()),
		Cause: cause,
		Frame: excerpt,
	}
}

// statusLevel derives a HealthStatusChanged level from the current status.
func statusLevel(s health.Status) Level {
	switch {
	case s.Kind() == health.KindOk:
		return LevelInfo
	case s.IsCritical():
		return LevelError
	default:
		return LevelWarn
	}
}
