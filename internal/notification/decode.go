// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

package notification

import (
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/vigil/internal/health"
)

// envelope is the flat JSON shape shared by server frames and the persisted
// form. Server frames never carry id; the persisted form always does.
// Timestamp stays raw: servers send RFC 3339 strings or epoch milliseconds.
type envelope struct {
	Kind      Kind            `json:"kind"`
	ID        string          `json:"id,omitempty"`
	Level     string          `json:"level,omitempty"`
	Timestamp json.RawMessage `json:"timestamp,omitempty"`
	Message   string          `json:"message,omitempty"`

	Resource   string         `json:"resource,omitempty"`
	StackTrace string         `json:"stackTrace,omitempty"`
	Details    map[string]any `json:"details,omitempty"`

	StatusName     string          `json:"statusName,omitempty"`
	PreviousStatus json.RawMessage `json:"previousStatus,omitempty"`
	NewStatus      json.RawMessage `json:"newStatus,omitempty"`

	Source         string          `json:"source,omitempty"`
	Category       string          `json:"category,omitempty"`
	SequenceNumber int64           `json:"sequenceNumber,omitempty"`
	UserData       json.RawMessage `json:"userData,omitempty"`

	GroupName         string             `json:"groupName,omitempty"`
	Action            string             `json:"action,omitempty"`
	CastingVoteWeight float64            `json:"castingVoteWeight,omitempty"`
	Evaluation        map[string]float64 `json:"evaluation,omitempty"`

	Cause string `json:"cause,omitempty"`
	Frame string `json:"frame,omitempty"`
}

// Decoder turns server frames into notifications. The zero value is not
// usable; use NewDecoder.
type Decoder struct {
	now func() time.Time
}

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// WithClock overrides the receive-time clock.
func WithClock(now func() time.Time) DecoderOption {
	return func(d *Decoder) { d.now = now }
}

// NewDecoder creates a Decoder stamping notifications with time.Now.
func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{now: time.Now}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode maps one frame to a Notification with a fresh id, timestamped at
// receive time. Any server-side timestamp is ignored. Errors are *DecodeError.
func (d *Decoder) Decode(frame []byte) (Notification, error) {
	var env envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return nil, &DecodeError{Err: ErrMalformedFrame, Cause: err}
	}
	if env.Kind == KindTransportError {
		return nil, &DecodeError{Kind: string(env.Kind), Err: ErrUnknownKind}
	}
	return build(&env, newBase(ParseLevel(env.Level), env.Message, d.now()))
}

// build fills the variant for env.Kind on top of base. Level and message
// defaults that depend on the variant are applied here.
func build(env *envelope, base Base) (Notification, error) {
	levelSet := env.Level != ""

	switch env.Kind {
	case KindLog:
		return &Log{
			Base:       base,
			Resource:   env.Resource,
			StackTrace: env.StackTrace,
			Details:    env.Details,
		}, nil

	case KindHealthStatusChanged:
		if len(env.NewStatus) == 0 {
			return nil, &DecodeError{Kind: string(env.Kind), Err: ErrMalformedFrame, Cause: errors.New("missing newStatus")}
		}
		n := &HealthStatusChanged{Base: base, Current: health.Decode(env.StatusName, env.NewStatus)}
		if len(env.PreviousStatus) > 0 && string(env.PreviousStatus) != "null" {
			n.Previous = health.Decode(env.StatusName, env.PreviousStatus)
		}
		if !levelSet {
			n.level = statusLevel(n.Current)
		}
		if n.message == "" {
			n.message = n.Current.Summary()
		}
		return n, nil

	case KindResourceEvent:
		n := &ResourceEvent{
			Base:           base,
			Resource:       env.Resource,
			Source:         env.Source,
			Category:       env.Category,
			SequenceNumber: env.SequenceNumber,
			UserData:       env.UserData,
		}
		if n.message == "" {
			n.message = fmt.Sprintf("%s event #%d from %s", n.Resource, n.SequenceNumber, n.Source)
		}
		return n, nil

	case KindScalingHappened:
		n := &ScalingHappened{
			Base:              base,
			GroupName:         env.GroupName,
			Action:            env.Action,
			CastingVoteWeight: env.CastingVoteWeight,
			Evaluation:        env.Evaluation,
		}
		if n.message == "" {
			n.message = fmt.Sprintf("%s: %s (vote weight %.2f)", n.GroupName, n.Action, n.CastingVoteWeight)
		}
		return n, nil

	case KindTransportError:
		base.level = LevelError
		return &TransportError{Base: base, Cause: env.Cause, Frame: env.Frame}, nil

	default:
		return nil, &DecodeError{Kind: string(env.Kind), Err: ErrUnknownKind}
	}
}
