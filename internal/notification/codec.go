// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

package notification

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tomtom215/vigil/internal/health"
)

// Marshal encodes n in its persisted form, including id and timestamp.
func Marshal(n Notification) ([]byte, error) {
	ts, err := json.Marshal(n.Timestamp())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal timestamp: %w", err)
	}
	env := envelope{
		Kind:      n.Kind(),
		ID:        n.ID(),
		Level:     string(n.Level()),
		Timestamp: ts,
		Message:   n.Message(),
	}

	switch v := n.(type) {
	case *Log:
		env.Resource = v.Resource
		env.StackTrace = v.StackTrace
		env.Details = v.Details
	case *HealthStatusChanged:
		env.StatusName = v.Current.StatusName()
		cur, err := health.Marshal(v.Current)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal current status: %w", err)
		}
		env.NewStatus = cur
		if v.Previous != nil {
			prev, err := health.Marshal(v.Previous)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal previous status: %w", err)
			}
			env.PreviousStatus = prev
		}
	case *ResourceEvent:
		env.Resource = v.Resource
		env.Source = v.Source
		env.Category = v.Category
		env.SequenceNumber = v.SequenceNumber
		env.UserData = v.UserData
	case *ScalingHappened:
		env.GroupName = v.GroupName
		env.Action = v.Action
		env.CastingVoteWeight = v.CastingVoteWeight
		env.Evaluation = v.Evaluation
	case *TransportError:
		env.Cause = v.Cause
		env.Frame = v.Frame
	default:
		return nil, fmt.Errorf("cannot marshal notification %T", n)
	}

	return json.Marshal(&env)
}

// Restore decodes the persisted form written by Marshal. Identity and
// timestamp are taken from the data, never regenerated.
func Restore(data []byte) (Notification, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &DecodeError{Err: ErrMalformedFrame, Cause: err}
	}
	if env.ID == "" {
		return nil, &DecodeError{Kind: string(env.Kind), Err: ErrMalformedFrame, Cause: errors.New("missing id")}
	}

	base := Base{
		id:        env.ID,
		level:     ParseLevel(env.Level),
		timestamp: health.ParseTime(env.Timestamp),
		message:   env.Message,
	}
	return build(&env, base)
}
