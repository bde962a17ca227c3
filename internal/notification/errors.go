// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

package notification

import (
	"errors"
	"fmt"
)

// ErrUnknownKind is matched by a DecodeError whose frame kind is not part of the protocol.
var ErrUnknownKind = errors.New("unknown notification kind")

// ErrMalformedFrame is matched by a DecodeError whose frame could not be parsed.
var ErrMalformedFrame = errors.New("malformed notification frame")

// DecodeError describes a frame that could not become a Notification.
// It matches ErrUnknownKind or ErrMalformedFrame with errors.Is.
type DecodeError struct {
	Kind  string
	Err   error
	Cause error
}

func (e *DecodeError) Error() string {
	msg := e.Err.Error()
	if e.Kind != "" {
		msg = fmt.Sprintf("%s %q", msg, e.Kind)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *DecodeError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}
