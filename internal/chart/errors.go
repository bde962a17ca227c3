// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

package chart

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownKind is matched by a DecodeError for a chart kind outside the closed set.
	ErrUnknownKind = errors.New("unknown chart kind")

	// ErrMalformedData is matched by a DecodeError for a fragment the kind's decoder rejected.
	ErrMalformedData = errors.New("malformed chart data")

	// ErrIncompatibleData is returned by Retain for a datum the chart does not accept.
	ErrIncompatibleData = errors.New("chart data incompatible with chart kind")

	// ErrInvalidDocument is matched by errors from FromDocument and DecodeDocument.
	ErrInvalidDocument = errors.New("invalid chart document")

	// ErrDuplicateChart is returned when adding a chart whose name is taken.
	ErrDuplicateChart = errors.New("duplicate chart name")

	// ErrUnknownChart is returned when a named chart does not exist.
	ErrUnknownChart = errors.New("unknown chart")
)

// DecodeError describes a fragment that could not become chart data.
type DecodeError struct {
	Kind  Kind
	Err   error
	Cause error
}

func (e *DecodeError) Error() string {
	msg := fmt.Sprintf("%s %q", e.Err, e.Kind)
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
