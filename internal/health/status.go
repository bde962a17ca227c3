// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

// Package health models the health status of a monitored resource.
//
// Status kinds are owned by the monitored system and evolve faster than the
// console ships, so decoding is total: a kind this package does not know
// becomes a GenericMalfunction that keeps every unconsumed field and can be
// written back unchanged.
package health

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// Kind is the "@type" discriminator of a health status fragment.
type Kind string

const (
	KindOk                    Kind = "ok"
	KindResourceUnavailable   Kind = "resourceUnavailable"
	KindConnectionProblem     Kind = "connectionProblem"
	KindInvalidAttributeValue Kind = "invalidAttributeValue"
	KindMalfunction           Kind = "malfunction"
)

// Status is one of *Ok, *ResourceUnavailable, *ConnectionProblem,
// *InvalidAttributeValue or *GenericMalfunction.
type Status interface {
	Kind() Kind
	StatusName() string
	ResourceName() string
	IsCritical() bool
	ServerTimestamp() time.Time
	ServerDetails() string

	// Summary is a one-line human description used as notification text.
	Summary() string

	sealed()
}

// Common holds the attributes shared by every variant.
type Common struct {
	Name      string
	Resource  string
	Details   string
	Timestamp time.Time
	Critical  bool
}

func (c *Common) StatusName() string         { return c.Name }
func (c *Common) ResourceName() string       { return c.Resource }
func (c *Common) IsCritical() bool           { return c.Critical }
func (c *Common) ServerTimestamp() time.Time { return c.Timestamp }
func (c *Common) ServerDetails() string      { return c.Details }
func (c *Common) sealed()                    {}

// Ok reports a healthy resource. It is never critical.
type Ok struct {
	Common
}

func (*Ok) Kind() Kind { return KindOk }

// IsCritical is always false for Ok, whatever the wire said.
func (*Ok) IsCritical() bool { return false }

func (s *Ok) Summary() string {
	return fmt.Sprintf("%s: %s is ok", s.Resource, s.Name)
}

// ResourceUnavailable reports a resource that could not be reached.
type ResourceUnavailable struct {
	Common
	Error string
}

func (*ResourceUnavailable) Kind() Kind { return KindResourceUnavailable }

func (s *ResourceUnavailable) Summary() string {
	return withCause(fmt.Sprintf("%s: %s unavailable", s.Resource, s.Name), s.Error)
}

// ConnectionProblem reports a failing connection to a resource.
type ConnectionProblem struct {
	Common
	Error string
}

func (*ConnectionProblem) Kind() Kind { return KindConnectionProblem }

func (s *ConnectionProblem) Summary() string {
	return withCause(fmt.Sprintf("%s: %s connection problem", s.Resource, s.Name), s.Error)
}

// InvalidAttributeValue reports an attribute whose value failed a check.
// Value holds the wire value as text; non-string values keep their JSON form.
type InvalidAttributeValue struct {
	Common
	Attribute string
	Value     string
}

func (*InvalidAttributeValue) Kind() Kind { return KindInvalidAttributeValue }

func (s *InvalidAttributeValue) Summary() string {
	return fmt.Sprintf("%s: %s invalid value %s=%s", s.Resource, s.Name, s.Attribute, s.Value)
}

// GenericMalfunction is the catch-all variant. Type keeps the original
// "@type" (empty when the fragment had none) and Fields keeps every field
// the decoder did not consume.
type GenericMalfunction struct {
	Common
	Type   string
	Fields map[string]json.RawMessage
}

func (*GenericMalfunction) Kind() Kind { return KindMalfunction }

func (s *GenericMalfunction) Summary() string {
	label := s.Type
	if label == "" {
		label = string(KindMalfunction)
	}
	return withCause(fmt.Sprintf("%s: %s %s", s.Resource, s.Name, label), s.Details)
}

func withCause(msg, cause string) string {
	if cause == "" {
		return msg
	}
	return msg + " (" + cause + ")"
}
