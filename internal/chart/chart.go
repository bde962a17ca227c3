// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

package chart

import (
	"fmt"
	"sync"
	"time"
)

// Chart is a named definition of which metric data to show and how much of
// it to keep. A chart's identity is its name; its retained history is safe
// for concurrent use.
type Chart interface {
	Name() string
	Group() string
	Kind() Kind
	Preferences() Preferences
	// Snapshots returns the retained history, oldest first.
	Snapshots() []Data
	// Accepts reports whether d has the shape this chart retains.
	Accepts(d Data) bool
	// Retain merges data into the history under the chart's retention
	// policy. If any datum is not accepted nothing is retained and the
	// error matches ErrIncompatibleData.
	Retain(data ...Data) error
	// Document returns the persisted form.
	Document() Document
}

type base struct {
	name      string
	group     string
	kind      Kind
	prefs     Preferences
	interval  int
	retention Retention

	// Shared by copies of base made during construction.
	hist *history
}

type history struct {
	mu   sync.Mutex
	data []Data
}

func (b *base) Name() string             { return b.name }
func (b *base) Group() string            { return b.group }
func (b *base) Kind() Kind               { return b.kind }
func (b *base) Preferences() Preferences { return b.prefs.Clone() }

func (b *base) Accepts(d Data) bool { return d != nil && accepts(b.kind, d) }

func (b *base) Snapshots() []Data {
	b.hist.mu.Lock()
	defer b.hist.mu.Unlock()
	return append([]Data(nil), b.hist.data...)
}

func (b *base) Retain(data ...Data) error {
	for _, d := range data {
		if !b.Accepts(d) {
			return fmt.Errorf("%w: %T for %s chart %q", ErrIncompatibleData, d, b.kind, b.name)
		}
	}

	b.hist.mu.Lock()
	defer b.hist.mu.Unlock()
	b.hist.data = b.retention.Apply(b.hist.data, data)
	return nil
}

func (b *base) document() Document {
	return Document{
		Type:        b.kind,
		Name:        b.name,
		Group:       b.group,
		Preferences: b.prefs.Clone(),
		Interval:    b.interval,
	}
}

type attributeChart struct {
	base
	Resources []string
	Attribute string
}

func (c *attributeChart) Document() Document {
	doc := c.document()
	doc.Resources = append([]string(nil), c.Resources...)
	doc.Attribute = c.Attribute
	return doc
}

type groupChart struct {
	base
	ResourceGroup string
}

func (c *groupChart) Document() Document {
	doc := c.document()
	doc.ResourceGroup = c.ResourceGroup
	return doc
}

// VerticalBar plots the latest attribute value per resource as vertical bars.
type VerticalBar struct{ attributeChart }

// HorizontalBar plots the latest attribute value per resource as horizontal bars.
type HorizontalBar struct{ attributeChart }

// Pie plots the latest attribute value per resource as pie slices.
type Pie struct{ attributeChart }

// Line plots attribute values over a rolling time window.
type Line struct{ attributeChart }

// Panel shows the latest attribute value per resource as text.
type Panel struct{ attributeChart }

// HealthStatusTree shows the latest health status of each node.
type HealthStatusTree struct {
	base
	Resources []string
}

func (c *HealthStatusTree) Document() Document {
	doc := c.document()
	doc.Resources = append([]string(nil), c.Resources...)
	return doc
}

// ResourceCountChart shows the current size of a resource group.
type ResourceCountChart struct{ groupChart }

// ScaleIn plots scale-in rule evaluations over a rolling time window.
type ScaleIn struct{ groupChart }

// ScaleOut plots scale-out rule evaluations over a rolling time window.
type ScaleOut struct{ groupChart }

// Voting shows the latest scaling vote of a resource group.
type Voting struct{ groupChart }

// FromDocument builds a chart from its document. It is used both for
// charts created by a user and for charts read back from storage.
func FromDocument(doc Document) (Chart, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	b := base{
		name:      doc.Name,
		group:     doc.Group,
		kind:      doc.Type,
		prefs:     doc.Preferences.Clone(),
		interval:  doc.Interval,
		retention: RetentionFor(doc.Type, doc.Preferences),
		hist:      &history{},
	}
	if _, ok := b.retention.(TimeWindow); ok && doc.Interval > 0 {
		b.retention = TimeWindow{Window: time.Duration(doc.Interval) * time.Minute}
	}

	attr := attributeChart{
		base:      b,
		Resources: append([]string(nil), doc.Resources...),
		Attribute: doc.Attribute,
	}
	grp := groupChart{base: b, ResourceGroup: doc.ResourceGroup}

	switch doc.Type {
	case KindVerticalBar:
		return &VerticalBar{attr}, nil
	case KindHorizontalBar:
		return &HorizontalBar{attr}, nil
	case KindPie:
		return &Pie{attr}, nil
	case KindLine:
		return &Line{attr}, nil
	case KindPanel:
		return &Panel{attr}, nil
	case KindHealthStatusTree:
		return &HealthStatusTree{base: b, Resources: attr.Resources}, nil
	case KindResourceCount:
		return &ResourceCountChart{grp}, nil
	case KindScaleIn:
		return &ScaleIn{grp}, nil
	case KindScaleOut:
		return &ScaleOut{grp}, nil
	case KindVoting:
		return &Voting{grp}, nil
	}
	return nil, fmt.Errorf("%w: %w %q", ErrInvalidDocument, ErrUnknownKind, doc.Type)
}
