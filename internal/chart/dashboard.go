// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

package chart

import (
	"fmt"
	"slices"

	"github.com/goccy/go-json"
)

// DashboardDocument is the persisted form of a Dashboard.
type DashboardDocument struct {
	Groups []string   `json:"groups"`
	Charts []Document `json:"charts"`
}

// Dashboard is the set of charts and the groups they belong to. Group names
// are unique and ordered; chart names are unique and keep insertion order.
//
// A Dashboard is not safe for concurrent use; its owner serializes access.
type Dashboard struct {
	groups []string
	order  []string
	charts map[string]Chart
}

// NewDashboard returns an empty dashboard.
func NewDashboard() *Dashboard {
	return &Dashboard{charts: make(map[string]Chart)}
}

// AddGroup registers a group. It reports false if the group already exists.
func (d *Dashboard) AddGroup(name string) bool {
	if slices.Contains(d.groups, name) {
		return false
	}
	d.groups = append(d.groups, name)
	return true
}

// RemoveGroup removes a group and every chart in it. It returns the removed
// charts.
func (d *Dashboard) RemoveGroup(name string) []Chart {
	i := slices.Index(d.groups, name)
	if i < 0 {
		return nil
	}
	d.groups = slices.Delete(d.groups, i, i+1)

	var removed []Chart
	for _, n := range slices.Clone(d.order) {
		if c := d.charts[n]; c.Group() == name {
			removed = append(removed, c)
			d.drop(n)
		}
	}
	return removed
}

// Add inserts c, registering its group if needed.
func (d *Dashboard) Add(c Chart) error {
	if _, ok := d.charts[c.Name()]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateChart, c.Name())
	}
	d.AddGroup(c.Group())
	d.charts[c.Name()] = c
	d.order = append(d.order, c.Name())
	return nil
}

// Replace swaps the chart with c's name for c, keeping its position, and
// returns the previous chart.
func (d *Dashboard) Replace(c Chart) (Chart, error) {
	prev, ok := d.charts[c.Name()]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownChart, c.Name())
	}
	d.AddGroup(c.Group())
	d.charts[c.Name()] = c
	return prev, nil
}

// Remove deletes the named chart and returns it.
func (d *Dashboard) Remove(name string) (Chart, error) {
	c, ok := d.charts[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownChart, name)
	}
	d.drop(name)
	return c, nil
}

func (d *Dashboard) drop(name string) {
	delete(d.charts, name)
	if i := slices.Index(d.order, name); i >= 0 {
		d.order = slices.Delete(d.order, i, i+1)
	}
}

// Chart returns the named chart.
func (d *Dashboard) Chart(name string) (Chart, bool) {
	c, ok := d.charts[name]
	return c, ok
}

// Charts returns the charts in insertion order.
func (d *Dashboard) Charts() []Chart {
	out := make([]Chart, len(d.order))
	for i, n := range d.order {
		out[i] = d.charts[n]
	}
	return out
}

// Groups returns the group names in order.
func (d *Dashboard) Groups() []string {
	return slices.Clone(d.groups)
}

// Len returns the number of charts.
func (d *Dashboard) Len() int { return len(d.order) }

// Document returns the persisted form.
func (d *Dashboard) Document() DashboardDocument {
	doc := DashboardDocument{
		Groups: d.Groups(),
		Charts: make([]Document, 0, len(d.order)),
	}
	if doc.Groups == nil {
		doc.Groups = []string{}
	}
	for _, c := range d.Charts() {
		doc.Charts = append(doc.Charts, c.Document())
	}
	return doc
}

// MarshalDocument encodes the dashboard as
// {"groups": [...], "charts": [...]}.
func (d *Dashboard) MarshalDocument() ([]byte, error) {
	return json.Marshal(d.Document())
}

// FromDashboardDocument builds a dashboard from its document. Any invalid or
// duplicate chart fails the whole document.
func FromDashboardDocument(doc DashboardDocument) (*Dashboard, error) {
	d := NewDashboard()
	for _, g := range doc.Groups {
		d.AddGroup(g)
	}
	for i, cd := range doc.Charts {
		c, err := FromDocument(cd)
		if err != nil {
			return nil, fmt.Errorf("chart %d: %w", i, err)
		}
		if err := d.Add(c); err != nil {
			return nil, fmt.Errorf("%w: chart %d: %w", ErrInvalidDocument, i, err)
		}
	}
	return d, nil
}

// DecodeDocument decodes a dashboard document. An empty body decodes to an
// empty dashboard.
func DecodeDocument(data []byte) (*Dashboard, error) {
	if len(data) == 0 || string(data) == "null" {
		return NewDashboard(), nil
	}
	var doc DashboardDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return FromDashboardDocument(doc)
}
