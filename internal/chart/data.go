// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

package chart

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/vigil/internal/health"
)

// Data is one decoded snapshot datum. The concrete type depends on the kind
// of chart that requested it.
type Data interface {
	// Timestamp is the server's sample time, or the receive time when the
	// server sent none.
	Timestamp() time.Time
	// SeriesKey identifies the series the datum belongs to, for retention
	// policies that keep one value per series.
	SeriesKey() string
	// Stamp sets the timestamp if it is still zero.
	Stamp(t time.Time)
	sealed()
}

type point struct {
	At time.Time
}

func (p *point) Timestamp() time.Time { return p.At }

func (p *point) Stamp(t time.Time) {
	if p.At.IsZero() {
		p.At = t.UTC()
	}
}

func (*point) sealed() {}

func (p *point) wireTime() string {
	if p.At.IsZero() {
		return ""
	}
	return p.At.Format(time.RFC3339Nano)
}

// AttributeValue is the value of one attribute on one resource. Bar, pie,
// line and panel charts accept it.
type AttributeValue struct {
	point
	Resource  string
	Attribute string
	Value     float64
}

func (d *AttributeValue) SeriesKey() string { return d.Resource }

type attributeValueWire struct {
	Resource  string          `json:"resourceName"`
	Attribute string          `json:"attributeName,omitempty"`
	Value     json.RawMessage `json:"value"`
	Timestamp json.RawMessage `json:"timeStamp,omitempty"`
}

func (d *AttributeValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Resource  string  `json:"resourceName"`
		Attribute string  `json:"attributeName,omitempty"`
		Value     float64 `json:"value"`
		Timestamp string  `json:"timeStamp,omitempty"`
	}{d.Resource, d.Attribute, d.Value, d.wireTime()})
}

func decodeAttributeValue(raw []byte) (Data, error) {
	var w attributeValueWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, err
	}
	if w.Resource == "" {
		return nil, errors.New("missing resourceName")
	}
	v, err := parseNumber(w.Value)
	if err != nil {
		return nil, fmt.Errorf("value: %w", err)
	}
	return &AttributeValue{
		point:     point{At: health.ParseTime(w.Timestamp)},
		Resource:  w.Resource,
		Attribute: w.Attribute,
		Value:     v,
	}, nil
}

// HealthStatusSnapshot is the current status of one node of a health tree.
type HealthStatusSnapshot struct {
	point
	Node   string
	Status health.Status
}

func (d *HealthStatusSnapshot) SeriesKey() string { return d.Node }

func (d *HealthStatusSnapshot) MarshalJSON() ([]byte, error) {
	status, err := health.Marshal(d.Status)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		Node      string          `json:"nodeName"`
		Status    json.RawMessage `json:"status"`
		Timestamp string          `json:"timeStamp,omitempty"`
	}{d.Node, status, d.wireTime()})
}

func decodeHealthStatusSnapshot(raw []byte) (Data, error) {
	var w struct {
		Node      string          `json:"nodeName"`
		Status    json.RawMessage `json:"status"`
		Timestamp json.RawMessage `json:"timeStamp"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, err
	}
	if len(w.Status) == 0 || string(w.Status) == "null" {
		return nil, errors.New("missing status")
	}
	status := health.Decode("", w.Status)
	node := w.Node
	if node == "" {
		node = status.ResourceName()
	}
	if node == "" {
		return nil, errors.New("missing nodeName")
	}
	return &HealthStatusSnapshot{
		point:  point{At: health.ParseTime(w.Timestamp)},
		Node:   node,
		Status: status,
	}, nil
}

// ResourceCount is the number of resources in a group.
type ResourceCount struct {
	point
	Group string
	Count int
}

func (d *ResourceCount) SeriesKey() string { return d.Group }

func (d *ResourceCount) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Group     string `json:"resourceGroup,omitempty"`
		Count     int    `json:"count"`
		Timestamp string `json:"timeStamp,omitempty"`
	}{d.Group, d.Count, d.wireTime()})
}

func decodeResourceCount(raw []byte) (Data, error) {
	var w struct {
		Group     string          `json:"resourceGroup"`
		Count     *int            `json:"count"`
		Timestamp json.RawMessage `json:"timeStamp"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, err
	}
	if w.Count == nil {
		return nil, errors.New("missing count")
	}
	if *w.Count < 0 {
		return nil, fmt.Errorf("negative count %d", *w.Count)
	}
	return &ResourceCount{
		point: point{At: health.ParseTime(w.Timestamp)},
		Group: w.Group,
		Count: *w.Count,
	}, nil
}

// ScalingMetric is one evaluation of a scaling rule against its threshold.
// Scale-in and scale-out charts accept it.
type ScalingMetric struct {
	point
	Group     string
	Value     float64
	Threshold float64
}

func (d *ScalingMetric) SeriesKey() string { return d.Group }

func (d *ScalingMetric) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Group     string  `json:"groupName,omitempty"`
		Value     float64 `json:"value"`
		Threshold float64 `json:"threshold"`
		Timestamp string  `json:"timeStamp,omitempty"`
	}{d.Group, d.Value, d.Threshold, d.wireTime()})
}

func decodeScalingMetric(raw []byte) (Data, error) {
	var w struct {
		Group     string          `json:"groupName"`
		Value     json.RawMessage `json:"value"`
		Threshold json.RawMessage `json:"threshold"`
		Timestamp json.RawMessage `json:"timeStamp"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, err
	}
	v, err := parseNumber(w.Value)
	if err != nil {
		return nil, fmt.Errorf("value: %w", err)
	}
	var threshold float64
	if len(w.Threshold) > 0 {
		if threshold, err = parseNumber(w.Threshold); err != nil {
			return nil, fmt.Errorf("threshold: %w", err)
		}
	}
	return &ScalingMetric{
		point:     point{At: health.ParseTime(w.Timestamp)},
		Group:     w.Group,
		Value:     v,
		Threshold: threshold,
	}, nil
}

// VotingResult is the outcome of one scaling vote: the weight cast per
// voter and the decision reached.
type VotingResult struct {
	point
	Group    string
	Votes    map[string]float64
	Decision string
}

func (d *VotingResult) SeriesKey() string { return d.Group }

func (d *VotingResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Group     string             `json:"groupName,omitempty"`
		Votes     map[string]float64 `json:"votes"`
		Decision  string             `json:"decision,omitempty"`
		Timestamp string             `json:"timeStamp,omitempty"`
	}{d.Group, d.Votes, d.Decision, d.wireTime()})
}

func decodeVotingResult(raw []byte) (Data, error) {
	var w struct {
		Group     string             `json:"groupName"`
		Votes     map[string]float64 `json:"votes"`
		Decision  string             `json:"decision"`
		Timestamp json.RawMessage    `json:"timeStamp"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, err
	}
	if w.Votes == nil {
		return nil, errors.New("missing votes")
	}
	return &VotingResult{
		point:    point{At: health.ParseTime(w.Timestamp)},
		Group:    w.Group,
		Votes:    w.Votes,
		Decision: w.Decision,
	}, nil
}

var dataDecoders = map[Kind]func([]byte) (Data, error){
	KindVerticalBar:      decodeAttributeValue,
	KindHorizontalBar:    decodeAttributeValue,
	KindPie:              decodeAttributeValue,
	KindLine:             decodeAttributeValue,
	KindPanel:            decodeAttributeValue,
	KindHealthStatusTree: decodeHealthStatusSnapshot,
	KindResourceCount:    decodeResourceCount,
	KindScaleIn:          decodeScalingMetric,
	KindScaleOut:         decodeScalingMetric,
	KindVoting:           decodeVotingResult,
}

// DecodeData interprets raw as the data shape of a chart of the given kind.
// The result depends only on its arguments. Errors are *DecodeError,
// matching ErrUnknownKind or ErrMalformedData.
func DecodeData(kind Kind, raw []byte) (Data, error) {
	decode, ok := dataDecoders[kind]
	if !ok {
		return nil, &DecodeError{Kind: kind, Err: ErrUnknownKind}
	}
	d, err := decode(raw)
	if err != nil {
		return nil, &DecodeError{Kind: kind, Err: ErrMalformedData, Cause: err}
	}
	return d, nil
}

// accepts reports whether a chart of kind k retains d.
func accepts(k Kind, d Data) bool {
	switch d.(type) {
	case *AttributeValue:
		return k.isAttribute()
	case *HealthStatusSnapshot:
		return k == KindHealthStatusTree
	case *ResourceCount:
		return k == KindResourceCount
	case *ScalingMetric:
		return k == KindScaleIn || k == KindScaleOut
	case *VotingResult:
		return k == KindVoting
	}
	return false
}

// parseNumber accepts a JSON number or a numeric string.
func parseNumber(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, errors.New("missing")
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("not a number: %s", raw)
	}
	return strconv.ParseFloat(s, 64)
}
