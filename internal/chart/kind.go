// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

package chart

import (
	"strconv"
	"time"
)

// Kind is the chart discriminator, written as "@type" in chart documents.
type Kind string

const (
	KindVerticalBar      Kind = "verticalBar"
	KindHorizontalBar    Kind = "horizontalBar"
	KindPie              Kind = "pie"
	KindLine             Kind = "line"
	KindPanel            Kind = "panel"
	KindHealthStatusTree Kind = "healthStatusTree"
	KindResourceCount    Kind = "resourceCount"
	KindScaleIn          Kind = "scaleIn"
	KindScaleOut         Kind = "scaleOut"
	KindVoting           Kind = "voting"
)

// Kinds lists every chart kind in a stable order.
var Kinds = []Kind{
	KindVerticalBar, KindHorizontalBar, KindPie, KindLine, KindPanel,
	KindHealthStatusTree, KindResourceCount, KindScaleIn, KindScaleOut, KindVoting,
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	_, ok := dataDecoders[k]
	return ok
}

// isAttribute reports whether k plots one attribute across resources.
func (k Kind) isAttribute() bool {
	switch k {
	case KindVerticalBar, KindHorizontalBar, KindPie, KindLine, KindPanel:
		return true
	}
	return false
}

// DefaultInterval is the time-window length used when a chart sets none.
const DefaultInterval = 15 * time.Minute

// Preferences is the open layout/axis/display map of a chart.
type Preferences map[string]any

// Clone returns a shallow copy.
func (p Preferences) Clone() Preferences {
	if p == nil {
		return nil
	}
	out := make(Preferences, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Interval reads the "interval" preference as minutes. Numbers and numeric
// strings are accepted; anything else, or a non-positive value, yields def.
func (p Preferences) Interval(def time.Duration) time.Duration {
	var minutes float64
	switch v := p["interval"].(type) {
	case float64:
		minutes = v
	case int:
		minutes = float64(v)
	case int64:
		minutes = float64(v)
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return def
		}
		minutes = f
	default:
		return def
	}
	if minutes <= 0 {
		return def
	}
	return time.Duration(minutes * float64(time.Minute))
}
