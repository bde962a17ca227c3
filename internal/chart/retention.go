// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

package chart

import "time"

// Retention decides which data a chart keeps. Apply receives the retained
// history (oldest first) and newly received data in receive order, and
// returns the new history, oldest first. It must not modify history in place.
type Retention interface {
	Apply(history, incoming []Data) []Data
}

// TimeWindow keeps data whose timestamp lies within Window of the newest
// retained timestamp.
type TimeWindow struct {
	Window time.Duration
}

func (r TimeWindow) Apply(history, incoming []Data) []Data {
	all := make([]Data, 0, len(history)+len(incoming))
	all = append(all, history...)
	all = append(all, incoming...)
	if len(all) == 0 {
		return nil
	}

	newest := all[0].Timestamp()
	for _, d := range all[1:] {
		if d.Timestamp().After(newest) {
			newest = d.Timestamp()
		}
	}
	cutoff := newest.Add(-r.Window)

	kept := all[:0]
	for _, d := range all {
		if !d.Timestamp().Before(cutoff) {
			kept = append(kept, d)
		}
	}
	return kept
}

// LatestPerKey keeps the most recently received datum of each series. A
// replaced series moves to the end of the history.
type LatestPerKey struct{}

func (LatestPerKey) Apply(history, incoming []Data) []Data {
	if len(incoming) == 0 {
		return append([]Data(nil), history...)
	}

	last := make(map[string]int, len(incoming))
	for i, d := range incoming {
		last[d.SeriesKey()] = i
	}

	out := make([]Data, 0, len(history)+len(last))
	for _, d := range history {
		if _, ok := last[d.SeriesKey()]; !ok {
			out = append(out, d)
		}
	}
	for i, d := range incoming {
		if last[d.SeriesKey()] == i {
			out = append(out, d)
		}
	}
	return out
}

// LatestOnly keeps the single most recently received datum.
type LatestOnly struct{}

func (LatestOnly) Apply(history, incoming []Data) []Data {
	switch {
	case len(incoming) > 0:
		return []Data{incoming[len(incoming)-1]}
	case len(history) > 0:
		return []Data{history[len(history)-1]}
	default:
		return nil
	}
}

// RetentionFor returns the policy used by charts of kind k with the given
// preferences.
func RetentionFor(k Kind, prefs Preferences) Retention {
	switch k {
	case KindLine, KindScaleIn, KindScaleOut:
		return TimeWindow{Window: prefs.Interval(DefaultInterval)}
	case KindResourceCount, KindVoting:
		return LatestOnly{}
	default:
		return LatestPerKey{}
	}
}
