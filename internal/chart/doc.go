// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

/*
Package chart models dashboard charts and the snapshot data they retain.

Charts are built from a Document by FromDocument, whether the document came
from a user request or from the persisted dashboard. Each chart kind accepts
one Data shape and applies one retention policy:

	line, scaleIn, scaleOut               TimeWindow (interval minutes, default 15)
	verticalBar, horizontalBar, pie,
	panel, healthStatusTree               LatestPerKey
	resourceCount, voting                 LatestOnly

DecodeData interprets a raw snapshot fragment for a given chart kind. The
chart kinds are a closed set: an unknown kind is a DecodeError matching
ErrUnknownKind, never a silent default.

A Dashboard holds charts by unique name plus an ordered set of group names,
and encodes to {"groups": [...], "charts": [...]}.
*/
package chart
