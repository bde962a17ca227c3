// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

package chart

import (
	"fmt"

	"github.com/tomtom215/vigil/internal/validation"
)

// Document is the persisted and transmitted form of a chart. It is also
// the chart descriptor sent to the snapshot compute endpoint.
type Document struct {
	Type          Kind        `json:"@type" validate:"required,oneof=verticalBar horizontalBar pie line panel healthStatusTree resourceCount scaleIn scaleOut voting"`
	Name          string      `json:"name" validate:"required,identifier,max=128"`
	Group         string      `json:"group" validate:"required,identifier,max=128"`
	Preferences   Preferences `json:"preferences,omitempty"`
	Resources     []string    `json:"resources,omitempty" validate:"max=256,dive,required,max=256"`
	Attribute     string      `json:"attribute,omitempty" validate:"max=256"`
	ResourceGroup string      `json:"resourceGroup,omitempty" validate:"max=256"`
	// Interval is the retention window in minutes for time-window charts.
	// Zero defers to the "interval" preference.
	Interval int `json:"interval,omitempty" validate:"gte=0,lte=10080"`
}

// Validate checks field constraints and the fields each kind requires.
// Errors match ErrInvalidDocument.
func (d *Document) Validate() error {
	if err := validation.ValidateStruct(d); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	switch {
	case d.Type.isAttribute() && d.Attribute == "":
		return fmt.Errorf("%w: %s chart %q needs an attribute", ErrInvalidDocument, d.Type, d.Name)
	case needsResourceGroup(d.Type) && d.ResourceGroup == "":
		return fmt.Errorf("%w: %s chart %q needs a resourceGroup", ErrInvalidDocument, d.Type, d.Name)
	}
	return nil
}

func needsResourceGroup(k Kind) bool {
	switch k {
	case KindResourceCount, KindScaleIn, KindScaleOut, KindVoting:
		return true
	}
	return false
}
