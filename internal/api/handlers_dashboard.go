// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/vigil/internal/chart"
	"github.com/tomtom215/vigil/internal/validation"
)

// Dashboard returns the current dashboard document.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	doc, err := h.dist.Document()
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, doc, start)
}

// ReloadDashboard fetches the dashboard document again. Existing chart
// subscriptions end and clients resubscribe on the dashboard message.
func (h *Handler) ReloadDashboard(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if err := h.dist.Load(r.Context()); err != nil {
		respondServiceError(w, r, err)
		return
	}
	doc, err := h.dist.Document()
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, doc, start)
}

// AddGroup registers an empty group.
func (h *Handler) AddGroup(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req GroupRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Invalid request body", nil)
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		respondServiceError(w, r, err)
		return
	}
	if err := h.dist.AddGroup(r.Context(), req.Name); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusCreated, map[string]string{"group": req.Name}, start)
}

// RemoveGroup removes a group together with its charts.
func (h *Handler) RemoveGroup(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	name := chi.URLParam(r, "name")
	if err := h.dist.RemoveGroup(r.Context(), name); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, map[string]string{"removed": name}, start)
}

// AddChart creates a chart from the posted document.
func (h *Handler) AddChart(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	c, ok := h.chartFromBody(w, r)
	if !ok {
		return
	}
	if err := h.dist.AddChart(r.Context(), c); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusCreated, c.Document(), start)
}

// ModifyChart replaces the named chart. The document's name must match the
// path.
func (h *Handler) ModifyChart(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	name := chi.URLParam(r, "name")
	c, ok := h.chartFromBody(w, r)
	if !ok {
		return
	}
	if c.Name() != name {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest,
			fmt.Sprintf("document name %q does not match %q", c.Name(), name), nil)
		return
	}
	if err := h.dist.ModifyChart(r.Context(), c); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, c.Document(), start)
}

// RemoveChart deletes the named chart.
func (h *Handler) RemoveChart(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	name := chi.URLParam(r, "name")
	if err := h.dist.RemoveChart(r.Context(), name); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, map[string]string{"removed": name}, start)
}

// ResetChart asks the management system to reset the chart's computation.
func (h *Handler) ResetChart(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	c, err := h.dist.Chart(chi.URLParam(r, "name"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	if err := h.dist.ResetChart(r.Context(), c); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, map[string]string{"reset": c.Name()}, start)
}

// ChartSnapshots returns the chart's retained history.
func (h *Handler) ChartSnapshots(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	c, err := h.dist.Chart(chi.URLParam(r, "name"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	snapshots := c.Snapshots()
	respondList(w, r, snapshots, len(snapshots), start)
}

func (h *Handler) chartFromBody(w http.ResponseWriter, r *http.Request) (chart.Chart, bool) {
	var doc chart.Document
	if err := decodeBody(w, r, &doc); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Invalid chart document", nil)
		return nil, false
	}
	c, err := chart.FromDocument(doc)
	if err != nil {
		respondServiceError(w, r, err)
		return nil, false
	}
	return c, true
}
