package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/audience-engine/internal/domain"
	"github.com/ignite/audience-engine/internal/service/customer"
	"github.com/ignite/audience-engine/internal/service/flow"
)

// ListFlows returns all flows with their steps.
//
//	GET /api/flows
func (h *Handlers) ListFlows(w http.ResponseWriter, r *http.Request) {
	all, err := h.flows.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list flows")
		return
	}
	respondJSON(w, http.StatusOK, all)
}

// GetFlow returns one flow with its steps.
//
//	GET /api/flows/{id}
func (h *Handlers) GetFlow(w http.ResponseWriter, r *http.Request) {
	f, err := h.flows.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, flow.ErrNotFound) {
		respondError(w, http.StatusNotFound, "flow not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load flow")
		return
	}
	respondJSON(w, http.StatusOK, f)
}

// CreateFlow persists a flow and its steps.
//
//	POST /api/flows
func (h *Handlers) CreateFlow(w http.ResponseWriter, r *http.Request) {
	var input flow.CreateInput
	if !decodeBody(w, r, &input) {
		return
	}

	f, err := h.flows.Create(r.Context(), input)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, f)
}

type flowUpdateRequest struct {
	Name        *string            `json:"name"`
	Description *string            `json:"description"`
	IsActive    *bool              `json:"is_active"`
	Steps       *[]domain.FlowStep `json:"steps"`
}

// UpdateFlow applies a partial update. A steps list replaces the whole
// sequence.
//
//	PUT /api/flows/{id}
func (h *Handlers) UpdateFlow(w http.ResponseWriter, r *http.Request) {
	var req flowUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	err := h.flows.Update(r.Context(), chi.URLParam(r, "id"), flow.UpdateFields{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
		Steps:       req.Steps,
	})
	if errors.Is(err, flow.ErrNotFound) {
		respondError(w, http.StatusNotFound, "flow not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// DeleteFlow removes a flow and its steps.
//
//	DELETE /api/flows/{id}
func (h *Handlers) DeleteFlow(w http.ResponseWriter, r *http.Request) {
	err := h.flows.Delete(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, flow.ErrNotFound) {
		respondError(w, http.StatusNotFound, "flow not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete flow")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// RenderFlowStep renders one step's subject and content against a customer
// for preview.
//
//	GET /api/flows/{id}/steps/{step}/render?customer_id=...
func (h *Handlers) RenderFlowStep(w http.ResponseWriter, r *http.Request) {
	stepNumber, err := strconv.Atoi(chi.URLParam(r, "step"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "step must be an integer")
		return
	}
	customerID := r.URL.Query().Get("customer_id")
	if customerID == "" {
		respondError(w, http.StatusBadRequest, "customer_id is required")
		return
	}

	rendered, err := h.flows.RenderStep(r.Context(), chi.URLParam(r, "id"), stepNumber, customerID)
	switch {
	case errors.Is(err, flow.ErrNotFound):
		respondError(w, http.StatusNotFound, "flow not found")
	case errors.Is(err, flow.ErrStepNotFound):
		respondError(w, http.StatusNotFound, "step not found")
	case errors.Is(err, customer.ErrNotFound):
		respondError(w, http.StatusNotFound, "customer not found")
	case err != nil:
		respondError(w, http.StatusInternalServerError, "failed to render step")
	default:
		respondJSON(w, http.StatusOK, rendered)
	}
}
