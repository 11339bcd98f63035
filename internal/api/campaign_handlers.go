package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/audience-engine/internal/service/campaign"
	"github.com/ignite/audience-engine/internal/service/segment"
)

// ListCampaigns returns all campaigns with their membership counts.
//
//	GET /api/campaigns
func (h *Handlers) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	all, err := h.campaigns.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list campaigns")
		return
	}
	respondJSON(w, http.StatusOK, all)
}

// GetCampaign returns one campaign.
//
//	GET /api/campaigns/{id}
func (h *Handlers) GetCampaign(w http.ResponseWriter, r *http.Request) {
	c, err := h.campaigns.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, campaign.ErrNotFound) {
		respondError(w, http.StatusNotFound, "campaign not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load campaign")
		return
	}
	respondJSON(w, http.StatusOK, c)
}

// CreateCampaign persists a new campaign in inactive state.
//
//	POST /api/campaigns
func (h *Handlers) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var input campaign.CreateInput
	if !decodeBody(w, r, &input) {
		return
	}

	c, err := h.campaigns.Create(r.Context(), input)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

type campaignUpdateRequest struct {
	Name      *string `json:"name"`
	SegmentID *string `json:"segment_id"`
	FlowID    *string `json:"flow_id"`
	IsActive  *bool   `json:"is_active"`
}

// UpdateCampaign applies a partial update. Activating an inactive campaign
// enrolls its segment as a side effect and the response reports the
// enrollment.
//
//	PUT /api/campaigns/{id}
func (h *Handlers) UpdateCampaign(w http.ResponseWriter, r *http.Request) {
	var req campaignUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	c, report, err := h.campaigns.Update(r.Context(), chi.URLParam(r, "id"), campaign.UpdateFields{
		Name:      req.Name,
		SegmentID: req.SegmentID,
		FlowID:    req.FlowID,
		IsActive:  req.IsActive,
	})
	if errors.Is(err, campaign.ErrNotFound) {
		respondError(w, http.StatusNotFound, "campaign not found")
		return
	}
	if errors.Is(err, campaign.ErrNoSegment) || errors.Is(err, segment.ErrNotFound) {
		respondError(w, http.StatusConflict, "campaign has no usable segment")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update campaign")
		return
	}

	resp := map[string]interface{}{"campaign": c}
	if report != nil {
		resp["enrolled_count"] = report.EnrolledCount
		resp["message"] = fmt.Sprintf("Campaign activated. %d customers enrolled.", report.EnrolledCount)
	}
	respondJSON(w, http.StatusOK, resp)
}

// DeleteCampaign removes a campaign.
//
//	DELETE /api/campaigns/{id}
func (h *Handlers) DeleteCampaign(w http.ResponseWriter, r *http.Request) {
	err := h.campaigns.Delete(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, campaign.ErrNotFound) {
		respondError(w, http.StatusNotFound, "campaign not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete campaign")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// EnrollCampaign runs one enrollment pass for the campaign. Safe to call
// repeatedly; membership only grows.
//
//	POST /api/campaigns/{id}/enroll
func (h *Handlers) EnrollCampaign(w http.ResponseWriter, r *http.Request) {
	report, err := h.campaigns.Enroll(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, campaign.ErrNotFound) {
		respondError(w, http.StatusNotFound, "campaign not found")
		return
	}
	if errors.Is(err, campaign.ErrNoSegment) || errors.Is(err, segment.ErrNotFound) {
		respondError(w, http.StatusConflict, "campaign has no usable segment")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "enrollment failed")
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// GetEnrolledCustomers returns the full records of the campaign's members.
//
//	GET /api/campaigns/{id}/enrolled_customers
func (h *Handlers) GetEnrolledCustomers(w http.ResponseWriter, r *http.Request) {
	members, err := h.campaigns.EnrolledCustomers(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, campaign.ErrNotFound) {
		respondError(w, http.StatusNotFound, "campaign not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load enrolled customers")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":     len(members),
		"customers": members,
	})
}
