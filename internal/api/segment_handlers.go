package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/audience-engine/internal/domain"
	"github.com/ignite/audience-engine/internal/service/segment"
)

// ListSegments returns all segment definitions.
//
//	GET /api/segments
func (h *Handlers) ListSegments(w http.ResponseWriter, r *http.Request) {
	all, err := h.segments.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list segments")
		return
	}
	respondJSON(w, http.StatusOK, all)
}

// GetSegment returns one segment definition.
//
//	GET /api/segments/{id}
func (h *Handlers) GetSegment(w http.ResponseWriter, r *http.Request) {
	s, err := h.segments.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, segment.ErrNotFound) {
		respondError(w, http.StatusNotFound, "segment not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load segment")
		return
	}
	respondJSON(w, http.StatusOK, s)
}

// CreateSegment persists a new segment definition.
//
//	POST /api/segments
func (h *Handlers) CreateSegment(w http.ResponseWriter, r *http.Request) {
	var input segment.CreateInput
	if !decodeBody(w, r, &input) {
		return
	}

	s, err := h.segments.Create(r.Context(), input)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, s)
}

type segmentUpdateRequest struct {
	Name        *string             `json:"name"`
	Description *string             `json:"description"`
	Conditions  *[]domain.Condition `json:"conditions"`
}

// UpdateSegment applies a partial update to a segment definition.
//
//	PUT /api/segments/{id}
func (h *Handlers) UpdateSegment(w http.ResponseWriter, r *http.Request) {
	var req segmentUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	err := h.segments.Update(r.Context(), chi.URLParam(r, "id"), segment.UpdateFields{
		Name:        req.Name,
		Description: req.Description,
		Conditions:  req.Conditions,
	})
	if errors.Is(err, segment.ErrNotFound) {
		respondError(w, http.StatusNotFound, "segment not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update segment")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// DeleteSegment removes a segment definition.
//
//	DELETE /api/segments/{id}
func (h *Handlers) DeleteSegment(w http.ResponseWriter, r *http.Request) {
	err := h.segments.Delete(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, segment.ErrNotFound) {
		respondError(w, http.StatusNotFound, "segment not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete segment")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// GetSegmentCustomers evaluates the segment and returns the full matching
// set. Evaluation always runs against live customer data.
//
//	GET /api/segments/{id}/customers
func (h *Handlers) GetSegmentCustomers(w http.ResponseWriter, r *http.Request) {
	matched, err := h.segments.Customers(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, segment.ErrNotFound) {
		respondError(w, http.StatusNotFound, "segment not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to evaluate segment")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":     len(matched),
		"customers": matched,
	})
}

// PreviewSegment returns the match count with a small sample.
//
//	GET /api/segments/{id}/preview?limit=5
func (h *Handlers) PreviewSegment(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	preview, err := h.segments.Preview(r.Context(), chi.URLParam(r, "id"), limit)
	if errors.Is(err, segment.ErrNotFound) {
		respondError(w, http.StatusNotFound, "segment not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to evaluate segment")
		return
	}
	respondJSON(w, http.StatusOK, preview)
}

// ExportSegment evaluates the segment and uploads its members as CSV.
//
//	POST /api/segments/{id}/export
func (h *Handlers) ExportSegment(w http.ResponseWriter, r *http.Request) {
	if h.exporter == nil {
		respondError(w, http.StatusServiceUnavailable, "export is not configured")
		return
	}

	s, err := h.segments.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, segment.ErrNotFound) {
		respondError(w, http.StatusNotFound, "segment not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load segment")
		return
	}

	res, err := h.exporter.ExportSegment(r.Context(), s)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "export failed")
		return
	}
	respondJSON(w, http.StatusOK, res)
}
