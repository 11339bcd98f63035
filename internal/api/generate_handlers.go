package api

import (
	"net/http"
	"strings"
)

type generateRequest struct {
	Prompt string `json:"prompt"`
}

// GenerateProposal turns a free-text marketing objective into a segment
// draft and campaign skeleton. The proposal is not persisted; callers
// create the segment and campaign explicitly if they accept it.
//
//	POST /api/generate
func (h *Handlers) GenerateProposal(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		respondError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	proposal, err := h.generator.Generate(r.Context(), req.Prompt)
	if err != nil {
		respondError(w, http.StatusBadGateway, "proposal generation failed")
		return
	}
	respondJSON(w, http.StatusOK, proposal)
}
