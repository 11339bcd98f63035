package api

import (
	"encoding/json"
	"net/http"

	"github.com/ignite/audience-engine/internal/export"
	"github.com/ignite/audience-engine/internal/generator"
	"github.com/ignite/audience-engine/internal/service/campaign"
	"github.com/ignite/audience-engine/internal/service/customer"
	"github.com/ignite/audience-engine/internal/service/flow"
	"github.com/ignite/audience-engine/internal/service/segment"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	customers *customer.Service
	segments  *segment.Service
	campaigns *campaign.Service
	flows     *flow.Service
	generator *generator.Service
	exporter  *export.Exporter
}

// NewHandlers creates a new Handlers instance
func NewHandlers(customers *customer.Service, segments *segment.Service, campaigns *campaign.Service, flows *flow.Service, gen *generator.Service) *Handlers {
	return &Handlers{
		customers: customers,
		segments:  segments,
		campaigns: campaigns,
		flows:     flows,
		generator: gen,
	}
}

// SetExporter enables the segment export endpoint
func (h *Handlers) SetExporter(exporter *export.Exporter) {
	h.exporter = exporter
}

// Response helpers

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}
