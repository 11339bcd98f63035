package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/audience-engine/internal/service/customer"
)

// ListCustomers returns all customers.
//
//	GET /api/customers
func (h *Handlers) ListCustomers(w http.ResponseWriter, r *http.Request) {
	all, err := h.customers.All(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list customers")
		return
	}
	respondJSON(w, http.StatusOK, all)
}

// GetCustomer returns one customer by ID.
//
//	GET /api/customers/{id}
func (h *Handlers) GetCustomer(w http.ResponseWriter, r *http.Request) {
	c, err := h.customers.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, customer.ErrNotFound) {
		respondError(w, http.StatusNotFound, "customer not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load customer")
		return
	}
	respondJSON(w, http.StatusOK, c)
}

// CreateCustomer inserts a new customer.
//
//	POST /api/customers
func (h *Handlers) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var input customer.CreateInput
	if !decodeBody(w, r, &input) {
		return
	}

	c, err := h.customers.Create(r.Context(), input)
	if errors.Is(err, customer.ErrDuplicateEmail) {
		respondError(w, http.StatusConflict, "a customer with this email already exists")
		return
	}
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

// customerUpdateRequest mirrors customer.UpdateFields with JSON tags.
// Absent fields stay nil and are not applied.
type customerUpdateRequest struct {
	FirstName         *string  `json:"first_name"`
	LastName          *string  `json:"last_name"`
	Phone             *string  `json:"phone"`
	AddressLine1      *string  `json:"address_line1"`
	AddressLine2      *string  `json:"address_line2"`
	City              *string  `json:"city"`
	State             *string  `json:"state"`
	ZipCode           *string  `json:"zip_code"`
	Country           *string  `json:"country"`
	TotalOrders       *int     `json:"total_orders"`
	LifetimeValue     *float64 `json:"lifetime_value"`
	LastOrderDate     *string  `json:"last_order_date"`
	AvgOrderValue     *float64 `json:"avg_order_value"`
	EmailSubscribed   *bool    `json:"email_subscribed"`
	AcquisitionSource *string  `json:"acquisition_source"`
}

// UpdateCustomer applies a partial update.
//
//	PUT /api/customers/{id}
func (h *Handlers) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	err := h.customers.Update(r.Context(), chi.URLParam(r, "id"), customer.UpdateFields{
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Phone:             req.Phone,
		AddressLine1:      req.AddressLine1,
		AddressLine2:      req.AddressLine2,
		City:              req.City,
		State:             req.State,
		ZipCode:           req.ZipCode,
		Country:           req.Country,
		TotalOrders:       req.TotalOrders,
		LifetimeValue:     req.LifetimeValue,
		LastOrderDate:     req.LastOrderDate,
		AvgOrderValue:     req.AvgOrderValue,
		EmailSubscribed:   req.EmailSubscribed,
		AcquisitionSource: req.AcquisitionSource,
	})
	if errors.Is(err, customer.ErrNotFound) {
		respondError(w, http.StatusNotFound, "customer not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update customer")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// DeleteCustomer removes a customer.
//
//	DELETE /api/customers/{id}
func (h *Handlers) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	err := h.customers.Delete(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, customer.ErrNotFound) {
		respondError(w, http.StatusNotFound, "customer not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete customer")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
