package customer

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/ignite/audience-engine/internal/domain"
)

// Service implements customer business logic.
type Service struct {
	repo Repository
}

// NewService creates a customer service backed by the given repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// All returns every customer in repository enumeration order.
func (s *Service) All(ctx context.Context) ([]domain.Customer, error) {
	return s.repo.All(ctx)
}

// ExistsAny reports whether the repository holds any customers.
func (s *Service) ExistsAny(ctx context.Context) (bool, error) {
	return s.repo.ExistsAny(ctx)
}

// Get returns a single customer.
func (s *Service) Get(ctx context.Context, id string) (*domain.Customer, error) {
	return s.repo.Get(ctx, id)
}

// Create validates and persists a new customer.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.Customer, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("email %q is not a valid address", email)
	}

	country := input.Country
	if country == "" {
		country = "US"
	}

	c := &domain.Customer{
		ID:                uuid.New().String(),
		Email:             email,
		FirstName:         input.FirstName,
		LastName:          input.LastName,
		Phone:             input.Phone,
		AddressLine1:      input.AddressLine1,
		AddressLine2:      input.AddressLine2,
		City:              input.City,
		State:             input.State,
		ZipCode:           input.ZipCode,
		Country:           country,
		TotalOrders:       input.TotalOrders,
		LifetimeValue:     input.LifetimeValue,
		AvgOrderValue:     input.AvgOrderValue,
		EmailSubscribed:   input.EmailSubscribed,
		AcquisitionSource: input.AcquisitionSource,
	}

	id, err := s.repo.Create(ctx, c)
	if err != nil {
		return nil, err
	}
	c.ID = id
	return c, nil
}

// Update modifies mutable customer fields.
func (s *Service) Update(ctx context.Context, id string, u UpdateFields) error {
	return s.repo.Update(ctx, id, u)
}

// Delete removes a customer.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// CreateInput holds the fields for creating a new customer.
type CreateInput struct {
	Email             string  `json:"email"`
	FirstName         string  `json:"first_name"`
	LastName          string  `json:"last_name"`
	Phone             string  `json:"phone"`
	AddressLine1      string  `json:"address_line1"`
	AddressLine2      string  `json:"address_line2"`
	City              string  `json:"city"`
	State             string  `json:"state"`
	ZipCode           string  `json:"zip_code"`
	Country           string  `json:"country"`
	TotalOrders       int     `json:"total_orders"`
	LifetimeValue     float64 `json:"lifetime_value"`
	AvgOrderValue     float64 `json:"avg_order_value"`
	EmailSubscribed   bool    `json:"email_subscribed"`
	AcquisitionSource string  `json:"acquisition_source"`
}
