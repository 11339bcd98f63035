package flow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ignite/audience-engine/internal/domain"
)

// Renderer renders Liquid-templated step content against customer bindings.
// internal/mailing provides the implementation.
type Renderer interface {
	Render(content string, bindings map[string]interface{}) (string, error)
}

// CustomerSource resolves customers for step rendering previews.
type CustomerSource interface {
	Get(ctx context.Context, id string) (*domain.Customer, error)
}

// Service implements flow business logic.
type Service struct {
	repo      Repository
	renderer  Renderer
	customers CustomerSource
}

// NewService creates a flow service. renderer and customers may be nil if
// step rendering is not needed (e.g. the migrate tool).
func NewService(repo Repository, renderer Renderer, customers CustomerSource) *Service {
	return &Service{repo: repo, renderer: renderer, customers: customers}
}

// Get returns a flow with its steps.
func (s *Service) Get(ctx context.Context, id string) (*domain.Flow, error) {
	return s.repo.Get(ctx, id)
}

// List returns all flows.
func (s *Service) List(ctx context.Context) ([]domain.Flow, error) {
	return s.repo.List(ctx)
}

// Create validates and persists a new flow. Step numbers must be strictly
// increasing.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.Flow, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if err := validateSteps(input.Steps); err != nil {
		return nil, err
	}

	f := &domain.Flow{
		ID:          uuid.New().String(),
		Name:        input.Name,
		Description: input.Description,
		IsActive:    input.IsActive,
		Steps:       input.Steps,
	}
	for i := range f.Steps {
		if f.Steps[i].ID == "" {
			f.Steps[i].ID = uuid.New().String()
		}
		f.Steps[i].FlowID = f.ID
	}

	id, err := s.repo.Create(ctx, f)
	if err != nil {
		return nil, err
	}
	f.ID = id
	return f, nil
}

// Update modifies mutable flow fields.
func (s *Service) Update(ctx context.Context, id string, u UpdateFields) error {
	if u.Steps != nil {
		if err := validateSteps(*u.Steps); err != nil {
			return err
		}
	}
	return s.repo.Update(ctx, id, u)
}

// Delete removes a flow and its steps.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// RenderedStep is a step's subject and content rendered for one customer.
type RenderedStep struct {
	StepNumber   int    `json:"step_number"`
	EmailSubject string `json:"email_subject"`
	EmailContent string `json:"email_content"`
	SendAfter    string `json:"send_after"`
}

// RenderStep renders a flow step's subject and content against a customer's
// fields for preview.
func (s *Service) RenderStep(ctx context.Context, flowID string, stepNumber int, customerID string) (*RenderedStep, error) {
	if s.renderer == nil || s.customers == nil {
		return nil, fmt.Errorf("step rendering is not configured")
	}

	f, err := s.repo.Get(ctx, flowID)
	if err != nil {
		return nil, err
	}
	var step *domain.FlowStep
	for i := range f.Steps {
		if f.Steps[i].StepNumber == stepNumber {
			step = &f.Steps[i]
			break
		}
	}
	if step == nil {
		return nil, ErrStepNotFound
	}

	c, err := s.customers.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}
	bindings := customerBindings(c)

	subject, err := s.renderer.Render(step.EmailSubject, bindings)
	if err != nil {
		return nil, fmt.Errorf("render subject: %w", err)
	}
	content, err := s.renderer.Render(step.EmailContent, bindings)
	if err != nil {
		return nil, fmt.Errorf("render content: %w", err)
	}

	return &RenderedStep{
		StepNumber:   step.StepNumber,
		EmailSubject: subject,
		EmailContent: content,
		SendAfter:    fmt.Sprintf("%dd", step.DelayDays),
	}, nil
}

func customerBindings(c *domain.Customer) map[string]interface{} {
	b := map[string]interface{}{
		"email":              c.Email,
		"first_name":         c.FirstName,
		"last_name":          c.LastName,
		"full_name":          c.FullName(),
		"city":               c.City,
		"state":              c.State,
		"country":            c.Country,
		"total_orders":       c.TotalOrders,
		"lifetime_value":     c.LifetimeValue,
		"avg_order_value":    c.AvgOrderValue,
		"email_subscribed":   c.EmailSubscribed,
		"acquisition_source": c.AcquisitionSource,
	}
	if c.LastOrderDate != nil {
		b["last_order_date"] = c.LastOrderDate.Format(time.RFC3339)
	}
	return b
}

func validateSteps(steps []domain.FlowStep) error {
	prev := 0
	for i, st := range steps {
		if st.StepNumber <= prev {
			return fmt.Errorf("step %d: step_number %d must be strictly increasing", i, st.StepNumber)
		}
		if st.EmailSubject == "" {
			return fmt.Errorf("step %d: email_subject is required", st.StepNumber)
		}
		prev = st.StepNumber
	}
	return nil
}

// CreateInput holds the fields for creating a new flow.
type CreateInput struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	IsActive    bool              `json:"is_active"`
	Steps       []domain.FlowStep `json:"steps"`
}
