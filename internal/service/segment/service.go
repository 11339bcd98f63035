package segment

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/ignite/audience-engine/internal/domain"
	"github.com/ignite/audience-engine/internal/segmentation"
)

// Service implements segment business logic and evaluation entry points.
type Service struct {
	repo   Repository
	engine *segmentation.Engine
}

// NewService creates a segment service backed by the given repository and
// evaluation engine.
func NewService(repo Repository, engine *segmentation.Engine) *Service {
	return &Service{repo: repo, engine: engine}
}

// Get returns a single segment definition.
func (s *Service) Get(ctx context.Context, id string) (*domain.Segment, error) {
	return s.repo.Get(ctx, id)
}

// List returns all segment definitions.
func (s *Service) List(ctx context.Context) ([]domain.Segment, error) {
	return s.repo.List(ctx)
}

// Create validates and persists a new segment. Conditions with unknown
// operators are accepted (they evaluate as no-op filters) but logged, since
// they almost always indicate a typo in the caller.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.Segment, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	warnUnknownOperators(input.Name, input.Conditions)

	seg := &domain.Segment{
		ID:          uuid.New().String(),
		Name:        input.Name,
		Description: input.Description,
		Conditions:  input.Conditions,
	}
	id, err := s.repo.Create(ctx, seg)
	if err != nil {
		return nil, err
	}
	seg.ID = id
	return seg, nil
}

// Update modifies mutable segment fields.
func (s *Service) Update(ctx context.Context, id string, u UpdateFields) error {
	if u.Conditions != nil {
		warnUnknownOperators(id, *u.Conditions)
	}
	return s.repo.Update(ctx, id, u)
}

// Delete removes a segment.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Customers evaluates the segment and returns its current matching set in
// repository enumeration order. Results are never cached.
func (s *Service) Customers(ctx context.Context, id string) ([]domain.Customer, error) {
	seg, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.engine.Evaluate(ctx, seg)
}

// Preview evaluates the segment and returns the total count with the first
// n matching records.
func (s *Service) Preview(ctx context.Context, id string, n int) (*segmentation.Preview, error) {
	seg, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.engine.Preview(ctx, seg, n)
}

func warnUnknownOperators(ref string, conds []domain.Condition) {
	for _, c := range conds {
		if !segmentation.ValidOperator(c.Field, segmentation.Operator(c.Operator)) {
			log.Printf("[segment.Service] segment %s: condition on %q uses operator %q with no defined semantics for the field type", ref, c.Field, c.Operator)
		}
	}
}

// CreateInput holds the fields for creating a new segment.
type CreateInput struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Conditions  []domain.Condition `json:"conditions"`
}
