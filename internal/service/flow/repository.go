package flow

import (
	"context"

	"github.com/ignite/audience-engine/internal/domain"
)

// Repository defines the data access contract for flows and their steps.
// Implementations must be safe for concurrent use and must return steps
// ordered by step_number.
type Repository interface {
	// Get returns a flow with its steps. Returns ErrNotFound if it
	// doesn't exist.
	Get(ctx context.Context, id string) (*domain.Flow, error)

	// List returns all flows (with steps) ordered by created_at DESC.
	List(ctx context.Context) ([]domain.Flow, error)

	// Create inserts a flow and its steps, returning the flow ID.
	Create(ctx context.Context, f *domain.Flow) (string, error)

	// Update modifies a flow. Non-nil Steps replaces the full step list.
	Update(ctx context.Context, id string, u UpdateFields) error

	// Delete removes a flow and its steps.
	Delete(ctx context.Context, id string) error
}

// UpdateFields holds the mutable fields for a flow update.
// Nil fields are not applied.
type UpdateFields struct {
	Name        *string
	Description *string
	IsActive    *bool
	Steps       *[]domain.FlowStep
}
