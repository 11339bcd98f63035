package segment

import (
	"context"

	"github.com/ignite/audience-engine/internal/domain"
)

// Repository defines the data access contract for segment definitions.
// Implementations must be safe for concurrent use.
type Repository interface {
	// Get returns a single segment. Returns ErrNotFound if it doesn't exist.
	Get(ctx context.Context, id string) (*domain.Segment, error)

	// List returns all segments ordered by created_at DESC.
	List(ctx context.Context) ([]domain.Segment, error)

	// Create inserts a new segment and returns its ID.
	Create(ctx context.Context, seg *domain.Segment) (string, error)

	// Update modifies a segment. Only non-nil fields are applied.
	Update(ctx context.Context, id string, u UpdateFields) error

	// Delete removes a segment.
	Delete(ctx context.Context, id string) error
}

// UpdateFields holds the mutable fields for a segment update.
// Nil fields are not applied.
type UpdateFields struct {
	Name        *string
	Description *string
	Conditions  *[]domain.Condition
}
