package campaign

import (
	"context"

	"github.com/ignite/audience-engine/internal/domain"
)

// Repository defines the data access contract for campaign records.
// Implementations must be safe for concurrent use.
type Repository interface {
	// Get returns a single campaign. Returns ErrNotFound if it doesn't exist.
	Get(ctx context.Context, id string) (*domain.Campaign, error)

	// List returns all campaigns ordered by created_at DESC.
	List(ctx context.Context) ([]domain.Campaign, error)

	// Create inserts a new campaign and returns its ID.
	Create(ctx context.Context, c *domain.Campaign) (string, error)

	// Update modifies a campaign. Only non-nil fields are applied.
	Update(ctx context.Context, id string, u UpdateFields) error

	// Delete removes a campaign and its membership.
	Delete(ctx context.Context, id string) error
}

// MembershipStore persists campaign→customer membership as a set keyed by
// campaign ID. AddMembers must be idempotent: adding an already-present
// member is a no-op. Implementations must be safe for concurrent use.
type MembershipStore interface {
	// Members returns the customer IDs enrolled in the campaign.
	Members(ctx context.Context, campaignID string) ([]string, error)

	// AddMembers unions the given customer IDs into the campaign's
	// membership set.
	AddMembers(ctx context.Context, campaignID string, customerIDs []string) error
}

// SegmentSource resolves a campaign's segment reference. The segment
// service's repository satisfies this.
type SegmentSource interface {
	Get(ctx context.Context, id string) (*domain.Segment, error)
}

// UpdateFields holds the mutable fields for a campaign update.
// Nil fields are not applied.
type UpdateFields struct {
	Name      *string
	SegmentID *string
	FlowID    *string
	IsActive  *bool
}
