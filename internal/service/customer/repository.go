package customer

import (
	"context"

	"github.com/ignite/audience-engine/internal/domain"
)

// Repository defines the data access contract for customers.
// Implementations must be safe for concurrent use and must return records
// from All in a stable enumeration order; the segmentation engine's result
// ordering depends on it.
type Repository interface {
	// All returns every customer in enumeration order.
	All(ctx context.Context) ([]domain.Customer, error)

	// ExistsAny reports whether at least one customer exists. Callers use
	// this to guard percentile computations.
	ExistsAny(ctx context.Context) (bool, error)

	// Get returns a single customer. Returns ErrNotFound if it doesn't exist.
	Get(ctx context.Context, id string) (*domain.Customer, error)

	// Create inserts a new customer and returns its ID. Returns
	// ErrDuplicateEmail on an email collision.
	Create(ctx context.Context, c *domain.Customer) (string, error)

	// Update modifies a customer. Only non-nil fields are applied.
	Update(ctx context.Context, id string, u UpdateFields) error

	// Delete removes a customer.
	Delete(ctx context.Context, id string) error
}

// UpdateFields holds the mutable fields for a customer update.
// Nil fields are not applied.
type UpdateFields struct {
	FirstName         *string
	LastName          *string
	Phone             *string
	AddressLine1      *string
	AddressLine2      *string
	City              *string
	State             *string
	ZipCode           *string
	Country           *string
	TotalOrders       *int
	LifetimeValue     *float64
	LastOrderDate     *string
	AvgOrderValue     *float64
	EmailSubscribed   *bool
	AcquisitionSource *string
}
