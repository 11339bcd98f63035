package domain

import "time"

// Campaign targets a segment with a flow. Membership (enrolled customers)
// only grows: enrollment adds the segment's current matching set and there
// is no removal API.
type Campaign struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	SegmentID string    `json:"segment_id" db:"segment_id"`
	FlowID    string    `json:"flow_id" db:"flow_id"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// CustomerCount is read-only, populated from the membership store.
	CustomerCount int `json:"customer_count" db:"customer_count"`
}
