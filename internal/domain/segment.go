package domain

import "time"

// Condition is a single declarative filter over one customer field.
// Value is untyped at rest (it arrives as a JSON scalar) and is coerced
// against the field's declared type at evaluation time.
type Condition struct {
	Field    string      `json:"field"`
	Operator string      `json:"operator"`
	Value    interface{} `json:"value"`
}

// Segment is a named, reusable customer filter. Conditions are ANDed; an
// empty condition list matches every customer. A segment's matching set is
// never cached; every evaluation re-queries the customer repository.
type Segment struct {
	ID          string      `json:"id" db:"id"`
	Name        string      `json:"name" db:"name"`
	Description string      `json:"description" db:"description"`
	Conditions  []Condition `json:"conditions" db:"conditions"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
}
