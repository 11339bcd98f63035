package domain

import "time"

// Customer represents a single customer record. Email is the business
// identity (unique across the repository); ID is the storage key.
type Customer struct {
	ID        string `json:"id" db:"id"`
	Email     string `json:"email" db:"email"`
	FirstName string `json:"first_name" db:"first_name"`
	LastName  string `json:"last_name" db:"last_name"`
	Phone     string `json:"phone" db:"phone"`

	AddressLine1 string `json:"address_line1" db:"address_line1"`
	AddressLine2 string `json:"address_line2" db:"address_line2"`
	City         string `json:"city" db:"city"`
	State        string `json:"state" db:"state"`
	ZipCode      string `json:"zip_code" db:"zip_code"`
	Country      string `json:"country" db:"country"`

	TotalOrders   int        `json:"total_orders" db:"total_orders"`
	LifetimeValue float64    `json:"lifetime_value" db:"lifetime_value"`
	LastOrderDate *time.Time `json:"last_order_date" db:"last_order_date"`
	AvgOrderValue float64    `json:"avg_order_value" db:"avg_order_value"`

	EmailSubscribed   bool   `json:"email_subscribed" db:"email_subscribed"`
	AcquisitionSource string `json:"acquisition_source" db:"acquisition_source"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// FullName joins first and last name for display.
func (c *Customer) FullName() string {
	if c.FirstName == "" {
		return c.LastName
	}
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// DaysSinceLastOrder returns the whole days since the last order, or -1 if
// the customer has never ordered.
func (c *Customer) DaysSinceLastOrder(now time.Time) int {
	if c.LastOrderDate == nil {
		return -1
	}
	return int(now.Sub(*c.LastOrderDate).Hours() / 24)
}
