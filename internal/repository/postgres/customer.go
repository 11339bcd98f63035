// Package postgres implements the service repository contracts against
// PostgreSQL using database/sql and lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ignite/audience-engine/internal/domain"
	"github.com/ignite/audience-engine/internal/service/customer"
)

// CustomerRepo implements customer.Repository against PostgreSQL.
type CustomerRepo struct{ db *sql.DB }

// NewCustomerRepo creates a Postgres-backed customer repository.
func NewCustomerRepo(db *sql.DB) *CustomerRepo { return &CustomerRepo{db: db} }

const customerColumns = `id, email, COALESCE(first_name,''), COALESCE(last_name,''),
	       COALESCE(phone,''), COALESCE(address_line1,''), COALESCE(address_line2,''),
	       COALESCE(city,''), COALESCE(state,''), COALESCE(zip_code,''), COALESCE(country,''),
	       total_orders, lifetime_value, last_order_date, avg_order_value,
	       email_subscribed, COALESCE(acquisition_source,''), created_at, updated_at`

func scanCustomer(row interface{ Scan(...interface{}) error }, c *domain.Customer) error {
	var lastOrder sql.NullTime
	err := row.Scan(
		&c.ID, &c.Email, &c.FirstName, &c.LastName,
		&c.Phone, &c.AddressLine1, &c.AddressLine2,
		&c.City, &c.State, &c.ZipCode, &c.Country,
		&c.TotalOrders, &c.LifetimeValue, &lastOrder, &c.AvgOrderValue,
		&c.EmailSubscribed, &c.AcquisitionSource, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if lastOrder.Valid {
		t := lastOrder.Time
		c.LastOrderDate = &t
	}
	return nil
}

// All returns every customer ordered by creation time. The segmentation
// engine's result ordering depends on this being stable.
func (r *CustomerRepo) All(ctx context.Context) ([]domain.Customer, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+customerColumns+`
		FROM customers
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var out []domain.Customer
	for rows.Next() {
		var c domain.Customer
		if err := scanCustomer(rows, &c); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CustomerRepo) ExistsAny(ctx context.Context) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM customers)`).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check customers: %w", err)
	}
	return exists, nil
}

func (r *CustomerRepo) Get(ctx context.Context, id string) (*domain.Customer, error) {
	c := &domain.Customer{}
	err := scanCustomer(r.db.QueryRowContext(ctx, `
		SELECT `+customerColumns+`
		FROM customers
		WHERE id = $1
	`, id), c)
	if err == sql.ErrNoRows {
		return nil, customer.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

func (r *CustomerRepo) Create(ctx context.Context, c *domain.Customer) (string, error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO customers
			(id, email, first_name, last_name, phone,
			 address_line1, address_line2, city, state, zip_code, country,
			 total_orders, lifetime_value, last_order_date, avg_order_value,
			 email_subscribed, acquisition_source, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
		        $12, $13, $14, $15, $16, $17, NOW(), NOW())
	`, c.ID, c.Email, c.FirstName, c.LastName, c.Phone,
		c.AddressLine1, c.AddressLine2, c.City, c.State, c.ZipCode, c.Country,
		c.TotalOrders, c.LifetimeValue, nullTime(c.LastOrderDate), c.AvgOrderValue,
		c.EmailSubscribed, c.AcquisitionSource)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return "", customer.ErrDuplicateEmail
		}
		return "", fmt.Errorf("create customer: %w", err)
	}
	return c.ID, nil
}

func (r *CustomerRepo) Update(ctx context.Context, id string, u customer.UpdateFields) error {
	sets := []string{}
	args := []interface{}{}
	idx := 1
	add := func(col string, val interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, idx))
		args = append(args, val)
		idx++
	}

	if u.FirstName != nil {
		add("first_name", *u.FirstName)
	}
	if u.LastName != nil {
		add("last_name", *u.LastName)
	}
	if u.Phone != nil {
		add("phone", *u.Phone)
	}
	if u.AddressLine1 != nil {
		add("address_line1", *u.AddressLine1)
	}
	if u.AddressLine2 != nil {
		add("address_line2", *u.AddressLine2)
	}
	if u.City != nil {
		add("city", *u.City)
	}
	if u.State != nil {
		add("state", *u.State)
	}
	if u.ZipCode != nil {
		add("zip_code", *u.ZipCode)
	}
	if u.Country != nil {
		add("country", *u.Country)
	}
	if u.TotalOrders != nil {
		add("total_orders", *u.TotalOrders)
	}
	if u.LifetimeValue != nil {
		add("lifetime_value", *u.LifetimeValue)
	}
	if u.LastOrderDate != nil {
		add("last_order_date", *u.LastOrderDate)
	}
	if u.AvgOrderValue != nil {
		add("avg_order_value", *u.AvgOrderValue)
	}
	if u.EmailSubscribed != nil {
		add("email_subscribed", *u.EmailSubscribed)
	}
	if u.AcquisitionSource != nil {
		add("acquisition_source", *u.AcquisitionSource)
	}

	if len(sets) == 0 {
		return nil
	}

	sets = append(sets, "updated_at = NOW()")
	q := fmt.Sprintf("UPDATE customers SET %s WHERE id = $%d", joinComma(sets), idx)
	args = append(args, id)

	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return customer.ErrNotFound
	}
	return nil
}

func (r *CustomerRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return customer.ErrNotFound
	}
	return nil
}

func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

func joinComma(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}
