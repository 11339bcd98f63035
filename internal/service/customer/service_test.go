package customer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ignite/audience-engine/internal/domain"
	"github.com/ignite/audience-engine/internal/service/customer"
)

// memRepo is an in-memory customer.Repository for service tests.
type memRepo struct {
	customers []domain.Customer
}

func (m *memRepo) All(_ context.Context) ([]domain.Customer, error) {
	out := make([]domain.Customer, len(m.customers))
	copy(out, m.customers)
	return out, nil
}

func (m *memRepo) ExistsAny(_ context.Context) (bool, error) {
	return len(m.customers) > 0, nil
}

func (m *memRepo) Get(_ context.Context, id string) (*domain.Customer, error) {
	for i := range m.customers {
		if m.customers[i].ID == id {
			c := m.customers[i]
			return &c, nil
		}
	}
	return nil, customer.ErrNotFound
}

func (m *memRepo) Create(_ context.Context, c *domain.Customer) (string, error) {
	for i := range m.customers {
		if m.customers[i].Email == c.Email {
			return "", customer.ErrDuplicateEmail
		}
	}
	m.customers = append(m.customers, *c)
	return c.ID, nil
}

func (m *memRepo) Update(_ context.Context, id string, u customer.UpdateFields) error {
	for i := range m.customers {
		if m.customers[i].ID == id {
			if u.FirstName != nil {
				m.customers[i].FirstName = *u.FirstName
			}
			return nil
		}
	}
	return customer.ErrNotFound
}

func (m *memRepo) Delete(_ context.Context, id string) error {
	for i := range m.customers {
		if m.customers[i].ID == id {
			m.customers = append(m.customers[:i], m.customers[i+1:]...)
			return nil
		}
	}
	return customer.ErrNotFound
}

func TestCreateAssignsIDAndDefaults(t *testing.T) {
	svc := customer.NewService(&memRepo{})

	c, err := svc.Create(context.Background(), customer.CreateInput{
		Email:     "ada@example.com",
		FirstName: "Ada",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.ID == "" {
		t.Fatal("expected generated id")
	}
	if c.Country != "US" {
		t.Fatalf("expected default country US, got %q", c.Country)
	}
}

func TestCreateValidatesEmail(t *testing.T) {
	svc := customer.NewService(&memRepo{})

	if _, err := svc.Create(context.Background(), customer.CreateInput{}); err == nil {
		t.Fatal("expected error for missing email")
	}
	if _, err := svc.Create(context.Background(), customer.CreateInput{Email: "nope"}); err == nil {
		t.Fatal("expected error for malformed email")
	}
}

func TestCreateDuplicateEmail(t *testing.T) {
	svc := customer.NewService(&memRepo{})

	if _, err := svc.Create(context.Background(), customer.CreateInput{Email: "a@x.com"}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.Create(context.Background(), customer.CreateInput{Email: "a@x.com"})
	if !errors.Is(err, customer.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestGetNotFound(t *testing.T) {
	svc := customer.NewService(&memRepo{})

	_, err := svc.Get(context.Background(), "missing")
	if !errors.Is(err, customer.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	repo := &memRepo{}
	svc := customer.NewService(repo)

	c, err := svc.Create(context.Background(), customer.CreateInput{Email: "a@x.com"})
	if err != nil {
		t.Fatal(err)
	}

	name := "Grace"
	if err := svc.Update(context.Background(), c.ID, customer.UpdateFields{FirstName: &name}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := svc.Get(context.Background(), c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.FirstName != "Grace" {
		t.Fatalf("expected updated name, got %q", got.FirstName)
	}

	if err := svc.Delete(context.Background(), c.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(context.Background(), c.ID); !errors.Is(err, customer.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}
