package flow_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/ignite/audience-engine/internal/domain"
	"github.com/ignite/audience-engine/internal/service/customer"
	"github.com/ignite/audience-engine/internal/service/flow"
)

type memRepo struct {
	flows []domain.Flow
}

func (m *memRepo) Get(_ context.Context, id string) (*domain.Flow, error) {
	for i := range m.flows {
		if m.flows[i].ID == id {
			f := m.flows[i]
			return &f, nil
		}
	}
	return nil, flow.ErrNotFound
}

func (m *memRepo) List(_ context.Context) ([]domain.Flow, error) {
	out := make([]domain.Flow, len(m.flows))
	copy(out, m.flows)
	return out, nil
}

func (m *memRepo) Create(_ context.Context, f *domain.Flow) (string, error) {
	m.flows = append(m.flows, *f)
	return f.ID, nil
}

func (m *memRepo) Update(_ context.Context, id string, u flow.UpdateFields) error {
	for i := range m.flows {
		if m.flows[i].ID == id {
			if u.Name != nil {
				m.flows[i].Name = *u.Name
			}
			if u.Steps != nil {
				m.flows[i].Steps = *u.Steps
			}
			return nil
		}
	}
	return flow.ErrNotFound
}

func (m *memRepo) Delete(_ context.Context, id string) error {
	for i := range m.flows {
		if m.flows[i].ID == id {
			m.flows = append(m.flows[:i], m.flows[i+1:]...)
			return nil
		}
	}
	return flow.ErrNotFound
}

// stubRenderer substitutes {{ key }} tokens from the bindings map.
type stubRenderer struct{}

func (stubRenderer) Render(content string, bindings map[string]interface{}) (string, error) {
	out := content
	for k, v := range bindings {
		out = strings.ReplaceAll(out, "{{ "+k+" }}", fmt.Sprintf("%v", v))
	}
	return out, nil
}

type stubCustomers struct {
	customers map[string]*domain.Customer
}

func (s *stubCustomers) Get(_ context.Context, id string) (*domain.Customer, error) {
	if c, ok := s.customers[id]; ok {
		return c, nil
	}
	return nil, customer.ErrNotFound
}

func newTestService(repo *memRepo, customers map[string]*domain.Customer) *flow.Service {
	return flow.NewService(repo, stubRenderer{}, &stubCustomers{customers: customers})
}

func TestCreateAssignsStepIDs(t *testing.T) {
	repo := &memRepo{}
	svc := newTestService(repo, nil)

	f, err := svc.Create(context.Background(), flow.CreateInput{
		Name: "Welcome",
		Steps: []domain.FlowStep{
			{StepNumber: 1, EmailSubject: "Welcome!"},
			{StepNumber: 2, EmailSubject: "Still there?", DelayDays: 3},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for i, st := range f.Steps {
		if st.ID == "" {
			t.Fatalf("step %d: expected generated id", i)
		}
		if st.FlowID != f.ID {
			t.Fatalf("step %d: flow id %q, want %q", i, st.FlowID, f.ID)
		}
	}
}

func TestCreateRejectsBadSteps(t *testing.T) {
	svc := newTestService(&memRepo{}, nil)

	cases := []struct {
		name  string
		steps []domain.FlowStep
	}{
		{"non-increasing step numbers", []domain.FlowStep{
			{StepNumber: 2, EmailSubject: "B"},
			{StepNumber: 1, EmailSubject: "A"},
		}},
		{"duplicate step numbers", []domain.FlowStep{
			{StepNumber: 1, EmailSubject: "A"},
			{StepNumber: 1, EmailSubject: "B"},
		}},
		{"missing subject", []domain.FlowStep{
			{StepNumber: 1},
		}},
	}
	for _, tc := range cases {
		if _, err := svc.Create(context.Background(), flow.CreateInput{Name: "Bad", Steps: tc.steps}); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}

func TestRenderStep(t *testing.T) {
	repo := &memRepo{flows: []domain.Flow{{
		ID:   "flow-1",
		Name: "Welcome",
		Steps: []domain.FlowStep{
			{ID: "s-1", FlowID: "flow-1", StepNumber: 1, EmailSubject: "Hi {{ first_name }}", EmailContent: "Thanks from {{ city }}", DelayDays: 2},
		},
	}}}
	svc := newTestService(repo, map[string]*domain.Customer{
		"c-1": {ID: "c-1", Email: "ada@example.com", FirstName: "Ada", City: "London"},
	})

	got, err := svc.RenderStep(context.Background(), "flow-1", 1, "c-1")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got.EmailSubject != "Hi Ada" {
		t.Fatalf("subject = %q, want %q", got.EmailSubject, "Hi Ada")
	}
	if got.EmailContent != "Thanks from London" {
		t.Fatalf("content = %q, want %q", got.EmailContent, "Thanks from London")
	}
	if got.SendAfter != "2d" {
		t.Fatalf("send after = %q, want %q", got.SendAfter, "2d")
	}
}

func TestRenderStepErrors(t *testing.T) {
	repo := &memRepo{flows: []domain.Flow{{
		ID:    "flow-1",
		Name:  "Welcome",
		Steps: []domain.FlowStep{{ID: "s-1", FlowID: "flow-1", StepNumber: 1, EmailSubject: "Hi"}},
	}}}
	svc := newTestService(repo, map[string]*domain.Customer{
		"c-1": {ID: "c-1", Email: "ada@example.com"},
	})

	if _, err := svc.RenderStep(context.Background(), "missing", 1, "c-1"); !errors.Is(err, flow.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown flow, got %v", err)
	}
	if _, err := svc.RenderStep(context.Background(), "flow-1", 9, "c-1"); !errors.Is(err, flow.ErrStepNotFound) {
		t.Fatalf("expected ErrStepNotFound, got %v", err)
	}
	if _, err := svc.RenderStep(context.Background(), "flow-1", 1, "ghost"); !errors.Is(err, customer.ErrNotFound) {
		t.Fatalf("expected customer.ErrNotFound, got %v", err)
	}
}

func TestUpdateReplacesSteps(t *testing.T) {
	repo := &memRepo{flows: []domain.Flow{{
		ID:    "flow-1",
		Name:  "Welcome",
		Steps: []domain.FlowStep{{ID: "s-1", FlowID: "flow-1", StepNumber: 1, EmailSubject: "Hi"}},
	}}}
	svc := newTestService(repo, nil)

	steps := []domain.FlowStep{
		{StepNumber: 1, EmailSubject: "New hi"},
		{StepNumber: 2, EmailSubject: "Follow up"},
	}
	if err := svc.Update(context.Background(), "flow-1", flow.UpdateFields{Steps: &steps}); err != nil {
		t.Fatalf("update: %v", err)
	}
	f, err := svc.Get(context.Background(), "flow-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(f.Steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(f.Steps))
	}
}
