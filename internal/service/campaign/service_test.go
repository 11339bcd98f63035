package campaign_test

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/ignite/audience-engine/internal/domain"
	"github.com/ignite/audience-engine/internal/segmentation"
	"github.com/ignite/audience-engine/internal/service/campaign"
	"github.com/ignite/audience-engine/internal/service/segment"
)

type memRepo struct {
	campaigns []domain.Campaign
}

func (m *memRepo) Get(_ context.Context, id string) (*domain.Campaign, error) {
	for i := range m.campaigns {
		if m.campaigns[i].ID == id {
			c := m.campaigns[i]
			return &c, nil
		}
	}
	return nil, campaign.ErrNotFound
}

func (m *memRepo) List(_ context.Context) ([]domain.Campaign, error) {
	out := make([]domain.Campaign, len(m.campaigns))
	copy(out, m.campaigns)
	return out, nil
}

func (m *memRepo) Create(_ context.Context, c *domain.Campaign) (string, error) {
	m.campaigns = append(m.campaigns, *c)
	return c.ID, nil
}

func (m *memRepo) Update(_ context.Context, id string, u campaign.UpdateFields) error {
	for i := range m.campaigns {
		if m.campaigns[i].ID == id {
			if u.Name != nil {
				m.campaigns[i].Name = *u.Name
			}
			if u.SegmentID != nil {
				m.campaigns[i].SegmentID = *u.SegmentID
			}
			if u.IsActive != nil {
				m.campaigns[i].IsActive = *u.IsActive
			}
			return nil
		}
	}
	return campaign.ErrNotFound
}

func (m *memRepo) Delete(_ context.Context, id string) error {
	for i := range m.campaigns {
		if m.campaigns[i].ID == id {
			m.campaigns = append(m.campaigns[:i], m.campaigns[i+1:]...)
			return nil
		}
	}
	return campaign.ErrNotFound
}

// memMembers tracks membership as a set and counts write calls.
type memMembers struct {
	sets map[string]map[string]bool
	adds int
}

func newMemMembers() *memMembers {
	return &memMembers{sets: make(map[string]map[string]bool)}
}

func (m *memMembers) Members(_ context.Context, campaignID string) ([]string, error) {
	var out []string
	for id := range m.sets[campaignID] {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

func (m *memMembers) AddMembers(_ context.Context, campaignID string, customerIDs []string) error {
	m.adds++
	set := m.sets[campaignID]
	if set == nil {
		set = make(map[string]bool)
		m.sets[campaignID] = set
	}
	for _, id := range customerIDs {
		set[id] = true
	}
	return nil
}

type memSegments struct {
	segments map[string]*domain.Segment
}

func (m *memSegments) Get(_ context.Context, id string) (*domain.Segment, error) {
	if s, ok := m.segments[id]; ok {
		return s, nil
	}
	return nil, segment.ErrNotFound
}

type memCustomers struct {
	customers []domain.Customer
}

func (m *memCustomers) All(_ context.Context) ([]domain.Customer, error) {
	return m.customers, nil
}

func (m *memCustomers) ExistsAny(_ context.Context) (bool, error) {
	return len(m.customers) > 0, nil
}

type env struct {
	svc     *campaign.Service
	repo    *memRepo
	members *memMembers
}

func newEnv(customers []domain.Customer, segments map[string]*domain.Segment) *env {
	repo := &memRepo{}
	members := newMemMembers()
	engine := segmentation.NewEngine(&memCustomers{customers: customers})
	svc := campaign.NewService(repo, members, &memSegments{segments: segments}, engine)
	return &env{svc: svc, repo: repo, members: members}
}

func subscribedSegment(id string) map[string]*domain.Segment {
	return map[string]*domain.Segment{
		id: {
			ID:   id,
			Name: "Subscribed",
			Conditions: []domain.Condition{
				{Field: "email_subscribed", Operator: "equals", Value: true},
			},
		},
	}
}

var testCustomers = []domain.Customer{
	{ID: "c-1", Email: "a@x.com", EmailSubscribed: true},
	{ID: "c-2", Email: "b@x.com", EmailSubscribed: false},
	{ID: "c-3", Email: "c@x.com", EmailSubscribed: true},
}

func TestCreateValidation(t *testing.T) {
	e := newEnv(nil, nil)

	cases := []campaign.CreateInput{
		{},
		{Name: "Promo"},
		{Name: "Promo", SegmentID: "seg-1"},
	}
	for i, in := range cases {
		if _, err := e.svc.Create(context.Background(), in); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}

	c, err := e.svc.Create(context.Background(), campaign.CreateInput{
		Name: "Promo", SegmentID: "seg-1", FlowID: "flow-1",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.IsActive {
		t.Fatal("new campaigns must start inactive")
	}
}

func TestEnrollIsIdempotent(t *testing.T) {
	e := newEnv(testCustomers, subscribedSegment("seg-1"))
	e.repo.campaigns = []domain.Campaign{{ID: "camp-1", Name: "Promo", SegmentID: "seg-1", FlowID: "flow-1"}}

	first, err := e.svc.Enroll(context.Background(), "camp-1")
	if err != nil {
		t.Fatalf("first enroll: %v", err)
	}
	second, err := e.svc.Enroll(context.Background(), "camp-1")
	if err != nil {
		t.Fatalf("second enroll: %v", err)
	}

	if first.EnrolledCount != 2 || first.MemberCount != 2 {
		t.Fatalf("first report = %+v, want enrolled 2, members 2", first)
	}
	if *second != *first {
		t.Fatalf("second report = %+v, want identical to first %+v", second, first)
	}

	ids, _ := e.members.Members(context.Background(), "camp-1")
	if len(ids) != 2 || ids[0] != "c-1" || ids[1] != "c-3" {
		t.Fatalf("membership = %v, want [c-1 c-3]", ids)
	}
}

func TestActivationEnrollsOnce(t *testing.T) {
	e := newEnv(testCustomers, subscribedSegment("seg-1"))
	e.repo.campaigns = []domain.Campaign{{ID: "camp-1", Name: "Promo", SegmentID: "seg-1", FlowID: "flow-1"}}

	active := true
	updated, report, err := e.svc.Update(context.Background(), "camp-1", campaign.UpdateFields{IsActive: &active})
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if report == nil {
		t.Fatal("expected enrollment report on activation")
	}
	if report.EnrolledCount != 2 {
		t.Fatalf("enrolled = %d, want 2", report.EnrolledCount)
	}
	if updated.CustomerCount != 2 {
		t.Fatalf("customer count = %d, want 2", updated.CustomerCount)
	}
	if e.members.adds != 1 {
		t.Fatalf("membership writes = %d, want 1", e.members.adds)
	}

	// Re-submitting is_active=true must not re-enroll.
	_, report, err = e.svc.Update(context.Background(), "camp-1", campaign.UpdateFields{IsActive: &active})
	if err != nil {
		t.Fatalf("second activate: %v", err)
	}
	if report != nil {
		t.Fatalf("expected no report for already-active campaign, got %+v", report)
	}
	if e.members.adds != 1 {
		t.Fatalf("membership writes after re-activation = %d, want 1", e.members.adds)
	}
}

func TestDeactivationKeepsMembership(t *testing.T) {
	e := newEnv(testCustomers, subscribedSegment("seg-1"))
	e.repo.campaigns = []domain.Campaign{{ID: "camp-1", Name: "Promo", SegmentID: "seg-1", FlowID: "flow-1", IsActive: true}}
	e.members.AddMembers(context.Background(), "camp-1", []string{"c-1", "c-3"})

	inactive := false
	updated, report, err := e.svc.Update(context.Background(), "camp-1", campaign.UpdateFields{IsActive: &inactive})
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if report != nil {
		t.Fatal("deactivation must not produce an enrollment report")
	}
	if updated.CustomerCount != 2 {
		t.Fatalf("customer count = %d, want 2 (membership is never shrunk)", updated.CustomerCount)
	}
}

func TestEnrollNoSegment(t *testing.T) {
	e := newEnv(testCustomers, nil)
	e.repo.campaigns = []domain.Campaign{{ID: "camp-1", Name: "Promo", FlowID: "flow-1"}}

	_, err := e.svc.Enroll(context.Background(), "camp-1")
	if !errors.Is(err, campaign.ErrNoSegment) {
		t.Fatalf("expected ErrNoSegment, got %v", err)
	}
}

func TestEnrollUnknownSegment(t *testing.T) {
	e := newEnv(testCustomers, nil)
	e.repo.campaigns = []domain.Campaign{{ID: "camp-1", Name: "Promo", SegmentID: "seg-gone", FlowID: "flow-1"}}

	_, err := e.svc.Enroll(context.Background(), "camp-1")
	if !errors.Is(err, segment.ErrNotFound) {
		t.Fatalf("expected segment.ErrNotFound, got %v", err)
	}
}

func TestEnrolledCustomersPreservesOrder(t *testing.T) {
	e := newEnv(testCustomers, subscribedSegment("seg-1"))
	e.repo.campaigns = []domain.Campaign{{ID: "camp-1", Name: "Promo", SegmentID: "seg-1", FlowID: "flow-1"}}
	e.members.AddMembers(context.Background(), "camp-1", []string{"c-3", "c-1"})

	got, err := e.svc.EnrolledCustomers(context.Background(), "camp-1")
	if err != nil {
		t.Fatalf("enrolled customers: %v", err)
	}
	if len(got) != 2 || got[0].ID != "c-1" || got[1].ID != "c-3" {
		t.Fatalf("expected enumeration order [c-1 c-3], got %v", got)
	}
}

func TestGetNotFound(t *testing.T) {
	e := newEnv(nil, nil)

	_, err := e.svc.Get(context.Background(), "missing")
	if !errors.Is(err, campaign.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
