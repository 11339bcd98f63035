package campaign

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/ignite/audience-engine/internal/domain"
	"github.com/ignite/audience-engine/internal/segmentation"
)

// Service implements campaign business logic and the enrollment engine.
type Service struct {
	repo     Repository
	members  MembershipStore
	segments SegmentSource
	engine   *segmentation.Engine

	mu    sync.Mutex
	locks map[string]*sync.Mutex // per-campaign enrollment serialization
}

// NewService creates a campaign service.
func NewService(repo Repository, members MembershipStore, segments SegmentSource, engine *segmentation.Engine) *Service {
	return &Service{
		repo:     repo,
		members:  members,
		segments: segments,
		engine:   engine,
		locks:    make(map[string]*sync.Mutex),
	}
}

// Get returns a single campaign with its membership count populated.
func (s *Service) Get(ctx context.Context, id string) (*domain.Campaign, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	ids, err := s.members.Members(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load membership: %w", err)
	}
	c.CustomerCount = len(ids)
	return c, nil
}

// List returns all campaigns.
func (s *Service) List(ctx context.Context) ([]domain.Campaign, error) {
	return s.repo.List(ctx)
}

// Create validates and persists a new campaign in inactive state.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.Campaign, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if input.SegmentID == "" {
		return nil, fmt.Errorf("segment_id is required")
	}
	if input.FlowID == "" {
		return nil, fmt.Errorf("flow_id is required")
	}

	c := &domain.Campaign{
		ID:        uuid.New().String(),
		Name:      input.Name,
		SegmentID: input.SegmentID,
		FlowID:    input.FlowID,
		IsActive:  false,
	}
	id, err := s.repo.Create(ctx, c)
	if err != nil {
		return nil, err
	}
	c.ID = id
	return c, nil
}

// Update modifies mutable campaign fields. Flipping is_active from false to
// true triggers enrollment exactly once as a side effect of the write; the
// returned report is non-nil only in that case. Re-submitting is_active=true
// for an already-active campaign does not re-enroll.
func (s *Service) Update(ctx context.Context, id string, u UpdateFields) (*domain.Campaign, *EnrollmentReport, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	wasActive := current.IsActive

	if err := s.repo.Update(ctx, id, u); err != nil {
		return nil, nil, err
	}

	var report *EnrollmentReport
	if u.IsActive != nil && *u.IsActive && !wasActive {
		report, err = s.Enroll(ctx, id)
		if err != nil {
			return nil, nil, fmt.Errorf("enroll on activation: %w", err)
		}
		log.Printf("[campaign.Service] Campaign %s activated: %d customers enrolled", id, report.EnrolledCount)
	}

	updated, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return updated, report, nil
}

// Delete removes a campaign.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// EnrollmentReport describes the outcome of one enrollment pass.
type EnrollmentReport struct {
	// EnrolledCount is the size of the segment's matched set at enrollment
	// time, regardless of how many of those customers were already
	// members. The legacy system reported the same figure and callers
	// depend on it; MemberCount lets them derive the newly-added number
	// across calls instead.
	EnrolledCount int `json:"enrolled_count"`

	// MemberCount is the total membership size after the union.
	MemberCount int `json:"customer_count"`
}

// Enroll evaluates the campaign's segment and unions the matching customers
// into the campaign's membership. The union is idempotent, so calling
// Enroll any number of times leaves membership unchanged after the first
// call while EnrolledCount stays the segment size each time.
//
// Enrollments for the same campaign are serialized; either the whole
// evaluate-and-union step happens or, on error, no membership is written.
func (s *Service) Enroll(ctx context.Context, id string) (*EnrollmentReport, error) {
	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.SegmentID == "" {
		return nil, ErrNoSegment
	}

	seg, err := s.segments.Get(ctx, c.SegmentID)
	if err != nil {
		return nil, fmt.Errorf("resolve segment %s: %w", c.SegmentID, err)
	}

	matched, err := s.engine.Evaluate(ctx, seg)
	if err != nil {
		return nil, fmt.Errorf("evaluate segment %s: %w", seg.ID, err)
	}

	ids := make([]string, len(matched))
	for i := range matched {
		ids[i] = matched[i].ID
	}
	if len(ids) > 0 {
		if err := s.members.AddMembers(ctx, id, ids); err != nil {
			return nil, fmt.Errorf("add members: %w", err)
		}
	}

	all, err := s.members.Members(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load membership: %w", err)
	}

	return &EnrollmentReport{EnrolledCount: len(matched), MemberCount: len(all)}, nil
}

// EnrolledCustomers returns the full records of the campaign's members, in
// customer repository enumeration order.
func (s *Service) EnrolledCustomers(ctx context.Context, id string) ([]domain.Customer, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}
	ids, err := s.members.Members(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load membership: %w", err)
	}
	member := make(map[string]bool, len(ids))
	for _, cid := range ids {
		member[cid] = true
	}

	all, err := s.engine.Customers().All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load customers: %w", err)
	}
	var out []domain.Customer
	for i := range all {
		if member[all[i].ID] {
			out = append(out, all[i])
		}
	}
	return out, nil
}

func (s *Service) lockFor(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

// CreateInput holds the fields for creating a new campaign.
type CreateInput struct {
	Name      string `json:"name"`
	SegmentID string `json:"segment_id"`
	FlowID    string `json:"flow_id"`
}
