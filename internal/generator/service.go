package generator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ignite/audience-engine/internal/domain"
	"github.com/ignite/audience-engine/internal/segmentation"
)

// Service orchestrates proposal generation: AI collaborator first,
// rule-based classifier when the collaborator is not configured.
type Service struct {
	customers segmentation.CustomerSource
	text      TextGenerator
	now       func() time.Time
}

// NewService creates a generator service. text may be nil, in which case
// every request takes the rule-based path.
func NewService(customers segmentation.CustomerSource, text TextGenerator) *Service {
	return &Service{customers: customers, text: text, now: time.Now}
}

// SetClock overrides the clock used for recency thresholds and send dates.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// Generate produces a segment draft and campaign skeleton for the prompt.
// A collaborator that is not configured falls back to the rules; any other
// collaborator failure is surfaced to the caller unchanged.
func (s *Service) Generate(ctx context.Context, prompt string) (*Proposal, error) {
	if s.text != nil {
		p, err := s.text.GenerateProposal(ctx, prompt)
		if err == nil {
			p.Source = "ai"
			return p, nil
		}
		if !errors.Is(err, ErrNotConfigured) {
			return nil, fmt.Errorf("text generation: %w", err)
		}
		log.Printf("[generator.Service] text generation not configured, using rule-based fallback")
	}
	return s.ruleBased(ctx, prompt)
}

// Fallback-rule day windows for the recency rule, checked in order;
// the first literal found in the prompt wins.
var recencyWindows = []struct {
	literal string
	days    int
}{
	{"60 days", 60},
	{"30 days", 30},
	{"90 days", 90},
}

// ruleBased classifies the prompt with case-insensitive substring rules.
// Each rule independently appends a condition; the campaign skeleton is
// constant regardless of prompt content.
func (s *Service) ruleBased(ctx context.Context, prompt string) (*Proposal, error) {
	p := strings.ToLower(prompt)
	now := s.now()

	var conditions []domain.Condition

	if strings.Contains(p, "high lifetime value") || strings.Contains(p, "ltv") {
		cond, ok, err := s.lifetimeValueCondition(ctx)
		if err != nil {
			return nil, err
		}
		// Skipped silently when no customers exist: there is no
		// population to take a percentile over.
		if ok {
			conditions = append(conditions, cond)
		}
	}

	if strings.Contains(p, "subscribed") {
		conditions = append(conditions, domain.Condition{
			Field:    "email_subscribed",
			Operator: "equals",
			Value:    true,
		})
	}

	if strings.Contains(p, "haven't purchased") || strings.Contains(p, "not ordered") {
		days := 60
		for _, w := range recencyWindows {
			if strings.Contains(p, w.literal) {
				days = w.days
				break
			}
		}
		conditions = append(conditions, domain.Condition{
			Field:    "last_order_date",
			Operator: "less_than",
			Value:    now.AddDate(0, 0, -days).Format(time.RFC3339),
		})
	}

	return &Proposal{
		Segment: SegmentDraft{
			Name:        "High LTV Inactive Customers",
			Description: "Customers with high lifetime value who haven't purchased recently",
			Conditions:  conditions,
		},
		Campaign: CampaignElements{
			Subject:  "We Miss You! Special Offer Inside",
			SendTime: "10:00",
			SendDate: now.AddDate(0, 0, 1).Format("2006-01-02"),
			ContentIdeas: []string{
				"Personalized product recommendations based on past purchases",
				"Exclusive discount code for returning customers",
				"Highlight new arrivals in their favorite categories",
				"Social proof with customer reviews and testimonials",
			},
		},
		Source: "rules",
	}, nil
}

// lifetimeValueCondition builds the p75 lifetime-value threshold condition.
// ok is false when there are no customers to compute a threshold from.
func (s *Service) lifetimeValueCondition(ctx context.Context) (domain.Condition, bool, error) {
	exists, err := s.customers.ExistsAny(ctx)
	if err != nil {
		return domain.Condition{}, false, fmt.Errorf("check customers: %w", err)
	}
	if !exists {
		return domain.Condition{}, false, nil
	}

	all, err := s.customers.All(ctx)
	if err != nil {
		return domain.Condition{}, false, fmt.Errorf("load customers: %w", err)
	}
	values := make([]float64, len(all))
	for i := range all {
		values[i] = all[i].LifetimeValue
	}
	p75, err := segmentation.Percentile75(values)
	if err != nil {
		return domain.Condition{}, false, err
	}

	return domain.Condition{
		Field:    "lifetime_value",
		Operator: "greater_than",
		Value:    p75,
	}, true, nil
}
