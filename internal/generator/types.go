package generator

import (
	"context"
	"errors"

	"github.com/ignite/audience-engine/internal/domain"
)

// ErrNotConfigured signals that the text generation collaborator has no
// usable configuration (e.g. missing credentials). It is the only failure
// kind that triggers the rule-based fallback.
var ErrNotConfigured = errors.New("text generation service not configured")

// TextGenerator is the AI collaborator contract. Implementations return
// ErrNotConfigured (possibly wrapped) when they cannot run at all.
type TextGenerator interface {
	GenerateProposal(ctx context.Context, prompt string) (*Proposal, error)
}

// SegmentDraft is a proposed segment definition, not yet persisted.
type SegmentDraft struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Conditions  []domain.Condition `json:"conditions"`
}

// CampaignElements is a proposed campaign content skeleton.
type CampaignElements struct {
	Subject         string   `json:"subject"`
	SendTime        string   `json:"send_time"`
	SendDate        string   `json:"send_date"`
	ContentIdeas    []string `json:"content_ideas"`
	Recommendations string   `json:"recommendations,omitempty"`
}

// Proposal pairs a segment draft with campaign elements.
type Proposal struct {
	Segment  SegmentDraft     `json:"segment"`
	Campaign CampaignElements `json:"campaign"`

	// Source records which path produced the proposal: "ai" or "rules".
	Source string `json:"source"`
}
