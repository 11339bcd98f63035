package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubClient builds a BedrockClient whose model calls are replaced by fn.
func stubClient(fn func(prompt string) (string, error)) *BedrockClient {
	b := &BedrockClient{modelID: "test-model", region: "us-east-1"}
	b.invoke = func(_ context.Context, prompt string) (string, error) {
		return fn(prompt)
	}
	return b
}

func TestGenerateProposal(t *testing.T) {
	segmentJSON := `{
		"segment_name": "High LTV Lapsed",
		"description": "High spenders gone quiet",
		"criteria": [
			{"field": "lifetime_value", "operator": "greater_than", "value": 500},
			{"field": "last_order_date", "operator": "in_last_days", "value": 90}
		]
	}`
	campaignJSON := `{
		"subject": "Come back for more",
		"send_time": "14:00",
		"send_date": "2026-03-16",
		"content_ideas": ["idea one", "idea two", "idea three"],
		"recommendations": "Offer free shipping"
	}`

	b := stubClient(func(prompt string) (string, error) {
		if strings.Contains(prompt, "customer segment") {
			return "Here is the segment:\n```json\n" + segmentJSON + "\n```", nil
		}
		return campaignJSON, nil
	})

	p, err := b.GenerateProposal(context.Background(), "win back big spenders")
	require.NoError(t, err)

	assert.Equal(t, "High LTV Lapsed", p.Segment.Name)
	require.Len(t, p.Segment.Conditions, 2)
	assert.Equal(t, "lifetime_value", p.Segment.Conditions[0].Field)
	assert.Equal(t, "greater_than", p.Segment.Conditions[0].Operator)
	assert.Equal(t, float64(500), p.Segment.Conditions[0].Value)

	assert.Equal(t, "Come back for more", p.Campaign.Subject)
	assert.Equal(t, "14:00", p.Campaign.SendTime)
	assert.Len(t, p.Campaign.ContentIdeas, 3)
	assert.Equal(t, "Offer free shipping", p.Campaign.Recommendations)
}

func TestGenerateProposalModelError(t *testing.T) {
	boom := errors.New("throttled")
	b := stubClient(func(string) (string, error) { return "", boom })

	_, err := b.GenerateProposal(context.Background(), "anything")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		subject string
		wantErr bool
	}{
		{
			name:    "bare object",
			raw:     `{"subject": "Hello"}`,
			subject: "Hello",
		},
		{
			name:    "markdown fenced",
			raw:     "Sure! Here you go:\n```json\n{\"subject\": \"Hi\"}\n```\nLet me know.",
			subject: "Hi",
		},
		{
			name:    "nested braces",
			raw:     `prefix {"subject": "Deep", "extra": {"a": 1}} suffix`,
			subject: "Deep",
		},
		{
			name:    "brace inside string",
			raw:     `{"subject": "curly } brace"}`,
			subject: "curly } brace",
		},
		{
			name:    "no json at all",
			raw:     "I cannot help with that.",
			wantErr: true,
		},
		{
			name:    "unbalanced",
			raw:     `{"subject": "oops"`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v struct {
				Subject string `json:"subject"`
			}
			err := extractJSON(tt.raw, &v)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.subject, v.Subject)
		})
	}
}
