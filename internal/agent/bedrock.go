package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/ignite/audience-engine/internal/domain"
	"github.com/ignite/audience-engine/internal/generator"
	"github.com/ignite/audience-engine/internal/segmentation"
)

// BedrockClient is a text-generation collaborator powered by AWS Bedrock
// (Claude). All data stays within AWS - no external API calls.
type BedrockClient struct {
	client  *bedrockruntime.Client
	modelID string
	region  string

	// invoke is swapped out in tests.
	invoke func(ctx context.Context, prompt string) (string, error)
}

// BedrockMessage represents a message in Bedrock format
type BedrockMessage struct {
	Role    string                `json:"role"`
	Content []BedrockContentBlock `json:"content"`
}

// BedrockContentBlock represents content in a message
type BedrockContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// BedrockRequest is the request body for the Bedrock InvokeModel API
type BedrockRequest struct {
	AnthropicVersion string           `json:"anthropic_version"`
	MaxTokens        int              `json:"max_tokens"`
	System           string           `json:"system,omitempty"`
	Messages         []BedrockMessage `json:"messages"`
	Temperature      float64          `json:"temperature,omitempty"`
}

// BedrockResponse is the response from Bedrock
type BedrockResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// NewBedrockClient creates a Bedrock-backed text generator. It returns an
// error wrapping generator.ErrNotConfigured when no AWS credentials can be
// resolved, so callers can fall back to the rule-based path.
func NewBedrockClient(ctx context.Context, modelID, region string) (*BedrockClient, error) {
	if region == "" {
		region = "us-east-1"
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w: %v", generator.ErrNotConfigured, err)
	}
	if _, err := cfg.Credentials.Retrieve(ctx); err != nil {
		return nil, fmt.Errorf("resolve AWS credentials: %w: %v", generator.ErrNotConfigured, err)
	}

	// Default to Claude 3 Sonnet if not specified
	if modelID == "" {
		modelID = "anthropic.claude-3-sonnet-20240229-v1:0"
	}

	b := &BedrockClient{
		client:  bedrockruntime.NewFromConfig(cfg),
		modelID: modelID,
		region:  region,
	}
	b.invoke = b.invokeModel

	log.Printf("[agent.BedrockClient] initialized with model=%s, region=%s", modelID, region)
	return b, nil
}

// GenerateProposal asks the model for a segment definition and campaign
// elements matching the business objective. Two model calls, one per part.
func (b *BedrockClient) GenerateProposal(ctx context.Context, prompt string) (*generator.Proposal, error) {
	segment, err := b.generateSegment(ctx, prompt)
	if err != nil {
		return nil, err
	}
	campaign, err := b.generateCampaignElements(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return &generator.Proposal{
		Segment:  *segment,
		Campaign: *campaign,
	}, nil
}

// GetModelID returns the Bedrock model being used
func (b *BedrockClient) GetModelID() string {
	return b.modelID
}

// GetRegion returns the AWS region
func (b *BedrockClient) GetRegion() string {
	return b.region
}

// segmentPayload is the JSON shape the segment prompt asks the model for.
type segmentPayload struct {
	SegmentName string `json:"segment_name"`
	Description string `json:"description"`
	Criteria    []struct {
		Field    string      `json:"field"`
		Operator string      `json:"operator"`
		Value    interface{} `json:"value"`
	} `json:"criteria"`
}

func (b *BedrockClient) generateSegment(ctx context.Context, objective string) (*generator.SegmentDraft, error) {
	prompt := fmt.Sprintf(`Generate a detailed customer segment for a marketing campaign based on the following business objective:

Business Objective: %s

Requirements:
1. The segment should be specific and actionable
2. Include clear criteria (demographic, behavioral, transactional)
3. Use standard marketing metrics (LTV, purchase frequency, recency, etc.)
4. Provide exact thresholds and conditions
5. Use only these fields: %s
6. Use only these operators: equals, contains, greater_than, less_than, in_last_days

Output Format:
Return only the segment definition in JSON format like:
{
  "segment_name": "Descriptive name",
  "criteria": [
    {"field": "metric_name", "operator": "condition", "value": "threshold"}
  ],
  "description": "Brief explanation of the segment"
}`, objective, strings.Join(segmentation.FieldNames(), ", "))

	raw, err := b.invoke(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate segment: %w", err)
	}

	var payload segmentPayload
	if err := extractJSON(raw, &payload); err != nil {
		return nil, fmt.Errorf("generate segment: %w", err)
	}
	return draftFromPayload(&payload), nil
}

func (b *BedrockClient) generateCampaignElements(ctx context.Context, objective string) (*generator.CampaignElements, error) {
	prompt := fmt.Sprintf(`Generate complete campaign elements for an email marketing campaign based on the following business objective:

Business Objective: %s

Requirements:
1. Generate an engaging email subject line (max 50 characters)
2. Suggest optimal send time (hour of day in 24-hour format)
3. Suggest optimal send date (YYYY-MM-DD)
4. Provide 3 plain-text content ideas for the email body
5. Include specific product recommendations or offers if applicable
6. Make suggestions data-driven and relevant to the segment

Output Format:
Return only the campaign elements in JSON format like:
{
  "subject": "Engaging subject line",
  "send_time": "14:00",
  "send_date": "2024-01-15",
  "content_ideas": [
    "First content idea with specific details",
    "Second content idea with specific details",
    "Third content idea with specific details"
  ],
  "recommendations": "Any additional recommendations"
}`, objective)

	raw, err := b.invoke(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate campaign elements: %w", err)
	}

	var elements generator.CampaignElements
	if err := extractJSON(raw, &elements); err != nil {
		return nil, fmt.Errorf("generate campaign elements: %w", err)
	}
	return &elements, nil
}

// invokeModel sends a single-message request to Bedrock and returns the
// concatenated text blocks of the response.
func (b *BedrockClient) invokeModel(ctx context.Context, prompt string) (string, error) {
	request := BedrockRequest{
		AnthropicVersion: "bedrock-2023-05-31",
		MaxTokens:        2000,
		System:           systemPrompt,
		Messages: []BedrockMessage{
			{
				Role: "user",
				Content: []BedrockContentBlock{
					{Type: "text", Text: prompt},
				},
			},
		},
		Temperature: 0.7,
	}

	requestBody, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	output, err := b.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(b.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        requestBody,
	})
	if err != nil {
		return "", fmt.Errorf("Bedrock API error: %w", err)
	}

	var response BedrockResponse
	if err := json.Unmarshal(output.Body, &response); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	var text strings.Builder
	for _, content := range response.Content {
		if content.Type == "text" {
			text.WriteString(content.Text)
		}
	}

	log.Printf("[agent.BedrockClient] processed query (in: %d tokens, out: %d tokens)",
		response.Usage.InputTokens, response.Usage.OutputTokens)

	return text.String(), nil
}

const systemPrompt = `You are an expert email marketing strategist for an audience
segmentation platform. You design customer segments and campaign content from
business objectives. Always answer with a single JSON object in the exact format
the user requests, with no surrounding commentary.`

func draftFromPayload(p *segmentPayload) *generator.SegmentDraft {
	draft := &generator.SegmentDraft{
		Name:        p.SegmentName,
		Description: p.Description,
	}
	for _, c := range p.Criteria {
		draft.Conditions = append(draft.Conditions, domain.Condition{
			Field:    c.Field,
			Operator: c.Operator,
			Value:    c.Value,
		})
	}
	return draft
}

// extractJSON finds the first balanced JSON object in raw that unmarshals
// into v. Models often wrap JSON in prose or markdown fences.
func extractJSON(raw string, v interface{}) error {
	for start := strings.IndexByte(raw, '{'); start >= 0; {
		depth := 0
		inString := false
		escaped := false
		for i := start; i < len(raw); i++ {
			ch := raw[i]
			switch {
			case escaped:
				escaped = false
			case ch == '\\' && inString:
				escaped = true
			case ch == '"':
				inString = !inString
			case inString:
			case ch == '{':
				depth++
			case ch == '}':
				depth--
				if depth == 0 {
					if err := json.Unmarshal([]byte(raw[start:i+1]), v); err == nil {
						return nil
					}
					i = len(raw)
				}
			}
		}
		next := strings.IndexByte(raw[start+1:], '{')
		if next < 0 {
			break
		}
		start += 1 + next
	}
	return fmt.Errorf("could not extract JSON from response: %.200s", raw)
}
