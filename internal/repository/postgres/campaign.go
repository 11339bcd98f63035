package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ignite/audience-engine/internal/domain"
	"github.com/ignite/audience-engine/internal/service/campaign"
)

// CampaignRepo implements campaign.Repository against PostgreSQL.
type CampaignRepo struct{ db *sql.DB }

// NewCampaignRepo creates a Postgres-backed campaign repository.
func NewCampaignRepo(db *sql.DB) *CampaignRepo { return &CampaignRepo{db: db} }

func (r *CampaignRepo) Get(ctx context.Context, id string) (*domain.Campaign, error) {
	c := &domain.Campaign{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, segment_id, flow_id, is_active, created_at
		FROM campaigns
		WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.SegmentID, &c.FlowID, &c.IsActive, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, campaign.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get campaign: %w", err)
	}
	return c, nil
}

func (r *CampaignRepo) List(ctx context.Context) ([]domain.Campaign, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.name, c.segment_id, c.flow_id, c.is_active, c.created_at,
		       COUNT(cc.customer_id)
		FROM campaigns c
		LEFT JOIN campaign_customers cc ON cc.campaign_id = c.id
		GROUP BY c.id
		ORDER BY c.created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	var out []domain.Campaign
	for rows.Next() {
		var c domain.Campaign
		if err := rows.Scan(&c.ID, &c.Name, &c.SegmentID, &c.FlowID, &c.IsActive,
			&c.CreatedAt, &c.CustomerCount); err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CampaignRepo) Create(ctx context.Context, c *domain.Campaign) (string, error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO campaigns (id, name, segment_id, flow_id, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`, c.ID, c.Name, c.SegmentID, c.FlowID, c.IsActive)
	if err != nil {
		return "", fmt.Errorf("create campaign: %w", err)
	}
	return c.ID, nil
}

func (r *CampaignRepo) Update(ctx context.Context, id string, u campaign.UpdateFields) error {
	sets := []string{}
	args := []interface{}{}
	idx := 1
	add := func(col string, val interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, idx))
		args = append(args, val)
		idx++
	}

	if u.Name != nil {
		add("name", *u.Name)
	}
	if u.SegmentID != nil {
		add("segment_id", *u.SegmentID)
	}
	if u.FlowID != nil {
		add("flow_id", *u.FlowID)
	}
	if u.IsActive != nil {
		add("is_active", *u.IsActive)
	}

	if len(sets) == 0 {
		return nil
	}

	q := fmt.Sprintf("UPDATE campaigns SET %s WHERE id = $%d", joinComma(sets), idx)
	args = append(args, id)

	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("update campaign: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return campaign.ErrNotFound
	}
	return nil
}

func (r *CampaignRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM campaigns WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete campaign: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return campaign.ErrNotFound
	}
	return nil
}

// MembershipRepo implements campaign.MembershipStore against PostgreSQL.
// Membership rows live in campaign_customers keyed by (campaign_id,
// customer_id); re-adding an existing member is a no-op.
type MembershipRepo struct{ db *sql.DB }

// NewMembershipRepo creates a Postgres-backed membership store.
func NewMembershipRepo(db *sql.DB) *MembershipRepo { return &MembershipRepo{db: db} }

func (r *MembershipRepo) Members(ctx context.Context, campaignID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT customer_id FROM campaign_customers
		WHERE campaign_id = $1
		ORDER BY enrolled_at, customer_id
	`, campaignID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *MembershipRepo) AddMembers(ctx context.Context, campaignID string, customerIDs []string) error {
	if len(customerIDs) == 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO campaign_customers (campaign_id, customer_id, enrolled_at)
		SELECT $1, unnest($2::text[]), NOW()
		ON CONFLICT (campaign_id, customer_id) DO NOTHING
	`, campaignID, pq.Array(customerIDs))
	if err != nil {
		return fmt.Errorf("add members: %w", err)
	}
	return nil
}
