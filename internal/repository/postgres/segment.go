package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/ignite/audience-engine/internal/domain"
	"github.com/ignite/audience-engine/internal/service/segment"
)

// SegmentRepo implements segment.Repository against PostgreSQL.
// Conditions are stored as a JSONB column.
type SegmentRepo struct{ db *sql.DB }

// NewSegmentRepo creates a Postgres-backed segment repository.
func NewSegmentRepo(db *sql.DB) *SegmentRepo { return &SegmentRepo{db: db} }

func (r *SegmentRepo) Get(ctx context.Context, id string) (*domain.Segment, error) {
	s := &domain.Segment{}
	var conditions []byte
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, COALESCE(description,''), conditions, created_at, updated_at
		FROM segments
		WHERE id = $1
	`, id).Scan(&s.ID, &s.Name, &s.Description, &conditions, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, segment.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get segment: %w", err)
	}
	if err := json.Unmarshal(conditions, &s.Conditions); err != nil {
		return nil, fmt.Errorf("decode conditions: %w", err)
	}
	return s, nil
}

func (r *SegmentRepo) List(ctx context.Context) ([]domain.Segment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, COALESCE(description,''), conditions, created_at, updated_at
		FROM segments
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list segments: %w", err)
	}
	defer rows.Close()

	var out []domain.Segment
	for rows.Next() {
		var s domain.Segment
		var conditions []byte
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &conditions, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan segment: %w", err)
		}
		if err := json.Unmarshal(conditions, &s.Conditions); err != nil {
			return nil, fmt.Errorf("decode conditions: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SegmentRepo) Create(ctx context.Context, s *domain.Segment) (string, error) {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	conditions, err := encodeConditions(s.Conditions)
	if err != nil {
		return "", err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO segments (id, name, description, conditions, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
	`, s.ID, s.Name, s.Description, conditions)
	if err != nil {
		return "", fmt.Errorf("create segment: %w", err)
	}
	return s.ID, nil
}

func (r *SegmentRepo) Update(ctx context.Context, id string, u segment.UpdateFields) error {
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
	if u.Description != nil {
		add("description", *u.Description)
	}
	if u.Conditions != nil {
		conditions, err := encodeConditions(*u.Conditions)
		if err != nil {
			return err
		}
		add("conditions", conditions)
	}

	if len(sets) == 0 {
		return nil
	}

	sets = append(sets, "updated_at = NOW()")
	q := fmt.Sprintf("UPDATE segments SET %s WHERE id = $%d", joinComma(sets), idx)
	args = append(args, id)

	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("update segment: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return segment.ErrNotFound
	}
	return nil
}

func (r *SegmentRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM segments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete segment: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return segment.ErrNotFound
	}
	return nil
}

// encodeConditions keeps an empty condition list as [] rather than null so
// decoding round-trips cleanly.
func encodeConditions(conditions []domain.Condition) ([]byte, error) {
	if conditions == nil {
		conditions = []domain.Condition{}
	}
	b, err := json.Marshal(conditions)
	if err != nil {
		return nil, fmt.Errorf("encode conditions: %w", err)
	}
	return b, nil
}
