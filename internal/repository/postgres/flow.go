package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/ignite/audience-engine/internal/domain"
	"github.com/ignite/audience-engine/internal/service/flow"
)

// FlowRepo implements flow.Repository against PostgreSQL. Steps live in a
// child table and are always read back ordered by step_number.
type FlowRepo struct{ db *sql.DB }

// NewFlowRepo creates a Postgres-backed flow repository.
func NewFlowRepo(db *sql.DB) *FlowRepo { return &FlowRepo{db: db} }

func (r *FlowRepo) Get(ctx context.Context, id string) (*domain.Flow, error) {
	f := &domain.Flow{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, COALESCE(description,''), is_active, created_at, updated_at
		FROM flows
		WHERE id = $1
	`, id).Scan(&f.ID, &f.Name, &f.Description, &f.IsActive, &f.CreatedAt, &f.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, flow.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get flow: %w", err)
	}

	steps, err := r.steps(ctx, id)
	if err != nil {
		return nil, err
	}
	f.Steps = steps
	return f, nil
}

func (r *FlowRepo) List(ctx context.Context) ([]domain.Flow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, COALESCE(description,''), is_active, created_at, updated_at
		FROM flows
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list flows: %w", err)
	}
	defer rows.Close()

	var out []domain.Flow
	for rows.Next() {
		var f domain.Flow
		if err := rows.Scan(&f.ID, &f.Name, &f.Description, &f.IsActive, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan flow: %w", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		steps, err := r.steps(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Steps = steps
	}
	return out, nil
}

func (r *FlowRepo) Create(ctx context.Context, f *domain.Flow) (string, error) {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO flows (id, name, description, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
	`, f.ID, f.Name, f.Description, f.IsActive)
	if err != nil {
		return "", fmt.Errorf("create flow: %w", err)
	}

	if err := insertSteps(ctx, tx, f.ID, f.Steps); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit flow: %w", err)
	}
	return f.ID, nil
}

func (r *FlowRepo) Update(ctx context.Context, id string, u flow.UpdateFields) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

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
	if u.IsActive != nil {
		add("is_active", *u.IsActive)
	}

	sets = append(sets, "updated_at = NOW()")
	q := fmt.Sprintf("UPDATE flows SET %s WHERE id = $%d", joinComma(sets), idx)
	args = append(args, id)

	res, err := tx.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("update flow: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return flow.ErrNotFound
	}

	// A non-nil step list replaces the whole sequence.
	if u.Steps != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM flow_steps WHERE flow_id = $1`, id); err != nil {
			return fmt.Errorf("clear steps: %w", err)
		}
		if err := insertSteps(ctx, tx, id, *u.Steps); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit flow: %w", err)
	}
	return nil
}

func (r *FlowRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM flows WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete flow: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return flow.ErrNotFound
	}
	return nil
}

func (r *FlowRepo) steps(ctx context.Context, flowID string) ([]domain.FlowStep, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, flow_id, step_number, email_subject, COALESCE(email_content,''), delay_days
		FROM flow_steps
		WHERE flow_id = $1
		ORDER BY step_number
	`, flowID)
	if err != nil {
		return nil, fmt.Errorf("list steps: %w", err)
	}
	defer rows.Close()

	var out []domain.FlowStep
	for rows.Next() {
		var s domain.FlowStep
		if err := rows.Scan(&s.ID, &s.FlowID, &s.StepNumber, &s.EmailSubject, &s.EmailContent, &s.DelayDays); err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func insertSteps(ctx context.Context, tx execer, flowID string, steps []domain.FlowStep) error {
	for i := range steps {
		s := &steps[i]
		if s.ID == "" {
			s.ID = uuid.New().String()
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO flow_steps (id, flow_id, step_number, email_subject, email_content, delay_days)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, s.ID, flowID, s.StepNumber, s.EmailSubject, s.EmailContent, s.DelayDays)
		if err != nil {
			return fmt.Errorf("insert step %d: %w", s.StepNumber, err)
		}
	}
	return nil
}
