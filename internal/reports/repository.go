package reports

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teampulse/backend/internal/models"
	"github.com/teampulse/backend/internal/period"
)

// Repository handles report persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a reports repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Upsert inserts or fully replaces the report for its
// (workspace, week, year) key. Regeneration replaces, never duplicates.
func (r *Repository) Upsert(ctx context.Context, rep *models.Report) error {
	const q = `INSERT INTO reports (id, workspace_id, week, year, content, format, generated_by)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6)
		ON CONFLICT ON CONSTRAINT reports_period_key DO UPDATE SET
			content      = EXCLUDED.content,
			format       = EXCLUDED.format,
			generated_by = EXCLUDED.generated_by,
			created_at   = NOW()
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q,
		rep.WorkspaceID, rep.Week, rep.Year, rep.Content, rep.Format, rep.GeneratedBy,
	).Scan(&rep.ID, &rep.CreatedAt)
}

// GetByPeriod returns the workspace's report for the period, or nil.
func (r *Repository) GetByPeriod(ctx context.Context, workspaceID uuid.UUID, p period.Period) (*models.Report, error) {
	const q = `SELECT id, workspace_id, week, year, content, format, generated_by, created_at
		FROM reports WHERE workspace_id = $1 AND week = $2 AND year = $3`
	var rep models.Report
	err := r.pool.QueryRow(ctx, q, workspaceID, p.Week, p.Year).Scan(
		&rep.ID, &rep.WorkspaceID, &rep.Week, &rep.Year, &rep.Content, &rep.Format, &rep.GeneratedBy, &rep.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

// List returns the workspace's reports, newest period first.
func (r *Repository) List(ctx context.Context, workspaceID uuid.UUID) ([]*models.Report, error) {
	const q = `SELECT id, workspace_id, week, year, content, format, generated_by, created_at
		FROM reports WHERE workspace_id = $1 ORDER BY year DESC, week DESC`
	rows, err := r.pool.Query(ctx, q, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Report
	for rows.Next() {
		var rep models.Report
		if err := rows.Scan(&rep.ID, &rep.WorkspaceID, &rep.Week, &rep.Year, &rep.Content, &rep.Format, &rep.GeneratedBy, &rep.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &rep)
	}
	return list, rows.Err()
}
