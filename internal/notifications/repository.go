package notifications

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teampulse/backend/internal/models"
)

// Repository persists the outbound email audit log.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an email log repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Record inserts one send-attempt row.
func (r *Repository) Record(ctx context.Context, log *models.EmailLog) error {
	const q = `INSERT INTO email_logs
			(id, workspace_id, member_id, email_type, recipient_email, subject, status, error_message)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q,
		log.WorkspaceID, log.MemberID, log.EmailType, log.RecipientEmail,
		log.Subject, log.Status, log.ErrorMessage,
	).Scan(&log.ID, &log.CreatedAt)
}

// ListByWorkspace returns the workspace's send attempts, newest first.
func (r *Repository) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID, limit int) ([]*models.EmailLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	const q = `SELECT id, workspace_id, member_id, email_type, recipient_email, subject, status, error_message, created_at
		FROM email_logs WHERE workspace_id = $1
		ORDER BY created_at DESC LIMIT $2`
	rows, err := r.pool.Query(ctx, q, workspaceID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.EmailLog
	for rows.Next() {
		var l models.EmailLog
		if err := rows.Scan(&l.ID, &l.WorkspaceID, &l.MemberID, &l.EmailType, &l.RecipientEmail,
			&l.Subject, &l.Status, &l.ErrorMessage, &l.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}
