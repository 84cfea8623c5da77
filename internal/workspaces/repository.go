package workspaces

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teampulse/backend/internal/models"
)

// Repository handles workspace and workspace_settings persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a workspaces repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const workspaceCols = `id, name, manager_email, manager_name, domains, status, created_at, updated_at`

func scanWorkspace(row pgx.Row) (*models.Workspace, error) {
	var w models.Workspace
	err := row.Scan(&w.ID, &w.Name, &w.ManagerEmail, &w.ManagerName, &w.Domains, &w.Status, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// GetByID returns a workspace by ID, or nil when absent.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Workspace, error) {
	w, err := scanWorkspace(r.pool.QueryRow(ctx,
		`SELECT `+workspaceCols+` FROM workspaces WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return w, err
}

// GetByManagerEmail returns the workspace managed by the email, or nil.
// Manager email is unique across workspaces.
func (r *Repository) GetByManagerEmail(ctx context.Context, email string) (*models.Workspace, error) {
	w, err := scanWorkspace(r.pool.QueryRow(ctx,
		`SELECT `+workspaceCols+` FROM workspaces WHERE LOWER(manager_email) = LOWER($1)`, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return w, err
}

// Create inserts a workspace plus its default settings row in one
// transaction.
func (r *Repository) Create(ctx context.Context, w *models.Workspace) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const q = `INSERT INTO workspaces (id, name, manager_email, manager_name, domains, status)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, 'active')
		RETURNING id, status, created_at, updated_at`
	if err := tx.QueryRow(ctx, q, w.Name, w.ManagerEmail, w.ManagerName, w.Domains).
		Scan(&w.ID, &w.Status, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO workspace_settings (workspace_id) VALUES ($1)`, w.ID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ListAccessible returns active workspaces where the email is the manager or
// an active member.
func (r *Repository) ListAccessible(ctx context.Context, email string) ([]*models.Workspace, error) {
	const q = `SELECT DISTINCT w.id, w.name, w.manager_email, w.manager_name, w.domains, w.status, w.created_at, w.updated_at
		FROM workspaces w
		LEFT JOIN workspace_members m
			ON m.workspace_id = w.id AND m.active AND LOWER(m.email) = LOWER($1)
		WHERE w.status = 'active'
		  AND (LOWER(w.manager_email) = LOWER($1) OR m.id IS NOT NULL)
		ORDER BY w.name`
	return r.queryWorkspaces(ctx, q, email)
}

// ListActive returns every active workspace. Used by the super-admin
// override and the notification scheduler.
func (r *Repository) ListActive(ctx context.Context) ([]*models.Workspace, error) {
	const q = `SELECT ` + workspaceCols + ` FROM workspaces WHERE status = 'active' ORDER BY name`
	return r.queryWorkspaces(ctx, q)
}

func (r *Repository) queryWorkspaces(ctx context.Context, q string, args ...interface{}) ([]*models.Workspace, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Workspace
	for rows.Next() {
		var w models.Workspace
		if err := rows.Scan(&w.ID, &w.Name, &w.ManagerEmail, &w.ManagerName, &w.Domains, &w.Status, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &w)
	}
	return list, rows.Err()
}

// Access describes the caller's relationship to a workspace.
type Access struct {
	Workspace *models.Workspace
	IsManager bool
	IsMember  bool
}

// AccessFor loads the workspace and resolves whether the email is its
// manager or an active member. Returns nil when the workspace is absent.
func (r *Repository) AccessFor(ctx context.Context, workspaceID uuid.UUID, email string) (*Access, error) {
	w, err := r.GetByID(ctx, workspaceID)
	if err != nil || w == nil {
		return nil, err
	}
	a := &Access{Workspace: w, IsManager: strings.EqualFold(w.ManagerEmail, email)}
	var exists bool
	err = r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM workspace_members
		  WHERE workspace_id = $1 AND active AND LOWER(email) = LOWER($2))`,
		workspaceID, email).Scan(&exists)
	if err != nil {
		return nil, err
	}
	a.IsMember = exists
	return a, nil
}

// SetStatus flips the workspace lifecycle flag; workspaces are never
// hard-deleted.
func (r *Repository) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE workspaces SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	return err
}

// UpdateDomains replaces the workspace's domain allow-list.
func (r *Repository) UpdateDomains(ctx context.Context, id uuid.UUID, domains []string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE workspaces SET domains = $2, updated_at = NOW() WHERE id = $1`, id, domains)
	return err
}

// GetSettings returns the workspace's notification settings.
func (r *Repository) GetSettings(ctx context.Context, workspaceID uuid.UUID) (*models.WorkspaceSettings, error) {
	const q = `SELECT workspace_id, prompt_day, prompt_time, reminder_day, reminder_time, sender_name, updated_at
		FROM workspace_settings WHERE workspace_id = $1`
	var s models.WorkspaceSettings
	err := r.pool.QueryRow(ctx, q, workspaceID).Scan(
		&s.WorkspaceID, &s.PromptDay, &s.PromptTime, &s.ReminderDay, &s.ReminderTime, &s.SenderName, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateSettings upserts the workspace's notification settings.
func (r *Repository) UpdateSettings(ctx context.Context, s *models.WorkspaceSettings) error {
	const q = `INSERT INTO workspace_settings (workspace_id, prompt_day, prompt_time, reminder_day, reminder_time, sender_name)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (workspace_id) DO UPDATE SET
			prompt_day = EXCLUDED.prompt_day,
			prompt_time = EXCLUDED.prompt_time,
			reminder_day = EXCLUDED.reminder_day,
			reminder_time = EXCLUDED.reminder_time,
			sender_name = EXCLUDED.sender_name,
			updated_at = NOW()
		RETURNING updated_at`
	return r.pool.QueryRow(ctx, q,
		s.WorkspaceID, s.PromptDay, s.PromptTime, s.ReminderDay, s.ReminderTime, s.SenderName,
	).Scan(&s.UpdatedAt)
}
