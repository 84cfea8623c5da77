package members

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teampulse/backend/internal/models"
)

// ErrMemberExists rejects explicit creation of an already-active member.
var ErrMemberExists = errors.New("member already exists in workspace")

// Repository handles workspace_members persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a members repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const memberCols = `id, workspace_id, email, full_name, first_name, role, active, created_at, updated_at`

func scanMember(row pgx.Row) (*models.WorkspaceMember, error) {
	var m models.WorkspaceMember
	err := row.Scan(&m.ID, &m.WorkspaceID, &m.Email, &m.FullName, &m.FirstName, &m.Role, &m.Active, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetByID returns a member by ID, or nil when absent.
func (r *Repository) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*models.WorkspaceMember, error) {
	m, err := scanMember(r.pool.QueryRow(ctx,
		`SELECT `+memberCols+` FROM workspace_members WHERE workspace_id = $1 AND id = $2`, workspaceID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return m, err
}

// GetByEmail returns the workspace's member record for the email
// (case-insensitive), active or not, or nil when absent.
func (r *Repository) GetByEmail(ctx context.Context, workspaceID uuid.UUID, email string) (*models.WorkspaceMember, error) {
	m, err := scanMember(r.pool.QueryRow(ctx,
		`SELECT `+memberCols+` FROM workspace_members
		 WHERE workspace_id = $1 AND LOWER(email) = LOWER($2)`, workspaceID, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return m, err
}

// List returns the workspace's members, active first.
func (r *Repository) List(ctx context.Context, workspaceID uuid.UUID) ([]*models.WorkspaceMember, error) {
	const q = `SELECT ` + memberCols + ` FROM workspace_members
		WHERE workspace_id = $1 ORDER BY active DESC, full_name, email`
	rows, err := r.pool.Query(ctx, q, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.WorkspaceMember
	for rows.Next() {
		var m models.WorkspaceMember
		if err := rows.Scan(&m.ID, &m.WorkspaceID, &m.Email, &m.FullName, &m.FirstName, &m.Role, &m.Active, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

// ListActive returns only active members. The notification scheduler's
// prompt batch goes to this set.
func (r *Repository) ListActive(ctx context.Context, workspaceID uuid.UUID) ([]*models.WorkspaceMember, error) {
	const q = `SELECT ` + memberCols + ` FROM workspace_members
		WHERE workspace_id = $1 AND active ORDER BY full_name, email`
	rows, err := r.pool.Query(ctx, q, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.WorkspaceMember
	for rows.Next() {
		var m models.WorkspaceMember
		if err := rows.Scan(&m.ID, &m.WorkspaceID, &m.Email, &m.FullName, &m.FirstName, &m.Role, &m.Active, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

// CountActive returns the number of active members, for the submission-rate
// metric.
func (r *Repository) CountActive(ctx context.Context, workspaceID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM workspace_members WHERE workspace_id = $1 AND active`, workspaceID).Scan(&n)
	return n, err
}

// Add explicitly creates a member. Fails with ErrMemberExists when an active
// record already holds the (workspace, email) key; a soft-deleted record is
// reactivated instead.
func (r *Repository) Add(ctx context.Context, m *models.WorkspaceMember) error {
	existing, err := r.GetByEmail(ctx, m.WorkspaceID, m.Email)
	if err != nil {
		return err
	}
	if existing != nil && existing.Active {
		return ErrMemberExists
	}
	return r.FindOrCreate(ctx, m)
}

// FindOrCreate is the self-service onboarding path used at submission time:
// it inserts the member, or reactivates a soft-deleted record and refreshes
// the name, without ever erroring on an existing row.
func (r *Repository) FindOrCreate(ctx context.Context, m *models.WorkspaceMember) error {
	if m.Role == "" {
		m.Role = models.MemberRoleMember
	}
	m.FirstName = models.FirstNameOf(m.FullName, m.Email)
	const q = `INSERT INTO workspace_members (id, workspace_id, email, full_name, first_name, role, active)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, TRUE)
		ON CONFLICT (workspace_id, LOWER(email)) DO UPDATE SET
			full_name  = EXCLUDED.full_name,
			first_name = EXCLUDED.first_name,
			active     = TRUE,
			updated_at = NOW()
		RETURNING id, role, active, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, m.WorkspaceID, m.Email, m.FullName, m.FirstName, m.Role).
		Scan(&m.ID, &m.Role, &m.Active, &m.CreatedAt, &m.UpdatedAt)
}

// Update mutates name, role and active flag.
func (r *Repository) Update(ctx context.Context, m *models.WorkspaceMember) error {
	m.FirstName = models.FirstNameOf(m.FullName, m.Email)
	const q = `UPDATE workspace_members
		SET full_name = $3, first_name = $4, role = $5, active = $6, updated_at = NOW()
		WHERE workspace_id = $1 AND id = $2
		RETURNING updated_at`
	return r.pool.QueryRow(ctx, q, m.WorkspaceID, m.ID, m.FullName, m.FirstName, m.Role, m.Active).
		Scan(&m.UpdatedAt)
}

// Deactivate soft-deletes a member. Submission history is untouched.
func (r *Repository) Deactivate(ctx context.Context, workspaceID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE workspace_members SET active = FALSE, updated_at = NOW()
		 WHERE workspace_id = $1 AND id = $2`, workspaceID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
