package submissions

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teampulse/backend/internal/models"
	"github.com/teampulse/backend/internal/period"
)

// ErrInvalidPeriod rejects writes outside the supported week/year bounds.
var ErrInvalidPeriod = errors.New("period outside valid week/year range")

// Repository handles submission persistence, including the read-time merge
// with the pre-tenancy legacy table.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a submissions repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Upsert inserts or fully replaces the row for the submission's
// (workspace, member, week, year) key. The unique constraint is the
// concurrency guard: concurrent resubmission races to a single row with
// last-write-wins field values.
func (r *Repository) Upsert(ctx context.Context, s *models.Submission) error {
	p := period.Period{Week: s.Week, Year: s.Year}
	if !p.Valid() {
		return ErrInvalidPeriod
	}
	const q = `INSERT INTO submissions
		(id, workspace_id, member_id, week, year,
		 accomplishments, priority_progress, blockers, priorities, shoutouts,
		 summary, followup_question, followup_answer, submitted_at)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
		ON CONFLICT ON CONSTRAINT submissions_period_key DO UPDATE SET
			accomplishments   = EXCLUDED.accomplishments,
			priority_progress = EXCLUDED.priority_progress,
			blockers          = EXCLUDED.blockers,
			priorities        = EXCLUDED.priorities,
			shoutouts         = EXCLUDED.shoutouts,
			summary           = EXCLUDED.summary,
			followup_question = EXCLUDED.followup_question,
			followup_answer   = EXCLUDED.followup_answer,
			submitted_at      = NOW()
		RETURNING id, submitted_at`
	return r.pool.QueryRow(ctx, q,
		s.WorkspaceID, s.MemberID, s.Week, s.Year,
		s.Accomplishments, s.PriorityProgress, s.Blockers, s.Priorities, s.Shoutouts,
		s.Summary, s.FollowupQuestion, s.FollowupAnswer,
	).Scan(&s.ID, &s.SubmittedAt)
}

// ListForPeriod returns the period's submissions enriched with member name
// and email, newest first. Legacy rows are merged in for active members who
// have no tenant-scoped row for the period; tenant data always wins.
func (r *Repository) ListForPeriod(ctx context.Context, workspaceID uuid.UUID, p period.Period) ([]models.Submission, error) {
	const q = `SELECT s.id, s.workspace_id, s.member_id, s.week, s.year,
			s.accomplishments, s.priority_progress, s.blockers, s.priorities, s.shoutouts,
			s.summary, s.followup_question, s.followup_answer, s.submitted_at,
			m.full_name, m.email
		FROM submissions s
		INNER JOIN workspace_members m ON m.id = s.member_id
		WHERE s.workspace_id = $1 AND s.week = $2 AND s.year = $3
		ORDER BY s.submitted_at DESC`
	rows, err := r.pool.Query(ctx, q, workspaceID, p.Week, p.Year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Submission
	for rows.Next() {
		var s models.Submission
		if err := rows.Scan(&s.ID, &s.WorkspaceID, &s.MemberID, &s.Week, &s.Year,
			&s.Accomplishments, &s.PriorityProgress, &s.Blockers, &s.Priorities, &s.Shoutouts,
			&s.Summary, &s.FollowupQuestion, &s.FollowupAnswer, &s.SubmittedAt,
			&s.MemberName, &s.MemberEmail); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	legacy, err := r.legacyForPeriod(ctx, workspaceID, p)
	if err != nil {
		return nil, err
	}
	if len(legacy) > 0 {
		list = append(list, legacy...)
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].SubmittedAt.After(list[j].SubmittedAt)
		})
	}
	return list, nil
}

// legacyForPeriod returns legacy rows for workspace members (matched
// case-insensitively by email) with no tenant-scoped row for the period.
func (r *Repository) legacyForPeriod(ctx context.Context, workspaceID uuid.UUID, p period.Period) ([]models.Submission, error) {
	const q = `SELECT m.id, m.full_name, m.email,
			l.accomplishments, l.priority_progress, l.blockers, l.priorities, l.shoutouts, l.submitted_at
		FROM legacy_submissions l
		INNER JOIN workspace_members m
			ON m.workspace_id = $1 AND LOWER(m.email) = LOWER(l.email)
		WHERE l.week = $2 AND l.year = $3
		  AND m.active
		  AND NOT EXISTS (
			SELECT 1 FROM submissions s
			WHERE s.workspace_id = $1 AND s.member_id = m.id AND s.week = $2 AND s.year = $3
		  )`
	rows, err := r.pool.Query(ctx, q, workspaceID, p.Week, p.Year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Submission
	for rows.Next() {
		s := models.Submission{WorkspaceID: workspaceID, Week: p.Week, Year: p.Year}
		if err := rows.Scan(&s.MemberID, &s.MemberName, &s.MemberEmail,
			&s.Accomplishments, &s.PriorityProgress, &s.Blockers, &s.Priorities, &s.Shoutouts,
			&s.SubmittedAt); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// WeeklyStatus outer-joins the workspace's active members against the
// period's submissions; a member with no matching row is pending. A legacy
// row for the period counts as submitted so migrated members are not chased.
func (r *Repository) WeeklyStatus(ctx context.Context, workspaceID uuid.UUID, p period.Period) (*models.WeeklyStatus, error) {
	const q = `SELECT m.id, m.email, m.full_name, s.submitted_at,
			(s.id IS NOT NULL OR l.id IS NOT NULL) AS has_submitted
		FROM workspace_members m
		LEFT JOIN submissions s
			ON s.member_id = m.id AND s.workspace_id = m.workspace_id
			AND s.week = $2 AND s.year = $3
		LEFT JOIN legacy_submissions l
			ON LOWER(l.email) = LOWER(m.email) AND l.week = $2 AND l.year = $3
		WHERE m.workspace_id = $1 AND m.active
		ORDER BY m.full_name, m.email`
	rows, err := r.pool.Query(ctx, q, workspaceID, p.Week, p.Year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	status := &models.WeeklyStatus{Week: p.Week, Year: p.Year}
	for rows.Next() {
		var ms models.MemberStatus
		if err := rows.Scan(&ms.MemberID, &ms.Email, &ms.FullName, &ms.SubmittedAt, &ms.HasSubmitted); err != nil {
			return nil, err
		}
		status.Members = append(status.Members, ms)
		status.Total++
		if ms.HasSubmitted {
			status.Submitted++
		} else {
			status.Pending++
		}
	}
	return status, rows.Err()
}

// PreviousForMember returns the member's most recent submission strictly
// before the given period, or nil when none exists.
func (r *Repository) PreviousForMember(ctx context.Context, workspaceID, memberID uuid.UUID, before period.Period) (*models.Submission, error) {
	const q = `SELECT id, workspace_id, member_id, week, year,
			accomplishments, priority_progress, blockers, priorities, shoutouts,
			summary, followup_question, followup_answer, submitted_at
		FROM submissions
		WHERE workspace_id = $1 AND member_id = $2
		  AND (year < $4 OR (year = $4 AND week < $3))
		ORDER BY year DESC, week DESC
		LIMIT 1`
	var s models.Submission
	err := r.pool.QueryRow(ctx, q, workspaceID, memberID, before.Week, before.Year).Scan(
		&s.ID, &s.WorkspaceID, &s.MemberID, &s.Week, &s.Year,
		&s.Accomplishments, &s.PriorityProgress, &s.Blockers, &s.Priorities, &s.Shoutouts,
		&s.Summary, &s.FollowupQuestion, &s.FollowupAnswer, &s.SubmittedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// BackfillLegacy copies legacy rows forward into the tenant-scoped table for
// members of the workspace. Insert-only where the unique key is absent, so
// re-running is a no-op; tenant rows are never overwritten.
func (r *Repository) BackfillLegacy(ctx context.Context, workspaceID uuid.UUID) (int64, error) {
	const q = `INSERT INTO submissions
		(id, workspace_id, member_id, week, year,
		 accomplishments, priority_progress, blockers, priorities, shoutouts, submitted_at)
		SELECT gen_random_uuid(), m.workspace_id, m.id, l.week, l.year,
			l.accomplishments, l.priority_progress, l.blockers, l.priorities, l.shoutouts, l.submitted_at
		FROM legacy_submissions l
		INNER JOIN workspace_members m
			ON m.workspace_id = $1 AND LOWER(m.email) = LOWER(l.email)
		ON CONFLICT ON CONSTRAINT submissions_period_key DO NOTHING`
	tag, err := r.pool.Exec(ctx, q, workspaceID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
