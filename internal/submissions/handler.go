package submissions

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teampulse/backend/internal/middleware"
	"github.com/teampulse/backend/internal/models"
	"github.com/teampulse/backend/internal/period"
	"github.com/teampulse/backend/internal/workspaces"
	"github.com/teampulse/backend/pkg/response"
)

// MemberStore is the slice of the members repository the submission flow
// needs for self-service onboarding.
type MemberStore interface {
	GetByEmail(ctx context.Context, workspaceID uuid.UUID, email string) (*models.WorkspaceMember, error)
	FindOrCreate(ctx context.Context, m *models.WorkspaceMember) error
}

// Store is the repository surface the handler uses. Satisfied by *Repository.
type Store interface {
	Upsert(ctx context.Context, s *models.Submission) error
	ListForPeriod(ctx context.Context, workspaceID uuid.UUID, p period.Period) ([]models.Submission, error)
	WeeklyStatus(ctx context.Context, workspaceID uuid.UUID, p period.Period) (*models.WeeklyStatus, error)
	PreviousForMember(ctx context.Context, workspaceID, memberID uuid.UUID, before period.Period) (*models.Submission, error)
	BackfillLegacy(ctx context.Context, workspaceID uuid.UUID) (int64, error)
}

// Handler handles submission HTTP endpoints.
type Handler struct {
	repo       Store
	members    MemberStore
	workspaces workspaces.AccessResolver
	clock      *period.Clock
	logger     *zap.Logger
}

// NewHandler creates a submissions handler.
func NewHandler(repo Store, members MemberStore, ws workspaces.AccessResolver, clock *period.Clock, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, members: members, workspaces: ws, clock: clock, logger: logger}
}

// periodFromQuery reads optional week/year query params, defaulting to the
// current period.
func (h *Handler) periodFromQuery(c *gin.Context) (period.Period, bool) {
	p := h.clock.Current()
	if w := c.Query("week"); w != "" {
		n, err := strconv.Atoi(w)
		if err != nil {
			response.BadRequest(c, response.CodeInvalidPeriod, "week must be a number")
			return p, false
		}
		p.Week = n
	}
	if y := c.Query("year"); y != "" {
		n, err := strconv.Atoi(y)
		if err != nil {
			response.BadRequest(c, response.CodeInvalidPeriod, "year must be a number")
			return p, false
		}
		p.Year = n
	}
	if !p.Valid() {
		response.BadRequest(c, response.CodeInvalidPeriod, "period outside valid week/year range")
		return p, false
	}
	return p, true
}

// Status handles GET /workspaces/:id/status: the current period's weekly
// submission status.
func (h *Handler) Status(c *gin.Context) {
	access, ok := workspaces.RequireAccess(c, h.workspaces, false)
	if !ok {
		return
	}
	status, err := h.repo.WeeklyStatus(c.Request.Context(), access.Workspace.ID, h.clock.Current())
	if err != nil {
		response.Internal(c, "failed to load weekly status")
		return
	}
	response.OK(c, status)
}

// List handles GET /workspaces/:id/submissions.
func (h *Handler) List(c *gin.Context) {
	access, ok := workspaces.RequireAccess(c, h.workspaces, false)
	if !ok {
		return
	}
	p, ok := h.periodFromQuery(c)
	if !ok {
		return
	}
	list, err := h.repo.ListForPeriod(c.Request.Context(), access.Workspace.ID, p)
	if err != nil {
		response.Internal(c, "failed to load submissions")
		return
	}
	if list == nil {
		list = []models.Submission{}
	}
	response.OK(c, list)
}

// SubmitRequest is the body for POST /workspaces/:id/submissions.
type SubmitRequest struct {
	Week             int    `json:"week"`
	Year             int    `json:"year"`
	Accomplishments  string `json:"accomplishments" binding:"required"`
	PriorityProgress string `json:"priority_progress"`
	Blockers         string `json:"blockers"`
	Priorities       string `json:"priorities" binding:"required"`
	Shoutouts        string `json:"shoutouts"`
	Summary          string `json:"summary"`
	FollowupQuestion string `json:"followup_question"`
	FollowupAnswer   string `json:"followup_answer"`
}

// Submit handles POST /workspaces/:id/submissions: create-or-replace the
// caller's submission for the period. Access is resolved without the
// membership gate: a first submission from an allow-listed identity onboards
// the member lazily, and a soft-deleted member is reactivated. The domain
// allow-list is the admission decision for callers with no member record.
func (h *Handler) Submit(c *gin.Context) {
	access, ok := workspaces.ResolveAccess(c, h.workspaces)
	if !ok {
		return
	}
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeMissingFields, "accomplishments and priorities are required")
		return
	}
	p := h.clock.Current()
	if req.Week != 0 || req.Year != 0 {
		p = period.Period{Week: req.Week, Year: req.Year}
	}
	if !p.Valid() {
		response.BadRequest(c, response.CodeInvalidPeriod, "period outside valid week/year range")
		return
	}

	email := middleware.UserEmail(c)
	member, err := h.onboard(c.Request.Context(), access, email, middleware.UserName(c))
	if err != nil {
		if errors.Is(err, errDomainNotAllowed) {
			response.BadRequest(c, response.CodeInvalidDomain, "email domain is not in the workspace allow-list")
			return
		}
		h.logger.Error("member onboarding failed", zap.Error(err), zap.String("email", email))
		response.Internal(c, "failed to resolve member")
		return
	}

	sub := &models.Submission{
		WorkspaceID:      access.Workspace.ID,
		MemberID:         member.ID,
		Week:             p.Week,
		Year:             p.Year,
		Accomplishments:  strings.TrimSpace(req.Accomplishments),
		PriorityProgress: strings.TrimSpace(req.PriorityProgress),
		Blockers:         strings.TrimSpace(req.Blockers),
		Priorities:       strings.TrimSpace(req.Priorities),
		Shoutouts:        strings.TrimSpace(req.Shoutouts),
		Summary:          strings.TrimSpace(req.Summary),
		FollowupQuestion: strings.TrimSpace(req.FollowupQuestion),
		FollowupAnswer:   strings.TrimSpace(req.FollowupAnswer),
	}
	if err := h.repo.Upsert(c.Request.Context(), sub); err != nil {
		if errors.Is(err, ErrInvalidPeriod) {
			response.BadRequest(c, response.CodeInvalidPeriod, "period outside valid week/year range")
			return
		}
		h.logger.Error("submission upsert failed", zap.Error(err), zap.String("member_id", member.ID.String()))
		response.Internal(c, "failed to save submission")
		return
	}
	sub.MemberName = member.FullName
	sub.MemberEmail = member.Email
	response.OK(c, sub)
}

// Previous handles GET /workspaces/:id/submissions/previous: the caller's
// most recent prior-period submission, for recall and pre-fill.
func (h *Handler) Previous(c *gin.Context) {
	access, ok := workspaces.RequireAccess(c, h.workspaces, false)
	if !ok {
		return
	}
	member, err := h.members.GetByEmail(c.Request.Context(), access.Workspace.ID, middleware.UserEmail(c))
	if err != nil {
		response.Internal(c, "failed to resolve member")
		return
	}
	if member == nil {
		response.NotFound(c, "no membership in this workspace")
		return
	}
	prev, err := h.repo.PreviousForMember(c.Request.Context(), access.Workspace.ID, member.ID, h.clock.Current())
	if err != nil {
		response.Internal(c, "failed to load previous submission")
		return
	}
	if prev == nil {
		response.NotFound(c, "no previous submission")
		return
	}
	response.OK(c, prev)
}

// Backfill handles POST /admin/backfill/:workspaceId: copies legacy rows
// forward into the tenant-scoped table for the workspace's members.
// Insert-only, so re-running is safe.
func (h *Handler) Backfill(c *gin.Context) {
	workspaceID, err := uuid.Parse(c.Param("workspaceId"))
	if err != nil {
		response.BadRequest(c, response.CodeMissingFields, "invalid workspace id")
		return
	}
	inserted, err := h.repo.BackfillLegacy(c.Request.Context(), workspaceID)
	if err != nil {
		h.logger.Error("legacy backfill failed", zap.Error(err), zap.String("workspace_id", workspaceID.String()))
		response.Internal(c, "backfill failed")
		return
	}
	h.logger.Info("legacy backfill completed",
		zap.String("workspace_id", workspaceID.String()),
		zap.Int64("inserted", inserted),
	)
	response.OK(c, gin.H{"inserted": inserted})
}

var errDomainNotAllowed = errors.New("email domain not allowed for workspace")

// onboard returns the caller's member record, lazily creating or
// reactivating it when the workspace allow-list admits the domain. The
// manager gets a member record too, admitted regardless of domain, so their
// submissions join like anyone else's. Existing members keep their access
// even if the allow-list has since changed; the domain gate applies to new
// records only.
func (h *Handler) onboard(ctx context.Context, access *workspaces.Access, email, name string) (*models.WorkspaceMember, error) {
	existing, err := h.members.GetByEmail(ctx, access.Workspace.ID, email)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Active && existing.FullName == name {
		return existing, nil
	}
	if existing == nil && !access.IsManager && !access.Workspace.DomainAllowed(email) {
		return nil, errDomainNotAllowed
	}
	m := &models.WorkspaceMember{
		WorkspaceID: access.Workspace.ID,
		Email:       email,
		FullName:    name,
	}
	if existing != nil {
		m.Role = existing.Role
	}
	if err := h.members.FindOrCreate(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}
