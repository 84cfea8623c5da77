package notifications

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teampulse/backend/internal/models"
	"github.com/teampulse/backend/internal/period"
	"github.com/teampulse/backend/internal/workspaces"
	"github.com/teampulse/backend/pkg/response"
)

// WorkspaceSource resolves the target workspace for manual sends.
type WorkspaceSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Workspace, error)
}

// MemberSource resolves the target member for a single chase.
type MemberSource interface {
	GetByID(ctx context.Context, workspaceID, memberID uuid.UUID) (*models.WorkspaceMember, error)
}

// Handler handles notification HTTP endpoints.
type Handler struct {
	service    *Service
	repo       *Repository
	workspaces WorkspaceSource
	members    MemberSource
	access     workspaces.AccessResolver
	clock      *period.Clock
	logger     *zap.Logger
}

// NewHandler creates a notifications handler.
func NewHandler(service *Service, repo *Repository, ws WorkspaceSource, members MemberSource, access workspaces.AccessResolver, clock *period.Clock, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, repo: repo, workspaces: ws, members: members, access: access, clock: clock, logger: logger}
}

// SendRequest is the body for POST /admin/email/send.
type SendRequest struct {
	WorkspaceID string    `json:"workspace_id" binding:"required"`
	Type        string    `json:"type" binding:"required"`
	MemberID    string    `json:"member_id"`
	Template    *Template `json:"template"`
}

// Send handles POST /admin/email/send: a manual prompt, reminder, chase or
// bulk chase run. Admin key required at the route level.
func (h *Handler) Send(c *gin.Context) {
	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeMissingFields, "workspace_id and type are required")
		return
	}
	workspaceID, err := uuid.Parse(req.WorkspaceID)
	if err != nil {
		response.BadRequest(c, response.CodeMissingFields, "invalid workspace id")
		return
	}
	ws, err := h.workspaces.GetByID(c.Request.Context(), workspaceID)
	if err != nil {
		response.Internal(c, "failed to load workspace")
		return
	}
	if ws == nil {
		response.NotFound(c, "workspace not found")
		return
	}

	ctx := c.Request.Context()
	switch req.Type {
	case models.EmailTypePrompt:
		result, err := h.service.SendPrompt(ctx, ws, req.Template)
		if err != nil {
			response.Internal(c, "prompt batch failed")
			return
		}
		response.OK(c, result)
	case models.EmailTypeReminder:
		result, err := h.service.SendReminder(ctx, ws, h.clock.Current(), req.Template)
		if err != nil {
			response.Internal(c, "reminder batch failed")
			return
		}
		response.OK(c, result)
	case models.EmailTypeBulkChase:
		result, err := h.service.ChaseAllPending(ctx, ws, h.clock.Current(), req.Template)
		if err != nil {
			response.Internal(c, "chase batch failed")
			return
		}
		response.OK(c, result)
	case models.EmailTypeChase:
		memberID, err := uuid.Parse(req.MemberID)
		if err != nil {
			response.BadRequest(c, response.CodeMissingFields, "member_id is required for a chase")
			return
		}
		member, err := h.members.GetByID(ctx, ws.ID, memberID)
		if err != nil {
			response.Internal(c, "failed to load member")
			return
		}
		if member == nil {
			response.NotFound(c, "member not found")
			return
		}
		if err := h.service.Chase(ctx, ws, member, req.Template); err != nil {
			response.OK(c, BatchResult{Sent: 0, Failed: 1})
			return
		}
		response.OK(c, BatchResult{Sent: 1, Failed: 0})
	default:
		response.BadRequest(c, response.CodeMissingFields, "type must be prompt, reminder, chase or bulk_chase")
	}
}

// ListLogs handles GET /workspaces/:id/emails. Manager only.
func (h *Handler) ListLogs(c *gin.Context) {
	access, ok := workspaces.RequireAccess(c, h.access, true)
	if !ok {
		return
	}
	list, err := h.repo.ListByWorkspace(c.Request.Context(), access.Workspace.ID, 100)
	if err != nil {
		response.Internal(c, "failed to load email log")
		return
	}
	if list == nil {
		list = []*models.EmailLog{}
	}
	response.OK(c, list)
}
