package members

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/teampulse/backend/internal/models"
	"github.com/teampulse/backend/internal/workspaces"
	"github.com/teampulse/backend/pkg/response"
)

// Handler handles team member lifecycle HTTP endpoints.
type Handler struct {
	repo       *Repository
	workspaces workspaces.AccessResolver
	logger     *zap.Logger
}

// NewHandler creates a members handler.
func NewHandler(repo *Repository, ws workspaces.AccessResolver, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, workspaces: ws, logger: logger}
}

// List handles GET /workspaces/:id/team.
func (h *Handler) List(c *gin.Context) {
	access, ok := workspaces.RequireAccess(c, h.workspaces, false)
	if !ok {
		return
	}
	list, err := h.repo.List(c.Request.Context(), access.Workspace.ID)
	if err != nil {
		response.Internal(c, "failed to load team")
		return
	}
	if list == nil {
		list = []*models.WorkspaceMember{}
	}
	response.OK(c, list)
}

// AddMemberRequest is the body for POST /workspaces/:id/team.
type AddMemberRequest struct {
	Email    string `json:"email" binding:"required,email"`
	FullName string `json:"full_name" binding:"required"`
	Role     string `json:"role"`
}

// Add handles POST /workspaces/:id/team. Manager only; the email's domain
// must be in the workspace allow-list.
func (h *Handler) Add(c *gin.Context) {
	access, ok := workspaces.RequireAccess(c, h.workspaces, true)
	if !ok {
		return
	}
	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeMissingFields, "email and full_name are required")
		return
	}
	role := models.MemberRoleMember
	switch req.Role {
	case "", models.MemberRoleMember:
	case models.MemberRoleAdmin:
		role = models.MemberRoleAdmin
	default:
		response.BadRequest(c, response.CodeMissingFields, "role must be member or admin")
		return
	}
	if !access.Workspace.DomainAllowed(req.Email) {
		response.BadRequest(c, response.CodeInvalidDomain, "email domain is not in the workspace allow-list")
		return
	}

	member := &models.WorkspaceMember{
		WorkspaceID: access.Workspace.ID,
		Email:       req.Email,
		FullName:    req.FullName,
		Role:        role,
	}
	if err := h.repo.Add(c.Request.Context(), member); err != nil {
		if errors.Is(err, ErrMemberExists) {
			response.Conflict(c, response.CodeMemberExists, "member already exists in this workspace")
			return
		}
		h.logger.Error("add member failed", zap.Error(err), zap.String("workspace_id", access.Workspace.ID.String()))
		response.Internal(c, "failed to add member")
		return
	}
	response.Created(c, member)
}

// UpdateMemberRequest is the body for PUT /workspaces/:id/team/:memberId.
type UpdateMemberRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Role     string `json:"role" binding:"required"`
	Active   *bool  `json:"active" binding:"required"`
}

// Update handles PUT /workspaces/:id/team/:memberId. Manager only.
func (h *Handler) Update(c *gin.Context) {
	access, ok := workspaces.RequireAccess(c, h.workspaces, true)
	if !ok {
		return
	}
	memberID, err := uuid.Parse(c.Param("memberId"))
	if err != nil {
		response.BadRequest(c, response.CodeMissingFields, "invalid member id")
		return
	}
	var req UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeMissingFields, "full_name, role and active are required")
		return
	}
	if req.Role != models.MemberRoleMember && req.Role != models.MemberRoleAdmin {
		response.BadRequest(c, response.CodeMissingFields, "role must be member or admin")
		return
	}

	member, err := h.repo.GetByID(c.Request.Context(), access.Workspace.ID, memberID)
	if err != nil {
		response.Internal(c, "failed to load member")
		return
	}
	if member == nil {
		response.NotFound(c, "member not found")
		return
	}
	member.FullName = req.FullName
	member.Role = req.Role
	member.Active = *req.Active
	if err := h.repo.Update(c.Request.Context(), member); err != nil {
		h.logger.Error("update member failed", zap.Error(err), zap.String("member_id", memberID.String()))
		response.Internal(c, "failed to update member")
		return
	}
	response.OK(c, member)
}

// Deactivate handles DELETE /workspaces/:id/team/:memberId. Soft delete:
// the member's submission history is untouched. Manager only.
func (h *Handler) Deactivate(c *gin.Context) {
	access, ok := workspaces.RequireAccess(c, h.workspaces, true)
	if !ok {
		return
	}
	memberID, err := uuid.Parse(c.Param("memberId"))
	if err != nil {
		response.BadRequest(c, response.CodeMissingFields, "invalid member id")
		return
	}
	if err := h.repo.Deactivate(c.Request.Context(), access.Workspace.ID, memberID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "member not found")
			return
		}
		response.Internal(c, "failed to deactivate member")
		return
	}
	response.NoContent(c)
}
