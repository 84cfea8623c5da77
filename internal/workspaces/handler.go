package workspaces

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teampulse/backend/internal/middleware"
	"github.com/teampulse/backend/internal/models"
	"github.com/teampulse/backend/pkg/response"
)

// AccessResolver resolves the caller's relationship to a workspace. Satisfied
// by *Repository; narrowed for tests.
type AccessResolver interface {
	AccessFor(ctx context.Context, workspaceID uuid.UUID, email string) (*Access, error)
}

// Store is the repository surface the handler uses. Satisfied by *Repository.
type Store interface {
	AccessResolver
	ListActive(ctx context.Context) ([]*models.Workspace, error)
	ListAccessible(ctx context.Context, email string) ([]*models.Workspace, error)
	GetSettings(ctx context.Context, workspaceID uuid.UUID) (*models.WorkspaceSettings, error)
	UpdateSettings(ctx context.Context, s *models.WorkspaceSettings) error
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
	UpdateDomains(ctx context.Context, id uuid.UUID, domains []string) error
}

// Handler handles workspace-level HTTP endpoints (settings, listing,
// lifecycle).
type Handler struct {
	repo   Store
	logger *zap.Logger
}

// NewHandler creates a workspaces handler.
func NewHandler(repo Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// List handles GET /workspaces. Super-admin requests see every active
// workspace; everyone else sees workspaces they manage or belong to.
func (h *Handler) List(c *gin.Context) {
	if middleware.IsAdmin(c) {
		list, err := h.repo.ListActive(c.Request.Context())
		if err != nil {
			response.Internal(c, "failed to list workspaces")
			return
		}
		response.OK(c, list)
		return
	}
	list, err := h.repo.ListAccessible(c.Request.Context(), middleware.UserEmail(c))
	if err != nil {
		response.Internal(c, "failed to list workspaces")
		return
	}
	response.OK(c, list)
}

// UpdateRequest is the body for PUT /workspaces/:id. At least one field must
// be present.
type UpdateRequest struct {
	Domains []string `json:"domains"`
	Status  string   `json:"status"`
}

// Update handles PUT /workspaces/:id: domain allow-list edits and the
// active/inactive lifecycle flip. Manager only; workspaces are never
// hard-deleted.
func (h *Handler) Update(c *gin.Context) {
	access, ok := RequireAccess(c, h.repo, true)
	if !ok {
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeMissingFields, "domains or status required")
		return
	}
	if req.Domains == nil && req.Status == "" {
		response.BadRequest(c, response.CodeMissingFields, "domains or status required")
		return
	}
	if req.Status != "" && req.Status != models.WorkspaceActive && req.Status != models.WorkspaceInactive {
		response.BadRequest(c, response.CodeMissingFields, "status must be active or inactive")
		return
	}

	ws := access.Workspace
	if req.Domains != nil {
		domains := make([]string, 0, len(req.Domains))
		for _, d := range req.Domains {
			if d = strings.ToLower(strings.TrimSpace(d)); d != "" {
				domains = append(domains, d)
			}
		}
		if err := h.repo.UpdateDomains(c.Request.Context(), ws.ID, domains); err != nil {
			h.logger.Error("update domains failed", zap.Error(err), zap.String("workspace_id", ws.ID.String()))
			response.Internal(c, "failed to update domains")
			return
		}
		ws.Domains = domains
	}
	if req.Status != "" {
		if err := h.repo.SetStatus(c.Request.Context(), ws.ID, req.Status); err != nil {
			h.logger.Error("set status failed", zap.Error(err), zap.String("workspace_id", ws.ID.String()))
			response.Internal(c, "failed to update status")
			return
		}
		ws.Status = req.Status
	}
	response.OK(c, ws)
}

// GetSettings handles GET /workspaces/:id/settings.
func (h *Handler) GetSettings(c *gin.Context) {
	access, ok := RequireAccess(c, h.repo, false)
	if !ok {
		return
	}
	settings, err := h.repo.GetSettings(c.Request.Context(), access.Workspace.ID)
	if err != nil {
		response.Internal(c, "failed to load settings")
		return
	}
	if settings == nil {
		response.NotFound(c, "settings not found")
		return
	}
	response.OK(c, settings)
}

// UpdateSettingsRequest is the body for PUT /workspaces/:id/settings.
type UpdateSettingsRequest struct {
	PromptDay    string `json:"prompt_day" binding:"required"`
	PromptTime   string `json:"prompt_time" binding:"required"`
	ReminderDay  string `json:"reminder_day" binding:"required"`
	ReminderTime string `json:"reminder_time" binding:"required"`
	SenderName   string `json:"sender_name" binding:"required"`
}

// UpdateSettings handles PUT /workspaces/:id/settings. Manager only.
func (h *Handler) UpdateSettings(c *gin.Context) {
	access, ok := RequireAccess(c, h.repo, true)
	if !ok {
		return
	}
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeMissingFields, "all settings fields are required")
		return
	}
	settings := &models.WorkspaceSettings{
		WorkspaceID:  access.Workspace.ID,
		PromptDay:    strings.ToLower(strings.TrimSpace(req.PromptDay)),
		PromptTime:   strings.TrimSpace(req.PromptTime),
		ReminderDay:  strings.ToLower(strings.TrimSpace(req.ReminderDay)),
		ReminderTime: strings.TrimSpace(req.ReminderTime),
		SenderName:   strings.TrimSpace(req.SenderName),
	}
	if err := h.repo.UpdateSettings(c.Request.Context(), settings); err != nil {
		h.logger.Error("update settings failed", zap.Error(err), zap.String("workspace_id", access.Workspace.ID.String()))
		response.Internal(c, "failed to update settings")
		return
	}
	response.OK(c, settings)
}

// ResolveAccess parses the :id param and resolves the caller's relationship
// to the workspace without enforcing membership. It writes the error response
// itself on a bad id, a missing workspace, or a resolver failure. The
// super-admin key is mapped to manager access. Callers that admit
// non-members (lazy onboarding at submission time) gate on the result
// themselves.
func ResolveAccess(c *gin.Context, resolver AccessResolver) (*Access, bool) {
	workspaceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, response.CodeMissingFields, "invalid workspace id")
		return nil, false
	}
	access, err := resolver.AccessFor(c.Request.Context(), workspaceID, middleware.UserEmail(c))
	if err != nil {
		response.Internal(c, "failed to resolve workspace access")
		return nil, false
	}
	if access == nil {
		response.NotFound(c, "workspace not found")
		return nil, false
	}
	if middleware.IsAdmin(c) {
		access.IsManager = true
	}
	return access, true
}

// RequireAccess resolves access like ResolveAccess and additionally rejects
// callers with no standing in the workspace. managerOnly restricts to the
// workspace manager; the super-admin key always passes.
func RequireAccess(c *gin.Context, resolver AccessResolver, managerOnly bool) (*Access, bool) {
	access, ok := ResolveAccess(c, resolver)
	if !ok {
		return nil, false
	}
	if managerOnly && !access.IsManager {
		response.Forbidden(c, "manager access required")
		return nil, false
	}
	if !access.IsManager && !access.IsMember {
		response.Forbidden(c, "not a member of this workspace")
		return nil, false
	}
	return access, true
}
