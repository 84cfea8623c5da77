package reports

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/teampulse/backend/internal/middleware"
	"github.com/teampulse/backend/internal/models"
	"github.com/teampulse/backend/internal/period"
	"github.com/teampulse/backend/internal/workspaces"
	"github.com/teampulse/backend/pkg/response"
)

// Handler handles report HTTP endpoints.
type Handler struct {
	generator  *Generator
	repo       *Repository
	workspaces workspaces.AccessResolver
	clock      *period.Clock
	logger     *zap.Logger
}

// NewHandler creates a reports handler.
func NewHandler(generator *Generator, repo *Repository, ws workspaces.AccessResolver, clock *period.Clock, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{generator: generator, repo: repo, workspaces: ws, clock: clock, logger: logger}
}

// GenerateRequest is the body for POST /workspaces/:id/report. Week and year
// default to the current period.
type GenerateRequest struct {
	Week int `json:"week"`
	Year int `json:"year"`
}

// Generate handles POST /workspaces/:id/report. Manager only.
func (h *Handler) Generate(c *gin.Context) {
	access, ok := workspaces.RequireAccess(c, h.workspaces, true)
	if !ok {
		return
	}
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		response.BadRequest(c, response.CodeInvalidPeriod, "week and year must be numbers")
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

	generatedBy := middleware.UserEmail(c)
	if generatedBy == "" {
		generatedBy = "admin"
	}
	rep, err := h.generator.Generate(c.Request.Context(), access.Workspace, p, generatedBy)
	if err != nil {
		if errors.Is(err, ErrNoSubmissions) {
			response.BadRequest(c, response.CodeNoSubmissions, "no submissions to report on for this period")
			return
		}
		h.logger.Error("report generation failed", zap.Error(err),
			zap.String("workspace_id", access.Workspace.ID.String()),
			zap.String("period", p.String()),
		)
		response.Internal(c, "failed to generate report")
		return
	}
	response.OK(c, rep)
}

// List handles GET /workspaces/:id/reports.
func (h *Handler) List(c *gin.Context) {
	access, ok := workspaces.RequireAccess(c, h.workspaces, false)
	if !ok {
		return
	}
	list, err := h.repo.List(c.Request.Context(), access.Workspace.ID)
	if err != nil {
		response.Internal(c, "failed to load reports")
		return
	}
	if list == nil {
		list = []*models.Report{}
	}
	response.OK(c, list)
}

// Get handles GET /workspaces/:id/reports/:week/:year.
func (h *Handler) Get(c *gin.Context) {
	access, ok := workspaces.RequireAccess(c, h.workspaces, false)
	if !ok {
		return
	}
	week, errW := strconv.Atoi(c.Param("week"))
	year, errY := strconv.Atoi(c.Param("year"))
	if errW != nil || errY != nil {
		response.BadRequest(c, response.CodeInvalidPeriod, "week and year must be numbers")
		return
	}
	p := period.Period{Week: week, Year: year}
	if !p.Valid() {
		response.BadRequest(c, response.CodeInvalidPeriod, "period outside valid week/year range")
		return
	}
	rep, err := h.repo.GetByPeriod(c.Request.Context(), access.Workspace.ID, p)
	if err != nil {
		response.Internal(c, "failed to load report")
		return
	}
	if rep == nil {
		response.NotFound(c, "no report for this period")
		return
	}
	response.OK(c, rep)
}
