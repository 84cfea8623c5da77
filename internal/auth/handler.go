package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/teampulse/backend/internal/models"
	"github.com/teampulse/backend/pkg/response"
)

// ErrDomainNotAllowed rejects sign-ups from domains outside the allow-list.
var ErrDomainNotAllowed = errors.New("email domain not allowed")

// WorkspaceDirectory is the slice of the tenant registry the auth flow needs.
type WorkspaceDirectory interface {
	GetByManagerEmail(ctx context.Context, email string) (*models.Workspace, error)
	ListAccessible(ctx context.Context, email string) ([]*models.Workspace, error)
	ListActive(ctx context.Context) ([]*models.Workspace, error)
	Create(ctx context.Context, w *models.Workspace) error
}

// VerifyRequest is the body for POST /auth/verify.
type VerifyRequest struct {
	Token string `json:"token" binding:"required"`
}

// VerifiedUser is the identity slice returned to the client.
type VerifiedUser struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// VerifyResponse carries the session token and accessible workspaces.
type VerifyResponse struct {
	Token      string              `json:"token"`
	User       VerifiedUser        `json:"user"`
	Workspaces []*models.Workspace `json:"workspaces"`
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	verifier      TokenVerifier
	dir           WorkspaceDirectory
	jwt           *JWTService
	signupDomains []string
	logger        *zap.Logger
}

// NewHandler creates an auth handler. signupDomains is the global allow-list
// for first-sign-in workspace creation.
func NewHandler(verifier TokenVerifier, dir WorkspaceDirectory, jwt *JWTService, signupDomains []string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{verifier: verifier, dir: dir, jwt: jwt, signupDomains: signupDomains, logger: logger}
}

// Verify handles POST /auth/verify: exchanges an identity token for a
// verified user, a session JWT and the user's accessible workspaces. A
// verified sign-in with no existing workspace creates one when the email's
// domain is on the signup allow-list.
func (h *Handler) Verify(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeMissingFields, "token required")
		return
	}

	identity, err := h.verifier.Verify(c.Request.Context(), req.Token)
	if err != nil {
		h.logger.Warn("identity verification failed", zap.Error(err))
		response.Unauthorized(c, "identity token could not be verified")
		return
	}

	workspaces, err := h.resolveWorkspaces(c.Request.Context(), identity)
	if err != nil {
		if errors.Is(err, ErrDomainNotAllowed) {
			response.Forbidden(c, "your email domain is not permitted to sign up")
			return
		}
		h.logger.Error("resolve workspaces failed", zap.String("email", identity.Email), zap.Error(err))
		response.Internal(c, "failed to resolve workspaces")
		return
	}

	token, err := h.jwt.Generate(identity.Email, identity.Name)
	if err != nil {
		response.Internal(c, "failed to generate session token")
		return
	}
	response.OK(c, VerifyResponse{
		Token:      token,
		User:       VerifiedUser{Email: identity.Email, Name: identity.Name},
		Workspaces: workspaces,
	})
}

// resolveWorkspaces implements resolve-or-create: an existing manager gets
// their workspace, a member gets their memberships, and a verified identity
// with neither gets a new workspace when the signup allow-list admits their
// domain.
func (h *Handler) resolveWorkspaces(ctx context.Context, identity *VerifiedIdentity) ([]*models.Workspace, error) {
	accessible, err := h.dir.ListAccessible(ctx, identity.Email)
	if err != nil {
		return nil, err
	}
	if len(accessible) > 0 {
		return accessible, nil
	}

	if !models.DomainInList(identity.Email, h.signupDomains) {
		return nil, ErrDomainNotAllowed
	}
	ws := &models.Workspace{
		Name:         defaultWorkspaceName(identity),
		ManagerEmail: identity.Email,
		ManagerName:  identity.Name,
		Domains:      []string{emailDomain(identity.Email)},
	}
	if err := h.dir.Create(ctx, ws); err != nil {
		return nil, err
	}
	h.logger.Info("workspace created on first sign-in",
		zap.String("workspace_id", ws.ID.String()),
		zap.String("manager", identity.Email),
	)
	return []*models.Workspace{ws}, nil
}

func defaultWorkspaceName(identity *VerifiedIdentity) string {
	first := models.FirstNameOf(identity.Name, identity.Email)
	return first + "'s Team"
}

func emailDomain(email string) string {
	if i := strings.LastIndex(email, "@"); i >= 0 {
		return strings.ToLower(email[i+1:])
	}
	return ""
}
