package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/teampulse/backend/internal/models"
	"github.com/teampulse/backend/pkg/response"
)

type stubVerifier struct {
	identity *VerifiedIdentity
	err      error
}

func (s *stubVerifier) Verify(context.Context, string) (*VerifiedIdentity, error) {
	return s.identity, s.err
}

type stubDirectory struct {
	accessible []*models.Workspace
	created    *models.Workspace
}

func (s *stubDirectory) GetByManagerEmail(context.Context, string) (*models.Workspace, error) {
	return nil, nil
}

func (s *stubDirectory) ListAccessible(context.Context, string) ([]*models.Workspace, error) {
	return s.accessible, nil
}

func (s *stubDirectory) ListActive(context.Context) ([]*models.Workspace, error) {
	return nil, nil
}

func (s *stubDirectory) Create(_ context.Context, w *models.Workspace) error {
	w.ID = uuid.New()
	s.created = w
	return nil
}

func verifyRequest(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/auth/verify", h.Verify)
	req := httptest.NewRequest(http.MethodPost, "/auth/verify", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestVerifyRejectsBadIdentityToken(t *testing.T) {
	h := NewHandler(&stubVerifier{err: errors.New("expired")}, &stubDirectory{},
		NewJWTService("secret", 24), nil, nil)

	rec := verifyRequest(t, h, `{"token":"bad"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestVerifyReturnsSessionAndWorkspaces(t *testing.T) {
	ws := &models.Workspace{ID: uuid.New(), Name: "Platform", ManagerEmail: "dana@acme.com"}
	dir := &stubDirectory{accessible: []*models.Workspace{ws}}
	jwt := NewJWTService("secret", 24)
	h := NewHandler(&stubVerifier{identity: &VerifiedIdentity{Email: "dana@acme.com", Name: "Dana Diaz"}},
		dir, jwt, nil, nil)

	rec := verifyRequest(t, h, `{"token":"good"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Success bool           `json:"success"`
		Data    VerifyResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if !body.Success || body.Data.Token == "" {
		t.Fatalf("expected a session token: %s", rec.Body.String())
	}
	claims, err := jwt.Validate(body.Data.Token)
	if err != nil || claims.Email != "dana@acme.com" {
		t.Fatalf("session token should carry the verified email: %v %v", claims, err)
	}
	if len(body.Data.Workspaces) != 1 || body.Data.Workspaces[0].Name != "Platform" {
		t.Fatalf("expected the accessible workspace: %s", rec.Body.String())
	}
	if dir.created != nil {
		t.Fatal("no workspace should be created when one is accessible")
	}
}

func TestVerifyCreatesWorkspaceForAllowedDomain(t *testing.T) {
	dir := &stubDirectory{}
	h := NewHandler(&stubVerifier{identity: &VerifiedIdentity{Email: "dana@acme.com", Name: "Dana Diaz"}},
		dir, NewJWTService("secret", 24), []string{"acme.com"}, nil)

	rec := verifyRequest(t, h, `{"token":"good"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if dir.created == nil {
		t.Fatal("first sign-in on an allowed domain should create a workspace")
	}
	if dir.created.Name != "Dana's Team" {
		t.Errorf("workspace name = %q", dir.created.Name)
	}
	if len(dir.created.Domains) != 1 || dir.created.Domains[0] != "acme.com" {
		t.Errorf("workspace domains = %v", dir.created.Domains)
	}
}

func TestVerifyRejectsDisallowedSignupDomain(t *testing.T) {
	dir := &stubDirectory{}
	h := NewHandler(&stubVerifier{identity: &VerifiedIdentity{Email: "eve@other.com", Name: "Eve"}},
		dir, NewJWTService("secret", 24), []string{"acme.com"}, nil)

	rec := verifyRequest(t, h, `{"token":"good"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403: %s", rec.Code, rec.Body.String())
	}
	var body response.Body
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Error == nil || body.Error.Code != response.CodeNotAuthorized {
		t.Fatalf("want NOT_AUTHORIZED error code: %s", rec.Body.String())
	}
	if dir.created != nil {
		t.Fatal("no workspace should be created for a disallowed domain")
	}
}
