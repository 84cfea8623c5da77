package workspaces

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/teampulse/backend/internal/middleware"
	"github.com/teampulse/backend/internal/models"
	"github.com/teampulse/backend/pkg/response"
)

type stubResolver struct {
	access *Access
	err    error
}

func (s *stubResolver) AccessFor(context.Context, uuid.UUID, string) (*Access, error) {
	return s.access, s.err
}

// accessProbe runs RequireAccess inside a real gin route and reports what it
// decided.
func accessProbe(t *testing.T, resolver AccessResolver, managerOnly bool, path string, asAdmin bool) (*httptest.ResponseRecorder, *Access) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	var got *Access
	router := gin.New()
	router.GET("/workspaces/:id", func(c *gin.Context) {
		c.Set(middleware.ContextUserEmail, "user@acme.com")
		if asAdmin {
			c.Set(middleware.ContextIsAdmin, true)
		}
		access, ok := RequireAccess(c, resolver, managerOnly)
		if !ok {
			return
		}
		got = access
		response.OK(c, nil)
	})
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec, got
}

func wsAccess(isManager, isMember bool) *Access {
	return &Access{
		Workspace: &models.Workspace{ID: uuid.New(), Name: "Platform"},
		IsManager: isManager,
		IsMember:  isMember,
	}
}

func TestRequireAccessInvalidID(t *testing.T) {
	rec, _ := accessProbe(t, &stubResolver{}, false, "/workspaces/not-a-uuid", false)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestRequireAccessUnknownWorkspace(t *testing.T) {
	rec, _ := accessProbe(t, &stubResolver{access: nil}, false, "/workspaces/"+uuid.NewString(), false)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestRequireAccessNonMemberForbidden(t *testing.T) {
	rec, _ := accessProbe(t, &stubResolver{access: wsAccess(false, false)}, false, "/workspaces/"+uuid.NewString(), false)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	var body response.Body
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Error == nil || body.Error.Code != response.CodeNotAuthorized {
		t.Fatalf("want NOT_AUTHORIZED code: %s", rec.Body.String())
	}
}

func TestRequireAccessMemberCannotUseManagerRoute(t *testing.T) {
	rec, _ := accessProbe(t, &stubResolver{access: wsAccess(false, true)}, true, "/workspaces/"+uuid.NewString(), false)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestRequireAccessMemberAllowedOnMemberRoute(t *testing.T) {
	rec, got := accessProbe(t, &stubResolver{access: wsAccess(false, true)}, false, "/workspaces/"+uuid.NewString(), false)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got == nil || got.IsManager {
		t.Fatal("member access should pass through unchanged")
	}
}

func TestRequireAccessAdminKeyGrantsManager(t *testing.T) {
	rec, got := accessProbe(t, &stubResolver{access: wsAccess(false, false)}, true, "/workspaces/"+uuid.NewString(), true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got == nil || !got.IsManager {
		t.Fatal("admin key should grant manager access")
	}
}

type stubStore struct {
	Store
	access  *Access
	domains []string
	status  string
}

func (s *stubStore) AccessFor(context.Context, uuid.UUID, string) (*Access, error) {
	return s.access, nil
}

func (s *stubStore) UpdateDomains(_ context.Context, _ uuid.UUID, domains []string) error {
	s.domains = domains
	return nil
}

func (s *stubStore) SetStatus(_ context.Context, _ uuid.UUID, status string) error {
	s.status = status
	return nil
}

func updateWorkspace(t *testing.T, store *stubStore, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := NewHandler(store, nil)
	router := gin.New()
	router.PUT("/workspaces/:id", func(c *gin.Context) {
		c.Set(middleware.ContextUserEmail, "user@acme.com")
		h.Update(c)
	})
	req := httptest.NewRequest(http.MethodPut, "/workspaces/"+uuid.NewString(), bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestUpdateWorkspaceDomainsAndStatus(t *testing.T) {
	store := &stubStore{access: wsAccess(true, false)}
	rec := updateWorkspace(t, store, `{"domains":[" Acme.COM ","","beta.example"],"status":"inactive"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if len(store.domains) != 2 || store.domains[0] != "acme.com" || store.domains[1] != "beta.example" {
		t.Fatalf("domains not normalized: %v", store.domains)
	}
	if store.status != models.WorkspaceInactive {
		t.Fatalf("status = %q, want inactive", store.status)
	}
}

func TestUpdateWorkspaceRequiresManager(t *testing.T) {
	store := &stubStore{access: wsAccess(false, true)}
	rec := updateWorkspace(t, store, `{"status":"inactive"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if store.status != "" {
		t.Fatal("no mutation should happen for a non-manager")
	}
}

func TestUpdateWorkspaceRejectsUnknownStatus(t *testing.T) {
	store := &stubStore{access: wsAccess(true, false)}
	rec := updateWorkspace(t, store, `{"domains":["acme.com"],"status":"deleted"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if store.domains != nil || store.status != "" {
		t.Fatal("an invalid status should block the whole update")
	}
}

func TestUpdateWorkspaceRequiresSomeField(t *testing.T) {
	store := &stubStore{access: wsAccess(true, false)}
	rec := updateWorkspace(t, store, `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
