package submissions

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/teampulse/backend/internal/middleware"
	"github.com/teampulse/backend/internal/models"
	"github.com/teampulse/backend/internal/period"
	"github.com/teampulse/backend/internal/workspaces"
	"github.com/teampulse/backend/pkg/response"
)

func fixedClock(t *testing.T) *period.Clock {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatal(err)
	}
	return period.NewClockAt(loc, func() time.Time {
		return time.Date(2026, 2, 10, 9, 0, 0, 0, loc) // 2026-W07
	})
}

func queryPeriod(t *testing.T, rawQuery string) (period.Period, bool, int) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := NewHandler(nil, nil, nil, fixedClock(t), nil)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/?"+rawQuery, nil)
	p, ok := h.periodFromQuery(c)
	return p, ok, rec.Code
}

func TestPeriodFromQueryDefaultsToCurrent(t *testing.T) {
	p, ok, _ := queryPeriod(t, "")
	if !ok {
		t.Fatal("empty query should be valid")
	}
	if p.Week != 7 || p.Year != 2026 {
		t.Fatalf("got %v, want 2026-W07", p)
	}
}

func TestPeriodFromQueryExplicit(t *testing.T) {
	p, ok, _ := queryPeriod(t, "week=52&year=2025")
	if !ok {
		t.Fatal("explicit period should be valid")
	}
	if p.Week != 52 || p.Year != 2025 {
		t.Fatalf("got %v, want 2025-W52", p)
	}
}

func TestPeriodFromQueryRejectsNonNumeric(t *testing.T) {
	_, ok, code := queryPeriod(t, "week=seven")
	if ok {
		t.Fatal("non-numeric week should be rejected")
	}
	if code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", code)
	}
}

func TestPeriodFromQueryRejectsOutOfRange(t *testing.T) {
	for _, q := range []string{"week=54", "week=0", "year=2019", "year=2101"} {
		if _, ok, _ := queryPeriod(t, q); ok {
			t.Errorf("query %q should be out of range", q)
		}
	}
}

type stubStore struct {
	Store
	upserted []*models.Submission
}

func (s *stubStore) Upsert(_ context.Context, sub *models.Submission) error {
	p := period.Period{Week: sub.Week, Year: sub.Year}
	if !p.Valid() {
		return ErrInvalidPeriod
	}
	sub.ID = uuid.New()
	sub.SubmittedAt = time.Now()
	s.upserted = append(s.upserted, sub)
	return nil
}

type stubMembers struct {
	existing          *models.WorkspaceMember
	findOrCreateCalls int
}

func (s *stubMembers) GetByEmail(_ context.Context, _ uuid.UUID, email string) (*models.WorkspaceMember, error) {
	if s.existing != nil && strings.EqualFold(s.existing.Email, email) {
		return s.existing, nil
	}
	return nil, nil
}

func (s *stubMembers) FindOrCreate(_ context.Context, m *models.WorkspaceMember) error {
	s.findOrCreateCalls++
	if m.ID == (uuid.UUID{}) {
		m.ID = uuid.New()
	}
	m.Active = true
	if m.Role == "" {
		m.Role = models.MemberRoleMember
	}
	return nil
}

type stubAccess struct {
	access *workspaces.Access
}

func (s *stubAccess) AccessFor(context.Context, uuid.UUID, string) (*workspaces.Access, error) {
	return s.access, nil
}

func submitAs(t *testing.T, h *Handler, workspaceID uuid.UUID, email, name, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/workspaces/:id/submissions", func(c *gin.Context) {
		c.Set(middleware.ContextUserEmail, email)
		c.Set(middleware.ContextUserName, name)
		h.Submit(c)
	})
	req := httptest.NewRequest(http.MethodPost, "/workspaces/"+workspaceID.String()+"/submissions", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func submitWorkspace() *workspaces.Access {
	return &workspaces.Access{
		Workspace: &models.Workspace{
			ID:           uuid.New(),
			Name:         "Platform",
			ManagerEmail: "boss@corp.example",
			Domains:      []string{"acme.com"},
		},
	}
}

const checkinBody = `{"accomplishments":"Shipped X","priorities":"Ship Y"}`

func TestSubmitOnboardsNewAllowedDomainMember(t *testing.T) {
	store := &stubStore{}
	members := &stubMembers{}
	access := submitWorkspace()
	h := NewHandler(store, members, &stubAccess{access: access}, fixedClock(t), nil)

	rec := submitAs(t, h, access.Workspace.ID, "newbie@acme.com", "New B", checkinBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if members.findOrCreateCalls != 1 {
		t.Fatalf("FindOrCreate calls = %d, want 1", members.findOrCreateCalls)
	}
	if len(store.upserted) != 1 {
		t.Fatalf("upserts = %d, want 1", len(store.upserted))
	}
	sub := store.upserted[0]
	if sub.MemberID == (uuid.UUID{}) {
		t.Fatal("submission should carry the onboarded member's id")
	}
	if sub.Week != 7 || sub.Year != 2026 {
		t.Fatalf("submission period = %d-W%d, want 2026-W07", sub.Year, sub.Week)
	}
}

func TestSubmitRejectsNonMemberOutsideAllowList(t *testing.T) {
	store := &stubStore{}
	members := &stubMembers{}
	access := submitWorkspace()
	h := NewHandler(store, members, &stubAccess{access: access}, fixedClock(t), nil)

	rec := submitAs(t, h, access.Workspace.ID, "eve@other.com", "Eve", checkinBody)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body.String())
	}
	var body response.Body
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Error == nil || body.Error.Code != response.CodeInvalidDomain {
		t.Fatalf("want INVALID_DOMAIN code: %s", rec.Body.String())
	}
	if members.findOrCreateCalls != 0 || len(store.upserted) != 0 {
		t.Fatal("no member record or submission should be created")
	}
}

func TestSubmitReactivatesSoftDeletedMember(t *testing.T) {
	store := &stubStore{}
	access := submitWorkspace()
	members := &stubMembers{existing: &models.WorkspaceMember{
		ID:          uuid.New(),
		WorkspaceID: access.Workspace.ID,
		Email:       "back@acme.com",
		FullName:    "Billie Back",
		Role:        models.MemberRoleAdmin,
		Active:      false,
	}}
	h := NewHandler(store, members, &stubAccess{access: access}, fixedClock(t), nil)

	rec := submitAs(t, h, access.Workspace.ID, "back@acme.com", "Billie Back", checkinBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if members.findOrCreateCalls != 1 {
		t.Fatalf("soft-deleted member should be reactivated, FindOrCreate calls = %d", members.findOrCreateCalls)
	}
	if len(store.upserted) != 1 {
		t.Fatalf("upserts = %d, want 1", len(store.upserted))
	}
}

func TestSubmitAdmitsManagerOutsideAllowList(t *testing.T) {
	store := &stubStore{}
	members := &stubMembers{}
	access := submitWorkspace()
	access.IsManager = true
	h := NewHandler(store, members, &stubAccess{access: access}, fixedClock(t), nil)

	rec := submitAs(t, h, access.Workspace.ID, "boss@corp.example", "Bo Boss", checkinBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("manager should submit regardless of domain, status = %d: %s", rec.Code, rec.Body.String())
	}
	if members.findOrCreateCalls != 1 {
		t.Fatalf("FindOrCreate calls = %d, want 1", members.findOrCreateCalls)
	}
}
