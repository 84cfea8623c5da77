package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/teampulse/backend/internal/models"
	"github.com/teampulse/backend/internal/notifications"
	"github.com/teampulse/backend/internal/period"
)

type stubLister struct {
	list []*models.Workspace
	err  error
}

func (s *stubLister) ListActive(context.Context) ([]*models.Workspace, error) {
	return s.list, s.err
}

type stubNotifier struct {
	prompted  []uuid.UUID
	reminded  []uuid.UUID
	failForID uuid.UUID
}

func (s *stubNotifier) SendPrompt(_ context.Context, ws *models.Workspace, _ *notifications.Template) (notifications.BatchResult, error) {
	if ws.ID == s.failForID {
		return notifications.BatchResult{}, errors.New("smtp down")
	}
	s.prompted = append(s.prompted, ws.ID)
	return notifications.BatchResult{Sent: 1}, nil
}

func (s *stubNotifier) SendReminder(_ context.Context, ws *models.Workspace, _ period.Period, _ *notifications.Template) (notifications.BatchResult, error) {
	s.reminded = append(s.reminded, ws.ID)
	return notifications.BatchResult{Sent: 1}, nil
}

func newTestScheduler(t *testing.T, lister WorkspaceLister, notifier Notifier) *Scheduler {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatal(err)
	}
	clock := period.NewClockAt(loc, func() time.Time {
		return time.Date(2026, 2, 10, 9, 0, 0, 0, loc)
	})
	return New(loc, lister, notifier, clock, nil)
}

func TestPromptCycleSkipsFailedWorkspace(t *testing.T) {
	a := &models.Workspace{ID: uuid.New(), Name: "A"}
	b := &models.Workspace{ID: uuid.New(), Name: "B"}
	c := &models.Workspace{ID: uuid.New(), Name: "C"}
	notifier := &stubNotifier{failForID: b.ID}
	s := newTestScheduler(t, &stubLister{list: []*models.Workspace{a, b, c}}, notifier)

	s.runPrompts()

	if len(notifier.prompted) != 2 {
		t.Fatalf("want 2 workspaces prompted, got %d", len(notifier.prompted))
	}
	if notifier.prompted[0] != a.ID || notifier.prompted[1] != c.ID {
		t.Fatal("the failing workspace should be skipped, the rest still run")
	}
}

func TestReminderCycleCoversAllActive(t *testing.T) {
	a := &models.Workspace{ID: uuid.New(), Name: "A"}
	b := &models.Workspace{ID: uuid.New(), Name: "B"}
	notifier := &stubNotifier{}
	s := newTestScheduler(t, &stubLister{list: []*models.Workspace{a, b}}, notifier)

	s.runReminders()

	if len(notifier.reminded) != 2 {
		t.Fatalf("want 2 workspaces reminded, got %d", len(notifier.reminded))
	}
}

func TestRegisterRejectsBadSpec(t *testing.T) {
	s := newTestScheduler(t, &stubLister{}, &stubNotifier{})
	if err := s.Register("not a cron spec", "0 14 * * THU"); err == nil {
		t.Fatal("want error for invalid cron expression")
	}
	if err := s.Register("0 9 * * MON", "0 14 * * THU"); err != nil {
		t.Fatalf("valid specs should register: %v", err)
	}
}
