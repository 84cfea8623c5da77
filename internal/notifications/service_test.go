package notifications

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/teampulse/backend/internal/models"
	"github.com/teampulse/backend/internal/period"
)

type stubSender struct {
	sent    []Message
	failFor string
}

func (s *stubSender) Send(_ context.Context, msg Message) error {
	if msg.To == s.failFor {
		return errors.New("mailbox unavailable")
	}
	s.sent = append(s.sent, msg)
	return nil
}

type memLogStore struct {
	logs []models.EmailLog
}

func (s *memLogStore) Record(_ context.Context, log *models.EmailLog) error {
	s.logs = append(s.logs, *log)
	return nil
}

type stubMembers struct {
	members []*models.WorkspaceMember
}

func (s *stubMembers) ListActive(context.Context, uuid.UUID) ([]*models.WorkspaceMember, error) {
	return s.members, nil
}

type stubStatus struct {
	status *models.WeeklyStatus
}

func (s *stubStatus) WeeklyStatus(context.Context, uuid.UUID, period.Period) (*models.WeeklyStatus, error) {
	return s.status, nil
}

func member(email, name string) *models.WorkspaceMember {
	return &models.WorkspaceMember{ID: uuid.New(), Email: email, FullName: name, Active: true}
}

func TestSendPromptCountsAndLogs(t *testing.T) {
	members := []*models.WorkspaceMember{
		member("a@acme.com", "Ada Allen"),
		member("b@acme.com", "Bo Berg"),
		member("c@acme.com", "Cam Cole"),
		member("d@acme.com", "Dee Dunn"),
		member("e@acme.com", "Eli East"),
	}
	sender := &stubSender{failFor: "c@acme.com"}
	logs := &memLogStore{}
	svc := NewService(sender, logs, &stubMembers{members: members}, nil, "https://app.example.com/checkin", nil)

	ws := &models.Workspace{ID: uuid.New(), Name: "Platform"}
	result, err := svc.SendPrompt(context.Background(), ws, nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.Sent != 4 || result.Failed != 1 {
		t.Fatalf("want {sent:4 failed:1}, got %+v", result)
	}
	if len(logs.logs) != 5 {
		t.Fatalf("want one log row per recipient, got %d", len(logs.logs))
	}

	failed := 0
	for _, l := range logs.logs {
		if l.EmailType != models.EmailTypePrompt {
			t.Errorf("log type = %q, want prompt", l.EmailType)
		}
		if l.Status == models.EmailLogStatusFailed {
			failed++
			if l.RecipientEmail != "c@acme.com" || l.ErrorMessage == "" {
				t.Errorf("failed row should carry recipient and error: %+v", l)
			}
		}
	}
	if failed != 1 {
		t.Fatalf("want exactly one failed log row, got %d", failed)
	}
}

func TestSendReminderTargetsPendingOnly(t *testing.T) {
	status := &models.WeeklyStatus{
		Week: 7, Year: 2026, Total: 3, Submitted: 1, Pending: 2,
		Members: []models.MemberStatus{
			{MemberID: uuid.New(), Email: "done@acme.com", FullName: "Done Dunn", HasSubmitted: true},
			{MemberID: uuid.New(), Email: "late1@acme.com", FullName: "Lena Late"},
			{MemberID: uuid.New(), Email: "late2@acme.com", FullName: "Liam Late"},
		},
	}
	sender := &stubSender{}
	logs := &memLogStore{}
	svc := NewService(sender, logs, nil, &stubStatus{status: status}, "https://app.example.com/checkin", nil)

	ws := &models.Workspace{ID: uuid.New(), Name: "Platform"}
	result, err := svc.SendReminder(context.Background(), ws, period.Period{Week: 7, Year: 2026}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.Sent != 2 || result.Failed != 0 {
		t.Fatalf("want {sent:2 failed:0}, got %+v", result)
	}
	for _, msg := range sender.sent {
		if msg.To == "done@acme.com" {
			t.Fatal("reminder sent to a member who already submitted")
		}
	}
	if len(logs.logs) != 2 {
		t.Fatalf("want 2 log rows, got %d", len(logs.logs))
	}
}

func TestSendUsesTemplateOverride(t *testing.T) {
	sender := &stubSender{}
	logs := &memLogStore{}
	svc := NewService(sender, logs, &stubMembers{members: []*models.WorkspaceMember{
		member("ada@acme.com", "Ada Allen"),
	}}, nil, "https://app.example.com/checkin", nil)

	ws := &models.Workspace{ID: uuid.New(), Name: "Platform"}
	tmpl := &Template{Subject: "Ping {{first_name}}", Body: "Go here: {{form_url}}"}
	if _, err := svc.SendPrompt(context.Background(), ws, tmpl); err != nil {
		t.Fatal(err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("want 1 message, got %d", len(sender.sent))
	}
	msg := sender.sent[0]
	if msg.Subject != "Ping Ada" {
		t.Errorf("subject = %q", msg.Subject)
	}
	if !strings.Contains(msg.Body, "https://app.example.com/checkin") {
		t.Errorf("body missing form url: %q", msg.Body)
	}
}

func TestChaseAllPendingUsesBulkChaseType(t *testing.T) {
	status := &models.WeeklyStatus{
		Members: []models.MemberStatus{
			{MemberID: uuid.New(), Email: "late@acme.com", FullName: "Lena Late"},
		},
	}
	logs := &memLogStore{}
	svc := NewService(&stubSender{}, logs, nil, &stubStatus{status: status}, "https://app.example.com/checkin", nil)

	ws := &models.Workspace{ID: uuid.New(), Name: "Platform"}
	if _, err := svc.ChaseAllPending(context.Background(), ws, period.Period{Week: 7, Year: 2026}, nil); err != nil {
		t.Fatal(err)
	}
	if len(logs.logs) != 1 || logs.logs[0].EmailType != models.EmailTypeBulkChase {
		t.Fatalf("want one bulk_chase log row, got %+v", logs.logs)
	}
}
