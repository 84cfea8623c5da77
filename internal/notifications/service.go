package notifications

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teampulse/backend/internal/models"
	"github.com/teampulse/backend/internal/period"
)

// LogStore records send attempts. Satisfied by *Repository.
type LogStore interface {
	Record(ctx context.Context, log *models.EmailLog) error
}

// MemberLister supplies a workspace's active members for the prompt batch.
type MemberLister interface {
	ListActive(ctx context.Context, workspaceID uuid.UUID) ([]*models.WorkspaceMember, error)
}

// StatusSource supplies the weekly status for reminder targeting.
type StatusSource interface {
	WeeklyStatus(ctx context.Context, workspaceID uuid.UUID, p period.Period) (*models.WeeklyStatus, error)
}

// BatchResult counts a batch's outcome. Every recipient is attempted; one
// failure never aborts the rest.
type BatchResult struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// Service runs the notification batches and single sends, logging every
// attempt.
type Service struct {
	sender  Sender
	logs    LogStore
	members MemberLister
	status  StatusSource
	formURL string
	logger  *zap.Logger
}

// NewService creates the notification service.
func NewService(sender Sender, logs LogStore, members MemberLister, status StatusSource, formURL string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{sender: sender, logs: logs, members: members, status: status, formURL: formURL, logger: logger}
}

// recipient is the slice of a member the send unit needs.
type recipient struct {
	memberID uuid.UUID
	email    string
	fullName string
}

// SendPrompt mails every active member the check-in prompt. tmpl overrides
// the default template when non-nil.
func (s *Service) SendPrompt(ctx context.Context, ws *models.Workspace, tmpl *Template) (BatchResult, error) {
	members, err := s.members.ListActive(ctx, ws.ID)
	if err != nil {
		return BatchResult{}, err
	}
	var recipients []recipient
	for _, m := range members {
		recipients = append(recipients, recipient{memberID: m.ID, email: m.Email, fullName: m.FullName})
	}
	return s.sendBatch(ctx, ws, models.EmailTypePrompt, tmpl, recipients), nil
}

// SendReminder mails only the members with no submission for the period.
func (s *Service) SendReminder(ctx context.Context, ws *models.Workspace, p period.Period, tmpl *Template) (BatchResult, error) {
	status, err := s.status.WeeklyStatus(ctx, ws.ID, p)
	if err != nil {
		return BatchResult{}, err
	}
	var recipients []recipient
	for _, m := range status.Members {
		if m.HasSubmitted {
			continue
		}
		recipients = append(recipients, recipient{memberID: m.MemberID, email: m.Email, fullName: m.FullName})
	}
	return s.sendBatch(ctx, ws, models.EmailTypeReminder, tmpl, recipients), nil
}

// Chase sends one manual follow-up to a single member.
func (s *Service) Chase(ctx context.Context, ws *models.Workspace, member *models.WorkspaceMember, tmpl *Template) error {
	r := recipient{memberID: member.ID, email: member.Email, fullName: member.FullName}
	return s.sendOne(ctx, ws, models.EmailTypeChase, tmpl, r)
}

// ChaseAllPending sends the manual follow-up to every member still pending
// for the period.
func (s *Service) ChaseAllPending(ctx context.Context, ws *models.Workspace, p period.Period, tmpl *Template) (BatchResult, error) {
	status, err := s.status.WeeklyStatus(ctx, ws.ID, p)
	if err != nil {
		return BatchResult{}, err
	}
	var recipients []recipient
	for _, m := range status.Members {
		if m.HasSubmitted {
			continue
		}
		recipients = append(recipients, recipient{memberID: m.MemberID, email: m.Email, fullName: m.FullName})
	}
	return s.sendBatch(ctx, ws, models.EmailTypeBulkChase, tmpl, recipients), nil
}

func (s *Service) sendBatch(ctx context.Context, ws *models.Workspace, emailType string, tmpl *Template, recipients []recipient) BatchResult {
	var result BatchResult
	for _, r := range recipients {
		if err := s.sendOne(ctx, ws, emailType, tmpl, r); err != nil {
			result.Failed++
			continue
		}
		result.Sent++
	}
	s.logger.Info("notification batch finished",
		zap.String("workspace_id", ws.ID.String()),
		zap.String("email_type", emailType),
		zap.Int("sent", result.Sent),
		zap.Int("failed", result.Failed),
	)
	return result
}

// sendOne renders, sends and logs a single message. The log row is written
// for failures too; a log write failure is reported but never masks a
// successful send.
func (s *Service) sendOne(ctx context.Context, ws *models.Workspace, emailType string, tmpl *Template, r recipient) error {
	t := templateFor(emailType)
	if tmpl != nil {
		t = *tmpl
	}
	subject, body := t.Fill(models.FirstNameOf(r.fullName, r.email), s.formURL)

	sendErr := s.sender.Send(ctx, Message{To: r.email, ToName: r.fullName, Subject: subject, Body: body})

	log := &models.EmailLog{
		WorkspaceID:    &ws.ID,
		MemberID:       &r.memberID,
		EmailType:      emailType,
		RecipientEmail: r.email,
		Subject:        subject,
		Status:         models.EmailLogStatusSent,
	}
	if sendErr != nil {
		log.Status = models.EmailLogStatusFailed
		log.ErrorMessage = sendErr.Error()
		s.logger.Warn("email send failed",
			zap.String("recipient", r.email),
			zap.String("email_type", emailType),
			zap.Error(sendErr),
		)
	}
	if err := s.logs.Record(ctx, log); err != nil {
		s.logger.Error("email log write failed", zap.Error(err), zap.String("recipient", r.email))
	}
	return sendErr
}
