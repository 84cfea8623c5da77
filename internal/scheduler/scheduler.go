// Package scheduler drives the recurring prompt and reminder cycles.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/teampulse/backend/internal/models"
	"github.com/teampulse/backend/internal/notifications"
	"github.com/teampulse/backend/internal/period"
)

// WorkspaceLister supplies the active workspaces a cycle covers.
type WorkspaceLister interface {
	ListActive(ctx context.Context) ([]*models.Workspace, error)
}

// Notifier runs one workspace's batch. Satisfied by *notifications.Service.
type Notifier interface {
	SendPrompt(ctx context.Context, ws *models.Workspace, tmpl *notifications.Template) (notifications.BatchResult, error)
	SendReminder(ctx context.Context, ws *models.Workspace, p period.Period, tmpl *notifications.Template) (notifications.BatchResult, error)
}

// Scheduler registers the prompt and reminder cron entries in the service's
// civil timezone and fans each firing out over every active workspace.
type Scheduler struct {
	cron       *cron.Cron
	workspaces WorkspaceLister
	notifier   Notifier
	clock      *period.Clock
	runTimeout time.Duration
	logger     *zap.Logger
}

// New creates a scheduler. Cron expressions are evaluated in loc.
func New(loc *time.Location, workspaces WorkspaceLister, notifier Notifier, clock *period.Clock, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:       cron.New(cron.WithLocation(loc)),
		workspaces: workspaces,
		notifier:   notifier,
		clock:      clock,
		runTimeout: 10 * time.Minute,
		logger:     logger,
	}
}

// Register adds the prompt and reminder entries.
func (s *Scheduler) Register(promptSpec, reminderSpec string) error {
	if _, err := s.cron.AddFunc(promptSpec, s.runPrompts); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(reminderSpec, s.runReminders); err != nil {
		return err
	}
	return nil
}

// Start begins firing entries on their schedule.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started")
}

// Stop halts scheduling and returns a context that completes when running
// jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) runPrompts() {
	ctx, cancel := context.WithTimeout(context.Background(), s.runTimeout)
	defer cancel()
	s.eachActive(ctx, "prompt", func(ws *models.Workspace) (notifications.BatchResult, error) {
		return s.notifier.SendPrompt(ctx, ws, nil)
	})
}

func (s *Scheduler) runReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), s.runTimeout)
	defer cancel()
	p := s.clock.Current()
	s.eachActive(ctx, "reminder", func(ws *models.Workspace) (notifications.BatchResult, error) {
		return s.notifier.SendReminder(ctx, ws, p, nil)
	})
}

// eachActive runs one workspace batch at a time; a workspace's failure never
// stops the cycle for the rest.
func (s *Scheduler) eachActive(ctx context.Context, cycle string, run func(ws *models.Workspace) (notifications.BatchResult, error)) {
	list, err := s.workspaces.ListActive(ctx)
	if err != nil {
		s.logger.Error("cycle aborted, workspace list failed", zap.String("cycle", cycle), zap.Error(err))
		return
	}
	for _, ws := range list {
		result, err := run(ws)
		if err != nil {
			s.logger.Error("workspace cycle failed",
				zap.String("cycle", cycle),
				zap.String("workspace_id", ws.ID.String()),
				zap.Error(err),
			)
			continue
		}
		s.logger.Info("workspace cycle finished",
			zap.String("cycle", cycle),
			zap.String("workspace_id", ws.ID.String()),
			zap.Int("sent", result.Sent),
			zap.Int("failed", result.Failed),
		)
	}
}
