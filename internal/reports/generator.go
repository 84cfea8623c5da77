package reports

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teampulse/backend/internal/analysis"
	"github.com/teampulse/backend/internal/models"
	"github.com/teampulse/backend/internal/period"
)

// ErrNoSubmissions is the generator's only hard failure: a period with no
// submissions produces no report.
var ErrNoSubmissions = errors.New("no submissions for period")

// SubmissionSource supplies a period's merged submission set.
type SubmissionSource interface {
	ListForPeriod(ctx context.Context, workspaceID uuid.UUID, p period.Period) ([]models.Submission, error)
}

// MemberCounter supplies the active member count for the submission-rate
// metric.
type MemberCounter interface {
	CountActive(ctx context.Context, workspaceID uuid.UUID) (int, error)
}

// ReportStore persists generated reports.
type ReportStore interface {
	Upsert(ctx context.Context, rep *models.Report) error
}

// Archiver optionally copies rendered documents to object storage.
type Archiver interface {
	ArchiveReport(ctx context.Context, workspaceID string, week, year int, content string) (string, error)
}

// Generator aggregates a workspace-period's submissions into a persisted
// report document.
type Generator struct {
	subs     SubmissionSource
	members  MemberCounter
	analyzer analysis.Analyzer
	store    ReportStore
	archive  Archiver
	logger   *zap.Logger
}

// NewGenerator creates a report generator. archive may be nil.
func NewGenerator(subs SubmissionSource, members MemberCounter, analyzer analysis.Analyzer, store ReportStore, archive Archiver, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{subs: subs, members: members, analyzer: analyzer, store: store, archive: archive, logger: logger}
}

// Generate builds, renders and persists the report for one workspace-period.
// Analysis-backend failures degrade to the deterministic fallback inside the
// analyzer; ErrNoSubmissions is the only failure that stops generation
// without touching the stored report.
func (g *Generator) Generate(ctx context.Context, ws *models.Workspace, p period.Period, generatedBy string) (*models.Report, error) {
	subs, err := g.subs.ListForPeriod(ctx, ws.ID, p)
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return nil, ErrNoSubmissions
	}
	memberCount, err := g.members.CountActive(ctx, ws.ID)
	if err != nil {
		return nil, err
	}

	req := analysis.Request{
		WorkspaceName: ws.Name,
		MemberCount:   memberCount,
		Submissions:   toInputs(subs),
	}
	a, err := g.analyzer.Analyze(ctx, req)
	if err != nil {
		// Only reachable with an analyzer that is not failover-wrapped.
		return nil, err
	}
	a.Risks = analysis.FilterRisks(a.Risks)

	rep := &models.Report{
		WorkspaceID: ws.ID,
		Week:        p.Week,
		Year:        p.Year,
		Content:     Render(a, ws.Name, p),
		Format:      "markdown",
		GeneratedBy: generatedBy,
	}
	if err := g.store.Upsert(ctx, rep); err != nil {
		return nil, err
	}

	if g.archive != nil {
		if _, err := g.archive.ArchiveReport(ctx, ws.ID.String(), p.Week, p.Year, rep.Content); err != nil {
			g.logger.Warn("report archive failed", zap.Error(err), zap.String("workspace_id", ws.ID.String()))
		}
	}

	g.logger.Info("report generated",
		zap.String("workspace_id", ws.ID.String()),
		zap.String("period", p.String()),
		zap.Int("submissions", len(subs)),
	)
	return rep, nil
}

func toInputs(subs []models.Submission) []analysis.SubmissionInput {
	inputs := make([]analysis.SubmissionInput, 0, len(subs))
	for _, s := range subs {
		name := s.MemberName
		if name == "" {
			name = s.MemberEmail
		}
		inputs = append(inputs, analysis.SubmissionInput{
			MemberName:       name,
			Accomplishments:  s.Accomplishments,
			PriorityProgress: s.PriorityProgress,
			Blockers:         s.Blockers,
			Priorities:       s.Priorities,
			Shoutouts:        s.Shoutouts,
		})
	}
	return inputs
}
