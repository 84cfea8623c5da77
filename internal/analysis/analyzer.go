// Package analysis turns a period's submissions into a structured weekly
// analysis. Two strategies implement the same interface: a remote
// chat-completions backend and a deterministic local fallback; a failover
// wrapper degrades to the fallback on any backend error.
package analysis

import "context"

// Risk categories the system accepts. Anything else a backend returns is
// discarded during post-processing.
const (
	RiskHealthSafety    = "health_safety"
	RiskLegalCompliance = "legal_compliance"
	RiskFinancialBudget = "financial_budget"
)

// Risk severities, highest first.
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
)

// SubmissionInput is one member's answers as seen by an analyzer.
type SubmissionInput struct {
	MemberName       string `json:"member_name"`
	Accomplishments  string `json:"accomplishments"`
	PriorityProgress string `json:"priority_progress"`
	Blockers         string `json:"blockers"`
	Priorities       string `json:"priorities"`
	Shoutouts        string `json:"shoutouts"`
}

// Request carries the full submission set plus workspace context for the
// submission-rate metric.
type Request struct {
	WorkspaceName string
	MemberCount   int
	Submissions   []SubmissionInput
}

// Recognition is one peer shoutout extracted from the submissions.
type Recognition struct {
	From    string `json:"from"`
	Message string `json:"message"`
}

// Risk is one flagged risk, tagged with a fixed category and a severity.
type Risk struct {
	Category    string `json:"category"`
	Severity    string `json:"severity"`
	Member      string `json:"member"`
	Description string `json:"description"`
}

// Trend is one trend indicator across the team's week.
type Trend struct {
	Label     string `json:"label"`
	Direction string `json:"direction"` // up | down | flat
	Detail    string `json:"detail"`
}

// TeamOverview aggregates the week at the team level.
type TeamOverview struct {
	MemberCount    int     `json:"member_count"`
	SubmittedCount int     `json:"submitted_count"`
	SubmissionRate float64 `json:"submission_rate"`
	Sentiment      string  `json:"sentiment"`
}

// MemberSummary is one submitting member's condensed week.
type MemberSummary struct {
	MemberName string `json:"member_name"`
	Summary    string `json:"summary"`
}

// Analysis is the structured result either strategy produces.
type Analysis struct {
	ExecutiveSummary   string          `json:"executive_summary"`
	Highlights         []string        `json:"highlights"`
	Recognitions       []Recognition   `json:"recognitions"`
	Risks              []Risk          `json:"risks"`
	Trends             []Trend         `json:"trends"`
	TeamOverview       TeamOverview    `json:"team_overview"`
	MemberSummaries    []MemberSummary `json:"member_summaries"`
	RecommendedActions []string        `json:"recommended_actions"`
}

// Analyzer is the strategy interface both backends implement.
type Analyzer interface {
	Analyze(ctx context.Context, req Request) (*Analysis, error)
}

// FilterRisks drops risk entries whose category is not one of the three
// fixed values. Defensive filtering against generator drift.
func FilterRisks(risks []Risk) []Risk {
	out := risks[:0:0]
	for _, r := range risks {
		switch r.Category {
		case RiskHealthSafety, RiskLegalCompliance, RiskFinancialBudget:
			out = append(out, r)
		}
	}
	return out
}
