package analysis

import (
	"context"
	"fmt"
	"strings"
)

const maxFallbackHighlights = 5

// FallbackAnalyzer synthesizes an analysis deterministically from the raw
// submissions, with no external calls. It makes no risk judgement and is
// side-effect free: the same input always yields the same output.
type FallbackAnalyzer struct{}

// NewFallbackAnalyzer creates the deterministic local strategy.
func NewFallbackAnalyzer() *FallbackAnalyzer {
	return &FallbackAnalyzer{}
}

// Analyze builds the degraded-mode analysis. It never fails.
func (a *FallbackAnalyzer) Analyze(_ context.Context, req Request) (*Analysis, error) {
	submitted := len(req.Submissions)
	rate := 0.0
	if req.MemberCount > 0 {
		rate = float64(submitted) / float64(req.MemberCount)
	}

	out := &Analysis{
		ExecutiveSummary: fmt.Sprintf(
			"%d of %d members submitted their check-in this week (%.0f%% response rate).",
			submitted, req.MemberCount, rate*100,
		),
		TeamOverview: TeamOverview{
			MemberCount:    req.MemberCount,
			SubmittedCount: submitted,
			SubmissionRate: rate,
			Sentiment:      "not assessed",
		},
		Trends: []Trend{submissionRateTrend(rate)},
		// The fallback makes no risk judgement.
		Risks: []Risk{},
	}

	for _, s := range req.Submissions {
		if h := firstLine(s.Accomplishments); h != "" && len(out.Highlights) < maxFallbackHighlights {
			out.Highlights = append(out.Highlights, fmt.Sprintf("%s: %s", s.MemberName, h))
		}
		if msg := strings.TrimSpace(s.Shoutouts); msg != "" {
			out.Recognitions = append(out.Recognitions, Recognition{From: s.MemberName, Message: msg})
		}
		out.MemberSummaries = append(out.MemberSummaries, MemberSummary{
			MemberName: s.MemberName,
			Summary:    memberExcerpt(s),
		})
	}
	return out, nil
}

func submissionRateTrend(rate float64) Trend {
	direction := "flat"
	detail := fmt.Sprintf("Submission rate this week: %.0f%%.", rate*100)
	switch {
	case rate >= 0.8:
		direction = "up"
	case rate < 0.5:
		direction = "down"
	}
	return Trend{Label: "Submission rate", Direction: direction, Detail: detail}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// memberExcerpt builds a summary from straight field excerpts.
func memberExcerpt(s SubmissionInput) string {
	var parts []string
	if v := firstLine(s.Accomplishments); v != "" {
		parts = append(parts, "Accomplished: "+v)
	}
	if v := firstLine(s.PriorityProgress); v != "" {
		parts = append(parts, "Progress: "+v)
	}
	if v := firstLine(s.Blockers); v != "" {
		parts = append(parts, "Blocked by: "+v)
	}
	if v := firstLine(s.Priorities); v != "" {
		parts = append(parts, "Next: "+v)
	}
	if len(parts) == 0 {
		return "No details provided."
	}
	return strings.Join(parts, " ")
}
