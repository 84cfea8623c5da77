package analysis

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func sampleRequest() Request {
	return Request{
		WorkspaceName: "Acme",
		MemberCount:   4,
		Submissions: []SubmissionInput{
			{MemberName: "Ada", Accomplishments: "Shipped the billing revamp\nAlso fixed CI", Shoutouts: "Thanks Grace for the review"},
			{MemberName: "Grace", Accomplishments: "Closed the audit findings", Blockers: "Waiting on legal sign-off"},
			{MemberName: "Linus", PriorityProgress: "Migration 80% done"},
		},
	}
}

func TestFallbackDeterministic(t *testing.T) {
	a := NewFallbackAnalyzer()
	first, err := a.Analyze(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	second, _ := a.Analyze(context.Background(), sampleRequest())
	if !reflect.DeepEqual(first, second) {
		t.Fatal("fallback analysis is not deterministic")
	}
}

func TestFallbackContent(t *testing.T) {
	out, err := NewFallbackAnalyzer().Analyze(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if out.TeamOverview.SubmittedCount != 3 || out.TeamOverview.MemberCount != 4 {
		t.Errorf("team overview = %+v, want 3/4", out.TeamOverview)
	}
	if !strings.Contains(out.ExecutiveSummary, "3 of 4") {
		t.Errorf("executive summary %q does not state the response rate", out.ExecutiveSummary)
	}
	// Highlights are first lines of accomplishments only.
	if len(out.Highlights) != 2 {
		t.Fatalf("highlights = %v, want 2 entries", out.Highlights)
	}
	if strings.Contains(out.Highlights[0], "Also fixed CI") {
		t.Errorf("highlight should be the first line only: %q", out.Highlights[0])
	}
	if len(out.Recognitions) != 1 || out.Recognitions[0].From != "Ada" {
		t.Errorf("recognitions = %+v, want one from Ada", out.Recognitions)
	}
	if len(out.Risks) != 0 {
		t.Errorf("fallback must not flag risks, got %+v", out.Risks)
	}
	if len(out.Trends) != 1 || out.Trends[0].Label != "Submission rate" {
		t.Errorf("trends = %+v, want the single submission-rate trend", out.Trends)
	}
	if len(out.MemberSummaries) != 3 {
		t.Errorf("member summaries = %d, want 3", len(out.MemberSummaries))
	}
}

func TestFallbackHighlightsCapped(t *testing.T) {
	req := Request{MemberCount: 8}
	for i := 0; i < 8; i++ {
		req.Submissions = append(req.Submissions, SubmissionInput{
			MemberName:      "M",
			Accomplishments: "did a thing",
		})
	}
	out, _ := NewFallbackAnalyzer().Analyze(context.Background(), req)
	if len(out.Highlights) != 5 {
		t.Errorf("highlights = %d, want cap of 5", len(out.Highlights))
	}
}

type failingAnalyzer struct{}

func (failingAnalyzer) Analyze(context.Context, Request) (*Analysis, error) {
	return nil, errors.New("backend down")
}

type cannedAnalyzer struct{ out Analysis }

func (c cannedAnalyzer) Analyze(context.Context, Request) (*Analysis, error) {
	out := c.out
	return &out, nil
}

func TestFailoverDegrades(t *testing.T) {
	f := NewFailover(failingAnalyzer{}, zap.NewNop())
	req := sampleRequest()
	out, err := f.Analyze(context.Background(), req)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if out.TeamOverview.SubmittedCount != len(req.Submissions) {
		t.Errorf("submitted count = %d, want %d", out.TeamOverview.SubmittedCount, len(req.Submissions))
	}
}

func TestFailoverNilPrimary(t *testing.T) {
	out, err := NewFailover(nil, nil).Analyze(context.Background(), sampleRequest())
	if err != nil || out == nil {
		t.Fatalf("Analyze = %v, %v", out, err)
	}
}

func TestFailoverFiltersRiskCategories(t *testing.T) {
	canned := cannedAnalyzer{out: Analysis{
		ExecutiveSummary: "ok",
		Risks: []Risk{
			{Category: RiskHealthSafety, Severity: SeverityHigh},
			{Category: "vibes", Severity: SeverityCritical},
			{Category: RiskFinancialBudget, Severity: SeverityLow},
		},
	}}
	out, err := NewFailover(canned, nil).Analyze(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(out.Risks) != 2 {
		t.Fatalf("risks = %+v, want unknown category dropped", out.Risks)
	}
	for _, r := range out.Risks {
		if r.Category == "vibes" {
			t.Fatal("unknown risk category survived filtering")
		}
	}
}
