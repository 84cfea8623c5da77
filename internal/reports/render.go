package reports

import (
	"fmt"
	"strings"

	"github.com/teampulse/backend/internal/analysis"
	"github.com/teampulse/backend/internal/period"
)

var riskCategoryLabels = map[string]string{
	analysis.RiskHealthSafety:    "Health & Safety",
	analysis.RiskLegalCompliance: "Legal / Compliance",
	analysis.RiskFinancialBudget: "Financial / Budget",
}

// Render turns an analysis into the markdown report document. Section order
// is fixed: risk alerts first (critical, then high, then the rest), then
// executive summary, highlights, recognitions, team overview, trends,
// recommended actions, and one section per member.
func Render(a *analysis.Analysis, workspaceName string, p period.Period) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Weekly Report — %s (%s)\n\n", workspaceName, p)

	renderRisks(&b, a.Risks)

	b.WriteString("## Executive Summary\n\n")
	b.WriteString(strings.TrimSpace(a.ExecutiveSummary))
	b.WriteString("\n\n")

	if len(a.Highlights) > 0 {
		b.WriteString("## Highlights\n\n")
		for _, h := range a.Highlights {
			fmt.Fprintf(&b, "- %s\n", h)
		}
		b.WriteString("\n")
	}

	if len(a.Recognitions) > 0 {
		b.WriteString("## Recognitions\n\n")
		for _, r := range a.Recognitions {
			fmt.Fprintf(&b, "- **%s**: %s\n", r.From, r.Message)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Team Overview\n\n")
	b.WriteString("| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Members | %d |\n", a.TeamOverview.MemberCount)
	fmt.Fprintf(&b, "| Submitted | %d |\n", a.TeamOverview.SubmittedCount)
	fmt.Fprintf(&b, "| Submission rate | %.0f%% |\n", a.TeamOverview.SubmissionRate*100)
	fmt.Fprintf(&b, "| Sentiment | %s |\n\n", a.TeamOverview.Sentiment)

	if len(a.Trends) > 0 {
		b.WriteString("## Trends\n\n")
		for _, t := range a.Trends {
			fmt.Fprintf(&b, "- %s (%s): %s\n", t.Label, t.Direction, t.Detail)
		}
		b.WriteString("\n")
	}

	if len(a.RecommendedActions) > 0 {
		b.WriteString("## Recommended Actions\n\n")
		for _, act := range a.RecommendedActions {
			fmt.Fprintf(&b, "- %s\n", act)
		}
		b.WriteString("\n")
	}

	for _, m := range a.MemberSummaries {
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", m.MemberName, strings.TrimSpace(m.Summary))
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

// renderRisks writes risk alerts grouped critical, then high, then the rest.
func renderRisks(b *strings.Builder, risks []analysis.Risk) {
	if len(risks) == 0 {
		return
	}
	b.WriteString("## Risk Alerts\n\n")
	groups := [][]analysis.Risk{nil, nil, nil}
	for _, r := range risks {
		switch r.Severity {
		case analysis.SeverityCritical:
			groups[0] = append(groups[0], r)
		case analysis.SeverityHigh:
			groups[1] = append(groups[1], r)
		default:
			groups[2] = append(groups[2], r)
		}
	}
	for _, group := range groups {
		for _, r := range group {
			label := riskCategoryLabels[r.Category]
			if label == "" {
				label = r.Category
			}
			member := r.Member
			if member == "" {
				member = "team"
			}
			fmt.Fprintf(b, "- **[%s] %s** (%s): %s\n", strings.ToUpper(r.Severity), label, member, r.Description)
		}
	}
	b.WriteString("\n")
}
