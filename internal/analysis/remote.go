package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const systemPrompt = `You are an analyst for weekly team check-ins. Given the JSON submissions for one week, return ONLY a JSON object with these fields:
{
  "executive_summary": "2-3 sentences incl. the response rate",
  "highlights": ["up to 5 notable accomplishments"],
  "recognitions": [{"from": "name", "message": "shoutout text"}],
  "risks": [{"category": "health_safety|legal_compliance|financial_budget", "severity": "critical|high|medium|low", "member": "name", "description": "..."}],
  "trends": [{"label": "...", "direction": "up|down|flat", "detail": "..."}],
  "team_overview": {"member_count": 0, "submitted_count": 0, "submission_rate": 0.0, "sentiment": "..."},
  "member_summaries": [{"member_name": "name", "summary": "2-3 sentences"}],
  "recommended_actions": ["..."]
}
Only flag risks in the three listed categories. Return the JSON object and nothing else.`

// RemoteAnalyzer calls an OpenAI-compatible chat-completions endpoint and
// parses its JSON reply into an Analysis.
type RemoteAnalyzer struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewRemoteAnalyzer creates the remote backend strategy.
func NewRemoteAnalyzer(baseURL, apiKey, model string, timeout time.Duration) *RemoteAnalyzer {
	return &RemoteAnalyzer{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

// Analyze sends the submission set to the backend. Any transport, status or
// parse problem is returned as an error; the caller decides how to degrade.
func (a *RemoteAnalyzer) Analyze(ctx context.Context, req Request) (*Analysis, error) {
	userPayload, err := json.Marshal(map[string]interface{}{
		"workspace":    req.WorkspaceName,
		"member_count": req.MemberCount,
		"submissions":  req.Submissions,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal submissions: %w", err)
	}

	body := map[string]interface{}{
		"model": a.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": string(userPayload)},
		},
		"temperature": 0.2,
	}
	payload, _ := json.Marshal(body)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("analysis call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("analysis status %d: %s", resp.StatusCode, data)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("empty choices")
	}

	content := extractJSON(result.Choices[0].Message.Content)
	var out Analysis
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return nil, fmt.Errorf("parse analysis: %w", err)
	}
	if out.ExecutiveSummary == "" {
		return nil, fmt.Errorf("analysis missing executive summary")
	}
	return &out, nil
}

// extractJSON strips markdown fences the model sometimes wraps around the
// JSON object.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)
	if start := strings.Index(s, "{"); start >= 0 {
		if end := strings.LastIndex(s, "}"); end > start {
			return s[start : end+1]
		}
	}
	return s
}
