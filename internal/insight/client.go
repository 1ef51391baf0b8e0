// Package insight is a pass-through client for the external text-generation
// API used to produce networking-match suggestions. Failures are returned as
// data values, never propagated as faults.
package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// CandidateProfile is one member the guest could be matched with.
type CandidateProfile struct {
	Name   string `json:"name"`
	Domain string `json:"domain"`
}

// MatchRequest carries the guest identity and the candidate pool.
type MatchRequest struct {
	Name       string             `json:"name" binding:"required"`
	Profession string             `json:"profession"`
	Candidates []CandidateProfile `json:"candidates"`
}

// MatchResult is the relayed delegate output. On failure Matches holds an
// {"error": ...} JSON payload and Provider is "error".
type MatchResult struct {
	Matches  string `json:"matches"`
	Provider string `json:"provider"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Client calls a chat-completions style endpoint.
type Client struct {
	BaseURL string
	APIKey  string
	Model   string
	HTTP    *http.Client
	logger  *logrus.Logger
}

// New creates a client. The delegate can be slow; the timeout is generous.
func New(baseURL, apiKey, model string, logger *logrus.Logger) *Client {
	if model == "" {
		model = "deepseek-chat"
	}
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   model,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

// errorPayload wraps a failure message as the data-level error value callers
// receive instead of an exception.
func errorPayload(msg string) string {
	b, _ := json.Marshal(map[string]string{"error": msg})
	return string(b)
}

// Generate sends a prompt and returns the completion text, or an error
// payload string. It never returns a Go error to the request path.
func (c *Client) Generate(ctx context.Context, prompt string) string {
	if c.APIKey == "" {
		return errorPayload("insight api key not configured")
	}

	body, err := json.Marshal(chatRequest{
		Model: c.Model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a networking event analyst. Provide insights based on attendance data."},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.7,
		MaxTokens:   1000,
	})
	if err != nil {
		return errorPayload(err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(body))
	if err != nil {
		return errorPayload(err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		c.logger.WithError(err).Warn("insight delegate unreachable")
		return errorPayload(err.Error())
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		c.logger.WithField("status", resp.StatusCode).Warn("insight delegate error response")
		return errorPayload(fmt.Sprintf("delegate error %d: %s", resp.StatusCode, string(raw)))
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return errorPayload("unparseable delegate response: " + err.Error())
	}
	if len(out.Choices) == 0 {
		return errorPayload("empty delegate response")
	}
	return out.Choices[0].Message.Content
}

// MatchMembers builds the guest/candidates prompt and relays the completion
// verbatim.
func (c *Client) MatchMembers(ctx context.Context, req MatchRequest) MatchResult {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Guest Information:\n- Name: %s\n- Profession: %s\n\n", req.Name, req.Profession)
	sb.WriteString("Available Members' Professions:\n")
	for _, cand := range req.Candidates {
		fmt.Fprintf(&sb, "- %s (%s)\n", cand.Domain, cand.Name)
	}
	sb.WriteString("\nTask: Analyze which members would benefit most from networking with this guest.\n")
	sb.WriteString("Provide 3-5 specific reasons why certain professions would synergize well.\n")
	sb.WriteString("Format: Brief, actionable insights.")

	content := c.Generate(ctx, sb.String())
	provider := "deepseek"
	var probe map[string]string
	if json.Unmarshal([]byte(content), &probe) == nil && probe["error"] != "" {
		provider = "error"
	}
	return MatchResult{Matches: content, Provider: provider}
}
