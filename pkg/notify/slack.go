package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/helpflow/triago/pkg/models"
)

const (
	maxTextLen  = 3000
	httpTimeout = 10 * time.Second
)

// SlackChannel posts notifications to a Slack incoming webhook.
type SlackChannel struct {
	webhookURL string
	client     *http.Client
}

// NewSlackChannel creates a Slack channel for the given webhook URL.
func NewSlackChannel(webhookURL string) *SlackChannel {
	return &SlackChannel{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: httpTimeout},
	}
}

func (s *SlackChannel) Name() string {
	return "slack"
}

// Send posts one notification to the configured webhook.
func (s *SlackChannel) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(buildMessage(msg))
	if err != nil {
		return fmt.Errorf("slack: marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("slack: create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("slack: post webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

		return fmt.Errorf("slack: webhook returned %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

func buildMessage(msg Message) map[string]any {
	return map[string]any{
		"blocks": []map[string]any{
			headerBlock(msg),
			{"type": "divider"},
			fieldsBlock(msg.Ticket),
			textBlock(msg.Text),
		},
	}
}

func headerBlock(msg Message) map[string]any {
	title := "Ticket Update"
	if msg.Kind == KindTeam {
		title = fmt.Sprintf("Escalation for #%s", msg.Team)
	}

	if msg.Ticket != nil {
		title = fmt.Sprintf("%s: %s", title, msg.Ticket.Title)
	}

	return map[string]any{
		"type": "header",
		"text": map[string]any{
			"type": "plain_text",
			"text": truncate(title, 150),
		},
	}
}

func fieldsBlock(ticket *models.Ticket) map[string]any {
	if ticket == nil {
		return map[string]any{"type": "divider"}
	}

	fields := []map[string]any{
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Ticket:* %s", ticket.ID),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Status:* %s", ticket.Status),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Priority:* %s", ticket.Priority),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Category:* %s", ticket.Category),
		},
	}

	return map[string]any{
		"type":   "section",
		"fields": fields,
	}
}

func textBlock(text string) map[string]any {
	if text == "" {
		text = "_No details available._"
	}

	return map[string]any{
		"type": "section",
		"text": map[string]any{
			"type": "mrkdwn",
			"text": truncate(text, maxTextLen),
		},
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}

	return s[:limit-3] + "..."
}
