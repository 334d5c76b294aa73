package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

// SlackNotifier posts events to a Slack incoming webhook.
type SlackNotifier struct {
	webhookURL string
	channel    string
	username   string
	events     []string
	client     *http.Client
}

// SlackConfig configures a SlackNotifier.
type SlackConfig struct {
	// WebhookURL may be empty, in which case SLACK_WEBHOOK_URL is used.
	WebhookURL string
	Channel    string
	Username   string
	Events     []string
}

// NewSlackNotifier creates a Slack webhook notifier.
func NewSlackNotifier(cfg SlackConfig) (*SlackNotifier, error) {
	url := cfg.WebhookURL
	if url == "" {
		url = os.Getenv("SLACK_WEBHOOK_URL")
	}
	if url == "" {
		return nil, fmt.Errorf("slack webhook URL not configured (set notifiers.webhook_url or SLACK_WEBHOOK_URL)")
	}

	username := cfg.Username
	if username == "" {
		username = "redgit"
	}

	return &SlackNotifier{
		webhookURL: url,
		channel:    cfg.Channel,
		username:   username,
		events:     cfg.Events,
		client:     &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// Name implements Notifier.
func (s *SlackNotifier) Name() string { return "slack" }

// Accepts implements Notifier.
func (s *SlackNotifier) Accepts(kind EventKind) bool { return acceptsKind(s.events, kind) }

// Send implements Notifier.
func (s *SlackNotifier) Send(ctx context.Context, event Event) error {
	text := fmt.Sprintf("*%s*\n%s", event.Title, event.Body)
	if event.Link != "" {
		text += "\n" + event.Link
	}

	payload := map[string]interface{}{
		"text":     text,
		"username": s.username,
	}
	if s.channel != "" {
		payload["channel"] = s.channel
	}

	return postJSON(ctx, s.client, s.webhookURL, payload)
}

// postJSON posts a JSON body and fails on non-2xx responses. Shared by the
// webhook notifiers.
func postJSON(ctx context.Context, client *http.Client, url string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
