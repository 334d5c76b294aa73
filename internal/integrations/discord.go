package integrations

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"
)

// DiscordNotifier posts events to a Discord webhook.
type DiscordNotifier struct {
	webhookURL string
	username   string
	events     []string
	client     *http.Client
}

// DiscordConfig configures a DiscordNotifier.
type DiscordConfig struct {
	// WebhookURL may be empty, in which case DISCORD_WEBHOOK_URL is used.
	WebhookURL string
	Username   string
	Events     []string
}

// NewDiscordNotifier creates a Discord webhook notifier.
func NewDiscordNotifier(cfg DiscordConfig) (*DiscordNotifier, error) {
	url := cfg.WebhookURL
	if url == "" {
		url = os.Getenv("DISCORD_WEBHOOK_URL")
	}
	if url == "" {
		return nil, fmt.Errorf("discord webhook URL not configured (set notifiers.webhook_url or DISCORD_WEBHOOK_URL)")
	}

	username := cfg.Username
	if username == "" {
		username = "redgit"
	}

	return &DiscordNotifier{
		webhookURL: url,
		username:   username,
		events:     cfg.Events,
		client:     &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// Name implements Notifier.
func (d *DiscordNotifier) Name() string { return "discord" }

// Accepts implements Notifier.
func (d *DiscordNotifier) Accepts(kind EventKind) bool { return acceptsKind(d.events, kind) }

// Send implements Notifier.
func (d *DiscordNotifier) Send(ctx context.Context, event Event) error {
	content := fmt.Sprintf("**%s**\n%s", event.Title, event.Body)
	if event.Link != "" {
		content += "\n" + event.Link
	}
	// Discord caps message content at 2000 characters, not bytes, so
	// truncation has to land on a rune boundary.
	if runes := []rune(content); len(runes) > 2000 {
		content = string(runes[:1997]) + "..."
	}

	payload := map[string]interface{}{
		"content":  content,
		"username": d.username,
	}

	return postJSON(ctx, d.client, d.webhookURL, payload)
}
