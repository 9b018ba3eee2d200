package main

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// Notifier posts a best-effort operator notification when a block is
// found, via a single Discord webhook call. There is no bot session,
// subscriber list, or worker-facing ping queue to manage.
type Notifier struct {
	session   *discordgo.Session
	webhookID string
	token     string
}

// NewNotifier builds a Notifier from a Discord webhook URL of the form
// https://discord.com/api/webhooks/<id>/<token>. An empty webhookURL
// disables notifications entirely.
func NewNotifier(webhookURL string) (*Notifier, error) {
	webhookURL = strings.TrimSpace(webhookURL)
	if webhookURL == "" {
		return &Notifier{}, nil
	}
	id, token, err := parseWebhookURL(webhookURL)
	if err != nil {
		return nil, err
	}
	dg, err := discordgo.New("")
	if err != nil {
		return nil, err
	}
	return &Notifier{session: dg, webhookID: id, token: token}, nil
}

func parseWebhookURL(raw string) (id, token string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", err
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 4 {
		return "", "", fmt.Errorf("malformed discord webhook url")
	}
	return parts[len(parts)-2], parts[len(parts)-1], nil
}

func (n *Notifier) enabled() bool {
	return n != nil && n.session != nil && n.webhookID != "" && n.token != ""
}

// NotifyBlockFound fires a webhook message and never blocks the caller on
// network I/O beyond this one call; failures are logged, not retried.
func (n *Notifier) NotifyBlockFound(height int64, hash string) {
	if !n.enabled() {
		return
	}
	go func() {
		content := fmt.Sprintf(":tada: Block %d found! Hash `%s`", height, hash)
		_, err := n.session.WebhookExecute(n.webhookID, n.token, false, &discordgo.WebhookParams{
			Content: content,
		})
		if err != nil {
			logger.Warn("discord block notification failed", "error", err)
		}
	}()
}
