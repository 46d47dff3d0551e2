package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/stake-plus/spycat-agency/src/CatAPI/agency"
	"github.com/stake-plus/spycat-agency/src/logging"
)

const discordTimeout = 10 * time.Second

// Discord posts mission completions to a channel webhook. Delivery happens in
// the background so a slow Discord never delays the API response.
type Discord struct {
	log  *slog.Logger
	send func(ctx context.Context, content string) error
}

// NewDiscord builds a notifier from a webhook URL of the form
// https://discord.com/api/webhooks/{id}/{token}.
func NewDiscord(webhookURL string, log *slog.Logger) (*Discord, error) {
	id, token, err := parseWebhookURL(webhookURL)
	if err != nil {
		return nil, err
	}
	session, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Discord{
		log: log,
		send: func(ctx context.Context, content string) error {
			_, err := session.WebhookExecute(id, token, false, &discordgo.WebhookParams{
				Content:  content,
				Username: "Spy Cat Agency",
			}, discordgo.WithContext(ctx))
			return err
		},
	}, nil
}

func (d *Discord) Publish(ctx context.Context, ev agency.Event) error {
	if ev.Type != agency.EventMissionCompleted {
		return nil
	}
	content := fmt.Sprintf("Mission #%d is complete.", ev.MissionID)
	if ev.CatID != nil {
		content = fmt.Sprintf("Mission #%d is complete. Agent cat #%d is available again.", ev.MissionID, *ev.CatID)
	}

	log := logging.FromContext(ctx, d.log)
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), discordTimeout)
	go func() {
		defer cancel()
		if err := d.send(sendCtx, content); err != nil {
			log.Warn("discord webhook failed", "mission_id", ev.MissionID, "error", err)
		}
	}()
	return nil
}

func parseWebhookURL(raw string) (id, token string, err error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", "", fmt.Errorf("discord webhook url: %w", err)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	// api/webhooks/{id}/{token}
	for i := 0; i+2 < len(parts); i++ {
		if parts[i] == "webhooks" && parts[i+1] != "" && parts[i+2] != "" {
			return parts[i+1], parts[i+2], nil
		}
	}
	return "", "", fmt.Errorf("discord webhook url: expected /api/webhooks/{id}/{token}, got %q", u.Path)
}
