package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"blueprints/internal/config"
)

const userAgent = "Blueprints-Go/0.1.0"

const (
	maxTitleLength       = 256
	maxDescriptionLength = 4096
	embedColor           = 0x5865F2
)

// Submission describes a new Blueprint submission to announce.
type Submission struct {
	SeriesName     string
	SeriesYear     int
	Description    string
	Creator        string
	CreatorIconURL string
	PreviewURL     string
}

// Service defines the notification surface used by the pipeline.
type Service interface {
	NotifySubmission(ctx context.Context, sub Submission) error
	TestNotification(ctx context.Context) error
}

// NewService builds a Discord-backed service when a webhook is configured and
// a no-op otherwise.
func NewService(cfg *config.Config) Service {
	hook := strings.TrimSpace(cfg.Notifications.DiscordWebhook)
	if hook == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &discordService{
		endpoint:      hook,
		client:        &http.Client{Timeout: timeout},
		username:      cfg.Notifications.Username,
		avatarURL:     cfg.Notifications.AvatarURL,
		authorIconURL: cfg.Notifications.AuthorIconURL,
		mergeInterval: time.Duration(cfg.Notifications.MergeIntervalHours) * time.Hour,
		now:           time.Now,
	}
}

type webhookPayload struct {
	Username  string  `json:"username,omitempty"`
	AvatarURL string  `json:"avatar_url,omitempty"`
	Content   string  `json:"content,omitempty"`
	Embeds    []embed `json:"embeds,omitempty"`
}

type embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
	Author      *embedAuthor `json:"author,omitempty"`
	Image       *embedImage  `json:"image,omitempty"`
	Fields      []embedField `json:"fields,omitempty"`
}

type embedAuthor struct {
	Name    string `json:"name"`
	IconURL string `json:"icon_url,omitempty"`
}

type embedImage struct {
	URL string `json:"url"`
}

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type discordService struct {
	endpoint      string
	client        *http.Client
	username      string
	avatarURL     string
	authorIconURL string
	mergeInterval time.Duration
	now           func() time.Time
}

func (d *discordService) NotifySubmission(ctx context.Context, sub Submission) error {
	now := d.now()
	iconURL := strings.TrimSpace(sub.CreatorIconURL)
	if iconURL == "" {
		iconURL = d.authorIconURL
	}

	e := embed{
		Title:       truncate(fmt.Sprintf("New Blueprint Submission for %s (%d)", strings.TrimSpace(sub.SeriesName), sub.SeriesYear), maxTitleLength),
		Description: truncate(strings.TrimSpace(sub.Description), maxDescriptionLength),
		Color:       embedColor,
		Timestamp:   now.UTC().Format(time.RFC3339),
		Author:      &embedAuthor{Name: strings.TrimSpace(sub.Creator), IconURL: iconURL},
	}
	if preview := strings.TrimSpace(sub.PreviewURL); preview != "" {
		e.Image = &embedImage{URL: preview}
	}
	if d.mergeInterval > 0 {
		e.Fields = append(e.Fields, embedField{
			Name:  "Available",
			Value: "available in " + FormatCountdown(NextMerge(now, d.mergeInterval).Sub(now)),
		})
	}
	return d.send(ctx, webhookPayload{Username: d.username, AvatarURL: d.avatarURL, Embeds: []embed{e}})
}

func (d *discordService) TestNotification(ctx context.Context) error {
	return d.send(ctx, webhookPayload{
		Username:  d.username,
		AvatarURL: d.avatarURL,
		Content:   "Blueprint notifications are configured correctly.",
	})
}

func (d *discordService) send(ctx context.Context, data webhookPayload) error {
	if d == nil || d.client == nil {
		return nil
	}
	body, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode discord payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build discord request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("send discord notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("discord returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// NextMerge returns the next UTC boundary of interval strictly after now.
func NextMerge(now time.Time, interval time.Duration) time.Time {
	if interval <= 0 {
		return now
	}
	return now.UTC().Truncate(interval).Add(interval)
}

// FormatCountdown renders d as "Xh Ym", rounding up to the next minute.
func FormatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	minutes := int((d + time.Minute - 1) / time.Minute)
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit-1]) + "…"
}

type noopService struct{}

func (noopService) NotifySubmission(context.Context, Submission) error { return nil }
func (noopService) TestNotification(context.Context) error             { return nil }
