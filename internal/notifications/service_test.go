package notifications

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"blueprints/internal/config"
	"blueprints/internal/testsupport"
)

func TestNewServiceReturnsNoopWhenWebhookMissing(t *testing.T) {
	cfg := config.Default()
	svc := NewService(&cfg)
	if _, ok := svc.(noopService); !ok {
		t.Fatalf("expected noop service, got %T", svc)
	}
	if err := svc.NotifySubmission(context.Background(), Submission{SeriesName: "Lost"}); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestDiscordServiceFormatsSubmission(t *testing.T) {
	var received webhookPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("unexpected content type %q", r.Header.Get("Content-Type"))
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &received); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.DiscordWebhook = server.URL
	cfg.Notifications.AvatarURL = "https://example.test/bot.png"
	svc := NewService(&cfg).(*discordService)
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 13, 20, 30, 0, time.UTC) }

	err := svc.NotifySubmission(context.Background(), Submission{
		SeriesName:  " Breaking Bad ",
		SeriesYear:  2008,
		Description: "Styled after the opening titles.",
		Creator:     "heisenberg",
		PreviewURL:  "https://example.test/preview.jpg",
	})
	if err != nil {
		t.Fatalf("NotifySubmission returned error: %v", err)
	}

	if received.Username != "MakerBot" || received.AvatarURL != "https://example.test/bot.png" {
		t.Fatalf("unexpected webhook identity %+v", received)
	}
	if len(received.Embeds) != 1 {
		t.Fatalf("expected one embed, got %d", len(received.Embeds))
	}
	e := received.Embeds[0]
	if e.Title != "New Blueprint Submission for Breaking Bad (2008)" {
		t.Fatalf("unexpected title %q", e.Title)
	}
	if e.Author == nil || e.Author.Name != "heisenberg" || e.Author.IconURL == "" {
		t.Fatalf("unexpected author %+v", e.Author)
	}
	if e.Image == nil || e.Image.URL != "https://example.test/preview.jpg" {
		t.Fatalf("unexpected image %+v", e.Image)
	}
	if e.Timestamp != "2024-05-01T13:20:30Z" {
		t.Fatalf("unexpected timestamp %q", e.Timestamp)
	}
	if len(e.Fields) != 1 || e.Fields[0].Name != "Available" || e.Fields[0].Value != "available in 2h 40m" {
		t.Fatalf("unexpected fields %+v", e.Fields)
	}
}

func TestDiscordServiceReportsFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid webhook token", http.StatusUnauthorized)
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithWebhook(server.URL))
	err := NewService(cfg).TestNotification(context.Background())
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Fatalf("expected 401 error, got %v", err)
	}
}

func TestNextMergeAndCountdown(t *testing.T) {
	tests := []struct {
		now  time.Time
		want string
	}{
		{time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "4h 0m"},
		{time.Date(2024, 1, 1, 3, 59, 30, 0, time.UTC), "0h 1m"},
		{time.Date(2024, 1, 1, 22, 15, 0, 0, time.UTC), "1h 45m"},
		{time.Date(2024, 1, 1, 5, 0, 0, 0, time.FixedZone("X", 3600)), "4h 0m"},
	}
	for _, tt := range tests {
		next := NextMerge(tt.now, 4*time.Hour)
		if got := FormatCountdown(next.Sub(tt.now)); got != tt.want {
			t.Fatalf("countdown from %s = %q, want %q", tt.now, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdef", 4); got != "abc…" {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("abc", 4); got != "abc" {
		t.Fatalf("truncate = %q", got)
	}
}
