package ledger_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"blueprints/internal/ledger"
	"blueprints/internal/services"
)

func openStore(t *testing.T) *ledger.Store {
	t.Helper()
	store, err := ledger.Open(filepath.Join(t.TempDir(), "ledger", "submissions.db"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordTracksHighWater(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	if _, ok, err := store.HighWater(ctx, "Lost (2004)"); err != nil || ok {
		t.Fatalf("expected no high water, got ok=%v err=%v", ok, err)
	}

	for i, id := range []int{0, 3, 1} {
		entry := ledger.Entry{Key: "issue-" + string(rune('a'+i)), Series: "Lost (2004)", Letter: "L", BlueprintID: id}
		if err := store.Record(ctx, entry); err != nil {
			t.Fatalf("Record returned error: %v", err)
		}
	}

	high, ok, err := store.HighWater(ctx, "Lost (2004)")
	if err != nil || !ok {
		t.Fatalf("HighWater returned ok=%v err=%v", ok, err)
	}
	if high != 3 {
		t.Fatalf("high water = %d, want 3", high)
	}
}

func TestRecordRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	entry := ledger.Entry{Key: "issue-12", IssueNumber: 12, Series: "Lost (2004)", Letter: "L", BlueprintID: 0, Creator: "jacob"}
	if err := store.Record(ctx, entry); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	seen, err := store.Seen(ctx, "issue-12")
	if err != nil || !seen {
		t.Fatalf("Seen returned %v, %v", seen, err)
	}
	entry.BlueprintID = 7
	if err := store.Record(ctx, entry); !errors.Is(err, services.ErrDuplicateSubmission) {
		t.Fatalf("expected ErrDuplicateSubmission, got %v", err)
	}
	high, _, _ := store.HighWater(ctx, "Lost (2004)")
	if high != 0 {
		t.Fatalf("duplicate raised high water to %d", high)
	}

	entries, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}
	if len(entries) != 1 || entries[0].IssueNumber != 12 || entries[0].Creator != "jacob" {
		t.Fatalf("unexpected entries %+v", entries)
	}
}

func TestOpenReusesExistingDatabase(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "submissions.db")

	store, err := ledger.Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if err := store.Record(ctx, ledger.Entry{Key: "k", Series: "S (2000)", Letter: "S", BlueprintID: 2}); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	_ = store.Close()

	reopened, err := ledger.Open(path)
	if err != nil {
		t.Fatalf("reopen returned error: %v", err)
	}
	defer reopened.Close()
	high, ok, err := reopened.HighWater(ctx, "S (2000)")
	if err != nil || !ok || high != 2 {
		t.Fatalf("unexpected high water %d ok=%v err=%v", high, ok, err)
	}
}
