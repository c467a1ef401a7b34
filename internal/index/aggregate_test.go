package index_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"blueprints/internal/index"
	"blueprints/internal/testsupport"
)

func newAggregator(t *testing.T, readmes bool) (*index.Aggregator, string, string) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	agg := index.NewAggregator(index.Options{
		BlueprintsDir: cfg.BlueprintsPath(),
		MasterIndex:   cfg.MasterIndexPath(),
		LockPath:      cfg.LockPath(),
		RawBaseURL:    cfg.Catalog.RawBaseURL + "/",
		Readmes:       readmes,
	}, nil)
	return agg, cfg.BlueprintsPath(), cfg.MasterIndexPath()
}

func readJSON(t *testing.T, path string, v any) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("parse %s: %v", path, err)
	}
}

func TestRebuildPreservesGaps(t *testing.T) {
	agg, root, master := newAggregator(t, false)
	testsupport.WriteBlueprint(t, root, testsupport.BlueprintFixture{Letter: "L", Series: "Lost (2004)", ID: 0, JSON: testsupport.MinimalBlueprint("a")})
	testsupport.WriteBlueprint(t, root, testsupport.BlueprintFixture{Letter: "L", Series: "Lost (2004)", ID: 2, JSON: testsupport.MinimalBlueprint("b")})

	summary, err := agg.Rebuild(context.Background())
	if err != nil {
		t.Fatalf("Rebuild returned error: %v", err)
	}
	if summary.Blueprints != 2 || summary.Series != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}

	var slots []map[string]any
	readJSON(t, filepath.Join(root, "L", "Lost (2004)", "blueprints.json"), &slots)
	if len(slots) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(slots))
	}
	if slots[1] != nil {
		t.Fatalf("expected null gap at 1, got %v", slots[1])
	}
	if slots[2]["creator"] != "b" {
		t.Fatalf("unexpected slot 2 %v", slots[2])
	}

	var entries []map[string]any
	readJSON(t, master, &entries)
	if len(entries) != 2 {
		t.Fatalf("expected 2 master entries, got %d", len(entries))
	}
	last := entries[1]
	if last["series_full_name"] != "Lost (2004)" || last["id"] != float64(2) {
		t.Fatalf("unexpected enrichment %v", last)
	}
	if last["preview"] != "https://example.test/raw/blueprints/L/Lost%20%282004%29/2/preview.jpg" {
		t.Fatalf("unexpected preview url %v", last["preview"])
	}
}

func TestRebuildSkipsCorruptEntries(t *testing.T) {
	agg, root, master := newAggregator(t, false)
	testsupport.WriteBlueprint(t, root, testsupport.BlueprintFixture{Letter: "B", Series: "Bones (2005)", ID: 0, JSON: "{not json"})
	testsupport.WriteBlueprint(t, root, testsupport.BlueprintFixture{Letter: "B", Series: "Bones (2005)", ID: 1, JSON: testsupport.MinimalBlueprint("ok")})
	testsupport.WriteBlueprint(t, root, testsupport.BlueprintFixture{Letter: "C", Series: "Cheers (1982)", ID: 0, JSON: "[]"})

	summary, err := agg.Rebuild(context.Background())
	if err != nil {
		t.Fatalf("Rebuild returned error: %v", err)
	}
	if summary.Skipped != 2 || summary.Blueprints != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}

	var slots []any
	readJSON(t, filepath.Join(root, "B", "Bones (2005)", "blueprints.json"), &slots)
	if len(slots) != 2 || slots[0] != nil {
		t.Fatalf("unexpected bones slots %v", slots)
	}

	data, err := os.ReadFile(filepath.Join(root, "C", "Cheers (1982)", "blueprints.json"))
	if err != nil {
		t.Fatalf("read cheers index: %v", err)
	}
	if strings.TrimSpace(string(data)) != "[]" {
		t.Fatalf("expected empty list for series without valid entries, got %s", data)
	}

	var entries []any
	readJSON(t, master, &entries)
	if len(entries) != 1 {
		t.Fatalf("expected 1 master entry, got %d", len(entries))
	}
}

func TestRebuildIsIdempotent(t *testing.T) {
	agg, root, master := newAggregator(t, true)
	for i, series := range []string{"Zoo (2015)", "Alias (2001)", "The Americans (2013)"} {
		letter := string(series[0])
		if strings.HasPrefix(series, "The ") {
			letter = "A"
		}
		testsupport.WriteBlueprint(t, root, testsupport.BlueprintFixture{
			Letter: letter, Series: series, ID: i, JSON: testsupport.MinimalBlueprint("c", "font.ttf"), Files: []string{"preview.jpg", "font.ttf"},
		})
	}

	if _, err := agg.Rebuild(context.Background()); err != nil {
		t.Fatalf("first Rebuild returned error: %v", err)
	}
	first, err := os.ReadFile(master)
	if err != nil {
		t.Fatal(err)
	}

	summary, err := agg.Rebuild(context.Background())
	if err != nil {
		t.Fatalf("second Rebuild returned error: %v", err)
	}
	if summary.Written != 0 {
		t.Fatalf("second rebuild rewrote %d files", summary.Written)
	}
	second, err := os.ReadFile(master)
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Fatal("master index changed between identical rebuilds")
	}

	var entries []map[string]any
	readJSON(t, master, &entries)
	order := []string{}
	for _, entry := range entries {
		order = append(order, entry["series_full_name"].(string))
	}
	want := []string{"Alias (2001)", "The Americans (2013)", "Zoo (2015)"}
	if strings.Join(order, "|") != strings.Join(want, "|") {
		t.Fatalf("unexpected order %v", order)
	}
}

func TestRebuildOnEmptyTree(t *testing.T) {
	agg, _, master := newAggregator(t, false)
	summary, err := agg.Rebuild(context.Background())
	if err != nil {
		t.Fatalf("Rebuild returned error: %v", err)
	}
	if summary.Series != 0 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	data, err := os.ReadFile(master)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(data)) != "[]" {
		t.Fatalf("expected empty master index, got %s", data)
	}
}
