package integrity_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"blueprints/internal/integrity"
	"blueprints/internal/services"
	"blueprints/internal/testsupport"
)

func cleanTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	testsupport.WriteBlueprint(t, root, testsupport.BlueprintFixture{
		Letter: "W", Series: "The Wire (2002)", ID: 0,
		JSON:  testsupport.MinimalBlueprint("omar", "a.ttf"),
		Files: []string{"preview.jpg", "a.ttf"},
	})
	testsupport.WriteBlueprint(t, root, testsupport.BlueprintFixture{
		Letter: "W", Series: "The Wire (2002)", ID: 2,
		JSON:  testsupport.MinimalBlueprint("stringer"),
		Files: []string{"preview.jpg"},
	})
	testsupport.WriteContent(t, filepath.Join(root, "W", "The Wire (2002)", "blueprints.json"), `[{}, null, {}]`)
	testsupport.WriteContent(t, filepath.Join(root, "W", "The Wire (2002)", "README.md"), "# The Wire (2002)\n")
	return root
}

func run(t *testing.T, root string) *integrity.Report {
	t.Helper()
	report, err := integrity.NewChecker(root, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	return report
}

func TestCleanTreePasses(t *testing.T) {
	report := run(t, cleanTree(t))
	if !report.OK() {
		t.Fatalf("expected no violations, got %v", report.Violations)
	}
	if report.Series != 1 || report.Blueprints != 2 {
		t.Fatalf("unexpected counts %+v", report)
	}
	if report.Err() != nil {
		t.Fatalf("Err() = %v", report.Err())
	}
}

func TestMissingAndOrphanAssetsReportedSeparately(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteBlueprint(t, root, testsupport.BlueprintFixture{
		Letter: "L", Series: "Lost (2004)", ID: 0,
		JSON:  testsupport.MinimalBlueprint("jacob", "a.ttf"),
		Files: []string{"preview.jpg", "extra.png"},
	})
	testsupport.WriteContent(t, filepath.Join(root, "L", "Lost (2004)", "blueprints.json"), `[{}]`)

	report := run(t, root)
	counts := report.ByCheck()
	if counts[integrity.CheckMissingAsset] != 1 || counts[integrity.CheckOrphanAsset] != 1 {
		t.Fatalf("unexpected violations %v", report.Violations)
	}
	if len(report.Violations) != 2 {
		t.Fatalf("expected exactly two violations, got %v", report.Violations)
	}
	if !errors.Is(report.Err(), services.ErrIntegrity) {
		t.Fatalf("expected ErrIntegrity, got %v", report.Err())
	}
}

func TestEveryCheckAccumulates(t *testing.T) {
	root := cleanTree(t)
	// lowercase letter folder holding a misplaced series
	testsupport.WriteBlueprint(t, root, testsupport.BlueprintFixture{
		Letter: "x", Series: "Lost (2004)", ID: 0,
		JSON: testsupport.MinimalBlueprint("a"), Files: []string{"preview.jpg"},
	})
	testsupport.WriteContent(t, filepath.Join(root, "x", "Lost (2004)", "blueprints.json"), `[{}]`)
	// series name without a year, zero padded folder, stray file, bad index
	testsupport.WriteBlueprint(t, root, testsupport.BlueprintFixture{
		Letter: "B", Series: "Bones", ID: 0,
		JSON: testsupport.MinimalBlueprint("a"), Files: []string{"preview.jpg"},
	})
	testsupport.WriteContent(t, filepath.Join(root, "B", "Bones", "01", "preview.jpg"), "x")
	testsupport.WriteContent(t, filepath.Join(root, "B", "Bones", "notes.txt"), "x")
	testsupport.WriteContent(t, filepath.Join(root, "B", "Bones", "blueprints.json"), `{"0": {}}`)
	// blueprint without metadata, invalid blueprint JSON, missing required fields
	testsupport.WriteBlueprint(t, root, testsupport.BlueprintFixture{Letter: "C", Series: "Cheers (1982)", ID: 0, Files: []string{"preview.jpg"}})
	testsupport.WriteBlueprint(t, root, testsupport.BlueprintFixture{Letter: "C", Series: "Cheers (1982)", ID: 1, JSON: "{oops"})
	testsupport.WriteBlueprint(t, root, testsupport.BlueprintFixture{Letter: "C", Series: "Cheers (1982)", ID: 2, JSON: `{"preview": "preview.jpg"}`, Files: []string{"preview.jpg"}})
	testsupport.WriteContent(t, filepath.Join(root, "C", "Cheers (1982)", "blueprints.json"), `[null, {}, {}, {}]`)

	report := run(t, root)
	counts := report.ByCheck()
	for _, check := range []string{
		integrity.CheckLetterCase,
		integrity.CheckLetterPlacement,
		integrity.CheckSeriesName,
		integrity.CheckBlueprintFolder,
		integrity.CheckSeriesFiles,
		integrity.CheckIndexJSON,
		integrity.CheckBlueprintJSON,
		integrity.CheckRequiredFields,
		integrity.CheckBlueprintPresent,
		integrity.CheckIndexConsistency,
	} {
		if counts[check] == 0 {
			t.Errorf("expected a %s violation, got %v", check, report.Violations)
		}
	}
}

func TestIndexConsistency(t *testing.T) {
	root := cleanTree(t)
	testsupport.WriteContent(t, filepath.Join(root, "W", "The Wire (2002)", "blueprints.json"), `[{}, {}, null]`)

	report := run(t, root)
	if got := report.ByCheck()[integrity.CheckIndexConsistency]; got != 2 {
		t.Fatalf("expected 2 consistency violations, got %v", report.Violations)
	}
}
