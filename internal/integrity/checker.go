package integrity

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"blueprints/internal/blueprint"
	"blueprints/internal/logging"
	"blueprints/internal/repository"
	"blueprints/internal/textutil"
)

var seriesNamePattern = regexp.MustCompile(`^.+\(\d{4}\)$`)

// Checker runs every integrity check over one blueprints tree.
type Checker struct {
	root   string
	logger *slog.Logger
}

// NewChecker returns a Checker for the tree at root.
func NewChecker(root string, logger *slog.Logger) *Checker {
	return &Checker{root: root, logger: logging.NewComponentLogger(logger, "integrity")}
}

// Run performs all checks and returns the accumulated report. The error is
// reserved for a tree that cannot be read at all or a cancelled context.
func (c *Checker) Run(ctx context.Context) (*Report, error) {
	report := &Report{}

	letters, err := os.ReadDir(c.root)
	if err != nil {
		return nil, err
	}
	for _, letter := range letters {
		if !letter.IsDir() {
			continue
		}
		if upper := strings.ToUpper(letter.Name()); upper != letter.Name() {
			report.add(CheckLetterCase, letter.Name(), "letter folder must be uppercase (%s)", upper)
		}
		seriesEntries, err := os.ReadDir(filepath.Join(c.root, letter.Name()))
		if err != nil {
			report.add(CheckLetterCase, letter.Name(), "cannot read letter folder: %v", err)
			continue
		}
		for _, series := range seriesEntries {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			rel := path.Join(letter.Name(), series.Name())
			if !series.IsDir() {
				continue
			}
			report.Series++
			c.checkSeries(report, letter.Name(), series.Name(), rel)
		}
	}

	report.sort()
	c.logger.Info("integrity check complete",
		logging.Int("series", report.Series),
		logging.Int("blueprints", report.Blueprints),
		logging.Int("violations", len(report.Violations)),
	)
	return report, nil
}

func (c *Checker) checkSeries(report *Report, letter, name, rel string) {
	if folder, err := textutil.SeriesFolders(name); err != nil || folder.Letter != letter {
		expected := "?"
		if err == nil {
			expected = folder.Letter
		}
		report.add(CheckLetterPlacement, rel, "series belongs in letter folder %q", expected)
	}
	if !seriesNamePattern.MatchString(name) {
		report.add(CheckSeriesName, rel, `series folder must be named "Name (Year)"`)
	}

	seriesDir := filepath.Join(c.root, letter, name)
	entries, err := os.ReadDir(seriesDir)
	if err != nil {
		report.add(CheckSeriesFiles, rel, "cannot read series folder: %v", err)
		return
	}

	folders := make(map[int]bool)
	for _, entry := range entries {
		entryRel := path.Join(rel, entry.Name())
		if !entry.IsDir() {
			if entry.Name() != repository.SeriesIndexName && entry.Name() != repository.ReadmeName {
				report.add(CheckSeriesFiles, entryRel, "only %s is allowed at the series level", repository.SeriesIndexName)
			}
			continue
		}
		id, ok := repository.ParseID(entry.Name())
		if !ok {
			report.add(CheckBlueprintFolder, entryRel, "blueprint folders must be named by a non-zero-padded integer ID")
			continue
		}
		folders[id] = true
		report.Blueprints++
		c.checkBlueprint(report, filepath.Join(seriesDir, entry.Name()), entryRel)
	}

	c.checkIndex(report, seriesDir, rel, folders)
}

func (c *Checker) checkBlueprint(report *Report, dir, rel string) {
	metaRel := path.Join(rel, blueprint.FileName)
	data, err := os.ReadFile(filepath.Join(dir, blueprint.FileName))
	if errors.Is(err, fs.ErrNotExist) {
		report.add(CheckBlueprintPresent, rel, "blueprint folder has no %s", blueprint.FileName)
		return
	}
	if err != nil {
		report.add(CheckBlueprintJSON, metaRel, "cannot read: %v", err)
		return
	}
	b, err := blueprint.Decode(data)
	if err != nil {
		report.add(CheckBlueprintJSON, metaRel, "invalid blueprint JSON: %v", err)
		return
	}

	violations, err := blueprint.ValidateDocument(data)
	if err != nil {
		report.add(CheckRequiredFields, metaRel, "schema validation failed: %v", err)
	}
	for _, v := range violations {
		report.add(CheckRequiredFields, metaRel, "%s", v.String())
	}

	c.checkAssets(report, dir, rel, b)
}

func (c *Checker) checkAssets(report *Report, dir, rel string, b *blueprint.Blueprint) {
	declared := b.AssetNames()
	present := make(map[string]struct{})
	matches, err := doublestar.Glob(os.DirFS(dir), "*")
	if err != nil {
		report.add(CheckOrphanAsset, rel, "cannot list folder: %v", err)
		return
	}
	for _, name := range matches {
		if name == blueprint.FileName {
			continue
		}
		present[name] = struct{}{}
	}

	for _, name := range sortedKeys(declared) {
		if _, ok := present[name]; !ok {
			report.add(CheckMissingAsset, path.Join(rel, name), "declared file is missing")
		}
	}
	for _, name := range sortedKeys(present) {
		if _, ok := declared[name]; !ok {
			report.add(CheckOrphanAsset, path.Join(rel, name), "file is not referenced by the blueprint")
		}
	}
}

func (c *Checker) checkIndex(report *Report, seriesDir, rel string, folders map[int]bool) {
	indexRel := path.Join(rel, repository.SeriesIndexName)
	data, err := os.ReadFile(filepath.Join(seriesDir, repository.SeriesIndexName))
	if errors.Is(err, fs.ErrNotExist) {
		if len(folders) > 0 {
			report.add(CheckIndexConsistency, rel, "series has blueprints but no %s", repository.SeriesIndexName)
		}
		return
	}
	if err != nil {
		report.add(CheckIndexJSON, indexRel, "cannot read: %v", err)
		return
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		report.add(CheckIndexJSON, indexRel, "index must not be empty")
		return
	}
	var slots []json.RawMessage
	if err := json.Unmarshal(data, &slots); err != nil {
		var anyValue any
		if json.Unmarshal(data, &anyValue) == nil {
			report.add(CheckIndexJSON, indexRel, "index must be a top-level list")
		} else {
			report.add(CheckIndexJSON, indexRel, "invalid JSON: %v", err)
		}
		return
	}

	for id, slot := range slots {
		isNull := strings.TrimSpace(string(slot)) == "null"
		switch {
		case !isNull && !folders[id]:
			report.add(CheckIndexConsistency, indexRel, "entry %d has no blueprint folder", id)
		case isNull && folders[id]:
			report.add(CheckIndexConsistency, indexRel, "deleted entry %d still has a blueprint folder", id)
		}
	}
	for _, id := range sortedIDs(folders) {
		if id >= len(slots) {
			report.add(CheckIndexConsistency, indexRel, "blueprint folder %d is not in the index", id)
		}
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func sortedIDs(set map[int]bool) []int {
	ids := make([]int, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
