package migrate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"blueprints/internal/blueprint"
	"blueprints/internal/fileutil"
	"blueprints/internal/logging"
	"blueprints/internal/repository"
	"blueprints/internal/services"
)

// Options controls a migration run.
type Options struct {
	BlueprintsDir string
	LockPath      string
	// DryRun reports what would change without writing.
	DryRun bool
	// Overwrite replaces blueprint.json files that already exist.
	Overwrite bool
}

// Summary reports a migration run.
type Summary struct {
	Series   int
	Migrated int
	// Present counts entries that already had a blueprint.json.
	Present int
	// Missing counts index entries without a Blueprint folder.
	Missing int
	// Corrupt counts unreadable series lists and entries.
	Corrupt int
}

// Migrator performs the layout conversion.
type Migrator struct {
	opts   Options
	logger *slog.Logger
}

// New returns a Migrator.
func New(opts Options, logger *slog.Logger) *Migrator {
	return &Migrator{opts: opts, logger: logging.NewComponentLogger(logger, "migrate")}
}

// Run writes <id>/blueprint.json for every non-null entry of every series list.
func (m *Migrator) Run(ctx context.Context) (Summary, error) {
	lock, err := repository.AcquireLock(ctx, m.opts.LockPath)
	if err != nil {
		return Summary{}, services.Wrap(services.ErrWrite, "migrate", "lock", "", err)
	}
	defer func() {
		if err := lock.Release(); err != nil {
			m.logger.Warn("failed to release lock", logging.Error(err))
		}
	}()

	indexes, err := doublestar.Glob(os.DirFS(m.opts.BlueprintsDir), "*/*/"+repository.SeriesIndexName)
	if err != nil {
		return Summary{}, services.Wrap(services.ErrWrite, "migrate", "glob series lists", m.opts.BlueprintsDir, err)
	}
	sort.Strings(indexes)

	var summary Summary
	for _, rel := range indexes {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.Series++
		if err := m.migrateSeries(rel, &summary); err != nil {
			return summary, err
		}
	}

	m.logger.Info("migration complete",
		logging.Int("series", summary.Series),
		logging.Int("migrated", summary.Migrated),
		logging.Int("present", summary.Present),
		logging.Int("missing", summary.Missing),
		logging.Int("corrupt", summary.Corrupt),
		logging.Bool("dry_run", m.opts.DryRun),
	)
	return summary, nil
}

func (m *Migrator) migrateSeries(rel string, summary *Summary) error {
	seriesRel := path.Dir(rel)
	seriesDir := filepath.Join(m.opts.BlueprintsDir, filepath.FromSlash(seriesRel))
	logger := m.logger.With(logging.String(logging.FieldSeries, path.Base(seriesRel)))

	data, err := os.ReadFile(filepath.Join(seriesDir, repository.SeriesIndexName))
	if err != nil {
		return services.Wrap(services.ErrWrite, "migrate", "read series list", rel, err)
	}
	var slots []json.RawMessage
	if err := json.Unmarshal(data, &slots); err != nil {
		summary.Corrupt++
		logging.WarnWithContext(logger, "skipping unreadable series list", "corrupt_entry",
			logging.String(logging.FieldPath, rel),
			logging.Error(err),
		)
		return nil
	}

	for id, slot := range slots {
		if string(slot) == "null" {
			continue
		}
		b, err := blueprint.Decode(slot)
		if err != nil {
			summary.Corrupt++
			logging.WarnWithContext(logger, "skipping unreadable entry", "corrupt_entry",
				logging.Int(logging.FieldBlueprintID, id),
				logging.Error(err),
			)
			continue
		}
		dir := filepath.Join(seriesDir, fmt.Sprint(id))
		if !fileutil.IsDir(dir) {
			summary.Missing++
			logging.WarnWithContext(logger, "entry has no blueprint folder", "missing_folder",
				logging.Int(logging.FieldBlueprintID, id),
				logging.String(logging.FieldImpact, "entry not migrated"),
			)
			continue
		}
		target := filepath.Join(dir, blueprint.FileName)
		if fileutil.Exists(target) && !m.opts.Overwrite {
			summary.Present++
			continue
		}
		summary.Migrated++
		if m.opts.DryRun {
			logger.Info("would write blueprint", logging.String(logging.FieldPath, target))
			continue
		}
		encoded, err := blueprint.Encode(b)
		if err != nil {
			return services.Wrap(services.ErrWrite, "migrate", "encode blueprint", target, err)
		}
		if err := fileutil.WriteFileAtomic(target, encoded, 0o644); err != nil {
			return services.Wrap(services.ErrWrite, "migrate", "write blueprint", target, err)
		}
		logger.Debug("wrote blueprint", logging.String(logging.FieldPath, target))
	}
	return nil
}
