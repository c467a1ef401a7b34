package index

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"blueprints/internal/blueprint"
	"blueprints/internal/fileutil"
	"blueprints/internal/logging"
	"blueprints/internal/repository"
	"blueprints/internal/services"
)

// Options locates the tree and the derived files.
type Options struct {
	BlueprintsDir string
	MasterIndex   string
	LockPath      string
	// RawBaseURL prefixes preview links in the master index.
	RawBaseURL string
	// Readmes also regenerates every Series README.md during Rebuild.
	Readmes bool
}

// Summary reports what a rebuild did.
type Summary struct {
	Series     int
	Blueprints int
	Skipped    int
	// Written counts files whose content changed.
	Written int
}

// Aggregator rebuilds derived index files.
type Aggregator struct {
	opts   Options
	layout repository.Layout
	logger *slog.Logger
}

// NewAggregator returns an Aggregator.
func NewAggregator(opts Options, logger *slog.Logger) *Aggregator {
	opts.RawBaseURL = strings.TrimRight(strings.TrimSpace(opts.RawBaseURL), "/")
	return &Aggregator{
		opts:   opts,
		layout: repository.Layout{Root: opts.BlueprintsDir},
		logger: logging.NewComponentLogger(logger, "aggregator"),
	}
}

// Rebuild regenerates every per-series blueprints.json and the master index
// while holding the tree lock.
func (a *Aggregator) Rebuild(ctx context.Context) (Summary, error) {
	lock, err := repository.AcquireLock(ctx, a.opts.LockPath)
	if err != nil {
		return Summary{}, services.Wrap(services.ErrWrite, "aggregate", "lock", "", err)
	}
	defer func() {
		if err := lock.Release(); err != nil {
			a.logger.Warn("failed to release lock", logging.Error(err))
		}
	}()

	catalog, err := Scan(a.opts.BlueprintsDir, a.logger)
	if err != nil {
		return Summary{}, err
	}
	summary := Summary{Series: len(catalog.Series), Skipped: catalog.Skipped}

	for _, series := range catalog.Series {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.Blueprints += len(series.Entries)
		written, err := fileutil.WriteJSON(a.layout.SeriesIndexPath(series.Folder), series.Slots())
		if err != nil {
			return summary, services.Wrap(services.ErrWrite, "aggregate", "write series index", series.Folder.Name, err)
		}
		if written {
			summary.Written++
			a.logger.Debug("series index updated",
				logging.String(logging.FieldSeries, series.Folder.Name),
				logging.Int("entries", len(series.Entries)),
			)
		}
		if a.opts.Readmes {
			written, err := a.writeReadme(series)
			if err != nil {
				return summary, err
			}
			if written {
				summary.Written++
			}
		}
	}

	master, err := a.Master(catalog)
	if err != nil {
		return summary, err
	}
	written, err := fileutil.WriteJSON(a.opts.MasterIndex, master)
	if err != nil {
		return summary, services.Wrap(services.ErrWrite, "aggregate", "write master index", a.opts.MasterIndex, err)
	}
	if written {
		summary.Written++
	}

	a.logger.Info("indexes rebuilt",
		logging.Int("series", summary.Series),
		logging.Int("blueprints", summary.Blueprints),
		logging.Int("skipped", summary.Skipped),
		logging.Int("written", summary.Written),
	)
	return summary, nil
}

// Master builds the whole-catalog index: every entry enriched with
// series_full_name, id and an absolute preview URL.
func (a *Aggregator) Master(catalog *Catalog) ([]map[string]json.RawMessage, error) {
	entries := catalog.Entries()
	master := make([]map[string]json.RawMessage, 0, len(entries))
	for _, entry := range entries {
		data, err := json.Marshal(entry.Blueprint)
		if err != nil {
			return nil, fmt.Errorf("encode %s/%d: %w", entry.Series.Name, entry.ID, err)
		}
		var object map[string]json.RawMessage
		if err := json.Unmarshal(data, &object); err != nil {
			return nil, fmt.Errorf("decode %s/%d: %w", entry.Series.Name, entry.ID, err)
		}
		object["series_full_name"] = mustJSON(entry.Series.Name)
		object["id"] = mustJSON(entry.ID)
		object["preview"] = mustJSON(a.PreviewURL(entry))
		master = append(master, object)
	}
	return master, nil
}

// PreviewURL returns the published URL of an entry's preview image.
func (a *Aggregator) PreviewURL(entry Entry) string {
	preview := entry.Blueprint.Preview
	if preview == "" {
		preview = blueprint.PreviewFileName
	}
	segments := []string{
		a.opts.RawBaseURL,
		url.PathEscape(entry.Series.Letter),
		url.PathEscape(entry.Series.Name),
		strconv.Itoa(entry.ID),
		url.PathEscape(preview),
	}
	return strings.Join(segments, "/")
}

func mustJSON(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
