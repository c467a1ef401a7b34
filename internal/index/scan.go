package index

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"blueprints/internal/blueprint"
	"blueprints/internal/logging"
	"blueprints/internal/repository"
	"blueprints/internal/services"
	"blueprints/internal/textutil"
)

// Entry is one parsed Blueprint at its place in the tree.
type Entry struct {
	Series    textutil.SeriesFolder
	ID        int
	Blueprint *blueprint.Blueprint
}

// Series groups the entries of one Series folder.
type Series struct {
	Folder  textutil.SeriesFolder
	Entries []Entry
}

// Slots returns the per-series index: length max(id)+1 with nil for IDs that
// have no entry.
func (s Series) Slots() []*blueprint.Blueprint {
	if len(s.Entries) == 0 {
		return []*blueprint.Blueprint{}
	}
	slots := make([]*blueprint.Blueprint, s.Entries[len(s.Entries)-1].ID+1)
	for _, entry := range s.Entries {
		slots[entry.ID] = entry.Blueprint
	}
	return slots
}

// Catalog is the parsed tree.
type Catalog struct {
	Series []Series
	// Skipped counts entries that could not be parsed.
	Skipped int
}

// Entries returns every entry in catalog order.
func (c *Catalog) Entries() []Entry {
	var out []Entry
	for _, series := range c.Series {
		out = append(out, series.Entries...)
	}
	return out
}

// Scan reads every <letter>/<series>/<id>/blueprint.json under root. Corrupt
// entries are logged and omitted.
func Scan(root string, logger *slog.Logger) (*Catalog, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	fsys := os.DirFS(root)

	dirs, err := listSeriesDirs(fsys)
	if err != nil {
		return nil, services.Wrap(services.ErrWrite, "aggregate", "list series", root, err)
	}
	bySeries := make(map[string]*Series, len(dirs))
	for _, dir := range dirs {
		letter, name := path.Split(dir)
		folder := textutil.SeriesFolder{Letter: path.Clean(letter), Name: name}
		bySeries[dir] = &Series{Folder: folder}
	}

	matches, err := doublestar.Glob(fsys, "*/*/*/"+blueprint.FileName)
	if err != nil {
		return nil, services.Wrap(services.ErrWrite, "aggregate", "glob blueprints", root, err)
	}
	sort.Strings(matches)

	catalog := &Catalog{}
	for _, match := range matches {
		idDir := path.Dir(match)
		seriesDir := path.Dir(idDir)
		id, ok := repository.ParseID(path.Base(idDir))
		if !ok {
			logger.Debug("skipping non-numeric blueprint folder", logging.String(logging.FieldPath, match))
			continue
		}
		series, ok := bySeries[seriesDir]
		if !ok {
			continue
		}
		b, err := blueprint.Load(filepath.Join(root, filepath.FromSlash(match)))
		if err != nil {
			catalog.Skipped++
			logging.WarnWithContext(logger, "skipping corrupt blueprint", "corrupt_entry",
				logging.String(logging.FieldPath, match),
				logging.String(logging.FieldErrorHint, "fix or remove the blueprint.json file"),
				logging.String(logging.FieldImpact, "blueprint omitted from indexes"),
				logging.Error(errors.Join(services.ErrCorruptEntry, err)),
			)
			continue
		}
		series.Entries = append(series.Entries, Entry{Series: series.Folder, ID: id, Blueprint: b})
	}

	for _, dir := range dirs {
		series := bySeries[dir]
		sort.Slice(series.Entries, func(i, j int) bool { return series.Entries[i].ID < series.Entries[j].ID })
		catalog.Series = append(catalog.Series, *series)
	}
	return catalog, nil
}

// listSeriesDirs returns "<letter>/<series>" directories sorted by letter
// then Series name.
func listSeriesDirs(fsys fs.FS) ([]string, error) {
	var dirs []string
	err := doublestar.GlobWalk(fsys, "*/*", func(p string, d fs.DirEntry) error {
		if d.IsDir() {
			dirs = append(dirs, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(dirs, func(i, j int) bool {
		li, si := path.Split(dirs[i])
		lj, sj := path.Split(dirs[j])
		if li != lj {
			return li < lj
		}
		return si < sj
	})
	return dirs, nil
}
