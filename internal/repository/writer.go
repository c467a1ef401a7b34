package repository

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"blueprints/internal/assets"
	"blueprints/internal/blueprint"
	"blueprints/internal/fileutil"
	"blueprints/internal/logging"
	"blueprints/internal/services"
	"blueprints/internal/textutil"
)

// HighWaterSource reports the highest Blueprint ID ever assigned to a Series,
// including IDs whose folders no longer exist.
type HighWaterSource interface {
	HighWater(ctx context.Context, series string) (int, bool, error)
}

// Request is one Blueprint to materialize.
type Request struct {
	SeriesName string
	SeriesYear int
	Blueprint  *blueprint.Blueprint
	Preview    []byte
	Fonts      []assets.File
}

// Path identifies a materialized Blueprint.
type Path struct {
	Series textutil.SeriesFolder
	ID     int
	Dir    string
}

// Writer materializes new Blueprint folders.
type Writer struct {
	layout    Layout
	lockPath  string
	highWater HighWaterSource
	logger    *slog.Logger
}

// NewWriter returns a Writer for the tree rooted at blueprintsDir. highWater
// may be nil.
func NewWriter(blueprintsDir, lockPath string, highWater HighWaterSource, logger *slog.Logger) *Writer {
	return &Writer{
		layout:    Layout{Root: blueprintsDir},
		lockPath:  lockPath,
		highWater: highWater,
		logger:    logging.NewComponentLogger(logger, "writer"),
	}
}

// Write assigns the next free ID for the Series and writes the preview, the
// fonts and finally blueprint.json. The folder appears under its ID only once
// every file is in place.
func (w *Writer) Write(ctx context.Context, req Request) (Path, error) {
	if req.Blueprint == nil {
		return Path{}, services.Wrap(services.ErrWrite, "write", "validate request", "blueprint is nil", nil)
	}
	display := textutil.SeriesDisplayName(req.SeriesName, req.SeriesYear)
	folder, err := textutil.SeriesFolders(display)
	if err != nil {
		return Path{}, services.Wrap(services.ErrMalformedInput, "write", "sanitize series", display, err)
	}
	previewName := req.Blueprint.Preview
	if previewName == "" {
		previewName = blueprint.PreviewFileName
	}
	if err := checkFontNames(req.Fonts, previewName); err != nil {
		return Path{}, err
	}

	seriesDir := w.layout.SeriesDir(folder)
	if err := os.MkdirAll(seriesDir, 0o755); err != nil {
		return Path{}, services.Wrap(services.ErrWrite, "write", "create series folder", seriesDir, err)
	}

	lock, err := AcquireLock(ctx, w.lockPath)
	if err != nil {
		return Path{}, services.Wrap(services.ErrWrite, "write", "lock", "", err)
	}
	defer func() {
		if err := lock.Release(); err != nil {
			w.logger.Warn("failed to release lock", logging.Error(err))
		}
	}()

	id, err := w.nextID(ctx, folder)
	if err != nil {
		return Path{}, err
	}
	logger := w.logger.With(
		logging.String(logging.FieldSeries, folder.Name),
		logging.Int(logging.FieldBlueprintID, id),
	)

	staging := filepath.Join(seriesDir, "."+strconv.Itoa(id)+".partial-"+uuid.NewString())
	if err := os.Mkdir(staging, 0o755); err != nil {
		return Path{}, services.Wrap(services.ErrWrite, "write", "create staging folder", staging, err)
	}
	committed := false
	defer func() {
		if !committed {
			if err := os.RemoveAll(staging); err != nil {
				logger.Warn("failed to remove staging folder", logging.String(logging.FieldPath, staging), logging.Error(err))
			}
		}
	}()

	if err := writeFile(staging, previewName, req.Preview); err != nil {
		return Path{}, err
	}
	for _, font := range req.Fonts {
		if err := writeFile(staging, font.Name, font.Data); err != nil {
			return Path{}, err
		}
	}
	data, err := blueprint.Encode(req.Blueprint)
	if err != nil {
		return Path{}, services.Wrap(services.ErrWrite, "write", "encode blueprint", "", err)
	}
	if err := writeFile(staging, blueprint.FileName, data); err != nil {
		return Path{}, err
	}

	final := w.layout.BlueprintDir(folder, id)
	if err := os.Rename(staging, final); err != nil {
		return Path{}, services.Wrap(services.ErrWrite, "write", "commit blueprint folder", final, err)
	}
	committed = true

	logger.Info("blueprint materialized",
		logging.String(logging.FieldPath, final),
		logging.Int("fonts", len(req.Fonts)),
	)
	return Path{Series: folder, ID: id, Dir: final}, nil
}

// NextID returns the ID the next Blueprint of the Series would receive.
func (w *Writer) NextID(ctx context.Context, folder textutil.SeriesFolder) (int, error) {
	return w.nextID(ctx, folder)
}

// nextID starts at the highest ID the Series has ever used plus one and scans
// upward for a free folder. The start is the largest of the index length, the
// highest numbered folder plus one and the ledger high-water mark plus one.
func (w *Writer) nextID(ctx context.Context, folder textutil.SeriesFolder) (int, error) {
	start := 0

	length, err := IndexLength(w.layout.SeriesIndexPath(folder))
	if err != nil {
		w.logger.Warn("ignoring unreadable series index",
			logging.String(logging.FieldSeries, folder.Name),
			logging.Error(err),
		)
	}
	start = max(start, length)

	ids, err := FolderIDs(w.layout.SeriesDir(folder))
	if err != nil {
		return 0, services.Wrap(services.ErrWrite, "write", "scan series folder", folder.Name, err)
	}
	for _, id := range ids {
		start = max(start, id+1)
	}

	if w.highWater != nil {
		high, ok, err := w.highWater.HighWater(ctx, folder.Name)
		if err != nil {
			return 0, services.Wrap(services.ErrWrite, "write", "read high water", folder.Name, err)
		}
		if ok {
			start = max(start, high+1)
		}
	}

	for id := start; ; id++ {
		if !fileutil.Exists(w.layout.BlueprintDir(folder, id)) {
			return id, nil
		}
	}
}

func writeFile(dir, name string, data []byte) error {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return services.Wrap(services.ErrWrite, "write", "write file", name, err)
	}
	return nil
}

func checkFontNames(fonts []assets.File, preview string) error {
	for _, font := range fonts {
		name := font.Name
		switch {
		case name == "" || name != filepath.Base(name) || textutil.SanitizeFileName(name) != name:
			return services.Wrap(services.ErrWrite, "write", "validate font", fmt.Sprintf("unsafe file name %q", name), nil)
		case name == blueprint.FileName || name == preview:
			return services.Wrap(services.ErrWrite, "write", "validate font", fmt.Sprintf("font file %q collides with a reserved name", name), nil)
		}
	}
	return nil
}
