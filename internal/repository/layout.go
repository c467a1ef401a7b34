package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"blueprints/internal/textutil"
)

// SeriesIndexName is the derived per-series index file.
const SeriesIndexName = "blueprints.json"

// ReadmeName is the derived per-series README.
const ReadmeName = "README.md"

// Layout resolves catalog paths under a blueprints root directory.
type Layout struct {
	Root string
}

// SeriesDir returns the folder of a Series.
func (l Layout) SeriesDir(folder textutil.SeriesFolder) string {
	return filepath.Join(l.Root, folder.Letter, folder.Name)
}

// BlueprintDir returns the folder of one Blueprint.
func (l Layout) BlueprintDir(folder textutil.SeriesFolder, id int) string {
	return filepath.Join(l.SeriesDir(folder), strconv.Itoa(id))
}

// SeriesIndexPath returns the per-series index file.
func (l Layout) SeriesIndexPath(folder textutil.SeriesFolder) string {
	return filepath.Join(l.SeriesDir(folder), SeriesIndexName)
}

// ParseID parses a Blueprint folder name. Zero-padded and non-numeric names
// are rejected.
func ParseID(name string) (int, bool) {
	if name == "" {
		return 0, false
	}
	for _, r := range name {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	id, err := strconv.Atoi(name)
	if err != nil || strconv.Itoa(id) != name {
		return 0, false
	}
	return id, true
}

// FolderIDs lists the Blueprint IDs present as folders in seriesDir.
func FolderIDs(seriesDir string) ([]int, error) {
	entries, err := os.ReadDir(seriesDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list series folder: %w", err)
	}
	var ids []int
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if id, ok := ParseID(entry.Name()); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// IndexLength returns the number of slots in a per-series index file. A
// missing or unreadable index counts as empty.
func IndexLength(path string) (int, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read series index: %w", err)
	}
	var slots []json.RawMessage
	if err := json.Unmarshal(data, &slots); err != nil {
		return 0, fmt.Errorf("parse series index: %w", err)
	}
	return len(slots), nil
}
