package index

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"

	"blueprints/internal/fileutil"
	"blueprints/internal/logging"
	"blueprints/internal/repository"
	"blueprints/internal/services"
)

const readmeTableHeader = "| ID | Preview | Templates | Fonts | Episodes |\n| :---: | :---: | :---: | :---: | :---: |"

// RenderReadme renders the README.md of one Series.
func RenderReadme(series Series) string {
	var b strings.Builder
	b.WriteString("# ")
	b.WriteString(series.Folder.Name)
	b.WriteString("\n\nThere are `")
	b.WriteString(strconv.Itoa(len(series.Entries)))
	b.WriteString("` Blueprint(s) available for this Series.\n\n")
	b.WriteString(readmeTableHeader)
	for _, entry := range series.Entries {
		id := strconv.Itoa(entry.ID)
		preview := entry.Blueprint.Preview
		b.WriteString("\n| `" + id + "` | <img src=\"./" + id + "/" + preview + "\" height=\"150\"> | ")
		b.WriteString(formatCount(entry.Blueprint.TemplateCount()))
		b.WriteString(" | ")
		b.WriteString(formatCount(entry.Blueprint.FontCount()))
		b.WriteString(" | ")
		b.WriteString(formatCount(entry.Blueprint.EpisodeCount()))
		b.WriteString(" |")
	}
	b.WriteString("\n")
	return b.String()
}

func formatCount(count int) string {
	if count == 0 {
		return "-"
	}
	return "`" + strconv.Itoa(count) + "`"
}

// WriteReadmes regenerates every Series README.md.
func (a *Aggregator) WriteReadmes(ctx context.Context) (Summary, error) {
	lock, err := repository.AcquireLock(ctx, a.opts.LockPath)
	if err != nil {
		return Summary{}, services.Wrap(services.ErrWrite, "readme", "lock", "", err)
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
		summary.Blueprints += len(series.Entries)
		written, err := a.writeReadme(series)
		if err != nil {
			return summary, err
		}
		if written {
			summary.Written++
		}
	}
	a.logger.Info("readmes rebuilt", logging.Int("series", summary.Series), logging.Int("written", summary.Written))
	return summary, nil
}

func (a *Aggregator) writeReadme(series Series) (bool, error) {
	path := filepath.Join(a.layout.SeriesDir(series.Folder), repository.ReadmeName)
	written, err := fileutil.WriteIfChanged(path, []byte(RenderReadme(series)))
	if err != nil {
		return false, services.Wrap(services.ErrWrite, "readme", "write", series.Folder.Name, err)
	}
	return written, nil
}
