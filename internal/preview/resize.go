package preview

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"blueprints/internal/fileutil"
	"blueprints/internal/index"
	"blueprints/internal/logging"
)

const jpegQuality = 92

// Resizer scales previews whose dimensions fall outside the tolerance.
type Resizer struct {
	Width     int
	Height    int
	Tolerance int
	logger    *slog.Logger
}

// NewResizer returns a Resizer targeting width x height, accepting images
// within tolerance pixels of either dimension.
func NewResizer(width, height, tolerance int, logger *slog.Logger) *Resizer {
	return &Resizer{
		Width:     width,
		Height:    height,
		Tolerance: tolerance,
		logger:    logging.NewComponentLogger(logger, "preview"),
	}
}

// NeedsResize reports whether an image of the given size is out of tolerance.
func (r *Resizer) NeedsResize(width, height int) bool {
	return abs(width-r.Width) > r.Tolerance || abs(height-r.Height) > r.Tolerance
}

// Resize scales data to the target size. name selects the output encoding by
// extension (.png stays PNG, everything else becomes JPEG). The boolean is
// false when data was already within tolerance and is returned unchanged.
func (r *Resizer) Resize(data []byte, name string) ([]byte, bool, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, false, fmt.Errorf("read image header: %w", err)
	}
	if !r.NeedsResize(cfg.Width, cfg.Height) {
		return data, false, nil
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, false, fmt.Errorf("decode image: %w", err)
	}
	dst := image.NewRGBA(image.Rect(0, 0, r.Width, r.Height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	var out bytes.Buffer
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		err = png.Encode(&out, dst)
	default:
		err = jpeg.Encode(&out, dst, &jpeg.Options{Quality: jpegQuality})
	}
	if err != nil {
		return nil, false, fmt.Errorf("encode image: %w", err)
	}
	return out.Bytes(), true, nil
}

// ResizeFile resizes the image at path in place when needed.
func (r *Resizer) ResizeFile(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("read preview: %w", err)
	}
	resized, changed, err := r.Resize(data, path)
	if err != nil || !changed {
		return false, err
	}
	if err := fileutil.WriteFileAtomic(path, resized, 0o644); err != nil {
		return false, err
	}
	return true, nil
}

// Summary reports a tree-wide resize pass.
type Summary struct {
	Checked int
	Resized int
	Failed  int
}

// ResizeTree checks the preview of every Blueprint under root. Unreadable
// previews are logged and counted but do not stop the pass.
func (r *Resizer) ResizeTree(ctx context.Context, root string) (Summary, error) {
	catalog, err := index.Scan(root, r.logger)
	if err != nil {
		return Summary{}, err
	}
	var summary Summary
	for _, entry := range catalog.Entries() {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if entry.Blueprint.Preview == "" {
			continue
		}
		path := filepath.Join(root, entry.Series.Letter, entry.Series.Name, fmt.Sprint(entry.ID), entry.Blueprint.Preview)
		summary.Checked++
		changed, err := r.ResizeFile(path)
		if err != nil {
			summary.Failed++
			logging.WarnWithContext(r.logger, "preview resize failed", "preview_resize_failed",
				logging.String(logging.FieldPath, path),
				logging.String(logging.FieldErrorHint, "replace the preview with a JPEG or PNG image"),
				logging.Error(err),
			)
			continue
		}
		if changed {
			summary.Resized++
			r.logger.Info("resized preview",
				logging.String(logging.FieldPath, path),
				logging.String("size", fmt.Sprintf("%dx%d", r.Width, r.Height)),
			)
		}
	}
	return summary, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
