package testsupport

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = 0x42
	}
	WriteContent(t, path, string(buf))
}

// WriteContent writes content to path, creating parent directories.
func WriteContent(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// BlueprintFixture describes one Blueprint folder to lay down in a test tree.
type BlueprintFixture struct {
	Letter string
	Series string
	ID     int
	// JSON is the blueprint.json content. Empty skips the file.
	JSON string
	// Files are extra file names created next to blueprint.json.
	Files []string
}

// WriteBlueprint creates the fixture under root and returns its folder.
func WriteBlueprint(t testing.TB, root string, fx BlueprintFixture) string {
	t.Helper()

	dir := filepath.Join(root, fx.Letter, fx.Series, strconv.Itoa(fx.ID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	if fx.JSON != "" {
		WriteContent(t, filepath.Join(dir, "blueprint.json"), fx.JSON)
	}
	for _, name := range fx.Files {
		WriteFile(t, filepath.Join(dir, name), 4)
	}
	return dir
}

// MinimalBlueprint returns a valid blueprint.json body declaring the given
// font files.
func MinimalBlueprint(creator string, fonts ...string) string {
	out := `{"creator": "` + creator + `", "description": ["Test"], "preview": "preview.jpg"`
	if len(fonts) > 0 {
		out += `, "fonts": [`
		for i, font := range fonts {
			if i > 0 {
				out += ", "
			}
			out += `{"file": "` + font + `"}`
		}
		out += "]"
	}
	return out + "}"
}
