package assets

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"blueprints/internal/services"
)

type archiveKind int

const (
	kindNone archiveKind = iota
	kindZip
	kindGzip
	kindTar
)

func detect(data []byte) archiveKind {
	switch {
	case bytes.HasPrefix(data, []byte("PK\x03\x04")), bytes.HasPrefix(data, []byte("PK\x05\x06")):
		return kindZip
	case len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b:
		return kindGzip
	case len(data) >= 262 && string(data[257:262]) == "ustar":
		return kindTar
	default:
		return kindNone
	}
}

// IsArchive reports whether data looks like a zip, tar or gzipped tar archive.
func IsArchive(data []byte) bool {
	return detect(data) != kindNone
}

// ExpandArchive returns the regular files inside an archive, flattened to
// their base names. Directory entries are skipped. Failures wrap
// services.ErrUnpack; name is only used in error messages.
func ExpandArchive(name string, data []byte) ([]File, error) {
	var (
		files []File
		err   error
	)
	switch detect(data) {
	case kindZip:
		files, err = expandZip(data)
	case kindGzip:
		var gz *gzip.Reader
		gz, err = gzip.NewReader(bytes.NewReader(data))
		if err == nil {
			files, err = expandTar(gz)
			gz.Close()
		}
	case kindTar:
		files, err = expandTar(bytes.NewReader(data))
	default:
		err = errors.New("unrecognized archive format")
	}
	if err != nil {
		return nil, unpackError(name, err)
	}
	if err := checkDuplicates(files); err != nil {
		return nil, unpackError(name, err)
	}
	return files, nil
}

func unpackError(name string, err error) error {
	return fmt.Errorf("%w: expand %s: %w", services.ErrUnpack, name, err)
}

func expandZip(data []byte) ([]File, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	var files []File
	for _, entry := range zr.File {
		if entry.FileInfo().IsDir() {
			continue
		}
		base, ok := memberName(entry.Name)
		if !ok {
			continue
		}
		rc, err := entry.Open()
		if err != nil {
			return nil, fmt.Errorf("open zip entry %s: %w", entry.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read zip entry %s: %w", entry.Name, err)
		}
		files = append(files, File{Name: base, Data: content})
	}
	return files, nil
}

func expandTar(r io.Reader) ([]File, error) {
	tr := tar.NewReader(r)
	var files []File
	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read tar: %w", err)
		}
		if !header.FileInfo().Mode().IsRegular() {
			continue
		}
		base, ok := memberName(header.Name)
		if !ok {
			continue
		}
		content, err := io.ReadAll(tr)
		if err != nil {
			return nil, fmt.Errorf("read tar entry %s: %w", header.Name, err)
		}
		files = append(files, File{Name: base, Data: content})
	}
	return files, nil
}

// memberName flattens an archive member path. Resource-fork metadata written
// by macOS archivers is dropped.
func memberName(name string) (string, bool) {
	name = strings.ReplaceAll(name, "\\", "/")
	if strings.HasPrefix(name, "__MACOSX/") || strings.Contains(name, "/__MACOSX/") {
		return "", false
	}
	base := path.Base(name)
	if base == "." || base == "/" || base == "" || strings.HasPrefix(base, "._") || base == ".DS_Store" {
		return "", false
	}
	return base, true
}

func checkDuplicates(files []File) error {
	seen := make(map[string]struct{}, len(files))
	for _, file := range files {
		if _, ok := seen[file.Name]; ok {
			return fmt.Errorf("archive contains %s more than once", file.Name)
		}
		seen[file.Name] = struct{}{}
	}
	return nil
}
