package source

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/UnknownOlympus/trackmap/internal/models"
	"github.com/UnknownOlympus/trackmap/internal/repository"
)

// KMZReader reads KML documents wrapped in zip archives.
type KMZReader struct {
	repo    repository.Interface
	extract bool
	log     *slog.Logger
}

// NewKMZReader creates a new KMZ reader. When extract is set the chosen KML entry
// is also written into the archive's directory under its entry name.
func NewKMZReader(repo repository.Interface, extract bool, log *slog.Logger) *KMZReader {
	return &KMZReader{repo: repo, extract: extract, log: log}
}

// Read opens the archive at path, takes its first .kml entry and extracts its points.
// Only the first entry is used even when the archive holds several.
func (zr *KMZReader) Read(ctx context.Context, path string) (*models.Track, error) {
	zr.log.DebugContext(ctx, "Reading KMZ", "path", path)

	entry, data, err := zr.firstKML(path)
	if err != nil {
		return nil, err
	}

	if zr.extract {
		dest := filepath.Join(filepath.Dir(path), filepath.FromSlash(entry))
		if err = zr.repo.Save(ctx, dest, data); err != nil {
			return nil, fmt.Errorf("failed to extract %s from %s: %w", entry, path, err)
		}
		zr.log.DebugContext(ctx, "Extracted KML from archive", "archive", path, "entry", entry, "dest", dest)
	}

	points, err := extractKML(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s (%s): %w", path, entry, err)
	}

	return &models.Track{SourceName: path, Format: string(TypeKMZ), Points: points}, nil
}

// firstKML returns the name and content of the first archive entry ending in .kml.
func (zr *KMZReader) firstKML(path string) (string, []byte, error) {
	file, err := zr.repo.Open(path)
	if err != nil {
		return "", nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	archive, err := zip.NewReader(file, info.Size())
	if err != nil {
		return "", nil, fmt.Errorf("%w: %s: %w", ErrCorruptArchive, path, err)
	}

	for _, zf := range archive.File {
		if !strings.HasSuffix(strings.ToLower(zf.Name), ".kml") {
			continue
		}
		if !filepath.IsLocal(filepath.FromSlash(zf.Name)) {
			return "", nil, fmt.Errorf("%w: %s: entry %q escapes the archive directory", ErrCorruptArchive, path, zf.Name)
		}

		data, err := readEntry(zf)
		if err != nil {
			return "", nil, fmt.Errorf("%w: %s: %w", ErrCorruptArchive, path, err)
		}

		return zf.Name, data, nil
	}

	return "", nil, fmt.Errorf("%w: %s", ErrNoKMLInArchive, path)
}

func readEntry(zf *zip.File) ([]byte, error) {
	rc, err := zf.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", zf.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", zf.Name, err)
	}

	return data, nil
}
