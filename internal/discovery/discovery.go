// Package discovery finds track files directly inside a directory.
package discovery

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/UnknownOlympus/trackmap/internal/repository"
)

// ErrDirectory is returned when the scan directory cannot be used.
var ErrDirectory = errors.New("track directory is not readable")

// Files lists the discovered paths per format, each group in glob order.
type Files struct {
	KML []string
	KMZ []string
	GPX []string
}

// Total returns the number of discovered files.
func (f Files) Total() int {
	return len(f.KML) + len(f.KMZ) + len(f.GPX)
}

// Discover globs dir (non-recursive) for .kml and .kmz files, and .gpx files when
// includeGPX is set. Extensions are matched case-sensitively, like the shell glob.
func Discover(repo repository.Interface, dir string, includeGPX bool) (Files, error) {
	var files Files

	info, err := repo.Stat(dir)
	if err != nil {
		return files, fmt.Errorf("%w: %w", ErrDirectory, err)
	}
	if !info.IsDir() {
		return files, fmt.Errorf("%w: %s is not a directory", ErrDirectory, dir)
	}

	if files.KML, err = glob(repo, dir, "kml"); err != nil {
		return files, err
	}
	if files.KMZ, err = glob(repo, dir, "kmz"); err != nil {
		return files, err
	}
	if includeGPX {
		if files.GPX, err = glob(repo, dir, "gpx"); err != nil {
			return files, err
		}
	}

	return files, nil
}

func glob(repo repository.Interface, dir, ext string) ([]string, error) {
	pattern := filepath.Join(escapeMeta(dir), "*."+ext)
	matches, err := repo.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDirectory, err)
	}

	// Hidden files are skipped, as shell globs do.
	visible := matches[:0]
	for _, match := range matches {
		if !strings.HasPrefix(filepath.Base(match), ".") {
			visible = append(visible, match)
		}
	}

	return visible, nil
}

// escapeMeta quotes glob metacharacters so directory names like "runs [2024]"
// are taken literally.
func escapeMeta(path string) string {
	out := make([]rune, 0, len(path))
	for _, r := range path {
		switch r {
		case '*', '?', '[', '\\':
			if filepath.Separator == '\\' && r == '\\' {
				out = append(out, r)
				continue
			}
			out = append(out, '\\')
		}
		out = append(out, r)
	}

	return string(out)
}
