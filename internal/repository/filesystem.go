package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

const filePerm = 0o644

// ErrEmptyPath is returned when a write is attempted without a destination.
var ErrEmptyPath = errors.New("destination path is empty")

// Save writes data to path atomically.
func (r *Repository) Save(ctx context.Context, path string, data []byte) error {
	return r.SaveFrom(ctx, path, bytes.NewReader(data))
}

// SaveFrom streams src into a temporary file in the destination directory and
// renames it over path, so readers never observe a partially written file.
// Missing parent directories are created.
func (r *Repository) SaveFrom(ctx context.Context, path string, src io.Reader) error {
	if path == "" {
		return ErrEmptyPath
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	if err := r.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := afero.TempFile(r.fs, dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file for %s: %w", path, err)
	}
	tmpName := tmp.Name()

	written, err := io.Copy(tmp, src)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = r.fs.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err = r.fs.Chmod(tmpName, filePerm); err != nil {
		r.log.DebugContext(ctx, "Could not change file mode", "path", tmpName, "error", err)
	}

	if err = r.fs.Rename(tmpName, path); err != nil {
		_ = r.fs.Remove(tmpName)
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}

	r.log.DebugContext(ctx, "File written", "path", path, "bytes", written)

	return nil
}

// Open opens path for reading.
func (r *Repository) Open(path string) (afero.File, error) {
	file, err := r.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	return file, nil
}

// Glob returns the names of all files matching pattern, in lexical order.
func (r *Repository) Glob(pattern string) ([]string, error) {
	matches, err := afero.Glob(r.fs, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to glob %s: %w", pattern, err)
	}

	return matches, nil
}

// Stat returns file info for path.
func (r *Repository) Stat(path string) (os.FileInfo, error) {
	info, err := r.fs.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	return info, nil
}
