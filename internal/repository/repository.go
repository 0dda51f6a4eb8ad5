package repository

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/afero"
)

// Repository stores map artifacts and extracted archive entries on a filesystem.
type Repository struct {
	fs  afero.Fs
	log *slog.Logger
}

type Interface interface {
	Save(ctx context.Context, path string, data []byte) error
	SaveFrom(ctx context.Context, path string, src io.Reader) error
	Open(path string) (afero.File, error)
	Glob(pattern string) ([]string, error)
	Stat(path string) (os.FileInfo, error)
}

// NewRepository creates a new instance of Repository on top of the provided filesystem.
// It returns a pointer to the newly created Repository.
func NewRepository(fs afero.Fs, log *slog.Logger) *Repository {
	return &Repository{fs: fs, log: log}
}
