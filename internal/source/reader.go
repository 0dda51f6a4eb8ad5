package source

import (
	"context"
	"errors"

	"github.com/UnknownOlympus/trackmap/internal/models"
)

// Reader is an interface that defines a method for loading one track file.
// The Read method takes a context and a file path as input,
// and returns the track read from it and an error if any occurs.
type Reader interface {
	Read(ctx context.Context, path string) (*models.Track, error)
}

// Common errors for source readers.
var (
	ErrMalformedDocument = errors.New("malformed track document")
	ErrCorruptArchive    = errors.New("corrupt kmz archive")
	ErrNoKMLInArchive    = errors.New("no kml entry found in kmz archive")
)
