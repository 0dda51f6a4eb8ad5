package source

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/trackmap/internal/repository"
)

// Type represents a track file format.
type Type string

const (
	// TypeKML represents plain KML documents.
	TypeKML Type = "kml"
	// TypeKMZ represents zip archives wrapping KML documents.
	TypeKMZ Type = "kmz"
	// TypeGPX represents GPS exchange format files.
	TypeGPX Type = "gpx"
)

// ReaderConfig holds configuration for creating a source reader.
type ReaderConfig struct {
	Type       Type                 // Type of reader to create
	Repository repository.Interface // Repository used to open and write files
	ExtractKMZ bool                 // ExtractKMZ writes the chosen archive entry next to the archive (kmz only)
	Logger     *slog.Logger         // Logger for the reader
}

// NewReader creates a source reader based on the provided configuration.
//
// Supported types:
// - "kml": plain KML document
// - "kmz": zip archive, first KML entry is used
// - "gpx": GPX tracks and routes
//
// Returns an error if the type is unsupported or no repository is configured.
func NewReader(config ReaderConfig) (Reader, error) {
	if config.Repository == nil {
		return nil, errors.New("repository is required for source readers")
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	switch config.Type {
	case TypeKML:
		return NewKMLReader(config.Repository, config.Logger), nil
	case TypeKMZ:
		return NewKMZReader(config.Repository, config.ExtractKMZ, config.Logger), nil
	case TypeGPX:
		return NewGPXReader(config.Repository, config.Logger), nil
	default:
		return nil, fmt.Errorf("unsupported source type: %s", config.Type)
	}
}
