package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/UnknownOlympus/trackmap/internal/models"
	"github.com/UnknownOlympus/trackmap/internal/repository"
	"github.com/tkrajina/gpxgo/gpx"
)

// GPXReader reads GPX files.
type GPXReader struct {
	repo repository.Interface
	log  *slog.Logger
}

// NewGPXReader creates a new GPX reader.
func NewGPXReader(repo repository.Interface, log *slog.Logger) *GPXReader {
	return &GPXReader{repo: repo, log: log}
}

// Read parses the GPX file at path. Track segment points come first, then route
// points. Waypoints are not part of a path and are ignored. Elevation is dropped.
func (gr *GPXReader) Read(ctx context.Context, path string) (*models.Track, error) {
	gr.log.DebugContext(ctx, "Reading GPX", "path", path)

	file, err := gr.repo.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	gpxFile, err := gpx.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", path, ErrMalformedDocument, err)
	}

	points := []models.Point{}
	for _, track := range gpxFile.Tracks {
		for _, segment := range track.Segments {
			for _, point := range segment.Points {
				points = append(points, models.Point{Latitude: point.Latitude, Longitude: point.Longitude})
			}
		}
	}
	for _, route := range gpxFile.Routes {
		for _, point := range route.Points {
			points = append(points, models.Point{Latitude: point.Latitude, Longitude: point.Longitude})
		}
	}

	return &models.Track{SourceName: path, Format: string(TypeGPX), Points: points}, nil
}
