package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/UnknownOlympus/trackmap/internal/kml"
	"github.com/UnknownOlympus/trackmap/internal/models"
	"github.com/UnknownOlympus/trackmap/internal/repository"
	"github.com/beevik/etree"
)

// KMLReader reads plain KML files.
type KMLReader struct {
	repo repository.Interface
	log  *slog.Logger
}

// NewKMLReader creates a new KML reader.
func NewKMLReader(repo repository.Interface, log *slog.Logger) *KMLReader {
	return &KMLReader{repo: repo, log: log}
}

// Read parses the KML file at path and extracts its LineString points.
func (kr *KMLReader) Read(ctx context.Context, path string) (*models.Track, error) {
	kr.log.DebugContext(ctx, "Reading KML", "path", path)

	file, err := kr.repo.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	points, err := extractKML(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &models.Track{SourceName: path, Format: string(TypeKML), Points: points}, nil
}

// extractKML parses a KML stream into a tree and runs the extractor over it.
func extractKML(r io.Reader) ([]models.Point, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("%w: no root element", ErrMalformedDocument)
	}

	return kml.Extract(doc)
}
