// Package render turns track batches into standalone Leaflet HTML maps.
package render

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/UnknownOlympus/trackmap/internal/models"
)

const (
	// DefaultZoom is the initial zoom level of a rendered map.
	DefaultZoom = 14
	// MaxZoom is the deepest zoom the default tile layers serve.
	MaxZoom = 20
	// worldZoom is used when there is nothing to centre on.
	worldZoom = 2
	// OutputExt replaces the source extension in artifact names.
	OutputExt = ".html"

	markerRadius      = 3
	markerFillOpacity = 0.8
)

// ErrZoomRange is returned for an initial zoom outside 0..MaxZoom.
var ErrZoomRange = errors.New("zoom out of range")

//go:embed templates/map.html.tmpl
var templates embed.FS

// Renderer writes a map document for a list of tracks.
// colorOffset is the batch index of tracks[0], so colours stay stable
// whether tracks are rendered together or one by one.
type Renderer interface {
	Render(w io.Writer, tracks []models.Track, colorOffset int) error
}

// LeafletRenderer renders tracks as circle markers over selectable tile layers.
type LeafletRenderer struct {
	tmpl     *template.Template
	zoom     int
	basemaps []Basemap
	log      *slog.Logger
}

type mapMarker struct {
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Popup string  `json:"popup"`
}

type mapTrack struct {
	Name    string      `json:"name"`
	Color   string      `json:"color"`
	Markers []mapMarker `json:"markers"`
}

type mapData struct {
	Center      [2]float64 `json:"center"`
	Zoom        int        `json:"zoom"`
	Radius      int        `json:"radius"`
	FillOpacity float64    `json:"fillOpacity"`
	Basemaps    []Basemap  `json:"basemaps"`
	Tracks      []mapTrack `json:"tracks"`
}

// NewLeafletRenderer parses the embedded map template.
// Zoom 0 is the whole world; nil basemaps fall back to DefaultBasemaps.
func NewLeafletRenderer(zoom int, basemaps []Basemap, log *slog.Logger) (*LeafletRenderer, error) {
	if zoom < 0 || zoom > MaxZoom {
		return nil, fmt.Errorf("%w: %d", ErrZoomRange, zoom)
	}
	tmpl, err := template.ParseFS(templates, "templates/map.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse map template: %w", err)
	}
	if len(basemaps) == 0 {
		basemaps = DefaultBasemaps
	}
	if log == nil {
		log = slog.Default()
	}

	return &LeafletRenderer{tmpl: tmpl, zoom: zoom, basemaps: basemaps, log: log}, nil
}

// Render writes the HTML document to w.
func (lr *LeafletRenderer) Render(w io.Writer, tracks []models.Track, colorOffset int) error {
	data := mapData{
		Zoom:        lr.zoom,
		Radius:      markerRadius,
		FillOpacity: markerFillOpacity,
		Basemaps:    lr.basemaps,
		Tracks:      make([]mapTrack, 0, len(tracks)),
	}

	center, ok := Center(tracks)
	if !ok {
		data.Zoom = worldZoom
		lr.log.Warn("No points to centre the map on, using world view", "tracks", len(tracks))
	}
	data.Center = [2]float64{center.Latitude, center.Longitude}

	for idx, track := range tracks {
		mt := mapTrack{
			Name:    filepath.Base(track.SourceName),
			Color:   ColorFor(colorOffset + idx).Hex,
			Markers: make([]mapMarker, 0, len(track.Points)),
		}
		for _, point := range track.Points {
			mt.Markers = append(mt.Markers, mapMarker{
				Lat:   point.Latitude,
				Lon:   point.Longitude,
				Popup: PopupText(point),
			})
		}
		data.Tracks = append(data.Tracks, mt)
	}

	payload, err := marshalTemplateJS(data)
	if err != nil {
		return fmt.Errorf("failed to encode map data: %w", err)
	}

	view := struct {
		Title   string
		MapData template.JS
	}{
		Title:   title(tracks),
		MapData: payload,
	}
	if err = lr.tmpl.Execute(w, view); err != nil {
		return fmt.Errorf("failed to render map: %w", err)
	}

	return nil
}

// Center returns the mean latitude and longitude over every point of every track.
// It reports false, with a zero point, when the tracks hold no points at all.
func Center(tracks []models.Track) (models.Point, bool) {
	var sumLat, sumLon float64
	count := 0
	for _, track := range tracks {
		for _, point := range track.Points {
			sumLat += point.Latitude
			sumLon += point.Longitude
			count++
		}
	}
	if count == 0 {
		return models.Point{}, false
	}

	return models.Point{Latitude: sumLat / float64(count), Longitude: sumLon / float64(count)}, true
}

// PopupText is the marker label for a point.
func PopupText(point models.Point) string {
	return fmt.Sprintf("Latitude: %.6f, Longitude: %.6f", point.Latitude, point.Longitude)
}

// OutputPath replaces the extension of a source path with OutputExt.
func OutputPath(sourceName string) string {
	return strings.TrimSuffix(sourceName, filepath.Ext(sourceName)) + OutputExt
}

func title(tracks []models.Track) string {
	names := make([]string, 0, len(tracks))
	for _, track := range tracks {
		names = append(names, filepath.Base(track.SourceName))
	}
	if len(names) == 0 {
		return "Track map"
	}

	return strings.Join(names, ", ")
}

// marshalTemplateJS encodes value as JSON tagged safe for a script context.
func marshalTemplateJS(value any) (template.JS, error) {
	payload, err := json.Marshal(value)
	if err != nil {
		return template.JS(""), err
	}

	return template.JS(payload), nil
}
