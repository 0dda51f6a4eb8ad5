// Package kml pulls LineString coordinates out of parsed KML documents.
package kml

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/UnknownOlympus/trackmap/internal/models"
	"github.com/beevik/etree"
)

const tupleFields = 3

// ErrCoordinateFormat is returned when a coordinate tuple is not "lon,lat,elev".
var ErrCoordinateFormat = errors.New("invalid coordinate tuple")

var errNotFinite = errors.New("value is not finite")

// Extract walks every Placemark of the document and returns the points of the
// first LineString found in each one, in document order.
// Placemarks without a LineString, or whose LineString has no coordinates, are skipped.
// A single malformed tuple fails the whole document.
func Extract(doc *etree.Document) ([]models.Point, error) {
	points := []models.Point{}
	if doc == nil {
		return points, nil
	}

	for _, placemark := range findAll(doc.Root(), "Placemark") {
		line := findFirst(placemark, "LineString")
		if line == nil {
			continue
		}
		coords := findFirst(line, "coordinates")
		if coords == nil {
			continue
		}

		parsed, err := ParseCoordinates(coords.Text())
		if err != nil {
			return nil, err
		}
		points = append(points, parsed...)
	}

	return points, nil
}

// ParseCoordinates parses whitespace separated "lon,lat,elev" tuples.
// The elevation is accepted but dropped; every point gets altitude 0.
func ParseCoordinates(text string) ([]models.Point, error) {
	tuples := strings.Fields(text)
	points := make([]models.Point, 0, len(tuples))

	for _, tuple := range tuples {
		fields := strings.Split(tuple, ",")
		if len(fields) != tupleFields {
			return nil, fmt.Errorf("%w: %q has %d fields, want %d", ErrCoordinateFormat, tuple, len(fields), tupleFields)
		}

		lon, err := parseDegrees(fields[0])
		if err != nil {
			return nil, fmt.Errorf("%w: invalid longitude %q", ErrCoordinateFormat, fields[0])
		}
		lat, err := parseDegrees(fields[1])
		if err != nil {
			return nil, fmt.Errorf("%w: invalid latitude %q", ErrCoordinateFormat, fields[1])
		}

		points = append(points, models.Point{Latitude: lat, Longitude: lon, Altitude: 0})
	}

	return points, nil
}

// parseDegrees parses a finite float. ParseFloat accepts "nan" and "inf",
// which cannot be placed on a map.
func parseDegrees(field string) (float64, error) {
	v, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNotFinite
	}
	return v, nil
}

// findAll returns every descendant of root (root included) with the given local
// name, in document order. etree's "//" selector is breadth-first, which breaks
// ordering for placemarks nested at different folder depths.
func findAll(root *etree.Element, tag string) []*etree.Element {
	var found []*etree.Element
	if root == nil {
		return found
	}

	var walk func(el *etree.Element)
	walk = func(el *etree.Element) {
		if el.Tag == tag {
			found = append(found, el)
		}
		for _, child := range el.ChildElements() {
			walk(child)
		}
	}
	walk(root)

	return found
}

// findFirst returns the first strict descendant of el with the given local name.
func findFirst(el *etree.Element, tag string) *etree.Element {
	for _, child := range el.ChildElements() {
		if child.Tag == tag {
			return child
		}
		if found := findFirst(child, tag); found != nil {
			return found
		}
	}

	return nil
}
