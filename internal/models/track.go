package models

// Track is the ordered point sequence read from one source file.
type Track struct {
	SourceName string  // SourceName is the path of the originating file.
	Format     string  // Format is the source format: kml, kmz or gpx.
	Points     []Point // Points in the order they appear in the source.
}

// Batch holds every track produced by one directory scan, in discovery order.
type Batch struct {
	Tracks []Track
}

// PointCount returns the total number of points across all tracks.
func (b Batch) PointCount() int {
	total := 0
	for _, track := range b.Tracks {
		total += len(track.Points)
	}

	return total
}
