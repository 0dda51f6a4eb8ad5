package models

// Point is a single track vertex in decimal degrees.
// Altitude is always zero: elevation in the source files is not read.
type Point struct {
	Latitude  float64 // Latitude of the point.
	Longitude float64 // Longitude of the point.
	Altitude  float64 // Altitude, constant 0.
}
