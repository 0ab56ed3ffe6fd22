package geo

import (
	"math"
	"strconv"
	"strings"
)

// KmPerDegree is the conversion used between kilometers and decimal degrees.
const KmPerDegree = 111.0

// Box is a (west, south, east, north) bounding box in decimal degrees.
type Box struct {
	West  float64
	South float64
	East  float64
	North float64
}

// BoxAroundPoint returns the box centered at (latitude, longitude) whose
// corners are radiusKm away from the center, with every coordinate rounded to
// decimals places.
//
// radiusKm must be positive; a non-positive radius yields a degenerate or
// inverted box.
func BoxAroundPoint(latitude, longitude, radiusKm float64, decimals int) Box {
	r := radiusKm / KmPerDegree
	side := math.Sqrt(r * r / 2)

	return Box{
		West:  round(longitude-side, decimals),
		South: round(latitude-side, decimals),
		East:  round(longitude+side, decimals),
		North: round(latitude+side, decimals),
	}
}

// Bounds returns the box as a (west, south, east, north) slice, the order used
// by elevation services.
func (b Box) Bounds() []float64 {
	return []float64{b.West, b.South, b.East, b.North}
}

// Width returns the east-west extent in degrees.
func (b Box) Width() float64 { return b.East - b.West }

// Height returns the north-south extent in degrees.
func (b Box) Height() float64 { return b.North - b.South }

// String joins the coordinates with single spaces using the shortest decimal
// representation of each value.
func (b Box) String() string {
	parts := make([]string, 0, 4)
	for _, v := range b.Bounds() {
		parts = append(parts, FormatCoord(v))
	}
	return strings.Join(parts, " ")
}

// FormatCoord formats a coordinate without trailing zeros.
func FormatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func round(x float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(x*p) / p
}
