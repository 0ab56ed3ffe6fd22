package render

import (
	"sort"

	"github.com/aclements/go-moremath/vec"

	"github.com/handiism/topoart/internal/raster"
)

// Bands holds the contour thresholds of a grid: n evenly spaced levels from
// the lowest to the highest valid elevation.
type Bands struct {
	Min, Max   float64
	Thresholds []float64
}

// NewBands computes n thresholds over the observed range of g.
func NewBands(g *raster.Grid, n int) (*Bands, error) {
	if n < 2 {
		return nil, errorf("need at least 2 levels, got %d", n)
	}
	if g == nil || g.Rows < 2 || g.Cols < 2 {
		return nil, errorf("grid must be at least 2x2")
	}
	lo, hi, ok := g.Bounds()
	if !ok {
		return nil, errorf("grid has no valid cells")
	}
	if lo == hi {
		return nil, errorf("grid is flat at %g", lo)
	}
	return &Bands{Min: lo, Max: hi, Thresholds: vec.Linspace(lo, hi, n)}, nil
}

// Len returns the number of thresholds.
func (b *Bands) Len() int { return len(b.Thresholds) }

// Layers returns the number of filled layers, one per pair of adjacent
// thresholds.
func (b *Bands) Layers() int { return len(b.Thresholds) - 1 }

// Index returns the layer of v: i when t[i] <= v < t[i+1]. The maximum joins
// the top layer; values below the lowest threshold give -1.
func (b *Bands) Index(v float64) int {
	i := sort.Search(len(b.Thresholds), func(i int) bool { return b.Thresholds[i] > v })
	return min(i-1, b.Layers()-1)
}

// Position maps threshold i to [0, 1].
func (b *Bands) Position(i int) float64 {
	return float64(i) / float64(len(b.Thresholds)-1)
}

// LayerPosition maps layer i to the normalized elevation of its midpoint, so
// the bottom and top layers take the ends of a ramp.
func (b *Bands) LayerPosition(i int) float64 {
	return (float64(i) + 0.5) / float64(b.Layers())
}
