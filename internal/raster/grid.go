package raster

import (
	"fmt"
	"math"

	"github.com/aclements/go-moremath/stats"
)

// maxCells bounds the size of a grid read from a file.
const maxCells = 1 << 26

// checkCells rejects declared sizes beyond maxCells.
func checkCells(rows, cols uint64) error {
	if rows > maxCells || cols > maxCells || rows*cols > maxCells {
		return fmt.Errorf("%dx%d grid exceeds %d cells", cols, rows, maxCells)
	}
	return nil
}

// Grid is a row-major elevation grid. Missing cells hold NaN.
//
// Row 0 is the southern-most row: increasing row index means increasing
// latitude.
type Grid struct {
	Rows   int
	Cols   int
	Values []float64
}

// NewGrid wraps values as a rows×cols grid. The slice is not copied.
func NewGrid(rows, cols int, values []float64) (*Grid, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("invalid grid size %dx%d", rows, cols)
	}
	if len(values) != rows*cols {
		return nil, fmt.Errorf("grid %dx%d needs %d values, got %d", rows, cols, rows*cols, len(values))
	}
	return &Grid{Rows: rows, Cols: cols, Values: values}, nil
}

// At returns the value at row r, column c.
func (g *Grid) At(r, c int) float64 {
	return g.Values[r*g.Cols+c]
}

// Valid returns the non-missing values in row-major order.
func (g *Grid) Valid() []float64 {
	out := make([]float64, 0, len(g.Values))
	for _, v := range g.Values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// Bounds returns the minimum and maximum non-missing values. ok is false when
// every cell is missing.
func (g *Grid) Bounds() (min, max float64, ok bool) {
	valid := g.Valid()
	if len(valid) == 0 {
		return math.NaN(), math.NaN(), false
	}
	min, max = stats.Bounds(valid)
	return min, max, true
}

// maskNoData replaces every cell equal to nodata with NaN.
func (g *Grid) maskNoData(nodata float64) {
	if math.IsNaN(nodata) {
		return
	}
	for i, v := range g.Values {
		if v == nodata {
			g.Values[i] = math.NaN()
		}
	}
}

// flipRows reverses the row order in place.
func (g *Grid) flipRows() {
	for top, bottom := 0, g.Rows-1; top < bottom; top, bottom = top+1, bottom-1 {
		a := g.Values[top*g.Cols : (top+1)*g.Cols]
		b := g.Values[bottom*g.Cols : (bottom+1)*g.Cols]
		for i := range a {
			a[i], b[i] = b[i], a[i]
		}
	}
}
