package raster

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoBand is returned (wrapped in a ReadError) when a file holds no raster
// band.
var ErrNoBand = errors.New("no raster band")

// ReadError reports a raster that is missing, unreadable or has no band.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read raster %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// Ingest loads the first band of the raster at path.
//
// The declared no-data sentinel is replaced by NaN and rows are reversed so
// that the grid is indexed north-up. The source file is not modified.
func Ingest(path string) (*Grid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}

	var grid *Grid
	var nodata float64
	switch strings.ToLower(filepath.Ext(path)) {
	case ".asc", ".txt", ".grd":
		grid, nodata, err = decodeASCIIGrid(data)
	default:
		grid, nodata, err = decodeGeoTIFF(data)
	}
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}

	grid.maskNoData(nodata)
	grid.flipRows()
	return grid, nil
}
