package raster

import (
	"bufio"
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// decodeASCIIGrid parses an ESRI ASCII grid. Rows are returned in file order
// (north first). The returned nodata is NaN when the header declares none.
func decodeASCIIGrid(data []byte) (*Grid, float64, error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	sc.Split(bufio.ScanWords)

	header := map[string]float64{}
	var first string
	for sc.Scan() {
		key := strings.ToLower(sc.Text())
		if _, err := strconv.ParseFloat(key, 64); err == nil {
			first = key
			break
		}
		if !sc.Scan() {
			return nil, 0, fmt.Errorf("header %q has no value", key)
		}
		v, err := strconv.ParseFloat(sc.Text(), 64)
		if err != nil {
			return nil, 0, fmt.Errorf("header %q: %w", key, err)
		}
		header[key] = v
	}
	if err := sc.Err(); err != nil {
		return nil, 0, err
	}

	ncols, nrows := header["ncols"], header["nrows"]
	if !(ncols >= 1 && nrows >= 1) {
		return nil, 0, ErrNoBand
	}
	if ncols > maxCells || nrows > maxCells {
		return nil, 0, fmt.Errorf("%gx%g grid exceeds %d cells", ncols, nrows, maxCells)
	}
	cols, rows := int(ncols), int(nrows)
	if err := checkCells(uint64(rows), uint64(cols)); err != nil {
		return nil, 0, err
	}
	// Every cell takes at least one byte.
	if rows*cols > len(data) {
		return nil, 0, fmt.Errorf("expected %d cells in a %d byte file", rows*cols, len(data))
	}
	nodata, ok := header["nodata_value"]
	if !ok {
		nodata = math.NaN()
	}

	values := make([]float64, 0, rows*cols)
	if first != "" {
		v, _ := strconv.ParseFloat(first, 64)
		values = append(values, v)
	}
	for sc.Scan() && len(values) < rows*cols {
		v, err := strconv.ParseFloat(sc.Text(), 64)
		if err != nil {
			return nil, 0, fmt.Errorf("cell %d: %w", len(values), err)
		}
		values = append(values, v)
	}
	if err := sc.Err(); err != nil {
		return nil, 0, err
	}
	if len(values) != rows*cols {
		return nil, 0, fmt.Errorf("expected %d cells, found %d", rows*cols, len(values))
	}

	grid, err := NewGrid(rows, cols, values)
	if err != nil {
		return nil, 0, err
	}
	return grid, nodata, nil
}
