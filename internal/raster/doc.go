// Package raster loads single-band elevation rasters into in-memory grids.
//
// Two on-disk formats are understood:
//   - GeoTIFF (.tif, .tiff): stripped, single-band or band 1 of a multi-band
//     file, uncompressed, LZW or Deflate, integer or floating point samples.
//   - ESRI ASCII grid (.asc, .txt, .grd): the AAIGrid text format.
//
// # Ingest
//
//	grid, err := raster.Ingest("DEMs/MountRainier.tif")
//	if err != nil {
//	    var rerr *raster.ReadError
//	    if errors.As(err, &rerr) { ... }
//	}
//
// Cells equal to the file's declared no-data value are replaced by NaN, and
// the row order is reversed so that row 0 is the southern-most row. Grids are
// read-only once Ingest returns.
//
// Reprojection, resampling and mosaicking are out of scope: the raster is
// expected to be clipped to the area of interest already.
package raster
