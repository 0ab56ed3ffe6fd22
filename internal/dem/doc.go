// Package dem fetches elevation rasters for a bounding box from a global DEM
// web service (OpenTopography's globaldem API by default).
//
//	client := dem.NewClient(dem.DefaultConfig())
//	box := geo.BoxAroundPoint(46.8523, -121.7603, 10, 4)
//	err := client.Fetch(ctx, box, "DEMs/MountRainier.tif", nil)
//
// The output format follows the destination's extension: ".asc" requests an
// ESRI ASCII grid, anything else a GeoTIFF. Requests that fail with a
// network error or a temporary HTTP status are retried with exponential
// backoff.
//
// EIOCommand prints the equivalent command for the elevation CLI, for users
// who prefer to clip SRTM tiles locally.
package dem
