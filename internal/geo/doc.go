// Package geo computes the geographic bounding boxes used to request and
// label elevation rasters.
//
// # Bounding Boxes
//
// BoxAroundPoint returns a square box (in degree space) around a center point.
// The radius is the distance from the center to each corner:
//
//	box := geo.BoxAroundPoint(46.8523, -121.7603, 10, 4)
//	fmt.Println(box) // -121.824 46.7886 -121.6966 46.916
//
// Boxes are immutable values. Coordinates are rounded to the requested number
// of decimal places, which is 4 for DEM requests and 2 for artwork titles.
package geo
