// Package model defines the core data structures used throughout topoart.
//
// # Artwork
//
// Artwork describes one rendering: where the elevation raster lives, how many
// contour bands to draw, which colors anchor the ramp and whether the result
// is a single print or a sweep animation:
//
//	art := model.Artwork{Name: "Mount_Rainier", Levels: 50, Kind: model.KindSweep}
//	fmt.Println(art.Dir("img"))         // img/Mount_Rainier
//	fmt.Println(art.FramePath("img", 3, "png")) // img/Mount_Rainier/Mount_Rainier 03.png
//
// # Frames
//
// FrameSpec ties one output image to the mask level it was rendered with.
// Level 0 means no mask (static prints).
package model
