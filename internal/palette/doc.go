// Package palette builds the two-color diverging ramps used to color contour
// bands.
//
// # Opposite Colors
//
// A ramp is defined by one anchor color. When the other end is not given it
// is chosen from a fixed palette as the entry furthest from the anchor in RGB
// space:
//
//	p := palette.Default()
//	hex, _ := palette.OppositeColor(p, "#0BBCD6")
//
// Ties go to the entry that comes first in the palette, so palettes are kept
// as ordered lists and Load preserves the key order of the JSON file.
//
// # Ramps and Masks
//
//	ramp, _ := palette.BuildRamp(p, "", "#0BBCD6", 50)
//	frame := ramp.Mask(10, false, palette.White) // first 10 bands visible
//
// Ramps are never modified in place; Mask always returns a new ramp.
package palette
