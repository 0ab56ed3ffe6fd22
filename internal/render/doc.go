// Package render draws one contour artwork frame.
//
// A frame is a square canvas split into a main panel and a legend strip.
// The main panel shows the elevation grid as filled contour bands, one ramp
// color per band, overlaid with contour lines at every band threshold. The
// legend is a histogram of elevations with one bar per band, colored from the
// same ramp, a bottom axis and a block of title text.
//
// Thresholds are computed once per grid with NewBands and reused for every
// frame of a sweep:
//
//	bands, err := render.NewBands(grid, len(ramp))
//	if err != nil {
//		return err
//	}
//	r, err := render.NewRenderer(render.DefaultOptions())
//	if err != nil {
//		return err
//	}
//	img, err := r.Render(render.Job{Grid: grid, Bands: bands, Ramp: ramp})
//
// A Renderer may be shared by several goroutines.
package render
