package render

import (
	"image"
	"image/color"
	"math"

	"github.com/handiism/topoart/internal/palette"
	"github.com/handiism/topoart/internal/raster"
)

// panelMapping converts between panel pixels and fractional grid coordinates.
// The grid spans the whole panel; its highest row is at the top.
type panelMapping struct {
	rect       image.Rectangle
	rows, cols int
}

func (m panelMapping) toGrid(px, py float64) (x, y float64) {
	x = px / float64(m.rect.Dx()) * float64(m.cols-1)
	y = (1 - py/float64(m.rect.Dy())) * float64(m.rows-1)
	return x, y
}

// toPanel returns panel-relative pixel coordinates.
func (m panelMapping) toPanel(x, y float64) (px, py float64) {
	px = x / float64(m.cols-1) * float64(m.rect.Dx())
	py = (1 - y/float64(m.rows-1)) * float64(m.rect.Dy())
	return px, py
}

// sample interpolates g bilinearly at (x, y). It returns NaN when any of the
// four surrounding cells is missing.
func sample(g *raster.Grid, x, y float64) float64 {
	c := int(math.Floor(x))
	r := int(math.Floor(y))
	c = min(max(c, 0), g.Cols-2)
	r = min(max(r, 0), g.Rows-2)
	fx, fy := x-float64(c), y-float64(r)

	v00 := g.At(r, c)
	v01 := g.At(r, c+1)
	v10 := g.At(r+1, c)
	v11 := g.At(r+1, c+1)
	if math.IsNaN(v00) || math.IsNaN(v01) || math.IsNaN(v10) || math.IsNaN(v11) {
		return math.NaN()
	}
	bottom := v00*(1-fx) + v01*fx
	top := v10*(1-fx) + v11*fx
	return bottom*(1-fy) + top*fy
}

// fillBands paints every panel pixel with the ramp color at its layer's
// midpoint.
func fillBands(dst *image.RGBA, m panelMapping, g *raster.Grid, bands *Bands, ramp palette.Ramp, bg color.RGBA) {
	for py := 0; py < m.rect.Dy(); py++ {
		for px := 0; px < m.rect.Dx(); px++ {
			x, y := m.toGrid(float64(px)+0.5, float64(py)+0.5)
			v := sample(g, x, y)
			c := bg
			if !math.IsNaN(v) {
				if i := bands.Index(v); i >= 0 {
					c = ramp.At(bands.LayerPosition(i))
				}
			}
			dst.SetRGBA(m.rect.Min.X+px, m.rect.Min.Y+py, c)
		}
	}
}
