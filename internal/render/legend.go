package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/aclements/go-moremath/scale"
	"github.com/aclements/go-moremath/stats"
	"golang.org/x/image/draw"
	"golang.org/x/image/vector"

	"github.com/handiism/topoart/internal/palette"
	"github.com/handiism/topoart/internal/raster"
)

const (
	tickLength = 4
	maxTicks   = 8
)

// histogram counts the valid cells of g in n equal bins over [lo, hi]. The
// top edge belongs to the last bin.
func histogram(g *raster.Grid, lo, hi float64, n int) *stats.LinearHist {
	h := stats.NewLinearHist(lo, hi, n)
	for _, v := range g.Valid() {
		h.Add(v)
	}
	return h
}

func binCounts(h *stats.LinearHist) []uint {
	_, bins, over := h.Counts()
	counts := make([]uint, len(bins))
	copy(counts, bins)
	counts[len(counts)-1] += over
	return counts
}

// barColors colors each bar by the ramp entry at its bin center, with the
// centers rescaled to [0, 1].
func barColors(h *stats.LinearHist, n int, ramp palette.Ramp) []color.RGBA {
	first := h.BinToValue(0.5)
	last := h.BinToValue(float64(n) - 0.5)
	out := make([]color.RGBA, n)
	for k := range out {
		center := h.BinToValue(float64(k) + 0.5)
		out[k] = ramp.At((center - first) / (last - first))
	}
	return out
}

// axisScale spans the legend's x axis, starting at zero unless the data goes
// below it.
func axisScale(bands *Bands) scale.Linear {
	return scale.Linear{Min: min(0, bands.Min), Max: bands.Max}
}

func tickLabel(v float64) string {
	return fmt.Sprintf("%.6g", v)
}

// drawLegend draws the histogram bars into rect and the bottom axis below it.
func (r *Renderer) drawLegend(dst *image.RGBA, rect image.Rectangle, g *raster.Grid, bands *Bands, ramp palette.Ramp) {
	n := bands.Len()
	h := histogram(g, bands.Min, bands.Max, n)
	counts := binCounts(h)
	colors := barColors(h, n, ramp)

	var peak uint
	for _, c := range counts {
		peak = max(peak, c)
	}

	xs := axisScale(bands)
	toX := func(v float64) float64 {
		return float64(rect.Min.X) + xs.Map(v)*float64(rect.Dx())
	}

	var z vector.Rasterizer
	for k, c := range counts {
		if c == 0 || peak == 0 {
			continue
		}
		x0 := toX(h.BinToValue(float64(k))) - float64(rect.Min.X)
		x1 := toX(h.BinToValue(float64(k+1))) - float64(rect.Min.X)
		top := float64(rect.Dy()) * (1 - float64(c)/float64(peak))
		z.Reset(rect.Dx(), rect.Dy())
		z.MoveTo(float32(x0), float32(top))
		z.LineTo(float32(x1), float32(top))
		z.LineTo(float32(x1), float32(rect.Dy()))
		z.LineTo(float32(x0), float32(rect.Dy()))
		z.ClosePath()
		z.Draw(dst, rect, image.NewUniform(colors[k]), image.Point{})
	}

	// Bottom spine and ticks.
	axis := image.Rect(rect.Min.X, rect.Max.Y, rect.Max.X, rect.Max.Y+1)
	draw.Draw(dst, axis, image.Black, image.Point{}, draw.Src)

	major, _ := xs.Ticks(scale.TickOptions{Max: maxTicks})
	for _, v := range major {
		x := int(toX(v) + 0.5)
		if x < rect.Min.X || x > rect.Max.X {
			continue
		}
		tick := image.Rect(x, rect.Max.Y, x+1, rect.Max.Y+tickLength)
		draw.Draw(dst, tick, image.Black, image.Point{}, draw.Src)
		r.text(func() {
			centeredText(dst, r.face, x, rect.Max.Y+tickLength+1, tickLabel(v), color.Black)
		})
	}
}
