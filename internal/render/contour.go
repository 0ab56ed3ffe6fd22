package render

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/vector"

	"github.com/handiism/topoart/internal/raster"
)

type point struct{ x, y float64 }

type segment struct{ a, b point }

// Cell edges, counterclockwise from the bottom.
const (
	edgeBottom = iota
	edgeRight
	edgeTop
	edgeLeft
)

// cases maps a corner mask (bit 0 bottom-left, 1 bottom-right, 2 top-right,
// 3 top-left) to the crossed edge pairs. The saddles 5 and 10 are listed for a
// low center and swapped when the center is high.
var cases = [16][][2]int{
	1:  {{edgeLeft, edgeBottom}},
	2:  {{edgeBottom, edgeRight}},
	3:  {{edgeLeft, edgeRight}},
	4:  {{edgeRight, edgeTop}},
	5:  {{edgeLeft, edgeBottom}, {edgeRight, edgeTop}},
	6:  {{edgeBottom, edgeTop}},
	7:  {{edgeLeft, edgeTop}},
	8:  {{edgeTop, edgeLeft}},
	9:  {{edgeBottom, edgeTop}},
	10: {{edgeBottom, edgeRight}, {edgeTop, edgeLeft}},
	11: {{edgeRight, edgeTop}},
	12: {{edgeRight, edgeLeft}},
	13: {{edgeBottom, edgeRight}},
	14: {{edgeLeft, edgeBottom}},
}

// isolines traces the contour of g at level t with marching squares. Points
// are in grid coordinates (x = column, y = row). Cells touching a missing
// value are skipped.
func isolines(g *raster.Grid, t float64) []segment {
	var segs []segment
	for r := 0; r < g.Rows-1; r++ {
		for c := 0; c < g.Cols-1; c++ {
			bl, br := g.At(r, c), g.At(r, c+1)
			tr, tl := g.At(r+1, c+1), g.At(r+1, c)
			if math.IsNaN(bl) || math.IsNaN(br) || math.IsNaN(tr) || math.IsNaN(tl) {
				continue
			}

			mask := 0
			for bit, v := range [4]float64{bl, br, tr, tl} {
				if v >= t {
					mask |= 1 << bit
				}
			}
			pairs := cases[mask]
			if len(pairs) == 0 {
				continue
			}
			if (mask == 5 || mask == 10) && (bl+br+tr+tl)/4 >= t {
				pairs = cases[15-mask]
			}

			x, y := float64(c), float64(r)
			cross := func(edge int) point {
				switch edge {
				case edgeBottom:
					return point{x + frac(bl, br, t), y}
				case edgeRight:
					return point{x + 1, y + frac(br, tr, t)}
				case edgeTop:
					return point{x + frac(tl, tr, t), y + 1}
				default:
					return point{x, y + frac(bl, tl, t)}
				}
			}
			for _, p := range pairs {
				segs = append(segs, segment{cross(p[0]), cross(p[1])})
			}
		}
	}
	return segs
}

// frac locates t between a and b.
func frac(a, b, t float64) float64 {
	if a == b {
		return 0.5
	}
	return (t - a) / (b - a)
}

// strokeSegments draws segs onto the panel as lines of the given pixel width.
func strokeSegments(dst draw.Image, m panelMapping, z *vector.Rasterizer, segs []segment, width float64, c color.RGBA) {
	if len(segs) == 0 || width <= 0 {
		return
	}
	z.Reset(m.rect.Dx(), m.rect.Dy())
	h := width / 2
	for _, s := range segs {
		ax, ay := m.toPanel(s.a.x, s.a.y)
		bx, by := m.toPanel(s.b.x, s.b.y)
		dx, dy := bx-ax, by-ay
		l := math.Hypot(dx, dy)
		if l == 0 {
			continue
		}
		nx, ny := -dy/l*h, dx/l*h
		z.MoveTo(float32(ax+nx), float32(ay+ny))
		z.LineTo(float32(bx+nx), float32(by+ny))
		z.LineTo(float32(bx-nx), float32(by-ny))
		z.LineTo(float32(ax-nx), float32(ay-ny))
		z.ClosePath()
	}
	z.Draw(dst, m.rect, image.NewUniform(c), image.Point{})
}
