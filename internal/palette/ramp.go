package palette

import (
	"fmt"
	"image/color"
	"math"

	"github.com/aclements/go-moremath/vec"
)

// Ramp is an ordered sequence of band colors running from the min anchor to
// the max anchor.
type Ramp []color.RGBA

// BuildRamp interpolates linearly in RGB between minHex and maxHex and samples
// n equally spaced colors. An empty minHex is replaced by the opposite of
// maxHex in p.
func BuildRamp(p Palette, minHex, maxHex string, n int) (Ramp, error) {
	if n < 1 {
		return nil, fmt.Errorf("ramp needs at least one color, got %d", n)
	}
	if minHex == "" {
		var err error
		if minHex, err = OppositeColor(p, maxHex); err != nil {
			return nil, err
		}
	}
	lo, err := ParseHex(minHex)
	if err != nil {
		return nil, err
	}
	hi, err := ParseHex(maxHex)
	if err != nil {
		return nil, err
	}

	if n == 1 {
		return Ramp{hi}, nil
	}
	ramp := make(Ramp, n)
	for i, x := range vec.Linspace(0, 1, n) {
		ramp[i] = lerp(lo, hi, x)
	}
	// Pin the anchors against rounding.
	ramp[0], ramp[n-1] = lo, hi
	return ramp, nil
}

func lerp(a, b color.RGBA, x float64) color.RGBA {
	ch := func(a, b uint8) uint8 {
		return uint8(math.Round(float64(a)*(1-x) + float64(b)*x))
	}
	return color.RGBA{R: ch(a.R, b.R), G: ch(a.G, b.G), B: ch(a.B, b.B), A: 0xFF}
}

// Mask returns a new ramp in which the bands hidden at cutoff are replaced by
// background. Without reverse, bands below cutoff stay visible; with reverse,
// bands at or above cutoff stay visible.
func (r Ramp) Mask(cutoff int, reverse bool, background color.RGBA) Ramp {
	out := make(Ramp, len(r))
	for i, c := range r {
		visible := i < cutoff
		if reverse {
			visible = i >= cutoff
		}
		if visible {
			out[i] = c
		} else {
			out[i] = background
		}
	}
	return out
}

// At looks up the color for x in [0, 1] the way a discrete colormap does:
// index min(floor(x·N), N−1), clamped at 0.
func (r Ramp) At(x float64) color.RGBA {
	i := int(math.Floor(x * float64(len(r))))
	if i < 0 || math.IsNaN(x) {
		i = 0
	}
	if i >= len(r) {
		i = len(r) - 1
	}
	return r[i]
}

// Equal reports whether two ramps hold the same colors in the same order.
func (r Ramp) Equal(o Ramp) bool {
	if len(r) != len(o) {
		return false
	}
	for i := range r {
		if r[i] != o[i] {
			return false
		}
	}
	return true
}

// Hex returns the ramp's colors as uppercase hex strings.
func (r Ramp) Hex() []string {
	out := make([]string, len(r))
	for i, c := range r {
		out[i] = Hex(c)
	}
	return out
}
