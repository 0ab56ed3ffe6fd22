package render

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

func newFace(size, dpi float64) (font.Face, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     dpi,
		Hinting: font.HintingFull,
	})
}

// textBox draws stacked lines of text with the top-left corner at (x, y).
func textBox(dst *image.RGBA, face font.Face, x, y int, lines []string, c color.Color) {
	m := face.Metrics()
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(c), Face: face}
	for i, line := range lines {
		d.Dot = fixed.Point26_6{
			X: fixed.I(x),
			Y: fixed.I(y) + m.Ascent + fixed.Int26_6(i)*m.Height,
		}
		d.DrawString(line)
	}
}

// centeredText draws s horizontally centered on cx with its top at y.
func centeredText(dst *image.RGBA, face font.Face, cx, y int, s string, c color.Color) {
	w := font.MeasureString(face, s)
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(cx) - w/2, Y: fixed.I(y) + face.Metrics().Ascent},
	}
	d.DrawString(s)
}

func lineHeight(face font.Face) int {
	return face.Metrics().Height.Ceil()
}
