package render

import (
	"errors"
	"image"
	"image/color"
	"strings"
	"sync"

	ggpalette "github.com/aclements/go-gg/palette"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/vector"

	"github.com/handiism/topoart/internal/model"
	"github.com/handiism/topoart/internal/palette"
	"github.com/handiism/topoart/internal/raster"
)

// defaultLineWidth is used when a LineStyle leaves Width unset.
const defaultLineWidth = 1.5

// panelRatio is the height of the main panel relative to the legend.
const panelRatio = 15

// Options configures the canvas.
type Options struct {
	// Size is the width and height of the canvas in pixels.
	Size int

	// Background fills the canvas and replaces masked bands.
	Background color.RGBA

	// DPI converts point sizes (fonts, line widths) to pixels.
	DPI float64

	// FontSize is the text size in points.
	FontSize float64

	// Padding is the blank margin around the figure in pixels.
	Padding int
}

// DefaultOptions returns a 1080 pixel canvas at 72 DPI on white.
func DefaultOptions() Options {
	return Options{
		Size:       1080,
		Background: palette.White,
		DPI:        72,
		FontSize:   10,
		Padding:    7,
	}
}

// Job is one frame to draw.
type Job struct {
	Grid *raster.Grid

	// Bands may be nil, in which case they are computed from Grid with one
	// band per ramp color.
	Bands *Bands

	// Ramp has one color per band.
	Ramp palette.Ramp

	Lines model.LineStyle

	// Title lines are drawn at the top-left of the legend.
	Title []string
}

// Renderer draws frames. It is safe for concurrent use.
type Renderer struct {
	opts Options

	// mu guards face, which is not safe for concurrent use.
	mu   sync.Mutex
	face font.Face
}

// NewRenderer creates a Renderer with the given options.
func NewRenderer(opts Options) (*Renderer, error) {
	if opts.DPI <= 0 {
		return nil, errors.New("render: DPI must be positive")
	}
	if opts.FontSize <= 0 {
		return nil, errors.New("render: font size must be positive")
	}
	face, err := newFace(opts.FontSize, opts.DPI)
	if err != nil {
		return nil, err
	}
	r := &Renderer{opts: opts, face: face}
	if _, _, err := r.layout(); err != nil {
		return nil, err
	}
	return r, nil
}

// Options returns the renderer's options.
func (r *Renderer) Options() Options { return r.opts }

func (r *Renderer) text(f func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f()
}

// layout splits the canvas into the main panel and the legend. The legend's
// axis labels go below the legend rectangle.
func (r *Renderer) layout() (panel, legend image.Rectangle, err error) {
	pad := r.opts.Padding
	inner := image.Rect(pad, pad, r.opts.Size-pad, r.opts.Size-pad)
	var lh int
	r.text(func() { lh = lineHeight(r.face) })
	avail := inner.Dy() - pad - (tickLength + 1 + lh)
	if inner.Dx() < 2 || avail < panelRatio+1 {
		return panel, legend, errorf("canvas of %d pixels is too small", r.opts.Size)
	}
	panelH := avail * panelRatio / (panelRatio + 1)
	panel = image.Rect(inner.Min.X, inner.Min.Y, inner.Max.X, inner.Min.Y+panelH)
	legend = image.Rect(inner.Min.X, panel.Max.Y+pad, inner.Max.X, inner.Min.Y+avail+pad)
	return panel, legend, nil
}

// Render draws j onto a new canvas.
func (r *Renderer) Render(j Job) (*image.RGBA, error) {
	if j.Grid == nil || j.Grid.Rows < 2 || j.Grid.Cols < 2 {
		return nil, errorf("grid must be at least 2x2")
	}
	bands := j.Bands
	if bands == nil {
		var err error
		if bands, err = NewBands(j.Grid, len(j.Ramp)); err != nil {
			return nil, err
		}
	}
	if len(j.Ramp) != bands.Len() {
		return nil, errorf("ramp has %d colors for %d bands", len(j.Ramp), bands.Len())
	}
	lineColors, err := LineColors(j.Lines, bands)
	if err != nil {
		return nil, err
	}

	panel, legend, err := r.layout()
	if err != nil {
		return nil, err
	}
	size := r.opts.Size
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(r.opts.Background), image.Point{}, draw.Src)

	m := panelMapping{rect: panel, rows: j.Grid.Rows, cols: j.Grid.Cols}
	fillBands(dst, m, j.Grid, bands, j.Ramp, r.opts.Background)

	width := j.Lines.Width
	if width <= 0 {
		width = defaultLineWidth
	}
	width *= r.opts.DPI / 72
	var z vector.Rasterizer
	for i, t := range bands.Thresholds {
		strokeSegments(dst, m, &z, isolines(j.Grid, t), width, lineColors[i])
	}

	r.drawLegend(dst, legend, j.Grid, bands, j.Ramp)
	if len(j.Title) > 0 {
		r.text(func() {
			textBox(dst, r.face, legend.Min.X, legend.Min.Y, j.Title, color.Black)
		})
	}
	return dst, nil
}

// LineColors returns the stroke color of each threshold of bands.
func LineColors(s model.LineStyle, bands *Bands) ([]color.RGBA, error) {
	out := make([]color.RGBA, bands.Len())
	if s.Cmap == "" && s.Color != "" {
		c, err := palette.ParseHex(s.Color)
		if err != nil {
			return nil, &Error{Reason: err.Error()}
		}
		for i := range out {
			out[i] = c
		}
		return out, nil
	}

	cmap, err := colormap(s.Cmap)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i] = color.RGBAModel.Convert(cmap.Map(bands.Position(i))).(color.RGBA)
	}
	return out, nil
}

// colormap looks up a continuous colormap by name. The empty name selects
// viridis.
func colormap(name string) (ggpalette.Continuous, error) {
	switch strings.ToLower(name) {
	case "", "viridis":
		return ggpalette.Viridis, nil
	}
	return nil, errorf("unknown colormap %q", name)
}
