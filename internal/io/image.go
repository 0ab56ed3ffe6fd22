package ioutils

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/image/draw"
)

// ImageService encodes rendered frames and assembles them into animations.
type ImageService struct{}

// NewImageService creates a new ImageService.
func NewImageService() *ImageService {
	return &ImageService{}
}

// SaveImage encodes img to path. The format follows the extension: ".jpg" and
// ".jpeg" produce JPEG at quality 90, anything else PNG. The parent directory
// is created if needed.
func (s *ImageService) SaveImage(ctx context.Context, img image.Image, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: 90})
	default:
		err = png.Encode(f, img)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}

// ResizeImage scales img to fit within maxWidth x maxHeight, preserving the
// aspect ratio. Images that already fit are returned unchanged.
//
// The Catmull-Rom algorithm is used for high-quality resizing.
//
// Example:
//
//	// A 1500x1000 image becomes 1000x666
//	small := svc.ResizeImage(img, 1000, 1000)
func (s *ImageService) ResizeImage(img image.Image, maxWidth, maxHeight int) image.Image {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width <= maxWidth && height <= maxHeight {
		return img
	}

	ratio := float64(width) / float64(height)
	if float64(maxWidth)/float64(maxHeight) > ratio {
		// Height is the limiting factor
		width = int(float64(maxHeight) * ratio)
		height = maxHeight
	} else {
		// Width is the limiting factor
		height = int(float64(maxWidth) / ratio)
		width = maxWidth
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

// GIFOptions controls animation assembly.
type GIFOptions struct {
	// Delay is shown between frames. GIF stores it in hundredths of a second.
	Delay time.Duration

	// MaxSize bounds the frame width and height in pixels. Zero keeps the
	// frames at their rendered size.
	MaxSize int

	// Palette is the color table of every frame. Nil uses the web-safe
	// palette.
	Palette color.Palette
}

// EncodeGIF reads the frame images at paths, in order, and writes them to out
// as an animation that loops forever.
func (s *ImageService) EncodeGIF(ctx context.Context, paths []string, out string, opts GIFOptions) error {
	if len(paths) == 0 {
		return fmt.Errorf("no frames for %s", out)
	}
	pal := opts.Palette
	if len(pal) == 0 {
		pal = palette.WebSafe
	}
	delay := int(opts.Delay / (10 * time.Millisecond))

	anim := &gif.GIF{LoopCount: 0}
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		img, err := decodeFile(p)
		if err != nil {
			return err
		}
		if opts.MaxSize > 0 {
			img = s.ResizeImage(img, opts.MaxSize, opts.MaxSize)
		}

		b := img.Bounds()
		frame := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), pal)
		draw.Draw(frame, frame.Bounds(), img, b.Min, draw.Src)
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, delay)
	}

	if err := EnsureDir(filepath.Dir(out)); err != nil {
		return err
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	err = gif.EncodeAll(f, anim)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", out, err)
	}
	return nil
}

// FramePalette builds a GIF color table that holds the given colors exactly,
// followed by black, white and the web-safe colors. The table is capped at 256
// entries.
func FramePalette(colors ...color.RGBA) color.Palette {
	seen := make(map[color.RGBA]bool)
	pal := make(color.Palette, 0, 256)
	add := func(c color.RGBA) {
		c.A = 0xFF
		if seen[c] || len(pal) == 256 {
			return
		}
		seen[c] = true
		pal = append(pal, c)
	}

	for _, c := range colors {
		add(c)
	}
	add(color.RGBA{A: 0xFF})
	add(color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF})
	for _, c := range palette.WebSafe {
		add(color.RGBAModel.Convert(c).(color.RGBA))
	}
	return pal
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}
