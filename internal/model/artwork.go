package model

import (
	"fmt"
	"path/filepath"
	"strings"

	ioutils "github.com/handiism/topoart/internal/io"
)

// Kind is the kind of artwork to produce.
type Kind int

const (
	// KindStatic renders one image with every band colored.
	KindStatic Kind = iota

	// KindSweep renders one frame per mask level, revealing bands from the
	// lowest up, and assembles them into a looping GIF.
	KindSweep

	// KindReverseSweep masks from the other end and plays the frames back
	// in reverse order.
	KindReverseSweep
)

// ParseKind interprets a metadata type string. Any string containing "gif"
// is a sweep; "reverse" anywhere in it makes the sweep reversed.
func ParseKind(s string) Kind {
	s = strings.ToLower(s)
	switch {
	case strings.Contains(s, "gif") && strings.Contains(s, "reverse"):
		return KindReverseSweep
	case strings.Contains(s, "gif"):
		return KindSweep
	default:
		return KindStatic
	}
}

// String returns the metadata type string for k.
func (k Kind) String() string {
	switch k {
	case KindSweep:
		return "gif"
	case KindReverseSweep:
		return "gif reverse"
	default:
		return "png"
	}
}

// IsSweep reports whether k produces an animation.
func (k Kind) IsSweep() bool { return k == KindSweep || k == KindReverseSweep }

// Reversed reports whether the sweep masks and plays back in reverse.
func (k Kind) Reversed() bool { return k == KindReverseSweep }

// LineStyle controls the contour line strokes.
type LineStyle struct {
	// Width is the stroke width in points.
	Width float64

	// Color is a "#RRGGBB" stroke color. Ignored when Cmap is set.
	Color string

	// Cmap names a continuous colormap (for example "viridis") sampled at
	// each threshold's position in the elevation range.
	Cmap string
}

// DefaultLineStyle is used for new records.
func DefaultLineStyle() LineStyle {
	return LineStyle{Width: 0.25, Cmap: "viridis"}
}

// Artwork is the read-only description of one rendering.
type Artwork struct {
	UID       string
	Name      string
	Path      string // elevation raster
	Country   string
	Latitude  float64
	Longitude float64
	Radius    float64 // km
	Levels    int
	Kind      Kind
	MaxColor  string
	MinColor  string // empty: derived from MaxColor
	Lines     LineStyle
}

// fileName is the name used for the artwork's directory and files. Names
// that sanitize to nothing fall back to the uid.
func (a Artwork) fileName() string {
	if name := ioutils.SanitizeFileName(a.Name); name != "" {
		return name
	}
	if uid := ioutils.SanitizeFileName(a.UID); uid != "" {
		return uid
	}
	return "artwork"
}

// Dir returns the artwork's output directory under outputDir.
func (a Artwork) Dir(outputDir string) string {
	return filepath.Join(outputDir, a.fileName())
}

// FramePath returns the image path for a mask level. Level 0 (no mask) has no
// suffix; other levels get a space and a two-digit, zero-padded level.
func (a Artwork) FramePath(outputDir string, level int, ext string) string {
	name := a.fileName()
	if level > 0 {
		name = fmt.Sprintf("%s %02d", name, level)
	}
	return filepath.Join(a.Dir(outputDir), name+"."+strings.TrimPrefix(ext, "."))
}

// AnimationPath returns the GIF path for a sweep.
func (a Artwork) AnimationPath(outputDir string) string {
	return filepath.Join(a.Dir(outputDir), a.fileName()+".gif")
}

// DisplayName is the upper-case title name with underscores as spaces and the
// uid appended.
func (a Artwork) DisplayName() string {
	name := strings.ToUpper(strings.ReplaceAll(a.Name, "_", " "))
	if a.UID == "" {
		return name
	}
	return fmt.Sprintf("%s [%s]", name, a.UID)
}

// String summarizes the artwork for listings.
func (a Artwork) String() string {
	return fmt.Sprintf("%s %s (%s) %.4f,%.4f r=%gkm levels=%d type=%s",
		a.UID, a.Name, a.Country, a.Latitude, a.Longitude, a.Radius, a.Levels, a.Kind)
}
