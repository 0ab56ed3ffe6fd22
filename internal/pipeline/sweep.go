package pipeline

import (
	"image/color"
	"slices"

	"github.com/handiism/topoart/internal/geo"
	"github.com/handiism/topoart/internal/model"
	"github.com/handiism/topoart/internal/palette"
)

// PlanSweep lists the frames of a sweep: level i runs from 1 to len(ramp) and
// shows the ramp masked at i.
func PlanSweep(art model.Artwork, outputDir, ext string, ramp palette.Ramp, background color.RGBA) []model.FrameSpec {
	frames := make([]model.FrameSpec, 0, len(ramp))
	for level := 1; level <= len(ramp); level++ {
		frames = append(frames, model.FrameSpec{
			Level: level,
			Ramp:  ramp.Mask(level, art.Kind.Reversed(), background),
			Path:  art.FramePath(outputDir, level, ext),
		})
	}
	return frames
}

// PlanStatic returns the single unmasked frame of a static artwork.
func PlanStatic(art model.Artwork, outputDir, ext string, ramp palette.Ramp) model.FrameSpec {
	return model.FrameSpec{Ramp: ramp, Path: art.FramePath(outputDir, 0, ext)}
}

// PlaybackOrder returns the frame paths in animation order: as rendered, or
// last to first for reversed sweeps.
func PlaybackOrder(paths []string, reverse bool) []string {
	out := slices.Clone(paths)
	if reverse {
		slices.Reverse(out)
	}
	return out
}

// Title returns the text block printed on every frame.
func Title(art model.Artwork, ramp palette.Ramp) []string {
	box := geo.BoxAroundPoint(art.Latitude, art.Longitude, art.Radius, 2)
	lines := []string{
		"Name: " + art.DisplayName(),
		"Country: " + art.Country,
		"Coords: " + box.String(),
	}
	if len(ramp) > 0 {
		lines = append(lines, "Palette: "+palette.Hex(ramp[0])+" - "+palette.Hex(ramp[len(ramp)-1]))
	}
	return lines
}
