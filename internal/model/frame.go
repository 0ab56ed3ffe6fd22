package model

import "github.com/handiism/topoart/internal/palette"

// FrameSpec describes one output image of an artwork.
type FrameSpec struct {
	// Level is the mask level, 1..Levels for sweeps and 0 for static prints.
	Level int

	// Ramp holds the band colors used for this frame, already masked.
	Ramp palette.Ramp

	// Path is where the frame image is written.
	Path string
}
