// Package ioutils provides file system and image output utilities.
//
// This package contains functions for:
//   - Directory creation and file writing
//   - Filename sanitization for cross-platform compatibility
//   - Frame encoding (PNG or JPEG)
//   - Animated GIF assembly from frame files
//
// # File Operations
//
//	// Ensure directory exists
//	err := ioutils.EnsureDir("img/Mount_Rainier")
//
//	// Write data to file, creating parent directories
//	err := ioutils.WriteFile(ctx, "data/metadata.json", data)
//
// # Filename Sanitization
//
// Use SanitizeFileName to remove invalid characters from filenames:
//
//	safe := ioutils.SanitizeFileName("Mount: Rainier/2") // Returns "Mount_ Rainier_2"
//
// # Images
//
// The ImageService writes rendered frames and assembles sweeps:
//
//	svc := ioutils.NewImageService()
//
//	// Write one frame
//	err := svc.SaveImage(ctx, img, "img/Mount_Rainier/Mount_Rainier 01.png")
//
//	// Loop the frames forever, 100ms each
//	pal := ioutils.FramePalette(ramp...)
//	err = svc.EncodeGIF(ctx, paths, "img/Mount_Rainier/Mount_Rainier.gif", ioutils.GIFOptions{
//		Delay:   100 * time.Millisecond,
//		Palette: pal,
//	})
package ioutils
