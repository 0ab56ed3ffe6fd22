// Package config provides configuration management for topoart.
//
// This package handles:
//   - Loading and saving settings from JSON files
//   - Default configuration values
//   - Conversion to render options and DEM client configuration
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// Renders 1080x1080 PNGs into ./img on a white background
//	// Reads records from ./data/metadata.json
//	// One artwork at a time
//
// # Loading from File
//
//	settings, err := config.Load("topoart.json")
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// # Saving Settings
//
//	settings.OutputDir = "/srv/prints"
//	err := settings.Save("topoart.json")
//
// # Configuration Options
//
// Settings includes options for:
//   - Input and output locations (metadata, palette, DEMs, images)
//   - Canvas size, resolution, fonts and background
//   - Animation frame delay and size
//   - Concurrent artwork limit
//   - DEM service endpoint, credentials and retry behavior
package config
