// Package pipeline turns artwork records into image files.
//
// # Manager
//
// The Manager coordinates the whole process for each artwork:
//
//  1. Fetch the elevation raster if it is missing (optional)
//  2. Read the raster into a grid
//  3. Build the color ramp from the record's anchor colors
//  4. Render one static frame, or one frame per mask level for sweeps
//  5. Assemble sweep frames into a looping GIF
//
// # Basic Usage
//
//	manager, err := pipeline.NewManager(settings, func(event pipeline.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	err = manager.Initialize(store, []string{"Mount_Rainier"}, false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	err = manager.StartRenders(ctx)
//
// # Sweeps
//
// A sweep of N levels renders frames 1..N in increasing order. Frame i shows
// bands 0..i-1 (or, reversed, bands i..N-1) and paints the others with the
// background. PlanSweep computes the frames without rendering anything;
// PlaybackOrder gives the order in which they are animated.
//
// # Concurrency
//
// Each artwork is rendered sequentially. Up to
// settings.MaxConcurrentArtworks artworks run in parallel; a failing artwork
// does not stop the others.
//
// # Progress Tracking
//
// Progress is reported via a callback function that receives ProgressEvent:
//
//	type ProgressEvent struct {
//	    Message string
//	    Level   ProgressLevel // Info, Verbose, Warning, Error, Success
//	}
package pipeline
