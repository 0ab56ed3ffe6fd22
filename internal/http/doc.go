// Package http provides the HTTP transport used to fetch elevation rasters.
//
// The Client in this package handles:
//   - User-Agent headers
//   - Streaming downloads to disk with progress tracking
//   - Atomic replacement of the destination file
//   - Timeout handling
//
// # Basic Usage
//
//	client := http.NewClient(2 * time.Minute)
//
//	// Download file with progress callback
//	err := client.DownloadFile(ctx, demURL, "DEMs/MountRainier.tif", func(written, total int64) {
//	    fmt.Printf("%d bytes\n", written)
//	})
//
// Responses other than 200 OK are returned as *StatusError, so callers can
// tell a rejected request from a failing server:
//
//	var serr *http.StatusError
//	if errors.As(err, &serr) && serr.Temporary() {
//	    // retry
//	}
//
// # Progress Tracking
//
// The ProgressWriter type can be used to wrap any io.Writer for progress tracking:
//
//	pw := &http.ProgressWriter{
//	    Writer:   file,
//	    Total:    contentLength,
//	    OnUpdate: func(written, total int64) { /* update UI */ },
//	}
package http
