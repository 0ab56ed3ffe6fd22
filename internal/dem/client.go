package dem

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"

	"github.com/handiism/topoart/internal/geo"
	"github.com/handiism/topoart/internal/http"
	ioutils "github.com/handiism/topoart/internal/io"
)

// Config configures the DEM service.
type Config struct {
	// URL is the service endpoint.
	URL string

	// DEMType selects the dataset, for example "SRTMGL1" or "COP30".
	DEMType string

	// APIKey is sent as API_Key when set.
	APIKey string

	Timeout time.Duration

	// MaxRetries is the number of attempts for one request.
	MaxRetries int

	// RetryCooldown is the first wait between attempts in seconds. Each
	// further wait is multiplied by RetryExponent.
	RetryCooldown float64
	RetryExponent float64
}

// DefaultConfig returns the OpenTopography SRTM 30m configuration.
func DefaultConfig() Config {
	return Config{
		URL:           "https://portal.opentopography.org/API/globaldem",
		DEMType:       "SRTMGL1",
		Timeout:       2 * time.Minute,
		MaxRetries:    3,
		RetryCooldown: 0.2,
		RetryExponent: 4,
	}
}

// Client requests rasters from the DEM service.
type Client struct {
	cfg  Config
	http *http.Client

	// OnRetry, when set, is called before waiting for another attempt.
	OnRetry func(attempt int, err error)
}

// NewClient creates a Client.
func NewClient(cfg Config) *Client {
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 1
	}
	return &Client{cfg: cfg, http: http.NewClient(cfg.Timeout)}
}

// OutputFormat returns the service format name for a destination path.
func OutputFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".asc", ".txt", ".grd":
		return "AAIGrid"
	default:
		return "GTiff"
	}
}

// RequestURL builds the service URL for box in the given output format.
func (c *Client) RequestURL(box geo.Box, format string) string {
	q := url.Values{}
	q.Set("demtype", c.cfg.DEMType)
	q.Set("south", geo.FormatCoord(box.South))
	q.Set("north", geo.FormatCoord(box.North))
	q.Set("west", geo.FormatCoord(box.West))
	q.Set("east", geo.FormatCoord(box.East))
	q.Set("outputFormat", format)
	if c.cfg.APIKey != "" {
		q.Set("API_Key", c.cfg.APIKey)
	}
	return c.cfg.URL + "?" + q.Encode()
}

// Fetch downloads the raster covering box to dest, creating its directory.
// onProgress may be nil.
func (c *Client) Fetch(ctx context.Context, box geo.Box, dest string, onProgress func(written, total int64)) error {
	if err := ioutils.EnsureDir(filepath.Dir(dest)); err != nil {
		return err
	}
	u := c.RequestURL(box, OutputFormat(dest))

	var err error
	for tries := 0; tries < c.cfg.MaxRetries; tries++ {
		err = c.http.DownloadFile(ctx, u, dest, onProgress)
		if err == nil || !retryable(ctx, err) {
			break
		}
		if tries == c.cfg.MaxRetries-1 {
			break
		}
		if c.OnRetry != nil {
			c.OnRetry(tries+1, err)
		}
		c.waitForRetry(ctx, tries)
	}
	if err != nil {
		return fmt.Errorf("fetch DEM for %s: %w", box, err)
	}
	return nil
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var serr *http.StatusError
	if errors.As(err, &serr) {
		return serr.Temporary()
	}
	return true
}

func (c *Client) waitForRetry(ctx context.Context, tries int) {
	cooldown := c.cfg.RetryCooldown * math.Pow(c.cfg.RetryExponent, float64(tries))
	select {
	case <-ctx.Done():
	case <-time.After(time.Duration(cooldown * float64(time.Second))):
	}
}

// EIOCommand returns the elevation CLI command that clips the same box to
// path, quoted for a POSIX shell.
func EIOCommand(box geo.Box, path string) string {
	args := []string{"eio", "clip", "-o", path, "--bounds"}
	for _, v := range box.Bounds() {
		args = append(args, geo.FormatCoord(v))
	}
	return shellquote.Join(args...)
}
