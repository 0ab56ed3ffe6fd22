package dem

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/handiism/topoart/internal/geo"
	"github.com/handiism/topoart/internal/http"
)

var rainier = geo.Box{West: -121.824, South: 46.7886, East: -121.6966, North: 46.916}

func testConfig(url string) Config {
	cfg := DefaultConfig()
	cfg.URL = url
	cfg.APIKey = "secret"
	cfg.RetryCooldown = 0
	return cfg
}

func TestRequestURL(t *testing.T) {
	c := NewClient(testConfig("https://example.org/API/globaldem"))
	want := "https://example.org/API/globaldem?API_Key=secret&demtype=SRTMGL1&east=-121.6966&north=46.916&outputFormat=GTiff&south=46.7886&west=-121.824"
	if got := c.RequestURL(rainier, "GTiff"); got != want {
		t.Errorf("RequestURL() =\n%s\nwant\n%s", got, want)
	}
}

func TestOutputFormat(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"DEMs/MountRainier.tif", "GTiff"},
		{"DEMs/MountRainier.TIFF", "GTiff"},
		{"DEMs/MountRainier.asc", "AAIGrid"},
	}
	for _, tt := range tests {
		if got := OutputFormat(tt.path); got != tt.want {
			t.Errorf("OutputFormat(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestFetch(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		calls.Add(1)
		if got := r.URL.Query().Get("outputFormat"); got != "AAIGrid" {
			t.Errorf("outputFormat = %q, want AAIGrid", got)
		}
		fmt.Fprint(w, "ncols 2\nnrows 2\n")
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "DEMs", "MountRainier.asc")
	if err := NewClient(testConfig(srv.URL)).Fetch(context.Background(), rainier, dest, nil); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if _, err := os.Stat(dest); err != nil {
		t.Errorf("raster not written: %v", err)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("requests = %d, want 1", n)
	}
}

func TestFetch_Retries(t *testing.T) {
	tests := []struct {
		name      string
		failures  int32
		code      int
		wantCalls int32
		wantErr   bool
	}{
		{"recovers from server errors", 2, nethttp.StatusServiceUnavailable, 3, false},
		{"gives up after max retries", 5, nethttp.StatusServiceUnavailable, 3, true},
		{"does not retry rejected requests", 5, nethttp.StatusUnauthorized, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
				if calls.Add(1) <= tt.failures {
					nethttp.Error(w, "try later", tt.code)
					return
				}
				fmt.Fprint(w, "raster")
			}))
			defer srv.Close()

			var retries []int
			c := NewClient(testConfig(srv.URL))
			c.OnRetry = func(attempt int, err error) { retries = append(retries, attempt) }

			err := c.Fetch(context.Background(), rainier, filepath.Join(t.TempDir(), "dem.tif"), nil)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Fetch() error = %v, wantErr %v", err, tt.wantErr)
			}
			if n := calls.Load(); n != tt.wantCalls {
				t.Errorf("requests = %d, want %d", n, tt.wantCalls)
			}
			if len(retries) != int(tt.wantCalls)-1 {
				t.Errorf("OnRetry calls = %v, want %d", retries, tt.wantCalls-1)
			}
			if tt.wantErr {
				var serr *http.StatusError
				if !errors.As(err, &serr) || serr.Code != tt.code {
					t.Errorf("Fetch() error = %v, want StatusError %d", err, tt.code)
				}
			}
		})
	}
}

func TestEIOCommand(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{
			"plain path",
			"DEMs/MountRainier.tif",
			"eio clip -o DEMs/MountRainier.tif --bounds -121.824 46.7886 -121.6966 46.916",
		},
		{
			"path with spaces",
			"My DEMs/Mount Rainier.tif",
			`eio clip -o 'My DEMs/Mount Rainier.tif' --bounds -121.824 46.7886 -121.6966 46.916`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EIOCommand(rainier, tt.path); got != tt.want {
				t.Errorf("EIOCommand() = %q, want %q", got, tt.want)
			}
		})
	}
}
