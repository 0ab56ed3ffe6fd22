package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/handiism/topoart/internal/dem"
	"github.com/handiism/topoart/internal/palette"
	"github.com/handiism/topoart/internal/render"
)

// Settings holds all configuration options.
type Settings struct {
	// Locations
	OutputDir    string `json:"output_dir"`
	DEMDir       string `json:"dem_dir"`
	MetadataPath string `json:"metadata_path"`
	PalettePath  string `json:"palette_path"` // empty: built-in palette

	// Canvas
	BackgroundColor string  `json:"background_color"`
	ImageSize       int     `json:"image_size"`
	DPI             float64 `json:"dpi"`
	FontSize        float64 `json:"font_size"`
	ImageFormat     string  `json:"image_format"` // png, jpg

	// Animation
	FrameDelayMs int `json:"frame_delay_ms"`
	GIFMaxSize   int `json:"gif_max_size"` // 0: frame size

	MaxConcurrentArtworks int `json:"max_concurrent_artworks"`

	// DEM service
	FetchMissingDEM   bool    `json:"fetch_missing_dem"`
	DEMAPIURL         string  `json:"dem_api_url"`
	DEMType           string  `json:"dem_type"`
	DEMAPIKey         string  `json:"dem_api_key"`
	DEMTimeoutSeconds int     `json:"dem_timeout_seconds"`
	DEMMaxRetries     int     `json:"dem_max_retries"`
	DEMRetryCooldown  float64 `json:"dem_retry_cooldown"`
	DEMRetryExponent  float64 `json:"dem_retry_exponent"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	demCfg := dem.DefaultConfig()
	return &Settings{
		OutputDir:    "img",
		DEMDir:       "DEMs",
		MetadataPath: filepath.Join("data", "metadata.json"),

		BackgroundColor: "#FFFFFF",
		ImageSize:       1080,
		DPI:             72,
		FontSize:        10,
		ImageFormat:     "png",

		FrameDelayMs: 100,
		GIFMaxSize:   0,

		MaxConcurrentArtworks: 1,

		FetchMissingDEM:   false,
		DEMAPIURL:         demCfg.URL,
		DEMType:           demCfg.DEMType,
		DEMTimeoutSeconds: int(demCfg.Timeout / time.Second),
		DEMMaxRetries:     demCfg.MaxRetries,
		DEMRetryCooldown:  demCfg.RetryCooldown,
		DEMRetryExponent:  demCfg.RetryExponent,
	}
}

// Load reads settings from a JSON file.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return settings, nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks values that would only fail deep inside a render.
func (s *Settings) Validate() error {
	if _, err := palette.ParseHex(s.BackgroundColor); err != nil {
		return fmt.Errorf("background_color: %w", err)
	}
	if s.ImageSize <= 0 {
		return fmt.Errorf("image_size must be positive, got %d", s.ImageSize)
	}
	switch s.ImageExt() {
	case "png", "jpg":
	default:
		return fmt.Errorf("image_format must be png or jpg, got %q", s.ImageFormat)
	}
	if s.FrameDelayMs < 0 {
		return fmt.Errorf("frame_delay_ms must not be negative, got %d", s.FrameDelayMs)
	}
	if s.MaxConcurrentArtworks < 1 {
		return fmt.Errorf("max_concurrent_artworks must be at least 1, got %d", s.MaxConcurrentArtworks)
	}
	return nil
}

// ImageExt returns the frame file extension.
func (s *Settings) ImageExt() string {
	ext := strings.ToLower(strings.TrimPrefix(s.ImageFormat, "."))
	if ext == "jpeg" {
		return "jpg"
	}
	return ext
}

// FrameDelay returns the per-frame animation delay.
func (s *Settings) FrameDelay() time.Duration {
	return time.Duration(s.FrameDelayMs) * time.Millisecond
}

// LoadPalette returns the fixed palette: the built-in one, or the JSON file at
// PalettePath.
func (s *Settings) LoadPalette() (palette.Palette, error) {
	if s.PalettePath == "" {
		return palette.Default(), nil
	}
	return palette.Load(s.PalettePath)
}

// ToRenderOptions converts settings to render.Options.
func (s *Settings) ToRenderOptions() (render.Options, error) {
	bg, err := palette.ParseHex(s.BackgroundColor)
	if err != nil {
		return render.Options{}, fmt.Errorf("background_color: %w", err)
	}
	opts := render.DefaultOptions()
	opts.Size = s.ImageSize
	opts.Background = bg
	opts.DPI = s.DPI
	opts.FontSize = s.FontSize
	return opts, nil
}

// ToDEMConfig converts settings to dem.Config.
func (s *Settings) ToDEMConfig() dem.Config {
	return dem.Config{
		URL:           s.DEMAPIURL,
		DEMType:       s.DEMType,
		APIKey:        s.DEMAPIKey,
		Timeout:       time.Duration(s.DEMTimeoutSeconds) * time.Second,
		MaxRetries:    s.DEMMaxRetries,
		RetryCooldown: s.DEMRetryCooldown,
		RetryExponent: s.DEMRetryExponent,
	}
}
