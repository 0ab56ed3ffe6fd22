package metadata

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	ioutils "github.com/handiism/topoart/internal/io"
	"github.com/handiism/topoart/internal/model"
)

// Defaults for records created from a map link.
const (
	DefaultLevels   = 50
	DefaultMaxColor = "#0BBCD6"
	DefaultMinColor = "#340B0B"
	DefaultRadius   = 10.0
	DefaultCountry  = "Unknown"
)

// zoomRadius maps a map zoom level to the radius in km that frames a similar
// area.
var zoomRadius = map[string]float64{
	"11z": 50,
	"12z": 20,
	"13z": 10,
	"14z": 5,
}

// MapsLocation is a place parsed from a map link.
type MapsLocation struct {
	Name      string
	Latitude  float64
	Longitude float64
	Zoom      string
}

// Radius returns the radius for the link's zoom level.
func (l MapsLocation) Radius() float64 {
	if r, ok := zoomRadius[l.Zoom]; ok {
		return r
	}
	return DefaultRadius
}

// ParseMapsLocation parses "<Place+Name>/@<lat>,<lon>,<zoom>" or a full map
// URL containing that segment.
func ParseMapsLocation(s string) (MapsLocation, error) {
	s = strings.TrimSpace(s)
	i := strings.Index(s, "/@")
	if i < 0 {
		return MapsLocation{}, fmt.Errorf("map link %q has no /@lat,lon,zoom part", s)
	}

	place := s[:i]
	if j := strings.LastIndex(place, "/"); j >= 0 {
		place = place[j+1:]
	}
	place = strings.ReplaceAll(place, "+", " ")
	if unescaped, err := url.PathUnescape(place); err == nil {
		place = unescaped
	}
	place = strings.TrimSpace(place)
	if place == "" {
		return MapsLocation{}, fmt.Errorf("map link %q has no place name", s)
	}

	coords := s[i+2:]
	if j := strings.Index(coords, "/"); j >= 0 {
		coords = coords[:j]
	}
	parts := strings.Split(coords, ",")
	if len(parts) != 3 {
		return MapsLocation{}, fmt.Errorf("map link %q: want lat,lon,zoom, got %q", s, coords)
	}
	lat, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return MapsLocation{}, fmt.Errorf("map link %q: latitude: %w", s, err)
	}
	lon, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return MapsLocation{}, fmt.Errorf("map link %q: longitude: %w", s, err)
	}
	return MapsLocation{Name: place, Latitude: lat, Longitude: lon, Zoom: parts[2]}, nil
}

// FileTitle turns a place name into a DEM file stem: title case, no spaces.
func FileTitle(name string) string {
	title := cases.Title(language.Und).String(name)
	return ioutils.SanitizeFileName(strings.ReplaceAll(title, " ", ""))
}

// NewRecord builds an artwork for loc with the default styling. The DEM goes
// to demDir as a GeoTIFF named after the place.
func NewRecord(loc MapsLocation, country, demDir string, kind model.Kind) model.Artwork {
	if country == "" {
		country = DefaultCountry
	}
	return model.Artwork{
		Name:      loc.Name,
		Path:      filepath.Join(demDir, FileTitle(loc.Name)+".tif"),
		Country:   country,
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
		Radius:    loc.Radius(),
		Levels:    DefaultLevels,
		Kind:      kind,
		MaxColor:  DefaultMaxColor,
		MinColor:  DefaultMinColor,
		Lines:     model.DefaultLineStyle(),
	}
}

// NewRecordFromMapsURL parses link and builds a record for it.
func NewRecordFromMapsURL(link, country, demDir string, kind model.Kind) (model.Artwork, error) {
	loc, err := ParseMapsLocation(link)
	if err != nil {
		return model.Artwork{}, err
	}
	return NewRecord(loc, country, demDir, kind), nil
}
