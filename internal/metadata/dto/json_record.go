package dto

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/handiism/topoart/internal/model"
)

// FlexFloat decodes a number or a list of numbers (only the first is kept),
// the two shapes accepted for line widths.
type FlexFloat float64

// UnmarshalJSON accepts 0.25 and [0.25].
func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	var v float64
	if err := json.Unmarshal(data, &v); err == nil {
		*f = FlexFloat(v)
		return nil
	}
	var vs []float64
	if err := json.Unmarshal(data, &vs); err != nil {
		return fmt.Errorf("expected a number or a list of numbers, got %s", data)
	}
	if len(vs) > 0 {
		*f = FlexFloat(vs[0])
	}
	return nil
}

// FlexString decodes a string, a number, or a list of strings (only the first
// is kept).
type FlexString string

// UnmarshalJSON accepts "#000000", ["#000000"] and 7.
func (s *FlexString) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err == nil {
		*s = FlexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*s = FlexString(n.String())
		return nil
	}
	var vs []string
	if err := json.Unmarshal(data, &vs); err != nil {
		return fmt.Errorf("expected a string, got %s", data)
	}
	if len(vs) > 0 {
		*s = FlexString(vs[0])
	}
	return nil
}

// JSONLineKwargs holds the contour line options of a record.
type JSONLineKwargs struct {
	LineWidths FlexFloat  `json:"linewidths,omitempty"`
	Cmap       string     `json:"cmap,omitempty"`
	Colors     FlexString `json:"colors,omitempty"`
}

// JSONRecord is one entry of the metadata file.
type JSONRecord struct {
	UID        FlexString     `json:"uid"`
	Name       string         `json:"Name"`
	Path       string         `json:"Path"`
	Country    string         `json:"Country"`
	Latitude   float64        `json:"Latitude"`
	Longitude  float64        `json:"Longitude"`
	Radius     float64        `json:"Radius"`
	Levels     int            `json:"Levels"`
	Type       string         `json:"Type"`
	MaxColor   string         `json:"max_color"`
	MinColor   *string        `json:"min_color"`
	LineKwargs JSONLineKwargs `json:"line_kwargs"`
}

// ToModel converts the record to an Artwork.
func (r *JSONRecord) ToModel() model.Artwork {
	a := model.Artwork{
		UID:       normalizeUID(string(r.UID)),
		Name:      r.Name,
		Path:      r.Path,
		Country:   r.Country,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		Radius:    r.Radius,
		Levels:    r.Levels,
		Kind:      model.ParseKind(r.Type),
		MaxColor:  r.MaxColor,
		Lines: model.LineStyle{
			Width: float64(r.LineKwargs.LineWidths),
			Color: string(r.LineKwargs.Colors),
			Cmap:  r.LineKwargs.Cmap,
		},
	}
	if r.MinColor != nil {
		a.MinColor = *r.MinColor
	}
	return a
}

// FromModel converts an Artwork to its record form.
func FromModel(a model.Artwork) JSONRecord {
	r := JSONRecord{
		UID:       FlexString(a.UID),
		Name:      a.Name,
		Path:      a.Path,
		Country:   a.Country,
		Latitude:  a.Latitude,
		Longitude: a.Longitude,
		Radius:    a.Radius,
		Levels:    a.Levels,
		Type:      a.Kind.String(),
		MaxColor:  a.MaxColor,
		LineKwargs: JSONLineKwargs{
			LineWidths: FlexFloat(a.Lines.Width),
			Cmap:       a.Lines.Cmap,
			Colors:     FlexString(a.Lines.Color),
		},
	}
	if a.MinColor != "" {
		minColor := a.MinColor
		r.MinColor = &minColor
	}
	return r
}

// FormatUID zero-pads n to five digits.
func FormatUID(n int) string {
	return fmt.Sprintf("%05d", n)
}

// normalizeUID pads numeric uids written without leading zeros.
func normalizeUID(uid string) string {
	if n, err := strconv.Atoi(uid); err == nil && n >= 0 && len(uid) < 5 {
		return FormatUID(n)
	}
	return uid
}
