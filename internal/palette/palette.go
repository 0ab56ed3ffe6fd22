package palette

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"os"
)

// Entry is a named palette color.
type Entry struct {
	Name string
	RGB  color.RGBA
}

// Palette is an ordered, fixed set of named colors.
type Palette []Entry

// Default returns the built-in palette.
func Default() Palette {
	p := make(Palette, len(defaultEntries))
	copy(p, defaultEntries)
	return p
}

var defaultEntries = Palette{
	{"Midnight", color.RGBA{0x1B, 0x1B, 0x3A, 0xFF}},
	{"Oxblood", color.RGBA{0x34, 0x0B, 0x0B, 0xFF}},
	{"Forest", color.RGBA{0x1F, 0x4D, 0x2B, 0xFF}},
	{"Teal", color.RGBA{0x0B, 0xBC, 0xD6, 0xFF}},
	{"Cobalt", color.RGBA{0x1D, 0x4E, 0xD8, 0xFF}},
	{"Lavender", color.RGBA{0xB8, 0xA9, 0xE8, 0xFF}},
	{"Plum", color.RGBA{0x6A, 0x1B, 0x5C, 0xFF}},
	{"Coral", color.RGBA{0xFF, 0x6B, 0x6B, 0xFF}},
	{"Terracotta", color.RGBA{0xC8, 0x5A, 0x3A, 0xFF}},
	{"Mustard", color.RGBA{0xE1, 0xAD, 0x01, 0xFF}},
	{"Lemon", color.RGBA{0xFF, 0xE6, 0x6D, 0xFF}},
	{"Sage", color.RGBA{0x9C, 0xAF, 0x88, 0xFF}},
	{"Mint", color.RGBA{0x95, 0xE1, 0xA3, 0xFF}},
	{"Sky", color.RGBA{0xA8, 0xDA, 0xDC, 0xFF}},
	{"Blush", color.RGBA{0xF4, 0xC2, 0xC2, 0xFF}},
	{"Sand", color.RGBA{0xE8, 0xD5, 0xB7, 0xFF}},
	{"Slate", color.RGBA{0x6C, 0x75, 0x7D, 0xFF}},
	{"Charcoal", color.RGBA{0x2B, 0x2B, 0x2B, 0xFF}},
	{"Ivory", color.RGBA{0xF8, 0xF4, 0xE3, 0xFF}},
	{"Tangerine", color.RGBA{0xF8, 0x85, 0x00, 0xFF}},
}

// Load reads a palette from a JSON object mapping color names to [r, g, b]
// triples. Entries keep the order in which they appear in the file.
func Load(path string) (Palette, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p Palette
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("palette %s: %w", path, err)
	}
	if len(p) == 0 {
		return nil, fmt.Errorf("palette %s: no colors", path)
	}
	return p, nil
}

// UnmarshalJSON decodes a JSON object of name → [r, g, b] in key order.
func (p *Palette) UnmarshalJSON(data []byte) error {
	var raw map[string][3]uint8
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	order, err := objectKeys(data)
	if err != nil {
		return err
	}
	out := make(Palette, 0, len(order))
	for _, name := range order {
		c := raw[name]
		out = append(out, Entry{Name: name, RGB: color.RGBA{R: c[0], G: c[1], B: c[2], A: 0xFF}})
	}
	*p = out
	return nil
}

// MarshalJSON encodes the palette as a JSON object in palette order.
func (p Palette) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, e := range p {
		if i > 0 {
			buf = append(buf, ',')
		}
		name, err := json.Marshal(e.Name)
		if err != nil {
			return nil, err
		}
		buf = append(buf, name...)
		buf = append(buf, fmt.Sprintf(":[%d,%d,%d]", e.RGB.R, e.RGB.G, e.RGB.B)...)
	}
	return append(buf, '}'), nil
}

// objectKeys returns the top-level keys of a JSON object in document order,
// skipping duplicates.
func objectKeys(data []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("palette must be a JSON object")
	}
	seen := map[string]bool{}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key := tok.(string)
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// Opposite returns the entry furthest from anchor. The first entry wins a tie.
func (p Palette) Opposite(anchor color.RGBA) Entry {
	best, bestDist := Entry{}, -1.0
	for _, e := range p {
		if d := Distance(e.RGB, anchor); d > bestDist {
			best, bestDist = e, d
		}
	}
	return best
}

// OppositeColor returns the uppercase hex of the palette entry furthest from
// anchorHex.
func OppositeColor(p Palette, anchorHex string) (string, error) {
	if len(p) == 0 {
		return "", errors.New("empty palette")
	}
	anchor, err := ParseHex(anchorHex)
	if err != nil {
		return "", err
	}
	return Hex(p.Opposite(anchor).RGB), nil
}
