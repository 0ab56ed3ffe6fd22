package raster

import (
	"cmp"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

// TIFF field types used by the fixtures.
const (
	typeASCII = 2
	typeShort = 3
	typeLong  = 4
)

type tiffField struct {
	tag, typ uint16
	vals     []uint32
	text     string
}

func (f tiffField) payload() []byte {
	var b []byte
	switch f.typ {
	case typeASCII:
		b = append([]byte(f.text), 0)
	case typeShort:
		for _, v := range f.vals {
			b = binary.LittleEndian.AppendUint16(b, uint16(v))
		}
	default:
		for _, v := range f.vals {
			b = binary.LittleEndian.AppendUint32(b, v)
		}
	}
	return b
}

func (f tiffField) count() uint32 {
	if f.typ == typeASCII {
		return uint32(len(f.text) + 1)
	}
	return uint32(len(f.vals))
}

// imageFields describes a single-strip-per-plane image.
func imageFields(width, height, bps, format, spp int) []tiffField {
	return []tiffField{
		{tag: tagImageWidth, typ: typeLong, vals: []uint32{uint32(width)}},
		{tag: tagImageLength, typ: typeLong, vals: []uint32{uint32(height)}},
		{tag: tagBitsPerSample, typ: typeShort, vals: []uint32{uint32(bps)}},
		{tag: tagSamplesPerPixel, typ: typeShort, vals: []uint32{uint32(spp)}},
		{tag: tagSampleFormat, typ: typeShort, vals: []uint32{uint32(format)}},
	}
}

// buildTIFF assembles a little-endian TIFF holding fields and strips. Strip
// offsets and byte counts are filled in.
func buildTIFF(t *testing.T, fields []tiffField, strips [][]byte) []byte {
	t.Helper()

	offsets := make([]uint32, len(strips))
	counts := make([]uint32, len(strips))
	for i, s := range strips {
		counts[i] = uint32(len(s))
	}
	fields = append(slices.Clone(fields),
		tiffField{tag: tagStripOffsets, typ: typeLong, vals: offsets},
		tiffField{tag: tagStripByteCounts, typ: typeLong, vals: counts},
	)
	slices.SortFunc(fields, func(a, b tiffField) int { return cmp.Compare(a.tag, b.tag) })

	ifdSize := 2 + len(fields)*12 + 4
	extraSize := 0
	for _, f := range fields {
		if n := len(f.payload()); n > 4 {
			extraSize += n
		}
	}
	next := uint32(8 + ifdSize + extraSize)
	for i, s := range strips {
		offsets[i] = next
		next += uint32(len(s))
	}

	le := binary.LittleEndian
	out := []byte("II")
	out = le.AppendUint16(out, 42)
	out = le.AppendUint32(out, 8)
	out = le.AppendUint16(out, uint16(len(fields)))

	var extra []byte
	extraOff := uint32(8 + ifdSize)
	for _, f := range fields {
		p := f.payload()
		out = le.AppendUint16(out, f.tag)
		out = le.AppendUint16(out, f.typ)
		out = le.AppendUint32(out, f.count())
		if len(p) <= 4 {
			out = append(out, p...)
			out = append(out, make([]byte, 4-len(p))...)
			continue
		}
		out = le.AppendUint32(out, extraOff+uint32(len(extra)))
		extra = append(extra, p...)
	}
	out = le.AppendUint32(out, 0)
	out = append(out, extra...)
	for _, s := range strips {
		out = append(out, s...)
	}
	return out
}

// lzwLiterals encodes data as TIFF LZW using 9-bit literal codes only,
// clearing the table often enough that the code width never grows.
func lzwLiterals(data []byte) []byte {
	const clear, eoi = 256, 257
	var (
		out   []byte
		acc   uint32
		nbits uint
	)
	put := func(code uint32) {
		acc = acc<<9 | code
		nbits += 9
		for nbits >= 8 {
			out = append(out, byte(acc>>(nbits-8)))
			nbits -= 8
		}
	}
	put(clear)
	for i, b := range data {
		if i > 0 && i%200 == 0 {
			put(clear)
		}
		put(uint32(b))
	}
	put(eoi)
	if nbits > 0 {
		out = append(out, byte(acc<<(8-nbits)))
	}
	return out
}

func uint16Strip(vals ...uint16) []byte {
	var b []byte
	for _, v := range vals {
		b = binary.LittleEndian.AppendUint16(b, v)
	}
	return b
}

func assertValues(t *testing.T, got, want []float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d values %v, want %d", len(got), got, len(want))
	}
	for i, v := range want {
		g := got[i]
		if math.IsNaN(v) != math.IsNaN(g) || (!math.IsNaN(v) && g != v) {
			t.Errorf("Values[%d] = %g, want %g", i, g, v)
		}
	}
}

func TestDecodeGeoTIFF_Samples(t *testing.T) {
	f32 := func(vals ...float32) []byte {
		var b []byte
		for _, v := range vals {
			b = binary.LittleEndian.AppendUint32(b, math.Float32bits(v))
		}
		return b
	}
	f64 := func(vals ...float64) []byte {
		var b []byte
		for _, v := range vals {
			b = binary.LittleEndian.AppendUint64(b, math.Float64bits(v))
		}
		return b
	}
	int16s := func(vals ...int16) []byte {
		var b []byte
		for _, v := range vals {
			b = binary.LittleEndian.AppendUint16(b, uint16(v))
		}
		return b
	}
	uint32s := func(vals ...uint32) []byte {
		var b []byte
		for _, v := range vals {
			b = binary.LittleEndian.AppendUint32(b, v)
		}
		return b
	}
	with := func(fields []tiffField, extra ...tiffField) []tiffField {
		return append(fields, extra...)
	}
	nodata := func(s string) tiffField {
		return tiffField{tag: tagGDALNoData, typ: typeASCII, text: s}
	}
	short := func(tag uint16, v uint32) tiffField {
		return tiffField{tag: tag, typ: typeShort, vals: []uint32{v}}
	}

	tests := []struct {
		name   string
		fields []tiffField
		strips [][]byte
		want   []float64
	}{
		{
			name:   "int16 with nodata",
			fields: with(imageFields(2, 2, 16, sampleInt, 1), nodata("-32768")),
			strips: [][]byte{int16s(-5, 100, -32768, 7)},
			want:   []float64{-5, 100, math.NaN(), 7},
		},
		{
			name:   "float32 with float32 nodata",
			fields: with(imageFields(2, 2, 32, sampleFloat, 1), nodata("-3.4028234663852886e+38")),
			strips: [][]byte{f32(1.5, -math.MaxFloat32, 250.25, 0)},
			want:   []float64{1.5, math.NaN(), 250.25, 0},
		},
		{
			name:   "float64",
			fields: imageFields(2, 1, 64, sampleFloat, 1),
			strips: [][]byte{f64(0.125, -7.5)},
			want:   []float64{0.125, -7.5},
		},
		{
			name:   "lzw",
			fields: with(imageFields(3, 2, 16, sampleUint, 1), short(tagCompression, compressionLZW)),
			strips: [][]byte{lzwLiterals(uint16Strip(1, 2, 3, 400, 500, 600))},
			want:   []float64{1, 2, 3, 400, 500, 600},
		},
		{
			name:   "chunky two samples",
			fields: imageFields(3, 1, 8, sampleUint, 2),
			strips: [][]byte{{10, 99, 20, 98, 30, 97}},
			want:   []float64{10, 20, 30},
		},
		{
			name:   "planar two samples",
			fields: with(imageFields(3, 1, 8, sampleUint, 2), short(tagPlanarConfig, 2)),
			strips: [][]byte{{10, 20, 30}, {99, 98, 97}},
			want:   []float64{10, 20, 30},
		},
		{
			name:   "predictor on 8-bit",
			fields: with(imageFields(4, 1, 8, sampleUint, 1), short(tagPredictor, 2)),
			strips: [][]byte{{10, 10, 251, 240}},
			want:   []float64{10, 20, 15, 255},
		},
		{
			name:   "predictor on 32-bit",
			fields: with(imageFields(3, 1, 32, sampleUint, 1), short(tagPredictor, 2)),
			strips: [][]byte{uint32s(100000, 4294967295, 4294867296)},
			want:   []float64{100000, 99999, 4294967295},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grid, nodata, err := decodeGeoTIFF(buildTIFF(t, tt.fields, tt.strips))
			if err != nil {
				t.Fatalf("decodeGeoTIFF() error = %v", err)
			}
			grid.maskNoData(nodata)
			assertValues(t, grid.Values, tt.want)
		})
	}
}

func TestIngest_RejectsOversizedRasters(t *testing.T) {
	huge := func(width, height uint32) []tiffField {
		return []tiffField{
			{tag: tagImageWidth, typ: typeLong, vals: []uint32{width}},
			{tag: tagImageLength, typ: typeLong, vals: []uint32{height}},
			{tag: tagBitsPerSample, typ: typeShort, vals: []uint32{16}},
		}
	}
	deflate := tiffField{tag: tagCompression, typ: typeShort, vals: []uint32{compressionDeflate}}

	tests := []struct {
		name string
		file string
		data []byte
	}{
		{"tiff beyond the cell limit", "huge.tif", buildTIFF(t, huge(0x7FFFFFFF, 0x7FFFFFFF), [][]byte{{0, 0, 0, 0}})},
		{"uncompressed tiff larger than the file", "big.tif", buildTIFF(t, huge(1000, 1000), [][]byte{{0, 0, 0, 0}})},
		{"compressed tiff with a short strip", "deflate.tif", buildTIFF(t, append(huge(4000, 4000), deflate), [][]byte{{0x78, 0x9c, 0x03, 0x00}})},
		{"ascii header beyond the cell limit", "huge.asc", []byte("ncols 2147483647\nnrows 2147483647\n1 2 3\n")},
		{"ascii header larger than the file", "big.asc", []byte("ncols 1000\nnrows 1000\n1 2 3\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			if err := os.WriteFile(path, tt.data, 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Ingest(path)
			var rerr *ReadError
			if !errors.As(err, &rerr) {
				t.Errorf("Ingest() error = %v, want *ReadError", err)
			}
		})
	}
}

func TestDecodeGeoTIFF_Unsupported(t *testing.T) {
	tiled := append(imageFields(2, 2, 16, sampleUint, 1), tiffField{tag: tagTileWidth, typ: typeShort, vals: []uint32{16}})
	complexInt := imageFields(2, 2, 16, 5, 1)

	tests := []struct {
		name string
		data []byte
	}{
		{"tiled", buildTIFF(t, tiled, [][]byte{uint16Strip(1, 2, 3, 4)})},
		{"unknown sample format", buildTIFF(t, complexInt, [][]byte{uint16Strip(1, 2, 3, 4)})},
		{"not a tiff", []byte("GIF89a and then some")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := decodeGeoTIFF(tt.data); err == nil {
				t.Errorf("decodeGeoTIFF() error = nil")
			}
		})
	}
}
