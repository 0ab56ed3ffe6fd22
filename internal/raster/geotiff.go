package raster

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	gtiff "github.com/google/tiff"
	"golang.org/x/image/tiff/lzw"
)

// TIFF tags read by the decoder.
const (
	tagImageWidth      = 256
	tagImageLength     = 257
	tagBitsPerSample   = 258
	tagCompression     = 259
	tagStripOffsets    = 273
	tagSamplesPerPixel = 277
	tagRowsPerStrip    = 278
	tagStripByteCounts = 279
	tagPlanarConfig    = 284
	tagPredictor       = 317
	tagTileWidth       = 322
	tagSampleFormat    = 339
	tagGDALNoData      = 42113
)

const (
	compressionNone     = 1
	compressionLZW      = 5
	compressionDeflate  = 8
	compressionDeflate2 = 32946
)

const (
	sampleUint  = 1
	sampleInt   = 2
	sampleFloat = 3
)

// maxSamplesPerPixel bounds the interleaving a file may declare.
const maxSamplesPerPixel = 64

// directory gives typed access to the fields of the first image file
// directory.
type directory struct {
	ifd   gtiff.IFD
	order binary.ByteOrder
}

// uints returns the values of an integer field, or nil when it is absent.
func (d directory) uints(tag uint16) []uint64 {
	if !d.ifd.HasField(tag) {
		return nil
	}
	f := d.ifd.GetField(tag)
	size := int(f.Type().Size())
	b := f.Value().Bytes()
	n := int(f.Count())
	if size == 0 || len(b) < n*size {
		return nil
	}
	out := make([]uint64, n)
	for i := range out {
		out[i] = readBits(d.order, b[i*size:], size)
	}
	return out
}

func (d directory) first(tag uint16, def uint64) uint64 {
	if v := d.uints(tag); len(v) > 0 {
		return v[0]
	}
	return def
}

// ascii returns an ASCII field without its NUL terminator.
func (d directory) ascii(tag uint16) (string, bool) {
	if !d.ifd.HasField(tag) {
		return "", false
	}
	return strings.TrimRight(string(d.ifd.GetField(tag).Value().Bytes()), "\x00"), true
}

func readDirectory(data []byte) (directory, error) {
	t, err := gtiff.Parse(bytes.NewReader(data), gtiff.DefaultTagSpace, gtiff.DefaultFieldTypeSpace)
	if err != nil {
		return directory{}, err
	}
	ifds := t.IFDs()
	if len(ifds) == 0 {
		return directory{}, ErrNoBand
	}
	d := directory{ifd: ifds[0]}
	if !d.ifd.HasField(tagImageWidth) {
		return directory{}, ErrNoBand
	}
	d.order = d.ifd.GetField(tagImageWidth).Value().Order()
	return d, nil
}

// decodeGeoTIFF reads band 1 of a stripped GeoTIFF. Rows are returned in file
// order (north first). The returned nodata is NaN when the file declares none.
//
// golang.org/x/image/tiff refuses signed and floating point samples, so the
// directory is read with github.com/google/tiff and the strips are decoded
// here.
func decodeGeoTIFF(data []byte) (*Grid, float64, error) {
	d, err := readDirectory(data)
	if err != nil {
		return nil, 0, err
	}

	w := d.first(tagImageWidth, 0)
	h := d.first(tagImageLength, 0)
	spp := d.first(tagSamplesPerPixel, 1)
	if w == 0 || h == 0 || spp == 0 {
		return nil, 0, ErrNoBand
	}
	if spp > maxSamplesPerPixel {
		return nil, 0, fmt.Errorf("%d samples per pixel is not supported", spp)
	}
	if err := checkCells(h, w); err != nil {
		return nil, 0, err
	}
	if err := checkCells(1, w*spp); err != nil {
		return nil, 0, err
	}
	width, height := int(w), int(h)
	if d.ifd.HasField(tagTileWidth) {
		return nil, 0, errors.New("tiled GeoTIFF is not supported")
	}

	bps := int(d.first(tagBitsPerSample, 1))
	format := int(d.first(tagSampleFormat, sampleUint))
	if err := checkSampleLayout(bps, format); err != nil {
		return nil, 0, err
	}
	predictor := d.first(tagPredictor, 1)
	if predictor != 1 && predictor != 2 {
		return nil, 0, fmt.Errorf("predictor %d is not supported", predictor)
	}
	if predictor == 2 && format == sampleFloat {
		return nil, 0, errors.New("horizontal predictor on floating point samples is not supported")
	}

	// Band 1 is interleaved with the other bands in chunky files and stored
	// in the first strips in planar ones.
	stride := int(spp)
	if d.first(tagPlanarConfig, 1) == 2 {
		stride = 1
	}

	sampleBytes := bps / 8
	rowBytes := width * stride * sampleBytes
	compression := d.first(tagCompression, compressionNone)
	if compression == compressionNone && uint64(height)*uint64(rowBytes) > uint64(len(data)) {
		return nil, 0, fmt.Errorf("%dx%d samples do not fit in a %d byte file", width, height, len(data))
	}

	rowsPerStrip := int(min(d.first(tagRowsPerStrip, h), h))
	if rowsPerStrip <= 0 {
		rowsPerStrip = height
	}
	offsets := d.uints(tagStripOffsets)
	counts := d.uints(tagStripByteCounts)
	nstrips := (height + rowsPerStrip - 1) / rowsPerStrip
	if len(offsets) < nstrips || len(counts) < nstrips {
		return nil, 0, fmt.Errorf("expected %d strips, found %d offsets and %d byte counts", nstrips, len(offsets), len(counts))
	}

	conv := sampleConverter(bps, format)
	values := make([]float64, 0, min(width*height, len(data)))
	var raw []uint64
	for s := 0; s < nstrips; s++ {
		off, n := offsets[s], counts[s]
		if off > uint64(len(data)) || n > uint64(len(data))-off {
			return nil, 0, fmt.Errorf("strip %d lies outside the file", s)
		}

		rows := min(rowsPerStrip, height-s*rowsPerStrip)
		strip, err := decompress(data[off:off+n], compression, rows*rowBytes)
		if err != nil {
			return nil, 0, fmt.Errorf("strip %d: %w", s, err)
		}
		if len(strip) < rows*rowBytes {
			return nil, 0, fmt.Errorf("strip %d is short: %d bytes, want %d", s, len(strip), rows*rowBytes)
		}

		if raw == nil {
			raw = make([]uint64, width*stride)
		}
		for r := 0; r < rows; r++ {
			row := strip[r*rowBytes : (r+1)*rowBytes]
			for i := range raw {
				raw[i] = readBits(d.order, row[i*sampleBytes:], sampleBytes)
			}
			if predictor == 2 {
				undoDifferencing(raw, stride, bps)
			}
			for x := 0; x < width; x++ {
				values = append(values, conv(raw[x*stride]))
			}
		}
	}

	nodata := math.NaN()
	if s, ok := d.ascii(tagGDALNoData); ok {
		s = strings.TrimSpace(s)
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, 0, fmt.Errorf("GDAL_NODATA %q: %w", s, err)
		}
		nodata = v
		if format == sampleFloat && bps == 32 {
			nodata = float64(float32(v))
		}
	}

	grid, err := NewGrid(height, width, values)
	if err != nil {
		return nil, 0, err
	}
	return grid, nodata, nil
}

func checkSampleLayout(bps, format int) error {
	switch format {
	case sampleUint, sampleInt:
		if bps == 8 || bps == 16 || bps == 32 {
			return nil
		}
	case sampleFloat:
		if bps == 32 || bps == 64 {
			return nil
		}
	default:
		return fmt.Errorf("sample format %d is not supported", format)
	}
	return fmt.Errorf("%d-bit samples of format %d are not supported", bps, format)
}

// decompress inflates one strip, reading at most want bytes.
func decompress(b []byte, compression uint64, want int) ([]byte, error) {
	switch compression {
	case compressionNone:
		return b, nil
	case compressionLZW:
		r := lzw.NewReader(bytes.NewReader(b), lzw.MSB, 8)
		defer r.Close()
		return io.ReadAll(io.LimitReader(r, int64(want)))
	case compressionDeflate, compressionDeflate2:
		r, err := zlib.NewReader(bytes.NewReader(b))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return io.ReadAll(io.LimitReader(r, int64(want)))
	}
	return nil, fmt.Errorf("compression %d is not supported", compression)
}

func readBits(order binary.ByteOrder, b []byte, n int) uint64 {
	switch n {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(order.Uint16(b))
	case 4:
		return uint64(order.Uint32(b))
	case 8:
		return order.Uint64(b)
	}
	return 0
}

// undoDifferencing reverses TIFF predictor 2 on one row of interleaved
// samples.
func undoDifferencing(raw []uint64, stride, bps int) {
	mask := uint64(1)<<uint(bps) - 1
	for i := stride; i < len(raw); i++ {
		raw[i] = (raw[i] + raw[i-stride]) & mask
	}
}

func sampleConverter(bps, format int) func(uint64) float64 {
	switch format {
	case sampleInt:
		switch bps {
		case 8:
			return func(v uint64) float64 { return float64(int8(v)) }
		case 16:
			return func(v uint64) float64 { return float64(int16(v)) }
		default:
			return func(v uint64) float64 { return float64(int32(v)) }
		}
	case sampleFloat:
		if bps == 32 {
			return func(v uint64) float64 { return float64(math.Float32frombits(uint32(v))) }
		}
		return math.Float64frombits
	}
	return func(v uint64) float64 { return float64(v) }
}
