package tiff

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/davesmith10/pixelcodec/internal/codec"
	"github.com/davesmith10/pixelcodec/internal/driver"
	"github.com/davesmith10/pixelcodec/internal/pixel"
	"github.com/davesmith10/pixelcodec/internal/quantum"
)

// Encode writes a baseline big-endian TIFF: a single IFD, contiguous
// planar configuration, strip layout, None/Deflate/Zstd compression.
func Encode(img *pixel.Image, opts codec.EncodeOptions) ([]byte, error) {
	compression, err := compressionByName(opts.Compression)
	if err != nil {
		return nil, err
	}

	depth := opts.Depth
	if depth == 0 {
		depth = 8
		if img.Bilevel() {
			depth = 1
		}
	}
	switch depth {
	case 1, 2, 4, 8, 16:
	default:
		return nil, fmt.Errorf("write depth %d not supported", depth)
	}

	info, err := quantum.NewInfo(depth)
	if err != nil {
		return nil, err
	}

	var (
		photometric uint64
		qt          quantum.Type
		samples     int
	)
	switch {
	case img.Colorspace == pixel.ColorspaceCMYK:
		photometric = photometricSeparated
		qt, samples = quantum.TypeCMYK, 4
		if img.Matte {
			qt, samples = quantum.TypeCMYKA, 5
		}
	case depth == 1 && img.Bilevel() && !img.Matte:
		// Bilevel frames keep the fax convention: 0 is white.
		photometric = photometricMinIsWhite
		info.MinIsWhite = true
		qt, samples = quantum.TypeGray, 1
	case img.Gray() && !img.Matte:
		photometric = photometricMinIsBlack
		qt, samples = quantum.TypeGray, 1
	case img.Gray() && img.Matte:
		photometric = photometricMinIsBlack
		qt, samples = quantum.TypeGrayAlpha, 2
	default:
		photometric = photometricRGB
		qt, samples = quantum.TypeRGB, 3
		if img.Matte {
			qt, samples = quantum.TypeRGBA, 4
		}
	}

	layout, err := info.Layout(img.Columns, qt)
	if err != nil {
		return nil, err
	}
	rowBytes := layout.BytesPerRow

	// Aim for strips of roughly 64KB, the libtiff default.
	rowsPerStrip := (64 << 10) / rowBytes
	if rowsPerStrip < 1 {
		rowsPerStrip = 1
	}
	if rowsPerStrip > img.Rows {
		rowsPerStrip = img.Rows
	}

	strips, err := packStrips(img, info, qt, rowBytes, rowsPerStrip, compression, opts)
	if err != nil {
		return nil, err
	}

	return assemble(img, strips, ifdParams{
		depth:        depth,
		samples:      samples,
		photometric:  photometric,
		compression:  compression,
		rowsPerStrip: rowsPerStrip,
		matte:        img.Matte,
	})
}

// packStrips runs the row loop through the iteration driver and slices
// the packed rows into compressed strips.
func packStrips(img *pixel.Image, info *quantum.Info, qt quantum.Type,
	rowBytes, rowsPerStrip int, compression uint64, opts codec.EncodeOptions) ([][]byte, error) {

	raw := bytes.NewBuffer(make([]byte, 0, rowBytes*img.Rows))
	d := &driver.Driver{Workers: opts.Workers, Progress: opts.Progress}
	err := d.Encode(img.Rows, rowBytes, func(y int, buf []byte) error {
		_, err := quantum.ExportRow(img.Row(y), nil, info, qt, buf)
		return err
	}, func(buf []byte) error {
		raw.Write(buf)
		return nil
	})
	if err != nil {
		return nil, err
	}

	data := raw.Bytes()
	var strips [][]byte
	for y := 0; y < img.Rows; y += rowsPerStrip {
		rows := rowsPerStrip
		if left := img.Rows - y; left < rows {
			rows = left
		}
		strip, err := compress(data[y*rowBytes:(y+rows)*rowBytes], compression)
		if err != nil {
			return nil, err
		}
		strips = append(strips, strip)
	}
	return strips, nil
}

type ifdParams struct {
	depth        int
	samples      int
	photometric  uint64
	compression  uint64
	rowsPerStrip int
	matte        bool
}

type ifdEntry struct {
	tag    uint16
	typ    uint16
	values []uint32
}

// assemble lays the file out as header, strip data, then the IFD.
func assemble(img *pixel.Image, strips [][]byte, p ifdParams) ([]byte, error) {
	var out bytes.Buffer
	out.WriteString("MM\x00*")
	var ifdOffsetPos [4]byte
	out.Write(ifdOffsetPos[:]) // patched once the IFD position is known

	offsets := make([]uint32, len(strips))
	counts := make([]uint32, len(strips))
	for i, s := range strips {
		offsets[i] = uint32(out.Len())
		counts[i] = uint32(len(s))
		out.Write(s)
	}
	if out.Len()%2 != 0 {
		out.WriteByte(0) // IFD must start on a word boundary
	}

	bits := make([]uint32, p.samples)
	for i := range bits {
		bits[i] = uint32(p.depth)
	}
	entries := []ifdEntry{
		{tagImageWidth, typeLong, []uint32{uint32(img.Columns)}},
		{tagImageLength, typeLong, []uint32{uint32(img.Rows)}},
		{tagBitsPerSample, typeShort, bits},
		{tagCompression, typeShort, []uint32{uint32(p.compression)}},
		{tagPhotometric, typeShort, []uint32{uint32(p.photometric)}},
		{tagStripOffsets, typeLong, offsets},
		{tagSamplesPerPixel, typeShort, []uint32{uint32(p.samples)}},
		{tagRowsPerStrip, typeLong, []uint32{uint32(p.rowsPerStrip)}},
		{tagStripByteCounts, typeLong, counts},
		{tagPlanarConfig, typeShort, []uint32{planarContiguous}},
	}
	if p.matte {
		entries = append(entries, ifdEntry{tagExtraSamples, typeShort, []uint32{extraUnassAlpha}})
	}

	// Out-of-line values land after the IFD.
	ifdOffset := uint32(out.Len())
	ifdSize := 2 + 12*len(entries) + 4
	overflowOffset := ifdOffset + uint32(ifdSize)
	var overflow bytes.Buffer

	var dir bytes.Buffer
	be := binary.BigEndian
	var scratch [4]byte
	be.PutUint16(scratch[:2], uint16(len(entries)))
	dir.Write(scratch[:2])
	for _, e := range entries {
		be.PutUint16(scratch[:2], e.tag)
		dir.Write(scratch[:2])
		be.PutUint16(scratch[:2], e.typ)
		dir.Write(scratch[:2])
		be.PutUint32(scratch[:], uint32(len(e.values)))
		dir.Write(scratch[:])

		size := 4
		if e.typ == typeShort {
			size = 2
		}
		total := size * len(e.values)
		var valueField [4]byte
		if total <= 4 {
			writeValues(valueField[:], e, be)
		} else {
			be.PutUint32(valueField[:], overflowOffset+uint32(overflow.Len()))
			buf := make([]byte, total)
			writeValues(buf, e, be)
			overflow.Write(buf)
		}
		dir.Write(valueField[:])
	}
	be.PutUint32(scratch[:], 0) // no next IFD
	dir.Write(scratch[:])

	out.Write(dir.Bytes())
	out.Write(overflow.Bytes())

	result := out.Bytes()
	be.PutUint32(result[4:8], ifdOffset)
	return result, nil
}

func writeValues(dst []byte, e ifdEntry, bo binary.ByteOrder) {
	for i, v := range e.values {
		if e.typ == typeShort {
			bo.PutUint16(dst[i*2:], uint16(v))
		} else {
			bo.PutUint32(dst[i*4:], v)
		}
	}
}
