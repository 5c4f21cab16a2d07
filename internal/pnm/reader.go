package pnm

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/davesmith10/pixelcodec/internal/codec"
	"github.com/davesmith10/pixelcodec/internal/driver"
	"github.com/davesmith10/pixelcodec/internal/pixel"
	"github.com/davesmith10/pixelcodec/internal/quantum"
)

// SniffPNM recognizes P1 through P6.
func SniffPNM(data []byte) bool {
	return len(data) >= 2 && data[0] == 'P' && data[1] >= '1' && data[1] <= '6'
}

// SniffPAM recognizes P7.
func SniffPAM(data []byte) bool {
	return len(data) >= 2 && data[0] == 'P' && data[1] == '7'
}

// SniffPFM recognizes PF (color) and Pf (gray).
func SniffPFM(data []byte) bool {
	return len(data) >= 2 && data[0] == 'P' && (data[1] == 'F' || data[1] == 'f')
}

// Decode reads any member of the anymap family; the magic number picks
// the variant.
func Decode(data []byte, opts codec.DecodeOptions) (*codec.DecodeResult, error) {
	if len(data) < 2 || data[0] != 'P' {
		return nil, fmt.Errorf("not a PNM file")
	}
	switch data[1] {
	case '1', '2', '3':
		return decodeASCII(data, opts)
	case '4', '5', '6':
		return decodeRaw(data, opts)
	case '7':
		return decodePAM(data, opts)
	case 'F', 'f':
		return decodePFM(data, opts)
	}
	return nil, fmt.Errorf("unknown PNM variant %q", data[:2])
}

// byteStream feeds raw sample bytes to the row loop.
type byteStream struct {
	data []byte
	pos  int
}

func (s *byteStream) read(buf []byte) (int, error) {
	n := copy(buf, s.data[s.pos:])
	s.pos += n
	if n < len(buf) {
		return n, io.ErrUnexpectedEOF
	}
	return n, nil
}

// decodeRows runs the shared row loop. PFM frames are stored bottom-up.
func decodeRows(img *pixel.Image, info *quantum.Info, qt quantum.Type,
	read driver.ReadFunc, opts codec.DecodeOptions, bottomUp bool) ([]error, error) {

	layout, err := info.Layout(img.Columns, qt)
	if err != nil {
		return nil, err
	}
	d := &driver.Driver{Workers: opts.Workers, Strict: opts.Strict, Progress: opts.Progress}
	err = d.Decode(img.Rows, layout.BytesPerRow, read, func(y int, buf []byte) error {
		if bottomUp {
			y = img.Rows - 1 - y
		}
		_, err := quantum.ImportRow(buf, info, qt, img.Row(y), nil)
		return err
	})
	return d.Warnings(), err
}

func decodeASCII(data []byte, opts codec.DecodeOptions) (*codec.DecodeResult, error) {
	s := &scanner{data: data, pos: 2}
	variant := data[1]

	width, err := s.uint()
	if err != nil {
		return nil, err
	}
	height, err := s.uint()
	if err != nil {
		return nil, err
	}
	maxval := uint64(1)
	if variant != '1' {
		if maxval, err = s.uint(); err != nil {
			return nil, err
		}
	}
	if maxval == 0 || maxval > 65535 {
		return nil, fmt.Errorf("maxval %d out of range", maxval)
	}

	img, err := pixel.New(int(width), int(height))
	if err != nil {
		return nil, err
	}

	// ASCII samples are widened to 16-bit words so the row loop and the
	// engine see the same shape as raw input.
	info, _ := quantum.NewInfo(16)
	info.MaxValue = maxval
	qt := quantum.TypeGray
	channels := 1
	switch variant {
	case '1':
		info.MinIsWhite = true // PBM: 1 is black
		img.Colorspace = pixel.ColorspaceGray
	case '2':
		img.Colorspace = pixel.ColorspaceGray
	case '3':
		qt = quantum.TypeRGB
		channels = 3
	}

	read := func(buf []byte) (int, error) {
		for i := 0; i < int(width)*channels; i++ {
			var v uint64
			var err error
			if variant == '1' {
				v, err = s.bit()
			} else {
				v, err = s.uint()
			}
			if err != nil {
				return i * 2, err
			}
			if v > maxval {
				v = maxval
			}
			binary.BigEndian.PutUint16(buf[i*2:], uint16(v))
		}
		return int(width) * channels * 2, nil
	}

	warnings, err := decodeRows(img, info, qt, read, opts, false)
	if err != nil {
		return nil, err
	}
	return &codec.DecodeResult{Image: img, Warnings: warnings}, nil
}

func decodeRaw(data []byte, opts codec.DecodeOptions) (*codec.DecodeResult, error) {
	s := &scanner{data: data, pos: 2}
	variant := data[1]

	width, err := s.uint()
	if err != nil {
		return nil, err
	}
	height, err := s.uint()
	if err != nil {
		return nil, err
	}
	maxval := uint64(1)
	if variant != '4' {
		if maxval, err = s.uint(); err != nil {
			return nil, err
		}
	}
	if maxval == 0 || maxval > 65535 {
		return nil, fmt.Errorf("maxval %d out of range", maxval)
	}
	if err := s.binaryStart(); err != nil {
		return nil, err
	}

	img, err := pixel.New(int(width), int(height))
	if err != nil {
		return nil, err
	}

	depth := 8
	if variant == '4' {
		depth = 1
	} else if maxval > 255 {
		depth = 16
	}
	info, _ := quantum.NewInfo(depth)
	info.MaxValue = maxval
	qt := quantum.TypeGray
	switch variant {
	case '4':
		info.MinIsWhite = true // PBM: set bits are black
		img.Colorspace = pixel.ColorspaceGray
	case '5':
		img.Colorspace = pixel.ColorspaceGray
	case '6':
		qt = quantum.TypeRGB
	}

	stream := &byteStream{data: s.rest()}
	warnings, err := decodeRows(img, info, qt, stream.read, opts, false)
	if err != nil {
		return nil, err
	}
	return &codec.DecodeResult{Image: img, Warnings: warnings}, nil
}

// pamTypes maps TUPLTYPE names to the engine's channel layouts.
var pamTypes = map[string]struct {
	qt         quantum.Type
	channels   int
	matte      bool
	colorspace pixel.Colorspace
}{
	"BLACKANDWHITE":   {quantum.TypeGray, 1, false, pixel.ColorspaceGray},
	"GRAYSCALE":       {quantum.TypeGray, 1, false, pixel.ColorspaceGray},
	"GRAYSCALE_ALPHA": {quantum.TypeGrayAlpha, 2, true, pixel.ColorspaceGray},
	"RGB":             {quantum.TypeRGB, 3, false, pixel.ColorspaceRGB},
	"RGB_ALPHA":       {quantum.TypeRGBA, 4, true, pixel.ColorspaceRGB},
	"CMYK":            {quantum.TypeCMYK, 4, false, pixel.ColorspaceCMYK},
	"CMYK_ALPHA":      {quantum.TypeCMYKA, 5, true, pixel.ColorspaceCMYK},
}

// tupleTypeForDepth covers PAM files that omit TUPLTYPE.
func tupleTypeForDepth(depth uint64) string {
	switch depth {
	case 1:
		return "GRAYSCALE"
	case 2:
		return "GRAYSCALE_ALPHA"
	case 3:
		return "RGB"
	case 4:
		return "RGB_ALPHA"
	}
	return ""
}

func decodePAM(data []byte, opts codec.DecodeOptions) (*codec.DecodeResult, error) {
	s := &scanner{data: data, pos: 2}
	var width, height, channels, maxval uint64
	tupl := ""
	for {
		key, err := s.token()
		if err != nil {
			return nil, fmt.Errorf("PAM header: %w", err)
		}
		if key == "ENDHDR" {
			break
		}
		switch key {
		case "WIDTH":
			width, err = s.uint()
		case "HEIGHT":
			height, err = s.uint()
		case "DEPTH":
			channels, err = s.uint()
		case "MAXVAL":
			maxval, err = s.uint()
		case "TUPLTYPE":
			tupl = s.restOfLine()
		default:
			s.restOfLine()
		}
		if err != nil {
			return nil, fmt.Errorf("PAM header %s: %w", key, err)
		}
	}
	if err := s.binaryStart(); err != nil {
		return nil, err
	}
	if maxval == 0 || maxval > 65535 {
		return nil, fmt.Errorf("maxval %d out of range", maxval)
	}
	if tupl == "" {
		tupl = tupleTypeForDepth(channels)
	}
	shape, ok := pamTypes[strings.ToUpper(tupl)]
	if !ok {
		return nil, fmt.Errorf("tuple type %q not supported", tupl)
	}
	if int(channels) != shape.channels {
		return nil, fmt.Errorf("depth %d does not match tuple type %q", channels, tupl)
	}

	img, err := pixel.New(int(width), int(height))
	if err != nil {
		return nil, err
	}
	img.Colorspace = shape.colorspace
	img.Matte = shape.matte

	depth := 8
	if maxval > 255 {
		depth = 16
	}
	info, _ := quantum.NewInfo(depth)
	info.MaxValue = maxval

	stream := &byteStream{data: s.rest()}
	warnings, err := decodeRows(img, info, shape.qt, stream.read, opts, false)
	if err != nil {
		return nil, err
	}
	return &codec.DecodeResult{Image: img, Warnings: warnings}, nil
}

func decodePFM(data []byte, opts codec.DecodeOptions) (*codec.DecodeResult, error) {
	s := &scanner{data: data, pos: 2}
	color := data[1] == 'F'

	width, err := s.uint()
	if err != nil {
		return nil, err
	}
	height, err := s.uint()
	if err != nil {
		return nil, err
	}
	scale, err := s.float()
	if err != nil {
		return nil, err
	}
	if scale == 0 {
		return nil, fmt.Errorf("zero scale factor")
	}
	if err := s.binaryStart(); err != nil {
		return nil, err
	}

	img, err := pixel.New(int(width), int(height))
	if err != nil {
		return nil, err
	}
	qt := quantum.TypeRGB
	if !color {
		qt = quantum.TypeGray
		img.Colorspace = pixel.ColorspaceGray
	}

	info, _ := quantum.NewInfo(32)
	info.Format = quantum.FormatFloat
	info.Scale = math.Abs(scale)
	if scale < 0 {
		info.Endian = quantum.LittleEndian
	}

	// PFM rows are stored bottom-up.
	stream := &byteStream{data: s.rest()}
	warnings, err := decodeRows(img, info, qt, stream.read, opts, true)
	if err != nil {
		return nil, err
	}
	return &codec.DecodeResult{Image: img, Warnings: warnings}, nil
}
