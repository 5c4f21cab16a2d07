package pnm

import (
	"bytes"
	"fmt"

	"github.com/davesmith10/pixelcodec/internal/codec"
	"github.com/davesmith10/pixelcodec/internal/driver"
	"github.com/davesmith10/pixelcodec/internal/pixel"
	"github.com/davesmith10/pixelcodec/internal/quantum"
)

func encodeRows(out *bytes.Buffer, img *pixel.Image, info *quantum.Info,
	qt quantum.Type, opts codec.EncodeOptions, bottomUp bool) error {

	layout, err := info.Layout(img.Columns, qt)
	if err != nil {
		return err
	}
	d := &driver.Driver{Workers: opts.Workers, Progress: opts.Progress}
	return d.Encode(img.Rows, layout.BytesPerRow, func(y int, buf []byte) error {
		if bottomUp {
			y = img.Rows - 1 - y
		}
		_, err := quantum.ExportRow(img.Row(y), nil, info, qt, buf)
		return err
	}, func(buf []byte) error {
		out.Write(buf)
		return nil
	})
}

// EncodePNM writes P4 for bilevel frames and P5/P6 otherwise. The alpha
// channel, which the anymap raw formats cannot carry, is dropped.
func EncodePNM(img *pixel.Image, opts codec.EncodeOptions) ([]byte, error) {
	depth := opts.Depth
	if depth == 0 {
		depth = 8
		if img.Bilevel() {
			depth = 1
		}
	}
	switch depth {
	case 1, 8, 16:
	default:
		return nil, fmt.Errorf("write depth %d not supported", depth)
	}

	info, _ := quantum.NewInfo(depth)
	var out bytes.Buffer
	if depth == 1 {
		info.MinIsWhite = true // PBM: set bits are black
		fmt.Fprintf(&out, "P4\n%d %d\n", img.Columns, img.Rows)
		if err := encodeRows(&out, img, info, quantum.TypeGray, opts, false); err != nil {
			return nil, err
		}
		return out.Bytes(), nil
	}

	qt := quantum.TypeRGB
	magic := "P6"
	if img.Gray() {
		qt = quantum.TypeGray
		magic = "P5"
	}
	fmt.Fprintf(&out, "%s\n%d %d\n%d\n", magic, img.Columns, img.Rows, info.MaxValue)
	if err := encodeRows(&out, img, info, qt, opts, false); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// EncodePAM writes P7 with the tuple type that matches the frame.
func EncodePAM(img *pixel.Image, opts codec.EncodeOptions) ([]byte, error) {
	depth := opts.Depth
	if depth == 0 {
		depth = 8
	}
	if depth != 8 && depth != 16 {
		return nil, fmt.Errorf("write depth %d not supported", depth)
	}

	var tupl string
	var qt quantum.Type
	var channels int
	switch {
	case img.Colorspace == pixel.ColorspaceCMYK && img.Matte:
		tupl, qt, channels = "CMYK_ALPHA", quantum.TypeCMYKA, 5
	case img.Colorspace == pixel.ColorspaceCMYK:
		tupl, qt, channels = "CMYK", quantum.TypeCMYK, 4
	case img.Gray() && img.Matte:
		tupl, qt, channels = "GRAYSCALE_ALPHA", quantum.TypeGrayAlpha, 2
	case img.Gray():
		tupl, qt, channels = "GRAYSCALE", quantum.TypeGray, 1
	case img.Matte:
		tupl, qt, channels = "RGB_ALPHA", quantum.TypeRGBA, 4
	default:
		tupl, qt, channels = "RGB", quantum.TypeRGB, 3
	}

	info, _ := quantum.NewInfo(depth)
	var out bytes.Buffer
	fmt.Fprintf(&out, "P7\nWIDTH %d\nHEIGHT %d\nDEPTH %d\nMAXVAL %d\nTUPLTYPE %s\nENDHDR\n",
		img.Columns, img.Rows, channels, info.MaxValue, tupl)
	if err := encodeRows(&out, img, info, qt, opts, false); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// EncodePFM writes PF or Pf with big-endian samples (positive scale),
// rows bottom-up.
func EncodePFM(img *pixel.Image, opts codec.EncodeOptions) ([]byte, error) {
	if img.Colorspace == pixel.ColorspaceCMYK {
		return nil, fmt.Errorf("PFM cannot carry CMYK")
	}
	qt := quantum.TypeRGB
	magic := "PF"
	if img.Gray() {
		qt = quantum.TypeGray
		magic = "Pf"
	}

	info, _ := quantum.NewInfo(32)
	info.Format = quantum.FormatFloat

	var out bytes.Buffer
	fmt.Fprintf(&out, "%s\n%d %d\n1.0\n", magic, img.Columns, img.Rows)
	if err := encodeRows(&out, img, info, qt, opts, true); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
