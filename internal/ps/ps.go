// Package ps writes EPS-compatible PostScript: a level-2 prolog around
// an image or colorimage operator followed by a hex sample dump. There
// is no reader; rendering PostScript is an interpreter's job.
package ps

import (
	"bytes"
	"fmt"

	"github.com/davesmith10/pixelcodec/internal/codec"
	"github.com/davesmith10/pixelcodec/internal/driver"
	"github.com/davesmith10/pixelcodec/internal/pixel"
	"github.com/davesmith10/pixelcodec/internal/quantum"
)

// hexColumns is the line width of the sample dump.
const hexColumns = 72

const hexDigits = "0123456789abcdef"

// hexWriter dumps bytes as hex pairs, wrapping lines; the column
// position carries across rows so the dump is one continuous block.
type hexWriter struct {
	out *bytes.Buffer
	col int
}

func (w *hexWriter) write(data []byte) {
	for _, b := range data {
		if w.col >= hexColumns {
			w.out.WriteByte('\n')
			w.col = 0
		}
		w.out.WriteByte(hexDigits[b>>4])
		w.out.WriteByte(hexDigits[b&15])
		w.col += 2
	}
}

func (w *hexWriter) close() {
	if w.col > 0 {
		w.out.WriteByte('\n')
	}
}

// Encode writes the frame as EPS. PostScript has no transparency, so a
// matte frame is flattened over white first.
func Encode(img *pixel.Image, opts codec.EncodeOptions) ([]byte, error) {
	var channels int
	var qt quantum.Type
	switch {
	case img.Colorspace == pixel.ColorspaceCMYK:
		channels, qt = 4, quantum.TypeCMYK
	case img.Gray():
		channels, qt = 1, quantum.TypeGray
	default:
		channels, qt = 3, quantum.TypeRGB
	}

	info, err := quantum.NewInfo(8)
	if err != nil {
		return nil, err
	}
	layout, err := info.Layout(img.Columns, qt)
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	fmt.Fprintf(&out, "%%!PS-Adobe-3.0 EPSF-3.0\n")
	fmt.Fprintf(&out, "%%%%Creator: pixelcodec\n")
	fmt.Fprintf(&out, "%%%%BoundingBox: 0 0 %d %d\n", img.Columns, img.Rows)
	fmt.Fprintf(&out, "%%%%Pages: 1\n")
	fmt.Fprintf(&out, "%%%%EndComments\n")
	fmt.Fprintf(&out, "gsave\n")
	fmt.Fprintf(&out, "/buffer %d string def\n", layout.BytesPerRow)
	fmt.Fprintf(&out, "%d %d scale\n", img.Columns, img.Rows)
	fmt.Fprintf(&out, "%d %d 8\n", img.Columns, img.Rows)
	fmt.Fprintf(&out, "[%d 0 0 -%d 0 %d]\n", img.Columns, img.Rows, img.Rows)
	fmt.Fprintf(&out, "{currentfile buffer readhexstring pop} bind\n")
	if channels == 1 {
		fmt.Fprintf(&out, "image\n")
	} else {
		fmt.Fprintf(&out, "false %d colorimage\n", channels)
	}

	hex := &hexWriter{out: &out}
	flatten := img.Matte
	d := &driver.Driver{Workers: opts.Workers, Progress: opts.Progress}
	err = d.Encode(img.Rows, layout.BytesPerRow, func(y int, buf []byte) error {
		row := img.Row(y)
		if flatten {
			// Packing runs concurrently; composite into a private copy.
			tmp := make([]quantum.Pixel, len(row))
			copy(tmp, row)
			flattenOverWhite(tmp)
			row = tmp
		}
		_, err := quantum.ExportRow(row, nil, info, qt, buf)
		return err
	}, func(buf []byte) error {
		hex.write(buf)
		return nil
	})
	if err != nil {
		return nil, err
	}
	hex.close()

	fmt.Fprintf(&out, "grestore\n")
	fmt.Fprintf(&out, "showpage\n")
	fmt.Fprintf(&out, "%%%%EOF\n")
	return out.Bytes(), nil
}

// flattenOverWhite composites each pixel onto a white background.
func flattenOverWhite(row []quantum.Pixel) {
	for i := range row {
		p := &row[i]
		if p.Alpha == quantum.QuantumRange {
			continue
		}
		a := uint64(p.Alpha)
		inv := uint64(quantum.QuantumRange) - a
		blend := func(c quantum.Quantum) quantum.Quantum {
			v := (uint64(c)*a + uint64(quantum.QuantumRange)*inv + uint64(quantum.QuantumRange)/2) /
				uint64(quantum.QuantumRange)
			if v > uint64(quantum.QuantumRange) {
				v = uint64(quantum.QuantumRange)
			}
			return quantum.Quantum(v)
		}
		p.Red = blend(p.Red)
		p.Green = blend(p.Green)
		p.Blue = blend(p.Blue)
		p.Alpha = quantum.QuantumRange
	}
}
