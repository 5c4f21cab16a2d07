// Package pixel holds the in-memory image: a flat cache of canonical
// pixel records plus the palette and per-row index queue used by
// colormapped formats.
package pixel

import (
	"github.com/davesmith10/pixelcodec/internal/quantum"
)

// Colorspace identifies how the channel slots of a Pixel are
// interpreted. Gray stores its value replicated across red, green and
// blue; CMYK stores cyan, magenta and yellow in the red, green and blue
// slots with black alongside.
type Colorspace int

const (
	ColorspaceRGB Colorspace = iota
	ColorspaceGray
	ColorspaceCMYK
)

func (c Colorspace) String() string {
	switch c {
	case ColorspaceRGB:
		return "RGB"
	case ColorspaceGray:
		return "Gray"
	case ColorspaceCMYK:
		return "CMYK"
	}
	return "Unknown"
}

// Image is a fully decoded frame. Pixels are row-major; Row hands out
// subslices so codecs and the iteration driver never copy.
type Image struct {
	Columns    int
	Rows       int
	Colorspace Colorspace
	Matte      bool // alpha channel is meaningful

	// Palette, when non-nil, marks the image as colormapped: the
	// per-row index queue holds palette positions and SyncPalette
	// resolves them into pixel records.
	Palette []quantum.Pixel

	pixels  []quantum.Pixel
	indexes []uint16
}

// New allocates an image of the given geometry with every pixel opaque
// black.
func New(columns, rows int) (*Image, error) {
	if columns <= 0 || rows <= 0 {
		return nil, quantum.ErrInvalidArgument
	}
	img := &Image{
		Columns: columns,
		Rows:    rows,
		pixels:  make([]quantum.Pixel, columns*rows),
	}
	for i := range img.pixels {
		img.pixels[i].Alpha = quantum.QuantumRange
	}
	return img, nil
}

// Row returns the pixel records of row y as a shared subslice.
func (img *Image) Row(y int) []quantum.Pixel {
	return img.pixels[y*img.Columns : (y+1)*img.Columns]
}

// IndexRow returns the index queue of row y, or nil if the image has no
// index queue. Call EnsureIndexes first for colormapped decodes.
func (img *Image) IndexRow(y int) []uint16 {
	if img.indexes == nil {
		return nil
	}
	return img.indexes[y*img.Columns : (y+1)*img.Columns]
}

// EnsureIndexes allocates the per-pixel index queue if missing.
func (img *Image) EnsureIndexes() {
	if img.indexes == nil {
		img.indexes = make([]uint16, img.Columns*img.Rows)
	}
}

// SyncPalette resolves the index queue into pixel records. Indexes past
// the end of the palette clamp to its last entry, matching the usual
// recovery for corrupt colormapped files.
func (img *Image) SyncPalette() error {
	if img.Palette == nil || img.indexes == nil {
		return quantum.ErrInvalidArgument
	}
	last := uint16(len(img.Palette) - 1)
	for i, idx := range img.indexes {
		if idx > last {
			idx = last
		}
		p := img.Palette[idx]
		alpha := img.pixels[i].Alpha
		img.pixels[i] = p
		if img.Matte {
			// IndexAlpha imports already placed alpha in the pixel.
			img.pixels[i].Alpha = alpha
		}
	}
	return nil
}

// Gray reports whether every pixel has equal red, green and blue.
func (img *Image) Gray() bool {
	for i := range img.pixels {
		p := &img.pixels[i]
		if p.Red != p.Green || p.Green != p.Blue {
			return false
		}
	}
	return true
}

// Bilevel reports whether every pixel is pure black or pure white.
func (img *Image) Bilevel() bool {
	for i := range img.pixels {
		g := img.pixels[i].Gray()
		if g != 0 && g != quantum.QuantumRange {
			return false
		}
		p := &img.pixels[i]
		if p.Red != p.Green || p.Green != p.Blue {
			return false
		}
	}
	return true
}
