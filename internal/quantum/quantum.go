// Package quantum converts between external sample streams and the
// canonical pixel representation. A quantum is one channel sample at the
// canonical precision; external formats declare their sample depth,
// encoding and channel layout through an Info value, and ImportRow /
// ExportRow translate whole scanlines in either direction.
package quantum

// QuantumDepth is the canonical bit depth of a channel sample.
const QuantumDepth = 16

// Quantum is one channel sample at the canonical precision.
type Quantum uint16

// QuantumRange is the maximum canonical sample value.
const QuantumRange Quantum = 1<<QuantumDepth - 1

// Pixel is the canonical pixel record: up to five channel samples.
// Gray images store their intensity in all of Red, Green and Blue.
// CMYK images store cyan, magenta and yellow in the Red, Green and Blue
// slots with the key (black) channel in Black. Alpha is 0 = transparent,
// QuantumRange = opaque.
type Pixel struct {
	Red   Quantum
	Green Quantum
	Blue  Quantum
	Alpha Quantum
	Black Quantum
}

// Gray returns the pixel's intensity channel.
func (p Pixel) Gray() Quantum { return p.Red }

// SetGray stores v in the red, green and blue slots.
func (p *Pixel) SetGray(v Quantum) {
	p.Red = v
	p.Green = v
	p.Blue = v
}

// Opaque reports whether the pixel is fully opaque.
func (p Pixel) Opaque() bool { return p.Alpha == QuantumRange }

// Format is the external sample encoding.
type Format int

const (
	FormatUnsigned Format = iota
	FormatSigned
	FormatFloat
)

func (f Format) String() string {
	switch f {
	case FormatUnsigned:
		return "unsigned"
	case FormatSigned:
		return "signed"
	case FormatFloat:
		return "float"
	}
	return "unknown"
}

// Type identifies the channel set and order of an external sample stream.
type Type int

const (
	TypeUndefined Type = iota
	TypeGray
	TypeGrayAlpha
	TypeRGB
	TypeRGBA
	TypeCMYK
	TypeCMYKA
	TypeIndex
	TypeIndexAlpha
	TypeAlpha

	// Single-channel types used for planar passes.
	TypeRed
	TypeGreen
	TypeBlue
	TypeBlack
)

func (t Type) String() string {
	switch t {
	case TypeGray:
		return "gray"
	case TypeGrayAlpha:
		return "gray+alpha"
	case TypeRGB:
		return "rgb"
	case TypeRGBA:
		return "rgba"
	case TypeCMYK:
		return "cmyk"
	case TypeCMYKA:
		return "cmyka"
	case TypeIndex:
		return "index"
	case TypeIndexAlpha:
		return "index+alpha"
	case TypeAlpha:
		return "alpha"
	case TypeRed:
		return "red"
	case TypeGreen:
		return "green"
	case TypeBlue:
		return "blue"
	case TypeBlack:
		return "black"
	}
	return "undefined"
}

// HasAlpha reports whether the type carries an alpha channel.
func (t Type) HasAlpha() bool {
	switch t {
	case TypeGrayAlpha, TypeRGBA, TypeCMYKA, TypeIndexAlpha, TypeAlpha:
		return true
	}
	return false
}

// AlphaType declares whether external color samples are premultiplied
// by alpha.
type AlphaType int

const (
	// AlphaDisassociated leaves color samples untouched.
	AlphaDisassociated AlphaType = iota
	// AlphaAssociated marks premultiplied samples: the importer
	// un-premultiplies on read and the exporter premultiplies on write.
	AlphaAssociated
)

// Info binds the external sample configuration for one read or write
// operation. It is created per operation and treated as read-only while
// a row loop is running.
type Info struct {
	// Depth is the external bits per sample, 1 through 32.
	Depth int

	// MaxValue is the largest legal sample value. It defaults to
	// 1<<Depth - 1 and may be lowered for formats, such as PNM, whose
	// declared maximum is not a power of two minus one.
	MaxValue uint64

	// Format selects unsigned, signed or floating-point samples.
	// Floating-point samples require Depth == 32.
	Format Format

	// BitOrder is the bit fill order for sub-byte depths.
	BitOrder BitOrder

	// Endian is the word order for 16- and 32-bit samples.
	Endian ByteOrder

	// MinIsWhite inverts gray samples: external 0 is white.
	MinIsWhite bool

	// Alpha declares the premultiplication convention.
	Alpha AlphaType

	// AlphaIsOpacity flips the alpha sign convention: external alpha
	// samples store opacity (0 = opaque). Applied symmetrically on
	// import and export.
	AlphaIsOpacity bool

	// Scale multiplies floating-point samples before they are mapped
	// into the canonical range. Ignored for integer formats.
	Scale float64

	// Pad is the number of bytes skipped after each pixel's declared
	// channels (unused extra samples).
	Pad int

	// SubstituteTransparent replaces the color of fully transparent
	// pixels with TransparentColor on export, for formats that encode
	// transparency as a sentinel color.
	SubstituteTransparent bool
	TransparentColor      Pixel
}

// NewInfo returns an Info for the given sample depth with unsigned
// samples, MSB bit order, big-endian words and a unit float scale.
func NewInfo(depth int) (*Info, error) {
	if depth < 1 || depth > 32 {
		return nil, invalidArgumentf("sample depth %d out of range [1,32]", depth)
	}
	return &Info{
		Depth:    depth,
		MaxValue: 1<<uint(depth) - 1,
		Scale:    1,
		TransparentColor: Pixel{
			Red: QuantumRange, Green: QuantumRange, Blue: QuantumRange,
		},
	}, nil
}

// SetDepth changes the sample depth and resets MaxValue to match.
func (info *Info) SetDepth(depth int) error {
	if depth < 1 || depth > 32 {
		return invalidArgumentf("sample depth %d out of range [1,32]", depth)
	}
	info.Depth = depth
	info.MaxValue = 1<<uint(depth) - 1
	return nil
}

// validate checks the configuration invariants shared by the layout
// resolver, importer and exporter.
func (info *Info) validate() error {
	if info.Depth < 1 || info.Depth > 32 {
		return invalidArgumentf("sample depth %d out of range [1,32]", info.Depth)
	}
	if info.MaxValue == 0 {
		return invalidArgumentf("sample maximum is zero")
	}
	if info.Pad < 0 {
		return invalidArgumentf("negative pad %d", info.Pad)
	}
	if info.Format == FormatFloat {
		if info.Depth != 32 {
			return invalidArgumentf("floating-point samples require depth 32, have %d", info.Depth)
		}
		if info.Scale == 0 {
			return invalidArgumentf("floating-point scale is zero")
		}
	}
	return nil
}
