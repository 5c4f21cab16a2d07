// Package tiff reads and writes baseline TIFF: strip, tile and planar
// layouts, bilevel through 32-bit samples, palette images, alpha and
// padding extra samples, and None/LZW/Deflate/Zstd compression (LZW on
// the read side only).
package tiff

// IFD tags used by this codec.
const (
	tagImageWidth      = 256
	tagImageLength     = 257
	tagBitsPerSample   = 258
	tagCompression     = 259
	tagPhotometric     = 262
	tagFillOrder       = 266
	tagStripOffsets    = 273
	tagSamplesPerPixel = 277
	tagRowsPerStrip    = 278
	tagStripByteCounts = 279
	tagPlanarConfig    = 284
	tagPredictor       = 317
	tagColorMap        = 320
	tagTileWidth       = 322
	tagTileLength      = 323
	tagTileOffsets     = 324
	tagTileByteCounts  = 325
	tagExtraSamples    = 338
	tagSampleFormat    = 339
)

// Photometric interpretations.
const (
	photometricMinIsWhite = 0
	photometricMinIsBlack = 1
	photometricRGB        = 2
	photometricPalette    = 3
	photometricSeparated  = 5
)

// Compression schemes.
const (
	compressionNone       = 1
	compressionLZW        = 5
	compressionDeflate    = 8
	compressionOldDeflate = 32946
	compressionZstd       = 50000
)

// ExtraSamples interpretations.
const (
	extraUnspecified = 0
	extraAssocAlpha  = 1
	extraUnassAlpha  = 2
)

// SampleFormat values.
const (
	sampleFormatUint  = 1
	sampleFormatInt   = 2
	sampleFormatFloat = 3
)

const (
	planarContiguous = 1
	planarSeparate   = 2
)

// IFD field types and their byte sizes.
var fieldSize = map[uint16]int{
	1:  1, // BYTE
	2:  1, // ASCII
	3:  2, // SHORT
	4:  4, // LONG
	5:  8, // RATIONAL
	6:  1, // SBYTE
	7:  1, // UNDEFINED
	8:  2, // SSHORT
	9:  4, // SLONG
	10: 8, // SRATIONAL
	11: 4, // FLOAT
	12: 8, // DOUBLE
}

const (
	typeShort = 3
	typeLong  = 4
)
