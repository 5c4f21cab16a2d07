package tiff

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/davesmith10/pixelcodec/internal/codec"
	"github.com/davesmith10/pixelcodec/internal/driver"
	"github.com/davesmith10/pixelcodec/internal/pixel"
	"github.com/davesmith10/pixelcodec/internal/quantum"
)

// Sniff recognizes the TIFF byte-order mark and version number.
func Sniff(data []byte) bool {
	if len(data) < 4 {
		return false
	}
	return string(data[:4]) == "II*\x00" || string(data[:4]) == "MM\x00*"
}

// config is the resolved shape of one TIFF frame.
type config struct {
	fileData      []byte
	width, height int
	depth         int
	samples       int
	compression   uint64
	photometric   uint64
	rowsPerStrip  int

	stripOffsets, stripCounts []uint64
	tileWidth, tileLength     int
	tileOffsets, tileCounts   []uint64

	info    *quantum.Info
	qt      quantum.Type
	planes  []quantum.Type // non-nil for separate planar configuration
	palette []quantum.Pixel

	colorspace pixel.Colorspace
	matte      bool
	assoc      bool
}

// Decode reads the first frame of a TIFF file. Corrupt or truncated
// pixel data keeps the decoded prefix and surfaces as warnings unless
// opts.Strict is set.
func Decode(data []byte, opts codec.DecodeOptions) (*codec.DecodeResult, error) {
	bo, dir, err := parseFile(data)
	if err != nil {
		return nil, err
	}
	cfg, err := resolveConfig(bo, dir)
	if err != nil {
		return nil, err
	}
	cfg.fileData = data

	img, err := pixel.New(cfg.width, cfg.height)
	if err != nil {
		return nil, err
	}
	img.Colorspace = cfg.colorspace
	img.Matte = cfg.matte
	if cfg.palette != nil {
		img.Palette = cfg.palette
		img.EnsureIndexes()
	}

	var warnings []error
	if cfg.tileWidth > 0 {
		warnings, err = decodeTiles(img, cfg, opts)
	} else if cfg.planes != nil {
		warnings, err = decodePlanarStrips(img, cfg, opts)
	} else {
		warnings, err = decodeStrips(img, cfg, opts)
	}
	if err != nil {
		return nil, err
	}

	if cfg.palette != nil {
		if err := img.SyncPalette(); err != nil {
			return nil, err
		}
	}
	return &codec.DecodeResult{Image: img, Warnings: warnings}, nil
}

func resolveConfig(bo binary.ByteOrder, dir ifd) (*config, error) {
	cfg := &config{
		width:       int(dir.scalar(tagImageWidth, 0)),
		height:      int(dir.scalar(tagImageLength, 0)),
		samples:     int(dir.scalar(tagSamplesPerPixel, 1)),
		compression: dir.scalar(tagCompression, compressionNone),
		photometric: dir.scalar(tagPhotometric, photometricMinIsBlack),
	}
	if cfg.width <= 0 || cfg.height <= 0 {
		return nil, fmt.Errorf("bad geometry %dx%d", cfg.width, cfg.height)
	}
	if p := dir.scalar(tagPredictor, 1); p != 1 {
		return nil, fmt.Errorf("predictor %d not supported", p)
	}

	bits := dir.values(tagBitsPerSample)
	cfg.depth = 1
	if len(bits) > 0 {
		cfg.depth = int(bits[0])
		for _, b := range bits {
			if int(b) != cfg.depth {
				return nil, fmt.Errorf("heterogeneous bits per sample %v", bits)
			}
		}
	}

	info, err := quantum.NewInfo(cfg.depth)
	if err != nil {
		return nil, err
	}
	if bo == binary.LittleEndian {
		info.Endian = quantum.LittleEndian
	}
	if dir.scalar(tagFillOrder, 1) == 2 {
		info.BitOrder = quantum.LSBFirst
	}
	switch dir.scalar(tagSampleFormat, sampleFormatUint) {
	case sampleFormatUint:
	case sampleFormatInt:
		info.Format = quantum.FormatSigned
	case sampleFormatFloat:
		if cfg.depth != 32 {
			return nil, fmt.Errorf("floating-point samples at depth %d", cfg.depth)
		}
		info.Format = quantum.FormatFloat
	default:
		return nil, fmt.Errorf("sample format %d not supported", dir.scalar(tagSampleFormat, 1))
	}

	base := 0
	switch cfg.photometric {
	case photometricMinIsWhite:
		info.MinIsWhite = true
		base = 1
		cfg.colorspace = pixel.ColorspaceGray
	case photometricMinIsBlack:
		base = 1
		cfg.colorspace = pixel.ColorspaceGray
	case photometricPalette:
		base = 1
	case photometricRGB:
		base = 3
	case photometricSeparated:
		base = 4
		cfg.colorspace = pixel.ColorspaceCMYK
	default:
		return nil, fmt.Errorf("photometric interpretation %d not supported", cfg.photometric)
	}

	extras := cfg.samples - base
	if extras < 0 {
		return nil, fmt.Errorf("%d samples per pixel for photometric %d",
			cfg.samples, cfg.photometric)
	}
	padChannels := 0
	if extras > 0 {
		declared := dir.values(tagExtraSamples)
		for i := 0; i < extras; i++ {
			kind := uint64(extraUnspecified)
			if i < len(declared) {
				kind = declared[i]
			}
			if !cfg.matte && (kind == extraAssocAlpha || kind == extraUnassAlpha || kind == extraUnspecified) {
				cfg.matte = true
				cfg.assoc = kind == extraAssocAlpha
				continue
			}
			padChannels++
		}
	}
	if padChannels > 0 {
		if cfg.depth%8 != 0 {
			return nil, fmt.Errorf("padding samples at depth %d", cfg.depth)
		}
		info.Pad = padChannels * cfg.depth / 8
	}
	if cfg.assoc {
		info.Alpha = quantum.AlphaAssociated
	}

	switch cfg.photometric {
	case photometricPalette:
		if cfg.depth > 16 {
			return nil, fmt.Errorf("palette image at depth %d", cfg.depth)
		}
		cm := dir.values(tagColorMap)
		n := 1 << uint(cfg.depth)
		if len(cm) < 3*n {
			return nil, fmt.Errorf("color map holds %d values, need %d", len(cm), 3*n)
		}
		cfg.palette = make([]quantum.Pixel, n)
		for i := 0; i < n; i++ {
			cfg.palette[i] = quantum.Pixel{
				Red:   quantum.Quantum(cm[i]),
				Green: quantum.Quantum(cm[n+i]),
				Blue:  quantum.Quantum(cm[2*n+i]),
				Alpha: quantum.QuantumRange,
			}
		}
		cfg.qt = quantum.TypeIndex
		if cfg.matte {
			cfg.qt = quantum.TypeIndexAlpha
		}
	case photometricMinIsWhite, photometricMinIsBlack:
		cfg.qt = quantum.TypeGray
		if cfg.matte {
			cfg.qt = quantum.TypeGrayAlpha
		}
	case photometricRGB:
		cfg.qt = quantum.TypeRGB
		if cfg.matte {
			cfg.qt = quantum.TypeRGBA
		}
	case photometricSeparated:
		cfg.qt = quantum.TypeCMYK
		if cfg.matte {
			cfg.qt = quantum.TypeCMYKA
		}
	}

	// Separate planar configuration reads one single-channel pass per
	// plane. Single-sample images are planar and contiguous alike.
	if dir.scalar(tagPlanarConfig, planarContiguous) == planarSeparate && base > 1 {
		switch cfg.photometric {
		case photometricRGB:
			cfg.planes = []quantum.Type{quantum.TypeRed, quantum.TypeGreen, quantum.TypeBlue}
		case photometricSeparated:
			cfg.planes = []quantum.Type{quantum.TypeRed, quantum.TypeGreen, quantum.TypeBlue, quantum.TypeBlack}
		}
		if cfg.matte {
			cfg.planes = append(cfg.planes, quantum.TypeAlpha)
		}
	}

	cfg.info = info
	cfg.rowsPerStrip = int(dir.scalar(tagRowsPerStrip, uint64(cfg.height)))
	if cfg.rowsPerStrip <= 0 || cfg.rowsPerStrip > cfg.height {
		cfg.rowsPerStrip = cfg.height
	}
	cfg.stripOffsets = dir.values(tagStripOffsets)
	cfg.stripCounts = dir.values(tagStripByteCounts)
	cfg.tileWidth = int(dir.scalar(tagTileWidth, 0))
	cfg.tileLength = int(dir.scalar(tagTileLength, 0))
	cfg.tileOffsets = dir.values(tagTileOffsets)
	cfg.tileCounts = dir.values(tagTileByteCounts)
	if cfg.tileWidth > 0 && cfg.tileLength <= 0 {
		return nil, fmt.Errorf("tiled image without a tile length")
	}
	if cfg.tileWidth == 0 && len(cfg.stripOffsets) == 0 {
		return nil, fmt.Errorf("no strip or tile offsets")
	}
	if len(cfg.stripCounts) < len(cfg.stripOffsets) {
		return nil, fmt.Errorf("strip byte counts missing")
	}
	if len(cfg.tileCounts) < len(cfg.tileOffsets) {
		return nil, fmt.Errorf("tile byte counts missing")
	}
	return cfg, nil
}

// chunkStream feeds decompressed strip bytes to the row loop, crossing
// strip boundaries as needed. Only ever called from the driver's
// serialized section.
type chunkStream struct {
	file        []byte
	offsets     []uint64
	counts      []uint64
	sizes       []int // expected raw bytes per chunk; longer chunks are clipped
	compression uint64

	cur  []byte
	next int
}

func (s *chunkStream) read(buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		if len(s.cur) == 0 {
			if s.next >= len(s.offsets) {
				return total, io.ErrUnexpectedEOF
			}
			chunk, err := loadChunk(s.file, s.offsets[s.next], s.counts[s.next], s.compression)
			if s.next < len(s.sizes) && len(chunk) > s.sizes[s.next] {
				chunk = chunk[:s.sizes[s.next]]
			}
			s.next++
			if err != nil {
				total += copy(buf[total:], chunk)
				return total, err
			}
			s.cur = chunk
		}
		n := copy(buf[total:], s.cur)
		s.cur = s.cur[n:]
		total += n
	}
	return total, nil
}

func loadChunk(file []byte, offset, count, compression uint64) ([]byte, error) {
	end := offset + count
	if end < offset || end > uint64(len(file)) {
		return nil, fmt.Errorf("chunk range [%d,%d) out of bounds", offset, end)
	}
	return decompress(file[offset:end], compression)
}

// stripSizes returns the expected raw byte size of every strip of one
// plane.
func stripSizes(height, rowsPerStrip, rowBytes int) []int {
	n := (height + rowsPerStrip - 1) / rowsPerStrip
	sizes := make([]int, n)
	for i := range sizes {
		rows := rowsPerStrip
		if left := height - i*rowsPerStrip; left < rows {
			rows = left
		}
		sizes[i] = rows * rowBytes
	}
	return sizes
}

func decodeStrips(img *pixel.Image, cfg *config, opts codec.DecodeOptions) ([]error, error) {
	layout, err := cfg.info.Layout(cfg.width, cfg.qt)
	if err != nil {
		return nil, err
	}
	stream := &chunkStream{
		file:        cfg.fileData,
		offsets:     cfg.stripOffsets,
		counts:      cfg.stripCounts,
		sizes:       stripSizes(cfg.height, cfg.rowsPerStrip, layout.BytesPerRow),
		compression: cfg.compression,
	}
	d := &driver.Driver{Workers: opts.Workers, Strict: opts.Strict, Progress: opts.Progress}
	err = d.Decode(cfg.height, layout.BytesPerRow, stream.read, func(y int, buf []byte) error {
		_, err := quantum.ImportRow(buf, cfg.info, cfg.qt, img.Row(y), img.IndexRow(y))
		return err
	})
	return d.Warnings(), err
}

func decodePlanarStrips(img *pixel.Image, cfg *config, opts codec.DecodeOptions) ([]error, error) {
	stripsPerPlane := (cfg.height + cfg.rowsPerStrip - 1) / cfg.rowsPerStrip
	if len(cfg.stripOffsets) < stripsPerPlane*len(cfg.planes) {
		return nil, fmt.Errorf("%d strips for %d planes", len(cfg.stripOffsets), len(cfg.planes))
	}

	var warnings []error
	total := len(cfg.planes) * cfg.height
	for pi, pt := range cfg.planes {
		planeInfo := *cfg.info
		planeInfo.Pad = 0
		planeInfo.Alpha = quantum.AlphaDisassociated // resolved after all planes land
		layout, err := planeInfo.Layout(cfg.width, pt)
		if err != nil {
			return warnings, err
		}
		lo, hi := pi*stripsPerPlane, (pi+1)*stripsPerPlane
		stream := &chunkStream{
			file:        cfg.fileData,
			offsets:     cfg.stripOffsets[lo:hi],
			counts:      cfg.stripCounts[lo:hi],
			sizes:       stripSizes(cfg.height, cfg.rowsPerStrip, layout.BytesPerRow),
			compression: cfg.compression,
		}
		d := &driver.Driver{Workers: opts.Workers, Strict: opts.Strict}
		if opts.Progress != nil {
			done := pi * cfg.height
			d.Progress = func(completed, _ int) bool {
				return opts.Progress(done+completed, total)
			}
		}
		err = d.Decode(cfg.height, layout.BytesPerRow, stream.read, func(y int, buf []byte) error {
			_, err := quantum.ImportRow(buf, &planeInfo, pt, img.Row(y), nil)
			return err
		})
		warnings = append(warnings, d.Warnings()...)
		if err != nil {
			return warnings, err
		}
		if len(d.Warnings()) > 0 {
			// The plane is short; later planes would misalign anyway.
			break
		}
	}
	if cfg.assoc {
		for y := 0; y < cfg.height; y++ {
			quantum.DisassociateAlpha(img.Row(y))
		}
	}
	return warnings, nil
}

func decodeTiles(img *pixel.Image, cfg *config, opts codec.DecodeOptions) ([]error, error) {
	across := (cfg.width + cfg.tileWidth - 1) / cfg.tileWidth
	down := (cfg.height + cfg.tileLength - 1) / cfg.tileLength
	tilesPerPlane := across * down

	passes := []quantum.Type{cfg.qt}
	if cfg.planes != nil {
		passes = cfg.planes
	}
	if len(cfg.tileOffsets) < tilesPerPlane*len(passes) {
		return nil, fmt.Errorf("%d tiles for a %dx%d grid of %d planes",
			len(cfg.tileOffsets), across, down, len(passes))
	}

	scratch := make([]quantum.Pixel, cfg.tileWidth)
	var scratchIdx []uint16
	if cfg.palette != nil {
		scratchIdx = make([]uint16, cfg.tileWidth)
	}

	var warnings []error
	totalTiles := tilesPerPlane * len(passes)
	done := 0
	for pi, pt := range passes {
		info := *cfg.info
		if cfg.planes != nil {
			info.Pad = 0
			info.Alpha = quantum.AlphaDisassociated
		}
		layout, err := info.Layout(cfg.tileWidth, pt)
		if err != nil {
			return warnings, err
		}
		for ty := 0; ty < down; ty++ {
			for tx := 0; tx < across; tx++ {
				i := pi*tilesPerPlane + ty*across + tx
				raw, err := loadChunk(cfg.fileData, cfg.tileOffsets[i], cfg.tileCounts[i], cfg.compression)
				if err != nil {
					err = fmt.Errorf("tile %d: %w", i, err)
					if opts.Strict {
						return warnings, err
					}
					// Keep everything decoded so far.
					return append(warnings, err), nil
				}
				if err := importTile(img, &info, pt, raw, layout.BytesPerRow,
					tx*cfg.tileWidth, ty*cfg.tileLength, cfg.tileLength,
					scratch, scratchIdx); err != nil {
					if opts.Strict {
						return warnings, err
					}
					return append(warnings, err), nil
				}
				done++
				if opts.Progress != nil && !opts.Progress(done, totalTiles) {
					return warnings, quantum.ErrCanceled
				}
			}
		}
	}
	if cfg.assoc && cfg.planes != nil {
		for y := 0; y < cfg.height; y++ {
			quantum.DisassociateAlpha(img.Row(y))
		}
	}
	return warnings, nil
}

// importTile copies one decompressed tile into the frame, clipping the
// right and bottom edges.
func importTile(img *pixel.Image, info *quantum.Info, pt quantum.Type,
	raw []byte, rowBytes, x0, y0, tileLength int,
	scratch []quantum.Pixel, scratchIdx []uint16) error {

	tileWidth := len(scratch)
	for r := 0; r < tileLength; r++ {
		y := y0 + r
		if y >= img.Rows {
			break
		}
		if (r+1)*rowBytes > len(raw) {
			return fmt.Errorf("tile at (%d,%d): %w", x0, y0, quantum.ErrTruncatedRow)
		}
		w := tileWidth
		if x0+w > img.Columns {
			w = img.Columns - x0
		}
		dst := img.Row(y)[x0 : x0+w]
		copy(scratch, dst) // planar passes must not clobber earlier planes
		if _, err := quantum.ImportRow(raw[r*rowBytes:(r+1)*rowBytes], info, pt, scratch, scratchIdx); err != nil {
			return err
		}
		copy(dst, scratch[:w])
		if scratchIdx != nil {
			copy(img.IndexRow(y)[x0:x0+w], scratchIdx[:w])
		}
	}
	return nil
}
