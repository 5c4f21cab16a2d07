package quantum

import "fmt"

// ImportRow translates one external scanline into canonical pixels.
// buf must hold at least the resolved BytesPerRow; pixels receives one
// record per column. For palette types the raw (unscaled) sample goes
// into indexes, which must be sized like pixels; the palette lookup is
// the caller's concern. Returns the number of buffer bytes consumed.
func ImportRow(buf []byte, info *Info, qt Type, pixels []Pixel, indexes []uint16) (int, error) {
	layout, err := info.Layout(len(pixels), qt)
	if err != nil {
		return 0, err
	}
	if len(buf) < layout.BytesPerRow {
		return 0, fmt.Errorf("%w: row needs %d bytes, have %d",
			ErrBufferUnderrun, layout.BytesPerRow, len(buf))
	}
	needsIndex := qt == TypeIndex || qt == TypeIndexAlpha
	if needsIndex && len(indexes) < len(pixels) {
		return 0, invalidArgumentf("index queue holds %d entries, need %d",
			len(indexes), len(pixels))
	}

	r := NewBitReader(buf, info.BitOrder, info.Endian)
	padBits := info.Pad * 8
	for i := range pixels {
		p := &pixels[i]
		for _, ch := range layout.Order {
			raw, err := r.ReadBits(info.Depth)
			if err != nil {
				return r.BytesRead(), err
			}
			if ch == ChannelIndex {
				indexes[i] = uint16(raw)
				continue
			}
			q := info.sampleToQuantum(raw)
			switch ch {
			case ChannelGray:
				if info.MinIsWhite {
					q = QuantumRange - q
				}
				p.SetGray(q)
			case ChannelRed:
				p.Red = q
			case ChannelGreen:
				p.Green = q
			case ChannelBlue:
				p.Blue = q
			case ChannelBlack:
				p.Black = q
			case ChannelAlpha:
				if info.AlphaIsOpacity {
					q = QuantumRange - q
				}
				p.Alpha = q
			}
		}
		if !qt.HasAlpha() {
			p.Alpha = QuantumRange
		} else if info.Alpha == AlphaAssociated {
			disassociate(p)
		}
		if padBits > 0 {
			if err := r.SkipBits(padBits); err != nil {
				return r.BytesRead(), err
			}
		}
	}
	return layout.BytesPerRow, nil
}

// DisassociateAlpha un-premultiplies a slice of pixels in place. Planar
// imports use it after the alpha plane arrives in its own pass.
func DisassociateAlpha(pixels []Pixel) {
	for i := range pixels {
		disassociate(&pixels[i])
	}
}

// disassociate un-premultiplies the color channels. A fully transparent
// premultiplied pixel carries no color information and canonicalizes to
// black.
func disassociate(p *Pixel) {
	if p.Alpha == QuantumRange {
		return
	}
	if p.Alpha == 0 {
		p.Red, p.Green, p.Blue, p.Black = 0, 0, 0, 0
		return
	}
	a := uint64(p.Alpha)
	p.Red = unmultiply(p.Red, a)
	p.Green = unmultiply(p.Green, a)
	p.Blue = unmultiply(p.Blue, a)
	p.Black = unmultiply(p.Black, a)
}

func unmultiply(q Quantum, alpha uint64) Quantum {
	v := (uint64(q)*uint64(QuantumRange) + alpha/2) / alpha
	if v > uint64(QuantumRange) {
		return QuantumRange
	}
	return Quantum(v)
}
