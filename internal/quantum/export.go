package quantum

import "fmt"

// ExportRow translates canonical pixels into one external scanline.
// buf must have capacity for the resolved BytesPerRow; nothing is ever
// written past len(buf). For palette types the samples come from
// indexes. Returns the number of bytes written.
func ExportRow(pixels []Pixel, indexes []uint16, info *Info, qt Type, buf []byte) (int, error) {
	layout, err := info.Layout(len(pixels), qt)
	if err != nil {
		return 0, err
	}
	if len(buf) < layout.BytesPerRow {
		return 0, fmt.Errorf("%w: row needs %d bytes, have %d",
			ErrBufferOverflow, layout.BytesPerRow, len(buf))
	}
	needsIndex := qt == TypeIndex || qt == TypeIndexAlpha
	if needsIndex && len(indexes) < len(pixels) {
		return 0, invalidArgumentf("index queue holds %d entries, need %d",
			len(indexes), len(pixels))
	}

	w := NewBitWriter(buf[:layout.BytesPerRow], info.BitOrder, info.Endian)
	padBits := info.Pad * 8
	for i := range pixels {
		p := pixels[i]
		if qt.HasAlpha() && info.Alpha == AlphaAssociated {
			associate(&p)
		}
		if info.SubstituteTransparent && p.Alpha == 0 {
			c := info.TransparentColor
			c.Alpha = p.Alpha
			c.Black = p.Black
			p = c
		}
		for _, ch := range layout.Order {
			var raw uint32
			switch ch {
			case ChannelIndex:
				raw = uint32(indexes[i])
			case ChannelGray:
				q := p.Gray()
				if info.MinIsWhite {
					q = QuantumRange - q
				}
				raw = info.quantumToSample(q)
			case ChannelRed:
				raw = info.quantumToSample(p.Red)
			case ChannelGreen:
				raw = info.quantumToSample(p.Green)
			case ChannelBlue:
				raw = info.quantumToSample(p.Blue)
			case ChannelBlack:
				raw = info.quantumToSample(p.Black)
			case ChannelAlpha:
				q := p.Alpha
				if info.AlphaIsOpacity {
					q = QuantumRange - q
				}
				raw = info.quantumToSample(q)
			}
			if err := w.WriteBits(info.Depth, raw); err != nil {
				return w.BytesWritten(), err
			}
		}
		if padBits > 0 {
			if err := w.SkipBits(padBits); err != nil {
				return w.BytesWritten(), err
			}
		}
	}
	// Zero-fill any trailing bits so a reused buffer cannot leak stale
	// bytes into the output stream.
	if rem := w.BytesWritten()*8 - w.BitsWritten(); rem > 0 {
		if err := w.SkipBits(rem); err != nil {
			return w.BytesWritten(), err
		}
	}
	return layout.BytesPerRow, nil
}

// associate premultiplies the color channels by alpha.
func associate(p *Pixel) {
	if p.Alpha == QuantumRange {
		return
	}
	a := uint64(p.Alpha)
	p.Red = multiply(p.Red, a)
	p.Green = multiply(p.Green, a)
	p.Blue = multiply(p.Blue, a)
	p.Black = multiply(p.Black, a)
}

func multiply(q Quantum, alpha uint64) Quantum {
	return Quantum((uint64(q)*alpha + uint64(QuantumRange)/2) / uint64(QuantumRange))
}
