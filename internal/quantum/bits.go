package quantum

import "encoding/binary"

// BitOrder is the fill order of bits within a byte.
type BitOrder int

const (
	// MSBFirst places the first sample in the most significant bits.
	MSBFirst BitOrder = iota
	// LSBFirst places the first sample in the least significant bits
	// (TIFF FillOrder 2).
	LSBFirst
)

// ByteOrder is the word order for samples wider than one byte.
type ByteOrder int

const (
	BigEndian ByteOrder = iota
	LittleEndian
)

func (o ByteOrder) binary() binary.ByteOrder {
	if o == LittleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// BitReader extracts samples of 1 to 32 bits from a byte buffer,
// crossing byte boundaries as needed. Reads are bounds-checked before
// any access.
type BitReader struct {
	data   []byte
	pos    int // bit offset
	order  BitOrder
	endian ByteOrder
}

// NewBitReader returns a cursor over data with the declared bit and
// word order.
func NewBitReader(data []byte, order BitOrder, endian ByteOrder) *BitReader {
	return &BitReader{data: data, order: order, endian: endian}
}

// BitsRead returns the number of bits consumed so far.
func (r *BitReader) BitsRead() int { return r.pos }

// BytesRead returns the number of whole or partial bytes consumed.
func (r *BitReader) BytesRead() int { return (r.pos + 7) / 8 }

// ReadBits extracts the next n bits, 1 <= n <= 32.
func (r *BitReader) ReadBits(n int) (uint32, error) {
	if n < 1 || n > 32 {
		return 0, invalidArgumentf("bit count %d out of range [1,32]", n)
	}
	if r.pos+n > len(r.data)*8 {
		return 0, ErrBufferUnderrun
	}
	if r.pos&7 == 0 && n&7 == 0 {
		return r.readAligned(n), nil
	}
	return r.readUnaligned(n), nil
}

// SkipBits advances the cursor without extracting.
func (r *BitReader) SkipBits(n int) error {
	if n < 0 {
		return invalidArgumentf("negative skip %d", n)
	}
	if r.pos+n > len(r.data)*8 {
		return ErrBufferUnderrun
	}
	r.pos += n
	return nil
}

// readAligned handles whole-byte samples: the common fast path.
func (r *BitReader) readAligned(n int) uint32 {
	p := r.pos >> 3
	r.pos += n
	b := r.data[p:]
	switch n {
	case 8:
		return uint32(b[0])
	case 16:
		return uint32(r.endian.binary().Uint16(b))
	case 32:
		return r.endian.binary().Uint32(b)
	case 24:
		if r.endian == LittleEndian {
			return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
		}
		return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
	}
	return 0
}

func (r *BitReader) readUnaligned(n int) uint32 {
	var v uint32
	if r.order == LSBFirst {
		for i := 0; i < n; i++ {
			bit := r.data[r.pos>>3] >> uint(r.pos&7) & 1
			v |= uint32(bit) << uint(i)
			r.pos++
		}
		return v
	}
	for i := 0; i < n; i++ {
		bit := r.data[r.pos>>3] >> uint(7-r.pos&7) & 1
		v = v<<1 | uint32(bit)
		r.pos++
	}
	return v
}

// BitWriter inserts samples of 1 to 32 bits into a byte buffer. Writes
// are bounds-checked before any access; the buffer is never grown.
type BitWriter struct {
	data   []byte
	pos    int
	order  BitOrder
	endian ByteOrder
}

// NewBitWriter returns a cursor over data with the declared bit and
// word order.
func NewBitWriter(data []byte, order BitOrder, endian ByteOrder) *BitWriter {
	return &BitWriter{data: data, order: order, endian: endian}
}

// BitsWritten returns the number of bits inserted so far.
func (w *BitWriter) BitsWritten() int { return w.pos }

// BytesWritten returns the number of whole or partial bytes filled.
func (w *BitWriter) BytesWritten() int { return (w.pos + 7) / 8 }

// WriteBits inserts the low n bits of v, 1 <= n <= 32.
func (w *BitWriter) WriteBits(n int, v uint32) error {
	if n < 1 || n > 32 {
		return invalidArgumentf("bit count %d out of range [1,32]", n)
	}
	if w.pos+n > len(w.data)*8 {
		return ErrBufferOverflow
	}
	if n < 32 {
		v &= 1<<uint(n) - 1
	}
	if w.pos&7 == 0 && n&7 == 0 {
		w.writeAligned(n, v)
		return nil
	}
	w.writeUnaligned(n, v)
	return nil
}

// SkipBits advances the cursor, zero-filling the skipped bits.
func (w *BitWriter) SkipBits(n int) error {
	if n < 0 {
		return invalidArgumentf("negative skip %d", n)
	}
	if w.pos+n > len(w.data)*8 {
		return ErrBufferOverflow
	}
	for n >= 32 {
		w.writeUnaligned(32, 0)
		n -= 32
	}
	if n > 0 {
		w.writeUnaligned(n, 0)
	}
	return nil
}

func (w *BitWriter) writeAligned(n int, v uint32) {
	p := w.pos >> 3
	w.pos += n
	b := w.data[p:]
	switch n {
	case 8:
		b[0] = byte(v)
	case 16:
		w.endian.binary().PutUint16(b, uint16(v))
	case 32:
		w.endian.binary().PutUint32(b, v)
	case 24:
		if w.endian == LittleEndian {
			b[0], b[1], b[2] = byte(v), byte(v>>8), byte(v>>16)
		} else {
			b[0], b[1], b[2] = byte(v>>16), byte(v>>8), byte(v)
		}
	}
}

func (w *BitWriter) writeUnaligned(n int, v uint32) {
	if w.order == LSBFirst {
		for i := 0; i < n; i++ {
			mask := byte(1) << uint(w.pos&7)
			if v>>uint(i)&1 != 0 {
				w.data[w.pos>>3] |= mask
			} else {
				w.data[w.pos>>3] &^= mask
			}
			w.pos++
		}
		return
	}
	for i := n - 1; i >= 0; i-- {
		mask := byte(1) << uint(7-w.pos&7)
		if v>>uint(i)&1 != 0 {
			w.data[w.pos>>3] |= mask
		} else {
			w.data[w.pos>>3] &^= mask
		}
		w.pos++
	}
}
