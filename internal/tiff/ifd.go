package tiff

import (
	"encoding/binary"
	"fmt"
)

// field is one decoded IFD entry.
type field struct {
	typ   uint16
	count uint32
	value []byte
	bo    binary.ByteOrder
}

// uints decodes the entry's values as unsigned integers. Rational and
// floating-point fields return nil; this codec has no use for them.
func (f field) uints() []uint64 {
	size := fieldSize[f.typ]
	switch size {
	case 0:
		return nil
	}
	n := int(f.count)
	out := make([]uint64, 0, n)
	switch f.typ {
	case 1, 2, 6, 7: // byte-sized
		for i := 0; i < n && i < len(f.value); i++ {
			out = append(out, uint64(f.value[i]))
		}
	case 3, 8: // 16-bit
		for i := 0; i+2 <= len(f.value) && len(out) < n; i += 2 {
			out = append(out, uint64(f.bo.Uint16(f.value[i:])))
		}
	case 4, 9: // 32-bit
		for i := 0; i+4 <= len(f.value) && len(out) < n; i += 4 {
			out = append(out, uint64(f.bo.Uint32(f.value[i:])))
		}
	default:
		return nil
	}
	return out
}

// first returns the entry's first value, or def when absent.
func (f field) first(def uint64) uint64 {
	v := f.uints()
	if len(v) == 0 {
		return def
	}
	return v[0]
}

type ifd map[uint16]field

func (d ifd) scalar(tag uint16, def uint64) uint64 {
	f, ok := d[tag]
	if !ok {
		return def
	}
	return f.first(def)
}

func (d ifd) values(tag uint16) []uint64 {
	f, ok := d[tag]
	if !ok {
		return nil
	}
	return f.uints()
}

// parseFile reads the header and the first IFD. Later IFDs (additional
// pages) are ignored.
func parseFile(data []byte) (binary.ByteOrder, ifd, error) {
	if len(data) < 8 {
		return nil, nil, fmt.Errorf("file too short for a TIFF header")
	}
	var bo binary.ByteOrder
	switch string(data[:2]) {
	case "II":
		bo = binary.LittleEndian
	case "MM":
		bo = binary.BigEndian
	default:
		return nil, nil, fmt.Errorf("bad byte-order mark %q", data[:2])
	}
	if bo.Uint16(data[2:4]) != 42 {
		return nil, nil, fmt.Errorf("bad TIFF version number")
	}
	offset := int64(bo.Uint32(data[4:8]))
	if offset < 8 || offset+2 > int64(len(data)) {
		return nil, nil, fmt.Errorf("IFD offset %d out of bounds", offset)
	}

	count := int(bo.Uint16(data[offset:]))
	entries := data[offset+2:]
	if len(entries) < count*12 {
		return nil, nil, fmt.Errorf("IFD truncated: %d entries declared", count)
	}

	dir := make(ifd, count)
	for i := 0; i < count; i++ {
		e := entries[i*12 : i*12+12]
		tag := bo.Uint16(e[0:2])
		typ := bo.Uint16(e[2:4])
		n := bo.Uint32(e[4:8])
		size, ok := fieldSize[typ]
		if !ok {
			continue
		}
		total := int64(size) * int64(n)
		var value []byte
		if total <= 4 {
			value = e[8 : 8+total]
		} else {
			voff := int64(bo.Uint32(e[8:12]))
			if voff < 0 || voff+total > int64(len(data)) {
				return nil, nil, fmt.Errorf("tag %d: value offset out of bounds", tag)
			}
			value = data[voff : voff+total]
		}
		dir[tag] = field{typ: typ, count: n, value: value, bo: bo}
	}
	return bo, dir, nil
}
