package quantum

import "testing"

// Round-trip property: Import(Export(P)) == P up to the declared
// rounding error of the scaling step. Exact for depths at or above the
// canonical depth; at most one canonical unit per channel otherwise.
func TestRoundTrip(t *testing.T) {
	types := []Type{
		TypeGray, TypeGrayAlpha, TypeRGB, TypeRGBA,
		TypeCMYK, TypeCMYKA, TypeAlpha,
		TypeRed, TypeGreen, TypeBlue, TypeBlack,
	}
	depths := []int{1, 2, 4, 8, 16, 32}

	src := make([]Pixel, 16)
	for i := range src {
		v := Quantum(i * 4369) // spread over the canonical range
		src[i] = Pixel{
			Red:   v,
			Green: QuantumRange - v,
			Blue:  v / 2,
			Alpha: QuantumRange - v/3,
			Black: v / 4,
		}
	}

	for _, qt := range types {
		for _, depth := range depths {
			info, err := NewInfo(depth)
			if err != nil {
				t.Fatal(err)
			}
			layout, err := info.Layout(len(src), qt)
			if err != nil {
				t.Fatal(err)
			}
			buf := make([]byte, layout.BytesPerRow)
			if _, err := ExportRow(src, nil, info, qt, buf); err != nil {
				t.Fatalf("%v depth=%d: export: %v", qt, depth, err)
			}

			got := make([]Pixel, len(src))
			if _, err := ImportRow(buf, info, qt, got, nil); err != nil {
				t.Fatalf("%v depth=%d: import: %v", qt, depth, err)
			}

			// The external form only carries the channels of the
			// quantum type; quantize the expectation the same way.
			max := uint64(1)<<uint(depth) - 1
			tol := Quantum(0)
			if depth < QuantumDepth {
				tol = 1
			}
			for i := range src {
				want := expectedAfterRoundTrip(src[i], qt, max)
				checkChannels(t, qt, depth, i, got[i], want, tol)
			}
		}
	}
}

// expectedAfterRoundTrip quantizes a pixel to the external depth and
// back, modeling the declared rounding.
func expectedAfterRoundTrip(p Pixel, qt Type, max uint64) Pixel {
	q := func(v Quantum) Quantum {
		return ScaleToQuantum(ScaleFromQuantum(v, max), max)
	}
	out := Pixel{Alpha: QuantumRange}
	switch qt {
	case TypeGray:
		out.SetGray(q(p.Gray()))
	case TypeGrayAlpha:
		out.SetGray(q(p.Gray()))
		out.Alpha = q(p.Alpha)
	case TypeRGB:
		out.Red, out.Green, out.Blue = q(p.Red), q(p.Green), q(p.Blue)
	case TypeRGBA:
		out.Red, out.Green, out.Blue = q(p.Red), q(p.Green), q(p.Blue)
		out.Alpha = q(p.Alpha)
	case TypeCMYK:
		out.Red, out.Green, out.Blue, out.Black = q(p.Red), q(p.Green), q(p.Blue), q(p.Black)
	case TypeCMYKA:
		out.Red, out.Green, out.Blue, out.Black = q(p.Red), q(p.Green), q(p.Blue), q(p.Black)
		out.Alpha = q(p.Alpha)
	case TypeAlpha:
		out.Alpha = q(p.Alpha)
	case TypeRed:
		out.Red = q(p.Red)
	case TypeGreen:
		out.Green = q(p.Green)
	case TypeBlue:
		out.Blue = q(p.Blue)
	case TypeBlack:
		out.Black = q(p.Black)
	}
	return out
}

func checkChannels(t *testing.T, qt Type, depth, i int, got, want Pixel, tol Quantum) {
	t.Helper()
	check := func(name string, g, w Quantum) {
		d := g - w
		if w > g {
			d = w - g
		}
		if d > tol {
			t.Errorf("%v depth=%d pixel %d: %s = %d, want %d (±%d)",
				qt, depth, i, name, g, w, tol)
		}
	}
	check("red", got.Red, want.Red)
	check("green", got.Green, want.Green)
	check("blue", got.Blue, want.Blue)
	check("alpha", got.Alpha, want.Alpha)
	check("black", got.Black, want.Black)
}

func TestRoundTripIndex(t *testing.T) {
	for _, depth := range []int{1, 2, 4, 8, 16} {
		info, _ := NewInfo(depth)
		max := uint16(1)<<uint(depth) - 1
		src := []uint16{0, max, max / 2, 1 & max}
		pixels := make([]Pixel, len(src))
		layout, err := info.Layout(len(src), TypeIndex)
		if err != nil {
			t.Fatal(err)
		}
		buf := make([]byte, layout.BytesPerRow)
		if _, err := ExportRow(pixels, src, info, TypeIndex, buf); err != nil {
			t.Fatalf("depth=%d: export: %v", depth, err)
		}
		got := make([]uint16, len(src))
		if _, err := ImportRow(buf, info, TypeIndex, pixels, got); err != nil {
			t.Fatalf("depth=%d: import: %v", depth, err)
		}
		for i := range src {
			if got[i] != src[i] {
				t.Errorf("depth=%d index %d: got %d, want %d", depth, i, got[i], src[i])
			}
		}
	}
}

func TestRoundTripFloat(t *testing.T) {
	info, _ := NewInfo(32)
	info.Format = FormatFloat
	src := []Pixel{{}, {}, {}}
	src[0].SetGray(0)
	src[1].SetGray(QuantumRange / 5)
	src[2].SetGray(QuantumRange)
	for i := range src {
		src[i].Alpha = QuantumRange
	}
	buf := make([]byte, 12)
	if _, err := ExportRow(src, nil, info, TypeGray, buf); err != nil {
		t.Fatal(err)
	}
	got := make([]Pixel, 3)
	if _, err := ImportRow(buf, info, TypeGray, got, nil); err != nil {
		t.Fatal(err)
	}
	for i := range src {
		d := int64(got[i].Gray()) - int64(src[i].Gray())
		if d < -1 || d > 1 {
			t.Errorf("pixel %d: float round trip %d -> %d", i, src[i].Gray(), got[i].Gray())
		}
	}
}

func TestRoundTripSigned(t *testing.T) {
	info, _ := NewInfo(16)
	info.Format = FormatSigned
	src := []Pixel{{}, {}, {}}
	src[0].SetGray(0)
	src[1].SetGray(QuantumRange / 2)
	src[2].SetGray(QuantumRange)
	for i := range src {
		src[i].Alpha = QuantumRange
	}
	buf := make([]byte, 6)
	if _, err := ExportRow(src, nil, info, TypeGray, buf); err != nil {
		t.Fatal(err)
	}
	got := make([]Pixel, 3)
	if _, err := ImportRow(buf, info, TypeGray, got, nil); err != nil {
		t.Fatal(err)
	}
	for i := range src {
		if got[i].Gray() != src[i].Gray() {
			t.Errorf("pixel %d: signed round trip %d -> %d", i, src[i].Gray(), got[i].Gray())
		}
	}
}
