package quantum

import "testing"

func TestScaleToQuantumIdentity(t *testing.T) {
	for _, v := range []uint64{0, 1, 127, 32768, 65534, 65535} {
		if got := ScaleToQuantum(v, uint64(QuantumRange)); got != Quantum(v) {
			t.Errorf("ScaleToQuantum(%d, QuantumRange) = %d, want %d", v, got, v)
		}
	}
}

func TestScaleToQuantumRoundTrip(t *testing.T) {
	// For maxima at or below the canonical range the mapping is
	// information-preserving, so scaling there and back is exact.
	maxes := []uint64{1, 3, 15, 100, 255, 1023, 4095, 65535}
	for _, max := range maxes {
		step := max/257 + 1
		for v := uint64(0); v <= max; v += step {
			q := ScaleToQuantum(v, max)
			back := ScaleFromQuantum(q, max)
			if back != v {
				t.Errorf("max=%d: %d -> %d -> %d", max, v, q, back)
			}
		}
	}
	// Wider maxima lose precision but must keep the endpoints exact.
	for _, max := range []uint64{1<<24 - 1, 1<<32 - 1} {
		if ScaleToQuantum(0, max) != 0 {
			t.Errorf("max=%d: zero sample must map to 0", max)
		}
		if ScaleToQuantum(max, max) != QuantumRange {
			t.Errorf("max=%d: full-scale sample must map to QuantumRange", max)
		}
		if got := ScaleFromQuantum(QuantumRange, max); got != max {
			t.Errorf("max=%d: QuantumRange must map back to max, got %d", max, got)
		}
	}
}

func TestScaleToQuantumMonotonic(t *testing.T) {
	for _, max := range []uint64{1, 7, 100, 255, 4095, 65535} {
		prev := Quantum(0)
		for v := uint64(0); v <= max; v++ {
			q := ScaleToQuantum(v, max)
			if q < prev {
				t.Fatalf("max=%d: ScaleToQuantum(%d)=%d < ScaleToQuantum(%d)=%d",
					max, v, q, v-1, prev)
			}
			prev = q
		}
	}
}

func TestScaleToQuantumKnownValues(t *testing.T) {
	tests := []struct {
		sample, max uint64
		want        Quantum
	}{
		{0, 255, 0},
		{255, 255, 65535},
		{128, 255, 32896}, // 128*65535/255 rounded half up
		{1, 1, 65535},
		{0, 1, 0},
		{5, 10, 32768}, // half scale rounds up
	}
	for _, tt := range tests {
		if got := ScaleToQuantum(tt.sample, tt.max); got != tt.want {
			t.Errorf("ScaleToQuantum(%d, %d) = %d, want %d",
				tt.sample, tt.max, got, tt.want)
		}
	}
}

func TestScaleToQuantumClampsOverRange(t *testing.T) {
	if got := ScaleToQuantum(300, 255); got != QuantumRange {
		t.Errorf("over-range sample = %d, want QuantumRange", got)
	}
}

func TestSignedBiasInvolution(t *testing.T) {
	for _, depth := range []int{8, 12, 16, 32} {
		mask := uint32(1)<<uint(depth) - 1
		if depth == 32 {
			mask = ^uint32(0)
		}
		for _, raw := range []uint32{0, 1, mask / 2, mask/2 + 1, mask} {
			u := signedToUnsigned(raw, depth)
			if back := unsignedToSigned(u, depth); back != raw {
				t.Errorf("depth %d: %#x -> %#x -> %#x", depth, raw, u, back)
			}
		}
		// Most negative sample biases to zero.
		if got := signedToUnsigned(1<<uint(depth-1), depth) & mask; got != 0 {
			t.Errorf("depth %d: sign bit must bias to 0, got %#x", depth, got)
		}
	}
}

func TestMinIsWhiteInvolution(t *testing.T) {
	for _, q := range []Quantum{0, 1, 32768, 65534, 65535} {
		if QuantumRange-(QuantumRange-q) != q {
			t.Errorf("inversion applied twice must return %d", q)
		}
	}
}

func TestClampToQuantum(t *testing.T) {
	tests := []struct {
		in   float64
		want Quantum
	}{
		{-1, 0},
		{0, 0},
		{0.4, 0},
		{0.5, 1},
		{65534.6, 65535},
		{70000, 65535},
	}
	for _, tt := range tests {
		if got := ClampToQuantum(tt.in); got != tt.want {
			t.Errorf("ClampToQuantum(%g) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
