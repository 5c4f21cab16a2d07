package quantum

import "math"

// ScaleToQuantum maps a sample in [0, max] linearly into the canonical
// range, rounding half up. Samples above max clamp to QuantumRange.
// max == QuantumRange is an exact identity: the common depth-matched
// case must not pick up rounding drift. The caller guarantees max > 0;
// Info.validate rejects a zero maximum before any row work starts.
func ScaleToQuantum(sample, max uint64) Quantum {
	if max == uint64(QuantumRange) {
		if sample > max {
			return QuantumRange
		}
		return Quantum(sample)
	}
	if sample >= max {
		return QuantumRange
	}
	return Quantum((sample*uint64(QuantumRange) + max/2) / max)
}

// ScaleFromQuantum is the inverse of ScaleToQuantum: it maps a canonical
// value onto [0, max], rounding half up.
func ScaleFromQuantum(q Quantum, max uint64) uint64 {
	if max == uint64(QuantumRange) {
		return uint64(q)
	}
	return (uint64(q)*max + uint64(QuantumRange)/2) / uint64(QuantumRange)
}

// ClampToQuantum converts a real value to a canonical sample, saturating
// at the range limits and rounding half up.
func ClampToQuantum(v float64) Quantum {
	if v <= 0 {
		return 0
	}
	if v >= float64(QuantumRange) {
		return QuantumRange
	}
	return Quantum(v + 0.5)
}

// sampleToQuantum reinterprets one raw sample per the configured format
// and scales it into the canonical range.
func (info *Info) sampleToQuantum(raw uint32) Quantum {
	switch info.Format {
	case FormatFloat:
		f := math.Float32frombits(raw)
		return ClampToQuantum(float64(f) * info.Scale * float64(QuantumRange))
	case FormatSigned:
		// Two's-complement samples are biased by the midpoint so the
		// most negative sample maps to zero.
		raw = signedToUnsigned(raw, info.Depth)
	}
	return ScaleToQuantum(uint64(raw), info.MaxValue)
}

// quantumToSample is the inverse of sampleToQuantum.
func (info *Info) quantumToSample(q Quantum) uint32 {
	switch info.Format {
	case FormatFloat:
		f := float32(float64(q) / (info.Scale * float64(QuantumRange)))
		return math.Float32bits(f)
	case FormatSigned:
		return unsignedToSigned(uint32(ScaleFromQuantum(q, info.MaxValue)), info.Depth)
	}
	return uint32(ScaleFromQuantum(q, info.MaxValue))
}

// signedToUnsigned biases a depth-bit two's-complement value by
// 2^(depth-1). XOR with the sign bit is the modular addition.
func signedToUnsigned(raw uint32, depth int) uint32 {
	return raw ^ 1<<uint(depth-1)
}

func unsignedToSigned(raw uint32, depth int) uint32 {
	return raw ^ 1<<uint(depth-1)
}
