package pixel

import (
	"math"

	"github.com/davesmith10/pixelcodec/internal/quantum"
)

// ChannelStats summarizes one channel across the whole frame.
type ChannelStats struct {
	Min    quantum.Quantum
	Max    quantum.Quantum
	Mean   float64
	StdDev float64
}

// Statistics holds per-channel summaries. Black is populated only for
// CMYK images and Alpha only when the image has a matte channel.
type Statistics struct {
	Red   ChannelStats
	Green ChannelStats
	Blue  ChannelStats
	Alpha ChannelStats
	Black ChannelStats
}

type accumulator struct {
	min, max quantum.Quantum
	sum      float64
	sumSq    float64
}

func newAccumulator() accumulator {
	return accumulator{min: quantum.QuantumRange}
}

func (a *accumulator) add(q quantum.Quantum) {
	if q < a.min {
		a.min = q
	}
	if q > a.max {
		a.max = q
	}
	v := float64(q)
	a.sum += v
	a.sumSq += v * v
}

func (a *accumulator) stats(n int) ChannelStats {
	if n == 0 {
		return ChannelStats{}
	}
	mean := a.sum / float64(n)
	variance := a.sumSq/float64(n) - mean*mean
	if variance < 0 {
		variance = 0
	}
	return ChannelStats{
		Min:    a.min,
		Max:    a.max,
		Mean:   mean,
		StdDev: math.Sqrt(variance),
	}
}

// Statistics computes per-channel minimum, maximum, mean and standard
// deviation.
func (img *Image) Statistics() *Statistics {
	red := newAccumulator()
	green := newAccumulator()
	blue := newAccumulator()
	alpha := newAccumulator()
	black := newAccumulator()

	for i := range img.pixels {
		p := &img.pixels[i]
		red.add(p.Red)
		green.add(p.Green)
		blue.add(p.Blue)
		if img.Matte {
			alpha.add(p.Alpha)
		}
		if img.Colorspace == ColorspaceCMYK {
			black.add(p.Black)
		}
	}

	n := len(img.pixels)
	s := &Statistics{
		Red:   red.stats(n),
		Green: green.stats(n),
		Blue:  blue.stats(n),
	}
	if img.Matte {
		s.Alpha = alpha.stats(n)
	}
	if img.Colorspace == ColorspaceCMYK {
		s.Black = black.stats(n)
	}
	return s
}

// Entropy estimates the information content of the frame as the Shannon
// entropy of a 256-bin intensity histogram, in bits per pixel.
func (img *Image) Entropy() float64 {
	var histogram [256]int
	for i := range img.pixels {
		histogram[img.pixels[i].Gray()>>8]++
	}
	total := float64(len(img.pixels))
	entropy := 0.0
	for _, count := range histogram {
		if count == 0 {
			continue
		}
		p := float64(count) / total
		entropy -= p * math.Log2(p)
	}
	return entropy
}
