package pixel

import (
	"fmt"
	"math"

	"github.com/davesmith10/pixelcodec/internal/quantum"
)

// Distortion holds the error metrics between two frames. Absolute and
// squared errors are normalized to [0, 1]; PeakSignalToNoise is in
// decibels and +Inf for identical frames.
type Distortion struct {
	MeanAbsolute      float64
	MeanSquared       float64
	RootMeanSquared   float64
	PeakSignalToNoise float64
}

// Compare measures the per-channel distortion between two images of
// identical geometry.
func Compare(a, b *Image) (*Distortion, error) {
	if a.Columns != b.Columns || a.Rows != b.Rows {
		return nil, fmt.Errorf("image sizes differ (%dx%d vs %dx%d): %w",
			a.Columns, a.Rows, b.Columns, b.Rows, quantum.ErrInvalidArgument)
	}

	channels := 3
	matte := a.Matte && b.Matte
	if matte {
		channels++
	}
	cmyk := a.Colorspace == ColorspaceCMYK && b.Colorspace == ColorspaceCMYK
	if cmyk {
		channels++
	}

	var sumAbs, sumSq float64
	add := func(x, y quantum.Quantum) {
		d := (float64(x) - float64(y)) / float64(quantum.QuantumRange)
		sumAbs += math.Abs(d)
		sumSq += d * d
	}
	for i := range a.pixels {
		p, q := &a.pixels[i], &b.pixels[i]
		add(p.Red, q.Red)
		add(p.Green, q.Green)
		add(p.Blue, q.Blue)
		if matte {
			add(p.Alpha, q.Alpha)
		}
		if cmyk {
			add(p.Black, q.Black)
		}
	}

	n := float64(len(a.pixels) * channels)
	d := &Distortion{
		MeanAbsolute: sumAbs / n,
		MeanSquared:  sumSq / n,
	}
	d.RootMeanSquared = math.Sqrt(d.MeanSquared)
	if d.MeanSquared == 0 {
		d.PeakSignalToNoise = math.Inf(1)
	} else {
		d.PeakSignalToNoise = 10 * math.Log10(1/d.MeanSquared)
	}
	return d, nil
}
