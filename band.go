package splitframe

import "math"

// Band is one vertical slice of the render target. It covers the pixel
// columns [X0, X1).
type Band struct {
	Index int
	X0    int
	X1    int
}

// Width returns the band width in pixels.
func (b Band) Width() int { return b.X1 - b.X0 }

// Partition divides a target of the given width into count bands with
// x0 = width*b/count and x1 = width*(b+1)/count.
func Partition(width, count int) []Band {
	bands := make([]Band, count)
	for b := range bands {
		bands[b] = Band{
			Index: b,
			X0:    width * b / count,
			X1:    width * (b + 1) / count,
		}
	}
	return bands
}

// BandParams are the per-band draw parameters. They depend only on the band
// geometry and the global animation time.
type BandParams struct {
	Band Band

	// Offset is the band's left edge in normalized device coordinates and
	// Scale its width, so the band spans [Offset, Offset+Scale] in [-1, 1].
	Offset float32
	Scale  float32

	// Color is RGBA with the red channel pulsing over time.
	Color [4]float32
}

// Pulse returns 0.5 + 0.5*sin(2t + 0.3b).
func Pulse(t float64, band int) float64 {
	return 0.5 + 0.5*math.Sin(2*t+0.3*float64(band))
}

// ParamsFor computes the draw parameters of band b on a target of the given
// width at animation time t.
func ParamsFor(b Band, width int, t float64) BandParams {
	x0 := 2*float64(b.X0)/float64(width) - 1
	x1 := 2*float64(b.X1)/float64(width) - 1
	p := Pulse(t, b.Index)
	return BandParams{
		Band:   b,
		Offset: float32(x0),
		Scale:  float32(x1 - x0),
		Color:  [4]float32{float32(p), 0.35, float32(1 - p), 1},
	}
}
