package splitframe

import "fmt"

// CostModel keeps an exponential moving average of the milliseconds one band
// costs on each device. Values are always positive.
type CostModel struct {
	alpha float64
	ema   []float64
}

// NewCostModel returns a model for n devices seeded with seedMs. alpha is the
// weight retained from the previous value on every update.
func NewCostModel(n int, seedMs, alpha float64) *CostModel {
	if seedMs <= 0 {
		panic(fmt.Sprintf("splitframe: cost seed must be positive, got %v", seedMs))
	}
	ema := make([]float64, n)
	for i := range ema {
		ema[i] = seedMs
	}
	return &CostModel{alpha: alpha, ema: ema}
}

// Len returns the number of devices.
func (c *CostModel) Len() int { return len(c.ema) }

// At returns the estimate for device g in milliseconds.
func (c *CostModel) At(g int) float64 { return c.ema[g] }

// Set overrides the estimate for device g. Non-positive values are ignored.
func (c *CostModel) Set(g int, ms float64) {
	if ms > 0 {
		c.ema[g] = ms
	}
}

// Update folds sampleMs into the estimate of device g.
func (c *CostModel) Update(g int, sampleMs float64) {
	next := c.alpha*c.ema[g] + (1-c.alpha)*sampleMs
	if next > 0 {
		c.ema[g] = next
	}
}

// Snapshot returns a copy of all estimates.
func (c *CostModel) Snapshot() []float64 {
	out := make([]float64, len(c.ema))
	copy(out, c.ema)
	return out
}
