package splitframe

import (
	"fmt"
	"time"
)

// FrameContext describes the frame being scheduled.
type FrameContext struct {
	// Index is the zero-based frame number.
	Index int

	// Start is the timestamp the frame's deadline is measured from.
	Start time.Time
}

// AnimationTime returns the global animation time of the frame in seconds.
func (fc FrameContext) AnimationTime() float64 {
	return float64(fc.Index) / FramesPerSecond
}

// FrameResult counts the migrations made while scheduling one frame.
type FrameResult struct {
	DriftMoves    int
	DeadlineMoves int
}

// Scheduler owns the band ownership table and the per-device cost model.
//
// All methods must be called from a single goroutine, once per frame in the
// order Frame, then Observe. The scheduler only ever moves bands toward the
// primary device; nothing hands them back.
type Scheduler struct {
	cfg     Config
	clock   Clock
	primary int
	devices int
	owner   []int
	cost    *CostModel
}

// NewScheduler creates a scheduler for domain. Ownership starts round-robin
// (band b on device b mod n) and every cost estimate starts at the seed.
func NewScheduler(domain ExecutionDomain, opts ...Option) (*Scheduler, error) {
	return newScheduler(domain, buildOptions(opts))
}

func newScheduler(domain ExecutionDomain, o options) (*Scheduler, error) {
	if err := validateConfig(o.config); err != nil {
		return nil, err
	}
	n := domain.DeviceCount()
	if n < 1 || n > MaxDevices {
		return nil, fmt.Errorf("%w: domain has %d devices", ErrInvalidConfig, n)
	}
	s := &Scheduler{
		cfg:     o.config,
		clock:   o.clock,
		primary: domain.Primary(),
		devices: n,
		owner:   make([]int, o.config.BandCount),
		cost:    NewCostModel(n, o.config.InitialCostMs, o.config.EMAAlpha),
	}
	for b := range s.owner {
		s.owner[b] = b % n
	}
	return s, nil
}

func validateConfig(c Config) error {
	switch {
	case c.BandCount < 1:
		return fmt.Errorf("%w: band count %d", ErrInvalidConfig, c.BandCount)
	case c.InitialCostMs <= 0:
		return fmt.Errorf("%w: initial cost %v", ErrInvalidConfig, c.InitialCostMs)
	case c.EMAAlpha < 0 || c.EMAAlpha > 1:
		return fmt.Errorf("%w: ema alpha %v", ErrInvalidConfig, c.EMAAlpha)
	case c.BudgetMs <= 0 || c.SafetyMs < 0:
		return fmt.Errorf("%w: budget %v safety %v", ErrInvalidConfig, c.BudgetMs, c.SafetyMs)
	}
	return nil
}

// Config returns the scheduler configuration.
func (s *Scheduler) Config() Config { return s.cfg }

// Primary returns the primary device index.
func (s *Scheduler) Primary() int { return s.primary }

// DeviceCount returns the number of devices scheduled over.
func (s *Scheduler) DeviceCount() int { return s.devices }

// BandCount returns the number of bands.
func (s *Scheduler) BandCount() int { return len(s.owner) }

// Owner returns the device that owns band b.
func (s *Scheduler) Owner(b int) int { return s.owner[b] }

// Ownership returns a copy of the band to device table.
func (s *Scheduler) Ownership() []int {
	out := make([]int, len(s.owner))
	copy(out, s.owner)
	return out
}

// BandsPerDevice returns how many bands each device owns.
func (s *Scheduler) BandsPerDevice() []int {
	counts := make([]int, s.devices)
	for _, g := range s.owner {
		counts[g]++
	}
	return counts
}

// Costs returns the cost model.
func (s *Scheduler) Costs() *CostModel { return s.cost }

// ApplyDrift moves every band of a non-primary device to the primary once the
// device's cost estimate exceeds DriftThreshold times the primary's. It
// returns the number of bands moved.
func (s *Scheduler) ApplyDrift() int {
	base := s.cost.At(s.primary)
	moved := 0
	for g := 0; g < s.devices; g++ {
		if g == s.primary {
			continue
		}
		ratio := s.cost.At(g) / base
		if ratio <= s.cfg.DriftThreshold {
			continue
		}
		n := 0
		for b, owner := range s.owner {
			if owner == g {
				s.owner[b] = s.primary
				n++
			}
		}
		if n > 0 {
			Logger().Debug("drift: bands moved to primary",
				"device", g, "ratio", ratio, "bands", n)
		}
		moved += n
	}
	return moved
}

// DeadlineExceeded reports whether work started at nowMs and costing costMs
// would finish after frameStartMs + budgetMs - safetyMs.
func DeadlineExceeded(nowMs, costMs, frameStartMs, budgetMs, safetyMs float64) bool {
	return nowMs+costMs > frameStartMs+budgetMs-safetyMs
}

// CheckDeadline moves band b to the primary device when its owner is not the
// primary and the owner's predicted completion misses the frame deadline.
// The move is persistent. It reports whether the band moved.
func (s *Scheduler) CheckDeadline(b int, now, frameStart time.Time) bool {
	g := s.owner[b]
	if g == s.primary {
		return false
	}
	elapsed := Milliseconds(now.Sub(frameStart))
	if !DeadlineExceeded(elapsed, s.cost.At(g), 0, s.cfg.BudgetMs, s.cfg.SafetyMs) {
		return false
	}
	s.owner[b] = s.primary
	Logger().Debug("deadline: band moved to primary",
		"band", b, "device", g, "elapsed_ms", elapsed, "cost_ms", s.cost.At(g))
	return true
}

// Frame schedules and dispatches one frame: the drift pass, then for each
// band in order the deadline check followed by its dispatch, and finally the
// reset of the execution target.
func (s *Scheduler) Frame(fc FrameContext, d *Dispatcher) FrameResult {
	var res FrameResult
	res.DriftMoves = s.ApplyDrift()

	t := fc.AnimationTime()
	for b := range s.owner {
		if s.CheckDeadline(b, s.clock.Now(), fc.Start) {
			res.DeadlineMoves++
		}
		d.Dispatch(b, s.owner[b], t)
	}
	d.Finish()
	return res
}

// Observe folds the measured frame duration into the cost model. Every
// device that owned at least one band receives the same sample,
// duration/bandCount; idle devices keep their estimate.
func (s *Scheduler) Observe(frameDuration time.Duration) {
	approx := Milliseconds(frameDuration) / float64(len(s.owner))
	for g, n := range s.BandsPerDevice() {
		if n > 0 {
			s.cost.Update(g, approx)
		}
	}
}
