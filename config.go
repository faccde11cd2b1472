package splitframe

import "time"

// Fixed scheduling constants.
const (
	DefaultBandCount      = 16
	DefaultMaxFrames      = 600
	DefaultBudgetMs       = 16.666
	DefaultSafetyMs       = 2.0
	DefaultDriftThreshold = 1.5
	DefaultEMAAlpha       = 0.9
	DefaultInitialCostMs  = 0.2

	// FramesPerSecond converts a frame index into animation time.
	FramesPerSecond = 60
)

// Config holds the scheduler and frame loop constants.
type Config struct {
	BandCount      int
	MaxFrames      int
	BudgetMs       float64
	SafetyMs       float64
	DriftThreshold float64
	EMAAlpha       float64
	InitialCostMs  float64
}

// DefaultConfig returns the fixed configuration.
func DefaultConfig() Config {
	return Config{
		BandCount:      DefaultBandCount,
		MaxFrames:      DefaultMaxFrames,
		BudgetMs:       DefaultBudgetMs,
		SafetyMs:       DefaultSafetyMs,
		DriftThreshold: DefaultDriftThreshold,
		EMAAlpha:       DefaultEMAAlpha,
		InitialCostMs:  DefaultInitialCostMs,
	}
}

// Clock supplies timestamps to the scheduler and the frame loop.
type Clock interface {
	Now() time.Time
}

// ClockSource is implemented by layers that run on their own time base,
// such as simulated layers. Run schedules on that clock unless WithClock is
// given; the run summary stays on the wall clock.
type ClockSource interface {
	FrameClock() Clock
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

// WallClock returns the clock backed by time.Now.
func WallClock() Clock { return wallClock{} }

// Milliseconds converts d to fractional milliseconds.
func Milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
