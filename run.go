package splitframe

import (
	"context"
	"fmt"
	"time"
)

// FrameStats describes one completed frame.
type FrameStats struct {
	Index         int
	Image         int
	Ownership     []int
	Costs         []float64
	Duration      time.Duration
	DriftMoves    int
	DeadlineMoves int
}

// Summary is the end-of-run report.
type Summary struct {
	Frames  int
	Bands   int
	TotalMs float64
}

// MsPerFrame returns the average frame time.
func (s Summary) MsPerFrame() float64 {
	if s.Frames == 0 {
		return 0
	}
	return s.TotalMs / float64(s.Frames)
}

// FPS returns frames per second over the whole run.
func (s Summary) FPS() float64 {
	if s.TotalMs <= 0 {
		return 0
	}
	return float64(s.Frames) * 1000 / s.TotalMs
}

// String formats the summary as a single line.
func (s Summary) String() string {
	return fmt.Sprintf("frames=%d bands=%d total=%.2fms avg=%.3fms/frame fps=%.1f",
		s.Frames, s.Bands, s.TotalMs, s.MsPerFrame(), s.FPS())
}

// Run resolves the execution domain on layer, builds the device, pipeline and
// image chain, and renders frames until MaxFrames is reached, ctx is
// cancelled, the surface asks to close, or image acquisition reports a
// non-success status. Startup failures are returned as *SetupError.
//
// The summary brackets the frame loop with the clock given by WithClock, or
// the wall clock. A layer clock from ClockSource drives scheduling only.
func Run(ctx context.Context, layer Layer, shaders ShaderSet, opts ...Option) (Summary, error) {
	o := buildOptions(opts)
	timer := o.clock
	if cs, ok := layer.(ClockSource); ok && !o.clockSet {
		o.clock = cs.FrameClock()
	}
	summary := Summary{Bands: o.config.BandCount}

	domain, err := ResolveDomain(layer)
	if err != nil {
		return summary, err
	}
	family, err := SelectQueue(layer, domain)
	if err != nil {
		return summary, err
	}

	surface := layer.Surface()
	width, height := surface.Size()
	if width <= 0 || height <= 0 {
		return summary, NewSetupError("Surface.Size", StatusErrorSurfaceLost,
			fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height))
	}

	sched, err := newScheduler(domain, o)
	if err != nil {
		return summary, err
	}

	device, err := layer.CreateDevice(domain, family)
	if err != nil {
		return summary, err
	}
	defer device.Destroy()

	if err := device.CreatePipeline(shaders); err != nil {
		return summary, err
	}
	swapchain, err := device.CreateSwapchain(SwapchainDescriptor{
		Width:  width,
		Height: height,
		Bands:  o.config.BandCount,
	})
	if err != nil {
		return summary, err
	}
	defer swapchain.Destroy()

	bands := Partition(width, o.config.BandCount)
	l := &loop{
		opts:      o,
		surface:   surface,
		swapchain: swapchain,
		sched:     sched,
		bands:     bands,
		width:     width,
	}

	start := timer.Now()
	frames, err := l.run(ctx)
	summary.Frames = frames
	summary.TotalMs = Milliseconds(timer.Now().Sub(start))
	return summary, err
}

// loop is the per-frame driver.
type loop struct {
	opts      options
	surface   Surface
	swapchain Swapchain
	sched     *Scheduler
	bands     []Band
	width     int
}

func (l *loop) run(ctx context.Context) (int, error) {
	frames := 0
	for frames < l.opts.config.MaxFrames {
		if ctx.Err() != nil {
			Logger().Info("frame loop cancelled", "frames", frames)
			break
		}
		l.surface.PollEvents()
		if l.surface.CloseRequested() {
			Logger().Info("close requested", "frames", frames)
			break
		}

		if err := l.swapchain.WaitReuse(ctx); err != nil {
			return frames, fmt.Errorf("frame %d: wait for reuse: %w", frames, err)
		}
		image, status, err := l.swapchain.Acquire(ctx)
		if err != nil {
			return frames, fmt.Errorf("frame %d: acquire: %w", frames, err)
		}
		if !status.OK() {
			Logger().Info("acquire ended the run", "status", status, "frames", frames)
			break
		}

		stats, err := l.frame(frames, image)
		if err != nil {
			return frames, err
		}
		for _, hook := range l.opts.hooks {
			hook(stats)
		}
		frames++
	}
	return frames, nil
}

func (l *loop) frame(index, image int) (FrameStats, error) {
	clock := l.opts.clock
	fc := FrameContext{Index: index, Start: clock.Now()}

	stream, err := l.swapchain.Record(image)
	if err != nil {
		return FrameStats{}, fmt.Errorf("frame %d: record: %w", index, err)
	}
	d := NewDispatcher(stream, l.sched.Primary(), l.width, l.bands)
	res := l.sched.Frame(fc, d)
	if err := l.swapchain.Submit(image); err != nil {
		return FrameStats{}, fmt.Errorf("frame %d: submit: %w", index, err)
	}
	elapsed := clock.Now().Sub(fc.Start)

	if err := l.swapchain.Present(image); err != nil {
		return FrameStats{}, fmt.Errorf("frame %d: present: %w", index, err)
	}

	l.sched.Observe(elapsed)

	return FrameStats{
		Index:         index,
		Image:         image,
		Ownership:     l.sched.Ownership(),
		Costs:         l.sched.Costs().Snapshot(),
		Duration:      elapsed,
		DriftMoves:    res.DriftMoves,
		DeadlineMoves: res.DeadlineMoves,
	}, nil
}
