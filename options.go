package splitframe

// Option configures a Scheduler or a Run.
//
// Example:
//
//	summary, err := splitframe.Run(ctx, layer, shaders,
//	    splitframe.WithMaxFrames(120),
//	    splitframe.WithFrameHook(func(s splitframe.FrameStats) { ... }))
type Option func(*options)

// options holds optional configuration.
type options struct {
	config   Config
	clock    Clock
	clockSet bool
	hooks    []func(FrameStats)
}

// defaultOptions returns the fixed configuration on the wall clock.
func defaultOptions() options {
	return options{
		config: DefaultConfig(),
		clock:  WallClock(),
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithConfig replaces the whole configuration. Intended for embedding and
// tests; the command line never changes the constants.
func WithConfig(c Config) Option {
	return func(o *options) {
		o.config = c
	}
}

// WithMaxFrames bounds the number of frames Run renders.
func WithMaxFrames(n int) Option {
	return func(o *options) {
		o.config.MaxFrames = n
	}
}

// WithClock sets the clock used for frame timing, deadline checks and the
// run summary. A nil clock keeps the default: the layer's clock when it
// implements ClockSource for scheduling, the wall clock for the summary.
func WithClock(c Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
			o.clockSet = true
		}
	}
}

// WithFrameHook registers fn to be called after every completed frame.
// Hooks run on the render goroutine and must not block.
func WithFrameHook(fn func(FrameStats)) Option {
	return func(o *options) {
		if fn != nil {
			o.hooks = append(o.hooks, fn)
		}
	}
}
