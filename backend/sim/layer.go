package sim

import (
	"fmt"
	"image"
	"time"

	"github.com/gogpu/splitframe"
)

// Config describes a simulated cluster.
type Config struct {
	Devices []DeviceSpec

	// Groups lists device groups by enumeration index. Nil puts all devices
	// into one group.
	Groups [][]int

	Width  int
	Height int

	// Images is the image chain length. Zero means 2.
	Images int

	// AcquireLimit ends the run after that many successful acquisitions by
	// returning StatusErrorOutOfDate. Zero means unlimited.
	AcquireLimit int

	// CloseAfter raises a close request after that many event polls.
	// Zero means never.
	CloseAfter int

	// SubmitCost advances the clock on every submit.
	SubmitCost time.Duration

	// Clock is advanced by recorded work. Nil creates a clock at the Unix epoch.
	Clock *Clock
}

// Layer is a simulated device/execution layer. It implements splitframe.Layer.
type Layer struct {
	cfg     Config
	clock   *Clock
	surface *Surface

	device *Device
}

var _ splitframe.Layer = (*Layer)(nil)

// New creates a simulated layer.
func New(cfg Config) (*Layer, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("sim: %w: %dx%d", splitframe.ErrInvalidDimensions, cfg.Width, cfg.Height)
	}
	if cfg.Images <= 0 {
		cfg.Images = 2
	}
	if cfg.Clock == nil {
		cfg.Clock = NewClock(time.Unix(0, 0))
	}
	for i := range cfg.Devices {
		if len(cfg.Devices[i].Queues) == 0 {
			cfg.Devices[i].Queues = DefaultQueues()
		}
		if cfg.Devices[i].Name == "" {
			cfg.Devices[i].Name = fmt.Sprintf("sim-gpu%d", i)
		}
	}
	if cfg.Groups == nil && len(cfg.Devices) > 0 {
		all := make([]int, len(cfg.Devices))
		for i := range all {
			all[i] = i
		}
		cfg.Groups = [][]int{all}
	}
	return &Layer{
		cfg:     cfg,
		clock:   cfg.Clock,
		surface: &Surface{width: cfg.Width, height: cfg.Height, closeAfter: cfg.CloseAfter},
	}, nil
}

// Name returns "sim".
func (l *Layer) Name() string { return "sim" }

// Clock returns the layer's synthetic clock.
func (l *Layer) Clock() *Clock { return l.clock }

// FrameClock returns the synthetic clock as a splitframe.Clock, so that Run
// measures frames in simulated time.
func (l *Layer) FrameClock() splitframe.Clock { return l.clock }

// EnumerateDevices returns the configured devices.
func (l *Layer) EnumerateDevices() ([]splitframe.PhysicalDevice, error) {
	out := make([]splitframe.PhysicalDevice, len(l.cfg.Devices))
	for i, d := range l.cfg.Devices {
		queues := make([]splitframe.QueueFamily, len(d.Queues))
		copy(queues, d.Queues)
		out[i] = splitframe.PhysicalDevice{
			Index:       i,
			Name:        d.Name,
			Kind:        "simulated",
			Queues:      queues,
			HostVisible: !d.NoHostMemory,
		}
	}
	return out, nil
}

// EnumerateGroups returns the configured groups.
func (l *Layer) EnumerateGroups() ([]splitframe.DeviceGroup, error) {
	out := make([]splitframe.DeviceGroup, len(l.cfg.Groups))
	for i, g := range l.cfg.Groups {
		devs := make([]int, len(g))
		copy(devs, g)
		out[i] = splitframe.DeviceGroup{Devices: devs}
	}
	return out, nil
}

// Surface returns the simulated window surface.
func (l *Layer) Surface() splitframe.Surface { return l.surface }

// SurfaceSupport reports presentation support of a device's queue family.
func (l *Layer) SurfaceSupport(device, family int) (bool, error) {
	if device < 0 || device >= len(l.cfg.Devices) {
		return false, fmt.Errorf("sim: device %d out of range", device)
	}
	spec := l.cfg.Devices[device]
	if spec.Present != nil {
		return spec.Present[family], nil
	}
	for _, q := range spec.Queues {
		if q.Index == family {
			return q.Graphics, nil
		}
	}
	return false, nil
}

// CreateDevice creates a logical device over the domain's devices.
func (l *Layer) CreateDevice(domain splitframe.ExecutionDomain, family splitframe.QueueFamily) (splitframe.LogicalDevice, error) {
	costs := make([]time.Duration, domain.DeviceCount())
	for i := range costs {
		pd := domain.Device(i)
		if pd.Index < 0 || pd.Index >= len(l.cfg.Devices) {
			return nil, splitframe.NewSetupError("CreateDevice", splitframe.StatusErrorInitializationFailed,
				fmt.Errorf("sim: unknown device %d", pd.Index))
		}
		spec := l.cfg.Devices[pd.Index]
		if spec.NoHostMemory {
			return nil, splitframe.NewSetupError("FindMemoryType", splitframe.StatusErrorOutOfDeviceMemory,
				fmt.Errorf("%w on %s", splitframe.ErrNoMemoryType, spec.Name))
		}
		costs[i] = spec.BandCost
	}
	l.device = &Device{
		layer:   l,
		family:  family,
		primary: domain.Primary(),
		costs:   costs,
	}
	return l.device, nil
}

// Device returns the last created logical device, or nil.
func (l *Layer) Device() *Device { return l.device }

// Destroy releases the layer.
func (l *Layer) Destroy() {}

// Surface is a headless window of fixed size.
type Surface struct {
	width, height int
	closeAfter    int
	polls         int
}

// Size returns the drawable size.
func (s *Surface) Size() (int, int) { return s.width, s.height }

// PollEvents counts a poll.
func (s *Surface) PollEvents() { s.polls++ }

// CloseRequested reports whether the configured poll count was reached.
func (s *Surface) CloseRequested() bool {
	return s.closeAfter > 0 && s.polls >= s.closeAfter
}

// Device is a simulated logical device.
type Device struct {
	layer     *Layer
	family    splitframe.QueueFamily
	primary   int
	costs     []time.Duration
	shaders   splitframe.ShaderSet
	swapchain *Swapchain
	destroyed bool
}

var _ splitframe.LogicalDevice = (*Device)(nil)

// Family returns the queue family the device was created with.
func (d *Device) Family() splitframe.QueueFamily { return d.family }

// Destroyed reports whether Destroy was called.
func (d *Device) Destroyed() bool { return d.destroyed }

// CreatePipeline checks that both stages are present.
func (d *Device) CreatePipeline(shaders splitframe.ShaderSet) error {
	if len(shaders.Vertex) == 0 || len(shaders.Fragment) == 0 {
		return splitframe.NewSetupError("CreateGraphicsPipelines", splitframe.StatusErrorInitializationFailed,
			fmt.Errorf("sim: empty shader stage (vertex %d words, fragment %d words)",
				len(shaders.Vertex), len(shaders.Fragment)))
	}
	d.shaders = shaders
	return nil
}

// CreateSwapchain allocates the image chain.
func (d *Device) CreateSwapchain(desc splitframe.SwapchainDescriptor) (splitframe.Swapchain, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return nil, splitframe.NewSetupError("CreateSwapchain", splitframe.StatusErrorInitializationFailed,
			fmt.Errorf("%w: %dx%d", splitframe.ErrInvalidDimensions, desc.Width, desc.Height))
	}
	images := make([]*image.RGBA, d.layer.cfg.Images)
	for i := range images {
		images[i] = image.NewRGBA(image.Rect(0, 0, desc.Width, desc.Height))
	}
	d.swapchain = &Swapchain{device: d, images: images, presented: -1}
	return d.swapchain, nil
}

// Swapchain returns the last created swapchain, or nil.
func (d *Device) Swapchain() *Swapchain { return d.swapchain }

// Destroy marks the device destroyed.
func (d *Device) Destroy() { d.destroyed = true }
