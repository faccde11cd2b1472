package splitframe

import (
	"context"
	"math/bits"
)

// QueueFamily describes one family of execution queues on a device.
type QueueFamily struct {
	Index    int
	Graphics bool
	Count    int
}

// PhysicalDevice is one enumerated rendering device.
type PhysicalDevice struct {
	// Index is the position in the layer's enumeration order.
	Index int
	Name  string
	Kind  string

	// Queues lists the device's queue families in index order.
	Queues []QueueFamily

	// HostVisible reports whether the device exposes memory the host can
	// write vertex data into.
	HostVisible bool
}

// DeviceGroup is a set of devices the layer can drive as one logical device.
// Devices holds enumeration indices in group order.
type DeviceGroup struct {
	Devices []int
}

// MaxDevices is the largest domain a DeviceMask can address.
const MaxDevices = 64

// DeviceMask selects devices by their index within an ExecutionDomain.
type DeviceMask uint64

// MaskOf returns a mask with only device i set.
func MaskOf(i int) DeviceMask { return DeviceMask(1) << uint(i) }

// AllDevices returns a mask with the first n devices set.
func AllDevices(n int) DeviceMask {
	if n >= MaxDevices {
		return ^DeviceMask(0)
	}
	return MaskOf(n) - 1
}

// Has reports whether device i is set.
func (m DeviceMask) Has(i int) bool { return i >= 0 && i < MaxDevices && m&MaskOf(i) != 0 }

// Count returns the number of devices set.
func (m DeviceMask) Count() int { return bits.OnesCount64(uint64(m)) }

// Lowest returns the lowest set index, or -1 for an empty mask.
func (m DeviceMask) Lowest() int {
	if m == 0 {
		return -1
	}
	return bits.TrailingZeros64(uint64(m))
}

// Each calls fn for every set index in increasing order.
func (m DeviceMask) Each(fn func(i int)) {
	for m != 0 {
		i := bits.TrailingZeros64(uint64(m))
		fn(i)
		m &^= MaskOf(i)
	}
}

// Surface is the presentation surface supplied by the window provider.
type Surface interface {
	// Size returns the drawable size in pixels.
	Size() (width, height int)

	// PollEvents processes pending window events without blocking.
	PollEvents()

	// CloseRequested reports whether the host asked to close the window.
	CloseRequested() bool
}

// Layer is the device/execution layer the scheduler runs on.
type Layer interface {
	// Name identifies the backend.
	Name() string

	// EnumerateDevices returns all devices in enumeration order.
	EnumerateDevices() ([]PhysicalDevice, error)

	// EnumerateGroups returns device groupings in enumeration order.
	EnumerateGroups() ([]DeviceGroup, error)

	// Surface returns the presentation surface.
	Surface() Surface

	// SurfaceSupport reports whether queue family of device (enumeration
	// index) can present to the surface.
	SurfaceSupport(device, family int) (bool, error)

	// CreateDevice creates a logical device spanning every device of domain,
	// with queues from family on the primary device.
	CreateDevice(domain ExecutionDomain, family QueueFamily) (LogicalDevice, error)

	// Destroy releases the layer.
	Destroy()
}

// ShaderSet holds the two compiled shader stages as SPIR-V words.
type ShaderSet struct {
	Vertex   []uint32
	Fragment []uint32
}

// SwapchainDescriptor sizes the image chain and the per-band vertex storage.
type SwapchainDescriptor struct {
	Width  int
	Height int
	Bands  int
}

// LogicalDevice is a device bound to the devices of an execution domain.
type LogicalDevice interface {
	// CreatePipeline builds the band pipeline from the shader stages.
	CreatePipeline(shaders ShaderSet) error

	// CreateSwapchain creates the presentable image chain.
	CreateSwapchain(desc SwapchainDescriptor) (Swapchain, error)

	// Destroy waits for idle and releases the device.
	Destroy()
}

// Swapchain is the presentable image chain with its frame synchronization.
type Swapchain interface {
	// WaitReuse blocks until the command stream of the previous frame may
	// be recorded again.
	WaitReuse(ctx context.Context) error

	// Acquire returns the index of the next image. A non-success status
	// ends the frame loop.
	Acquire(ctx context.Context) (image int, status Status, err error)

	// Record begins recording the frame's command stream for image.
	Record(image int) (CommandStream, error)

	// Submit finishes recording and submits the stream.
	Submit(image int) error

	// Present queues image for presentation.
	Present(image int) error

	// Destroy releases the images and synchronization objects.
	Destroy()
}

// CommandStream is the single linear stream a frame is recorded into.
type CommandStream interface {
	// SetDeviceMask selects the devices that execute subsequent commands.
	SetDeviceMask(mask DeviceMask)

	// DrawBand records the draw of one band.
	DrawBand(params BandParams)
}
