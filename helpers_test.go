package splitframe

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

// fakeLayer enumerates fixed devices and groups. Surface support is looked
// up by (enumeration index, family index).
type fakeLayer struct {
	devices  []PhysicalDevice
	groups   []DeviceGroup
	present  map[[2]int]bool
	enumErr  error
	groupErr error
	queried  [][2]int
}

func (l *fakeLayer) Name() string { return "fake" }

func (l *fakeLayer) EnumerateDevices() ([]PhysicalDevice, error) { return l.devices, l.enumErr }
func (l *fakeLayer) EnumerateGroups() ([]DeviceGroup, error)     { return l.groups, l.groupErr }
func (l *fakeLayer) Surface() Surface                            { return nil }

func (l *fakeLayer) SurfaceSupport(device, family int) (bool, error) {
	l.queried = append(l.queried, [2]int{device, family})
	return l.present[[2]int{device, family}], nil
}

func (l *fakeLayer) CreateDevice(ExecutionDomain, QueueFamily) (LogicalDevice, error) {
	return nil, errors.New("fake: no logical devices")
}

func (l *fakeLayer) Destroy() {}

// graphicsDevice returns device i with one graphics family at index 0.
func graphicsDevice(i int) PhysicalDevice {
	return PhysicalDevice{
		Index:       i,
		Name:        fmt.Sprintf("gpu%d", i),
		Queues:      []QueueFamily{{Index: 0, Graphics: true, Count: 1}},
		HostVisible: true,
	}
}

func devicesOf(n int) []PhysicalDevice {
	devs := make([]PhysicalDevice, n)
	for i := range devs {
		devs[i] = graphicsDevice(i)
	}
	return devs
}

// clusterOf returns a cluster of n devices, all presentable, primary 0.
func clusterOf(n int) ExecutionDomain {
	if n == 1 {
		return SingleDomain(graphicsDevice(0))
	}
	return ClusterDomain(devicesOf(n), AllDevices(n))
}

func mustScheduler(t *testing.T, domain ExecutionDomain, bands int, opts ...Option) *Scheduler {
	t.Helper()
	cfg := DefaultConfig()
	cfg.BandCount = bands
	s, err := NewScheduler(domain, append([]Option{WithConfig(cfg)}, opts...)...)
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}
	return s
}

// manualClock only moves when advanced.
type manualClock struct {
	now time.Time
}

func newManualClock() *manualClock { return &manualClock{now: time.Unix(1000, 0)} }

func (c *manualClock) Now() time.Time { return c.now }

func (c *manualClock) advance(ms float64) {
	c.now = c.now.Add(time.Duration(ms * float64(time.Millisecond)))
}

// streamOp is one call recorded by recordingStream.
type streamOp struct {
	mask DeviceMask
	draw bool
	band int
}

type recordingStream struct {
	ops    []streamOp
	mask   DeviceMask
	onDraw func(BandParams)
}

func (s *recordingStream) SetDeviceMask(m DeviceMask) {
	s.mask = m
	s.ops = append(s.ops, streamOp{mask: m})
}

func (s *recordingStream) DrawBand(p BandParams) {
	s.ops = append(s.ops, streamOp{mask: s.mask, draw: true, band: p.Band.Index})
	if s.onDraw != nil {
		s.onDraw(p)
	}
}

// ownersOf groups band indices by owning device.
func ownersOf(s *Scheduler) map[int][]int {
	out := make(map[int][]int)
	for b, g := range s.Ownership() {
		out[g] = append(out[g], b)
	}
	return out
}

// assertTotalPartition checks that every band has exactly one valid owner.
func assertTotalPartition(t *testing.T, s *Scheduler) {
	t.Helper()
	sum := 0
	for _, n := range s.BandsPerDevice() {
		sum += n
	}
	if sum != s.BandCount() {
		t.Fatalf("bands per device sum to %d, want %d", sum, s.BandCount())
	}
	for b, g := range s.Ownership() {
		if g < 0 || g >= s.DeviceCount() {
			t.Fatalf("band %d owned by invalid device %d", b, g)
		}
	}
}
