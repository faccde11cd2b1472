// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package wgpu

import (
	"context"
	"encoding/binary"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/gogpu/splitframe"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
	"github.com/spf13/afero"
)

// newNoopLayer opens a layer on the noop HAL. With twin set the adapter list
// is enumerated twice so the layer sees two identical adapters.
func newNoopLayer(t *testing.T, twin bool) *Layer {
	t.Helper()
	l, err := NewWithAPI(&noop.API{}, 64, 32)
	if err != nil {
		t.Fatalf("NewWithAPI() error = %v", err)
	}
	t.Cleanup(l.Destroy)
	if len(l.adapters) == 0 {
		t.Fatal("noop HAL exposes no adapters")
	}
	if twin {
		l.adapters = append(l.adapters, l.instance.EnumerateAdapters(nil)...)
	}
	return l
}

// loadBandShaders compiles the repository's band shaders.
func loadBandShaders(t *testing.T) splitframe.ShaderSet {
	t.Helper()
	fs := afero.NewBasePathFs(afero.NewOsFs(), "../..")
	set, err := splitframe.LoadShaders(fs, splitframe.DefaultVertexShader, splitframe.DefaultFragmentShader)
	if err != nil {
		if strings.Contains(err.Error(), "not yet implemented") || strings.Contains(err.Error(), "not supported") {
			t.Skipf("Skipping: naga feature not yet implemented: %v", err)
		}
		t.Fatalf("LoadShaders() error = %v", err)
	}
	return set
}

// stubShaders is a shader set the noop HAL accepts without compiling WGSL.
func stubShaders() splitframe.ShaderSet {
	const magic = 0x07230203
	return splitframe.ShaderSet{Vertex: []uint32{magic, 0x00010000}, Fragment: []uint32{magic, 0x00010000}}
}

// laggingQueue never reports a submission as completed.
type laggingQueue struct {
	hal.Queue
}

func (laggingQueue) PollCompleted() uint64 { return 0 }

// foreignBuffer is a buffer the noop queue refuses to write.
type foreignBuffer struct{}

func (foreignBuffer) Destroy()              {}
func (foreignBuffer) NativeHandle() uintptr { return 0 }

func TestNewWithAPIRejectsBadSize(t *testing.T) {
	if _, err := NewWithAPI(&noop.API{}, 0, 10); !errors.Is(err, splitframe.ErrInvalidDimensions) {
		t.Errorf("NewWithAPI(0x10) error = %v, want ErrInvalidDimensions", err)
	}
}

func TestEnumerate(t *testing.T) {
	l := newNoopLayer(t, false)
	devs, err := l.EnumerateDevices()
	if err != nil {
		t.Fatalf("EnumerateDevices() error = %v", err)
	}
	for i, d := range devs {
		if d.Index != i {
			t.Errorf("device %d has Index %d", i, d.Index)
		}
		if len(d.Queues) != 1 || !d.Queues[0].Graphics {
			t.Errorf("device %d queues = %+v, want one graphics family", i, d.Queues)
		}
	}
	if ok, _ := l.SurfaceSupport(0, 0); !ok {
		t.Error("SurfaceSupport(0, 0) = false, want true")
	}
	if ok, _ := l.SurfaceSupport(0, 1); ok {
		t.Error("SurfaceSupport(0, 1) = true, want false")
	}
	if _, err := l.SurfaceSupport(len(devs), 0); err == nil {
		t.Error("SurfaceSupport on an unknown adapter should fail")
	}
	if w, h := l.Surface().Size(); w != 64 || h != 32 {
		t.Errorf("Surface().Size() = %dx%d, want 64x32", w, h)
	}
}

func TestIdenticalAdaptersFormOneGroup(t *testing.T) {
	l := newNoopLayer(t, true)
	groups, err := l.EnumerateGroups()
	if err != nil {
		t.Fatalf("EnumerateGroups() error = %v", err)
	}
	total := 0
	for _, g := range groups {
		total += len(g.Devices)
	}
	if total != len(l.adapters) {
		t.Errorf("groups cover %d adapters, want %d", total, len(l.adapters))
	}

	domain, err := splitframe.ResolveDomain(l)
	if err != nil {
		t.Fatalf("ResolveDomain() error = %v", err)
	}
	if !domain.Clustered() || domain.Primary() != 0 {
		t.Errorf("domain clustered=%v primary=%d, want a cluster with primary 0", domain.Clustered(), domain.Primary())
	}
}

func TestRunOnNoop(t *testing.T) {
	l := newNoopLayer(t, true)

	var frames []splitframe.FrameStats
	summary, err := splitframe.Run(context.Background(), l, stubShaders(),
		splitframe.WithMaxFrames(4),
		splitframe.WithFrameHook(func(s splitframe.FrameStats) { frames = append(frames, s) }))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Frames != 4 || len(frames) != 4 {
		t.Fatalf("Run() rendered %d frames (%d hooks), want 4", summary.Frames, len(frames))
	}
	if frames[1].Image != 1 || frames[2].Image != 0 {
		t.Errorf("images = %d, %d; want the chain to alternate", frames[1].Image, frames[2].Image)
	}
}

func openChain(t *testing.T, l *Layer) (*Device, *Swapchain) {
	t.Helper()
	domain, err := splitframe.ResolveDomain(l)
	if err != nil {
		t.Fatalf("ResolveDomain() error = %v", err)
	}
	family, err := splitframe.SelectQueue(l, domain)
	if err != nil {
		t.Fatalf("SelectQueue() error = %v", err)
	}
	ld, err := l.CreateDevice(domain, family)
	if err != nil {
		t.Fatalf("CreateDevice() error = %v", err)
	}
	dev := ld.(*Device)
	t.Cleanup(dev.Destroy)

	if err := dev.CreatePipeline(stubShaders()); err != nil {
		t.Fatalf("CreatePipeline() error = %v", err)
	}
	sc, err := dev.CreateSwapchain(splitframe.SwapchainDescriptor{Width: 64, Height: 32, Bands: 4})
	if err != nil {
		t.Fatalf("CreateSwapchain() error = %v", err)
	}
	return dev, sc.(*Swapchain)
}

func TestStreamFansOutByMask(t *testing.T) {
	l := newNoopLayer(t, true)
	dev, sc := openChain(t, l)
	if dev.DeviceCount() != 2 {
		t.Fatalf("DeviceCount() = %d, want 2", dev.DeviceCount())
	}

	ctx := context.Background()
	if err := sc.WaitReuse(ctx); err != nil {
		t.Fatalf("WaitReuse() error = %v", err)
	}
	img, status, err := sc.Acquire(ctx)
	if err != nil || !status.OK() {
		t.Fatalf("Acquire() = %d, %v, %v", img, status, err)
	}
	cs, err := sc.Record(img)
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	stream := cs.(*Stream)

	bands := splitframe.Partition(64, 4)
	stream.SetDeviceMask(splitframe.MaskOf(1))
	stream.DrawBand(splitframe.ParamsFor(bands[0], 64, 0))
	stream.SetDeviceMask(splitframe.MaskOf(0))
	stream.DrawBand(splitframe.ParamsFor(bands[1], 64, 0))
	stream.SetDeviceMask(splitframe.AllDevices(2))
	stream.DrawBand(splitframe.ParamsFor(bands[2], 64, 0))

	if got := stream.Draws(); got[0] != 2 || got[1] != 2 {
		t.Errorf("Draws() = %v, want [2 2]", got)
	}
	// Band 0 went to device 1 only.
	first := math.Float32frombits(binary.LittleEndian.Uint32(sc.states[1].vertices[0:]))
	if first != -1 {
		t.Errorf("device 1 band 0 first x = %v, want -1", first)
	}
	if x := binary.LittleEndian.Uint32(sc.states[0].vertices[0:]); x != 0 {
		t.Errorf("device 0 received band 0 vertices")
	}

	if err := sc.Submit(img); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if err := sc.Present(img); err != nil {
		t.Fatalf("Present() error = %v", err)
	}
	if err := sc.WaitReuse(ctx); err != nil {
		t.Fatalf("WaitReuse() after submit error = %v", err)
	}
	if err := sc.Submit(img); !errors.Is(err, ErrNotRecording) {
		t.Errorf("second Submit() error = %v, want ErrNotRecording", err)
	}
}

func TestBandShadersBuildPipeline(t *testing.T) {
	shaders := loadBandShaders(t)
	l := newNoopLayer(t, false)
	domain, err := splitframe.ResolveDomain(l)
	if err != nil {
		t.Fatal(err)
	}
	ld, err := l.CreateDevice(domain, splitframe.QueueFamily{Graphics: true})
	if err != nil {
		t.Fatalf("CreateDevice() error = %v", err)
	}
	defer ld.Destroy()
	if err := ld.CreatePipeline(shaders); err != nil {
		t.Fatalf("CreatePipeline() error = %v", err)
	}
}

// renderFrame records one frame drawing every band on the primary device.
func renderFrame(t *testing.T, sc *Swapchain) int {
	t.Helper()
	ctx := context.Background()
	if err := sc.WaitReuse(ctx); err != nil {
		t.Fatalf("WaitReuse() error = %v", err)
	}
	img, _, err := sc.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	cs, err := sc.Record(img)
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	for _, b := range splitframe.Partition(64, sc.bands) {
		cs.DrawBand(splitframe.ParamsFor(b, 64, 0))
	}
	return img
}

func TestSubmitTracksSubmissionIndex(t *testing.T) {
	l := newNoopLayer(t, true)
	_, sc := openChain(t, l)

	for frame := uint64(1); frame <= 3; frame++ {
		img := renderFrame(t, sc)
		if err := sc.Submit(img); err != nil {
			t.Fatalf("frame %d: Submit() error = %v", frame, err)
		}
		for i, st := range sc.states {
			if st.submission != frame {
				t.Errorf("frame %d: device %d submission = %d, want %d", frame, i, st.submission, frame)
			}
			if st.cmdBuf == nil {
				t.Errorf("frame %d: device %d holds no command buffer after Submit", frame, i)
			}
		}
	}
	if err := sc.WaitReuse(context.Background()); err != nil {
		t.Fatalf("WaitReuse() error = %v", err)
	}
	for i, st := range sc.states {
		if st.cmdBuf != nil {
			t.Errorf("device %d command buffer not freed by WaitReuse", i)
		}
	}
}

func TestWaitReuseHonorsContext(t *testing.T) {
	l := newNoopLayer(t, false)
	_, sc := openChain(t, l)

	st := sc.states[0]
	queue := st.m.queue
	st.m.queue = laggingQueue{Queue: queue}
	defer func() { st.m.queue = queue }()

	img := renderFrame(t, sc)
	if err := sc.Submit(img); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sc.WaitReuse(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("WaitReuse() on an incomplete submission error = %v, want context.Canceled", err)
	}
	if st.cmdBuf == nil {
		t.Error("WaitReuse() freed a command buffer still in flight")
	}
}

func TestSubmitUploadFailure(t *testing.T) {
	l := newNoopLayer(t, true)
	_, sc := openChain(t, l)

	bad := sc.states[1]
	buf := bad.vertBuf
	bad.vertBuf = foreignBuffer{}

	img := renderFrame(t, sc)
	err := sc.Submit(img)
	if err == nil || !strings.Contains(err.Error(), "write vertices") {
		t.Fatalf("Submit() error = %v, want a vertex upload failure", err)
	}
	if bad.submission != 0 || bad.cmdBuf != nil {
		t.Errorf("device 1 submitted after a failed upload: submission=%d", bad.submission)
	}
	if bad.encoder != nil || bad.pass != nil {
		t.Error("failed frame left device 1 encoding")
	}
	if err := sc.Submit(img); !errors.Is(err, ErrNotRecording) {
		t.Errorf("Submit() after a failed frame error = %v, want ErrNotRecording", err)
	}

	bad.vertBuf = buf
	img = renderFrame(t, sc)
	if err := sc.Submit(img); err != nil {
		t.Fatalf("Submit() after restoring the buffer error = %v", err)
	}
	if bad.submission != 1 {
		t.Errorf("device 1 submission = %d, want 1", bad.submission)
	}
}

func TestCreateSwapchainNeedsPipeline(t *testing.T) {
	l := newNoopLayer(t, false)
	domain, err := splitframe.ResolveDomain(l)
	if err != nil {
		t.Fatal(err)
	}
	ld, err := l.CreateDevice(domain, splitframe.QueueFamily{Graphics: true})
	if err != nil {
		t.Fatalf("CreateDevice() error = %v", err)
	}
	defer ld.Destroy()

	_, err = ld.CreateSwapchain(splitframe.SwapchainDescriptor{Width: 8, Height: 8, Bands: 2})
	if !errors.Is(err, ErrPipelineMissing) {
		t.Errorf("CreateSwapchain() error = %v, want ErrPipelineMissing", err)
	}
}

func TestPutBandVertices(t *testing.T) {
	p := splitframe.BandParams{Offset: -0.5, Scale: 0.25, Color: [4]float32{0.1, 0.2, 0.3, 1}}
	buf := make([]byte, bandVertexBytes)
	putBandVertices(buf, p)

	read := func(vertex, field int) float32 {
		off := vertex*bandVertexStride + field*4
		return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
	}
	wantX := []float32{-0.5, -0.25, -0.25, -0.5, -0.25, -0.5}
	wantY := []float32{-1, -1, 1, -1, 1, 1}
	for v := 0; v < verticesPerBand; v++ {
		if read(v, 0) != wantX[v] || read(v, 1) != wantY[v] {
			t.Errorf("vertex %d = (%v, %v), want (%v, %v)", v, read(v, 0), read(v, 1), wantX[v], wantY[v])
		}
		for c := 0; c < 4; c++ {
			if read(v, 2+c) != p.Color[c] {
				t.Errorf("vertex %d color[%d] = %v, want %v", v, c, read(v, 2+c), p.Color[c])
			}
		}
	}
}

func TestVulkanRegistered(t *testing.T) {
	found := false
	for _, name := range splitframe.Backends() {
		if name == "vulkan" {
			found = true
		}
	}
	if !found {
		t.Errorf("Backends() = %v, want vulkan registered", splitframe.Backends())
	}
}
