// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package wgpu

import (
	"context"
	"fmt"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/splitframe"
	"github.com/gogpu/wgpu/hal"
)

// imageCount is the length of the offscreen image chain.
const imageCount = 2

// pollInterval is the pause between completion polls in WaitReuse.
const pollInterval = 200 * time.Microsecond

// frameState is the per-device state of the image chain.
type frameState struct {
	m *member

	textures []hal.Texture
	views    []hal.TextureView

	vertBuf  hal.Buffer
	vertices []byte

	// submission is the queue submission index of the last frame.
	submission uint64

	encoder hal.CommandEncoder
	pass    hal.RenderPassEncoder
	cmdBuf  hal.CommandBuffer
}

// Swapchain is an offscreen image chain over every device of the domain.
type Swapchain struct {
	primary int
	width   uint32
	height  uint32
	bands   int
	states  []*frameState
	next    int
	stream  *Stream
}

var _ splitframe.Swapchain = (*Swapchain)(nil)

func newSwapchain(d *Device, desc splitframe.SwapchainDescriptor) (*Swapchain, error) {
	if desc.Width <= 0 || desc.Height <= 0 || desc.Bands <= 0 {
		return nil, splitframe.NewSetupError("CreateSwapchain", splitframe.StatusErrorInitializationFailed,
			fmt.Errorf("%w: %dx%d with %d bands", splitframe.ErrInvalidDimensions, desc.Width, desc.Height, desc.Bands))
	}
	sc := &Swapchain{
		primary: d.primary,
		width:   uint32(desc.Width),  //nolint:gosec // checked positive
		height:  uint32(desc.Height), //nolint:gosec // checked positive
		bands:   desc.Bands,
	}
	for _, m := range d.members {
		st := &frameState{m: m}
		sc.states = append(sc.states, st)
		if err := sc.allocate(st); err != nil {
			sc.Destroy()
			return nil, err
		}
	}
	return sc, nil
}

func (sc *Swapchain) allocate(st *frameState) error {
	dev := st.m.device
	for i := 0; i < imageCount; i++ {
		tex, err := dev.CreateTexture(&hal.TextureDescriptor{
			Label: fmt.Sprintf("band_target_%d", i),
			Size: hal.Extent3D{
				Width:              sc.width,
				Height:             sc.height,
				DepthOrArrayLayers: 1,
			},
			MipLevelCount: 1,
			SampleCount:   1,
			Dimension:     gputypes.TextureDimension2D,
			Format:        targetFormat,
			Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
		})
		if err != nil {
			return splitframe.NewSetupError("CreateTexture("+st.m.name+")", splitframe.StatusErrorOutOfDeviceMemory, err)
		}
		st.textures = append(st.textures, tex)

		view, err := dev.CreateTextureView(tex, &hal.TextureViewDescriptor{
			Label: fmt.Sprintf("band_target_view_%d", i),
		})
		if err != nil {
			return splitframe.NewSetupError("CreateTextureView("+st.m.name+")", splitframe.StatusErrorOutOfDeviceMemory, err)
		}
		st.views = append(st.views, view)
	}

	size := uint64(sc.bands) * bandVertexBytes //nolint:gosec // band count is positive
	buf, err := dev.CreateBuffer(&hal.BufferDescriptor{
		Label: "band_vertices",
		Size:  size,
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return splitframe.NewSetupError("CreateBuffer("+st.m.name+")", splitframe.StatusErrorOutOfDeviceMemory,
			fmt.Errorf("%w: %w", splitframe.ErrNoMemoryType, err))
	}
	st.vertBuf = buf
	st.vertices = make([]byte, size)
	return nil
}

// WaitReuse waits until every device's queue has completed the previous
// frame's submission and frees its command buffers.
func (sc *Swapchain) WaitReuse(ctx context.Context) error {
	for _, st := range sc.states {
		if st.cmdBuf == nil {
			continue
		}
		for st.m.queue.PollCompleted() < st.submission {
			select {
			case <-ctx.Done():
				return fmt.Errorf("wait submission %d on %s: %w", st.submission, st.m.name, ctx.Err())
			case <-time.After(pollInterval):
			}
		}
		st.m.device.FreeCommandBuffer(st.cmdBuf)
		st.cmdBuf = nil
	}
	return nil
}

// Acquire returns the next offscreen image. Headless images are always
// available.
func (sc *Swapchain) Acquire(_ context.Context) (int, splitframe.Status, error) {
	img := sc.next
	sc.next = (sc.next + 1) % imageCount
	return img, splitframe.StatusSuccess, nil
}

// Record begins a render pass on every device targeting image img.
func (sc *Swapchain) Record(img int) (splitframe.CommandStream, error) {
	if img < 0 || img >= imageCount {
		return nil, fmt.Errorf("wgpu: image %d out of range", img)
	}
	for _, st := range sc.states {
		encoder, err := st.m.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
			Label: "band_frame_encoder",
		})
		if err != nil {
			sc.discard()
			return nil, fmt.Errorf("create command encoder on %s: %w", st.m.name, err)
		}
		if err := encoder.BeginEncoding("band_frame"); err != nil {
			sc.discard()
			return nil, fmt.Errorf("begin encoding on %s: %w", st.m.name, err)
		}
		st.encoder = encoder
		st.pass = encoder.BeginRenderPass(&hal.RenderPassDescriptor{
			Label: "band_pass",
			ColorAttachments: []hal.RenderPassColorAttachment{{
				View:       st.views[img],
				LoadOp:     gputypes.LoadOpClear,
				StoreOp:    gputypes.StoreOpStore,
				ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 1},
			}},
		})
		st.pass.SetPipeline(st.m.pipeline)
		st.pass.SetVertexBuffer(0, st.vertBuf, 0)
	}
	sc.stream = &Stream{states: sc.states, mask: splitframe.MaskOf(sc.primary)}
	return sc.stream, nil
}

// discard abandons any encoding in progress.
func (sc *Swapchain) discard() {
	for _, st := range sc.states {
		if st.pass != nil {
			st.pass.End()
			st.pass = nil
		}
		if st.encoder != nil {
			st.encoder.DiscardEncoding()
			st.encoder = nil
		}
	}
	sc.stream = nil
}

// Submit uploads each device's band vertices, ends its pass and submits it.
// A failed upload abandons the frame on every device not yet submitted.
func (sc *Swapchain) Submit(img int) error {
	if sc.stream == nil {
		return ErrNotRecording
	}
	for _, st := range sc.states {
		if err := st.m.queue.WriteBuffer(st.vertBuf, 0, st.vertices); err != nil {
			sc.discard()
			return fmt.Errorf("write vertices on %s: %w", st.m.name, err)
		}
		st.pass.End()
		st.pass = nil

		cmdBuf, err := st.encoder.EndEncoding()
		st.encoder = nil
		if err != nil {
			sc.discard()
			return fmt.Errorf("end encoding on %s: %w", st.m.name, err)
		}
		idx, err := st.m.queue.Submit([]hal.CommandBuffer{cmdBuf})
		if err != nil {
			st.m.device.FreeCommandBuffer(cmdBuf)
			sc.discard()
			return fmt.Errorf("submit on %s: %w", st.m.name, err)
		}
		st.submission = idx
		st.cmdBuf = cmdBuf
	}
	sc.stream = nil
	return nil
}

// Present is a no-op for offscreen images.
func (sc *Swapchain) Present(img int) error {
	splitframe.Logger().Debug("wgpu: frame presented", "image", img)
	return nil
}

// Destroy waits for outstanding work and releases all chain resources.
func (sc *Swapchain) Destroy() {
	sc.discard()
	if err := sc.WaitReuse(context.Background()); err != nil {
		splitframe.Logger().Warn("wgpu: wait before destroy", "err", err)
	}
	for _, st := range sc.states {
		dev := st.m.device
		if st.vertBuf != nil {
			dev.DestroyBuffer(st.vertBuf)
			st.vertBuf = nil
		}
		for _, v := range st.views {
			dev.DestroyTextureView(v)
		}
		st.views = nil
		for _, t := range st.textures {
			dev.DestroyTexture(t)
		}
		st.textures = nil
	}
	sc.states = nil
}

// Stream fans band draws out to the render passes of the masked devices.
type Stream struct {
	states []*frameState
	mask   splitframe.DeviceMask
	draws  []int
}

var _ splitframe.CommandStream = (*Stream)(nil)

// SetDeviceMask selects the devices that receive subsequent draws.
func (s *Stream) SetDeviceMask(mask splitframe.DeviceMask) { s.mask = mask }

// DrawBand writes the band quad into each masked device's vertex staging
// and records its draw.
func (s *Stream) DrawBand(p splitframe.BandParams) {
	b := p.Band.Index
	s.mask.Each(func(i int) {
		if i >= len(s.states) {
			return
		}
		st := s.states[i]
		off := b * bandVertexBytes
		if off+bandVertexBytes > len(st.vertices) {
			return
		}
		putBandVertices(st.vertices[off:off+bandVertexBytes], p)
		st.pass.Draw(verticesPerBand, 1, uint32(b*verticesPerBand), 0) //nolint:gosec // band index is small
		if len(s.draws) < len(s.states) {
			s.draws = make([]int, len(s.states))
		}
		s.draws[i]++
	})
}

// Draws returns how many band draws each device received in this stream.
func (s *Stream) Draws() []int {
	out := make([]int, len(s.states))
	copy(out, s.draws)
	return out
}
