package sim

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"time"

	"github.com/gogpu/splitframe"
)

// Swapchain is a simulated image chain with in-flight depth 1.
type Swapchain struct {
	device    *Device
	images    []*image.RGBA
	acquired  int
	submitted int
	presented int
	pending   bool
	stream    *Stream
	destroyed bool
}

var _ splitframe.Swapchain = (*Swapchain)(nil)

// WaitReuse returns once the previous submission has completed, which in the
// simulation is immediately.
func (s *Swapchain) WaitReuse(ctx context.Context) error {
	s.pending = false
	return nil
}

// Acquire returns the next image index in rotation, or StatusErrorOutOfDate
// once the configured acquire limit is reached.
func (s *Swapchain) Acquire(ctx context.Context) (int, splitframe.Status, error) {
	limit := s.device.layer.cfg.AcquireLimit
	if limit > 0 && s.acquired >= limit {
		return -1, splitframe.StatusErrorOutOfDate, nil
	}
	img := s.acquired % len(s.images)
	s.acquired++
	return img, splitframe.StatusSuccess, nil
}

// Record starts a command stream targeting image.
func (s *Swapchain) Record(img int) (splitframe.CommandStream, error) {
	if img < 0 || img >= len(s.images) {
		return nil, fmt.Errorf("sim: image %d out of range", img)
	}
	if s.pending {
		return nil, fmt.Errorf("sim: previous frame still in flight")
	}
	target := s.images[img]
	draw.Draw(target, target.Bounds(), image.Transparent, image.Point{}, draw.Src)
	s.stream = &Stream{
		clock:  s.device.layer.clock,
		costs:  s.device.costs,
		target: target,
		mask:   splitframe.MaskOf(s.device.primary),
	}
	return s.stream, nil
}

// Submit closes the stream and charges the configured submit cost.
func (s *Swapchain) Submit(img int) error {
	if s.stream == nil {
		return fmt.Errorf("sim: submit without record")
	}
	s.device.layer.clock.Advance(s.device.layer.cfg.SubmitCost)
	s.submitted++
	s.pending = true
	return nil
}

// Present records img as the presented image.
func (s *Swapchain) Present(img int) error {
	s.presented = img
	return nil
}

// Destroy marks the chain destroyed.
func (s *Swapchain) Destroy() { s.destroyed = true }

// Destroyed reports whether Destroy was called.
func (s *Swapchain) Destroyed() bool { return s.destroyed }

// Submitted returns the number of submitted frames.
func (s *Swapchain) Submitted() int { return s.submitted }

// Presented returns the last presented image, or nil before the first present.
func (s *Swapchain) Presented() *image.RGBA {
	if s.presented < 0 {
		return nil
	}
	return s.images[s.presented]
}

// LastStream returns the most recently recorded stream.
func (s *Swapchain) LastStream() *Stream { return s.stream }

// Op is a recorded command kind.
type Op int

// Recorded command kinds.
const (
	OpSetDeviceMask Op = iota
	OpDrawBand
)

// Command is one recorded command.
type Command struct {
	Op     Op
	Mask   splitframe.DeviceMask
	Params splitframe.BandParams
}

// Stream records commands and rasterizes band draws into the target image.
type Stream struct {
	clock    *Clock
	costs    []time.Duration
	target   *image.RGBA
	mask     splitframe.DeviceMask
	commands []Command
}

var _ splitframe.CommandStream = (*Stream)(nil)

// SetDeviceMask selects the devices for subsequent draws.
func (s *Stream) SetDeviceMask(mask splitframe.DeviceMask) {
	s.mask = mask
	s.commands = append(s.commands, Command{Op: OpSetDeviceMask, Mask: mask})
}

// DrawBand fills the band's columns with its color and advances the clock by
// the cost of the slowest masked device.
func (s *Stream) DrawBand(p splitframe.BandParams) {
	s.commands = append(s.commands, Command{Op: OpDrawBand, Mask: s.mask, Params: p})

	var cost time.Duration
	s.mask.Each(func(i int) {
		if i < len(s.costs) && s.costs[i] > cost {
			cost = s.costs[i]
		}
	})
	s.clock.Advance(cost)

	c := color.RGBA{
		R: unit8(p.Color[0]),
		G: unit8(p.Color[1]),
		B: unit8(p.Color[2]),
		A: unit8(p.Color[3]),
	}
	b := s.target.Bounds()
	rect := image.Rect(p.Band.X0, b.Min.Y, p.Band.X1, b.Max.Y).Intersect(b)
	draw.Draw(s.target, rect, image.NewUniform(c), image.Point{}, draw.Src)
}

// Commands returns the recorded commands.
func (s *Stream) Commands() []Command { return s.commands }

// Mask returns the current device mask.
func (s *Stream) Mask() splitframe.DeviceMask { return s.mask }

func unit8(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}
