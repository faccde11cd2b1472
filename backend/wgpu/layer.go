// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/splitframe"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// instanceCreator is satisfied by HAL backends (hal.Backend, noop.API).
type instanceCreator interface {
	CreateInstance(desc *hal.InstanceDescriptor) (hal.Instance, error)
}

// Layer is a splitframe.Layer over HAL adapters.
type Layer struct {
	instance hal.Instance
	adapters []hal.ExposedAdapter
	surface  *Surface
}

var _ splitframe.Layer = (*Layer)(nil)

// New opens the Vulkan HAL backend with a headless surface of the given size.
func New(width, height int) (*Layer, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, ErrNoVulkan
	}
	return NewWithAPI(backend, width, height)
}

// NewWithAPI opens a layer on an explicit HAL backend.
func NewWithAPI(api instanceCreator, width, height int) (*Layer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("wgpu: %w: %dx%d", splitframe.ErrInvalidDimensions, width, height)
	}
	instance, err := api.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, splitframe.NewSetupError("CreateInstance", splitframe.StatusErrorInitializationFailed, err)
	}
	return &Layer{
		instance: instance,
		adapters: instance.EnumerateAdapters(nil),
		surface:  &Surface{width: width, height: height},
	}, nil
}

// Name returns "vulkan".
func (l *Layer) Name() string { return "vulkan" }

// EnumerateDevices returns one device per adapter with a single graphics
// queue family.
func (l *Layer) EnumerateDevices() ([]splitframe.PhysicalDevice, error) {
	out := make([]splitframe.PhysicalDevice, len(l.adapters))
	for i := range l.adapters {
		info := l.adapters[i].Info
		out[i] = splitframe.PhysicalDevice{
			Index:       i,
			Name:        info.Name,
			Kind:        fmt.Sprint(info.DeviceType),
			Queues:      []splitframe.QueueFamily{{Index: 0, Graphics: true, Count: 1}},
			HostVisible: true,
		}
	}
	return out, nil
}

// EnumerateGroups groups adapters with the same name and device type, in
// order of each group's first adapter.
func (l *Layer) EnumerateGroups() ([]splitframe.DeviceGroup, error) {
	var groups []splitframe.DeviceGroup
	index := make(map[string]int)
	for i := range l.adapters {
		info := l.adapters[i].Info
		key := fmt.Sprintf("%s/%v", info.Name, info.DeviceType)
		g, ok := index[key]
		if !ok {
			g = len(groups)
			index[key] = g
			groups = append(groups, splitframe.DeviceGroup{})
		}
		groups[g].Devices = append(groups[g].Devices, i)
	}
	return groups, nil
}

// Surface returns the headless surface.
func (l *Layer) Surface() splitframe.Surface { return l.surface }

// SurfaceSupport reports true for queue family 0 of every adapter; the
// offscreen targets can be rendered by any graphics queue.
func (l *Layer) SurfaceSupport(device, family int) (bool, error) {
	if device < 0 || device >= len(l.adapters) {
		return false, fmt.Errorf("wgpu: adapter %d out of range", device)
	}
	return family == 0, nil
}

// CreateDevice opens every adapter of the domain.
func (l *Layer) CreateDevice(domain splitframe.ExecutionDomain, family splitframe.QueueFamily) (splitframe.LogicalDevice, error) {
	d := &Device{primary: domain.Primary()}
	for i := 0; i < domain.DeviceCount(); i++ {
		pd := domain.Device(i)
		if pd.Index < 0 || pd.Index >= len(l.adapters) {
			d.Destroy()
			return nil, splitframe.NewSetupError("CreateDevice", splitframe.StatusErrorInitializationFailed,
				fmt.Errorf("wgpu: adapter %d out of range", pd.Index))
		}
		open, err := l.adapters[pd.Index].Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
		if err != nil {
			d.Destroy()
			return nil, splitframe.NewSetupError("Adapter.Open("+pd.Name+")", splitframe.StatusErrorInitializationFailed, err)
		}
		d.members = append(d.members, &member{
			name:   pd.Name,
			device: open.Device,
			queue:  open.Queue,
		})
	}
	splitframe.Logger().Info("wgpu: logical device created",
		"devices", d.DeviceCount(), "family", family.Index, "primary", d.primary)
	return d, nil
}

// Destroy releases the HAL instance.
func (l *Layer) Destroy() {
	if l.instance != nil {
		l.instance.Destroy()
		l.instance = nil
	}
}

// Surface is a headless surface of fixed size.
type Surface struct {
	width, height int
}

// Size returns the surface size.
func (s *Surface) Size() (int, int) { return s.width, s.height }

// PollEvents does nothing; a headless surface has no events.
func (s *Surface) PollEvents() {}

// CloseRequested always reports false.
func (s *Surface) CloseRequested() bool { return false }
