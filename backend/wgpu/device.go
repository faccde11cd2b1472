// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/splitframe"
	"github.com/gogpu/wgpu/hal"
)

// targetFormat is the format of the offscreen images.
const targetFormat = gputypes.TextureFormatBGRA8Unorm

// member is one HAL device of the logical device.
type member struct {
	name   string
	device hal.Device
	queue  hal.Queue

	vertShader hal.ShaderModule
	fragShader hal.ShaderModule
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline
}

// Device is a logical device spanning the adapters of an execution domain.
type Device struct {
	primary int
	members []*member
	chain   *Swapchain
}

var _ splitframe.LogicalDevice = (*Device)(nil)

// DeviceCount returns the number of HAL devices.
func (d *Device) DeviceCount() int { return len(d.members) }

// CreatePipeline builds the band render pipeline on every device.
func (d *Device) CreatePipeline(shaders splitframe.ShaderSet) error {
	for _, m := range d.members {
		if err := m.createPipeline(shaders); err != nil {
			return splitframe.NewSetupError("CreateRenderPipeline("+m.name+")",
				splitframe.StatusErrorInitializationFailed, err)
		}
	}
	return nil
}

func (m *member) createPipeline(shaders splitframe.ShaderSet) error {
	vert, err := m.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "band_vert",
		Source: hal.ShaderSource{SPIRV: shaders.Vertex},
	})
	if err != nil {
		return fmt.Errorf("create vertex shader: %w", err)
	}
	m.vertShader = vert

	frag, err := m.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "band_frag",
		Source: hal.ShaderSource{SPIRV: shaders.Fragment},
	})
	if err != nil {
		return fmt.Errorf("create fragment shader: %w", err)
	}
	m.fragShader = frag

	layout, err := m.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: "band_pipe_layout",
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	m.pipeLayout = layout

	pipeline, err := m.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "band_pipeline",
		Layout: m.pipeLayout,
		Vertex: hal.VertexState{
			Module:     m.vertShader,
			EntryPoint: "vs_main",
			Buffers:    bandVertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     m.fragShader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    targetFormat,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("create render pipeline: %w", err)
	}
	m.pipeline = pipeline
	return nil
}

func (m *member) destroyPipeline() {
	if m.pipeline != nil {
		m.device.DestroyRenderPipeline(m.pipeline)
		m.pipeline = nil
	}
	if m.pipeLayout != nil {
		m.device.DestroyPipelineLayout(m.pipeLayout)
		m.pipeLayout = nil
	}
	if m.fragShader != nil {
		m.device.DestroyShaderModule(m.fragShader)
		m.fragShader = nil
	}
	if m.vertShader != nil {
		m.device.DestroyShaderModule(m.vertShader)
		m.vertShader = nil
	}
}

// CreateSwapchain allocates the offscreen image chain and vertex buffers on
// every device.
func (d *Device) CreateSwapchain(desc splitframe.SwapchainDescriptor) (splitframe.Swapchain, error) {
	for _, m := range d.members {
		if m.pipeline == nil {
			return nil, splitframe.NewSetupError("CreateSwapchain", splitframe.StatusErrorInitializationFailed, ErrPipelineMissing)
		}
	}
	sc, err := newSwapchain(d, desc)
	if err != nil {
		return nil, err
	}
	d.chain = sc
	return sc, nil
}

// Destroy releases pipelines and devices. A live swapchain is destroyed first.
func (d *Device) Destroy() {
	if d.chain != nil {
		d.chain.Destroy()
		d.chain = nil
	}
	for _, m := range d.members {
		m.destroyPipeline()
		m.device.Destroy()
	}
	d.members = nil
}
