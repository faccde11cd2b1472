// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package wgpu

import "errors"

// Package errors for the wgpu backend.
var (
	// ErrNoVulkan is returned when the Vulkan HAL backend is not registered.
	ErrNoVulkan = errors.New("wgpu: vulkan backend not available")

	// ErrPipelineMissing is returned when a swapchain is created before the
	// pipeline.
	ErrPipelineMissing = errors.New("wgpu: pipeline not created")

	// ErrNotRecording is returned by Submit without a matching Record.
	ErrNotRecording = errors.New("wgpu: no frame being recorded")
)
