// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package wgpu runs splitframe on GPUs through the gogpu/wgpu HAL.
//
// Every HAL adapter is one device. Adapters reporting the same name and
// device type are presented as one device group, which is how linked
// identical GPUs appear. Rendering is headless: each device draws its bands
// into its own offscreen BGRA8 targets, so every graphics queue counts as
// presentable.
//
// The device mask of a command stream selects which devices' render passes
// receive a band's draw. Each device owns a command encoder and a vertex
// buffer with room for every band. Image reuse waits until the device's queue
// reports the previous frame's submission index as completed.
//
// Importing the package registers the "vulkan" backend unless built with
// the nogpu tag:
//
//	import _ "github.com/gogpu/splitframe/backend/wgpu"
package wgpu
