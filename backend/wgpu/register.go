// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package wgpu

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/splitframe"
	"github.com/gogpu/wgpu/hal"
)

func init() {
	splitframe.Register("vulkan", 100, func(opts splitframe.BackendOptions) (splitframe.Layer, error) {
		return New(opts.Width, opts.Height)
	}, available)
}

func available() bool {
	_, ok := hal.GetBackend(gputypes.BackendVulkan)
	return ok
}
