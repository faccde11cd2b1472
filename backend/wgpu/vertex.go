// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package wgpu

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/splitframe"
)

const (
	// bandVertexStride is position (2 x f32) followed by color (4 x f32).
	bandVertexStride = 24

	// verticesPerBand covers the band with two triangles.
	verticesPerBand = 6

	bandVertexBytes = bandVertexStride * verticesPerBand
)

func bandVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: bandVertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0}, // position
				{Format: gputypes.VertexFormatFloat32x4, Offset: 8, ShaderLocation: 1}, // color
			},
		},
	}
}

// putBandVertices writes the quad of p into dst, which must hold
// bandVertexBytes bytes.
func putBandVertices(dst []byte, p splitframe.BandParams) {
	x0, x1 := p.Offset, p.Offset+p.Scale
	corners := [verticesPerBand][2]float32{
		{x0, -1}, {x1, -1}, {x1, 1},
		{x0, -1}, {x1, 1}, {x0, 1},
	}
	off := 0
	for _, c := range corners {
		for _, v := range [6]float32{c[0], c[1], p.Color[0], p.Color[1], p.Color[2], p.Color[3]} {
			binary.LittleEndian.PutUint32(dst[off:], math.Float32bits(v))
			off += 4
		}
	}
}
