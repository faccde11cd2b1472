// Package overlay paints band ownership onto a rendered frame.
//
// The top of the image gets a strip tinted per owning device with the device
// index printed over each band, followed by one label line for the frame and
// one per device with its band count and cost estimate.
package overlay

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/gogpu/splitframe"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// StripHeight is the height in pixels of the ownership strip.
const StripHeight = 16

// lineHeight is the label line advance for basicfont.Face7x13.
const lineHeight = 13

// Palette tints devices by domain index, wrapping around.
var Palette = []color.RGBA{
	{R: 0xe6, G: 0x4b, B: 0x3c, A: 0xff},
	{R: 0x3c, G: 0xb4, B: 0x4b, A: 0xff},
	{R: 0x43, G: 0x63, B: 0xd8, A: 0xff},
	{R: 0xf5, G: 0x82, B: 0x31, A: 0xff},
	{R: 0x91, G: 0x1e, B: 0xb4, A: 0xff},
	{R: 0x42, G: 0xd4, B: 0xf4, A: 0xff},
	{R: 0xf0, G: 0x32, B: 0xe6, A: 0xff},
	{R: 0xbf, G: 0xef, B: 0x45, A: 0xff},
}

// Tint returns the strip color of device g.
func Tint(g int) color.RGBA {
	if g < 0 {
		g = -g
	}
	return Palette[g%len(Palette)]
}

// Render draws the ownership strip and labels for stats onto dst. bands must
// be the partition the frame was rendered with; bands without an entry in
// stats.Ownership are left untouched.
func Render(dst *image.RGBA, stats splitframe.FrameStats, bands []splitframe.Band) {
	bounds := dst.Bounds()
	face := basicfont.Face7x13

	for _, b := range bands {
		if b.Index < 0 || b.Index >= len(stats.Ownership) {
			continue
		}
		owner := stats.Ownership[b.Index]
		rect := image.Rect(bounds.Min.X+b.X0, bounds.Min.Y, bounds.Min.X+b.X1, bounds.Min.Y+StripHeight).Intersect(bounds)
		draw.Draw(dst, rect, image.NewUniform(Tint(owner)), image.Point{}, draw.Src)

		label := fmt.Sprint(owner)
		w := font.MeasureString(face, label).Ceil()
		if w > b.Width() {
			continue
		}
		x := rect.Min.X + (b.Width()-w)/2
		drawText(dst, face, label, x, bounds.Min.Y+face.Ascent+1, color.White)
	}

	y := bounds.Min.Y + StripHeight + lineHeight
	drawText(dst, face, fmt.Sprintf("frame %d  %.3fms  drift %d  deadline %d",
		stats.Index, splitframe.Milliseconds(stats.Duration), stats.DriftMoves, stats.DeadlineMoves),
		bounds.Min.X+4, y, color.White)

	counts := make([]int, len(stats.Costs))
	for _, g := range stats.Ownership {
		if g >= 0 && g < len(counts) {
			counts[g]++
		}
	}
	for g, c := range stats.Costs {
		y += lineHeight
		drawText(dst, face, fmt.Sprintf("gpu%d  bands %2d  %.3fms/band", g, counts[g], c),
			bounds.Min.X+4, y, Tint(g))
	}
}

func drawText(dst draw.Image, face font.Face, s string, x, y int, c color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}
