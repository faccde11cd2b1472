package main

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/png"

	"github.com/gogpu/splitframe"
	"github.com/gogpu/splitframe/backend/sim"
	"github.com/gogpu/splitframe/internal/overlay"
	"github.com/urfave/cli"
)

func (e *env) snapshot(c *cli.Context) error {
	e.setupLogging(c.Bool("verbose"))

	devices, err := sim.ParseProfile(c.String("profile"))
	if err != nil {
		return err
	}
	width, height := c.Int("width"), c.Int("height")
	layer, err := sim.New(sim.Config{
		Devices: devices,
		Width:   width,
		Height:  height,
	})
	if err != nil {
		return err
	}
	defer layer.Destroy()

	shaders, err := splitframe.LoadShaders(e.fs, splitframe.DefaultVertexShader, splitframe.DefaultFragmentShader)
	if err != nil {
		return err
	}

	var last splitframe.FrameStats
	summary, err := splitframe.Run(context.Background(), layer, shaders,
		splitframe.WithMaxFrames(c.Int("frames")),
		splitframe.WithFrameHook(func(s splitframe.FrameStats) { last = s }))
	if err != nil {
		return err
	}

	frame := layer.Device().Swapchain().Presented()
	if frame == nil {
		return fmt.Errorf("no frame was presented")
	}
	img := image.NewRGBA(frame.Bounds())
	draw.Draw(img, img.Bounds(), frame, frame.Bounds().Min, draw.Src)
	overlay.Render(img, last, splitframe.Partition(width, summary.Bands))

	out := c.String("output")
	f, err := e.fs.Create(out)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", out, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "%s\nwrote %s\n", summary, out)
	return nil
}
