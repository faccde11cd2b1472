package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gogpu/splitframe"
	"github.com/urfave/cli"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

func (e *env) run(c *cli.Context) error {
	e.setupLogging(c.Bool("verbose"))

	shaders, err := splitframe.LoadShaders(e.fs, splitframe.DefaultVertexShader, splitframe.DefaultFragmentShader)
	if err != nil {
		return err
	}
	layer, err := e.openLayer(c)
	if err != nil {
		return err
	}
	defer layer.Destroy()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opts []splitframe.Option
	var p *mpb.Progress
	var bar *mpb.Bar
	if c.Bool("progress") {
		p, bar = newFrameBar(e, splitframe.DefaultMaxFrames)
		opts = append(opts, splitframe.WithFrameHook(func(splitframe.FrameStats) {
			bar.Increment()
		}))
	}

	summary, err := splitframe.Run(ctx, layer, shaders, opts...)
	if p != nil {
		bar.SetTotal(-1, true)
		p.Wait()
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(e.stdout, summary)
	return nil
}

// newFrameBar returns a progress container writing to stderr with one bar
// counting frames up to total.
func newFrameBar(e *env, total int, opts ...mpb.ContainerOption) (*mpb.Progress, *mpb.Bar) {
	p := mpb.New(append([]mpb.ContainerOption{mpb.WithWidth(64), mpb.WithOutput(e.stderr)}, opts...)...)
	name := "Rendering"
	bar := p.New(int64(total),
		mpb.BarStyle().Lbound("╢").Filler("█").Tip("█").Padding("░").Rbound("╟"),
		mpb.PrependDecorators(
			decor.Name(name, decor.WC{W: len(name) + 1, C: decor.DindentRight}),
			decor.CountersNoUnit("%d / %d", decor.WC{W: 10}),
		),
		mpb.AppendDecorators(
			decor.OnComplete(decor.Percentage(decor.WC{W: 5}), "Done"),
		),
	)
	return p, bar
}
