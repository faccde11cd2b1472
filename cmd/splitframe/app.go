package main

import (
	"io"
	"log/slog"

	"github.com/gogpu/splitframe"
	"github.com/spf13/afero"
	"github.com/urfave/cli"
)

// env holds the process resources commands use.
type env struct {
	stdout io.Writer
	stderr io.Writer
	fs     afero.Fs
}

var backendFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "backend, b",
		Usage: "backend to render with (default: best available)",
	},
	cli.StringFlag{
		Name:  "profile, p",
		Usage: "backend device profile, e.g. per-device cost multipliers for sim",
	},
	cli.IntFlag{
		Name:  "width",
		Usage: "surface width in pixels",
		Value: 1280,
	},
	cli.IntFlag{
		Name:  "height",
		Usage: "surface height in pixels",
		Value: 720,
	},
	cli.BoolFlag{
		Name:  "verbose, v",
		Usage: "log scheduling decisions",
	},
}

func newApp(e *env) *cli.App {
	app := &cli.App{
		Name:      "splitframe",
		HelpName:  "splitframe",
		Usage:     "adaptive band scheduling across a device cluster",
		Version:   splitframe.Version,
		UsageText: "splitframe <command> [arguments...]",
		Writer:    e.stdout,
		ErrWriter: e.stderr,
		Commands: []cli.Command{
			{
				Name:    "run",
				Aliases: []string{"r"},
				Usage:   "render frames and print the throughput summary",
				Action:  e.run,
				Flags: append([]cli.Flag{
					cli.BoolFlag{
						Name:  "progress",
						Usage: "show a frame progress bar",
					},
				}, backendFlags...),
			},
			{
				Name:    "devices",
				Aliases: []string{"d"},
				Usage:   "list devices, device groups and the resolved execution domain",
				Action:  e.devices,
				Flags:   backendFlags,
			},
			{
				Name:   "snapshot",
				Usage:  "render on the simulated backend and save the last frame with its band ownership",
				Action: e.snapshot,
				Flags: []cli.Flag{
					cli.StringFlag{
						Name:  "output, o",
						Usage: "PNG file to write",
						Value: "snapshot.png",
					},
					cli.StringFlag{
						Name:  "profile, p",
						Usage: "per-device cost multipliers",
						Value: "1,1",
					},
					cli.IntFlag{
						Name:  "frames, n",
						Usage: "frames to render before the snapshot",
						Value: 60,
					},
					cli.IntFlag{
						Name:  "width",
						Usage: "image width in pixels",
						Value: 640,
					},
					cli.IntFlag{
						Name:  "height",
						Usage: "image height in pixels",
						Value: 360,
					},
					cli.BoolFlag{
						Name:  "verbose, v",
						Usage: "log scheduling decisions",
					},
				},
			},
		},
	}
	return app
}

// setupLogging routes library logs to stderr, at debug level when verbose.
func (e *env) setupLogging(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	splitframe.SetLogger(slog.New(slog.NewTextHandler(e.stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

// openLayer opens the backend named by --backend, or the best available one.
func (e *env) openLayer(c *cli.Context) (splitframe.Layer, error) {
	opts := splitframe.BackendOptions{
		Width:   c.Int("width"),
		Height:  c.Int("height"),
		Profile: c.String("profile"),
	}
	if name := c.String("backend"); name != "" {
		return splitframe.Open(name, opts)
	}
	return splitframe.OpenBest(opts)
}
