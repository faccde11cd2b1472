// Command splitframe spreads frame rendering over a device cluster with the
// adaptive band scheduler and reports throughput.
//
// Usage:
//
//	splitframe run [--backend vulkan|sim] [--profile 1,1,2.5] [--progress]
//	splitframe devices
//	splitframe snapshot --output frame.png
//
// Shaders are read from shaders/band.vert.wgsl and shaders/band.frag.wgsl
// relative to the working directory.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gogpu/splitframe"
	"github.com/spf13/afero"

	_ "github.com/gogpu/splitframe/backend/sim"
	_ "github.com/gogpu/splitframe/backend/wgpu"
)

func main() {
	app := newApp(&env{
		stdout: os.Stdout,
		stderr: os.Stderr,
		fs:     afero.NewOsFs(),
	})
	if err := app.Run(os.Args); err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}

// reportError logs a setup failure with its operation, status and source
// location, and any other error as a single line.
func reportError(w io.Writer, err error) {
	var se *splitframe.SetupError
	if errors.As(err, &se) {
		log := slog.New(slog.NewTextHandler(w, nil))
		log.Error("setup failed",
			"op", se.Op,
			"status", se.Code.String(),
			"code", int32(se.Code),
			"at", se.Location(),
			"err", se.Err)
		return
	}
	fmt.Fprintf(w, "splitframe: %s\n", err)
}
