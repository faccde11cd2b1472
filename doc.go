// Package splitframe spreads the rendering of a single frame across the
// devices of a rendering cluster.
//
// # Overview
//
// The render target is cut into a fixed number of vertical bands. Every band
// is owned by exactly one device of the execution domain and each frame the
// scheduler decides, from a smoothed per-device cost estimate, which device
// renders which band. There is no hardware profiling and no data exchange
// between devices: the only feedback is the wall-clock time of the frame.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/splitframe"
//	    _ "github.com/gogpu/splitframe/backend/sim"
//	)
//
//	layer, err := splitframe.OpenBest(splitframe.BackendOptions{Width: 1280, Height: 720})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer layer.Destroy()
//
//	shaders, err := splitframe.LoadShaders(afero.NewOsFs(),
//	    splitframe.DefaultVertexShader, splitframe.DefaultFragmentShader)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	summary, err := splitframe.Run(ctx, layer, shaders)
//	fmt.Println(summary)
//
// # Architecture
//
//   - Resolver: ResolveDomain picks a multi-device cluster able to present,
//     or falls back to a single device.
//   - Capability selector: SelectQueue finds a graphics queue family on the
//     primary device that can present to the surface.
//   - Scheduler: round-robin start, drift rule, deadline rule, EMA feedback.
//   - Dispatcher: device-masked band draws into one command stream.
//   - Backends: backend/sim (simulated cluster) and backend/wgpu (gogpu/wgpu
//     HAL) register themselves with Register from init().
//
// # Scheduling bias
//
// Work only ever migrates toward the primary device. A band moved by the
// drift or deadline rule is never handed back.
package splitframe

// Version is the current version of the library.
const Version = "0.3.0"
