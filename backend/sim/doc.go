// Package sim provides a simulated rendering cluster for splitframe.
//
// The simulated layer exposes configurable devices, device groups and queue
// families, rasterizes band draws into in-memory images, and drives a
// synthetic Clock: every recorded band advances the clock by the cost of the
// slowest device it is masked to. Runs are therefore deterministic and
// exercise the scheduler's deadline and feedback paths without a GPU.
//
// Importing the package registers the "sim" backend:
//
//	import _ "github.com/gogpu/splitframe/backend/sim"
//
// The registry profile is a comma-separated list of per-band cost
// multipliers, one per device, all devices forming one group:
//
//	layer, err := splitframe.Open("sim", splitframe.BackendOptions{
//	    Width: 1280, Height: 720, Profile: "1,1,2.5",
//	})
package sim
