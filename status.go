package splitframe

import "fmt"

// Status is a result code reported by the execution layer. The values follow
// the Vulkan VkResult numbering so that codes reported by a Vulkan-backed
// layer can be passed through unchanged.
type Status int32

// Status values.
const (
	StatusSuccess                   Status = 0
	StatusNotReady                  Status = 1
	StatusTimeout                   Status = 2
	StatusIncomplete                Status = 5
	StatusErrorOutOfHostMemory      Status = -1
	StatusErrorOutOfDeviceMemory    Status = -2
	StatusErrorInitializationFailed Status = -3
	StatusErrorDeviceLost           Status = -4
	StatusErrorFeatureNotPresent    Status = -8
	StatusErrorIncompatibleDriver   Status = -9
	StatusErrorSurfaceLost          Status = -1000000000
	StatusSuboptimal                Status = 1000001003
	StatusErrorOutOfDate            Status = -1000001004
)

var statusNames = map[Status]string{
	StatusSuccess:                   "SUCCESS",
	StatusNotReady:                  "NOT_READY",
	StatusTimeout:                   "TIMEOUT",
	StatusIncomplete:                "INCOMPLETE",
	StatusErrorOutOfHostMemory:      "ERROR_OUT_OF_HOST_MEMORY",
	StatusErrorOutOfDeviceMemory:    "ERROR_OUT_OF_DEVICE_MEMORY",
	StatusErrorInitializationFailed: "ERROR_INITIALIZATION_FAILED",
	StatusErrorDeviceLost:           "ERROR_DEVICE_LOST",
	StatusErrorFeatureNotPresent:    "ERROR_FEATURE_NOT_PRESENT",
	StatusErrorIncompatibleDriver:   "ERROR_INCOMPATIBLE_DRIVER",
	StatusErrorSurfaceLost:          "ERROR_SURFACE_LOST_KHR",
	StatusSuboptimal:                "SUBOPTIMAL_KHR",
	StatusErrorOutOfDate:            "ERROR_OUT_OF_DATE_KHR",
}

// String returns the symbolic name of the status, or its number when the
// code is not known.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("STATUS(%d)", int32(s))
}

// OK reports whether s is StatusSuccess.
func (s Status) OK() bool { return s == StatusSuccess }
