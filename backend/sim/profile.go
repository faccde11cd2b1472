package sim

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gogpu/splitframe"
)

// BaseBandCost is the band recording cost of a device with multiplier 1.
const BaseBandCost = 250 * time.Microsecond

// DefaultProfile is used when the registry is given an empty profile.
const DefaultProfile = "1,1"

// ErrBadProfile is returned for malformed profile strings.
var ErrBadProfile = errors.New("sim: malformed profile")

// DeviceSpec describes one simulated device.
type DeviceSpec struct {
	Name string

	// BandCost is the clock advance for each band drawn on this device.
	BandCost time.Duration

	// Queues lists the queue families. Empty means one graphics family.
	Queues []splitframe.QueueFamily

	// Present maps a queue family index to surface support. A nil map
	// means every graphics family can present.
	Present map[int]bool

	// NoHostMemory makes device creation fail with splitframe.ErrNoMemoryType.
	NoHostMemory bool
}

// DefaultQueues is a graphics family followed by a transfer-only family.
func DefaultQueues() []splitframe.QueueFamily {
	return []splitframe.QueueFamily{
		{Index: 0, Graphics: true, Count: 1},
		{Index: 1, Graphics: false, Count: 2},
	}
}

// ParseProfile parses a comma-separated list of positive cost multipliers
// into device specs, e.g. "1,1,2.5".
func ParseProfile(profile string) ([]DeviceSpec, error) {
	profile = strings.TrimSpace(profile)
	if profile == "" {
		return nil, fmt.Errorf("%w: empty", ErrBadProfile)
	}
	fields := strings.Split(profile, ",")
	specs := make([]DeviceSpec, 0, len(fields))
	for i, f := range fields {
		m, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: device %d: %w", ErrBadProfile, i, err)
		}
		if m <= 0 {
			return nil, fmt.Errorf("%w: device %d: multiplier %v must be positive", ErrBadProfile, i, m)
		}
		specs = append(specs, DeviceSpec{
			Name:     fmt.Sprintf("sim-gpu%d", i),
			BandCost: time.Duration(m * float64(BaseBandCost)),
		})
	}
	return specs, nil
}
