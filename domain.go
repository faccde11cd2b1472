package splitframe

import "fmt"

// ExecutionDomain is the set of devices frames are rendered with. It has two
// variants, a single device and a device cluster, so that callers never
// special-case the presence of multi-device support.
type ExecutionDomain interface {
	// DeviceCount returns the number of devices (at least 1).
	DeviceCount() int

	// Device returns device i of the domain.
	Device(i int) PhysicalDevice

	// Presentable returns the devices that can present.
	Presentable() DeviceMask

	// Primary returns the index of the presenting device.
	Primary() int

	// Clustered reports whether the domain spans a device group.
	Clustered() bool
}

type singleDevice struct {
	dev PhysicalDevice
}

func (d *singleDevice) DeviceCount() int { return 1 }

func (d *singleDevice) Device(i int) PhysicalDevice {
	if i != 0 {
		panic(fmt.Sprintf("splitframe: device index %d out of range [0,1)", i))
	}
	return d.dev
}

func (d *singleDevice) Presentable() DeviceMask { return MaskOf(0) }
func (d *singleDevice) Primary() int            { return 0 }
func (d *singleDevice) Clustered() bool         { return false }

type deviceCluster struct {
	devs        []PhysicalDevice
	presentable DeviceMask
	primary     int
}

func (d *deviceCluster) DeviceCount() int            { return len(d.devs) }
func (d *deviceCluster) Device(i int) PhysicalDevice { return d.devs[i] }
func (d *deviceCluster) Presentable() DeviceMask     { return d.presentable }
func (d *deviceCluster) Primary() int                { return d.primary }
func (d *deviceCluster) Clustered() bool             { return true }

// SingleDomain returns a domain of one device. Presentation support is
// assumed here and verified later by SelectQueue.
func SingleDomain(dev PhysicalDevice) ExecutionDomain {
	return &singleDevice{dev: dev}
}

// ClusterDomain returns a domain over devs with the given presentable mask.
// The primary is device 0 when presentable, otherwise the lowest presentable
// device. It panics when no device of devs is presentable.
func ClusterDomain(devs []PhysicalDevice, presentable DeviceMask) ExecutionDomain {
	presentable &= AllDevices(len(devs))
	if presentable == 0 {
		panic(fmt.Sprintf("splitframe: cluster of %d devices has no presentable device", len(devs)))
	}
	primary := 0
	if !presentable.Has(0) {
		primary = presentable.Lowest()
	}
	cp := make([]PhysicalDevice, len(devs))
	copy(cp, devs)
	return &deviceCluster{devs: cp, presentable: presentable, primary: primary}
}

// ResolveDomain picks the execution domain. It takes the first device group,
// in enumeration order, with at least two devices of which one or more has a
// graphics queue family able to present. Without such a group the domain is
// the first enumerated device alone.
func ResolveDomain(layer Layer) (ExecutionDomain, error) {
	devices, err := layer.EnumerateDevices()
	if err != nil {
		return nil, NewSetupError("EnumerateDevices", StatusErrorInitializationFailed, err)
	}
	if len(devices) == 0 {
		return nil, NewSetupError("EnumerateDevices", StatusErrorInitializationFailed, ErrNoDevices)
	}

	groups, err := layer.EnumerateGroups()
	if err != nil {
		return nil, NewSetupError("EnumerateGroups", StatusErrorInitializationFailed, err)
	}

	for gi, g := range groups {
		if len(g.Devices) < 2 || len(g.Devices) > MaxDevices {
			continue
		}
		members := make([]PhysicalDevice, 0, len(g.Devices))
		var presentable DeviceMask
		for i, idx := range g.Devices {
			if idx < 0 || idx >= len(devices) {
				return nil, NewSetupError("EnumerateGroups", StatusErrorInitializationFailed,
					fmt.Errorf("group %d references device %d of %d", gi, idx, len(devices)))
			}
			dev := devices[idx]
			members = append(members, dev)
			ok, err := canPresent(layer, dev)
			if err != nil {
				return nil, err
			}
			if ok {
				presentable |= MaskOf(i)
			}
		}
		if presentable == 0 {
			continue
		}
		dom := ClusterDomain(members, presentable)
		Logger().Info("execution domain resolved",
			"kind", "cluster", "group", gi, "devices", dom.DeviceCount(),
			"presentable", fmt.Sprintf("%#x", uint64(presentable)), "primary", dom.Primary())
		return dom, nil
	}

	Logger().Info("execution domain resolved", "kind", "single", "device", devices[0].Name)
	return SingleDomain(devices[0]), nil
}

// canPresent reports whether any graphics family of dev supports the surface.
func canPresent(layer Layer, dev PhysicalDevice) (bool, error) {
	for _, q := range dev.Queues {
		if !q.Graphics {
			continue
		}
		ok, err := layer.SurfaceSupport(dev.Index, q.Index)
		if err != nil {
			return false, NewSetupError("SurfaceSupport", StatusErrorSurfaceLost, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// SelectQueue returns the first queue family of the primary device, in index
// order, that is graphics-capable and can present to the surface.
func SelectQueue(layer Layer, domain ExecutionDomain) (QueueFamily, error) {
	dev := domain.Device(domain.Primary())
	for _, q := range dev.Queues {
		if !q.Graphics {
			continue
		}
		ok, err := layer.SurfaceSupport(dev.Index, q.Index)
		if err != nil {
			return QueueFamily{}, NewSetupError("SurfaceSupport", StatusErrorSurfaceLost, err)
		}
		if ok {
			Logger().Info("queue family selected", "device", dev.Name, "family", q.Index)
			return q, nil
		}
	}
	return QueueFamily{}, NewSetupError("SelectQueue", StatusErrorFeatureNotPresent, ErrNoCapableQueue)
}
