package sim

import "github.com/gogpu/splitframe"

func init() {
	splitframe.Register("sim", 10, open, nil)
}

func open(opts splitframe.BackendOptions) (splitframe.Layer, error) {
	profile := opts.Profile
	if profile == "" {
		profile = DefaultProfile
	}
	devices, err := ParseProfile(profile)
	if err != nil {
		return nil, err
	}
	return New(Config{
		Devices: devices,
		Width:   opts.Width,
		Height:  opts.Height,
	})
}
