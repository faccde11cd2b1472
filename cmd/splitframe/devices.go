package main

import (
	"fmt"
	"strings"

	"github.com/gogpu/splitframe"
	"github.com/urfave/cli"
)

func (e *env) devices(c *cli.Context) error {
	e.setupLogging(c.Bool("verbose"))

	layer, err := e.openLayer(c)
	if err != nil {
		return err
	}
	defer layer.Destroy()

	fmt.Fprintf(e.stdout, "backends: %s (using %s)\n",
		formatBackends(splitframe.Backends(), splitframe.AvailableBackends()), layer.Name())

	devs, err := layer.EnumerateDevices()
	if err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "devices (%d):\n", len(devs))
	for _, d := range devs {
		mem := "host-visible"
		if !d.HostVisible {
			mem = "no host-visible memory"
		}
		fmt.Fprintf(e.stdout, "  [%d] %s (%s) queues: %s; %s\n", d.Index, d.Name, d.Kind, formatQueues(d.Queues), mem)
	}

	groups, err := layer.EnumerateGroups()
	if err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "groups (%d):\n", len(groups))
	for i, g := range groups {
		fmt.Fprintf(e.stdout, "  [%d] %v\n", i, g.Devices)
	}

	domain, err := splitframe.ResolveDomain(layer)
	if err != nil {
		return err
	}
	kind := "single"
	if domain.Clustered() {
		kind = "cluster"
	}
	names := make([]string, domain.DeviceCount())
	for i := range names {
		names[i] = domain.Device(i).Name
	}
	fmt.Fprintf(e.stdout, "domain: %s devices=[%s] presentable=%#x primary=%d\n",
		kind, strings.Join(names, ", "), uint64(domain.Presentable()), domain.Primary())
	return nil
}

// formatBackends lists all backends in order, marking those not in avail.
func formatBackends(all, avail []string) string {
	ok := make(map[string]bool, len(avail))
	for _, name := range avail {
		ok[name] = true
	}
	parts := make([]string, len(all))
	for i, name := range all {
		parts[i] = name
		if !ok[name] {
			parts[i] += " (unavailable)"
		}
	}
	return strings.Join(parts, ", ")
}

func formatQueues(queues []splitframe.QueueFamily) string {
	parts := make([]string, len(queues))
	for i, q := range queues {
		kind := "transfer"
		if q.Graphics {
			kind = "graphics"
		}
		parts[i] = fmt.Sprintf("%d:%s x%d", q.Index, kind, q.Count)
	}
	return strings.Join(parts, ", ")
}
