package splitframe

// Dispatcher records band draws into a command stream, masking each band to
// the device that owns it.
type Dispatcher struct {
	stream  CommandStream
	primary int
	width   int
	bands   []Band
}

// NewDispatcher returns a dispatcher recording into stream for a target of
// the given width split into bands.
func NewDispatcher(stream CommandStream, primary, width int, bands []Band) *Dispatcher {
	return &Dispatcher{
		stream:  stream,
		primary: primary,
		width:   width,
		bands:   bands,
	}
}

// Dispatch selects owner as the execution target and records band b.
func (d *Dispatcher) Dispatch(b, owner int, t float64) {
	d.stream.SetDeviceMask(MaskOf(owner))
	d.stream.DrawBand(ParamsFor(d.bands[b], d.width, t))
}

// Finish resets the execution target to the primary device.
func (d *Dispatcher) Finish() {
	d.stream.SetDeviceMask(MaskOf(d.primary))
}
