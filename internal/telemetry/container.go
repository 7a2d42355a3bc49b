// Package telemetry defines the sink that modules publish named readouts to.
package telemetry

// Container accepts named numeric readouts. Modules register a supplier per
// readout and never read anything back.
type Container interface {
	AddNumber(name string, supplier func() float64)
}

// AddNumber registers supplier on c, doing nothing when c is nil.
func AddNumber(c Container, name string, supplier func() float64) {
	if c == nil {
		return
	}
	c.AddNumber(name, supplier)
}
