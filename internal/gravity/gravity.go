// Package gravity keeps the simulation gravity aligned with the device.
package gravity

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ironsheep/rollingball/internal/orientation"
)

// Defaults for the gravity magnitude.
const (
	DefaultDeviceMagnitude = 9.81
	DefaultScale           = 8
)

// Setter receives the computed gravity. physics.Engine satisfies it.
type Setter interface {
	SetGravity(g r3.Vec)
}

// Project removes the component of sample along forward, normalises the
// rest and scales it to magnitude. It reports false when forward is zero or
// the sample is parallel to it.
func Project(sample, forward r3.Vec, magnitude float64) (r3.Vec, bool) {
	fn := r3.Norm(forward)
	if fn == 0 {
		return r3.Vec{}, false
	}
	f := r3.Scale(1/fn, forward)

	planar := r3.Sub(sample, r3.Scale(r3.Dot(sample, f), f))
	n := r3.Norm(planar)
	if n < 1e-12 {
		return r3.Vec{}, false
	}
	return r3.Scale(magnitude/n, planar), true
}

// Mapper writes projected orientation samples into the engine each tick.
type Mapper struct {
	source    orientation.Source
	engine    Setter
	forward   r3.Vec
	magnitude float64
}

// NewMapper creates a mapper with magnitude deviceMagnitude * scale. It stays
// idle until SetForward gives it the camera axis.
func NewMapper(source orientation.Source, engine Setter, deviceMagnitude, scale float64) *Mapper {
	return &Mapper{
		source:    source,
		engine:    engine,
		magnitude: deviceMagnitude * scale,
	}
}

// SetForward sets the camera forward axis.
func (m *Mapper) SetForward(f r3.Vec) {
	m.forward = f
}

// Magnitude is the length of every gravity vector written.
func (m *Mapper) Magnitude() float64 {
	return m.magnitude
}

// Update reads one sample and writes the engine gravity. It reports whether
// the engine was updated; an unavailable source or a degenerate sample leaves
// the engine untouched.
func (m *Mapper) Update() bool {
	if !m.source.Available() {
		return false
	}
	g, ok := Project(m.source.GravityDirection(), m.forward, m.magnitude)
	if !ok {
		return false
	}
	m.engine.SetGravity(g)
	return true
}
