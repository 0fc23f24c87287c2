// Package orientation provides gravity-direction samples for the simulation.
//
// A Source reports whether a sample is available and, if so, the direction
// gravity pulls in device coordinates (X right, Y up, Z out of the screen
// towards the scene). Sources are read once per tick; Tilt may be adjusted
// from other goroutines.
package orientation

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"
)

// Source is the orientation source contract.
type Source interface {
	Available() bool
	GravityDirection() r3.Vec
}

// Unavailable never has a sample.
type Unavailable struct{}

// Available implements Source.
func (Unavailable) Available() bool { return false }

// GravityDirection implements Source.
func (Unavailable) GravityDirection() r3.Vec { return r3.Vec{} }

// Static always reports the same direction until closed. A zero vector is
// never available.
type Static struct {
	mu     sync.Mutex
	vector r3.Vec
	closed bool
}

// NewStatic returns a static source.
func NewStatic(v r3.Vec) *Static {
	return &Static{vector: v}
}

// Available implements Source.
func (s *Static) Available() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && s.vector != (r3.Vec{})
}

// GravityDirection implements Source.
func (s *Static) GravityDirection() r3.Vec {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vector
}

// Close disables the source.
func (s *Static) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// Pose is a device attitude in degrees.
type Pose struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
}

// PoseFromAccel computes roll and pitch from an accelerometer reading:
//
//	roll  = atan2(ay, az)
//	pitch = atan2(-ax, sqrt(ay² + az²))
func PoseFromAccel(ax, ay, az float64) Pose {
	return Pose{
		Roll:  math.Atan2(ay, az) * 180 / math.Pi,
		Pitch: math.Atan2(-ax, math.Sqrt(ay*ay+az*az)) * 180 / math.Pi,
	}
}

// Accel is the inverse of PoseFromAccel: the unit accelerometer reading of a
// device at rest in pose p. It points away from the ground.
func (p Pose) Accel() r3.Vec {
	roll := p.Roll * math.Pi / 180
	pitch := p.Pitch * math.Pi / 180
	return r3.Vec{
		X: -math.Sin(pitch),
		Y: math.Cos(pitch) * math.Sin(roll),
		Z: math.Cos(pitch) * math.Cos(roll),
	}
}

// Tilt derives gravity from an adjustable roll/pitch pose. Roll 0 and pitch
// 0 is a device lying flat; roll 90 is upright in portrait.
type Tilt struct {
	mu     sync.Mutex
	pose   Pose
	closed bool
}

// NewTilt returns a tilt source in pose p.
func NewTilt(p Pose) *Tilt {
	return &Tilt{pose: p}
}

// Available implements Source.
func (t *Tilt) Available() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.closed
}

// GravityDirection implements Source.
func (t *Tilt) GravityDirection() r3.Vec {
	t.mu.Lock()
	defer t.mu.Unlock()
	return r3.Scale(-1, t.pose.Accel())
}

// Pose returns the current pose.
func (t *Tilt) Pose() Pose {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pose
}

// Adjust adds the given deltas, in degrees, to the pose. Pitch is clamped to
// [-90, 90] and roll wraps to (-180, 180].
func (t *Tilt) Adjust(dRoll, dPitch float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	roll := math.Mod(t.pose.Roll+dRoll, 360)
	if roll > 180 {
		roll -= 360
	} else if roll <= -180 {
		roll += 360
	}
	t.pose.Roll = roll
	t.pose.Pitch = math.Max(-90, math.Min(90, t.pose.Pitch+dPitch))
}

// Close disables the source.
func (t *Tilt) Close() error {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
	return nil
}
