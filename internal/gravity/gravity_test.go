package gravity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ironsheep/rollingball/internal/orientation"
)

type recordingSetter struct {
	calls   int
	gravity r3.Vec
}

func (s *recordingSetter) SetGravity(g r3.Vec) {
	s.calls++
	s.gravity = g
}

var forward = r3.Vec{Z: 1}

func TestProject(t *testing.T) {
	g, ok := Project(r3.Vec{X: 3, Y: -4, Z: 12}, forward, 10)
	assert.True(t, ok)
	assert.InDelta(t, 6, g.X, 1e-12)
	assert.InDelta(t, -8, g.Y, 1e-12)
	assert.InDelta(t, 0, g.Z, 1e-12)
}

func TestProject_Degenerate(t *testing.T) {
	_, ok := Project(r3.Vec{Z: -1}, forward, 10)
	assert.False(t, ok, "sample along the forward axis")

	_, ok = Project(r3.Vec{}, forward, 10)
	assert.False(t, ok, "zero sample")

	_, ok = Project(r3.Vec{Y: -1}, r3.Vec{}, 10)
	assert.False(t, ok, "no forward axis")
}

func TestMapper_UpdateWritesScaledGravity(t *testing.T) {
	engine := &recordingSetter{}
	m := NewMapper(orientation.NewStatic(r3.Vec{Y: -1}), engine, DefaultDeviceMagnitude, DefaultScale)
	m.SetForward(forward)

	assert.True(t, m.Update())
	assert.Equal(t, 1, engine.calls)
	assert.InDelta(t, -9.81*8, engine.gravity.Y, 1e-9)
	assert.InDelta(t, 9.81*8, m.Magnitude(), 1e-9)
}

func TestMapper_TiltedDevice(t *testing.T) {
	engine := &recordingSetter{}
	tilt := orientation.NewTilt(orientation.Pose{Roll: 90})
	m := NewMapper(tilt, engine, 1, 1)
	m.SetForward(forward)

	// pitch tips gravity towards +X
	tilt.Adjust(0, 30)
	assert.True(t, m.Update())
	assert.InDelta(t, math.Sin(30*math.Pi/180), engine.gravity.X, 1e-9)
	assert.InDelta(t, -math.Cos(30*math.Pi/180), engine.gravity.Y, 1e-9)
	assert.InDelta(t, 1, r3.Norm(engine.gravity), 1e-12)
}

func TestMapper_SkipsWhenUnavailable(t *testing.T) {
	engine := &recordingSetter{gravity: r3.Vec{Y: -1}}
	m := NewMapper(orientation.Unavailable{}, engine, DefaultDeviceMagnitude, DefaultScale)
	m.SetForward(forward)

	assert.False(t, m.Update())
	assert.Equal(t, 0, engine.calls)
	assert.Equal(t, r3.Vec{Y: -1}, engine.gravity)
}

func TestMapper_IdleUntilForwardKnown(t *testing.T) {
	engine := &recordingSetter{}
	m := NewMapper(orientation.NewStatic(r3.Vec{Y: -1}), engine, DefaultDeviceMagnitude, DefaultScale)

	assert.False(t, m.Update())
	assert.Equal(t, 0, engine.calls)
}

func TestMapper_SampleAlongForwardSkipped(t *testing.T) {
	engine := &recordingSetter{}
	m := NewMapper(orientation.NewTilt(orientation.Pose{}), engine, DefaultDeviceMagnitude, DefaultScale)
	m.SetForward(forward)

	// a flat device pulls straight along the camera axis
	assert.False(t, m.Update())
	assert.Equal(t, 0, engine.calls)
}
