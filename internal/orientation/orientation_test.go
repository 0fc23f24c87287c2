package orientation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestUnavailable(t *testing.T) {
	var s Source = Unavailable{}
	assert.False(t, s.Available())
	assert.Equal(t, r3.Vec{}, s.GravityDirection())
}

func TestStatic(t *testing.T) {
	s := NewStatic(r3.Vec{Y: -1})
	assert.True(t, s.Available())
	assert.Equal(t, r3.Vec{Y: -1}, s.GravityDirection())

	assert.NoError(t, s.Close())
	assert.False(t, s.Available())

	assert.False(t, NewStatic(r3.Vec{}).Available())
}

func TestPoseFromAccel(t *testing.T) {
	tests := []struct {
		name        string
		ax, ay, az  float64
		roll, pitch float64
	}{
		{"flat", 0, 0, 1, 0, 0},
		{"upright", 0, 1, 0, 90, 0},
		{"nose down", -1, 0, 0, 0, 90},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := PoseFromAccel(tt.ax, tt.ay, tt.az)
			assert.InDelta(t, tt.roll, p.Roll, 1e-9)
			assert.InDelta(t, tt.pitch, p.Pitch, 1e-9)
		})
	}
}

func TestPose_AccelRoundTrip(t *testing.T) {
	for _, p := range []Pose{{0, 0}, {90, 0}, {30, 20}, {-120, -45}} {
		a := p.Accel()
		assert.InDelta(t, 1, r3.Norm(a), 1e-12)

		back := PoseFromAccel(a.X, a.Y, a.Z)
		assert.InDelta(t, p.Roll, back.Roll, 1e-9)
		assert.InDelta(t, p.Pitch, back.Pitch, 1e-9)
	}
}

func TestTilt_UprightPullsDown(t *testing.T) {
	tilt := NewTilt(Pose{Roll: 90})
	assert.True(t, tilt.Available())

	g := tilt.GravityDirection()
	assert.InDelta(t, 0, g.X, 1e-12)
	assert.InDelta(t, -1, g.Y, 1e-12)
	assert.InDelta(t, 0, g.Z, 1e-12)
}

func TestTilt_Adjust(t *testing.T) {
	tilt := NewTilt(Pose{Roll: 170, Pitch: 80})

	tilt.Adjust(20, 20)
	p := tilt.Pose()
	assert.InDelta(t, -170, p.Roll, 1e-9)
	assert.Equal(t, 90.0, p.Pitch)

	tilt.Adjust(-20, -200)
	p = tilt.Pose()
	assert.InDelta(t, 170, p.Roll, 1e-9)
	assert.Equal(t, -90.0, p.Pitch)

	assert.NoError(t, tilt.Close())
	assert.False(t, tilt.Available())
}
