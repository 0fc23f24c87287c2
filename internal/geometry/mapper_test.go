package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

const eps = 1e-9

func newPortraitMapper(t *testing.T, lens Lens) *Mapper {
	t.Helper()
	m, err := NewMapper(640, 480, 1080, 1920, lens)
	require.NoError(t, err)
	return m
}

func TestNewMapper_RejectsInvalidGeometry(t *testing.T) {
	tests := []struct {
		name                   string
		capW, capH, scrW, scrH int
	}{
		{"zero capture width", 0, 480, 1080, 1920},
		{"negative capture height", 640, -1, 1080, 1920},
		{"zero screen width", 640, 480, 0, 1920},
		{"zero screen height", 640, 480, 1080, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMapper(tt.capW, tt.capH, tt.scrW, tt.scrH, Lens{})
			assert.ErrorIs(t, err, ErrInvalidGeometry)
		})
	}
}

func TestMapper_PortraitScenario(t *testing.T) {
	m := newPortraitMapper(t, Lens{})

	assert.InDelta(t, 2.25, m.Scale(), eps)
	assert.InDelta(t, 240, m.YOffset(), eps)
	assert.InDelta(t, 320, m.RaycastDistance(), eps)

	screen := m.ImageToScreen(r2.Vec{X: 100, Y: 50})
	assert.InDelta(t, 967.5, screen.X, eps)
	assert.InDelta(t, 1455, screen.Y, eps)

	c := m.MapCircle(100, 50, 20)
	assert.InDelta(t, 90, c.ScreenDiameter, eps)
	assert.InDelta(t, 40, c.ImageDiameter, eps)
	assert.Equal(t, screen, c.ScreenPosition)
}

func TestMapper_ScreenToImageRoundTrip(t *testing.T) {
	m := newPortraitMapper(t, Lens{})

	for x := 0.0; x <= 640; x += 37.5 {
		for y := 0.0; y <= 480; y += 41.25 {
			p := r2.Vec{X: x, Y: y}
			back := m.ScreenToImage(m.ImageToScreen(p))
			assert.InDelta(t, p.X, back.X, 1e-9)
			assert.InDelta(t, p.Y, back.Y, 1e-9)
		}
	}
}

func TestMapper_ScreenToWorldAtRaycastDistance(t *testing.T) {
	for _, lens := range []Lens{
		{Projection: Orthographic},
		{Projection: Perspective, FieldOfView: 60},
	} {
		t.Run(lens.Projection.String(), func(t *testing.T) {
			m := newPortraitMapper(t, lens)
			cam := m.Camera()

			for _, img := range []r2.Vec{{X: 0, Y: 0}, {X: 100, Y: 50}, {X: 320, Y: 240}, {X: 639, Y: 479}} {
				screen := m.ImageToScreen(img)
				ray := cam.ScreenPointToRay(screen.X, screen.Y)
				world := m.ScreenToWorld(screen)

				assert.InDelta(t, m.RaycastDistance(), r3.Norm(r3.Sub(world, ray.Origin)), 1e-6)
			}
		})
	}
}

func TestCamera_Rig(t *testing.T) {
	cam := NewCameraRig(640, 480, 1080, 1920, Lens{})

	assert.Equal(t, r3.Vec{Z: -640}, cam.Position)
	assert.Equal(t, 1.0, cam.Near)
	assert.Equal(t, 641.0, cam.Far)
	assert.InDelta(t, 400, cam.OrthoSize, eps)
	assert.InDelta(t, 0.5625, cam.Aspect(), eps)
}

func TestCamera_OrthographicRays(t *testing.T) {
	cam := NewCameraRig(640, 480, 1080, 1920, Lens{})

	centre := cam.ScreenPointToRay(540, 960)
	assert.InDelta(t, 0, centre.Origin.X, eps)
	assert.InDelta(t, 0, centre.Origin.Y, eps)
	assert.InDelta(t, -639, centre.Origin.Z, eps)
	assert.Equal(t, r3.Vec{Z: 1}, centre.Direction)

	// top-right corner reaches the edge of the view volume
	corner := cam.ScreenPointToRay(1080, 1920)
	assert.InDelta(t, 400*0.5625, corner.Origin.X, eps)
	assert.InDelta(t, 400, corner.Origin.Y, eps)
	assert.Equal(t, r3.Vec{Z: 1}, corner.Direction)
}

func TestCamera_PerspectiveRaysDiverge(t *testing.T) {
	cam := NewCameraRig(640, 480, 1080, 1920, Lens{Projection: Perspective, FieldOfView: 90})

	centre := cam.ScreenPointToRay(540, 960)
	assert.InDelta(t, 1, centre.Direction.Z, eps)

	top := cam.ScreenPointToRay(540, 1920)
	// 45 degrees above the axis at the top edge
	assert.InDelta(t, math.Sqrt2/2, top.Direction.Y, 1e-9)
	assert.InDelta(t, 1, r3.Norm(top.Direction), 1e-12)
}

func TestParseProjection(t *testing.T) {
	assert.Equal(t, Perspective, ParseProjection("Perspective"))
	assert.Equal(t, Orthographic, ParseProjection("orthographic"))
	assert.Equal(t, Orthographic, ParseProjection(""))
}

func TestDetectedLine_Measures(t *testing.T) {
	m := newPortraitMapper(t, Lens{})

	// image X runs down the screen, so a segment along image X is vertical on screen
	l := m.MapLine(100, 50, 200, 50)
	assert.InDelta(t, 90, l.ScreenAngle(), 1e-9)
	assert.InDelta(t, 225, r2.Norm(r2.Sub(l.ScreenPoint1, l.ScreenPoint0)), 1e-9)

	// orthographic world distance equals screen distance scaled to the view volume
	want := 225 * (2 * 400.0 / 1920)
	assert.InDelta(t, want, l.WorldLength(), 1e-9)

	mid := l.WorldMidpoint()
	assert.InDelta(t, -640+1+320, mid.Z, 1e-9)
}

func TestUnsignedAngle(t *testing.T) {
	x := r2.Vec{X: 1}
	assert.InDelta(t, 0, UnsignedAngle(x, r2.Vec{X: 5}), eps)
	assert.InDelta(t, 45, UnsignedAngle(x, r2.Vec{X: 1, Y: 1}), 1e-9)
	assert.InDelta(t, 45, UnsignedAngle(x, r2.Vec{X: 1, Y: -1}), 1e-9)
	assert.InDelta(t, 180, UnsignedAngle(x, r2.Vec{X: -2}), 1e-9)
	assert.Equal(t, 0.0, UnsignedAngle(x, r2.Vec{}))
}
