package geometry

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// Projection selects how the camera maps screen points to rays.
type Projection int

const (
	// Orthographic casts parallel rays along the camera forward axis.
	Orthographic Projection = iota
	// Perspective casts rays from the camera position through the near plane.
	Perspective
)

// String returns the configuration name of the projection.
func (p Projection) String() string {
	if p == Perspective {
		return "perspective"
	}
	return "orthographic"
}

// ParseProjection maps a configuration name to a Projection. Unknown names
// fall back to Orthographic.
func ParseProjection(name string) Projection {
	if strings.EqualFold(name, "perspective") {
		return Perspective
	}
	return Orthographic
}

// Lens holds the camera settings that do not derive from capture geometry.
type Lens struct {
	Projection Projection
	// FieldOfView is the vertical field of view in degrees (perspective only).
	FieldOfView float64
}

// Ray is a half-line in world space. Direction is a unit vector.
type Ray struct {
	Origin    r3.Vec
	Direction r3.Vec
}

// Point returns the point at distance d along the ray.
func (r Ray) Point(d float64) r3.Vec {
	return r3.Add(r.Origin, r3.Scale(d, r.Direction))
}

// Camera is the scene camera. It always looks along +Z with +Y up.
type Camera struct {
	Position r3.Vec
	Near     float64
	Far      float64
	// OrthoSize is half the vertical extent of the orthographic view volume.
	OrthoSize float64
	Lens      Lens

	screenW float64
	screenH float64
}

// NewCameraRig places the camera for the given capture and screen geometry:
// position (0, 0, -captureW), near clip 1, far clip captureW+1 and an
// orthographic half-height of half the capture diagonal.
func NewCameraRig(captureW, captureH, screenW, screenH float64, lens Lens) Camera {
	return Camera{
		Position:  r3.Vec{Z: -captureW},
		Near:      1,
		Far:       captureW + 1,
		OrthoSize: 0.5 * math.Hypot(captureW, captureH),
		Lens:      lens,
		screenW:   screenW,
		screenH:   screenH,
	}
}

// Forward is the camera viewing direction.
func (c Camera) Forward() r3.Vec {
	return r3.Vec{Z: 1}
}

// Aspect is the screen width over height.
func (c Camera) Aspect() float64 {
	if c.screenH == 0 {
		return 1
	}
	return c.screenW / c.screenH
}

// ScreenPointToRay returns the ray through screen point (sx, sy), origin at
// the bottom-left of the screen. The ray starts on the near clip plane.
func (c Camera) ScreenPointToRay(sx, sy float64) Ray {
	// normalised device coordinates in [-1, 1]
	nx := 2*sx/c.screenW - 1
	ny := 2*sy/c.screenH - 1

	right := r3.Vec{X: 1}
	up := r3.Vec{Y: 1}
	forward := c.Forward()

	var halfH float64
	if c.Lens.Projection == Perspective {
		halfH = c.Near * math.Tan(0.5*c.Lens.FieldOfView*math.Pi/180)
	} else {
		halfH = c.OrthoSize
	}
	halfW := halfH * c.Aspect()

	near := r3.Add(c.Position, r3.Scale(c.Near, forward))
	near = r3.Add(near, r3.Scale(nx*halfW, right))
	near = r3.Add(near, r3.Scale(ny*halfH, up))

	if c.Lens.Projection == Perspective {
		return Ray{Origin: near, Direction: r3.Unit(r3.Sub(near, c.Position))}
	}
	return Ray{Origin: near, Direction: forward}
}
