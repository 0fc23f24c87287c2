package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// DetectedCircle is one circle found in a frame, in all three spaces.
type DetectedCircle struct {
	ImagePosition  r2.Vec  `json:"image_position"`
	ImageDiameter  float64 `json:"image_diameter"`
	ScreenPosition r2.Vec  `json:"screen_position"`
	ScreenDiameter float64 `json:"screen_diameter"`
	WorldPosition  r3.Vec  `json:"world_position"`
}

// DetectedLine is one line segment found in a frame, in all three spaces.
type DetectedLine struct {
	ImagePoint0  r2.Vec `json:"image_point0"`
	ImagePoint1  r2.Vec `json:"image_point1"`
	ScreenPoint0 r2.Vec `json:"screen_point0"`
	ScreenPoint1 r2.Vec `json:"screen_point1"`
	WorldPoint0  r3.Vec `json:"world_point0"`
	WorldPoint1  r3.Vec `json:"world_point1"`
}

// WorldMidpoint is the centre of the segment in world space.
func (l DetectedLine) WorldMidpoint() r3.Vec {
	return r3.Scale(0.5, r3.Add(l.WorldPoint0, l.WorldPoint1))
}

// WorldLength is the segment length in world space.
func (l DetectedLine) WorldLength() float64 {
	return r3.Norm(r3.Sub(l.WorldPoint1, l.WorldPoint0))
}

// ScreenAngle is the unsigned angle in degrees between the screen X axis and
// the segment direction ScreenPoint1 - ScreenPoint0.
func (l DetectedLine) ScreenAngle() float64 {
	return UnsignedAngle(r2.Vec{X: 1}, r2.Sub(l.ScreenPoint1, l.ScreenPoint0))
}

// UnsignedAngle returns the angle in degrees, in [0, 180], between a and b.
// It is 0 when either vector has zero length.
func UnsignedAngle(a, b r2.Vec) float64 {
	denom := r2.Norm(a) * r2.Norm(b)
	if denom < 1e-15 {
		return 0
	}
	cos := r2.Dot(a, b) / denom
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * 180 / math.Pi
}
