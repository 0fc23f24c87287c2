package geometry

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrInvalidGeometry is returned by NewMapper for non-positive dimensions.
var ErrInvalidGeometry = errors.New("invalid capture or screen geometry")

// Mapper converts between image, screen and world space for one fixed
// capture and screen geometry. A screen resize needs a new Mapper.
type Mapper struct {
	captureW float64
	captureH float64
	screenW  float64
	screenH  float64

	scale   float64
	yOffset float64
	camera  Camera
}

// NewMapper builds a mapper and its camera rig. All dimensions must be
// positive.
func NewMapper(captureW, captureH, screenW, screenH int, lens Lens) (*Mapper, error) {
	if captureW <= 0 || captureH <= 0 || screenW <= 0 || screenH <= 0 {
		return nil, errors.Wrapf(ErrInvalidGeometry, "capture %dx%d screen %dx%d",
			captureW, captureH, screenW, screenH)
	}

	cw, ch := float64(captureW), float64(captureH)
	sw, sh := float64(screenW), float64(screenH)
	return &Mapper{
		captureW: cw,
		captureH: ch,
		screenW:  sw,
		screenH:  sh,
		scale:    sw / ch,
		yOffset:  0.5 * (sh - sw*cw/ch),
		camera:   NewCameraRig(cw, ch, sw, sh, lens),
	}, nil
}

// Scale is the linear image-to-screen factor, screenWidth / captureHeight.
func (m *Mapper) Scale() float64 { return m.scale }

// YOffset centres the rotated capture vertically on the screen.
func (m *Mapper) YOffset() float64 { return m.yOffset }

// RaycastDistance is the depth along the camera ray at which every shape is
// placed: half the capture width.
func (m *Mapper) RaycastDistance() float64 { return 0.5 * m.captureW }

// Camera returns the camera rig.
func (m *Mapper) Camera() Camera { return m.camera }

// CaptureSize returns the capture dimensions the mapper was built for.
func (m *Mapper) CaptureSize() (w, h int) { return int(m.captureW), int(m.captureH) }

// ScreenSize returns the screen dimensions the mapper was built for.
func (m *Mapper) ScreenSize() (w, h int) { return int(m.screenW), int(m.screenH) }

// ImageToScreen maps an image point to screen space.
func (m *Mapper) ImageToScreen(p r2.Vec) r2.Vec {
	return r2.Vec{
		X: m.screenW - p.Y*m.scale,
		Y: m.screenH - p.X*m.scale - m.yOffset,
	}
}

// ScreenToImage is the inverse of ImageToScreen.
func (m *Mapper) ScreenToImage(p r2.Vec) r2.Vec {
	return r2.Vec{
		X: (m.screenH - m.yOffset - p.Y) / m.scale,
		Y: (m.screenW - p.X) / m.scale,
	}
}

// ScreenToWorld casts the camera ray through p and returns the point at
// RaycastDistance along it.
func (m *Mapper) ScreenToWorld(p r2.Vec) r3.Vec {
	return m.camera.ScreenPointToRay(p.X, p.Y).Point(m.RaycastDistance())
}

// MapCircle builds a DetectedCircle from a detector record: centre (x, y)
// and radius r in image pixels.
func (m *Mapper) MapCircle(x, y, r float64) DetectedCircle {
	img := r2.Vec{X: x, Y: y}
	screen := m.ImageToScreen(img)
	return DetectedCircle{
		ImagePosition:  img,
		ImageDiameter:  2 * r,
		ScreenPosition: screen,
		ScreenDiameter: 2 * r * m.scale,
		WorldPosition:  m.ScreenToWorld(screen),
	}
}

// MapLine builds a DetectedLine from a detector segment (x0, y0)-(x1, y1) in
// image pixels.
func (m *Mapper) MapLine(x0, y0, x1, y1 float64) DetectedLine {
	p0 := r2.Vec{X: x0, Y: y0}
	p1 := r2.Vec{X: x1, Y: y1}
	s0 := m.ImageToScreen(p0)
	s1 := m.ImageToScreen(p1)
	return DetectedLine{
		ImagePoint0:  p0,
		ImagePoint1:  p1,
		ScreenPoint0: s0,
		ScreenPoint1: s1,
		WorldPoint0:  m.ScreenToWorld(s0),
		WorldPoint1:  m.ScreenToWorld(s1),
	}
}
