// Package capture defines the frame source contract and its implementations.
//
// A source is started once with Begin and becomes ready after an
// indeterminate number of ticks. The tick loop then polls HasNewFrame once
// per tick and reads CurrentFrame when it reports true. Pause freezes the
// source (no new frames) and Resume thaws it.
//
// Two backends exist: a replay source that plays image files from disk and
// is always available, and an OpenCV video source compiled with the gocv
// build tag.
package capture

import (
	"image"
	"image/draw"
	"time"

	"github.com/pkg/errors"
)

// ErrNoDevice is returned by Begin when no capture device faces the
// requested direction. It is fatal to the whole system.
var ErrNoDevice = errors.New("no suitable capture device found")

// ErrDeviceOpen is returned by Begin when the selected device cannot be
// opened. It is fatal like ErrNoDevice.
var ErrDeviceOpen = errors.New("capture device could not be opened")

// ErrMalformedFrame is returned by Frame.Validate.
var ErrMalformedFrame = errors.New("malformed frame")

// Frame is one captured RGBA image. Frames are immutable once handed out.
type Frame struct {
	Width     int
	Height    int
	Pixels    []byte // RGBA, 4 bytes per pixel, stride 4*Width
	Timestamp time.Time
}

// Validate checks the frame dimensions against its pixel buffer.
func (f Frame) Validate() error {
	if f.Width <= 0 || f.Height <= 0 {
		return errors.Wrapf(ErrMalformedFrame, "size %dx%d", f.Width, f.Height)
	}
	if len(f.Pixels) != 4*f.Width*f.Height {
		return errors.Wrapf(ErrMalformedFrame, "%d bytes for %dx%d", len(f.Pixels), f.Width, f.Height)
	}
	return nil
}

// Image wraps the pixel buffer as an *image.RGBA without copying.
func (f Frame) Image() *image.RGBA {
	return &image.RGBA{
		Pix:    f.Pixels,
		Stride: 4 * f.Width,
		Rect:   image.Rect(0, 0, f.Width, f.Height),
	}
}

// FrameFromImage copies img into a new frame.
func FrameFromImage(img image.Image, ts time.Time) Frame {
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return Frame{
		Width:     b.Dx(),
		Height:    b.Dy(),
		Pixels:    rgba.Pix,
		Timestamp: ts,
	}
}

// Preferences are the capture settings requested from a device. Devices may
// deliver a different size; the real size is read from the frames.
type Preferences struct {
	Width       int
	Height      int
	FPS         int
	FrontFacing bool
}

// Device describes one capture device known to the system.
type Device struct {
	Name        string `yaml:"name"`
	Index       int    `yaml:"index"`
	FrontFacing bool   `yaml:"front_facing"`
	// Path is the frame directory (or single image) for the replay backend.
	Path string `yaml:"path"`
}

// SelectDevice returns the first device facing the requested direction.
func SelectDevice(devices []Device, frontFacing bool) (Device, bool) {
	for _, d := range devices {
		if d.FrontFacing == frontFacing {
			return d, true
		}
	}
	return Device{}, false
}

// Source is the frame source contract consumed by the detection controller.
type Source interface {
	// Begin selects a device and starts capturing asynchronously. It returns
	// ErrNoDevice when no device matches prefs.FrontFacing.
	Begin(prefs Preferences) error

	// Ready reports whether the first frame has arrived and the capture
	// dimensions are known.
	Ready() bool

	// HasNewFrame reports whether a frame newer than the last one read is
	// available. It is polled once per tick.
	HasNewFrame() bool

	// CurrentFrame returns the latest frame.
	CurrentFrame() Frame

	Pause()
	Resume()
	Close() error
}
