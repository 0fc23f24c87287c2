//go:build gocv

package capture

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// VideoSource captures frames from an OpenCV video device.
//
// A reader goroutine owns the device and publishes the latest frame into a
// single slot; the tick loop only ever reads that slot.
type VideoSource struct {
	logger  *zap.Logger
	devices []Device
	open    func(index int) (*gocv.VideoCapture, error)

	mu      sync.Mutex
	frame   Frame
	updated bool

	ready  atomic.Bool
	paused atomic.Bool

	done chan struct{}
	wg   sync.WaitGroup
}

// NewVideoSource creates a video source choosing among devices.
func NewVideoSource(logger *zap.Logger, devices []Device) Source {
	return &VideoSource{
		logger:  logger,
		devices: devices,
		open:    gocv.VideoCaptureDevice,
		done:    make(chan struct{}),
	}
}

// Begin selects and opens a device, then starts the reader goroutine. A
// device that cannot be opened fails with ErrDeviceOpen.
func (v *VideoSource) Begin(prefs Preferences) error {
	dev, ok := SelectDevice(v.devices, prefs.FrontFacing)
	if !ok {
		return ErrNoDevice
	}
	v.logger.Info("selecting capture device",
		zap.Int("index", dev.Index),
		zap.String("name", dev.Name))

	webcam, err := v.open(dev.Index)
	if err != nil {
		return errors.Wrapf(ErrDeviceOpen, "device %s (index %d): %v", dev.Name, dev.Index, err)
	}
	if !webcam.IsOpened() {
		webcam.Close()
		return errors.Wrapf(ErrDeviceOpen, "device %s (index %d)", dev.Name, dev.Index)
	}

	webcam.Set(gocv.VideoCaptureFrameWidth, float64(prefs.Width))
	webcam.Set(gocv.VideoCaptureFrameHeight, float64(prefs.Height))
	webcam.Set(gocv.VideoCaptureFPS, float64(prefs.FPS))

	v.wg.Add(1)
	go v.run(webcam)
	return nil
}

// run owns webcam until Close.
func (v *VideoSource) run(webcam *gocv.VideoCapture) {
	defer v.wg.Done()
	defer webcam.Close()

	mat := gocv.NewMat()
	defer mat.Close()

	for {
		select {
		case <-v.done:
			return
		default:
		}

		if ok := webcam.Read(&mat); !ok || mat.Empty() {
			time.Sleep(5 * time.Millisecond)
			continue
		}
		if v.paused.Load() {
			continue
		}

		img, err := mat.ToImage()
		if err != nil {
			v.logger.Debug("converting captured frame", zap.Error(err))
			continue
		}
		frame := FrameFromImage(img, time.Now())

		v.mu.Lock()
		v.frame = frame
		v.updated = true
		v.mu.Unlock()

		if !v.ready.Swap(true) {
			v.logger.Info("started capturing frames",
				zap.Int("width", frame.Width),
				zap.Int("height", frame.Height))
		}
	}
}

// Ready reports whether a first frame has been captured.
func (v *VideoSource) Ready() bool {
	return v.ready.Load()
}

// HasNewFrame reports and clears the updated flag.
func (v *VideoSource) HasNewFrame() bool {
	if v.paused.Load() {
		return false
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	updated := v.updated
	v.updated = false
	return updated
}

// CurrentFrame returns the latest published frame.
func (v *VideoSource) CurrentFrame() Frame {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.frame
}

// Pause stops publishing frames; the device keeps draining its buffer.
func (v *VideoSource) Pause() {
	v.paused.Store(true)
}

// Resume publishes frames again.
func (v *VideoSource) Resume() {
	v.paused.Store(false)
}

// Close stops the reader and releases the device.
func (v *VideoSource) Close() error {
	select {
	case <-v.done:
	default:
		close(v.done)
	}
	v.wg.Wait()
	return nil
}
