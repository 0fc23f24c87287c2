package capture

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ReplaySource plays still images from disk as if they came from a camera.
//
// The selected device's Path is either a single image or a directory of
// PNG/JPEG files played in name order and looped. A file is re-read at the
// capture frame rate and only reported as a new frame when its content hash
// changes, so a directory that another process keeps overwriting behaves like
// a live feed and a single static file yields exactly one frame.
//
// ReplaySource is not safe for concurrent use; it is driven by the tick loop.
type ReplaySource struct {
	logger  *zap.Logger
	devices []Device
	now     func() time.Time
	warmup  int

	device   Device
	prefs    Preferences
	files    []string
	next     int
	interval time.Duration
	lastPoll time.Time
	lastHash uint64
	hasHash  bool

	begun  bool
	ready  bool
	fresh  bool
	paused bool
	frame  Frame
}

// ReplayOption configures a ReplaySource.
type ReplayOption func(*ReplaySource)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) ReplayOption {
	return func(r *ReplaySource) { r.now = now }
}

// WithWarmup makes the source report not-ready for n polls after Begin.
func WithWarmup(n int) ReplayOption {
	return func(r *ReplaySource) { r.warmup = n }
}

// NewReplaySource creates a replay source choosing among devices.
func NewReplaySource(logger *zap.Logger, devices []Device, opts ...ReplayOption) *ReplaySource {
	r := &ReplaySource{
		logger:  logger,
		devices: devices,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Begin selects the device facing the requested direction and lists its
// frame files. Frames are only read once the warmup has elapsed.
func (r *ReplaySource) Begin(prefs Preferences) error {
	dev, ok := SelectDevice(r.devices, prefs.FrontFacing)
	if !ok {
		return ErrNoDevice
	}

	files, err := listFrames(dev.Path)
	if err != nil {
		return errors.Wrapf(err, "device %s", dev.Name)
	}

	r.logger.Info("selecting capture device",
		zap.Int("index", dev.Index),
		zap.String("name", dev.Name),
		zap.Int("frames", len(files)))

	r.device = dev
	r.prefs = prefs
	r.files = files
	r.next = 0
	r.begun = true
	if prefs.FPS > 0 {
		r.interval = time.Second / time.Duration(prefs.FPS)
	}
	return nil
}

// Ready reports whether the first frame has been read. Each call before that
// counts down the warmup and then attempts to read the first frame.
func (r *ReplaySource) Ready() bool {
	if r.ready || !r.begun {
		return r.ready
	}
	if r.warmup > 0 {
		r.warmup--
		return false
	}

	changed, err := r.advance()
	if err != nil {
		r.logger.Warn("reading first replay frame", zap.Error(err))
		return false
	}
	r.ready = true
	r.fresh = changed
	r.lastPoll = r.now()
	r.logger.Info("started capturing frames",
		zap.Int("width", r.frame.Width),
		zap.Int("height", r.frame.Height))
	return true
}

// HasNewFrame reports a new frame at most once per capture interval, and
// only when the file content differs from the previous frame.
func (r *ReplaySource) HasNewFrame() bool {
	if !r.ready || r.paused {
		return false
	}
	if r.fresh {
		r.fresh = false
		return true
	}

	now := r.now()
	if now.Sub(r.lastPoll) < r.interval {
		return false
	}
	r.lastPoll = now

	changed, err := r.advance()
	if err != nil {
		r.logger.Debug("skipping replay frame", zap.Error(err))
		return false
	}
	return changed
}

// CurrentFrame returns the latest frame read.
func (r *ReplaySource) CurrentFrame() Frame {
	return r.frame
}

// Pause freezes the source.
func (r *ReplaySource) Pause() {
	r.paused = true
}

// Resume thaws a paused source.
func (r *ReplaySource) Resume() {
	r.paused = false
}

// Close releases the source. Replay holds no device handles.
func (r *ReplaySource) Close() error {
	r.begun = false
	r.ready = false
	return nil
}

// advance reads the next file in the loop and reports whether its content
// differs from the current frame.
func (r *ReplaySource) advance() (bool, error) {
	path := r.files[r.next]
	r.next = (r.next + 1) % len(r.files)

	data, err := os.ReadFile(path)
	if err != nil {
		return false, errors.Wrap(err, "read frame")
	}

	sum := xxhash.Sum64(data)
	if r.hasHash && sum == r.lastHash {
		return false, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return false, errors.Wrapf(err, "decode %s", filepath.Base(path))
	}

	b := img.Bounds()
	if r.prefs.Width > 0 && r.prefs.Height > 0 && (b.Dx() > r.prefs.Width || b.Dy() > r.prefs.Height) {
		img = imaging.Fit(img, r.prefs.Width, r.prefs.Height, imaging.Linear)
	}

	r.frame = FrameFromImage(img, r.now())
	r.lastHash = sum
	r.hasHash = true
	return true, nil
}

// listFrames resolves a device path into the ordered list of image files.
func listFrames(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrap(err, "stat frame path")
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, errors.Wrap(err, "list frame directory")
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".png", ".jpg", ".jpeg":
			files = append(files, filepath.Join(path, e.Name()))
		}
	}
	if len(files) == 0 {
		return nil, errors.Errorf("no frames in %s", path)
	}
	sort.Strings(files)
	return files, nil
}
