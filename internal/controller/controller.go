// Package controller runs the per-tick detection and simulation state
// machine.
//
// The controller is driven by a single tick loop that owns every piece of
// mutable state: the shape lists, the simulation bodies and the current
// state. Other goroutines (console, control server) never touch that state
// directly; they Submit requests which the loop applies at the start of the
// next tick.
package controller

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ironsheep/rollingball/internal/capture"
	"github.com/ironsheep/rollingball/internal/detection"
	"github.com/ironsheep/rollingball/internal/geometry"
	"github.com/ironsheep/rollingball/internal/imaging"
	"github.com/ironsheep/rollingball/internal/preview"
)

var (
	// ErrNoShapes rejects a start request while nothing is detected.
	ErrNoShapes = errors.New("no shapes detected")

	// ErrNotSimulating rejects a stop request outside simulation.
	ErrNotSimulating = errors.New("not simulating")

	// ErrSimulating rejects a start request during simulation.
	ErrSimulating = errors.New("already simulating")
)

// State is the controller mode.
type State int

const (
	// Detecting runs shape detection on every new frame.
	Detecting State = iota
	// Simulating freezes detection while bodies are simulated.
	Simulating
)

// String returns the lower-case state name.
func (s State) String() string {
	if s == Simulating {
		return "simulating"
	}
	return "detecting"
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Preprocessor converts frames into detector inputs.
type Preprocessor interface {
	Process(frame capture.Frame) (*imaging.Preprocessed, error)
}

// Detector finds and maps shapes in a preprocessed frame.
type Detector interface {
	Detect(pre *imaging.Preprocessed, m *geometry.Mapper) detection.Result
}

// Simulator owns the simulated bodies.
type Simulator interface {
	SetScreenWidth(w float64)
	Start(circles []geometry.DetectedCircle, lines []geometry.DetectedLine)
	Stop()
	Count() int
}

// GravityUpdater aligns the simulation gravity with the device each tick.
type GravityUpdater interface {
	SetForward(f r3.Vec)
	Update() bool
}

// Stepper advances a physics world.
type Stepper interface {
	Step(dt float64)
}

// resizer is implemented by renderers that track the screen size.
type resizer interface {
	SetSize(width, height int)
}

// Deps are the collaborators of a Controller. Stepper may be nil.
type Deps struct {
	Source       capture.Source
	Preprocessor Preprocessor
	Detector     Detector
	Simulator    Simulator
	Gravity      GravityUpdater
	Renderer     preview.Renderer
	Stepper      Stepper
}

// Options are the fixed settings of a Controller.
type Options struct {
	ScreenWidth  int
	ScreenHeight int
	Lens         geometry.Lens
	// TickInterval is the simulated time advanced per tick.
	TickInterval time.Duration
}

// Controller is the detection/simulation state machine.
//
// Tick, RequestStart and RequestStop must only be called from the tick loop.
// Submit is safe from any goroutine.
type Controller struct {
	logger *zap.Logger
	deps   Deps
	opts   Options

	state   State
	mapper  *geometry.Mapper
	circles []geometry.DetectedCircle
	lines   []geometry.DetectedLine
	ticks   uint64
	passes  uint64

	requests chan *Request
}

// New creates a controller in the Detecting state, waiting for capture.
func New(logger *zap.Logger, deps Deps, opts Options) *Controller {
	return &Controller{
		logger:   logger,
		deps:     deps,
		opts:     opts,
		state:    Detecting,
		requests: make(chan *Request, 16),
	}
}

// State returns the current state.
func (c *Controller) State() State { return c.state }

// Ready reports whether capture geometry is known.
func (c *Controller) Ready() bool { return c.mapper != nil }

// Mapper returns the coordinate mapper, or nil before capture is ready.
func (c *Controller) Mapper() *geometry.Mapper { return c.mapper }

// Circles returns the current circle list. The slice is owned by the
// controller.
func (c *Controller) Circles() []geometry.DetectedCircle { return c.circles }

// Lines returns the current line list. The slice is owned by the controller.
func (c *Controller) Lines() []geometry.DetectedLine { return c.lines }

// HasShapes reports whether at least one shape is detected.
func (c *Controller) HasShapes() bool {
	return len(c.circles)+len(c.lines) > 0
}

// Tick runs one pass of the loop: pending requests first, then capture
// set-up, gravity, and the work of the current state.
func (c *Controller) Tick() {
	c.drain()
	c.ticks++

	if c.mapper == nil {
		if !c.deps.Source.Ready() {
			return
		}
		frame := c.deps.Source.CurrentFrame()
		if err := c.configure(frame.Width, frame.Height); err != nil {
			c.logger.Warn("configuring capture geometry", zap.Error(err))
			return
		}
		c.logger.Info("capture ready",
			zap.Int("capture_width", frame.Width),
			zap.Int("capture_height", frame.Height),
			zap.Float64("scale", c.mapper.Scale()),
			zap.Float64("y_offset", c.mapper.YOffset()))
	}

	c.deps.Gravity.Update()

	switch c.state {
	case Detecting:
		c.detect()
	case Simulating:
		if c.deps.Stepper != nil {
			c.deps.Stepper.Step(c.opts.TickInterval.Seconds())
		}
	}
}

// detect runs one detection pass if a new frame is available and feeds the
// preview while shapes exist.
func (c *Controller) detect() {
	if c.deps.Source.HasNewFrame() {
		frame := c.deps.Source.CurrentFrame()

		if w, h := c.mapper.CaptureSize(); w != frame.Width || h != frame.Height {
			if err := c.configure(frame.Width, frame.Height); err != nil {
				c.logger.Debug("skipping frame", zap.Error(err))
				return
			}
		}

		pre, err := c.deps.Preprocessor.Process(frame)
		if err != nil {
			c.logger.Debug("skipping frame", zap.Error(err))
			return
		}

		res := c.deps.Detector.Detect(pre, c.mapper)
		c.circles = res.Circles
		c.lines = res.Lines
		c.passes++
	}

	if c.HasShapes() {
		c.deps.Renderer.Draw(c.circles, c.lines)
	}
}

// configure builds the mapper for the given capture size and the current
// screen size.
func (c *Controller) configure(captureW, captureH int) error {
	m, err := geometry.NewMapper(captureW, captureH, c.opts.ScreenWidth, c.opts.ScreenHeight, c.opts.Lens)
	if err != nil {
		return err
	}
	c.mapper = m
	c.deps.Gravity.SetForward(m.Camera().Forward())
	c.deps.Simulator.SetScreenWidth(float64(c.opts.ScreenWidth))
	return nil
}

// RequestStart freezes the frame source and spawns bodies for the current
// shapes. It fails without side effects when nothing is detected or a
// simulation is already running.
func (c *Controller) RequestStart() error {
	if c.state == Simulating {
		return ErrSimulating
	}
	if !c.HasShapes() {
		return ErrNoShapes
	}

	c.deps.Source.Pause()
	c.deps.Simulator.Start(c.circles, c.lines)
	c.state = Simulating
	return nil
}

// RequestStop destroys the simulated bodies and resumes detection. It fails
// without side effects outside simulation.
func (c *Controller) RequestStop() error {
	if c.state != Simulating {
		return ErrNotSimulating
	}

	c.deps.Simulator.Stop()
	c.deps.Source.Resume()
	c.state = Detecting
	return nil
}

// Resize switches to a new screen size. Shapes mapped under the old size are
// dropped.
func (c *Controller) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return errors.Wrapf(geometry.ErrInvalidGeometry, "screen %dx%d", width, height)
	}
	c.opts.ScreenWidth, c.opts.ScreenHeight = width, height
	c.circles, c.lines = nil, nil

	if r, ok := c.deps.Renderer.(resizer); ok {
		r.SetSize(width, height)
	}
	if c.mapper == nil {
		return nil
	}
	w, h := c.mapper.CaptureSize()
	return c.configure(w, h)
}

// Snapshot describes the controller for observers.
type Snapshot struct {
	State    State                     `json:"state"`
	Ready    bool                      `json:"ready"`
	Circles  []geometry.DetectedCircle `json:"circles"`
	Lines    []geometry.DetectedLine   `json:"lines"`
	Bodies   int                       `json:"bodies"`
	Ticks    uint64                    `json:"ticks"`
	Passes   uint64                    `json:"detection_passes"`
	CanStart bool                      `json:"can_start"`
	CanStop  bool                      `json:"can_stop"`
}

// Snapshot returns a copy of the observable state.
func (c *Controller) Snapshot() Snapshot {
	s := Snapshot{
		State:    c.state,
		Ready:    c.mapper != nil,
		Circles:  append([]geometry.DetectedCircle(nil), c.circles...),
		Lines:    append([]geometry.DetectedLine(nil), c.lines...),
		Bodies:   c.deps.Simulator.Count(),
		Ticks:    c.ticks,
		Passes:   c.passes,
		CanStart: c.state == Detecting && c.HasShapes(),
		CanStop:  c.state == Simulating,
	}
	return s
}

// Op is a request kind.
type Op int

const (
	// OpSnapshot only reads the state.
	OpSnapshot Op = iota
	// OpStart applies RequestStart.
	OpStart
	// OpStop applies RequestStop.
	OpStop
	// OpResize applies Resize with the request's Width and Height.
	OpResize
)

// Request is a command for the tick loop. Width and Height apply to
// OpResize only.
type Request struct {
	Op     Op
	Width  int
	Height int

	reply chan Reply
}

// Reply is the outcome of a request, with a snapshot taken after it was
// applied.
type Reply struct {
	Snapshot Snapshot
	Err      error
}

// Submit queues a request for the next tick and waits for its reply.
func (c *Controller) Submit(ctx context.Context, req Request) (Reply, error) {
	r := req
	r.reply = make(chan Reply, 1)

	select {
	case c.requests <- &r:
	case <-ctx.Done():
		return Reply{}, ctx.Err()
	}

	select {
	case reply := <-r.reply:
		return reply, nil
	case <-ctx.Done():
		return Reply{}, ctx.Err()
	}
}

// drain applies every queued request.
func (c *Controller) drain() {
	for {
		select {
		case r := <-c.requests:
			r.reply <- c.apply(r)
		default:
			return
		}
	}
}

func (c *Controller) apply(r *Request) Reply {
	var err error
	switch r.Op {
	case OpSnapshot:
	case OpStart:
		err = c.RequestStart()
	case OpStop:
		err = c.RequestStop()
	case OpResize:
		err = c.Resize(r.Width, r.Height)
	default:
		err = errors.Errorf("unknown request op %d", r.Op)
	}
	if err != nil {
		c.logger.Debug("request rejected", zap.Int("op", int(r.Op)), zap.Error(err))
	}
	return Reply{Snapshot: c.Snapshot(), Err: err}
}
