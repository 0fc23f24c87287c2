package controller

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ironsheep/rollingball/internal/capture"
	"github.com/ironsheep/rollingball/internal/detection"
	"github.com/ironsheep/rollingball/internal/geometry"
	"github.com/ironsheep/rollingball/internal/gravity"
	"github.com/ironsheep/rollingball/internal/imaging"
	"github.com/ironsheep/rollingball/internal/orientation"
	"github.com/ironsheep/rollingball/internal/physics"
	"github.com/ironsheep/rollingball/internal/simulation"
)

// fakeSource becomes ready after a number of polls and hands out pushed
// frames once each.
type fakeSource struct {
	readyAfter int
	polls      int
	frame      capture.Frame
	fresh      bool
	paused     bool
	pauses     int
	resumes    int
}

func (s *fakeSource) Begin(capture.Preferences) error { return nil }

func (s *fakeSource) Ready() bool {
	s.polls++
	return s.polls > s.readyAfter
}

func (s *fakeSource) HasNewFrame() bool {
	if s.paused || !s.fresh {
		return false
	}
	s.fresh = false
	return true
}

func (s *fakeSource) CurrentFrame() capture.Frame { return s.frame }

func (s *fakeSource) Pause() {
	s.paused = true
	s.pauses++
}

func (s *fakeSource) Resume() {
	s.paused = false
	s.resumes++
}

func (s *fakeSource) Close() error { return nil }

func (s *fakeSource) push(f capture.Frame) {
	s.frame = f
	s.fresh = true
}

// fakePreprocessor validates frames without doing any image work.
type fakePreprocessor struct{}

func (fakePreprocessor) Process(frame capture.Frame) (*imaging.Preprocessed, error) {
	if err := frame.Validate(); err != nil {
		return nil, err
	}
	return &imaging.Preprocessed{}, nil
}

// fakeDetector maps fixed image-space records.
type fakeDetector struct {
	circles [][3]float64
	lines   [][4]float64
	calls   int
}

func (d *fakeDetector) Detect(_ *imaging.Preprocessed, m *geometry.Mapper) detection.Result {
	d.calls++
	res := detection.Result{
		Circles: []geometry.DetectedCircle{},
		Lines:   []geometry.DetectedLine{},
	}
	for _, c := range d.circles {
		res.Circles = append(res.Circles, m.MapCircle(c[0], c[1], c[2]))
	}
	for _, l := range d.lines {
		res.Lines = append(res.Lines, m.MapLine(l[0], l[1], l[2], l[3]))
	}
	return res
}

type recordingRenderer struct {
	draws   int
	circles int
	lines   int
}

func (r *recordingRenderer) Draw(circles []geometry.DetectedCircle, lines []geometry.DetectedLine) {
	r.draws++
	r.circles = len(circles)
	r.lines = len(lines)
}

type harness struct {
	source   *fakeSource
	detector *fakeDetector
	renderer *recordingRenderer
	world    *physics.World
	ctrl     *Controller
}

func newHarness(t *testing.T, readyAfter int) *harness {
	t.Helper()
	logger := zaptest.NewLogger(t)

	h := &harness{
		source:   &fakeSource{readyAfter: readyAfter},
		detector: &fakeDetector{},
		renderer: &recordingRenderer{},
		world:    physics.NewWorld(logger),
	}
	h.source.frame = blankFrame(640, 480)

	h.ctrl = New(logger, Deps{
		Source:       h.source,
		Preprocessor: fakePreprocessor{},
		Detector:     h.detector,
		Simulator:    simulation.NewController(h.world, logger),
		Gravity: gravity.NewMapper(orientation.NewStatic(r3.Vec{Y: -1}), h.world,
			gravity.DefaultDeviceMagnitude, gravity.DefaultScale),
		Renderer: h.renderer,
		Stepper:  h.world,
	}, Options{
		ScreenWidth:  1080,
		ScreenHeight: 1920,
		TickInterval: time.Second / 30,
	})
	return h
}

func blankFrame(w, h int) capture.Frame {
	return capture.Frame{Width: w, Height: h, Pixels: make([]byte, 4*w*h), Timestamp: time.Now()}
}

// submitAndTick submits req from another goroutine and ticks until it is
// applied.
func submitAndTick(t *testing.T, c *Controller, req Request) Reply {
	t.Helper()
	done := make(chan Reply, 1)
	errs := make(chan error, 1)
	go func() {
		reply, err := c.Submit(context.Background(), req)
		if err != nil {
			errs <- err
			return
		}
		done <- reply
	}()

	for i := 0; i < 1000; i++ {
		c.Tick()
		select {
		case reply := <-done:
			return reply
		case err := <-errs:
			t.Fatalf("submit failed: %v", err)
		default:
			time.Sleep(time.Millisecond)
		}
	}
	t.Fatal("request was never applied")
	return Reply{}
}

func TestController_WaitsForCapture(t *testing.T) {
	h := newHarness(t, 3)
	h.source.push(blankFrame(640, 480))

	for i := 0; i < 3; i++ {
		h.ctrl.Tick()
		assert.False(t, h.ctrl.Ready())
		assert.Nil(t, h.ctrl.Mapper())
	}
	assert.Equal(t, 0, h.detector.calls, "no detection before capture is ready")
	assert.Equal(t, physics.DefaultGravity, h.world.Gravity(), "gravity untouched before capture is ready")

	h.ctrl.Tick()
	require.True(t, h.ctrl.Ready())
	assert.InDelta(t, 2.25, h.ctrl.Mapper().Scale(), 1e-12)
	assert.InDelta(t, 240, h.ctrl.Mapper().YOffset(), 1e-12)
	assert.InDelta(t, -9.81*8, h.world.Gravity().Y, 1e-9)
	assert.Equal(t, 1, h.detector.calls)
}

func TestController_DetectsAndPreviews(t *testing.T) {
	h := newHarness(t, 0)
	h.detector.circles = [][3]float64{{100, 50, 20}}

	h.source.push(blankFrame(640, 480))
	h.ctrl.Tick()

	require.Len(t, h.ctrl.Circles(), 1)
	c := h.ctrl.Circles()[0]
	assert.InDelta(t, 967.5, c.ScreenPosition.X, 1e-9)
	assert.InDelta(t, 1455, c.ScreenPosition.Y, 1e-9)
	assert.InDelta(t, 90, c.ScreenDiameter, 1e-9)
	assert.Equal(t, 1, h.renderer.draws)
	assert.Equal(t, 1, h.renderer.circles)

	// no new frame: shapes stay, preview still drawn once per tick
	h.ctrl.Tick()
	assert.Equal(t, 1, h.detector.calls)
	assert.Equal(t, 2, h.renderer.draws)
	assert.Len(t, h.ctrl.Circles(), 1)
}

func TestController_EmptyDetectionRejectsStart(t *testing.T) {
	h := newHarness(t, 0)
	h.source.push(blankFrame(640, 480))
	h.ctrl.Tick()

	assert.False(t, h.ctrl.HasShapes())
	assert.Equal(t, 0, h.renderer.draws, "preview only runs while shapes exist")

	err := h.ctrl.RequestStart()
	assert.ErrorIs(t, err, ErrNoShapes)
	assert.Equal(t, Detecting, h.ctrl.State())
	assert.Equal(t, 0, h.source.pauses)
	assert.Equal(t, 0, h.world.Len())
}

func TestController_StartStopScenario(t *testing.T) {
	h := newHarness(t, 0)
	h.detector.circles = [][3]float64{{100, 50, 20}, {300, 200, 10}}
	h.detector.lines = [][4]float64{{10, 10, 200, 10}}
	h.source.push(blankFrame(640, 480))
	h.ctrl.Tick()

	require.NoError(t, h.ctrl.RequestStart())
	assert.Equal(t, Simulating, h.ctrl.State())
	assert.Equal(t, 1, h.source.pauses)
	assert.Equal(t, 3, h.world.Len(), "one body per shape")

	ball := h.world.Bodies()[0]
	drawsBefore := h.renderer.draws

	// frames are ignored while simulating, the world keeps stepping
	h.source.fresh = true
	h.source.paused = false
	for i := 0; i < 5; i++ {
		h.ctrl.Tick()
	}
	assert.Equal(t, 1, h.detector.calls)
	assert.Equal(t, drawsBefore, h.renderer.draws)
	moved, ok := h.world.Body(ball.ID)
	require.True(t, ok)
	assert.Less(t, moved.Position.Y, ball.Position.Y, "ball falls under gravity")

	require.NoError(t, h.ctrl.RequestStop())
	assert.Equal(t, Detecting, h.ctrl.State())
	assert.Equal(t, 0, h.world.Len())
	assert.Equal(t, 1, h.source.resumes)
}

func TestController_StopWhenNotSimulating(t *testing.T) {
	h := newHarness(t, 0)
	h.detector.circles = [][3]float64{{100, 50, 20}}
	h.source.push(blankFrame(640, 480))
	h.ctrl.Tick()

	assert.ErrorIs(t, h.ctrl.RequestStop(), ErrNotSimulating)
	assert.Equal(t, Detecting, h.ctrl.State())
	assert.Equal(t, 0, h.source.resumes)
	assert.Len(t, h.ctrl.Circles(), 1)
}

func TestController_StartTwiceRejected(t *testing.T) {
	h := newHarness(t, 0)
	h.detector.circles = [][3]float64{{100, 50, 20}}
	h.source.push(blankFrame(640, 480))
	h.ctrl.Tick()

	require.NoError(t, h.ctrl.RequestStart())
	assert.ErrorIs(t, h.ctrl.RequestStart(), ErrSimulating)
	assert.Equal(t, 1, h.world.Len())
	assert.Equal(t, 1, h.source.pauses)
}

func TestController_MalformedFrameSkipsTick(t *testing.T) {
	h := newHarness(t, 0)
	h.detector.circles = [][3]float64{{100, 50, 20}}
	h.ctrl.Tick()

	h.source.push(capture.Frame{Width: 640, Height: 480, Pixels: make([]byte, 10)})
	h.ctrl.Tick()
	assert.Equal(t, 0, h.detector.calls)
	assert.Equal(t, Detecting, h.ctrl.State())
}

func TestController_CaptureSizeChangeReconfigures(t *testing.T) {
	h := newHarness(t, 0)
	h.ctrl.Tick()
	require.True(t, h.ctrl.Ready())

	h.source.push(blankFrame(320, 240))
	h.ctrl.Tick()

	w, hh := h.ctrl.Mapper().CaptureSize()
	assert.Equal(t, 320, w)
	assert.Equal(t, 240, hh)
	assert.InDelta(t, 4.5, h.ctrl.Mapper().Scale(), 1e-12)
}

func TestController_SubmitStartStop(t *testing.T) {
	h := newHarness(t, 0)
	h.detector.circles = [][3]float64{{100, 50, 20}}
	h.source.push(blankFrame(640, 480))
	h.ctrl.Tick()

	reply := submitAndTick(t, h.ctrl, Request{Op: OpStart})
	require.NoError(t, reply.Err)
	assert.Equal(t, Simulating, reply.Snapshot.State)
	assert.Equal(t, 1, reply.Snapshot.Bodies)
	assert.True(t, reply.Snapshot.CanStop)
	assert.False(t, reply.Snapshot.CanStart)

	reply = submitAndTick(t, h.ctrl, Request{Op: OpStop})
	require.NoError(t, reply.Err)
	assert.Equal(t, Detecting, reply.Snapshot.State)
	assert.Equal(t, 0, reply.Snapshot.Bodies)

	reply = submitAndTick(t, h.ctrl, Request{Op: OpStop})
	assert.ErrorIs(t, reply.Err, ErrNotSimulating)
}

func TestController_SubmitResizeDropsShapes(t *testing.T) {
	h := newHarness(t, 0)
	h.detector.circles = [][3]float64{{100, 50, 20}}
	h.source.push(blankFrame(640, 480))
	h.ctrl.Tick()
	require.True(t, h.ctrl.HasShapes())

	reply := submitAndTick(t, h.ctrl, Request{Op: OpResize, Width: 720, Height: 1280})
	require.NoError(t, reply.Err)
	assert.Empty(t, reply.Snapshot.Circles)
	assert.InDelta(t, 1.5, h.ctrl.Mapper().Scale(), 1e-12)

	reply = submitAndTick(t, h.ctrl, Request{Op: OpResize, Width: 0, Height: 1280})
	assert.ErrorIs(t, reply.Err, geometry.ErrInvalidGeometry)
}

func TestController_SubmitCancelled(t *testing.T) {
	h := newHarness(t, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.ctrl.Submit(ctx, Request{Op: OpSnapshot})
	assert.Error(t, err)
}

func TestSnapshot_JSON(t *testing.T) {
	h := newHarness(t, 0)
	h.detector.circles = [][3]float64{{100, 50, 20}}
	h.source.push(blankFrame(640, 480))
	h.ctrl.Tick()

	data, err := json.Marshal(h.ctrl.Snapshot())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "detecting", decoded["state"])
	assert.Equal(t, true, decoded["ready"])
	assert.Equal(t, true, decoded["can_start"])
	assert.Len(t, decoded["circles"], 1)
}
