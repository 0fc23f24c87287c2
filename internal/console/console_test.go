package console

import (
	"context"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ironsheep/rollingball/internal/controller"
	"github.com/ironsheep/rollingball/internal/geometry"
)

// fakeControls answers requests from a canned snapshot.
type fakeControls struct {
	ops      []controller.Op
	snapshot controller.Snapshot
	err      error
}

func (f *fakeControls) Submit(_ context.Context, req controller.Request) (controller.Reply, error) {
	f.ops = append(f.ops, req.Op)
	return controller.Reply{Snapshot: f.snapshot, Err: f.err}, nil
}

type fakeTilt struct {
	roll, pitch float64
}

func (f *fakeTilt) Adjust(dRoll, dPitch float64) {
	f.roll += dRoll
	f.pitch += dPitch
}

func newTestConsole(t *testing.T, controls *fakeControls, tilt Tilter) *Console {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(80, 5)
	t.Cleanup(screen.Fini)
	return New(zaptest.NewLogger(t), screen, controls, tilt)
}

func key(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func TestHandleEvent_QuitKeys(t *testing.T) {
	c := newTestConsole(t, &fakeControls{}, nil)
	ctx := context.Background()

	assert.True(t, c.handleEvent(ctx, key('q')))
	assert.True(t, c.handleEvent(ctx, tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)))
	assert.True(t, c.handleEvent(ctx, tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl)))
	assert.False(t, c.handleEvent(ctx, key('z')))
}

func TestHandleEvent_StartStop(t *testing.T) {
	controls := &fakeControls{snapshot: controller.Snapshot{State: controller.Simulating, Ready: true, CanStop: true}}
	c := newTestConsole(t, controls, nil)
	ctx := context.Background()

	assert.False(t, c.handleEvent(ctx, key('s')))
	assert.Equal(t, []controller.Op{controller.OpStart}, controls.ops)
	assert.Equal(t, "simulation started", c.message)
	assert.Equal(t, controller.Simulating, c.status.State)

	controls.err = controller.ErrNotSimulating
	assert.False(t, c.handleEvent(ctx, key('x')))
	assert.Equal(t, []controller.Op{controller.OpStart, controller.OpStop}, controls.ops)
	assert.Equal(t, controller.ErrNotSimulating.Error(), c.message)
}

func TestHandleEvent_Tilt(t *testing.T) {
	tilt := &fakeTilt{}
	c := newTestConsole(t, &fakeControls{}, tilt)
	ctx := context.Background()

	c.handleEvent(ctx, tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModNone))
	c.handleEvent(ctx, tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone))
	c.handleEvent(ctx, tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone))
	assert.Equal(t, -TiltStep, tilt.roll)
	assert.Equal(t, 2*TiltStep, tilt.pitch)

	// no tilt source: arrows are ignored
	plain := newTestConsole(t, &fakeControls{}, nil)
	assert.NotPanics(t, func() {
		plain.handleEvent(ctx, tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone))
	})
}

func TestStatusLines(t *testing.T) {
	lines := statusLines(controller.Snapshot{}, false, "")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "waiting for camera")
	assert.Equal(t, "[q] quit", lines[1])

	detecting := controller.Snapshot{
		State:    controller.Detecting,
		Ready:    true,
		Circles:  make([]geometry.DetectedCircle, 2),
		CanStart: true,
	}
	lines = statusLines(detecting, true, "hello")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "detecting")
	assert.Contains(t, lines[0], "circles: 2")
	assert.Contains(t, lines[1], "[s] start")
	assert.NotContains(t, lines[1], "[x] stop")
	assert.Contains(t, lines[1], "[arrows] tilt")
	assert.Equal(t, "hello", lines[2])

	simulating := controller.Snapshot{State: controller.Simulating, Ready: true, Bodies: 3, CanStop: true}
	lines = statusLines(simulating, false, "")
	assert.Contains(t, lines[0], "bodies: 3")
	assert.NotContains(t, lines[1], "[s] start")
	assert.Contains(t, lines[1], "[x] stop")
}

func TestDraw_DoesNotPanic(t *testing.T) {
	c := newTestConsole(t, &fakeControls{}, nil)
	c.status = controller.Snapshot{Ready: true, CanStart: true}
	c.message = "a message longer than the screen is wide, which must simply be clipped by the terminal"
	assert.NotPanics(t, c.draw)
}
