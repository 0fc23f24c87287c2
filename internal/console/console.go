// Package console is the terminal control surface: start, stop and quit keys
// plus a status line refreshed from the controller.
package console

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ironsheep/rollingball/internal/controller"
)

// ErrQuit is returned by Run when the user asks to quit.
var ErrQuit = errors.New("quit requested")

// TiltStep is the pose change per arrow key press, in degrees.
const TiltStep = 5.0

// Controls submits requests to the tick loop.
type Controls interface {
	Submit(ctx context.Context, req controller.Request) (controller.Reply, error)
}

// Tilter adjusts a simulated device pose.
type Tilter interface {
	Adjust(dRoll, dPitch float64)
}

// Console drives a tcell screen.
type Console struct {
	logger   *zap.Logger
	screen   tcell.Screen
	controls Controls
	tilt     Tilter
	refresh  time.Duration

	status  controller.Snapshot
	message string
}

// New creates a console. tilt may be nil when the orientation source is not
// adjustable.
func New(logger *zap.Logger, screen tcell.Screen, controls Controls, tilt Tilter) *Console {
	return &Console{
		logger:   logger,
		screen:   screen,
		controls: controls,
		tilt:     tilt,
		refresh:  200 * time.Millisecond,
	}
}

// Run initialises the screen and handles events until ctx is done or the
// user quits, in which case it returns ErrQuit.
func (c *Console) Run(ctx context.Context) error {
	if err := c.screen.Init(); err != nil {
		return errors.Wrap(err, "init terminal")
	}
	defer c.screen.Fini()

	done := make(chan struct{})
	defer close(done)

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := c.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	ticker := time.NewTicker(c.refresh)
	defer ticker.Stop()

	c.poll(ctx)
	c.draw()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if c.handleEvent(ctx, ev) {
				return ErrQuit
			}
			c.draw()
		case <-ticker.C:
			c.poll(ctx)
			c.draw()
		}
	}
}

// handleEvent applies one terminal event and reports whether to quit.
func (c *Console) handleEvent(ctx context.Context, ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return true
		case tcell.KeyLeft:
			c.adjust(-TiltStep, 0)
		case tcell.KeyRight:
			c.adjust(TiltStep, 0)
		case tcell.KeyUp:
			c.adjust(0, TiltStep)
		case tcell.KeyDown:
			c.adjust(0, -TiltStep)
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q', 'Q':
				return true
			case 's', 'S':
				c.submit(ctx, controller.OpStart, "simulation started")
			case 'x', 'X':
				c.submit(ctx, controller.OpStop, "simulation stopped")
			}
		}
	case *tcell.EventResize:
		c.screen.Sync()
	}
	return false
}

func (c *Console) adjust(dRoll, dPitch float64) {
	if c.tilt == nil {
		return
	}
	c.tilt.Adjust(dRoll, dPitch)
}

func (c *Console) submit(ctx context.Context, op controller.Op, ok string) {
	reply, err := c.controls.Submit(ctx, controller.Request{Op: op})
	if err != nil {
		c.logger.Debug("console request", zap.Error(err))
		return
	}
	c.status = reply.Snapshot
	if reply.Err != nil {
		c.message = reply.Err.Error()
		return
	}
	c.message = ok
}

func (c *Console) poll(ctx context.Context) {
	reply, err := c.controls.Submit(ctx, controller.Request{Op: controller.OpSnapshot})
	if err != nil {
		return
	}
	c.status = reply.Snapshot
}

// draw renders the status lines.
func (c *Console) draw() {
	c.screen.Clear()
	for y, line := range statusLines(c.status, c.tilt != nil, c.message) {
		style := tcell.StyleDefault
		if y == 0 {
			style = style.Bold(true)
		}
		putString(c.screen, 0, y, line, style)
	}
	c.screen.Show()
}

// statusLines formats the console text. Start is offered only with shapes
// and stop only while simulating.
func statusLines(s controller.Snapshot, tilt bool, message string) []string {
	header := "rollingball  waiting for camera"
	if s.Ready {
		header = fmt.Sprintf("rollingball  %s  circles: %d  lines: %d  bodies: %d",
			s.State, len(s.Circles), len(s.Lines), s.Bodies)
	}

	keys := ""
	if s.CanStart {
		keys += "[s] start  "
	}
	if s.CanStop {
		keys += "[x] stop  "
	}
	if tilt {
		keys += "[arrows] tilt  "
	}
	keys += "[q] quit"

	lines := []string{header, keys}
	if message != "" {
		lines = append(lines, message)
	}
	return lines
}

func putString(s tcell.Screen, x, y int, text string, style tcell.Style) {
	for i, r := range []rune(text) {
		s.SetContent(x+i, y, r, nil, style)
	}
}
