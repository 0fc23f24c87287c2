// Package simulation turns detected shapes into physics bodies and tears them
// down again.
package simulation

import (
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ironsheep/rollingball/internal/geometry"
	"github.com/ironsheep/rollingball/internal/physics"
)

// LineThicknessFactor sets bar thickness as a fraction of screen width.
const LineThicknessFactor = 0.01

// Controller owns every body it spawns.
//
// Controller is not safe for concurrent use.
type Controller struct {
	engine      physics.Engine
	logger      *zap.Logger
	screenWidth float64
	bodies      []physics.BodyID
}

// NewController creates a controller spawning into engine.
func NewController(engine physics.Engine, logger *zap.Logger) *Controller {
	return &Controller{
		engine: engine,
		logger: logger,
	}
}

// SetScreenWidth sets the width used for bar thickness.
func (c *Controller) SetScreenWidth(w float64) {
	c.screenWidth = w
}

// LineThickness is the thickness given to every bar.
func (c *Controller) LineThickness() float64 {
	return LineThicknessFactor * c.screenWidth
}

// Start spawns one ball per circle and one bar per line.
//
// A ball sits at the circle's world position with its screen diameter. A bar
// sits at the segment's world midpoint, rotated about Z by minus the
// unsigned screen angle of the segment, with the segment's world length.
func (c *Controller) Start(circles []geometry.DetectedCircle, lines []geometry.DetectedLine) {
	for _, circle := range circles {
		id := c.engine.SpawnCircleBody(circle.WorldPosition, circle.ScreenDiameter)
		c.bodies = append(c.bodies, id)
	}

	thickness := c.LineThickness()
	for _, line := range lines {
		euler := r3.Vec{Z: -line.ScreenAngle()}
		id := c.engine.SpawnLineBody(line.WorldMidpoint(), euler, line.WorldLength(), thickness)
		c.bodies = append(c.bodies, id)
	}

	c.logger.Info("simulation started",
		zap.Int("circles", len(circles)),
		zap.Int("lines", len(lines)))
}

// Stop destroys every owned body. With no bodies it does nothing.
func (c *Controller) Stop() {
	if len(c.bodies) == 0 {
		return
	}
	for _, id := range c.bodies {
		c.engine.DestroyBody(id)
	}
	c.logger.Info("simulation stopped", zap.Int("destroyed", len(c.bodies)))
	c.bodies = c.bodies[:0]
}

// Count returns the number of owned bodies.
func (c *Controller) Count() int {
	return len(c.bodies)
}

// Bodies returns a copy of the owned body ids in spawn order.
func (c *Controller) Bodies() []physics.BodyID {
	out := make([]physics.BodyID, len(c.bodies))
	copy(out, c.bodies)
	return out
}
