package physics

import (
	"math"
	"sort"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultGravity is the world gravity before any orientation sample arrives.
var DefaultGravity = r3.Vec{Y: -9.81}

// Restitution is the fraction of normal velocity kept after a ball bounces
// off a bar.
const Restitution = 0.5

// Kind distinguishes body shapes.
type Kind int

const (
	// KindCircle is a dynamic ball.
	KindCircle Kind = iota
	// KindLine is a static bar.
	KindLine
)

// String returns the lower-case kind name.
func (k Kind) String() string {
	if k == KindLine {
		return "line"
	}
	return "circle"
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Body is a snapshot of one body in the world.
type Body struct {
	ID       BodyID `json:"id"`
	Kind     Kind   `json:"kind"`
	Position r3.Vec `json:"position"`
	Velocity r3.Vec `json:"velocity"`
	// Rotation holds Euler angles in degrees.
	Rotation  r3.Vec  `json:"rotation"`
	Diameter  float64 `json:"diameter,omitempty"`
	Length    float64 `json:"length,omitempty"`
	Thickness float64 `json:"thickness,omitempty"`

	seq uint64
}

// World is a minimal engine: balls fall under gravity and bounce off bars,
// bars never move. Motion and collisions are resolved in the XY plane; Z is
// carried through unchanged.
//
// World is not safe for concurrent use. It is stepped by the tick loop.
type World struct {
	logger  *zap.Logger
	gravity r3.Vec
	bodies  map[BodyID]*Body
	seq     uint64
}

// NewWorld creates an empty world with DefaultGravity.
func NewWorld(logger *zap.Logger) *World {
	return &World{
		logger:  logger,
		gravity: DefaultGravity,
		bodies:  make(map[BodyID]*Body),
	}
}

// SetGravity implements Engine.
func (w *World) SetGravity(g r3.Vec) {
	w.gravity = g
}

// Gravity returns the current ambient gravity.
func (w *World) Gravity() r3.Vec {
	return w.gravity
}

// SpawnCircleBody implements Engine.
func (w *World) SpawnCircleBody(pos r3.Vec, diameter float64) BodyID {
	return w.add(&Body{
		Kind:     KindCircle,
		Position: pos,
		Diameter: diameter,
	})
}

// SpawnLineBody implements Engine.
func (w *World) SpawnLineBody(pos, euler r3.Vec, length, thickness float64) BodyID {
	return w.add(&Body{
		Kind:      KindLine,
		Position:  pos,
		Rotation:  euler,
		Length:    length,
		Thickness: thickness,
	})
}

func (w *World) add(b *Body) BodyID {
	b.ID = NewBodyID()
	w.seq++
	b.seq = w.seq
	w.bodies[b.ID] = b
	w.logger.Debug("spawned body",
		zap.Stringer("id", b.ID),
		zap.Stringer("kind", b.Kind))
	return b.ID
}

// DestroyBody implements Engine.
func (w *World) DestroyBody(id BodyID) {
	if _, ok := w.bodies[id]; !ok {
		w.logger.Debug("destroy of unknown body", zap.Stringer("id", id))
		return
	}
	delete(w.bodies, id)
}

// Len returns the number of live bodies.
func (w *World) Len() int {
	return len(w.bodies)
}

// Body returns a snapshot of one body.
func (w *World) Body(id BodyID) (Body, bool) {
	b, ok := w.bodies[id]
	if !ok {
		return Body{}, false
	}
	return *b, true
}

// Bodies returns snapshots of all bodies in spawn order.
func (w *World) Bodies() []Body {
	out := make([]Body, 0, len(w.bodies))
	for _, b := range w.bodies {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

// Step advances the world by dt seconds using semi-implicit Euler
// integration.
func (w *World) Step(dt float64) {
	if dt <= 0 {
		return
	}

	bars := make([]*Body, 0)
	for _, b := range w.bodies {
		if b.Kind == KindLine {
			bars = append(bars, b)
		}
	}

	for _, b := range w.bodies {
		if b.Kind != KindCircle {
			continue
		}
		b.Velocity = r3.Add(b.Velocity, r3.Scale(dt, w.gravity))
		b.Position = r3.Add(b.Position, r3.Scale(dt, b.Velocity))
		for _, bar := range bars {
			collide(b, bar)
		}
	}
}

// collide pushes ball out of bar and reflects its normal velocity.
func collide(ball, bar *Body) {
	angle := bar.Rotation.Z * math.Pi / 180
	dir := r3.Vec{X: math.Cos(angle), Y: math.Sin(angle)}
	half := r3.Scale(0.5*bar.Length, dir)
	a := r3.Sub(bar.Position, half)

	// closest point on the bar axis, in the XY plane
	rel := r3.Vec{X: ball.Position.X - a.X, Y: ball.Position.Y - a.Y}
	t := math.Max(0, math.Min(bar.Length, r3.Dot(rel, dir)))
	closest := r3.Vec{X: a.X + t*dir.X, Y: a.Y + t*dir.Y}

	offset := r3.Vec{X: ball.Position.X - closest.X, Y: ball.Position.Y - closest.Y}
	dist := r3.Norm(offset)
	reach := 0.5*ball.Diameter + 0.5*bar.Thickness
	if dist >= reach {
		return
	}

	var normal r3.Vec
	if dist > 1e-12 {
		normal = r3.Scale(1/dist, offset)
	} else {
		normal = r3.Vec{X: -dir.Y, Y: dir.X}
	}

	push := r3.Scale(reach-dist, normal)
	ball.Position = r3.Add(ball.Position, push)

	if vn := r3.Dot(ball.Velocity, normal); vn < 0 {
		ball.Velocity = r3.Sub(ball.Velocity, r3.Scale((1+Restitution)*vn, normal))
	}
}
