// Package physics defines the physics engine contract and a small reference
// world that the headless binary runs.
package physics

import (
	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"
)

// BodyID identifies a spawned body.
type BodyID uuid.UUID

// NewBodyID returns a fresh random id.
func NewBodyID() BodyID {
	return BodyID(uuid.New())
}

// String returns the canonical UUID text form.
func (id BodyID) String() string {
	return uuid.UUID(id).String()
}

// MarshalText implements encoding.TextMarshaler.
func (id BodyID) MarshalText() ([]byte, error) {
	return uuid.UUID(id).MarshalText()
}

// Engine is the physics engine contract.
type Engine interface {
	// SetGravity replaces the ambient gravity.
	SetGravity(g r3.Vec)

	// SpawnCircleBody creates a dynamic ball centred at pos.
	SpawnCircleBody(pos r3.Vec, diameter float64) BodyID

	// SpawnLineBody creates a static bar centred at pos, rotated by the
	// Euler angles euler (degrees), length along its local X axis and
	// thickness along the other two.
	SpawnLineBody(pos, euler r3.Vec, length, thickness float64) BodyID

	// DestroyBody removes a body. Unknown ids are ignored.
	DestroyBody(id BodyID)
}
