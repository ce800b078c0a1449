package physics

import (
	"github.com/jakecoffman/cp/v2"
)

type Position struct {
	Value cp.Vector
}

type Velocity struct {
	Linear cp.Vector
}

// Body marks an entity as a rigid body. A body needs a Position, Velocity
// and Collider component to be picked up by the physics plugin.
type Body struct {
	Mass   float64
	static bool

	body *cp.Body
}

func DynamicBody(mass float64) Body {
	return Body{Mass: mass}
}

func StaticBody() Body {
	return Body{static: true}
}

func (b Body) IsStatic() bool {
	return b.static
}

// Collider attaches a circle shape to the body of the entity.
type Collider struct {
	Radius     float64
	Friction   float64
	Elasticity float64

	// the actual collider cp.Shape
	shape *cp.Shape
}

func CircleCollider(radius float64) Collider {
	return Collider{Radius: radius, Friction: 0.5}
}
