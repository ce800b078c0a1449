package physics

import (
	"log/slog"

	"github.com/jakecoffman/cp/v2"
	"github.com/oliverbestmann/krajc"
)

type Gravity struct {
	Value cp.Vector
}

type Stepping struct {
	NumberOfSubsteps uint
}

// Space holds the chipmunk space all bodies live in.
type Space struct {
	Space *cp.Space
}

type entityIndex struct {
	Bodies map[krajc.EntityId]*cp.Body
	Shapes map[krajc.EntityId]*cp.Shape
}

// Plugin simulates all bodies in the PhysicsSync schedule. The systems are
// executed in the order they are registered.
func Plugin(app *krajc.App) {
	app.InsertResource(Space{Space: cp.NewSpace()})
	app.InsertResource(Gravity{Value: cp.Vector{Y: -9.81}})
	app.InsertResource(Stepping{NumberOfSubsteps: 4})

	app.InsertResource(entityIndex{
		Bodies: map[krajc.EntityId]*cp.Body{},
		Shapes: map[krajc.EntityId]*cp.Shape{},
	})

	app.AddSystems(krajc.PhysicsSync,
		krajc.System(syncResourcesSystem).Named("physics.syncResources"),
		krajc.System(removeDespawnedSystem).Named("physics.removeDespawned"),
		krajc.System(makeBodySystem).Named("physics.makeBody"),
		krajc.System(stepSpaceSystem).Named("physics.stepSpace"),
		krajc.System(postStepSyncSystem).Named("physics.postStepSync"),
	)
}

func syncResourcesSystem(space Space, gravity Gravity, applied *krajc.Local[*cp.Vector]) {
	if applied.Value != nil && *applied.Value == gravity.Value {
		return
	}

	space.Space.SetGravity(gravity.Value)
	applied.Value = &gravity.Value
}

func removeDespawnedSystem(world *krajc.World, space Space, index *entityIndex) {
	for entityId, body := range index.Bodies {
		if world.Exists(entityId) {
			continue
		}

		if shape, ok := index.Shapes[entityId]; ok {
			space.Space.RemoveShape(shape)
			delete(index.Shapes, entityId)
		}

		space.Space.RemoveBody(body)
		delete(index.Bodies, entityId)

		slog.Debug("Body removed", slog.Any("entity", entityId))
	}
}

func makeBodySystem(
	space Space,
	index *entityIndex,
	bodiesQuery krajc.Query[struct {
		EntityId krajc.EntityId
		Body     *Body
		Collider *Collider
		Position Position
		Velocity Velocity
	}],
) {
	for item := range bodiesQuery.Items() {
		if item.Body.body != nil {
			continue
		}

		var body *cp.Body
		if item.Body.static {
			body = cp.NewStaticBody()
		} else {
			mass := item.Body.Mass
			if mass <= 0 {
				mass = 1
			}

			radius := max(item.Collider.Radius, 0.01)
			body = cp.NewBody(mass, cp.MomentForCircle(mass, 0, radius, cp.Vector{}))
		}

		body.SetPosition(item.Position.Value)
		if !item.Body.static {
			body.SetVelocity(item.Velocity.Linear.X, item.Velocity.Linear.Y)
		}

		space.Space.AddBody(body)

		shape := cp.NewCircle(body, item.Collider.Radius, cp.Vector{})
		shape.SetFriction(item.Collider.Friction)
		shape.SetElasticity(item.Collider.Elasticity)
		space.Space.AddShape(shape)

		item.Body.body = body
		item.Collider.shape = shape

		// keep a reverse mapping so we can cleanup on entity despawn
		index.Bodies[item.EntityId] = body
		index.Shapes[item.EntityId] = shape
	}
}

func stepSpaceSystem(space Space, frame krajc.FrameTime, steps Stepping) {
	dt := frame.Delta.Seconds()
	if dt <= 0 {
		return
	}

	substeps := max(1, steps.NumberOfSubsteps)
	for range substeps {
		space.Space.Step(dt / float64(substeps))
	}
}

func postStepSyncSystem(
	bodiesQuery krajc.Query[struct {
		Body     Body
		Position *Position
		Velocity *Velocity
	}],
) {
	for item := range bodiesQuery.Items() {
		if item.Body.body == nil || item.Body.static {
			continue
		}

		item.Position.Value = item.Body.body.Position()
		item.Velocity.Linear = item.Body.body.Velocity()
	}
}
