package krajc

import "fmt"

type ScheduleId interface {
	fmt.Stringer
	isSchedule()
}

type scheduleId struct {
	name string
}

func (s *scheduleId) isSchedule() {}

func (s *scheduleId) String() string {
	return s.name
}

func MakeScheduleId(name string) ScheduleId {
	return &scheduleId{name: name}
}

var (
	// EngineLoad runs once during Startup.
	EngineLoad = MakeScheduleId("EngineLoad")

	Update     = MakeScheduleId("Update")
	PostUpdate = MakeScheduleId("PostUpdate")

	// PhysicsSync always executes single threaded.
	PhysicsSync = MakeScheduleId("PhysicsSync")

	PostPhysicsSync = MakeScheduleId("PostPhysicsSync")
)

// frameSchedules are executed in this order once per frame.
var frameSchedules = []ScheduleId{Update, PostUpdate, PhysicsSync, PostPhysicsSync}

// ScheduleByName resolves one of the built-in schedules by its snake case name,
// e.g. "post_update".
func ScheduleByName(name string) (ScheduleId, bool) {
	switch name {
	case "engine_load":
		return EngineLoad, true
	case "update":
		return Update, true
	case "post_update":
		return PostUpdate, true
	case "physics_sync":
		return PhysicsSync, true
	case "post_physics_sync":
		return PostPhysicsSync, true
	default:
		return nil, false
	}
}

func configureSchedules(rt *Runtime) {
	rt.addSchedule(newSchedule(EngineLoad, false))

	for _, id := range frameSchedules {
		rt.addSchedule(newSchedule(id, id == PhysicsSync))
	}

	rt.InsertResource(FrameTime{})
	rt.InsertResource(TargetFps{Value: 60})
}
