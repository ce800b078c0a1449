package krajc

import (
	"fmt"
	"reflect"
)

// SchedData provides a value owned by the schedule the system is registered
// in. All systems of a schedule share the same value, systems in other
// schedules see their own. It must be injected into a system as a pointer.
//
// The value survives rebuilds of the dependency graph. Systems of the same
// schedule using SchedData of the same type never run at the same time.
type SchedData[T any] struct {
	Value T
}

func (*SchedData[T]) init(ctx ParamContext) (SystemParamState, error) {
	ty := reflect.TypeFor[SchedData[T]]()

	schedule, ok := ctx.Runtime.schedules[ctx.Schedule]
	if ctx.Schedule == nil || !ok {
		return nil, fmt.Errorf("%w: %s at position %d of %q requires a schedule",
			ErrUnsupportedParam, ty, ctx.Position, ctx.Name)
	}

	return valueSystemParamState{
		value:  schedule.dataOf(ty),
		access: ResourceAccess(ty),
	}, nil
}

// dataOf returns a pointer to the schedule data of the given type,
// allocating it on first use.
func (s *Schedule) dataOf(ty reflect.Type) reflect.Value {
	if ptr, ok := s.data[ty]; ok {
		return ptr
	}

	if s.data == nil {
		s.data = map[reflect.Type]reflect.Value{}
	}

	ptr := reflect.New(ty)
	s.data[ty] = ptr

	return ptr
}

// ScheduleData returns the value of the SchedData[T] parameter of the
// schedule, allocating it on first use. It must not be called while the
// schedule is executing.
func ScheduleData[T any](s *Schedule) *T {
	return &s.dataOf(reflect.TypeFor[SchedData[T]]()).Interface().(*SchedData[T]).Value
}
