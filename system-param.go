package krajc

import "reflect"

// ParamContext is passed to a SystemParam while its system is set up.
type ParamContext struct {
	Runtime *Runtime

	// System is the id of the runnable the parameter belongs to.
	System RunnableId

	// Schedule the runnable is registered in. It is nil for systems run
	// outside of a schedule.
	Schedule ScheduleId

	// Name is the name of the runnable, used in error messages.
	Name string

	// Position is the 1-based index of the parameter within the argument
	// list of the system function.
	Position int
}

// SystemParam is an interface to give a type special behaviour when it is used
// as a parameter to a system.
//
// While a system is being set up, each parameter is checked for this interface.
// If a parameter type implements it, a new instance is allocated and init
// is called.
//
// See Local, SchedData, Res or Query for implementations of SystemParam.
type SystemParam interface {
	init(ctx ParamContext) (SystemParamState, error)
}

// SystemParamState is the state produced by SystemParam.
type SystemParamState interface {
	// getValue returns the value that is passed to the system on each invocation.
	getValue() reflect.Value

	// valueType returns the exact type that getValue will return. It is checked
	// against the parameter type once during setup.
	valueType() reflect.Type

	// filter describes the shared state the parameter touches.
	filter() Filter
}

// valueSystemParamState always passes the same value.
type valueSystemParamState struct {
	value  reflect.Value
	access Filter
}

func (s valueSystemParamState) getValue() reflect.Value {
	return s.value
}

func (s valueSystemParamState) valueType() reflect.Type {
	return s.value.Type()
}

func (s valueSystemParamState) filter() Filter {
	return s.access
}
