package krajc

import (
	"fmt"
	"log/slog"
	"reflect"

	"github.com/google/uuid"
)

// RunnableId identifies a runnable within a Runtime. Ids are assigned on
// registration and never reused.
type RunnableId uint32

func (id RunnableId) LogValue() slog.Value {
	return slog.Uint64Value(uint64(id))
}

// Runnable is a unit of work that can be registered into a Schedule.
type Runnable interface {
	// Name returns the unique name of the runnable.
	Name() string

	// Setup resolves the parameters of the runnable and returns one filter
	// per parameter. It is called whenever the dependency graph is built.
	Setup(rt *Runtime, id RunnableId) ([]Filter, error)

	// Run executes the runnable once.
	Run(rt *Runtime) error

	// Predicate decides whether Run is called in the current execution.
	Predicate(rt *Runtime) bool
}

type AnySystem any

func asRunnable(value AnySystem) (Runnable, error) {
	switch value := value.(type) {
	case Runnable:
		return value, nil

	default:
		if value == nil || reflect.TypeOf(value).Kind() != reflect.Func {
			return nil, fmt.Errorf("%w: %T", ErrNotASystem, value)
		}

		return System(value), nil
	}
}

// FunctionSystem is a Runnable backed by a plain go function. The arguments
// of the function are resolved during Setup. The function may return nothing
// or a single error.
type FunctionSystem struct {
	name      string
	fn        reflect.Value
	predicate func(rt *Runtime) bool

	params       []SystemParamState
	returnsError bool
	prepared     bool
}

// System wraps a function into a FunctionSystem. The system gets a random
// name, use Named to give it a stable one.
func System(fn any) *FunctionSystem {
	rFn := reflect.ValueOf(fn)
	if rFn.Kind() != reflect.Func {
		panic(fmt.Sprintf("not a function: %T", fn))
	}

	return &FunctionSystem{
		name: uuid.NewString(),
		fn:   rFn,
	}
}

func (s *FunctionSystem) Named(name string) *FunctionSystem {
	s.name = name
	return s
}

// RunIf only runs the system while predicate returns true.
func (s *FunctionSystem) RunIf(predicate func(rt *Runtime) bool) *FunctionSystem {
	s.predicate = predicate
	return s
}

func (s *FunctionSystem) Name() string {
	return s.name
}

func (s *FunctionSystem) Predicate(rt *Runtime) bool {
	return s.predicate == nil || s.predicate(rt)
}

func (s *FunctionSystem) Setup(rt *Runtime, id RunnableId) ([]Filter, error) {
	params, returnsError, err := prepareSystem(rt, id, s.name, s.fn)
	if err != nil {
		return nil, err
	}

	filters := make([]Filter, 0, len(params))
	for _, param := range params {
		filters = append(filters, param.filter())
	}

	s.params = params
	s.returnsError = returnsError
	s.prepared = true

	return filters, nil
}

func (s *FunctionSystem) Run(*Runtime) error {
	if !s.prepared {
		return fmt.Errorf("%w: system %q runs before it was set up", ErrExpectedInvariantViolation, s.name)
	}

	paramValues := valueSlices.Get()
	defer valueSlices.Put(paramValues)

	for _, param := range s.params {
		*paramValues = append(*paramValues, param.getValue())
	}

	results := s.fn.Call(*paramValues)

	if s.returnsError {
		if err, _ := results[0].Interface().(error); err != nil {
			return err
		}
	}

	return nil
}

func (s *FunctionSystem) String() string {
	return s.name
}
