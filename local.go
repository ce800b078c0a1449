package krajc

import (
	"fmt"
	"reflect"
	"sync"
)

// Local provides a value local to the system.
// It must be injected into a system as a pointer.
//
// Each Local parameter of a system has its own value, which survives
// between invocations and rebuilds of the dependency graph.
type Local[T any] struct {
	Value T
}

func (*Local[T]) init(ctx ParamContext) (SystemParamState, error) {
	key := localKey{System: ctx.System, Position: ctx.Position}

	ptr, err := ctx.Runtime.locals.getOrInit(key, reflect.TypeFor[Local[T]]())
	if err != nil {
		return nil, err
	}

	return valueSystemParamState{value: ptr, access: Transparent()}, nil
}

type localKey struct {
	System   RunnableId
	Position int
}

// localStore is the side table holding the values of all Local parameters.
type localStore struct {
	mu     sync.Mutex
	values map[localKey]reflect.Value
}

func (s *localStore) getOrInit(key localKey, ty reflect.Type) (reflect.Value, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ptr, ok := s.values[key]; ok {
		if ptr.Type().Elem() != ty {
			return reflect.Value{}, fmt.Errorf(
				"%w: local at position %d of runnable %d changed type from %s to %s",
				ErrExpectedInvariantViolation, key.Position, key.System, ptr.Type().Elem(), ty,
			)
		}

		return ptr, nil
	}

	if s.values == nil {
		s.values = map[localKey]reflect.Value{}
	}

	ptr := reflect.New(ty)
	s.values[key] = ptr

	return ptr, nil
}

// drop removes all locals of the given runnable.
func (s *localStore) drop(system RunnableId) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.values {
		if key.System == system {
			delete(s.values, key)
		}
	}
}
