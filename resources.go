package krajc

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"sync"

	"github.com/oliverbestmann/krajc/internal/assert"
)

// resourceRegistry maps a resource type to a pointer holding its value.
// Pointers are stable for the lifetime of the registry.
type resourceRegistry struct {
	mu     sync.RWMutex
	values map[reflect.Type]reflect.Value
	order  []reflect.Type
}

func newResourceRegistry() *resourceRegistry {
	return &resourceRegistry{values: map[reflect.Type]reflect.Value{}}
}

func (r *resourceRegistry) get(ty reflect.Type) (reflect.Value, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ptr, ok := r.values[ty]
	return ptr, ok
}

func (r *resourceRegistry) getOrInit(ty reflect.Type) reflect.Value {
	if ptr, ok := r.get(ty); ok {
		return ptr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if ptr, ok := r.values[ty]; ok {
		return ptr
	}

	ptr := reflect.New(ty)
	r.values[ty] = ptr
	r.order = append(r.order, ty)

	return ptr
}

func (r *resourceRegistry) insert(value any) {
	ty := reflect.TypeOf(value)
	assert.NonPointer(ty, "resource")

	// existing pointers must stay valid, update the value in place
	ptr := r.getOrInit(ty)
	ptr.Elem().Set(reflect.ValueOf(value))
}

// close closes every resource implementing io.Closer, newest first.
func (r *resourceRegistry) close() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var errs []error
	for idx := len(r.order) - 1; idx >= 0; idx-- {
		closer, ok := r.values[r.order[idx]].Interface().(io.Closer)
		if !ok {
			continue
		}

		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close resource %s: %w", r.order[idx], err))
		}
	}

	return errors.Join(errs...)
}

// Res injects a resource into a system. The resource is created with its
// zero value if it does not exist yet.
//
// Two systems using the same resource never run at the same time.
type Res[T any] struct {
	Value *T
}

func (*Res[T]) init(ctx ParamContext) (SystemParamState, error) {
	ty := reflect.TypeFor[T]()
	if ty.Kind() == reflect.Pointer {
		return nil, fmt.Errorf("%w: Res[%s] must not wrap a pointer", ErrUnsupportedParam, ty)
	}

	ptr := ctx.Runtime.resources.getOrInit(ty)
	return resParamState[T]{value: ptr.Interface().(*T)}, nil
}

type resParamState[T any] struct {
	value *T
}

func (s resParamState[T]) getValue() reflect.Value {
	return reflect.ValueOf(Res[T]{Value: s.value})
}

func (resParamState[T]) valueType() reflect.Type {
	return reflect.TypeFor[Res[T]]()
}

func (resParamState[T]) filter() Filter {
	return ResourceAccess(reflect.TypeFor[T]())
}

// resourceParamState injects a previously inserted resource, either by
// value or as a pointer.
type resourceParamState struct {
	ptr reflect.Value

	// true if the system wants the pointer type
	mutable bool
}

func makeResourceParamState(rt *Runtime, ty reflect.Type) (SystemParamState, bool) {
	mutable := ty.Kind() == reflect.Pointer
	if mutable {
		ty = ty.Elem()
	}

	ptr, ok := rt.resources.get(ty)
	if !ok {
		return nil, false
	}

	return resourceParamState{ptr: ptr, mutable: mutable}, true
}

func (r resourceParamState) getValue() reflect.Value {
	if r.mutable {
		return r.ptr
	}

	return r.ptr.Elem()
}

func (r resourceParamState) valueType() reflect.Type {
	if r.mutable {
		return r.ptr.Type()
	}

	return r.ptr.Type().Elem()
}

func (r resourceParamState) filter() Filter {
	return ResourceAccess(r.ptr.Type().Elem())
}

// ResourceOf returns a pointer to the resource of type T.
func ResourceOf[T any](rt *Runtime) (*T, bool) {
	ptr, ok := rt.resources.get(reflect.TypeFor[T]())
	if !ok {
		return nil, false
	}

	return ptr.Interface().(*T), true
}

// GetOrInit returns a pointer to the resource of type T, creating it with
// its zero value if needed.
func GetOrInit[T any](rt *Runtime) *T {
	return rt.resources.getOrInit(reflect.TypeFor[T]()).Interface().(*T)
}
