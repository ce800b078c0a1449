package krajc

import (
	"fmt"
	"reflect"

	"github.com/oliverbestmann/krajc/internal/refl"
	"github.com/oliverbestmann/krajc/internal/typedpool"
)

var valueSlices = typedpool.New(func(values *[]reflect.Value) {
	// clear any pointers that are still in the param slice
	clear(*values)
	*values = (*values)[:0]
})

func prepareSystem(rt *Runtime, id RunnableId, name string, rSystem reflect.Value) ([]SystemParamState, bool, error) {
	systemType := rSystem.Type()

	if systemType.IsVariadic() {
		return nil, false, fmt.Errorf("%w: system %q is variadic", ErrUnsupportedParam, name)
	}

	returnsError, err := checkReturnTypes(systemType)
	if err != nil {
		return nil, false, fmt.Errorf("system %q: %w", name, err)
	}

	params := make([]SystemParamState, 0, systemType.NumIn())

	for idx := range systemType.NumIn() {
		inType := systemType.In(idx)

		ctx := ParamContext{
			Runtime:  rt,
			System:   id,
			Schedule: rt.owners[id],
			Name:     name,
			Position: idx + 1,
		}

		param, err := makeParamState(ctx, inType)
		if err != nil {
			return nil, false, fmt.Errorf("argument %d of system %q: %w", idx+1, name, err)
		}

		// verify that the param type matches the actual type
		if !param.valueType().AssignableTo(inType) {
			return nil, false, fmt.Errorf(
				"%w: argument %d of system %q has type %s, but the param provides %s",
				ErrUnsupportedParam, idx+1, name, inType, param.valueType(),
			)
		}

		params = append(params, param)
	}

	return params, returnsError, nil
}

func makeParamState(ctx ParamContext, inType reflect.Type) (SystemParamState, error) {
	rt := ctx.Runtime

	switch {
	case refl.ImplementsInterfaceDirectly[SystemParam](inType):
		return makeSystemParamState(ctx, inType)

	case refl.ImplementsInterfaceDirectly[SystemParam](reflect.PointerTo(inType)):
		return makeSystemParamState(ctx, inType)

	case inType == reflect.TypeFor[*World]():
		return valueSystemParamState{value: reflect.ValueOf(rt.world), access: Opaque()}, nil

	case inType == reflect.TypeFor[*Runtime]():
		return valueSystemParamState{value: reflect.ValueOf(rt), access: Opaque()}, nil
	}

	if param, ok := makeResourceParamState(rt, inType); ok {
		return param, nil
	}

	return nil, fmt.Errorf("%w: no resource of type %s", ErrUnsupportedParam, inType)
}

func makeSystemParamState(ctx ParamContext, ty reflect.Type) (SystemParamState, error) {
	ty = refl.BaseType(ty)

	// allocate a new instance on the heap and get the value as an interface
	param := reflect.New(ty).Interface().(SystemParam)

	return param.init(ctx)
}

func checkReturnTypes(systemType reflect.Type) (returnsError bool, err error) {
	switch {
	case systemType.NumOut() == 0:
		return false, nil

	case systemType.NumOut() == 1 && systemType.Out(0) == reflect.TypeFor[error]():
		return true, nil

	default:
		return false, fmt.Errorf("%w: a system may only return an error, got %s", ErrUnsupportedParam, systemType)
	}
}
