package refl

import (
	"iter"
	"reflect"
)

// BaseType strips all pointer indirections from ty.
func BaseType(ty reflect.Type) reflect.Type {
	for ty.Kind() == reflect.Pointer {
		ty = ty.Elem()
	}

	return ty
}

func IterFields(ty reflect.Type) iter.Seq[reflect.StructField] {
	return func(yield func(reflect.StructField) bool) {
		for idx := range ty.NumField() {
			if !yield(ty.Field(idx)) {
				return
			}
		}
	}
}

// ImplementsInterfaceDirectly checks if ty implements the interface If, and does
// not just get the implementation promoted from an embedded field.
func ImplementsInterfaceDirectly[If any](ty reflect.Type) bool {
	iface := reflect.TypeFor[If]()

	if !ty.Implements(iface) {
		return false
	}

	ty = BaseType(ty)
	if ty.Kind() != reflect.Struct {
		return true
	}

	for field := range IterFields(ty) {
		if !field.Anonymous {
			continue
		}

		if field.Type.Implements(iface) {
			return false
		}

		if reflect.PointerTo(field.Type).Implements(iface) {
			return false
		}
	}

	return true
}
