package assert

import (
	"fmt"
	"reflect"
)

// NonPointer panics if t is a pointer type. what names the value in the message,
// e.g. "resource" or "component".
func NonPointer(t reflect.Type, what string) {
	if t == nil {
		panic(fmt.Sprintf("%s must not be nil", what))
	}

	if t.Kind() == reflect.Pointer {
		panic(fmt.Sprintf("%s must not be a pointer, got %s", what, t))
	}
}

// Struct panics if t is not a struct type.
func Struct(t reflect.Type, what string) {
	NonPointer(t, what)

	if t.Kind() != reflect.Struct {
		panic(fmt.Sprintf("%s must be a struct, got %s", what, t))
	}
}
