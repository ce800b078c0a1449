package krajc

import (
	"fmt"
	"reflect"
)

type FilterKind uint8

const (
	// FilterTransparent touches no shared state and is compatible with
	// everything except FilterOpaque.
	FilterTransparent FilterKind = iota

	// FilterResource accesses a single resource type exclusively.
	FilterResource

	// FilterQuery accesses components as described by an Access.
	FilterQuery

	// FilterOpaque might access anything and is incompatible with every filter.
	FilterOpaque
)

func (k FilterKind) String() string {
	switch k {
	case FilterTransparent:
		return "Transparent"
	case FilterResource:
		return "Resource"
	case FilterQuery:
		return "Query"
	case FilterOpaque:
		return "Opaque"
	default:
		return fmt.Sprintf("FilterKind(%d)", uint8(k))
	}
}

// Filter describes the shared state a single system parameter touches.
// Two systems may run at the same time only if all of their filters are
// pairwise compatible.
type Filter struct {
	kind     FilterKind
	resource reflect.Type
	access   Access
}

func Transparent() Filter {
	return Filter{kind: FilterTransparent}
}

func Opaque() Filter {
	return Filter{kind: FilterOpaque}
}

// ResourceAccess creates a filter for exclusive access to the resource type ty.
func ResourceAccess(ty reflect.Type) Filter {
	return Filter{kind: FilterResource, resource: ty}
}

func QueryAccess(access Access) Filter {
	return Filter{kind: FilterQuery, access: access}
}

func (f Filter) Kind() FilterKind {
	return f.kind
}

// CompatibleWith reports whether parameters with the filters f and other may be
// accessed at the same time. The relation is symmetric.
func (f Filter) CompatibleWith(other Filter) bool {
	if f.kind == FilterOpaque || other.kind == FilterOpaque {
		return false
	}

	switch f.kind {
	case FilterResource:
		return other.kind != FilterResource || other.resource != f.resource

	case FilterQuery:
		return other.kind != FilterQuery || !f.access.ConflictsWith(&other.access)

	default:
		return true
	}
}

func (f Filter) String() string {
	switch f.kind {
	case FilterResource:
		return fmt.Sprintf("Resource(%s)", f.resource)
	case FilterQuery:
		return fmt.Sprintf("Query(%s)", f.access.String())
	default:
		return f.kind.String()
	}
}

// Compatible reports whether two systems with the given filter lists may run
// concurrently. Every pair is checked from both sides.
func Compatible(lhs, rhs []Filter) bool {
	for _, a := range lhs {
		for _, b := range rhs {
			if !a.CompatibleWith(b) || !b.CompatibleWith(a) {
				return false
			}
		}
	}

	return true
}
