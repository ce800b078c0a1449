package set

import (
	"cmp"
	"iter"
	"maps"
	"slices"
)

// Set provides a wrapper around a map[T]struct{}.
// The zero value is an empty set, ready to use.
type Set[T comparable] struct {
	values map[T]struct{}
}

func Of[T comparable](values ...T) Set[T] {
	var s Set[T]
	for _, value := range values {
		s.Insert(value)
	}

	return s
}

// Insert adds the value to the set and reports whether it was not yet present.
func (s *Set[T]) Insert(value T) bool {
	if s.values == nil {
		s.values = make(map[T]struct{})
	}

	if _, exists := s.values[value]; exists {
		return false
	}

	s.values[value] = struct{}{}
	return true
}

func (s *Set[T]) Remove(value T) {
	delete(s.values, value)
}

func (s *Set[T]) Has(value T) bool {
	_, exists := s.values[value]
	return exists
}

func (s *Set[T]) Values() iter.Seq[T] {
	return maps.Keys(s.values)
}

func (s *Set[T]) Len() int {
	return len(s.values)
}

// Sorted returns the values of the set in ascending order.
func Sorted[T cmp.Ordered](s *Set[T]) []T {
	return slices.Sorted(s.Values())
}
