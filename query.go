package krajc

import (
	"fmt"
	"iter"
	"reflect"
	"slices"
)

// Query provides typed access to the components of all entities matching T.
//
// T must be a struct. Its fields define what the query fetches:
//
//	type movable struct {
//	    Id       EntityId        // id of the entity
//	    Position *Position       // mutable access to Position
//	    Velocity Velocity        // read-only copy of Velocity
//	    _        With[Player]    // entity must have a Player component
//	    _        Without[Frozen] // entity must not have a Frozen component
//	}
//
// Pointer fields count as writes, value fields as reads. Two systems whose
// queries conflict on a component never run at the same time.
type Query[T any] struct {
	state *queryState
}

type queryState struct {
	plan  *queryPlan
	world *World
}

// NewQuery creates a query over the given world, outside any system.
func NewQuery[T any](w *World) (Query[T], error) {
	plan, err := parseQuery(reflect.TypeFor[T]())
	if err != nil {
		return Query[T]{}, err
	}

	return Query[T]{state: &queryState{plan: plan, world: w}}, nil
}

func (*Query[T]) init(ctx ParamContext) (SystemParamState, error) {
	query, err := NewQuery[T](ctx.Runtime.World())
	if err != nil {
		return nil, err
	}

	return queryParamState[T]{query: query}, nil
}

// Access returns the component access of this query.
func (q Query[T]) Access() Access {
	return q.state.plan.access
}

// Items iterates over all matching entities.
func (q Query[T]) Items() iter.Seq[T] {
	return func(yield func(T) bool) {
		var target T
		rTarget := reflect.ValueOf(&target).Elem()

		plan, world := q.state.plan, q.state.world

		candidates := plan.candidates(world)
		for idx := 0; idx < len(candidates); idx++ {
			entityId := candidates[idx]
			if !plan.matches(world, entityId) {
				continue
			}

			plan.fill(world, entityId, rTarget)

			if !yield(target) {
				return
			}
		}
	}
}

// Get fetches the item of a single entity.
func (q Query[T]) Get(entityId EntityId) (T, bool) {
	var target T

	plan, world := q.state.plan, q.state.world
	if !world.Exists(entityId) || !plan.matches(world, entityId) {
		return target, false
	}

	plan.fill(world, entityId, reflect.ValueOf(&target).Elem())
	return target, true
}

// Count returns the number of matching entities.
func (q Query[T]) Count() int {
	var count int

	plan, world := q.state.plan, q.state.world
	for _, entityId := range plan.candidates(world) {
		if plan.matches(world, entityId) {
			count++
		}
	}

	return count
}

// Single returns the only matching item. It returns false if there is no
// match, or more than one.
func (q Query[T]) Single() (T, bool) {
	var result T
	var count int

	for item := range q.Items() {
		count++
		if count > 1 {
			var zero T
			return zero, false
		}

		result = item
	}

	return result, count == 1
}

type queryParamState[T any] struct {
	query Query[T]
}

func (s queryParamState[T]) getValue() reflect.Value {
	return reflect.ValueOf(s.query)
}

func (queryParamState[T]) valueType() reflect.Type {
	return reflect.TypeFor[Query[T]]()
}

func (s queryParamState[T]) filter() Filter {
	return QueryAccess(s.query.state.plan.access)
}

// With requires the entity to have the component C, without fetching it.
type With[C any] struct{}

// Without requires the entity to not have the component C.
type Without[C any] struct{}

type queryFilterMarker interface {
	queryFilter() (componentType *ComponentType, required bool)
}

func (With[C]) queryFilter() (*ComponentType, bool) {
	return ComponentTypeFor[C](), true
}

func (Without[C]) queryFilter() (*ComponentType, bool) {
	return ComponentTypeFor[C](), false
}

type queryField struct {
	index         int
	componentType *ComponentType
	mutable       bool
}

type queryPlan struct {
	fields   []queryField
	entityId []int
	with     []*ComponentType
	without  []*ComponentType
	access   Access
}

func parseQuery(ty reflect.Type) (*queryPlan, error) {
	if ty.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: query type must be a struct, got %s", ErrUnsupportedParam, ty)
	}

	plan := &queryPlan{}

	for idx := range ty.NumField() {
		field := ty.Field(idx)

		switch {
		case field.Type.Implements(reflect.TypeFor[queryFilterMarker]()):
			marker := reflect.Zero(field.Type).Interface().(queryFilterMarker)

			componentType, required := marker.queryFilter()
			if required {
				plan.with = append(plan.with, componentType)
			} else {
				plan.without = append(plan.without, componentType)
			}

		case !field.IsExported():
			return nil, fmt.Errorf("%w: field %s of query %s is not exported", ErrUnsupportedParam, field.Name, ty)

		case field.Type == reflect.TypeFor[EntityId]():
			plan.entityId = append(plan.entityId, idx)

		case field.Type.Kind() == reflect.Pointer && field.Type.Elem().Kind() == reflect.Struct:
			componentType := ComponentTypeOf(field.Type.Elem())
			plan.fields = append(plan.fields, queryField{index: idx, componentType: componentType, mutable: true})
			plan.access.AddWrite(componentType)

		case field.Type.Kind() == reflect.Struct:
			componentType := ComponentTypeOf(field.Type)
			plan.fields = append(plan.fields, queryField{index: idx, componentType: componentType})
			plan.access.AddRead(componentType)

		default:
			return nil, fmt.Errorf("%w: field %s of query %s has unsupported type %s", ErrUnsupportedParam, field.Name, ty, field.Type)
		}
	}

	return plan, nil
}

// candidates returns the entities of the smallest required column, or all
// entities if the query does not require any component.
func (p *queryPlan) candidates(w *World) []EntityId {
	required := slices.Concat(p.with, fieldTypes(p.fields))
	if len(required) == 0 {
		return w.entities
	}

	var smallest *column
	for _, componentType := range required {
		column, ok := w.columns[componentType]
		if !ok {
			// no entity has this component
			return nil
		}

		if smallest == nil || len(column.entities) < len(smallest.entities) {
			smallest = column
		}
	}

	return smallest.entities
}

func (p *queryPlan) matches(w *World, entityId EntityId) bool {
	for _, field := range p.fields {
		if _, ok := w.component(entityId, field.componentType); !ok {
			return false
		}
	}

	for _, componentType := range p.with {
		if _, ok := w.component(entityId, componentType); !ok {
			return false
		}
	}

	for _, componentType := range p.without {
		if _, ok := w.component(entityId, componentType); ok {
			return false
		}
	}

	return true
}

func (p *queryPlan) fill(w *World, entityId EntityId, target reflect.Value) {
	for _, idx := range p.entityId {
		target.Field(idx).Set(reflect.ValueOf(entityId))
	}

	for _, field := range p.fields {
		ptr, _ := w.component(entityId, field.componentType)

		if field.mutable {
			target.Field(field.index).Set(ptr)
		} else {
			target.Field(field.index).Set(ptr.Elem())
		}
	}
}

func fieldTypes(fields []queryField) []*ComponentType {
	types := make([]*ComponentType, 0, len(fields))
	for _, field := range fields {
		types = append(types, field.componentType)
	}

	return types
}
