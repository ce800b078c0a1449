package krajc

import (
	"log/slog"
	"reflect"
	"strconv"
)

type EntityId uint32

const NoEntityId EntityId = 0

func (e EntityId) String() string {
	return strconv.Itoa(int(e))
}

func (e EntityId) LogValue() slog.Value {
	return slog.Uint64Value(uint64(e))
}

// column holds every value of a single component type. Values are stored
// as pointers to individually allocated components, so a pointer handed
// out by a query stays valid while the column grows.
type column struct {
	entities []EntityId
	values   []reflect.Value
	index    map[EntityId]int
}

func (c *column) get(entityId EntityId) (reflect.Value, bool) {
	idx, ok := c.index[entityId]
	if !ok {
		return reflect.Value{}, false
	}

	return c.values[idx], true
}

func (c *column) put(entityId EntityId, ptr reflect.Value) {
	if idx, ok := c.index[entityId]; ok {
		c.values[idx].Elem().Set(ptr.Elem())
		return
	}

	c.index[entityId] = len(c.entities)
	c.entities = append(c.entities, entityId)
	c.values = append(c.values, ptr)
}

func (c *column) remove(entityId EntityId) bool {
	idx, ok := c.index[entityId]
	if !ok {
		return false
	}

	last := len(c.entities) - 1

	// move the last value into the free slot
	c.entities[idx] = c.entities[last]
	c.values[idx] = c.values[last]
	c.index[c.entities[idx]] = idx

	c.values[last] = reflect.Value{}
	c.entities = c.entities[:last]
	c.values = c.values[:last]

	delete(c.index, entityId)

	return true
}

// World holds all entities and their components.
//
// Structural changes must not happen while other systems access the world.
// A system taking *World as a parameter never runs concurrently with any
// other system, so it is free to spawn and despawn.
type World struct {
	entitySeq EntityId
	entities  []EntityId
	alive     map[EntityId]int
	columns   map[*ComponentType]*column
}

func NewWorld() *World {
	return &World{
		alive:   map[EntityId]int{},
		columns: map[*ComponentType]*column{},
	}
}

// Spawn creates a new entity holding the given components.
func (w *World) Spawn(components ...any) EntityId {
	w.entitySeq += 1
	entityId := w.entitySeq

	w.alive[entityId] = len(w.entities)
	w.entities = append(w.entities, entityId)

	w.insert(entityId, components)

	return entityId
}

// Insert adds the components to an existing entity. Components that
// already exist on the entity are replaced.
func (w *World) Insert(entityId EntityId, components ...any) bool {
	if !w.Exists(entityId) {
		return false
	}

	w.insert(entityId, components)
	return true
}

func (w *World) insert(entityId EntityId, components []any) {
	for _, component := range components {
		if component == nil {
			panic("can not insert a nil component")
		}

		value := reflect.ValueOf(component)
		componentType := ComponentTypeOf(value.Type())

		ptr := reflect.New(componentType.Type)
		ptr.Elem().Set(value)

		w.columnOf(componentType).put(entityId, ptr)
	}
}

// Remove removes the component of the given type from the entity.
func (w *World) Remove(entityId EntityId, componentType *ComponentType) bool {
	column, ok := w.columns[componentType]
	if !ok {
		return false
	}

	return column.remove(entityId)
}

// Despawn removes the entity including all of its components.
func (w *World) Despawn(entityId EntityId) bool {
	idx, ok := w.alive[entityId]
	if !ok {
		return false
	}

	for _, column := range w.columns {
		column.remove(entityId)
	}

	last := len(w.entities) - 1
	w.entities[idx] = w.entities[last]
	w.alive[w.entities[idx]] = idx
	w.entities = w.entities[:last]

	delete(w.alive, entityId)

	return true
}

func (w *World) Exists(entityId EntityId) bool {
	_, ok := w.alive[entityId]
	return ok
}

// Len returns the number of living entities.
func (w *World) Len() int {
	return len(w.entities)
}

func (w *World) columnOf(componentType *ComponentType) *column {
	c, ok := w.columns[componentType]
	if !ok {
		c = &column{index: map[EntityId]int{}}
		w.columns[componentType] = c
	}

	return c
}

func (w *World) component(entityId EntityId, componentType *ComponentType) (reflect.Value, bool) {
	column, ok := w.columns[componentType]
	if !ok {
		return reflect.Value{}, false
	}

	return column.get(entityId)
}

// ComponentOf returns a pointer to the component C of the given entity.
func ComponentOf[C any](w *World, entityId EntityId) (*C, bool) {
	ptr, ok := w.component(entityId, ComponentTypeFor[C]())
	if !ok {
		return nil, false
	}

	return ptr.Interface().(*C), true
}

// RemoveComponent removes the component C from the given entity.
func RemoveComponent[C any](w *World, entityId EntityId) bool {
	return w.Remove(entityId, ComponentTypeFor[C]())
}
