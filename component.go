package krajc

import (
	"log/slog"
	"maps"
	"reflect"
	"sync/atomic"

	"github.com/oliverbestmann/krajc/internal/assert"
)

// ComponentTypeId identifies a component type within the process. Ids are
// handed out densely, starting at one.
type ComponentTypeId uint32

type ComponentType struct {
	Id   ComponentTypeId
	Name string
	Type reflect.Type
}

func (c *ComponentType) String() string {
	return c.Name
}

func (c *ComponentType) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("name", c.Name),
		slog.Uint64("id", uint64(c.Id)),
	)
}

var componentTypes atomic.Pointer[map[reflect.Type]*ComponentType]

func init() {
	componentTypes.Store(&map[reflect.Type]*ComponentType{})
}

// ComponentTypeOf returns the ComponentType of ty, registering it on first use.
// Components must be struct types.
func ComponentTypeOf(ty reflect.Type) *ComponentType {
	for {
		previous := componentTypes.Load()

		if componentType, ok := (*previous)[ty]; ok {
			return componentType
		}

		assert.Struct(ty, "component")

		componentType := &ComponentType{
			Id:   ComponentTypeId(len(*previous) + 1),
			Name: ty.String(),
			Type: ty,
		}

		next := maps.Clone(*previous)
		next[ty] = componentType

		if componentTypes.CompareAndSwap(previous, &next) {
			slog.Debug(
				"New component type registered",
				slog.String("name", componentType.Name),
				slog.Uint64("id", uint64(componentType.Id)),
			)

			return componentType
		}
	}
}

func ComponentTypeFor[C any]() *ComponentType {
	return ComponentTypeOf(reflect.TypeFor[C]())
}
