package krajc

import (
	"fmt"
	"strings"

	"github.com/kelindar/bitmap"
)

// Access describes which component types are read and written by a query.
// The zero value describes a query that touches nothing.
type Access struct {
	reads  bitmap.Bitmap
	writes bitmap.Bitmap
}

func (a *Access) AddRead(componentType *ComponentType) {
	a.reads.Set(uint32(componentType.Id))
}

func (a *Access) AddWrite(componentType *ComponentType) {
	a.writes.Set(uint32(componentType.Id))
}

func (a *Access) Reads(componentType *ComponentType) bool {
	return a.reads.Contains(uint32(componentType.Id))
}

func (a *Access) Writes(componentType *ComponentType) bool {
	return a.writes.Contains(uint32(componentType.Id))
}

func (a *Access) IsEmpty() bool {
	return a.reads.Count() == 0 && a.writes.Count() == 0
}

// ConflictsWith reports whether both accesses can not happen at the same time,
// that is, if one of them writes a component type the other one reads or writes.
func (a *Access) ConflictsWith(other *Access) bool {
	return intersects(a.writes, other.writes) ||
		intersects(a.writes, other.reads) ||
		intersects(a.reads, other.writes)
}

func (a *Access) String() string {
	return fmt.Sprintf("reads=%s writes=%s", formatBitmap(a.reads), formatBitmap(a.writes))
}

func intersects(lhs, rhs bitmap.Bitmap) bool {
	var found bool

	lhs.Range(func(x uint32) {
		if !found && rhs.Contains(x) {
			found = true
		}
	})

	return found
}

func formatBitmap(b bitmap.Bitmap) string {
	var ids []string
	b.Range(func(x uint32) {
		ids = append(ids, fmt.Sprint(x))
	})

	return "{" + strings.Join(ids, ",") + "}"
}
