package ecs

import "reflect"

// ComponentID identifies a component kind within a Registry.
type ComponentID int

// KindTag discriminates the variants of a component kind.
type KindTag uint8

const (
	// KindStored components own bytes in every entity that carries them.
	KindStored KindTag = iota
	// KindComputedGet components derive a value from other components on read.
	KindComputedGet
	// KindComputedSet components transform a written value into other components.
	KindComputedSet
)

func (k KindTag) String() string {
	switch k {
	case KindStored:
		return "stored"
	case KindComputedGet:
		return "computed-get"
	case KindComputedSet:
		return "computed-set"
	default:
		return "unknown"
	}
}

// ComponentKind is the registry entry describing a component. Entries are
// created once and never mutated.
type ComponentKind struct {
	ID   ComponentID
	Name string
	Tag  KindTag
	Type reflect.Type

	// Default holds the default bytes of a stored kind.
	Default ByteBuffer
	// Required lists the components a computed kind reads or writes.
	Required IdSet
}

// Size returns the number of bytes a stored kind occupies in an entity.
func (k *ComponentKind) Size() int {
	return k.Default.Len()
}

// Stored reports whether the kind owns per-entity storage.
func (k *ComponentKind) Stored() bool {
	return k.Tag == KindStored
}

// Component is a typed handle to a stored component kind.
type Component[T any] struct {
	id ComponentID
}

// ID returns the component id.
func (c Component[T]) ID() ComponentID {
	return c.id
}

// ComputedGet is a typed handle to a component whose value is derived from
// other components each time it is read.
type ComputedGet[T any] struct {
	id       ComponentID
	required IdSet
	get      func(e *Entity) T
}

// ID returns the component id.
func (c ComputedGet[T]) ID() ComponentID {
	return c.id
}

// Required returns the components the derivation depends on.
func (c ComputedGet[T]) Required() IdSet {
	return c.required
}

// ComputedSet is a typed handle to a component that has no storage of its own
// and applies written values to other components.
type ComputedSet[T any] struct {
	id       ComponentID
	required IdSet
	set      func(e *Entity, value T)
}

// ID returns the component id.
func (c ComputedSet[T]) ID() ComponentID {
	return c.id
}

// Required returns the components the transform writes to.
func (c ComputedSet[T]) Required() IdSet {
	return c.required
}

// Requires builds a required-component set.
func Requires(ids ...ComponentID) IdSet {
	var s IdSet
	for _, id := range ids {
		s.Set(int(id), true)
	}
	return s
}

// checkStorable panics for types that cannot live in a byte buffer. Values
// holding Go pointers would be invisible to the garbage collector once copied
// into raw bytes.
func checkStorable(t reflect.Type) {
	if hasPointers(t) {
		panic("ecs: component type " + t.String() + " contains pointers; stored components must be plain values")
	}
}

func hasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Func, reflect.Interface,
		reflect.Slice, reflect.String, reflect.UnsafePointer:
		return true
	case reflect.Array:
		return t.Len() > 0 && hasPointers(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if hasPointers(t.Field(i).Type) {
				return true
			}
		}
	}
	return false
}
