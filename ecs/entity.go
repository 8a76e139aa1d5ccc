package ecs

import (
	"cmp"
	"encoding/binary"
	"reflect"

	"github.com/cespare/xxhash/v2"
)

// Entity owns the component bytes of one object and references its Schema.
// Structural changes (adding components, controllers, methods or a view) move
// the entity onto a custom schema; shared schemas are never modified.
type Entity struct {
	schema     *Schema
	components ByteBuffer
	// disabled holds one bit per controller index. A clear bit means enabled,
	// so controllers added after creation start out enabled.
	disabled IdSet

	expired bool
	visible bool
	enabled bool
}

func newEntity(s *Schema) *Entity {
	e := &Entity{schema: s, visible: true, enabled: true}
	e.components.Append(&s.defaults)
	s.addInstance()
	return e
}

// Schema returns the entity's current schema, or nil once released.
func (e *Entity) Schema() *Schema {
	return e.schema
}

// Registry returns the registry of the entity's schema.
func (e *Entity) Registry() *Registry {
	return e.schema.registry
}

// Components returns the entity's component bytes. The buffer must not be
// resized.
func (e *Entity) Components() *ByteBuffer {
	return &e.components
}

// Has reports whether the entity carries the component.
func (e *Entity) Has(id ComponentID) bool {
	return e.schema.HasComponent(id)
}

// HasAll reports whether the entity carries every component in required.
func (e *Entity) HasAll(required IdSet) bool {
	return e.schema.components.Set().Contains(required)
}

// HasAny reports whether the entity carries at least one component in ids.
func (e *Entity) HasAny(ids IdSet) bool {
	return e.schema.components.Set().Intersects(ids)
}

// HasController reports whether the entity's schema carries the controller.
func (e *Entity) HasController(id ControllerID) bool {
	return e.schema.HasController(id)
}

// HasMethod reports whether the entity's schema carries the method.
func (e *Entity) HasMethod(id MethodID) bool {
	return e.schema.HasMethod(id)
}

// Get returns the value of a component the entity carries. Reading a
// component the entity lacks panics; check Has first or use GetSafe.
func Get[T any](e *Entity, c Component[T]) T {
	return GetByID[T](e, c.id)
}

// GetSafe returns the value of a component, or fallback if the entity lacks
// it.
func GetSafe[T any](e *Entity, c Component[T], fallback T) T {
	return GetByIDSafe(e, c.id, fallback)
}

// Set writes the value of a component the entity carries. Writing a component
// the entity lacks panics; check Has first or use SetSafe.
func Set[T any](e *Entity, c Component[T], value T) {
	SetByID(e, c.id, value)
}

// SetSafe writes the value of a component, reporting false if the entity
// lacks it.
func SetSafe[T any](e *Entity, c Component[T], value T) bool {
	return SetByIDSafe(e, c.id, value)
}

// Modify applies fn to the value of a component in place. It reports false if
// the entity lacks the component.
func Modify[T any](e *Entity, c Component[T], fn func(v *T)) bool {
	offset, ok := e.schema.typedOffset(c.id, reflect.TypeFor[T]())
	if !ok {
		return false
	}
	v := Load[T](&e.components, offset)
	fn(&v)
	Store(&e.components, offset, v)
	return true
}

// GetByID reads component id as a T. It panics if the entity lacks the
// component or it was laid out with another type.
func GetByID[T any](e *Entity, id ComponentID) T {
	return Load[T](&e.components, e.schema.mustTypedOffset(id, reflect.TypeFor[T]()))
}

// GetByIDSafe reads component id as a T, or returns fallback if the entity
// lacks it or it holds another type.
func GetByIDSafe[T any](e *Entity, id ComponentID, fallback T) T {
	offset, ok := e.schema.typedOffset(id, reflect.TypeFor[T]())
	if !ok {
		return fallback
	}
	v, ok := LoadSafe[T](&e.components, offset)
	if !ok {
		return fallback
	}
	return v
}

// SetByID writes component id as a T. It panics if the entity lacks the
// component or it was laid out with another type.
func SetByID[T any](e *Entity, id ComponentID, value T) {
	Store(&e.components, e.schema.mustTypedOffset(id, reflect.TypeFor[T]()), value)
}

// SetByIDSafe writes component id as a T, reporting false if the entity lacks
// it or it holds another type.
func SetByIDSafe[T any](e *Entity, id ComponentID, value T) bool {
	offset, ok := e.schema.typedOffset(id, reflect.TypeFor[T]())
	if !ok {
		return false
	}
	return StoreSafe(&e.components, offset, value)
}

// Compute evaluates a computed component, or returns fallback when the entity
// lacks a component the derivation requires. Nothing is cached.
func Compute[T any](e *Entity, c ComputedGet[T], fallback T) T {
	if !e.HasAll(c.required) {
		return fallback
	}
	return c.get(e)
}

// Assign applies value through a computed-set component. It reports false when
// the entity lacks a component the transform writes to.
func Assign[T any](e *Entity, c ComputedSet[T], value T) bool {
	if !e.HasAll(c.required) {
		return false
	}
	c.set(e, value)
	return true
}

// Add gives the entity a stored component with its default value. It reports
// false if the component is already present or not a stored kind.
func (e *Entity) Add(id ComponentID) bool {
	if e.Has(id) {
		return false
	}
	kind, ok := e.schema.registry.ComponentSafe(id)
	if !ok || !kind.Stored() {
		return false
	}
	e.setSchema(e.schema.AddCustomComponent(id))
	e.components.Append(&kind.Default)
	return true
}

// AddWithValue gives the entity a stored component holding value. It reports
// false, leaving the current value untouched, if the component is already
// present.
func AddWithValue[T any](e *Entity, c Component[T], value T) bool {
	if !e.Add(c.id) {
		return false
	}
	Set(e, c, value)
	return true
}

// AddController gives the entity a controller, enabled. It reports false if
// the controller is already present.
func (e *Entity) AddController(id ControllerID) bool {
	if e.HasController(id) {
		return false
	}
	e.setSchema(e.schema.AddCustomController(id))
	e.disabled.Set(e.schema.ControllerIndex(id), false)
	return true
}

// SetView changes the entity's view. It reports false if the view is
// unchanged.
func (e *Entity) SetView(view ViewID) bool {
	if e.schema.view == view {
		return false
	}
	e.setSchema(e.schema.SetCustomView(view))
	return true
}

// AddMethod gives the entity a method with its default implementation. It
// reports false if the method is already present.
func (e *Entity) AddMethod(id MethodID) bool {
	if e.HasMethod(id) {
		return false
	}
	e.setSchema(e.schema.AddCustomMethod(id))
	return true
}

// SetMethod overrides the implementation of a method for this entity only. It
// reports false if the entity lacks the method.
func SetMethod[A, R any](e *Entity, m Method[A, R], fn MethodFunc[A, R]) bool {
	if !e.HasMethod(m.id) {
		return false
	}
	e.setSchema(e.schema.SetCustomMethod(m.id, fn))
	return true
}

// Call invokes a method. It reports false when the entity lacks the method or
// a component the method requires.
func Call[A, R any](e *Entity, m Method[A, R], arg A) (R, bool) {
	var zero R
	index := e.schema.methods.IndexSafe(int(m.id))
	if index < 0 {
		return zero, false
	}
	if !e.HasAll(e.schema.registry.method(m.id).required) {
		return zero, false
	}
	fn, ok := e.schema.methodImpls[index].(MethodFunc[A, R])
	if !ok {
		return zero, false
	}
	return fn(e, arg), true
}

// setSchema points the entity at s, moving its reference from the old schema.
func (e *Entity) setSchema(s *Schema) {
	if s == e.schema {
		return
	}
	s.addInstance()
	if e.schema != nil {
		e.schema.removeInstance()
	}
	e.schema = s
}

// Update runs every enabled controller whose required components the entity
// carries, in controller index order. state is passed through unexamined.
func (e *Entity) Update(state any) {
	if !e.enabled || e.schema == nil {
		return
	}
	registry := e.schema.registry
	for index, id := range e.schema.controllers.IDs() {
		if e.schema == nil {
			return
		}
		if e.disabled.Get(index) {
			continue
		}
		controller := registry.Controller(ControllerID(id))
		if !e.HasAll(controller.Required()) {
			continue
		}
		controller.Control(e, state)
	}
}

// Draw runs the entity's view when the entity is visible and carries the
// components the view requires.
func (e *Entity) Draw(state any) {
	if !e.visible || e.schema == nil {
		return
	}
	view, ok := e.schema.registry.ViewSafe(e.schema.view)
	if !ok || !e.HasAll(view.Required()) {
		return
	}
	view.Draw(e, state)
}

// IsControllerEnabled reports whether a controller the entity carries is
// enabled.
func (e *Entity) IsControllerEnabled(id ControllerID) bool {
	index := e.schema.ControllerIndexSafe(id)
	return index >= 0 && !e.disabled.Get(index)
}

// SetControllerEnabled enables or disables a controller for this entity only.
// It reports false if the entity lacks the controller.
func (e *Entity) SetControllerEnabled(id ControllerID, enabled bool) bool {
	index := e.schema.ControllerIndexSafe(id)
	if index < 0 {
		return false
	}
	e.disabled.Set(index, !enabled)
	return true
}

// EnableController enables a controller for this entity.
func (e *Entity) EnableController(id ControllerID) bool {
	return e.SetControllerEnabled(id, true)
}

// DisableController disables a controller for this entity.
func (e *Entity) DisableController(id ControllerID) bool {
	return e.SetControllerEnabled(id, false)
}

// SetControllersEnabled enables or disables every controller of the entity.
func (e *Entity) SetControllersEnabled(enabled bool) {
	if enabled {
		e.disabled.Clear()
		return
	}
	for i := 0; i < e.schema.ControllerCount(); i++ {
		e.disabled.Set(i, true)
	}
}

// Expire marks the entity for removal by its owner.
func (e *Entity) Expire() { e.expired = true }

// IsExpired reports whether the entity was expired.
func (e *Entity) IsExpired() bool { return e.expired }

// SetVisible sets whether Draw runs the entity's view.
func (e *Entity) SetVisible(visible bool) { e.visible = visible }

// Show makes the entity visible.
func (e *Entity) Show() { e.visible = true }

// Hide makes the entity invisible.
func (e *Entity) Hide() { e.visible = false }

// IsVisible reports whether the entity is drawn.
func (e *Entity) IsVisible() bool { return e.visible }

// SetEnabled sets whether Update runs the entity's controllers.
func (e *Entity) SetEnabled(enabled bool) { e.enabled = enabled }

// Enable enables updates.
func (e *Entity) Enable() { e.enabled = true }

// Disable suspends updates.
func (e *Entity) Disable() { e.enabled = false }

// IsEnabled reports whether the entity is updated.
func (e *Entity) IsEnabled() bool { return e.enabled }

// Clone returns an entity sharing this entity's schema with a copy of its
// component bytes, controller flags and status.
func (e *Entity) Clone() *Entity {
	c := &Entity{
		schema:   e.schema,
		disabled: e.disabled.Clone(),
		expired:  e.expired,
		visible:  e.visible,
		enabled:  e.enabled,
	}
	c.components.CopyFrom(&e.components)
	e.schema.addInstance()
	return c
}

// Release drops the entity's reference to its schema. A custom schema is
// released with its last entity. The entity must not be used afterwards;
// releasing twice is a no-op.
func (e *Entity) Release() {
	if e.schema == nil {
		return
	}
	e.schema.removeInstance()
	e.schema = nil
}

// Released reports whether Release was called.
func (e *Entity) Released() bool {
	return e.schema == nil
}

// Equal reports whether both entities reference the same schema and hold
// identical component bytes.
func (e *Entity) Equal(other *Entity) bool {
	return e.schema == other.schema && e.components.Equal(&other.components)
}

// Compare orders entities by schema id and then by component bytes. Entities
// of distinct custom schemas with identical bytes are ordered by the order in
// which their schemas came into use, so Compare is zero exactly when Equal
// holds.
func (e *Entity) Compare(other *Entity) int {
	if c := cmp.Compare(e.schema.id, other.schema.id); c != 0 {
		return c
	}
	if c := e.components.Compare(&other.components); c != 0 {
		return c
	}
	return cmp.Compare(e.schema.serial, other.schema.serial)
}

// Hash combines the schema id and the component bytes.
func (e *Entity) Hash() uint64 {
	var id [8]byte
	binary.LittleEndian.PutUint64(id[:], uint64(e.schema.id))
	d := xxhash.New()
	_, _ = d.Write(id[:])
	_, _ = d.Write(e.components.Bytes())
	return d.Sum64()
}
