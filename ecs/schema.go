package ecs

import (
	"fmt"
	"reflect"

	"github.com/kamstrup/intmap"
)

// SchemaID identifies a shared schema within a Registry.
type SchemaID int

// CustomSchemaID is the id carried by every custom schema.
const CustomSchemaID SchemaID = -1

// field records which type was laid out at a byte offset.
type field struct {
	component ComponentID
	offset    int
	size      int
	typ       reflect.Type
}

// Schema defines which components, controllers, methods and view an entity
// has, and how its component bytes are laid out.
//
// Shared schemas are registered with the Registry and never mutated through an
// entity. The exported mutators refuse to change a schema once any entity
// holds it. Custom schemas are private to the entities that created them and
// are released when their last entity lets go.
type Schema struct {
	registry *Registry
	id       SchemaID
	name     string
	parent   *Schema

	components  IdMap // component id -> byte offset
	controllers IdMap // controller id -> enable bit index
	methods     IdMap // method id -> index into methodImpls
	methodImpls []any
	view        ViewID
	defaults    ByteBuffer

	fields []field
	layout *intmap.Map[int, int] // component id (aliases included) -> index into fields

	instances int
	serial    int // creation order of a custom schema once an entity holds it
	released  bool
}

func newSchema(r *Registry, id SchemaID, name string, parent *Schema) *Schema {
	return &Schema{
		registry: r,
		id:       id,
		name:     name,
		parent:   parent,
		view:     NoView,
		layout:   intmap.New[int, int](8),
	}
}

// copyOf returns a schema with the given id and parent whose index structures
// are copies of s.
func (s *Schema) copyOf(id SchemaID, name string, parent *Schema) *Schema {
	c := newSchema(s.registry, id, name, parent)
	c.components = s.components.Clone()
	c.controllers = s.controllers.Clone()
	c.methods = s.methods.Clone()
	c.methodImpls = append([]any(nil), s.methodImpls...)
	c.view = s.view
	c.defaults.CopyFrom(&s.defaults)
	c.fields = append([]field(nil), s.fields...)
	for id, i := range s.layout.All() {
		c.layout.Put(id, i)
	}
	return c
}

// Extend returns a new, unregistered schema with the given id, a copy of every
// index structure of s and s as its parent.
func (s *Schema) Extend(id SchemaID) *Schema {
	return s.copyOf(id, "", s)
}

// ID returns the schema id, or CustomSchemaID for custom schemas.
func (s *Schema) ID() SchemaID { return s.id }

// Name returns the schema name. Custom schemas inherit the name of the schema
// they were specialized from.
func (s *Schema) Name() string { return s.name }

// Parent returns the schema this one was derived from, if any.
func (s *Schema) Parent() *Schema { return s.parent }

// Registry returns the registry that owns the schema's definitions.
func (s *Schema) Registry() *Registry { return s.registry }

// IsCustom reports whether the schema is private to its entities.
func (s *Schema) IsCustom() bool { return s.id == CustomSchemaID }

// Instances returns the number of live entities referencing the schema.
func (s *Schema) Instances() int { return s.instances }

// Released reports whether a custom schema has been released by its last
// entity.
func (s *Schema) Released() bool { return s.released }

// Size returns the number of component bytes every entity of the schema holds.
func (s *Schema) Size() int { return s.defaults.Len() }

// DefaultBytes returns the default component bytes. The slice must not be
// modified.
func (s *Schema) DefaultBytes() []byte { return s.defaults.Bytes() }

// HasComponent reports whether the schema carries the component.
func (s *Schema) HasComponent(id ComponentID) bool {
	return s.components.Has(int(id))
}

// ComponentOffset returns the byte offset of a component the schema carries.
func (s *Schema) ComponentOffset(id ComponentID) int {
	return s.components.Index(int(id))
}

// ComponentOffsetSafe returns the byte offset of a component, or -1.
func (s *Schema) ComponentOffsetSafe(id ComponentID) int {
	return s.components.IndexSafe(int(id))
}

// ComponentCount returns the number of canonical components.
func (s *Schema) ComponentCount() int { return s.components.Len() }

// ComponentIDs returns the canonical component ids in layout order.
func (s *Schema) ComponentIDs() []ComponentID {
	out := make([]ComponentID, 0, s.components.Len())
	for _, id := range s.components.IDs() {
		out = append(out, ComponentID(id))
	}
	return out
}

// ComponentSet returns the component membership set, aliases included. The
// set must not be modified.
func (s *Schema) ComponentSet() IdSet { return s.components.Set() }

// HasController reports whether the schema carries the controller.
func (s *Schema) HasController(id ControllerID) bool {
	return s.controllers.Has(int(id))
}

// ControllerIndex returns the enable bit index of a controller the schema
// carries.
func (s *Schema) ControllerIndex(id ControllerID) int {
	return s.controllers.Index(int(id))
}

// ControllerIndexSafe returns the enable bit index of a controller, or -1.
func (s *Schema) ControllerIndexSafe(id ControllerID) int {
	return s.controllers.IndexSafe(int(id))
}

// ControllerCount returns the number of canonical controllers.
func (s *Schema) ControllerCount() int { return s.controllers.Len() }

// ControllerIDs returns the canonical controller ids in index order.
func (s *Schema) ControllerIDs() []ControllerID {
	out := make([]ControllerID, 0, s.controllers.Len())
	for _, id := range s.controllers.IDs() {
		out = append(out, ControllerID(id))
	}
	return out
}

// HasMethod reports whether the schema carries the method.
func (s *Schema) HasMethod(id MethodID) bool {
	return s.methods.Has(int(id))
}

// MethodCount returns the number of methods.
func (s *Schema) MethodCount() int { return s.methods.Len() }

// View returns the schema's view, or NoView.
func (s *Schema) View() ViewID { return s.view }

// Add appends the default bytes of a stored component and records its offset.
// It reports false if the component is already present, is not a stored
// kind, or the schema already has entities.
func (s *Schema) Add(id ComponentID) bool {
	return s.instances == 0 && s.add(id)
}

func (s *Schema) add(id ComponentID) bool {
	if s.HasComponent(id) {
		return false
	}
	kind, ok := s.registry.ComponentSafe(id)
	if !ok || !kind.Stored() {
		return false
	}
	offset := s.defaults.Append(&kind.Default)
	s.components.Add(int(id), offset)
	s.layout.Put(int(id), len(s.fields))
	s.fields = append(s.fields, field{
		component: id,
		offset:    offset,
		size:      kind.Size(),
		typ:       kind.Type,
	})
	return true
}

// AddController gives the controller the next enable bit index. It reports
// false if the controller is already present or the schema already has
// entities.
func (s *Schema) AddController(id ControllerID) bool {
	return s.instances == 0 && s.addController(id)
}

func (s *Schema) addController(id ControllerID) bool {
	if s.HasController(id) {
		return false
	}
	s.controllers.AddNext(int(id))
	return true
}

// AddMethod adds a method with its registered default implementation. It
// reports false if the method is already present or the schema already has
// entities.
func (s *Schema) AddMethod(id MethodID) bool {
	return s.instances == 0 && s.addMethod(id)
}

func (s *Schema) addMethod(id MethodID) bool {
	if s.HasMethod(id) {
		return false
	}
	entry := s.registry.method(id)
	s.methods.AddNext(int(id))
	s.methodImpls = append(s.methodImpls, entry.impl)
	return true
}

// SetMethod replaces the implementation of a method the schema carries. It
// reports false if the method is absent or the schema already has entities.
func (s *Schema) SetMethod(id MethodID, impl any) bool {
	return s.instances == 0 && s.setMethodImpl(id, impl)
}

func (s *Schema) setMethodImpl(id MethodID, impl any) bool {
	index := s.methods.IndexSafe(int(id))
	if index < 0 {
		return false
	}
	s.methodImpls[index] = impl
	return true
}

// SetView replaces the schema's view. It reports false once the schema has
// entities.
func (s *Schema) SetView(view ViewID) bool {
	if s.instances > 0 {
		return false
	}
	s.view = view
	return true
}

// SetComponentAlias makes alias resolve to the bytes of id. A registered
// stored alias must share the type of id, and alias must not already be part
// of the schema. It reports whether the alias was recorded.
func (s *Schema) SetComponentAlias(id, alias ComponentID) bool {
	if s.instances > 0 {
		return false
	}
	i, ok := s.layout.Get(int(id))
	if !ok {
		return false
	}
	if kind, ok := s.registry.ComponentSafe(alias); ok && kind.Stored() && kind.Type != s.fields[i].typ {
		return false
	}
	if !s.components.Alias(int(id), int(alias)) {
		return false
	}
	s.layout.Put(int(alias), i)
	return true
}

// SetControllerAlias makes alias share the enable bit of id. It reports false
// if alias is already part of the schema or the schema has entities.
func (s *Schema) SetControllerAlias(id, alias ControllerID) bool {
	return s.instances == 0 && s.controllers.Alias(int(id), int(alias))
}

// SetDefault changes the default value a component takes in new entities of
// this schema.
func SetDefault[T any](s *Schema, c Component[T], value T) bool {
	offset, ok := s.typedOffset(c.id, reflect.TypeFor[T]())
	if !ok {
		return false
	}
	Store(&s.defaults, offset, value)
	return true
}

// AddCustomComponent returns a schema like s that also carries the component.
// s itself is only changed when it is a custom schema held by at most one
// entity. A new custom schema is accounted for once an entity holds it.
func (s *Schema) AddCustomComponent(id ComponentID) *Schema {
	if s.HasComponent(id) {
		return s
	}
	target := s.custom()
	target.add(id)
	return target
}

// AddCustomController returns a schema like s that also carries the
// controller.
func (s *Schema) AddCustomController(id ControllerID) *Schema {
	if s.HasController(id) {
		return s
	}
	target := s.custom()
	target.addController(id)
	return target
}

// AddCustomMethod returns a schema like s that also carries the method.
func (s *Schema) AddCustomMethod(id MethodID) *Schema {
	if s.HasMethod(id) {
		return s
	}
	target := s.custom()
	target.addMethod(id)
	return target
}

// SetCustomMethod returns a schema like s where the method uses impl.
func (s *Schema) SetCustomMethod(id MethodID, impl any) *Schema {
	if !s.HasMethod(id) {
		return s
	}
	target := s.custom()
	target.setMethodImpl(id, impl)
	return target
}

// SetCustomView returns a schema like s with a different view.
func (s *Schema) SetCustomView(view ViewID) *Schema {
	if s.view == view {
		return s
	}
	target := s.custom()
	target.view = view
	return target
}

// custom returns a schema that may be mutated on behalf of a single entity:
// s itself when it is custom and held by at most one entity, otherwise a new
// custom copy of s.
func (s *Schema) custom() *Schema {
	if s.IsCustom() && s.instances <= 1 {
		return s
	}
	return s.copyOf(CustomSchemaID, s.name, s)
}

// addInstance records a new entity holding s. A custom schema is accounted as
// live from its first entity on.
func (s *Schema) addInstance() {
	if s.IsCustom() && s.instances == 0 && (s.serial == 0 || s.released) {
		s.released = false
		s.registry.customCreated(s)
	}
	s.instances++
}

func (s *Schema) removeInstance() {
	s.instances--
	if s.IsCustom() && s.instances == 0 && !s.released {
		s.released = true
		s.registry.customReleased(s)
	}
}

func (s *Schema) fieldOf(id ComponentID) (field, bool) {
	i, ok := s.layout.Get(int(id))
	if !ok {
		return field{}, false
	}
	return s.fields[i], true
}

// typedOffset resolves the offset of a component and checks that typ is the
// type laid out there.
func (s *Schema) typedOffset(id ComponentID, typ reflect.Type) (int, bool) {
	f, ok := s.fieldOf(id)
	if !ok || f.typ != typ {
		return 0, false
	}
	return f.offset, true
}

// mustTypedOffset is typedOffset for callers that have already checked the
// component is present.
func (s *Schema) mustTypedOffset(id ComponentID, typ reflect.Type) int {
	f, ok := s.fieldOf(id)
	if !ok {
		panic(fmt.Sprintf("ecs: component %d is not part of schema %s", id, s))
	}
	if f.typ != typ {
		panic(fmt.Sprintf("ecs: component %d is laid out as %v, not %v", id, f.typ, typ))
	}
	return f.offset
}

func (s *Schema) String() string {
	if s.IsCustom() {
		return fmt.Sprintf("Schema{custom of %q, components=%d, controllers=%d}", s.name, s.components.Len(), s.controllers.Len())
	}
	return fmt.Sprintf("Schema{%d %q, components=%d, controllers=%d}", s.id, s.name, s.components.Len(), s.controllers.Len())
}
