package ecs

import (
	"reflect"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// ErrUnknownName is returned by name lookups that match no registration.
var ErrUnknownName = eris.New("ecs: unknown name")

type controllerEntry struct {
	name       string
	controller Controller
}

type viewEntry struct {
	name string
	view View
}

type methodEntry struct {
	name     string
	required IdSet
	impl     any
}

// Registry owns every component kind, controller, view, method and shared
// schema of an ECS instance. Registrations are permanent and ids are stable.
// A Registry is not safe for concurrent use; register everything before the
// simulation loop starts.
type Registry struct {
	logger zerolog.Logger

	components  []*ComponentKind
	controllers []controllerEntry
	views       []viewEntry
	methods     []methodEntry
	schemas     []*Schema

	componentNames  map[string]ComponentID
	controllerNames map[string]ControllerID
	viewNames       map[string]ViewID
	methodNames     map[string]MethodID
	schemaNames     map[string]SchemaID

	customLive  int
	customTotal int
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for schema lifecycle events.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		logger:          zerolog.Nop(),
		componentNames:  make(map[string]ComponentID),
		controllerNames: make(map[string]ControllerID),
		viewNames:       make(map[string]ViewID),
		methodNames:     make(map[string]MethodID),
		schemaNames:     make(map[string]SchemaID),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Logger returns the registry logger.
func (r *Registry) Logger() *zerolog.Logger {
	return &r.logger
}

// NewComponent registers a stored component whose entities start with def.
// It panics if T holds pointers.
func NewComponent[T any](r *Registry, name string, def T) Component[T] {
	typ := reflect.TypeFor[T]()
	checkStorable(typ)
	kind := r.addComponent(name, KindStored, typ)
	Add(&kind.Default, def)
	return Component[T]{id: kind.ID}
}

// NewComputedGet registers a component derived by get from the components in
// required. It has no storage and is recomputed on every read.
func NewComputedGet[T any](r *Registry, name string, required IdSet, get func(e *Entity) T) ComputedGet[T] {
	kind := r.addComponent(name, KindComputedGet, reflect.TypeFor[T]())
	kind.Required = required.Clone()
	return ComputedGet[T]{id: kind.ID, required: kind.Required, get: get}
}

// NewComputedSet registers a component whose writes are applied by set to the
// components in required.
func NewComputedSet[T any](r *Registry, name string, required IdSet, set func(e *Entity, value T)) ComputedSet[T] {
	kind := r.addComponent(name, KindComputedSet, reflect.TypeFor[T]())
	kind.Required = required.Clone()
	return ComputedSet[T]{id: kind.ID, required: kind.Required, set: set}
}

func (r *Registry) addComponent(name string, tag KindTag, typ reflect.Type) *ComponentKind {
	kind := &ComponentKind{
		ID:   ComponentID(len(r.components)),
		Name: name,
		Tag:  tag,
		Type: typ,
	}
	r.components = append(r.components, kind)
	r.componentNames[name] = kind.ID
	return kind
}

// Component returns the kind registered under id. It panics for unknown ids.
func (r *Registry) Component(id ComponentID) *ComponentKind {
	return r.components[id]
}

// ComponentSafe returns the kind registered under id, if any.
func (r *Registry) ComponentSafe(id ComponentID) (*ComponentKind, bool) {
	if id < 0 || int(id) >= len(r.components) {
		return nil, false
	}
	return r.components[id], true
}

// ComponentCount returns the number of registered component kinds.
func (r *Registry) ComponentCount() int {
	return len(r.components)
}

// ComponentByName looks up a component kind by name.
func (r *Registry) ComponentByName(name string) (ComponentID, error) {
	id, ok := r.componentNames[name]
	if !ok {
		return 0, eris.Wrapf(ErrUnknownName, "component %q", name)
	}
	return id, nil
}

// NewController registers fn as a controller gated by required.
func (r *Registry) NewController(name string, required IdSet, fn ControllerFunc) ControllerID {
	return r.AddController(name, NewFuncController(required.Clone(), fn))
}

// AddController registers a controller implementation.
func (r *Registry) AddController(name string, c Controller) ControllerID {
	id := ControllerID(len(r.controllers))
	r.controllers = append(r.controllers, controllerEntry{name: name, controller: c})
	r.controllerNames[name] = id
	return id
}

// Controller returns the controller registered under id. It panics for
// unknown ids.
func (r *Registry) Controller(id ControllerID) Controller {
	return r.controllers[id].controller
}

// ControllerSafe returns the controller registered under id, if any.
func (r *Registry) ControllerSafe(id ControllerID) (Controller, bool) {
	if id < 0 || int(id) >= len(r.controllers) {
		return nil, false
	}
	return r.controllers[id].controller, true
}

// ControllerName returns the name a controller was registered with.
func (r *Registry) ControllerName(id ControllerID) string {
	return r.controllers[id].name
}

// ControllerCount returns the number of registered controllers.
func (r *Registry) ControllerCount() int {
	return len(r.controllers)
}

// ControllerByName looks up a controller by name.
func (r *Registry) ControllerByName(name string) (ControllerID, error) {
	id, ok := r.controllerNames[name]
	if !ok {
		return 0, eris.Wrapf(ErrUnknownName, "controller %q", name)
	}
	return id, nil
}

// NewView registers fn as a view gated by required.
func (r *Registry) NewView(name string, required IdSet, fn ViewFunc) ViewID {
	return r.AddView(name, NewFuncView(required.Clone(), fn))
}

// AddView registers a view implementation.
func (r *Registry) AddView(name string, v View) ViewID {
	id := ViewID(len(r.views))
	r.views = append(r.views, viewEntry{name: name, view: v})
	r.viewNames[name] = id
	return id
}

// View returns the view registered under id. It panics for unknown ids.
func (r *Registry) View(id ViewID) View {
	return r.views[id].view
}

// ViewSafe returns the view registered under id, if any. NoView is never
// found.
func (r *Registry) ViewSafe(id ViewID) (View, bool) {
	if id < 0 || int(id) >= len(r.views) || r.views[id].view == nil {
		return nil, false
	}
	return r.views[id].view, true
}

// ViewName returns the name a view was registered with.
func (r *Registry) ViewName(id ViewID) string {
	return r.views[id].name
}

// ViewCount returns the number of registered views.
func (r *Registry) ViewCount() int {
	return len(r.views)
}

// ViewByName looks up a view by name.
func (r *Registry) ViewByName(name string) (ViewID, error) {
	id, ok := r.viewNames[name]
	if !ok {
		return NoView, eris.Wrapf(ErrUnknownName, "view %q", name)
	}
	return id, nil
}

// NewMethod registers a method with its default implementation. The method is
// callable on an entity only while the entity carries every component in
// required.
func NewMethod[A, R any](r *Registry, name string, required IdSet, fn MethodFunc[A, R]) Method[A, R] {
	id := MethodID(len(r.methods))
	r.methods = append(r.methods, methodEntry{name: name, required: required.Clone(), impl: fn})
	r.methodNames[name] = id
	return Method[A, R]{id: id}
}

func (r *Registry) method(id MethodID) methodEntry {
	return r.methods[id]
}

// MethodName returns the name a method was registered with.
func (r *Registry) MethodName(id MethodID) string {
	return r.methods[id].name
}

// MethodCount returns the number of registered methods.
func (r *Registry) MethodCount() int {
	return len(r.methods)
}

// MethodByName looks up a method by name.
func (r *Registry) MethodByName(name string) (MethodID, error) {
	id, ok := r.methodNames[name]
	if !ok {
		return 0, eris.Wrapf(ErrUnknownName, "method %q", name)
	}
	return id, nil
}

// NewSchema registers a shared schema. Default bytes are laid out by appending
// each stored component's default value in the given order; computed kinds
// are skipped.
func (r *Registry) NewSchema(name string, components []ComponentID, controllers []ControllerID, view ViewID) *Schema {
	s := newSchema(r, SchemaID(len(r.schemas)), name, nil)
	for _, id := range components {
		s.add(id)
	}
	for _, id := range controllers {
		s.addController(id)
	}
	s.view = view
	r.RegisterSchema(s)
	return s
}

// ExtendSchema registers a new shared schema that starts as a copy of base.
func (r *Registry) ExtendSchema(base *Schema, name string) *Schema {
	s := base.Extend(SchemaID(len(r.schemas)))
	s.name = name
	r.RegisterSchema(s)
	return s
}

// RegisterSchema adds a schema created with Schema.Extend under its own id. It
// reports false for custom schemas, schemas of another registry, and ids that
// are already taken.
func (r *Registry) RegisterSchema(s *Schema) bool {
	if s.IsCustom() || s.registry != r || s.id < 0 {
		return false
	}
	if int(s.id) < len(r.schemas) && r.schemas[s.id] != nil {
		return false
	}
	for int(s.id) >= len(r.schemas) {
		r.schemas = append(r.schemas, nil)
	}
	r.schemas[s.id] = s
	if s.name != "" {
		r.schemaNames[s.name] = s.id
	}
	r.logger.Debug().
		Int("schema_id", int(s.id)).
		Str("schema_name", s.name).
		Int("components", s.ComponentCount()).
		Int("controllers", s.ControllerCount()).
		Int("size", s.Size()).
		Msg("schema registered")
	return true
}

// Schema returns the shared schema registered under id. It panics for unknown
// ids.
func (r *Registry) Schema(id SchemaID) *Schema {
	s := r.schemas[id]
	if s == nil {
		panic("ecs: schema id not registered")
	}
	return s
}

// SchemaSafe returns the shared schema registered under id, if any.
func (r *Registry) SchemaSafe(id SchemaID) (*Schema, bool) {
	if id < 0 || int(id) >= len(r.schemas) || r.schemas[id] == nil {
		return nil, false
	}
	return r.schemas[id], true
}

// SchemaCount returns the number of id slots for shared schemas.
func (r *Registry) SchemaCount() int {
	return len(r.schemas)
}

// SchemaByName looks up a shared schema by name.
func (r *Registry) SchemaByName(name string) (*Schema, error) {
	id, ok := r.schemaNames[name]
	if !ok {
		return nil, eris.Wrapf(ErrUnknownName, "schema %q", name)
	}
	return r.schemas[id], nil
}

// NewEntity creates an entity of schema s holding a copy of its default bytes.
func (r *Registry) NewEntity(s *Schema) *Entity {
	return newEntity(s)
}

// NewEntityByID creates an entity of the shared schema registered under id.
func (r *Registry) NewEntityByID(id SchemaID) *Entity {
	return newEntity(r.Schema(id))
}

// NewCustomEntity creates an entity with an empty custom schema.
func (r *Registry) NewCustomEntity() *Entity {
	return newEntity(newSchema(r, CustomSchemaID, "", nil))
}

// NewEntityWith creates an entity with exactly the given components,
// controllers and view. A shared schema with the same definition is reused;
// otherwise the entity gets a custom schema.
func (r *Registry) NewEntityWith(components []ComponentID, controllers []ControllerID, view ViewID) *Entity {
	if s := r.findSchema(Requires(components...), controllerSet(controllers), view); s != nil {
		return newEntity(s)
	}
	s := newSchema(r, CustomSchemaID, "", nil)
	for _, id := range components {
		s.add(id)
	}
	for _, id := range controllers {
		s.addController(id)
	}
	s.view = view
	return newEntity(s)
}

func (r *Registry) findSchema(components, controllers IdSet, view ViewID) *Schema {
	for _, s := range r.schemas {
		if s == nil || s.view != view {
			continue
		}
		if s.components.Set().Equal(components) && s.controllers.Set().Equal(controllers) {
			return s
		}
	}
	return nil
}

func controllerSet(ids []ControllerID) IdSet {
	var s IdSet
	for _, id := range ids {
		s.Set(int(id), true)
	}
	return s
}

func (r *Registry) customCreated(s *Schema) {
	r.customLive++
	r.customTotal++
	s.serial = r.customTotal
	ev := r.logger.Debug().Int("live_custom_schemas", r.customLive)
	if s.parent != nil {
		ev = ev.Int("parent_id", int(s.parent.id)).Str("parent_name", s.parent.name)
	}
	ev.Msg("custom schema created")
}

func (r *Registry) customReleased(s *Schema) {
	r.customLive--
	r.logger.Debug().
		Str("schema_name", s.name).
		Int("live_custom_schemas", r.customLive).
		Msg("custom schema released")
}
