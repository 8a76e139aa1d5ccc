package ecs

// ControllerID identifies a controller within a Registry.
type ControllerID int

// Controller is a per-tick behavior. It runs for an entity only while the
// entity carries every component in Required.
type Controller interface {
	Required() IdSet
	Control(e *Entity, state any)
}

// ControllerFunc adapts a plain function to the Controller interface.
type ControllerFunc func(e *Entity, state any)

type funcController struct {
	required IdSet
	fn       ControllerFunc
}

func (c *funcController) Required() IdSet              { return c.required }
func (c *funcController) Control(e *Entity, state any) { c.fn(e, state) }

// NewFuncController wraps fn as a Controller gated by required.
func NewFuncController(required IdSet, fn ControllerFunc) Controller {
	return &funcController{required: required, fn: fn}
}

// ViewID identifies a view within a Registry.
type ViewID int

// NoView marks a schema without a draw behavior.
const NoView ViewID = -1

// View is a draw-time behavior. It is stateless; entities carry no storage for
// it.
type View interface {
	Required() IdSet
	Draw(e *Entity, state any)
}

// ViewFunc adapts a plain function to the View interface.
type ViewFunc func(e *Entity, state any)

type funcView struct {
	required IdSet
	fn       ViewFunc
}

func (v *funcView) Required() IdSet           { return v.required }
func (v *funcView) Draw(e *Entity, state any) { v.fn(e, state) }

// NewFuncView wraps fn as a View gated by required.
func NewFuncView(required IdSet, fn ViewFunc) View {
	return &funcView{required: required, fn: fn}
}

// MethodID identifies a method within a Registry.
type MethodID int

// MethodFunc is the implementation of a method taking A and returning R.
type MethodFunc[A, R any] func(e *Entity, arg A) R

// Method is a typed handle to a named entity method.
type Method[A, R any] struct {
	id MethodID
}

// ID returns the method id.
func (m Method[A, R]) ID() MethodID {
	return m.id
}
