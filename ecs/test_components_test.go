package ecs_test

import "github.com/plus3/entcore/ecs"

// Common test component types
type Position struct {
	X, Y float32
}

type Velocity struct {
	DX, DY float32
}

type Health struct {
	Current int32
	Max     int32
}

type Scale float32

type Score int32

// Marker is a zero-sized tag component.
type Marker struct{}

type testWorld struct {
	registry *ecs.Registry

	position ecs.Component[Position]
	velocity ecs.Component[Velocity]
	health   ecs.Component[Health]
	scale    ecs.Component[Scale]
	score    ecs.Component[Score]

	physics ecs.ControllerID
	sprite  *ecs.Schema
}

// newTestWorld registers the common components, a physics controller driven
// by a float64 delta time or an UpdateFrame, and the "sprite" schema
// {position, velocity}.
func newTestWorld(opts ...ecs.Option) *testWorld {
	r := ecs.NewRegistry(opts...)
	w := &testWorld{registry: r}
	w.position = ecs.NewComponent(r, "position", Position{})
	w.velocity = ecs.NewComponent(r, "velocity", Velocity{})
	w.health = ecs.NewComponent(r, "health", Health{Current: 100, Max: 100})
	w.scale = ecs.NewComponent(r, "scale", Scale(1.0))
	w.score = ecs.NewComponent(r, "score", Score(0))

	w.physics = r.NewController("physics", ecs.Requires(w.position.ID(), w.velocity.ID()), func(e *ecs.Entity, state any) {
		dt, _ := state.(float64)
		if frame := ecs.FrameOf(state); frame != nil {
			dt = frame.DeltaTime
		}
		v := ecs.Get(e, w.velocity)
		ecs.Modify(e, w.position, func(p *Position) {
			p.X += v.DX * float32(dt)
			p.Y += v.DY * float32(dt)
		})
	})

	w.sprite = r.NewSchema("sprite",
		[]ecs.ComponentID{w.position.ID(), w.velocity.ID()},
		[]ecs.ControllerID{w.physics},
		ecs.NoView)
	return w
}
