package ecs_test

import (
	"fmt"

	"github.com/plus3/entcore/ecs"
)

// ExampleScheduler demonstrates building an update loop. Controllers receive
// an UpdateFrame as state; structural changes they request through the frame's
// Commands are applied once every entity has been updated.
func ExampleScheduler() {
	registry := ecs.NewRegistry()
	transform := ecs.NewComponent(registry, "transform", Transform{})
	speed := ecs.NewComponent(registry, "speed", Speed{DX: 2, DY: 1})
	hitpoints := ecs.NewComponent(registry, "hitpoints", Hitpoints{Current: 2, Max: 2})

	physics := registry.NewController("physics", ecs.Requires(transform.ID(), speed.ID()), func(e *ecs.Entity, state any) {
		frame := ecs.FrameOf(state)
		s := ecs.Get(e, speed)
		ecs.Modify(e, transform, func(t *Transform) {
			t.X += s.DX * float32(frame.DeltaTime)
			t.Y += s.DY * float32(frame.DeltaTime)
		})
	})
	decay := registry.NewController("decay", ecs.Requires(hitpoints.ID()), func(e *ecs.Entity, state any) {
		frame := ecs.FrameOf(state)
		ecs.Modify(e, hitpoints, func(h *Hitpoints) { h.Current-- })
		if ecs.Get(e, hitpoints).Current <= 0 {
			frame.Commands.Expire(e)
		}
	})

	projectile := registry.NewSchema("projectile",
		[]ecs.ComponentID{transform.ID(), speed.ID(), hitpoints.ID()},
		[]ecs.ControllerID{physics, decay},
		ecs.NoView)

	entities := ecs.NewEntityList(1)
	e := registry.NewEntity(projectile)
	entities.Add(e)
	scheduler := ecs.NewScheduler(registry, entities)

	scheduler.Once(0.5)
	fmt.Println(ecs.Get(e, transform), entities.Len())

	scheduler.Once(0.5)
	fmt.Println(entities.Len(), e.Released())

	stats := scheduler.GetStats()
	fmt.Println(stats.TickCount, stats.EntitiesRemoved)
	// Output:
	// {1 0.5} 1
	// 0 true
	// 2 1
}

// ExampleQuery demonstrates selecting entities by component membership.
func ExampleQuery() {
	registry := ecs.NewRegistry()
	transform := ecs.NewComponent(registry, "transform", Transform{})
	speed := ecs.NewComponent(registry, "speed", Speed{})

	entities := ecs.NewEntityList(3)
	for i := 0; i < 3; i++ {
		e := registry.NewEntityWith([]ecs.ComponentID{transform.ID()}, nil, ecs.NoView)
		ecs.Set(e, transform, Transform{X: float32(i)})
		entities.Add(e)
	}
	ecs.AddWithValue(entities.At(1), speed, Speed{DX: 1})

	for e := range ecs.NewQuery(entities, transform.ID()).Without(speed.ID()).Iter() {
		fmt.Println(ecs.Get(e, transform).X)
	}
	// Output:
	// 0
	// 2
}
