package main

import (
	"fmt"
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/plus3/entcore/ecs"
	ecslog "github.com/plus3/entcore/ecs/log"
)

type Position struct {
	X, Y float32
}

type Velocity struct {
	DX, DY float32
}

type Lifetime struct {
	Remaining float32
}

type Attribute struct {
	Value float64
}

// World holds the definitions shared by every entity in a stress run.
type World struct {
	Registry *ecs.Registry

	Position ecs.Component[Position]
	Velocity ecs.Component[Velocity]
	Lifetime ecs.Component[Lifetime]
	Speed    ecs.ComputedGet[float32]

	Attributes []ecs.Component[Attribute]

	Mover     *ecs.Schema
	Ephemeral *ecs.Schema

	rng       *rand.Rand
	cfg       Config
	expiryLog *zerolog.Logger
}

// NewWorld registers the stress components, controllers and schemas.
func NewWorld(registry *ecs.Registry, cfg Config) *World {
	w := &World{
		Registry: registry,
		rng:      rand.New(rand.NewSource(cfg.Seed)),
		cfg:      cfg,
	}

	w.Position = ecs.NewComponent(registry, "position", Position{})
	w.Velocity = ecs.NewComponent(registry, "velocity", Velocity{DX: 1, DY: 1})
	w.Lifetime = ecs.NewComponent(registry, "lifetime", Lifetime{Remaining: float32(cfg.Lifetime)})
	w.Speed = ecs.NewComputedGet(registry, "speed", ecs.Requires(w.Velocity.ID()), func(e *ecs.Entity) float32 {
		v := ecs.Get(e, w.Velocity)
		return v.DX*v.DX + v.DY*v.DY
	})

	for i := 0; i < cfg.Attributes; i++ {
		w.Attributes = append(w.Attributes, ecs.NewComponent(registry, fmt.Sprintf("attribute_%d", i), Attribute{Value: float64(i)}))
	}

	move := registry.NewController("move", ecs.Requires(w.Position.ID(), w.Velocity.ID()), w.move)
	age := registry.NewController("age", ecs.Requires(w.Lifetime.ID()), w.age)
	mutate := registry.NewController("mutate", ecs.IdSet{}, w.mutate)
	accumulate := registry.NewController("accumulate", ecs.IdSet{}, w.accumulate)

	w.Mover = registry.NewSchema("mover",
		[]ecs.ComponentID{w.Position.ID(), w.Velocity.ID()},
		[]ecs.ControllerID{move, mutate, accumulate},
		ecs.NoView)
	w.Ephemeral = registry.ExtendSchema(w.Mover, "ephemeral")
	w.Ephemeral.Add(w.Lifetime.ID())
	w.Ephemeral.AddController(age)

	for _, s := range []*ecs.Schema{w.Mover, w.Ephemeral} {
		ecslog.CreateSchemaLogger(registry.Logger(), s.Name()).Debug().
			Int("schema_id", int(s.ID())).
			Int("size", s.Size()).
			Int("components", s.ComponentCount()).
			Int("controllers", s.ControllerCount()).
			Msg("schema defined")
	}
	w.expiryLog = ecslog.CreateSchemaLogger(registry.Logger(), w.Ephemeral.Name())
	return w
}

// Populate creates an entity list holding n entities and a scheduler that
// drives it.
func (w *World) Populate(n int) *ecs.Scheduler {
	entities := ecs.NewEntityList(n)
	for i := 0; i < n; i++ {
		entities.Add(w.Spawn())
	}
	return ecs.NewScheduler(w.Registry, entities)
}

// Spawn creates an entity of a random schema.
func (w *World) Spawn() *ecs.Entity {
	if w.rng.Intn(2) == 0 {
		return w.Registry.NewEntity(w.Ephemeral)
	}
	return w.Registry.NewEntity(w.Mover)
}

func (w *World) move(e *ecs.Entity, state any) {
	frame := ecs.FrameOf(state)
	v := ecs.Get(e, w.Velocity)
	ecs.Modify(e, w.Position, func(p *Position) {
		p.X += v.DX * float32(frame.DeltaTime)
		p.Y += v.DY * float32(frame.DeltaTime)
	})
}

func (w *World) age(e *ecs.Entity, state any) {
	frame := ecs.FrameOf(state)
	ecs.Modify(e, w.Lifetime, func(l *Lifetime) {
		l.Remaining -= float32(frame.DeltaTime)
	})
	if ecs.Get(e, w.Lifetime).Remaining <= 0 {
		w.expiryLog.Trace().Int64("tick", frame.Tick).Bool("custom", e.Schema().IsCustom()).Msg("entity expired")
		frame.Commands.Expire(e)
		frame.Commands.Spawn(w.Ephemeral)
	}
}

// mutate gives entities new attribute components, moving them onto custom
// schemas.
func (w *World) mutate(e *ecs.Entity, state any) {
	if len(w.Attributes) == 0 || w.rng.Float64() >= w.cfg.MutationRate {
		return
	}
	frame := ecs.FrameOf(state)
	attr := w.Attributes[w.rng.Intn(len(w.Attributes))]
	frame.Commands.AddComponent(e, attr.ID())
}

func (w *World) accumulate(e *ecs.Entity, _ any) {
	speed := ecs.Compute(e, w.Speed, 0)
	for _, attr := range w.Attributes {
		ecs.Modify(e, attr, func(a *Attribute) {
			a.Value += float64(speed)
		})
	}
}
