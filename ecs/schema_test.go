package ecs_test

import (
	"testing"

	"github.com/plus3/entcore/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaLayout(t *testing.T) {
	w := newTestWorld()

	s := w.registry.NewSchema("unit",
		[]ecs.ComponentID{w.health.ID(), w.position.ID(), w.scale.ID()},
		nil, ecs.NoView)

	assert.Equal(t, 0, s.ComponentOffset(w.health.ID()))
	assert.Equal(t, 8, s.ComponentOffset(w.position.ID()))
	assert.Equal(t, 16, s.ComponentOffset(w.scale.ID()))
	assert.Equal(t, 20, s.Size())
	assert.Equal(t, -1, s.ComponentOffsetSafe(w.velocity.ID()))
	assert.Equal(t, []ecs.ComponentID{w.health.ID(), w.position.ID(), w.scale.ID()}, s.ComponentIDs())

	e := w.registry.NewEntity(s)
	assert.Equal(t, Health{Current: 100, Max: 100}, ecs.Get(e, w.health))
	assert.Equal(t, Scale(1.0), ecs.Get(e, w.scale))
}

func TestSchemaAddIsIdempotent(t *testing.T) {
	w := newTestWorld()
	s := w.registry.NewSchema("s", nil, nil, ecs.NoView)

	assert.True(t, s.Add(w.position.ID()))
	assert.False(t, s.Add(w.position.ID()))
	assert.Equal(t, 1, s.ComponentCount())
	assert.Equal(t, 8, s.Size())

	assert.True(t, s.AddController(w.physics))
	assert.False(t, s.AddController(w.physics))
	assert.Equal(t, 0, s.ControllerIndex(w.physics))
}

func TestSchemaZeroSizedComponents(t *testing.T) {
	w := newTestWorld()
	marker := ecs.NewComponent(w.registry, "marker", Marker{})
	other := ecs.NewComponent(w.registry, "other", Marker{})

	s := w.registry.NewSchema("tagged",
		[]ecs.ComponentID{marker.ID(), other.ID(), w.score.ID()},
		nil, ecs.NoView)

	assert.Equal(t, 4, s.Size())
	assert.True(t, s.HasComponent(marker.ID()))
	assert.True(t, s.HasComponent(other.ID()))

	e := w.registry.NewEntity(s)
	ecs.Set(e, w.score, Score(12))
	assert.Equal(t, Marker{}, ecs.Get(e, marker))
	assert.Equal(t, Score(12), ecs.Get(e, w.score))
}

func TestSchemaExtendIsolation(t *testing.T) {
	w := newTestWorld()

	derived := w.registry.ExtendSchema(w.sprite, "scaled_sprite")
	derived.Add(w.scale.ID())

	assert.Same(t, w.sprite, derived.Parent())
	assert.True(t, derived.HasComponent(w.position.ID()))
	assert.True(t, derived.HasController(w.physics))
	assert.True(t, derived.HasComponent(w.scale.ID()))
	assert.False(t, w.sprite.HasComponent(w.scale.ID()), "extending leaves the base untouched")
	assert.Equal(t, 16, w.sprite.Size())
	assert.Equal(t, 20, derived.Size())

	found, err := w.registry.SchemaByName("scaled_sprite")
	require.NoError(t, err)
	assert.Same(t, derived, found)
}

func TestSchemaRegister(t *testing.T) {
	w := newTestWorld()

	ext := w.sprite.Extend(10)
	assert.True(t, w.registry.RegisterSchema(ext))
	assert.Same(t, ext, w.registry.Schema(10))
	assert.False(t, w.registry.RegisterSchema(w.sprite.Extend(10)), "ids cannot be registered twice")

	_, ok := w.registry.SchemaSafe(5)
	assert.False(t, ok, "gaps stay unregistered")
	assert.Panics(t, func() { w.registry.Schema(5) })

	foreign := ecs.NewRegistry()
	assert.False(t, foreign.RegisterSchema(w.sprite.Extend(11)))
}

func TestSchemaSetDefault(t *testing.T) {
	w := newTestWorld()

	s := w.registry.ExtendSchema(w.sprite, "fast_sprite")
	assert.True(t, ecs.SetDefault(s, w.velocity, Velocity{DX: 10, DY: 0}))
	assert.False(t, ecs.SetDefault(s, w.scale, Scale(2)), "absent components have no default")

	fast := w.registry.NewEntity(s)
	plain := w.registry.NewEntity(w.sprite)
	assert.Equal(t, Velocity{DX: 10, DY: 0}, ecs.Get(fast, w.velocity))
	assert.Equal(t, Velocity{}, ecs.Get(plain, w.velocity))
}

func TestSchemaComponentAlias(t *testing.T) {
	w := newTestWorld()
	origin := ecs.NewComponent(w.registry, "origin", Position{})
	target := ecs.NewComponent(w.registry, "target", Velocity{})
	virtualID := ecs.ComponentID(1000)

	s := w.registry.ExtendSchema(w.sprite, "aliased")
	assert.True(t, s.SetComponentAlias(w.position.ID(), origin.ID()))
	assert.False(t, s.SetComponentAlias(w.position.ID(), target.ID()), "alias types must match")
	assert.False(t, s.SetComponentAlias(w.scale.ID(), virtualID), "only present components can be aliased")
	assert.True(t, s.SetComponentAlias(w.position.ID(), virtualID))

	assert.Equal(t, 2, s.ComponentCount())
	assert.True(t, s.HasComponent(origin.ID()))
	assert.Equal(t, s.ComponentOffset(w.position.ID()), s.ComponentOffset(origin.ID()))

	e := w.registry.NewEntity(s)
	ecs.Set(e, origin, Position{X: 7, Y: 8})
	assert.Equal(t, Position{X: 7, Y: 8}, ecs.Get(e, w.position))
	assert.Equal(t, Position{X: 7, Y: 8}, ecs.GetByID[Position](e, virtualID))
}

func TestSchemaControllerAlias(t *testing.T) {
	w := newTestWorld()
	alias := ecs.ControllerID(50)

	s := w.registry.ExtendSchema(w.sprite, "aliased")
	assert.True(t, s.SetControllerAlias(w.physics, alias))
	assert.Equal(t, s.ControllerIndex(w.physics), s.ControllerIndex(alias))
	assert.Equal(t, 1, s.ControllerCount())
	assert.False(t, s.SetControllerAlias(ecs.ControllerID(7), alias+1))
}

func TestSchemaCustomCopyOnWrite(t *testing.T) {
	w := newTestWorld()

	custom := w.sprite.AddCustomComponent(w.scale.ID())
	assert.True(t, custom.IsCustom())
	assert.NotSame(t, w.sprite, custom)
	assert.Same(t, w.sprite, custom.Parent())
	assert.Equal(t, "sprite", custom.Name())
	assert.False(t, w.sprite.HasComponent(w.scale.ID()))

	assert.Same(t, w.sprite, w.sprite.AddCustomComponent(w.position.ID()), "no change needed")

	e := w.registry.NewEntity(custom)
	assert.True(t, e.Add(w.health.ID()))
	assert.Same(t, custom, e.Schema(), "a custom schema held by one entity is modified in place")

	clone := e.Clone()
	assert.True(t, clone.Add(w.score.ID()))
	assert.NotSame(t, custom, clone.Schema(), "a shared custom schema is copied")
	assert.False(t, custom.HasComponent(w.score.ID()))
	assert.False(t, e.Has(w.score.ID()))
	assert.True(t, clone.Has(w.health.ID()))
}

func TestSchemaTypeMismatchPanics(t *testing.T) {
	w := newTestWorld()
	e := w.registry.NewEntity(w.sprite)

	assert.Panics(t, func() { ecs.GetByID[Velocity](e, w.position.ID()) })
	assert.Panics(t, func() { ecs.Get(e, w.health) })

	v := ecs.GetByIDSafe(e, w.position.ID(), Velocity{DX: -1})
	assert.Equal(t, Velocity{DX: -1}, v)
	assert.False(t, ecs.SetByIDSafe(e, w.position.ID(), int64(3)))
}

func TestSchemaString(t *testing.T) {
	w := newTestWorld()
	assert.Contains(t, w.sprite.String(), `"sprite"`)
	assert.Contains(t, w.sprite.AddCustomComponent(w.scale.ID()).String(), "custom")
}

func TestSchemaSealedOnceInUse(t *testing.T) {
	w := newTestWorld()
	view := w.registry.NewView("outline", ecs.IdSet{}, func(*ecs.Entity, any) {})
	extra := w.registry.NewController("extra", ecs.IdSet{}, func(*ecs.Entity, any) {})
	s := w.registry.ExtendSchema(w.sprite, "sealed")
	e := w.registry.NewEntity(s)

	assert.False(t, s.Add(w.scale.ID()))
	assert.False(t, s.AddController(extra))
	assert.False(t, s.SetView(view))
	assert.False(t, s.SetComponentAlias(w.position.ID(), ecs.ComponentID(1000)))
	assert.False(t, s.SetControllerAlias(w.physics, ecs.ControllerID(50)))
	assert.Equal(t, 16, s.Size())
	assert.False(t, s.HasComponent(w.scale.ID()))
	assert.Equal(t, ecs.NoView, s.View())

	require.True(t, e.Add(w.scale.ID()))
	assert.Equal(t, Scale(1.0), ecs.Get(e, w.scale))
	assert.Len(t, e.Components().Bytes(), e.Schema().Size())

	assert.Equal(t, 0, s.Instances())
	assert.True(t, s.Add(w.scale.ID()), "a schema without entities can be extended again")
	assert.Equal(t, 20, s.Size())
}

func TestSchemaAliasCannotReplaceComponent(t *testing.T) {
	w := newTestWorld()
	target := ecs.NewComponent(w.registry, "target", Position{})
	s := w.registry.NewSchema("pair",
		[]ecs.ComponentID{w.position.ID(), target.ID()},
		[]ecs.ControllerID{w.physics},
		ecs.NoView)
	second := w.registry.NewController("second", ecs.IdSet{}, func(*ecs.Entity, any) {})
	require.True(t, s.AddController(second))

	assert.False(t, s.SetComponentAlias(w.position.ID(), target.ID()))
	assert.False(t, s.SetComponentAlias(w.position.ID(), w.position.ID()))
	assert.Equal(t, 8, s.ComponentOffset(target.ID()))
	assert.Equal(t, 2, s.ComponentCount())

	assert.False(t, s.SetControllerAlias(w.physics, second))
	assert.NotEqual(t, s.ControllerIndex(w.physics), s.ControllerIndex(second))

	e := w.registry.NewEntity(s)
	ecs.Set(e, w.position, Position{X: 1, Y: 1})
	assert.Equal(t, Position{}, ecs.Get(e, target))
}

func TestSchemaCustomAccountedWhenHeld(t *testing.T) {
	w := newTestWorld()

	custom := w.sprite.AddCustomComponent(w.scale.ID())
	stats := w.registry.CollectStats()
	assert.Equal(t, 0, stats.LiveCustomSchemas)
	assert.Equal(t, 0, stats.CustomSchemasCreated)

	e := w.registry.NewEntity(custom)
	stats = w.registry.CollectStats()
	assert.Equal(t, 1, stats.LiveCustomSchemas)
	assert.Equal(t, 1, stats.CustomSchemasCreated)

	e.Release()
	assert.True(t, custom.Released())
	assert.Equal(t, 0, w.registry.CollectStats().LiveCustomSchemas)
}
