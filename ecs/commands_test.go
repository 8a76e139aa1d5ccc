package ecs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plus3/entcore/ecs"
)

func TestCommandsAppliedAfterTick(t *testing.T) {
	w := newTestWorld()
	list := ecs.NewEntityList(0)
	scheduler := ecs.NewScheduler(w.registry, list)

	var seenDuringTick bool
	grow := w.registry.NewController("grow", ecs.IdSet{}, func(e *ecs.Entity, state any) {
		frame := ecs.FrameOf(state)
		frame.Commands.AddComponent(e, w.scale.ID())
		seenDuringTick = e.Has(w.scale.ID())
	})

	s := w.registry.NewSchema("growing", []ecs.ComponentID{w.position.ID()}, []ecs.ControllerID{grow}, ecs.NoView)
	e := w.registry.NewEntity(s)
	list.Add(e)

	scheduler.Once(0.016)

	assert.False(t, seenDuringTick, "commands wait until the tick ends")
	assert.True(t, e.Has(w.scale.ID()))
	assert.True(t, e.Schema().IsCustom())
}

func TestCommandsSpawnAndExpire(t *testing.T) {
	w := newTestWorld()
	list := ecs.NewEntityList(0)
	scheduler := ecs.NewScheduler(w.registry, list)

	split := w.registry.NewController("split", ecs.Requires(w.health.ID()), func(e *ecs.Entity, state any) {
		frame := ecs.FrameOf(state)
		if ecs.Get(e, w.health).Current > 0 {
			return
		}
		frame.Commands.Expire(e)
		frame.Commands.Spawn(w.sprite)
		frame.Commands.Spawn(w.sprite)
	})
	dying := w.registry.NewSchema("dying", []ecs.ComponentID{w.health.ID()}, []ecs.ControllerID{split}, ecs.NoView)

	e := w.registry.NewEntity(dying)
	ecs.Set(e, w.health, Health{Current: 0, Max: 10})
	list.Add(e)

	scheduler.Once(0.016)

	require.Equal(t, 2, list.Len())
	assert.Same(t, w.sprite, list.At(0).Schema())
	assert.Same(t, w.sprite, list.At(1).Schema())
	assert.True(t, e.Released())
	assert.Equal(t, 0, dying.Instances())
}

func TestCommandsSkipExpiredEntities(t *testing.T) {
	w := newTestWorld()
	list := ecs.NewEntityList(0)
	e := w.registry.NewEntity(w.sprite)
	list.Add(e)

	cmds := &ecs.Commands{}
	cmds.Expire(e)
	cmds.AddComponent(e, w.scale.ID())
	cmds.AddController(e, w.physics)
	cmds.SetView(e, ecs.NoView)
	assert.Equal(t, 4, cmds.Len())

	cmds.Flush(list)

	assert.Equal(t, 0, list.Len())
	assert.True(t, e.Released())
	assert.Equal(t, 0, w.registry.CollectStats().CustomSchemasCreated)
	assert.Equal(t, 0, cmds.Len())
}

func TestCommandsSpawnEntityAndDefer(t *testing.T) {
	w := newTestWorld()
	list := ecs.NewEntityList(0)
	prepared := w.registry.NewEntity(w.sprite)
	ecs.Set(prepared, w.position, Position{X: 4})

	var lenAtDefer int
	cmds := &ecs.Commands{}
	cmds.Defer(func() { lenAtDefer = list.Len() })
	cmds.SpawnEntity(prepared)
	cmds.Flush(list)

	assert.Equal(t, 1, lenAtDefer, "deferred functions run after spawns")
	assert.Same(t, prepared, list.At(0))
}

func TestCommandsControllerAndView(t *testing.T) {
	w := newTestWorld()
	view := w.registry.NewView("v", ecs.IdSet{}, func(*ecs.Entity, any) {})
	extra := w.registry.NewController("extra", ecs.IdSet{}, func(*ecs.Entity, any) {})

	list := ecs.NewEntityList(0)
	e := w.registry.NewEntity(w.sprite)
	list.Add(e)

	cmds := &ecs.Commands{}
	cmds.AddController(e, extra)
	cmds.SetView(e, view)
	cmds.Flush(list)

	assert.True(t, e.HasController(extra))
	assert.True(t, e.IsControllerEnabled(extra))
	assert.Equal(t, view, e.Schema().View())
	assert.Equal(t, 1, w.registry.CollectStats().CustomSchemasCreated, "both changes share one custom schema")
}
