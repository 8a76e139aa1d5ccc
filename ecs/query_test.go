package ecs_test

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/plus3/entcore/ecs"
)

func TestQueryFilters(t *testing.T) {
	w := newTestWorld()
	list := ecs.NewEntityList(0)

	moving := w.registry.NewEntity(w.sprite)
	still := w.registry.NewEntityWith([]ecs.ComponentID{w.position.ID()}, nil, ecs.NoView)
	scaled := w.registry.NewEntity(w.sprite)
	scaled.Add(w.scale.ID())
	hidden := w.registry.NewEntity(w.sprite)
	hidden.Hide()
	disabled := w.registry.NewEntity(w.sprite)
	disabled.Disable()
	expired := w.registry.NewEntity(w.sprite)
	expired.Expire()
	list.Add(moving, still, scaled, hidden, disabled, expired)

	t.Run("required components", func(t *testing.T) {
		q := ecs.NewQuery(list, w.position.ID(), w.velocity.ID())
		assert.Equal(t, []*ecs.Entity{moving, scaled, hidden, disabled}, slices.Collect(q.Iter()))
		assert.Equal(t, 5, ecs.NewQuery(list, w.position.ID()).Count())
	})

	t.Run("excluded components", func(t *testing.T) {
		q := ecs.NewQuery(list, w.position.ID()).Without(w.scale.ID(), w.velocity.ID())
		assert.Equal(t, []*ecs.Entity{still}, slices.Collect(q.Iter()))
	})

	t.Run("status flags", func(t *testing.T) {
		assert.Equal(t, 3, ecs.NewQuery(list, w.velocity.ID()).Visible().Count())
		assert.Equal(t, 3, ecs.NewQuery(list, w.velocity.ID()).Enabled().Count())
		assert.Equal(t, 2, ecs.NewQuery(list, w.velocity.ID()).Enabled().Visible().Count())
		assert.Equal(t, 5, ecs.NewQuery(list, w.velocity.ID()).IncludeExpired().Count())
	})

	t.Run("empty query matches every live entity", func(t *testing.T) {
		assert.Equal(t, 5, ecs.NewQuery(list).Count())
	})

	t.Run("released entities never match", func(t *testing.T) {
		released := w.registry.NewEntity(w.sprite)
		released.Release()
		assert.False(t, ecs.NewQuery(list).Matches(released))
	})
}

func TestQueryIterStopsEarly(t *testing.T) {
	w := newTestWorld()
	list := ecs.NewEntityList(0)
	for i := 0; i < 4; i++ {
		list.Add(w.registry.NewEntity(w.sprite))
	}

	n := 0
	for range ecs.NewQuery(list, w.position.ID()).Iter() {
		n++
		if n == 1 {
			break
		}
	}
	assert.Equal(t, 1, n)
}
