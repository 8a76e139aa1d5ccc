package ecs

// Commands buffers structural changes requested while entities are being
// updated. They are applied once the tick's updates have finished.
type Commands struct {
	spawns      []spawnCommand
	expires     []*Entity
	adds        []addComponentCommand
	controllers []addControllerCommand
	views       []setViewCommand
	defers      []deferCommand
}

func newCommands() *Commands {
	return &Commands{}
}

type deferCommand struct {
	fn func()
}

type spawnCommand struct {
	schema *Schema
	entity *Entity
}

type addComponentCommand struct {
	entity    *Entity
	component ComponentID
}

type addControllerCommand struct {
	entity     *Entity
	controller ControllerID
}

type setViewCommand struct {
	entity *Entity
	view   ViewID
}

// Defer queues a function execution operation.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, deferCommand{fn: fn})
}

// Spawn queues the creation of an entity of schema s.
func (c *Commands) Spawn(s *Schema) {
	c.spawns = append(c.spawns, spawnCommand{schema: s})
}

// SpawnEntity queues an already built entity for insertion.
func (c *Commands) SpawnEntity(e *Entity) {
	c.spawns = append(c.spawns, spawnCommand{entity: e})
}

// Expire queues an entity for removal.
func (c *Commands) Expire(e *Entity) {
	c.expires = append(c.expires, e)
}

// AddComponent queues a component addition.
func (c *Commands) AddComponent(e *Entity, id ComponentID) {
	c.adds = append(c.adds, addComponentCommand{entity: e, component: id})
}

// AddController queues a controller addition.
func (c *Commands) AddController(e *Entity, id ControllerID) {
	c.controllers = append(c.controllers, addControllerCommand{entity: e, controller: id})
}

// SetView queues a view change.
func (c *Commands) SetView(e *Entity, view ViewID) {
	c.views = append(c.views, setViewCommand{entity: e, view: view})
}

// Len returns the number of queued operations.
func (c *Commands) Len() int {
	return len(c.spawns) + len(c.expires) + len(c.adds) + len(c.controllers) + len(c.views) + len(c.defers)
}

// Flush applies all queued operations to list and resets the buffer. Expired
// entities are removed from the list and skip any other queued change. It
// returns the number of entities removed.
func (c *Commands) Flush(list *EntityList) int {
	for _, e := range c.expires {
		e.Expire()
	}

	for _, cmd := range c.adds {
		if !cmd.entity.IsExpired() {
			cmd.entity.Add(cmd.component)
		}
	}

	for _, cmd := range c.controllers {
		if !cmd.entity.IsExpired() {
			cmd.entity.AddController(cmd.controller)
		}
	}

	for _, cmd := range c.views {
		if !cmd.entity.IsExpired() {
			cmd.entity.SetView(cmd.view)
		}
	}

	removed := 0
	if len(c.expires) > 0 {
		removed = list.Clean()
	}

	for _, cmd := range c.spawns {
		if cmd.entity != nil {
			list.Add(cmd.entity)
		} else {
			list.Add(newEntity(cmd.schema))
		}
	}

	for _, df := range c.defers {
		df.fn()
	}

	clear(c.spawns)
	clear(c.expires)
	clear(c.adds)
	clear(c.controllers)
	clear(c.views)
	clear(c.defers)
	c.spawns = c.spawns[:0]
	c.expires = c.expires[:0]
	c.adds = c.adds[:0]
	c.controllers = c.controllers[:0]
	c.views = c.views[:0]
	c.defers = c.defers[:0]
	return removed
}
