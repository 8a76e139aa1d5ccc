package ecs

import "iter"

// EntityList is an ordered collection of entities that are updated and drawn
// together. Expired entities are removed and released after each update.
type EntityList struct {
	entities []*Entity
}

// NewEntityList creates an empty list with room for capacity entities.
func NewEntityList(capacity int) *EntityList {
	return &EntityList{entities: make([]*Entity, 0, capacity)}
}

// Add appends entities to the list. The list takes ownership of them.
func (l *EntityList) Add(entities ...*Entity) {
	l.entities = append(l.entities, entities...)
}

// Len returns the number of entities in the list.
func (l *EntityList) Len() int {
	return len(l.entities)
}

// At returns the entity at index i.
func (l *EntityList) At(i int) *Entity {
	return l.entities[i]
}

// All iterates the entities in insertion order.
func (l *EntityList) All() iter.Seq[*Entity] {
	return func(yield func(*Entity) bool) {
		for _, e := range l.entities {
			if !yield(e) {
				return
			}
		}
	}
}

// Update runs Update on every live entity and then removes the expired ones.
// It returns the number of entities removed.
func (l *EntityList) Update(state any) int {
	for _, e := range l.entities {
		if !e.expired {
			e.Update(state)
		}
	}
	return l.Clean()
}

// Draw runs Draw on every live entity.
func (l *EntityList) Draw(state any) {
	for _, e := range l.entities {
		if !e.expired {
			e.Draw(state)
		}
	}
}

// Clean removes and releases expired entities, keeping the order of the rest.
// It returns the number of entities removed.
func (l *EntityList) Clean() int {
	kept := l.entities[:0]
	for _, e := range l.entities {
		if e.expired {
			e.Release()
			continue
		}
		kept = append(kept, e)
	}
	removed := len(l.entities) - len(kept)
	clear(l.entities[len(kept):])
	l.entities = kept
	return removed
}

// Clear releases every entity and empties the list.
func (l *EntityList) Clear() {
	for _, e := range l.entities {
		e.Release()
	}
	clear(l.entities)
	l.entities = l.entities[:0]
}
