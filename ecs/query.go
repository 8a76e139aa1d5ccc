package ecs

import "iter"

// Query selects entities of an EntityList by component membership and status
// flags. Matching is a bit-set test against each entity's schema.
type Query struct {
	list     *EntityList
	required IdSet
	excluded IdSet

	onlyEnabled    bool
	onlyVisible    bool
	includeExpired bool
}

// NewQuery creates a query over list matching entities that carry every
// component in required.
func NewQuery(list *EntityList, required ...ComponentID) *Query {
	return &Query{
		list:     list,
		required: Requires(required...),
	}
}

// Without excludes entities carrying any of the given components.
func (q *Query) Without(ids ...ComponentID) *Query {
	for _, id := range ids {
		q.excluded.Set(int(id), true)
	}
	return q
}

// Enabled restricts the query to enabled entities.
func (q *Query) Enabled() *Query {
	q.onlyEnabled = true
	return q
}

// Visible restricts the query to visible entities.
func (q *Query) Visible() *Query {
	q.onlyVisible = true
	return q
}

// IncludeExpired makes the query match expired entities that have not been
// removed yet.
func (q *Query) IncludeExpired() *Query {
	q.includeExpired = true
	return q
}

// Matches reports whether e satisfies the query.
func (q *Query) Matches(e *Entity) bool {
	if e.schema == nil {
		return false
	}
	if e.expired && !q.includeExpired {
		return false
	}
	if q.onlyEnabled && !e.enabled {
		return false
	}
	if q.onlyVisible && !e.visible {
		return false
	}
	members := e.schema.components.Set()
	return members.Contains(q.required) && !members.Intersects(q.excluded)
}

// Iter iterates the matching entities in list order.
func (q *Query) Iter() iter.Seq[*Entity] {
	return func(yield func(*Entity) bool) {
		for _, e := range q.list.entities {
			if q.Matches(e) && !yield(e) {
				return
			}
		}
	}
}

// Count returns the number of matching entities.
func (q *Query) Count() int {
	n := 0
	for range q.Iter() {
		n++
	}
	return n
}
