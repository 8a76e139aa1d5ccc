package ecs

import "fmt"

// IdMap maps a sparse id domain onto dense indices or offsets. Every id added
// has exactly one canonical index; aliases resolve to the index of an existing
// id without being counted as entries of their own.
type IdMap struct {
	ids     []int
	indices []int
	set     IdSet
}

// NewIdMap creates a map assigning each id its position in ids.
func NewIdMap(ids ...int) IdMap {
	var m IdMap
	for _, id := range ids {
		m.AddNext(id)
	}
	return m
}

// Has reports whether id (or an alias) resolves to an index.
func (m *IdMap) Has(id int) bool {
	return id >= 0 && id < len(m.indices) && m.indices[id] >= 0
}

// Add registers id at index unless it is already present. It reports whether
// the id was added.
func (m *IdMap) Add(id, index int) bool {
	if m.Has(id) {
		return false
	}
	m.ids = append(m.ids, id)
	m.mapIndex(id, index)
	return true
}

// AddNext registers id at the next sequential index and returns the index the
// id resolves to.
func (m *IdMap) AddNext(id int) int {
	if m.Has(id) {
		return m.indices[id]
	}
	index := len(m.ids)
	m.Add(id, index)
	return index
}

// Alias makes alias resolve to the index of id. It reports false if id is not
// present or alias already resolves to an index.
func (m *IdMap) Alias(id, alias int) bool {
	if !m.Has(id) || m.Has(alias) {
		return false
	}
	m.mapIndex(alias, m.indices[id])
	return true
}

// Index returns the index of id. The id must be present.
func (m *IdMap) Index(id int) int {
	index := m.indices[id]
	if index < 0 {
		panic(fmt.Sprintf("ecs: id %d is not mapped", id))
	}
	return index
}

// IndexSafe returns the index of id, or -1 when the id is unknown.
func (m *IdMap) IndexSafe(id int) int {
	if id < 0 || id >= len(m.indices) {
		return -1
	}
	return m.indices[id]
}

// SetIndex remaps id to index, adding it if necessary.
func (m *IdMap) SetIndex(id, index int) {
	if !m.Has(id) {
		m.Add(id, index)
		return
	}
	m.mapIndex(id, index)
}

// ID returns the canonical id registered at position i in insertion order.
func (m *IdMap) ID(i int) int {
	return m.ids[i]
}

// Len returns the number of canonical ids.
func (m *IdMap) Len() int {
	return len(m.ids)
}

// IDs returns the canonical ids in insertion order. The slice must not be
// modified.
func (m *IdMap) IDs() []int {
	return m.ids
}

// Set returns the membership bit set, aliases included. The set must not be
// modified.
func (m *IdMap) Set() IdSet {
	return m.set
}

// Clone returns a copy that shares no storage with m.
func (m *IdMap) Clone() IdMap {
	return IdMap{
		ids:     append([]int(nil), m.ids...),
		indices: append([]int(nil), m.indices...),
		set:     m.set.Clone(),
	}
}

func (m *IdMap) mapIndex(id, index int) {
	for id >= len(m.indices) {
		m.indices = append(m.indices, -1)
	}
	m.indices[id] = index
	m.set.Set(id, true)
}
