package ecs

import (
	"iter"
	"math/bits"
	"strings"
)

const bitsPerWord = 64

// IdSet is a growable bit vector with one bit per id. The zero value is an
// empty set ready to use.
type IdSet struct {
	words []uint64
}

// NewIdSet creates a set containing the given ids.
func NewIdSet(ids ...int) IdSet {
	var s IdSet
	for _, id := range ids {
		s.Set(id, true)
	}
	return s
}

// Set sets or clears the bit for id, growing the set as needed.
func (s *IdSet) Set(id int, value bool) {
	if id < 0 {
		return
	}
	i, mask := id/bitsPerWord, uint64(1)<<(uint(id)%bitsPerWord)
	if i >= len(s.words) {
		if !value {
			return
		}
		s.words = append(s.words, make([]uint64, i+1-len(s.words))...)
	}
	if value {
		s.words[i] |= mask
	} else {
		s.words[i] &^= mask
	}
}

// Get reports whether the bit for id is set.
func (s IdSet) Get(id int) bool {
	return s.GetOr(id, false)
}

// GetOr reports whether the bit for id is set, returning def when id lies
// beyond the stored words.
func (s IdSet) GetOr(id int, def bool) bool {
	i := id / bitsPerWord
	if id < 0 || i >= len(s.words) {
		return def
	}
	return s.words[i]&(uint64(1)<<(uint(id)%bitsPerWord)) != 0
}

// Intersects reports whether any bit is set in both sets.
func (s IdSet) Intersects(other IdSet) bool {
	n := min(len(s.words), len(other.words))
	for i := 0; i < n; i++ {
		if s.words[i]&other.words[i] != 0 {
			return true
		}
	}
	return false
}

// Contains reports whether every bit set in sub is also set in s.
func (s IdSet) Contains(sub IdSet) bool {
	for i, w := range sub.words {
		if w == 0 {
			continue
		}
		if i >= len(s.words) || s.words[i]&w != w {
			return false
		}
	}
	return true
}

// Equal reports whether both sets hold the same ids. Trailing empty words are
// ignored.
func (s IdSet) Equal(other IdSet) bool {
	a, b := s.words, other.words
	if len(a) < len(b) {
		a, b = b, a
	}
	for i, w := range a {
		var o uint64
		if i < len(b) {
			o = b[i]
		}
		if w != o {
			return false
		}
	}
	return true
}

// Empty reports whether no bit is set.
func (s IdSet) Empty() bool {
	for _, w := range s.words {
		if w != 0 {
			return false
		}
	}
	return true
}

// Count returns the number of set bits.
func (s IdSet) Count() int {
	n := 0
	for _, w := range s.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// Size returns the number of addressable bits without growing.
func (s IdSet) Size() int {
	return len(s.words) * bitsPerWord
}

// Clear unsets every bit.
func (s *IdSet) Clear() {
	clear(s.words)
}

// Union returns a new set with the ids of both sets.
func (s IdSet) Union(other IdSet) IdSet {
	a, b := s.words, other.words
	if len(a) < len(b) {
		a, b = b, a
	}
	out := IdSet{words: make([]uint64, len(a))}
	copy(out.words, a)
	for i, w := range b {
		out.words[i] |= w
	}
	return out
}

// Clone returns an independent copy of the set.
func (s IdSet) Clone() IdSet {
	if s.words == nil {
		return IdSet{}
	}
	return IdSet{words: append([]uint64(nil), s.words...)}
}

// IDs iterates the set ids in ascending order.
func (s IdSet) IDs() iter.Seq[int] {
	return func(yield func(int) bool) {
		for i, w := range s.words {
			for w != 0 {
				bit := bits.TrailingZeros64(w)
				if !yield(i*bitsPerWord + bit) {
					return
				}
				w &= w - 1
			}
		}
	}
}

func (s IdSet) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i := 0; i < s.Size(); i++ {
		if s.Get(i) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	sb.WriteByte('}')
	return sb.String()
}
