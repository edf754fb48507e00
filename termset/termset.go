/*
Package termset implements interned bitsets over terminal ids. FIRST,
FOLLOW and lookahead sets all live here, so lookahead comparisons are a
bitwise AND against a shared, content-addressed bitset rather than a
per-symbol allocation.

Grounded on lr.Analysis's FIRST/FOLLOW accessors (lr/doc.go's
package example) for the public shape, and on container.HashTable for
the interning mechanics: two sets with the same bits always intern to
the same ID, so lookahead comparison can test pointer/ID equality.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package termset

import (
	"github.com/npillmayer/earleycore/container"
)

const wordBits = 64

// ID identifies an interned terminal set within a Store.
type ID int

// Set is a bit array of length |T|, addressed by symtab.Symbol.TermID.
type Set struct {
	words []uint64
	n     int // number of terminal bits this set is sized for
}

// NewSet creates a zeroed set sized for n terminals.
func NewSet(n int) *Set {
	return &Set{words: make([]uint64, (n+wordBits-1)/wordBits), n: n}
}

// Clear zeroes all bits.
func (s *Set) Clear() {
	for i := range s.words {
		s.words[i] = 0
	}
}

// Fill sets every bit up to n.
func (s *Set) Fill() {
	for i := range s.words {
		s.words[i] = ^uint64(0)
	}
	s.maskTail()
}

func (s *Set) maskTail() {
	if s.n%wordBits == 0 {
		return
	}
	last := len(s.words) - 1
	if last < 0 {
		return
	}
	valid := uint(s.n % wordBits)
	s.words[last] &= (uint64(1) << valid) - 1
}

// Copy returns an independent copy of s.
func (s *Set) Copy() *Set {
	out := &Set{words: make([]uint64, len(s.words)), n: s.n}
	copy(out.words, s.words)
	return out
}

// Up sets bit i.
func (s *Set) Up(i int) {
	s.words[i/wordBits] |= 1 << uint(i%wordBits)
}

// Down clears bit i.
func (s *Set) Down(i int) {
	s.words[i/wordBits] &^= 1 << uint(i%wordBits)
}

// Test reports whether bit i is set.
func (s *Set) Test(i int) bool {
	return s.words[i/wordBits]&(1<<uint(i%wordBits)) != 0
}

// Or ORs other into s in place, returning whether s changed.
func (s *Set) Or(other *Set) (changed bool) {
	for i := range s.words {
		before := s.words[i]
		s.words[i] |= other.words[i]
		if s.words[i] != before {
			changed = true
		}
	}
	return
}

// Intersects reports whether s and other share any set bit.
func (s *Set) Intersects(other *Set) bool {
	for i := range s.words {
		if s.words[i]&other.words[i] != 0 {
			return true
		}
	}
	return false
}

// Empty reports whether no bit is set.
func (s *Set) Empty() bool {
	for _, w := range s.words {
		if w != 0 {
			return false
		}
	}
	return true
}

// Equal reports bitwise equality; used as the content-key comparator
// for the interning hash table.
func (s *Set) Equal(other *Set) bool {
	if s.n != other.n || len(s.words) != len(other.words) {
		return false
	}
	for i := range s.words {
		if s.words[i] != other.words[i] {
			return false
		}
	}
	return true
}

// hash64 is an FNV-1a style hash over the set's words, used as the
// container.HashTable probe key.
func (s *Set) hash64() uint64 {
	var h uint64 = 14695981039346656037
	for _, w := range s.words {
		for b := 0; b < 8; b++ {
			h ^= (w >> uint(b*8)) & 0xff
			h *= 1099511628211
		}
	}
	return h
}

// AppendTo appends the indices of every set bit to dst and returns the
// result, in ascending order.
func (s *Set) AppendTo(dst []int) []int {
	for i := 0; i < s.n; i++ {
		if s.Test(i) {
			dst = append(dst, i)
		}
	}
	return dst
}

// Store interns Sets by content so that equal sets share identity and
// compare by ID.
type Store struct {
	table *container.HashTable[*Set, ID]
	sets  []*Set
	n     int // terminal-count every set in this store is sized for
}

// NewStore creates a store for sets over n terminals.
func NewStore(n int) *Store {
	return &Store{
		n: n,
		table: container.NewHashTable[*Set, ID](
			func(a, b *Set) bool { return a.Equal(b) },
			func(k *Set) uint64 { return k.hash64() },
		),
	}
}

// NewSet creates a fresh, unintered, zeroed set sized for this store.
func (st *Store) NewSet() *Set {
	return NewSet(st.n)
}

// InsertOrFind commits s itself (not a copy) to the store and returns
// its id. If an equal set already exists, the existing id is returned and
// s is left for the caller to reuse instead of being retained by the store.
func (st *Store) InsertOrFind(s *Set) (ID, bool) {
	id, isNew := st.table.InsertOrFind(s, ID(len(st.sets)))
	if isNew {
		st.sets = append(st.sets, s)
	}
	return id, isNew
}

// Get returns the set stored under id.
func (st *Store) Get(id ID) *Set {
	return st.sets[id]
}

// Len returns the number of distinct interned sets.
func (st *Store) Len() int {
	return len(st.sets)
}
