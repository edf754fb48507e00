package container

// HashTable is an open-addressing hash table using double hashing for
// probing and tombstones for deletion, using the equality and 64-bit
// hash functions supplied to NewHashTable. It backs the terminal-set,
// state-set-core and state-set interning tables (dotted rules and
// core-symbol vectors are kept in plain Go maps instead): callers insert
// by (key, value) and get back either the pre-existing value or a
// freshly stored one, never both or neither.
//
// Load factor is kept below 0.7 by growing (rehashing into a larger
// table) whenever insertion would exceed it; tombstones count toward the
// load factor so a table dominated by deletions still gets compacted by
// a grow.
type HashTable[K any, V any] struct {
	slots    []slot[K, V]
	count    int // live entries
	tomb     int // tombstoned entries
	equal    func(a, b K) bool
	hashFunc func(k K) uint64
}

type slotState uint8

const (
	slotEmpty slotState = iota
	slotFull
	slotTomb
)

type slot[K any, V any] struct {
	state slotState
	hash  uint64
	key   K
	value V
}

const minTableSize = 16

// NewHashTable creates an empty table. equal must implement value
// equality for K; hashFunc must be consistent with equal (equal keys
// hash identically).
func NewHashTable[K any, V any](equal func(a, b K) bool, hashFunc func(k K) uint64) *HashTable[K, V] {
	return &HashTable[K, V]{
		slots:    make([]slot[K, V], minTableSize),
		equal:    equal,
		hashFunc: hashFunc,
	}
}

// Len returns the number of live entries.
func (t *HashTable[K, V]) Len() int {
	return t.count
}

// Find returns the stored value for key, if present.
func (t *HashTable[K, V]) Find(key K) (V, bool) {
	h := t.hashFunc(key)
	idx, found := t.probe(h, key)
	if found {
		return t.slots[idx].value, true
	}
	var zero V
	return zero, false
}

// InsertOrFind inserts key→value if key is not already present, or
// returns the value already stored for an equal key. The bool result
// reports whether a fresh insertion happened (true) or an existing
// entry was found (false), the same contract every interning store in
// this module builds on.
func (t *HashTable[K, V]) InsertOrFind(key K, value V) (V, bool) {
	if t.count+t.tomb+1 > len(t.slots)*7/10 {
		t.grow()
	}
	h := t.hashFunc(key)
	idx, found := t.probe(h, key)
	if found {
		return t.slots[idx].value, false
	}
	// idx points at the first empty-or-tomb slot found along the probe
	// sequence; reuse it.
	if t.slots[idx].state == slotTomb {
		t.tomb--
	}
	t.slots[idx] = slot[K, V]{state: slotFull, hash: h, key: key, value: value}
	t.count++
	return value, true
}

// Delete removes key, if present, leaving a tombstone behind so later
// probes for different keys that hashed into the same chain still find
// their targets.
func (t *HashTable[K, V]) Delete(key K) bool {
	h := t.hashFunc(key)
	idx, found := t.probe(h, key)
	if !found {
		return false
	}
	t.slots[idx] = slot[K, V]{state: slotTomb}
	t.count--
	t.tomb++
	return true
}

// probe walks the double-hashing probe sequence for (h, key). It returns
// the index of the matching live slot (found=true), or the first
// empty/tomb slot encountered (found=false) suitable for insertion.
func (t *HashTable[K, V]) probe(h uint64, key K) (int, bool) {
	n := uint64(len(t.slots))
	i := h % n
	step := doubleHashStep(h, n)
	firstFree := -1
	for tries := uint64(0); tries < n; tries++ {
		s := &t.slots[i]
		switch s.state {
		case slotEmpty:
			if firstFree < 0 {
				firstFree = int(i)
			}
			return firstFree, false
		case slotTomb:
			if firstFree < 0 {
				firstFree = int(i)
			}
		case slotFull:
			if s.hash == h && t.equal(s.key, key) {
				return int(i), true
			}
		}
		i = (i + step) % n
	}
	// Table is full of tombstones/entries that all collide; this can't
	// happen given the 0.7 load-factor grow threshold, but fall back to
	// the first free slot found (or -1, forcing a caller-visible bug if
	// none exists).
	return firstFree, false
}

// doubleHashStep derives the secondary probe step from h, forced odd so
// it is coprime with the table size (always a power of two), guaranteeing
// every slot is reachable.
func doubleHashStep(h, n uint64) uint64 {
	step := (h / n) % n
	if step == 0 {
		step = 1
	}
	return step | 1
}

func (t *HashTable[K, V]) grow() {
	old := t.slots
	newSize := len(old) * 2
	if newSize < minTableSize {
		newSize = minTableSize
	}
	t.slots = make([]slot[K, V], newSize)
	t.count = 0
	t.tomb = 0
	for _, s := range old {
		if s.state == slotFull {
			t.InsertOrFind(s.key, s.value)
		}
	}
}

// Each calls fn for every live entry, in unspecified order. fn must not
// mutate the table.
func (t *HashTable[K, V]) Each(fn func(key K, value V)) {
	for _, s := range t.slots {
		if s.state == slotFull {
			fn(s.key, s.value)
		}
	}
}
