package stateset

import (
	"github.com/cnf/structhash"

	"github.com/npillmayer/earleycore/container"
	"github.com/npillmayer/earleycore/rules"
)

// ID identifies an interned StateSet (core, matched-lengths pair).
type ID int

// Set is a realized Earley state set: a core plus the matched-length of
// each of its started items. Predicted items' matched length is
// implicit (their parent's, or 0 for pure initial predictions) and is
// not stored.
type Set struct {
	ID      ID
	Core    *Core
	Matched []int // parallel to Core.Started
}

// MatchedLengthOf returns the matched length of the dotted rule at flat
// index idx within s.Core: for a started item, s.Matched[idx]; for a
// predicted item with a parent, the parent's matched length; for a pure
// initial prediction, 0.
func (s *Set) MatchedLengthOf(idx int) int {
	if idx < len(s.Core.Started) {
		return s.Matched[idx]
	}
	parent := s.Core.ParentIndex(idx)
	if parent < 0 {
		return 0
	}
	return s.MatchedLengthOf(parent)
}

type matchedKey struct {
	digest string
}

// Table interns (core, matched-lengths) pairs into canonical Sets.
type Table struct {
	cores   *CoreBuilder
	table   *container.HashTable[setKey, *Set]
	sets    []*Set
}

type setKey struct {
	core    CoreID
	matched matchedKey
}

// NewTable creates an empty state-set interning table, backed by its
// own core table.
func NewTable() *Table {
	return &Table{
		cores: NewCoreBuilder(),
		table: container.NewHashTable[setKey, *Set](
			func(a, b setKey) bool {
				return a.core == b.core && a.matched.digest == b.matched.digest
			},
			func(k setKey) uint64 { return uint64(k.core)*1099511628211 ^ bucketHash(k.matched.digest) },
		),
	}
}

// Cores exposes the underlying core-interning table (for callers that
// need CoreBuilder.BeginNewSet/AddStarted directly).
func (t *Table) Cores() *CoreBuilder {
	return t.cores
}

// Commit interns the state set being accumulated in t.Cores(), running
// Expand on freshly created cores, and returns the canonical Set.
func (t *Table) Commit(store *rules.Store, dotted *rules.DottedRulePool, lookaheadLevel int) *Set {
	core, fresh := t.cores.Commit()
	if fresh {
		Expand(core, store, dotted, lookaheadLevel, nil)
	}
	matched := t.cores.MatchedLengths()
	mk := encodeMatched(matched)
	key := setKey{core: core.ID, matched: mk}
	if existing, ok := t.table.Find(key); ok {
		return existing
	}
	s := &Set{ID: ID(len(t.sets)), Core: core, Matched: matched}
	t.sets = append(t.sets, s)
	t.table.InsertOrFind(key, s)
	return s
}

// Get returns the set stored under id.
func (t *Table) Get(id ID) *Set {
	return t.sets[id]
}

func encodeMatched(m []int) matchedKey {
	digest, err := structhash.Hash(m, 1)
	if err != nil { // no reason for this to happen, but the API demands it
		panic(err)
	}
	return matchedKey{digest: digest}
}
