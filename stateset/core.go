/*
Package stateset implements the Earley state-set machinery: interned
state-set cores, interned matched-length vectors, the (core,
matched-lengths) pair that gives each realized state set a canonical
identity, and the core-symbol index used to avoid rescanning every item
in a set during scan/predict/complete.

Grounded on lr/iteratable.Set's destructive-but-content-addressed style
(interning via Equals) and on the (core, symbol)→predictions/completions
index implied by lr/earley/earley.go's predict/complete passes, which
this package precomputes instead of recomputing Subset() filters on
every token. Core and matched-length identity is content-hashed with
structhash.Hash, the same library lr/earley/earley.go uses to key its
backlink map off of an (item, state) pair.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package stateset

import (
	"github.com/cnf/structhash"

	"github.com/npillmayer/earleycore/container"
	"github.com/npillmayer/earleycore/rules"
	"github.com/npillmayer/earleycore/symtab"
)

// CoreID identifies an interned StateSetCore.
type CoreID int

// predictedItem is a not-yet-started dotted rule together with the
// index (within Items) of the started item that predicted it, or -1 for
// a pure initial prediction (predicted directly from the axiom / from a
// nonterminal reached without an intervening started item).
type predictedItem struct {
	dr     rules.DottedRuleID
	parent int
}

// Core is the symbol-independent identity of a state set: the list of
// dotted rules it contains, split into started items (appear first;
// dot>0, except state set 0, whose dot-0 axiom rules are entered as
// started items) and predicted items (appear after, split further into
// those with a parent index and pure initial predictions).
type Core struct {
	ID CoreID

	Started          []rules.DottedRuleID
	predicted        []predictedItem // predicted with a parent index
	initialPredicted []rules.DottedRuleID // pure initial predictions, parent index implicitly -1

	// ProducedBy is the terminal that produced this core via scan, or
	// -1 for state set 0.
	ProducedBy int

	hash uint64

	index map[symbolIndexKey]*symbolVectors
}

type symbolIndexKey struct {
	sym symtab.ID
}

type symbolVectors struct {
	predictions []int // flat indices (see ItemAt) whose symbol-after-dot is sym
	completions []int // flat indices (see ItemAt) whose LHS is sym and dot is at end
}

// NumItems returns the total number of dotted rules in this core.
func (c *Core) NumItems() int {
	return len(c.Started) + len(c.predicted) + len(c.initialPredicted)
}

// ItemAt returns the dotted-rule id at a flat index across
// Started|predicted|initialPredicted, and whether it is a started item.
func (c *Core) ItemAt(i int) (rules.DottedRuleID, bool) {
	if i < len(c.Started) {
		return c.Started[i], true
	}
	i -= len(c.Started)
	if i < len(c.predicted) {
		return c.predicted[i].dr, false
	}
	i -= len(c.predicted)
	return c.initialPredicted[i], false
}

// ParentIndex returns the parent started-item index for a predicted
// item at flat index i (only meaningful when i falls in the
// "predicted-with-parent" range), or -1.
func (c *Core) ParentIndex(i int) int {
	if i < len(c.Started) {
		return -1
	}
	i -= len(c.Started)
	if i < len(c.predicted) {
		return c.predicted[i].parent
	}
	return -1
}

// Predictions returns the vector of flat indices within c whose
// symbol-after-dot equals sym, computed once per (core, symbol) and
// cached on c.
func (c *Core) Predictions(dotted *rules.DottedRulePool, sym *symtab.Symbol) []int {
	return c.vectorsFor(dotted, sym).predictions
}

// Completions returns the vector of flat indices within c whose dot is
// at the end and whose LHS equals sym, cached on c like Predictions.
func (c *Core) Completions(dotted *rules.DottedRulePool, sym *symtab.Symbol) []int {
	return c.vectorsFor(dotted, sym).completions
}

func (c *Core) vectorsFor(dotted *rules.DottedRulePool, sym *symtab.Symbol) *symbolVectors {
	key := symbolIndexKey{sym: sym.ID}
	if v, ok := c.index[key]; ok {
		return v
	}
	v := &symbolVectors{}
	n := c.NumItems()
	for i := 0; i < n; i++ {
		id, _ := c.ItemAt(i)
		d := dotted.Get(id)
		if after := d.SymbolAfterDot(); after != nil && after.ID == sym.ID {
			v.predictions = append(v.predictions, i)
		}
		if d.AtEnd() && d.Rule.LHS.ID == sym.ID {
			v.completions = append(v.completions, i)
		}
	}
	c.index[key] = v
	return v
}

// coreKey is the interning key for cores: a structhash digest of the
// started dotted-rule-id sequence. Two cores with the same started-item
// sequence are the same core; predicted items follow deterministically
// from it.
type coreKey struct {
	digest string
}

// CoreBuilder accumulates a new core's started items and drives
// Commit/Expand, mirroring iteratable.Set's "accumulate, then freeze"
// style.
type CoreBuilder struct {
	table *container.HashTable[coreKey, *Core]
	cores []*Core

	started    []rules.DottedRuleID
	matched    []int
	producedBy int
}

// NewCoreBuilder creates an empty core-interning table.
func NewCoreBuilder() *CoreBuilder {
	return &CoreBuilder{
		table: container.NewHashTable[coreKey, *Core](
			func(a, b coreKey) bool { return a.digest == b.digest },
			func(k coreKey) uint64 { return bucketHash(k.digest) },
		),
	}
}

// BeginNewSet starts accumulating a fresh core.
func (b *CoreBuilder) BeginNewSet(producedBy int) {
	b.started = b.started[:0]
	b.matched = b.matched[:0]
	b.producedBy = producedBy
}

// AddStarted appends a started dotted rule with its matched length.
func (b *CoreBuilder) AddStarted(dr rules.DottedRuleID, matchedLength int) {
	b.started = append(b.started, dr)
	b.matched = append(b.matched, matchedLength)
}

// Commit interns the accumulated started-item sequence as a core,
// returning the core and whether it is freshly created (callers must
// call Expand on fresh cores only).
func (b *CoreBuilder) Commit() (*Core, bool) {
	key := encodeStarted(b.started)
	if existing, ok := b.table.Find(key); ok {
		return existing, false
	}
	c := &Core{
		ID:         CoreID(len(b.cores)),
		Started:    append([]rules.DottedRuleID(nil), b.started...),
		ProducedBy: b.producedBy,
		hash:       bucketHash(key.digest),
		index:      make(map[symbolIndexKey]*symbolVectors),
	}
	b.cores = append(b.cores, c)
	b.table.InsertOrFind(key, c)
	return c, true
}

// MatchedLengths returns the matched lengths accumulated for the
// started items of the core just committed (parallel to c.Started).
func (b *CoreBuilder) MatchedLengths() []int {
	return append([]int(nil), b.matched...)
}

func encodeStarted(ids []rules.DottedRuleID) coreKey {
	digest, err := structhash.Hash(ids, 1)
	if err != nil { // no reason for this to happen, but the API demands it
		panic(err)
	}
	return coreKey{digest: digest}
}

// bucketHash derives a cheap uint64 bucket index from a structhash
// digest string; container.HashTable's open-addressing probe only needs
// consistent bucket placement, not a second content hash, since equal
// keys are already decided by comparing the digest strings themselves.
func bucketHash(digest string) uint64 {
	var h uint64 = 14695981039346656037
	for i := 0; i < len(digest); i++ {
		h ^= uint64(digest[i])
		h *= 1099511628211
	}
	return h
}
