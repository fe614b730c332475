package hamt

import (
	"fmt"
	"math/bits"
)

// unit is the payload type of set entries.
type unit = struct{}

// entry is a key paired with an optional payload, plus the key's memoized
// full hash. The set variant instantiates V as unit.
type entry[K comparable, V any] struct {
	key  K
	val  V
	hash uint64
}

// node is one level of the trie. entryMap marks the slots holding inline
// entries, childMap the slots holding links to deeper nodes; the two bitmaps
// are disjoint. Entries and children are stored in ascending slot order, so a
// slot's physical index is the popcount of the lower bitmap bits.
//
// Once the hash path is exhausted a node degenerates into an unordered
// collision bucket of entries sharing one full hash; bucket nodes carry no
// slot structure.
//
// Nodes are immutable after publication and may be shared freely between trie
// versions and concurrent readers.
type node[K comparable, V any] struct {
	entryMap uint32
	childMap uint32
	entries  []entry[K, V]
	children []*node[K, V]
	bucket   []entry[K, V]
	size     int
}

func bitpos(slot uint) uint32 {
	return 1 << slot
}

// sparseIndex maps a slot bit to the physical index within the entry or child
// array belonging to bitmap.
func sparseIndex(bitmap, bit uint32) int {
	return bits.OnesCount32(bitmap & (bit - 1))
}

func (n *node[K, V]) isBucket() bool {
	return n.bucket != nil
}

func (n *node[K, V]) entryAt(bit uint32) entry[K, V] {
	return n.entries[sparseIndex(n.entryMap, bit)]
}

func (n *node[K, V]) childAt(bit uint32) *node[K, V] {
	return n.children[sparseIndex(n.childMap, bit)]
}

func (n *node[K, V]) shallowClone() *node[K, V] {
	cow := *n
	return &cow
}

// soleEntry returns the single remaining entry of a subtree of size 1, for
// re-inlining into the parent slot.
func (n *node[K, V]) soleEntry() entry[K, V] {
	assertThat(n.size == 1, "soleEntry on a subtree of size %d", n.size)
	if len(n.entries) == 1 {
		return n.entries[0]
	}
	return n.children[0].soleEntry()
}

func (n *node[K, V]) String() string {
	if n == nil {
		return "_"
	}
	if n.isBucket() {
		return fmt.Sprintf("⧉(%d)", len(n.bucket))
	}
	return fmt.Sprintf("[entries=%d children=%d size=%d]", len(n.entries), len(n.children), n.size)
}

// --- Point operations ------------------------------------------------------

// find locates the entry for key along its hash path. path carries the key's
// full hash.
func (n *node[K, V]) find(path hashPath, key K) (entry[K, V], bool) {
	if n.isBucket() {
		for _, e := range n.bucket {
			if e.hash == path.hash && e.key == key {
				return e, true
			}
		}
		return entry[K, V]{}, false
	}
	bit := bitpos(path.slot())
	switch {
	case n.entryMap&bit != 0:
		e := n.entryAt(bit)
		if e.hash == path.hash && e.key == key {
			return e, true
		}
	case n.childMap&bit != 0:
		return n.childAt(bit).find(path.descend(), key)
	}
	return entry[K, V]{}, false
}

// insert places e at the position its hash dictates, returning the new node
// and whether the trie grew. With overwrite unset an already present key wins
// and the node comes back as the identical pointer, no allocation. path
// carries e's hash.
func (n *node[K, V]) insert(path hashPath, e entry[K, V], overwrite bool) (*node[K, V], bool) {
	if n.isBucket() {
		for at, have := range n.bucket {
			if have.key == e.key {
				if !overwrite {
					return n, false
				}
				cow := append([]entry[K, V]{}, n.bucket...)
				cow[at] = e
				return &node[K, V]{bucket: cow, size: n.size}, false
			}
		}
		cow := make([]entry[K, V], len(n.bucket), len(n.bucket)+1)
		copy(cow, n.bucket)
		return &node[K, V]{bucket: append(cow, e), size: n.size + 1}, true
	}
	bit := bitpos(path.slot())
	switch {
	case n.entryMap&bit != 0:
		at := sparseIndex(n.entryMap, bit)
		have := n.entries[at]
		if have.hash == e.hash && have.key == e.key {
			if !overwrite {
				return n, false
			}
			cow := n.shallowClone()
			cow.entries = append([]entry[K, V]{}, n.entries...)
			cow.entries[at] = e
			return cow, false
		}
		// both entries continue below this level
		child := mergedSubtree(path.descend(), have, e)
		cow := n.shallowClone()
		cow.entryMap &^= bit
		cow.entries = cutAt(n.entries, at)
		cow.childMap |= bit
		cow.children = insertAt(n.children, sparseIndex(cow.childMap, bit), child)
		cow.size = n.size + 1
		return cow, true
	case n.childMap&bit != 0:
		at := sparseIndex(n.childMap, bit)
		child, grew := n.children[at].insert(path.descend(), e, overwrite)
		if child == n.children[at] {
			return n, false
		}
		cow := n.shallowClone()
		cow.children = append([]*node[K, V]{}, n.children...)
		cow.children[at] = child
		if grew {
			cow.size = n.size + 1
		}
		return cow, grew
	}
	cow := n.shallowClone()
	cow.entryMap |= bit
	cow.entries = insertAt(n.entries, sparseIndex(cow.entryMap, bit), e)
	cow.size = n.size + 1
	return cow, true
}

// mergedSubtree pushes two entries sharing a hash prefix down until their
// paths diverge, or joins them in a collision bucket once the hash bits are
// used up.
func mergedSubtree[K comparable, V any](path hashPath, a, b entry[K, V]) *node[K, V] {
	if path.exhausted() {
		assertThat(a.hash == b.hash, "entries with unequal hashes reached bucket depth")
		return &node[K, V]{bucket: []entry[K, V]{a, b}, size: 2}
	}
	abit := bitpos(path.slotFor(a.hash))
	bbit := bitpos(path.slotFor(b.hash))
	if abit == bbit {
		child := mergedSubtree(path.descend(), a, b)
		return &node[K, V]{childMap: abit, children: []*node[K, V]{child}, size: 2}
	}
	if abit > bbit {
		a, b = b, a
		abit, bbit = bbit, abit
	}
	return &node[K, V]{entryMap: abit | bbit, entries: []entry[K, V]{a, b}, size: 2}
}

// remove deletes key from the subtree if present. The bool result reports a
// change; an untouched subtree comes back as the identical pointer with no
// allocation. Subtrees reduced to a single entry are returned in collapsed
// form for the caller to re-inline; a subtree emptied out comes back as nil.
// path carries the key's full hash.
func (n *node[K, V]) remove(path hashPath, key K) (*node[K, V], bool) {
	if n.isBucket() {
		for at, have := range n.bucket {
			if have.hash == path.hash && have.key == key {
				if len(n.bucket) == 2 {
					// bucket dissolves into its last entry
					last := n.bucket[1-at]
					return &node[K, V]{entries: []entry[K, V]{last}, size: 1}, true
				}
				return &node[K, V]{bucket: cutAt(n.bucket, at), size: n.size - 1}, true
			}
		}
		return n, false
	}
	bit := bitpos(path.slot())
	switch {
	case n.entryMap&bit != 0:
		at := sparseIndex(n.entryMap, bit)
		have := n.entries[at]
		if have.hash != path.hash || have.key != key {
			return n, false
		}
		if n.size == 1 {
			return nil, true
		}
		cow := n.shallowClone()
		cow.entryMap &^= bit
		cow.entries = cutAt(n.entries, at)
		cow.size = n.size - 1
		return cow, true
	case n.childMap&bit != 0:
		at := sparseIndex(n.childMap, bit)
		child, changed := n.children[at].remove(path.descend(), key)
		if !changed {
			return n, false
		}
		cow := n.shallowClone()
		cow.size = n.size - 1
		if child.size == 1 {
			// collapse: the child's last entry moves back inline
			cow.childMap &^= bit
			cow.children = cutAt(n.children, at)
			cow.entryMap |= bit
			cow.entries = insertAt(n.entries, sparseIndex(cow.entryMap, bit), child.soleEntry())
		} else {
			cow.children = append([]*node[K, V]{}, n.children...)
			cow.children[at] = child
		}
		return cow, true
	}
	return n, false
}

// each walks all entries of the subtree in slot order; it stops early when
// visit returns false.
func (n *node[K, V]) each(visit func(entry[K, V]) bool) bool {
	for _, e := range n.bucket {
		if !visit(e) {
			return false
		}
	}
	for _, e := range n.entries {
		if !visit(e) {
			return false
		}
	}
	for _, child := range n.children {
		if !child.each(visit) {
			return false
		}
	}
	return true
}

// --- Full invariant check --------------------------------------------------

func vetRoot[K comparable, V any](root *node[K, V]) {
	if root != nil {
		root.vet(0, 0)
	}
}

// vet recursively checks the full structural invariant of the subtree:
// disjoint bitmaps matching the stored entry/child counts, slot ordering,
// hash/position agreement, collision bucket legality and cached sizes.
// Violations panic; they indicate a defect in the trie engine, not bad input.
// prefix holds the hash bits the ancestors of n have consumed.
func (n *node[K, V]) vet(shift uint, prefix uint64) {
	if n.isBucket() {
		assertThat(shift >= hashWidth, "collision bucket above maximum trie depth")
		assertThat(n.entryMap == 0 && n.childMap == 0 && n.entries == nil && n.children == nil,
			"collision bucket carrying slot structure")
		assertThat(len(n.bucket) >= 2, "collision bucket with only %d entries", len(n.bucket))
		assertThat(n.size == len(n.bucket), "bucket size cached as %d, holds %d", n.size, len(n.bucket))
		for _, e := range n.bucket {
			assertThat(e.hash == prefix, "bucket entry hashed off its trie position")
		}
		return
	}
	assertThat(n.entryMap&n.childMap == 0, "slot assigned to an entry and a child at once")
	assertThat(bits.OnesCount32(n.entryMap) == len(n.entries),
		"entry bitmap disagrees with %d stored entries", len(n.entries))
	assertThat(bits.OnesCount32(n.childMap) == len(n.children),
		"child bitmap disagrees with %d stored children", len(n.children))
	size := len(n.entries)
	at := 0
	for rest := n.entryMap; rest != 0; at++ {
		bit := rest & -rest
		rest &^= bit
		e := n.entries[at]
		assertThat(e.hash&hashPrefixMask(shift) == prefix, "entry hashed off its trie position")
		assertThat(uint(e.hash>>shift)&slotMask == uint(bits.TrailingZeros32(bit)),
			"entry stored in the wrong slot")
	}
	at = 0
	for rest := n.childMap; rest != 0; at++ {
		bit := rest & -rest
		rest &^= bit
		child := n.children[at]
		assertThat(child.size >= 2, "internal child holding fewer than two entries")
		child.vet(shift+bitsPerLevel, prefix|uint64(bits.TrailingZeros32(bit))<<shift)
		size += child.size
	}
	assertThat(n.size == size, "size cached as %d, subtree holds %d", n.size, size)
}

// --- Helpers ---------------------------------------------------------------

func insertAt[S any](slice []S, at int, x S) []S {
	cow := make([]S, len(slice)+1)
	copy(cow, slice[:at])
	cow[at] = x
	copy(cow[at+1:], slice[at:])
	return cow
}

func cutAt[S any](slice []S, at int) []S {
	cow := make([]S, len(slice)-1)
	copy(cow, slice[:at])
	copy(cow[at:], slice[at+1:])
	return cow
}

func assertThat(that bool, msg string, msgargs ...interface{}) {
	if !that {
		msg = fmt.Sprintf("hamt: "+msg, msgargs...)
		panic(msg)
	}
}
