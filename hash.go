package hamt

import "hash/maphash"

const (
	bitsPerLevel = 5                     // hash chunk width consumed per trie level
	degree       = 1 << bitsPerLevel     // branching factor
	slotMask     = degree - 1
	hashWidth    = 64
)

// hashPath is an element's hash, sliced into chunks of bitsPerLevel bits and
// consumed one chunk per trie level. It is a pure value; descending never
// affects the path descended from.
type hashPath struct {
	hash  uint64
	shift uint
}

// pathTop returns the unconsumed path for a hash, positioned at the root.
func pathTop(hash uint64) hashPath {
	return hashPath{hash: hash}
}

// slot returns the hash chunk addressed at the current level.
func (p hashPath) slot() uint {
	return p.slotFor(p.hash)
}

// slotFor returns the chunk another element's hash selects at the current
// level.
func (p hashPath) slotFor(hash uint64) uint {
	return uint(hash>>p.shift) & slotMask
}

// descend consumes one chunk and returns the path for the next level.
func (p hashPath) descend() hashPath {
	assertThat(!p.exhausted(), "attempt to descend beyond an exhausted hash path")
	return hashPath{hash: p.hash, shift: p.shift + bitsPerLevel}
}

// at re-bases the path onto another element's hash, staying at the current
// depth.
func (p hashPath) at(hash uint64) hashPath {
	return hashPath{hash: hash, shift: p.shift}
}

// exhausted becomes true once all hash bits are consumed. Below this depth
// equal-hash elements can no longer diverge and live in collision buckets.
func (p hashPath) exhausted() bool {
	return p.shift >= hashWidth
}

// hashPrefixMask covers the hash bits consumed by the levels above shift.
func hashPrefixMask(shift uint) uint64 {
	if shift >= hashWidth {
		return ^uint64(0)
	}
	return (uint64(1) << shift) - 1
}

// --- Hashing configuration -------------------------------------------------

// seed is shared by every collection in the process, so that independently
// constructed collections agree on hash paths. The pairwise algebra relies on
// both operands placing equal elements at equal trie positions.
var seed = maphash.MakeSeed()

// props carries the per-collection configuration.
type props[T comparable] struct {
	hash func(T) uint64
}

func (p props[T]) init() props[T] {
	if p.hash == nil {
		p.hash = func(x T) uint64 { return maphash.Comparable(seed, x) }
	}
	return p
}

// Option is a type to help initializing sets and maps at creation time.
type Option[T comparable] struct {
	config func(props[T]) props[T]
}

// HashFunc is an option to replace the default (maphash-based) hash function.
// The replacement must be deterministic and consistent with equality.
// Collections that are combined by set algebra have to share one hash
// function.
//
// Use it like this:
//
//	s := hamt.Immutable[int](hamt.HashFunc(myHash))
func HashFunc[T comparable](hash func(T) uint64) Option[T] {
	conf := func(p props[T]) props[T] {
		p.hash = hash
		return p
	}
	return Option[T]{config: conf}
}
