package hamt

import (
	"fmt"
	"iter"
	"strings"
)

// Container is the capability of collections that answer membership queries
// efficiently. Set implements it; SubtractingContained consumes it.
type Container[T any] interface {
	Contains(item T) bool
}

// Set is a persistent (immutable) unordered set of elements, backed by a hash
// array mapped trie. The zero value is an empty set ready for use:
//
//	s := hamt.Set[int]{}.With(1).With(2)
//
// Operations never modify a set in place; they return a new set which shares
// every unmodified subtree with the old one. Sets may therefore be copied and
// read concurrently without locking.
type Set[T comparable] struct {
	props[T]
	root *node[T, unit]
}

// Immutable constructs a set with options, if you need any.
// Use it like this:
//
//	s := hamt.Immutable[string](hamt.HashFunc(myHash))
func Immutable[T comparable](opts ...Option[T]) Set[T] {
	s := Set[T]{}
	for _, option := range opts {
		s.props = option.config(s.props)
	}
	return s
}

// SetOf constructs a set holding the given members.
func SetOf[T comparable](members ...T) Set[T] {
	s := Set[T]{}
	for _, m := range members {
		s = s.With(m)
	}
	return s
}

// --- API -------------------------------------------------------------------

// Len returns the number of members.
func (s Set[T]) Len() int {
	if s.root == nil {
		return 0
	}
	return s.root.size
}

// Contains checks item for membership.
func (s Set[T]) Contains(item T) bool {
	if s.root == nil {
		return false
	}
	s.props = s.props.init()
	_, found := s.root.find(pathTop(s.hash(item)), item)
	return found
}

// With returns a set additionally containing item. Adding an already present
// member returns a set sharing s's root, with no copies made.
func (s Set[T]) With(item T) Set[T] {
	s.props = s.props.init()
	e := entry[T, unit]{key: item, hash: s.hash(item)}
	if s.root == nil {
		root := &node[T, unit]{
			entryMap: bitpos(pathTop(e.hash).slot()),
			entries:  []entry[T, unit]{e},
			size:     1,
		}
		return s.withRoot(root)
	}
	root, _ := s.root.insert(pathTop(e.hash), e, false)
	return s.withRoot(root)
}

// Without returns a set with item removed, if present.
func (s Set[T]) Without(item T) Set[T] {
	if s.root == nil {
		return s
	}
	s.props = s.props.init()
	root, _ := s.root.remove(pathTop(s.hash(item)), item)
	return s.withRoot(root)
}

// All iterates over the members of s, in unspecified order.
func (s Set[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		if s.root != nil {
			s.root.each(func(e entry[T, unit]) bool { return yield(e.key) })
		}
	}
}

// Equal checks s and other for equal membership.
func (s Set[T]) Equal(other Set[T]) bool {
	return equalNodes(s.root, other.root)
}

// --- Set algebra -----------------------------------------------------------

// Subtracting returns a set holding the members of s that are not members of
// other. Subtrees the subtraction does not touch are shared with the result;
// if nothing is removed at all the result wraps s's root itself, with zero
// allocations.
func (s Set[T]) Subtracting(other Set[T]) Set[T] {
	if s.root == nil || other.root == nil {
		return s
	}
	tracer().Debugf("subtracting set of %d from set of %d", other.Len(), s.Len())
	bld := subtractNodes(pathTop(0), s.root, other.root, sameNode[T, unit])
	if bld == nil {
		return s
	}
	return s.withRoot(bld.finalize(pathTop(0)))
}

// SubtractingSeq removes every element produced by seq from s, accumulating
// all removals into one evolving copy-on-write root. Cost is one point
// removal per sequence element, independent of s.Len(); duplicates in seq are
// harmless. An empty receiver returns immediately without consuming seq.
func (s Set[T]) SubtractingSeq(seq iter.Seq[T]) Set[T] {
	if s.root == nil {
		return s
	}
	s.props = s.props.init()
	root := s.root
	for item := range seq {
		root, _ = root.remove(pathTop(s.hash(item)), item)
		if root == nil {
			break
		}
	}
	return s.withRoot(root)
}

// SubtractingContained filters s through other's membership test. This is the
// fast path for right-hand operands that answer Contains efficiently without
// being tries themselves; for another Set prefer Subtracting, which exploits
// the shared trie shape.
func (s Set[T]) SubtractingContained(other Container[T]) Set[T] {
	return s.Filter(func(item T) bool { return !other.Contains(item) })
}

// Filter returns a set holding the members of s satisfying pred. Kept
// subtrees are shared with s.
func (s Set[T]) Filter(pred func(T) bool) Set[T] {
	if s.root == nil {
		return s
	}
	s.props = s.props.init()
	root := s.root
	for item := range s.All() {
		if pred(item) {
			continue
		}
		root, _ = root.remove(pathTop(s.hash(item)), item)
		if root == nil {
			break
		}
	}
	return s.withRoot(root)
}

// Union returns a set holding the members of both s and other. On overlap the
// result is built from s's entries.
func (s Set[T]) Union(other Set[T]) Set[T] {
	if other.root == nil {
		return s
	}
	if s.root == nil {
		return s.withRoot(other.root)
	}
	return s.withRoot(unionNodes(pathTop(0), s.root, other.root))
}

// Intersection returns a set holding the members common to s and other. It
// derives from subtraction: s ∩ other = s − (s − other).
func (s Set[T]) Intersection(other Set[T]) Set[T] {
	return s.Subtracting(s.Subtracting(other))
}

// SymmetricDifference returns the members contained in exactly one of s and
// other: (s − other) ∪ (other − s).
func (s Set[T]) SymmetricDifference(other Set[T]) Set[T] {
	return s.Subtracting(other).Union(other.Subtracting(s))
}

// --- Internal --------------------------------------------------------------

// withRoot re-wraps a root that went through the trie engine, without
// revalidating it. The audit switch turns revalidation back on.
func (s Set[T]) withRoot(root *node[T, unit]) Set[T] {
	if audit {
		vetRoot(root)
	}
	return Set[T]{props: s.props, root: root}
}

func equalNodes[K comparable, V any](a, b *node[K, V]) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.size != b.size {
		return false
	}
	if a.isBucket() || b.isBucket() {
		if !a.isBucket() || !b.isBucket() || len(a.bucket) != len(b.bucket) {
			return false
		}
		for _, e := range a.bucket {
			if !bucketHasKey(b.bucket, e.key, e.hash) {
				return false
			}
		}
		return true
	}
	if a.entryMap != b.entryMap || a.childMap != b.childMap {
		return false
	}
	for at, e := range a.entries {
		if o := b.entries[at]; e.hash != o.hash || e.key != o.key {
			return false
		}
	}
	for at, child := range a.children {
		if !equalNodes(child, b.children[at]) {
			return false
		}
	}
	return true
}

func (s Set[T]) String() string {
	var b strings.Builder
	b.WriteByte('{')
	first := true
	for item := range s.All() {
		if !first {
			b.WriteString(", ")
		}
		first = false
		fmt.Fprintf(&b, "%v", item)
	}
	b.WriteByte('}')
	return b.String()
}
