package hamt

import "iter"

// Map is a persistent (immutable) association of keys to values, backed by
// the same trie engine as Set. Only the key participates in hashing and
// equality; payload values ride along. The zero value is an empty map ready
// for use.
type Map[K comparable, V any] struct {
	props[K]
	root *node[K, V]
}

// ImmutableMap constructs a map with options, if you need any.
func ImmutableMap[K comparable, V any](opts ...Option[K]) Map[K, V] {
	m := Map[K, V]{}
	for _, option := range opts {
		m.props = option.config(m.props)
	}
	return m
}

// MapOf constructs a map holding the given associations.
func MapOf[K comparable, V any](entries map[K]V) Map[K, V] {
	m := Map[K, V]{}
	for k, v := range entries {
		m = m.With(k, v)
	}
	return m
}

// --- API -------------------------------------------------------------------

// Len returns the number of associations.
func (m Map[K, V]) Len() int {
	if m.root == nil {
		return 0
	}
	return m.root.size
}

// Get returns the value associated with key. If key is not present, the zero
// value for type V will be returned, together with found=false.
func (m Map[K, V]) Get(key K) (V, bool) {
	if m.root == nil {
		var none V
		return none, false
	}
	m.props = m.props.init()
	e, found := m.root.find(pathTop(m.hash(key)), key)
	return e.val, found
}

// Contains checks key for membership.
func (m Map[K, V]) Contains(key K) bool {
	_, found := m.Get(key)
	return found
}

// With returns a map additionally associating key with value, replacing any
// previous association for key.
func (m Map[K, V]) With(key K, value V) Map[K, V] {
	m.props = m.props.init()
	e := entry[K, V]{key: key, val: value, hash: m.hash(key)}
	if m.root == nil {
		root := &node[K, V]{
			entryMap: bitpos(pathTop(e.hash).slot()),
			entries:  []entry[K, V]{e},
			size:     1,
		}
		return m.withRoot(root)
	}
	root, _ := m.root.insert(pathTop(e.hash), e, true)
	return m.withRoot(root)
}

// Without returns a map with the association for key removed, if present.
func (m Map[K, V]) Without(key K) Map[K, V] {
	if m.root == nil {
		return m
	}
	m.props = m.props.init()
	root, _ := m.root.remove(pathTop(m.hash(key)), key)
	return m.withRoot(root)
}

// All iterates over the associations of m, in unspecified order.
func (m Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		if m.root != nil {
			m.root.each(func(e entry[K, V]) bool { return yield(e.key, e.val) })
		}
	}
}

// Keys iterates over the keys of m, in unspecified order.
func (m Map[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		if m.root != nil {
			m.root.each(func(e entry[K, V]) bool { return yield(e.key) })
		}
	}
}

// Values iterates over the values of m, in unspecified order.
func (m Map[K, V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		if m.root != nil {
			m.root.each(func(e entry[K, V]) bool { return yield(e.val) })
		}
	}
}

// Subtracting returns a map without the associations whose keys are members
// of keys. It runs the same pairwise node algebra as Set.Subtracting; values
// do not participate in the comparison.
func (m Map[K, V]) Subtracting(keys Set[K]) Map[K, V] {
	if m.root == nil || keys.root == nil {
		return m
	}
	bld := subtractNodes(pathTop(0), m.root, keys.root, neverShared[K, V, unit])
	if bld == nil {
		return m
	}
	return m.withRoot(bld.finalize(pathTop(0)))
}

// SubtractingKeys returns the members of s that do not occur as keys of m.
// The map's trie is consumed directly by the pairwise node algebra, with no
// per-key loop, and the map's value type stays out of the comparison.
func SubtractingKeys[T comparable, V any](s Set[T], m Map[T, V]) Set[T] {
	if s.root == nil || m.root == nil {
		return s
	}
	bld := subtractNodes(pathTop(0), s.root, m.root, neverShared[T, unit, V])
	if bld == nil {
		return s
	}
	return s.withRoot(bld.finalize(pathTop(0)))
}

// --- Internal --------------------------------------------------------------

func (m Map[K, V]) withRoot(root *node[K, V]) Map[K, V] {
	if audit {
		vetRoot(root)
	}
	return Map[K, V]{props: m.props, root: root}
}
