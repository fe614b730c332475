package hamt

// builder is a transient staging area for reshaping one trie level. It is
// created over an existing node (referencing that node's arrays until a
// write forces a private copy) or empty, accepts slot-level edits, and is
// finalized exactly once into an immutable node. The node a builder was
// created from is never observably affected by the edits.
//
// A builder is exclusively owned by a single operation and must never be
// shared or reused after finalize.
type builder[K comparable, V any] struct {
	entryMap     uint32
	childMap     uint32
	entries      []entry[K, V]
	children     []*node[K, V]
	bucket       []entry[K, V]
	ownsChildren bool
	edited       bool
	finalized    bool
}

func builderFrom[K comparable, V any](n *node[K, V]) *builder[K, V] {
	if n == nil {
		return &builder[K, V]{ownsChildren: true}
	}
	return &builder[K, V]{
		entryMap: n.entryMap,
		childMap: n.childMap,
		entries:  n.entries,
		children: n.children,
		bucket:   n.bucket,
	}
}

func (b *builder[K, V]) mutable() {
	assertThat(!b.finalized, "edit of a finalized builder")
	b.edited = true
}

func (b *builder[K, V]) forkChildren() {
	if !b.ownsChildren {
		b.children = append([]*node[K, V]{}, b.children...)
		b.ownsChildren = true
	}
}

// insertEntry makes slot an inline entry slot holding e. The slot must be
// free.
func (b *builder[K, V]) insertEntry(slot uint, e entry[K, V]) {
	b.mutable()
	bit := bitpos(slot)
	assertThat((b.entryMap|b.childMap)&bit == 0, "entry insert into occupied slot %d", slot)
	b.entryMap |= bit
	b.entries = insertAt(b.entries, sparseIndex(b.entryMap, bit), e)
}

// insertChild makes slot a child link slot. The slot must be free.
func (b *builder[K, V]) insertChild(slot uint, child *node[K, V]) {
	b.mutable()
	bit := bitpos(slot)
	assertThat((b.entryMap|b.childMap)&bit == 0, "child insert into occupied slot %d", slot)
	b.childMap |= bit
	b.children = insertAt(b.children, sparseIndex(b.childMap, bit), child)
	b.ownsChildren = true
}

// removeSlot drops whatever the slot holds, entry or child.
func (b *builder[K, V]) removeSlot(slot uint) {
	b.mutable()
	bit := bitpos(slot)
	switch {
	case b.entryMap&bit != 0:
		b.entries = cutAt(b.entries, sparseIndex(b.entryMap, bit))
		b.entryMap &^= bit
	case b.childMap&bit != 0:
		b.children = cutAt(b.children, sparseIndex(b.childMap, bit))
		b.childMap &^= bit
		b.ownsChildren = true
	default:
		assertThat(false, "removal of unoccupied slot %d", slot)
	}
}

// replaceChild substitutes the link at an occupied child slot.
func (b *builder[K, V]) replaceChild(slot uint, child *node[K, V]) {
	b.mutable()
	bit := bitpos(slot)
	assertThat(b.childMap&bit != 0, "slot %d holds no child to replace", slot)
	b.forkChildren()
	b.children[sparseIndex(b.childMap, bit)] = child
}

// inlineEntry collapses an occupied child slot to a single inline entry.
func (b *builder[K, V]) inlineEntry(slot uint, e entry[K, V]) {
	b.removeSlot(slot)
	b.insertEntry(slot, e)
}

// reslot re-binds a child slot to the outcome of a recursive step: removed
// entirely, collapsed to its last entry, or replaced by a reshaped child.
func (b *builder[K, V]) reslot(slot uint, child *node[K, V]) {
	switch {
	case child == nil:
		b.removeSlot(slot)
	case child.size == 1:
		b.inlineEntry(slot, child.soleEntry())
	default:
		b.replaceChild(slot, child)
	}
}

// rebucket replaces a collision bucket's contents wholesale.
func (b *builder[K, V]) rebucket(entries []entry[K, V]) {
	b.mutable()
	b.bucket = entries
}

// clear empties the level entirely.
func (b *builder[K, V]) clear() {
	b.mutable()
	b.entryMap, b.childMap = 0, 0
	b.entries, b.children, b.bucket = nil, nil, nil
	b.ownsChildren = true
}

// finalize derives the immutable node for the builder's final slot
// assignment and re-applies the collapse rule: a level emptied out yields
// nil, and a level left holding a single entry comes back with size 1 so that
// the caller re-inlines it into the parent slot (the root keeps it as a
// regular one-entry node). A builder must not be used after finalize.
func (b *builder[K, V]) finalize(path hashPath) *node[K, V] {
	assertThat(!b.finalized, "builder finalized twice")
	b.finalized = true
	if b.bucket != nil {
		if len(b.bucket) == 1 {
			e := b.bucket[0]
			n := &node[K, V]{entries: []entry[K, V]{e}, size: 1}
			if !path.exhausted() {
				n.entryMap = bitpos(path.slotFor(e.hash))
			}
			return n
		}
		return &node[K, V]{bucket: b.bucket, size: len(b.bucket)}
	}
	size := len(b.entries)
	for _, child := range b.children {
		size += child.size
	}
	if size == 0 {
		return nil
	}
	return &node[K, V]{
		entryMap: b.entryMap,
		childMap: b.childMap,
		entries:  b.entries,
		children: b.children,
		size:     size,
	}
}
