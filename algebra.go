package hamt

import "math/bits"

// The pairwise algebra combines two tries slot-by-slot and level-by-level.
// Both operands must place elements with the default (or one shared) hash
// function, so that equal elements sit at equal trie positions.

// sameNode is the sharing predicate for operands of one trie type: pointer
// identity. Identical allocations hold identical contents, so recursion can
// stop without descending.
func sameNode[K comparable, V any](a, b *node[K, V]) bool {
	return a == b
}

// neverShared is the sharing predicate for the cross-type case (set versus
// map keys): tries over different payload types never alias.
func neverShared[K comparable, V, W any](_ *node[K, V], _ *node[K, W]) bool {
	return false
}

// subtractNodes computes the contents of a with every element of b removed,
// one trie level at a time. A nil return means "no change, keep a by
// reference"; otherwise the returned builder holds the new level contents and
// is finalized by the caller. b's payload type may differ from a's; only
// hashes and keys participate.
//
// shared reports whether its operands are the same allocation; see sameNode
// and neverShared.
func subtractNodes[K comparable, V, W any](
	path hashPath,
	a *node[K, V],
	b *node[K, W],
	shared func(*node[K, V], *node[K, W]) bool,
) *builder[K, V] {
	if shared(a, b) {
		// identical subtrees cancel out entirely, no descent needed
		bld := builderFrom(a)
		bld.clear()
		return bld
	}
	if a.isBucket() || b.isBucket() {
		return subtractBuckets(a, b)
	}
	bld := builderFrom(a)
	for rest := a.entryMap | a.childMap; rest != 0; {
		bit := rest & -rest
		rest &^= bit
		slot := uint(bits.TrailingZeros32(bit))
		switch {
		case a.entryMap&bit != 0 && b.entryMap&bit != 0:
			// an equal chunk is not enough, the full hash and key decide
			ae, be := a.entryAt(bit), b.entryAt(bit)
			if ae.hash == be.hash && ae.key == be.key {
				bld.removeSlot(slot)
			}
		case a.entryMap&bit != 0 && b.childMap&bit != 0:
			ae := a.entryAt(bit)
			if _, found := b.childAt(bit).find(path.at(ae.hash).descend(), ae.key); found {
				bld.removeSlot(slot)
			}
		case a.childMap&bit != 0 && b.entryMap&bit != 0:
			be := b.entryAt(bit)
			child, changed := a.childAt(bit).remove(path.at(be.hash).descend(), be.key)
			if changed {
				bld.reslot(slot, child)
			}
		case a.childMap&bit != 0 && b.childMap&bit != 0:
			sub := subtractNodes(path.descend(), a.childAt(bit), b.childAt(bit), shared)
			if sub != nil {
				bld.reslot(slot, sub.finalize(path.descend()))
			}
		}
	}
	if !bld.edited {
		return nil
	}
	return bld
}

// subtractBuckets performs a linear set difference at bucket depth.
func subtractBuckets[K comparable, V, W any](a *node[K, V], b *node[K, W]) *builder[K, V] {
	assertThat(a.isBucket() && b.isBucket(), "collision bucket met a branching node at equal depth")
	var keep []entry[K, V]
	for _, e := range a.bucket {
		if !bucketHasKey(b.bucket, e.key, e.hash) {
			keep = append(keep, e)
		}
	}
	if len(keep) == len(a.bucket) {
		return nil
	}
	bld := builderFrom(a)
	if keep == nil {
		bld.clear()
	} else {
		bld.rebucket(keep)
	}
	return bld
}

func bucketHasKey[K comparable, W any](bucket []entry[K, W], key K, hash uint64) bool {
	for _, e := range bucket {
		if e.hash == hash && e.key == key {
			return true
		}
	}
	return false
}

// unionNodes merges b into a, preferring a's payloads on duplicate keys. The
// result is a itself when b contributes nothing new.
func unionNodes[K comparable, V any](path hashPath, a, b *node[K, V]) *node[K, V] {
	if a == b {
		return a
	}
	if a.isBucket() || b.isBucket() {
		return unionBuckets(a, b)
	}
	bld := builderFrom(a)
	for rest := b.entryMap | b.childMap; rest != 0; {
		bit := rest & -rest
		rest &^= bit
		slot := uint(bits.TrailingZeros32(bit))
		switch {
		case a.entryMap&bit != 0 && b.entryMap&bit != 0:
			ae, be := a.entryAt(bit), b.entryAt(bit)
			if ae.hash != be.hash || ae.key != be.key {
				bld.removeSlot(slot)
				bld.insertChild(slot, mergedSubtree(path.descend(), ae, be))
			}
		case a.entryMap&bit != 0 && b.childMap&bit != 0:
			// a's entry submerges into b's subtree, a's payload winning
			ae := a.entryAt(bit)
			child, _ := b.childAt(bit).insert(path.at(ae.hash).descend(), ae, true)
			bld.removeSlot(slot)
			bld.insertChild(slot, child)
		case a.childMap&bit != 0 && b.entryMap&bit != 0:
			be := b.entryAt(bit)
			child, grew := a.childAt(bit).insert(path.at(be.hash).descend(), be, false)
			if grew {
				bld.replaceChild(slot, child)
			}
		case a.childMap&bit != 0 && b.childMap&bit != 0:
			merged := unionNodes(path.descend(), a.childAt(bit), b.childAt(bit))
			if merged != a.childAt(bit) {
				bld.replaceChild(slot, merged)
			}
		case b.entryMap&bit != 0:
			bld.insertEntry(slot, b.entryAt(bit))
		default:
			bld.insertChild(slot, b.childAt(bit))
		}
	}
	if !bld.edited {
		return a
	}
	return bld.finalize(path)
}

// unionBuckets merges two collision buckets over the same full hash.
func unionBuckets[K comparable, V any](a, b *node[K, V]) *node[K, V] {
	assertThat(a.isBucket() && b.isBucket(), "collision bucket met a branching node at equal depth")
	var extra []entry[K, V]
	for _, e := range b.bucket {
		if !bucketHasKey(a.bucket, e.key, e.hash) {
			extra = append(extra, e)
		}
	}
	if extra == nil {
		return a
	}
	merged := make([]entry[K, V], 0, len(a.bucket)+len(extra))
	merged = append(append(merged, a.bucket...), extra...)
	return &node[K, V]{bucket: merged, size: len(merged)}
}
