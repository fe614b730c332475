package hamt

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestMergedSubtreeDiverging(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "persistent.hamt")
	defer teardown()
	//
	n := mergedSubtree(pathTop(0), entryOf(1, 2), entryOf(2, 1))
	if n.entryMap != bitpos(1)|bitpos(2) {
		t.Logf("merged =\n%s", printTrie(n))
		t.Errorf("expected entries at slots 1 and 2, bitmap is %b", n.entryMap)
	}
	if n.entries[0].key != 2 || n.entries[1].key != 1 {
		t.Errorf("expected entries in ascending slot order, got %v", n.entries)
	}
	n.vet(0, 0)
}

func TestMergedSubtreeSharedPrefix(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "persistent.hamt")
	defer teardown()
	//
	// both hashes select slot 1 at the root, then diverge
	n := mergedSubtree(pathTop(0), entryOf(1, prefixHash(1)), entryOf(2, prefixHash(2)))
	if n.childMap != bitpos(1) || len(n.entries) != 0 {
		t.Logf("merged =\n%s", printTrie(n))
		t.Fatalf("expected a lone child at slot 1, got %s", n)
	}
	if child := n.children[0]; len(child.entries) != 2 {
		t.Errorf("expected the child to hold both entries, holds %d", len(child.entries))
	}
	if n.size != 2 {
		t.Errorf("expected subtree size 2, is %d", n.size)
	}
	n.vet(0, 0)
}

func TestMergedSubtreeCollision(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "persistent.hamt")
	defer teardown()
	//
	n := mergedSubtree(pathTop(0), entryOf(1, 7), entryOf(2, 7))
	depth := 0
	for !n.isBucket() {
		if len(n.children) != 1 {
			t.Fatalf("expected a single-child chain towards the bucket, got %s", n)
		}
		n = n.children[0]
		depth++
	}
	if depth != 13 {
		t.Errorf("expected the collision bucket at depth 13, is at %d", depth)
	}
	if len(n.bucket) != 2 {
		t.Errorf("expected 2 colliding entries in the bucket, got %d", len(n.bucket))
	}
}

func TestNodeInsertFind(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "persistent.hamt")
	defer teardown()
	//
	root := &node[int, unit]{entryMap: bitpos(1), entries: []entry[int, unit]{entryOf(1, 1)}, size: 1}
	root, grew := root.insert(pathTop(2), entryOf(2, 2), false)
	if !grew || root.size != 2 {
		t.Fatalf("expected insert to grow the node to size 2, got %s", root)
	}
	if _, found := root.find(pathTop(2), 2); !found {
		t.Error("expected to find inserted entry 2, didn't")
	}
	if _, found := root.find(pathTop(3), 3); found {
		t.Error("expected not to find 3, did")
	}
	root.vet(0, 0)
}

func TestNodeInsertPresentKeepsPointer(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "persistent.hamt")
	defer teardown()
	//
	root := mergedSubtree(pathTop(0), entryOf(1, 1), entryOf(2, 2))
	same, grew := root.insert(pathTop(1), entryOf(1, 1), false)
	if grew || same != root {
		t.Error("expected inserting a present entry to return the identical node, didn't")
	}
}

func TestNodeRemoveAbsentKeepsPointer(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "persistent.hamt")
	defer teardown()
	//
	root := mergedSubtree(pathTop(0), entryOf(1, 1), entryOf(2, 2))
	same, changed := root.remove(pathTop(3), 3)
	if changed || same != root {
		t.Error("expected removal of an absent element to return the identical node, didn't")
	}
	// same slot, different full hash
	same, changed = root.remove(pathTop(1|1<<8), 99)
	if changed || same != root {
		t.Error("expected removal with a colliding chunk but different hash to change nothing, did")
	}
}

func TestNodeRemoveCollapsesChain(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "persistent.hamt")
	defer teardown()
	auditOn(t)
	//
	s := Immutable[int](HashFunc(prefixHash)).With(1).With(2)
	if s.root.childMap == 0 {
		t.Fatalf("expected the shared hash prefix to force a child node, got\n%s", printTrie(s.root))
	}
	s = s.Without(2)
	if s.root.childMap != 0 || len(s.root.entries) != 1 {
		t.Logf("root =\n%s", printTrie(s.root))
		t.Errorf("expected the last entry to fold back inline, got %s", s.root)
	}
	if !s.Contains(1) || s.Contains(2) {
		t.Error("expected {1} after removal, membership disagrees")
	}
}

func TestCollisionBucketLifecycle(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "persistent.hamt")
	defer teardown()
	auditOn(t)
	//
	s := setOfColliding(1, 5, 9) // all hash to 1
	if s.Len() != 3 {
		t.Fatalf("expected 3 colliding members, have %d", s.Len())
	}
	for _, m := range []int{1, 5, 9} {
		if !s.Contains(m) {
			t.Errorf("expected %d ∈ set, isn't", m)
		}
	}
	s = s.Without(5)
	if s.Len() != 2 || s.Contains(5) || !s.Contains(9) {
		t.Logf("root =\n%s", printTrie(s.root))
		t.Error("expected exactly 5 to leave the bucket, membership disagrees")
	}
	s = s.Without(9)
	if s.root.childMap != 0 || s.root.size != 1 {
		t.Logf("root =\n%s", printTrie(s.root))
		t.Errorf("expected the dissolved bucket to collapse to an inline entry, got %s", s.root)
	}
}

func TestVetDetectsCorruption(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected vet to panic on a corrupted node, didn't")
		}
	}()
	bad := &node[int, unit]{entryMap: bitpos(1), size: 1} // bitmap claims an entry that isn't there
	bad.vet(0, 0)
}
