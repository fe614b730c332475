package hamt

import (
	"fmt"
	"strings"
	"testing"

	tp "github.com/xlab/treeprint"
)

// --- Print trie structure --------------------------------------------------

func printTrie[K comparable, V any](root *node[K, V]) string {
	if root == nil {
		return "∅"
	}
	printer := tp.New()
	appendNode(printer, root)
	return printer.String()
}

func appendNode[K comparable, V any](printer tp.Tree, n *node[K, V]) {
	if n.isBucket() {
		keys := make([]string, 0, len(n.bucket))
		for _, e := range n.bucket {
			keys = append(keys, fmt.Sprintf("%v", e.key))
		}
		printer.AddNode("⧉{" + strings.Join(keys, ",") + "}")
		return
	}
	branch := printer.AddBranch(n.String())
	for _, e := range n.entries {
		branch.AddNode(fmt.Sprintf("%v", e.key))
	}
	for _, child := range n.children {
		appendNode(branch, child)
	}
}

// --- Shared test helpers ---------------------------------------------------

// auditOn re-verifies the full structural invariant after every operation for
// the duration of the test.
func auditOn(t testing.TB) {
	audit = true
	t.Cleanup(func() { audit = false })
}

// collidingHash forces full-hash collisions: every element shares its hash
// with all elements of equal low bits.
func collidingHash(n int) uint64 {
	return uint64(n & 3)
}

// prefixHash makes all elements share their root-level chunk and diverge one
// level deeper.
func prefixHash(n int) uint64 {
	return uint64(n)<<bitsPerLevel | 1
}

func entryOf(key int, hash uint64) entry[int, unit] {
	return entry[int, unit]{key: key, hash: hash}
}

func setOfColliding(members ...int) Set[int] {
	s := Immutable[int](HashFunc(collidingHash))
	for _, m := range members {
		s = s.With(m)
	}
	return s
}
