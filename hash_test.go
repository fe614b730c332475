package hamt

import "testing"

func TestHashPathChunks(t *testing.T) {
	path := pathTop(0b01010_11111)
	if path.slot() != 0b11111 {
		t.Errorf("expected root-level chunk to be 31, is %d", path.slot())
	}
	path = path.descend()
	if path.slot() != 0b01010 {
		t.Errorf("expected level-1 chunk to be 10, is %d", path.slot())
	}
}

func TestHashPathTopBits(t *testing.T) {
	path := hashPath{hash: 1 << 63, shift: 60}
	if path.slot() != 8 {
		t.Errorf("expected final chunk to hold the top 4 hash bits (8), is %d", path.slot())
	}
}

func TestHashPathExhaustion(t *testing.T) {
	path := pathTop(^uint64(0))
	depth := 0
	for !path.exhausted() {
		path = path.descend()
		depth++
	}
	if depth != 13 {
		t.Errorf("expected a 64-bit hash to span 13 levels, spans %d", depth)
	}
}

func TestHashPathRebase(t *testing.T) {
	path := pathTop(0).descend().descend()
	rebased := path.at(0b11111 << bitsPerLevel << bitsPerLevel)
	if rebased.shift != path.shift {
		t.Errorf("expected rebased path to stay at depth %d, is at %d", path.shift, rebased.shift)
	}
	if rebased.slot() != 31 {
		t.Errorf("expected rebased path to address chunk 31, addresses %d", rebased.slot())
	}
}

func TestDefaultHashIsShared(t *testing.T) {
	// independently built collections must agree on hash paths
	a := SetOf(1, 2, 3)
	b := SetOf(2)
	if got := a.Subtracting(b); !got.Equal(SetOf(1, 3)) {
		t.Errorf("expected {1,2,3} − {2} to be {1,3}, is %v", got)
	}
}
