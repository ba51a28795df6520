package ssz

import "testing"

func leavesFor(values []byte) [][][32]byte {
	leaves := make([][][32]byte, len(values))
	for i, v := range values {
		leaves[i] = [][32]byte{{v}}
	}
	return leaves
}

func TestTreeCacheAgreesWithFreshRoot(t *testing.T) {
	lengths := []int{1, 1, 1, 1, 1}
	cache := NewTreeCache(DefaultHashFn, lengths)
	values := []byte{10, 20, 30, 40, 50}
	for i, v := range values {
		cache.UpdateLeaf(i, [][32]byte{{v}})
	}
	cache.Recompute()

	fresh := FreshRoot(DefaultHashFn, leavesFor(values))
	if cache.Root() != fresh {
		t.Fatalf("cached root %x != fresh root %x", cache.Root(), fresh)
	}
}

func TestTreeCacheIncrementalMutationAgreesWithFreshRoot(t *testing.T) {
	lengths := []int{1, 1, 1, 1}
	cache := NewTreeCache(DefaultHashFn, lengths)
	values := []byte{1, 2, 3, 4}
	for i, v := range values {
		cache.UpdateLeaf(i, [][32]byte{{v}})
	}
	cache.Recompute()
	if got, want := cache.Root(), FreshRoot(DefaultHashFn, leavesFor(values)); got != want {
		t.Fatalf("initial root mismatch: %x != %x", got, want)
	}

	// Mutate a single leaf and confirm agreement still holds after a
	// second Recompute.
	values[2] = 99
	cache.UpdateLeaf(2, [][32]byte{{values[2]}})
	cache.Recompute()
	if got, want := cache.Root(), FreshRoot(DefaultHashFn, leavesFor(values)); got != want {
		t.Fatalf("root after mutation mismatch: %x != %x", got, want)
	}
}

func TestTreeCacheUnchangedLeafShortCircuits(t *testing.T) {
	lengths := []int{1, 1}
	cache := NewTreeCache(DefaultHashFn, lengths)
	cache.UpdateLeaf(0, [][32]byte{{1}})
	cache.UpdateLeaf(1, [][32]byte{{2}})
	cache.Recompute()
	root1 := cache.Root()

	// Re-apply identical content: UpdateLeaf must not mark the leaf
	// dirty, so Recompute leaves the cached internal node untouched.
	cache.UpdateLeaf(0, [][32]byte{{1}})
	if cache.dirtyLeaf[0] {
		t.Error("UpdateLeaf with unchanged content marked the leaf dirty")
	}
	cache.Recompute()
	if cache.Root() != root1 {
		t.Error("root changed despite no leaf content change")
	}
}

func TestTreeCacheRebuildsOnSchemaMismatch(t *testing.T) {
	cache := NewTreeCache(DefaultHashFn, []int{1, 1})
	cache.UpdateLeaf(0, [][32]byte{{1}})
	cache.UpdateLeaf(1, [][32]byte{{2}})
	cache.Recompute()

	cache.SetLengths([]int{2, 1})
	if cache.overlay.NumLeafNodes() == 0 {
		t.Fatal("rebuilt cache has no leaves")
	}
	for _, d := range cache.dirtyLeaf {
		if !d {
			t.Error("rebuilt cache should mark every leaf dirty")
		}
	}
}

func TestBTreeOverlayNodeCounts(t *testing.T) {
	o := NewBTreeOverlay(0, []int{1, 1, 1, 1, 1})
	if o.NumLeafNodes() != 8 {
		t.Errorf("NumLeafNodes() = %d, want 8", o.NumLeafNodes())
	}
	if o.NumInternalNodes() != 7 {
		t.Errorf("NumInternalNodes() = %d, want 7", o.NumInternalNodes())
	}
	if o.NumNodes() != 15 {
		t.Errorf("NumNodes() = %d, want 15", o.NumNodes())
	}
}

func TestBTreeOverlayChunkRangesCoverVariableLeaves(t *testing.T) {
	o := NewBTreeOverlay(0, []int{1, 3})
	start, end := o.ChunkRange()
	if start != 0 {
		t.Fatalf("ChunkRange start = %d, want 0", start)
	}
	// 1 internal node (2 leaves -> NumInternalNodes=1) + leaf widths 1 + 3 = 5 total.
	if end != 5 {
		t.Fatalf("ChunkRange end = %d, want 5", end)
	}
	iStart, iEnd := o.InternalChunkRange()
	if iStart != 0 || iEnd != 1 {
		t.Fatalf("InternalChunkRange = [%d,%d), want [0,1)", iStart, iEnd)
	}
}
