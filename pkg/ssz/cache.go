package ssz

import "github.com/chainbound/beaconcore/pkg/metrics"

// BTreeOverlay interprets a flat chunk buffer as a complete binary tree
// over a fixed number of logical leaves, some of which may span more
// than one chunk (§4.3). It carries no storage of its own; TreeCache
// pairs an overlay with the chunks and dirty flags it describes.
type BTreeOverlay struct {
	offset  int
	depth   int
	lengths []int
}

// NewBTreeOverlay builds the overlay for a value with the given
// per-leaf chunk widths (lengths[i] is the chunk count of leaf i; a
// width of 0 is treated as 1, matching a one-chunk padding leaf).
// offset is the chunk index this subtree's root occupies in the
// caller's flat buffer.
func NewBTreeOverlay(offset int, lengths []int) BTreeOverlay {
	numLeaves := NextPowerOfTwo(len(lengths))
	depth := 0
	for (1 << uint(depth)) < numLeaves {
		depth++
	}
	return BTreeOverlay{offset: offset, depth: depth, lengths: lengths}
}

// NumLeafNodes returns next_power_of_two(len(lengths)).
func (o BTreeOverlay) NumLeafNodes() int {
	return 1 << uint(o.depth)
}

// NumInternalNodes returns NumLeafNodes() - 1.
func (o BTreeOverlay) NumInternalNodes() int {
	return o.NumLeafNodes() - 1
}

// NumNodes returns 2*NumLeafNodes() - 1.
func (o BTreeOverlay) NumNodes() int {
	return 2*o.NumLeafNodes() - 1
}

// leafChunkCount returns the chunk width of leaf i: lengths[i] when i
// indexes a real field, 1 (a zero-padding leaf) otherwise.
func (o BTreeOverlay) leafChunkCount(i int) int {
	if i < len(o.lengths) {
		if o.lengths[i] <= 0 {
			return 1
		}
		return o.lengths[i]
	}
	return 1
}

// ChunkRange returns the [start, end) chunk indices, relative to
// o.offset, spanned by the entire subtree: internal nodes plus every
// leaf's raw chunks.
func (o BTreeOverlay) ChunkRange() (start, end int) {
	total := o.NumInternalNodes()
	for i := 0; i < o.NumLeafNodes(); i++ {
		total += o.leafChunkCount(i)
	}
	return o.offset, o.offset + total
}

// InternalChunkRange returns the [start, end) chunk indices covering
// only the fold (internal) nodes of the subtree.
func (o BTreeOverlay) InternalChunkRange() (start, end int) {
	return o.offset, o.offset + o.NumInternalNodes()
}

// leafChunkRange returns the [start, end) chunk indices, relative to
// o.offset, occupied by leaf i's raw content chunks.
func (o BTreeOverlay) leafChunkRange(i int) (start, end int) {
	base := o.offset + o.NumInternalNodes()
	for j := 0; j < i; j++ {
		base += o.leafChunkCount(j)
	}
	return base, base + o.leafChunkCount(i)
}

// childHeapIndices returns the heap-array indices of parent's two
// children within a complete binary tree of NumNodes() nodes, where
// internal nodes occupy heap indices [0, NumInternalNodes()) and
// leaves occupy [NumInternalNodes(), NumNodes()).
func childHeapIndices(parent int) (left, right int) {
	return 2*parent + 1, 2*parent + 2
}

// sameSchema reports whether o describes the same leaf layout as other,
// i.e. identical per-leaf chunk widths. A cache whose overlay no longer
// matches the value it shadows must be rebuilt from scratch (§4.3).
func (o BTreeOverlay) sameSchema(lengths []int) bool {
	if len(o.lengths) != len(lengths) {
		return false
	}
	for i := range lengths {
		if o.leafChunkCount(i) != (BTreeOverlay{lengths: lengths}).leafChunkCount(i) {
			return false
		}
	}
	return true
}

// TreeCache is the incremental Merkle cache (C3): a BTreeOverlay plus
// the chunk values and dirty flags it describes. Call UpdateLeaf for
// every leaf whose serialized bytes changed, then Recompute once; Root
// then agrees with FreshRoot computed directly from the same leaves.
type TreeCache struct {
	hashFn HashFn
	overlay BTreeOverlay

	internal     [][32]byte
	leafRoots    [][32]byte
	leafChunks   [][][32]byte
	dirtyInternal []bool
	dirtyLeaf    []bool
}

// NewTreeCache builds an empty cache for a value with the given
// per-leaf chunk widths. Every leaf starts as a zero chunk and dirty;
// the first Recompute after populating leaves via UpdateLeaf produces
// the real root.
func NewTreeCache(hashFn HashFn, lengths []int) *TreeCache {
	overlay := NewBTreeOverlay(0, lengths)
	n := overlay.NumLeafNodes()
	c := &TreeCache{
		hashFn:        hashFn,
		overlay:       overlay,
		internal:      make([][32]byte, overlay.NumInternalNodes()),
		leafRoots:     make([][32]byte, n),
		leafChunks:    make([][][32]byte, n),
		dirtyInternal: make([]bool, overlay.NumInternalNodes()),
		dirtyLeaf:     make([]bool, n),
	}
	for i := range c.dirtyLeaf {
		c.dirtyLeaf[i] = true
	}
	return c
}

// Rebuild discards all cached state and starts over with a new leaf
// layout. Called automatically by SetLengths on a schema mismatch; exposed directly for callers that know a structural change
// is coming (e.g. a list growing past its previous length).
func (c *TreeCache) Rebuild(lengths []int) {
	*c = *NewTreeCache(c.hashFn, lengths)
}

// SetLengths reconciles the cache's overlay with a value's current
// per-leaf chunk widths, rebuilding from scratch if they differ from
// what the cache was built for.
func (c *TreeCache) SetLengths(lengths []int) {
	if !c.overlay.sameSchema(lengths) {
		c.Rebuild(lengths)
	}
}

// UpdateLeaf stores new raw chunks for leaf i and marks it dirty iff
// its tree-hash contribution actually changed. chunks must be exactly
// the overlay's leafChunkCount(i) chunks wide.
func (c *TreeCache) UpdateLeaf(i int, chunks [][32]byte) {
	if i < 0 || i >= len(c.leafRoots) {
		return
	}
	root := Merkleize(c.hashFn, chunks, 0)
	if root != c.leafRoots[i] {
		c.leafRoots[i] = root
		c.dirtyLeaf[i] = true
	}
	cp := make([][32]byte, len(chunks))
	copy(cp, chunks)
	c.leafChunks[i] = cp
}

// nodeValue returns the current chunk value at a heap-array index,
// whether it names an internal node or a leaf.
func (c *TreeCache) nodeValue(heapIndex int) [32]byte {
	numInternal := len(c.internal)
	if heapIndex < numInternal {
		return c.internal[heapIndex]
	}
	return c.leafRoots[heapIndex-numInternal]
}

// nodeDirty reports whether the node at a heap-array index changed
// since the last Recompute.
func (c *TreeCache) nodeDirty(heapIndex int) bool {
	numInternal := len(c.internal)
	if heapIndex < numInternal {
		return c.dirtyInternal[heapIndex]
	}
	return c.dirtyLeaf[heapIndex-numInternal]
}

// Recompute walks internal_parents_and_children() bottom-up: any
// internal node whose child changed is re-hashed and marked dirty;
// nodes with no changed child are left untouched (§4.3 step 2).
// Heap indices increase with depth, so iterating parent indices from
// the deepest internal level down to the root guarantees each parent's
// children are already finalized when it is visited.
func (c *TreeCache) Recompute() {
	for p := len(c.internal) - 1; p >= 0; p-- {
		l, r := childHeapIndices(p)
		if c.nodeDirty(l) || c.nodeDirty(r) {
			metrics.MerkleCacheMisses.Inc()
			newVal := c.hashFn(c.nodeValue(l), c.nodeValue(r))
			if newVal != c.internal[p] {
				c.internal[p] = newVal
				c.dirtyInternal[p] = true
			} else {
				c.dirtyInternal[p] = false
			}
		} else {
			metrics.MerkleCacheHits.Inc()
			c.dirtyInternal[p] = false
		}
	}
	for i := range c.dirtyLeaf {
		c.dirtyLeaf[i] = false
	}
}

// Root returns the chunk at the overlay's offset: the cached root
// produced by the most recent Recompute.
func (c *TreeCache) Root() [32]byte {
	if len(c.internal) == 0 {
		return c.leafRoots[0]
	}
	return c.internal[0]
}

// FreshRoot computes the tree-hash root directly from leaf chunk
// groups with no cache involved, for agreement checks against Root()
// (§8 property 6: cached_root(V) == fresh_root(V)).
func FreshRoot(hashFn HashFn, leaves [][][32]byte) [32]byte {
	leafRoots := make([][32]byte, len(leaves))
	for i, chunks := range leaves {
		leafRoots[i] = Merkleize(hashFn, chunks, 0)
	}
	return Merkleize(hashFn, leafRoots, NextPowerOfTwo(len(leaves)))
}
