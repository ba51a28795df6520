package ssz

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"
)

// HashFn combines two 32-byte chunks into one. It is injectable so
// callers can swap in a different 32-byte hash family (§4.3 allows
// "BLAKE2 family or equivalent"); DefaultHashFn is blake2b-256.
type HashFn func(a, b [32]byte) [32]byte

// DefaultHashFn is the production chunk-combining function.
func DefaultHashFn(a, b [32]byte) [32]byte {
	var combined [64]byte
	copy(combined[:32], a[:])
	copy(combined[32:], b[:])
	return blake2b.Sum256(combined[:])
}

// zeroHashes memoizes hash(0,0), hash(hash(0,0),hash(0,0)), … up to
// depth levels for the given hash function. Merkleize reads only level
// 0 (the zero chunk) and hashes the zero-padded layers in full.
func zeroHashes(hashFn HashFn, depth int) [][32]byte {
	hashes := make([][32]byte, depth+1)
	for i := 1; i <= depth; i++ {
		hashes[i] = hashFn(hashes[i-1], hashes[i-1])
	}
	return hashes
}

// NextPowerOfTwo returns the smallest power of two that is >= n (n >= 0).
func NextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// Pack splits a serialized byte string into BytesPerChunk-wide chunks,
// zero-padding the final chunk. An empty input packs to a single zero
// chunk.
func Pack(serialized []byte) [][32]byte {
	if len(serialized) == 0 {
		return [][32]byte{{}}
	}
	n := (len(serialized) + BytesPerChunk - 1) / BytesPerChunk
	chunks := make([][32]byte, n)
	for i := 0; i < n; i++ {
		start := i * BytesPerChunk
		end := start + BytesPerChunk
		if end > len(serialized) {
			end = len(serialized)
		}
		copy(chunks[i][:], serialized[start:end])
	}
	return chunks
}

// Merkleize folds chunks pairwise bottom-up into a single 32-byte root,
// padding with zero chunks up to limit (or to the next power of two of
// len(chunks) if limit is 0 or smaller than the chunk count).
func Merkleize(hashFn HashFn, chunks [][32]byte, limit int) [32]byte {
	count := len(chunks)
	if limit < count {
		limit = count
	}
	limit = NextPowerOfTwo(limit)
	if count == 0 {
		chunks = [][32]byte{{}}
		count = 1
	}

	depth := 0
	for (1 << uint(depth)) < limit {
		depth++
	}
	zeros := zeroHashes(hashFn, depth)

	layer := make([][32]byte, limit)
	copy(layer, chunks)
	for i := count; i < limit; i++ {
		layer[i] = zeros[0]
	}

	for d := 0; d < depth; d++ {
		next := make([][32]byte, len(layer)/2)
		for i := range next {
			next[i] = hashFn(layer[2*i], layer[2*i+1])
		}
		layer = next
	}
	return layer[0]
}

// MixInLength folds a length value into a Merkle root, used for every
// variable-size type per the tree-hash schema.
func MixInLength(hashFn HashFn, root [32]byte, length uint64) [32]byte {
	var lengthChunk [32]byte
	binary.LittleEndian.PutUint64(lengthChunk[:8], length)
	return hashFn(root, lengthChunk)
}

// HashTreeRootContainer folds a record's field roots, in declared order,
// into the record's tree-hash root (§4.3's "hash(concat(root(field1), …))"
// rule, padded to a power of two and folded bottom-up).
func HashTreeRootContainer(hashFn HashFn, fieldRoots [][32]byte) [32]byte {
	return Merkleize(hashFn, fieldRoots, 0)
}

// HashTreeRootList folds a variable sequence's element roots into its
// tree-hash root: Merkleize against the declared maximum length, then
// mix in the actual element count.
func HashTreeRootList(hashFn HashFn, elementRoots [][32]byte, maxLen int) [32]byte {
	root := Merkleize(hashFn, elementRoots, NextPowerOfTwo(maxLen))
	return MixInLength(hashFn, root, uint64(len(elementRoots)))
}

// HashTreeRootBytes packs and Merkleizes a raw byte string (a fixed byte
// array or the packed body of a primitive list).
func HashTreeRootBytes(hashFn HashFn, data []byte) [32]byte {
	return Merkleize(hashFn, Pack(data), 0)
}

// HashTreeRootBitfield computes the tree-hash root of a Bitfield: its
// packed bytes are chunk-packed, Merkleized, and mixed in with its
// logical bit length.
func HashTreeRootBitfield(hashFn HashFn, b Bitfield) [32]byte {
	root := Merkleize(hashFn, Pack(b.ToBytes()), 0)
	return MixInLength(hashFn, root, uint64(b.Len()))
}
