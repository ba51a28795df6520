// Package shuffle implements the deterministic, seed-driven list shuffle
// the committee assigner builds validator cycles from (C4).
package shuffle

import (
	"crypto/sha256"
	"errors"
)

// maxListLength bounds the shuffle at 2^24 elements: beyond that the
// 3-byte rejection-sampling window below can no longer address every
// position without bias.
const maxListLength = 1 << 24

// randBytes is the width, in bytes, of each rejection-sampling draw.
const randBytes = 3

// ErrListTooLong is returned when list has 2^24 or more elements.
var ErrListTooLong = errors.New("shuffle: list length exceeds 2^24")

// Shuffle returns a new slice holding a deterministic permutation of
// list, derived from seed. It implements a Fisher-Yates shuffle driven
// by a SHA-256 hash stream: each swap position is drawn from
// rand_bytes-wide chunks of the chain hash(seed), hash(hash(seed)), …, with
// values at or above the largest multiple of the draw range rejected to
// avoid modulo bias. The input slice is never mutated.
func Shuffle[T any](seed [32]byte, list []T) ([]T, error) {
	n := len(list)
	if n >= maxListLength {
		return nil, ErrListTooLong
	}
	out := make([]T, n)
	copy(out, list)
	if n < 2 {
		return out, nil
	}

	const sampleMax = 1<<(randBytes*8) - 1
	source := seed
	index := 0
	for index < n-1 {
		source = sha256.Sum256(source[:])
		for position := 0; position+randBytes <= len(source); position += randBytes {
			remaining := n - index
			if remaining <= 1 {
				break
			}
			sample := uint32(source[position])<<16 | uint32(source[position+1])<<8 | uint32(source[position+2])
			sampleCeiling := sampleMax - sampleMax%uint32(remaining)
			if sample >= sampleCeiling {
				continue
			}
			replacement := index + int(sample%uint32(remaining))
			out[index], out[replacement] = out[replacement], out[index]
			index++
			if index >= n-1 {
				break
			}
		}
	}
	return out, nil
}
