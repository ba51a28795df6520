// Package ssz implements the canonical binary serializer and tree-hash
// layer (C2/C3) shared by every structured record in this module:
// bit-exact encode/decode of primitives, fixed arrays, variable-length
// lists, and records, plus a cached Merkle tree hasher over the
// resulting chunks.
//
// Decoding is total: no path here panics or reads out of bounds. Every
// failure is reported through one of the sentinel errors below.
package ssz

import "errors"

// Decode/encode errors (§4.2, §7).
var (
	ErrOutOfBounds              = errors.New("ssz: read past end of buffer")
	ErrTooShort                 = errors.New("ssz: buffer shorter than the type requires")
	ErrTooLong                  = errors.New("ssz: buffer longer than the type permits")
	ErrInvalidBool              = errors.New("ssz: boolean byte is neither 0 nor 1")
	ErrListTooLong              = errors.New("ssz: variable sequence byte length exceeds 2^32-1")
	ErrUnexpectedTrailingBytes  = errors.New("ssz: trailing bytes after a fully-consumed top-level decode")
	ErrInvalidBitfieldPadding   = errors.New("ssz: unused trailing bits of a bitfield are not zero")
)

// BytesPerLengthPrefix is the width, in bytes, of the little-endian
// length prefix written ahead of every variable-length sequence (§4.2).
const BytesPerLengthPrefix = 4

// maxListByteLength is the largest byte length a 4-byte little-endian
// length prefix can represent (2^32 - 1), per §4.2's "L ≤ 2^32" rule.
const maxListByteLength = 1<<32 - 1

// BytesPerChunk is the width, in bytes, of a tree-hash leaf chunk (§4.3).
const BytesPerChunk = 32

// Marshaler is implemented by types with a canonical SSZ encoding.
type Marshaler interface {
	MarshalSSZ() ([]byte, error)
}

// Unmarshaler is implemented by types that decode themselves from a
// canonical SSZ byte string, consuming from offset and returning the
// offset immediately after the decoded value.
type Unmarshaler interface {
	UnmarshalSSZ(data []byte, offset int) (newOffset int, err error)
}

// HashRoot is implemented by types that can compute their tree-hash root.
type HashRoot interface {
	HashTreeRoot() ([32]byte, error)
}

// Decode fully consumes data decoding into dst, which must implement
// Unmarshaler. Any bytes left over after dst is decoded are reported as
// ErrUnexpectedTrailingBytes — the top-level decode entry point must
// consume its entire input (§4.2).
func Decode(data []byte, dst Unmarshaler) error {
	n, err := dst.UnmarshalSSZ(data, 0)
	if err != nil {
		return err
	}
	if n != len(data) {
		return ErrUnexpectedTrailingBytes
	}
	return nil
}
