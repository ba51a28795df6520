package ssz

import (
	"encoding/binary"

	"github.com/holiman/uint256"
)

// EncodeBool appends the canonical single-byte encoding of v (§4.2).
func EncodeBool(v bool) []byte {
	if v {
		return []byte{1}
	}
	return []byte{0}
}

// EncodeUint8 appends the canonical one-byte encoding of v.
func EncodeUint8(v uint8) []byte {
	return []byte{v}
}

// EncodeUint16 appends the canonical little-endian two-byte encoding of v.
func EncodeUint16(v uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return b
}

// EncodeUint32 appends the canonical little-endian four-byte encoding of v.
func EncodeUint32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

// EncodeUint64 appends the canonical little-endian eight-byte encoding of v.
func EncodeUint64(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

// EncodeUint256 appends the canonical little-endian 32-byte encoding of v.
func EncodeUint256(v *uint256.Int) []byte {
	b := make([]byte, 32)
	bs := v.Bytes32() // big-endian
	for i := 0; i < 32; i++ {
		b[i] = bs[31-i]
	}
	return b
}

// EncodeFixedBytes returns a copy of a fixed-width byte array (Hash256,
// Address, public keys, signatures, …): on the wire it is simply its N
// raw bytes, no length prefix.
func EncodeFixedBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// EncodeVariable wraps an already-concatenated sequence of element
// encodings with its 4-byte little-endian byte-length prefix (§4.2's
// "variable sequence of T" rule). It fails with ErrListTooLong if the
// byte length cannot fit in the prefix.
func EncodeVariable(body []byte) ([]byte, error) {
	if len(body) > maxListByteLength {
		return nil, ErrListTooLong
	}
	out := make([]byte, 0, BytesPerLengthPrefix+len(body))
	out = append(out, EncodeUint32(uint32(len(body)))...)
	out = append(out, body...)
	return out, nil
}

// EncodeList encodes a variable sequence of elements by concatenating
// each element's encoding (via encode) and wrapping the result with
// EncodeVariable.
func EncodeList[T any](elements []T, encode func(T) ([]byte, error)) ([]byte, error) {
	var body []byte
	for _, e := range elements {
		eb, err := encode(e)
		if err != nil {
			return nil, err
		}
		body = append(body, eb...)
	}
	return EncodeVariable(body)
}

// EncodeRecord concatenates the already-encoded fields of a record in
// their declared order, with no separators (§4.2's "Record" rule).
func EncodeRecord(fields ...[]byte) []byte {
	var out []byte
	for _, f := range fields {
		out = append(out, f...)
	}
	return out
}
