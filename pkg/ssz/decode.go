package ssz

import (
	"encoding/binary"

	"github.com/holiman/uint256"
)

// need reports whether data has at least n bytes remaining from offset,
// without ever slicing past the end: an offset outside data is
// ErrOutOfBounds, and fewer than n remaining bytes is ErrTooShort.
func need(data []byte, offset, n int) error {
	if offset < 0 || offset > len(data) {
		return ErrOutOfBounds
	}
	if len(data)-offset < n {
		return ErrTooShort
	}
	return nil
}

// DecodeBool reads the canonical single-byte boolean at offset.
func DecodeBool(data []byte, offset int) (bool, int, error) {
	if err := need(data, offset, 1); err != nil {
		return false, offset, err
	}
	switch data[offset] {
	case 0:
		return false, offset + 1, nil
	case 1:
		return true, offset + 1, nil
	default:
		return false, offset, ErrInvalidBool
	}
}

// DecodeUint8 reads the canonical one-byte integer at offset.
func DecodeUint8(data []byte, offset int) (uint8, int, error) {
	if err := need(data, offset, 1); err != nil {
		return 0, offset, err
	}
	return data[offset], offset + 1, nil
}

// DecodeUint16 reads the canonical little-endian two-byte integer at offset.
func DecodeUint16(data []byte, offset int) (uint16, int, error) {
	if err := need(data, offset, 2); err != nil {
		return 0, offset, err
	}
	return binary.LittleEndian.Uint16(data[offset:]), offset + 2, nil
}

// DecodeUint32 reads the canonical little-endian four-byte integer at offset.
func DecodeUint32(data []byte, offset int) (uint32, int, error) {
	if err := need(data, offset, 4); err != nil {
		return 0, offset, err
	}
	return binary.LittleEndian.Uint32(data[offset:]), offset + 4, nil
}

// DecodeUint64 reads the canonical little-endian eight-byte integer at offset.
func DecodeUint64(data []byte, offset int) (uint64, int, error) {
	if err := need(data, offset, 8); err != nil {
		return 0, offset, err
	}
	return binary.LittleEndian.Uint64(data[offset:]), offset + 8, nil
}

// DecodeUint256 reads the canonical little-endian 32-byte integer at offset.
func DecodeUint256(data []byte, offset int) (*uint256.Int, int, error) {
	if err := need(data, offset, 32); err != nil {
		return nil, offset, err
	}
	var be [32]byte
	for i := 0; i < 32; i++ {
		be[i] = data[offset+31-i]
	}
	return new(uint256.Int).SetBytes(be[:]), offset + 32, nil
}

// DecodeFixedBytes reads exactly n raw bytes at offset into a fresh slice.
func DecodeFixedBytes(data []byte, offset, n int) ([]byte, int, error) {
	if err := need(data, offset, n); err != nil {
		return nil, offset, err
	}
	out := make([]byte, n)
	copy(out, data[offset:offset+n])
	return out, offset + n, nil
}

// DecodeVariable reads a 4-byte little-endian byte-length prefix at
// offset followed by that many body bytes, returning the body and the
// offset immediately past it.
func DecodeVariable(data []byte, offset int) (body []byte, newOffset int, err error) {
	length, afterLen, err := DecodeUint32(data, offset)
	if err != nil {
		return nil, offset, err
	}
	if err := need(data, afterLen, int(length)); err != nil {
		return nil, offset, err
	}
	end := afterLen + int(length)
	out := make([]byte, length)
	copy(out, data[afterLen:end])
	return out, end, nil
}

// DecodeList reads a variable sequence written by EncodeList, invoking
// decode repeatedly over the body until it is fully consumed. decode
// must report how many bytes of body it consumed; a decode that leaves
// a non-empty remainder smaller than one element is a TooShort error.
func DecodeList[T any](data []byte, offset int, decode func(body []byte, bodyOffset int) (T, int, error)) ([]T, int, error) {
	body, newOffset, err := DecodeVariable(data, offset)
	if err != nil {
		return nil, offset, err
	}
	var out []T
	pos := 0
	for pos < len(body) {
		elem, next, err := decode(body, pos)
		if err != nil {
			return nil, offset, err
		}
		if next <= pos {
			// decode made no progress: malformed element, not an infinite loop.
			return nil, offset, ErrTooShort
		}
		out = append(out, elem)
		pos = next
	}
	return out, newOffset, nil
}
