package ssz

import "testing"

func TestDecodeBoolInvalid(t *testing.T) {
	if _, _, err := DecodeBool([]byte{2}, 0); err != ErrInvalidBool {
		t.Errorf("DecodeBool(2) error = %v, want ErrInvalidBool", err)
	}
}

func TestDecodeOutOfBounds(t *testing.T) {
	if _, _, err := DecodeUint64([]byte{1, 2, 3}, 0); err != ErrTooShort {
		t.Errorf("DecodeUint64 on short buffer: err = %v, want ErrTooShort", err)
	}
	if _, _, err := DecodeUint8(nil, 5); err != ErrOutOfBounds {
		t.Errorf("DecodeUint8 past end: err = %v, want ErrOutOfBounds", err)
	}
}

func TestDecodeTopLevelRejectsTrailingBytes(t *testing.T) {
	encoded := EncodeUint64(42)
	encoded = append(encoded, 0xff)

	var got uint64
	var dst unmarshalFunc = func(data []byte, offset int) (int, error) {
		v, n, err := DecodeUint64(data, offset)
		got = v
		return n, err
	}
	if err := Decode(encoded, dst); err != ErrUnexpectedTrailingBytes {
		t.Errorf("Decode with trailing bytes: err = %v, want ErrUnexpectedTrailingBytes", err)
	}
	if got != 42 {
		t.Errorf("decoded value = %d, want 42", got)
	}
}

// unmarshalFunc adapts a plain function to the Unmarshaler interface for tests.
type unmarshalFunc func(data []byte, offset int) (int, error)

func (f unmarshalFunc) UnmarshalSSZ(data []byte, offset int) (int, error) {
	return f(data, offset)
}

func TestDecodeVariableRejectsShortBody(t *testing.T) {
	encoded := EncodeUint32(10) // claims 10 body bytes, supplies none
	if _, _, err := DecodeVariable(encoded, 0); err != ErrTooShort {
		t.Errorf("DecodeVariable: err = %v, want ErrTooShort", err)
	}
}
