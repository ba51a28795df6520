package ssz

import (
	"bytes"
	"testing"

	"github.com/holiman/uint256"
)

func TestEncodeBoolValues(t *testing.T) {
	if got := EncodeBool(false); !bytes.Equal(got, []byte{0}) {
		t.Errorf("EncodeBool(false) = %v, want [0]", got)
	}
	if got := EncodeBool(true); !bytes.Equal(got, []byte{1}) {
		t.Errorf("EncodeBool(true) = %v, want [1]", got)
	}
}

func TestEncodeUint16LittleEndian(t *testing.T) {
	got := EncodeUint16(0x0102)
	if !bytes.Equal(got, []byte{0x02, 0x01}) {
		t.Fatalf("EncodeUint16(0x0102) = %x, want [02 01]", got)
	}
}

func TestEncodeUint64RoundTrip(t *testing.T) {
	for _, v := range []uint64{0, 1, 0xdeadbeef, ^uint64(0)} {
		got, pos, err := DecodeUint64(EncodeUint64(v), 0)
		if err != nil {
			t.Fatalf("DecodeUint64: %v", err)
		}
		if got != v || pos != 8 {
			t.Errorf("round trip for %d: got %d at %d", v, got, pos)
		}
	}
}

func TestEncodeUint256RoundTrip(t *testing.T) {
	v := uint256.NewInt(1)
	v.Lsh(v, 200)
	encoded := EncodeUint256(v)
	if len(encoded) != 32 {
		t.Fatalf("EncodeUint256 length = %d, want 32", len(encoded))
	}
	decoded, pos, err := DecodeUint256(encoded, 0)
	if err != nil {
		t.Fatalf("DecodeUint256: %v", err)
	}
	if pos != 32 || decoded.Cmp(v) != 0 {
		t.Errorf("round trip: got %s, want %s", decoded, v)
	}
}

func TestEncodeVariableEmptyBody(t *testing.T) {
	body := make([]byte, 0)
	if _, err := EncodeVariable(body); err != nil {
		t.Fatalf("empty body should encode cleanly: %v", err)
	}
}

func TestEncodeListRoundTrip(t *testing.T) {
	values := []uint64{1, 2, 3, 4, 5}
	encoded, err := EncodeList(values, func(v uint64) ([]byte, error) {
		return EncodeUint64(v), nil
	})
	if err != nil {
		t.Fatalf("EncodeList: %v", err)
	}
	decoded, newOffset, err := DecodeList(encoded, 0, func(body []byte, off int) (uint64, int, error) {
		return DecodeUint64(body, off)
	})
	if err != nil {
		t.Fatalf("DecodeList: %v", err)
	}
	if newOffset != len(encoded) {
		t.Errorf("DecodeList consumed %d of %d bytes", newOffset, len(encoded))
	}
	if len(decoded) != len(values) {
		t.Fatalf("decoded %d elements, want %d", len(decoded), len(values))
	}
	for i, v := range values {
		if decoded[i] != v {
			t.Errorf("element %d = %d, want %d", i, decoded[i], v)
		}
	}
}

func TestEncodeRecordConcatenatesInOrder(t *testing.T) {
	got := EncodeRecord(EncodeUint8(1), EncodeUint16(2), EncodeBool(true))
	want := []byte{1, 2, 0, 1}
	if !bytes.Equal(got, want) {
		t.Errorf("EncodeRecord = %x, want %x", got, want)
	}
}
