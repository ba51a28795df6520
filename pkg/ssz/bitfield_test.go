package ssz

import "testing"

func TestBitfieldSetGetGrows(t *testing.T) {
	b := NewBitfield()
	if b.Len() != 0 {
		t.Fatalf("new bitfield length = %d, want 0", b.Len())
	}
	b.Set(10, true)
	if b.Len() != 11 {
		t.Fatalf("length after Set(10, true) = %d, want 11", b.Len())
	}
	if !b.Get(10) {
		t.Error("Get(10) = false, want true")
	}
	for i := 0; i < 10; i++ {
		if b.Get(i) {
			t.Errorf("Get(%d) = true, want false", i)
		}
	}
	if b.Get(100) {
		t.Error("Get past length should read false, not panic")
	}
}

func TestBitfieldNumSet(t *testing.T) {
	b := NewBitfield()
	b.Set(0, true)
	b.Set(3, true)
	b.Set(7, true)
	if got := b.NumSet(); got != 3 {
		t.Errorf("NumSet() = %d, want 3", got)
	}
}

func TestBitfieldMarshalUnmarshalRoundTrip(t *testing.T) {
	b := NewBitfield()
	for _, i := range []int{0, 2, 5, 13, 20} {
		b.Set(i, true)
	}
	encoded, err := b.MarshalSSZ()
	if err != nil {
		t.Fatalf("MarshalSSZ: %v", err)
	}
	var decoded Bitfield
	if err := Decode(encoded, &decoded); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.Len() != b.Len() {
		t.Fatalf("decoded length = %d, want %d", decoded.Len(), b.Len())
	}
	for i := 0; i < b.Len(); i++ {
		if decoded.Get(i) != b.Get(i) {
			t.Errorf("bit %d: decoded %v, want %v", i, decoded.Get(i), b.Get(i))
		}
	}
}

func TestBitfieldInvalidPaddingRejected(t *testing.T) {
	b := NewBitfield()
	b.Set(3, true) // logical length 4, packed into 1 byte
	encoded, err := b.MarshalSSZ()
	if err != nil {
		t.Fatalf("MarshalSSZ: %v", err)
	}
	// Corrupt an unused high bit (bit index 5) of the packed byte.
	bodyLen, _, _ := DecodeUint32(encoded, 0)
	packedByteOffset := BytesPerLengthPrefix + 4 // length prefix + bit-length word
	_ = bodyLen
	encoded[packedByteOffset] |= 1 << 5

	var decoded Bitfield
	if err := Decode(encoded, &decoded); err != ErrInvalidBitfieldPadding {
		t.Errorf("Decode with dirty padding: err = %v, want ErrInvalidBitfieldPadding", err)
	}
}
