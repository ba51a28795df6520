package types

import (
	"bytes"
	"testing"
)

func sampleAttestation(index ValidatorIndex) IndexedAttestation {
	return IndexedAttestation{
		AttestingIndices: []ValidatorIndex{index},
		Data:             sampleAttestationData(Slot(index), Epoch(1), Epoch(0)),
		Signature:        Signature{byte(index)},
	}
}

func sampleBlock(attestations ...IndexedAttestation) BeaconBlock {
	return BeaconBlock{
		ParentHash:            Hash256{1},
		Slot:                  100,
		RandaoReveal:          Hash256{2},
		Attestations:          attestations,
		PowChainRef:           Hash256{3},
		ActiveStateRoot:       Hash256{4},
		CrystallizedStateRoot: Hash256{5},
	}
}

func TestBeaconBlockRoundTrip(t *testing.T) {
	b := sampleBlock(sampleAttestation(1), sampleAttestation(2))
	encoded, err := b.MarshalSSZ()
	if err != nil {
		t.Fatalf("MarshalSSZ: %v", err)
	}

	var got BeaconBlock
	n, err := got.UnmarshalSSZ(encoded, 0)
	if err != nil {
		t.Fatalf("UnmarshalSSZ: %v", err)
	}
	if n != len(encoded) {
		t.Fatalf("consumed %d bytes, want %d", n, len(encoded))
	}
	if got.ParentHash != b.ParentHash || got.Slot != b.Slot || got.RandaoReveal != b.RandaoReveal ||
		got.PowChainRef != b.PowChainRef || got.ActiveStateRoot != b.ActiveStateRoot ||
		got.CrystallizedStateRoot != b.CrystallizedStateRoot {
		t.Fatalf("fixed fields mismatch: got %+v, want %+v", got, b)
	}
	if len(got.Attestations) != len(b.Attestations) {
		t.Fatalf("attestation count = %d, want %d", len(got.Attestations), len(b.Attestations))
	}
	for i := range b.Attestations {
		if got.Attestations[i].Data != b.Attestations[i].Data {
			t.Errorf("attestation %d data mismatch: got %+v, want %+v", i, got.Attestations[i].Data, b.Attestations[i].Data)
		}
	}

	reEncoded, err := got.MarshalSSZ()
	if err != nil {
		t.Fatalf("re-MarshalSSZ: %v", err)
	}
	if !bytes.Equal(encoded, reEncoded) {
		t.Fatalf("re-encoded bytes differ from original")
	}
}

func TestBeaconBlockRejectsEmptyAttestations(t *testing.T) {
	b := sampleBlock()
	if _, err := b.MarshalSSZ(); err != ErrNoAttestationRecords {
		t.Fatalf("MarshalSSZ with no attestations: got err %v, want %v", err, ErrNoAttestationRecords)
	}
}

func TestBeaconBlockDecodeRejectsEmptyAttestationSection(t *testing.T) {
	// Build a well-formed block, then hand-truncate its attestation
	// section to empty by re-wrapping the fixed header/trailer around a
	// zero-length variable section, since MarshalSSZ itself refuses to
	// produce this shape.
	b := sampleBlock(sampleAttestation(1))
	encoded, err := b.MarshalSSZ()
	if err != nil {
		t.Fatalf("MarshalSSZ: %v", err)
	}

	headerEnd := blockFixedHeaderSize
	attSectionStart := headerEnd
	attLen := int(encoded[attSectionStart]) | int(encoded[attSectionStart+1])<<8 |
		int(encoded[attSectionStart+2])<<16 | int(encoded[attSectionStart+3])<<24
	attSectionEnd := attSectionStart + 4 + attLen

	truncated := make([]byte, 0, len(encoded)-attLen)
	truncated = append(truncated, encoded[:attSectionStart]...)
	truncated = append(truncated, 0, 0, 0, 0) // zero-length prefix, no body
	truncated = append(truncated, encoded[attSectionEnd:]...)

	var got BeaconBlock
	_, err = got.UnmarshalSSZ(truncated, 0)
	if err != ErrNoAttestationRecords {
		t.Fatalf("UnmarshalSSZ with empty attestation section: got err %v, want %v", err, ErrNoAttestationRecords)
	}
}

func TestBeaconBlockDecodeRejectsTooShortAttestation(t *testing.T) {
	b := sampleBlock(sampleAttestation(1))
	encoded, err := b.MarshalSSZ()
	if err != nil {
		t.Fatalf("MarshalSSZ: %v", err)
	}

	attSectionStart := blockFixedHeaderSize
	attLen := int(encoded[attSectionStart]) | int(encoded[attSectionStart+1])<<8 |
		int(encoded[attSectionStart+2])<<16 | int(encoded[attSectionStart+3])<<24
	attSectionEnd := attSectionStart + 4 + attLen

	shortBody := make([]byte, minAttestationRecordSize-1)
	shortLen := len(shortBody)

	truncated := make([]byte, 0, len(encoded))
	truncated = append(truncated, encoded[:attSectionStart]...)
	truncated = append(truncated,
		byte(shortLen), byte(shortLen>>8), byte(shortLen>>16), byte(shortLen>>24))
	truncated = append(truncated, shortBody...)
	truncated = append(truncated, encoded[attSectionEnd:]...)

	var got BeaconBlock
	_, err = got.UnmarshalSSZ(truncated, 0)
	if err != ErrNoAttestationRecords {
		t.Fatalf("UnmarshalSSZ with too-short attestation: got err %v, want %v", err, ErrNoAttestationRecords)
	}
}
