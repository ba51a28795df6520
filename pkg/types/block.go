package types

import (
	"errors"

	"github.com/chainbound/beaconcore/pkg/ssz"
)

// ErrNoAttestationRecords is returned when a BeaconBlock's attestation
// section is empty, or contains a single record shorter than the
// minimum possible attestation encoding (§6, §9 Open Question (b): the
// explicit byte-length threshold is authoritative here, not a generic
// decode error).
var ErrNoAttestationRecords = errors.New("types: block has no well-formed attestation records")

// minAttestationRecordSize is the smallest possible IndexedAttestation
// encoding: an empty attesting-indices list (4-byte zero length prefix),
// a full AttestationData (8 + 8 + 32 + 40 + 40 = 128 bytes), and a
// 96-byte signature.
const minAttestationRecordSize = 4 + 128 + 96

// blockFixedHeaderSize and blockFixedTrailerSize describe
// the BeaconBlock wire layout (§6): a 32+8+32 byte fixed header, a
// length-prefixed attestations blob, and a 32+32+32 byte fixed trailer.
const (
	blockFixedHeaderSize  = 32 + 8 + 32
	blockFixedTrailerSize = 32 + 32 + 32
)

// BeaconBlock is the canonical block record (§3). At least one
// attestation is required; the wire layout is documented in §6.
type BeaconBlock struct {
	ParentHash             Hash256
	Slot                   Slot
	RandaoReveal           Hash256
	Attestations           []IndexedAttestation
	PowChainRef            Hash256
	ActiveStateRoot        Hash256
	CrystallizedStateRoot  Hash256
}

// MarshalSSZ encodes a BeaconBlock per the §6 wire layout.
func (b BeaconBlock) MarshalSSZ() ([]byte, error) {
	if len(b.Attestations) == 0 {
		return nil, ErrNoAttestationRecords
	}
	var attBody []byte
	for _, a := range b.Attestations {
		encoded, err := a.MarshalSSZ()
		if err != nil {
			return nil, err
		}
		attBody = append(attBody, encoded...)
	}
	attSection, err := ssz.EncodeVariable(attBody)
	if err != nil {
		return nil, err
	}
	return ssz.EncodeRecord(
		ssz.EncodeFixedBytes(b.ParentHash[:]),
		ssz.EncodeUint64(uint64(b.Slot)),
		ssz.EncodeFixedBytes(b.RandaoReveal[:]),
		attSection,
		ssz.EncodeFixedBytes(b.PowChainRef[:]),
		ssz.EncodeFixedBytes(b.ActiveStateRoot[:]),
		ssz.EncodeFixedBytes(b.CrystallizedStateRoot[:]),
	), nil
}

// UnmarshalSSZ decodes a BeaconBlock written by MarshalSSZ, enforcing
// the minimum length and the non-empty, well-formed attestations rule.
func (b *BeaconBlock) UnmarshalSSZ(data []byte, offset int) (int, error) {
	if len(data)-offset < blockFixedHeaderSize+ssz.BytesPerLengthPrefix+blockFixedTrailerSize {
		return offset, ssz.ErrTooShort
	}

	parentHash, offset, err := ssz.DecodeFixedBytes(data, offset, 32)
	if err != nil {
		return offset, err
	}
	slot, offset, err := ssz.DecodeUint64(data, offset)
	if err != nil {
		return offset, err
	}
	randao, offset, err := ssz.DecodeFixedBytes(data, offset, 32)
	if err != nil {
		return offset, err
	}

	attBody, offset, err := ssz.DecodeVariable(data, offset)
	if err != nil {
		return offset, err
	}
	attestations, err := decodeAttestationSection(attBody)
	if err != nil {
		return offset, err
	}

	powChainRef, offset, err := ssz.DecodeFixedBytes(data, offset, 32)
	if err != nil {
		return offset, err
	}
	activeRoot, offset, err := ssz.DecodeFixedBytes(data, offset, 32)
	if err != nil {
		return offset, err
	}
	crystallizedRoot, offset, err := ssz.DecodeFixedBytes(data, offset, 32)
	if err != nil {
		return offset, err
	}

	copy(b.ParentHash[:], parentHash)
	b.Slot = Slot(slot)
	copy(b.RandaoReveal[:], randao)
	b.Attestations = attestations
	copy(b.PowChainRef[:], powChainRef)
	copy(b.ActiveStateRoot[:], activeRoot)
	copy(b.CrystallizedStateRoot[:], crystallizedRoot)
	return offset, nil
}

// decodeAttestationSection parses the concatenated attestation records
// inside a BeaconBlock. Each IndexedAttestation self-delimits (its
// leading attesting-indices list carries its own length prefix), so
// records are decoded back to back until the section is exhausted. An
// empty section, or a trailing fragment too short to be a record, both
// surface as ErrNoAttestationRecords (§9 Open Question (b)).
func decodeAttestationSection(body []byte) ([]IndexedAttestation, error) {
	if len(body) == 0 {
		return nil, ErrNoAttestationRecords
	}
	if len(body) < minAttestationRecordSize {
		return nil, ErrNoAttestationRecords
	}
	var out []IndexedAttestation
	pos := 0
	for pos < len(body) {
		if len(body)-pos < minAttestationRecordSize {
			return nil, ErrNoAttestationRecords
		}
		var a IndexedAttestation
		next, err := a.UnmarshalSSZ(body, pos)
		if err != nil {
			return nil, err
		}
		if next <= pos {
			return nil, ssz.ErrTooShort
		}
		out = append(out, a)
		pos = next
	}
	return out, nil
}
