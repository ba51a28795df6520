package types

import (
	"errors"

	"github.com/chainbound/beaconcore/pkg/ssz"
)

// Attestation structural errors.
var (
	ErrIndicesNotAscending = errors.New("types: attesting indices are not strictly ascending")
)

// AttestationData identifies the vote an attester is making: the slot
// and committee it attests from, the block root it attests to, and the
// source/target checkpoints it links (§3). Identity is
// (source, target, beacon_block_root, slot, index).
type AttestationData struct {
	Slot            Slot
	Index           uint64
	BeaconBlockRoot Hash256
	Source          Checkpoint
	Target          Checkpoint
}

// MarshalSSZ encodes an AttestationData record.
func (a AttestationData) MarshalSSZ() ([]byte, error) {
	source, err := a.Source.MarshalSSZ()
	if err != nil {
		return nil, err
	}
	target, err := a.Target.MarshalSSZ()
	if err != nil {
		return nil, err
	}
	return ssz.EncodeRecord(
		ssz.EncodeUint64(uint64(a.Slot)),
		ssz.EncodeUint64(a.Index),
		ssz.EncodeFixedBytes(a.BeaconBlockRoot[:]),
		source,
		target,
	), nil
}

// UnmarshalSSZ decodes an AttestationData record written by MarshalSSZ.
func (a *AttestationData) UnmarshalSSZ(data []byte, offset int) (int, error) {
	slot, offset, err := ssz.DecodeUint64(data, offset)
	if err != nil {
		return offset, err
	}
	index, offset, err := ssz.DecodeUint64(data, offset)
	if err != nil {
		return offset, err
	}
	root, offset, err := ssz.DecodeFixedBytes(data, offset, len(a.BeaconBlockRoot))
	if err != nil {
		return offset, err
	}
	var source, target Checkpoint
	offset, err = source.UnmarshalSSZ(data, offset)
	if err != nil {
		return offset, err
	}
	offset, err = target.UnmarshalSSZ(data, offset)
	if err != nil {
		return offset, err
	}
	a.Slot = Slot(slot)
	a.Index = index
	copy(a.BeaconBlockRoot[:], root)
	a.Source = source
	a.Target = target
	return offset, nil
}

// HashTreeRoot computes the AttestationData's tree-hash root.
func (a AttestationData) HashTreeRoot(hashFn ssz.HashFn) [32]byte {
	return ssz.HashTreeRootContainer(hashFn, [][32]byte{
		leafUint64(uint64(a.Slot)),
		leafUint64(a.Index),
		ssz.HashTreeRootBytes(hashFn, a.BeaconBlockRoot[:]),
		a.Source.HashTreeRoot(hashFn),
		a.Target.HashTreeRoot(hashFn),
	})
}

// IndexedAttestation binds a set of attesting validator indices to an
// AttestationData and an aggregate signature over it (§3). The indices
// must be strictly ascending with no duplicates; this is a structural
// decode-time invariant, not merely a production-path convention.
type IndexedAttestation struct {
	AttestingIndices []ValidatorIndex
	Data             AttestationData
	Signature        Signature
}

// MarshalSSZ encodes an IndexedAttestation. It does not itself enforce
// strict ascending order — callers that build one by hand (e.g. the
// slashing package's test_task negative-path fixtures, §4.7) may
// deliberately violate it; decoding such bytes back is where the
// invariant is checked.
func (a IndexedAttestation) MarshalSSZ() ([]byte, error) {
	indices, err := ssz.EncodeList(a.AttestingIndices, func(idx ValidatorIndex) ([]byte, error) {
		return ssz.EncodeUint64(uint64(idx)), nil
	})
	if err != nil {
		return nil, err
	}
	data, err := a.Data.MarshalSSZ()
	if err != nil {
		return nil, err
	}
	return ssz.EncodeRecord(indices, data, ssz.EncodeFixedBytes(a.Signature[:])), nil
}

// UnmarshalSSZ decodes an IndexedAttestation written by MarshalSSZ,
// failing with ErrIndicesNotAscending if the attesting indices are not
// strictly increasing.
func (a *IndexedAttestation) UnmarshalSSZ(data []byte, offset int) (int, error) {
	indices, offset, err := ssz.DecodeList(data, offset, func(body []byte, off int) (ValidatorIndex, int, error) {
		v, n, err := ssz.DecodeUint64(body, off)
		return ValidatorIndex(v), n, err
	})
	if err != nil {
		return offset, err
	}
	for i := 1; i < len(indices); i++ {
		if indices[i] <= indices[i-1] {
			return offset, ErrIndicesNotAscending
		}
	}
	var attData AttestationData
	offset, err = attData.UnmarshalSSZ(data, offset)
	if err != nil {
		return offset, err
	}
	sig, offset, err := ssz.DecodeFixedBytes(data, offset, len(a.Signature))
	if err != nil {
		return offset, err
	}
	a.AttestingIndices = indices
	a.Data = attData
	copy(a.Signature[:], sig)
	return offset, nil
}

// HashTreeRoot computes the IndexedAttestation's tree-hash root.
func (a IndexedAttestation) HashTreeRoot(hashFn ssz.HashFn) [32]byte {
	indexRoots := make([][32]byte, len(a.AttestingIndices))
	for i, idx := range a.AttestingIndices {
		indexRoots[i] = leafUint64(uint64(idx))
	}
	return ssz.HashTreeRootContainer(hashFn, [][32]byte{
		ssz.HashTreeRootList(hashFn, indexRoots, len(a.AttestingIndices)+1),
		a.Data.HashTreeRoot(hashFn),
		ssz.HashTreeRootBytes(hashFn, a.Signature[:]),
	})
}

// SlashingVoteKind names the violation an AttesterSlashing proves.
type SlashingVoteKind uint8

const (
	// DoubleVote: same target epoch, different attestation data.
	DoubleVote SlashingVoteKind = iota
	// SurroundVote: a1.source.epoch < a2.source.epoch < a2.target.epoch < a1.target.epoch.
	SurroundVote
)

// AttesterSlashing is evidence that a validator signed two conflicting
// attestations (§3).
type AttesterSlashing struct {
	Attestation1 IndexedAttestation
	Attestation2 IndexedAttestation
}

// MarshalSSZ encodes an AttesterSlashing.
func (s AttesterSlashing) MarshalSSZ() ([]byte, error) {
	a1, err := s.Attestation1.MarshalSSZ()
	if err != nil {
		return nil, err
	}
	a2, err := s.Attestation2.MarshalSSZ()
	if err != nil {
		return nil, err
	}
	return ssz.EncodeRecord(a1, a2), nil
}

// UnmarshalSSZ decodes an AttesterSlashing written by MarshalSSZ.
func (s *AttesterSlashing) UnmarshalSSZ(data []byte, offset int) (int, error) {
	offset, err := s.Attestation1.UnmarshalSSZ(data, offset)
	if err != nil {
		return offset, err
	}
	offset, err = s.Attestation2.UnmarshalSSZ(data, offset)
	if err != nil {
		return offset, err
	}
	return offset, nil
}

// Classify reports the slashable vote kind the two attestations form,
// and whether they form one at all (§3's double-vote / surround-vote
// definitions).
func (s AttesterSlashing) Classify() (SlashingVoteKind, bool) {
	a1, a2 := s.Attestation1.Data, s.Attestation2.Data
	if a1.Target.Epoch == a2.Target.Epoch && a1 != a2 {
		return DoubleVote, true
	}
	if a1.Source.Epoch < a2.Source.Epoch && a2.Source.Epoch < a2.Target.Epoch && a2.Target.Epoch < a1.Target.Epoch {
		return SurroundVote, true
	}
	if a2.Source.Epoch < a1.Source.Epoch && a1.Source.Epoch < a1.Target.Epoch && a1.Target.Epoch < a2.Target.Epoch {
		return SurroundVote, true
	}
	return 0, false
}
