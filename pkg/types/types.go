// Package types implements the canonical beacon-state data model (C6):
// the structured records every other component reads or produces, each
// with a canonical SSZ encoding and tree-hash schema.
package types

import (
	"errors"

	"github.com/chainbound/beaconcore/pkg/ssz"
)

// Slot, Epoch, and ValidatorIndex are 64-bit non-negative integers;
// Shard is a 16-bit non-negative integer (§3).
type (
	Slot           uint64
	Epoch          uint64
	Shard          uint16
	ValidatorIndex uint64
)

// Hash256 is a 32-byte hash.
type Hash256 [32]byte

// Address is a 20-byte account address.
type Address [20]byte

// PublicKey is a fixed-width BLS public key. The core treats it as an
// opaque byte string; signature verification is out of scope (§1).
type PublicKey [48]byte

// Signature is a fixed-width BLS signature, likewise opaque to the core.
type Signature [96]byte

// ValidatorStatus enumerates a ValidatorRecord's lifecycle stage (§3).
type ValidatorStatus uint8

const (
	StatusPending ValidatorStatus = iota
	StatusActive
	StatusExited
	StatusWithdrawn
	StatusSlashed
)

// Domain errors shared across the data model.
var (
	ErrEpochOutOfRange = errors.New("types: epoch outside the valid query window")
	ErrSlotOutOfRange  = errors.New("types: slot outside the valid query window")
	ErrUnknownEpoch    = errors.New("types: epoch has no corresponding cycle")
)

// ValidatorRecord is a single entry in the validator registry (§3).
type ValidatorRecord struct {
	Pubkey                PublicKey
	WithdrawalCredentials Hash256
	EffectiveBalance      uint64
	StartDynasty          Epoch
	EndDynasty            Epoch
	Status                ValidatorStatus
}

// IsActive reports whether the validator is active at the given dynasty:
// start_dynasty ≤ dynasty < end_dynasty (§9 Open Question (a) — the
// corrected, non-contradictory predicate).
func (v ValidatorRecord) IsActive(dynasty Epoch) bool {
	return v.StartDynasty <= dynasty && dynasty < v.EndDynasty
}

// MarshalSSZ encodes a ValidatorRecord in declared field order (§4.2).
func (v ValidatorRecord) MarshalSSZ() ([]byte, error) {
	return ssz.EncodeRecord(
		ssz.EncodeFixedBytes(v.Pubkey[:]),
		ssz.EncodeFixedBytes(v.WithdrawalCredentials[:]),
		ssz.EncodeUint64(v.EffectiveBalance),
		ssz.EncodeUint64(uint64(v.StartDynasty)),
		ssz.EncodeUint64(uint64(v.EndDynasty)),
		ssz.EncodeUint8(uint8(v.Status)),
	), nil
}

// UnmarshalSSZ decodes a ValidatorRecord written by MarshalSSZ.
func (v *ValidatorRecord) UnmarshalSSZ(data []byte, offset int) (int, error) {
	pub, offset, err := ssz.DecodeFixedBytes(data, offset, len(v.Pubkey))
	if err != nil {
		return offset, err
	}
	wc, offset, err := ssz.DecodeFixedBytes(data, offset, len(v.WithdrawalCredentials))
	if err != nil {
		return offset, err
	}
	bal, offset, err := ssz.DecodeUint64(data, offset)
	if err != nil {
		return offset, err
	}
	start, offset, err := ssz.DecodeUint64(data, offset)
	if err != nil {
		return offset, err
	}
	end, offset, err := ssz.DecodeUint64(data, offset)
	if err != nil {
		return offset, err
	}
	status, offset, err := ssz.DecodeUint8(data, offset)
	if err != nil {
		return offset, err
	}
	copy(v.Pubkey[:], pub)
	copy(v.WithdrawalCredentials[:], wc)
	v.EffectiveBalance = bal
	v.StartDynasty = Epoch(start)
	v.EndDynasty = Epoch(end)
	v.Status = ValidatorStatus(status)
	return offset, nil
}

// HashTreeRoot computes the ValidatorRecord's tree-hash root over its
// six fields, each packed into its own chunk group (§4.3).
func (v ValidatorRecord) HashTreeRoot(hashFn ssz.HashFn) [32]byte {
	return ssz.HashTreeRootContainer(hashFn, [][32]byte{
		ssz.HashTreeRootBytes(hashFn, v.Pubkey[:]),
		ssz.HashTreeRootBytes(hashFn, v.WithdrawalCredentials[:]),
		leafUint64(v.EffectiveBalance),
		leafUint64(uint64(v.StartDynasty)),
		leafUint64(uint64(v.EndDynasty)),
		leafUint64(uint64(v.Status)),
	})
}

func leafUint64(v uint64) [32]byte {
	var chunk [32]byte
	copy(chunk[:8], ssz.EncodeUint64(v))
	return chunk
}

// ShardAndCommittee pairs a shard with the ordered committee assigned
// to cross-link it (§3). Committee sizes within a cycle differ by at
// most one, and a committee is disjoint from every other committee
// assigned to the same slot — both invariants are enforced by the
// committee assigner (pkg/committee), not by this type.
type ShardAndCommittee struct {
	ShardID   Shard
	Committee []ValidatorIndex
}

// MarshalSSZ encodes a ShardAndCommittee: the shard id followed by the
// committee as a variable sequence of u64 indices.
func (s ShardAndCommittee) MarshalSSZ() ([]byte, error) {
	committee, err := ssz.EncodeList(s.Committee, func(idx ValidatorIndex) ([]byte, error) {
		return ssz.EncodeUint64(uint64(idx)), nil
	})
	if err != nil {
		return nil, err
	}
	return ssz.EncodeRecord(ssz.EncodeUint16(uint16(s.ShardID)), committee), nil
}

// UnmarshalSSZ decodes a ShardAndCommittee written by MarshalSSZ.
func (s *ShardAndCommittee) UnmarshalSSZ(data []byte, offset int) (int, error) {
	shardID, offset, err := ssz.DecodeUint16(data, offset)
	if err != nil {
		return offset, err
	}
	committee, offset, err := ssz.DecodeList(data, offset, func(body []byte, off int) (ValidatorIndex, int, error) {
		v, n, err := ssz.DecodeUint64(body, off)
		return ValidatorIndex(v), n, err
	})
	if err != nil {
		return offset, err
	}
	s.ShardID = Shard(shardID)
	s.Committee = committee
	return offset, nil
}

// Checkpoint identifies a finality checkpoint: an epoch and the root of
// the block considered canonical as of that epoch's boundary (§3).
type Checkpoint struct {
	Epoch Epoch
	Root  Hash256
}

// MarshalSSZ encodes a Checkpoint.
func (c Checkpoint) MarshalSSZ() ([]byte, error) {
	return ssz.EncodeRecord(ssz.EncodeUint64(uint64(c.Epoch)), ssz.EncodeFixedBytes(c.Root[:])), nil
}

// UnmarshalSSZ decodes a Checkpoint written by MarshalSSZ.
func (c *Checkpoint) UnmarshalSSZ(data []byte, offset int) (int, error) {
	epoch, offset, err := ssz.DecodeUint64(data, offset)
	if err != nil {
		return offset, err
	}
	root, offset, err := ssz.DecodeFixedBytes(data, offset, len(c.Root))
	if err != nil {
		return offset, err
	}
	c.Epoch = Epoch(epoch)
	copy(c.Root[:], root)
	return offset, nil
}

// HashTreeRoot computes the Checkpoint's tree-hash root.
func (c Checkpoint) HashTreeRoot(hashFn ssz.HashFn) [32]byte {
	return ssz.HashTreeRootContainer(hashFn, [][32]byte{
		leafUint64(uint64(c.Epoch)),
		ssz.HashTreeRootBytes(hashFn, c.Root[:]),
	})
}
