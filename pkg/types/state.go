package types

import (
	"github.com/chainbound/beaconcore/pkg/chainspec"
	"github.com/chainbound/beaconcore/pkg/ssz"
)

// Crosslink is a periodic attestation of a shard's state into the
// beacon chain.
type Crosslink struct {
	Shard             Shard
	Epoch             Epoch
	CrosslinkDataRoot Hash256
}

// MarshalSSZ encodes a Crosslink.
func (c Crosslink) MarshalSSZ() ([]byte, error) {
	return ssz.EncodeRecord(
		ssz.EncodeUint16(uint16(c.Shard)),
		ssz.EncodeUint64(uint64(c.Epoch)),
		ssz.EncodeFixedBytes(c.CrosslinkDataRoot[:]),
	), nil
}

// UnmarshalSSZ decodes a Crosslink written by MarshalSSZ.
func (c *Crosslink) UnmarshalSSZ(data []byte, offset int) (int, error) {
	shard, offset, err := ssz.DecodeUint16(data, offset)
	if err != nil {
		return offset, err
	}
	epoch, offset, err := ssz.DecodeUint64(data, offset)
	if err != nil {
		return offset, err
	}
	root, offset, err := ssz.DecodeFixedBytes(data, offset, 32)
	if err != nil {
		return offset, err
	}
	c.Shard = Shard(shard)
	c.Epoch = Epoch(epoch)
	copy(c.CrosslinkDataRoot[:], root)
	return offset, nil
}

// Eth1Data tracks the most recent deposit-contract observation a block
// proposer votes on.
type Eth1Data struct {
	DepositRoot  Hash256
	DepositCount uint64
	BlockHash    Hash256
}

// MarshalSSZ encodes an Eth1Data record.
func (e Eth1Data) MarshalSSZ() ([]byte, error) {
	return ssz.EncodeRecord(
		ssz.EncodeFixedBytes(e.DepositRoot[:]),
		ssz.EncodeUint64(e.DepositCount),
		ssz.EncodeFixedBytes(e.BlockHash[:]),
	), nil
}

// UnmarshalSSZ decodes an Eth1Data record written by MarshalSSZ.
func (e *Eth1Data) UnmarshalSSZ(data []byte, offset int) (int, error) {
	depositRoot, offset, err := ssz.DecodeFixedBytes(data, offset, 32)
	if err != nil {
		return offset, err
	}
	depositCount, offset, err := ssz.DecodeUint64(data, offset)
	if err != nil {
		return offset, err
	}
	blockHash, offset, err := ssz.DecodeFixedBytes(data, offset, 32)
	if err != nil {
		return offset, err
	}
	copy(e.DepositRoot[:], depositRoot)
	e.DepositCount = depositCount
	copy(e.BlockHash[:], blockHash)
	return offset, nil
}

// BeaconState is the full canonical chain state (§3): the validator
// registry and balances, randomness history, justification/finality
// bookkeeping, and the windowed committee and block-root history the
// query helpers below read from.
type BeaconState struct {
	Slot        Slot
	GenesisTime uint64
	Fork        chainspec.Fork

	ValidatorRegistry []ValidatorRecord
	Balances          []uint64

	RandaoMixes []Hash256

	PreviousCalculationEpoch Epoch
	CurrentCalculationEpoch  Epoch
	PreviousEpochSeed        Hash256
	CurrentEpochSeed         Hash256

	PreviousJustifiedEpoch Epoch
	JustifiedEpoch         Epoch
	JustificationBitfield  uint64
	FinalizedEpoch         Epoch

	// ShardCommitteesBySlot holds one committee assignment cycle's worth
	// of ShardAndCommittee lists for the previous and current cycle,
	// indexed relative to Slot by shardCommitteeSlotIndex.
	ShardCommitteesBySlot [][]ShardAndCommittee

	LatestCrosslinks   []Crosslink
	LatestBlockRoots   []Hash256
	LatestAttestations []IndexedAttestation

	Eth1Data Eth1Data
}

// CurrentEpoch returns the epoch containing Slot.
func (s *BeaconState) CurrentEpoch(cfg chainspec.Config) Epoch {
	return Epoch(cfg.EpochOf(uint64(s.Slot)))
}

// PreviousEpoch returns the epoch before CurrentEpoch, saturating at
// epoch 0 for the genesis epoch (there is no epoch -1 to return).
func (s *BeaconState) PreviousEpoch(cfg chainspec.Config) Epoch {
	current := s.CurrentEpoch(cfg)
	if current == 0 {
		return 0
	}
	return current - 1
}

// EpochSeed returns the randomness seed for epoch, which must be the
// current or previous calculation epoch (§4.6): outside that window the
// state carries no seed for it, so the query fails with
// ErrEpochOutOfRange rather than returning a stale or zero value.
func (s *BeaconState) EpochSeed(epoch Epoch) (Hash256, error) {
	switch epoch {
	case s.CurrentCalculationEpoch:
		return s.CurrentEpochSeed, nil
	case s.PreviousCalculationEpoch:
		return s.PreviousEpochSeed, nil
	default:
		return Hash256{}, ErrEpochOutOfRange
	}
}

// shardCommitteeSlotIndex maps an absolute slot to an index into
// ShardCommitteesBySlot, which spans [Slot - cycle_length, Slot +
// cycle_length) — the previous and current committee cycles. Returns
// ErrSlotOutOfRange outside that window.
func (s *BeaconState) shardCommitteeSlotIndex(slot Slot, cfg chainspec.Config) (int, error) {
	windowStart := int64(s.Slot) - int64(cfg.CycleLength)
	windowEnd := int64(s.Slot) + int64(cfg.CycleLength)
	idx := int64(slot) - windowStart
	if int64(slot) < windowStart || int64(slot) >= windowEnd || idx < 0 || int(idx) >= len(s.ShardCommitteesBySlot) {
		return 0, ErrSlotOutOfRange
	}
	return int(idx), nil
}

// CrosslinkCommitteesAtSlot returns the committees assigned to slot,
// within the current cycle's ± cycle_length window (§4.6).
func (s *BeaconState) CrosslinkCommitteesAtSlot(slot Slot, cfg chainspec.Config) ([]ShardAndCommittee, error) {
	idx, err := s.shardCommitteeSlotIndex(slot, cfg)
	if err != nil {
		return nil, err
	}
	return s.ShardCommitteesBySlot[idx], nil
}

// BlockRoot returns the block root recorded for slot, which must fall
// within the last len(LatestBlockRoots) slots (§4.6).
func (s *BeaconState) BlockRoot(slot Slot) (Hash256, error) {
	window := len(s.LatestBlockRoots)
	if window == 0 {
		return Hash256{}, ErrSlotOutOfRange
	}
	if slot >= s.Slot || int64(s.Slot)-int64(slot) > int64(window) {
		return Hash256{}, ErrSlotOutOfRange
	}
	return s.LatestBlockRoots[uint64(slot)%uint64(window)], nil
}

// MarshalSSZ encodes the full BeaconState in declared field order.
func (s BeaconState) MarshalSSZ() ([]byte, error) {
	validators, err := ssz.EncodeList(s.ValidatorRegistry, func(v ValidatorRecord) ([]byte, error) {
		return v.MarshalSSZ()
	})
	if err != nil {
		return nil, err
	}
	balances, err := ssz.EncodeList(s.Balances, func(b uint64) ([]byte, error) {
		return ssz.EncodeUint64(b), nil
	})
	if err != nil {
		return nil, err
	}
	randaoMixes, err := ssz.EncodeList(s.RandaoMixes, func(h Hash256) ([]byte, error) {
		return ssz.EncodeFixedBytes(h[:]), nil
	})
	if err != nil {
		return nil, err
	}
	shardCommittees, err := ssz.EncodeList(s.ShardCommitteesBySlot, func(row []ShardAndCommittee) ([]byte, error) {
		return ssz.EncodeList(row, func(sc ShardAndCommittee) ([]byte, error) {
			return sc.MarshalSSZ()
		})
	})
	if err != nil {
		return nil, err
	}
	crosslinks, err := ssz.EncodeList(s.LatestCrosslinks, func(c Crosslink) ([]byte, error) {
		return c.MarshalSSZ()
	})
	if err != nil {
		return nil, err
	}
	blockRoots, err := ssz.EncodeList(s.LatestBlockRoots, func(h Hash256) ([]byte, error) {
		return ssz.EncodeFixedBytes(h[:]), nil
	})
	if err != nil {
		return nil, err
	}
	attestations, err := ssz.EncodeList(s.LatestAttestations, func(a IndexedAttestation) ([]byte, error) {
		return a.MarshalSSZ()
	})
	if err != nil {
		return nil, err
	}
	eth1, err := s.Eth1Data.MarshalSSZ()
	if err != nil {
		return nil, err
	}

	return ssz.EncodeRecord(
		ssz.EncodeUint64(uint64(s.Slot)),
		ssz.EncodeUint64(s.GenesisTime),
		ssz.EncodeFixedBytes(s.Fork.PreviousVersion[:]),
		ssz.EncodeFixedBytes(s.Fork.CurrentVersion[:]),
		ssz.EncodeUint64(s.Fork.Epoch),
		validators,
		balances,
		randaoMixes,
		ssz.EncodeUint64(uint64(s.PreviousCalculationEpoch)),
		ssz.EncodeUint64(uint64(s.CurrentCalculationEpoch)),
		ssz.EncodeFixedBytes(s.PreviousEpochSeed[:]),
		ssz.EncodeFixedBytes(s.CurrentEpochSeed[:]),
		ssz.EncodeUint64(uint64(s.PreviousJustifiedEpoch)),
		ssz.EncodeUint64(uint64(s.JustifiedEpoch)),
		ssz.EncodeUint64(s.JustificationBitfield),
		ssz.EncodeUint64(uint64(s.FinalizedEpoch)),
		shardCommittees,
		crosslinks,
		blockRoots,
		attestations,
		eth1,
	), nil
}

// UnmarshalSSZ decodes a BeaconState written by MarshalSSZ.
func (s *BeaconState) UnmarshalSSZ(data []byte, offset int) (int, error) {
	slot, offset, err := ssz.DecodeUint64(data, offset)
	if err != nil {
		return offset, err
	}
	genesisTime, offset, err := ssz.DecodeUint64(data, offset)
	if err != nil {
		return offset, err
	}
	prevVersion, offset, err := ssz.DecodeFixedBytes(data, offset, 4)
	if err != nil {
		return offset, err
	}
	curVersion, offset, err := ssz.DecodeFixedBytes(data, offset, 4)
	if err != nil {
		return offset, err
	}
	forkEpoch, offset, err := ssz.DecodeUint64(data, offset)
	if err != nil {
		return offset, err
	}
	validators, offset, err := ssz.DecodeList(data, offset, func(body []byte, off int) (ValidatorRecord, int, error) {
		var v ValidatorRecord
		n, err := v.UnmarshalSSZ(body, off)
		return v, n, err
	})
	if err != nil {
		return offset, err
	}
	balances, offset, err := ssz.DecodeList(data, offset, func(body []byte, off int) (uint64, int, error) {
		return ssz.DecodeUint64(body, off)
	})
	if err != nil {
		return offset, err
	}
	randaoMixes, offset, err := ssz.DecodeList(data, offset, func(body []byte, off int) (Hash256, int, error) {
		raw, n, err := ssz.DecodeFixedBytes(body, off, 32)
		var h Hash256
		if err == nil {
			copy(h[:], raw)
		}
		return h, n, err
	})
	if err != nil {
		return offset, err
	}
	prevCalcEpoch, offset, err := ssz.DecodeUint64(data, offset)
	if err != nil {
		return offset, err
	}
	curCalcEpoch, offset, err := ssz.DecodeUint64(data, offset)
	if err != nil {
		return offset, err
	}
	prevSeed, offset, err := ssz.DecodeFixedBytes(data, offset, 32)
	if err != nil {
		return offset, err
	}
	curSeed, offset, err := ssz.DecodeFixedBytes(data, offset, 32)
	if err != nil {
		return offset, err
	}
	prevJustified, offset, err := ssz.DecodeUint64(data, offset)
	if err != nil {
		return offset, err
	}
	justified, offset, err := ssz.DecodeUint64(data, offset)
	if err != nil {
		return offset, err
	}
	justificationBitfield, offset, err := ssz.DecodeUint64(data, offset)
	if err != nil {
		return offset, err
	}
	finalized, offset, err := ssz.DecodeUint64(data, offset)
	if err != nil {
		return offset, err
	}
	shardCommittees, offset, err := ssz.DecodeList(data, offset, func(body []byte, off int) ([]ShardAndCommittee, int, error) {
		return ssz.DecodeList(body, off, func(inner []byte, innerOff int) (ShardAndCommittee, int, error) {
			var sc ShardAndCommittee
			n, err := sc.UnmarshalSSZ(inner, innerOff)
			return sc, n, err
		})
	})
	if err != nil {
		return offset, err
	}
	crosslinks, offset, err := ssz.DecodeList(data, offset, func(body []byte, off int) (Crosslink, int, error) {
		var c Crosslink
		n, err := c.UnmarshalSSZ(body, off)
		return c, n, err
	})
	if err != nil {
		return offset, err
	}
	blockRoots, offset, err := ssz.DecodeList(data, offset, func(body []byte, off int) (Hash256, int, error) {
		raw, n, err := ssz.DecodeFixedBytes(body, off, 32)
		var h Hash256
		if err == nil {
			copy(h[:], raw)
		}
		return h, n, err
	})
	if err != nil {
		return offset, err
	}
	attestations, offset, err := ssz.DecodeList(data, offset, func(body []byte, off int) (IndexedAttestation, int, error) {
		var a IndexedAttestation
		n, err := a.UnmarshalSSZ(body, off)
		return a, n, err
	})
	if err != nil {
		return offset, err
	}
	var eth1 Eth1Data
	offset, err = eth1.UnmarshalSSZ(data, offset)
	if err != nil {
		return offset, err
	}

	s.Slot = Slot(slot)
	s.GenesisTime = genesisTime
	copy(s.Fork.PreviousVersion[:], prevVersion)
	copy(s.Fork.CurrentVersion[:], curVersion)
	s.Fork.Epoch = forkEpoch
	s.ValidatorRegistry = validators
	s.Balances = balances
	s.RandaoMixes = randaoMixes
	s.PreviousCalculationEpoch = Epoch(prevCalcEpoch)
	s.CurrentCalculationEpoch = Epoch(curCalcEpoch)
	copy(s.PreviousEpochSeed[:], prevSeed)
	copy(s.CurrentEpochSeed[:], curSeed)
	s.PreviousJustifiedEpoch = Epoch(prevJustified)
	s.JustifiedEpoch = Epoch(justified)
	s.JustificationBitfield = justificationBitfield
	s.FinalizedEpoch = Epoch(finalized)
	s.ShardCommitteesBySlot = shardCommittees
	s.LatestCrosslinks = crosslinks
	s.LatestBlockRoots = blockRoots
	s.LatestAttestations = attestations
	s.Eth1Data = eth1
	return offset, nil
}

// ValidatorIndexInRange reports whether idx addresses a real entry in
// ValidatorRegistry (§3 invariant 1).
func (s *BeaconState) ValidatorIndexInRange(idx ValidatorIndex) bool {
	return uint64(idx) < uint64(len(s.ValidatorRegistry))
}

// FinalityOrdered reports whether the state's finality checkpoints
// respect finalized_epoch ≤ justified_epoch ≤ current_epoch (§3
// invariant 2).
func (s *BeaconState) FinalityOrdered(cfg chainspec.Config) bool {
	return s.FinalizedEpoch <= s.JustifiedEpoch && s.JustifiedEpoch <= s.CurrentEpoch(cfg)
}

// HashTreeRoot computes the BeaconState's tree-hash root over its
// top-level fields, in the same order as MarshalSSZ.
func (s *BeaconState) HashTreeRoot(hashFn ssz.HashFn) [32]byte {
	validatorRoots := make([][32]byte, len(s.ValidatorRegistry))
	for i, v := range s.ValidatorRegistry {
		validatorRoots[i] = v.HashTreeRoot(hashFn)
	}
	balanceRoots := make([][32]byte, len(s.Balances))
	for i, b := range s.Balances {
		balanceRoots[i] = leafUint64(b)
	}
	randaoRoots := make([][32]byte, len(s.RandaoMixes))
	for i, h := range s.RandaoMixes {
		randaoRoots[i] = ssz.HashTreeRootBytes(hashFn, h[:])
	}
	shardCommitteeRoots := make([][32]byte, len(s.ShardCommitteesBySlot))
	for i, row := range s.ShardCommitteesBySlot {
		rowRoots := make([][32]byte, len(row))
		for j, sc := range row {
			committeeRoots := make([][32]byte, len(sc.Committee))
			for k, idx := range sc.Committee {
				committeeRoots[k] = leafUint64(uint64(idx))
			}
			rowRoots[j] = ssz.HashTreeRootContainer(hashFn, [][32]byte{
				leafUint64(uint64(sc.ShardID)),
				ssz.HashTreeRootList(hashFn, committeeRoots, len(sc.Committee)+1),
			})
		}
		shardCommitteeRoots[i] = ssz.HashTreeRootList(hashFn, rowRoots, len(row)+1)
	}
	crosslinkRoots := make([][32]byte, len(s.LatestCrosslinks))
	for i, c := range s.LatestCrosslinks {
		crosslinkRoots[i] = ssz.HashTreeRootContainer(hashFn, [][32]byte{
			leafUint64(uint64(c.Shard)),
			leafUint64(uint64(c.Epoch)),
			ssz.HashTreeRootBytes(hashFn, c.CrosslinkDataRoot[:]),
		})
	}
	blockRootRoots := make([][32]byte, len(s.LatestBlockRoots))
	for i, h := range s.LatestBlockRoots {
		blockRootRoots[i] = ssz.HashTreeRootBytes(hashFn, h[:])
	}
	attestationRoots := make([][32]byte, len(s.LatestAttestations))
	for i, a := range s.LatestAttestations {
		attestationRoots[i] = a.HashTreeRoot(hashFn)
	}
	eth1Root := ssz.HashTreeRootContainer(hashFn, [][32]byte{
		ssz.HashTreeRootBytes(hashFn, s.Eth1Data.DepositRoot[:]),
		leafUint64(s.Eth1Data.DepositCount),
		ssz.HashTreeRootBytes(hashFn, s.Eth1Data.BlockHash[:]),
	})

	return ssz.HashTreeRootContainer(hashFn, [][32]byte{
		leafUint64(uint64(s.Slot)),
		leafUint64(s.GenesisTime),
		ssz.HashTreeRootBytes(hashFn, s.Fork.PreviousVersion[:]),
		ssz.HashTreeRootBytes(hashFn, s.Fork.CurrentVersion[:]),
		leafUint64(s.Fork.Epoch),
		ssz.HashTreeRootList(hashFn, validatorRoots, len(s.ValidatorRegistry)+1),
		ssz.HashTreeRootList(hashFn, balanceRoots, len(s.Balances)+1),
		ssz.HashTreeRootList(hashFn, randaoRoots, len(s.RandaoMixes)+1),
		leafUint64(uint64(s.PreviousCalculationEpoch)),
		leafUint64(uint64(s.CurrentCalculationEpoch)),
		ssz.HashTreeRootBytes(hashFn, s.PreviousEpochSeed[:]),
		ssz.HashTreeRootBytes(hashFn, s.CurrentEpochSeed[:]),
		leafUint64(uint64(s.PreviousJustifiedEpoch)),
		leafUint64(uint64(s.JustifiedEpoch)),
		leafUint64(s.JustificationBitfield),
		leafUint64(uint64(s.FinalizedEpoch)),
		ssz.HashTreeRootList(hashFn, shardCommitteeRoots, len(s.ShardCommitteesBySlot)+1),
		ssz.HashTreeRootList(hashFn, crosslinkRoots, len(s.LatestCrosslinks)+1),
		ssz.HashTreeRootList(hashFn, blockRootRoots, len(s.LatestBlockRoots)+1),
		ssz.HashTreeRootList(hashFn, attestationRoots, len(s.LatestAttestations)+1),
		eth1Root,
	})
}
