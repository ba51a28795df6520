package rpc

import (
	"github.com/chainbound/beaconcore/pkg/chainspec"
	"github.com/chainbound/beaconcore/pkg/duties"
	"github.com/chainbound/beaconcore/pkg/types"
)

// StateDutiesSource answers /validator/request_shuffling by computing a
// validator's duties directly from chain state, rather than reading
// them from some other node's cache — it is the beacon node's own
// source of truth, as opposed to duties.Manager, which is a
// validator-client-side cache of a *remote* node's answers and has
// nothing to serve a node's own endpoint with.
//
// Duties for a validator's epoch are read off the committee
// assignments the state already carries in ShardCommitteesBySlot
// (populated by pkg/committee at epoch-transition time): a validator
// is assigned Shard for every slot in the epoch it sits on a
// committee for, and BlockProductionSlot for a slot where it is the
// member at index slot % len(committee) of that slot's first committee
// (the last such slot of the epoch, if there are several).
type StateDutiesSource struct {
	store ChainStore
	cfg   chainspec.Config
}

// NewStateDutiesSource builds a DutiesSource backed by store's state,
// interpreted under cfg.
func NewStateDutiesSource(store ChainStore, cfg chainspec.Config) *StateDutiesSource {
	return &StateDutiesSource{store: store, cfg: cfg}
}

// Cached computes pubkey's duties for epoch. The name matches
// DutiesSource so a *StateDutiesSource can be handed straight to
// NewBootstrapServer; unlike duties.Manager.Cached, this never reads a
// stale value — it recomputes from whatever state the store currently
// has for the epoch's first slot.
func (s *StateDutiesSource) Cached(pubkey types.PublicKey, epoch types.Epoch) (*duties.EpochDuties, bool, error) {
	epochStartSlot := types.Slot(uint64(epoch) * s.cfg.SlotsPerEpoch)
	state, ok := s.store.StateAtSlot(epochStartSlot)
	if !ok {
		return nil, false, nil
	}

	idx, ok := validatorIndexByPubkey(state, pubkey)
	if !ok {
		return nil, false, nil
	}

	result := &duties.EpochDuties{}
	for offset := uint64(0); offset < s.cfg.SlotsPerEpoch; offset++ {
		slot := epochStartSlot + types.Slot(offset)
		committees, err := state.CrosslinkCommitteesAtSlot(slot, s.cfg)
		if err != nil {
			continue
		}
		for ci, sc := range committees {
			for mi, member := range sc.Committee {
				if member != idx {
					continue
				}
				shard := sc.ShardID
				result.Shard = &shard
				if ci == 0 && mi == int(uint64(slot)%uint64(len(sc.Committee))) {
					proposerSlot := slot
					result.BlockProductionSlot = &proposerSlot
				}
			}
		}
	}
	return result, true, nil
}

func validatorIndexByPubkey(state types.BeaconState, pubkey types.PublicKey) (types.ValidatorIndex, bool) {
	for i, v := range state.ValidatorRegistry {
		if v.Pubkey == pubkey {
			return types.ValidatorIndex(i), true
		}
	}
	return 0, false
}
