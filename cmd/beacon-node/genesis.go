package main

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/chainbound/beaconcore/pkg/bls"
	"github.com/chainbound/beaconcore/pkg/chainspec"
	"github.com/chainbound/beaconcore/pkg/committee"
	"github.com/chainbound/beaconcore/pkg/types"
)

// genesisEffectiveBalance is the starting effective balance assigned
// to every validator a testnet genesis deposits, in the chain's
// smallest balance unit.
const genesisEffectiveBalance = 32_000_000_000

// buildGenesisState constructs a phase0 genesis BeaconState for a
// testnet with validatorCount validators, all active from dynasty
// zero under the given spec. Validator keys are derived
// deterministically from their index via the non-cryptographic stub
// BLS backend, so the same (cfg, validatorCount) pair always produces
// the same genesis across runs — there is no randomness to keep in
// sync across nodes that bootstrap against each other.
func buildGenesisState(cfg chainspec.Config, validatorCount uint64) (types.BeaconState, error) {
	registry := make([]types.ValidatorRecord, validatorCount)
	for i := range registry {
		pubkey, _, err := bls.StubKeyGen(deterministicIKM(uint64(i)))
		if err != nil {
			return types.BeaconState{}, err
		}
		registry[i] = types.ValidatorRecord{
			Pubkey:           pubkey,
			EffectiveBalance: genesisEffectiveBalance,
			StartDynasty:     0,
			EndDynasty:       ^types.Epoch(0),
			Status:           types.StatusActive,
		}
	}
	balances := make([]uint64, validatorCount)
	for i := range balances {
		balances[i] = genesisEffectiveBalance
	}

	var seed types.Hash256
	cycle, err := committee.DelegateValidators(seed, registry, 0, 0, cfg)
	if err != nil {
		return types.BeaconState{}, err
	}
	// Genesis has no prior cycle; the previous and current committee
	// windows are identical, matching shardCommitteeSlotIndex's
	// requirement that ShardCommitteesBySlot span [-cycle_length,
	// +cycle_length) around the state's slot.
	window := make([][]types.ShardAndCommittee, 0, 2*len(cycle.Slots))
	window = append(window, cycle.Slots...)
	window = append(window, cycle.Slots...)

	return types.BeaconState{
		Slot:                     0,
		GenesisTime:              0,
		Fork:                     chainspec.Fork{CurrentVersion: cfg.GenesisForkVersion},
		ValidatorRegistry:        registry,
		Balances:                 balances,
		RandaoMixes:              make([]types.Hash256, cfg.CycleLength),
		PreviousCalculationEpoch: 0,
		CurrentCalculationEpoch:  0,
		ShardCommitteesBySlot:    window,
		LatestBlockRoots:         make([]types.Hash256, cfg.CycleLength),
	}, nil
}

// deterministicIKM derives 32 bytes of stub key-generation material
// from a validator index, so "recent N" always produces the same N
// keys.
func deterministicIKM(index uint64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], index)
	h := sha256.Sum256(append([]byte("beaconcore-testnet-validator"), buf[:]...))
	return h[:]
}
